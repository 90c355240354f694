package converter

import (
	"strings"
	"testing"

	"github.com/studiowebux/restforge/internal/ids"
	"github.com/studiowebux/restforge/internal/types"
)

func TestParseHTTP(t *testing.T) {
	input := `# Suggested variables:
# @var baseUrl = https://api.example.com

### List users
GET https://api.example.com/users?page=2&q=a%20b
Accept: application/json

### Create user
POST https://api.example.com/users
Content-Type: application/json
Authorization: Bearer tok

{
  "name": "ada"
}

### Login
POST https://api.example.com/login
Content-Type: application/x-www-form-urlencoded
Authorization: Basic dXNlcjpwYXNz

user=ada&pass=a+b

### Purge
PURGE https://cdn.example.com/asset
`

	requests, err := ParseHTTP(strings.NewReader(input), ids.NewSequence("r"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(requests) != 4 {
		t.Fatalf("Expected 4 requests, got %d", len(requests))
	}

	list := requests[0]
	if list.Name != "List users" || list.Method != types.MethodGet || list.URL != "https://api.example.com/users" {
		t.Errorf("Unexpected first request: %+v", list)
	}
	if len(list.QueryParams) != 2 || list.QueryParams[1].Key != "q" || list.QueryParams[1].Value != "a b" {
		t.Errorf("Expected decoded query params, got %+v", list.QueryParams)
	}
	if len(list.Headers) != 1 || list.Headers[0].Key != "Accept" {
		t.Errorf("Expected Accept header, got %+v", list.Headers)
	}
	if list.BodyType != types.BodyNone {
		t.Errorf("Expected no body, got %s", list.BodyType)
	}

	create := requests[1]
	if create.BodyType != types.BodyJSON {
		t.Errorf("Expected json body, got %s", create.BodyType)
	}
	if create.Body != "{\n  \"name\": \"ada\"\n}" {
		t.Errorf("Unexpected body %q", create.Body)
	}
	if create.Auth.Type != types.AuthBearer || create.Auth.Token != "tok" {
		t.Errorf("Expected bearer auth, got %+v", create.Auth)
	}
	if len(create.Headers) != 1 {
		t.Errorf("Expected Authorization to move to auth, got %+v", create.Headers)
	}

	login := requests[2]
	if login.Auth.Type != types.AuthBasic || login.Auth.Username != "user" || login.Auth.Password != "pass" {
		t.Errorf("Expected basic auth, got %+v", login.Auth)
	}
	if login.BodyType != types.BodyFormURLEncoded {
		t.Errorf("Expected urlencoded body, got %s", login.BodyType)
	}
	if len(login.FormData) != 2 || login.FormData[1].Value != "a b" {
		t.Errorf("Unexpected form data %+v", login.FormData)
	}

	purge := requests[3]
	if purge.Method != types.MethodCustom || purge.CustomMethod != "PURGE" {
		t.Errorf("Expected custom PURGE, got %s %s", purge.Method, purge.CustomMethod)
	}
}

func TestParseHTTP_RoundTrip(t *testing.T) {
	original := &types.RequestConfig{
		Name:        "Update",
		Method:      types.MethodPut,
		URL:         "https://api.example.com/items/7",
		Headers:     []types.KeyValuePair{{Key: "Content-Type", Value: "application/json", Enabled: true}},
		QueryParams: []types.KeyValuePair{{Key: "dry run", Value: "yes", Enabled: true}},
		BodyType:    types.BodyJSON,
		Body:        `{"n":1}`,
		Auth:        types.AuthConfig{Type: types.AuthBasic, Username: "u", Password: "p"},
	}

	requests, err := ParseHTTP(strings.NewReader(Convert(original, Options{SuggestVariables: true})), nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(requests) != 1 {
		t.Fatalf("Expected 1 request, got %d", len(requests))
	}

	got := requests[0]
	if got.Name != original.Name || got.Method != original.Method || got.URL != original.URL {
		t.Errorf("Expected %s %s %s, got %s %s %s", original.Name, original.Method, original.URL, got.Name, got.Method, got.URL)
	}
	if len(got.QueryParams) != 1 || got.QueryParams[0].Key != "dry run" {
		t.Errorf("Unexpected query params %+v", got.QueryParams)
	}
	if got.Auth.Type != types.AuthBasic || got.Auth.Username != "u" || got.Auth.Password != "p" {
		t.Errorf("Unexpected auth %+v", got.Auth)
	}
	if got.BodyType != types.BodyJSON || !strings.Contains(got.Body, `"n": 1`) {
		t.Errorf("Unexpected body %s %q", got.BodyType, got.Body)
	}
}

func TestParseHTTP_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"only comments", "# nothing here\n"},
		{"missing url", "### Broken\nGET\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseHTTP(strings.NewReader(tt.input), nil); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestParseHTTP_CommentsBetweenRequests(t *testing.T) {
	first := &types.RequestConfig{Name: "One", Method: types.MethodPost, URL: "https://a.io/x", BodyType: types.BodyRaw, Body: "hello"}
	second := &types.RequestConfig{Name: "Two", Method: types.MethodGet, URL: "https://b.io/users/42"}

	doc := Convert(first, Options{}) + "\n" + Convert(second, Options{SuggestVariables: true})
	requests, err := ParseHTTP(strings.NewReader(doc), ids.NewSequence("r"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(requests) != 2 {
		t.Fatalf("Expected 2 requests, got %d", len(requests))
	}
	if requests[0].Body != "hello" || requests[0].BodyType != types.BodyRaw {
		t.Errorf("Expected raw body 'hello', got %s %q", requests[0].BodyType, requests[0].Body)
	}
	if requests[1].URL != "https://b.io/users/42" {
		t.Errorf("Expected second URL, got %s", requests[1].URL)
	}
}
