package converter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/studiowebux/restforge/internal/types"
)

func TestToHTTPFile(t *testing.T) {
	tests := []struct {
		name string
		cfg  *types.RequestConfig
		want string
	}{
		{
			name: "simple get",
			cfg:  &types.RequestConfig{Name: "List users", Method: types.MethodGet, URL: "https://api.example.com/users"},
			want: "### List users\nGET https://api.example.com/users\n",
		},
		{
			name: "json body with headers and bearer",
			cfg: &types.RequestConfig{
				Name:     "Create",
				Method:   types.MethodPost,
				URL:      "https://api.example.com/users",
				Headers:  []types.KeyValuePair{{Key: "Content-Type", Value: "application/json", Enabled: true}, {Key: "X-Off", Value: "1"}},
				BodyType: types.BodyJSON,
				Body:     `{"name":"ada"}`,
				Auth:     types.AuthConfig{Type: types.AuthBearer, Token: "tok"},
			},
			want: "### Create\nPOST https://api.example.com/users\nContent-Type: application/json\nAuthorization: Bearer tok\n\n{\n  \"name\": \"ada\"\n}\n",
		},
		{
			name: "query params and api key in query",
			cfg: &types.RequestConfig{
				Method:      types.MethodGet,
				URL:         "https://x/y?a=1",
				QueryParams: []types.KeyValuePair{{Key: "q", Value: "a b", Enabled: true}},
				Auth:        types.AuthConfig{Type: types.AuthAPIKey, APIKey: "k", APIKeyName: "key", APIKeyLocation: types.APIKeyInQuery},
			},
			want: "### New Request\nGET https://x/y?a=1&key=k&q=a%20b\n",
		},
		{
			name: "basic auth and custom method",
			cfg: &types.RequestConfig{
				Name:         "Purge",
				Method:       types.MethodCustom,
				CustomMethod: "PURGE",
				URL:          "https://cdn/x",
				Auth:         types.AuthConfig{Type: types.AuthBasic, Username: "alice", Password: "secret"},
			},
			want: "### Purge\nPURGE https://cdn/x\nAuthorization: Basic YWxpY2U6c2VjcmV0\n",
		},
		{
			name: "form fields",
			cfg: &types.RequestConfig{
				Name:     "Login",
				Method:   types.MethodPost,
				URL:      "https://x/login",
				BodyType: types.BodyFormURLEncoded,
				FormData: []types.KeyValuePair{{Key: "user", Value: "a b", Enabled: true}, {Key: "skip", Value: "1"}},
			},
			want: "### Login\nPOST https://x/login\n\nuser=a+b\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToHTTPFile(tt.cfg); got != tt.want {
				t.Errorf("Expected:\n%q\ngot:\n%q", tt.want, got)
			}
		})
	}
}

func TestConvert_MaskAndSuggest(t *testing.T) {
	cfg := &types.RequestConfig{
		Name:    "Get order",
		Method:  types.MethodGet,
		URL:     "https://shop.example.com/orders/42",
		Headers: []types.KeyValuePair{{Key: "Cookie", Value: "sid=1", Enabled: true}},
		Auth:    types.AuthConfig{Type: types.AuthAPIKey, APIKey: "k", APIKeyLocation: types.APIKeyInHeader},
	}

	got := Convert(cfg, Options{MaskSecrets: true, SuggestVariables: true})

	for _, want := range []string{
		"# @var baseUrl = https://shop.example.com\n",
		"# @var ordersId = 42\n",
		"Cookie: {{Cookie}}\n",
		"X-API-Key: {{X-API-Key}}\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, got)
		}
	}
	if strings.Index(got, "baseUrl") > strings.Index(got, "ordersId") {
		t.Error("Expected suggested variables in sorted order")
	}
}

func TestSuggestFilename(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://api.example.com/users", "users.http"},
		{"https://api.example.com/users/42", "users.http"},
		{"https://api.example.com/users/42/posts/", "posts.http"},
		{"https://api.example.com/42", "api_example_com.http"},
		{"https://api.example.com:8443", "api_example_com.http"},
		{"", "request.http"},
		{"::bad", "request.http"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := SuggestFilename(tt.url); got != tt.want {
				t.Errorf("SuggestFilename(%q) = %q, expected %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "users.http")
	cfg := &types.RequestConfig{Name: "Users", Method: types.MethodGet, URL: "https://x/users"}

	if err := WriteFile(cfg, path, Options{}); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	if string(data) != ToHTTPFile(cfg) {
		t.Errorf("Unexpected file content %q", data)
	}
}
