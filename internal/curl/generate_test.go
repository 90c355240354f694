package curl

import (
	"strings"
	"testing"

	"github.com/studiowebux/restforge/internal/types"
)

func newRequest(method types.HttpMethod, url string) *types.RequestConfig {
	return &types.RequestConfig{
		ID:          "r1",
		Name:        "test",
		Method:      method,
		URL:         url,
		Headers:     []types.KeyValuePair{},
		QueryParams: []types.KeyValuePair{},
		BodyType:    types.BodyNone,
		Auth:        types.AuthConfig{Type: types.AuthNone},
	}
}

func pair(key, value string, enabled bool) types.KeyValuePair {
	return types.KeyValuePair{ID: key, Key: key, Value: value, Enabled: enabled}
}

func TestGenerate_MinimalGet(t *testing.T) {
	got := GenerateCurlCommand(newRequest(types.MethodGet, "https://example.com"))
	if got != "curl 'https://example.com'" {
		t.Errorf("Expected curl 'https://example.com', got %q", got)
	}
}

func TestGenerate_NilAndEmpty(t *testing.T) {
	if got := GenerateCurlCommand(nil); got != "curl ''" {
		t.Errorf("Expected curl '' for nil config, got %q", got)
	}
	if got := Generate(newRequest(types.MethodGet, "")); got != "curl ''" {
		t.Errorf("Expected curl '' for empty url, got %q", got)
	}
}

func TestGenerate_FullRequest(t *testing.T) {
	req := newRequest(types.MethodPost, "https://x/y")
	req.Headers = []types.KeyValuePair{pair("A", "B", true)}
	req.BodyType = types.BodyJSON
	req.Body = `{"k":1}`

	want := "curl \\\n  -X POST \\\n  'https://x/y' \\\n  -H 'A: B' \\\n  -d '{\"k\":1}'"
	if got := GenerateCurlCommand(req); got != want {
		t.Errorf("Expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestGenerate_Method(t *testing.T) {
	tests := []struct {
		name   string
		method types.HttpMethod
		custom string
		want   string
	}{
		{"delete", types.MethodDelete, "", "-X DELETE"},
		{"custom verb", types.MethodCustom, "PURGE", "-X PURGE"},
		{"custom without verb", types.MethodCustom, "", "-X CUSTOM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newRequest(tt.method, "https://a.b")
			req.CustomMethod = tt.custom
			got := GenerateCurlCommand(req)
			if !strings.Contains(got, tt.want) {
				t.Errorf("Expected %q in %q", tt.want, got)
			}
		})
	}
}

func TestGenerate_SkipsDisabledAndEmptyHeaders(t *testing.T) {
	req := newRequest(types.MethodGet, "https://a.b")
	req.Headers = []types.KeyValuePair{
		pair("X-On", "1", true),
		pair("X-Off", "2", false),
		pair("", "3", true),
		pair("X-Empty", "", true),
		pair("X-Last", "4", true),
	}

	want := "curl \\\n  'https://a.b' \\\n  -H 'X-On: 1' \\\n  -H 'X-Last: 4'"
	if got := GenerateCurlCommand(req); got != want {
		t.Errorf("Expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestGenerate_Auth(t *testing.T) {
	tests := []struct {
		name    string
		auth    types.AuthConfig
		want    string
		notWant string
	}{
		{
			name: "bearer",
			auth: types.AuthConfig{Type: types.AuthBearer, Token: "tok"},
			want: "-H 'Authorization: Bearer tok'",
		},
		{
			name: "basic with password",
			auth: types.AuthConfig{Type: types.AuthBasic, Username: "alice", Password: "secret"},
			want: "-u 'alice:secret'",
		},
		{
			name: "basic without password",
			auth: types.AuthConfig{Type: types.AuthBasic, Username: "alice"},
			want: "-u 'alice'",
		},
		{
			name: "api key header default name",
			auth: types.AuthConfig{Type: types.AuthAPIKey, APIKey: "k1", APIKeyLocation: types.APIKeyInHeader},
			want: "-H 'X-API-Key: k1'",
		},
		{
			name: "api key header custom name",
			auth: types.AuthConfig{Type: types.AuthAPIKey, APIKey: "k1", APIKeyName: "X-Token", APIKeyLocation: types.APIKeyInHeader},
			want: "-H 'X-Token: k1'",
		},
		{
			name:    "api key in query is not emitted",
			auth:    types.AuthConfig{Type: types.AuthAPIKey, APIKey: "k1", APIKeyName: "key", APIKeyLocation: types.APIKeyInQuery},
			notWant: "k1",
		},
		{
			name:    "bearer without token",
			auth:    types.AuthConfig{Type: types.AuthBearer},
			notWant: "Authorization",
		},
		{
			name:    "basic without username",
			auth:    types.AuthConfig{Type: types.AuthBasic, Password: "secret"},
			notWant: "-u",
		},
		{
			name:    "stale fields ignored",
			auth:    types.AuthConfig{Type: types.AuthNone, Token: "tok", Username: "alice"},
			notWant: "tok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newRequest(types.MethodGet, "https://a.b")
			req.Auth = tt.auth
			got := GenerateCurlCommand(req)
			if tt.want != "" && !strings.Contains(got, tt.want) {
				t.Errorf("Expected %q in %q", tt.want, got)
			}
			if tt.notWant != "" && strings.Contains(got, tt.notWant) {
				t.Errorf("Did not expect %q in %q", tt.notWant, got)
			}
		})
	}
}

func TestGenerate_AuthAfterHeaders(t *testing.T) {
	req := newRequest(types.MethodGet, "https://a.b")
	req.Headers = []types.KeyValuePair{pair("Accept", "*/*", true)}
	req.Auth = types.AuthConfig{Type: types.AuthBearer, Token: "tok"}

	got := GenerateCurlCommand(req)
	if strings.Index(got, "Accept") > strings.Index(got, "Authorization") {
		t.Errorf("Expected headers before auth, got %q", got)
	}
}

func TestGenerate_FormData(t *testing.T) {
	req := newRequest(types.MethodPost, "https://a.b")
	req.BodyType = types.BodyFormData
	req.Body = "ignored"
	req.FormData = []types.KeyValuePair{
		pair("a", "1", true),
		pair("b", "2", false),
		pair("", "3", true),
		pair("c", "", true),
	}

	got := GenerateCurlCommand(req)
	if !strings.Contains(got, "-F 'a=1'") {
		t.Errorf("Expected -F 'a=1' in %q", got)
	}
	if !strings.Contains(got, "-F 'c='") {
		t.Errorf("Expected -F 'c=' in %q", got)
	}
	if strings.Contains(got, "-F 'b=2'") || strings.Contains(got, "=3") {
		t.Errorf("Expected disabled and unnamed fields to be skipped, got %q", got)
	}
	if strings.Contains(got, "-d ") {
		t.Errorf("Expected no -d flag for form data, got %q", got)
	}
}

func TestGenerate_FormDataWithoutFieldsFallsBackToBody(t *testing.T) {
	req := newRequest(types.MethodPost, "https://a.b")
	req.BodyType = types.BodyFormData
	req.Body = "a=1"

	got := GenerateCurlCommand(req)
	if !strings.Contains(got, "-d 'a=1'") {
		t.Errorf("Expected -d 'a=1' when form data is nil, got %q", got)
	}
}

func TestGenerate_Body(t *testing.T) {
	tests := []struct {
		name     string
		bodyType types.BodyType
		body     string
		want     bool
	}{
		{"json", types.BodyJSON, `{"a":1}`, true},
		{"raw", types.BodyRaw, "hello", true},
		{"xml", types.BodyXML, "<a/>", true},
		{"none with body", types.BodyNone, "hello", false},
		{"json empty", types.BodyJSON, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newRequest(types.MethodPost, "https://a.b")
			req.BodyType = tt.bodyType
			req.Body = tt.body
			got := strings.Contains(GenerateCurlCommand(req), "-d ")
			if got != tt.want {
				t.Errorf("Expected -d present=%v, got %v", tt.want, got)
			}
		})
	}
}

func TestGenerate_BodyNotEscaped(t *testing.T) {
	req := newRequest(types.MethodPost, "https://a.b")
	req.BodyType = types.BodyRaw
	req.Body = "it's"

	if got := GenerateCurlCommand(req); !strings.HasSuffix(got, "-d 'it's'") {
		t.Errorf("Expected body emitted verbatim, got %q", got)
	}
}

func TestGenerate_QueryParams(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		params []types.KeyValuePair
		want   string
	}{
		{
			name:   "single param",
			url:    "https://x/y",
			params: []types.KeyValuePair{pair("q", "v", true)},
			want:   "curl 'https://x/y?q=v'",
		},
		{
			name:   "existing query string",
			url:    "https://x/y?a=1",
			params: []types.KeyValuePair{pair("b", "2", true)},
			want:   "curl 'https://x/y?a=1&b=2'",
		},
		{
			name:   "encoded",
			url:    "https://x/y",
			params: []types.KeyValuePair{pair("a b", "x&y=z!", true)},
			want:   "curl 'https://x/y?a%20b=x%26y%3Dz!'",
		},
		{
			name: "disabled and unnamed skipped",
			url:  "https://x/y",
			params: []types.KeyValuePair{
				pair("off", "1", false),
				pair("", "2", true),
				pair("on", "", true),
			},
			want: "curl 'https://x/y?on='",
		},
		{
			name:   "nothing enabled",
			url:    "https://x/y",
			params: []types.KeyValuePair{pair("off", "1", false)},
			want:   "curl 'https://x/y'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newRequest(types.MethodGet, tt.url)
			req.QueryParams = tt.params
			if got := GenerateCurlCommand(req); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestGenerate_QueryParamsFoldIntoURLSegment(t *testing.T) {
	req := newRequest(types.MethodPut, "https://x/y")
	req.QueryParams = []types.KeyValuePair{pair("q", "v", true)}
	req.Headers = []types.KeyValuePair{pair("A", "B", true)}

	want := "curl \\\n  -X PUT \\\n  'https://x/y?q=v' \\\n  -H 'A: B'"
	if got := GenerateCurlCommand(req); got != want {
		t.Errorf("Expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestEncodeURIComponent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hello world", "hello%20world"},
		{"a+b", "a%2Bb"},
		{"!*'()", "!*'()"},
		{"-_.~", "-_.~"},
		{"a/b?c", "a%2Fb%3Fc"},
		{"é", "%C3%A9"},
	}

	for _, tt := range tests {
		if got := EncodeURIComponent(tt.in); got != tt.want {
			t.Errorf("EncodeURIComponent(%q) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}

func TestRoundTrip_IsLossy(t *testing.T) {
	req := newRequest(types.MethodPost, "https://x/y")
	req.QueryParams = []types.KeyValuePair{pair("q", "v", true)}
	req.Headers = []types.KeyValuePair{pair("Authorization", "Digest abc", true), pair("Accept", "text/plain", true)}
	req.Auth = types.AuthConfig{Type: types.AuthBearer, Token: "tok"}
	req.BodyType = types.BodyJSON
	req.Body = `{"a":1}`

	parsed, err := ParseCurlCommand(GenerateCurlCommand(req))
	if err != nil {
		t.Fatalf("ParseCurlCommand failed: %v", err)
	}

	// query params come back folded into the URL
	if parsed.URL != "https://x/y?q=v" {
		t.Errorf("Expected URL https://x/y?q=v, got %s", parsed.URL)
	}
	if len(parsed.QueryParams) != 0 {
		t.Errorf("Expected no query params after round trip, got %+v", parsed.QueryParams)
	}

	// the Digest header is dropped; the later Bearer header wins
	if parsed.Auth.Type != types.AuthBearer || parsed.Auth.Token != "tok" {
		t.Errorf("Expected bearer tok, got %+v", parsed.Auth)
	}

	// Content-Type is added because the body is JSON
	if len(parsed.Headers) != 2 || parsed.Headers[0].Key != "Accept" || parsed.Headers[1].Key != "Content-Type" {
		t.Errorf("Expected Accept then Content-Type, got %+v", parsed.Headers)
	}

	if parsed.ID == req.ID {
		t.Error("Expected parse to mint a new id")
	}
	if parsed.Method != types.MethodPost || parsed.Body != req.Body {
		t.Errorf("Expected method and body to survive, got %s %q", parsed.Method, parsed.Body)
	}
}
