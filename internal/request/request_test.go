package request

import (
	"testing"

	"github.com/studiowebux/restforge/internal/ids"
	"github.com/studiowebux/restforge/internal/types"
)

func TestNewEmptyRequest(t *testing.T) {
	req := NewEmptyRequest(ids.NewSequence("r"), nil)

	if req.ID != "r-1" {
		t.Errorf("Expected id r-1, got %s", req.ID)
	}
	if req.Name != DefaultName {
		t.Errorf("Expected name %q, got %q", DefaultName, req.Name)
	}
	if req.Method != types.MethodGet || req.BodyType != types.BodyNone || req.Auth.Type != types.AuthNone {
		t.Errorf("Unexpected defaults: %+v", req)
	}
	if !req.SSLVerify || !req.FollowRedirects {
		t.Error("Expected sslVerify and followRedirects to default to true")
	}
}

func TestNewEmptyRequest_UsesSettings(t *testing.T) {
	settings := types.AppSettings{SSLVerifyDefault: false, FollowRedirectsDefault: true}
	req := NewEmptyRequest(nil, &settings)

	if req.SSLVerify {
		t.Error("Expected sslVerify false from settings")
	}
	if !req.FollowRedirects {
		t.Error("Expected followRedirects true from settings")
	}
	if req.ID == "" {
		t.Error("Expected default generator to mint an id")
	}
}

func TestNewKeyValuePair(t *testing.T) {
	p := NewKeyValuePair(ids.NewSequence("kv"), "Accept", "*/*", false)
	if p.ID != "kv-1" || p.Key != "Accept" || p.Value != "*/*" || p.Enabled {
		t.Errorf("Unexpected pair: %+v", p)
	}
}

func TestReplaceVariables(t *testing.T) {
	vars := []types.KeyValuePair{
		{Key: "host", Value: "api.example.com", Enabled: true},
		{Key: "id", Value: "42", Enabled: true},
		{Key: "secret", Value: "nope", Enabled: false},
		{Key: "", Value: "empty", Enabled: true},
	}

	tests := []struct {
		in   string
		want string
	}{
		{"https://{{host}}/users/{{id}}", "https://api.example.com/users/42"},
		{"{{id}}-{{id}}", "42-42"},
		{"{{secret}}", "{{secret}}"},
		{"{{missing}}", "{{missing}}"},
		{"{{}}", "{{}}"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		if got := ReplaceVariables(tt.in, vars); got != tt.want {
			t.Errorf("ReplaceVariables(%q) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 Bytes"},
		{512, "512 Bytes"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1234, "1.21 KB"},
		{1572864, "1.5 MB"},
	}

	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0ms"},
		{12.4, "12ms"},
		{999.4, "999ms"},
		{1000, "1.00s"},
		{2346, "2.35s"},
	}

	for _, tt := range tests {
		if got := FormatTime(tt.in); got != tt.want {
			t.Errorf("FormatTime(%v) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}

func TestTryFormatJSON(t *testing.T) {
	got := TryFormatJSON(`{"a":1,"b":[true]}`)
	want := "{\n  \"a\": 1,\n  \"b\": [\n    true\n  ]\n}"
	if got != want {
		t.Errorf("Expected:\n%s\ngot:\n%s", want, got)
	}

	if got := TryFormatJSON("not json"); got != "not json" {
		t.Errorf("Expected invalid JSON unchanged, got %q", got)
	}
}

func TestIsValidJSON(t *testing.T) {
	if !IsValidJSON(`{"a":1}`) || !IsValidJSON(`[1]`) || !IsValidJSON(`"s"`) {
		t.Error("Expected valid JSON to be accepted")
	}
	if IsValidJSON(`{a:1}`) || IsValidJSON("") {
		t.Error("Expected invalid JSON to be rejected")
	}
}

func TestStatusClass(t *testing.T) {
	tests := map[int]string{
		0:   StatusUnknown,
		200: StatusSuccess,
		204: StatusSuccess,
		301: StatusRedirect,
		404: StatusClientError,
		500: StatusServerError,
		503: StatusServerError,
	}

	for status, want := range tests {
		if got := StatusClass(status); got != want {
			t.Errorf("StatusClass(%d) = %s, expected %s", status, got, want)
		}
	}
}
