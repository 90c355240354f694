package curl

import "testing"

func TestIsValidCurlCommand(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"curl with url", "curl https://a.b", true},
		{"plain text", "just some text", false},
		{"header token", `GET /foo -H "x:y"`, true},
		{"uppercase curl", "CURL example", true},
		{"leading whitespace", "   curl example", true},
		{"continuation", "curl \\\n  -X POST", true},
		{"contains http", "see http://x", true},
		{"request flag", "thing --request POST", true},
		{"method flag", "thing -X POST", true},
		{"long header flag", "thing --header a:b", true},
		{"url flag", "thing --url x", true},
		{"lowercase x flag", "thing -x POST", false},
		{"flag without space", "thing -Hfoo", false},
		{"uppercase HTTP", "HTTP/1.1 200 OK", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidCurlCommand(tt.input); got != tt.want {
				t.Errorf("IsValidCurlCommand(%q) = %v, expected %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsPlausible(t *testing.T) {
	if !IsPlausible("curl https://a.b") {
		t.Error("Expected curl command to be plausible")
	}
	if IsPlausible("hello") {
		t.Error("Expected plain word to be rejected")
	}
}
