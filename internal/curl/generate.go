package curl

import (
	"net/url"
	"strings"

	"github.com/studiowebux/restforge/internal/types"
)

// lineJoin separates flag groups in generated commands
const lineJoin = " \\\n  "

// DefaultAPIKeyHeader is used when an api-key auth has no header name
const DefaultAPIKeyHeader = "X-API-Key"

// componentUnescaper restores the characters encodeURIComponent leaves as-is
// but url.QueryEscape escapes
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// GenerateCurlCommand serializes cfg into a cURL command. It never fails:
// missing data simply produces fewer flags.
func GenerateCurlCommand(cfg *types.RequestConfig) string {
	if cfg == nil {
		return "curl ''"
	}

	parts := []string{"curl"}

	if cfg.Method != types.MethodGet {
		method := string(cfg.Method)
		if cfg.Method == types.MethodCustom && cfg.CustomMethod != "" {
			method = cfg.CustomMethod
		}
		parts = append(parts, "-X "+method)
	}

	urlIndex := len(parts)
	parts = append(parts, quote(cfg.URL))

	for _, h := range cfg.Headers {
		if h.Enabled && h.Key != "" && h.Value != "" {
			parts = append(parts, "-H "+quote(h.Key+": "+h.Value))
		}
	}

	parts = appendAuth(parts, cfg.Auth)

	if cfg.BodyType == types.BodyFormData && cfg.FormData != nil {
		for _, f := range cfg.FormData {
			if f.Enabled && f.Key != "" {
				parts = append(parts, "-F "+quote(f.Key+"="+f.Value))
			}
		}
	} else if cfg.Body != "" && cfg.BodyType != types.BodyNone {
		parts = append(parts, "-d "+quote(cfg.Body))
	}

	if query := encodeQuery(cfg.QueryParams); query != "" {
		separator := "?"
		if strings.Contains(cfg.URL, "?") {
			separator = "&"
		}
		parts[urlIndex] = quote(cfg.URL + separator + query)
	}

	return strings.Join(parts, lineJoin)
}

// Generate is the dialog-facing name for GenerateCurlCommand
func Generate(cfg *types.RequestConfig) string {
	return GenerateCurlCommand(cfg)
}

// appendAuth adds the flag for auth. An api-key sent in the query string is
// not represented in the command.
func appendAuth(parts []string, auth types.AuthConfig) []string {
	switch auth.Type {
	case types.AuthBearer:
		if auth.Token != "" {
			parts = append(parts, "-H "+quote("Authorization: Bearer "+auth.Token))
		}

	case types.AuthBasic:
		if auth.Username != "" {
			credentials := auth.Username
			if auth.Password != "" {
				credentials += ":" + auth.Password
			}
			parts = append(parts, "-u "+quote(credentials))
		}

	case types.AuthAPIKey:
		if auth.APIKey != "" && auth.APIKeyLocation == types.APIKeyInHeader {
			name := auth.APIKeyName
			if name == "" {
				name = DefaultAPIKeyHeader
			}
			parts = append(parts, "-H "+quote(name+": "+auth.APIKey))
		}
	}

	return parts
}

// encodeQuery joins the enabled, named params as an encoded query string
func encodeQuery(params []types.KeyValuePair) string {
	var pairs []string
	for _, p := range params {
		if p.Enabled && p.Key != "" {
			pairs = append(pairs, EncodeURIComponent(p.Key)+"="+EncodeURIComponent(p.Value))
		}
	}
	return strings.Join(pairs, "&")
}

// EncodeURIComponent escapes s the way browsers' encodeURIComponent does
func EncodeURIComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

// quote wraps s in single quotes without escaping its content
func quote(s string) string {
	return "'" + s + "'"
}
