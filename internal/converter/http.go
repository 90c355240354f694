// Package converter reads and writes request definitions as .http files.
package converter

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/studiowebux/restforge/internal/config"
	"github.com/studiowebux/restforge/internal/curl"
	"github.com/studiowebux/restforge/internal/request"
	"github.com/studiowebux/restforge/internal/types"
)

// DefaultFilename is used when no name can be derived from the URL
const DefaultFilename = "request.http"

var (
	numericPattern = regexp.MustCompile(`^\d+$`)
	uuidPattern    = regexp.MustCompile(`^[a-f0-9-]{36}$`)
)

// sensitiveHeaders are replaced by {{Header-Name}} when masking
var sensitiveHeaders = map[string]bool{
	"authorization": true,
	"cookie":        true,
	"x-api-key":     true,
	"api-key":       true,
	"apikey":        true,
	"x-auth-token":  true,
	"auth-token":    true,
}

// Options controls .http generation
type Options struct {
	// MaskSecrets replaces credential header values with {{Header-Name}} placeholders
	MaskSecrets bool
	// SuggestVariables prepends "# @var" comments for the base URL and path ids
	SuggestVariables bool
}

// ToHTTPFile renders cfg as a .http request block
func ToHTTPFile(cfg *types.RequestConfig) string {
	return Convert(cfg, Options{})
}

// Convert renders cfg as a .http request block using opts
func Convert(cfg *types.RequestConfig, opts Options) string {
	if cfg == nil {
		return ""
	}

	var sb strings.Builder

	if opts.SuggestVariables {
		if vars := SuggestVariables(cfg.URL); len(vars) > 0 {
			sb.WriteString("# Suggested variables:\n")
			for _, key := range sortedKeys(vars) {
				sb.WriteString(fmt.Sprintf("# @var %s = %s\n", key, vars[key]))
			}
			sb.WriteString("\n")
		}
	}

	name := cfg.Name
	if name == "" {
		name = request.DefaultName
	}
	sb.WriteString("### " + name + "\n")

	headers, query := collectHeaders(cfg)
	for _, p := range cfg.QueryParams {
		if p.Enabled && p.Key != "" {
			query = append(query, curl.EncodeURIComponent(p.Key)+"="+curl.EncodeURIComponent(p.Value))
		}
	}

	target := cfg.URL
	if len(query) > 0 {
		separator := "?"
		if strings.Contains(target, "?") {
			separator = "&"
		}
		target += separator + strings.Join(query, "&")
	}
	sb.WriteString(fmt.Sprintf("%s %s\n", cfg.EffectiveMethod(), target))

	for _, h := range headers {
		value := h.Value
		if opts.MaskSecrets && sensitiveHeaders[strings.ToLower(h.Key)] {
			value = "{{" + h.Key + "}}"
		}
		sb.WriteString(fmt.Sprintf("%s: %s\n", h.Key, value))
	}

	if body := renderBody(cfg); body != "" {
		sb.WriteString("\n")
		sb.WriteString(body)
		sb.WriteString("\n")
	}

	return sb.String()
}

// collectHeaders returns the enabled headers followed by the auth header, and any
// auth carried in the query string
func collectHeaders(cfg *types.RequestConfig) ([]types.KeyValuePair, []string) {
	var headers []types.KeyValuePair
	for _, h := range cfg.Headers {
		if h.Enabled && h.Key != "" {
			headers = append(headers, h)
		}
	}

	var query []string
	auth := cfg.Auth
	switch auth.Type {
	case types.AuthBearer:
		if auth.Token != "" {
			headers = append(headers, types.KeyValuePair{Key: "Authorization", Value: "Bearer " + auth.Token})
		}
	case types.AuthBasic:
		if auth.Username != "" {
			credentials := base64.StdEncoding.EncodeToString([]byte(auth.Username + ":" + auth.Password))
			headers = append(headers, types.KeyValuePair{Key: "Authorization", Value: "Basic " + credentials})
		}
	case types.AuthAPIKey:
		if auth.APIKey != "" {
			name := auth.APIKeyName
			if name == "" {
				name = curl.DefaultAPIKeyHeader
			}
			if auth.APIKeyLocation == types.APIKeyInQuery {
				query = append(query, curl.EncodeURIComponent(name)+"="+curl.EncodeURIComponent(auth.APIKey))
			} else {
				headers = append(headers, types.KeyValuePair{Key: name, Value: auth.APIKey})
			}
		}
	}

	return headers, query
}

func renderBody(cfg *types.RequestConfig) string {
	if cfg.BodyType == types.BodyFormData || cfg.BodyType == types.BodyFormURLEncoded {
		if len(cfg.FormData) > 0 {
			var pairs []string
			for _, f := range cfg.FormData {
				if f.Enabled && f.Key != "" {
					pairs = append(pairs, url.QueryEscape(f.Key)+"="+url.QueryEscape(f.Value))
				}
			}
			return strings.Join(pairs, "&")
		}
	}

	if cfg.BodyType == types.BodyNone || cfg.Body == "" {
		return ""
	}
	if cfg.BodyType == types.BodyJSON {
		return request.TryFormatJSON(cfg.Body)
	}
	return cfg.Body
}

// SuggestVariables proposes a baseUrl variable and <segment>Id variables for
// numeric or UUID path segments
func SuggestVariables(rawURL string) map[string]string {
	vars := make(map[string]string)

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return vars
	}
	vars["baseUrl"] = parsed.Scheme + "://" + parsed.Host

	parts := strings.Split(parsed.Path, "/")
	for i, part := range parts {
		if i == 0 || parts[i-1] == "" {
			continue
		}
		if numericPattern.MatchString(part) || uuidPattern.MatchString(part) {
			vars[parts[i-1]+"Id"] = part
		}
	}
	return vars
}

// SuggestFilename derives a .http filename from the last non-numeric path
// segment, then the host, then DefaultFilename
func SuggestFilename(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return DefaultFilename
	}

	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if last := parts[len(parts)-1]; last != "" {
		if !numericPattern.MatchString(last) {
			return last + ".http"
		}
		if len(parts) > 1 {
			return parts[len(parts)-2] + ".http"
		}
	}

	if host := parsed.Hostname(); host != "" {
		return strings.ReplaceAll(host, ".", "_") + ".http"
	}

	return DefaultFilename
}

// WriteFile writes the .http rendering of cfg to path, creating parent directories
func WriteFile(cfg *types.RequestConfig, path string, opts Options) error {
	if err := EnsureOutputDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(Convert(cfg, opts)), config.FilePermissions); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// EnsureOutputDir creates the directory of an output file. "-" means stdout.
func EnsureOutputDir(path string) error {
	if path == "" || path == "-" {
		return nil
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, config.DirPermissions); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
