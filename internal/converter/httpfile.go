package converter

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/studiowebux/restforge/internal/ids"
	"github.com/studiowebux/restforge/internal/request"
	"github.com/studiowebux/restforge/internal/types"
)

// ParseHTTP reads requests from a .http document with ### separators, as
// written by Convert. Comment lines are skipped. The query string is split
// into query params and a Bearer or Basic Authorization header becomes auth.
func ParseHTTP(r io.Reader, gen ids.Generator) ([]types.RequestConfig, error) {
	gen = ids.OrDefault(gen)

	var (
		requests  []types.RequestConfig
		current   *types.RequestConfig
		bodyLines []string
		inBody    bool
	)

	flush := func() {
		if current == nil {
			return
		}
		if current.URL != "" {
			finishBody(current, strings.Join(trimTrailingComments(bodyLines), "\n"), gen)
			requests = append(requests, *current)
		}
		current, bodyLines, inBody = nil, nil, false
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "###") {
			flush()
			current = newHTTPRequest(gen, strings.TrimSpace(strings.TrimPrefix(line, "###")))
			continue
		}

		if !inBody && (strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//")) {
			continue
		}

		// A request line without a preceding ### starts an unnamed request
		if current == nil {
			if strings.TrimSpace(line) == "" {
				continue
			}
			current = newHTTPRequest(gen, "")
		}

		if current.URL == "" {
			if strings.TrimSpace(line) == "" {
				continue
			}
			if err := parseRequestLine(current, line, gen); err != nil {
				return nil, err
			}
			continue
		}

		if !inBody {
			if strings.TrimSpace(line) == "" {
				inBody = true
				continue
			}
			key, value, ok := strings.Cut(line, ":")
			key = strings.TrimSpace(key)
			if ok && key != "" && !strings.ContainsAny(key, " \t{[\"'") && !strings.HasPrefix(line, " ") {
				addHeader(current, key, strings.TrimSpace(value), gen)
				continue
			}
			inBody = true
		}
		bodyLines = append(bodyLines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	flush()

	if len(requests) == 0 {
		return nil, fmt.Errorf("no requests found")
	}
	return requests, nil
}

// trimTrailingComments drops blank and comment lines that precede the next ### separator
func trimTrailingComments(lines []string) []string {
	end := len(lines)
	for end > 0 {
		line := strings.TrimSpace(lines[end-1])
		if line != "" && !strings.HasPrefix(line, "#") {
			break
		}
		end--
	}
	return lines[:end]
}

func newHTTPRequest(gen ids.Generator, name string) *types.RequestConfig {
	req := request.NewEmptyRequest(gen, nil)
	if name != "" {
		req.Name = name
	}
	return req
}

// parseRequestLine handles "METHOD url [HTTP/1.1]"
func parseRequestLine(req *types.RequestConfig, line string, gen ids.Generator) error {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return fmt.Errorf("invalid request line %q (expected METHOD URL)", line)
	}

	method := types.HttpMethod(strings.ToUpper(fields[0]))
	if method.IsKnown() && method != types.MethodCustom {
		req.Method = method
	} else {
		req.Method = types.MethodCustom
		req.CustomMethod = strings.ToUpper(fields[0])
	}

	target, rawQuery, _ := strings.Cut(fields[1], "?")
	req.URL = target
	for _, p := range parseFormText(rawQuery) {
		req.QueryParams = append(req.QueryParams, request.NewKeyValuePair(gen, p.Name, p.Value, true))
	}
	return nil
}

func addHeader(req *types.RequestConfig, key, value string, gen ids.Generator) {
	if strings.EqualFold(key, "Authorization") {
		scheme, credentials, _ := strings.Cut(value, " ")
		switch strings.ToLower(scheme) {
		case "bearer":
			req.Auth = types.AuthConfig{Type: types.AuthBearer, Token: strings.TrimSpace(credentials)}
			return
		case "basic":
			if decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(credentials)); err == nil {
				user, pass, _ := strings.Cut(string(decoded), ":")
				req.Auth = types.AuthConfig{Type: types.AuthBasic, Username: user, Password: pass}
				return
			}
		}
	}
	req.Headers = append(req.Headers, request.NewKeyValuePair(gen, key, value, true))
}

// finishBody sets the body type from Content-Type, or from the body itself
func finishBody(req *types.RequestConfig, body string, gen ids.Generator) {
	if strings.TrimSpace(body) == "" {
		return
	}

	contentType := ""
	for _, h := range req.Headers {
		if strings.EqualFold(h.Key, "Content-Type") {
			contentType = strings.ToLower(h.Value)
		}
	}

	switch {
	case strings.Contains(contentType, "multipart/form-data"),
		strings.Contains(contentType, "x-www-form-urlencoded"):
		req.BodyType = types.BodyFormURLEncoded
		if strings.Contains(contentType, "multipart") {
			req.BodyType = types.BodyFormData
			req.Headers = withoutHeader(req.Headers, "Content-Type")
		}
		for _, p := range parseFormText(strings.TrimSpace(body)) {
			req.FormData = append(req.FormData, request.NewKeyValuePair(gen, p.Name, p.Value, true))
		}
	case strings.Contains(contentType, "json"), contentType == "" && request.IsValidJSON(body):
		req.BodyType = types.BodyJSON
		req.Body = body
	case strings.Contains(contentType, "xml"):
		req.BodyType = types.BodyXML
		req.Body = body
	default:
		req.BodyType = types.BodyRaw
		req.Body = body
	}
}

// withoutHeader drops key; a fixed multipart boundary would not match the generated body
func withoutHeader(headers []types.KeyValuePair, key string) []types.KeyValuePair {
	out := headers[:0]
	for _, h := range headers {
		if !strings.EqualFold(h.Key, key) {
			out = append(out, h)
		}
	}
	return out
}
