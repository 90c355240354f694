package converter

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/studiowebux/restforge/internal/ids"
	"github.com/studiowebux/restforge/internal/request"
	"github.com/studiowebux/restforge/internal/types"
)

// HAROptions controls HAR import
type HAROptions struct {
	// Name of the resulting collection; defaults to the HAR creator name
	Name string
	// Filter keeps only entries whose URL contains it
	Filter string
	// ImportHeaders keeps cookies and credential headers
	ImportHeaders bool
	IDs           ids.Generator
}

// HARFile represents the HAR file structure
type HARFile struct {
	Log HARLog `json:"log"`
}

// HARLog represents the log section of HAR
type HARLog struct {
	Version string     `json:"version"`
	Creator HARCreator `json:"creator"`
	Entries []HAREntry `json:"entries"`
}

// HARCreator represents the tool that created the HAR
type HARCreator struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// HAREntry represents a single HTTP exchange
type HAREntry struct {
	Request HARRequest `json:"request"`
}

// HARRequest represents the request part of an entry
type HARRequest struct {
	Method      string         `json:"method"`
	URL         string         `json:"url"`
	Headers     []HARNameValue `json:"headers"`
	QueryString []HARNameValue `json:"queryString"`
	PostData    *HARPostData   `json:"postData,omitempty"`
}

// HARNameValue is a header, query parameter or form parameter
type HARNameValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// HARPostData represents the request body
type HARPostData struct {
	MimeType string         `json:"mimeType"`
	Text     string         `json:"text"`
	Params   []HARNameValue `json:"params,omitempty"`
}

// FromHAR converts the entries of a HAR document into a collection.
// Non-HTTP entries are skipped; skipped counts them together with filtered ones.
func FromHAR(data []byte, opts HAROptions) (types.Collection, int, error) {
	gen := ids.OrDefault(opts.IDs)

	var har HARFile
	if err := json.Unmarshal(data, &har); err != nil {
		return types.Collection{}, 0, fmt.Errorf("failed to parse HAR file: %w", err)
	}
	if len(har.Log.Entries) == 0 {
		return types.Collection{}, 0, fmt.Errorf("no entries found in HAR file")
	}

	name := opts.Name
	if name == "" {
		name = "HAR import"
		if har.Log.Creator.Name != "" {
			name = har.Log.Creator.Name + " import"
		}
	}

	coll := types.Collection{
		ID:       gen.NewID(),
		Name:     name,
		Requests: []types.RequestConfig{},
	}

	skipped := 0
	for _, entry := range har.Log.Entries {
		raw := entry.Request.URL
		if opts.Filter != "" && !strings.Contains(raw, opts.Filter) {
			skipped++
			continue
		}
		if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
			skipped++
			continue
		}
		coll.Requests = append(coll.Requests, *harToRequest(entry.Request, gen, opts.ImportHeaders))
	}

	return coll, skipped, nil
}

func harToRequest(h HARRequest, gen ids.Generator, importHeaders bool) *types.RequestConfig {
	req := request.NewEmptyRequest(gen, nil)

	method := types.HttpMethod(strings.ToUpper(h.Method))
	if method.IsKnown() && method != types.MethodCustom {
		req.Method = method
	} else if h.Method != "" {
		req.Method = types.MethodCustom
		req.CustomMethod = strings.ToUpper(h.Method)
	}

	req.URL = h.URL
	if len(h.QueryString) > 0 {
		if i := strings.Index(h.URL, "?"); i >= 0 {
			req.URL = h.URL[:i]
		}
		for _, q := range h.QueryString {
			req.QueryParams = append(req.QueryParams, request.NewKeyValuePair(gen, q.Name, q.Value, true))
		}
	}
	req.Name = fmt.Sprintf("%s %s", req.EffectiveMethod(), pathOf(h.URL))

	for _, header := range h.Headers {
		if strings.HasPrefix(header.Name, ":") {
			continue
		}
		lower := strings.ToLower(header.Name)
		if lower == "authorization" && strings.HasPrefix(strings.ToLower(header.Value), "bearer ") {
			if importHeaders {
				req.Auth = types.AuthConfig{Type: types.AuthBearer, Token: strings.TrimSpace(header.Value[len("bearer "):])}
			}
			continue
		}
		if !importHeaders && sensitiveHeaders[lower] {
			continue
		}
		req.Headers = append(req.Headers, request.NewKeyValuePair(gen, header.Name, header.Value, true))
	}

	if pd := h.PostData; pd != nil {
		applyPostData(req, pd, gen)
	}

	return req
}

func applyPostData(req *types.RequestConfig, pd *HARPostData, gen ids.Generator) {
	mimeType := strings.ToLower(pd.MimeType)

	switch {
	case strings.Contains(mimeType, "json"):
		req.BodyType = types.BodyJSON
		req.Body = pd.Text
	case strings.HasPrefix(mimeType, "multipart/form-data"):
		req.BodyType = types.BodyFormData
	case strings.HasPrefix(mimeType, "application/x-www-form-urlencoded"):
		req.BodyType = types.BodyFormURLEncoded
		if len(pd.Params) == 0 && pd.Text != "" {
			pd.Params = parseFormText(pd.Text)
		}
	case strings.Contains(mimeType, "xml"):
		req.BodyType = types.BodyXML
		req.Body = pd.Text
	default:
		if pd.Text != "" {
			req.BodyType = types.BodyRaw
			req.Body = pd.Text
		}
	}

	if req.BodyType == types.BodyFormData || req.BodyType == types.BodyFormURLEncoded {
		req.FormData = []types.KeyValuePair{}
		for _, p := range pd.Params {
			req.FormData = append(req.FormData, request.NewKeyValuePair(gen, p.Name, p.Value, true))
		}
	}
}

// pathOf returns the path of a URL without query or fragment
func pathOf(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Path == "" {
		return "/"
	}
	return parsed.Path
}

// parseFormText splits an urlencoded body keeping field order
func parseFormText(text string) []HARNameValue {
	var params []HARNameValue
	for _, pair := range strings.Split(text, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		if k, err := url.QueryUnescape(key); err == nil {
			key = k
		}
		if v, err := url.QueryUnescape(value); err == nil {
			value = v
		}
		params = append(params, HARNameValue{Name: key, Value: value})
	}
	return params
}
