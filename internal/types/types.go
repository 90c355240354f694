package types

// HttpMethod is the verb of a request definition
type HttpMethod string

const (
	MethodGet     HttpMethod = "GET"
	MethodPost    HttpMethod = "POST"
	MethodPut     HttpMethod = "PUT"
	MethodPatch   HttpMethod = "PATCH"
	MethodDelete  HttpMethod = "DELETE"
	MethodHead    HttpMethod = "HEAD"
	MethodOptions HttpMethod = "OPTIONS"
	// MethodCustom means the literal verb lives in RequestConfig.CustomMethod
	MethodCustom HttpMethod = "CUSTOM"
)

// Methods lists the fixed method enumeration in display order
var Methods = []HttpMethod{
	MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete, MethodHead, MethodOptions, MethodCustom,
}

// IsKnown reports whether m is one of the fixed enumeration values
func (m HttpMethod) IsKnown() bool {
	for _, known := range Methods {
		if m == known {
			return true
		}
	}
	return false
}

// BodyType is the declared content category of a request body
type BodyType string

const (
	BodyNone           BodyType = "none"
	BodyJSON           BodyType = "json"
	BodyXML            BodyType = "xml"
	BodyFormData       BodyType = "form-data"
	BodyFormURLEncoded BodyType = "x-www-form-urlencoded"
	BodyRaw            BodyType = "raw"
	BodyBinary         BodyType = "binary"
)

// AuthType selects which AuthConfig field group is meaningful
type AuthType string

const (
	AuthNone   AuthType = "none"
	AuthBearer AuthType = "bearer"
	AuthBasic  AuthType = "basic"
	AuthAPIKey AuthType = "api-key"
	AuthCustom AuthType = "custom"
)

// APIKeyLocation is where an api-key credential is sent
type APIKeyLocation string

const (
	APIKeyInHeader APIKeyLocation = "header"
	APIKeyInQuery  APIKeyLocation = "query"
)

// KeyValuePair is an individually toggleable entry used for headers, query params and form fields
type KeyValuePair struct {
	ID          string `json:"id" yaml:"id"`
	Key         string `json:"key" yaml:"key"`
	Value       string `json:"value" yaml:"value"`
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// AuthConfig holds credentials for one of the supported auth schemes.
// Fields that do not belong to Type are ignored by consumers.
type AuthConfig struct {
	Type           AuthType       `json:"type" yaml:"type"`
	Token          string         `json:"token,omitempty" yaml:"token,omitempty"`
	Username       string         `json:"username,omitempty" yaml:"username,omitempty"`
	Password       string         `json:"password,omitempty" yaml:"password,omitempty"`
	APIKey         string         `json:"apiKey,omitempty" yaml:"apiKey,omitempty"`
	APIKeyName     string         `json:"apiKeyName,omitempty" yaml:"apiKeyName,omitempty"`
	APIKeyLocation APIKeyLocation `json:"apiKeyLocation,omitempty" yaml:"apiKeyLocation,omitempty"`
	CustomHeaders  []KeyValuePair `json:"customHeaders,omitempty" yaml:"customHeaders,omitempty"`
}

// RequestConfig is one HTTP request definition as edited in a tab
type RequestConfig struct {
	ID              string         `json:"id" yaml:"id"`
	Name            string         `json:"name" yaml:"name"`
	Method          HttpMethod     `json:"method" yaml:"method"`
	CustomMethod    string         `json:"customMethod,omitempty" yaml:"customMethod,omitempty"`
	URL             string         `json:"url" yaml:"url"`
	Headers         []KeyValuePair `json:"headers" yaml:"headers"`
	QueryParams     []KeyValuePair `json:"queryParams" yaml:"queryParams"`
	BodyType        BodyType       `json:"bodyType" yaml:"bodyType"`
	Body            string         `json:"body" yaml:"body"`
	FormData        []KeyValuePair `json:"formData,omitempty" yaml:"formData,omitempty"`
	Auth            AuthConfig     `json:"auth" yaml:"auth"`
	SSLVerify       bool           `json:"sslVerify" yaml:"sslVerify"`
	FollowRedirects bool           `json:"followRedirects" yaml:"followRedirects"`
}

// EffectiveMethod returns the verb to put on the wire
func (r *RequestConfig) EffectiveMethod() string {
	if r.Method == MethodCustom {
		if r.CustomMethod != "" {
			return r.CustomMethod
		}
		return string(MethodGet)
	}
	return string(r.Method)
}

// Clone returns a deep copy so callers can mutate slices without aliasing
func (r *RequestConfig) Clone() *RequestConfig {
	if r == nil {
		return nil
	}
	c := *r
	c.Headers = clonePairs(r.Headers)
	c.QueryParams = clonePairs(r.QueryParams)
	c.FormData = clonePairs(r.FormData)
	c.Auth.CustomHeaders = clonePairs(r.Auth.CustomHeaders)
	return &c
}

func clonePairs(pairs []KeyValuePair) []KeyValuePair {
	if pairs == nil {
		return nil
	}
	out := make([]KeyValuePair, len(pairs))
	copy(out, pairs)
	return out
}

// ResponseData contains the HTTP response as shown in the response viewer
type ResponseData struct {
	Status     int               `json:"status" yaml:"status"`
	StatusText string            `json:"statusText" yaml:"statusText"`
	Headers    map[string]string `json:"headers" yaml:"headers"`
	Body       string            `json:"body" yaml:"body"`
	Time       float64           `json:"time" yaml:"time"` // milliseconds
	Size       int64             `json:"size" yaml:"size"` // bytes
}

// RequestHistoryItem is a sent request together with its response
type RequestHistoryItem struct {
	ID        string        `json:"id" yaml:"id"`
	Request   RequestConfig `json:"request" yaml:"request"`
	Response  *ResponseData `json:"response,omitempty" yaml:"response,omitempty"`
	Timestamp int64         `json:"timestamp" yaml:"timestamp"` // unix milliseconds
}

// Collection is a named group of saved requests
type Collection struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Requests    []RequestConfig `json:"requests" yaml:"requests"`
	Folders     []Collection    `json:"folders,omitempty" yaml:"folders,omitempty"`
}

// Environment is a named variable set used for {{var}} substitution
type Environment struct {
	ID        string         `json:"id" yaml:"id"`
	Name      string         `json:"name" yaml:"name"`
	Variables []KeyValuePair `json:"variables" yaml:"variables"`
}

// Theme is the UI color scheme preference
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// AppSettings contains user preferences
type AppSettings struct {
	Theme                  Theme  `json:"theme" yaml:"theme"`
	ActiveEnvironment      string `json:"activeEnvironment,omitempty" yaml:"activeEnvironment,omitempty"`
	SSLVerifyDefault       bool   `json:"sslVerifyDefault" yaml:"sslVerifyDefault"`
	FollowRedirectsDefault bool   `json:"followRedirectsDefault" yaml:"followRedirectsDefault"`
}

// DefaultSettings returns the settings used before anything is persisted
func DefaultSettings() AppSettings {
	return AppSettings{
		Theme:                  ThemeSystem,
		SSLVerifyDefault:       true,
		FollowRedirectsDefault: true,
	}
}

// Tab is an open request editor
type Tab struct {
	ID        string        `json:"id" yaml:"id"`
	Request   RequestConfig `json:"request" yaml:"request"`
	Response  *ResponseData `json:"response,omitempty" yaml:"response,omitempty"`
	IsLoading bool          `json:"isLoading" yaml:"isLoading"`
}
