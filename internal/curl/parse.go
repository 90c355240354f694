package curl

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/studiowebux/restforge/internal/ids"
	"github.com/studiowebux/restforge/internal/types"
)

const (
	// DefaultName is the name given to every imported request
	DefaultName = "Imported from cURL"

	// Placeholders stored when a Basic Authorization header is not decoded
	BasicUsernamePlaceholder = "decoded_username"
	BasicPasswordPlaceholder = "decoded_password"
)

var (
	// ErrEmptyCommand is returned for blank input
	ErrEmptyCommand = errors.New("empty cURL command")

	// ErrUnterminatedQuote is returned when a quoted argument is never closed
	ErrUnterminatedQuote = errors.New("unterminated quote")
)

// ParseError describes why a command could not be interpreted
type ParseError struct {
	Flag   string // flag preceding the broken argument, if any
	Offset int    // byte offset in the normalized command
	Err    error
}

func (e *ParseError) Error() string {
	if e.Flag != "" {
		return fmt.Sprintf("invalid cURL command near %s (offset %d): %v", e.Flag, e.Offset, e.Err)
	}
	return fmt.Sprintf("invalid cURL command: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Every flag pattern below captures its value in exactly three groups:
// single quoted, double quoted, bare.
const argPattern = `(?:'([^']*)'|"((?:[^"\\]|\\.)*)"|([^'"\s]+))`

var (
	curlPrefixPattern = regexp.MustCompile(`(?i)^curl(?:\s+|$)`)
	whitespacePattern = regexp.MustCompile(`\s+`)

	urlFlagPattern   = regexp.MustCompile(`(?:^|\s)--url\s+(?:'([^'\s]+)'|"([^"\s]+)"|([^'"\s]+))`)
	methodPattern    = regexp.MustCompile(`(?:^|\s)(?:--request|-X)\s+(?:'([A-Za-z]+)'|"([A-Za-z]+)"|([A-Za-z]+))`)
	headerPattern    = regexp.MustCompile(`(?:^|\s)(?:--header|-H)\s+` + argPattern)
	dataPattern      = regexp.MustCompile(`(?:^|\s)(?:--data-raw|--data|-d)\s+` + argPattern)
	formPattern      = regexp.MustCompile(`(?:^|\s)(?:--form|-F)\s+` + argPattern)
	userAgentPattern = regexp.MustCompile(`(?:^|\s)(?:--user-agent|-A)\s+` + argPattern)
	userPattern      = regexp.MustCompile(`(?:^|\s)(?:--user|-u)\s+` + argPattern)

	flagTokenPattern = regexp.MustCompile(`(?:^|\s)(-{1,2}[A-Za-z][A-Za-z-]*)`)
	schemePattern    = regexp.MustCompile(`^https?://`)

	doubleQuoteUnescaper = strings.NewReplacer(`\"`, `"`, `\\`, `\`)
)

// valueFlags take the following token as their argument, so that token is never the URL
var valueFlags = map[string]bool{
	"-X": true, "--request": true,
	"-H": true, "--header": true,
	"-d": true, "--data": true, "--data-raw": true, "--data-binary": true, "--data-urlencode": true,
	"-F": true, "--form": true,
	"-A": true, "--user-agent": true,
	"-u": true, "--user": true,
	"-e": true, "--referer": true,
	"-b": true, "--cookie": true,
	"-c": true, "--cookie-jar": true,
	"-o": true, "--output": true,
	"-x": true, "--proxy": true,
	"-T": true, "--upload-file": true,
	"-m": true, "--max-time": true, "--connect-timeout": true,
	"-w": true, "--write-out": true,
	"--url": true,
}

// Option configures a Parser
type Option func(*Parser)

// WithIDGenerator sets the generator used for the request and pair ids
func WithIDGenerator(gen ids.Generator) Option {
	return func(p *Parser) {
		p.ids = ids.OrDefault(gen)
	}
}

// WithBasicAuthDecoding makes Basic Authorization headers decode into
// username and password instead of the placeholder values
func WithBasicAuthDecoding(enabled bool) Option {
	return func(p *Parser) {
		p.decodeBasic = enabled
	}
}

// WithName overrides the name given to parsed requests
func WithName(name string) Option {
	return func(p *Parser) {
		if name != "" {
			p.name = name
		}
	}
}

// Parser turns cURL command text into a RequestConfig
type Parser struct {
	ids         ids.Generator
	decodeBasic bool
	name        string
}

// NewParser creates a parser with the given options
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		ids:  ids.Default,
		name: DefaultName,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// extractor reads one flag family out of text and returns the remaining text
type extractor func(p *Parser, cfg *types.RequestConfig, text string) string

// pipeline is the fixed extraction order
var pipeline = []extractor{
	extractURL,
	extractMethod,
	extractHeaders,
	extractData,
	extractForm,
	extractUserAgent,
	extractUser,
}

// Parse interprets a cURL command. Absent flags leave their field at the
// default; a command without a recognizable URL yields an empty URL.
func (p *Parser) Parse(command string) (*types.RequestConfig, error) {
	if strings.TrimSpace(command) == "" {
		return nil, &ParseError{Err: ErrEmptyCommand}
	}

	text := normalize(command)
	if err := checkQuotes(text); err != nil {
		return nil, err
	}

	cfg := p.newConfig()
	for _, extract := range pipeline {
		text = extract(p, cfg, text)
	}

	return cfg, nil
}

// ParseCurlCommand parses with a default parser
func ParseCurlCommand(command string) (*types.RequestConfig, error) {
	return NewParser().Parse(command)
}

// Parse is the dialog-facing name for ParseCurlCommand
func Parse(text string) (*types.RequestConfig, error) {
	return ParseCurlCommand(text)
}

func (p *Parser) newConfig() *types.RequestConfig {
	return &types.RequestConfig{
		ID:              p.ids.NewID(),
		Name:            p.name,
		Method:          types.MethodGet,
		URL:             "",
		Headers:         []types.KeyValuePair{},
		QueryParams:     []types.KeyValuePair{},
		BodyType:        types.BodyNone,
		Body:            "",
		Auth:            types.AuthConfig{Type: types.AuthNone},
		SSLVerify:       true,
		FollowRedirects: true,
	}
}

func (p *Parser) newPair(key, value string) types.KeyValuePair {
	return types.KeyValuePair{
		ID:      p.ids.NewID(),
		Key:     key,
		Value:   value,
		Enabled: true,
	}
}

// normalize joins continuation lines, collapses whitespace and strips the leading curl
func normalize(command string) string {
	text := continuationPattern.ReplaceAllString(strings.TrimSpace(command), " ")
	text = strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
	return curlPrefixPattern.ReplaceAllString(text, "")
}

// checkQuotes rejects text with a quote that is opened but never closed
func checkQuotes(text string) error {
	var quote byte
	opened := 0

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case quote == 0 && (c == '\'' || c == '"'):
			quote = c
			opened = i
		case quote == '"' && c == '\\' && i+1 < len(text):
			i++
		case quote != 0 && c == quote:
			quote = 0
		}
	}

	if quote == 0 {
		return nil
	}

	return &ParseError{
		Flag:   lastFlagBefore(text, opened),
		Offset: opened,
		Err:    ErrUnterminatedQuote,
	}
}

func lastFlagBefore(text string, offset int) string {
	matches := flagTokenPattern.FindAllStringSubmatch(text[:offset], -1)
	if len(matches) == 0 {
		return ""
	}
	return matches[len(matches)-1][1]
}

// argMatch is one flag occurrence: its span in the working text and its value
type argMatch struct {
	start int
	end   int
	value string
}

func toArgMatch(text string, loc []int) argMatch {
	m := argMatch{start: loc[0], end: loc[1]}
	switch {
	case loc[2] >= 0:
		m.value = text[loc[2]:loc[3]]
	case loc[4] >= 0:
		m.value = doubleQuoteUnescaper.Replace(text[loc[4]:loc[5]])
	case loc[6] >= 0:
		m.value = text[loc[6]:loc[7]]
	}
	return m
}

func findArg(re *regexp.Regexp, text string) (argMatch, bool) {
	loc := re.FindStringSubmatchIndex(text)
	if loc == nil {
		return argMatch{}, false
	}
	return toArgMatch(text, loc), true
}

func findAllArgs(re *regexp.Regexp, text string) []argMatch {
	locs := re.FindAllStringSubmatchIndex(text, -1)
	matches := make([]argMatch, 0, len(locs))
	for _, loc := range locs {
		matches = append(matches, toArgMatch(text, loc))
	}
	return matches
}

// cut removes the matched spans (ordered, non-overlapping) from text
func cut(text string, matches ...argMatch) string {
	if len(matches) == 0 {
		return text
	}

	var sb strings.Builder
	last := 0
	for _, m := range matches {
		sb.WriteString(text[last:m.start])
		sb.WriteByte(' ')
		last = m.end
	}
	sb.WriteString(text[last:])
	return sb.String()
}

// token is one shell word of the normalized command
type token struct {
	start  int
	end    int
	value  string // unquoted content
	quoted bool   // the whole word is a single quoted string
}

// tokenize splits text on whitespace outside quotes. Quote balance has
// already been checked.
func tokenize(text string) []token {
	var tokens []token
	i := 0
	for i < len(text) {
		if text[i] == ' ' {
			i++
			continue
		}

		start := i
		var quote byte
		for i < len(text) && (quote != 0 || text[i] != ' ') {
			c := text[i]
			switch {
			case quote == 0 && (c == '\'' || c == '"'):
				quote = c
			case quote == '"' && c == '\\' && i+1 < len(text):
				i++
			case quote != 0 && c == quote:
				quote = 0
			}
			i++
		}

		raw := text[start:i]
		t := token{start: start, end: i, value: raw}
		if wholeQuoted(raw) {
			t.quoted = true
			t.value = raw[1 : len(raw)-1]
			if raw[0] == '"' {
				t.value = doubleQuoteUnescaper.Replace(t.value)
			}
		}
		tokens = append(tokens, t)
	}
	return tokens
}

// wholeQuoted reports whether raw is exactly one quoted string
func wholeQuoted(raw string) bool {
	if len(raw) < 2 || (raw[0] != '\'' && raw[0] != '"') {
		return false
	}
	quote := raw[0]
	for i := 1; i < len(raw); i++ {
		switch {
		case quote == '"' && raw[i] == '\\':
			i++
		case raw[i] == quote:
			return i == len(raw)-1
		}
	}
	return false
}

// findPositionalURL picks the URL among the words that are neither flags nor
// flag arguments: the first http(s) word, quoted or bare, else the first bare
// word containing a dot
func findPositionalURL(text string) (argMatch, bool) {
	var dotted *token
	tokens := tokenize(text)
	for i := range tokens {
		t := tokens[i]
		if i > 0 && valueFlags[tokens[i-1].value] && !tokens[i-1].quoted {
			continue
		}
		if !t.quoted && strings.HasPrefix(t.value, "-") {
			continue
		}
		if schemePattern.MatchString(t.value) {
			return argMatch{start: t.start, end: t.end, value: t.value}, true
		}
		if dotted == nil && !t.quoted && !strings.ContainsAny(t.value, `'"`) && strings.Contains(t.value, ".") {
			dotted = &tokens[i]
		}
	}

	if dotted == nil {
		return argMatch{}, false
	}
	return argMatch{start: dotted.start, end: dotted.end, value: dotted.value}, true
}

func extractURL(p *Parser, cfg *types.RequestConfig, text string) string {
	m, ok := findArg(urlFlagPattern, text)
	if !ok {
		m, ok = findPositionalURL(text)
	}
	if !ok {
		return text
	}

	cfg.URL = m.value
	return cut(text, m)
}

func extractMethod(p *Parser, cfg *types.RequestConfig, text string) string {
	m, ok := findArg(methodPattern, text)
	if !ok {
		return text
	}

	method := types.HttpMethod(strings.ToUpper(m.value))
	if method.IsKnown() {
		cfg.Method = method
	} else {
		cfg.Method = types.MethodCustom
		cfg.CustomMethod = string(method)
	}
	return cut(text, m)
}

func extractHeaders(p *Parser, cfg *types.RequestConfig, text string) string {
	matches := findAllArgs(headerPattern, text)

	for _, m := range matches {
		key, value, found := strings.Cut(m.value, ":")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			continue
		}
		value = strings.TrimSpace(value)

		if strings.EqualFold(key, "authorization") {
			p.applyAuthorization(cfg, value)
			continue
		}

		cfg.Headers = append(cfg.Headers, p.newPair(key, value))
	}

	return cut(text, matches...)
}

// applyAuthorization maps an Authorization header onto cfg.Auth.
// Schemes other than Bearer and Basic are dropped.
func (p *Parser) applyAuthorization(cfg *types.RequestConfig, value string) {
	lower := strings.ToLower(value)

	switch {
	case strings.HasPrefix(lower, "bearer "):
		cfg.Auth = types.AuthConfig{
			Type:  types.AuthBearer,
			Token: value[len("bearer "):],
		}

	case strings.HasPrefix(lower, "basic "):
		username, password := BasicUsernamePlaceholder, BasicPasswordPlaceholder
		if p.decodeBasic {
			if user, pass, ok := decodeBasicCredentials(value[len("basic "):]); ok {
				username, password = user, pass
			}
		}
		cfg.Auth = types.AuthConfig{
			Type:     types.AuthBasic,
			Username: username,
			Password: password,
		}
	}
}

func decodeBasicCredentials(payload string) (string, string, bool) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return "", "", false
	}
	username, password, _ := strings.Cut(string(raw), ":")
	return username, password, true
}

func extractData(p *Parser, cfg *types.RequestConfig, text string) string {
	m, ok := findArg(dataPattern, text)
	if !ok {
		return text
	}

	cfg.Body = m.value
	if json.Valid([]byte(cfg.Body)) {
		cfg.BodyType = types.BodyJSON
		if !hasHeader(cfg.Headers, "Content-Type") {
			cfg.Headers = append(cfg.Headers, p.newPair("Content-Type", "application/json"))
		}
	} else {
		cfg.BodyType = types.BodyRaw
	}

	return cut(text, m)
}

func extractForm(p *Parser, cfg *types.RequestConfig, text string) string {
	m, ok := findArg(formPattern, text)
	if !ok {
		return text
	}

	cfg.BodyType = types.BodyFormData
	cfg.FormData = []types.KeyValuePair{}

	for _, field := range strings.Split(m.value, "&") {
		key, value, _ := strings.Cut(field, "=")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		cfg.FormData = append(cfg.FormData, p.newPair(key, value))
	}

	return cut(text, m)
}

func extractUserAgent(p *Parser, cfg *types.RequestConfig, text string) string {
	m, ok := findArg(userAgentPattern, text)
	if !ok {
		return text
	}

	cfg.Headers = append(cfg.Headers, p.newPair("User-Agent", m.value))
	return cut(text, m)
}

func extractUser(p *Parser, cfg *types.RequestConfig, text string) string {
	m, ok := findArg(userPattern, text)
	if !ok {
		return text
	}

	username, password, _ := strings.Cut(m.value, ":")
	cfg.Auth = types.AuthConfig{
		Type:     types.AuthBasic,
		Username: username,
		Password: password,
	}
	return cut(text, m)
}

func hasHeader(headers []types.KeyValuePair, key string) bool {
	for _, h := range headers {
		if strings.EqualFold(h.Key, key) {
			return true
		}
	}
	return false
}
