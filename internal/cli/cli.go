// Package cli runs request files from the command line and formats their output.
package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/studiowebux/restforge/internal/config"
	"github.com/studiowebux/restforge/internal/converter"
	"github.com/studiowebux/restforge/internal/environments"
	"github.com/studiowebux/restforge/internal/filter"
	"github.com/studiowebux/restforge/internal/history"
	"github.com/studiowebux/restforge/internal/jsonview"
	"github.com/studiowebux/restforge/internal/request"
	"github.com/studiowebux/restforge/internal/runner"
	"github.com/studiowebux/restforge/internal/types"
)

// ErrRequestFailed is returned by Send when the response is a transport
// failure or a 4xx/5xx status
var ErrRequestFailed = errors.New("request failed")

var variablePattern = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

// Deps are the collaborators used by Send
type Deps struct {
	Executor     runner.Executor
	History      *history.Manager
	Environments *environments.Manager
	Highlighter  *jsonview.Highlighter
	Stdin        io.Reader
	Stdout       io.Writer
	Stderr       io.Writer
	// Interactive allows prompting for missing variables and request selection
	Interactive bool
}

// SendOptions contains options for sending a request file
type SendOptions struct {
	FilePath     string
	Request      string   // id or name when the file holds several requests
	Environment  string   // id or name
	ExtraVars    []string // key=value pairs, take precedence over the environment
	BodyOverride string
	OutputFormat string // text, json, yaml, body
	SavePath     string
	ShowFull     bool
	Color        bool
	Filter       string // JMESPath filter expression
	Query        string // JMESPath query or $(command)
	NoHistory    bool
	Extract      []filter.Rule // captured from the response body
	ExtractTo    string        // environment receiving captured values
}

// Send loads a request definition, executes it and writes the formatted response
func Send(ctx context.Context, deps Deps, opts SendOptions) (*types.ResponseData, error) {
	stdout, stderr := deps.Stdout, deps.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	filePath, err := ResolveFilePath(opts.FilePath)
	if err != nil {
		return nil, err
	}

	requests, err := LoadRequests(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}

	req, err := selectRequest(requests, opts.Request, deps.Interactive)
	if err != nil {
		return nil, err
	}

	if opts.BodyOverride != "" {
		req.Body = opts.BodyOverride
	}

	vars, err := ParseExtraVars(opts.ExtraVars)
	if err != nil {
		return nil, err
	}
	if deps.Environments != nil && opts.Environment != "" {
		envVars, err := deps.Environments.Variables(opts.Environment)
		if err != nil {
			return nil, fmt.Errorf("failed to load environment: %w", err)
		}
		vars = append(vars, envVars...)
	}

	if missing := MissingVariables(req, vars); len(missing) > 0 {
		if deps.Interactive {
			reader := bufio.NewReader(orStdin(deps.Stdin))
			for _, name := range missing {
				value, err := promptForVariable(reader, stderr, name)
				if err != nil {
					return nil, fmt.Errorf("failed to read input for '%s': %w", name, err)
				}
				vars = append(vars, types.KeyValuePair{Key: name, Value: value, Enabled: true})
			}
		} else {
			fmt.Fprintf(stderr, "Warning: unresolved variables: %s\n", strings.Join(missing, ", "))
		}
	}

	resp := deps.Executor.Execute(ctx, req, vars)

	if deps.History != nil && !opts.NoHistory {
		if _, err := deps.History.Record(req, resp); err != nil {
			fmt.Fprintf(stderr, "Warning: failed to save history: %v\n", err)
		}
	}

	if len(opts.Extract) > 0 {
		if err := captureVariables(deps.Environments, opts.ExtractTo, resp, opts.Extract, stderr); err != nil {
			fmt.Fprintf(stderr, "Warning: %v\n", err)
		}
	}

	shown := resp
	if opts.Filter != "" || opts.Query != "" {
		filtered, err := filter.ApplyToResponse(ctx, resp, opts.Filter, opts.Query)
		if err != nil {
			fmt.Fprintf(stderr, "Warning: filter/query error: %v\n", err)
		} else {
			shown = filtered
		}
	}

	output, err := FormatResponse(shown, FormatOptions{
		Format:      opts.OutputFormat,
		ShowFull:    opts.ShowFull,
		Color:       opts.Color && opts.SavePath == "",
		Highlighter: deps.Highlighter,
	})
	if err != nil {
		return resp, fmt.Errorf("failed to format output: %w", err)
	}

	if opts.SavePath != "" {
		if err := os.WriteFile(opts.SavePath, []byte(output), config.FilePermissions); err != nil {
			return resp, fmt.Errorf("failed to save response: %w", err)
		}
		fmt.Fprintf(stderr, "Response saved to %s\n", opts.SavePath)
	} else {
		fmt.Fprint(stdout, output)
	}

	if resp.Status == 0 || resp.Status >= 400 {
		return resp, fmt.Errorf("%w: %d %s", ErrRequestFailed, resp.Status, resp.StatusText)
	}
	return resp, nil
}

// LoadRequests reads a request definition file. The file may hold a single
// request, a list of requests or a collection, in JSON or YAML.
func LoadRequests(path string) ([]types.RequestConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".http") {
		return converter.ParseHTTP(bytes.NewReader(data), nil)
	}
	return DecodeRequests(data)
}

// DecodeRequests decodes JSON or YAML request definitions
func DecodeRequests(data []byte) ([]types.RequestConfig, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("empty request file")
	}
	root := doc.Content[0]

	var requests []types.RequestConfig
	switch {
	case root.Kind == yaml.SequenceNode:
		if err := root.Decode(&requests); err != nil {
			return nil, err
		}
	case root.Kind == yaml.MappingNode && hasKey(root, "requests"):
		var coll types.Collection
		if err := root.Decode(&coll); err != nil {
			return nil, err
		}
		requests = coll.Requests
	case root.Kind == yaml.MappingNode:
		var req types.RequestConfig
		if err := root.Decode(&req); err != nil {
			return nil, err
		}
		requests = []types.RequestConfig{req}
	default:
		return nil, fmt.Errorf("expected a request, a list of requests or a collection")
	}

	if len(requests) == 0 {
		return nil, fmt.Errorf("no requests found")
	}
	for i := range requests {
		if requests[i].Method == "" {
			requests[i].Method = types.MethodGet
		}
		if requests[i].BodyType == "" {
			requests[i].BodyType = types.BodyNone
		}
		if requests[i].Auth.Type == "" {
			requests[i].Auth.Type = types.AuthNone
		}
	}
	return requests, nil
}

func hasKey(node *yaml.Node, key string) bool {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}

func selectRequest(requests []types.RequestConfig, want string, interactive bool) (*types.RequestConfig, error) {
	if want != "" {
		for i := range requests {
			if requests[i].ID == want || requests[i].Name == want {
				return &requests[i], nil
			}
		}
		return nil, fmt.Errorf("request not found: %s", want)
	}

	if len(requests) == 1 {
		return &requests[0], nil
	}

	if !interactive {
		names := make([]string, len(requests))
		for i, r := range requests {
			names[i] = r.Name
		}
		return nil, fmt.Errorf("file holds %d requests, pick one with --request (%s)", len(requests), strings.Join(names, ", "))
	}

	i, err := promptForRequest(requests)
	if err != nil {
		return nil, err
	}
	return &requests[i], nil
}

// ParseExtraVars turns key=value arguments into enabled variables. A bare key sets an empty value.
func ParseExtraVars(pairs []string) ([]types.KeyValuePair, error) {
	var vars []types.KeyValuePair
	for _, pair := range pairs {
		key, value, _ := strings.Cut(pair, "=")
		if key == "" {
			return nil, fmt.Errorf("invalid variable %q, expected key=value", pair)
		}
		vars = append(vars, types.KeyValuePair{Key: key, Value: value, Enabled: true})
	}
	return vars, nil
}

// MissingVariables lists the {{name}} placeholders of req that vars do not resolve, in first-seen order
func MissingVariables(req *types.RequestConfig, vars []types.KeyValuePair) []string {
	fields := []string{req.URL, req.Body, req.Auth.Token, req.Auth.Username, req.Auth.Password, req.Auth.APIKey}
	for _, list := range [][]types.KeyValuePair{req.Headers, req.QueryParams, req.FormData} {
		for _, p := range list {
			if p.Enabled {
				fields = append(fields, p.Key, p.Value)
			}
		}
	}

	seen := make(map[string]bool)
	var missing []string
	for _, field := range fields {
		resolved := request.ReplaceVariables(field, vars)
		for _, match := range variablePattern.FindAllStringSubmatch(resolved, -1) {
			name := match[1]
			if !seen[name] {
				seen[name] = true
				missing = append(missing, name)
			}
		}
	}
	return missing
}

// ResolveFilePath finds a request file, trying common extensions when the exact path doesn't exist
func ResolveFilePath(basePath string) (string, error) {
	extensions := []string{"", ".json", ".yaml", ".yml", ".http"}

	for _, ext := range extensions {
		candidate := basePath + ext
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	if !filepath.IsAbs(basePath) && config.ConfigDir != "" {
		for _, ext := range extensions {
			candidate := filepath.Join(config.ConfigDir, "requests", basePath+ext)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}
	}

	return "", fmt.Errorf("file not found: %s (tried .json, .yaml, .yml, .http extensions)", basePath)
}

// IsInteractive checks if stdin is a terminal (not piped)
func IsInteractive() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// IsTerminal checks if stdout is a terminal
func IsTerminal() bool {
	stat, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

func orStdin(r io.Reader) io.Reader {
	if r == nil {
		return os.Stdin
	}
	return r
}

// captureVariables stores the values extracted from resp in the environment envName
func captureVariables(envs *environments.Manager, envName string, resp *types.ResponseData, rules []filter.Rule, stderr io.Writer) error {
	if envs == nil || envName == "" {
		return errors.New("cannot save extracted variables: no environment selected")
	}
	env, err := envs.Get(envName)
	if err != nil {
		return fmt.Errorf("cannot save extracted variables: %w", err)
	}

	pairs, err := filter.Extract(resp.Body, rules)
	if err != nil {
		return err
	}
	for _, p := range pairs {
		if err := envs.SetVariable(env.ID, p.Key, p.Value); err != nil {
			return fmt.Errorf("failed to save variable %s: %w", p.Key, err)
		}
		fmt.Fprintf(stderr, "Saved %s to %s\n", p.Key, env.Name)
	}
	return nil
}
