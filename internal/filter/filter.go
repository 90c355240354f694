// Package filter narrows and reshapes JSON response bodies with JMESPath.
package filter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/jmespath/go-jmespath"

	"github.com/studiowebux/restforge/internal/types"
)

// QueryShellTimeout is the maximum time allowed for a $(...) query
const QueryShellTimeout = 30 * time.Second

// ErrNotJSON is returned when an expression is applied to a non-JSON body
var ErrNotJSON = errors.New("response body is not JSON")

var shellPattern = regexp.MustCompile(`^\$\((.+)\)$`)

// Apply runs filter then query over body.
// Filter narrows results (e.g. items[?status=='active']).
// Query selects fields (e.g. [].name), or pipes the body through a shell
// command when written as $(command).
func Apply(ctx context.Context, body, filter, query string) (string, error) {
	result := body

	if filter != "" {
		filtered, err := Search(result, filter)
		if err != nil {
			return "", fmt.Errorf("failed to apply filter: %w", err)
		}
		result = filtered
	}

	if query == "" {
		return result, nil
	}

	if matches := shellPattern.FindStringSubmatch(query); len(matches) > 1 {
		queried, err := runShell(ctx, result, matches[1])
		if err != nil {
			return "", fmt.Errorf("failed to execute query shell command: %w", err)
		}
		return queried, nil
	}

	queried, err := Search(result, query)
	if err != nil {
		return "", fmt.Errorf("failed to apply query: %w", err)
	}
	return queried, nil
}

// ApplyToResponse replaces resp.Body with the filtered body and updates its size.
// resp is not modified.
func ApplyToResponse(ctx context.Context, resp *types.ResponseData, filter, query string) (*types.ResponseData, error) {
	if resp == nil || (filter == "" && query == "") {
		return resp, nil
	}

	body, err := Apply(ctx, resp.Body, filter, query)
	if err != nil {
		return nil, err
	}

	out := *resp
	out.Body = body
	out.Size = int64(len(body))
	return &out, nil
}

// Search evaluates a JMESPath expression against a JSON document and returns
// the indented JSON result. A missing value yields "null".
func Search(document, expression string) (string, error) {
	var data any
	if err := json.Unmarshal([]byte(document), &data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotJSON, err)
	}

	jp, err := jmespath.Compile(expression)
	if err != nil {
		return "", fmt.Errorf("invalid JMESPath expression '%s': %w", expression, err)
	}

	result, err := jp.Search(data)
	if err != nil {
		return "", fmt.Errorf("JMESPath search failed: %w", err)
	}
	if result == nil {
		return "null", nil
	}

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(output), nil
}

func runShell(ctx context.Context, body, command string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryShellTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Stdin = strings.NewReader(body)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := err.Error()
		if stderr.Len() > 0 {
			msg = strings.TrimSpace(stderr.String())
		}
		return "", fmt.Errorf("command '%s' failed: %s", command, msg)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// IsValidJMESPath checks if an expression is valid JMESPath syntax
func IsValidJMESPath(expression string) bool {
	_, err := jmespath.Compile(expression)
	return err == nil
}

// IsShellCommand checks if a query is a shell command (starts with $(...))
func IsShellCommand(query string) bool {
	return shellPattern.MatchString(query)
}
