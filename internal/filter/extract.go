package filter

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmespath/go-jmespath"

	"github.com/studiowebux/restforge/internal/types"
)

// Rule captures the result of Expression into the variable Name
type Rule struct {
	Name       string
	Expression string
}

// ParseRules parses name=expression pairs. The expression may itself contain '='.
func ParseRules(pairs []string) ([]Rule, error) {
	rules := make([]Rule, 0, len(pairs))
	for _, pair := range pairs {
		name, expr, ok := strings.Cut(pair, "=")
		name, expr = strings.TrimSpace(name), strings.TrimSpace(expr)
		if !ok || name == "" || expr == "" {
			return nil, fmt.Errorf("invalid extraction %q (expected name=expression)", pair)
		}
		rules = append(rules, Rule{Name: name, Expression: expr})
	}
	return rules, nil
}

// Extract evaluates every rule against a JSON body and returns the captured
// values as enabled pairs, in rule order. Strings are taken verbatim, other
// scalars are formatted and objects or arrays are encoded as JSON.
func Extract(body string, rules []Rule) ([]types.KeyValuePair, error) {
	if len(rules) == 0 {
		return nil, nil
	}

	var data any
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return nil, fmt.Errorf("cannot extract variables: %w", ErrNotJSON)
	}

	pairs := make([]types.KeyValuePair, 0, len(rules))
	for _, rule := range rules {
		result, err := jmespath.Search(rule.Expression, data)
		if err != nil {
			return nil, fmt.Errorf("failed to extract variable %s using path %s: %w", rule.Name, rule.Expression, err)
		}

		var value string
		switch v := result.(type) {
		case string:
			value = v
		case float64:
			value = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			value = strconv.FormatBool(v)
		case nil:
			return nil, fmt.Errorf("variable %s: JMESPath %s returned null", rule.Name, rule.Expression)
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("variable %s: failed to encode extracted value: %w", rule.Name, err)
			}
			value = string(encoded)
		}

		pairs = append(pairs, types.KeyValuePair{Key: rule.Name, Value: value, Enabled: true})
	}
	return pairs, nil
}
