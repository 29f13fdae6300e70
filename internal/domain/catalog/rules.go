package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// RuleSet is the decoded validation rule blob for one question. All fields
// are optional; Extra preserves unrecognized keys without consulting them.
type RuleSet struct {
	Regex     *string
	Min       *float64
	Max       *float64
	MinLength *int
	MaxLength *int
	Extra     map[string]interface{}
}

// InvalidRuleDefinitionError reports a rule blob that is not a flat JSON
// object. It is a catalog configuration error, not a user input error.
type InvalidRuleDefinitionError struct {
	Blob string
	Err  error
}

func (e *InvalidRuleDefinitionError) Error() string {
	return fmt.Sprintf("invalid validation rule definition %q: %v", e.Blob, e.Err)
}

func (e *InvalidRuleDefinitionError) Unwrap() error { return e.Err }

// ParseRules decodes a validation rule blob. An empty or whitespace-only blob
// yields an empty RuleSet; a non-empty blob that is not a flat JSON object
// fails with InvalidRuleDefinitionError. The parser is stateless.
func ParseRules(blob string) (RuleSet, error) {
	var rs RuleSet
	if strings.TrimSpace(blob) == "" {
		return rs, nil
	}

	raw := make(map[string]interface{})
	if err := json.Unmarshal([]byte(blob), &raw); err != nil {
		return rs, &InvalidRuleDefinitionError{Blob: blob, Err: err}
	}

	for key, value := range raw {
		switch key {
		case "regex":
			s, ok := value.(string)
			if !ok {
				return RuleSet{}, &InvalidRuleDefinitionError{Blob: blob, Err: fmt.Errorf("regex must be a string")}
			}
			rs.Regex = &s
		case "min":
			f, err := toFloat(value)
			if err != nil {
				return RuleSet{}, &InvalidRuleDefinitionError{Blob: blob, Err: fmt.Errorf("min: %w", err)}
			}
			rs.Min = &f
		case "max":
			f, err := toFloat(value)
			if err != nil {
				return RuleSet{}, &InvalidRuleDefinitionError{Blob: blob, Err: fmt.Errorf("max: %w", err)}
			}
			rs.Max = &f
		case "minLength":
			n, err := toInt(value)
			if err != nil {
				return RuleSet{}, &InvalidRuleDefinitionError{Blob: blob, Err: fmt.Errorf("minLength: %w", err)}
			}
			rs.MinLength = &n
		case "maxLength":
			n, err := toInt(value)
			if err != nil {
				return RuleSet{}, &InvalidRuleDefinitionError{Blob: blob, Err: fmt.Errorf("maxLength: %w", err)}
			}
			rs.MaxLength = &n
		default:
			if rs.Extra == nil {
				rs.Extra = make(map[string]interface{})
			}
			rs.Extra[key] = value
		}
	}

	return rs, nil
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("not a number: %v", v)
	}
}

func toInt(v interface{}) (int, error) {
	f, err := toFloat(v)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}
