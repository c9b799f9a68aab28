package validation

import (
	"fmt"
	"strings"
)

// FieldError is one failed check on one field.
type FieldError struct {
	FieldID string `json:"fieldId"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error aggregates every field failure from a single validation pass.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.FieldID, f.Code))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Result is the outcome of one rule on one field.
type Result struct {
	Valid   bool
	Code    string
	Message string
}

func pass() Result { return Result{Valid: true} }

func fail(code, message string) Result {
	return Result{Code: code, Message: message}
}

// Rule checks one concern against a field. Applicable inspects the
// authored field rules so that only relevant rules run; Validate gets the
// submitted value plus the full form for cross-field checks.
type Rule interface {
	Applicable(fieldRules map[string]any) bool
	Validate(fieldID string, value any, fieldRules map[string]any, formData map[string]any) Result
}

func stringValue(v any) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func ruleString(rules map[string]any, key string) string {
	s, _ := rules[key].(string)
	return s
}

func ruleNumber(rules map[string]any, key string) (float64, bool) {
	switch n := rules[key].(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

func messageOr(rules map[string]any, fallback string) string {
	if msg := ruleString(rules, "patternMessage"); msg != "" {
		return msg
	}
	return fallback
}
