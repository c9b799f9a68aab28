package flow

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/crediflow/los-backend/internal/pkg/errors"
	"github.com/crediflow/los-backend/internal/pkg/logger"
)

// Engine evaluates screen transitions. It is a pure evaluator over a
// Definition and the submitted form data; it never touches storage, so
// the same inputs always produce the same next screen.
type Engine struct {
	log *logger.Logger
}

func NewEngine(log *logger.Logger) *Engine {
	return &Engine{log: log.With("component", "FlowEngine")}
}

// NextScreen returns the screen that follows currentScreenID given the
// submitted form data. An empty return with nil error means the flow is
// complete. The evaluation order is fixed: screen-level conditions first
// (first match wins), then the "next" element, then "defaultNext".
func (e *Engine) NextScreen(def Definition, currentScreenID string, formData map[string]any) (string, error) {
	screen, ok := def.FindScreen(currentScreenID)
	if !ok {
		e.log.Error("current screen missing from flow definition",
			"screen_id", currentScreenID, "available", def.ScreenIDs())
		return "", fmt.Errorf("screen %q: %w", currentScreenID, apperrors.ErrScreenNotFound)
	}
	if screen.Raw == nil {
		// Bare-string screen entries carry no transitions.
		return "", nil
	}

	if next, decided := e.evalConditions(screen.Raw["conditions"], formData); decided {
		return e.resolveTarget(next), nil
	}

	nextObj, ok := screen.Raw["next"]
	if !ok || nextObj == nil {
		nextObj = screen.Raw["defaultNext"]
	}

	switch next := nextObj.(type) {
	case string:
		return e.resolveTarget(next), nil
	case map[string]any:
		if conditions, ok := next["conditions"].([]any); ok {
			for _, c := range conditions {
				cond, ok := c.(map[string]any)
				if !ok {
					continue
				}
				if e.evalDirectCondition(cond, formData) {
					target, _ := cond["screen"].(string)
					return e.resolveTarget(target), nil
				}
			}
		}
		fallback, _ := next["default"].(string)
		if fallback == "" {
			fallback, _ = next["defaultNext"].(string)
		}
		return e.resolveTarget(fallback), nil
	}

	// No next element at all: end of flow.
	return "", nil
}

func (e *Engine) resolveTarget(next string) string {
	if next == EndSentinel {
		return ""
	}
	return next
}

// evalConditions walks the screen-level conditions list. The boolean
// return reports whether a condition produced a usable target; an empty
// target string in a matched condition is treated as unset and falls
// through to the next/defaultNext handling.
func (e *Engine) evalConditions(conditionsObj any, formData map[string]any) (string, bool) {
	conditions, ok := conditionsObj.([]any)
	if !ok {
		return "", false
	}
	for _, c := range conditions {
		cond, ok := c.(map[string]any)
		if !ok {
			continue
		}
		if ifCond, ok := cond["if"].(map[string]any); ok {
			if !e.evalIfCondition(ifCond, formData) {
				continue
			}
			then, _ := cond["then"].(map[string]any)
			target, _ := then["nextScreen"].(string)
			if target == EndSentinel {
				return "", true
			}
			if target == "" {
				e.log.Warn("matched condition has empty nextScreen, falling through")
				continue
			}
			return target, true
		}
		if e.evalDirectCondition(cond, formData) {
			target, _ := cond["screen"].(string)
			if target == EndSentinel {
				return "", true
			}
			if target == "" {
				continue
			}
			return target, true
		}
	}
	return "", false
}

// evalIfCondition handles the {"source": "FORM_DATA", ...} shape. A
// condition without a fieldId is only defined for EQUALS "" and then
// tests whether the form data is empty.
func (e *Engine) evalIfCondition(ifCond map[string]any, formData map[string]any) bool {
	source, _ := ifCond["source"].(string)
	if source != "FORM_DATA" {
		e.log.Warn("unsupported condition source", "source", source)
		return false
	}
	operator, _ := ifCond["operator"].(string)
	expected := ifCond["value"]

	fieldID, _ := ifCond["fieldId"].(string)
	if fieldID == "" {
		if strings.EqualFold(operator, "equals") && expected == "" {
			return len(formData) == 0
		}
		e.log.Warn("condition missing fieldId", "operator", operator)
		return false
	}
	return e.evalOperator(operator, formData[fieldID], expected)
}

func (e *Engine) evalDirectCondition(cond map[string]any, formData map[string]any) bool {
	fieldID, _ := cond["field"].(string)
	operator, _ := cond["operator"].(string)
	return e.evalOperator(operator, formData[fieldID], cond["value"])
}

func (e *Engine) evalOperator(operator string, actual, expected any) bool {
	switch strings.ToLower(operator) {
	case "equals", "==":
		return valuesEqual(actual, expected)
	case "notequals", "!=":
		return !valuesEqual(actual, expected)
	case "greaterthan", ">":
		cmp, ok := compareValues(actual, expected)
		return ok && cmp > 0
	case "lessthan", "<":
		cmp, ok := compareValues(actual, expected)
		return ok && cmp < 0
	case "contains":
		if actual == nil {
			return false
		}
		return strings.Contains(fmt.Sprint(actual), fmt.Sprint(expected))
	default:
		e.log.Warn("unknown condition operator", "operator", operator)
		return false
	}
}

func valuesEqual(actual, expected any) bool {
	if an, aok := asNumber(actual); aok {
		if en, eok := asNumber(expected); eok {
			return an == en
		}
	}
	// Decoded JSON values may be lists or objects, which Go interface
	// equality cannot compare. Non-numeric operands compare by their
	// string representation.
	return fmt.Sprint(actual) == fmt.Sprint(expected)
}

// compareValues orders two values numerically when both are numbers and
// lexicographically otherwise. The boolean is false when either side is
// nil, in which case no ordering is defined.
func compareValues(actual, expected any) (int, bool) {
	if actual == nil || expected == nil {
		return 0, false
	}
	if an, aok := asNumber(actual); aok {
		if en, eok := asNumber(expected); eok {
			switch {
			case an < en:
				return -1, true
			case an > en:
				return 1, true
			}
			return 0, true
		}
	}
	return strings.Compare(fmt.Sprint(actual), fmt.Sprint(expected)), true
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
