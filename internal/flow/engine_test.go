package flow

import (
	"errors"
	"testing"

	apperrors "github.com/crediflow/los-backend/internal/pkg/errors"
	"github.com/crediflow/los-backend/internal/pkg/logger"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return NewEngine(log)
}

func TestNextScreenConditions(t *testing.T) {
	def := Definition{
		"startScreen": "loan_amount",
		"screens": map[string]any{
			"loan_amount": map[string]any{
				"conditions": []any{
					map[string]any{
						"if": map[string]any{
							"source":   "FORM_DATA",
							"fieldId":  "amount",
							"operator": "greaterThan",
							"value":    float64(500000),
						},
						"then": map[string]any{"nextScreen": "income_proof"},
					},
					map[string]any{
						"if": map[string]any{
							"source":   "FORM_DATA",
							"fieldId":  "amount",
							"operator": "greaterThan",
							"value":    float64(100000),
						},
						"then": map[string]any{"nextScreen": "basic_kyc"},
					},
				},
				"defaultNext": "instant_offer",
			},
			"income_proof":  map[string]any{"next": "review"},
			"basic_kyc":     map[string]any{"next": "review"},
			"instant_offer": map[string]any{"next": "review"},
			"review":        map[string]any{"next": EndSentinel},
		},
	}
	e := testEngine(t)

	cases := []struct {
		name     string
		formData map[string]any
		want     string
	}{
		{"first match wins", map[string]any{"amount": float64(900000)}, "income_proof"},
		{"second condition", map[string]any{"amount": float64(200000)}, "basic_kyc"},
		{"no match falls to default", map[string]any{"amount": float64(50000)}, "instant_offer"},
		{"missing field falls to default", map[string]any{}, "instant_offer"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := e.NextScreen(def, "loan_amount", tc.formData)
			if err != nil {
				t.Fatalf("NextScreen: %v", err)
			}
			if got != tc.want {
				t.Fatalf("NextScreen = %q, want %q", got, tc.want)
			}
		})
	}

	// Sentinel target means the flow is complete.
	got, err := e.NextScreen(def, "review", nil)
	if err != nil {
		t.Fatalf("NextScreen review: %v", err)
	}
	if got != "" {
		t.Fatalf("expected flow end, got %q", got)
	}
}

func TestNextScreenDirectConditionShape(t *testing.T) {
	def := Definition{
		"screens": []any{
			map[string]any{
				"id": "employment",
				"conditions": []any{
					map[string]any{
						"field":    "employmentType",
						"operator": "equals",
						"value":    "SALARIED",
						"screen":   "salary_details",
					},
					map[string]any{
						"field":    "employmentType",
						"operator": "equals",
						"value":    "SELF_EMPLOYED",
						"screen":   "business_details",
					},
				},
				"defaultNext": "other_income",
			},
		},
	}
	e := testEngine(t)

	got, err := e.NextScreen(def, "employment", map[string]any{"employmentType": "SELF_EMPLOYED"})
	if err != nil {
		t.Fatalf("NextScreen: %v", err)
	}
	if got != "business_details" {
		t.Fatalf("NextScreen = %q, want business_details", got)
	}
}

func TestNextScreenNestedNextConditions(t *testing.T) {
	def := Definition{
		"screens": map[string]any{
			"kyc": map[string]any{
				"next": map[string]any{
					"conditions": []any{
						map[string]any{
							"field":    "kycMode",
							"operator": "equals",
							"value":    "AADHAAR",
							"screen":   "aadhaar_otp",
						},
					},
					"default": "manual_kyc",
				},
			},
		},
	}
	e := testEngine(t)

	got, err := e.NextScreen(def, "kyc", map[string]any{"kycMode": "AADHAAR"})
	if err != nil {
		t.Fatalf("NextScreen: %v", err)
	}
	if got != "aadhaar_otp" {
		t.Fatalf("NextScreen = %q, want aadhaar_otp", got)
	}

	got, err = e.NextScreen(def, "kyc", map[string]any{"kycMode": "VIDEO"})
	if err != nil {
		t.Fatalf("NextScreen: %v", err)
	}
	if got != "manual_kyc" {
		t.Fatalf("NextScreen = %q, want manual_kyc", got)
	}
}

func TestNextScreenStringListFormat(t *testing.T) {
	def := Definition{"screens": []any{"welcome", "details"}}
	e := testEngine(t)

	// Bare-string entries carry no transitions, so the flow ends there.
	got, err := e.NextScreen(def, "welcome", nil)
	if err != nil {
		t.Fatalf("NextScreen: %v", err)
	}
	if got != "" {
		t.Fatalf("NextScreen = %q, want flow end", got)
	}
}

func TestNextScreenUnknownScreen(t *testing.T) {
	def := Definition{"screens": map[string]any{"a": map[string]any{}}}
	e := testEngine(t)

	_, err := e.NextScreen(def, "missing", nil)
	if !errors.Is(err, apperrors.ErrScreenNotFound) {
		t.Fatalf("expected ErrScreenNotFound, got %v", err)
	}
}

func TestNextScreenEmptyFormDataCondition(t *testing.T) {
	def := Definition{
		"screens": map[string]any{
			"resume": map[string]any{
				"conditions": []any{
					map[string]any{
						"if": map[string]any{
							"source":   "FORM_DATA",
							"operator": "equals",
							"value":    "",
						},
						"then": map[string]any{"nextScreen": "welcome_back"},
					},
				},
				"defaultNext": "continue_here",
			},
		},
	}
	e := testEngine(t)

	got, err := e.NextScreen(def, "resume", map[string]any{})
	if err != nil {
		t.Fatalf("NextScreen: %v", err)
	}
	if got != "welcome_back" {
		t.Fatalf("NextScreen = %q, want welcome_back", got)
	}

	got, err = e.NextScreen(def, "resume", map[string]any{"any": "thing"})
	if err != nil {
		t.Fatalf("NextScreen: %v", err)
	}
	if got != "continue_here" {
		t.Fatalf("NextScreen = %q, want continue_here", got)
	}
}

func TestNextScreenMultiSelectCondition(t *testing.T) {
	def := Definition{
		"screens": []any{
			map[string]any{
				"id": "loan_purpose",
				"conditions": []any{
					map[string]any{
						"field":    "purposes",
						"operator": "equals",
						"value":    []any{"WORKING_CAPITAL", "EXPANSION"},
						"screen":   "expansion_details",
					},
				},
				"defaultNext": "collateral",
			},
		},
	}
	e := testEngine(t)

	// Multi-select values decode as lists; the comparison must not panic.
	got, err := e.NextScreen(def, "loan_purpose", map[string]any{
		"purposes": []any{"WORKING_CAPITAL", "EXPANSION"},
	})
	if err != nil {
		t.Fatalf("NextScreen: %v", err)
	}
	if got != "expansion_details" {
		t.Fatalf("NextScreen = %q, want expansion_details", got)
	}

	got, err = e.NextScreen(def, "loan_purpose", map[string]any{
		"purposes": []any{"WORKING_CAPITAL"},
	})
	if err != nil {
		t.Fatalf("NextScreen: %v", err)
	}
	if got != "collateral" {
		t.Fatalf("NextScreen = %q, want collateral", got)
	}
}

func TestEvalOperator(t *testing.T) {
	e := testEngine(t)

	cases := []struct {
		name     string
		operator string
		actual   any
		expected any
		want     bool
	}{
		{"equals string", "equals", "yes", "yes", true},
		{"equals symbol", "==", "yes", "no", false},
		{"equals numeric cross-type", "equals", 5, float64(5), true},
		{"notEquals", "notEquals", "a", "b", true},
		{"greaterThan numbers", "greaterThan", float64(10), float64(5), true},
		{"greaterThan symbol", ">", float64(3), float64(5), false},
		{"lessThan", "lessThan", float64(3), float64(5), true},
		{"lessThan lexicographic", "<", "apple", "banana", true},
		{"greaterThan nil actual", ">", nil, float64(5), false},
		{"contains", "contains", "gold plan", "gold", true},
		{"contains nil actual", "contains", nil, "gold", false},
		{"equals list operands", "equals", []any{"a", "b"}, []any{"a", "b"}, true},
		{"equals list mismatch", "equals", []any{"a", "b"}, []any{"a"}, false},
		{"notEquals list operands", "notEquals", []any{"a"}, []any{"b"}, true},
		{"equals object operands", "equals", map[string]any{"k": "v"}, map[string]any{"k": "v"}, true},
		{"unknown operator", "matches", "a", "a", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := e.evalOperator(tc.operator, tc.actual, tc.expected); got != tc.want {
				t.Fatalf("evalOperator(%q, %v, %v) = %v, want %v",
					tc.operator, tc.actual, tc.expected, got, tc.want)
			}
		})
	}
}

func TestScreensNormalization(t *testing.T) {
	cases := []struct {
		name string
		def  Definition
		want []string
	}{
		{
			"map keyed by id sorts keys",
			Definition{"screens": map[string]any{"b": map[string]any{}, "a": map[string]any{}, "c": map[string]any{}}},
			[]string{"a", "b", "c"},
		},
		{
			"list of objects keeps order",
			Definition{"screens": []any{
				map[string]any{"id": "one"},
				map[string]any{"screenId": "two"},
				map[string]any{"noid": true},
			}},
			[]string{"one", "two"},
		},
		{
			"list of strings",
			Definition{"screens": []any{"x", "", "y"}},
			[]string{"x", "y"},
		},
		{
			"missing screens element",
			Definition{},
			nil,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.def.ScreenIDs()
			if len(got) != len(tc.want) {
				t.Fatalf("ScreenIDs = %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("ScreenIDs = %v, want %v", got, tc.want)
				}
			}
		})
	}
}
