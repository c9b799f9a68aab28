package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crediflow/los-backend/internal/pkg/logger"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	log, err := logger.New("test")
	require.NoError(t, err)
	return NewEngine(log)
}

func fieldErrors(t *testing.T, err error) []FieldError {
	t.Helper()
	require.Error(t, err)
	verr, ok := err.(*Error)
	require.True(t, ok, "expected *validation.Error, got %T", err)
	return verr.Fields
}

func TestValidateEmptyConfigIsNoOp(t *testing.T) {
	e := testEngine(t)
	assert.NoError(t, e.Validate(map[string]any{"x": "y"}, nil, nil))
	assert.NoError(t, e.Validate(map[string]any{"x": "y"}, map[string]any{}, nil))
	assert.NoError(t, e.Validate(nil, map[string]any{"fields": map[string]any{}}, nil))
}

func TestRequiredRule(t *testing.T) {
	e := testEngine(t)
	config := map[string]any{
		"fields": map[string]any{
			"pan": map[string]any{"required": true},
		},
	}

	errs := fieldErrors(t, e.Validate(map[string]any{}, config, nil))
	require.Len(t, errs, 1)
	assert.Equal(t, "pan", errs[0].FieldID)
	assert.Equal(t, "REQUIRED", errs[0].Code)

	errs = fieldErrors(t, e.Validate(map[string]any{"pan": "  "}, config, nil))
	assert.Equal(t, "REQUIRED", errs[0].Code)

	assert.NoError(t, e.Validate(map[string]any{"pan": "ABCDE1234F"}, config, nil))
}

func TestMinMaxRuleNumber(t *testing.T) {
	e := testEngine(t)
	config := map[string]any{
		"fields": map[string]any{
			"amount": map[string]any{
				"dataType": "NUMBER",
				"min":      float64(1000),
				"max":      float64(500000),
			},
		},
	}

	assert.NoError(t, e.Validate(map[string]any{"amount": "250000"}, config, nil))

	errs := fieldErrors(t, e.Validate(map[string]any{"amount": "500"}, config, nil))
	assert.Equal(t, "MIN_VALUE", errs[0].Code)

	errs = fieldErrors(t, e.Validate(map[string]any{"amount": "900000"}, config, nil))
	assert.Equal(t, "MAX_VALUE", errs[0].Code)

	errs = fieldErrors(t, e.Validate(map[string]any{"amount": "not-a-number"}, config, nil))
	assert.Equal(t, "INVALID_NUMBER", errs[0].Code)
}

func TestMinMaxRuleLength(t *testing.T) {
	e := testEngine(t)
	config := map[string]any{
		"fields": map[string]any{
			"name": map[string]any{
				"minLength": float64(3),
				"maxLength": float64(10),
			},
		},
	}

	assert.NoError(t, e.Validate(map[string]any{"name": "Asha"}, config, nil))

	errs := fieldErrors(t, e.Validate(map[string]any{"name": "Ab"}, config, nil))
	assert.Equal(t, "MIN_LENGTH", errs[0].Code)

	errs = fieldErrors(t, e.Validate(map[string]any{"name": "Abcdefghijk"}, config, nil))
	assert.Equal(t, "MAX_LENGTH", errs[0].Code)
}

func TestRegexRule(t *testing.T) {
	e := testEngine(t)
	config := map[string]any{
		"fields": map[string]any{
			"pincode": map[string]any{
				"pattern":        "^[1-9][0-9]{5}$",
				"patternMessage": "Enter a valid 6-digit pin code",
			},
		},
	}

	assert.NoError(t, e.Validate(map[string]any{"pincode": "560001"}, config, nil))

	errs := fieldErrors(t, e.Validate(map[string]any{"pincode": "0001"}, config, nil))
	assert.Equal(t, "INVALID_FORMAT", errs[0].Code)
	assert.Equal(t, "Enter a valid 6-digit pin code", errs[0].Message)
}

func TestPanRule(t *testing.T) {
	e := testEngine(t)
	config := map[string]any{
		"fields": map[string]any{
			"pan": map[string]any{"dataType": "PAN"},
		},
	}

	assert.NoError(t, e.Validate(map[string]any{"pan": "ABCDE1234F"}, config, nil))
	// Lower case is accepted, the rule upper-cases before matching.
	assert.NoError(t, e.Validate(map[string]any{"pan": "abcde1234f"}, config, nil))
	// Absent value passes; required is a separate rule.
	assert.NoError(t, e.Validate(map[string]any{}, config, nil))

	errs := fieldErrors(t, e.Validate(map[string]any{"pan": "1234ABCDE"}, config, nil))
	assert.Equal(t, "INVALID_PAN_FORMAT", errs[0].Code)
}

func TestAadhaarRule(t *testing.T) {
	e := testEngine(t)
	base := map[string]any{"dataType": "AADHAAR"}
	masked := map[string]any{"dataType": "AADHAAR", "allowMasked": true}

	cases := []struct {
		name     string
		rules    map[string]any
		value    string
		wantCode string
	}{
		{"valid plain", base, "234567890123", ""},
		{"valid spaced", base, "2345 6789 0123", ""},
		{"starts with zero", base, "0345 6789 0123", "INVALID_AADHAAR_NUMBER"},
		{"starts with one", base, "1345 6789 0123", "INVALID_AADHAAR_NUMBER"},
		{"too short", base, "2345 6789", "INVALID_AADHAAR_FORMAT"},
		{"masked rejected by default", base, "XXXX XXXX 0123", "INVALID_AADHAAR_FORMAT"},
		{"masked accepted when allowed", masked, "XXXX XXXX 0123", ""},
		{"masked lower case", masked, "xxxx xxxx 0123", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			config := map[string]any{"fields": map[string]any{"aadhaar": tc.rules}}
			err := e.Validate(map[string]any{"aadhaar": tc.value}, config, nil)
			if tc.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			errs := fieldErrors(t, err)
			assert.Equal(t, tc.wantCode, errs[0].Code)
		})
	}
}

func TestGstRule(t *testing.T) {
	e := testEngine(t)
	config := map[string]any{
		"fields": map[string]any{
			"gstin": map[string]any{"dataType": "GST"},
		},
	}

	assert.NoError(t, e.Validate(map[string]any{"gstin": "27ABCDE1234F1Z5"}, config, nil))

	errs := fieldErrors(t, e.Validate(map[string]any{"gstin": "27ABCDE1234F0A5"}, config, nil))
	assert.Equal(t, "INVALID_GST_FORMAT", errs[0].Code)
}

func TestMultiSelectRule(t *testing.T) {
	e := testEngine(t)
	config := map[string]any{
		"fields": map[string]any{
			"loanPurposes": map[string]any{
				"type":     "MULTI_SELECT",
				"minCount": float64(1),
				"maxCount": float64(3),
			},
		},
	}

	assert.NoError(t, e.Validate(map[string]any{"loanPurposes": []any{"working_capital"}}, config, nil))

	errs := fieldErrors(t, e.Validate(map[string]any{"loanPurposes": "working_capital"}, config, nil))
	assert.Equal(t, "INVALID_TYPE", errs[0].Code)

	errs = fieldErrors(t, e.Validate(map[string]any{"loanPurposes": []any{}}, config, nil))
	assert.Equal(t, "MIN_COUNT", errs[0].Code)

	errs = fieldErrors(t, e.Validate(map[string]any{"loanPurposes": []any{"a", "b", "c", "d"}}, config, nil))
	assert.Equal(t, "MAX_COUNT", errs[0].Code)
}

func TestWebViewFieldsSkipped(t *testing.T) {
	e := testEngine(t)
	config := map[string]any{
		"fields": map[string]any{
			"esignResult": map[string]any{"required": true},
			"fullName":    map[string]any{"required": true},
		},
	}
	screenConfig := map[string]any{
		"uiConfig": map[string]any{
			"fields": []any{
				map[string]any{"id": "esignResult", "type": "WEBVIEW"},
				map[string]any{"id": "fullName", "type": "TEXT"},
			},
		},
	}

	errs := fieldErrors(t, e.Validate(map[string]any{}, config, screenConfig))
	require.Len(t, errs, 1)
	assert.Equal(t, "fullName", errs[0].FieldID)
}

func TestValidateAggregatesSortedByField(t *testing.T) {
	e := testEngine(t)
	config := map[string]any{
		"fields": map[string]any{
			"zeta":  map[string]any{"required": true},
			"alpha": map[string]any{"required": true},
		},
	}

	errs := fieldErrors(t, e.Validate(map[string]any{}, config, nil))
	require.Len(t, errs, 2)
	assert.Equal(t, "alpha", errs[0].FieldID)
	assert.Equal(t, "zeta", errs[1].FieldID)
}
