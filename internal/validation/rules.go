package validation

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	panPattern           = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]{1}$`)
	fullAadhaarPattern   = regexp.MustCompile(`^[0-9]{4}\s?[0-9]{4}\s?[0-9]{4}$`)
	maskedAadhaarPattern = regexp.MustCompile(`^[Xx]{4}\s?[Xx]{4}\s?[0-9]{4}$`)
	gstPattern           = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z]{1}[1-9A-Z]{1}Z[0-9A-Z]{1}$`)
)

// DefaultRules returns the standard rule set in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		RequiredRule{},
		MinMaxRule{},
		RegexRule{},
		PanRule{},
		AadhaarRule{},
		GstRule{},
		MultiSelectRule{},
	}
}

// RequiredRule rejects absent or blank values when required is true.
type RequiredRule struct{}

func (RequiredRule) Applicable(rules map[string]any) bool {
	return rules["required"] == true
}

func (RequiredRule) Validate(fieldID string, value any, rules, formData map[string]any) Result {
	if value == nil || stringValue(value) == "" {
		return fail("REQUIRED", "This field is required")
	}
	return pass()
}

// MinMaxRule bounds numeric values (dataType NUMBER) or string length.
type MinMaxRule struct{}

func (MinMaxRule) Applicable(rules map[string]any) bool {
	_, hasMin := rules["min"]
	_, hasMax := rules["max"]
	_, hasMinLen := rules["minLength"]
	_, hasMaxLen := rules["maxLength"]
	return hasMin || hasMax || hasMinLen || hasMaxLen
}

func (MinMaxRule) Validate(fieldID string, value any, rules, formData map[string]any) Result {
	if value == nil {
		return pass()
	}
	dataType := ruleString(rules, "dataType")
	if dataType == "NUMBER" {
		num, err := strconv.ParseFloat(stringValue(value), 64)
		if err != nil {
			return fail("INVALID_NUMBER", "Invalid number format")
		}
		if min, ok := ruleNumber(rules, "min"); ok && num < min {
			return fail("MIN_VALUE", "Value must be at least "+formatNumber(min))
		}
		if max, ok := ruleNumber(rules, "max"); ok && num > max {
			return fail("MAX_VALUE", "Value must be at most "+formatNumber(max))
		}
		return pass()
	}
	length := len(stringValue(value))
	if min, ok := ruleNumber(rules, "minLength"); ok && length < int(min) {
		return fail("MIN_LENGTH", "Minimum length is "+formatNumber(min))
	}
	if max, ok := ruleNumber(rules, "maxLength"); ok && length > int(max) {
		return fail("MAX_LENGTH", "Maximum length is "+formatNumber(max))
	}
	return pass()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RegexRule matches the value against an authored pattern.
type RegexRule struct{}

func (RegexRule) Applicable(rules map[string]any) bool {
	_, ok := rules["pattern"]
	return ok
}

func (RegexRule) Validate(fieldID string, value any, rules, formData map[string]any) Result {
	if value == nil {
		return pass()
	}
	pattern := ruleString(rules, "pattern")
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fail("INVALID_FORMAT", messageOr(rules, "Invalid format"))
	}
	if !re.MatchString(stringValue(value)) {
		return fail("INVALID_FORMAT", messageOr(rules, "Invalid format"))
	}
	return pass()
}

// PanRule checks the Permanent Account Number shape: five letters, four
// digits, one letter.
type PanRule struct{}

func (PanRule) Applicable(rules map[string]any) bool {
	return typeTagged(rules, "PAN")
}

func (PanRule) Validate(fieldID string, value any, rules, formData map[string]any) Result {
	pan := strings.ToUpper(stringValue(value))
	if pan == "" {
		return pass()
	}
	if !panPattern.MatchString(pan) {
		return fail("INVALID_PAN_FORMAT", messageOr(rules,
			"Invalid PAN format. Must be 5 letters, 4 digits, 1 letter (e.g., ABCDE1234F)"))
	}
	return pass()
}

// AadhaarRule accepts full 12-digit Aadhaar numbers and, when allowMasked
// is set, the masked XXXX XXXX 1234 form. Full numbers may not start with
// 0 or 1.
type AadhaarRule struct{}

func (AadhaarRule) Applicable(rules map[string]any) bool {
	return typeTagged(rules, "AADHAAR")
}

func (AadhaarRule) Validate(fieldID string, value any, rules, formData map[string]any) Result {
	aadhaar := stringValue(value)
	if aadhaar == "" {
		return pass()
	}
	allowMasked := rules["allowMasked"] == true
	validFull := fullAadhaarPattern.MatchString(aadhaar)
	validMasked := allowMasked && maskedAadhaarPattern.MatchString(aadhaar)
	if !validFull && !validMasked {
		msg := "Invalid Aadhaar format. Must be 12 digits (e.g., 1234 5678 9012)"
		if allowMasked {
			msg = "Invalid Aadhaar format. Must be 12 digits (e.g., 1234 5678 9012) or masked (e.g., XXXX XXXX 1234)"
		}
		return fail("INVALID_AADHAAR_FORMAT", messageOr(rules, msg))
	}
	if validFull {
		digits := strings.ReplaceAll(aadhaar, " ", "")
		if strings.HasPrefix(digits, "0") || strings.HasPrefix(digits, "1") {
			return fail("INVALID_AADHAAR_NUMBER", messageOr(rules,
				"Invalid Aadhaar number. Cannot start with 0 or 1"))
		}
	}
	return pass()
}

// GstRule checks the 15-character GST identification number shape.
type GstRule struct{}

func (GstRule) Applicable(rules map[string]any) bool {
	return typeTagged(rules, "GST")
}

func (GstRule) Validate(fieldID string, value any, rules, formData map[string]any) Result {
	gst := strings.ToUpper(stringValue(value))
	if gst == "" {
		return pass()
	}
	if !gstPattern.MatchString(gst) {
		return fail("INVALID_GST_FORMAT", messageOr(rules,
			"Invalid GST format. Must be 15 characters (e.g., 27ABCDE1234F1Z5)"))
	}
	return pass()
}

// MultiSelectRule bounds the number of selected options.
type MultiSelectRule struct{}

func (MultiSelectRule) Applicable(rules map[string]any) bool {
	return rules["type"] == "MULTI_SELECT"
}

func (MultiSelectRule) Validate(fieldID string, value any, rules, formData map[string]any) Result {
	if value == nil {
		return pass()
	}
	values, ok := value.([]any)
	if !ok {
		return fail("INVALID_TYPE", "Expected a list of values")
	}
	count := len(values)
	if min, ok := ruleNumber(rules, "minCount"); ok && count < int(min) {
		return fail("MIN_COUNT", "Select at least "+formatNumber(min)+" options")
	}
	if max, ok := ruleNumber(rules, "maxCount"); ok && count > int(max) {
		return fail("MAX_COUNT", "Select at most "+formatNumber(max)+" options")
	}
	return pass()
}

// typeTagged reports whether the field rules mark the field as the given
// logical data type, either via dataType/type or a pattern alias.
func typeTagged(rules map[string]any, tag string) bool {
	if strings.EqualFold(ruleString(rules, "dataType"), tag) {
		return true
	}
	if strings.EqualFold(ruleString(rules, "type"), tag) {
		return true
	}
	if pattern := ruleString(rules, "pattern"); pattern != "" {
		return strings.Contains(pattern, tag)
	}
	return false
}
