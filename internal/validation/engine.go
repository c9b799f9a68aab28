package validation

import (
	"sort"

	"github.com/crediflow/los-backend/internal/pkg/logger"
)

// Engine runs every applicable rule over every field in a validation
// config. Fields rendered inside a WebView are skipped: their values are
// produced by the embedded page, not the form.
type Engine struct {
	rules []Rule
	log   *logger.Logger
}

func NewEngine(log *logger.Logger) *Engine {
	return &Engine{
		rules: DefaultRules(),
		log:   log.With("component", "ValidationEngine"),
	}
}

// Validate checks formData against validationConfig. A nil or empty
// config is a no-op. screenConfig, when present, supplies the field list
// used to detect WebView fields; it may be nil. Returns *Error when any
// field fails.
func (e *Engine) Validate(formData, validationConfig, screenConfig map[string]any) error {
	if len(validationConfig) == 0 {
		e.log.Debug("validation config empty, skipping")
		return nil
	}
	fields, _ := validationConfig["fields"].(map[string]any)
	if len(fields) == 0 {
		e.log.Debug("no fields in validation config, skipping")
		return nil
	}

	webViewFields := webViewFieldIDs(screenConfig)

	fieldIDs := make([]string, 0, len(fields))
	for id := range fields {
		fieldIDs = append(fieldIDs, id)
	}
	sort.Strings(fieldIDs)

	var errs []FieldError
	for _, fieldID := range fieldIDs {
		if webViewFields[fieldID] {
			e.log.Debug("skipping WebView field", "field_id", fieldID)
			continue
		}
		fieldRules, ok := fields[fieldID].(map[string]any)
		if !ok {
			continue
		}
		for _, rule := range e.rules {
			if !rule.Applicable(fieldRules) {
				continue
			}
			result := rule.Validate(fieldID, formData[fieldID], fieldRules, formData)
			if !result.Valid {
				errs = append(errs, FieldError{
					FieldID: fieldID,
					Code:    result.Code,
					Message: result.Message,
				})
			}
		}
	}
	if len(errs) > 0 {
		return &Error{Fields: errs}
	}
	return nil
}

// webViewFieldIDs collects field ids typed WEBVIEW or carrying a webView
// block. The field list lives either at uiConfig.fields or directly at
// fields depending on how the screen config was authored.
func webViewFieldIDs(screenConfig map[string]any) map[string]bool {
	out := map[string]bool{}
	if screenConfig == nil {
		return out
	}
	fieldsObj := screenConfig["fields"]
	if uiConfig, ok := screenConfig["uiConfig"].(map[string]any); ok {
		if f, ok := uiConfig["fields"]; ok {
			fieldsObj = f
		}
	}
	fields, ok := fieldsObj.([]any)
	if !ok {
		return out
	}
	for _, f := range fields {
		field, ok := f.(map[string]any)
		if !ok {
			continue
		}
		fieldType, _ := field["type"].(string)
		_, hasWebView := field["webView"]
		if fieldType == "WEBVIEW" || hasWebView {
			if id, ok := field["id"].(string); ok && id != "" {
				out[id] = true
			}
		}
	}
	return out
}
