package mapping

import (
	"fmt"
	"strings"
)

// Transformer derives one value from the submitted form. Registered by
// name; mapping configs reference them via the "transformer" key.
type Transformer interface {
	Transform(formData map[string]any, sourceFields []string) any
}

// DefaultTransformers returns the built-in transformer registry.
func DefaultTransformers() map[string]Transformer {
	return map[string]Transformer{
		"fullNameTransformer":  FullNameTransformer{},
		"upperCaseTransformer": UpperCaseTransformer{},
	}
}

// FullNameTransformer joins the non-empty source values with spaces.
type FullNameTransformer struct{}

func (FullNameTransformer) Transform(formData map[string]any, sourceFields []string) any {
	parts := make([]string, 0, len(sourceFields))
	for _, fieldID := range sourceFields {
		value := formData[fieldID]
		if value == nil {
			continue
		}
		s := fmt.Sprint(value)
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// UpperCaseTransformer upper-cases the first source value.
type UpperCaseTransformer struct{}

func (UpperCaseTransformer) Transform(formData map[string]any, sourceFields []string) any {
	if len(sourceFields) == 0 {
		return nil
	}
	value := formData[sourceFields[0]]
	if value == nil {
		return nil
	}
	return strings.ToUpper(fmt.Sprint(value))
}
