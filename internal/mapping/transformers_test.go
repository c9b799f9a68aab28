package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFullNameTransformer(t *testing.T) {
	tr := FullNameTransformer{}

	got := tr.Transform(map[string]any{
		"firstName":  "Asha",
		"middleName": "K",
		"lastName":   "Patel",
	}, []string{"firstName", "middleName", "lastName"})
	assert.Equal(t, "Asha K Patel", got)

	// Empty and absent parts are dropped, never double-spaced.
	got = tr.Transform(map[string]any{
		"firstName": "Asha",
		"lastName":  "Patel",
	}, []string{"firstName", "middleName", "lastName"})
	assert.Equal(t, "Asha Patel", got)

	got = tr.Transform(map[string]any{}, []string{"firstName", "lastName"})
	assert.Equal(t, "", got)
}

func TestUpperCaseTransformer(t *testing.T) {
	tr := UpperCaseTransformer{}

	assert.Equal(t, "ABCDE1234F", tr.Transform(map[string]any{"pan": "abcde1234f"}, []string{"pan"}))
	assert.Nil(t, tr.Transform(map[string]any{}, []string{"pan"}))
	assert.Nil(t, tr.Transform(map[string]any{"pan": "x"}, nil))
}
