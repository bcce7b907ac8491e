package registration

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringListDecoding(t *testing.T) {
	cases := map[string]StringList{
		`["go", " rust ", ""]`: {"go", "rust"},
		`"go, rust,,"`:         {"go", "rust"},
		`""`:                   nil,
		`null`:                 nil,
	}
	for raw, want := range cases {
		var got StringList
		require.NoError(t, json.Unmarshal([]byte(raw), &got), raw)
		assert.Equal(t, want, got, raw)
	}

	var bad StringList
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &bad))
}

func TestValidationErrorNamesFields(t *testing.T) {
	v := newValidator()
	err := validationError(v.Struct(SubmitInput{Email: "a@x.com"}))
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "fullname")
	assert.Contains(t, err.Error(), "phoneNumber")
	assert.Contains(t, err.Error(), "password")
	assert.NotContains(t, err.Error(), "email")
}
