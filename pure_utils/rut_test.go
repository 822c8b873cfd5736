package pure_utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRut(t *testing.T) {
	tts := []struct {
		input    string
		expected string
		valid    bool
	}{
		{"11.111.111-1", "11111111-1", true},
		{"12.345.678-5", "12345678-5", true},
		{"12345678-5", "12345678-5", true},
		{"123456785", "12345678-5", true},
		{"7.654.321-6", "7654321-6", true},
		{"10.000.013-k", "10000013-K", true},
		{"12.345.678-4", "", false},
		{"abc", "", false},
		{"1", "", false},
		{"0-0", "", false},
	}

	for _, tt := range tts {
		t.Run(tt.input, func(t *testing.T) {
			rut, err := ValidateRut(tt.input)
			if !tt.valid {
				assert.ErrorIs(t, err, ErrInvalidRut)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, rut)
		})
	}
}

func TestDeduplicate(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, Deduplicate([]string{"a", "b", "a", "c", "b"}))
	assert.Empty(t, Deduplicate([]int{}))
}
