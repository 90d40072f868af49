package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNumericCode_Length(t *testing.T) {
	for _, n := range []int{1, 6, 12} {
		code, err := NewNumericCode(n)
		require.NoError(t, err)
		assert.Len(t, code, n)
	}
}

func TestNewNumericCode_DefaultLength(t *testing.T) {
	code, err := NewNumericCode(0)
	require.NoError(t, err)
	assert.Len(t, code, 6)
}

func TestNewNumericCode_DigitsOnly(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := NewNumericCode(6)
		require.NoError(t, err)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', "unexpected rune %q in %q", r, code)
		}
	}
}

func TestNewNumericCode_CoversEveryDigit(t *testing.T) {
	seen := map[rune]bool{}
	for i := 0; i < 200 && len(seen) < 10; i++ {
		code, err := NewNumericCode(6)
		require.NoError(t, err)
		for _, r := range code {
			seen[r] = true
		}
	}
	assert.Len(t, seen, 10)
}
