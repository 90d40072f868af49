package utils

import (
	"crypto/rand"
	"math/big"
)

const digits = "0123456789"

// NewNumericCode returns a uniformly random string of n decimal digits.
// Leading zeros are kept, so "012345" and "12345" are different codes.
func NewNumericCode(n int) (string, error) {
	if n <= 0 {
		n = 6
	}
	max := big.NewInt(int64(len(digits)))
	b := make([]byte, n)
	for i := range b {
		d, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = digits[d.Int64()]
	}
	return string(b), nil
}
