// Package verification generates the one-time numeric codes used to prove
// ownership of a registered email address.
package verification

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	// CodeLength is the number of decimal digits in a verification code.
	CodeLength = 6
	// CodeTTL is how long an issued code stays valid.
	CodeTTL = 10 * time.Minute
)

// Generate returns a fixed-length decimal code with leading zeros preserved.
// Each call draws from crypto/rand; there is no shared generator state.
func Generate(length int) (string, error) {
	if length <= 0 {
		length = CodeLength
	}
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	num, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", length, num), nil
}
