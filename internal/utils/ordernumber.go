package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// GenerateOrderNumber builds a human-readable order reference,
// e.g. ORD-20260831-142501-8317.
func GenerateOrderNumber() string {
	now := time.Now().UTC()
	datePart := now.Format("20060102-150405")

	// 4-digit cryptographic random
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		// fallback: time-based entropy
		n = big.NewInt(now.UnixNano() % 10000)
	}

	return fmt.Sprintf("ORD-%s-%04d", datePart, n.Int64())
}
