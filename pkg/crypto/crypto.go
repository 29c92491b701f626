package crypto

import (
	"crypto/rand"
	"math/big"
)

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRandomCode returns an uppercase alphanumeric code of n characters,
// suitable for invite codes.
func GenerateRandomCode(n uint) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphanumeric[RandIntn(len(alphanumeric))]
	}
	return string(b)
}

// RandIntn returns a uniform random value in [0, n). It panics if got a
// non-positive parameter.
func RandIntn(n int) int {
	r, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(err)
	}

	return int(r.Int64())
}

// Sample returns k distinct indices drawn uniformly from [0, n) without
// replacement, using a Fisher-Yates prefix shuffle. It panics if k > n.
func Sample(n, k int) []int {
	if k > n {
		panic("sample size exceeds population")
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	for i := 0; i < k; i++ {
		j := i + RandIntn(n-i)
		indices[i], indices[j] = indices[j], indices[i]
	}

	return indices[:k]
}
