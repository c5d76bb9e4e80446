// Package util contains any functions used across the application that don't match
// any other package
package util

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateToken returns n random bytes encoded as hex
func GenerateToken(n int) (string, error) {
	b := make([]byte, n)

	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

// HashToken returns the hex encoded sha256 of t. Used to store tokens
// that are handed out to users without keeping the raw value around
func HashToken(t string) string {
	h := sha256.Sum256([]byte(t))
	return hex.EncodeToString(h[:])
}

// NewID generates a letters-only ID of length n
func NewID(n int) (string, error) {
	return gonanoid.Generate(idCharset, n)
}
