package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"path"
	"strings"

	"github.com/google/uuid"
)

// NewId returns a fresh opaque identifier.
func NewId() string {
	return uuid.NewString()
}

// NewObjectName builds a unique storage object name for an upload,
// keeping the original extension.
func NewObjectName(owner, fileName string) string {
	ext := strings.ToLower(path.Ext(path.Base(fileName)))
	return owner + "/" + uuid.NewString() + ext
}

// GenerateRandomString generates a cryptographically secure random string
// using the provided charset and length
func GenerateRandomString(length int, charset string) string {
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			panic(fmt.Sprintf("failed to generate random string: %v", err))
		}
		b[i] = charset[n.Int64()]
	}
	return string(b)
}

// GenerateUploadToken returns the one-shot token embedded into pre-signed
// upload URLs.
func GenerateUploadToken() string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	return GenerateRandomString(32, charset)
}
