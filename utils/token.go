package utils

import (
	"math/rand"
)

const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateAccessCode produces the opaque per-user code handed out at
// registration. It is an identifier, not a cryptographic credential.
func GenerateAccessCode(length int) string {
	code := make([]byte, length)
	for i := range code {
		code[i] = codeCharset[rand.Intn(len(codeCharset))]
	}
	return string(code)
}
