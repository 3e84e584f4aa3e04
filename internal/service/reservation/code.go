package reservation

import (
	"crypto/rand"
	"fmt"
)

// CodeAlphabet leaves out I, O, 1 and 0 so codes survive being read aloud.
const (
	CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	CodeLength   = 8
)

// CodeGenerator produces a candidate confirmation code.
type CodeGenerator func() (string, error)

// GenerateConfirmationCode draws CodeLength characters from CodeAlphabet.
// 256 is a multiple of the alphabet size, so byte%len keeps the draw uniform.
func GenerateConfirmationCode() (string, error) {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = CodeAlphabet[int(b)%len(CodeAlphabet)]
	}
	return string(buf), nil
}
