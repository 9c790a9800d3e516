package service

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"
)

// CodeAlphabet is uppercase letters and digits minus the easily confused
// I, L, O, 0 and 1.
const CodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// CodeLength is the length of a printed wristband code.
const CodeLength = 6

var alphabetSize = big.NewInt(int64(len(CodeAlphabet)))

// NewCode draws a uniformly random wristband code.
func NewCode() (string, error) {
	buf := make([]byte, CodeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		buf[i] = CodeAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// NormalizeCode trims and uppercases a code typed by a person.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

var handlePattern = regexp.MustCompile(`^[A-Za-z0-9._]{1,30}$`)

// NormalizeSocialHandle strips surrounding space and a leading "@", then
// checks the remaining handle.
func NormalizeSocialHandle(raw string) (string, error) {
	h := strings.TrimSpace(raw)
	h = strings.TrimPrefix(h, "@")
	h = strings.TrimSpace(h)
	if !handlePattern.MatchString(h) {
		return "", invalid("handle must be 1-30 letters, digits, dots or underscores")
	}
	return h, nil
}
