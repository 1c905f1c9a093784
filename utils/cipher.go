package utils

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// EncodingType names one of the ciphers applied to leaked coordinates.
type EncodingType string

const (
	EncodingBase64 EncodingType = "base64"
	EncodingHex    EncodingType = "hex"
	EncodingROT13  EncodingType = "rot13"
	EncodingBinary EncodingType = "binary"
	EncodingASCII  EncodingType = "ascii"
)

var AllEncodings = []EncodingType{
	EncodingBase64,
	EncodingHex,
	EncodingROT13,
	EncodingBinary,
	EncodingASCII,
}

// Encode applies the cipher to s. Unknown types return s unchanged.
func Encode(s string, t EncodingType) string {
	switch t {
	case EncodingBase64:
		return base64.StdEncoding.EncodeToString([]byte(s))
	case EncodingHex:
		return hex.EncodeToString([]byte(s))
	case EncodingROT13:
		return ROT13(s)
	case EncodingBinary:
		parts := make([]string, 0, len(s))
		for _, b := range []byte(s) {
			parts = append(parts, fmt.Sprintf("%08b", b))
		}
		return strings.Join(parts, " ")
	case EncodingASCII:
		parts := make([]string, 0, len(s))
		for _, b := range []byte(s) {
			parts = append(parts, strconv.Itoa(int(b)))
		}
		return strings.Join(parts, " ")
	default:
		return s
	}
}

// Decode is the exact inverse of Encode for every supported cipher.
func Decode(s string, t EncodingType) (string, error) {
	switch t {
	case EncodingBase64:
		raw, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return "", fmt.Errorf("decode base64: %w", err)
		}
		return string(raw), nil
	case EncodingHex:
		raw, err := hex.DecodeString(s)
		if err != nil {
			return "", fmt.Errorf("decode hex: %w", err)
		}
		return string(raw), nil
	case EncodingROT13:
		// ROT13 is its own inverse.
		return ROT13(s), nil
	case EncodingBinary:
		return decodeGroups(s, 2)
	case EncodingASCII:
		return decodeGroups(s, 10)
	default:
		return "", fmt.Errorf("unknown encoding type %q", t)
	}
}

func decodeGroups(s string, base int) (string, error) {
	if s == "" {
		return "", nil
	}
	var out strings.Builder
	for _, group := range strings.Fields(s) {
		n, err := strconv.ParseUint(group, base, 8)
		if err != nil {
			return "", fmt.Errorf("decode group %q: %w", group, err)
		}
		out.WriteByte(byte(n))
	}
	return out.String(), nil
}

// ROT13 rotates letters only, preserving case; other runes pass through.
func ROT13(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z':
			return 'A' + (r-'A'+13)%26
		case r >= 'a' && r <= 'z':
			return 'a' + (r-'a'+13)%26
		default:
			return r
		}
	}, s)
}
