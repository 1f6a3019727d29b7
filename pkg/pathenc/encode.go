// Package pathenc translates logical store paths into filesystem-safe
// physical names and back.
//
// Three layers compose into HybridEncode: a reversible per-byte escape
// (EncodeFilename / DecodeFilename), a guard against Windows device names
// and trailing dots or spaces (AuxEncode), and a hashed, length-bounded
// fallback for paths whose reversible form is too long.
package pathenc

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidEncoding is returned by DecodeFilename when the input contains
// a token the encoder never produces.
var ErrInvalidEncoding = errors.New("invalid encoded filename")

// escapeChar introduces the two-byte case escape ('A' -> "_a").
const escapeChar = '_'

// winReserved are printable characters Windows does not allow in names.
const winReserved = "\\:*?\"<>|"

var (
	encodeTable [256]string
	decodeTable map[string]byte
	lowerTable  [256]string
)

func init() {
	for i := 0; i < 256; i++ {
		encodeTable[i] = string([]byte{byte(i)})
	}
	for i := 0; i < 32; i++ {
		encodeTable[i] = hexEscape(byte(i))
	}
	for i := 126; i < 256; i++ {
		encodeTable[i] = hexEscape(byte(i))
	}
	for i := 0; i < len(winReserved); i++ {
		encodeTable[winReserved[i]] = hexEscape(winReserved[i])
	}
	lowerTable = encodeTable
	for c := 'A'; c <= 'Z'; c++ {
		lower := string([]byte{byte(c - 'A' + 'a')})
		encodeTable[c] = string(escapeChar) + lower
		lowerTable[c] = lower
	}
	encodeTable[escapeChar] = string([]byte{escapeChar, escapeChar})

	decodeTable = make(map[string]byte, len(encodeTable))
	for i, tok := range encodeTable {
		decodeTable[tok] = byte(i)
	}
}

// hexEscape returns the "~xx" form of b.
func hexEscape(b byte) string {
	return fmt.Sprintf("~%02x", b)
}

// EncodeFilename escapes every byte of name that is unsafe on common
// filesystems. Uppercase letters become "_" plus the lowercase letter so
// the result survives case-folding filesystems. The mapping is reversible
// with DecodeFilename.
func EncodeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(name); i++ {
		b.WriteString(encodeTable[name[i]])
	}
	return b.String()
}

// DecodeFilename reverses EncodeFilename. Tokens are matched greedily from
// the shortest (1 byte) to the longest (3 bytes).
func DecodeFilename(s string) (string, error) {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); {
		matched := false
		for l := 1; l <= 3 && i+l <= len(s); l++ {
			if c, ok := decodeTable[s[i:i+l]]; ok {
				out = append(out, c)
				i += l
				matched = true
				break
			}
		}
		if !matched {
			return "", fmt.Errorf("decode %q at offset %d: %w", s, i, ErrInvalidEncoding)
		}
	}
	return string(out), nil
}

// lowerEncode is the non-reversible variant used before hashing: it keeps
// the "~xx" escapes but folds uppercase letters without marking them.
func lowerEncode(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(name); i++ {
		b.WriteString(lowerTable[name[i]])
	}
	return b.String()
}
