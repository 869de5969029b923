// Package codec implements the base58 representation used by Orderly
// for ed25519 key material.
package codec

import (
	"errors"
	"math/big"
	"strings"
)

// Bitcoin alphabet: 58 symbols, 0OIl excluded.
const alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

var ErrInvalidEncoding = errors.New("codec: invalid base58 character")

var base = big.NewInt(58)

// Decode converts a base58 string into its raw byte representation.
// Leading '1' characters decode to leading zero bytes; venue-issued keys
// are raw ed25519 key material and can start with zero bytes.
func Decode(s string) ([]byte, error) {
	num := new(big.Int)
	for _, c := range s {
		v := strings.IndexRune(alphabet, c)
		if v == -1 {
			return nil, ErrInvalidEncoding
		}
		num.Mul(num, base)
		num.Add(num, big.NewInt(int64(v)))
	}

	zeros := 0
	for zeros < len(s) && s[zeros] == alphabet[0] {
		zeros++
	}

	body := num.Bytes()
	out := make([]byte, zeros+len(body))
	copy(out[zeros:], body)
	return out, nil
}

// Encode converts raw bytes into their base58 representation.
func Encode(b []byte) string {
	zeros := 0
	for zeros < len(b) && b[zeros] == 0 {
		zeros++
	}

	num := new(big.Int).SetBytes(b)
	mod := new(big.Int)
	var sb strings.Builder
	for num.Sign() > 0 {
		num.DivMod(num, base, mod)
		sb.WriteByte(alphabet[mod.Int64()])
	}

	digits := sb.String()
	out := make([]byte, zeros+len(digits))
	for i := 0; i < zeros; i++ {
		out[i] = alphabet[0]
	}
	for i := 0; i < len(digits); i++ {
		out[zeros+i] = digits[len(digits)-1-i]
	}
	return string(out)
}
