package codec

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeKnownValues(t *testing.T) {
	cases := []struct {
		in   string
		want []byte
	}{
		{"2", []byte{0x01}},
		{"z", []byte{0x39}},
		{"5Q", []byte{0xff}},
		{"Cn8eVZg", []byte("hello")},
	}
	for _, tc := range cases {
		got, err := Decode(tc.in)
		assert.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestDecodeRejectsForeignCharacters(t *testing.T) {
	for _, in := range []string{"0", "O", "I", "l", "abc0def", "ed25519:"} {
		_, err := Decode(in)
		assert.ErrorIs(t, err, ErrInvalidEncoding, in)
	}
}

func TestDecodeNeverFailsOnAlphabet(t *testing.T) {
	for _, c := range alphabet {
		if _, err := Decode(string(c)); err != nil {
			t.Fatalf("decode %q: %v", c, err)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for i := 0; i < 50; i++ {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			t.Fatal(err)
		}
		got, err := Decode(Encode(buf))
		assert.NoError(t, err)
		assert.True(t, bytes.Equal(buf, got), "round trip mismatch for %x", buf)
	}
}

func TestRoundTripLeadingZeros(t *testing.T) {
	cases := [][]byte{
		{0x00},
		{0x00, 0x00, 0x01},
		append(make([]byte, 3), []byte("seed")...),
	}
	for _, in := range cases {
		enc := Encode(in)
		got, err := Decode(enc)
		assert.NoError(t, err)
		assert.Equal(t, in, got, "input %x encoded as %q", in, enc)
	}
}

func TestEncodeEmpty(t *testing.T) {
	assert.Equal(t, "", Encode(nil))
	got, err := Decode("")
	assert.NoError(t, err)
	assert.Len(t, got, 0)
}
