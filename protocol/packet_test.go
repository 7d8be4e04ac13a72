package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeFraming(t *testing.T) {
	b, err := Encode("3", Data, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "000031hello", string(b))

	b, err = Encode(Broadcast, Control, []byte("RA{}"))
	require.NoError(t, err)
	assert.Equal(t, "000002RA{}", string(b))
}

func TestRoundTrip(t *testing.T) {
	cases := []Packet{
		{Dst: "1", Proto: Data, Data: []byte("payload")},
		{Dst: "12345", Proto: Data, Data: []byte{}},
		{Dst: "0", Proto: Control, Data: []byte(`RA{"1":{"RA":1}}`)},
		{Dst: "100", Proto: Data, Data: []byte("00000")},
		{Dst: "RB", Proto: Control, Data: []byte("x")},
	}
	for _, c := range cases {
		b, err := c.Bytes()
		require.NoError(t, err)
		got, err := Decode(b)
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
}

func TestDecodeStripsLeadingZerosOnly(t *testing.T) {
	// trailing zeros are part of the address
	p, err := Decode([]byte("001001data"))
	require.NoError(t, err)
	assert.Equal(t, "100", p.Dst)

	// a zero-padded variant normalizes to the canonical form
	b, err := Encode("007", Data, nil)
	require.NoError(t, err)
	p, err = Decode(b)
	require.NoError(t, err)
	assert.Equal(t, "7", p.Dst)
}

func TestEncodeErrors(t *testing.T) {
	_, err := Encode("123456", Data, nil)
	assert.ErrorIs(t, err, ErrFormat)

	_, err = Encode("1", Proto(9), nil)
	assert.ErrorIs(t, err, ErrFormat)

	_, err = Encode("", Data, nil)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode([]byte("0001"))
	assert.ErrorIs(t, err, ErrFormat)

	_, err = Decode([]byte("000013hello"))
	assert.ErrorIs(t, err, ErrFormat)

	var fe *FormatError
	assert.True(t, errors.As(err, &fe))
	assert.Contains(t, fe.Reason, "unknown protocol tag")
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "0", Normalize("00000"))
	assert.Equal(t, "0", Normalize(""))
	assert.Equal(t, "10", Normalize("00010"))
}

func TestRoutesRoundTrip(t *testing.T) {
	vec := Vector{
		"1":  {"RA": 1},
		"RA": {"RA": 0},
		"RB": {"RA": 4, "RB": 0},
	}
	data, err := EncodeRoutes("RA", vec)
	require.NoError(t, err)
	assert.Equal(t, `RA{"1":{"RA":1},"RA":{"RA":0},"RB":{"RA":4,"RB":0}}`, string(data))

	router, got, err := DecodeRoutes(data)
	require.NoError(t, err)
	assert.Equal(t, "RA", router)
	assert.Equal(t, vec, got)
}

func TestRoutesErrors(t *testing.T) {
	_, err := EncodeRoutes("RAB", Vector{})
	assert.ErrorIs(t, err, ErrFormat)

	_, _, err = DecodeRoutes([]byte("R"))
	assert.ErrorIs(t, err, ErrFormat)

	_, _, err = DecodeRoutes([]byte("RA{not json"))
	assert.ErrorIs(t, err, ErrFormat)
}
