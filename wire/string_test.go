package wire_test

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katanacap/klickhouse/errs"
	"github.com/katanacap/klickhouse/wire"
)

func TestStringRoundTrip(t *testing.T) {
	for _, s := range []string{"", "a", "hello world", "unicode: ☃❤"} {
		buf := wire.WriteString(nil, s)
		r := bufio.NewReader(bytes.NewReader(buf))
		got, err := wire.ReadString(r, r)
		require.NoError(t, err)
		require.Equal(t, s, got)
	}
}

func TestStringTooLargeRejectedBeforeAllocating(t *testing.T) {
	buf := wire.WriteUvarint(nil, wire.MaxStringSize+1)
	r := bufio.NewReader(bytes.NewReader(buf))
	_, err := wire.ReadString(r, r)
	require.ErrorIs(t, err, errs.ErrStringTooLarge)
}

func TestFixedStringPadsAndRejectsOverflow(t *testing.T) {
	buf, err := wire.WriteFixedString(nil, "ab", 5)
	require.NoError(t, err)
	require.Equal(t, []byte{'a', 'b', 0, 0, 0}, buf)

	_, err = wire.WriteFixedString(nil, "toolong", 3)
	require.ErrorIs(t, err, errs.ErrSerialize)
}
