package proto

import (
	"testing"

	"github.com/katanacap/klickhouse/wire"
	"github.com/stretchr/testify/require"
)

func writeRawException(w *wire.Writer, code int32, name, message, stack string, nested bool) {
	buf := make([]byte, 4)
	le.PutUint32(buf, uint32(code))
	w.Raw(buf)
	w.String(name)
	w.String(message)
	w.String(stack)

	if nested {
		w.Byte(1)
	} else {
		w.Byte(0)
	}
}

func TestReadException_Single(t *testing.T) {
	w := wire.NewWriter()
	defer w.Release()

	writeRawException(w, 60, "UNKNOWN_TABLE", "Table default.missing doesn't exist", "", false)

	r := wire.NewReader(newBytesReader(w.Bytes()))

	exc, err := ReadException(r)
	require.NoError(t, err)
	require.Equal(t, int32(60), exc.Code)
	require.Equal(t, "UNKNOWN_TABLE", exc.Name)
	require.Contains(t, exc.Message, "missing")
	require.Nil(t, exc.Nested)
}

func TestReadException_Nested(t *testing.T) {
	w := wire.NewWriter()
	defer w.Release()

	writeRawException(w, 1, "OUTER", "outer failure", "", true)
	writeRawException(w, 2, "INNER", "root cause", "", false)

	r := wire.NewReader(newBytesReader(w.Bytes()))

	exc, err := ReadException(r)
	require.NoError(t, err)
	require.Equal(t, "OUTER", exc.Name)
	require.NotNil(t, exc.Nested)
	require.Equal(t, "INNER", exc.Nested.Name)
	require.Equal(t, int32(2), exc.Nested.Code)
	require.Nil(t, exc.Nested.Nested)
}

func TestServerException_ErrorString(t *testing.T) {
	w := wire.NewWriter()
	defer w.Release()

	writeRawException(w, 60, "UNKNOWN_TABLE", "nope", "", false)

	r := wire.NewReader(newBytesReader(w.Bytes()))

	exc, err := ReadException(r)
	require.NoError(t, err)
	require.ErrorContains(t, exc, "UNKNOWN_TABLE")
	require.ErrorContains(t, exc, "nope")
}
