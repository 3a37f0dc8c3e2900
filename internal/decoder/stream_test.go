package decoder

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mcncl/mpexplorer/internal/errors"
	"github.com/mcncl/mpexplorer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAll_Sequence(t *testing.T) {
	// true, "hi", [1, 2]
	buf := []byte{0xc3, 0xa2, 'h', 'i', 0x92, 0x01, 0x02}

	msgs, err := DecodeAll(buf)
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	assert.Equal(t, "Boolean: true", msgs[0].Item.String())
	assert.Equal(t, "String: hi", msgs[1].Item.String())
	assert.Equal(t, "Array (2 items)", msgs[2].Item.String())

	assert.Equal(t, []int{0, 1, 4}, []int{msgs[0].Offset, msgs[1].Offset, msgs[2].Offset})
	assert.Equal(t, 4, msgs[2].Item.Offset, "offsets stay absolute to the buffer")
	assert.Equal(t, 5, msgs[2].Item.Items[0].Offset)
	assert.Equal(t, 2, msgs[2].Index)
	assert.Equal(t, len(buf), Consumed(msgs))
}

func TestDecodeAll_StopsOnFirstError(t *testing.T) {
	buf := []byte{0xc0, 0xc1, 0xc3}

	msgs, err := DecodeAll(buf)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnknownTag)
	assert.Contains(t, err.Error(), "message 1 at offset 1")
	require.Len(t, msgs, 1)
	assert.Equal(t, models.Null, msgs[0].Item.Kind)
}

func TestDecodeAll_ContinueOnError(t *testing.T) {
	buf := []byte{0xc0, 0xc1, 0xc3}

	msgs, err := DecodeAll(buf, WithContinueOnError(true))
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	assert.NoError(t, msgs[0].Err)
	assert.ErrorIs(t, msgs[1].Err, errors.ErrUnknownTag)
	assert.Equal(t, 1, msgs[1].Offset)
	assert.Equal(t, 2, msgs[1].End())
	assert.Equal(t, "Boolean: true", msgs[2].Item.String())
	assert.Equal(t, 3, Consumed(msgs))
}

func TestDecodeAll_ContinueResynchronizes(t *testing.T) {
	// a truncated uint16 swallows nothing; the following bytes are retried
	buf := []byte{0xcd, 0x05}

	msgs, err := DecodeAll(buf, WithContinueOnError(true))
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.ErrorIs(t, msgs[0].Err, errors.ErrTruncated)
	v, ok := msgs[1].Item.Int64()
	require.True(t, ok)
	assert.Equal(t, int64(5), v)
}

func TestDecodeAll_DecodesEveryMessage(t *testing.T) {
	buf := make([]byte, 1500)
	for i := range buf {
		buf[i] = byte(i % 128)
	}

	msgs, err := DecodeAll(buf)
	require.NoError(t, err)
	require.Len(t, msgs, 1500)
	assert.Equal(t, 1499, msgs[1499].Index)
	assert.Equal(t, 1500, Consumed(msgs))
}

func TestDecodeAll_Empty(t *testing.T) {
	msgs, err := DecodeAll(nil)
	assert.NoError(t, err)
	assert.Empty(t, msgs)
	assert.Equal(t, 0, Consumed(msgs))
}

func writeTemp(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.msgpack")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestDecodeFile(t *testing.T) {
	path := writeTemp(t, []byte{0x81, 0xa4, 'n', 'a', 'm', 'e', 0xa5, 'A', 'l', 'i', 'c', 'e'})

	item, err := DecodeFile(path)
	require.NoError(t, err)
	require.Equal(t, models.Map, item.Kind)
	assert.Equal(t, "Alice", item.Pairs[0].Value.Str)
}

func TestDecodeFile_Errors(t *testing.T) {
	_, err := DecodeFile("")
	assert.ErrorIs(t, err, errors.ErrInvalidFilePath)

	_, err = DecodeFile(filepath.Join(t.TempDir(), "missing.msgpack"))
	assert.ErrorIs(t, err, errors.ErrFileNotFound)
	assert.ErrorIs(t, err, &errors.AppError{Type: errors.ErrorTypeInput})

	_, err = DecodeFile(writeTemp(t, nil))
	assert.ErrorIs(t, err, errors.ErrFileEmpty)

	_, err = DecodeFile(writeTemp(t, []byte{0xdd}))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrTruncated)
	assert.ErrorIs(t, err, &errors.AppError{Type: errors.ErrorTypeDecoding})
	assert.Contains(t, err.Error(), "failed to decode message at offset 1")
}

func TestDecodeReader(t *testing.T) {
	item, err := DecodeReader(strings.NewReader("\xa3abc"))
	require.NoError(t, err)
	assert.Equal(t, "abc", item.Str)

	_, err = DecodeReader(strings.NewReader(""))
	assert.ErrorIs(t, err, errors.ErrEmptyInput)

	_, err = DecodeReader(strings.NewReader("\x91"), WithMaxDepth(1))
	assert.ErrorIs(t, err, errors.ErrInvalidLength)

	_, err = DecodeReader(strings.NewReader("\x91\x90"), WithMaxDepth(1))
	assert.ErrorIs(t, err, errors.ErrExcessNesting)
}
