package analyzer

import (
	"testing"

	"github.com/mcncl/mpexplorer/internal/decoder"
	"github.com/mcncl/mpexplorer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_SimpleMap(t *testing.T) {
	// {"name": "Alice", "age": 30, "tags": ["a", "b"], "blob": 0xfffe}
	buf := []byte{
		0x84,
		0xa4, 'n', 'a', 'm', 'e', 0xa5, 'A', 'l', 'i', 'c', 'e',
		0xa3, 'a', 'g', 'e', 0x1e,
		0xa4, 't', 'a', 'g', 's', 0x92, 0xa1, 'a', 0xa1, 'b',
		0xa4, 'b', 'l', 'o', 'b', 0xa2, 0xff, 0xfe,
	}
	item, err := decoder.Decode(buf)
	require.NoError(t, err)

	analyzer := NewAnalyzer()
	summary, err := analyzer.Analyze(&item)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Messages)
	assert.Equal(t, 11, summary.Items)
	assert.Equal(t, 1, summary.Counts[models.Map])
	assert.Equal(t, 1, summary.Counts[models.Array])
	assert.Equal(t, 7, summary.Counts[models.String])
	assert.Equal(t, 1, summary.Counts[models.Integer])
	assert.Equal(t, 1, summary.Counts[models.Binary])
	assert.Equal(t, 3, summary.MaxDepth)
	assert.Equal(t, 4+5+3+4+1+1+4, summary.StringBytes)
	assert.Equal(t, 2, summary.BinaryBytes)
	assert.Equal(t, 2, summary.LargestArray)
	assert.Equal(t, 4, summary.LargestMap)
	assert.Empty(t, summary.DuplicateKeys)
}

func TestAnalyze_ScalarRoot(t *testing.T) {
	item := models.NewInt(5)
	summary, err := NewAnalyzer().Analyze(&item)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Items)
	assert.Equal(t, 1, summary.MaxDepth)
}

func TestAnalyze_DuplicateKeys(t *testing.T) {
	item := models.NewArray(
		models.NewMap(
			models.Pair{Key: models.NewString("a"), Value: models.NewInt(1)},
			models.Pair{Key: models.NewInt(1), Value: models.NewInt(2)},
			models.Pair{Key: models.NewString("a"), Value: models.NewInt(3)},
			models.Pair{Key: models.NewString("1"), Value: models.NewInt(4)},
			models.Pair{Key: models.NewArray(), Value: models.NewNull()},
			models.Pair{Key: models.NewArray(), Value: models.NewNull()},
			models.Pair{Key: models.NewBinary([]byte{1}), Value: models.NewNull()},
			models.Pair{Key: models.NewBinary([]byte{2}), Value: models.NewNull()},
		),
	)

	summary, err := NewAnalyzer().Analyze(&item)
	require.NoError(t, err)

	require.Len(t, summary.DuplicateKeys, 1)
	assert.Equal(t, DuplicateKey{Path: "$[0]", Key: "String: a", Count: 2}, summary.DuplicateKeys[0])
	assert.Equal(t, 2, summary.NonScalarKeys)
}

func TestAnalyze_Accumulates(t *testing.T) {
	msgs, err := decoder.DecodeAll([]byte{0x91, 0x91, 0x01, 0xc1, 0xc3}, decoder.WithContinueOnError(true))
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	analyzer := NewAnalyzer()
	for _, msg := range msgs {
		if msg.Err != nil {
			analyzer.RecordFailure()
			continue
		}
		_, err := analyzer.Analyze(&msg.Item)
		require.NoError(t, err)
	}

	summary := analyzer.Summary()
	assert.Equal(t, 3, summary.Messages)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 4, summary.Items)
	assert.Equal(t, 3, summary.MaxDepth)
	assert.Equal(t, 1, summary.Counts[models.Boolean])
}

func TestAnalyze_UnknownKind(t *testing.T) {
	item := models.NewArray(models.Item{Kind: models.Kind(99)})
	_, err := NewAnalyzer().Analyze(&item)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected item kind Kind(99) at $[0]")

	_, err = NewAnalyzer().Analyze(nil)
	assert.Error(t, err)
}

func TestSummary_CopyIsIndependent(t *testing.T) {
	item := models.NewString("x")
	analyzer := NewAnalyzer()
	first, err := analyzer.Analyze(&item)
	require.NoError(t, err)

	_, err = analyzer.Analyze(&item)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Counts[models.String], "earlier summaries are snapshots")
	assert.Equal(t, 2, analyzer.Summary().Counts[models.String])
}

func TestSummary_String(t *testing.T) {
	item := models.NewMap(
		models.Pair{Key: models.NewString("k"), Value: models.NewBool(true)},
		models.Pair{Key: models.NewString("k"), Value: models.NewBool(false)},
	)
	analyzer := NewAnalyzer()
	analyzer.RecordFailure()
	summary, err := analyzer.Analyze(&item)
	require.NoError(t, err)

	expected := "Messages:       2 (1 failed)\n" +
		"Items:          5\n" +
		"Max depth:      2\n" +
		"  Boolean:      2\n" +
		"  String:       2\n" +
		"  Map:          1\n" +
		"String bytes:   2\n" +
		"Binary bytes:   0\n" +
		"Largest array:  0\n" +
		"Largest map:    2\n" +
		"Duplicate key at $: String: k (x2)\n"
	assert.Equal(t, expected, summary.String())
}
