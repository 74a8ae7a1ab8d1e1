package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Widths(t *testing.T) {
	v, err := Normalize(int32(7))
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)

	v, err = Normalize(uint16(7))
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)

	v, err = Normalize(float32(0.5))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, v.(float64), 0.0001)
}

func TestNormalize_Passthrough(t *testing.T) {
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, in := range []any{true, int64(3), 0.25, "x", ts, nil} {
		v, err := Normalize(in)
		require.NoError(t, err)
		assert.Equal(t, in, v)
	}
}

func TestNormalize_Unsupported(t *testing.T) {
	_, err := Normalize([]string{"nope"})
	assert.Error(t, err)

	_, err = Normalize(map[string]any{"nested": 1})
	assert.Error(t, err)
}

func TestNormalizeRecord(t *testing.T) {
	rec, err := NormalizeRecord(map[string]any{"a": 1, "b": "x"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec["a"])
	assert.Equal(t, "x", rec["b"])

	_, err = NormalizeRecord(map[string]any{"a": struct{}{}})
	assert.Error(t, err)
}

func TestID_MixedRepresentations(t *testing.T) {
	s1, ok := ID(int64(101))
	require.True(t, ok)
	s2, ok := ID("101")
	require.True(t, ok)
	s3, ok := ID(float64(101))
	require.True(t, ok)
	assert.Equal(t, s1, s2)
	assert.Equal(t, s1, s3)
}

func TestID_Invalid(t *testing.T) {
	_, ok := ID(true)
	assert.False(t, ok)
	_, ok = ID(nil)
	assert.False(t, ok)
	_, ok = ID("")
	assert.False(t, ok)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "true", Key(true))
	assert.Equal(t, "3", Key(int64(3)))
	assert.Equal(t, "0.5", Key(0.5))
	assert.Equal(t, "up", Key("up"))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(int64(1), float64(1)))
	assert.True(t, Equal(true, true))
	assert.False(t, Equal(true, int64(1)))
	assert.False(t, Equal("1", int64(1)))
	assert.True(t, Equal(nil, nil))
}

func TestSetFields(t *testing.T) {
	s := Set{
		{"b": int64(1)},
		{"a": "x", "b": int64(2)},
	}
	assert.Equal(t, []string{"a", "b"}, s.Fields())
}
