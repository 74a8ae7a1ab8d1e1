package adapter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParquetReader_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "votes.parquet")
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := []parquetVote{
		{InferenceID: 1, VoterID: "alice", Vote: true, Score: 0.5, VoteTime: ts},
		{InferenceID: 2, VoterID: "bob", Vote: false, Score: 0.25, VoteTime: ts.Add(time.Hour)},
	}
	require.NoError(t, parquet.WriteFile(path, rows))

	got, err := parquetReader{}.ReadColumnar(path)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, int64(1), got[0]["inference_id"])
	assert.Equal(t, "alice", got[0]["voter_id"])
	assert.Equal(t, true, got[0]["vote"])
	assert.Equal(t, 0.25, got[1]["score"])

	gotTS, ok := got[0]["vote_time"].(time.Time)
	require.True(t, ok, "vote_time should adapt to a timestamp, got %T", got[0]["vote_time"])
	assert.True(t, ts.Equal(gotTS))
}

func TestParquetReader_CorruptFraming(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.parquet")
	require.NoError(t, os.WriteFile(path, []byte("not a parquet file"), 0600))

	_, err := parquetReader{}.ReadColumnar(path)
	require.Error(t, err)

	var perr *ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestParquetReader_MissingFile(t *testing.T) {
	_, err := parquetReader{}.ReadColumnar(filepath.Join(t.TempDir(), "gone.parquet"))
	assert.Error(t, err)
}

func TestFromFile_PqExtension(t *testing.T) {
	src := writeTestParquet(t)
	dst := src[:len(src)-len(".parquet")] + ".pq"
	require.NoError(t, os.Rename(src, dst))

	got, err := New().FromFile(dst)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}
