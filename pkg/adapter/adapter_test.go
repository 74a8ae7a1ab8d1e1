package adapter

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/go-gota/gota/dataframe"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grandjury/grandjury-go/pkg/record"
)

var voteTimes = []time.Time{
	time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC),
	time.Date(2025, 3, 1, 11, 0, 0, 0, time.UTC),
}

// testRows is the reference dataset every variant encodes.
func testRows() []map[string]any {
	return []map[string]any{
		{"inference_id": int64(1), "voter_id": "alice", "vote": true, "score": 0.5, "vote_time": voteTimes[0]},
		{"inference_id": int64(1), "voter_id": "bob", "vote": false, "score": 0.25, "vote_time": voteTimes[1]},
		{"inference_id": int64(2), "voter_id": "alice", "vote": true, "score": 0.75, "vote_time": voteTimes[2]},
	}
}

func writeTestCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "votes.csv")
	content := "inference_id,voter_id,vote,score,vote_time\n"
	for _, row := range testRows() {
		content += fmt.Sprintf("%d,%s,%t,%v,%s\n",
			row["inference_id"], row["voter_id"], row["vote"], row["score"],
			row["vote_time"].(time.Time).Format(time.RFC3339))
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

type parquetVote struct {
	InferenceID int64     `parquet:"inference_id"`
	VoterID     string    `parquet:"voter_id"`
	Vote        bool      `parquet:"vote"`
	Score       float64   `parquet:"score"`
	VoteTime    time.Time `parquet:"vote_time"`
}

func writeTestParquet(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "votes.parquet")
	rows := make([]parquetVote, 0, len(testRows()))
	for _, r := range testRows() {
		rows = append(rows, parquetVote{
			InferenceID: r["inference_id"].(int64),
			VoterID:     r["voter_id"].(string),
			Vote:        r["vote"].(bool),
			Score:       r["score"].(float64),
			VoteTime:    r["vote_time"].(time.Time),
		})
	}
	require.NoError(t, parquet.WriteFile(path, rows))
	return path
}

func buildTestArrow(t *testing.T) arrow.Record {
	t.Helper()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "inference_id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "voter_id", Type: arrow.BinaryTypes.String},
		{Name: "vote", Type: arrow.FixedWidthTypes.Boolean},
		{Name: "score", Type: arrow.PrimitiveTypes.Float64},
		{Name: "vote_time", Type: arrow.FixedWidthTypes.Timestamp_ms},
	}, nil)

	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()
	for _, r := range testRows() {
		b.Field(0).(*array.Int64Builder).Append(r["inference_id"].(int64))
		b.Field(1).(*array.StringBuilder).Append(r["voter_id"].(string))
		b.Field(2).(*array.BooleanBuilder).Append(r["vote"].(bool))
		b.Field(3).(*array.Float64Builder).Append(r["score"].(float64))
		b.Field(4).(*array.TimestampBuilder).Append(arrow.Timestamp(r["vote_time"].(time.Time).UnixMilli()))
	}
	return b.NewRecord()
}

func assertSameSet(t *testing.T, want, got record.Set, label string) {
	t.Helper()
	require.Len(t, got, len(want), label)
	for i := range want {
		for field, wv := range want[i] {
			assert.True(t, record.Equal(wv, got[i][field]),
				"%s: row %d field %q: want %v (%T), got %v (%T)",
				label, i, field, wv, wv, got[i][field], got[i][field])
		}
	}
}

func TestAdapt_FormatEquivalence(t *testing.T) {
	reference, err := Adapt(testRows())
	require.NoError(t, err)
	require.Len(t, reference, 3)

	fromCSV, err := Adapt(writeTestCSV(t))
	require.NoError(t, err)
	assertSameSet(t, reference, fromCSV, "csv")

	fromParquet, err := Adapt(writeTestParquet(t))
	require.NoError(t, err)
	assertSameSet(t, reference, fromParquet, "parquet")

	rec := buildTestArrow(t)
	defer rec.Release()
	fromArrow, err := Adapt(rec)
	require.NoError(t, err)
	assertSameSet(t, reference, fromArrow, "arrow")
}

func TestAdapt_SingleRowMap(t *testing.T) {
	got, err := Adapt(map[string]any{"vote": true, "voter_id": 7})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, true, got[0]["vote"])
	assert.Equal(t, int64(7), got[0]["voter_id"])
}

func TestAdapt_DataFrame(t *testing.T) {
	df := dataframe.LoadMaps([]map[string]any{
		{"inference_id": 1, "voter_id": "alice", "vote": true, "score": 0.5},
		{"inference_id": 2, "voter_id": "bob", "vote": false, "score": 0.25},
	})
	require.NoError(t, df.Err)

	got, err := Adapt(df)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, record.Equal(int64(1), got[0]["inference_id"]))
	assert.Equal(t, "alice", got[0]["voter_id"])
	assert.Equal(t, true, got[0]["vote"])
	assert.True(t, record.Equal(0.25, got[1]["score"]))
}

func TestAdapt_PreservesRowOrder(t *testing.T) {
	rows := make([]map[string]any, 20)
	for i := range rows {
		rows[i] = map[string]any{"voter_id": i}
	}
	got, err := Adapt(rows)
	require.NoError(t, err)
	for i := range rows {
		assert.Equal(t, int64(i), got[i]["voter_id"])
	}
}

func TestAdapt_ExtraFieldsPreserved(t *testing.T) {
	got, err := Adapt([]map[string]any{{"vote": true, "comment": "lgtm"}})
	require.NoError(t, err)
	assert.Equal(t, "lgtm", got[0]["comment"])
}

func TestAdapt_UnsupportedInput(t *testing.T) {
	_, err := Adapt(42)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Adapt([]int{1, 2})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestAdapt_UnsupportedExtension(t *testing.T) {
	_, err := Adapt("votes.xlsx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestAdapt_MissingFile(t *testing.T) {
	_, err := Adapt(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestAdapt_NonScalarValue(t *testing.T) {
	_, err := Adapt([]map[string]any{{"vote": []string{"nested"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 0")
}

type stubColumnar struct {
	set record.Set
}

func (s stubColumnar) ReadColumnar(string) (record.Set, error) { return s.set, nil }

func TestWithColumnarReader_Substitution(t *testing.T) {
	want := record.Set{{"vote": true}}
	a := New(WithColumnarReader(stubColumnar{set: want}))

	got, err := a.Adapt("anything.parquet")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
