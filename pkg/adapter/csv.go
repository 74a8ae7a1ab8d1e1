package adapter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/grandjury/grandjury-go/pkg/record"
)

// Accepted timestamp layouts for text sources, tried in order. ISO-8601
// date-times are the minimum contract.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func readCSV(path string) (record.Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Path: path, Err: errors.New("missing header row")}
		}
		return nil, &ParseError{Path: path, Err: err}
	}

	out := make(record.Set, 0)
	for row := 1; ; row++ {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Mismatched column counts and quoting errors land here.
			return nil, &ParseError{Path: path, Row: row, Err: err}
		}
		rec := make(record.Record, len(header))
		for i, name := range header {
			rec[name] = parseTextValue(fields[i])
		}
		out = append(out, rec)
	}

	return out, nil
}

// parseTextValue types a delimited-text cell by content: booleans accept
// the common truthy/falsy text encodings, empty and "none" become null,
// numeric literals become int64/float64, ISO-8601 date-times become
// timestamps, and everything else stays a string.
func parseTextValue(s string) any {
	switch strings.ToLower(s) {
	case "", "none", "null":
		return nil
	case "true":
		return true
	case "false":
		return false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC()
		}
	}
	return s
}
