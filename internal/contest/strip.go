package contest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// StripColumn removes the named column from csv content. Legacy combined
// artifacts carry the expected answer in the input table; it must never
// reach the user's download. The column name is matched case-insensitively
// against the trimmed header. Content without that column is returned
// unchanged.
func StripColumn(data []byte, column string) ([]byte, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse combined artifact: %w", err)
	}
	if len(records) == 0 {
		return data, nil
	}

	idx := -1
	for i, name := range records[0] {
		if strings.EqualFold(strings.TrimSpace(name), column) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return data, nil
	}

	stripped := make([][]string, len(records))
	for i, rec := range records {
		if idx >= len(rec) {
			stripped[i] = rec
			continue
		}
		row := make([]string, 0, len(rec)-1)
		row = append(row, rec[:idx]...)
		row = append(row, rec[idx+1:]...)
		stripped[i] = row
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(stripped); err != nil {
		return nil, fmt.Errorf("write stripped artifact: %w", err)
	}
	return buf.Bytes(), nil
}
