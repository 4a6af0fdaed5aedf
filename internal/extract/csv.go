package extract

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// CSV renders a CSV file as labeled rows, one row per line, so line
// slicing and searching address individual records.
type CSV struct{}

func (c *CSV) Extract(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return "", nil
	}

	headers := records[0]
	var buf strings.Builder
	buf.WriteString("Headers: " + strings.Join(headers, ", ") + "\n")
	for _, row := range records[1:] {
		var fields []string
		for j, cell := range row {
			name := fmt.Sprintf("col%d", j+1)
			if j < len(headers) && headers[j] != "" {
				name = headers[j]
			}
			fields = append(fields, name+": "+cell)
		}
		buf.WriteString(strings.Join(fields, ", ") + "\n")
	}
	return buf.String(), nil
}
