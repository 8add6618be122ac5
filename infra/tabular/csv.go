package tabular

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/giordipeperkamp/Megaplanner/core/ingest"
)

// ReadCSV loads one UTF-8 CSV file into a raw table. The first record is the
// header; column order is irrelevant to the parsers downstream.
func ReadCSV(path string) (*ingest.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read %s: missing header row", path)
	}
	return &ingest.Table{Source: path, Header: records[0], Rows: records[1:]}, nil
}
