package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

type csvParser struct{}

func (csvParser) CanParse(name string) bool {
	return hasSuffix(name, ".csv")
}

func (csvParser) Parse(r io.Reader, _ Options) ([]rawColumn, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("no columns to parse from file")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	var rows [][]string
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(rows)+2, err)
		}
		rows = append(rows, rec)
	}
	return columnsFromRows(header, rows)
}
