package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

// ExportFileName is the download name offered for the CSV export.
const ExportFileName = "processed_data.csv"

// WriteCSV serializes the dataset verbatim: a header row, then one record per
// row, with no index column and empty cells for nulls.
func WriteCSV(w io.Writer, ds *Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ds.Names()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i := 0; i < ds.NumRows(); i++ {
		if err := cw.Write(ds.Row(i)); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// CSV returns the dataset as CSV text.
func CSV(ds *Dataset) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, ds); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
