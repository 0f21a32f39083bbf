package dataset

import (
	"bytes"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"
)

// ParquetFileName is the download name offered for the Parquet export.
const ParquetFileName = "processed_data.parquet"

// parquetNode maps a column kind to an optional Parquet leaf.
func parquetNode(k Kind) parquet.Node {
	switch k {
	case KindInt:
		return parquet.Optional(parquet.Int(64))
	case KindFloat:
		return parquet.Optional(parquet.Leaf(parquet.DoubleType))
	case KindDatetime:
		return parquet.Optional(parquet.Timestamp(parquet.Nanosecond))
	case KindBool:
		return parquet.Optional(parquet.Leaf(parquet.BooleanType))
	default:
		return parquet.Optional(parquet.String())
	}
}

func parquetValue(v Value) parquet.Value {
	switch v.Kind {
	case KindInt:
		return parquet.Int64Value(v.Int)
	case KindFloat:
		return parquet.DoubleValue(v.Float)
	case KindDatetime:
		return parquet.Int64Value(v.Time.UnixNano())
	case KindBool:
		return parquet.BooleanValue(v.Bool)
	default:
		return parquet.ByteArrayValue([]byte(v.Text))
	}
}

// WriteParquet writes the dataset as a single row group. Every column is optional
// so null cells survive the export.
func WriteParquet(w io.Writer, ds *Dataset) error {
	group := parquet.Group{}
	for _, c := range ds.Columns {
		group[c.Name] = parquetNode(c.Kind)
	}
	schema := parquet.NewSchema("dataset", group)

	// Group fields are ordered by name, not by dataset order.
	index := make(map[string]int, len(ds.Columns))
	for i, f := range schema.Fields() {
		index[f.Name()] = i
	}

	pw := parquet.NewWriter(w, schema)
	rows := make([]parquet.Row, ds.NumRows())
	for i := range rows {
		row := make(parquet.Row, len(ds.Columns))
		for _, c := range ds.Columns {
			col := index[c.Name]
			v := c.Values[i]
			if v.Null {
				row[col] = parquet.NullValue().Level(0, 0, col)
				continue
			}
			row[col] = parquetValue(v).Level(0, 1, col)
		}
		rows[i] = row
	}
	if _, err := pw.WriteRows(rows); err != nil {
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}

// Parquet returns the dataset encoded as a Parquet file.
func Parquet(ds *Dataset) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteParquet(&buf, ds); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
