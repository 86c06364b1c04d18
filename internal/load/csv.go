package load

import (
	"encoding/csv"
	"fmt"
	"gdp-etl/internal/gdp"
	"io"
	"os"
	"strconv"
	"strings"
)

// FormatValue renders a parsed value the way it is written to the flat
// file, integral values keep a trailing ".0".
func FormatValue(v float64) string {
	out := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(out, ".eEnN") {
		out += ".0"
	}
	return out
}

// EncodeCSV writes the table as csv with a leading, unnamed index column.
func EncodeCSV(w io.Writer, table gdp.Table) error {
	writer := csv.NewWriter(w)

	err := writer.Write([]string{"", table.CountryColumn(), table.ValueColumn()})
	if err != nil {
		return err
	}
	for i, r := range table.Records {
		value := r.Raw
		if table.Parsed {
			value = FormatValue(r.Value)
		}
		err = writer.Write([]string{strconv.Itoa(i), r.Country, value})
		if err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteCSV writes the table to path, replacing whatever was there.
func WriteCSV(path string, table gdp.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = EncodeCSV(f, table)
	if err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// DecodeCSV reads a table written by EncodeCSV, the index column is dropped.
// The table is marked as parsed only if every value is a number.
func DecodeCSV(r io.Reader) (gdp.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 3

	header, err := reader.Read()
	if err == io.EOF {
		return gdp.Table{}, fmt.Errorf("empty csv")
	}
	if err != nil {
		return gdp.Table{}, err
	}

	table := gdp.NewTable(header[1:])
	table.Parsed = true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return gdp.Table{}, err
		}

		row := gdp.Record{Country: record[1], Raw: record[2]}
		value, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			table.Parsed = false
		}
		row.Value = value
		table.Append(row)
	}

	return table, nil
}

func ReadCSV(path string) (gdp.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return gdp.Table{}, err
	}
	defer f.Close()
	return DecodeCSV(f)
}
