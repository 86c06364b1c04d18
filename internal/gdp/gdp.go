package gdp

const (
	CountryColumn  = "Country"
	MillionsColumn = "GDP_USD_millions"
	BillionsColumn = "GDP_USD_billions"
)

// DefaultColumns is the schema of a freshly extracted table.
var DefaultColumns = []string{CountryColumn, MillionsColumn}

// Record is a single row of the GDP table.
type Record struct {
	Country string
	// Raw is the GDP figure exactly as it appeared in the source,
	// thousands separators included.
	Raw string
	// Value is only meaningful once the owning table is Parsed.
	Value float64
}

// Table is an ordered list of records sharing a two column schema,
// Columns[0] names the country column and Columns[1] the value column.
type Table struct {
	Columns []string
	Records []Record
	Parsed  bool
}

// NewTable creates an empty table with the given column names, if
// columns is empty DefaultColumns is used.
func NewTable(columns []string) Table {
	if len(columns) == 0 {
		columns = DefaultColumns
	}
	cols := make([]string, len(columns))
	copy(cols, columns)
	return Table{Columns: cols}
}

func (t Table) Len() int {
	return len(t.Records)
}

func (t Table) CountryColumn() string {
	if len(t.Columns) == 0 {
		return CountryColumn
	}
	return t.Columns[0]
}

func (t Table) ValueColumn() string {
	if len(t.Columns) < 2 {
		return MillionsColumn
	}
	return t.Columns[1]
}

// RenameValueColumn replaces the name of the value column in place.
func (t *Table) RenameValueColumn(name string) {
	for len(t.Columns) < 2 {
		t.Columns = append(t.Columns, DefaultColumns[len(t.Columns)])
	}
	t.Columns[1] = name
}

func (t *Table) Append(r Record) {
	t.Records = append(t.Records, r)
}
