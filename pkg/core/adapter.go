package core

// AdapterConfig holds configuration for connecting to a database.
type AdapterConfig struct {
	Type     string
	Path     string
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Schema   string
	Options  map[string]string
	Params   map[string]any
}

// Column represents a column in a database table.
type Column struct {
	Name       string
	Type       string
	Nullable   bool
	PrimaryKey bool
	Position   int
}

// TableMetadata holds metadata about a database table.
type TableMetadata struct {
	Schema     string
	Name       string
	Columns    []Column
	PrimaryKey string
	RowCount   int64
}

// ColumnNames returns the column names in ordinal order.
func (m *TableMetadata) ColumnNames() []string {
	names := make([]string, len(m.Columns))
	for i, c := range m.Columns {
		names[i] = c.Name
	}
	return names
}

// ForeignKey is a single-column foreign key constraint.
type ForeignKey struct {
	Table            string
	Column           string
	ReferencedTable  string
	ReferencedColumn string
}

// PageQuery describes one page of rows to fetch.
type PageQuery struct {
	Table   string
	Columns []string
	// OrderBy is the keyset column. Empty selects offset paging.
	OrderBy string
	// After is the last OrderBy value (keyset) or the row offset (int64).
	After any
	// Order lists the columns offset pages are sorted by, so that every
	// page sees the same row order. Empty falls back to Columns.
	Order []string
	Limit int
}

// Page is a fetched block of rows. Values are already normalized into the
// types pkg/literal understands.
type Page struct {
	Columns []string
	Rows    [][]any
}
