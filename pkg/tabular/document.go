package tabular

// Document is a parsed table: one header row plus data rows. Every row has
// exactly len(Header) cells; short input rows are padded with "" on read so
// downstream code never index-checks.
type Document struct {
	Header []string
	Rows   [][]string

	// SourceEncoding is the encoding the document was read from, after
	// detection. Zero value means the document was built in memory.
	SourceEncoding Encoding
}

// NewDocument returns a document with the given header and no rows.
func NewDocument(header []string) *Document {
	return &Document{Header: append([]string(nil), header...)}
}

// AppendRow adds a row, padding or truncating it to the header width.
func (d *Document) AppendRow(row []string) {
	normalized := make([]string, len(d.Header))
	copy(normalized, row)
	d.Rows = append(d.Rows, normalized)
}

// columnIndex returns the position of a header, or -1.
func (d *Document) columnIndex(name string) int {
	for i, h := range d.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at (row, column header). Missing columns and
// out-of-range rows read as "".
func (d *Document) Cell(row int, column string) string {
	if row < 0 || row >= len(d.Rows) {
		return ""
	}
	idx := d.columnIndex(column)
	if idx < 0 {
		return ""
	}
	return d.Rows[row][idx]
}

// SetCell writes the value at (row, column header) if both exist.
func (d *Document) SetCell(row int, column, value string) {
	if row < 0 || row >= len(d.Rows) {
		return
	}
	idx := d.columnIndex(column)
	if idx < 0 {
		return
	}
	d.Rows[row][idx] = value
}

// HasColumn reports whether the header contains the given column.
func (d *Document) HasColumn(name string) bool {
	return d.columnIndex(name) >= 0
}

// Len returns the number of data rows.
func (d *Document) Len() int {
	return len(d.Rows)
}
