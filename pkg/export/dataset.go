package export

import "fmt"

// Format is an export file format.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ParseFormat maps a file extension to a Format.
func ParseFormat(raw string) (Format, error) {
	switch Format(raw) {
	case FormatCSV, FormatPDF:
		return Format(raw), nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}

// Dataset is an ordered table. Every row has one cell per column.
type Dataset struct {
	Title   string
	Columns []Column
	Rows    [][]string
}

// Column is a table header with a relative width used by the PDF layout.
type Column struct {
	Header string
	Weight float64
}

// Headers returns the column headers in order.
func (d Dataset) Headers() []string {
	out := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		out[i] = col.Header
	}
	return out
}

func (d Dataset) validate() error {
	if len(d.Columns) == 0 {
		return fmt.Errorf("dataset requires at least one column")
	}
	for i, row := range d.Rows {
		if len(row) != len(d.Columns) {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(d.Columns))
		}
	}
	return nil
}
