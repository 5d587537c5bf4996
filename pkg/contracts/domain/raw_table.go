package domain

// SourceKind identifies which adapter produced a raw table.
type SourceKind string

const (
	SourceMarkup   SourceKind = "markup"
	SourceWorkbook SourceKind = "workbook"
	SourceFallback SourceKind = "fallback"
)

// RawTable is an untyped grid of cells extracted by a source adapter.
// Headers may contain blanks or placeholders left over from merged cells;
// rows may mix text and numeric content. RawTable is ephemeral: the
// normalizer consumes it and nothing downstream ever sees it.
type RawTable struct {
	Source  SourceKind `json:"source"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Width returns the number of header cells.
func (t *RawTable) Width() int {
	return len(t.Headers)
}

// IsEmpty reports whether the table carries no data rows.
func (t *RawTable) IsEmpty() bool {
	return t == nil || len(t.Rows) == 0
}
