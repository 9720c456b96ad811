package mediainfo

import (
	"fmt"
	"strings"
)

// LabelWidth is the padding of labels in the text output
const LabelWidth = 13

// Serialize renders one line per entry in schema order.
// Entries which are not summary entries and still hold their default are left out.
func Serialize(t *Table, s *Schema) string {
	var sb strings.Builder
	for _, e := range s.entries {
		value := t.Get(e.Key)
		if !e.Summary && value == e.Default {
			continue
		}
		fmt.Fprintf(&sb, "%-*s: %s \r\n", LabelWidth, e.Label, value)
	}
	return sb.String()
}

// Report bundles a table with the schema used for rendering
type Report struct {
	Table   *Table
	Verbose bool
}

func NewReport(t *Table, verbose bool) *Report {
	return &Report{Table: t, Verbose: verbose}
}

func (r *Report) Text() string {
	s := r.Table.Schema()
	if r.Verbose {
		s = s.Verbose()
	}
	return Serialize(r.Table, s)
}

func (r *Report) String() string { return r.Text() }

func (r *Report) MarshalJSON() ([]byte, error) {
	return r.Table.MarshalJSON()
}
