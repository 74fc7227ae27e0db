package manifest

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV serializes the view with the source header and each record's
// original cells. The derived fare bucket is not written. An empty view
// produces the header only.
func (d *Dataset) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(d.header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(d.header))
	for _, r := range d.records {
		for i := range row {
			row[i] = ""
			if i < len(r.raw) {
				row[i] = r.raw[i]
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", r.Index, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
