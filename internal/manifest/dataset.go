package manifest

import (
	"time"

	"github.com/google/uuid"
)

// Dataset is an ordered, immutable collection of passenger records sharing
// one header. Filtering never mutates a Dataset; it derives a new one that
// shares the parent's records.
type Dataset struct {
	id       string
	source   string
	header   []string
	records  []Record
	loadedAt time.Time
}

// New builds a Dataset with a fresh load ID.
func New(source string, header []string, records []Record) *Dataset {
	h := make([]string, len(header))
	copy(h, header)
	return &Dataset{
		id:       uuid.NewString(),
		source:   source,
		header:   h,
		records:  records,
		loadedAt: time.Now(),
	}
}

// Derive returns a view over the given records that keeps this dataset's
// identity (load ID, source, header).
func (d *Dataset) Derive(records []Record) *Dataset {
	return &Dataset{
		id:       d.id,
		source:   d.source,
		header:   d.header,
		records:  records,
		loadedAt: d.loadedAt,
	}
}

// ID identifies the load that produced this dataset. Derived views share it.
func (d *Dataset) ID() string { return d.id }

// Source is the location the dataset was loaded from.
func (d *Dataset) Source() string { return d.source }

// LoadedAt is when the underlying load completed.
func (d *Dataset) LoadedAt() time.Time { return d.loadedAt }

// Header returns a copy of the source column names in file order.
func (d *Dataset) Header() []string {
	h := make([]string, len(d.header))
	copy(h, d.header)
	return h
}

// HasColumn reports whether the source header contains name.
func (d *Dataset) HasColumn(name string) bool {
	for _, h := range d.header {
		if h == name {
			return true
		}
	}
	return false
}

func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// At returns the i-th record of this view.
func (d *Dataset) At(i int) Record { return d.records[i] }

// Records returns a copy of the view's records.
func (d *Dataset) Records() []Record {
	out := make([]Record, len(d.records))
	copy(out, d.records)
	return out
}

// Indices lists the source row index of every record, in view order.
func (d *Dataset) Indices() []int {
	out := make([]int, len(d.records))
	for i, r := range d.records {
		out[i] = r.Index
	}
	return out
}
