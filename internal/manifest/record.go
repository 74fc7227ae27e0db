package manifest

// Column names as they appear in the source CSV header. Matching is
// case-sensitive.
const (
	ColumnSex      = "Sex"
	ColumnClass    = "Pclass"
	ColumnEmbarked = "Embarked"
	ColumnAge      = "Age"
	ColumnFare     = "Fare"
	ColumnSibSp    = "SibSp"
	ColumnParch    = "Parch"
	ColumnSurvived = "Survived"

	// ColumnFareBucket names the derived fare category. It is never part of
	// the source header and is not written back on export.
	ColumnFareBucket = "Fare_Bin"
)

// Record is one passenger row. Optional attributes are nil or zero when the
// source cell was blank or unparsable.
type Record struct {
	// Index is the 0-based row position in the loaded file.
	Index    int
	Sex      string
	Class    int // 1, 2 or 3; 0 when absent
	Embarked string
	Age      *float64
	Fare     *float64
	SibSp    int
	Parch    int
	Survived bool
	Bucket   FareBucket

	raw []string
}

// NewRecord builds a record and derives its fare bucket. raw holds the
// original cells in header order and is what WriteCSV emits.
func NewRecord(index int, raw []string) Record {
	cp := make([]string, len(raw))
	copy(cp, raw)
	return Record{Index: index, raw: cp}
}

// WithFare sets the fare and recomputes the derived bucket.
func (r Record) WithFare(fare *float64) Record {
	r.Fare = fare
	r.Bucket = NoBucket
	if fare != nil {
		r.Bucket = BucketFor(*fare)
	}
	return r
}

// Raw returns a copy of the original cells.
func (r Record) Raw() []string {
	cp := make([]string, len(r.raw))
	copy(cp, r.raw)
	return cp
}

// HasFamily reports whether the passenger travelled with siblings/spouse or
// parents/children.
func (r Record) HasFamily() bool { return r.SibSp+r.Parch > 0 }

// Outcome returns the survival flag as 0 or 1.
func (r Record) Outcome() float64 {
	if r.Survived {
		return 1
	}
	return 0
}

// Float returns a pointer to v; handy for building records in code.
func Float(v float64) *float64 { return &v }
