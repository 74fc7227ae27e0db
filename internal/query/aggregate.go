package query

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/survivorlens/internal/manifest"
)

// ErrBadGrouping is returned for unknown grouping columns or a column count
// other than one or two.
var ErrBadGrouping = errors.New("bad grouping")

// Group is one cell of an aggregation: its key values (one per grouping
// column), how many records fell in it, and their survival rate.
type Group struct {
	Keys  []string `json:"keys" yaml:"keys"`
	Count int      `json:"count" yaml:"count"`
	Mean  float64  `json:"mean" yaml:"mean"`
}

// Aggregation holds groups in natural key order: classes numerically, fare
// buckets in their fixed order, everything else lexicographically.
type Aggregation struct {
	Columns []string `json:"columns" yaml:"columns"`
	Groups  []Group  `json:"groups" yaml:"groups"`
}

// Lookup finds the group with exactly these key values.
func (a Aggregation) Lookup(keys ...string) (Group, bool) {
	for _, g := range a.Groups {
		if equalKeys(g.Keys, keys) {
			return g, true
		}
	}
	return Group{}, false
}

type keyFunc func(manifest.Record) (string, bool)

var groupable = map[string]keyFunc{
	manifest.ColumnSex: func(r manifest.Record) (string, bool) {
		return r.Sex, r.Sex != ""
	},
	manifest.ColumnClass: func(r manifest.Record) (string, bool) {
		return strconv.Itoa(r.Class), r.Class > 0
	},
	manifest.ColumnEmbarked: func(r manifest.Record) (string, bool) {
		return r.Embarked, r.Embarked != ""
	},
	manifest.ColumnFareBucket: func(r manifest.Record) (string, bool) {
		return r.Bucket.String(), r.Bucket != manifest.NoBucket
	},
}

// GroupableColumns lists the columns AggregateMean accepts.
func GroupableColumns() []string {
	return []string{manifest.ColumnSex, manifest.ColumnClass, manifest.ColumnEmbarked, manifest.ColumnFareBucket}
}

// AggregateMean groups d by one or two categorical columns and computes the
// mean outcome per group. Records with no value for a grouping column are left
// out, so no group is ever empty and every mean lies in [0,1].
func AggregateMean(d *manifest.Dataset, columns ...string) (Aggregation, error) {
	if len(columns) < 1 || len(columns) > 2 {
		return Aggregation{}, fmt.Errorf("%w: need one or two columns, got %d", ErrBadGrouping, len(columns))
	}
	keyFns := make([]keyFunc, len(columns))
	for i, c := range columns {
		fn, ok := groupable[c]
		if !ok {
			return Aggregation{}, fmt.Errorf("%w: cannot group by %q (use %s)", ErrBadGrouping, c, strings.Join(GroupableColumns(), ", "))
		}
		keyFns[i] = fn
	}

	type acc struct {
		keys     []string
		n        int
		survived int
	}
	groups := map[string]*acc{}
	order := make([]string, 0)
	for i := 0; i < d.Len(); i++ {
		r := d.At(i)
		keys := make([]string, len(keyFns))
		present := true
		for j, fn := range keyFns {
			k, ok := fn(r)
			if !ok {
				present = false
				break
			}
			keys[j] = k
		}
		if !present {
			continue
		}
		id := strings.Join(keys, "\x00")
		g, ok := groups[id]
		if !ok {
			g = &acc{keys: keys}
			groups[id] = g
			order = append(order, id)
		}
		g.n++
		if r.Survived {
			g.survived++
		}
	}

	out := Aggregation{Columns: append([]string(nil), columns...), Groups: make([]Group, 0, len(order))}
	for _, id := range order {
		g := groups[id]
		out.Groups = append(out.Groups, Group{Keys: g.keys, Count: g.n, Mean: float64(g.survived) / float64(g.n)})
	}
	sort.SliceStable(out.Groups, func(i, j int) bool {
		return lessKeys(columns, out.Groups[i].Keys, out.Groups[j].Keys)
	})
	return out, nil
}

// BucketRate is one bar of the survival-by-fare chart.
type BucketRate struct {
	Bucket  string  `json:"bucket" yaml:"bucket"`
	Count   int     `json:"count" yaml:"count"`
	Rate    float64 `json:"rate" yaml:"rate"`
	Present bool    `json:"present" yaml:"present"`
}

// SurvivalByFareBucket returns all four fare buckets in their fixed order.
// Buckets with no passengers have Present=false and a zero rate.
func SurvivalByFareBucket(d *manifest.Dataset) []BucketRate {
	agg, _ := AggregateMean(d, manifest.ColumnFareBucket)
	out := make([]BucketRate, 0, 4)
	for _, b := range manifest.FareBuckets() {
		br := BucketRate{Bucket: b.String()}
		if g, ok := agg.Lookup(b.String()); ok {
			br.Count = g.Count
			br.Rate = g.Mean
			br.Present = true
		}
		out = append(out, br)
	}
	return out
}

func lessKeys(columns []string, a, b []string) bool {
	for i, col := range columns {
		if a[i] == b[i] {
			continue
		}
		switch col {
		case manifest.ColumnClass:
			x, _ := strconv.Atoi(a[i])
			y, _ := strconv.Atoi(b[i])
			return x < y
		case manifest.ColumnFareBucket:
			x, _ := manifest.ParseFareBucket(a[i])
			y, _ := manifest.ParseFareBucket(b[i])
			return x < y
		default:
			return a[i] < b[i]
		}
	}
	return false
}

func equalKeys(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
