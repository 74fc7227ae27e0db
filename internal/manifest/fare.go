package manifest

import "math"

// FareBucket is the derived fare category used by the survival-by-fare chart.
// The zero value means "no bucket" (the record has no fare).
type FareBucket int

const (
	NoBucket FareBucket = iota
	Bucket0To50
	Bucket51To100
	Bucket101To150
	Bucket151Plus
)

var bucketLabels = map[FareBucket]string{
	Bucket0To50:    "0–50",
	Bucket51To100:  "51–100",
	Bucket101To150: "101–150",
	Bucket151Plus:  "151+",
}

// FareBuckets returns the four buckets in their fixed display order.
func FareBuckets() []FareBucket {
	return []FareBucket{Bucket0To50, Bucket51To100, Bucket101To150, Bucket151Plus}
}

// BucketFor maps a fare to its bucket. Breakpoints are inclusive upper bounds:
// 50 -> "0–50", 50.01 -> "51–100", 150 -> "101–150", 150.01 -> "151+".
// NaN has no bucket.
func BucketFor(fare float64) FareBucket {
	switch {
	case math.IsNaN(fare):
		return NoBucket
	case fare <= 50:
		return Bucket0To50
	case fare <= 100:
		return Bucket51To100
	case fare <= 150:
		return Bucket101To150
	default:
		return Bucket151Plus
	}
}

// ParseFareBucket resolves a bucket label back to its bucket.
func ParseFareBucket(label string) (FareBucket, bool) {
	for b, l := range bucketLabels {
		if l == label {
			return b, true
		}
	}
	return NoBucket, false
}

func (b FareBucket) String() string {
	if l, ok := bucketLabels[b]; ok {
		return l
	}
	return ""
}
