package manifest

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

func TestBucketForBreakpoints(t *testing.T) {
	cases := []struct {
		fare float64
		want string
	}{
		{0, "0–50"},
		{-3, "0–50"},
		{50, "0–50"},
		{50.01, "51–100"},
		{100, "51–100"},
		{100.5, "101–150"},
		{150, "101–150"},
		{150.01, "151+"},
		{512.3292, "151+"},
	}
	for _, tc := range cases {
		if got := BucketFor(tc.fare).String(); got != tc.want {
			t.Errorf("BucketFor(%v) = %q, want %q", tc.fare, got, tc.want)
		}
	}
	if b := BucketFor(math.NaN()); b != NoBucket {
		t.Fatalf("expected NaN fare to have no bucket, got %v", b)
	}
}

func TestBucketForIsTotalOverFiniteFares(t *testing.T) {
	valid := map[FareBucket]bool{}
	for _, b := range FareBuckets() {
		valid[b] = true
	}
	for f := -10.0; f <= 600; f += 0.37 {
		b := BucketFor(f)
		if !valid[b] {
			t.Fatalf("fare %v mapped outside the fixed buckets: %v", f, b)
		}
		if BucketFor(f) != b {
			t.Fatalf("fare %v mapped non-deterministically", f)
		}
	}
}

func TestParseFareBucketRoundTrip(t *testing.T) {
	for _, b := range FareBuckets() {
		got, ok := ParseFareBucket(b.String())
		if !ok || got != b {
			t.Fatalf("ParseFareBucket(%q) = %v,%v", b.String(), got, ok)
		}
	}
	if _, ok := ParseFareBucket("cheap"); ok {
		t.Fatal("expected unknown label to fail")
	}
}

func TestWithFareDerivesBucket(t *testing.T) {
	r := NewRecord(0, nil).WithFare(Float(120))
	if r.Bucket != Bucket101To150 {
		t.Fatalf("bucket = %v", r.Bucket)
	}
	r = r.WithFare(nil)
	if r.Bucket != NoBucket {
		t.Fatalf("expected no bucket after clearing fare, got %v", r.Bucket)
	}
}

func TestWriteCSVRoundTripsRawCells(t *testing.T) {
	header := []string{"PassengerId", "Survived", "Sex", "Age", "Fare", "Name"}
	rows := [][]string{
		{"1", "0", "male", "22", "7.25", "Braund, Mr. Owen Harris"},
		{"2", "1", "female", "", "71.2833", "Cumings, Mrs. John Bradley"},
	}
	recs := make([]Record, len(rows))
	for i, row := range rows {
		recs[i] = NewRecord(i, row)
	}
	d := New("mem", header, recs)

	var buf bytes.Buffer
	if err := d.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := "PassengerId,Survived,Sex,Age,Fare,Name\n" +
		"1,0,male,22,7.25,\"Braund, Mr. Owen Harris\"\n" +
		"2,1,female,,71.2833,\"Cumings, Mrs. John Bradley\"\n"
	if buf.String() != want {
		t.Fatalf("unexpected csv:\n%s", buf.String())
	}
}

func TestWriteCSVEmptyViewWritesHeader(t *testing.T) {
	d := New("mem", []string{"Sex", "Survived"}, []Record{NewRecord(0, []string{"male", "0"})})
	empty := d.Derive(nil)
	var buf bytes.Buffer
	if err := empty.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "Sex,Survived" {
		t.Fatalf("expected header only, got %q", buf.String())
	}
}

func TestDeriveKeepsIdentity(t *testing.T) {
	d := New("src.csv", []string{"Survived"}, []Record{NewRecord(0, []string{"1"}), NewRecord(1, []string{"0"})})
	v := d.Derive(d.Records()[1:])
	if v.ID() != d.ID() || v.Source() != d.Source() {
		t.Fatal("derived view lost identity")
	}
	if v.Len() != 1 || v.At(0).Index != 1 {
		t.Fatalf("unexpected view: %v", v.Indices())
	}
	if d.Len() != 2 {
		t.Fatal("parent mutated")
	}
	other := New("src.csv", []string{"Survived"}, nil)
	if other.ID() == d.ID() {
		t.Fatal("expected distinct load IDs")
	}
}

func TestHasFamily(t *testing.T) {
	r := Record{}
	if r.HasFamily() {
		t.Fatal("expected no family")
	}
	r.Parch = 1
	if !r.HasFamily() {
		t.Fatal("expected family")
	}
}
