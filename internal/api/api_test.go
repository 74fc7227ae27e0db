package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/KaramelBytes/survivorlens/internal/analysis"
	"github.com/KaramelBytes/survivorlens/internal/loader"
	"github.com/KaramelBytes/survivorlens/internal/manifest"
	"github.com/KaramelBytes/survivorlens/internal/query"
)

const header = "PassengerId,Survived,Pclass,Name,Sex,Age,SibSp,Parch,Fare,Embarked\n"

const fixtureCSV = header +
	"1,0,3,Braund,male,22,1,0,7.25,S\n" +
	"2,1,1,Cumings,female,38,1,0,71.2833,C\n" +
	"3,1,3,Heikkinen,female,26,0,0,7.925,S\n" +
	"4,1,1,Futrelle,female,35,1,0,53.1,S\n" +
	"5,0,3,Allen,male,35,0,0,8.05,S\n" +
	"6,0,1,McCarthy,male,54,0,0,51.8625,\n"

type stubSource struct {
	body string
	err  error
}

func (s stubSource) Load(_ context.Context, source string) (*manifest.Dataset, error) {
	if s.err != nil {
		return nil, s.err
	}
	return loader.Parse(source, strings.NewReader(s.body))
}

func newTestServer(src loader.Source) http.Handler {
	return New(loader.NewCache(src, nil), Options{Source: "fixture.csv"}).Routes()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type %q", ct)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
}

func TestSummary(t *testing.T) {
	h := newTestServer(stubSource{body: fixtureCSV})

	rec := get(t, h, "/api/v1/summary")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var all summaryResponse
	decode(t, rec, &all)
	if all.Total != 6 || all.Metrics.Passengers != 6 || all.Metrics.SurvivalRate != 0.5 || all.LoadID == "" {
		t.Fatalf("summary: %+v", all)
	}

	var women summaryResponse
	decode(t, get(t, h, "/api/v1/summary?sex=female"), &women)
	if women.Metrics.Passengers != 3 || women.Metrics.SurvivalRate != 1 {
		t.Fatalf("female summary: %+v", women.Metrics)
	}
	if women.LoadID != all.LoadID {
		t.Fatalf("cached dataset should keep its load id: %s vs %s", women.LoadID, all.LoadID)
	}

	var firstMen summaryResponse
	decode(t, get(t, h, "/api/v1/summary?class=1&sex=male"), &firstMen)
	if firstMen.Metrics.Passengers != 1 || firstMen.Metrics.Survivors != 0 {
		t.Fatalf("first-class men: %+v", firstMen.Metrics)
	}

	var family summaryResponse
	decode(t, get(t, h, "/api/v1/summary?family=true"), &family)
	if family.Metrics.Passengers != 3 {
		t.Fatalf("family filter: %+v", family.Metrics)
	}

	var multi summaryResponse
	decode(t, get(t, h, "/api/v1/summary?class=1,3&port=C&port=S&age_min=30"), &multi)
	if multi.Metrics.Passengers != 3 {
		t.Fatalf("combined filter: %+v", multi.Metrics)
	}
}

func TestBadParameters(t *testing.T) {
	h := newTestServer(stubSource{body: fixtureCSV})
	for _, target := range []string{
		"/api/v1/summary?class=first",
		"/api/v1/summary?age_min=abc",
		"/api/v1/summary?age_min=40&age_max=30",
		"/api/v1/summary?family=maybe",
		"/api/v1/aggregate",
		"/api/v1/aggregate?by=Name",
		"/api/v1/aggregate?by=Sex,Pclass,Embarked",
		"/api/v1/histogram?bins=0",
		"/api/v1/estimate?q_class=1&q_age=30&q_fare=10",
		"/api/v1/estimate?q_sex=male&q_class=x&q_age=30&q_fare=10",
		"/api/v1/estimate?q_sex=male&q_class=1&q_fare=10",
	} {
		rec := get(t, h, target)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d", target, rec.Code)
			continue
		}
		var body map[string]string
		decode(t, rec, &body)
		if body["error"] == "" {
			t.Errorf("%s: missing error message", target)
		}
	}
}

func TestAggregate(t *testing.T) {
	h := newTestServer(stubSource{body: fixtureCSV})

	var bySex query.Aggregation
	decode(t, get(t, h, "/api/v1/aggregate?by=Sex"), &bySex)
	if len(bySex.Groups) != 2 {
		t.Fatalf("groups: %+v", bySex.Groups)
	}
	if g := bySex.Groups[0]; g.Keys[0] != "female" || g.Count != 3 || g.Mean != 1 {
		t.Fatalf("female group: %+v", g)
	}
	if g := bySex.Groups[1]; g.Keys[0] != "male" || g.Count != 3 || g.Mean != 0 {
		t.Fatalf("male group: %+v", g)
	}

	var byClassSex query.Aggregation
	decode(t, get(t, h, "/api/v1/aggregate?by=Pclass,Sex"), &byClassSex)
	var keys []string
	for _, g := range byClassSex.Groups {
		keys = append(keys, strings.Join(g.Keys, "/"))
	}
	if strings.Join(keys, " ") != "1/female 1/male 3/female 3/male" {
		t.Fatalf("order: %v", keys)
	}
}

func TestFareBucketsAndHistogram(t *testing.T) {
	h := newTestServer(stubSource{body: fixtureCSV})

	var buckets []query.BucketRate
	decode(t, get(t, h, "/api/v1/fare-buckets"), &buckets)
	if len(buckets) != 4 || buckets[0].Bucket != "0–50" || buckets[3].Bucket != "151+" {
		t.Fatalf("buckets: %+v", buckets)
	}
	if buckets[0].Count != 3 || buckets[1].Count != 3 || buckets[1].Rate != 2.0/3 {
		t.Fatalf("bucket counts: %+v", buckets)
	}
	if buckets[2].Present || buckets[3].Present {
		t.Fatalf("upper buckets should be empty: %+v", buckets)
	}

	var hist analysis.AgeHistogram
	decode(t, get(t, h, "/api/v1/histogram?bins=4"), &hist)
	if len(hist.Edges) != 5 || hist.Edges[0] != 22 || hist.Edges[4] != 54 {
		t.Fatalf("edges: %v", hist.Edges)
	}
	if len(hist.Facets) != 2 {
		t.Fatalf("facets: %+v", hist.Facets)
	}

	var corr analysis.CorrMatrix
	decode(t, get(t, h, "/api/v1/correlations"), &corr)
	if len(corr.Columns) != 6 || len(corr.Values) != 6 {
		t.Fatalf("correlations: %+v", corr)
	}
}

func TestEstimate(t *testing.T) {
	h := newTestServer(stubSource{body: fixtureCSV})

	var hit estimateResponse
	decode(t, get(t, h, "/api/v1/estimate?q_sex=female&q_class=1&q_age=36&q_fare=60"), &hit)
	if !hit.Match || hit.Support != 2 || hit.Probability != 1 {
		t.Fatalf("estimate: %+v", hit)
	}

	// filters narrow the comparison group
	var narrowed estimateResponse
	decode(t, get(t, h, "/api/v1/estimate?age_max=36&q_sex=female&q_class=1&q_age=36&q_fare=60"), &narrowed)
	if !narrowed.Match || narrowed.Support != 1 || narrowed.Probability != 1 {
		t.Fatalf("estimate within age_max=36: %+v", narrowed)
	}
	var excluded estimateResponse
	decode(t, get(t, h, "/api/v1/estimate?sex=male&q_sex=female&q_class=1&q_age=36&q_fare=60"), &excluded)
	if excluded.Match || excluded.Support != 0 {
		t.Fatalf("estimate within sex=male: %+v", excluded)
	}
	if rec := get(t, h, "/api/v1/estimate?age_min=40&age_max=30&q_sex=female&q_class=1&q_age=36&q_fare=60"); rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed filter status %d", rec.Code)
	}

	var miss estimateResponse
	decode(t, get(t, h, "/api/v1/estimate?q_sex=male&q_class=2&q_age=30&q_fare=10"), &miss)
	if miss.Match || miss.Support != 0 {
		t.Fatalf("expected no match: %+v", miss)
	}
}

func TestDownload(t *testing.T) {
	h := newTestServer(stubSource{body: fixtureCSV})

	rec := get(t, h, "/api/v1/passengers.csv?sex=female&port=S")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("content type %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, DownloadName) {
		t.Fatalf("content disposition %q", cd)
	}
	want := header +
		"3,1,3,Heikkinen,female,26,0,0,7.925,S\n" +
		"4,1,1,Futrelle,female,35,1,0,53.1,S\n"
	if rec.Body.String() != want {
		t.Fatalf("body:\n%s\nwant:\n%s", rec.Body.String(), want)
	}

	rec = get(t, h, "/api/v1/passengers.csv?port=")
	if !strings.HasSuffix(rec.Body.String(), "6,0,1,McCarthy,male,54,0,0,51.8625,\n") || strings.Count(rec.Body.String(), "\n") != 2 {
		t.Fatalf("missing-port download:\n%s", rec.Body.String())
	}

	rec = get(t, h, "/api/v1/passengers.csv?sex=nobody")
	if rec.Body.String() != header {
		t.Fatalf("empty view should export header only:\n%s", rec.Body.String())
	}
}

func TestLoaderFailuresMapToStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"unavailable", &loader.SourceUnavailableError{Source: "fixture.csv", Err: errors.New("connection refused")}, http.StatusBadGateway},
		{"schema", &loader.InvalidSchemaError{Source: "fixture.csv", Reason: "missing required column Survived"}, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestServer(stubSource{err: tc.err})
			rec := get(t, h, "/api/v1/summary")
			if rec.Code != tc.want {
				t.Fatalf("status %d, want %d", rec.Code, tc.want)
			}
			var body map[string]string
			decode(t, rec, &body)
			if !strings.Contains(body["error"], "fixture.csv") {
				t.Fatalf("error body: %v", body)
			}
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	h := newTestServer(stubSource{body: fixtureCSV})
	if rec := get(t, h, "/api/v1/nope"); rec.Code != http.StatusNotFound {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestSwaggerDoc(t *testing.T) {
	h := newTestServer(stubSource{body: fixtureCSV})
	rec := get(t, h, "/swagger/doc.json")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var doc struct {
		BasePath string                     `json:"basePath"`
		Paths    map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode doc: %v", err)
	}
	if doc.BasePath != "/api/v1" {
		t.Fatalf("base path %q", doc.BasePath)
	}
	for _, p := range []string{"/summary", "/aggregate", "/fare-buckets", "/histogram", "/correlations", "/estimate", "/passengers.csv"} {
		if _, ok := doc.Paths[p]; !ok {
			t.Errorf("doc missing path %s", p)
		}
	}
}
