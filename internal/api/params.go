package api

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/KaramelBytes/survivorlens/internal/query"
)

// parseSelection reads the filter parameters shared by every endpoint.
// Absent set parameters select every value; "port=" selects passengers with
// no recorded port.
func parseSelection(v url.Values) (query.Selection, error) {
	var sel query.Selection
	sel.Sexes = listParam(v, "sex")
	sel.Ports = listParam(v, "port")
	if raw := listParam(v, "class"); raw != nil {
		sel.Classes = make([]int, 0, len(raw))
		for _, c := range raw {
			n, err := strconv.Atoi(c)
			if err != nil || n <= 0 {
				return query.Selection{}, fmt.Errorf("invalid class %q", c)
			}
			sel.Classes = append(sel.Classes, n)
		}
	}
	var err error
	if sel.AgeMin, err = floatParam(v, "age_min"); err != nil {
		return query.Selection{}, err
	}
	if sel.AgeMax, err = floatParam(v, "age_max"); err != nil {
		return query.Selection{}, err
	}
	if sel.FareMin, err = floatParam(v, "fare_min"); err != nil {
		return query.Selection{}, err
	}
	if sel.FareMax, err = floatParam(v, "fare_max"); err != nil {
		return query.Selection{}, err
	}
	if raw := v.Get("family"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return query.Selection{}, fmt.Errorf("invalid family %q", raw)
		}
		sel.HasFamily = b
	}
	return sel, nil
}

// parseQuery reads the hypothetical passenger for /estimate.
func parseQuery(v url.Values) (query.Query, error) {
	var q query.Query
	q.Sex = strings.TrimSpace(v.Get("q_sex"))
	if q.Sex == "" {
		return q, fmt.Errorf("q_sex is required")
	}
	class, err := strconv.Atoi(v.Get("q_class"))
	if err != nil || class <= 0 {
		return q, fmt.Errorf("invalid q_class %q", v.Get("q_class"))
	}
	q.Class = class
	age, err := floatParam(v, "q_age")
	if err != nil {
		return q, err
	}
	fare, err := floatParam(v, "q_fare")
	if err != nil {
		return q, err
	}
	if age == nil || fare == nil {
		return q, fmt.Errorf("q_age and q_fare are required")
	}
	q.Age, q.Fare = *age, *fare
	return q, nil
}

// listParam collects repeated and comma-separated values; nil when the
// parameter is absent.
func listParam(v url.Values, key string) []string {
	raw, ok := v[key]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if item == "" {
			out = append(out, "")
			continue
		}
		for _, part := range strings.Split(item, ",") {
			out = append(out, strings.TrimSpace(part))
		}
	}
	return out
}

func floatParam(v url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("invalid %s %q", key, raw)
	}
	return &f, nil
}

func intParam(v url.Values, key string, def int) (int, error) {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return n, nil
}
