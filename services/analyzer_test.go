package services

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"suumo-scraper/models"
)

func sampleListings() []*models.Listing {
	return []*models.Listing{
		{BuildingName: "A", StationText: "大井町駅 歩5分", Rent: 8, FloorPlan: models.Plan1K, SizeM2: 20},
		{BuildingName: "B", StationText: "大井町駅 歩8分", Rent: 9, FloorPlan: models.Plan1K, SizeM2: 22},
		{BuildingName: "C", StationText: "品川駅 歩10分", Rent: 12, FloorPlan: models.Plan1R, SizeM2: 18},
		{BuildingName: "D", StationText: "五反田駅 歩3分", Rent: 11, FloorPlan: models.Plan1K, SizeM2: 25},
	}
}

func TestAnalyzeStationBreakdown(t *testing.T) {
	spec := models.NewFilterSpec(models.FilterOptions{TargetStations: []string{"大井町", "品川"}})
	r := NewAnalyzer(newTestLogger()).Analyze(sampleListings(), spec)

	if r.Total != 4 {
		t.Errorf("Total: got %d, want 4", r.Total)
	}
	want := map[string]int{"大井町": 2, "品川": 1, models.OtherStation: 1}
	for k, v := range want {
		if r.ByStation[k] != v {
			t.Errorf("ByStation[%s]: got %d, want %d", k, r.ByStation[k], v)
		}
	}
	wantOrder := []string{"大井町", "品川", models.OtherStation}
	if strings.Join(r.StationOrder, ",") != strings.Join(wantOrder, ",") {
		t.Errorf("StationOrder: got %v, want %v", r.StationOrder, wantOrder)
	}
	if len(r.Distances) != 3 {
		t.Errorf("Distances: got %d, want 3", len(r.Distances))
	}
}

func TestDescribe(t *testing.T) {
	st := Describe([]float64{9, 8, 12, 11})

	checks := []struct {
		name      string
		got, want float64
	}{
		{"mean", st.Mean, 10},
		{"min", st.Min, 8},
		{"q1", st.Q1, 8.75},
		{"median", st.Median, 10},
		{"q3", st.Q3, 11.25},
		{"max", st.Max, 12},
		{"std", st.Std, math.Sqrt(10.0 / 3.0)},
	}
	if st.Count != 4 {
		t.Errorf("count: got %d, want 4", st.Count)
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-9 {
			t.Errorf("%s: got %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestDescribeSmallInputs(t *testing.T) {
	empty := Describe(nil)
	if empty.Count != 0 || !math.IsNaN(empty.Mean) {
		t.Errorf("empty input: got %+v", empty)
	}

	one := Describe([]float64{5})
	if one.Mean != 5 || one.Median != 5 || !math.IsNaN(one.Std) {
		t.Errorf("single value: got %+v", one)
	}
}

func TestPrintReport(t *testing.T) {
	spec := models.NewFilterSpec(models.FilterOptions{TargetStations: []string{"大井町"}})
	listings := sampleListings()
	r := NewAnalyzer(newTestLogger()).Analyze(listings, spec)

	var buf bytes.Buffer
	PrintReport(&buf, r, listings[:2])
	out := buf.String()

	for _, want := range []string{"Summary Statistics", "Listings by Station", "大井町", "Other", "10.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("report output missing %q", want)
		}
	}
}
