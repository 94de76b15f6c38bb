package services

import (
	"testing"

	"suumo-scraper/models"
)

func TestFilterPlanAndSize(t *testing.T) {
	spec := models.NewFilterSpec(models.FilterOptions{
		FloorPlans: []models.FloorPlan{models.Plan1K},
		SizeMax:    models.Float(25),
	})
	listings := []*models.Listing{
		{BuildingName: "keep", FloorPlan: models.Plan1K, SizeM2: 20},
		{BuildingName: "plan", FloorPlan: models.Plan1LDK, SizeM2: 20},
		{BuildingName: "size", FloorPlan: models.Plan1K, SizeM2: 30},
	}

	got := Filter(listings, spec)
	if len(got) != 1 || got[0] != listings[0] {
		t.Fatalf("expected exactly the first listing, got %d", len(got))
	}
}

func TestFilterStudioLabelMatchesNormalizedPlan(t *testing.T) {
	spec := models.NewFilterSpec(models.FilterOptions{
		FloorPlans: []models.FloorPlan{"ワンルーム", models.Plan1K},
	})
	n := NewNormalizer(newTestLogger(), SentinelAsZero)
	listings, errs := n.Normalize([]*models.RawListing{
		{BuildingName: "studio", RentText: "7万円", FloorPlanText: "ワンルーム", SizeText: "18m2"},
		{BuildingName: "1k", RentText: "8万円", FloorPlanText: "1K", SizeText: "20m2"},
		{BuildingName: "1ldk", RentText: "12万円", FloorPlanText: "1LDK", SizeText: "35m2"},
	})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	got := Filter(listings, spec)
	if len(got) != 2 || got[0].BuildingName != "studio" || got[1].BuildingName != "1k" {
		t.Fatalf("expected studio and 1k, got %d listings", len(got))
	}
}

func TestFilterBuildingAge(t *testing.T) {
	spec := models.NewFilterSpec(models.FilterOptions{
		BuildingAgeMin: models.Float(1),
		BuildingAgeMax: models.Float(10),
	})
	listings := []*models.Listing{
		{BuildingName: "unset"},
		{BuildingName: "new", BuildingAgeYears: models.Float(0)},
		{BuildingName: "mid", BuildingAgeYears: models.Float(10)},
		{BuildingName: "old", BuildingAgeYears: models.Float(25)},
	}

	got := Filter(listings, spec)
	if len(got) != 2 || got[0].BuildingName != "unset" || got[1].BuildingName != "mid" {
		names := []string{}
		for _, l := range got {
			names = append(names, l.BuildingName)
		}
		t.Errorf("got %v, want [unset mid]", names)
	}
}

func TestFilterStations(t *testing.T) {
	spec := models.NewFilterSpec(models.FilterOptions{TargetStations: []string{"大井町", "品川"}})
	listings := []*models.Listing{
		{BuildingName: "A", StationText: "ＪＲ京浜東北線/大井町駅 歩5分"},
		{BuildingName: "B", StationText: "京急本線/北品川駅 歩3分"},
		{BuildingName: "C", StationText: "東急池上線/戸越銀座駅 歩4分"},
	}

	got := Filter(listings, spec)
	if len(got) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(got))
	}
	if got[0].BuildingName != "A" || got[1].BuildingName != "B" {
		t.Errorf("unexpected order: %s, %s", got[0].BuildingName, got[1].BuildingName)
	}
}

func TestFilterEmptyPlanSetAcceptsAll(t *testing.T) {
	spec := models.NewFilterSpec(models.FilterOptions{})
	listings := []*models.Listing{{FloorPlan: models.Plan3LDK}, {FloorPlan: "5SLDK"}}
	if got := Filter(listings, spec); len(got) != 2 {
		t.Errorf("expected all listings with no constraints, got %d", len(got))
	}
}

func TestAssignStationFirstMatchWins(t *testing.T) {
	text := "大井町駅 徒歩5分"
	station, ok := AssignStation(text, []string{"大井町", "品川"})
	if !ok || station != "大井町" {
		t.Fatalf("AssignStation = %q, %v; want 大井町", station, ok)
	}
	if walk := WalkMinutes(text, station); walk != "5" {
		t.Errorf("WalkMinutes = %q; want 5", walk)
	}

	station, _ = AssignStation("品川駅 歩7分 / 大井町駅 歩12分", []string{"大井町", "品川"})
	if station != "大井町" {
		t.Errorf("configuration order should decide, got %q", station)
	}

	if _, ok := AssignStation("OIMACHI", []string{"oimachi"}); ok {
		t.Error("matching must be case-sensitive")
	}
}

func TestWalkMinutes(t *testing.T) {
	tests := []struct {
		text, station, want string
	}{
		{"ＪＲ京浜東北線/大井町駅 歩5分", "大井町", "5"},
		{"品川駅 徒歩 12 分", "品川", "12"},
		{"品川駅 歩7分 / 大井町駅 歩12分", "大井町", "12"},
		{"大井町駅 バス10分", "大井町", ""},
		{"大井町駅 バス10分 (停歩3分)", "大井町", ""},
		{"大井町駅 バス10分 (停歩3分) / 品川駅 歩15分", "品川", "15"},
		{"大井町 歩6分", "大井町", "6"},
		{"品川駅 歩7分", "大井町", ""},
	}
	for _, tt := range tests {
		if got := WalkMinutes(tt.text, tt.station); got != tt.want {
			t.Errorf("WalkMinutes(%q, %q) = %q; want %q", tt.text, tt.station, got, tt.want)
		}
	}
}

func TestStationDistances(t *testing.T) {
	listings := []*models.Listing{
		{BuildingName: "A", StationText: "大井町駅 徒歩5分", Rent: 8},
		{BuildingName: "B", StationText: "五反田駅 歩9分", Rent: 9},
	}

	got := StationDistances(listings, []string{"大井町", "品川"})
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	want := models.StationDistance{StationName: "大井町", BuildingName: "A", WalkMinutes: "5", Rent: 8}
	if got[0] != want {
		t.Errorf("got %+v; want %+v", got[0], want)
	}
}
