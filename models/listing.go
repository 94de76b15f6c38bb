package models

import "strings"

// NoData is the placeholder the site (and the extractor) uses for a value
// that is not present on the page.
const NoData = "情報なし"

// FloorPlan is a room-configuration code such as 1K or 2LDK.
type FloorPlan string

const (
	Plan1R   FloorPlan = "1R"
	Plan1K   FloorPlan = "1K"
	Plan1DK  FloorPlan = "1DK"
	Plan1LDK FloorPlan = "1LDK"
	Plan2K   FloorPlan = "2K"
	Plan2DK  FloorPlan = "2DK"
	Plan2LDK FloorPlan = "2LDK"
	Plan3K   FloorPlan = "3K"
	Plan3DK  FloorPlan = "3DK"
	Plan3LDK FloorPlan = "3LDK"
	Plan4K   FloorPlan = "4K"
	Plan4DK  FloorPlan = "4DK"
	Plan4LDK FloorPlan = "4LDK"
)

// AllFloorPlans lists every recognised plan in provider code order.
var AllFloorPlans = []FloorPlan{
	Plan1R, Plan1K, Plan1DK, Plan1LDK,
	Plan2K, Plan2DK, Plan2LDK,
	Plan3K, Plan3DK, Plan3LDK,
	Plan4K, Plan4DK, Plan4LDK,
}

// Valid reports whether p is one of the recognised plan codes.
func (p FloorPlan) Valid() bool {
	for _, known := range AllFloorPlans {
		if p == known {
			return true
		}
	}
	return false
}

// studioLabel is how the site prints a 1R unit.
const studioLabel = "ワンルーム"

// ParseFloorPlan trims a plan label and maps the studio label to Plan1R.
// Labels outside the known set are passed through unchanged.
func ParseFloorPlan(label string) FloorPlan {
	s := strings.TrimSpace(label)
	if s == studioLabel {
		return Plan1R
	}
	return FloorPlan(s)
}

// RawListing holds one unit exactly as it was read from an index page.
// Building-level fields are shared by every unit of the same building.
type RawListing struct {
	BuildingName  string
	StationText   string
	RentText      string
	FloorPlanText string
	SizeText      string
	// AgeText is empty when the page carries no age node at all.
	AgeText string
	Page    int
}

// Listing is the normalised record handed to the filter and the sinks.
type Listing struct {
	ID               int64
	BuildingName     string
	StationText      string
	Rent             float64 // 万円
	FloorPlan        FloorPlan
	SizeM2           float64
	BuildingAgeYears *float64
}

// StationDistance links a listing to one of the target stations it mentions.
type StationDistance struct {
	StationName  string
	BuildingName string
	WalkMinutes  string // empty when no walk time follows the station name
	Rent         float64
}

// Stats mirrors the columns of a pandas describe() over one numeric field.
type Stats struct {
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
}

// Report holds the analytics computed over the filtered dataset.
type Report struct {
	Total int
	// ByStation counts listings by their first matching target station.
	// Listings with no match are counted under OtherStation.
	ByStation    map[string]int
	StationOrder []string
	Rent         Stats
	Size         Stats
	Distances    []StationDistance
}

// OtherStation is the bucket for listings that match no target station.
const OtherStation = "Other"
