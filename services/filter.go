package services

import (
	"regexp"
	"strings"

	"suumo-scraper/models"
)

// walkRegexp captures the minutes of "徒歩5分" or "歩5分" at the start of
// the text that follows a station name.
var walkRegexp = regexp.MustCompile(`^\s*(?:徒歩|歩)\s*(\d+)\s*分`)

// Filter returns the listings that satisfy spec, in input order.
func Filter(listings []*models.Listing, spec models.FilterSpec) []*models.Listing {
	stations := spec.TargetStations()
	sizeMax, hasSizeMax := spec.SizeMax()
	ageMin, hasAgeMin := spec.BuildingAgeMin()
	ageMax, hasAgeMax := spec.BuildingAgeMax()

	out := make([]*models.Listing, 0, len(listings))
	for _, l := range listings {
		if !spec.AcceptsPlan(l.FloorPlan) {
			continue
		}
		if hasSizeMax && l.SizeM2 > sizeMax {
			continue
		}
		if age := l.BuildingAgeYears; age != nil {
			if (hasAgeMin && *age < ageMin) || (hasAgeMax && *age > ageMax) {
				continue
			}
		}
		if len(stations) > 0 {
			if _, ok := AssignStation(l.StationText, stations); !ok {
				continue
			}
		}
		out = append(out, l)
	}
	return out
}

// AssignStation returns the first station of stations that occurs in text.
// Matching is a literal, case-sensitive substring test.
func AssignStation(text string, stations []string) (string, bool) {
	for _, s := range stations {
		if s != "" && strings.Contains(text, s) {
			return s, true
		}
	}
	return "", false
}

// WalkMinutes returns the walking time written right after station in text,
// or "" when the station is absent or is reached some other way (a bus
// ride followed by a walk from the stop does not count).
func WalkMinutes(text, station string) string {
	i := strings.Index(text, station)
	if station == "" || i < 0 {
		return ""
	}
	rest := strings.TrimPrefix(text[i+len(station):], "駅")
	m := walkRegexp.FindStringSubmatch(rest)
	if m == nil {
		return ""
	}
	return m[1]
}

// StationDistances lists, for every listing, each target station its
// station text mentions, with the walking time to it.
func StationDistances(listings []*models.Listing, stations []string) []models.StationDistance {
	var out []models.StationDistance
	for _, l := range listings {
		for _, s := range stations {
			if s == "" || !strings.Contains(l.StationText, s) {
				continue
			}
			out = append(out, models.StationDistance{
				StationName:  s,
				BuildingName: l.BuildingName,
				WalkMinutes:  WalkMinutes(l.StationText, s),
				Rent:         l.Rent,
			})
		}
	}
	return out
}
