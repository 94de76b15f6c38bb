package services

import (
	"strconv"
	"strings"
	"unicode"

	"suumo-scraper/models"
	"suumo-scraper/utils"
)

// RentUnitYen is the value of one rent unit. Rents are kept in 万円 as
// the site prints them; multiply by RentUnitYen for yen.
const RentUnitYen = 10000

// SentinelPolicy decides what happens to values the site marks as missing.
type SentinelPolicy int

const (
	// SentinelAsZero turns "no data" into 0. This is lossy: such listings
	// drag rent and size statistics toward zero. It is the default so that
	// output matches earlier runs.
	SentinelAsZero SentinelPolicy = iota
	// SentinelExclude drops listings whose rent or size is missing and
	// leaves a missing building age unset.
	SentinelExclude
)

func (p SentinelPolicy) String() string {
	if p == SentinelExclude {
		return "exclude"
	}
	return "zero"
}

// newBuild is how the site labels a building with no age.
const newBuild = "新築"

// Normalizer converts RawListings into typed Listings.
type Normalizer struct {
	logger *utils.Logger
	policy SentinelPolicy
}

// NewNormalizer creates a Normalizer with the given logger and policy.
func NewNormalizer(logger *utils.Logger, policy SentinelPolicy) *Normalizer {
	return &Normalizer{logger: logger, policy: policy}
}

// Normalize converts every raw listing. A field that fails to parse is
// defaulted and reported in errs; the listing itself is kept. Under
// SentinelExclude, listings with missing rent or size are left out.
func (n *Normalizer) Normalize(raw []*models.RawListing) (listings []*models.Listing, errs []error) {
	listings = make([]*models.Listing, 0, len(raw))
	excluded := 0

	for _, r := range raw {
		if n.policy == SentinelExclude && (isNoData(r.RentText) || isNoData(r.SizeText)) {
			n.logger.Debug("[normalizer] Excluding %q: missing rent or size", r.BuildingName)
			excluded++
			continue
		}

		l := &models.Listing{
			BuildingName: normaliseText(r.BuildingName),
			StationText:  normaliseText(r.StationText),
			FloorPlan:    ParseFloorPlan(r.FloorPlanText),
		}

		var err error
		if l.Rent, err = ParseRent(r.RentText); err != nil {
			errs = append(errs, err)
		}
		if l.SizeM2, err = ParseSize(r.SizeText); err != nil {
			errs = append(errs, err)
		}
		if l.BuildingAgeYears, err = n.parseAge(r.AgeText); err != nil {
			errs = append(errs, err)
		}

		listings = append(listings, l)
	}

	for _, err := range errs {
		n.logger.Warn("[normalizer] %v", err)
	}
	n.logger.Info("[normalizer] Normalized %d → %d listings (excluded %d, %d field errors)",
		len(raw), len(listings), excluded, len(errs))
	return listings, errs
}

// ParseRent reads "8.5万円" as 8.5. The no-data marker reads as 0.
func ParseRent(raw string) (float64, error) {
	return parseNumber("rent", raw, "万円")
}

// ParseSize reads "25m2" or "25m²" as 25. The no-data marker reads as 0.
func ParseSize(raw string) (float64, error) {
	return parseNumber("size", raw, "m2", "m²", "㎡")
}

// ParseAge reads "築12年" as 12 and a new build as 0. The no-data marker
// reads as 0.
func ParseAge(raw string) (float64, error) {
	if strings.TrimSpace(raw) == newBuild {
		return 0, nil
	}
	return parseNumber("building_age", raw, "築", "年以上", "年")
}

func (n *Normalizer) parseAge(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	if n.policy == SentinelExclude && isNoData(raw) {
		return nil, nil
	}
	age, err := ParseAge(raw)
	if err != nil {
		return nil, err
	}
	return &age, nil
}

// ParseFloorPlan maps a floor-plan cell to its plan code.
func ParseFloorPlan(raw string) models.FloorPlan {
	return models.ParseFloorPlan(raw)
}

func parseNumber(field, raw string, affixes ...string) (float64, error) {
	s := strings.TrimSpace(raw)
	if isNoData(s) {
		return 0, nil
	}
	for _, a := range affixes {
		s = strings.ReplaceAll(s, a, "")
	}
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &models.NormalizationError{Field: field, Value: raw, Err: err}
	}
	return v, nil
}

func isNoData(s string) bool {
	return strings.TrimSpace(s) == models.NoData
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}
