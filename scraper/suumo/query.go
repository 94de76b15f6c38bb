package suumo

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"suumo-scraper/models"
)

// floorPlanCodes maps each plan to the query parameter Suumo uses for it.
var floorPlanCodes = map[models.FloorPlan]string{
	models.Plan1R:   "mdg01",
	models.Plan1K:   "mdg02",
	models.Plan1DK:  "mdg03",
	models.Plan1LDK: "mdg04",
	models.Plan2K:   "mdg05",
	models.Plan2DK:  "mdg06",
	models.Plan2LDK: "mdg07",
	models.Plan3K:   "mdg08",
	models.Plan3DK:  "mdg09",
	models.Plan3LDK: "mdg10",
	models.Plan4K:   "mdg11",
	models.Plan4DK:  "mdg12",
	models.Plan4LDK: "mdg13",
}

// BuildSearchURL adds the rent, floor-plan and size conditions of spec to
// the base search URL. Conditions already present in base are replaced;
// parameters spec does not touch (region, station codes) are kept as given.
// Plans without a provider code are dropped.
func BuildSearchURL(base string, spec models.FilterSpec) (string, error) {
	if strings.TrimSpace(base) == "" {
		return "", models.ErrEmptyBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}

	q := u.Query()
	if v, ok := spec.RentMin(); ok {
		q.Set("cb", formatNumber(v))
	}
	if v, ok := spec.RentMax(); ok {
		q.Set("ct", formatNumber(v))
	}
	for _, plan := range spec.FloorPlans() {
		if code, ok := floorPlanCodes[plan]; ok {
			q.Set(code, "1")
		}
	}
	if v, ok := spec.SizeMin(); ok {
		q.Set("mb", formatNumber(v))
	}
	if v, ok := spec.SizeMax(); ok {
		q.Set("mt", formatNumber(v))
	}

	u.RawQuery = q.Encode()
	return u.String(), nil
}

// PageURL returns the URL of the given result page.
func PageURL(searchURL string, page int) string {
	sep := "&"
	if !strings.Contains(searchURL, "?") {
		sep = "?"
	}
	return searchURL + sep + "page=" + strconv.Itoa(page)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
