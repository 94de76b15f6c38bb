package services

import (
	"math"
	"sort"

	"suumo-scraper/models"
	"suumo-scraper/utils"
)

// Analyzer derives the station breakdown and the descriptive statistics of
// a filtered dataset.
type Analyzer struct {
	logger *utils.Logger
}

func NewAnalyzer(logger *utils.Logger) *Analyzer {
	return &Analyzer{logger: logger}
}

// Analyze builds the report for listings. Each listing is counted once,
// under the first target station its station text contains, or under
// models.OtherStation.
func (a *Analyzer) Analyze(listings []*models.Listing, spec models.FilterSpec) *models.Report {
	stations := spec.TargetStations()
	report := &models.Report{
		Total:     len(listings),
		ByStation: make(map[string]int),
	}

	rents := make([]float64, 0, len(listings))
	sizes := make([]float64, 0, len(listings))
	for _, l := range listings {
		station, ok := AssignStation(l.StationText, stations)
		if !ok {
			station = models.OtherStation
		}
		report.ByStation[station]++

		rents = append(rents, l.Rent)
		sizes = append(sizes, l.SizeM2)
	}

	for _, s := range stations {
		if report.ByStation[s] > 0 {
			report.StationOrder = append(report.StationOrder, s)
		}
	}
	if report.ByStation[models.OtherStation] > 0 {
		report.StationOrder = append(report.StationOrder, models.OtherStation)
	}

	report.Rent = Describe(rents)
	report.Size = Describe(sizes)
	report.Distances = StationDistances(listings, stations)

	a.logger.Debug("[analyzer] %d listings over %d station groups", report.Total, len(report.StationOrder))
	return report
}

// Describe computes count, mean, sample standard deviation, min, quartiles
// and max. Quartiles use linear interpolation between closest ranks. Std is
// NaN for fewer than two values; everything but Count is NaN for none.
func Describe(values []float64) models.Stats {
	st := models.Stats{Count: len(values)}
	if len(values) == 0 {
		nan := math.NaN()
		st.Mean, st.Std, st.Min, st.Q1, st.Median, st.Q3, st.Max = nan, nan, nan, nan, nan, nan, nan
		return st
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	st.Mean = sum / float64(len(sorted))

	st.Std = math.NaN()
	if len(sorted) > 1 {
		var sq float64
		for _, v := range sorted {
			d := v - st.Mean
			sq += d * d
		}
		st.Std = math.Sqrt(sq / float64(len(sorted)-1))
	}

	st.Min = sorted[0]
	st.Max = sorted[len(sorted)-1]
	st.Q1 = quantile(sorted, 0.25)
	st.Median = quantile(sorted, 0.5)
	st.Q3 = quantile(sorted, 0.75)
	return st
}

func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}
