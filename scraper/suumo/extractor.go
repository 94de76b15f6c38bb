package suumo

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"suumo-scraper/models"
)

// Extractor turns the markup of one index page into unit rows, in document
// order. Swapping the implementation is all a change of page layout needs.
type Extractor interface {
	Extract(page int, markup []byte) ([]models.RowResult, error)
}

// Selectors of the Suumo "cassette" result layout: one cassette per
// building, one tbody per rentable unit.
const (
	selBuilding = "div.cassetteitem"
	selName     = ".cassetteitem_content-title"
	selStation  = ".cassetteitem_detail-text"
	selAge      = ".cassetteitem_detail-col3 div"
	selUnit     = "table.cassetteitem_other > tbody"
	selRent     = ".cassetteitem_other-emphasis"
	selPlan     = ".cassetteitem_madori"
	selSize     = ".cassetteitem_menseki"
)

// CassetteExtractor reads the Suumo cassette layout.
type CassetteExtractor struct{}

func (CassetteExtractor) Extract(page int, markup []byte) ([]models.RowResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse page %d: %w", page, err)
	}

	var rows []models.RowResult
	index := 0
	doc.Find(selBuilding).Each(func(_ int, item *goquery.Selection) {
		name := firstText(item, selName)
		station := firstText(item, selStation)

		age := ""
		if sel := item.Find(selAge).First(); sel.Length() > 0 {
			age = textOrNoData(sel)
		}

		item.Find(selUnit).Each(func(_ int, unit *goquery.Selection) {
			index++
			row := &models.RawListing{
				BuildingName: name,
				StationText:  station,
				AgeText:      age,
				Page:         page,
			}

			fields := []struct {
				name     string
				selector string
				dst      *string
			}{
				{"rent", selRent, &row.RentText},
				{"floor_plan", selPlan, &row.FloorPlanText},
				{"size", selSize, &row.SizeText},
			}
			for _, f := range fields {
				sel := unit.Find(f.selector).First()
				if sel.Length() == 0 {
					rows = append(rows, models.RowResult{
						Err: &models.ExtractionError{Page: page, Index: index, Field: f.name},
					})
					return
				}
				*f.dst = textOrNoData(sel)
			}

			rows = append(rows, models.RowResult{Listing: row})
		})
	})

	return rows, nil
}

// firstText returns the trimmed text of the first node matching selector,
// or the no-data marker when there is none.
func firstText(s *goquery.Selection, selector string) string {
	sel := s.Find(selector).First()
	if sel.Length() == 0 {
		return models.NoData
	}
	return textOrNoData(sel)
}

func textOrNoData(sel *goquery.Selection) string {
	text := strings.Join(strings.Fields(sel.Text()), " ")
	if text == "" {
		return models.NoData
	}
	return text
}
