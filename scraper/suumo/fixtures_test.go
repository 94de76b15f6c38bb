package suumo

import (
	"fmt"
	"strings"
)

type fixtureUnit struct {
	rent, plan, size string
	// omit drops one of "rent", "plan", "size" from the markup
	omit string
}

type fixtureBuilding struct {
	name, station, age string
	units              []fixtureUnit
}

// renderPage builds a cut-down Suumo result page.
func renderPage(buildings ...fixtureBuilding) string {
	var b strings.Builder
	b.WriteString(`<html><body><div id="js-bukkenList">`)
	for _, bl := range buildings {
		b.WriteString(`<div class="cassetteitem">`)
		if bl.name != "" {
			fmt.Fprintf(&b, `<div class="cassetteitem_content-title">%s</div>`, bl.name)
		}
		b.WriteString(`<ul class="cassetteitem_detail">`)
		if bl.station != "" {
			fmt.Fprintf(&b, `<li class="cassetteitem_detail-col2"><div class="cassetteitem_detail-text">%s</div></li>`, bl.station)
		}
		if bl.age != "" {
			fmt.Fprintf(&b, `<li class="cassetteitem_detail-col3"><div>%s</div><div>3階建</div></li>`, bl.age)
		}
		b.WriteString(`</ul><table class="cassetteitem_other">`)
		for _, u := range bl.units {
			b.WriteString(`<tbody><tr class="js-cassette_link">`)
			if u.omit != "rent" {
				fmt.Fprintf(&b, `<td><span class="cassetteitem_price cassetteitem_price--rent"><span class="cassetteitem_other-emphasis ui-text--bold">%s</span></span></td>`, u.rent)
			}
			if u.omit != "plan" {
				fmt.Fprintf(&b, `<td><span class="cassetteitem_madori">%s</span></td>`, u.plan)
			}
			if u.omit != "size" {
				fmt.Fprintf(&b, `<td><span class="cassetteitem_menseki">%s</span></td>`, u.size)
			}
			b.WriteString(`</tr></tbody>`)
		}
		b.WriteString(`</table></div>`)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

func samplePage(prefix string, buildings int) string {
	var bs []fixtureBuilding
	for i := 0; i < buildings; i++ {
		bs = append(bs, fixtureBuilding{
			name:    fmt.Sprintf("%s-%d", prefix, i),
			station: "ＪＲ京浜東北線/大井町駅 歩5分",
			age:     "築10年",
			units:   []fixtureUnit{{rent: "8.5万円", plan: "1K", size: "22.5m2"}},
		})
	}
	return renderPage(bs...)
}
