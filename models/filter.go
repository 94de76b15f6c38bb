package models

// FilterOptions is the editable form of the search conditions, as read from
// configuration. Nil bounds are unset.
type FilterOptions struct {
	RentMin        *float64    `yaml:"rent_min"`
	RentMax        *float64    `yaml:"rent_max"`
	FloorPlans     []FloorPlan `yaml:"floor_plans"`
	SizeMin        *float64    `yaml:"size_min"`
	SizeMax        *float64    `yaml:"size_max"`
	BuildingAgeMin *float64    `yaml:"building_age_min"`
	BuildingAgeMax *float64    `yaml:"building_age_max"`
	TargetStations []string    `yaml:"target_stations"`
}

// FilterSpec is the frozen form of FilterOptions. It owns copies of every
// slice and bound, so later changes to the options do not leak into it.
type FilterSpec struct {
	rentMin, rentMax *float64
	sizeMin, sizeMax *float64
	ageMin, ageMax   *float64
	plans            []FloorPlan
	stations         []string
}

// NewFilterSpec freezes opts. Plan labels go through ParseFloorPlan, so the
// site's studio label and 1R are the same plan. Duplicate plans and
// stations are collapsed, keeping the first occurrence; empty plan and
// station names are dropped.
func NewFilterSpec(opts FilterOptions) FilterSpec {
	spec := FilterSpec{
		rentMin: copyFloat(opts.RentMin),
		rentMax: copyFloat(opts.RentMax),
		sizeMin: copyFloat(opts.SizeMin),
		sizeMax: copyFloat(opts.SizeMax),
		ageMin:  copyFloat(opts.BuildingAgeMin),
		ageMax:  copyFloat(opts.BuildingAgeMax),
	}

	seenPlan := make(map[FloorPlan]struct{})
	for _, label := range opts.FloorPlans {
		p := ParseFloorPlan(string(label))
		if p == "" {
			continue
		}
		if _, dup := seenPlan[p]; dup {
			continue
		}
		seenPlan[p] = struct{}{}
		spec.plans = append(spec.plans, p)
	}

	seenStation := make(map[string]struct{})
	for _, s := range opts.TargetStations {
		if s == "" {
			continue
		}
		if _, dup := seenStation[s]; dup {
			continue
		}
		seenStation[s] = struct{}{}
		spec.stations = append(spec.stations, s)
	}
	return spec
}

func (f FilterSpec) RentMin() (float64, bool)        { return deref(f.rentMin) }
func (f FilterSpec) RentMax() (float64, bool)        { return deref(f.rentMax) }
func (f FilterSpec) SizeMin() (float64, bool)        { return deref(f.sizeMin) }
func (f FilterSpec) SizeMax() (float64, bool)        { return deref(f.sizeMax) }
func (f FilterSpec) BuildingAgeMin() (float64, bool) { return deref(f.ageMin) }
func (f FilterSpec) BuildingAgeMax() (float64, bool) { return deref(f.ageMax) }

// FloorPlans returns the accepted plans in configuration order.
func (f FilterSpec) FloorPlans() []FloorPlan {
	return append([]FloorPlan(nil), f.plans...)
}

// AcceptsPlan reports whether p is accepted. An empty plan set accepts all.
func (f FilterSpec) AcceptsPlan(p FloorPlan) bool {
	if len(f.plans) == 0 {
		return true
	}
	for _, want := range f.plans {
		if want == p {
			return true
		}
	}
	return false
}

// TargetStations returns the station names in configuration order. The
// order decides which station a listing is assigned to when several match.
func (f FilterSpec) TargetStations() []string {
	return append([]string(nil), f.stations...)
}

// Float returns a pointer to v, for building FilterOptions literals.
func Float(v float64) *float64 { return &v }

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func deref(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}
