package colorbook

import "image/color"

// HitTester resolves a point in artwork coordinates to the topmost paintable region containing it.
// Any renderer able to answer containment queries can implement it.
type HitTester interface {
	HitTest(p Point) (RegionID, bool)
}

// Region describes a paintable region of a loaded artwork.
type Region struct {
	ID   RegionID
	Name string
	Fill color.NRGBA
}

// Regions lists the paintable regions in paint order.
func (d *Document) Regions() []Region {
	regions := make([]Region, d.Len())
	for i := range regions {
		id := RegionID(i)
		regions[i] = Region{ID: id, Name: d.RegionName(id), Fill: d.fills[i]}
	}
	return regions
}

// FillRegionAt assigns c to the topmost region containing p. Nothing changes on a miss.
func (d *Document) FillRegionAt(ht HitTester, p Point, c color.NRGBA) (RegionID, bool) {
	id, ok := ht.HitTest(p)
	if !ok || !d.valid(id) {
		return 0, false
	}
	d.SetFill(id, c)
	return id, true
}
