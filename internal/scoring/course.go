package scoring

import "github.com/trentd187/golf-match-tracker/internal/models"

// Totals are the par and distance sums stored on a course.
type Totals struct {
	FrontPar      int
	BackPar       int
	TotalPar      int
	FrontDistance float64
	BackDistance  float64
	TotalDistance float64
}

// CourseTotals sums holes 1–9 into the front nine and 10–18 into the back nine,
// going by hole number rather than slice position.
func CourseTotals(holes []models.Hole) Totals {
	var t Totals
	for _, h := range holes {
		switch {
		case h.HoleNumber >= 1 && h.HoleNumber <= 9:
			t.FrontPar += h.Par
			t.FrontDistance += h.Distance
		case h.HoleNumber >= 10 && h.HoleNumber <= 18:
			t.BackPar += h.Par
			t.BackDistance += h.Distance
		}
	}
	t.TotalPar = t.FrontPar + t.BackPar
	t.TotalDistance = t.FrontDistance + t.BackDistance
	return t
}

// Apply copies the sums onto a course row.
func (t Totals) Apply(c *models.Course) {
	c.FrontPar = t.FrontPar
	c.BackPar = t.BackPar
	c.TotalPar = t.TotalPar
	c.FrontDistance = t.FrontDistance
	c.BackDistance = t.BackDistance
	c.TotalDistance = t.TotalDistance
}
