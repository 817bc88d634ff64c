package estimate

import (
	"math"

	"github.com/gleamhq/estimator/internal/models"
)

// Distribute splits a total house pane count across building levels using
// fixed ratios. The remainder assignment guarantees the levels sum exactly to
// total for every input, with no rounding drift. Level 3 is only populated
// for three-story homes.
//
//	1 story:  100% level 1
//	2 story:  65% level 1 (ceil), remainder level 2
//	3 story:  60% level 1 (ceil), 30% level 2 (ceil), remainder level 3
func Distribute(total, stories int) models.PaneDistribution {
	if total < 0 {
		total = 0
	}

	var d models.PaneDistribution
	switch stories {
	case 2:
		d.Level1 = int(math.Ceil(float64(total) * 0.65))
		d.Level2 = total - d.Level1
	case 3:
		d.Level1 = int(math.Ceil(float64(total) * 0.60))
		d.Level2 = int(math.Ceil(float64(total) * 0.30))
		// Ceil twice can overshoot tiny totals; cap level 2 so level 3
		// stays a non-negative exact remainder.
		if d.Level1+d.Level2 > total {
			d.Level2 = total - d.Level1
		}
		d.Level3 = total - d.Level1 - d.Level2
	default:
		d.Level1 = total
	}
	return d
}
