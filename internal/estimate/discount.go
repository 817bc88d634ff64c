package estimate

import (
	"math"

	"github.com/gleamhq/estimator/internal/models"
)

// BundleDiscount maps the count of distinct selected services to a discount
// fraction. Monotonically non-decreasing in the service count.
//
//	1 service  ->  0%
//	2 services ->  5%
//	3 services ->  7.5%
//	4 or more  -> 10%
func BundleDiscount(serviceCount int) float64 {
	switch {
	case serviceCount >= 4:
		return 0.10
	case serviceCount == 3:
		return 0.075
	case serviceCount == 2:
		return 0.05
	default:
		return 0
	}
}

// ApplyDiscount applies a discount fraction to an already-rounded band total,
// rounding the discounted price up to the whole dollar. Each band is
// discounted independently.
func ApplyDiscount(total models.Cents, discount float64) models.Cents {
	discounted := math.Ceil(float64(total) * (1 - discount))
	return models.Cents(discounted).CeilToDollar()
}
