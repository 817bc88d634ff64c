package estimate

import (
	"testing"

	"github.com/gleamhq/estimator/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestExtractZip(t *testing.T) {
	tests := []struct {
		name     string
		address  string
		expected string
	}{
		{
			name:     "zip at end of address",
			address:  "123 Main St, Castle Rock, CO 80109",
			expected: "80109",
		},
		{
			name:     "zip mid-address",
			address:  "456 Oak Ave 80206 Denver CO",
			expected: "80206",
		},
		{
			name:     "no zip falls back to default",
			address:  "789 Elm Street, Denver",
			expected: DefaultZip,
		},
		{
			name:     "empty address falls back to default",
			address:  "",
			expected: DefaultZip,
		},
		{
			name:     "street number is not a zip",
			address:  "1234 Main St",
			expected: DefaultZip,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractZip(tt.address))
		})
	}
}

func TestRegionFor(t *testing.T) {
	t.Run("mapped zip returns regional profile", func(t *testing.T) {
		p := RegionFor("80108")
		assert.Equal(t, 1.15, p.Rho)
		assert.Equal(t, 1.60, p.Phi)
	})

	t.Run("unmapped zip silently resolves to standard profile", func(t *testing.T) {
		p := RegionFor("00000")
		assert.Equal(t, 1.10, p.Rho)
		assert.Equal(t, 1.15, p.Phi)
		assert.Equal(t, "Standard Residential", p.Description)
	})

	t.Run("pnw zip flags high skylights", func(t *testing.T) {
		p := RegionFor("99352")
		assert.True(t, p.HighSkylights)
	})
}

func TestBaselineCalculator_Calculate(t *testing.T) {
	bc := NewBaselineCalculator()

	t.Run("regional density scenario", func(t *testing.T) {
		// 3400 sqft in 80109: 34 * 1.15 * 1.45 = 56.695, rounded to 57
		b := bc.Calculate(models.PropertyProfile{
			AboveGradeSqft: 3400,
			Stories:        2,
			ZipCode:        "80109",
			YearBuilt:      1998,
		})
		assert.Equal(t, 57, b.HouseTotal)
		assert.False(t, b.Pre1980)
		assert.Equal(t, 12, b.GarageTarget)
	})

	t.Run("zip extracted from address when not given", func(t *testing.T) {
		withZip := bc.Calculate(models.PropertyProfile{
			AboveGradeSqft: 3400,
			ZipCode:        "80109",
			YearBuilt:      1998,
		})
		fromAddress := bc.Calculate(models.PropertyProfile{
			AboveGradeSqft: 3400,
			Address:        "100 Founders Pkwy, Castle Rock, CO 80109",
			YearBuilt:      1998,
		})
		assert.Equal(t, withZip.HouseTotal, fromAddress.HouseTotal)
	})

	t.Run("pre-1980 multiplier", func(t *testing.T) {
		modern := bc.Calculate(models.PropertyProfile{
			AboveGradeSqft: 2000, ZipCode: "80206", YearBuilt: 1998,
		})
		vintage := bc.Calculate(models.PropertyProfile{
			AboveGradeSqft: 2000, ZipCode: "80206", YearBuilt: 1975,
		})
		// 20 * 1.25 * 1.40 = 35; * 1.40 = 49
		assert.Equal(t, 35, modern.HouseTotal)
		assert.Equal(t, 49, vintage.HouseTotal)
		assert.True(t, vintage.Pre1980)
	})

	t.Run("hyper-scale guardrail is sub-linear", func(t *testing.T) {
		large := bc.Calculate(models.PropertyProfile{
			AboveGradeSqft: 6000, ZipCode: "80108", YearBuilt: 2000,
		})
		// Linear would be 60 * 1.15 * 1.60 = 110; the guardrail holds lower.
		linear := 110
		assert.Less(t, large.HouseTotal, linear)

		// Still monotone in square footage.
		larger := bc.Calculate(models.PropertyProfile{
			AboveGradeSqft: 8000, ZipCode: "80108", YearBuilt: 2000,
		})
		assert.GreaterOrEqual(t, larger.HouseTotal, large.HouseTotal)
	})

	t.Run("basement egress proxy", func(t *testing.T) {
		b := bc.Calculate(models.PropertyProfile{
			AboveGradeSqft: 2500,
			ZipCode:        "80109",
			YearBuilt:      2005,
			HasBasement:    true,
			BelowGradeSqft: 1200,
			BasementBeds:   2,
		})
		// 2*2 egress + round((1200-500)/600*2)=2 -> 6
		assert.Equal(t, 6, b.BasementPanes)
	})

	t.Run("basement count never negative", func(t *testing.T) {
		b := bc.Calculate(models.PropertyProfile{
			AboveGradeSqft: 2500,
			ZipCode:        "80109",
			YearBuilt:      2005,
			HasBasement:    true,
			BelowGradeSqft: 100,
			BasementBeds:   0,
		})
		assert.GreaterOrEqual(t, b.BasementPanes, 0)
	})

	t.Run("skylights estimated for large homes", func(t *testing.T) {
		b := bc.Calculate(models.PropertyProfile{
			AboveGradeSqft: 3600, ZipCode: "80109", YearBuilt: 2005,
		})
		assert.Equal(t, 2, b.EstSkylights)
	})

	t.Run("skylights estimated for high-skylight regions", func(t *testing.T) {
		b := bc.Calculate(models.PropertyProfile{
			AboveGradeSqft: 2000, ZipCode: "99352", YearBuilt: 2005,
		})
		assert.Equal(t, 2, b.EstSkylights)
	})

	t.Run("deterministic for identical inputs", func(t *testing.T) {
		profile := models.PropertyProfile{
			AboveGradeSqft: 3400,
			BelowGradeSqft: 1000,
			BasementBeds:   1,
			YearBuilt:      1972,
			Stories:        2,
			ZipCode:        "80206",
			HasBasement:    true,
		}
		first := bc.Calculate(profile)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, bc.Calculate(profile))
		}
	})
}
