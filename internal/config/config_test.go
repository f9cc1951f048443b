package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transformline/internal/config"
	"transformline/internal/finance"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 0.10, cfg.Finance.DiscountRate)
	assert.Equal(t, 5, cfg.Finance.HorizonYears)
	assert.Len(t, cfg.Risks[config.CommonRisks], 2)
}

func TestIndustryInheritsFromDefault(t *testing.T) {
	cfg := config.Default()

	hc := cfg.Industry("Healthcare")
	def := cfg.Industry("default")
	assert.Equal(t, def.Benchmarks, hc.Benchmarks)
	assert.Equal(t, def.InvestmentAllocation, hc.InvestmentAllocation)
	assert.Equal(t, 1.5, hc.TimelineMultiplier)
	assert.Equal(t, 22.0, hc.ROIAverage)
	assert.Equal(t, 0.35, hc.SuccessMetrics["roi_improvement"])
	assert.Equal(t, 0.98, hc.SuccessMetrics["safety_score"])
	assert.Equal(t, 0.95, hc.SuccessMetrics["employee_adoption_rate"])
	assert.Equal(t, 2.8, hc.ReadinessAverages["strategic_alignment"])

	gov := cfg.Industry("government")
	assert.Equal(t, 25.0, gov.ROIAverage)
	assert.Equal(t, 1.8, gov.TimelineMultiplier)

	// merging never leaks back into the default entry
	assert.NotContains(t, cfg.Industry("default").SuccessMetrics, "safety_score")
}

func TestIndustryUnknownFallsBack(t *testing.T) {
	cfg := config.Default()
	got := cfg.Industry("aerospace")
	assert.Equal(t, 1.0, got.TimelineMultiplier)
	assert.Equal(t, 0.15, got.Benchmarks.Revenue)
	assert.Nil(t, got.ReadinessAverages)
	assert.False(t, cfg.HasIndustry("aerospace"))
	assert.True(t, cfg.HasIndustry(" Manufacturing "))
}

func TestAllocationOrderPreserved(t *testing.T) {
	cfg := config.Default()
	alloc := cfg.Industry("financial_services").InvestmentAllocation
	require.Len(t, alloc, 5)
	assert.Equal(t, finance.CostTechnology, alloc[0].Category)
	assert.Equal(t, 0.35, alloc[0].Share)
	assert.Equal(t, finance.CostTraining, alloc[4].Category)
}

func TestSizeLookup(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, config.Size{Investment: 1.4, Delivery: 1.2, Transformation: 1.3}, cfg.Size("LARGE"))
	assert.Equal(t, config.Size{Investment: 1, Delivery: 1, Transformation: 1}, cfg.Size("galactic"))
}

func TestRisksFor(t *testing.T) {
	cfg := config.Default()
	fs := cfg.RisksFor("financial_services")
	require.Len(t, fs, 3)
	assert.Equal(t, "Regulatory compliance issues", fs[2].Risk)
	assert.Len(t, cfg.RisksFor("retail"), 2)

	// callers may modify the result freely
	fs[0].Risk = "changed"
	assert.Equal(t, "Project timeline delays", cfg.Risks[config.CommonRisks][0].Risk)
}

func TestFromYAMLLayersOverDefaults(t *testing.T) {
	cfg, err := config.FromYAML([]byte("finance:\n  discount_rate: 0.08\n"))
	require.NoError(t, err)
	assert.Equal(t, 0.08, cfg.Finance.DiscountRate)
	assert.Equal(t, 5, cfg.Finance.HorizonYears)
	assert.True(t, cfg.HasIndustry("manufacturing"))
}

func TestValidateFailures(t *testing.T) {
	cases := map[string]string{
		"bad rate":         "finance:\n  discount_rate: -1\n",
		"bad horizon":      "finance:\n  horizon_years: 0\n",
		"unknown category": "industries:\n  retail:\n    investment_allocation:\n      - {category: snacks, share: 0.2}\n",
		"share above one":  "industries:\n  retail:\n    investment_allocation:\n      - {category: talent, share: 1.5}\n",
		"impact range":     "risks:\n  retail:\n    - {risk: x, impact: 5, probability: 0.1, mitigation: y}\n",
		"probability":      "risks:\n  retail:\n    - {risk: x, impact: 2, probability: 1.1, mitigation: y}\n",
		"size multiplier":  "sizes:\n  tiny: {investment: 0, delivery: 1, transformation: 1}\n",
		"readiness dim":    "industries:\n  retail:\n    readiness_averages: {vibes: 3}\n",
		"readiness score":  "industries:\n  retail:\n    readiness_averages: {data_maturity: 7}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.FromYAML([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestValidateRequiresDefaults(t *testing.T) {
	cfg := config.Default()
	delete(cfg.Industries, config.DefaultKey)
	assert.ErrorContains(t, cfg.Validate(), "industries.default")

	cfg = config.Default()
	delete(cfg.Sizes, config.DefaultKey)
	assert.ErrorContains(t, cfg.Validate(), "sizes.default")
}

func TestLoadAndLoadOptional(t *testing.T) {
	dir := t.TempDir()

	_, err := config.Load(dir)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "not found"))

	cfg, err := config.LoadOptional(dir)
	require.NoError(t, err)
	assert.Equal(t, 0.10, cfg.Finance.DiscountRate)

	path := config.Path(dir)
	assert.Equal(t, filepath.Join(dir, "transformline.yml"), path)
	require.NoError(t, os.WriteFile(path, []byte(config.GenerateDefault()), 0o644))
	cfg, err = config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}
