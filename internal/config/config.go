package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"transformline/internal/finance"
	"transformline/internal/readiness"
)

// DefaultKey names the mandatory fallback entry in the industries and sizes
// tables. CommonRisks names the risk list applied to every industry.
const (
	DefaultKey  = "default"
	CommonRisks = "common"
)

// Config models transformline.yml.
type Config struct {
	Finance    Finance                   `yaml:"finance" json:"finance"`
	Industries map[string]Industry       `yaml:"industries" json:"industries"`
	Sizes      map[string]Size           `yaml:"sizes" json:"sizes"`
	Risks      map[string][]RiskTemplate `yaml:"risks" json:"risks"`
}

type Finance struct {
	DiscountRate float64 `yaml:"discount_rate" json:"discount_rate"`
	HorizonYears int     `yaml:"horizon_years" json:"horizon_years"`
}

// Benchmarks are benefit multipliers applied to the total explicit
// investment.
type Benchmarks struct {
	Revenue       float64 `yaml:"revenue" json:"revenue"`
	CostReduction float64 `yaml:"cost_reduction" json:"cost_reduction"`
	Productivity  float64 `yaml:"productivity" json:"productivity"`
	Customer      float64 `yaml:"customer" json:"customer"`
}

func (b Benchmarks) isZero() bool {
	return b == Benchmarks{}
}

// Allocation is one share of the investment budget. Allocations are applied
// in the order listed.
type Allocation struct {
	Category finance.CostCategory `yaml:"category" json:"category"`
	Share    float64              `yaml:"share" json:"share"`
}

// Industry holds every per-industry table. Fields omitted from a named entry
// inherit from the default entry, except ReadinessAverages which only exist
// where they were measured.
type Industry struct {
	Benchmarks           Benchmarks         `yaml:"benchmarks" json:"benchmarks"`
	InvestmentAllocation []Allocation       `yaml:"investment_allocation" json:"investment_allocation"`
	FocusAreas           []string           `yaml:"focus_areas" json:"focus_areas,omitempty"`
	TimelineMultiplier   float64            `yaml:"timeline_multiplier" json:"timeline_multiplier"`
	SuccessMetrics       map[string]float64 `yaml:"success_metrics" json:"success_metrics"`
	ROIAverage           float64            `yaml:"roi_average" json:"roi_average"`
	ReadinessAverages    map[string]float64 `yaml:"readiness_averages" json:"readiness_averages,omitempty"`
}

// Size multipliers. Investment scales budget allocations, Delivery scales
// business-case implementation phases, Transformation scales orchestrated
// plan timelines.
type Size struct {
	Investment     float64 `yaml:"investment" json:"investment"`
	Delivery       float64 `yaml:"delivery" json:"delivery"`
	Transformation float64 `yaml:"transformation" json:"transformation"`
}

type RiskTemplate struct {
	Risk        string  `yaml:"risk" json:"risk"`
	Impact      int     `yaml:"impact" json:"impact"`
	Probability float64 `yaml:"probability" json:"probability"`
	Mitigation  string  `yaml:"mitigation" json:"mitigation"`
	Cost        float64 `yaml:"cost" json:"cost"`
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; create one with tl config init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional returns the built-in defaults if the config file does not
// exist.
func LoadOptional(workspace string) (*Config, error) {
	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if err := finance.ValidateParams(c.Finance.DiscountRate, c.Finance.HorizonYears); err != nil {
		return fmt.Errorf("config.finance: %w", err)
	}
	def, ok := c.Industries[DefaultKey]
	if !ok {
		return fmt.Errorf("config.industries.default is required")
	}
	if len(def.InvestmentAllocation) == 0 {
		return fmt.Errorf("config.industries.default.investment_allocation is required")
	}
	if def.TimelineMultiplier <= 0 {
		return fmt.Errorf("config.industries.default.timeline_multiplier must be positive")
	}
	for _, name := range sortedKeys(c.Industries) {
		if err := c.Industries[name].validate(); err != nil {
			return fmt.Errorf("industry %s: %w", name, err)
		}
	}
	if _, ok := c.Sizes[DefaultKey]; !ok {
		return fmt.Errorf("config.sizes.default is required")
	}
	for _, name := range sortedKeys(c.Sizes) {
		s := c.Sizes[name]
		if s.Investment <= 0 || s.Delivery <= 0 || s.Transformation <= 0 {
			return fmt.Errorf("size %s multipliers must be positive", name)
		}
	}
	for _, name := range sortedKeys(c.Risks) {
		for i, r := range c.Risks[name] {
			if err := r.validate(); err != nil {
				return fmt.Errorf("risks.%s[%d]: %w", name, i, err)
			}
		}
	}
	return nil
}

func (ind Industry) validate() error {
	b := ind.Benchmarks
	if b.Revenue < 0 || b.CostReduction < 0 || b.Productivity < 0 || b.Customer < 0 {
		return fmt.Errorf("benchmarks must not be negative")
	}
	for _, a := range ind.InvestmentAllocation {
		if !a.Category.Valid() {
			return fmt.Errorf("unknown investment category %q", a.Category)
		}
		if a.Share < 0 || a.Share > 1 || math.IsNaN(a.Share) {
			return fmt.Errorf("allocation share for %s must be within [0,1]", a.Category)
		}
	}
	if ind.TimelineMultiplier < 0 {
		return fmt.Errorf("timeline_multiplier must not be negative")
	}
	if ind.ROIAverage < 0 {
		return fmt.Errorf("roi_average must not be negative")
	}
	for dim, score := range ind.ReadinessAverages {
		if !readiness.Dimension(dim).Valid() {
			return fmt.Errorf("unknown readiness dimension %q", dim)
		}
		if score < 1 || score > 5 {
			return fmt.Errorf("readiness average for %s must be within [1,5]", dim)
		}
	}
	return nil
}

func (r RiskTemplate) validate() error {
	if strings.TrimSpace(r.Risk) == "" {
		return fmt.Errorf("risk description is required")
	}
	if r.Impact < 1 || r.Impact > 4 {
		return fmt.Errorf("impact %d must be within 1-4", r.Impact)
	}
	if r.Probability < 0 || r.Probability > 1 {
		return fmt.Errorf("probability %g must be within [0,1]", r.Probability)
	}
	if r.Cost < 0 {
		return fmt.Errorf("mitigation cost must not be negative")
	}
	return nil
}

// Key normalizes an industry or size name for lookup.
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// HasIndustry reports whether name has its own entry.
func (c *Config) HasIndustry(name string) bool {
	_, ok := c.Industries[Key(name)]
	return ok
}

// Industry returns the named industry with omitted fields filled from the
// default entry. Unknown names resolve to the default entry.
func (c *Config) Industry(name string) Industry {
	def := c.Industries[DefaultKey]
	out := Industry{
		Benchmarks:           def.Benchmarks,
		InvestmentAllocation: def.InvestmentAllocation,
		FocusAreas:           def.FocusAreas,
		TimelineMultiplier:   def.TimelineMultiplier,
		ROIAverage:           def.ROIAverage,
		SuccessMetrics:       make(map[string]float64, len(def.SuccessMetrics)),
	}
	for k, v := range def.SuccessMetrics {
		out.SuccessMetrics[k] = v
	}
	key := Key(name)
	ind, ok := c.Industries[key]
	if !ok || key == DefaultKey {
		out.ReadinessAverages = copyScores(def.ReadinessAverages)
		return out
	}
	if !ind.Benchmarks.isZero() {
		out.Benchmarks = ind.Benchmarks
	}
	if len(ind.InvestmentAllocation) > 0 {
		out.InvestmentAllocation = ind.InvestmentAllocation
	}
	if len(ind.FocusAreas) > 0 {
		out.FocusAreas = ind.FocusAreas
	}
	if ind.TimelineMultiplier > 0 {
		out.TimelineMultiplier = ind.TimelineMultiplier
	}
	if ind.ROIAverage > 0 {
		out.ROIAverage = ind.ROIAverage
	}
	for k, v := range ind.SuccessMetrics {
		out.SuccessMetrics[k] = v
	}
	out.ReadinessAverages = copyScores(ind.ReadinessAverages)
	return out
}

// Size returns the named size multipliers, or the default entry.
func (c *Config) Size(name string) Size {
	if s, ok := c.Sizes[Key(name)]; ok {
		return s
	}
	return c.Sizes[DefaultKey]
}

// RisksFor returns the common risks followed by the industry's own.
func (c *Config) RisksFor(industry string) []RiskTemplate {
	out := append([]RiskTemplate(nil), c.Risks[CommonRisks]...)
	key := Key(industry)
	if key == CommonRisks {
		return out
	}
	return append(out, c.Risks[key]...)
}

func copyScores(in map[string]float64) map[string]float64 {
	if in == nil {
		return nil
	}
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "transformline.yml")
}

// GenerateDefault returns default config YAML.
func GenerateDefault() string {
	return defaultTemplate
}

// Default returns the built-in configuration.
func Default() *Config {
	var cfg Config
	_ = yaml.Unmarshal([]byte(defaultTemplate), &cfg)
	return &cfg
}

// FromYAML layers raw YAML over the built-in defaults and validates the
// result. Top-level table entries present in data replace the default entry
// of the same name whole.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

const defaultTemplate = `finance:
  discount_rate: 0.10
  horizon_years: 5

industries:
  default:
    benchmarks:
      revenue: 0.15
      cost_reduction: 0.20
      productivity: 0.25
      customer: 0.10
    investment_allocation:
      - {category: infrastructure, share: 0.30}
      - {category: technology, share: 0.25}
      - {category: talent, share: 0.20}
      - {category: training, share: 0.15}
      - {category: consulting, share: 0.10}
    timeline_multiplier: 1.0
    roi_average: 25
    success_metrics:
      roi_improvement: 0.50
      employee_adoption_rate: 0.95
      implementation_success_rate: 0.87
      customer_satisfaction_improvement: 0.20

  financial_services:
    benchmarks:
      revenue: 0.12
      cost_reduction: 0.25
      productivity: 0.30
      customer: 0.15
    investment_allocation:
      - {category: technology, share: 0.35}
      - {category: infrastructure, share: 0.25}
      - {category: talent, share: 0.20}
      - {category: consulting, share: 0.15}
      - {category: training, share: 0.05}
    focus_areas: [regulatory_compliance, risk_management, customer_analytics]
    timeline_multiplier: 1.3
    roi_average: 28
    success_metrics:
      roi_improvement: 0.45
      compliance_score: 0.95
    readiness_averages:
      strategic_alignment: 3.2
      data_maturity: 3.8
      governance_ethics: 4.1

  healthcare:
    focus_areas: [patient_safety, hipaa_compliance, diagnostic_accuracy]
    timeline_multiplier: 1.5
    roi_average: 22
    success_metrics:
      roi_improvement: 0.35
      safety_score: 0.98
    readiness_averages:
      strategic_alignment: 2.8
      data_maturity: 3.1
      governance_ethics: 3.9

  manufacturing:
    benchmarks:
      revenue: 0.18
      cost_reduction: 0.30
      productivity: 0.35
      customer: 0.08
    investment_allocation:
      - {category: infrastructure, share: 0.40}
      - {category: technology, share: 0.30}
      - {category: talent, share: 0.15}
      - {category: training, share: 0.10}
      - {category: consulting, share: 0.05}
    focus_areas: [operational_excellence, safety, predictive_maintenance]
    timeline_multiplier: 1.2
    roi_average: 35
    success_metrics:
      roi_improvement: 0.55
      safety_incidents: -0.40
    readiness_averages:
      strategic_alignment: 3.1
      technical_infrastructure: 3.6
      data_maturity: 3.4

  retail:
    focus_areas: [customer_experience, personalization, supply_chain]
    timeline_multiplier: 1.0
    roi_average: 25
    success_metrics:
      roi_improvement: 0.50
      customer_satisfaction: 0.25

  government:
    focus_areas: [transparency, security, citizen_services]
    timeline_multiplier: 1.8
    success_metrics:
      roi_improvement: 0.30
      transparency_score: 0.90

sizes:
  default:    {investment: 1.0, delivery: 1.0, transformation: 1.0}
  small:      {investment: 0.6, delivery: 0.8, transformation: 0.8}
  medium:     {investment: 1.0, delivery: 1.0, transformation: 1.0}
  large:      {investment: 1.4, delivery: 1.2, transformation: 1.3}
  enterprise: {investment: 2.0, delivery: 1.5, transformation: 1.6}

risks:
  common:
    - risk: Project timeline delays
      impact: 2
      probability: 0.4
      mitigation: Agile implementation with regular checkpoints
      cost: 25000
    - risk: Budget overruns
      impact: 3
      probability: 0.3
      mitigation: Detailed cost tracking and contingency planning
      cost: 15000
  financial_services:
    - risk: Regulatory compliance issues
      impact: 4
      probability: 0.5
      mitigation: Early regulatory engagement and compliance review
      cost: 75000
`
