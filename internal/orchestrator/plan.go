// Package orchestrator tracks transformation plans: an organization moving
// through foundation, pilots, scaling and maturity phases toward a target
// AI maturity level.
package orchestrator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNotFound       = errors.New("transformation not found")
	ErrInvalidProfile = errors.New("invalid organization profile")
	ErrFinalPhase     = errors.New("transformation already in final phase")
)

type Phase string

const (
	PhaseFoundation Phase = "foundation"
	PhasePilots     Phase = "pilots"
	PhaseScaling    Phase = "scaling"
	PhaseMaturity   Phase = "maturity"
)

// Phases lists every phase in execution order.
var Phases = []Phase{PhaseFoundation, PhasePilots, PhaseScaling, PhaseMaturity}

var phaseCompletion = map[Phase]float64{
	PhaseFoundation: 20,
	PhasePilots:     35,
	PhaseScaling:    60,
	PhaseMaturity:   100,
}

func (p Phase) Valid() bool {
	_, ok := phaseCompletion[p]
	return ok
}

// Next returns the phase after p, false at the last one.
func (p Phase) Next() (Phase, bool) {
	for i, ph := range Phases {
		if ph == p && i+1 < len(Phases) {
			return Phases[i+1], true
		}
	}
	return "", false
}

// Completion is the overall completion percentage reached once p is active.
func (p Phase) Completion() float64 {
	return phaseCompletion[p]
}

type MaturityLevel int

const (
	MaturityAdhoc MaturityLevel = iota + 1
	MaturitySystematic
	MaturityIntegrated
	MaturityAdvantage
	MaturityNative
)

var maturityNames = map[MaturityLevel]string{
	MaturityAdhoc:      "ADHOC",
	MaturitySystematic: "SYSTEMATIC",
	MaturityIntegrated: "INTEGRATED",
	MaturityAdvantage:  "ADVANTAGE",
	MaturityNative:     "NATIVE",
}

func (m MaturityLevel) Valid() bool {
	return m >= MaturityAdhoc && m <= MaturityNative
}

func (m MaturityLevel) String() string {
	if name, ok := maturityNames[m]; ok {
		return name
	}
	return fmt.Sprintf("MaturityLevel(%d)", int(m))
}

// ParseMaturity accepts a level number (1-5) or its name, case-insensitive.
func ParseMaturity(s string) (MaturityLevel, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		m := MaturityLevel(n)
		if !m.Valid() {
			return 0, fmt.Errorf("%w: maturity level %d out of range 1-5", ErrInvalidProfile, n)
		}
		return m, nil
	}
	for m, name := range maturityNames {
		if strings.EqualFold(name, s) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown maturity level %q", ErrInvalidProfile, s)
}

// Profile describes the organization being transformed. The readiness
// scores are fractions in [0,1], zero until assessed.
type Profile struct {
	Name                 string        `json:"name"`
	Industry             string        `json:"industry"`
	Size                 string        `json:"size"`
	CurrentMaturity      MaturityLevel `json:"current_maturity"`
	AIReadiness          float64       `json:"ai_readiness_score"`
	StakeholderAlignment float64       `json:"stakeholder_alignment_score"`
	ChangeReadiness      float64       `json:"change_readiness_score"`
	TechnicalReadiness   float64       `json:"technical_readiness_score"`
}

func (p Profile) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}
	if !p.CurrentMaturity.Valid() {
		return fmt.Errorf("%w: current maturity %d out of range 1-5", ErrInvalidProfile, int(p.CurrentMaturity))
	}
	return nil
}

type Plan struct {
	ID              string             `json:"id"`
	Organization    Profile            `json:"organization"`
	CurrentPhase    Phase              `json:"current_phase"`
	TargetMaturity  MaturityLevel      `json:"target_maturity"`
	TimelineWeeks   int                `json:"timeline_weeks"`
	Budget          float64            `json:"budget"`
	SuccessCriteria map[string]float64 `json:"success_criteria"`
	RiskFactors     []string           `json:"risk_factors"`
	Mitigations     []string           `json:"mitigation_strategies"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// Readiness holds the four readiness scores of an assessment.
type Readiness struct {
	AIReadiness          float64 `json:"ai_readiness"`
	StakeholderAlignment float64 `json:"stakeholder_alignment"`
	ChangeReadiness      float64 `json:"change_readiness"`
	TechnicalReadiness   float64 `json:"technical_readiness"`
}

func clonePlan(p Plan) Plan {
	out := p
	if p.SuccessCriteria != nil {
		out.SuccessCriteria = make(map[string]float64, len(p.SuccessCriteria))
		for k, v := range p.SuccessCriteria {
			out.SuccessCriteria[k] = v
		}
	}
	if p.RiskFactors != nil {
		out.RiskFactors = append([]string{}, p.RiskFactors...)
	}
	if p.Mitigations != nil {
		out.Mitigations = append([]string{}, p.Mitigations...)
	}
	return out
}
