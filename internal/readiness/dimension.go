// Package readiness scores an organization's AI readiness from a short
// questionnaire and derives gap analyses and development roadmaps from the
// result.
package readiness

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidResponse is returned (wrapped) for unknown question keys and
// answers outside 1-5.
var ErrInvalidResponse = errors.New("invalid response")

type Dimension string

const (
	StrategicAlignment      Dimension = "strategic_alignment"
	LeadershipCommitment    Dimension = "leadership_commitment"
	DataMaturity            Dimension = "data_maturity"
	TechnicalInfrastructure Dimension = "technical_infrastructure"
	TalentCapabilities      Dimension = "talent_capabilities"
	OrganizationalCulture   Dimension = "organizational_culture"
	ChangeManagement        Dimension = "change_management"
	GovernanceEthics        Dimension = "governance_ethics"
)

// Dimensions lists every dimension in report order.
var Dimensions = []Dimension{
	StrategicAlignment,
	LeadershipCommitment,
	DataMaturity,
	TechnicalInfrastructure,
	TalentCapabilities,
	OrganizationalCulture,
	ChangeManagement,
	GovernanceEthics,
}

func (d Dimension) Valid() bool {
	for _, k := range Dimensions {
		if d == k {
			return true
		}
	}
	return false
}

// Label turns the key into title case words.
func (d Dimension) Label() string {
	parts := strings.Split(string(d), "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}

// strategic dimensions are raised to high priority one maturity level
// earlier than the rest.
func (d Dimension) strategic() bool {
	return d == StrategicAlignment || d == LeadershipCommitment || d == DataMaturity
}

type Maturity int

const (
	Nascent Maturity = iota + 1
	Emerging
	Developing
	Advanced
	Optimizing
)

func (m Maturity) String() string {
	switch m {
	case Nascent:
		return "NASCENT"
	case Emerging:
		return "EMERGING"
	case Developing:
		return "DEVELOPING"
	case Advanced:
		return "ADVANCED"
	case Optimizing:
		return "OPTIMIZING"
	}
	return "UNKNOWN"
}

// MarshalText encodes the zero maturity as "" so it decodes back to zero.
func (m Maturity) MarshalText() ([]byte, error) {
	if m == 0 {
		return []byte{}, nil
	}
	return []byte(m.String()), nil
}

func (m *Maturity) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*m = 0
		return nil
	}
	for l := Nascent; l <= Optimizing; l++ {
		if l.String() == string(b) {
			*m = l
			return nil
		}
	}
	return fmt.Errorf("unknown maturity %q", string(b))
}

// MaturityForScore maps a 1-5 score onto a maturity level. Boundaries are
// inclusive on the upper side: 2.0 is Emerging, 2.01 is Developing.
func MaturityForScore(score float64) Maturity {
	switch {
	case score <= 1:
		return Nascent
	case score <= 2:
		return Emerging
	case score <= 3:
		return Developing
	case score <= 4:
		return Advanced
	}
	return Optimizing
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func priorityFor(d Dimension, m Maturity) Priority {
	switch {
	case d.strategic() && m <= Emerging:
		return PriorityHigh
	case m <= Nascent:
		return PriorityHigh
	case m <= Developing:
		return PriorityMedium
	}
	return PriorityLow
}

// Question is one questionnaire item. Answers are keyed by Key.
type Question struct {
	Key          string         `json:"key"`
	Dimension    Dimension      `json:"dimension"`
	Text         string         `json:"question"`
	Weight       float64        `json:"weight"`
	ScoringGuide map[int]string `json:"scoring_guide"`
}

// Insight is the canned commentary for one dimension at one maturity level.
type Insight struct {
	Strengths       []string `json:"strengths"`
	Gaps            []string `json:"gaps"`
	Recommendations []string `json:"recommendations"`
}

var defaultInsight = Insight{
	Gaps:            []string{"Assessment needed"},
	Recommendations: []string{"Conduct detailed evaluation"},
}
