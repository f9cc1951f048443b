package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"transformline/internal/orchestrator"
)

// PlanStore persists transformation plans in the plans table.
type PlanStore struct {
	DB *sqlx.DB
}

var _ orchestrator.Store = PlanStore{}

type planRow struct {
	ID              string  `db:"id"`
	Organization    string  `db:"organization"`
	Industry        string  `db:"industry"`
	Size            string  `db:"size"`
	CurrentPhase    string  `db:"current_phase"`
	TargetMaturity  int     `db:"target_maturity"`
	TimelineWeeks   int     `db:"timeline_weeks"`
	Budget          float64 `db:"budget"`
	Profile         string  `db:"profile_json"`
	SuccessCriteria string  `db:"success_criteria_json"`
	RiskFactors     string  `db:"risk_factors_json"`
	Mitigations     string  `db:"mitigations_json"`
	CreatedAt       string  `db:"created_at"`
	UpdatedAt       string  `db:"updated_at"`
}

const planColumns = `id,organization,industry,size,current_phase,target_maturity,timeline_weeks,budget,
	profile_json,success_criteria_json,risk_factors_json,mitigations_json,created_at,updated_at`

func toRow(p orchestrator.Plan) (planRow, error) {
	row := planRow{
		ID:             p.ID,
		Organization:   p.Organization.Name,
		Industry:       p.Organization.Industry,
		Size:           p.Organization.Size,
		CurrentPhase:   string(p.CurrentPhase),
		TargetMaturity: int(p.TargetMaturity),
		TimelineWeeks:  p.TimelineWeeks,
		Budget:         p.Budget,
		CreatedAt:      formatTime(p.CreatedAt),
		UpdatedAt:      formatTime(p.UpdatedAt),
	}
	fields := []struct {
		dst *string
		v   any
	}{
		{&row.Profile, p.Organization},
		{&row.SuccessCriteria, nonNilMap(p.SuccessCriteria)},
		{&row.RiskFactors, nonNilSlice(p.RiskFactors)},
		{&row.Mitigations, nonNilSlice(p.Mitigations)},
	}
	for _, f := range fields {
		data, err := json.Marshal(f.v)
		if err != nil {
			return planRow{}, fmt.Errorf("marshal plan %s: %w", p.ID, err)
		}
		*f.dst = string(data)
	}
	return row, nil
}

func (row planRow) plan() (orchestrator.Plan, error) {
	p := orchestrator.Plan{
		ID:             row.ID,
		CurrentPhase:   orchestrator.Phase(row.CurrentPhase),
		TargetMaturity: orchestrator.MaturityLevel(row.TargetMaturity),
		TimelineWeeks:  row.TimelineWeeks,
		Budget:         row.Budget,
		CreatedAt:      parseTime(row.CreatedAt),
		UpdatedAt:      parseTime(row.UpdatedAt),
	}
	if err := json.Unmarshal([]byte(row.Profile), &p.Organization); err != nil {
		return p, fmt.Errorf("decode plan %s profile: %w", row.ID, err)
	}
	if err := json.Unmarshal([]byte(row.SuccessCriteria), &p.SuccessCriteria); err != nil {
		return p, fmt.Errorf("decode plan %s criteria: %w", row.ID, err)
	}
	if err := json.Unmarshal([]byte(row.RiskFactors), &p.RiskFactors); err != nil {
		return p, fmt.Errorf("decode plan %s risks: %w", row.ID, err)
	}
	if err := json.Unmarshal([]byte(row.Mitigations), &p.Mitigations); err != nil {
		return p, fmt.Errorf("decode plan %s mitigations: %w", row.ID, err)
	}
	return p, nil
}

func nonNilMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return map[string]float64{}
	}
	return m
}

func nonNilSlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (s PlanStore) Create(ctx context.Context, p orchestrator.Plan) error {
	row, err := toRow(p)
	if err != nil {
		return err
	}
	_, err = s.DB.NamedExecContext(ctx, `INSERT INTO plans(`+planColumns+`) VALUES (
		:id,:organization,:industry,:size,:current_phase,:target_maturity,:timeline_weeks,:budget,
		:profile_json,:success_criteria_json,:risk_factors_json,:mitigations_json,:created_at,:updated_at)`, row)
	if err != nil {
		return fmt.Errorf("insert plan %s: %w", p.ID, err)
	}
	return nil
}

func (s PlanStore) Get(ctx context.Context, id string) (orchestrator.Plan, error) {
	var row planRow
	err := s.DB.GetContext(ctx, &row, `SELECT `+planColumns+` FROM plans WHERE id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return orchestrator.Plan{}, orchestrator.ErrNotFound
	}
	if err != nil {
		return orchestrator.Plan{}, err
	}
	return row.plan()
}

func (s PlanStore) Update(ctx context.Context, p orchestrator.Plan) error {
	row, err := toRow(p)
	if err != nil {
		return err
	}
	res, err := s.DB.NamedExecContext(ctx, `UPDATE plans SET organization=:organization,industry=:industry,size=:size,
		current_phase=:current_phase,target_maturity=:target_maturity,timeline_weeks=:timeline_weeks,budget=:budget,
		profile_json=:profile_json,success_criteria_json=:success_criteria_json,risk_factors_json=:risk_factors_json,
		mitigations_json=:mitigations_json,updated_at=:updated_at WHERE id=:id`, row)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return orchestrator.ErrNotFound
	}
	return nil
}

// List returns plans newest first.
func (s PlanStore) List(ctx context.Context) ([]orchestrator.Plan, error) {
	var rows []planRow
	if err := s.DB.SelectContext(ctx, &rows, `SELECT `+planColumns+` FROM plans ORDER BY created_at DESC, id DESC`); err != nil {
		return nil, err
	}
	out := make([]orchestrator.Plan, 0, len(rows))
	for _, row := range rows {
		p, err := row.plan()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
