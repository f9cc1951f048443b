package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"transformline/internal/businesscase"
	"transformline/internal/domain"
	"transformline/internal/readiness"
)

type Repo struct {
	DB *sqlx.DB
}

var ErrNotFound = errors.New("not found")

// timeLayout is fixed width so created_at columns sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func execer(r Repo, exec sqlx.ExtContext) sqlx.ExtContext {
	if exec == nil {
		return r.DB
	}
	return exec
}

// InsertAssessment stores a readiness report under id.
func (r Repo) InsertAssessment(ctx context.Context, exec sqlx.ExtContext, id, industry string, rep readiness.Report) error {
	data, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	_, err = sqlx.NamedExecContext(ctx, execer(r, exec), `INSERT INTO assessments(id,organization,industry,overall_score,overall_maturity,report_json,created_at)
		VALUES (:id,:organization,:industry,:overall_score,:overall_maturity,:report_json,:created_at)`, map[string]any{
		"id":               id,
		"organization":     rep.Organization,
		"industry":         industry,
		"overall_score":    rep.OverallScore,
		"overall_maturity": rep.OverallMaturity.String(),
		"report_json":      string(data),
		"created_at":       formatTime(rep.AssessedAt),
	})
	return err
}

// GetAssessment returns the stored report and the industry it was assessed
// against.
func (r Repo) GetAssessment(ctx context.Context, id string) (readiness.Report, string, error) {
	var row struct {
		Industry string `db:"industry"`
		Report   string `db:"report_json"`
	}
	err := r.DB.GetContext(ctx, &row, `SELECT industry,report_json FROM assessments WHERE id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return readiness.Report{}, "", ErrNotFound
	}
	if err != nil {
		return readiness.Report{}, "", err
	}
	var rep readiness.Report
	if err := json.Unmarshal([]byte(row.Report), &rep); err != nil {
		return readiness.Report{}, "", fmt.Errorf("decode assessment %s: %w", id, err)
	}
	return rep, row.Industry, nil
}

// ListAssessments returns assessment summaries newest first.
func (r Repo) ListAssessments(ctx context.Context, limit int) ([]domain.AssessmentRecord, error) {
	var res []domain.AssessmentRecord
	err := r.DB.SelectContext(ctx, &res, `SELECT id,organization,industry,overall_score,overall_maturity,created_at
		FROM assessments ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	return res, err
}

// InsertCase stores a generated business case, optionally linked to a plan.
func (r Repo) InsertCase(ctx context.Context, exec sqlx.ExtContext, id, planID string, c businesscase.Case) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal business case: %w", err)
	}
	_, err = sqlx.NamedExecContext(ctx, execer(r, exec), `INSERT INTO business_cases(id,plan_id,organization,initiative,npv,roi,case_json,created_at)
		VALUES (:id,:plan_id,:organization,:initiative,:npv,:roi,:case_json,:created_at)`, map[string]any{
		"id":           id,
		"plan_id":      nullable(planID),
		"organization": c.Organization,
		"initiative":   c.Initiative,
		"npv":          c.Projection.NPV,
		"roi":          c.Projection.ROIPercentage,
		"case_json":    string(data),
		"created_at":   formatTime(c.CreatedAt),
	})
	return err
}

func (r Repo) GetCase(ctx context.Context, id string) (businesscase.Case, error) {
	var raw string
	err := r.DB.GetContext(ctx, &raw, `SELECT case_json FROM business_cases WHERE id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return businesscase.Case{}, ErrNotFound
	}
	if err != nil {
		return businesscase.Case{}, err
	}
	var c businesscase.Case
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return businesscase.Case{}, fmt.Errorf("decode business case %s: %w", id, err)
	}
	return c, nil
}

// ListCases returns case summaries newest first, only those linked to planID
// when it is set.
func (r Repo) ListCases(ctx context.Context, planID string, limit int) ([]domain.CaseRecord, error) {
	clauses := []string{"1=1"}
	var args []any
	if planID != "" {
		clauses = append(clauses, "plan_id=?")
		args = append(args, planID)
	}
	args = append(args, limit)
	query := fmt.Sprintf(`SELECT id,COALESCE(plan_id,'') AS plan_id,organization,initiative,npv,roi,created_at
		FROM business_cases WHERE %s ORDER BY created_at DESC, id DESC LIMIT ?`, strings.Join(clauses, " AND "))
	var res []domain.CaseRecord
	err := r.DB.SelectContext(ctx, &res, query, args...)
	return res, err
}

// LatestEvents returns events newest first, below f.Cursor when set.
func (r Repo) LatestEvents(ctx context.Context, f domain.EventFilter) ([]domain.Event, error) {
	clauses := []string{"1=1"}
	var args []any
	if f.Type != "" {
		clauses = append(clauses, "type=?")
		args = append(args, f.Type)
	}
	if f.EntityKind != "" {
		clauses = append(clauses, "entity_kind=?")
		args = append(args, f.EntityKind)
	}
	if f.EntityID != "" {
		clauses = append(clauses, "entity_id=?")
		args = append(args, f.EntityID)
	}
	if f.Cursor > 0 {
		clauses = append(clauses, "id<?")
		args = append(args, f.Cursor)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)
	query := fmt.Sprintf(`SELECT id,ts,type,entity_kind,COALESCE(entity_id,'') AS entity_id,actor_id,payload_json
		FROM events WHERE %s ORDER BY id DESC LIMIT ?`, strings.Join(clauses, " AND "))
	var res []domain.Event
	err := r.DB.SelectContext(ctx, &res, query, args...)
	return res, err
}
