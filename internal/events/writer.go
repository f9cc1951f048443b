package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Event types written by the engine.
const (
	TransformationInitialized = "transformation.init"
	TransformationAssessed    = "transformation.readiness"
	TransformationAdvanced    = "transformation.advanced"
	TransformationRetargeted  = "transformation.target"
	TransformationCaseLinked  = "transformation.case_attached"
	AssessmentCreated         = "assessment.created"
	BusinessCaseCreated       = "business_case.created"
)

type Writer struct {
	DB  *sqlx.DB
	Now func() time.Time
}

type EventPayload map[string]any

// Append records an event through exec, a transaction or the database
// itself when exec is nil.
func (w Writer) Append(ctx context.Context, exec sqlx.ExecerContext, evtType, entityKind, entityID, actorID string, payload EventPayload) error {
	if exec == nil {
		exec = w.DB
	}
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	if payload == nil {
		payload = EventPayload{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	if actorID == "" {
		actorID = "local-user"
	}
	_, err = exec.ExecContext(ctx, `INSERT INTO events(ts,type,entity_kind,entity_id,actor_id,payload_json) VALUES (?,?,?,?,?,?)`,
		now().UTC().Format(time.RFC3339), evtType, entityKind, nullable(entityID), actorID, string(data))
	if err != nil {
		return fmt.Errorf("append event %s: %w", evtType, err)
	}
	return nil
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
