package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"plenum/internal/platform/querier"
)

type Event struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actorId"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	IP         string          `json:"ip"`
	CreatedAt  time.Time       `json:"createdAt"`
	After      json.RawMessage `json:"after,omitempty"`
}

type Filter struct {
	Action     string
	EntityType string
	ActorUser  string
}

type Service struct {
	DB querier.Querier
}

func New(db querier.Querier) *Service {
	return &Service{DB: db}
}

// Record stores one audit row. An empty actor is written as NULL for public callers.
func (s *Service) Record(ctx context.Context, companyID, actorID, action, entityType, entityID, requestID, ip string, after any) error {
	var afterJSON []byte
	if after != nil {
		payload, err := json.Marshal(after)
		if err != nil {
			return err
		}
		afterJSON = payload
	}

	var actor any
	if actorID != "" {
		actor = actorID
	}
	_, err := s.DB.Exec(ctx, `
    INSERT INTO audit_events (company_id, actor_user_id, action, entity_type, entity_id, request_id, ip, after_json)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
  `, companyID, actor, action, entityType, entityID, requestID, ip, afterJSON)
	return err
}

func (s *Service) List(ctx context.Context, companyID string, filter Filter, includeDetails bool, limit, offset int) ([]Event, error) {
	selectCols := "id::text, COALESCE(actor_user_id::text, ''), action, entity_type, entity_id, COALESCE(request_id, ''), COALESCE(ip, ''), created_at"
	if includeDetails {
		selectCols += ", after_json"
	}
	query, args := buildBaseQuery("SELECT "+selectCols, companyID, filter)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var evt Event
		dest := []any{&evt.ID, &evt.ActorID, &evt.Action, &evt.EntityType, &evt.EntityID, &evt.RequestID, &evt.IP, &evt.CreatedAt}
		if includeDetails {
			dest = append(dest, &evt.After)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}

func buildBaseQuery(prefix, companyID string, filter Filter) (string, []any) {
	query := prefix + " FROM audit_events WHERE company_id = $1"
	args := []any{companyID}
	if filter.Action != "" {
		query += fmt.Sprintf(" AND action = $%d", len(args)+1)
		args = append(args, filter.Action)
	}
	if filter.EntityType != "" {
		query += fmt.Sprintf(" AND entity_type = $%d", len(args)+1)
		args = append(args, filter.EntityType)
	}
	if filter.ActorUser != "" {
		query += fmt.Sprintf(" AND actor_user_id::text = $%d", len(args)+1)
		args = append(args, filter.ActorUser)
	}
	return query, args
}
