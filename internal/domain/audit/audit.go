package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"skima/internal/platform/querier"
)

type Event struct {
	ID         int64           `json:"id"`
	Actor      string          `json:"actor"`
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
}

type Service struct {
	DB  querier.Querier
	Now func() time.Time
}

func New(db querier.Querier) *Service {
	return &Service{DB: db, Now: time.Now}
}

func (s *Service) Record(ctx context.Context, actor, action, entityType, entityID, requestID, ip string, after any) error {
	var afterJSON sql.NullString
	if after != nil {
		payload, err := json.Marshal(after)
		if err != nil {
			return err
		}
		afterJSON = sql.NullString{String: string(payload), Valid: true}
	}

	_, err := s.DB.ExecContext(ctx, s.DB.Rebind(`
    INSERT INTO audit_events (actor, action, entity_type, entity_id, request_id, ip, after_json, created_at)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?)
  `), actor, action, entityType, entityID, requestID, ip, afterJSON, s.Now().UTC())
	return err
}

func (s *Service) Count(ctx context.Context, filter Filter) (int, error) {
	query, args := buildBaseQuery("SELECT COUNT(1)", filter)
	var total int
	if err := s.DB.QueryRowContext(ctx, s.DB.Rebind(query), args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// List returns the newest events first. A non-positive limit means all.
func (s *Service) List(ctx context.Context, filter Filter, includeDetails bool, limit, offset int) ([]Event, error) {
	query, args := buildBaseQuery("SELECT id, actor, action, entity_type, entity_id, request_id, ip, created_at, after_json", filter)
	query += " ORDER BY created_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	rows, err := s.DB.QueryContext(ctx, s.DB.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var evt Event
		var after sql.NullString
		if err := rows.Scan(&evt.ID, &evt.Actor, &evt.Action, &evt.EntityType, &evt.EntityID, &evt.RequestID, &evt.IP, &evt.CreatedAt, &after); err != nil {
			return nil, err
		}
		if includeDetails && after.Valid {
			evt.After = json.RawMessage(after.String)
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}

func buildBaseQuery(prefix string, filter Filter) (string, []any) {
	query := prefix + " FROM audit_events WHERE 1 = 1"
	var args []any
	if filter.Action != "" {
		query += " AND action = ?"
		args = append(args, filter.Action)
	}
	if filter.EntityType != "" {
		query += " AND entity_type = ?"
		args = append(args, filter.EntityType)
	}
	return query, args
}
