package postgres

import (
	"context"
	"fmt"

	"github.com/baharkarakas/atm-backend/internal/models"
	"github.com/google/uuid"
)

type auditLogsRepo struct{ db querier }

func (r *auditLogsRepo) Create(ctx context.Context, l models.AuditLog) error {
	const op = "repository.postgres.AuditLogs.Create"

	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO audit_logs(id, entity_type, entity_id, action, details) VALUES($1,$2,$3,$4,$5)`,
		l.ID, l.EntityType, l.EntityID, l.Action, l.Details,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *auditLogsRepo) List(ctx context.Context, limit int) ([]models.AuditLog, error) {
	const op = "repository.postgres.AuditLogs.List"

	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, entity_type, entity_id, action, details, created_at
		   FROM audit_logs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := []models.AuditLog{}
	for rows.Next() {
		var l models.AuditLog
		if err := rows.Scan(&l.ID, &l.EntityType, &l.EntityID, &l.Action, &l.Details, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
