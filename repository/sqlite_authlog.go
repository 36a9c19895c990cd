package repository

import (
	"context"
	"fmt"

	"github.com/akinalp/kimlik/database"
	"github.com/akinalp/kimlik/models"
	"github.com/google/uuid"
)

// sqliteAuthLogRepo, AuthLogRepository interface'inin SQLite implementasyonu.
type sqliteAuthLogRepo struct {
	db database.TxQuerier
}

// NewSQLiteAuthLogRepo, constructor.
func NewSQLiteAuthLogRepo(db database.TxQuerier) AuthLogRepository {
	return &sqliteAuthLogRepo{db: db}
}

func (r *sqliteAuthLogRepo) Create(ctx context.Context, entry *models.AuthLogEntry) error {
	query := `
		INSERT INTO auth_logs (id, user_id, action, status, ip_address, user_agent, details)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING created_at`

	entry.ID = uuid.NewString()

	err := r.db.QueryRowContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Action,
		entry.Status,
		entry.IPAddress,
		entry.UserAgent,
		entry.Details,
	).Scan(&entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create auth log entry: %w", err)
	}

	return nil
}

func (r *sqliteAuthLogRepo) ListRecent(ctx context.Context, limit int) ([]models.AuthLogEntry, error) {
	query := `
		SELECT id, user_id, action, status, ip_address, user_agent, details, created_at
		FROM auth_logs
		ORDER BY created_at DESC
		LIMIT ?`

	return r.list(ctx, query, limit)
}

func (r *sqliteAuthLogRepo) ListByUser(ctx context.Context, userID string, limit int) ([]models.AuthLogEntry, error) {
	query := `
		SELECT id, user_id, action, status, ip_address, user_agent, details, created_at
		FROM auth_logs
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?`

	return r.list(ctx, query, userID, limit)
}

func (r *sqliteAuthLogRepo) list(ctx context.Context, query string, args ...any) ([]models.AuthLogEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query auth logs: %w", err)
	}
	defer rows.Close()

	var entries []models.AuthLogEntry
	for rows.Next() {
		var e models.AuthLogEntry
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.Action, &e.Status,
			&e.IPAddress, &e.UserAgent, &e.Details, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan auth log row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate auth log rows: %w", err)
	}

	return entries, nil
}
