package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/akinalp/kimlik/database"
	"github.com/akinalp/kimlik/models"
	"github.com/akinalp/kimlik/pkg"
	"github.com/google/uuid"
)

// sqliteSessionRepo, SessionRepository interface'inin SQLite implementasyonu.
//
// Diğer repo'lardan farklı olarak TxQuerier değil *sql.DB tutar —
// Rotate kendi transaction'ını başlatmak zorunda (database.WithTx).
type sqliteSessionRepo struct {
	db *sql.DB
}

// NewSQLiteSessionRepo, constructor.
func NewSQLiteSessionRepo(db *sql.DB) SessionRepository {
	return &sqliteSessionRepo{db: db}
}

func (r *sqliteSessionRepo) Create(ctx context.Context, session *models.Session) error {
	return createSession(ctx, r.db, session)
}

// createSession, hem normal Create hem de Rotate'in transaction'ı içinden
// kullanılan ortak insert. q parametresi *sql.DB veya *sql.Tx olabilir.
func createSession(ctx context.Context, q database.TxQuerier, session *models.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, refresh_token, user_agent, ip_address, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING created_at`

	session.ID = uuid.NewString()

	err := q.QueryRowContext(ctx, query,
		session.ID,
		session.UserID,
		session.RefreshToken,
		session.UserAgent,
		session.IPAddress,
		session.ExpiresAt,
	).Scan(&session.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: refresh token already exists", pkg.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

func (r *sqliteSessionRepo) GetLiveByToken(ctx context.Context, token string, now time.Time) (*models.Session, error) {
	query := `
		SELECT id, user_id, refresh_token, user_agent, ip_address,
		       expires_at, created_at, revoked_at, replaced_by_token
		FROM sessions
		WHERE refresh_token = ? AND revoked_at IS NULL AND expires_at > ?`

	session := &models.Session{}
	err := r.db.QueryRowContext(ctx, query, token, now).Scan(
		&session.ID, &session.UserID, &session.RefreshToken,
		&session.UserAgent, &session.IPAddress,
		&session.ExpiresAt, &session.CreatedAt,
		&session.RevokedAt, &session.ReplacedByToken,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session by refresh token: %w", err)
	}

	return session, nil
}

func (r *sqliteSessionRepo) Rotate(ctx context.Context, oldToken string, newSession *models.Session) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		// Koşullu revoke: "revoked_at IS NULL" şartı yarışan ikinci Rotate'in
		// 0 satır etkilemesini sağlar. RowsAffected kontrolü olmadan iki yarışçı
		// da kazanır ve çalınan tek token'dan iki geçerli oturum doğardı.
		result, err := tx.ExecContext(ctx, `
			UPDATE sessions
			SET revoked_at = CURRENT_TIMESTAMP, replaced_by_token = ?
			WHERE refresh_token = ? AND revoked_at IS NULL`,
			newSession.RefreshToken, oldToken)
		if err != nil {
			return fmt.Errorf("failed to revoke old session: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check rows affected: %w", err)
		}
		if affected == 0 {
			// Eski oturum zaten revoke edilmiş (yarış kaybedildi veya replay) —
			// fail closed, yeni oturum da rollback ile yok olur.
			return pkg.ErrNotFound
		}

		return createSession(ctx, tx, newSession)
	})
}

func (r *sqliteSessionRepo) Revoke(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sessions
		SET revoked_at = CURRENT_TIMESTAMP
		WHERE refresh_token = ? AND revoked_at IS NULL`, token)
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func (r *sqliteSessionRepo) RevokeAllByUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sessions
		SET revoked_at = CURRENT_TIMESTAMP
		WHERE user_id = ? AND revoked_at IS NULL`, userID)
	if err != nil {
		return fmt.Errorf("failed to revoke user sessions: %w", err)
	}
	return nil
}

func (r *sqliteSessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	// Sadece süresi dolmuş VE revoke edilmemiş satırlar silinir —
	// revoke edilmiş satırlar rotation zinciri/audit için kalır.
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM sessions
		WHERE revoked_at IS NULL AND expires_at < ?`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read deleted row count: %w", err)
	}
	return deleted, nil
}
