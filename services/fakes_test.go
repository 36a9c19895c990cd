package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/akinalp/kimlik/models"
	"github.com/akinalp/kimlik/pkg"
)

// In-memory fake'ler — service testleri SQLite olmadan çalışır.
// Repository interface'lerinin semantiğini birebir taklit ederler
// (canlılık filtresi, koşullu rotate, idempotent revoke).

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username {
			return fmt.Errorf("%w: username already exists", pkg.ErrAlreadyExists)
		}
		if u.Email == user.Email {
			return fmt.Errorf("%w: email already exists", pkg.ErrAlreadyExists)
		}
	}

	r.nextID++
	user.ID = fmt.Sprintf("u-%d", r.nextID)
	user.CreatedAt = time.Now()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user not found", pkg.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: user not found", pkg.ErrNotFound)
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: user not found", pkg.ErrNotFound)
}

func (r *fakeUserRepo) UpdateLastLogin(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("%w: user not found", pkg.ErrNotFound)
	}
	now := time.Now()
	u.LastLogin = &now
	return nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, userID string, newPasswordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("%w: user not found", pkg.ErrNotFound)
	}
	u.PasswordHash = newPasswordHash
	return nil
}

// setStatus, test hazırlığı için hesap durumunu doğrudan değiştirir.
func (r *fakeUserRepo) setStatus(userID string, status models.UserStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.Status = status
	}
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	nextID   int
	sessions map[string]*models.Session // key: refresh token
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*models.Session)}
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[session.RefreshToken]; ok {
		return fmt.Errorf("%w: session already exists", pkg.ErrAlreadyExists)
	}

	r.nextID++
	session.ID = fmt.Sprintf("s-%d", r.nextID)
	session.CreatedAt = time.Now()
	cp := *session
	r.sessions[session.RefreshToken] = &cp
	return nil
}

func (r *fakeSessionRepo) GetLiveByToken(ctx context.Context, token string, now time.Time) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[token]
	if !ok || s.RevokedAt != nil || !s.ExpiresAt.After(now) {
		return nil, fmt.Errorf("%w: session not found", pkg.ErrNotFound)
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSessionRepo) Rotate(ctx context.Context, oldToken string, newSession *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// SQLite implementasyonundaki koşullu UPDATE'in karşılığı:
	// kayıt yoksa veya zaten revoke edilmişse hiçbir şey değişmez.
	s, ok := r.sessions[oldToken]
	if !ok || s.RevokedAt != nil {
		return fmt.Errorf("%w: session not found", pkg.ErrNotFound)
	}

	now := time.Now()
	s.RevokedAt = &now
	replacement := newSession.RefreshToken
	s.ReplacedByToken = &replacement

	r.nextID++
	newSession.ID = fmt.Sprintf("s-%d", r.nextID)
	newSession.CreatedAt = now
	cp := *newSession
	r.sessions[newSession.RefreshToken] = &cp
	return nil
}

func (r *fakeSessionRepo) Revoke(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[token]; ok && s.RevokedAt == nil {
		now := time.Now()
		s.RevokedAt = &now
	}
	return nil
}

func (r *fakeSessionRepo) RevokeAllByUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, s := range r.sessions {
		if s.UserID == userID && s.RevokedAt == nil {
			s.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeSessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for token, s := range r.sessions {
		if s.RevokedAt == nil && !s.ExpiresAt.After(now) {
			delete(r.sessions, token)
			deleted++
		}
	}
	return deleted, nil
}

// get, test doğrulamaları için kayıt kopyası döner (canlılık filtresi yok).
func (r *fakeSessionRepo) get(token string) (*models.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[token]
	if !ok {
		return nil, false
	}
	cp := *s
	return &cp, true
}

func (r *fakeSessionRepo) liveCount(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, s := range r.sessions {
		if s.UserID == userID && s.RevokedAt == nil && s.ExpiresAt.After(time.Now()) {
			count++
		}
	}
	return count
}

type fakeAuthLogRepo struct {
	mu      sync.Mutex
	nextID  int
	entries []models.AuthLogEntry
	failErr error
}

func newFakeAuthLogRepo() *fakeAuthLogRepo {
	return &fakeAuthLogRepo{}
}

func (r *fakeAuthLogRepo) Create(ctx context.Context, entry *models.AuthLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failErr != nil {
		return r.failErr
	}

	r.nextID++
	entry.ID = fmt.Sprintf("log-%d", r.nextID)
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeAuthLogRepo) ListRecent(ctx context.Context, limit int) ([]models.AuthLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.AuthLogEntry, 0, limit)
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.entries[i])
	}
	return out, nil
}

func (r *fakeAuthLogRepo) ListByUser(ctx context.Context, userID string, limit int) ([]models.AuthLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.AuthLogEntry, 0, limit)
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if r.entries[i].UserID != nil && *r.entries[i].UserID == userID {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}

// find, verilen action+status ile eşleşen son kaydı döner.
func (r *fakeAuthLogRepo) find(action, status string) (models.AuthLogEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].Action == action && r.entries[i].Status == status {
			return r.entries[i], true
		}
	}
	return models.AuthLogEntry{}, false
}

type fakeResetTokenRepo struct {
	mu     sync.Mutex
	nextID int
	tokens map[string]*models.PasswordResetToken // key: token ID
}

func newFakeResetTokenRepo() *fakeResetTokenRepo {
	return &fakeResetTokenRepo{tokens: make(map[string]*models.PasswordResetToken)}
}

func (r *fakeResetTokenRepo) Create(ctx context.Context, token *models.PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	token.ID = fmt.Sprintf("rt-%d", r.nextID)
	token.CreatedAt = time.Now()
	cp := *token
	r.tokens[token.ID] = &cp
	return nil
}

func (r *fakeResetTokenRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.tokens {
		if t.TokenHash == tokenHash {
			cp := *t
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: reset token not found", pkg.ErrNotFound)
}

func (r *fakeResetTokenRepo) DeleteByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, id)
	return nil
}

func (r *fakeResetTokenRepo) DeleteByUserID(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, t := range r.tokens {
		if t.UserID == userID {
			delete(r.tokens, id)
		}
	}
	return nil
}

func (r *fakeResetTokenRepo) DeleteExpired(ctx context.Context, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, t := range r.tokens {
		if !t.ExpiresAt.After(now) {
			delete(r.tokens, id)
		}
	}
	return nil
}

func (r *fakeResetTokenRepo) GetLatestByUserID(ctx context.Context, userID string) (*models.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var latest *models.PasswordResetToken
	for _, t := range r.tokens {
		if t.UserID == userID && (latest == nil || t.CreatedAt.After(latest.CreatedAt)) {
			latest = t
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("%w: reset token not found", pkg.ErrNotFound)
	}
	cp := *latest
	return &cp, nil
}

type fakeEmailSender struct {
	mu     sync.Mutex
	toList []string
	tokens []string
}

func (s *fakeEmailSender) SendPasswordReset(ctx context.Context, toEmail, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toList = append(s.toList, toEmail)
	s.tokens = append(s.tokens, token)
	return nil
}

func (s *fakeEmailSender) lastToken() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tokens) == 0 {
		return "", false
	}
	return s.tokens[len(s.tokens)-1], true
}

type fakePublisher struct {
	mu      sync.Mutex
	entries []models.AuthLogEntry
}

func (p *fakePublisher) Publish(entry *models.AuthLogEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(p.entries, *entry)
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}
