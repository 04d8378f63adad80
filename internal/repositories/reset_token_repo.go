package repositories

import (
	"context"
	"errors"

	"funnelcrm/internal/common"
	"funnelcrm/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ResetTokenRepository interface {
	Create(ctx context.Context, token *models.PasswordResetToken) error
	GetByTokenForUpdate(ctx context.Context, token string) (*models.PasswordResetToken, error)
	MarkUsed(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context) (int64, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

type resetTokenRepo struct {
	db Database
}

func NewResetTokenRepo(db Database) ResetTokenRepository {
	return &resetTokenRepo{db: db}
}

func (r *resetTokenRepo) Create(ctx context.Context, token *models.PasswordResetToken) error {
	query := `
		INSERT INTO password_reset_tokens (id, user_id, token, expires_at, used, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	_, err := r.db.Exec(ctx, query, token.ID, token.UserID, token.Token, token.ExpiresAt, token.Used)
	return common.MapPgError(err)
}

// GetByTokenForUpdate locks the token row so two concurrent redemptions of
// the same token serialize; the loser sees used = true.
func (r *resetTokenRepo) GetByTokenForUpdate(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	query := `
		SELECT id, user_id, token, expires_at, used, created_at
		FROM password_reset_tokens
		WHERE token = $1
		FOR UPDATE
	`
	t := &models.PasswordResetToken{}
	err := r.db.QueryRow(ctx, query, token).Scan(&t.ID, &t.UserID, &t.Token, &t.ExpiresAt, &t.Used, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrTokenInvalid
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *resetTokenRepo) MarkUsed(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE password_reset_tokens SET used = TRUE WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return common.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *resetTokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM password_reset_tokens WHERE expires_at < NOW() OR used = TRUE`
	tag, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, common.MapPgError(err)
	}
	return tag.RowsAffected(), nil
}

func (r *resetTokenRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM password_reset_tokens WHERE user_id = $1`
	_, err := r.db.Exec(ctx, query, userID)
	return common.MapPgError(err)
}
