package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"taskboard/internal/model"
)

type CLITokenRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewCLITokenRepository(db *pgxpool.Pool, logger *zap.Logger) *CLITokenRepository {
	return &CLITokenRepository{db: db, logger: logger}
}

func (r *CLITokenRepository) Insert(ctx context.Context, t *model.CLIToken) error {
	err := r.db.QueryRow(ctx, `
        INSERT INTO cli_tokens (token, user_id)
        VALUES ($1, $2)
        RETURNING created_at
    `, t.Token, t.UserID).Scan(&t.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert cli token", zap.String("user_id", t.UserID), zap.Error(err))
		return err
	}
	return nil
}

// FindActive returns the token only if it exists and has not been revoked.
func (r *CLITokenRepository) FindActive(ctx context.Context, token string) (*model.CLIToken, error) {
	var t model.CLIToken
	err := r.db.QueryRow(ctx, `
        SELECT token, user_id, revoked, created_at
        FROM cli_tokens
        WHERE token = $1 AND NOT revoked
    `, token).Scan(&t.Token, &t.UserID, &t.Revoked, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Revoke marks the token revoked. Only the owning user can revoke it.
func (r *CLITokenRepository) Revoke(ctx context.Context, token, userID string) error {
	tag, err := r.db.Exec(ctx, `
        UPDATE cli_tokens SET revoked = TRUE
        WHERE token = $1 AND user_id = $2 AND NOT revoked
    `, token, userID)
	if err != nil {
		r.logger.Error("Failed to revoke cli token", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	r.logger.Info("CLI token revoked", zap.String("user_id", userID))
	return nil
}
