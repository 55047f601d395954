package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
        id            TEXT PRIMARY KEY,
        email         TEXT NOT NULL UNIQUE,
        name          TEXT NOT NULL DEFAULT '',
        password_hash TEXT NOT NULL,
        created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE TABLE IF NOT EXISTS cli_tokens (
        token      TEXT PRIMARY KEY,
        user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        revoked    BOOLEAN NOT NULL DEFAULT FALSE,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE TABLE IF NOT EXISTS projects (
        id         TEXT PRIMARY KEY,
        name       TEXT NOT NULL,
        owner_id   TEXT NOT NULL DEFAULT '',
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE TABLE IF NOT EXISTS steps (
        id         TEXT PRIMARY KEY,
        project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
        name       TEXT NOT NULL,
        color      TEXT NOT NULL,
        position   INTEGER NOT NULL DEFAULT 0
    )`,
	`CREATE TABLE IF NOT EXISTS task_types (
        id         TEXT PRIMARY KEY,
        project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
        name       TEXT NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS tasks (
        id             TEXT PRIMARY KEY,
        project_id     TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
        name           TEXT NOT NULL,
        description    TEXT,
        user_ids       TEXT[] NOT NULL DEFAULT '{}',
        type_id        TEXT REFERENCES task_types(id),
        step_id        TEXT REFERENCES steps(id),
        status         TEXT NOT NULL DEFAULT 'TODO',
        hash           VARCHAR(6) NOT NULL,
        deadline_hours DOUBLE PRECISION,
        created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        CONSTRAINT tasks_hash_key UNIQUE (hash)
    )`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_step ON tasks(step_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_type ON tasks(type_id)`,
	`CREATE TABLE IF NOT EXISTS teams (
        id         TEXT PRIMARY KEY,
        project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
        name       VARCHAR(255) NOT NULL,
        members    TEXT[] NOT NULL DEFAULT '{}'
    )`,
	`CREATE INDEX IF NOT EXISTS idx_teams_project ON teams(project_id)`,
	`CREATE TABLE IF NOT EXISTS task_history (
        id           TEXT PRIMARY KEY,
        task_id      TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
        file_path    TEXT NOT NULL,
        elapsed_time TEXT NOT NULL,
        user_id      TEXT,
        created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE INDEX IF NOT EXISTS idx_task_history_task ON task_history(task_id, created_at DESC)`,
}

// Migrate creates the schema. Every statement is idempotent.
func Migrate(ctx context.Context, db *pgxpool.Pool, logger *zap.Logger) error {
	for i, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			logger.Error("Migration failed", zap.Int("statement", i), zap.Error(err))
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	logger.Info("Schema is up to date", zap.Int("statements", len(schema)))
	return nil
}
