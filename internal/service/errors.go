package service

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

var (
	// ErrProjectNotFound is returned when a write references a project that does not exist.
	ErrProjectNotFound = errors.New("project not found")
	ErrNotFound        = errors.New("record not found")
	// ErrInUse blocks deleting a step or type that tasks still reference.
	ErrInUse           = errors.New("record is referenced by existing tasks")
	// ErrCrossProject is returned when a task points at a step or type of another project.
	ErrCrossProject    = errors.New("step or type does not belong to the task's project")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmailTaken      = errors.New("email already exists")
	ErrInvalidLogin    = errors.New("invalid email or password")
	ErrInvalidToken    = errors.New("invalid or revoked token")
)

// notFound maps pgx.ErrNoRows onto ErrNotFound and leaves other errors alone.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
