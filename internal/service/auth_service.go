package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"taskboard/internal/model"
	"taskboard/pkg/util"
)

// cliTokenBytes is the amount of randomness in a CLI token before hex encoding.
const cliTokenBytes = 32

// usersEmailConstraint is Postgres' default name for the UNIQUE on users.email.
const usersEmailConstraint = "users_email_key"

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}

type AuthService struct {
	users     UserStore
	tokens    CLITokenStore
	jwtSecret string
	jwtTTL    time.Duration
	logger    *zap.Logger
}

func NewAuthService(users UserStore, tokens CLITokenStore, jwtSecret string, jwtTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		jwtSecret: jwtSecret,
		jwtTTL:    jwtTTL,
		logger:    logger,
	}
}

// Register creates a new user.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		// a concurrent registration won the unique index
		if isUniqueViolation(err, usersEmailConstraint) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Login checks user credentials and returns a JWT.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrInvalidLogin
	}
	if err != nil {
		return "", fmt.Errorf("find user: %w", err)
	}
	if !util.CheckPassword(password, u.PasswordHash) {
		return "", ErrInvalidLogin
	}
	return util.GenerateJWT(u.ID, s.jwtSecret, s.jwtTTL)
}

// ValidateJWT returns the user id carried by a session token.
func (s *AuthService) ValidateJWT(token string) (string, error) {
	userID, err := util.ParseJWT(token, s.jwtSecret)
	if err != nil {
		return "", ErrInvalidToken
	}
	return userID, nil
}

// IssueCLIToken creates a long-lived token for the companion CLI.
func (s *AuthService) IssueCLIToken(ctx context.Context, userID string) (string, error) {
	token, err := util.RandomHex(cliTokenBytes)
	if err != nil {
		return "", err
	}
	if err := s.tokens.Insert(ctx, &model.CLIToken{Token: token, UserID: userID}); err != nil {
		return "", err
	}
	s.logger.Info("CLI token issued", zap.String("user_id", userID))
	return token, nil
}

// ValidateCLIToken returns the owner of an active token.
func (s *AuthService) ValidateCLIToken(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}
	t, err := s.tokens.FindActive(ctx, token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrInvalidToken
		}
		return "", err
	}
	return t.UserID, nil
}

func (s *AuthService) RevokeCLIToken(ctx context.Context, token, userID string) error {
	if err := s.tokens.Revoke(ctx, token, userID); err != nil {
		return notFound(err)
	}
	return nil
}
