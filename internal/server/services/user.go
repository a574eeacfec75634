// Package services contains server-side business logic. UserService handles
// registration, login and profile lookup on top of the user store.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/userservice/internal/common"
	"github.com/dmitrijs2005/userservice/internal/logging"
	"github.com/dmitrijs2005/userservice/internal/server/auth"
	"github.com/dmitrijs2005/userservice/internal/server/models"
	"github.com/dmitrijs2005/userservice/internal/server/repositories/repomanager"
)

// TokenIssuer is the part of auth.TokenCodec the service needs.
type TokenIssuer interface {
	Issue(userID int64, username, email string) (string, error)
	ExpirationMillis() int64
}

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
}

// LoginResult is a freshly issued token together with the identity it was
// issued for. ExpiresIn is in milliseconds.
type LoginResult struct {
	Token     string
	ExpiresIn int64
	UserID    int64
	Username  string
	Email     string
	FullName  string
	IssuedAt  time.Time
}

type UserService struct {
	repomanager repomanager.RepositoryManager
	tokens      TokenIssuer
	credentials auth.CredentialVerifier
	logger      logging.Logger
	now         func() time.Time
}

func NewUserService(m repomanager.RepositoryManager, tokens TokenIssuer, credentials auth.CredentialVerifier, logger logging.Logger) *UserService {
	return &UserService{
		repomanager: m,
		tokens:      tokens,
		credentials: credentials,
		logger:      logger.With("module", "user_service"),
		now:         time.Now,
	}
}

// Register creates a user. Username and email must both be unused; the
// username is checked first. Conflicts are returned as is, any other failure
// becomes a RegistrationFailed error. The returned record has no hash.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	repo := s.repomanager.Users(nil)

	if _, err := repo.FindByUsername(ctx, in.Username); err == nil {
		return nil, common.UsernameConflict(in.Username)
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, s.registrationFailed(ctx, err)
	}

	if _, err := repo.FindByEmail(ctx, in.Email); err == nil {
		return nil, common.EmailConflict(in.Email)
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, s.registrationFailed(ctx, err)
	}

	hash, err := s.credentials.Hash(in.Password)
	if err != nil {
		return nil, s.registrationFailed(ctx, err)
	}

	user, err := repo.Save(ctx, &models.User{
		Username:     in.Username,
		Email:        in.Email,
		FullName:     in.FullName,
		PasswordHash: hash,
	})
	if err != nil {
		if common.IsBusinessError(err) {
			s.logger.Info(ctx, "registration lost a uniqueness race", "username", in.Username)
			return nil, err
		}
		return nil, s.registrationFailed(ctx, err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID, "username", user.Username)

	out := *user
	out.PasswordHash = ""
	return &out, nil
}

func (s *UserService) registrationFailed(ctx context.Context, cause error) error {
	s.logger.Error(ctx, "registration failed", "error", cause.Error())
	return common.RegistrationFailed(cause)
}

// Login resolves identifier as either an email or a username, verifies the
// password and issues a token. An unknown identifier yields UserNotFound, a
// wrong password InvalidCredentials. Unexpected failures are also reported
// as InvalidCredentials, with the cause kept for logs.
func (s *UserService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	repo := s.repomanager.Users(nil)

	user, err := repo.FindByEmailOrUsername(ctx, identifier)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.UserNotFound()
		}
		return nil, s.loginFailed(ctx, err)
	}

	if !s.credentials.Matches(password, user.PasswordHash) {
		s.logger.Info(ctx, "login rejected", "user_id", user.ID)
		return nil, common.InvalidCredentials(nil)
	}

	issuedAt := s.now()
	token, err := s.tokens.Issue(user.ID, user.Username, user.Email)
	if err != nil {
		return nil, s.loginFailed(ctx, err)
	}

	s.upgradeHash(ctx, user, password)

	s.logger.Info(ctx, "user logged in", "user_id", user.ID)

	return &LoginResult{
		Token:     token,
		ExpiresIn: s.tokens.ExpirationMillis(),
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		IssuedAt:  issuedAt,
	}, nil
}

func (s *UserService) loginFailed(ctx context.Context, cause error) error {
	s.logger.Error(ctx, "login failed unexpectedly", "error", cause.Error())
	return common.InvalidCredentials(cause)
}

// upgradeHash re-hashes the password when the stored hash was produced with
// different parameters. Errors only get logged; the login has already
// succeeded.
func (s *UserService) upgradeHash(ctx context.Context, user *models.User, password string) {
	rh, ok := s.credentials.(auth.Rehasher)
	if !ok || !rh.NeedsRehash(user.PasswordHash) {
		return
	}

	hash, err := s.credentials.Hash(password)
	if err != nil {
		s.logger.Warn(ctx, "password rehash failed", "user_id", user.ID, "error", err.Error())
		return
	}

	updated := *user
	updated.PasswordHash = hash
	if _, err := s.repomanager.Users(nil).Save(ctx, &updated); err != nil {
		s.logger.Warn(ctx, "saving rehashed password failed", "user_id", user.ID, "error", err.Error())
		return
	}
	s.logger.Debug(ctx, "password hash upgraded", "user_id", user.ID)
}

// Profile returns the user named by username without its hash.
func (s *UserService) Profile(ctx context.Context, username string) (*models.User, error) {
	user, err := s.repomanager.Users(nil).FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.UserNotFound()
		}
		return nil, err
	}
	out := *user
	out.PasswordHash = ""
	return &out, nil
}
