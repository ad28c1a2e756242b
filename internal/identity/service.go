// Package identity covers the account-facing flows around the session
// directory: sign-up, log-in, log-out and account deletion. Credential
// records live in the same Users collection the catalog gateway serves.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/catalog"
	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/domain"
	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/session"
)

var (
	ErrAccountExists  = errors.New("email or ssn already registered")
	ErrBadCredentials = errors.New("unknown handle or wrong password")
)

type Service struct {
	gateway   catalog.Gateway
	directory *session.Directory
}

func NewService(gateway catalog.Gateway, directory *session.Directory) *Service {
	return &Service{gateway: gateway, directory: directory}
}

// SignUp registers a new user account. The SSN format is validated by the
// caller; uniqueness of email and SSN is enforced here.
func (s *Service) SignUp(ctx context.Context, name, email, password, ssn string) error {
	exists, err := s.gateway.AccountExists(ctx, email, ssn)
	if err != nil {
		return fmt.Errorf("failed to check for existing account: %w", err)
	}
	if exists {
		return ErrAccountExists
	}

	account := &domain.Account{
		Name:     name,
		Email:    email,
		Password: password,
		SSN:      ssn,
		Category: domain.CategoryUser,
	}
	if err := s.gateway.InsertAccount(ctx, account); err != nil {
		return fmt.Errorf("failed to register account: %w", err)
	}
	return nil
}

// LogIn authenticates a handle/password pair and opens a session. The
// handle kind decides the actor category's credential field: username for
// administrators, email for users.
func (s *Service) LogIn(ctx context.Context, kind catalog.HandleKind, handle, password string) (*session.Session, error) {
	account, err := s.gateway.FindAccountByLogin(ctx, kind, handle, password)
	if err != nil {
		if errors.Is(err, catalog.ErrAccountNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}

	return s.directory.Create(account.Handle(), account.Category), nil
}

// LogOut destroys the session; the token is expected to have been resolved
// already.
func (s *Service) LogOut(token string) {
	s.directory.Destroy(token)
}

// DeleteAccount removes the persisted account record and destroys the
// session that requested it.
func (s *Service) DeleteAccount(ctx context.Context, sess *session.Session) error {
	if err := s.gateway.DeleteAccount(ctx, sess.Handle); err != nil {
		return err
	}
	s.directory.Destroy(sess.Token)
	return nil
}
