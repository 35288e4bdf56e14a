// Package auth implements account registration and login over a credential
// store, plus the per-request caller identity used by write endpoints.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/tazhibayda/radiostation-service/internal/domain"
	"github.com/tazhibayda/radiostation-service/internal/repo"
)

var (
	ErrDuplicateAccount   = errors.New("user already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMissingCredentials = errors.New("email and password are required")
	ErrPasswordTooLong    = errors.New("password too long")
	ErrNotFound           = errors.New("user not found")
	ErrInternal           = errors.New("internal error")
)

// UserStore is the credential store. FindUserByEmail returns (nil, nil) when
// no user has that email.
type UserStore interface {
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	CreateUser(ctx context.Context, u *domain.User) error
}

type PasswordHasher interface {
	Hash(pw string) (string, error)
	Check(hash, pw string) bool
}

type TokenIssuer interface {
	Issue(uid, email string) (string, error)
}

type Credentials struct {
	Email    string
	Password string
}

// Result is returned by both flows. It never carries the password hash.
type Result struct {
	Token string            `json:"token"`
	User  domain.PublicUser `json:"user"`
}

type Service struct {
	users  UserStore
	hasher PasswordHasher
	tokens TokenIssuer
}

func NewService(users UserStore, hasher PasswordHasher, tokens TokenIssuer) *Service {
	return &Service{users: users, hasher: hasher, tokens: tokens}
}

func normalize(in Credentials) (Credentials, error) {
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" || in.Password == "" {
		return in, ErrMissingCredentials
	}
	return in, nil
}

func (s *Service) lookup(ctx context.Context, email string) (*domain.User, error) {
	u, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: find user: %v", ErrInternal, err)
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

func (s *Service) Register(ctx context.Context, in Credentials) (*Result, error) {
	in, err := normalize(in)
	if err != nil {
		return nil, err
	}
	switch _, err := s.lookup(ctx, in.Email); {
	case err == nil:
		return nil, ErrDuplicateAccount
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, ErrPasswordTooLong
	}
	if err != nil {
		return nil, fmt.Errorf("%w: hash: %v", ErrInternal, err)
	}

	u := &domain.User{Email: in.Email, PasswordHash: hash}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repo.ErrEmailExists) {
			return nil, ErrDuplicateAccount
		}
		return nil, fmt.Errorf("%w: create user: %v", ErrInternal, err)
	}
	return s.issue(u)
}

func (s *Service) Login(ctx context.Context, in Credentials) (*Result, error) {
	in, err := normalize(in)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	u, err := s.lookup(ctx, in.Email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !s.hasher.Check(u.PasswordHash, in.Password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(u)
}

func (s *Service) issue(u *domain.User) (*Result, error) {
	tok, err := s.tokens.Issue(u.ID.Hex(), u.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: issue token: %v", ErrInternal, err)
	}
	return &Result{Token: tok, User: u.Public()}, nil
}
