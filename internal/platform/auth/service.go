package auth

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

var (
	ErrAlreadyExists = errors.New("already exists")
	ErrNotFound      = errors.New("not found")
)

type Service struct {
	store  AccountStore
	secret []byte
}

func NewService(db *sql.DB, secret []byte) *Service {
	return &Service{store: NewStore(db), secret: secret}
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, name, email, password, role string) (uint64, error)
	Disable(ctx context.Context, id uint64, disabled bool) error
	Delete(ctx context.Context, id uint64) error
	Me(ctx context.Context, id uint64) (*Account, error)
}

func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	acct, err := s.store.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return "", err
	}
	if acct == nil {
		return "", errors.New("authentication failed")
	}
	if acct.IsDisabled {
		return "", errors.New("account disabled")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return "", errors.New("authentication failed")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  strconv.FormatUint(acct.UserID, 10),
		"role": acct.Role,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

func (s *Service) Register(ctx context.Context, name, email, password, role string) (uint64, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}

	// email はUNIQUE。重複は store 側で ErrAlreadyExists に変換される。
	return s.store.Create(ctx, &Account{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsDisabled:   false,
	})
}

func (s *Service) Disable(ctx context.Context, id uint64, disabled bool) error {
	n, err := s.store.SetDisabled(ctx, id, disabled)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id uint64) error {
	n, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) Me(ctx context.Context, id uint64) (*Account, error) {
	acct, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, ErrNotFound
	}
	return acct, nil
}

// EnsureSuperAdmin: 起動時シード。既に同じemailが居れば何もしない。
func (s *Service) EnsureSuperAdmin(ctx context.Context, name, email, password string) error {
	acct, err := s.store.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return err
	}
	if acct != nil {
		return nil
	}
	_, err = s.Register(ctx, name, email, password, RoleSuperAdmin)
	if errors.Is(err, ErrAlreadyExists) {
		return nil
	}
	return err
}
