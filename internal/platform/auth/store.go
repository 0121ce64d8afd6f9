package auth

import (
	"context"
	"database/sql"
	"errors"

	mysql "github.com/go-sql-driver/mysql"
)

type Account struct {
	UserID       uint64
	Name         string
	Email        string
	PasswordHash string
	Role         string
	IsDisabled   bool
	CreatedAt    string
}

type AccountStore interface {
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByID(ctx context.Context, id uint64) (*Account, error)
	Create(ctx context.Context, a *Account) (uint64, error)
	SetDisabled(ctx context.Context, id uint64, disabled bool) (int64, error)
	Delete(ctx context.Context, id uint64) (int64, error)
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) AccountStore {
	return &Store{db: db}
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*Account, error) {
	const q = `
SELECT user_id, name, email, password_hash, role, is_disabled, created_at
FROM users
WHERE email = ?
LIMIT 1
`
	return s.scanOne(s.db.QueryRowContext(ctx, q, email))
}

func (s *Store) GetByID(ctx context.Context, id uint64) (*Account, error) {
	const q = `
SELECT user_id, name, email, password_hash, role, is_disabled, created_at
FROM users
WHERE user_id = ?
LIMIT 1
`
	return s.scanOne(s.db.QueryRowContext(ctx, q, id))
}

func (s *Store) scanOne(row *sql.Row) (*Account, error) {
	var a Account
	var isDisabledInt int
	err := row.Scan(
		&a.UserID,
		&a.Name,
		&a.Email,
		&a.PasswordHash,
		&a.Role,
		&isDisabledInt,
		&a.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if isDisabledInt != 0 {
		a.IsDisabled = true
	}
	return &a, nil
}

func (s *Store) Create(ctx context.Context, a *Account) (uint64, error) {
	const q = `
INSERT INTO users (name, email, password_hash, role, is_disabled, created_at)
VALUES (?, ?, ?, ?, 0, NOW(6))
`
	res, err := s.db.ExecContext(ctx, q, a.Name, a.Email, a.PasswordHash, a.Role)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return 0, ErrAlreadyExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func (s *Store) SetDisabled(ctx context.Context, id uint64, disabled bool) (int64, error) {
	const q = `UPDATE users SET is_disabled = ? WHERE user_id = ?`
	v := 0
	if disabled {
		v = 1
	}
	res, err := s.db.ExecContext(ctx, q, v, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) Delete(ctx context.Context, id uint64) (int64, error) {
	const q = `DELETE FROM users WHERE user_id = ?`
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
