package registrations

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"managemate-backend/internal/monitoring"
)

// ===== Error model (events と同型) =====
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *APIError { return &APIError{Code: CodeConflict, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return 400
		case CodeNotFound:
			return 404
		case CodeConflict:
			return 409
		default:
			return 500
		}
	}
	return 500
}

// ===== インターフェース群 =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type IDGen interface {
	New() (string, error)
}

type ulidGen struct{}

func (ulidGen) New() (string, error) {
	t := time.Now().UTC()
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// ===== Service本体 =====

type Service struct {
	store RegistrationStore
	clock Clock
	id    IDGen
}

func NewService(db *sql.DB) *Service {
	return &Service{
		store: NewStore(db),
		clock: realClock{},
		id:    ulidGen{},
	}
}

// POST /registrations（利用者が承認済イベントに申し込む）
func (s *Service) Register(ctx context.Context, userID uint64, in RegisterRequest) (RegistrationResponse, error) {
	if in.EventID == 0 {
		return RegistrationResponse{}, ErrInvalid("event_id is required")
	}

	code, err := s.id.New()
	if err != nil {
		return RegistrationResponse{}, err
	}

	// 定員チェックと重複チェックは store 側の1トランザクションで行う
	reg, err := s.store.CreateRegistration(ctx, userID, in.EventID, code, s.clock.Now())
	if err != nil {
		return RegistrationResponse{}, err
	}

	monitoring.TrackRegistration()
	return reg.toDTO(), nil
}

// GET /registrations（自分の分のみ、イベント情報つき）
func (s *Service) ListMine(ctx context.Context, userID uint64, p Page) (ListResponse, error) {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}

	rows, total, err := s.store.ListByUser(ctx, userID, p)
	if err != nil {
		return ListResponse{}, err
	}
	out := make([]MyRegistrationResponse, 0, len(rows))
	for i := 0; i < len(rows); i++ {
		out = append(out, rows[i].toDTO())
	}
	return ListResponse{Items: out, Total: total}, nil
}

// DELETE /registrations/:id（チェックイン済みの登録は取り消せない）
func (s *Service) Cancel(ctx context.Context, userID, registrationID uint64) error {
	reg, err := s.store.GetByID(ctx, registrationID)
	if err != nil {
		return err
	}
	if reg == nil || reg.UserID != userID {
		return ErrNotFound("registration not found")
	}

	checkedIn, err := s.store.CheckInExists(ctx, reg.UserID, reg.EventID)
	if err != nil {
		return err
	}
	if checkedIn {
		return ErrConflict("already checked in")
	}

	n, err := s.store.Delete(ctx, registrationID, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound("registration not found")
	}
	return nil
}
