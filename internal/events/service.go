package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"managemate-backend/internal/monitoring"
)

// ===== Error model (platform/auth, scanqr と同型) =====
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeForbidden       Code = "FORBIDDEN"
	CodeConflict        Code = "CONFLICT"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string        { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError    { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError   { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrForbidden(msg string) *APIError  { return &APIError{Code: CodeForbidden, Message: msg} }
func ErrConflict(msg string) *APIError   { return &APIError{Code: CodeConflict, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return 400
		case CodeNotFound:
			return 404
		case CodeForbidden:
			return 403
		case CodeConflict:
			return 409
		default:
			return 500
		}
	}
	return 500
}

// ===== Service =====

type Service struct {
	store EventStore
}

func NewService(db *sql.DB) *Service {
	return &Service{store: NewStore(db)}
}

// POST /admin/events
func (s *Service) Create(ctx context.Context, adminID uint64, in CreateEventRequest) (EventResponse, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Location) == "" {
		return EventResponse{}, ErrInvalid("title and location are required")
	}
	if err := validateSchedule(in.StartDate, in.EndDate, in.StartTime, in.EndTime); err != nil {
		return EventResponse{}, err
	}
	if in.Capacity != nil && *in.Capacity <= 0 {
		return EventResponse{}, ErrInvalid("capacity must be > 0")
	}

	id, err := s.store.Insert(ctx, adminID, in)
	if err != nil {
		return EventResponse{}, err
	}
	out, err := s.store.GetByID(ctx, id)
	if err != nil {
		return EventResponse{}, err
	}
	if out == nil {
		return EventResponse{}, fmt.Errorf("event %d missing after insert", id)
	}
	return out.toDTO(), nil
}

// PUT /admin/events/:id（自分のイベントのみ）
func (s *Service) Update(ctx context.Context, adminID, eventID uint64, in UpdateEventRequest) (EventResponse, error) {
	ev, err := s.store.GetByID(ctx, eventID)
	if err != nil {
		return EventResponse{}, err
	}
	if ev == nil {
		return EventResponse{}, ErrNotFound("event not found")
	}
	if ev.AdminID != adminID {
		return EventResponse{}, ErrForbidden("not your event")
	}
	if ev.Status == StatusRejected {
		return EventResponse{}, ErrConflict("rejected event cannot be updated")
	}

	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return EventResponse{}, ErrInvalid("title must not be empty")
	}
	if in.Location != nil && strings.TrimSpace(*in.Location) == "" {
		return EventResponse{}, ErrInvalid("location must not be empty")
	}
	startDate := ev.StartDate
	if in.StartDate != nil {
		startDate = *in.StartDate
	}
	endDate := ev.EndDate
	if in.EndDate != nil {
		endDate = in.EndDate
	}
	startTime := ev.StartTime
	if in.StartTime != nil {
		startTime = in.StartTime
	}
	endTime := ev.EndTime
	if in.EndTime != nil {
		endTime = in.EndTime
	}
	if err := validateSchedule(startDate, endDate, startTime, endTime); err != nil {
		return EventResponse{}, err
	}
	if in.Capacity != nil && *in.Capacity <= 0 {
		return EventResponse{}, ErrInvalid("capacity must be > 0")
	}

	out, err := s.store.UpdateByID(ctx, eventID, in)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return EventResponse{}, ErrNotFound("event not found")
		}
		return EventResponse{}, err
	}
	return out.toDTO(), nil
}

// DELETE /admin/events/:id（自分のイベントのみ）
func (s *Service) Delete(ctx context.Context, adminID, eventID uint64) error {
	ev, err := s.store.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if ev == nil {
		return ErrNotFound("event not found")
	}
	if ev.AdminID != adminID {
		return ErrForbidden("not your event")
	}

	n, err := s.store.Delete(ctx, eventID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound("event not found")
	}
	return nil
}

// GET /admin/events
func (s *Service) ListMine(ctx context.Context, adminID uint64, p Page) (ListResponse, error) {
	q := SearchQuery{AdminID: &adminID}
	return s.list(ctx, q, p)
}

// GET /superadmin/events/pending
func (s *Service) ListPending(ctx context.Context, p Page) (ListResponse, error) {
	st := StatusPending
	return s.list(ctx, SearchQuery{Status: &st}, p)
}

// GET /events（公開: 承認済のみ）
func (s *Service) ListApproved(ctx context.Context, keyword string, p Page) (ListResponse, error) {
	st := StatusApproved
	q := SearchQuery{Status: &st}
	if strings.TrimSpace(keyword) != "" {
		k := strings.TrimSpace(keyword)
		q.Keyword = &k
	}
	return s.list(ctx, q, p)
}

// GET /events/:id（公開: 承認済のみ）
func (s *Service) GetApproved(ctx context.Context, eventID uint64) (EventResponse, error) {
	ev, err := s.store.GetByID(ctx, eventID)
	if err != nil {
		return EventResponse{}, err
	}
	if ev == nil || ev.Status != StatusApproved {
		return EventResponse{}, ErrNotFound("event not found")
	}
	return ev.toDTO(), nil
}

// POST /superadmin/events/:id/approve
func (s *Service) Approve(ctx context.Context, eventID uint64) (EventResponse, error) {
	return s.decide(ctx, eventID, StatusApproved)
}

// POST /superadmin/events/:id/reject
func (s *Service) Reject(ctx context.Context, eventID uint64) (EventResponse, error) {
	return s.decide(ctx, eventID, StatusRejected)
}

// 承認/却下は pending からの遷移のみ許す
func (s *Service) decide(ctx context.Context, eventID uint64, to string) (EventResponse, error) {
	n, err := s.store.SetStatus(ctx, eventID, StatusPending, to)
	if err != nil {
		return EventResponse{}, err
	}
	if n == 0 {
		ev, gerr := s.store.GetByID(ctx, eventID)
		if gerr != nil {
			return EventResponse{}, gerr
		}
		if ev == nil {
			return EventResponse{}, ErrNotFound("event not found")
		}
		return EventResponse{}, ErrConflict("event is not pending")
	}

	monitoring.TrackApproval(to)

	ev, err := s.store.GetByID(ctx, eventID)
	if err != nil {
		return EventResponse{}, err
	}
	if ev == nil {
		return EventResponse{}, ErrNotFound("event not found")
	}
	return ev.toDTO(), nil
}

func (s *Service) list(ctx context.Context, q SearchQuery, p Page) (ListResponse, error) {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	items, total, err := s.store.List(ctx, q, p)
	if err != nil {
		return ListResponse{}, err
	}
	out := make([]EventResponse, 0, len(items))
	for i := 0; i < len(items); i++ {
		out = append(out, items[i].toDTO())
	}
	return ListResponse{Items: out, Total: total}, nil
}

// ===== helpers =====

func validateSchedule(startDate string, endDate, startTime, endTime *string) error {
	sd, err := time.Parse(DateLayout, startDate)
	if err != nil {
		return ErrInvalid("start_date must be YYYY-MM-DD")
	}
	if endDate != nil && *endDate != "" {
		ed, err := time.Parse(DateLayout, *endDate)
		if err != nil {
			return ErrInvalid("end_date must be YYYY-MM-DD")
		}
		if ed.Before(sd) {
			return ErrInvalid("end_date must be >= start_date")
		}
	}
	if startTime != nil && *startTime != "" {
		if _, err := time.Parse(TimeLayout, *startTime); err != nil {
			return ErrInvalid("start_time must be HH:MM:SS")
		}
	}
	if endTime != nil && *endTime != "" {
		if _, err := time.Parse(TimeLayout, *endTime); err != nil {
			return ErrInvalid("end_time must be HH:MM:SS")
		}
	}
	return nil
}
