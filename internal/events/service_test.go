package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===== テスト用フェイク =====

type fakeEventStore struct {
	byID      map[uint64]*Event
	nextID    uint64
	inserted  []CreateEventRequest
	setStatus []string // "from->to" の記録
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{byID: map[uint64]*Event{}, nextID: 1}
}

func (f *fakeEventStore) Insert(ctx context.Context, adminID uint64, in CreateEventRequest) (uint64, error) {
	id := f.nextID
	f.nextID++
	f.inserted = append(f.inserted, in)
	f.byID[id] = &Event{
		EventID:   id,
		AdminID:   adminID,
		Title:     in.Title,
		Location:  in.Location,
		Status:    StatusPending,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		Capacity:  in.Capacity,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	return id, nil
}

func (f *fakeEventStore) GetByID(ctx context.Context, eventID uint64) (*Event, error) {
	ev, ok := f.byID[eventID]
	if !ok {
		return nil, nil
	}
	cp := *ev
	return &cp, nil
}

func (f *fakeEventStore) UpdateByID(ctx context.Context, eventID uint64, in UpdateEventRequest) (*Event, error) {
	ev := f.byID[eventID]
	if in.Title != nil {
		ev.Title = *in.Title
	}
	if in.Location != nil {
		ev.Location = *in.Location
	}
	if in.StartDate != nil {
		ev.StartDate = *in.StartDate
	}
	cp := *ev
	return &cp, nil
}

func (f *fakeEventStore) Delete(ctx context.Context, eventID uint64) (int64, error) {
	if _, ok := f.byID[eventID]; !ok {
		return 0, nil
	}
	delete(f.byID, eventID)
	return 1, nil
}

func (f *fakeEventStore) List(ctx context.Context, q SearchQuery, p Page) ([]Event, int64, error) {
	var out []Event
	for _, ev := range f.byID {
		if q.AdminID != nil && ev.AdminID != *q.AdminID {
			continue
		}
		if q.Status != nil && ev.Status != *q.Status {
			continue
		}
		out = append(out, *ev)
	}
	return out, int64(len(out)), nil
}

func (f *fakeEventStore) SetStatus(ctx context.Context, eventID uint64, from, to string) (int64, error) {
	ev, ok := f.byID[eventID]
	if !ok || ev.Status != from {
		return 0, nil
	}
	ev.Status = to
	f.setStatus = append(f.setStatus, from+"->"+to)
	return 1, nil
}

func newTestEventService(store EventStore) *Service {
	return &Service{store: store}
}

func apiErr(t *testing.T, err error) *APIError {
	t.Helper()
	var ae *APIError
	require.ErrorAs(t, err, &ae)
	return ae
}

func validCreate() CreateEventRequest {
	return CreateEventRequest{
		Title:     "Tech Meetup",
		Location:  "Hall A",
		StartDate: "2025-06-10",
	}
}

// ===== Create =====

func TestCreate_OK(t *testing.T) {
	f := newFakeEventStore()
	svc := newTestEventService(f)

	res, err := svc.Create(context.Background(), 9, validCreate())
	require.NoError(t, err)
	assert.Equal(t, StatusPending, res.Status)
	assert.Equal(t, uint64(9), res.AdminID)
	assert.Len(t, f.inserted, 1)
}

func TestCreate_Validation(t *testing.T) {
	f := newFakeEventStore()
	svc := newTestEventService(f)

	tests := []struct {
		name string
		mod  func(*CreateEventRequest)
	}{
		{"title空", func(r *CreateEventRequest) { r.Title = "  " }},
		{"location空", func(r *CreateEventRequest) { r.Location = "" }},
		{"start_date不正", func(r *CreateEventRequest) { r.StartDate = "2025/06/10" }},
		{"end_dateがstart_dateより前", func(r *CreateEventRequest) {
			d := "2025-06-09"
			r.EndDate = &d
		}},
		{"start_time不正", func(r *CreateEventRequest) {
			s := "9am"
			r.StartTime = &s
		}},
		{"capacityゼロ", func(r *CreateEventRequest) {
			c := int64(0)
			r.Capacity = &c
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreate()
			tt.mod(&req)
			_, err := svc.Create(context.Background(), 9, req)
			assert.Equal(t, CodeInvalidArgument, apiErr(t, err).Code)
		})
	}
	assert.Empty(t, f.inserted)
}

// ===== Update / Delete =====

func TestUpdate_OwnershipAndStatus(t *testing.T) {
	f := newFakeEventStore()
	svc := newTestEventService(f)

	res, err := svc.Create(context.Background(), 9, validCreate())
	require.NoError(t, err)
	id := res.EventID

	title := "Renamed"

	// 他の管理者は更新できない
	_, err = svc.Update(context.Background(), 10, id, UpdateEventRequest{Title: &title})
	assert.Equal(t, CodeForbidden, apiErr(t, err).Code)

	// 本人はOK
	out, err := svc.Update(context.Background(), 9, id, UpdateEventRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", out.Title)

	// 却下済みは更新不可
	f.byID[id].Status = StatusRejected
	_, err = svc.Update(context.Background(), 9, id, UpdateEventRequest{Title: &title})
	assert.Equal(t, CodeConflict, apiErr(t, err).Code)
}

func TestDelete_OnlyOwner(t *testing.T) {
	f := newFakeEventStore()
	svc := newTestEventService(f)

	res, err := svc.Create(context.Background(), 9, validCreate())
	require.NoError(t, err)

	err = svc.Delete(context.Background(), 10, res.EventID)
	assert.Equal(t, CodeForbidden, apiErr(t, err).Code)

	require.NoError(t, svc.Delete(context.Background(), 9, res.EventID))
	assert.Equal(t, CodeNotFound, apiErr(t, svc.Delete(context.Background(), 9, res.EventID)).Code)
}

// ===== 承認フロー =====

func TestApprove_Transitions(t *testing.T) {
	f := newFakeEventStore()
	svc := newTestEventService(f)

	res, err := svc.Create(context.Background(), 9, validCreate())
	require.NoError(t, err)
	id := res.EventID

	out, err := svc.Approve(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, out.Status)

	// pending 以外からの遷移は CONFLICT
	_, err = svc.Approve(context.Background(), id)
	assert.Equal(t, CodeConflict, apiErr(t, err).Code)
	_, err = svc.Reject(context.Background(), id)
	assert.Equal(t, CodeConflict, apiErr(t, err).Code)

	// 存在しないイベントは NOT_FOUND
	_, err = svc.Approve(context.Background(), 999)
	assert.Equal(t, CodeNotFound, apiErr(t, err).Code)
}

func TestReject_FromPending(t *testing.T) {
	f := newFakeEventStore()
	svc := newTestEventService(f)

	res, err := svc.Create(context.Background(), 9, validCreate())
	require.NoError(t, err)

	out, err := svc.Reject(context.Background(), res.EventID)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, out.Status)
	assert.Equal(t, []string{"pending->rejected"}, f.setStatus)
}

// ===== 公開側 =====

func TestGetApproved_HidesUnapproved(t *testing.T) {
	f := newFakeEventStore()
	svc := newTestEventService(f)

	res, err := svc.Create(context.Background(), 9, validCreate())
	require.NoError(t, err)

	// pending のうちは見えない
	_, err = svc.GetApproved(context.Background(), res.EventID)
	assert.Equal(t, CodeNotFound, apiErr(t, err).Code)

	_, err = svc.Approve(context.Background(), res.EventID)
	require.NoError(t, err)

	out, err := svc.GetApproved(context.Background(), res.EventID)
	require.NoError(t, err)
	assert.Equal(t, res.EventID, out.EventID)
}
