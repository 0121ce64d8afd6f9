package registrations

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"managemate-backend/internal/scanqr"
)

// ===== テスト用フェイク =====

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fixedIDGen struct{ code string }

func (g fixedIDGen) New() (string, error) { return g.code, nil }

type fakeRegStore struct {
	createErr error
	created   []Registration
	byID      map[uint64]*Registration
	checkedIn bool
	listed    []registrationWithEvent
}

func (f *fakeRegStore) CreateRegistration(ctx context.Context, userID, eventID uint64, ticketCode string, at time.Time) (*Registration, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	r := Registration{
		RegistrationID: uint64(len(f.created) + 1),
		UserID:         userID,
		EventID:        eventID,
		TicketCode:     ticketCode,
		CreatedAt:      at.UTC(),
	}
	f.created = append(f.created, r)
	return &r, nil
}

func (f *fakeRegStore) GetByID(ctx context.Context, registrationID uint64) (*Registration, error) {
	r, ok := f.byID[registrationID]
	if !ok {
		return nil, nil
	}
	return r, nil
}

func (f *fakeRegStore) ListByUser(ctx context.Context, userID uint64, p Page) ([]registrationWithEvent, int64, error) {
	return f.listed, int64(len(f.listed)), nil
}

func (f *fakeRegStore) CheckInExists(ctx context.Context, userID, eventID uint64) (bool, error) {
	return f.checkedIn, nil
}

func (f *fakeRegStore) Delete(ctx context.Context, registrationID, userID uint64) (int64, error) {
	r, ok := f.byID[registrationID]
	if !ok || r.UserID != userID {
		return 0, nil
	}
	delete(f.byID, registrationID)
	return 1, nil
}

var regNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func newTestRegService(store RegistrationStore) *Service {
	return &Service{
		store: store,
		clock: fixedClock{t: regNow},
		id:    fixedIDGen{code: "01HZXW5ZF1T7S3V9K2M4N6P8QA"},
	}
}

// ===== Register =====

func TestRegister_OK(t *testing.T) {
	f := &fakeRegStore{}
	svc := newTestRegService(f)

	res, err := svc.Register(context.Background(), 5, RegisterRequest{EventID: 42})
	require.NoError(t, err)
	assert.Equal(t, "01HZXW5ZF1T7S3V9K2M4N6P8QA", res.TicketCode)
	assert.Equal(t, uint64(5), res.UserID)
	assert.Equal(t, uint64(42), res.EventID)
	require.Len(t, f.created, 1)
}

// 発行した qr_payload はスキャン側のパーサでそのまま読めること
func TestRegister_QRPayloadRoundTrip(t *testing.T) {
	svc := newTestRegService(&fakeRegStore{})

	res, err := svc.Register(context.Background(), 5, RegisterRequest{EventID: 42})
	require.NoError(t, err)

	u, e, err := scanqr.ParsePayload(res.QRPayload)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), u)
	assert.Equal(t, uint64(42), e)
}

func TestRegister_EventIDRequired(t *testing.T) {
	svc := newTestRegService(&fakeRegStore{})

	_, err := svc.Register(context.Background(), 5, RegisterRequest{EventID: 0})
	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, CodeInvalidArgument, ae.Code)
}

func TestRegister_StoreConflictPropagates(t *testing.T) {
	f := &fakeRegStore{createErr: ErrConflict("already registered for this event")}
	svc := newTestRegService(f)

	_, err := svc.Register(context.Background(), 5, RegisterRequest{EventID: 42})
	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, CodeConflict, ae.Code)
}

// ===== Cancel =====

func TestCancel_OK(t *testing.T) {
	f := &fakeRegStore{byID: map[uint64]*Registration{
		1: {RegistrationID: 1, UserID: 5, EventID: 42},
	}}
	svc := newTestRegService(f)

	require.NoError(t, svc.Cancel(context.Background(), 5, 1))
	assert.Empty(t, f.byID)
}

func TestCancel_NotFoundForOtherUser(t *testing.T) {
	f := &fakeRegStore{byID: map[uint64]*Registration{
		1: {RegistrationID: 1, UserID: 5, EventID: 42},
	}}
	svc := newTestRegService(f)

	err := svc.Cancel(context.Background(), 6, 1)
	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, CodeNotFound, ae.Code)
}

func TestCancel_RejectedAfterCheckIn(t *testing.T) {
	f := &fakeRegStore{
		byID: map[uint64]*Registration{
			1: {RegistrationID: 1, UserID: 5, EventID: 42},
		},
		checkedIn: true,
	}
	svc := newTestRegService(f)

	err := svc.Cancel(context.Background(), 5, 1)
	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, CodeConflict, ae.Code)
	assert.Len(t, f.byID, 1)
}
