package scanqr

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"
)

// ===== Error model (platform/auth, events と同型) =====
type Code string

const (
	CodeInvalidPayload   Code = "INVALID_PAYLOAD"
	CodeEventNotFound    Code = "EVENT_NOT_FOUND"
	CodeWrongEventOwner  Code = "WRONG_EVENT_OWNER"
	CodeNotRegistered    Code = "NOT_REGISTERED"
	CodeAlreadyCheckedIn Code = "ALREADY_CHECKED_IN"
	CodeCheckInNotOpen   Code = "CHECKIN_NOT_OPEN"
	CodeEventEnded       Code = "EVENT_ENDED"
	CodeInternal         Code = "INTERNAL"
)

type ScanError struct {
	Code    Code
	Message string
}

func (e *ScanError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

// CodeInternal 以外はすべて利用者起因（HTTP 422）
func (e *ScanError) IsValidation() bool { return e.Code != CodeInternal }

func errInvalidPayload() *ScanError {
	return &ScanError{Code: CodeInvalidPayload, Message: "Invalid QR payload."}
}
func errEventNotFound() *ScanError {
	return &ScanError{Code: CodeEventNotFound, Message: "Event not found."}
}
func errWrongEventOwner() *ScanError {
	return &ScanError{Code: CodeWrongEventOwner, Message: "You are not allowed to check in attendees for this event."}
}
func errNotRegistered() *ScanError {
	return &ScanError{Code: CodeNotRegistered, Message: "User is not registered for this event."}
}
func errAlreadyCheckedIn(at string) *ScanError {
	return &ScanError{Code: CodeAlreadyCheckedIn, Message: fmt.Sprintf("Already checked in at %s.", at)}
}
func errCheckInNotOpen() *ScanError {
	return &ScanError{Code: CodeCheckInNotOpen, Message: "Check-in has not opened yet."}
}
func errEventEnded() *ScanError {
	return &ScanError{Code: CodeEventEnded, Message: "This event has already ended."}
}

// ===== Service =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

const displayLayout = "2006-01-02 15:04"

type Service struct {
	store CheckInStore
	clock Clock
	loc   *time.Location
}

func NewService(db *sql.DB, loc *time.Location) *Service {
	return &Service{store: NewStore(db), clock: realClock{}, loc: loc}
}

// CheckIn: QRペイロードの解決 → 資格チェック → 出席記録、の順で一回のスキャンを処理する。
// バリデーション失敗は *ScanError、それ以外はそのまま返す（ハンドラで500に落とす）。
func (s *Service) CheckIn(ctx context.Context, actingAdminID uint64, rawPayload string) (*CheckInData, error) {
	userID, eventID, err := ParsePayload(rawPayload)
	if err != nil {
		return nil, err
	}

	ev, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, errEventNotFound()
	}

	// 注意: 等価比較。イベント担当の管理者本人によるスキャンを拒否する現行挙動。
	// 反転が正しい可能性が高いが、プロダクト側の確認が取れるまで挙動を変えないこと。
	if ev.AdminID == actingAdminID {
		return nil, errWrongEventOwner()
	}

	registered, err := s.store.RegistrationExists(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}
	if !registered {
		return nil, errNotRegistered()
	}

	prior, err := s.store.LatestCheckIn(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}
	if prior != nil {
		return nil, errAlreadyCheckedIn(prior.CreatedAt.In(s.loc).Format(displayLayout))
	}

	now := s.clock.Now().In(s.loc)

	// 日時が解釈できない場合、その窓チェックだけスキップする（他のチェックは必須のまま）
	if start, merr := ev.StartMoment(s.loc); merr != nil {
		log.Printf("[WARN] event %d: 開始日時を解釈できないため開始前チェックをスキップ: %v", ev.EventID, merr)
	} else if now.Before(start) {
		return nil, errCheckInNotOpen()
	}
	if end, merr := ev.EndMoment(s.loc); merr != nil {
		log.Printf("[WARN] event %d: 終了日時を解釈できないため終了後チェックをスキップ: %v", ev.EventID, merr)
	} else if now.After(end) {
		return nil, errEventEnded()
	}

	if err := s.store.RecordAttendance(ctx, userID, eventID, now); err != nil {
		if errors.Is(err, ErrDuplicateCheckIn) {
			// UNIQUEキーに並行スキャンが先着したケース
			if p, lerr := s.store.LatestCheckIn(ctx, userID, eventID); lerr == nil && p != nil {
				return nil, errAlreadyCheckedIn(p.CreatedAt.In(s.loc).Format(displayLayout))
			}
			return nil, errAlreadyCheckedIn(now.Format(displayLayout))
		}
		return nil, err
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// registrations が users を参照しているので通常は到達しない
		return nil, fmt.Errorf("user %d missing after check-in", userID)
	}

	return &CheckInData{
		User:       user.toDTO(),
		Event:      ev.toDTO(),
		AttendedAt: now,
	}, nil
}
