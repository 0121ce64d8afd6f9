package scanqr

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	mysql "github.com/go-sql-driver/mysql"

	"managemate-backend/internal/platform/db"
)

// 並行スキャンが check_ins のUNIQUEキーに先着した場合のセンチネル
var ErrDuplicateCheckIn = errors.New("duplicate check-in")

type CheckInStore interface {
	GetEvent(ctx context.Context, eventID uint64) (*Event, error)
	RegistrationExists(ctx context.Context, userID, eventID uint64) (bool, error)
	LatestCheckIn(ctx context.Context, userID, eventID uint64) (*CheckIn, error)
	RecordAttendance(ctx context.Context, userID, eventID uint64, at time.Time) error
	GetUser(ctx context.Context, userID uint64) (*User, error)
}

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) CheckInStore { return &Store{db: conn} }

func (s *Store) GetEvent(ctx context.Context, eventID uint64) (*Event, error) {
	const q = `
	SELECT event_id, admin_id, title, location, status,
	       DATE_FORMAT(start_date, '%Y-%m-%d')  AS start_date,
	       DATE_FORMAT(end_date, '%Y-%m-%d')    AS end_date,
	       TIME_FORMAT(start_time, '%H:%i:%s')  AS start_time,
	       TIME_FORMAT(end_time, '%H:%i:%s')    AS end_time,
	       attendance_count
	FROM events
	WHERE event_id = ?
	LIMIT 1`

	var r eventRow
	var endDate, startTime, endTime sql.NullString
	err := s.db.QueryRowContext(ctx, q, eventID).Scan(
		&r.EventID,
		&r.AdminID,
		&r.Title,
		&r.Location,
		&r.Status,
		&r.StartDate,
		&endDate,
		&startTime,
		&endTime,
		&r.AttendanceCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if endDate.Valid {
		r.EndDate = &endDate.String
	}
	if startTime.Valid {
		r.StartTime = &startTime.String
	}
	if endTime.Valid {
		r.EndTime = &endTime.String
	}
	ev := r.toModel()
	return &ev, nil
}

func (s *Store) RegistrationExists(ctx context.Context, userID, eventID uint64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
	SELECT 1 FROM registrations
	WHERE user_id = ? AND event_id = ? LIMIT 1`, userID, eventID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// LatestCheckIn: 最新1件（通常は高々1件だが、並び順は新しい順で固定）
func (s *Store) LatestCheckIn(ctx context.Context, userID, eventID uint64) (*CheckIn, error) {
	const q = `
	SELECT checkin_id, user_id, event_id, created_at
	FROM check_ins
	WHERE user_id = ? AND event_id = ?
	ORDER BY created_at DESC, checkin_id DESC
	LIMIT 1`

	var c CheckIn
	err := s.db.QueryRowContext(ctx, q, userID, eventID).Scan(
		&c.CheckInID, &c.UserID, &c.EventID, &c.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return &c, nil
}

// RecordAttendance: check_ins へのINSERTと events.attendance_count の加算を
// 1トランザクションで行う。どちらかが失敗したら両方ロールバック。
func (s *Store) RecordAttendance(ctx context.Context, userID, eventID uint64, at time.Time) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		const ins = `
		INSERT INTO check_ins (user_id, event_id, created_at, updated_at)
		VALUES (?, ?, ?, ?)`
		if _, err := tx.ExecContext(ctx, ins, userID, eventID, at.UTC(), at.UTC()); err != nil {
			var me *mysql.MySQLError
			if errors.As(err, &me) && me.Number == 1062 {
				return ErrDuplicateCheckIn
			}
			return err
		}

		res, err := tx.ExecContext(ctx, `
		UPDATE events
		SET attendance_count = attendance_count + 1, updated_at = NOW(6)
		WHERE event_id = ?`, eventID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("event %d missing during attendance update", eventID)
		}
		return nil
	})
}

func (s *Store) GetUser(ctx context.Context, userID uint64) (*User, error) {
	const q = `
	SELECT user_id, name, email
	FROM users
	WHERE user_id = ?
	LIMIT 1`

	var u User
	err := s.db.QueryRowContext(ctx, q, userID).Scan(&u.UserID, &u.Name, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
