package registrations

import (
	"context"
	"database/sql"
	"errors"
	"time"

	mysql "github.com/go-sql-driver/mysql"

	"managemate-backend/internal/platform/db"
)

type RegistrationStore interface {
	CreateRegistration(ctx context.Context, userID, eventID uint64, ticketCode string, at time.Time) (*Registration, error)
	GetByID(ctx context.Context, registrationID uint64) (*Registration, error)
	ListByUser(ctx context.Context, userID uint64, p Page) ([]registrationWithEvent, int64, error)
	CheckInExists(ctx context.Context, userID, eventID uint64) (bool, error)
	Delete(ctx context.Context, registrationID, userID uint64) (int64, error)
}

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) RegistrationStore { return &Store{db: conn} }

// CreateRegistration: イベント行をロックして状態・定員を確認してからINSERTする。
// (user_id, event_id) のUNIQUEキー違反は CONFLICT に変換。
func (s *Store) CreateRegistration(ctx context.Context, userID, eventID uint64, ticketCode string, at time.Time) (*Registration, error) {
	var reg Registration

	err := db.ReadCommitted(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		var status string
		var capacity sql.NullInt64
		err := tx.QueryRowContext(ctx, `
		SELECT status, capacity FROM events
		WHERE event_id = ?
		FOR UPDATE`, eventID,
		).Scan(&status, &capacity)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound("event not found")
		}
		if err != nil {
			return err
		}
		if status != "approved" {
			return ErrConflict("event is not open for registration")
		}

		if capacity.Valid {
			var count int64
			if err := tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM registrations WHERE event_id = ?`, eventID,
			).Scan(&count); err != nil {
				return err
			}
			if count >= capacity.Int64 {
				return ErrConflict("event is full")
			}
		}

		res, err := tx.ExecContext(ctx, `
		INSERT INTO registrations (user_id, event_id, ticket_code, created_at)
		VALUES (?, ?, ?, ?)`, userID, eventID, ticketCode, at.UTC())
		if err != nil {
			var me *mysql.MySQLError
			if errors.As(err, &me) {
				switch me.Number {
				case 1062:
					return ErrConflict("already registered for this event")
				case 1452:
					return ErrNotFound("user or event not found")
				}
			}
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}

		reg = Registration{
			RegistrationID: uint64(id),
			UserID:         userID,
			EventID:        eventID,
			TicketCode:     ticketCode,
			CreatedAt:      at.UTC(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (s *Store) GetByID(ctx context.Context, registrationID uint64) (*Registration, error) {
	const q = `
	SELECT registration_id, user_id, event_id, ticket_code, created_at
	FROM registrations
	WHERE registration_id = ?
	LIMIT 1`

	var r Registration
	err := s.db.QueryRowContext(ctx, q, registrationID).Scan(
		&r.RegistrationID, &r.UserID, &r.EventID, &r.TicketCode, &r.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.CreatedAt = r.CreatedAt.UTC()
	return &r, nil
}

func (s *Store) ListByUser(ctx context.Context, userID uint64, p Page) ([]registrationWithEvent, int64, error) {
	const q = `
	SELECT r.registration_id, r.user_id, r.event_id, r.ticket_code, r.created_at,
	       e.title, e.location, e.status,
	       DATE_FORMAT(e.start_date, '%Y-%m-%d')  AS start_date,
	       DATE_FORMAT(e.end_date, '%Y-%m-%d')    AS end_date,
	       TIME_FORMAT(e.start_time, '%H:%i:%s')  AS start_time,
	       TIME_FORMAT(e.end_time, '%H:%i:%s')    AS end_time
	FROM registrations r
	JOIN events e ON e.event_id = r.event_id
	WHERE r.user_id = ?
	ORDER BY r.created_at DESC, r.registration_id DESC
	LIMIT ? OFFSET ?`

	rows, err := s.db.QueryContext(ctx, q, userID, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []registrationWithEvent
	for rows.Next() {
		var r registrationWithEvent
		var endDate, startTime, endTime sql.NullString
		if err := rows.Scan(
			&r.RegistrationID, &r.UserID, &r.EventID, &r.TicketCode, &r.CreatedAt,
			&r.EventTitle, &r.EventLocation, &r.EventStatus,
			&r.StartDate, &endDate, &startTime, &endTime,
		); err != nil {
			return nil, 0, err
		}
		r.CreatedAt = r.CreatedAt.UTC()
		if endDate.Valid {
			r.EndDate = &endDate.String
		}
		if startTime.Valid {
			r.StartTime = &startTime.String
		}
		if endTime.Valid {
			r.EndTime = &endTime.String
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE user_id = ?`, userID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) CheckInExists(ctx context.Context, userID, eventID uint64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
	SELECT 1 FROM check_ins
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

func (s *Store) Delete(ctx context.Context, registrationID, userID uint64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
	DELETE FROM registrations
	WHERE registration_id = ? AND user_id = ?`, registrationID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
