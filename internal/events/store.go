package events

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	mysql "github.com/go-sql-driver/mysql"
)

type EventStore interface {
	Insert(ctx context.Context, adminID uint64, in CreateEventRequest) (uint64, error)
	GetByID(ctx context.Context, eventID uint64) (*Event, error)
	UpdateByID(ctx context.Context, eventID uint64, in UpdateEventRequest) (*Event, error)
	Delete(ctx context.Context, eventID uint64) (int64, error)
	List(ctx context.Context, q SearchQuery, p Page) ([]Event, int64, error)
	SetStatus(ctx context.Context, eventID uint64, from, to string) (int64, error)
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) EventStore { return &Store{db: db} }

const selectColumns = `
	event_id, admin_id, title, description, location, status,
	DATE_FORMAT(start_date, '%Y-%m-%d')  AS start_date,
	DATE_FORMAT(end_date, '%Y-%m-%d')    AS end_date,
	TIME_FORMAT(start_time, '%H:%i:%s')  AS start_time,
	TIME_FORMAT(end_time, '%H:%i:%s')    AS end_time,
	capacity, attendance_count, created_at, updated_at`

func (s *Store) Insert(ctx context.Context, adminID uint64, in CreateEventRequest) (uint64, error) {
	const q = `
	INSERT INTO events
	  (admin_id, title, description, location, status, start_date, end_date, start_time, end_time, capacity, attendance_count, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, NOW(6), NOW(6))`

	res, err := s.db.ExecContext(ctx, q,
		adminID,
		strings.TrimSpace(in.Title),
		strOrNil(in.Description),
		strings.TrimSpace(in.Location),
		StatusPending,
		in.StartDate,
		strOrNil(in.EndDate),
		strOrNil(in.StartTime),
		strOrNil(in.EndTime),
		intOrNil(in.Capacity),
	)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1452 {
			return 0, ErrInvalid("invalid admin_id")
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func (s *Store) GetByID(ctx context.Context, eventID uint64) (*Event, error) {
	q := `SELECT` + selectColumns + `
	FROM events
	WHERE event_id = ?
	LIMIT 1`

	var r eventRow
	err := s.db.QueryRowContext(ctx, q, eventID).Scan(
		&r.EventID, &r.AdminID, &r.Title, &r.Description, &r.Location, &r.Status,
		&r.StartDate, &r.EndDate, &r.StartTime, &r.EndTime,
		&r.Capacity, &r.AttendanceCount, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ev := r.toModel()
	return &ev, nil
}

// UpdateByID: 指定されたフィールドだけ動的SETで更新
func (s *Store) UpdateByID(ctx context.Context, eventID uint64, in UpdateEventRequest) (*Event, error) {
	var (
		sets []string
		args []any
	)
	if in.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, strings.TrimSpace(*in.Title))
	}
	if in.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *in.Description)
	}
	if in.Location != nil {
		sets = append(sets, "location = ?")
		args = append(args, strings.TrimSpace(*in.Location))
	}
	if in.StartDate != nil {
		sets = append(sets, "start_date = ?")
		args = append(args, *in.StartDate)
	}
	if in.EndDate != nil {
		sets = append(sets, "end_date = ?")
		args = append(args, strOrNil(in.EndDate))
	}
	if in.StartTime != nil {
		sets = append(sets, "start_time = ?")
		args = append(args, strOrNil(in.StartTime))
	}
	if in.EndTime != nil {
		sets = append(sets, "end_time = ?")
		args = append(args, strOrNil(in.EndTime))
	}
	if in.Capacity != nil {
		sets = append(sets, "capacity = ?")
		args = append(args, *in.Capacity)
	}

	if len(sets) > 0 {
		sets = append(sets, "updated_at = NOW(6)")
		q := "UPDATE events SET " + strings.Join(sets, ", ") + " WHERE event_id = ?"
		args = append(args, eventID)
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return nil, err
		}
	}

	out, err := s.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, sql.ErrNoRows
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, eventID uint64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE event_id = ?`, eventID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// List: 条件に応じて動的WHERE + ORDER + LIMIT/OFFSET（attendance の List と同じ組み立て方）
func (s *Store) List(ctx context.Context, q SearchQuery, p Page) ([]Event, int64, error) {
	var (
		buf    bytes.Buffer
		args   []any
		wheres []string
	)

	buf.WriteString(`SELECT` + selectColumns + ` FROM events`)

	if q.AdminID != nil {
		wheres = append(wheres, "admin_id = ?")
		args = append(args, *q.AdminID)
	}
	if q.Status != nil && *q.Status != "" {
		wheres = append(wheres, "status = ?")
		args = append(args, *q.Status)
	}
	if q.Keyword != nil && *q.Keyword != "" {
		wheres = append(wheres, "(title LIKE ? OR location LIKE ?)")
		like := "%" + *q.Keyword + "%"
		args = append(args, like, like)
	}
	if len(wheres) > 0 {
		buf.WriteString(" WHERE " + strings.Join(wheres, " AND "))
	}

	if strings.EqualFold(p.Order, "asc") {
		buf.WriteString(" ORDER BY start_date ASC, event_id ASC")
	} else {
		buf.WriteString(" ORDER BY start_date DESC, event_id DESC")
	}

	limit := p.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	buf.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, p.Offset))

	rows, err := s.db.QueryContext(ctx, buf.String(), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var r eventRow
		if err := rows.Scan(
			&r.EventID, &r.AdminID, &r.Title, &r.Description, &r.Location, &r.Status,
			&r.StartDate, &r.EndDate, &r.StartTime, &r.EndTime,
			&r.Capacity, &r.AttendanceCount, &r.CreatedAt, &r.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, r.toModel())
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	// COUNT（ORDER BY より前までを再構築）
	var cntBuf bytes.Buffer
	cntBuf.WriteString("SELECT COUNT(*) FROM events")
	if len(wheres) > 0 {
		cntBuf.WriteString(" WHERE " + strings.Join(wheres, " AND "))
	}
	var total int64
	if err := s.db.QueryRowContext(ctx, cntBuf.String(), args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// SetStatus: from→to の遷移に限って更新。該当なしなら 0 行。
func (s *Store) SetStatus(ctx context.Context, eventID uint64, from, to string) (int64, error) {
	const q = `
	UPDATE events
	SET status = ?, updated_at = NOW(6)
	WHERE event_id = ? AND status = ?`
	res, err := s.db.ExecContext(ctx, q, to, eventID, from)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ===== helpers =====

func strOrNil(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func intOrNil(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
