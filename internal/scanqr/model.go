package scanqr

import "time"

const momentLayout = "2006-01-02 15:04:05"

// events行のうちチェックイン判定に必要な列のみ（スキャン用）
type eventRow struct {
	EventID         uint64
	AdminID         uint64
	Title           string
	Location        string
	Status          string
	StartDate       string  // DATE → "YYYY-MM-DD"
	EndDate         *string // NULL可
	StartTime       *string // TIME → "HH:MM:SS"、NULL可
	EndTime         *string
	AttendanceCount int64
}

type Event struct {
	EventID         uint64
	AdminID         uint64
	Title           string
	Location        string
	Status          string
	StartDate       string
	EndDate         *string
	StartTime       *string
	EndTime         *string
	AttendanceCount int64
}

func (r eventRow) toModel() Event {
	return Event(r)
}

// StartMoment: start_date + (start_time → end_time → 00:00:00 の順でフォールバック)
func (e Event) StartMoment(loc *time.Location) (time.Time, error) {
	t := "00:00:00"
	if v := deref(e.StartTime); v != "" {
		t = v
	} else if v := deref(e.EndTime); v != "" {
		t = v
	}
	return time.ParseInLocation(momentLayout, e.StartDate+" "+t, loc)
}

// EndMoment: (end_date → start_date) + (end_time → start_time → 23:59:59)
func (e Event) EndMoment(loc *time.Location) (time.Time, error) {
	d := e.StartDate
	if v := deref(e.EndDate); v != "" {
		d = v
	}
	t := "23:59:59"
	if v := deref(e.EndTime); v != "" {
		t = v
	} else if v := deref(e.StartTime); v != "" {
		t = v
	}
	return time.ParseInLocation(momentLayout, d+" "+t, loc)
}

func (e Event) toDTO() EventDTO {
	return EventDTO{
		EventID:   e.EventID,
		Title:     e.Title,
		Location:  e.Location,
		Status:    e.Status,
		StartDate: e.StartDate,
		EndDate:   e.EndDate,
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
	}
}

type CheckIn struct {
	CheckInID uint64
	UserID    uint64
	EventID   uint64
	CreatedAt time.Time
}

type User struct {
	UserID uint64
	Name   string
	Email  string
}

func (u User) toDTO() UserDTO {
	return UserDTO{UserID: u.UserID, Name: u.Name, Email: u.Email}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
