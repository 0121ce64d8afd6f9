package registrations

import (
	"encoding/json"
	"time"
)

type Registration struct {
	RegistrationID uint64
	UserID         uint64
	EventID        uint64
	TicketCode     string
	CreatedAt      time.Time
}

// 一覧用（events とのJOIN結果）
type registrationWithEvent struct {
	Registration
	EventTitle    string
	EventLocation string
	EventStatus   string
	StartDate     string
	EndDate       *string
	StartTime     *string
	EndTime       *string
}

// TicketPayload: モバイル側がQRとして描画する文字列。
// scanqr.ParsePayload が受けるJSON形式と一致させること。
type TicketPayload struct {
	UserID  uint64 `json:"user_id"`
	EventID uint64 `json:"event_id"`
}

func (p TicketPayload) Encode() string {
	b, _ := json.Marshal(p)
	return string(b)
}

func (r Registration) toDTO() RegistrationResponse {
	return RegistrationResponse{
		RegistrationID: r.RegistrationID,
		UserID:         r.UserID,
		EventID:        r.EventID,
		TicketCode:     r.TicketCode,
		QRPayload:      TicketPayload{UserID: r.UserID, EventID: r.EventID}.Encode(),
		CreatedAt:      r.CreatedAt,
	}
}

func (r registrationWithEvent) toDTO() MyRegistrationResponse {
	return MyRegistrationResponse{
		RegistrationResponse: r.Registration.toDTO(),
		EventTitle:           r.EventTitle,
		EventLocation:        r.EventLocation,
		EventStatus:          r.EventStatus,
		StartDate:            r.StartDate,
		EndDate:              r.EndDate,
		StartTime:            r.StartTime,
		EndTime:              r.EndTime,
	}
}
