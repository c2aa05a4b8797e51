package model

import "time"

type SessionStep string

const (
	StepAmount  SessionStep = "AWAITING_AMOUNT"
	StepMembers SessionStep = "AWAITING_MEMBERS"
	StepConfirm SessionStep = "AWAITING_CONFIRMATION"
)

// Session is one in-flight USSD dialogue, keyed by the gateway session id.
// The step only moves forward; cancellation or completion deletes the session.
type Session struct {
	Id           string      `json:"id"`
	Step         SessionStep `json:"step"`
	PhoneNumber  string      `json:"phone_number"`
	CreatorName  string      `json:"creator_name"`
	Amount       float64     `json:"amount"`
	MemberPhones []string    `json:"member_phones"`
	CreatedAt    time.Time   `json:"created_at"`
	LastTouched  time.Time   `json:"last_touched"`
}
