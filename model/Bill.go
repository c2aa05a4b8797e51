package model

import "time"

type MemberStatus string

const (
	MemberStatusPending MemberStatus = "PENDING"
	MemberStatusPaid    MemberStatus = "PAID"
)

type Bill struct {
	Id           string       `json:"id"`
	CreatorPhone string       `json:"creator_phone"`
	CreatorName  string       `json:"creator_name"`
	Amount       float64      `json:"amount"`
	Description  *string      `json:"description,omitempty"`
	Members      []BillMember `json:"members"`
	CreatedAt    time.Time    `json:"created_at"`
}

// BillMember is one participant owing an even share of the bill total.
// The member list is fixed at creation time.
type BillMember struct {
	Id     string       `json:"id"`
	BillId string       `json:"bill_id"`
	Phone  string       `json:"phone"`
	Amount float64      `json:"amount"`
	Status MemberStatus `json:"status"`
	PaidAt *time.Time   `json:"paid_at,omitempty"`
}

// FullyPaid reports whether every member has settled their share.
func (b *Bill) FullyPaid() bool {
	for _, m := range b.Members {
		if m.Status != MemberStatusPaid {
			return false
		}
	}
	return len(b.Members) > 0
}
