package bill

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meetsik24/Split-Bill-Platform-Backend/model"
	"github.com/meetsik24/Split-Bill-Platform-Backend/notifier"
	"github.com/meetsik24/Split-Bill-Platform-Backend/utils"
)

var ErrNotFound = errors.New("bill not found")

// Notifier sends one message to one phone number, best-effort.
type Notifier interface {
	Send(ctx context.Context, phoneNumber string, message string) notifier.Result
}

// Store persists bills and their members and drives the SMS side effects.
// Bill and member rows are written in one transaction; notification
// failures never roll anything back.
type Store struct {
	db          *pgxpool.Pool
	sms         Notifier
	serviceName string
}

func NewStore(db *pgxpool.Pool, sms Notifier) *Store {
	return &Store{db: db, sms: sms, serviceName: "billsplit-service"}
}

// Create persists the bill with one member row per phone, each owing an
// even share of the total, then notifies every member.
func (s *Store) Create(ctx context.Context, creatorPhone string, creatorName string, amount float64, memberPhones []string, description string) (*model.Bill, error) {
	if len(memberPhones) == 0 {
		return nil, errors.New("a bill needs at least one member")
	}
	if amount <= 0 {
		return nil, errors.New("bill amount must be positive")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin failed: %w", err)
	}
	defer tx.Rollback(ctx)

	bill := &model.Bill{
		CreatorPhone: creatorPhone,
		CreatorName:  creatorName,
		Amount:       amount,
	}
	if description != "" {
		bill.Description = &description
	}
	err = tx.QueryRow(ctx,
		`insert into bills (creator_phone, creator_name, amount, description) values ($1,$2,$3,$4) returning id, created_at`,
		creatorPhone, creatorName, amount, bill.Description).Scan(&bill.Id, &bill.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert bill failed: %w", err)
	}

	share := round2(amount / float64(len(memberPhones)))
	for position, memberPhone := range memberPhones {
		member := model.BillMember{
			BillId: bill.Id,
			Phone:  memberPhone,
			Amount: share,
			Status: model.MemberStatusPending,
		}
		err = tx.QueryRow(ctx,
			`insert into bill_members (bill_id, position, phone, amount, status) values ($1,$2,$3,$4,$5) returning id`,
			bill.Id, position, memberPhone, share, member.Status).Scan(&member.Id)
		if err != nil {
			return nil, fmt.Errorf("insert member failed: %w", err)
		}
		bill.Members = append(bill.Members, member)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit failed: %w", err)
	}

	s.notifyCreated(bill)
	return bill, nil
}

// MarkPaid flips one pending member to paid. Returns false when the member
// does not exist or already paid.
func (s *Store) MarkPaid(ctx context.Context, billId string, memberPhone string) (bool, error) {
	tag, err := s.db.Exec(ctx,
		`update bill_members set status = $1, paid_at = current_timestamp where bill_id = $2 and phone = $3 and status = $4`,
		model.MemberStatusPaid, billId, memberPhone, model.MemberStatusPending)
	if err != nil {
		return false, fmt.Errorf("mark paid failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}
	bill, err := s.GetById(ctx, billId)
	if err != nil {
		utils.LogMessage("error", "MarkPaid: reload bill failed: "+err.Error(), s.serviceName)
		return true, nil
	}
	s.notifyPaid(bill, memberPhone)
	return true, nil
}

func (s *Store) GetById(ctx context.Context, id string) (*model.Bill, error) {
	bill := &model.Bill{}
	err := s.db.QueryRow(ctx,
		`select id, creator_phone, creator_name, amount, description, created_at from bills where id = $1`, id).
		Scan(&bill.Id, &bill.CreatorPhone, &bill.CreatorName, &bill.Amount, &bill.Description, &bill.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetch bill failed: %w", err)
	}
	bill.Members, err = s.fetchMembers(ctx, bill.Id)
	if err != nil {
		return nil, err
	}
	return bill, nil
}

func (s *Store) GetByCreatorPhone(ctx context.Context, creatorPhone string) ([]model.Bill, error) {
	rows, err := s.db.Query(ctx,
		`select id, creator_phone, creator_name, amount, description, created_at from bills where creator_phone = $1 order by created_at desc`, creatorPhone)
	if err != nil {
		return nil, fmt.Errorf("list bills failed: %w", err)
	}
	defer rows.Close()
	bills := []model.Bill{}
	for rows.Next() {
		bill := model.Bill{}
		if err := rows.Scan(&bill.Id, &bill.CreatorPhone, &bill.CreatorName, &bill.Amount, &bill.Description, &bill.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bill failed: %w", err)
		}
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range bills {
		if bills[i].Members, err = s.fetchMembers(ctx, bills[i].Id); err != nil {
			return nil, err
		}
	}
	return bills, nil
}

func (s *Store) fetchMembers(ctx context.Context, billId string) ([]model.BillMember, error) {
	rows, err := s.db.Query(ctx,
		`select id, bill_id, phone, amount, status, paid_at from bill_members where bill_id = $1 order by position`, billId)
	if err != nil {
		return nil, fmt.Errorf("fetch members failed: %w", err)
	}
	defer rows.Close()
	members := []model.BillMember{}
	for rows.Next() {
		member := model.BillMember{}
		if err := rows.Scan(&member.Id, &member.BillId, &member.Phone, &member.Amount, &member.Status, &member.PaidAt); err != nil {
			return nil, fmt.Errorf("scan member failed: %w", err)
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

// notifyCreated fans out one SMS per member concurrently. Delivery order
// across members carries no meaning and failures are logged only.
func (s *Store) notifyCreated(bill *model.Bill) {
	for _, member := range bill.Members {
		member := member
		go func() {
			defer utils.PanicRecover()
			message := fmt.Sprintf("%s added you to bill %s. Your share is %s. Total: %s.",
				bill.CreatorName, bill.Id, formatAmount(member.Amount), formatAmount(bill.Amount))
			if result := s.sms.Send(context.Background(), member.Phone, message); !result.Success {
				utils.LogMessage("error", "notifyCreated: sms to "+member.Phone+" failed: "+result.Error, s.serviceName)
			}
		}()
	}
}

func (s *Store) notifyPaid(bill *model.Bill, paidPhone string) {
	for _, member := range bill.Members {
		member := member
		go func() {
			defer utils.PanicRecover()
			message := fmt.Sprintf("%s paid their share of bill %s.", paidPhone, bill.Id)
			if result := s.sms.Send(context.Background(), member.Phone, message); !result.Success {
				utils.LogMessage("error", "notifyPaid: sms to "+member.Phone+" failed: "+result.Error, s.serviceName)
			}
		}()
	}
	if bill.FullyPaid() {
		go func() {
			defer utils.PanicRecover()
			message := fmt.Sprintf("Bill %s is fully paid. Total collected: %s.", bill.Id, formatAmount(bill.Amount))
			if result := s.sms.Send(context.Background(), bill.CreatorPhone, message); !result.Success {
				utils.LogMessage("error", "notifyPaid: creator sms failed: "+result.Error, s.serviceName)
			}
		}()
	}
}

// round2 rounds half away from zero to 2 decimal places.
func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func formatAmount(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}
