package ussd

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/meetsik24/Split-Bill-Platform-Backend/model"
	"github.com/meetsik24/Split-Bill-Platform-Backend/phone"
	"github.com/meetsik24/Split-Bill-Platform-Backend/session"
	"github.com/meetsik24/Split-Bill-Platform-Backend/utils"
)

// BillCreator is the one downstream call the dialogue makes, at the
// terminal confirm transition.
type BillCreator interface {
	Create(ctx context.Context, creatorPhone string, creatorName string, amount float64, memberPhones []string, description string) (*model.Bill, error)
}

// Engine drives the bill-creation dialogue one turn at a time. Each turn is
// a fresh stateless request correlated only by sessionId; the engine reads
// the session, computes one transition and writes the session back (or
// deletes it on a terminal turn).
type Engine struct {
	store       session.Store
	bills       BillCreator
	locks       *session.KeyLock
	localizer   *i18n.Localizer
	serviceName string
}

func NewEngine(store session.Store, bills BillCreator, localizer *i18n.Localizer) *Engine {
	return &Engine{
		store:       store,
		bills:       bills,
		locks:       session.NewKeyLock(128),
		localizer:   localizer,
		serviceName: "billsplit-service",
	}
}

// ProcessTurn advances the dialogue for sessionId by one step. It returns
// the display message and whether the dialogue ended. Turns for the same
// session id are serialized; see session.KeyLock.
func (e *Engine) ProcessTurn(ctx context.Context, sessionId string, phoneNumber string, text string) (string, bool, error) {
	unlock := e.locks.Lock(sessionId)
	defer unlock()

	sess, err := e.store.GetOrCreate(sessionId, phoneNumber)
	if err != nil {
		return e.localize(msgSystemError, nil), true, fmt.Errorf("session load failed: %w", err)
	}
	input := strings.TrimSpace(text)

	switch sess.Step {
	case model.StepAmount:
		return e.handleAmount(sess, input)
	case model.StepMembers:
		return e.handleMembers(sess, input)
	case model.StepConfirm:
		return e.handleConfirm(ctx, sess, input)
	}
	// unknown step means corrupted state, drop the session
	e.removeSession(sessionId)
	return e.localize(msgSystemError, nil), true, fmt.Errorf("unknown session step: %s", sess.Step)
}

func (e *Engine) handleAmount(sess *model.Session, input string) (string, bool, error) {
	if input == "" {
		if err := e.store.Put(sess.Id, sess); err != nil {
			return e.localize(msgSystemError, nil), true, err
		}
		return e.localize(msgWelcome, nil), false, nil
	}
	amount, err := parseAmount(input)
	if err != nil {
		// session untouched, re-prompt in state
		return e.localize(msgInvalidAmount, nil), false, nil
	}
	sess.Amount = amount
	sess.Step = model.StepMembers
	if err := e.store.Put(sess.Id, sess); err != nil {
		return e.localize(msgSystemError, nil), true, err
	}
	return e.localize(msgMembersPrompt, nil), false, nil
}

func (e *Engine) handleMembers(sess *model.Session, input string) (string, bool, error) {
	if input == "" {
		return e.localize(msgMembersPrompt, nil), false, nil
	}
	members := parseMembers(input)
	if len(members) == 0 {
		return e.localize(msgNoValidNumbers, nil), false, nil
	}
	sess.MemberPhones = members
	sess.Step = model.StepConfirm
	if err := e.store.Put(sess.Id, sess); err != nil {
		return e.localize(msgSystemError, nil), true, err
	}
	share := round2(sess.Amount / float64(len(members)))
	return e.localize(msgConfirmSummary, map[string]interface{}{
		"Amount":  formatAmount(sess.Amount),
		"Count":   len(members),
		"Share":   formatAmount(share),
		"Numbers": strings.Join(members, "\n"),
	}), false, nil
}

func (e *Engine) handleConfirm(ctx context.Context, sess *model.Session, input string) (string, bool, error) {
	switch input {
	case "1":
		bill, err := e.bills.Create(ctx, sess.PhoneNumber, sess.CreatorName, sess.Amount, sess.MemberPhones, "Created via USSD")
		e.removeSession(sess.Id)
		if err != nil {
			utils.LogMessage("error", "bill creation failed: "+err.Error(), e.serviceName)
			return e.localize(msgCreateFailed, nil), true, err
		}
		share := round2(bill.Amount / float64(len(bill.Members)))
		return e.localize(msgCreateSuccess, map[string]interface{}{
			"BillId": bill.Id,
			"Share":  formatAmount(share),
		}), true, nil
	case "2":
		e.removeSession(sess.Id)
		return e.localize(msgCancelled, nil), true, nil
	default:
		return e.localize(msgInvalidOption, nil), false, nil
	}
}

// removeSession deletes terminal session state. A terminal response goes
// out regardless; a row the store failed to drop is reaped by its TTL.
func (e *Engine) removeSession(sessionId string) {
	if err := e.store.Remove(sessionId); err != nil {
		utils.LogMessage("error", "session removal failed: "+err.Error(), e.serviceName)
	}
}

// parseMembers keeps the entries that normalize, in their original order.
func parseMembers(input string) []string {
	members := []string{}
	for _, part := range strings.Split(input, ",") {
		normalized, err := phone.Normalize(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		members = append(members, normalized)
	}
	return members
}

func parseAmount(value string) (float64, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if clean == "" {
		return 0, fmt.Errorf("empty")
	}
	amount, err := strconv.ParseFloat(clean, 64)
	if err != nil || amount <= 0 || math.IsInf(amount, 0) || math.IsNaN(amount) {
		return 0, fmt.Errorf("invalid")
	}
	return amount, nil
}

// round2 rounds half away from zero to 2 decimal places.
func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func formatAmount(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}
