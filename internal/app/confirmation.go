/**
 * @description
 * This file implements the pending-transaction confirmation state machine:
 *
 *   NoPending -> AwaitingConfirmation -> {Executing -> Terminal} | Cancelled | Expired
 *
 * Creation is guarded: no PendingTransaction ever exists with a missing or
 * placeholder destination, or a non-positive amount. Expiry is checked lazily
 * on the next inbound message, and execution clears the pending transaction
 * before any provider call so a duplicate "confirm" can never re-trigger it.
 *
 * @dependencies
 * - context, fmt, strings: Standard Go libraries.
 * - internal/domain: Session and pending transaction models.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/FredAbod/Project-Eureka-sub000/internal/domain"
	"github.com/FredAbod/Project-Eureka-sub000/internal/interpreter"
)

var (
	affirmativeReplies = map[string]bool{"confirm": true, "yes": true, "y": true}
	negativeReplies    = map[string]bool{"cancel": true, "no": true, "n": true}
)

// placeholderValues are model fillers that must never pass the entry guard.
var placeholderValues = map[string]bool{
	"":               true,
	"string":         true,
	"null":           true,
	"none":           true,
	"unknown":        true,
	"account_number": true,
	"bank_name":      true,
	"xxxxxxxxxx":     true,
}

func isPlaceholder(v string) bool {
	return placeholderValues[strings.ToLower(strings.TrimSpace(v))]
}

// beginTransfer is the NoPending -> AwaitingConfirmation transition. Invalid
// core fields keep the session in NoPending and prompt for the missing piece.
func (s *Service) beginTransfer(ctx context.Context, session *domain.Session, inv *interpreter.ToolInvocation) string {
	accountNumber := argString(inv.Arguments, "account_number")
	bankInput := argString(inv.Arguments, "bank_name", "bank_code")

	if isPlaceholder(accountNumber) {
		return "What's the recipient's 10-digit account number?"
	}
	if isPlaceholder(bankInput) {
		return "Which bank is the recipient's account with?"
	}
	amount, ok := argFloat(inv.Arguments, "amount")
	if !ok || amount <= 0 {
		return "How much would you like to send, in naira?"
	}

	// Advisory verification: the executor re-verifies before money moves, but
	// a confirmed name makes the prompt trustworthy.
	res, err := s.recipients.Resolve(ctx, accountNumber, bankInput)
	if err != nil {
		var vf *domain.VerificationFailure
		if !errors.As(err, &vf) {
			// Format and unknown-bank problems are the user's to fix before a
			// pending transaction may exist.
			return s.domainFailureReply(session.UserID, "transfer entry guard", err)
		}
		log.Printf("level=warn component=confirmation msg=\"advisory verification failed; proceeding unverified\" user_id=%s", session.UserID)
	}

	pending := &domain.PendingTransaction{
		Kind:          "transfer",
		AccountNumber: res.AccountNumber,
		BankCode:      res.Bank.Code,
		BankName:      res.Bank.Name,
		AmountNaira:   amount,
		CreatedAt:     s.now(),
		ExpiresAt:     s.now().Add(s.confirmWindow),
	}
	if res.Verified {
		pending.RecipientName = res.AccountName
	}

	// Last writer wins: a new request replaces any earlier unconfirmed one.
	session.Pending = pending

	s.publishTransferEvent(ctx, session.UserID, domain.EventTransferInitiated, pending, "", "pending_confirmation", "")

	recipient := pending.RecipientName
	if recipient == "" {
		recipient = "Account " + pending.AccountNumber
	}
	bankLabel := pending.BankName
	if bankLabel == "" {
		bankLabel = "bank code " + pending.BankCode
	}
	minutes := int(s.confirmWindow.Minutes())
	return fmt.Sprintf(
		"You're about to send %s to %s at %s.\nReply \"confirm\" to proceed or \"cancel\" to stop. This request expires in %d minute(s).",
		domain.FormatNaira(amount), recipient, bankLabel, minutes,
	)
}

// handlePendingConfirmation drives AwaitingConfirmation. Expiry is checked
// first; then the fixed affirmative/negative sets; anything else re-prompts
// without falling through to general conversation.
func (s *Service) handlePendingConfirmation(ctx context.Context, session *domain.Session, text string) string {
	pending := session.Pending

	if pending.Expired(s.now()) {
		session.Pending = nil
		s.publishTransferEvent(ctx, session.UserID, domain.EventTransferCancelled, pending, "", "expired", "confirmation window lapsed")
		return "That transfer request expired before you confirmed it. Send the transfer details again if you'd still like to proceed."
	}

	switch normalized := strings.ToLower(strings.TrimSpace(text)); {
	case affirmativeReplies[normalized]:
		// Clear before any provider call so a duplicate confirmation cannot
		// re-trigger execution.
		session.Pending = nil
		return s.executeTransfer(ctx, session, pending)

	case negativeReplies[normalized]:
		session.Pending = nil
		log.Printf("level=info component=confirmation msg=\"transfer cancelled by user\" user_id=%s amount_kobo=%d", session.UserID, domain.NairaToKobo(pending.AmountNaira))
		s.publishTransferEvent(ctx, session.UserID, domain.EventTransferCancelled, pending, "", "cancelled", "user cancelled")
		return "No problem, I've cancelled that transfer. Nothing was sent."

	default:
		return fmt.Sprintf(
			"You have a pending transfer of %s awaiting confirmation. Reply \"confirm\" to proceed or \"cancel\" to stop.",
			domain.FormatNaira(pending.AmountNaira),
		)
	}
}

// publishTransferEvent emits one transfer lifecycle audit event.
func (s *Service) publishTransferEvent(ctx context.Context, userID, routingKey string, pending *domain.PendingTransaction, reference, status, reason string) {
	event := domain.TransferEvent{
		UserID:    userID,
		Reference: reference,
		Status:    status,
		Reason:    reason,
		Timestamp: s.now().UTC(),
	}
	if pending != nil {
		event.AccountNumber = pending.AccountNumber
		event.BankCode = pending.BankCode
		event.RecipientName = pending.RecipientName
		event.AmountKobo = domain.NairaToKobo(pending.AmountNaira)
	}
	if err := s.events.Publish(ctx, eventsExchange, routingKey, event); err != nil {
		log.Printf("level=warn component=confirmation msg=\"audit publish failed\" user_id=%s event=%s err=%v", userID, routingKey, err)
	}
}
