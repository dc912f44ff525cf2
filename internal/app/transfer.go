/**
 * @description
 * This file implements the transfer executor: the guarded, fail-fast sequence
 * run after the user confirms a pending transaction. Each step produces one
 * terminal user-facing message on failure and halts; nothing returns the
 * session to AwaitingConfirmation.
 *
 * Steps: load linked account -> re-verify recipient -> ensure mandate
 * authorization -> convert to kobo and debit with a fresh idempotent
 * reference -> record the outcome for audit.
 *
 * @dependencies
 * - context, errors, fmt: Standard Go libraries.
 * - internal/domain, internal/mandate, internal/store: Core collaborators.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/FredAbod/Project-Eureka-sub000/internal/banks"
	"github.com/FredAbod/Project-Eureka-sub000/internal/domain"
	"github.com/FredAbod/Project-Eureka-sub000/internal/mandate"
	"github.com/FredAbod/Project-Eureka-sub000/internal/store"
	"github.com/FredAbod/Project-Eureka-sub000/pkg/monoclient"
)

// executeTransfer runs the confirmed transfer end to end. The pending
// transaction has already been cleared from the session by the caller.
func (s *Service) executeTransfer(ctx context.Context, session *domain.Session, pending *domain.PendingTransaction) string {
	userID := session.UserID
	amountKobo := domain.NairaToKobo(pending.AmountNaira)

	// 1. The user must have an active linked account.
	account, err := s.repo.FindActiveAccountByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			s.publishTransferEvent(ctx, userID, domain.EventTransferFailed, pending, "", "failed", "no linked account")
			return "You'll need to link a bank account before sending money. Say \"link my account\" to get started."
		}
		s.publishTransferEvent(ctx, userID, domain.EventTransferFailed, pending, "", "failed", "account load failed")
		return s.providerFailureReply(userID, "transfer: load account", err)
	}

	// 2. Re-verify the recipient; the earlier lookup was advisory only.
	bankInput := pending.BankCode
	if bankInput == "" {
		bankInput = pending.BankName
	}
	res, err := s.recipients.Resolve(ctx, pending.AccountNumber, bankInput)
	if err != nil || !res.Verified {
		s.publishTransferEvent(ctx, userID, domain.EventTransferFailed, pending, "", "failed", "recipient verification failed")
		if err != nil {
			return s.domainFailureReply(userID, "transfer: recipient verification", err)
		}
		return "I couldn't verify the recipient's account, so I didn't send anything. Please check the details and try again."
	}

	// 3. The mandate must authorize this debit.
	auth, err := s.mandates.EnsureAuthorized(ctx, account, amountKobo)
	if err != nil {
		switch {
		case errors.Is(err, mandate.ErrInsufficientFunds):
			s.publishTransferEvent(ctx, userID, domain.EventTransferFailed, pending, "", "failed", "insufficient funds")
			return fmt.Sprintf("You don't have enough funds for this transfer of %s. Nothing was sent.", domain.FormatNaira(pending.AmountNaira))
		case errors.Is(err, mandate.ErrRelinkRequired):
			s.publishTransferEvent(ctx, userID, domain.EventTransferFailed, pending, "", "failed", "relink required")
			return "There's a problem with your account link, so I can't authorize debits. Please relink your bank account and try again."
		default:
			s.publishTransferEvent(ctx, userID, domain.EventTransferFailed, pending, "", "failed", "authorization check failed")
			return s.providerFailureReply(userID, "transfer: authorization", err)
		}
	}
	if auth.Pending {
		// Not a failure from the user's perspective: they must approve the
		// mandate, then send the transfer again.
		s.publishTransferEvent(ctx, userID, domain.EventTransferFailed, pending, "", "authorization_required", "mandate pending approval")
		return fmt.Sprintf(
			"Before I can send money from your account, you need to approve a one-time debit authorization here:\n%s\nOnce that's done, just send the transfer request again.",
			auth.AuthorizationURL,
		)
	}

	// 4. Debit in kobo with a fresh idempotent reference.
	reference := s.newTransferReference(userID)
	debit, err := s.bank.DebitMandate(ctx, account.MandateID, amountKobo, reference,
		fmt.Sprintf("Transfer to %s", res.AccountName),
		res.AccountNumber, res.Bank.Code, res.AccountName,
	)
	if err != nil {
		reason := providerReason(err)
		s.recordTransfer(ctx, userID, reference, res, amountKobo, "failed", reason)
		s.publishTransferEvent(ctx, userID, domain.EventTransferFailed, pending, reference, "failed", reason)
		if reason != "" {
			return fmt.Sprintf("The transfer didn't go through: %s. Nothing was debited twice — please try again.", reason)
		}
		return "The transfer didn't go through. Please try again in a moment."
	}

	// 5. Record and confirm.
	s.recordTransfer(ctx, userID, reference, res, amountKobo, "success", "")
	s.publishTransferEvent(ctx, userID, domain.EventTransferCompleted, pending, reference, "success", "")
	log.Printf("level=info component=transfer_executor msg=\"transfer completed\" user_id=%s reference=%s amount_kobo=%d provider_status=%s",
		userID, reference, amountKobo, debit.Data.Status)

	bankLabel := res.Bank.Name
	if bankLabel == "" {
		bankLabel = "bank code " + res.Bank.Code
	}
	return fmt.Sprintf("Done! %s is on its way to %s at %s. Reference: %s",
		domain.FormatNaira(pending.AmountNaira), res.AccountName, bankLabel, reference)
}

// newTransferReference builds a fresh idempotent debit reference from the
// current timestamp and a user-identifier suffix. Never reused across attempts.
func (s *Service) newTransferReference(userID string) string {
	suffix := userID
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	return fmt.Sprintf("eureka-%d-%s", s.now().UnixNano(), suffix)
}

// recordTransfer persists one audit row; failures are logged, not surfaced.
func (s *Service) recordTransfer(ctx context.Context, userID, reference string, res *banks.Resolution, amountKobo int64, status, failureReason string) {
	rec := &domain.TransferRecord{
		UserID:        userID,
		Reference:     reference,
		AccountNumber: res.AccountNumber,
		BankCode:      res.Bank.Code,
		BankName:      res.Bank.Name,
		RecipientName: res.AccountName,
		AmountKobo:    amountKobo,
		Status:        status,
		FailureReason: failureReason,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.repo.CreateTransferRecord(ctx, rec); err != nil {
		log.Printf("level=error component=transfer_executor msg=\"audit record failed\" user_id=%s reference=%s err=%v", userID, reference, err)
	}
}

// providerReason extracts the provider-reported reason from a debit failure,
// when one exists, without leaking transport detail to the user.
func providerReason(err error) string {
	var apiErr *monoclient.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return ""
}
