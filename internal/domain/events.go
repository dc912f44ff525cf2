/**
 * @description
 * This file defines the audit event payloads published to the message broker.
 * One event is emitted for each observable transfer lifecycle step and for
 * recipient lookups, carrying enough context to reconstruct the decision
 * without exposing credentials.
 *
 * @dependencies
 * - time: Standard Go library.
 */

package domain

import "time"

// Audit routing keys on the assistant events exchange.
const (
	EventTransferInitiated = "transfer.initiated"
	EventTransferCompleted = "transfer.completed"
	EventTransferCancelled = "transfer.cancelled"
	EventTransferFailed    = "transfer.failed"
	EventRecipientLookup   = "recipient.lookup"
)

// TransferEvent is the audit payload for transfer lifecycle events.
type TransferEvent struct {
	UserID        string    `json:"user_id"`
	Reference     string    `json:"reference,omitempty"`
	AccountNumber string    `json:"account_number,omitempty"`
	BankCode      string    `json:"bank_code,omitempty"`
	RecipientName string    `json:"recipient_name,omitempty"`
	AmountKobo    int64     `json:"amount_kobo"`
	Status        string    `json:"status"`
	Reason        string    `json:"reason,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// RecipientLookupEvent is the audit payload for account name verifications.
type RecipientLookupEvent struct {
	UserID        string    `json:"user_id"`
	AccountNumber string    `json:"account_number"`
	BankCode      string    `json:"bank_code"`
	Verified      bool      `json:"verified"`
	Source        string    `json:"source,omitempty"` // which provider confirmed the name
	Timestamp     time.Time `json:"timestamp"`
}
