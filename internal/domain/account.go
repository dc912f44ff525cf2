/**
 * @description
 * This file defines the linked bank account model and the mandate (standing
 * debit authorization) lifecycle recorded against it. The service never stores
 * bank credentials; it only tracks the aggregator-assigned identifiers and the
 * mandate state needed to move money.
 *
 * @dependencies
 * - time: Standard Go library.
 * - github.com/google/uuid: For internal record identifiers.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// MandateStatus is the standing-authorization state of a linked account.
type MandateStatus string

const (
	MandateAbsent  MandateStatus = "absent"
	MandatePending MandateStatus = "pending"
	MandateActive  MandateStatus = "active"
)

// LinkedAccount is a user's connected bank account as known to the aggregator.
type LinkedAccount struct {
	ID                 uuid.UUID     `json:"id"`
	UserID             string        `json:"user_id"` // messaging identifier (phone number)
	ProviderAccountID  string        `json:"provider_account_id"`
	ProviderCustomerID string        `json:"provider_customer_id"` // empty means the link is unusable for mandates
	AccountName        string        `json:"account_name"`
	AccountNumber      string        `json:"account_number"`
	BankName           string        `json:"bank_name"`
	BankCode           string        `json:"bank_code"`
	PhoneNumber        string        `json:"phone_number"`
	Status             string        `json:"status"`
	MandateStatus      MandateStatus `json:"mandate_status"`
	MandateID          string        `json:"mandate_id,omitempty"`
	MandateAuthURL     string        `json:"mandate_auth_url,omitempty"` // valid only while the mandate is pending
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// TransferRecord is the audit row persisted for every executed transfer attempt.
type TransferRecord struct {
	ID            uuid.UUID `json:"id"`
	UserID        string    `json:"user_id"`
	Reference     string    `json:"reference"`
	AccountNumber string    `json:"account_number"`
	BankCode      string    `json:"bank_code"`
	BankName      string    `json:"bank_name"`
	RecipientName string    `json:"recipient_name"`
	AmountKobo    int64     `json:"amount_kobo"`
	Status        string    `json:"status"` // success | failed
	FailureReason string    `json:"failure_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
