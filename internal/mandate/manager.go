/**
 * @description
 * This package owns the standing-authorization (mandate) lifecycle for a
 * linked account: absent -> pending -> active, with pending falling back to
 * absent on hard failure. Activation happens out-of-band — the provider
 * notifies completion via webhook — so the manager never polls; a still-pending
 * mandate simply repeats the initiation flow the next time a debit is tried.
 *
 * The one piece of self-healing here: mandate creation can fail because the
 * provider-side customer profile is missing a phone number or address. On
 * exactly that condition the manager performs one corrective profile update
 * and retries creation exactly once. Everything else is terminal for the call.
 *
 * @dependencies
 * - context, errors: Standard Go libraries.
 * - internal/domain, internal/store: Domain models and persistence.
 * - pkg/monoclient: Provider response shapes and error classification.
 */

package mandate

import (
	"context"
	"errors"
	"log"

	"github.com/FredAbod/Project-Eureka-sub000/internal/domain"
	"github.com/FredAbod/Project-Eureka-sub000/internal/store"
	"github.com/FredAbod/Project-Eureka-sub000/pkg/monoclient"
)

var (
	// ErrInsufficientFunds means the live balance cannot cover the debit.
	ErrInsufficientFunds = errors.New("insufficient funds for this transfer")
	// ErrRelinkRequired means the linked account has no provider customer id
	// and can never be authorized; the user must relink their account.
	ErrRelinkRequired = errors.New("account link is incomplete; the account must be relinked")
)

// Provider is the subset of the aggregator API the manager needs.
type Provider interface {
	GetAccountBalance(ctx context.Context, accountID string) (*monoclient.BalanceResponse, error)
	CreateMandate(ctx context.Context, customerID, accountID string, amountKobo int64, description string) (*monoclient.MandateResponse, error)
	UpdateCustomer(ctx context.Context, customerID, phone, address string) error
}

// Authorization is the outcome of EnsureAuthorized.
type Authorization struct {
	// Authorized is true when an active mandate exists and the balance covers
	// the requested amount; the caller may debit.
	Authorized bool
	// Pending is true when a mandate was (re)initiated; the user must open
	// AuthorizationURL and then retry the transfer.
	Pending          bool
	AuthorizationURL string
}

// Manager advances the mandate state machine for linked accounts.
type Manager struct {
	repo              store.Repository
	provider          Provider
	correctiveAddress string
}

// NewManager creates a mandate manager. correctiveAddress is the address
// supplied during the one-shot profile fix (the provider requires one even
// though we only know the user's phone number).
func NewManager(repo store.Repository, provider Provider, correctiveAddress string) *Manager {
	if correctiveAddress == "" {
		correctiveAddress = "Lagos, Nigeria"
	}
	return &Manager{repo: repo, provider: provider, correctiveAddress: correctiveAddress}
}

// EnsureAuthorized checks that the account may be debited for amountKobo.
// Active mandate: live balance check, then authorized. Otherwise: initiate
// mandate creation (with the single corrective retry) and report pending.
func (m *Manager) EnsureAuthorized(ctx context.Context, account *domain.LinkedAccount, amountKobo int64) (*Authorization, error) {
	if account.MandateStatus == domain.MandateActive {
		balance, err := m.provider.GetAccountBalance(ctx, account.ProviderAccountID)
		if err != nil {
			return nil, &domain.ProviderFault{Op: "mandate: balance check", Err: err}
		}
		if balance.Data.Balance < amountKobo {
			return nil, ErrInsufficientFunds
		}
		return &Authorization{Authorized: true}, nil
	}

	return m.initiateMandate(ctx, account, amountKobo)
}

// initiateMandate creates (or re-creates, while pending) the mandate and
// persists the pending state with its authorization URL.
func (m *Manager) initiateMandate(ctx context.Context, account *domain.LinkedAccount, amountKobo int64) (*Authorization, error) {
	if account.ProviderCustomerID == "" {
		return nil, ErrRelinkRequired
	}

	resp, err := m.provider.CreateMandate(ctx, account.ProviderCustomerID, account.ProviderAccountID, amountKobo, "Project Eureka transfer authorization")
	if err != nil && monoclient.IsProfileIncomplete(err) {
		// One corrective profile update, then one retry. A second identical
		// failure is terminal; the manager never loops further.
		log.Printf("level=info component=mandate_manager msg=\"customer profile incomplete; applying corrective update\" user_id=%s", account.UserID)
		if updateErr := m.provider.UpdateCustomer(ctx, account.ProviderCustomerID, account.PhoneNumber, m.correctiveAddress); updateErr != nil {
			return nil, &domain.ProviderFault{Op: "mandate: corrective customer update", Err: updateErr}
		}
		resp, err = m.provider.CreateMandate(ctx, account.ProviderCustomerID, account.ProviderAccountID, amountKobo, "Project Eureka transfer authorization")
	}
	if err != nil {
		// Hard failure drops a pending mandate back to absent so stale
		// authorization URLs are not resurfaced.
		if account.MandateStatus == domain.MandatePending {
			if dbErr := m.repo.UpdateMandate(ctx, account.ID, domain.MandateAbsent, "", ""); dbErr != nil {
				log.Printf("level=error component=mandate_manager msg=\"failed to reset pending mandate\" user_id=%s err=%v", account.UserID, dbErr)
			} else {
				account.MandateStatus = domain.MandateAbsent
				account.MandateID = ""
				account.MandateAuthURL = ""
			}
		}
		return nil, &domain.ProviderFault{Op: "mandate: creation", Err: err}
	}

	if err := m.repo.UpdateMandate(ctx, account.ID, domain.MandatePending, resp.Data.ID, resp.Data.AuthorizationURL); err != nil {
		return nil, &domain.ProviderFault{Op: "mandate: persist pending state", Err: err}
	}
	account.MandateStatus = domain.MandatePending
	account.MandateID = resp.Data.ID
	account.MandateAuthURL = resp.Data.AuthorizationURL

	return &Authorization{Pending: true, AuthorizationURL: resp.Data.AuthorizationURL}, nil
}
