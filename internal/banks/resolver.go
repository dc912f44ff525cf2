/**
 * @description
 * This file implements recipient resolution: validating the destination account
 * number, resolving the bank identity through the registry, and verifying the
 * account name against the primary aggregator with a single fallback to the
 * payment-verification provider. A name is never fabricated; when both
 * providers fail the caller gets verified=false and a user-facing error.
 *
 * @dependencies
 * - context, errors, regexp: Standard Go libraries.
 * - internal/domain: For models and the error taxonomy.
 * - pkg/monoclient, pkg/paystackclient: Provider response shapes.
 */

package banks

import (
	"context"
	"errors"
	"log"
	"regexp"
	"strings"

	"github.com/FredAbod/Project-Eureka-sub000/internal/domain"
	"github.com/FredAbod/Project-Eureka-sub000/pkg/monoclient"
	"github.com/FredAbod/Project-Eureka-sub000/pkg/paystackclient"
)

// Verification sources reported on a resolution.
const (
	SourcePrimary  = "mono"
	SourceFallback = "paystack"
)

// nubanPattern is the fixed-length account number format for the supported market.
var nubanPattern = regexp.MustCompile(`^\d{10}$`)

// PrimaryVerifier is the aggregator's account-name lookup.
type PrimaryVerifier interface {
	LookupAccountName(ctx context.Context, accountNumber, bankCode string) (*monoclient.LookupResponse, error)
}

// FallbackVerifier is the payment provider's account resolution.
type FallbackVerifier interface {
	ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*paystackclient.ResolveResponse, error)
}

// Resolution is the outcome of resolving and verifying a recipient.
type Resolution struct {
	AccountNumber string
	Bank          domain.BankIdentity
	AccountName   string
	Verified      bool
	Source        string
}

// Resolver composes the registry with the two verification providers.
type Resolver struct {
	registry *Registry
	primary  PrimaryVerifier
	fallback FallbackVerifier
}

// NewResolver creates a recipient resolver. fallback may be nil when no
// fallback provider is configured.
func NewResolver(registry *Registry, primary PrimaryVerifier, fallback FallbackVerifier) *Resolver {
	return &Resolver{registry: registry, primary: primary, fallback: fallback}
}

// Resolve validates the account number, resolves the bank, and verifies the
// account name. Format and unknown-bank failures return before any network
// call. On double verification failure the Resolution (verified=false, no
// name) is returned alongside a VerificationFailure.
func (r *Resolver) Resolve(ctx context.Context, accountNumber, bankNameOrCode string) (*Resolution, error) {
	accountNumber = strings.TrimSpace(accountNumber)
	if !nubanPattern.MatchString(accountNumber) {
		return nil, domain.NewUserInputError("the account number %q doesn't look right — it should be 10 digits", accountNumber)
	}

	bank, err := r.registry.Resolve(ctx, bankNameOrCode)
	if err != nil {
		return nil, err
	}

	res := &Resolution{AccountNumber: accountNumber, Bank: bank}

	primaryResp, primaryErr := r.primary.LookupAccountName(ctx, accountNumber, bank.Code)
	if primaryErr == nil && primaryResp.Data.AccountName != "" {
		res.AccountName = primaryResp.Data.AccountName
		res.Verified = true
		res.Source = SourcePrimary
		return res, nil
	}
	if primaryErr != nil {
		log.Printf("level=warn component=recipient_resolution msg=\"primary lookup failed; trying fallback\" bank_code=%s err=%v", bank.Code, primaryErr)
	}

	if r.fallback != nil {
		fallbackResp, fallbackErr := r.fallback.ResolveAccount(ctx, accountNumber, bank.Code)
		if fallbackErr == nil && fallbackResp.Data.AccountName != "" {
			res.AccountName = fallbackResp.Data.AccountName
			res.Verified = true
			res.Source = SourceFallback
			return res, nil
		}
		if errors.Is(fallbackErr, paystackclient.ErrTestModeRestricted) {
			return res, &domain.VerificationFailure{
				Msg: "I couldn't verify that account: name checks are currently limited to one supported bank. Please double-check the details or try again later.",
			}
		}
		if fallbackErr != nil {
			log.Printf("level=warn component=recipient_resolution msg=\"fallback lookup failed\" bank_code=%s err=%v", bank.Code, fallbackErr)
		}
	}

	return res, &domain.VerificationFailure{
		Msg: "I couldn't verify the account name for that account number and bank. Please double-check the details and try again.",
	}
}
