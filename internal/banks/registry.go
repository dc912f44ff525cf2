/**
 * @description
 * This file implements the bank registry used by recipient resolution. A static
 * seed of Nigerian institutions (canonical name, NIP code, common aliases) is
 * always available; an extended directory fetched from the aggregation provider
 * is cached with a TTL and refreshed lazily on code lookups that miss the seed.
 *
 * Matching order for non-numeric input:
 *   exact name match -> alias exact/substring match -> name-prefix match.
 * Purely numeric input is treated as a bank code and passed through (name
 * attached when known) so unregistered codes still work.
 *
 * @dependencies
 * - context, strings, sync, time: Standard Go libraries.
 * - internal/domain: For the Bank and BankIdentity models.
 */

package banks

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/FredAbod/Project-Eureka-sub000/internal/domain"
)

// DirectoryProvider fetches the aggregator's extended bank directory.
type DirectoryProvider interface {
	BankDirectory(ctx context.Context) ([]domain.Bank, error)
}

// seedBanks is the pinned registry of banks users name in chat.
var seedBanks = []domain.Bank{
	{Name: "Access Bank", Code: "044", Aliases: []string{"access", "diamond", "diamond bank"}},
	{Name: "Guaranty Trust Bank", Code: "058", Aliases: []string{"gtb", "gtbank", "gt bank", "guaranty"}},
	{Name: "Zenith Bank", Code: "057", Aliases: []string{"zenith"}},
	{Name: "First Bank of Nigeria", Code: "011", Aliases: []string{"first bank", "firstbank", "fbn"}},
	{Name: "United Bank for Africa", Code: "033", Aliases: []string{"uba"}},
	{Name: "Union Bank", Code: "032", Aliases: []string{"union"}},
	{Name: "Fidelity Bank", Code: "070", Aliases: []string{"fidelity"}},
	{Name: "First City Monument Bank", Code: "214", Aliases: []string{"fcmb"}},
	{Name: "Stanbic IBTC Bank", Code: "221", Aliases: []string{"stanbic", "ibtc"}},
	{Name: "Sterling Bank", Code: "232", Aliases: []string{"sterling"}},
	{Name: "Wema Bank", Code: "035", Aliases: []string{"wema", "alat"}},
	{Name: "Polaris Bank", Code: "076", Aliases: []string{"polaris", "skye"}},
	{Name: "Keystone Bank", Code: "082", Aliases: []string{"keystone"}},
	{Name: "Ecobank Nigeria", Code: "050", Aliases: []string{"ecobank"}},
	{Name: "Unity Bank", Code: "215", Aliases: []string{"unity"}},
	{Name: "Jaiz Bank", Code: "301", Aliases: []string{"jaiz"}},
	{Name: "Providus Bank", Code: "101", Aliases: []string{"providus"}},
	{Name: "Kuda Microfinance Bank", Code: "50211", Aliases: []string{"kuda"}},
	{Name: "OPay Digital Services", Code: "999992", Aliases: []string{"opay", "paycom"}},
	{Name: "PalmPay", Code: "999991", Aliases: []string{"palmpay"}},
	{Name: "Moniepoint Microfinance Bank", Code: "50515", Aliases: []string{"moniepoint"}},
}

// Registry resolves user-supplied bank names, aliases and codes to a canonical
// identity. The extended directory cache is explicitly owned, TTL-bounded and
// resettable so tests can control time.
type Registry struct {
	mu        sync.Mutex
	seed      []domain.Bank
	extended  map[string]string // code -> name
	fetchedAt time.Time

	directory DirectoryProvider
	cacheTTL  time.Duration
	now       func() time.Time
}

// NewRegistry creates a registry. directory may be nil, in which case only the
// static seed is consulted.
func NewRegistry(directory DirectoryProvider, cacheTTL time.Duration, now func() time.Time) *Registry {
	if cacheTTL <= 0 {
		cacheTTL = 24 * time.Hour
	}
	if now == nil {
		now = time.Now
	}
	return &Registry{
		seed:      seedBanks,
		directory: directory,
		cacheTTL:  cacheTTL,
		now:       now,
	}
}

// Resolve maps user input (bank name, alias or numeric code) to a canonical
// identity. Unknown non-numeric input returns a UserInputError; unknown
// numeric codes are passed through with no name attached.
func (r *Registry) Resolve(ctx context.Context, input string) (domain.BankIdentity, error) {
	needle := strings.ToLower(strings.TrimSpace(input))
	if needle == "" {
		return domain.BankIdentity{}, domain.NewUserInputError("please tell me which bank the account belongs to")
	}

	if isNumeric(needle) {
		if name, ok := r.nameForCode(ctx, needle); ok {
			return domain.BankIdentity{Name: name, Code: needle}, nil
		}
		return domain.BankIdentity{Code: needle}, nil
	}

	// 1. Exact case-insensitive name match.
	for _, b := range r.seed {
		if strings.ToLower(b.Name) == needle {
			return domain.BankIdentity{Name: b.Name, Code: b.Code}, nil
		}
	}

	// 2. Alias exact or substring match.
	for _, b := range r.seed {
		for _, alias := range b.Aliases {
			if alias == needle || strings.Contains(needle, alias) {
				return domain.BankIdentity{Name: b.Name, Code: b.Code}, nil
			}
		}
	}

	// 3. Partial name-prefix match.
	for _, b := range r.seed {
		if strings.HasPrefix(strings.ToLower(b.Name), needle) {
			return domain.BankIdentity{Name: b.Name, Code: b.Code}, nil
		}
	}

	return domain.BankIdentity{}, domain.NewUserInputError("I don't recognize the bank %q. Could you give me the full bank name?", strings.TrimSpace(input))
}

// nameForCode checks the seed, then the TTL-cached extended directory.
func (r *Registry) nameForCode(ctx context.Context, code string) (string, bool) {
	for _, b := range r.seed {
		if b.Code == code {
			return b.Name, true
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.extended == nil || r.now().Sub(r.fetchedAt) > r.cacheTTL {
		r.refreshLocked(ctx)
	}
	name, ok := r.extended[code]
	return name, ok
}

// refreshLocked re-fetches the extended directory. A failed refresh keeps the
// stale cache rather than discarding it.
func (r *Registry) refreshLocked(ctx context.Context) {
	if r.directory == nil {
		if r.extended == nil {
			r.extended = map[string]string{}
		}
		return
	}

	listed, err := r.directory.BankDirectory(ctx)
	if err != nil {
		log.Printf("level=warn component=bank_registry msg=\"extended directory refresh failed\" err=%v", err)
		if r.extended == nil {
			r.extended = map[string]string{}
		}
		return
	}

	fresh := make(map[string]string, len(listed))
	for _, b := range listed {
		if b.Code != "" && b.Name != "" {
			fresh[b.Code] = b.Name
		}
	}
	r.extended = fresh
	r.fetchedAt = r.now()
}

// Reset drops the extended directory cache so the next lookup re-fetches.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extended = nil
	r.fetchedAt = time.Time{}
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
