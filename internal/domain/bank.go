/**
 * @description
 * This file defines the bank reference model used by recipient resolution.
 * Banks are immutable registry entries: a canonical display name, the NIP
 * institution code, and the lowercase aliases users actually type.
 */

package domain

// Bank is one entry in the bank registry.
type Bank struct {
	Name    string   `json:"name"`
	Code    string   `json:"code"`
	Aliases []string `json:"aliases,omitempty"`
}

// BankIdentity is the canonical {name, code} pair resolved from user input.
// Name may be empty when an unregistered numeric code is passed through.
type BankIdentity struct {
	Name string `json:"name"`
	Code string `json:"code"`
}
