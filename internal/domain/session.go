/**
 * @description
 * This file defines the conversational session models. A session is keyed by the
 * user's messaging identifier (phone number) and carries the bounded chat history
 * plus the at-most-one pending transaction awaiting confirmation.
 *
 * @dependencies
 * - time: Standard Go library.
 */

package domain

import "time"

// Chat roles as sent to the AI inference provider.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single role-tagged message in the conversation history.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// PendingTransaction is a proposed transfer that has not been confirmed yet.
// A session holds at most one; creating a new one overwrites the previous.
type PendingTransaction struct {
	Kind          string    `json:"kind"` // currently always "transfer"
	AccountNumber string    `json:"account_number"`
	BankCode      string    `json:"bank_code"`
	BankName      string    `json:"bank_name"`
	RecipientName string    `json:"recipient_name,omitempty"` // verified name, when available
	AmountNaira   float64   `json:"amount_naira"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// Expired reports whether the confirmation window has lapsed.
func (p *PendingTransaction) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// Session is the per-user conversational state. It is owned by the session
// store; the engine re-reads it at the start of every turn and writes back
// mutations before replying.
type Session struct {
	UserID    string              `json:"user_id"`
	History   []ChatMessage       `json:"history"`
	Pending   *PendingTransaction `json:"pending,omitempty"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// AppendMessage adds a message to the history, trimming the oldest entries so
// that at most maxMessages remain.
func (s *Session) AppendMessage(role, content string, maxMessages int) {
	s.History = append(s.History, ChatMessage{Role: role, Content: content})
	if maxMessages > 0 && len(s.History) > maxMessages {
		s.History = s.History[len(s.History)-maxMessages:]
	}
}
