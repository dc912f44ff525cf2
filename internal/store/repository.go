/**
 * @description
 * This file defines the data-access contracts for the assistant-service and the
 * sentinel errors callers branch on. Linked accounts, mandate state and the
 * transfer audit trail live in PostgreSQL; conversational sessions live in a
 * TTL'd session store (Redis) defined alongside.
 *
 * @dependencies
 * - context, errors, time: Standard Go libraries.
 * - github.com/google/uuid: For record identifiers.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/FredAbod/Project-Eureka-sub000/internal/domain"
)

var (
	// ErrAccountNotFound means the user has no linked account on record.
	ErrAccountNotFound = errors.New("linked account not found")
	// ErrSessionNotFound means no session exists yet for the user.
	ErrSessionNotFound = errors.New("session not found")
	// ErrMandateNotFound means no account carries the given mandate reference.
	ErrMandateNotFound = errors.New("mandate not found")
)

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	// Linked account methods
	FindActiveAccountByUserID(ctx context.Context, userID string) (*domain.LinkedAccount, error)
	FindAccountsByUserID(ctx context.Context, userID string) ([]domain.LinkedAccount, error)
	UpdateMandate(ctx context.Context, accountID uuid.UUID, status domain.MandateStatus, mandateID, authURL string) error
	ActivateMandateByID(ctx context.Context, mandateID string) error

	// Transfer audit methods
	CreateTransferRecord(ctx context.Context, rec *domain.TransferRecord) error
	FindTransferRecordsByUserID(ctx context.Context, userID string, limit int) ([]domain.TransferRecord, error)
}

// SessionStore owns conversational session state. Sessions expire on
// inactivity; every Save refreshes the TTL.
type SessionStore interface {
	// Get loads the session for a user, or ErrSessionNotFound.
	Get(ctx context.Context, userID string) (*domain.Session, error)
	// Save writes the session back and refreshes its TTL. Last writer wins;
	// concurrent turns for one user are not serialized here (known gap).
	Save(ctx context.Context, session *domain.Session) error
	// Delete removes the session.
	Delete(ctx context.Context, userID string) error
	// TTL returns the configured inactivity window.
	TTL() time.Duration
}
