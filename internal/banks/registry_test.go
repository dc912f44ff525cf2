package banks

import (
	"context"
	"testing"
	"time"

	"github.com/FredAbod/Project-Eureka-sub000/internal/domain"
)

type directoryStub struct {
	banks []domain.Bank
	err   error
	calls int
}

func (d *directoryStub) BankDirectory(ctx context.Context) ([]domain.Bank, error) {
	d.calls++
	return d.banks, d.err
}

func TestRegistry_ResolvesAliasToCanonicalIdentity(t *testing.T) {
	registry := NewRegistry(nil, 0, nil)

	identity, err := registry.Resolve(context.Background(), "gtb")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if identity.Name != "Guaranty Trust Bank" || identity.Code != "058" {
		t.Fatalf("unexpected identity: %#v", identity)
	}
}

func TestRegistry_ResolvesExactNameCaseInsensitively(t *testing.T) {
	registry := NewRegistry(nil, 0, nil)

	identity, err := registry.Resolve(context.Background(), "ZENITH BANK")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if identity.Code != "057" {
		t.Fatalf("unexpected identity: %#v", identity)
	}
}

func TestRegistry_ResolvesAliasInsideLongerInput(t *testing.T) {
	registry := NewRegistry(nil, 0, nil)

	identity, err := registry.Resolve(context.Background(), "gtbank plc")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if identity.Name != "Guaranty Trust Bank" {
		t.Fatalf("unexpected identity: %#v", identity)
	}
}

func TestRegistry_KnownNumericCodeGetsNameAttached(t *testing.T) {
	registry := NewRegistry(nil, 0, nil)

	identity, err := registry.Resolve(context.Background(), "044")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if identity.Name != "Access Bank" || identity.Code != "044" {
		t.Fatalf("unexpected identity: %#v", identity)
	}
}

func TestRegistry_UnknownNumericCodePassesThroughWithoutName(t *testing.T) {
	registry := NewRegistry(nil, 0, nil)

	identity, err := registry.Resolve(context.Background(), "000")
	if err != nil {
		t.Fatalf("unknown codes must pass through, got error: %v", err)
	}
	if identity.Code != "000" || identity.Name != "" {
		t.Fatalf("unexpected identity: %#v", identity)
	}
}

func TestRegistry_UnknownNameIsUserInputError(t *testing.T) {
	registry := NewRegistry(nil, 0, nil)

	_, err := registry.Resolve(context.Background(), "bank of narnia")
	if err == nil {
		t.Fatal("expected an error for an unknown bank name")
	}
	if !domain.IsUserInput(err) {
		t.Fatalf("expected a user input error, got %T: %v", err, err)
	}
}

func TestRegistry_ExtendedDirectoryCachedWithinTTL(t *testing.T) {
	dir := &directoryStub{banks: []domain.Bank{{Name: "Suntrust Bank", Code: "100"}}}
	current := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	registry := NewRegistry(dir, time.Hour, func() time.Time { return current })

	for i := 0; i < 3; i++ {
		identity, err := registry.Resolve(context.Background(), "100")
		if err != nil {
			t.Fatalf("Resolve returned error: %v", err)
		}
		if identity.Name != "Suntrust Bank" {
			t.Fatalf("unexpected identity: %#v", identity)
		}
	}
	if dir.calls != 1 {
		t.Fatalf("expected 1 directory fetch within the TTL, got %d", dir.calls)
	}

	current = current.Add(2 * time.Hour)
	if _, err := registry.Resolve(context.Background(), "100"); err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if dir.calls != 2 {
		t.Fatalf("expected a re-fetch after the TTL lapsed, got %d calls", dir.calls)
	}
}

func TestRegistry_ResetForcesRefetch(t *testing.T) {
	dir := &directoryStub{banks: []domain.Bank{{Name: "Suntrust Bank", Code: "100"}}}
	registry := NewRegistry(dir, time.Hour, nil)

	if _, err := registry.Resolve(context.Background(), "100"); err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	registry.Reset()
	if _, err := registry.Resolve(context.Background(), "100"); err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if dir.calls != 2 {
		t.Fatalf("expected Reset to force a re-fetch, got %d calls", dir.calls)
	}
}
