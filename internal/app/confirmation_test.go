package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/FredAbod/Project-Eureka-sub000/internal/banks"
	"github.com/FredAbod/Project-Eureka-sub000/internal/domain"
	"github.com/FredAbod/Project-Eureka-sub000/pkg/groqclient"
)

func transferToolReply() groqclient.Message {
	return toolReply("transfer_money", `{"account_number":"1234567890","bank_name":"Access Bank","amount":5000}`)
}

func unverifiedResolution() (*banks.Resolution, error) {
	res := &banks.Resolution{
		AccountNumber: "1234567890",
		Bank:          domain.BankIdentity{Name: "Access Bank", Code: "044"},
	}
	return res, &domain.VerificationFailure{Msg: "I couldn't verify the account name for that account number and bank."}
}

func TestBeginTransfer_CreatesPendingAndPromptsWithVerifiedName(t *testing.T) {
	f := newEngineFixture(t).withLinkedAccount()
	f.recipients.res = verifiedResolution()
	f.ai.replies = []groqclient.Message{transferToolReply()}

	reply, err := f.service.HandleMessage(context.Background(), "2348012345678", "send 5000 to 1234567890 access bank")
	if err != nil {
		t.Fatalf("HandleMessage returned error: %v", err)
	}
	if !strings.Contains(reply, "₦5,000") || !strings.Contains(reply, "John Doe") || !strings.Contains(reply, "Access Bank") {
		t.Fatalf("confirmation prompt missing details: %q", reply)
	}
	if !strings.Contains(reply, "confirm") || !strings.Contains(reply, "cancel") {
		t.Fatalf("confirmation prompt missing instructions: %q", reply)
	}

	session := f.sessions.sessions["2348012345678"]
	if session.Pending == nil {
		t.Fatal("expected a pending transaction")
	}
	if session.Pending.AccountNumber != "1234567890" || session.Pending.BankCode != "044" || session.Pending.AmountNaira != 5000 {
		t.Fatalf("unexpected pending transaction: %#v", session.Pending)
	}
	if session.Pending.RecipientName != "John Doe" {
		t.Fatalf("verified name not attached: %#v", session.Pending)
	}
	if !f.events.sawKey(domain.EventTransferInitiated) {
		t.Fatalf("expected an initiated event, keys: %v", f.events.keys)
	}
}

func TestBeginTransfer_PlaceholderAccountNumberNeverCreatesPending(t *testing.T) {
	f := newEngineFixture(t).withLinkedAccount()
	f.ai.replies = []groqclient.Message{
		toolReply("transfer_money", `{"account_number":"account_number","bank_name":"Access Bank","amount":5000}`),
	}

	reply, err := f.service.HandleMessage(context.Background(), "2348012345678", "send 5000")
	if err != nil {
		t.Fatalf("HandleMessage returned error: %v", err)
	}
	if !strings.Contains(reply, "account number") {
		t.Fatalf("expected a prompt for the account number, got %q", reply)
	}
	if f.sessions.sessions["2348012345678"].Pending != nil {
		t.Fatal("a placeholder destination must never create a pending transaction")
	}
	if f.recipients.calls != 0 {
		t.Fatal("placeholder input must fail before any resolution call")
	}
}

func TestBeginTransfer_NonPositiveAmountNeverCreatesPending(t *testing.T) {
	f := newEngineFixture(t).withLinkedAccount()
	f.ai.replies = []groqclient.Message{
		toolReply("transfer_money", `{"account_number":"1234567890","bank_name":"Access Bank","amount":0}`),
	}

	reply, err := f.service.HandleMessage(context.Background(), "2348012345678", "send nothing")
	if err != nil {
		t.Fatalf("HandleMessage returned error: %v", err)
	}
	if !strings.Contains(reply, "How much") {
		t.Fatalf("expected a prompt for the amount, got %q", reply)
	}
	if f.sessions.sessions["2348012345678"].Pending != nil {
		t.Fatal("a non-positive amount must never create a pending transaction")
	}
}

func TestBeginTransfer_UnverifiedRecipientStillReachesConfirmation(t *testing.T) {
	f := newEngineFixture(t).withLinkedAccount()
	f.recipients.res, f.recipients.err = unverifiedResolution()
	f.ai.replies = []groqclient.Message{transferToolReply()}

	reply, err := f.service.HandleMessage(context.Background(), "2348012345678", "send 5000 to 1234567890 access")
	if err != nil {
		t.Fatalf("HandleMessage returned error: %v", err)
	}
	if !strings.Contains(reply, "Account 1234567890") {
		t.Fatalf("unverified transfers must show the raw account, got %q", reply)
	}

	pending := f.sessions.sessions["2348012345678"].Pending
	if pending == nil {
		t.Fatal("verification failure alone must not block confirmation")
	}
	if pending.RecipientName != "" {
		t.Fatalf("no name may be attached without verification: %#v", pending)
	}
}

func TestBeginTransfer_UnknownBankKeepsNoPending(t *testing.T) {
	f := newEngineFixture(t).withLinkedAccount()
	f.recipients.err = domain.NewUserInputError("I don't recognize that bank")
	f.ai.replies = []groqclient.Message{transferToolReply()}

	reply, err := f.service.HandleMessage(context.Background(), "2348012345678", "send 5000")
	if err != nil {
		t.Fatalf("HandleMessage returned error: %v", err)
	}
	if !strings.Contains(reply, "recognize") {
		t.Fatalf("expected the clarifying message, got %q", reply)
	}
	if f.sessions.sessions["2348012345678"].Pending != nil {
		t.Fatal("user input failures must keep the session in NoPending")
	}
}

func TestPendingConfirmation_NonConfirmationInputReprompts(t *testing.T) {
	f := newEngineFixture(t).withLinkedAccount()
	f.recipients.res = verifiedResolution()
	f.ai.replies = []groqclient.Message{transferToolReply()}

	if _, err := f.service.HandleMessage(context.Background(), "2348012345678", "send 5000 to 1234567890 access"); err != nil {
		t.Fatalf("HandleMessage returned error: %v", err)
	}
	aiCallsAfterSetup := f.ai.calls

	reply, err := f.service.HandleMessage(context.Background(), "2348012345678", "what's my balance?")
	if err != nil {
		t.Fatalf("HandleMessage returned error: %v", err)
	}
	if !strings.Contains(reply, "pending transfer") || !strings.Contains(reply, "₦5,000") {
		t.Fatalf("expected a re-prompt, got %q", reply)
	}
	if f.ai.calls != aiCallsAfterSetup {
		t.Fatal("input during confirmation must never reach the inference provider")
	}
	if f.sessions.sessions["2348012345678"].Pending == nil {
		t.Fatal("the pending transaction must survive a re-prompt")
	}
}

func TestPendingConfirmation_CancelClearsPendingWithoutExecuting(t *testing.T) {
	f := newEngineFixture(t).withLinkedAccount()
	f.recipients.res = verifiedResolution()
	f.ai.replies = []groqclient.Message{transferToolReply()}

	if _, err := f.service.HandleMessage(context.Background(), "2348012345678", "send 5000 to 1234567890 access"); err != nil {
		t.Fatalf("HandleMessage returned error: %v", err)
	}

	reply, err := f.service.HandleMessage(context.Background(), "2348012345678", "CANCEL")
	if err != nil {
		t.Fatalf("HandleMessage returned error: %v", err)
	}
	if !strings.Contains(reply, "cancelled") {
		t.Fatalf("expected a cancellation acknowledgement, got %q", reply)
	}
	if f.sessions.sessions["2348012345678"].Pending != nil {
		t.Fatal("cancel must clear the pending transaction")
	}
	if f.banking.debitCalls != 0 {
		t.Fatal("cancel must never reach the debit provider")
	}
	if !f.events.sawKey(domain.EventTransferCancelled) {
		t.Fatalf("expected a cancelled event, keys: %v", f.events.keys)
	}
}

func TestPendingConfirmation_ExpiryCheckedBeforeInterpretingReply(t *testing.T) {
	f := newEngineFixture(t).withLinkedAccount()
	f.recipients.res = verifiedResolution()
	f.ai.replies = []groqclient.Message{transferToolReply()}

	current := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	f.service.SetClock(func() time.Time { return current })

	if _, err := f.service.HandleMessage(context.Background(), "2348012345678", "send 5000 to 1234567890 access"); err != nil {
		t.Fatalf("HandleMessage returned error: %v", err)
	}

	current = current.Add(6 * time.Minute)
	reply, err := f.service.HandleMessage(context.Background(), "2348012345678", "confirm")
	if err != nil {
		t.Fatalf("HandleMessage returned error: %v", err)
	}
	if !strings.Contains(reply, "expired") {
		t.Fatalf("a late confirm must report expiry, got %q", reply)
	}
	if f.banking.debitCalls != 0 {
		t.Fatal("an expired request must never execute")
	}
	if f.sessions.sessions["2348012345678"].Pending != nil {
		t.Fatal("expiry must clear the pending transaction")
	}
}

func TestPendingConfirmation_NewTransferRequestDoesNotReplaceWhilePending(t *testing.T) {
	f := newEngineFixture(t).withLinkedAccount()
	f.recipients.res = verifiedResolution()
	f.ai.replies = []groqclient.Message{transferToolReply()}

	if _, err := f.service.HandleMessage(context.Background(), "2348012345678", "send 5000 to 1234567890 access"); err != nil {
		t.Fatalf("HandleMessage returned error: %v", err)
	}

	// A second transfer request while one is pending is just another
	// non-confirmation input: it re-prompts instead of replacing.
	reply, err := f.service.HandleMessage(context.Background(), "2348012345678", "send 9000 to 1234567890 access")
	if err != nil {
		t.Fatalf("HandleMessage returned error: %v", err)
	}
	if !strings.Contains(reply, "₦5,000") {
		t.Fatalf("expected the original pending amount in the re-prompt, got %q", reply)
	}
	if got := f.sessions.sessions["2348012345678"].Pending.AmountNaira; got != 5000 {
		t.Fatalf("pending transaction must not be replaced mid-confirmation, got amount %v", got)
	}
}

func TestPendingConfirmation_ConfirmExecutesExactlyOnce(t *testing.T) {
	f := newEngineFixture(t).withLinkedAccount()
	f.recipients.res = verifiedResolution()
	f.ai.replies = []groqclient.Message{
		transferToolReply(),
		{Role: domain.RoleAssistant, Content: "Anything else?"},
	}

	if _, err := f.service.HandleMessage(context.Background(), "2348012345678", "send 5000 to 1234567890 access"); err != nil {
		t.Fatalf("HandleMessage returned error: %v", err)
	}

	reply, err := f.service.HandleMessage(context.Background(), "2348012345678", "yes")
	if err != nil {
		t.Fatalf("HandleMessage returned error: %v", err)
	}
	if !strings.Contains(reply, "₦5,000") || !strings.Contains(reply, "John Doe") {
		t.Fatalf("expected a success reply, got %q", reply)
	}
	if f.banking.debitCalls != 1 {
		t.Fatalf("expected exactly one debit, got %d", f.banking.debitCalls)
	}
	if f.sessions.sessions["2348012345678"].Pending != nil {
		t.Fatal("execution must clear the pending transaction")
	}

	// A duplicate "confirm" lands in general conversation, not the executor.
	if _, err := f.service.HandleMessage(context.Background(), "2348012345678", "confirm"); err != nil {
		t.Fatalf("HandleMessage returned error: %v", err)
	}
	if f.banking.debitCalls != 1 {
		t.Fatalf("a duplicate confirm must never re-execute, got %d debits", f.banking.debitCalls)
	}
}
