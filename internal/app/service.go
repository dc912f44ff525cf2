/**
 * @description
 * This file contains the core conversational engine of the assistant-service.
 * The `Service` struct runs one turn per inbound message: it re-reads the
 * user's session, routes the text either into the pending-transaction
 * confirmation flow or through the AI inference provider, dispatches any
 * interpreted tool invocation against the banking providers, and writes the
 * session back before replying.
 *
 * Key features:
 * - Exactly one outbound reply per inbound message, whatever goes wrong.
 * - While a transaction awaits confirmation, input never falls through to
 *   general conversation.
 * - Predictable domain failures are mapped to clarifying prompts; provider
 *   faults are logged in full and answered generically.
 *
 * @dependencies
 * - context, fmt, strconv, strings, time: Standard Go libraries.
 * - internal/banks, internal/domain, internal/interpreter, internal/mandate,
 *   internal/store: Core collaborators.
 * - pkg/groqclient, pkg/monoclient, pkg/rabbitmq: Provider clients and events.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/FredAbod/Project-Eureka-sub000/internal/banks"
	"github.com/FredAbod/Project-Eureka-sub000/internal/domain"
	"github.com/FredAbod/Project-Eureka-sub000/internal/interpreter"
	"github.com/FredAbod/Project-Eureka-sub000/internal/mandate"
	"github.com/FredAbod/Project-Eureka-sub000/internal/store"
	"github.com/FredAbod/Project-Eureka-sub000/pkg/groqclient"
	"github.com/FredAbod/Project-Eureka-sub000/pkg/monoclient"
	"github.com/FredAbod/Project-Eureka-sub000/pkg/rabbitmq"
)

const (
	// eventsExchange is the topic exchange audit events are published to.
	eventsExchange = "eureka.events"

	genericFailureReply = "Sorry, I couldn't complete that right now. Please try again in a moment."
)

// Inference is the AI provider call the engine depends on.
type Inference interface {
	ChatCompletion(ctx context.Context, messages []groqclient.Message, tools []groqclient.Tool) (*groqclient.ChatResponse, error)
}

// Recipients resolves and verifies transfer recipients.
type Recipients interface {
	Resolve(ctx context.Context, accountNumber, bankNameOrCode string) (*banks.Resolution, error)
}

// Authorizer advances the mandate state machine before any debit.
type Authorizer interface {
	EnsureAuthorized(ctx context.Context, account *domain.LinkedAccount, amountKobo int64) (*mandate.Authorization, error)
}

// Banking is the subset of the aggregator API the tools and executor call.
type Banking interface {
	GetAccountBalance(ctx context.Context, accountID string) (*monoclient.BalanceResponse, error)
	GetTransactions(ctx context.Context, accountID string, limit int) (*monoclient.TransactionsResponse, error)
	InitiateAccountLinking(ctx context.Context, name, phone string) (*monoclient.LinkingSessionResponse, error)
	DebitMandate(ctx context.Context, mandateID string, amountKobo int64, reference, narration, beneficiaryAccount, beneficiaryBankCode, beneficiaryName string) (*monoclient.DebitResponse, error)
}

// Service provides the conversational transaction engine.
type Service struct {
	sessions   store.SessionStore
	repo       store.Repository
	ai         Inference
	recipients Recipients
	mandates   Authorizer
	bank       Banking
	events     rabbitmq.Publisher

	confirmWindow time.Duration
	historyMax    int
	now           func() time.Time

	rateLimiter        *RedisTurnRateLimiter
	turnLimitPerMinute int
}

// NewService creates the conversational engine.
func NewService(
	sessions store.SessionStore,
	repo store.Repository,
	ai Inference,
	recipients Recipients,
	mandates Authorizer,
	bank Banking,
	events rabbitmq.Publisher,
	confirmWindow time.Duration,
	historyMax int,
) *Service {
	if events == nil {
		events = &rabbitmq.NopPublisher{}
	}
	if confirmWindow <= 0 {
		confirmWindow = 5 * time.Minute
	}
	if historyMax <= 0 {
		historyMax = 20
	}
	return &Service{
		sessions:      sessions,
		repo:          repo,
		ai:            ai,
		recipients:    recipients,
		mandates:      mandates,
		bank:          bank,
		events:        events,
		confirmWindow: confirmWindow,
		historyMax:    historyMax,
		now:           time.Now,
	}
}

// SetTurnRateLimiter enables the per-user inbound turn rate limit.
func (s *Service) SetTurnRateLimiter(limiter *RedisTurnRateLimiter, perMinute int) {
	s.rateLimiter = limiter
	s.turnLimitPerMinute = perMinute
}

// SetClock overrides the engine's clock. Used by tests to drive expiry.
func (s *Service) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// HandleMessage runs one conversational turn and returns the single outbound
// reply. The session is re-read here every time; it is never cached across
// turns.
func (s *Service) HandleMessage(ctx context.Context, userID, text string) (string, error) {
	text = strings.TrimSpace(text)
	if userID == "" || text == "" {
		return "", domain.NewUserInputError("message is missing a sender or text")
	}

	if s.rateLimiter != nil && s.turnLimitPerMinute > 0 {
		count, retryAfter, err := s.rateLimiter.ConsumeTurn(ctx, userID, s.turnLimitPerMinute, time.Minute)
		if err != nil {
			log.Printf("level=warn component=engine msg=\"rate limiter unavailable; allowing turn\" user_id=%s err=%v", userID, err)
		} else if count > s.turnLimitPerMinute {
			return fmt.Sprintf("You're sending messages a little fast — give me about %d seconds and try again.", retryAfter), nil
		}
	}

	session, err := s.sessions.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrSessionNotFound) {
			log.Printf("level=warn component=engine msg=\"session load failed; starting fresh\" user_id=%s err=%v", userID, err)
		}
		session = &domain.Session{UserID: userID}
	}

	var reply string
	if session.Pending != nil {
		// A pending transaction owns the conversation until it resolves.
		reply = s.handlePendingConfirmation(ctx, session, text)
	} else {
		reply = s.converse(ctx, session, text)
	}

	if reply == "" {
		reply = genericFailureReply
	}

	session.AppendMessage(domain.RoleUser, text, s.historyMax)
	session.AppendMessage(domain.RoleAssistant, reply, s.historyMax)
	if err := s.sessions.Save(ctx, session); err != nil {
		log.Printf("level=error component=engine msg=\"session save failed\" user_id=%s err=%v", userID, err)
	}

	return reply, nil
}

// converse sends the turn to the inference provider and dispatches the
// interpreted outcome.
func (s *Service) converse(ctx context.Context, session *domain.Session, text string) string {
	messages := make([]groqclient.Message, 0, len(session.History)+2)
	messages = append(messages, groqclient.Message{Role: domain.RoleSystem, Content: systemPrompt})
	for _, m := range session.History {
		messages = append(messages, groqclient.Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, groqclient.Message{Role: domain.RoleUser, Content: text})

	resp, err := s.ai.ChatCompletion(ctx, messages, toolSchema)
	if err != nil {
		log.Printf("level=error component=engine msg=\"inference call failed\" user_id=%s err=%v", session.UserID, err)
		return genericFailureReply
	}

	result := interpreter.Interpret(resp.FirstMessage())
	if result.Tool != nil {
		return s.dispatchTool(ctx, session, result.Tool)
	}
	if result.Text == "" {
		return genericFailureReply
	}
	return result.Text
}

// dispatchTool executes one interpreted tool invocation and returns the reply.
func (s *Service) dispatchTool(ctx context.Context, session *domain.Session, inv *interpreter.ToolInvocation) string {
	log.Printf("level=info component=engine msg=\"dispatching tool\" user_id=%s tool=%s recovered=%t", session.UserID, inv.Name, inv.Recovered)

	switch inv.Name {
	case "check_account_status":
		return s.toolAccountStatus(ctx, session)
	case "initiate_account_connection":
		return s.toolInitiateConnection(ctx, session)
	case "get_all_accounts":
		return s.toolListAccounts(ctx, session)
	case "get_total_balance":
		return s.toolTotalBalance(ctx, session)
	case "check_balance":
		return s.toolCheckBalance(ctx, session, inv)
	case "get_transactions":
		return s.toolTransactions(ctx, session, inv)
	case "lookup_recipient":
		return s.toolLookupRecipient(ctx, session, inv)
	case "transfer_money":
		return s.beginTransfer(ctx, session, inv)
	case "get_spending_insights":
		return s.toolSpendingInsights(ctx, session)
	default:
		return "I can't help with that one yet."
	}
}

func (s *Service) toolAccountStatus(ctx context.Context, session *domain.Session) string {
	account, err := s.repo.FindActiveAccountByUserID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return "You don't have a bank account linked yet. Say \"link my account\" and I'll set it up."
		}
		return s.providerFailureReply(session.UserID, "account status", err)
	}

	switch account.MandateStatus {
	case domain.MandateActive:
		return fmt.Sprintf("Your %s account (%s) is linked and transfers are fully authorized.", account.BankName, maskAccountNumber(account.AccountNumber))
	case domain.MandatePending:
		return fmt.Sprintf("Your %s account (%s) is linked, but the debit authorization is still pending approval.", account.BankName, maskAccountNumber(account.AccountNumber))
	default:
		return fmt.Sprintf("Your %s account (%s) is linked. I'll ask you to authorize debits the first time you send money.", account.BankName, maskAccountNumber(account.AccountNumber))
	}
}

func (s *Service) toolInitiateConnection(ctx context.Context, session *domain.Session) string {
	linking, err := s.bank.InitiateAccountLinking(ctx, "", session.UserID)
	if err != nil {
		return s.providerFailureReply(session.UserID, "account linking", err)
	}
	return fmt.Sprintf("Let's get your bank account connected. Open this secure link to continue: %s", linking.Data.LinkingURL)
}

func (s *Service) toolListAccounts(ctx context.Context, session *domain.Session) string {
	accounts, err := s.repo.FindAccountsByUserID(ctx, session.UserID)
	if err != nil {
		return s.providerFailureReply(session.UserID, "list accounts", err)
	}
	if len(accounts) == 0 {
		return "You don't have any linked accounts yet. Say \"link my account\" to add one."
	}

	var b strings.Builder
	b.WriteString("Here are your linked accounts:\n")
	for i, acc := range accounts {
		fmt.Fprintf(&b, "%d. %s — %s (%s)\n", i+1, acc.BankName, maskAccountNumber(acc.AccountNumber), acc.MandateStatus)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *Service) toolTotalBalance(ctx context.Context, session *domain.Session) string {
	accounts, err := s.repo.FindAccountsByUserID(ctx, session.UserID)
	if err != nil {
		return s.providerFailureReply(session.UserID, "total balance", err)
	}
	if len(accounts) == 0 {
		return "You don't have any linked accounts yet, so there's no balance to total."
	}

	var total int64
	for _, acc := range accounts {
		balance, err := s.bank.GetAccountBalance(ctx, acc.ProviderAccountID)
		if err != nil {
			return s.providerFailureReply(session.UserID, "total balance", err)
		}
		total += balance.Data.Balance
	}
	return fmt.Sprintf("Your total balance across %d account(s) is %s.", len(accounts), domain.FormatNaira(domain.KoboToNaira(total)))
}

func (s *Service) toolCheckBalance(ctx context.Context, session *domain.Session, inv *interpreter.ToolInvocation) string {
	account, err := s.repo.FindActiveAccountByUserID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return "You need to link a bank account before I can check a balance."
		}
		return s.providerFailureReply(session.UserID, "check balance", err)
	}

	providerAccountID := account.ProviderAccountID
	if requested := argString(inv.Arguments, "account_id"); requested != "" {
		providerAccountID = requested
	}

	balance, err := s.bank.GetAccountBalance(ctx, providerAccountID)
	if err != nil {
		return s.providerFailureReply(session.UserID, "check balance", err)
	}
	return fmt.Sprintf("Your %s account balance is %s.", account.BankName, domain.FormatNaira(domain.KoboToNaira(balance.Data.Balance)))
}

func (s *Service) toolTransactions(ctx context.Context, session *domain.Session, inv *interpreter.ToolInvocation) string {
	account, err := s.repo.FindActiveAccountByUserID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return "You need to link a bank account before I can fetch transactions."
		}
		return s.providerFailureReply(session.UserID, "transactions", err)
	}

	providerAccountID := account.ProviderAccountID
	if requested := argString(inv.Arguments, "account_id"); requested != "" {
		providerAccountID = requested
	}

	txns, err := s.bank.GetTransactions(ctx, providerAccountID, 10)
	if err != nil {
		return s.providerFailureReply(session.UserID, "transactions", err)
	}
	if len(txns.Data) == 0 {
		return "No recent transactions on that account."
	}

	var b strings.Builder
	b.WriteString("Your recent transactions:\n")
	for _, t := range txns.Data {
		sign := "-"
		if strings.EqualFold(t.Type, "credit") {
			sign = "+"
		}
		fmt.Fprintf(&b, "%s %s%s — %s\n", t.Date, sign, domain.FormatNaira(domain.KoboToNaira(t.Amount)), t.Narration)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *Service) toolLookupRecipient(ctx context.Context, session *domain.Session, inv *interpreter.ToolInvocation) string {
	accountNumber := argString(inv.Arguments, "account_number")
	bankName := argString(inv.Arguments, "bank_name", "bank_code")

	res, err := s.recipients.Resolve(ctx, accountNumber, bankName)
	s.publishRecipientLookup(ctx, session.UserID, accountNumber, res)
	if err != nil {
		return s.domainFailureReply(session.UserID, "recipient lookup", err)
	}

	bankLabel := res.Bank.Name
	if bankLabel == "" {
		bankLabel = "bank code " + res.Bank.Code
	}
	return fmt.Sprintf("That account (%s, %s) belongs to %s.", res.AccountNumber, bankLabel, res.AccountName)
}

func (s *Service) toolSpendingInsights(ctx context.Context, session *domain.Session) string {
	account, err := s.repo.FindActiveAccountByUserID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return "Link a bank account first and I can break down your spending."
		}
		return s.providerFailureReply(session.UserID, "spending insights", err)
	}

	txns, err := s.bank.GetTransactions(ctx, account.ProviderAccountID, 50)
	if err != nil {
		return s.providerFailureReply(session.UserID, "spending insights", err)
	}

	buckets := map[string]int64{}
	var totalSpent int64
	for _, t := range txns.Data {
		if !strings.EqualFold(t.Type, "debit") {
			continue
		}
		bucket := t.Category
		if bucket == "" {
			bucket = firstWord(t.Narration)
		}
		buckets[bucket] += t.Amount
		totalSpent += t.Amount
	}
	if totalSpent == 0 {
		return "I don't see any spending on your recent transactions."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You've spent %s recently. Top areas:\n", domain.FormatNaira(domain.KoboToNaira(totalSpent)))
	for bucket, amount := range buckets {
		fmt.Fprintf(&b, "- %s: %s\n", bucket, domain.FormatNaira(domain.KoboToNaira(amount)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// publishRecipientLookup emits the audit event for a name verification.
func (s *Service) publishRecipientLookup(ctx context.Context, userID, accountNumber string, res *banks.Resolution) {
	event := domain.RecipientLookupEvent{
		UserID:        userID,
		AccountNumber: accountNumber,
		Timestamp:     s.now().UTC(),
	}
	if res != nil {
		event.BankCode = res.Bank.Code
		event.Verified = res.Verified
		event.Source = res.Source
	}
	if err := s.events.Publish(ctx, eventsExchange, domain.EventRecipientLookup, event); err != nil {
		log.Printf("level=warn component=engine msg=\"audit publish failed\" user_id=%s event=%s err=%v", userID, domain.EventRecipientLookup, err)
	}
}

// domainFailureReply maps the error taxonomy to a user-facing reply.
func (s *Service) domainFailureReply(userID, op string, err error) string {
	var uie *domain.UserInputError
	if errors.As(err, &uie) {
		return uie.Msg
	}
	var vf *domain.VerificationFailure
	if errors.As(err, &vf) {
		return vf.Msg
	}
	var ar *domain.AuthorizationRequired
	if errors.As(err, &ar) {
		return ar.Msg
	}
	return s.providerFailureReply(userID, op, err)
}

// providerFailureReply logs the full fault and answers generically.
func (s *Service) providerFailureReply(userID, op string, err error) string {
	log.Printf("level=error component=engine msg=\"provider fault\" user_id=%s op=%q err=%v", userID, op, err)
	return genericFailureReply
}

// argString returns the first present, non-empty string form of the named
// arguments. Recovered invocations always carry strings; canonical ones may
// carry numbers.
func argString(args map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		v, ok := args[key]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			if strings.TrimSpace(t) != "" {
				return strings.TrimSpace(t)
			}
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64)
		}
	}
	return ""
}

// argFloat coerces the named argument to a float64, tolerating string values
// with currency symbols and thousands separators.
func argFloat(args map[string]interface{}, keys ...string) (float64, bool) {
	for _, key := range keys {
		v, ok := args[key]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case float64:
			return t, true
		case string:
			cleaned := strings.NewReplacer("₦", "", ",", "", " ", "").Replace(t)
			if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// maskAccountNumber hides all but the last four digits for display and logs.
func maskAccountNumber(accountNumber string) string {
	if len(accountNumber) <= 4 {
		return accountNumber
	}
	return strings.Repeat("*", len(accountNumber)-4) + accountNumber[len(accountNumber)-4:]
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "other"
	}
	return strings.ToLower(fields[0])
}
