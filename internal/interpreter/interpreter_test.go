package interpreter

import (
	"testing"

	"github.com/FredAbod/Project-Eureka-sub000/pkg/groqclient"
)

func TestInterpret_CanonicalToolCallWins(t *testing.T) {
	msg := &groqclient.Message{
		Role:    "assistant",
		Content: "ignored text",
		ToolCalls: []groqclient.ToolCall{
			{Function: groqclient.ToolCallFunction{Name: "check_balance", Arguments: `{"account_id":"acc_1"}`}},
			{Function: groqclient.ToolCallFunction{Name: "transfer_money", Arguments: `{"amount":5000}`}},
		},
	}

	result := Interpret(msg)
	if result.Tool == nil {
		t.Fatalf("expected a tool invocation, got text %q", result.Text)
	}
	if result.Tool.Name != "check_balance" {
		t.Fatalf("expected only the first tool call to be honored, got %q", result.Tool.Name)
	}
	if result.Tool.Recovered {
		t.Fatal("canonical tool calls must not be marked recovered")
	}
	if result.Tool.Arguments["account_id"] != "acc_1" {
		t.Fatalf("unexpected arguments: %#v", result.Tool.Arguments)
	}
}

func TestInterpret_PlainTextPassesThrough(t *testing.T) {
	msg := &groqclient.Message{Role: "assistant", Content: "Your balance is ₦5,000."}

	result := Interpret(msg)
	if result.Tool != nil {
		t.Fatalf("expected plain text, got tool %q", result.Tool.Name)
	}
	if result.Text != "Your balance is ₦5,000." {
		t.Fatalf("expected text unchanged, got %q", result.Text)
	}
}

func TestInterpret_RecoversFunctionTagWithJSON(t *testing.T) {
	msg := &groqclient.Message{
		Role:    "assistant",
		Content: `<function=lookup_recipient>{"account_number": "0123456789", "bank_name": "GTB"}</function>`,
	}

	result := Interpret(msg)
	if result.Tool == nil {
		t.Fatalf("expected recovery, got text %q", result.Text)
	}
	if result.Tool.Name != "lookup_recipient" || !result.Tool.Recovered {
		t.Fatalf("unexpected invocation: %#v", result.Tool)
	}
	if result.Tool.Arguments["account_number"] != "0123456789" {
		t.Fatalf("unexpected arguments: %#v", result.Tool.Arguments)
	}
	if result.Tool.Arguments["bank_name"] != "GTB" {
		t.Fatalf("unexpected arguments: %#v", result.Tool.Arguments)
	}
}

func TestInterpret_RecoversPythonTagPositionalCall(t *testing.T) {
	msg := &groqclient.Message{
		Role:    "assistant",
		Content: `<|python_tag|>lookup_recipient("1234567890", "Zenith")`,
	}

	result := Interpret(msg)
	if result.Tool == nil {
		t.Fatalf("expected recovery, got text %q", result.Text)
	}
	if result.Tool.Name != "lookup_recipient" {
		t.Fatalf("expected lookup_recipient, got %q", result.Tool.Name)
	}
	if result.Tool.Arguments["account_number"] != "1234567890" {
		t.Fatalf("positional account_number mapping wrong: %#v", result.Tool.Arguments)
	}
	if result.Tool.Arguments["bank_name"] != "Zenith" {
		t.Fatalf("positional bank_name mapping wrong: %#v", result.Tool.Arguments)
	}
}

func TestInterpret_RecoversKeyValueCall(t *testing.T) {
	msg := &groqclient.Message{
		Role:    "assistant",
		Content: `transfer_money(account_number=0123456789, bank_name="Access Bank", amount=2500)`,
	}

	result := Interpret(msg)
	if result.Tool == nil {
		t.Fatalf("expected recovery, got text %q", result.Text)
	}
	if result.Tool.Name != "transfer_money" {
		t.Fatalf("expected transfer_money, got %q", result.Tool.Name)
	}
	if result.Tool.Arguments["bank_name"] != "Access Bank" {
		t.Fatalf("quoted value not unquoted: %#v", result.Tool.Arguments)
	}
	if result.Tool.Arguments["amount"] != "2500" {
		t.Fatalf("recovered values must stay strings: %#v", result.Tool.Arguments)
	}
}

func TestInterpret_UnknownFunctionNameStaysProse(t *testing.T) {
	msg := &groqclient.Message{
		Role:    "assistant",
		Content: "You can compute that as f(x) and g(y, z) if you like.",
	}

	result := Interpret(msg)
	if result.Tool != nil {
		t.Fatalf("prose with call-shaped fragments must not dispatch, got tool %q", result.Tool.Name)
	}
	if result.Text != "You can compute that as f(x) and g(y, z) if you like." {
		t.Fatalf("prose was altered: %q", result.Text)
	}
}

func TestInterpret_TooManyPositionalArgumentsNotRecovered(t *testing.T) {
	msg := &groqclient.Message{
		Role:    "assistant",
		Content: `check_balance("acc_1", "acc_2")`,
	}

	result := Interpret(msg)
	if result.Tool != nil {
		t.Fatalf("over-long positional list must not be guessed at, got %#v", result.Tool)
	}
}

func TestInterpret_SanitizesStrayFragmentsAroundText(t *testing.T) {
	msg := &groqclient.Message{
		Role:    "assistant",
		Content: "Here you go.<|eom_id|>",
	}

	result := Interpret(msg)
	if result.Tool != nil {
		t.Fatalf("expected text, got tool %q", result.Tool.Name)
	}
	if result.Text != "Here you go." {
		t.Fatalf("marker not stripped: %q", result.Text)
	}
}

func TestInterpret_GlitchMessageWhenOnlyDebrisRemains(t *testing.T) {
	msg := &groqclient.Message{
		Role:    "assistant",
		Content: `<function=do_something_unknown`,
	}

	result := Interpret(msg)
	if result.Tool != nil {
		t.Fatalf("expected text, got tool %q", result.Tool.Name)
	}
	if result.Text != GlitchMessage {
		t.Fatalf("expected glitch substitution, got %q", result.Text)
	}
}

func TestInterpret_EmptyContentWithoutMarkersStaysEmpty(t *testing.T) {
	msg := &groqclient.Message{Role: "assistant", Content: "   "}

	result := Interpret(msg)
	if result.Tool != nil {
		t.Fatalf("expected text, got tool %q", result.Tool.Name)
	}
	if result.Text != "" {
		t.Fatalf("expected empty text, got %q", result.Text)
	}
}

func TestInterpret_MalformedCanonicalArgumentsFallThroughToText(t *testing.T) {
	msg := &groqclient.Message{
		Role:    "assistant",
		Content: "I'd send that with transfer_money if you give me the details.",
		ToolCalls: []groqclient.ToolCall{
			{Function: groqclient.ToolCallFunction{Name: "transfer_money", Arguments: `{not json`}},
		},
	}

	result := Interpret(msg)
	if result.Tool != nil {
		t.Fatalf("broken canonical arguments must not dispatch, got %#v", result.Tool)
	}
	if result.Text == "" {
		t.Fatal("expected the prose to survive")
	}
}

func TestInterpret_NilMessageYieldsGlitch(t *testing.T) {
	result := Interpret(nil)
	if result.Text != GlitchMessage {
		t.Fatalf("expected glitch message, got %q", result.Text)
	}
}
