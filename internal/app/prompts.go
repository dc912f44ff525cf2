/**
 * @description
 * This file pins the system instructions and the fixed tool schema sent to the
 * AI inference provider on every turn. The schema is a contract: the
 * interpreter's positional recovery depends on these parameter orders staying
 * put, so changes here must be reflected there.
 *
 * @dependencies
 * - encoding/json: Standard Go library.
 * - pkg/groqclient: Tool schema types.
 */

package app

import (
	"encoding/json"

	"github.com/FredAbod/Project-Eureka-sub000/pkg/groqclient"
)

const systemPrompt = `You are Eureka, a friendly personal banking assistant on chat.
You help users check their linked bank accounts, review balances and transactions,
verify transfer recipients, and send money. Always use the provided tools for any
banking action instead of inventing data. Amounts are in Nigerian naira. Keep
replies short and conversational. Never ask for card numbers, PINs or passwords.`

func objectSchema(properties string, required ...string) json.RawMessage {
	req, _ := json.Marshal(required)
	return json.RawMessage(`{"type":"object","properties":` + properties + `,"required":` + string(req) + `}`)
}

// toolSchema is the fixed function list offered to the model.
var toolSchema = []groqclient.Tool{
	groqclient.NewTool("check_account_status",
		"Report whether the user has linked a bank account and whether debits are authorized.",
		objectSchema(`{}`)),
	groqclient.NewTool("initiate_account_connection",
		"Start linking the user's bank account and return the secure linking URL.",
		objectSchema(`{}`)),
	groqclient.NewTool("get_all_accounts",
		"List every bank account the user has linked.",
		objectSchema(`{}`)),
	groqclient.NewTool("get_total_balance",
		"Get the combined balance across all linked accounts.",
		objectSchema(`{}`)),
	groqclient.NewTool("check_balance",
		"Get the balance of one linked account.",
		objectSchema(`{"account_id":{"type":"string","description":"Linked account identifier; defaults to the active account"}}`)),
	groqclient.NewTool("get_transactions",
		"Get recent transactions for a linked account.",
		objectSchema(`{"account_id":{"type":"string","description":"Linked account identifier; defaults to the active account"}}`)),
	groqclient.NewTool("lookup_recipient",
		"Verify the account holder name for an account number at a bank before a transfer.",
		objectSchema(`{"account_number":{"type":"string","description":"10-digit account number"},"bank_name":{"type":"string","description":"Bank name, alias or code"}}`,
			"account_number", "bank_name")),
	groqclient.NewTool("transfer_money",
		"Send money from the user's linked account to a recipient. The user must confirm before execution.",
		objectSchema(`{"account_number":{"type":"string","description":"10-digit destination account number"},"bank_name":{"type":"string","description":"Destination bank name, alias or code"},"amount":{"type":"number","description":"Amount in naira"}}`,
			"account_number", "bank_name", "amount")),
	groqclient.NewTool("get_spending_insights",
		"Summarize the user's recent spending by category.",
		objectSchema(`{}`)),
}
