/**
 * @description
 * This package normalizes the AI provider's reply into exactly one of two
 * variants: a structured tool invocation or plain text. Llama-family models
 * sometimes "hallucinate" tool calls into the text channel instead of the
 * structured one; this package recovers intent from the shapes seen in
 * production and never fails a turn on malformed input — worst case the user
 * gets sanitized text.
 *
 * Recognized degraded shapes, tried in order:
 *   1. <function=name>{...json...}</function> (closing tag either side of the JSON)
 *   2. name(arg, arg, ...) — optionally prefixed by <|python_tag|> — parsed as
 *      key=value pairs when possible, else strictly positionally against a
 *      pinned parameter order for specific function names.
 *
 * @dependencies
 * - encoding/json, regexp, strings: Standard Go libraries.
 * - pkg/groqclient: The raw provider message shape.
 */

package interpreter

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/FredAbod/Project-Eureka-sub000/pkg/groqclient"
)

// GlitchMessage replaces output that was nothing but unparsable tool-call
// debris, so provider-internal formatting never leaks to the user.
const GlitchMessage = "Sorry, I hit a technical glitch there. Could you rephrase that?"

// ToolInvocation is an interpreted, well-typed tool call.
type ToolInvocation struct {
	Name      string
	Arguments map[string]interface{}
	// Recovered is true when the call was salvaged from degraded free text
	// rather than the canonical structured channel. Recovered argument values
	// are always strings; callers must coerce and re-validate.
	Recovered bool
}

// Result is the interpreter's single outcome per provider response: either
// Tool is non-nil, or Text carries sanitized prose.
type Result struct {
	Tool *ToolInvocation
	Text string
}

// knownTools is every function name in the schema given to the provider. Text
// fragments naming anything else are treated as prose, not tool calls.
var knownTools = map[string]bool{
	"check_account_status":        true,
	"initiate_account_connection": true,
	"get_all_accounts":            true,
	"get_total_balance":           true,
	"check_balance":               true,
	"get_transactions":            true,
	"lookup_recipient":            true,
	"transfer_money":              true,
	"get_spending_insights":       true,
}

// positionalOrder pins the parameter order used when a hallucinated call
// carries bare positional arguments. Only these functions are recoverable
// positionally; the order is a tested contract, not a guess.
var positionalOrder = map[string][]string{
	"lookup_recipient": {"account_number", "bank_name"},
	"transfer_money":   {"account_number", "bank_name", "amount"},
	"check_balance":    {"account_id"},
	"get_transactions": {"account_id"},
}

var (
	// <function=name>{json}</function> and <function=name{json}> variants.
	funcTagJSONAfter  = regexp.MustCompile(`<function=([a-zA-Z_][\w]*)>\s*(\{[^<>]*\})\s*(?:</function>)?`)
	funcTagJSONInside = regexp.MustCompile(`<function=([a-zA-Z_][\w]*)\s*(\{[^<>]*\})\s*(?:>|/>|</function>)`)

	// name(args) with an optional llama python tag prefix.
	callShape = regexp.MustCompile(`(?:<\|python_tag\|>)?\s*([a-zA-Z_][\w]*)\(([^()]*)\)`)

	// Residual provider-internal markers stripped by the sanitizer.
	pythonTagMarker  = regexp.MustCompile(`<\|python_tag\|>`)
	eomMarker        = regexp.MustCompile(`<\|eom_id\|>|<\|eot_id\|>`)
	functionFragment = regexp.MustCompile(`<function=[^<>]*>?|</function>`)
)

// Interpret turns one raw provider message into a Result. It never returns an
// error: malformed input degrades to sanitized text.
func Interpret(msg *groqclient.Message) Result {
	if msg == nil {
		return Result{Text: GlitchMessage}
	}

	// 1. Canonical structured channel. Only the first call is honored.
	if len(msg.ToolCalls) > 0 {
		call := msg.ToolCalls[0]
		if knownTools[call.Function.Name] {
			args := map[string]interface{}{}
			if strings.TrimSpace(call.Function.Arguments) != "" {
				if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
					// Degraded argument payload: fall through to text recovery.
					args = nil
				}
			}
			if args != nil {
				return Result{Tool: &ToolInvocation{Name: call.Function.Name, Arguments: args}}
			}
		}
	}

	// 2. Hallucination recovery from the text channel.
	if tool := recoverFromText(msg.Content); tool != nil {
		return Result{Tool: tool}
	}

	// 3. Sanitized prose.
	return Result{Text: sanitize(msg.Content)}
}

// recoverFromText scans free text for the recognized hallucination shapes.
func recoverFromText(content string) *ToolInvocation {
	if content == "" {
		return nil
	}

	for _, re := range []*regexp.Regexp{funcTagJSONAfter, funcTagJSONInside} {
		if m := re.FindStringSubmatch(content); m != nil && knownTools[m[1]] {
			args := map[string]interface{}{}
			if err := json.Unmarshal([]byte(m[2]), &args); err == nil {
				return &ToolInvocation{Name: m[1], Arguments: args, Recovered: true}
			}
		}
	}

	for _, m := range callShape.FindAllStringSubmatch(content, -1) {
		name := m[1]
		if !knownTools[name] {
			continue
		}
		if args := parseCallArguments(name, m[2]); args != nil {
			return &ToolInvocation{Name: name, Arguments: args, Recovered: true}
		}
	}

	return nil
}

// knownArgKeys is the whitelist of argument names accepted from key=value
// hallucinations. Anything else (e.g. arithmetic in prose) is not a call.
var knownArgKeys = map[string]bool{
	"account_number": true,
	"bank_name":      true,
	"bank_code":      true,
	"amount":         true,
	"account_id":     true,
	"recipient_name": true,
}

// parseCallArguments parses a bare parenthesized argument list. key=value
// pairs win when every key is whitelisted; otherwise the list is mapped
// positionally onto the pinned order for that function. Returns nil when the
// call is not safely recoverable.
func parseCallArguments(name, raw string) map[string]interface{} {
	parts := splitArguments(raw)

	// key=value form first.
	named := map[string]interface{}{}
	allNamed := len(parts) > 0
	for _, part := range parts {
		eq := strings.Index(part, "=")
		if eq <= 0 {
			allNamed = false
			break
		}
		key := strings.TrimSpace(part[:eq])
		if !knownArgKeys[key] {
			allNamed = false
			break
		}
		named[key] = unquote(part[eq+1:])
	}
	if allNamed {
		return named
	}

	// Positional form: only for functions whose order is pinned.
	order, ok := positionalOrder[name]
	if !ok {
		return nil
	}
	if len(parts) == 0 || len(parts) > len(order) {
		return nil
	}
	args := map[string]interface{}{}
	for i, part := range parts {
		args[order[i]] = unquote(part)
	}
	return args
}

// splitArguments splits a comma-separated argument list, respecting quotes.
func splitArguments(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var parts []string
	var current strings.Builder
	var quote rune
	for _, c := range raw {
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
			current.WriteRune(c)
		case c == '"' || c == '\'':
			quote = c
			current.WriteRune(c)
		case c == ',':
			parts = append(parts, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(c)
		}
	}
	parts = append(parts, strings.TrimSpace(current.String()))

	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// unquote strips one layer of matching quotes and surrounding space.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// sanitize deletes residual tool-call fragments — even ones that never fully
// matched the recovery grammar — and substitutes the glitch message when that
// deletion empties a response that plainly contained tag debris.
func sanitize(content string) string {
	original := content
	hadMarker := strings.Contains(content, "<function=") ||
		strings.Contains(content, "</function>") ||
		pythonTagMarker.MatchString(content) ||
		eomMarker.MatchString(content)

	content = funcTagJSONAfter.ReplaceAllString(content, "")
	content = funcTagJSONInside.ReplaceAllString(content, "")
	content = functionFragment.ReplaceAllString(content, "")
	content = pythonTagMarker.ReplaceAllString(content, "")
	content = eomMarker.ReplaceAllString(content, "")
	content = strings.TrimSpace(content)

	if content == "" && strings.TrimSpace(original) != "" && hadMarker {
		return GlitchMessage
	}
	return content
}
