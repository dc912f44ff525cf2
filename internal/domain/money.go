/**
 * @description
 * Currency helpers. Users speak in naira (major unit); every provider call is
 * made in kobo (integer minor unit). Formatting groups thousands and drops the
 * decimal part when it is zero, matching the confirmation prompts shown in chat.
 *
 * @dependencies
 * - fmt, math, strings: Standard Go libraries.
 */

package domain

import (
	"fmt"
	"math"
	"strings"
)

// NairaToKobo converts a user-facing naira amount to integer kobo, rounding to
// the nearest kobo so no fractional minor units reach a provider.
func NairaToKobo(naira float64) int64 {
	return int64(math.Round(naira * 100))
}

// KoboToNaira converts integer kobo back to the user-facing naira amount.
func KoboToNaira(kobo int64) float64 {
	return float64(kobo) / 100
}

// FormatNaira renders an amount like "₦5,000" or "₦1,250.50".
func FormatNaira(naira float64) string {
	negative := naira < 0
	if negative {
		naira = -naira
	}

	kobo := int64(math.Round(naira * 100))
	whole := kobo / 100
	frac := kobo % 100

	digits := fmt.Sprintf("%d", whole)
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)

	out := "₦" + strings.Join(groups, ",")
	if frac > 0 {
		out += fmt.Sprintf(".%02d", frac)
	}
	if negative {
		out = "-" + out
	}
	return out
}
