package flow

import "strings"

// Domestic phone number lengths that indicate a missing country prefix.
// Covers landline and mobile numbers with area code.
const (
	minDomesticDigits = 10
	maxDomesticDigits = 11
)

// NormalizePhone canonicalizes a contact phone: strips every non-digit and,
// when the number looks domestic (no country prefix, domestic digit count),
// prepends the tenant's default country code.
func NormalizePhone(phone, defaultCountryCode string) string {
	var sb strings.Builder
	sb.Grow(len(phone))
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	digits := sb.String()

	if defaultCountryCode != "" &&
		len(digits) >= minDomesticDigits && len(digits) <= maxDomesticDigits &&
		!strings.HasPrefix(digits, defaultCountryCode) {
		return defaultCountryCode + digits
	}
	return digits
}
