package menuclient

import "strings"

// DefaultCheckoutPhone receives orders when no number is configured.
const DefaultCheckoutPhone = "+963964355255"

// CheckoutLink returns the messaging hand-off link for phone. Only digits
// are kept, since wa.me rejects a leading plus or separators.
func CheckoutLink(phone string) string {
	if strings.TrimSpace(phone) == "" {
		phone = DefaultCheckoutPhone
	}
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return "https://wa.me/" + b.String()
}
