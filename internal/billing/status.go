package billing

import (
	"strings"

	"github.com/toolforgehq/toolforge/internal/account"
)

// MapProviderStatus maps a provider status string onto the internal closed
// enumeration. Total: every input maps somewhere, and anything unrecognized
// (paused, incomplete, future provider additions) collapses to inactive so a
// new provider status can never grant access.
func MapProviderStatus(providerStatus string) account.SubscriptionStatus {
	switch strings.ToLower(providerStatus) {
	case "active":
		return account.StatusActive
	case "trialing":
		return account.StatusTrialing
	case "past_due":
		return account.StatusPastDue
	case "canceled", "cancelled":
		return account.StatusCanceled
	case "unpaid":
		return account.StatusUnpaid
	default:
		return account.StatusInactive
	}
}
