package shaping

import (
	"strings"

	"github.com/loganlanou/colink-venture/internal/backend"
)

// ExcludeOwner drops the businesses owned by userID.
func ExcludeOwner(list []backend.Business, userID string) []backend.Business {
	out := make([]backend.Business, 0, len(list))
	for _, b := range list {
		if userID != "" && b.OwnerID == userID {
			continue
		}
		out = append(out, b)
	}
	return out
}

// Filter keeps businesses whose name, description or industry contain
// query, ignoring case. A blank query keeps everything.
func Filter(list []backend.Business, query string) []backend.Business {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return list
	}

	out := make([]backend.Business, 0, len(list))
	for _, b := range list {
		if strings.Contains(strings.ToLower(b.Name), q) ||
			strings.Contains(strings.ToLower(b.Description), q) ||
			strings.Contains(strings.ToLower(b.Industry), q) {
			out = append(out, b)
		}
	}
	return out
}

// FilterAccountType keeps businesses of one account type. Empty keeps all.
func FilterAccountType(list []backend.Business, accountType string) []backend.Business {
	if accountType == "" {
		return list
	}
	out := make([]backend.Business, 0, len(list))
	for _, b := range list {
		if b.AccountType == accountType {
			out = append(out, b)
		}
	}
	return out
}
