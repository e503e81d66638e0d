// Package roles maps operator roles to the stations they may modify.
package roles

import "strings"

const (
	Admin         = "admin"
	SuperAdmin    = "super_admin"
	Shabebik      = "shabebik"
	OpticEtVision = "optic_et_vision"
	Medical       = "medical"
	Dental        = "dental"
)

// IsPrivileged reports whether the role bypasses per-station checks.
func IsPrivileged(role string) bool {
	return role == Admin || role == SuperAdmin
}

// CanModify reports whether a role may check attendees in or out at the
// named station. Station names carry bilingual labels, so matching is
// by keyword containment on the lowercased name.
func CanModify(role, stationName string) bool {
	if IsPrivileged(role) {
		return true
	}

	name := strings.ToLower(stationName)

	switch role {
	case Shabebik:
		return containsAny(name, "shabebik", "شبابيك")
	case OpticEtVision:
		return containsAny(name, "optic", "vision", "بصر", "عيون")
	case Medical:
		return containsAny(name, "medical", "طبي")
	case Dental:
		return containsAny(name, "dental", "أسنان")
	default:
		return false
	}
}

func containsAny(s string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}

	return false
}
