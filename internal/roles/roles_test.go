package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanModify(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		station string
		want    bool
	}{
		{"admin modifies anything", Admin, "Dental Check", true},
		{"super admin modifies anything", SuperAdmin, "Whatever", true},
		{"medical matches medical station", Medical, "Medical Check", true},
		{"medical matches arabic label", Medical, "فحص طبي", true},
		{"medical rejected on dental station", Medical, "Dental Check", false},
		{"dental matches dental station", Dental, "dental check", true},
		{"optic matches vision keyword", OpticEtVision, "Optic & Vision", true},
		{"optic matches arabic keyword", OpticEtVision, "فحص عيون", true},
		{"shabebik matches its station", Shabebik, "Shabebik Desk", true},
		{"unknown role rejected", "visitor", "Medical Check", false},
		{"empty role rejected", "", "Medical Check", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanModify(tt.role, tt.station))
		})
	}
}

func TestIsPrivileged(t *testing.T) {
	assert.True(t, IsPrivileged(Admin))
	assert.True(t, IsPrivileged(SuperAdmin))
	assert.False(t, IsPrivileged(Medical))
	assert.False(t, IsPrivileged(""))
}
