package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDeriveDisplayName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		names ProfileNames
		want  string
	}{
		{"preferred wins over spiritual", ProfileNames{SpiritualName: "S", PreferredName: "P"}, "P"},
		{"spiritual wins over worldly", ProfileNames{SpiritualName: "S", WorldlyName: "W"}, "S"},
		{"worldly alone", ProfileNames{WorldlyName: "W"}, "W"},
		{"all three set", ProfileNames{WorldlyName: "W", SpiritualName: "S", PreferredName: "P"}, "P"},
		{"all empty falls back", ProfileNames{}, "fallback"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, DeriveDisplayName(tt.names, "fallback"))
		})
	}
}

func TestInvitationStates(t *testing.T) {
	t.Parallel()

	created := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	inv := Invitation{
		Token:     "tok",
		Email:     "new@example.org",
		ExpiresAt: created.Add(InvitationTTL),
		CreatedAt: created,
	}

	require.True(t, inv.Active(created))
	require.True(t, inv.Active(created.Add(7*24*time.Hour-time.Minute)))
	require.False(t, inv.Active(created.Add(7*24*time.Hour+time.Second)))
	require.True(t, inv.Expired(created.Add(7*24*time.Hour+time.Second)))

	used := created.Add(time.Hour)
	inv.UsedAt = &used
	require.True(t, inv.Used())
	require.False(t, inv.Active(created.Add(2*time.Hour)))
}
