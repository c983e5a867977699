package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    Status
		wantErr bool
	}{
		{"PENDING", StatusPending, false},
		{"approved", StatusApproved, false},
		{" Rejected ", StatusRejected, false},
		{"done", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStatus(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatus_IsDecided(t *testing.T) {
	decided, err := StatusPending.IsDecided()
	require.NoError(t, err)
	assert.False(t, decided)

	for _, s := range []Status{StatusApproved, StatusRejected} {
		decided, err := s.IsDecided()
		require.NoError(t, err)
		assert.True(t, decided)
	}

	_, err = Status("ARCHIVED").IsDecided()
	assert.Error(t, err)
}

func TestPriority_Rank(t *testing.T) {
	assert.Greater(t, PriorityHigh.Rank(), PriorityMedium.Rank())
	assert.Greater(t, PriorityMedium.Rank(), PriorityLow.Rank())
	assert.Equal(t, 0, Priority("URGENT").Rank())
	assert.False(t, Priority("").Valid())
	assert.True(t, PriorityLow.Valid())

	p, err := ParsePriority("high")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, p)

	_, err = ParsePriority("critical")
	assert.Error(t, err)
}

func TestRole_CanDecideTasks(t *testing.T) {
	tests := []struct {
		role    Role
		want    bool
		wantErr bool
	}{
		{RoleAdmin, true, false},
		{RoleManager, true, false},
		{RoleUser, false, false},
		{Role("GUEST"), false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			got, err := tt.role.CanDecideTasks()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("manager")
	require.NoError(t, err)
	assert.Equal(t, RoleManager, r)
	assert.True(t, r.Valid())

	_, err = ParseRole("root")
	assert.Error(t, err)
	assert.False(t, Role("root").Valid())
}
