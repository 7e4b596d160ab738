package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestProjectStatusAt(t *testing.T) {
	today := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

	t.Run("no end date is ongoing", func(t *testing.T) {
		p := &Project{StartDate: date(2025, 1, 1)}
		assert.Equal(t, ProjectStatusOngoing, p.StatusAt(today))
	})

	t.Run("future end date is ongoing", func(t *testing.T) {
		end := date(2025, 12, 31)
		p := &Project{StartDate: date(2025, 1, 1), EndDate: &end}
		assert.Equal(t, ProjectStatusOngoing, p.StatusAt(today))
	})

	// A project ending today is still ongoing through the day.
	t.Run("end date today is ongoing", func(t *testing.T) {
		end := date(2025, 6, 15)
		p := &Project{StartDate: date(2025, 1, 1), EndDate: &end}
		assert.Equal(t, ProjectStatusOngoing, p.StatusAt(today))
	})

	t.Run("past end date is completed", func(t *testing.T) {
		end := date(2025, 6, 14)
		p := &Project{StartDate: date(2025, 1, 1), EndDate: &end}
		assert.Equal(t, ProjectStatusCompleted, p.StatusAt(today))
	})
}

func TestInviteExpiredAt(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	window := 30 * 24 * time.Hour

	fresh := &Invite{CreatedAt: now.Add(-29 * 24 * time.Hour)}
	assert.False(t, fresh.ExpiredAt(now, window))

	stale := &Invite{CreatedAt: now.Add(-31 * 24 * time.Hour)}
	assert.True(t, stale.ExpiredAt(now, window))

	boundary := &Invite{CreatedAt: now.Add(-window)}
	assert.False(t, boundary.ExpiredAt(now, window))
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleCompanyAdmin.Valid())
	assert.True(t, RoleUser.Valid())
	assert.False(t, Role("superuser").Valid())
	assert.False(t, Role("").Valid())
}
