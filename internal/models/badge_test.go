package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBadgeForCompletedTasks(t *testing.T) {
	cases := []struct {
		count int
		badge string
	}{
		{0, BadgeBronze},
		{1, BadgeBronze},
		{19, BadgeBronze},
		{20, BadgeSilver},
		{49, BadgeSilver},
		{50, BadgeGold},
		{99, BadgeGold},
		{100, BadgePlatinum},
		{250, BadgePlatinum},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.badge, BadgeForCompletedTasks(tc.count), "count=%d", tc.count)
	}
}

func TestProgressToNextBadge_Bronze(t *testing.T) {
	p := ProgressToNextBadge(10)
	assert.Equal(t, BadgeBronze, p.Current)
	assert.Equal(t, BadgeSilver, p.Next)
	assert.InDelta(t, 0.5, p.Progress, 0.001)
	assert.Equal(t, 10, p.Needed)
}

func TestProgressToNextBadge_Silver(t *testing.T) {
	p := ProgressToNextBadge(35)
	assert.Equal(t, BadgeSilver, p.Current)
	assert.Equal(t, BadgeGold, p.Next)
	assert.InDelta(t, 0.5, p.Progress, 0.001)
	assert.Equal(t, 15, p.Needed)
}

func TestProgressToNextBadge_Gold(t *testing.T) {
	p := ProgressToNextBadge(75)
	assert.Equal(t, BadgeGold, p.Current)
	assert.Equal(t, BadgePlatinum, p.Next)
	assert.InDelta(t, 0.5, p.Progress, 0.001)
	assert.Equal(t, 25, p.Needed)
}

func TestProgressToNextBadge_PlatinumTerminal(t *testing.T) {
	p := ProgressToNextBadge(100)
	assert.Equal(t, BadgePlatinum, p.Current)
	assert.Equal(t, BadgePlatinum, p.Next)
	assert.Equal(t, 1.0, p.Progress)
	assert.Equal(t, 0, p.Needed)
}

func TestProgressToNextBadge_ExactThreshold(t *testing.T) {
	p := ProgressToNextBadge(20)
	assert.Equal(t, BadgeSilver, p.Current)
	assert.Equal(t, 0.0, p.Progress)
	assert.Equal(t, 30, p.Needed)
}

func TestRoundRating(t *testing.T) {
	assert.Equal(t, 4.7, RoundRating(4.666666))
	assert.Equal(t, 4.6, RoundRating(4.649999))
	assert.Equal(t, 5.0, RoundRating(5.0))
	assert.Equal(t, 0.0, RoundRating(0))
}

func TestWriterProfileBadge(t *testing.T) {
	profile := &WriterProfile{CompletedTasks: 57}
	assert.Equal(t, BadgeGold, profile.Badge())
}

func TestPlanByTier(t *testing.T) {
	plan, ok := PlanByTier(TierPro)
	assert.True(t, ok)
	assert.Equal(t, 9, plan.TasksPerDay)
	assert.Equal(t, 500.0, plan.Price)

	_, ok = PlanByTier("enterprise")
	assert.False(t, ok)
}

func TestTasksPerDayForTier(t *testing.T) {
	assert.Equal(t, 0, TasksPerDayForTier(TierFree))
	assert.Equal(t, 5, TasksPerDayForTier(TierBasic))
	assert.Equal(t, UnlimitedTasks, TasksPerDayForTier(TierPremium))
	assert.Equal(t, 0, TasksPerDayForTier("unknown"))
}
