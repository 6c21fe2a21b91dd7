package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jobbuddy/internal/errors"
	"github.com/jobbuddy/internal/models"
	"github.com/jobbuddy/internal/storage"
	"github.com/jobbuddy/internal/types"
)

func TestActivityService_LogApplication(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	activity := env.services.Activity
	user := env.user(ctx, "act@example.com")
	company := env.company(ctx, user.ID, "Acme")

	planned, err := activity.LogApplication(ctx, &CreateApplicationInput{UserID: user.ID, CompanyID: company.ID, JobTitle: "Engineer"})
	require.NoError(t, err)
	assert.Nil(t, planned.Goal, "planned applications do not count")
	assert.Nil(t, planned.Streak)

	applied, err := activity.LogApplication(ctx, &CreateApplicationInput{UserID: user.ID, CompanyID: company.ID, JobTitle: "Engineer II", Status: types.ApplicationApplied})
	require.NoError(t, err)
	require.NotNil(t, applied.Goal)
	assert.Equal(t, 1, applied.Goal.ApplicationsCurrent)
	assert.True(t, date(2026, 10, 12).Equal(applied.Goal.WeekStart))
	require.NotNil(t, applied.Streak)
	assert.Equal(t, 1, applied.Streak.CurrentStreak)
	assert.Equal(t, models.DefaultActivityPoints, applied.Streak.TotalPoints)
	require.NotNil(t, applied.Application.AppliedDate)
	assert.Nil(t, applied.Motivation)
	assert.Contains(t, env.cache.invalidated, storage.StreakSummaryKey(user.ID))
}

func TestActivityService_LogApplicationRollsBack(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	user := env.user(ctx, "act@example.com")
	company := env.company(ctx, user.ID, "Acme")

	env.db.failNext("streaks.Save", errors.New("serialization failure"))
	_, err := env.services.Activity.LogApplication(ctx, &CreateApplicationInput{UserID: user.ID, CompanyID: company.ID, JobTitle: "Engineer", Status: types.ApplicationApplied})
	require.Error(t, err)

	apps, err := env.services.Applications.ListForUser(ctx, user.ID, "")
	require.NoError(t, err)
	assert.Empty(t, apps, "the application insert is undone")

	_, err = env.services.Goals.CurrentWeek(ctx, user.ID)
	assert.True(t, apperrors.IsNotFound(err), "the goal insert is undone")
	assert.Empty(t, env.cache.invalidated)
}

func TestActivityService_LogOutreach(t *testing.T) {
	ctx := context.Background()
	f := newOutreachFixture(t)
	env := f.env

	result, err := env.services.Activity.LogOutreach(ctx, f.input(), LogOptions{FollowUpDays: 3, Notify: true, Points: 15})
	require.NoError(t, err)
	require.NotNil(t, result.Outreach.FollowUpDate)
	assert.True(t, date(2026, 10, 19).Equal(*result.Outreach.FollowUpDate))
	assert.Equal(t, 1, result.Goal.OutreachCurrent)
	assert.Equal(t, 15, result.Streak.TotalPoints)

	require.NotNil(t, result.Notification)
	assert.Equal(t, types.NotificationFollowUp, result.Notification.Type)
	assert.Equal(t, types.OutreachRef{OutreachID: result.Outreach.ID}, result.Notification.Related)

	exists, err := env.db.store.Notifications.ExistsForRelated(ctx, f.user.ID, types.NotificationFollowUp, types.OutreachRef{OutreachID: result.Outreach.ID})
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Contains(t, env.cache.invalidated, storage.UnreadCountKey(f.user.ID))

	quiet, err := env.services.Activity.LogOutreach(ctx, f.input(), LogOptions{})
	require.NoError(t, err)
	assert.Nil(t, quiet.Outreach.FollowUpDate)
	assert.Nil(t, quiet.Notification)
	assert.Equal(t, 2, quiet.Goal.OutreachCurrent)
	assert.Equal(t, 25, quiet.Streak.TotalPoints)
	assert.Equal(t, 1, quiet.Streak.CurrentStreak)
}

func TestActivityService_LogOutreachRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newOutreachFixture(t)
	env := f.env

	env.db.failNext("notifications.Create", errors.New("disk full"))
	_, err := env.services.Activity.LogOutreach(ctx, f.input(), LogOptions{FollowUpDays: 2, Notify: true})
	require.Error(t, err)

	list, err := env.services.Outreach.ListForUser(ctx, f.user.ID, "")
	require.NoError(t, err)
	assert.Empty(t, list)

	streak, err := env.services.Streaks.GetByUserID(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Zero(t, streak.TotalPoints)
}

func TestActivityService_LogOutreachValidatesFirst(t *testing.T) {
	ctx := context.Background()
	f := newOutreachFixture(t)

	in := f.input()
	in.CompanyID = &f.company.ID
	_, err := f.env.services.Activity.LogOutreach(ctx, in, LogOptions{})
	requireAppError(t, err, apperrors.CodeValidation, "Must provide exactly ONE of application_id or company_id")

	_, err = f.env.services.Goals.CurrentWeek(ctx, f.user.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestActivityService_GoalCompletionNotifies(t *testing.T) {
	ctx := context.Background()
	f := newOutreachFixture(t)
	env := f.env
	s := env.services

	goal, err := s.Goals.Create(ctx, &CreateGoalInput{UserID: f.user.ID, ApplicationsGoal: ptr(1), OutreachGoal: ptr(1)})
	require.NoError(t, err)

	first, err := s.Activity.LogApplication(ctx, &CreateApplicationInput{UserID: f.user.ID, CompanyID: f.company.ID, JobTitle: "Engineer", Status: types.ApplicationApplied})
	require.NoError(t, err)
	assert.Nil(t, first.Motivation, "outreach target still open")

	second, err := s.Activity.LogOutreach(ctx, f.input(), LogOptions{})
	require.NoError(t, err)
	require.NotNil(t, second.Motivation)
	assert.Equal(t, types.NotificationMotivation, second.Motivation.Type)
	assert.Equal(t, types.GoalRef{GoalID: goal.ID}, second.Motivation.Related)

	third, err := s.Activity.LogOutreach(ctx, f.input(), LogOptions{})
	require.NoError(t, err)
	assert.Nil(t, third.Motivation, "only the completing bump notifies")

	motivation, err := s.Notifications.ListByType(ctx, f.user.ID, types.NotificationMotivation)
	require.NoError(t, err)
	assert.Len(t, motivation, 1)
}

func TestActivityService_CompleteQuest(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	user := env.user(ctx, "act@example.com")

	result, err := env.services.Activity.CompleteQuest(ctx, user.ID, "mq-3", 25)
	require.NoError(t, err)
	assert.Equal(t, "mq-3", result.Quest.QuestID)
	assert.Equal(t, 25, result.Streak.TotalPoints)
	assert.Zero(t, result.Streak.CurrentStreak, "quests do not count as an active day")

	_, err = env.services.Activity.CompleteQuest(ctx, user.ID, "mq-3", 25)
	requireAppError(t, err, apperrors.CodeConflict, "Quest 'mq-3' already completed by this user")

	streak, err := env.services.Streaks.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, streak.TotalPoints, "the second completion awards nothing")
}
