package models

import (
	"time"
)

// Default weekly targets
const (
	DefaultApplicationsGoal = 5
	DefaultOutreachGoal     = 3
)

// Goal represents a user's targets for one Monday-aligned week
type Goal struct {
	ID                  string    `json:"id" db:"id"`
	UserID              string    `json:"userId" db:"user_id"`
	WeekStart           time.Time `json:"weekStart" db:"week_start"`
	ApplicationsGoal    int       `json:"applicationsGoal" db:"applications_goal"`
	ApplicationsCurrent int       `json:"applicationsCurrent" db:"applications_current"`
	OutreachGoal        int       `json:"outreachGoal" db:"outreach_goal"`
	OutreachCurrent     int       `json:"outreachCurrent" db:"outreach_current"`
	CreatedAt           time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time `json:"updatedAt" db:"updated_at"`
}

// GoalProgress is the computed view of a goal
type GoalProgress struct {
	GoalID                 string  `json:"goalId"`
	WeekStart              string  `json:"weekStart"`
	ApplicationsCurrent    int     `json:"applicationsCurrent"`
	ApplicationsGoal       int     `json:"applicationsGoal"`
	ApplicationsRemaining  int     `json:"applicationsRemaining"`
	ApplicationsPercentage float64 `json:"applicationsPercentage"`
	ApplicationsComplete   bool    `json:"applicationsComplete"`
	OutreachCurrent        int     `json:"outreachCurrent"`
	OutreachGoal           int     `json:"outreachGoal"`
	OutreachRemaining      int     `json:"outreachRemaining"`
	OutreachPercentage     float64 `json:"outreachPercentage"`
	OutreachComplete       bool    `json:"outreachComplete"`
	OverallPercentage      float64 `json:"overallPercentage"`
	Complete               bool    `json:"complete"`
	DaysRemaining          int     `json:"daysRemaining"`
	IsCurrentWeek          bool    `json:"isCurrentWeek"`
}

func percentage(current, target int) float64 {
	if target <= 0 {
		return 0
	}
	p := float64(current) / float64(target) * 100
	if p > 100 {
		return 100
	}
	return p
}

func remaining(current, target int) int {
	if current >= target {
		return 0
	}
	return target - current
}

// ApplicationsPercentage is progress toward the applications target, capped at 100
func (g *Goal) ApplicationsPercentage() float64 {
	return percentage(g.ApplicationsCurrent, g.ApplicationsGoal)
}

// OutreachPercentage is progress toward the outreach target, capped at 100
func (g *Goal) OutreachPercentage() float64 {
	return percentage(g.OutreachCurrent, g.OutreachGoal)
}

// OverallPercentage averages the two percentages
func (g *Goal) OverallPercentage() float64 {
	return (g.ApplicationsPercentage() + g.OutreachPercentage()) / 2
}

func (g *Goal) ApplicationsComplete() bool { return g.ApplicationsCurrent >= g.ApplicationsGoal }
func (g *Goal) OutreachComplete() bool     { return g.OutreachCurrent >= g.OutreachGoal }
func (g *Goal) IsComplete() bool           { return g.ApplicationsComplete() && g.OutreachComplete() }

// WeekEnd returns the Sunday closing the goal's week
func (g *Goal) WeekEnd() time.Time {
	return DateOf(g.WeekStart).AddDate(0, 0, 6)
}

// DaysRemainingInWeek counts today and the days left until Sunday.
// Past weeks have 0 days left and future weeks all 7.
func (g *Goal) DaysRemainingInWeek(today time.Time) int {
	t := DateOf(today)
	start := DateOf(g.WeekStart)
	end := g.WeekEnd()
	switch {
	case t.After(end):
		return 0
	case t.Before(start):
		return 7
	default:
		return DaysBetween(t, end) + 1
	}
}

// IsCurrentWeek reports whether today falls in the goal's week
func (g *Goal) IsCurrentWeek(today time.Time) bool {
	return DateOf(g.WeekStart).Equal(WeekStart(today))
}

// Progress computes the full progress view for today
func (g *Goal) Progress(today time.Time) *GoalProgress {
	return &GoalProgress{
		GoalID:                 g.ID,
		WeekStart:              DateOf(g.WeekStart).Format(time.DateOnly),
		ApplicationsCurrent:    g.ApplicationsCurrent,
		ApplicationsGoal:       g.ApplicationsGoal,
		ApplicationsRemaining:  remaining(g.ApplicationsCurrent, g.ApplicationsGoal),
		ApplicationsPercentage: g.ApplicationsPercentage(),
		ApplicationsComplete:   g.ApplicationsComplete(),
		OutreachCurrent:        g.OutreachCurrent,
		OutreachGoal:           g.OutreachGoal,
		OutreachRemaining:      remaining(g.OutreachCurrent, g.OutreachGoal),
		OutreachPercentage:     g.OutreachPercentage(),
		OutreachComplete:       g.OutreachComplete(),
		OverallPercentage:      g.OverallPercentage(),
		Complete:               g.IsComplete(),
		DaysRemaining:          g.DaysRemainingInWeek(today),
		IsCurrentWeek:          g.IsCurrentWeek(today),
	}
}
