package models

import (
	"time"
)

// DefaultActivityPoints is awarded for each recorded activity
const DefaultActivityPoints = 10

// NeverActiveDays is reported by DaysSinceLastActivity for users with no activity
const NeverActiveDays = 999

// MaxLevel is the highest reachable level
const MaxLevel = 5

// levelThresholds[i] is the total points needed to reach level i+2
var levelThresholds = []int{100, 300, 600, 1000}

var levelNames = map[int]string{
	1: "Getting Started",
	2: "Rising Star",
	3: "Go-Getter",
	4: "Networking Pro",
	5: "Job Hunt Champion",
}

// Streak tracks consecutive active days and points for a user
type Streak struct {
	ID               string     `json:"id" db:"id"`
	UserID           string     `json:"userId" db:"user_id"`
	CurrentStreak    int        `json:"currentStreak" db:"current_streak"`
	LongestStreak    int        `json:"longestStreak" db:"longest_streak"`
	LastActivityDate *time.Time `json:"lastActivityDate,omitempty" db:"last_activity_date"`
	TotalPoints      int        `json:"totalPoints" db:"total_points"`
	CreatedAt        time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time  `json:"updatedAt" db:"updated_at"`
}

// StreakState is the part of a streak an activity changes
type StreakState struct {
	CurrentStreak    int
	LongestStreak    int
	LastActivityDate *time.Time
}

// AdvanceStreak applies one activity on today to a streak state.
//
//	no prior activity   -> current 1, longest at least 1
//	same day            -> unchanged
//	exactly one day gap -> current+1, longest raised if exceeded
//	anything else       -> current 1, longest kept
//
// The returned state always has LastActivityDate set to today.
func AdvanceStreak(s StreakState, today time.Time) StreakState {
	day := DateOf(today)
	next := StreakState{
		CurrentStreak:    s.CurrentStreak,
		LongestStreak:    s.LongestStreak,
		LastActivityDate: &day,
	}

	if s.LastActivityDate == nil {
		next.CurrentStreak = 1
		next.LongestStreak = max(1, s.LongestStreak)
		return next
	}

	switch DaysBetween(*s.LastActivityDate, day) {
	case 0:
	case 1:
		next.CurrentStreak = s.CurrentStreak + 1
		next.LongestStreak = max(next.CurrentStreak, s.LongestStreak)
	default:
		next.CurrentStreak = 1
	}
	return next
}

// State extracts the transition inputs from s
func (s *Streak) State() StreakState {
	return StreakState{
		CurrentStreak:    s.CurrentStreak,
		LongestStreak:    s.LongestStreak,
		LastActivityDate: s.LastActivityDate,
	}
}

// IsActiveToday reports whether the last activity happened today
func (s *Streak) IsActiveToday(today time.Time) bool {
	return s.LastActivityDate != nil && DateOf(*s.LastActivityDate).Equal(DateOf(today))
}

// DaysSinceLastActivity returns NeverActiveDays when there is no activity
func (s *Streak) DaysSinceLastActivity(today time.Time) int {
	if s.LastActivityDate == nil {
		return NeverActiveDays
	}
	return DaysBetween(*s.LastActivityDate, today)
}

// WillBreakTomorrow reports whether the streak is lost without activity today
func (s *Streak) WillBreakTomorrow(today time.Time) bool {
	if s.LastActivityDate == nil || s.CurrentStreak == 0 {
		return false
	}
	return s.DaysSinceLastActivity(today) >= 1
}

// LevelFor maps total points to a level between 1 and MaxLevel
func LevelFor(points int) int {
	level := 1
	for _, threshold := range levelThresholds {
		if points < threshold {
			break
		}
		level++
	}
	return level
}

// LevelName returns the display name of a level
func LevelName(level int) string {
	if name, ok := levelNames[level]; ok {
		return name
	}
	return levelNames[1]
}

// PointsToNextLevel returns the points missing for the next level, 0 at MaxLevel
func PointsToNextLevel(points int) int {
	level := LevelFor(points)
	if level >= MaxLevel {
		return 0
	}
	return levelThresholds[level-1] - points
}

func (s *Streak) Level() int             { return LevelFor(s.TotalPoints) }
func (s *Streak) PointsToNextLevel() int { return PointsToNextLevel(s.TotalPoints) }

// StreakSummary is the computed view of a streak
type StreakSummary struct {
	UserID                string  `json:"userId"`
	CurrentStreak         int     `json:"currentStreak"`
	LongestStreak         int     `json:"longestStreak"`
	LastActivityDate      *string `json:"lastActivityDate,omitempty"`
	TotalPoints           int     `json:"totalPoints"`
	Level                 int     `json:"level"`
	LevelName             string  `json:"levelName"`
	PointsToNextLevel     int     `json:"pointsToNextLevel"`
	IsActiveToday         bool    `json:"isActiveToday"`
	DaysSinceLastActivity int     `json:"daysSinceLastActivity"`
	WillBreakTomorrow     bool    `json:"willBreakTomorrow"`
}

// Summary computes the streak view for today
func (s *Streak) Summary(today time.Time) *StreakSummary {
	summary := &StreakSummary{
		UserID:                s.UserID,
		CurrentStreak:         s.CurrentStreak,
		LongestStreak:         s.LongestStreak,
		TotalPoints:           s.TotalPoints,
		Level:                 s.Level(),
		LevelName:             LevelName(s.Level()),
		PointsToNextLevel:     s.PointsToNextLevel(),
		IsActiveToday:         s.IsActiveToday(today),
		DaysSinceLastActivity: s.DaysSinceLastActivity(today),
		WillBreakTomorrow:     s.WillBreakTomorrow(today),
	}
	if s.LastActivityDate != nil {
		d := DateOf(*s.LastActivityDate).Format(time.DateOnly)
		summary.LastActivityDate = &d
	}
	return summary
}
