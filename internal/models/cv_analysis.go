package models

import (
	"time"

	"github.com/jobbuddy/internal/types"
)

// Defaults for CV analyses
const (
	DefaultAnalysisAPI         = "internal"
	DefaultPrioritySuggestions = 5
	ImprovementThreshold       = 60
)

// Suggestion is one actionable CV improvement
type Suggestion struct {
	Type    string `json:"type"`
	Keyword string `json:"keyword"`
	Message string `json:"message"`
}

// CVAnalysis is an ATS comparison of a CV against a job description
type CVAnalysis struct {
	ID              string       `json:"id" db:"id"`
	UserID          string       `json:"userId" db:"user_id"`
	ApplicationID   *string      `json:"applicationId,omitempty" db:"application_id"`
	CVFilename      string       `json:"cvFilename" db:"cv_filename"`
	CVFilePath      *string      `json:"cvFilePath,omitempty" db:"cv_file_path"`
	JobDescription  string       `json:"jobDescription" db:"job_description"`
	ATSScore        int          `json:"atsScore" db:"ats_score"`
	MatchedKeywords []string     `json:"matchedKeywords" db:"matched_keywords"`
	MissingKeywords []string     `json:"missingKeywords" db:"missing_keywords"`
	Suggestions     []Suggestion `json:"suggestions" db:"suggestions"`
	APIUsed         string       `json:"apiUsed" db:"api_used"`
	CreatedAt       time.Time    `json:"createdAt" db:"created_at"`
}

// ScoreInfo describes how an ATS score should be presented
type ScoreInfo struct {
	Category types.ScoreCategory `json:"category"`
	Color    string              `json:"color"`
	Message  string              `json:"message"`
}

var scoreInfo = map[types.ScoreCategory]ScoreInfo{
	types.ScoreExcellent: {types.ScoreExcellent, "green", "Your CV is well matched to this role"},
	types.ScoreGood:      {types.ScoreGood, "blue", "A few targeted changes will strengthen your CV"},
	types.ScoreFair:      {types.ScoreFair, "orange", "Your CV is missing several key requirements"},
	types.ScorePoor:      {types.ScorePoor, "red", "Rework your CV around this job description"},
}

// CategorizeScore buckets an ATS score at 80, 60 and 40
func CategorizeScore(score int) types.ScoreCategory {
	switch {
	case score >= 80:
		return types.ScoreExcellent
	case score >= 60:
		return types.ScoreGood
	case score >= 40:
		return types.ScoreFair
	default:
		return types.ScorePoor
	}
}

// ScoreInfoFor returns the presentation info for a score
func ScoreInfoFor(score int) ScoreInfo {
	return scoreInfo[CategorizeScore(score)]
}

func (c *CVAnalysis) ScoreCategory() types.ScoreCategory { return CategorizeScore(c.ATSScore) }
func (c *CVAnalysis) ScoreColor() string                 { return ScoreInfoFor(c.ATSScore).Color }
func (c *CVAnalysis) NeedsImprovement() bool             { return c.ATSScore < ImprovementThreshold }

// KeywordMatchRate is the share of job keywords found in the CV, in percent
func (c *CVAnalysis) KeywordMatchRate() float64 {
	total := len(c.MatchedKeywords) + len(c.MissingKeywords)
	if total == 0 {
		return 0
	}
	return float64(len(c.MatchedKeywords)) / float64(total) * 100
}

// PrioritySuggestions returns at most maxCount suggestions in stored order.
// A non-positive maxCount means DefaultPrioritySuggestions.
func (c *CVAnalysis) PrioritySuggestions(maxCount int) []Suggestion {
	if maxCount <= 0 {
		maxCount = DefaultPrioritySuggestions
	}
	if len(c.Suggestions) == 0 {
		return []Suggestion{}
	}
	if len(c.Suggestions) <= maxCount {
		return c.Suggestions
	}
	return c.Suggestions[:maxCount]
}
