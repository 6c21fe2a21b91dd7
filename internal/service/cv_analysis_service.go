package service

import (
	"context"
	"strings"

	apperrors "github.com/jobbuddy/internal/errors"
	"github.com/jobbuddy/internal/models"
	"github.com/jobbuddy/internal/validation"
)

// CVAnalysisService stores ATS comparisons of CVs against job descriptions
type CVAnalysisService struct {
	cvRepo          CVAnalysisRepository
	applicationRepo ApplicationRepository
}

// NewCVAnalysisService creates a new CV analysis service
func NewCVAnalysisService(cvRepo CVAnalysisRepository, applicationRepo ApplicationRepository) *CVAnalysisService {
	return &CVAnalysisService{cvRepo: cvRepo, applicationRepo: applicationRepo}
}

// CreateCVAnalysisInput represents input for storing an analysis
type CreateCVAnalysisInput struct {
	UserID          string              `json:"userId" validate:"required"`
	ApplicationID   *string             `json:"applicationId,omitempty"`
	CVFilename      string              `json:"cvFilename" validate:"max=255"`
	CVFilePath      *string             `json:"cvFilePath,omitempty" validate:"omitempty,max=500"`
	JobDescription  string              `json:"jobDescription"`
	ATSScore        int                 `json:"atsScore"`
	MatchedKeywords []string            `json:"matchedKeywords,omitempty"`
	MissingKeywords []string            `json:"missingKeywords,omitempty"`
	Suggestions     []models.Suggestion `json:"suggestions,omitempty"`
	APIUsed         string              `json:"apiUsed,omitempty" validate:"max=50"`
}

// CVAnalysisView is an analysis with its presentation fields computed
type CVAnalysisView struct {
	*models.CVAnalysis
	ScoreInfo           models.ScoreInfo    `json:"scoreInfo"`
	KeywordMatchRate    float64             `json:"keywordMatchRate"`
	NeedsImprovement    bool                `json:"needsImprovement"`
	PrioritySuggestions []models.Suggestion `json:"prioritySuggestions"`
}

// NewCVAnalysisView computes the presentation fields of a
func NewCVAnalysisView(a *models.CVAnalysis) *CVAnalysisView {
	return &CVAnalysisView{
		CVAnalysis:          a,
		ScoreInfo:           models.ScoreInfoFor(a.ATSScore),
		KeywordMatchRate:    a.KeywordMatchRate(),
		NeedsImprovement:    a.NeedsImprovement(),
		PrioritySuggestions: a.PrioritySuggestions(models.DefaultPrioritySuggestions),
	}
}

// Create stores an analysis. Missing keyword and suggestion lists are stored empty.
func (s *CVAnalysisService) Create(ctx context.Context, input *CreateCVAnalysisInput) (*models.CVAnalysis, error) {
	if input.ATSScore < 0 || input.ATSScore > 100 {
		return nil, apperrors.NewValidationError("ATS score must be an integer between 0 and 100")
	}
	if len([]rune(strings.TrimSpace(input.CVFilename))) < 3 {
		return nil, apperrors.NewValidationError("CV filename must be at least 3 characters long")
	}
	if len([]rune(strings.TrimSpace(input.JobDescription))) < 50 {
		return nil, apperrors.NewValidationError("Job description must be at least 50 characters long")
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	analysis := &models.CVAnalysis{
		UserID:          input.UserID,
		ApplicationID:   presentOrNil(input.ApplicationID),
		CVFilename:      strings.TrimSpace(input.CVFilename),
		CVFilePath:      input.CVFilePath,
		JobDescription:  strings.TrimSpace(input.JobDescription),
		ATSScore:        input.ATSScore,
		MatchedKeywords: nonNil(input.MatchedKeywords),
		MissingKeywords: nonNil(input.MissingKeywords),
		Suggestions:     nonNil(input.Suggestions),
		APIUsed:         input.APIUsed,
	}
	if analysis.APIUsed == "" {
		analysis.APIUsed = models.DefaultAnalysisAPI
	}

	if err := s.cvRepo.Create(ctx, analysis); err != nil {
		return nil, err
	}
	return analysis, nil
}

func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}

// GetByID retrieves an analysis
func (s *CVAnalysisService) GetByID(ctx context.Context, id string) (*models.CVAnalysis, error) {
	return s.cvRepo.GetByID(ctx, id)
}

// ListForUser returns a user's analyses, newest first
func (s *CVAnalysisService) ListForUser(ctx context.Context, userID string) ([]*models.CVAnalysis, error) {
	return s.cvRepo.ListByUser(ctx, userID)
}

// ListForApplication returns the analyses run against an application, newest first
func (s *CVAnalysisService) ListForApplication(ctx context.Context, applicationID string) ([]*models.CVAnalysis, error) {
	return s.cvRepo.ListByApplication(ctx, applicationID)
}

// LatestForApplication returns the most recent analysis for an application
func (s *CVAnalysisService) LatestForApplication(ctx context.Context, applicationID string) (*models.CVAnalysis, error) {
	return s.cvRepo.LatestForApplication(ctx, applicationID)
}

// Application returns the application an analysis was run for, nil when it stands alone
func (s *CVAnalysisService) Application(ctx context.Context, id string) (*models.Application, error) {
	analysis, err := s.cvRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if analysis.ApplicationID == nil {
		return nil, nil
	}
	return s.applicationRepo.GetByID(ctx, *analysis.ApplicationID)
}

// Delete removes an analysis
func (s *CVAnalysisService) Delete(ctx context.Context, id string) error {
	return s.cvRepo.Delete(ctx, id)
}

// AverageScore returns the mean ATS score of the user's analyses.
// ok is false when the user has none.
func (s *CVAnalysisService) AverageScore(ctx context.Context, userID string) (avg float64, ok bool, err error) {
	return s.cvRepo.AverageScore(ctx, userID)
}
