package assessment

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/p-n-ai/pai-quiz/internal/apperr"
	"github.com/p-n-ai/pai-quiz/internal/curriculum"
	"github.com/p-n-ai/pai-quiz/internal/progression"
	"github.com/p-n-ai/pai-quiz/internal/scoring"
)

// MaxBatchSize bounds both served and submitted batches.
const MaxBatchSize = 100

var validate = validator.New()

// SampleRequest asks for a batch of items. At least one of QuizID,
// SubcategoryID, CaseID, Spec or SpecName must be set.
type SampleRequest struct {
	LearnerID     string `json:"learner_id" validate:"required"`
	QuizID        string `json:"quiz_id,omitempty"`
	SubcategoryID string `json:"subcategory_id,omitempty"`
	CaseID        string `json:"case_id,omitempty"`
	Subspecialty  string `json:"subspecialty,omitempty"`
	// SpecName refers to a category spec loaded from the item bank.
	SpecName string                  `json:"spec_name,omitempty"`
	Spec     curriculum.CategorySpec `json:"spec,omitempty"`
	N        int                     `json:"n" validate:"gte=0,lte=100"`
}

// CaseRequest asks for a case at a level.
type CaseRequest struct {
	LearnerID string `json:"learner_id" validate:"required"`
	Level     int    `json:"level" validate:"min=1"`
	// Guest learners are limited to level 1.
	Guest bool `json:"guest"`
}

// SubmitRequest is a graded case batch.
type SubmitRequest struct {
	LearnerID string `json:"learner_id" validate:"required"`
	// Track names the curriculum; empty uses the service default.
	Track     string             `json:"track,omitempty"`
	Level     int                `json:"level" validate:"min=1"`
	Responses []scoring.Response `json:"responses" validate:"required,min=1,max=100,dive"`
	// BasePoint is the value of a correct answer; zero uses Level.
	BasePoint    int     `json:"base_point,omitempty" validate:"gte=0"`
	ReadingSpeed float64 `json:"reading_speed" validate:"gte=0"`
	Component    string  `json:"component,omitempty"`
	Region       string  `json:"region,omitempty"`
}

// QuizRequest is a graded quiz batch that does not affect progression.
type QuizRequest struct {
	LearnerID string             `json:"learner_id" validate:"required"`
	Responses []scoring.Response `json:"responses" validate:"required,min=1,max=100,dive"`
	// BasePoint is the value of a correct answer; zero means 1.
	BasePoint int    `json:"base_point,omitempty" validate:"gte=0"`
	Component string `json:"component,omitempty"`
	Region    string `json:"region,omitempty"`
}

// SubmitResult is the outcome of a case batch.
type SubmitResult struct {
	Score      scoring.Result              `json:"score"`
	Percentage int                         `json:"percentage"`
	Status     progression.Status          `json:"status"`
	Progress   progression.LearnerProgress `json:"progress"`
	// DisplayCount is the learner's position in the current set, 1..10.
	DisplayCount int `json:"display_count"`
}

func validateRequest(req any) error {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %q", apperr.ErrValidation, fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	return nil
}
