// Package scoring turns a batch of graded responses into point and timing totals.
package scoring

import (
	"fmt"

	"github.com/p-n-ai/pai-quiz/internal/apperr"
)

const (
	// SpeedThreshold is the answer time, in seconds, at or under which a
	// correct answer earns SpeedBonus.
	SpeedThreshold = 8.0
	// SpeedBonus is the extra points for a correct answer within SpeedThreshold.
	SpeedBonus = 2
)

var (
	// ErrEmptyBatch is returned when a batch carries no responses.
	ErrEmptyBatch = fmt.Errorf("%w: no responses", apperr.ErrValidation)
	// ErrContradictoryResponse is returned when a response is flagged both
	// correct and missed.
	ErrContradictoryResponse = fmt.Errorf("%w: response is both correct and missed", apperr.ErrValidation)
	// ErrDuplicateItem is returned when one item appears twice in a batch.
	ErrDuplicateItem = fmt.Errorf("%w: item answered twice in one batch", apperr.ErrValidation)
)

// Response is a learner's answer to one item.
type Response struct {
	ItemID    string `json:"item_id" validate:"required"`
	IsCorrect bool   `json:"is_correct"`
	IsMissed  bool   `json:"is_missed"`
	// TimeTaken is in seconds. Nil counts as zero and earns no bonus.
	TimeTaken *float64 `json:"time_taken,omitempty" validate:"omitempty,gte=0"`
}

// Seconds returns TimeTaken, or 0 when absent.
func (r Response) Seconds() float64 {
	if r.TimeTaken == nil {
		return 0
	}
	return *r.TimeTaken
}

// Result aggregates one batch.
type Result struct {
	TotalPoints    int     `json:"total_points"`
	TotalCorrect   int     `json:"total_correct"`
	TotalIncorrect int     `json:"total_incorrect"`
	TotalMissed    int     `json:"total_missed"`
	TotalTimeTaken float64 `json:"total_time_taken"`
	Answered       int     `json:"answered"`
}

// CasePercentage is the batch score on a 0..10 scale, rounded up.
func (r Result) CasePercentage() int {
	if r.Answered == 0 {
		return 0
	}
	return (r.TotalCorrect*10 + r.Answered - 1) / r.Answered
}

// MeanTime is the average time per response.
func (r Result) MeanTime() float64 {
	if r.Answered == 0 {
		return 0
	}
	return r.TotalTimeTaken / float64(r.Answered)
}

// Validate checks a batch without scoring it.
func Validate(responses []Response) error {
	if len(responses) == 0 {
		return ErrEmptyBatch
	}
	ids := make(map[string]struct{}, len(responses))
	for _, r := range responses {
		if r.IsCorrect && r.IsMissed {
			return fmt.Errorf("item %s: %w", r.ItemID, ErrContradictoryResponse)
		}
		if _, dup := ids[r.ItemID]; dup {
			return fmt.Errorf("item %s: %w", r.ItemID, ErrDuplicateItem)
		}
		ids[r.ItemID] = struct{}{}
	}
	return nil
}

// Score validates and totals a batch. Each correct answer is worth basePoint
// plus SpeedBonus when answered within SpeedThreshold.
func Score(responses []Response, basePoint int) (Result, error) {
	if err := Validate(responses); err != nil {
		return Result{}, err
	}

	res := Result{Answered: len(responses)}
	for _, r := range responses {
		if r.IsCorrect {
			res.TotalPoints += basePoint
			if r.TimeTaken != nil && *r.TimeTaken <= SpeedThreshold {
				res.TotalPoints += SpeedBonus
			}
			res.TotalCorrect++
		}
		if r.IsMissed {
			res.TotalMissed++
		}
		res.TotalTimeTaken += r.Seconds()
	}
	res.TotalIncorrect = res.Answered - res.TotalCorrect - res.TotalMissed
	return res, nil
}
