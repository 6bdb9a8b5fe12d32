package sampling

import (
	"fmt"

	"github.com/p-n-ai/pai-quiz/internal/apperr"
)

var (
	// ErrMissingSelection is returned when a request names neither a scope nor a category spec.
	ErrMissingSelection = fmt.Errorf("%w: missing selection criteria", apperr.ErrValidation)
	// ErrMissingLearner is returned when a request does not identify the learner.
	ErrMissingLearner = fmt.Errorf("%w: learner id is required", apperr.ErrValidation)
	// ErrInvalidLevel is returned for case levels below 1.
	ErrInvalidLevel = fmt.Errorf("%w: level must be at least 1", apperr.ErrValidation)
	// ErrGuestLevelLocked is returned when a guest asks for a case above level 1.
	ErrGuestLevelLocked = fmt.Errorf("%w: guests are limited to level 1", apperr.ErrValidation)
	// ErrScopeNotFound is returned when the scope matches no items at all.
	ErrScopeNotFound = fmt.Errorf("%w: unknown scope", apperr.ErrNotFound)
	// ErrNoCaseAtLevel is returned when no case with questions exists at a level.
	ErrNoCaseAtLevel = fmt.Errorf("%w: no case at this level", apperr.ErrNotFound)
)
