package apperr_test

import (
	"fmt"
	"testing"

	"github.com/p-n-ai/pai-quiz/internal/apperr"
)

func TestClassification(t *testing.T) {
	errMissing := fmt.Errorf("%w: missing selection criteria", apperr.ErrValidation)
	errNoCase := fmt.Errorf("%w: no case at this level", apperr.ErrNotFound)

	tests := []struct {
		name           string
		err            error
		wantValidation bool
		wantNotFound   bool
	}{
		{"validation", errMissing, true, false},
		{"wrapped validation", fmt.Errorf("sample: %w", errMissing), true, false},
		{"not found", errNoCase, false, true},
		{"other", fmt.Errorf("connection refused"), false, false},
		{"nil", nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := apperr.IsValidation(tt.err); got != tt.wantValidation {
				t.Errorf("IsValidation() = %v, want %v", got, tt.wantValidation)
			}
			if got := apperr.IsNotFound(tt.err); got != tt.wantNotFound {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.wantNotFound)
			}
		})
	}
}
