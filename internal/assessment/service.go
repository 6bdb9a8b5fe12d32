// Package assessment is the entry point for serving items, picking cases and
// grading batches.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/p-n-ai/pai-quiz/internal/apperr"
	"github.com/p-n-ai/pai-quiz/internal/curriculum"
	"github.com/p-n-ai/pai-quiz/internal/exposure"
	"github.com/p-n-ai/pai-quiz/internal/progression"
	"github.com/p-n-ai/pai-quiz/internal/sampling"
	"github.com/p-n-ai/pai-quiz/internal/scoreevents"
	"github.com/p-n-ai/pai-quiz/internal/scoring"
	"github.com/p-n-ai/pai-quiz/internal/seal"
)

// DefaultTrack is the progression track used when a request names none.
const DefaultTrack = "cases"

// ErrSealingDisabled is returned by CheckAnswer when no sealer is configured.
var ErrSealingDisabled = fmt.Errorf("%w: answer sealing is disabled", apperr.ErrNotFound)

// SpecSource resolves named category specs.
type SpecSource interface {
	Spec(name string) (curriculum.CategorySpec, bool)
}

// Service ties sampling, scoring and progression together.
type Service struct {
	engine  *sampling.Engine
	tracker *progression.Tracker
	sink    scoreevents.Sink
	specs   SpecSource
	sealer  *seal.Sealer
	track   string
}

// Option configures a Service.
type Option func(*Service)

// WithSpecs lets requests refer to category specs by name.
func WithSpecs(specs SpecSource) Option {
	return func(s *Service) { s.specs = specs }
}

// WithSealer replaces the answer on served items with a sealed token.
func WithSealer(sealer *seal.Sealer) Option {
	return func(s *Service) { s.sealer = sealer }
}

// WithTrack sets the default progression track.
func WithTrack(track string) Option {
	return func(s *Service) {
		if track != "" {
			s.track = track
		}
	}
}

// NewService creates a service. A nil sink discards score events.
func NewService(engine *sampling.Engine, tracker *progression.Tracker, sink scoreevents.Sink, opts ...Option) *Service {
	if sink == nil {
		sink = scoreevents.NopSink{}
	}
	s := &Service{
		engine:  engine,
		tracker: tracker,
		sink:    sink,
		track:   DefaultTrack,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SampleItems serves up to N items the learner has not seen.
func (s *Service) SampleItems(ctx context.Context, req SampleRequest) ([]curriculum.Item, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	spec := req.Spec
	if spec.IsEmpty() && req.SpecName != "" {
		if s.specs == nil {
			return nil, fmt.Errorf("category spec %q: %w", req.SpecName, sampling.ErrScopeNotFound)
		}
		named, ok := s.specs.Spec(req.SpecName)
		if !ok {
			return nil, fmt.Errorf("category spec %q: %w", req.SpecName, sampling.ErrScopeNotFound)
		}
		spec = named
	}

	items, err := s.engine.SampleItems(ctx, sampling.Request{
		Scope: exposure.Scope{
			QuizID:        req.QuizID,
			SubcategoryID: req.SubcategoryID,
			CaseID:        req.CaseID,
			Subspecialty:  req.Subspecialty,
		},
		Spec:      spec,
		LearnerID: req.LearnerID,
		N:         req.N,
	})
	if err != nil {
		return nil, err
	}

	if s.sealer != nil {
		for i := range items {
			token, err := s.sealer.Seal(items[i].ID, items[i].Answer.OptionID)
			if err != nil {
				return nil, fmt.Errorf("sealing answer for %s: %w", items[i].ID, err)
			}
			items[i].SealedAnswer = token
			items[i].Answer = curriculum.Answer{}
		}
	}
	return items, nil
}

// CheckAnswer reports whether optionID is the answer sealed in token.
func (s *Service) CheckAnswer(itemID, token, optionID string) (bool, error) {
	if s.sealer == nil {
		return false, ErrSealingDisabled
	}
	want, err := s.sealer.Open(itemID, token)
	if err != nil {
		return false, err
	}
	return want == optionID, nil
}

// PickCase chooses a case at the requested level for the learner.
func (s *Service) PickCase(ctx context.Context, req CaseRequest) (curriculum.Case, error) {
	if err := validateRequest(req); err != nil {
		return curriculum.Case{}, err
	}
	if req.Guest && req.Level > 1 {
		return curriculum.Case{}, sampling.ErrGuestLevelLocked
	}
	return s.engine.PickCase(ctx, req.Level, req.LearnerID)
}

// SubmitBatch grades a case batch, advances the learner's progression and
// emits a score event. Invalid batches change nothing.
func (s *Service) SubmitBatch(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	if err := validateRequest(req); err != nil {
		rejected.WithLabelValues("invalid").Inc()
		return SubmitResult{}, err
	}

	basePoint := req.BasePoint
	if basePoint == 0 {
		basePoint = req.Level
	}
	score, err := scoring.Score(req.Responses, basePoint)
	if err != nil {
		rejected.WithLabelValues(rejectReason(err)).Inc()
		return SubmitResult{}, err
	}

	track := req.Track
	if track == "" {
		track = s.track
	}
	pct := score.CasePercentage()
	out, err := s.tracker.Submit(ctx, req.LearnerID, track, progression.Batch{
		Level:        req.Level,
		Percentage:   pct,
		MeanTime:     score.MeanTime(),
		ReadingSpeed: req.ReadingSpeed,
		Points:       score.TotalPoints,
		Answered:     score.Answered,
	})
	if err != nil {
		return SubmitResult{}, fmt.Errorf("updating progression: %w", err)
	}
	submissions.WithLabelValues("case").Inc()

	s.emit(ctx, scoreevents.Event{
		LearnerID: req.LearnerID,
		Points:    score.TotalPoints,
		TimeTaken: score.TotalTimeTaken,
		Component: req.Component,
		Region:    req.Region,
	})

	return SubmitResult{
		Score:        score,
		Percentage:   pct,
		Status:       out.Status,
		Progress:     out.Progress,
		DisplayCount: out.DisplayCount,
	}, nil
}

// SubmitQuiz grades a non-case batch. A score event is emitted only when the
// request names a component.
func (s *Service) SubmitQuiz(ctx context.Context, req QuizRequest) (scoring.Result, error) {
	if err := validateRequest(req); err != nil {
		rejected.WithLabelValues("invalid").Inc()
		return scoring.Result{}, err
	}

	basePoint := req.BasePoint
	if basePoint == 0 {
		basePoint = 1
	}
	score, err := scoring.Score(req.Responses, basePoint)
	if err != nil {
		rejected.WithLabelValues(rejectReason(err)).Inc()
		return scoring.Result{}, err
	}
	submissions.WithLabelValues("quiz").Inc()

	if req.Component != "" {
		s.emit(ctx, scoreevents.Event{
			LearnerID: req.LearnerID,
			Points:    score.TotalPoints,
			TimeTaken: score.TotalTimeTaken,
			Component: req.Component,
			Region:    req.Region,
		})
	}
	return score, nil
}

// Progress returns the learner's record on a track.
func (s *Service) Progress(ctx context.Context, learnerID, track string) (progression.LearnerProgress, error) {
	if track == "" {
		track = s.track
	}
	return s.tracker.Get(ctx, learnerID, track)
}

// emit delivers e without failing the caller.
func (s *Service) emit(ctx context.Context, e scoreevents.Event) {
	if err := s.sink.Emit(ctx, e); err != nil {
		sinkFailures.Inc()
		slog.Warn("failed to emit score event",
			"learner_id", e.LearnerID,
			"component", e.Component,
			"error", err,
		)
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, scoring.ErrContradictoryResponse):
		return "contradictory"
	case errors.Is(err, scoring.ErrDuplicateItem):
		return "duplicate"
	case errors.Is(err, scoring.ErrEmptyBatch):
		return "empty"
	default:
		return "invalid"
	}
}
