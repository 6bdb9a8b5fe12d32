// Package progression moves learners between case levels based on rolling
// batch scores.
package progression

import "time"

const (
	// Cutoff is the score, out of SetSize, that counts a batch toward promotion
	// and the number of such batches a set needs to promote.
	Cutoff = 7
	// SetSize is the number of batches evaluated at each set boundary.
	SetSize = 10
	// DefaultRepeats is the repeat budget granted on entering a level.
	DefaultRepeats = 2
	// NeverDemoteSentinel as a repeat budget means the learner can no longer
	// be demoted below level 1.
	NeverDemoteSentinel = 10000
)

// Status labels the outcome of one batch.
type Status string

const (
	StatusOngoing     Status = "ONGOING"
	StatusDemoted     Status = "DEMOTED"
	StatusRepeatLevel Status = "REPEAT_LEVEL"
	StatusNextLevel   Status = "NEXT_LEVEL"
)

// Levels is the level part of a progress record.
type Levels struct {
	Current      int `json:"current"`
	Previous     int `json:"previous"`
	LastTopLevel int `json:"last_top_level"`
	// CurrentCount is the number of batches in the current set, 0..SetSize.
	CurrentCount int `json:"current_count"`
	// CurrentPoints is the number of batches in the set that reached Cutoff.
	CurrentPoints int `json:"current_points"`
}

// LearnerProgress is one learner's state on one track.
type LearnerProgress struct {
	LearnerID     string    `json:"learner_id"`
	Track         string    `json:"track"`
	Levels        Levels    `json:"levels"`
	Repeats       int       `json:"repeats"`
	AverageSpeed  float64   `json:"average_speed"`
	TotalPoints   int64     `json:"total_points"`
	TotalAnswered int64     `json:"total_answered"`
	Version       int64     `json:"version"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewProgress returns the record a learner starts with.
func NewProgress(learnerID, track string) LearnerProgress {
	return LearnerProgress{
		LearnerID: learnerID,
		Track:     track,
		Levels: Levels{
			Current:      1,
			Previous:     1,
			LastTopLevel: 1,
		},
		Repeats: NeverDemoteSentinel,
	}
}

// DisplayCount is the position within the set as shown to learners: 1..10,
// where a completed set shows 10 rather than 0.
func (p LearnerProgress) DisplayCount() int {
	if c := p.Levels.CurrentCount % SetSize; c != 0 {
		return c
	}
	return SetSize
}

// Batch is one scored case submission.
type Batch struct {
	// Level is the case level the batch was taken at.
	Level int
	// Percentage is the batch score on a 0..10 scale.
	Percentage int
	// MeanTime is the average seconds per response.
	MeanTime float64
	// ReadingSpeed is the caller-supplied reading speed for the case text.
	ReadingSpeed float64
	Points       int
	Answered     int
}

// Apply returns p advanced by one batch. p is not modified.
func Apply(p LearnerProgress, b Batch) (LearnerProgress, Status) {
	lv := &p.Levels
	level := b.Level

	lv.CurrentCount++
	p.AverageSpeed = (p.AverageSpeed + b.MeanTime + b.ReadingSpeed) / 3
	if b.Percentage >= Cutoff {
		lv.CurrentPoints++
	}
	p.TotalPoints += int64(b.Points)
	p.TotalAnswered += int64(b.Answered)

	if lv.CurrentCount != SetSize {
		return p, StatusOngoing
	}

	if lv.CurrentPoints >= Cutoff {
		p.Repeats = DefaultRepeats
		lv.Previous = level
		lv.Current = level + 1
		lv.LastTopLevel = lv.Current
		lv.CurrentCount = 0
		lv.CurrentPoints = 0
		return p, StatusNextLevel
	}

	switch {
	case p.Repeats <= 1 && level > 1:
		lv.Current = level - 1
		lv.Previous = level
		p.Repeats = DefaultRepeats
		lv.CurrentCount = 0
		lv.CurrentPoints = 0
		return p, StatusDemoted
	case p.Repeats > 1:
		p.Repeats--
		lv.CurrentCount = 0
		return p, StatusRepeatLevel
	default:
		// Level 1 with no repeats left: stop counting down.
		p.Repeats = NeverDemoteSentinel
		lv.CurrentCount = 0
		return p, StatusOngoing
	}
}
