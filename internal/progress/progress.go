// Package progress drives the cosmetic step sequence shown while an analysis
// is in flight. It is purely time based and knows nothing about the request.
package progress

import (
	"context"
	"encoding/json"
	"time"
)

const (
	CompleteText = "Analysis complete!"
	// PendingCap is the highest percent shown before the request settles.
	PendingCap = 99.0
)

type Step struct {
	Text     string
	Duration time.Duration
}

func (s Step) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Text       string `json:"text"`
		DurationMS int64  `json:"duration_ms"`
	}{s.Text, s.Duration.Milliseconds()})
}

type Sequence []Step

var DefaultSteps = Sequence{
	{Text: "Analyzing market trends...", Duration: 2000 * time.Millisecond},
	{Text: "Conducting web research...", Duration: 2500 * time.Millisecond},
	{Text: "Evaluating target audience...", Duration: 2000 * time.Millisecond},
	{Text: "Assessing competition...", Duration: 2200 * time.Millisecond},
	{Text: "Generating expert insights...", Duration: 1800 * time.Millisecond},
}

type Snapshot struct {
	Step    int     `json:"step"`
	Text    string  `json:"text"`
	Percent float64 `json:"percent"`
	// Done is set once every step has elapsed; Settled once the request finished.
	Done    bool `json:"done"`
	Settled bool `json:"settled"`
}

func (s Sequence) Total() time.Duration {
	var total time.Duration
	for _, step := range s {
		total += step.Duration
	}
	return total
}

// At returns the display state elapsed into the sequence. Percent is
// ((completed + fraction of current step) / steps) * 100, capped at PendingCap.
func (s Sequence) At(elapsed time.Duration) Snapshot {
	n := len(s)
	if n == 0 {
		return Snapshot{Text: CompleteText, Percent: PendingCap, Done: true}
	}
	if elapsed < 0 {
		elapsed = 0
	}
	var start time.Duration
	for i, step := range s {
		if step.Duration > 0 && elapsed < start+step.Duration {
			frac := float64(elapsed-start) / float64(step.Duration)
			return Snapshot{
				Step:    i,
				Text:    step.Text,
				Percent: min((float64(i)+frac)/float64(n)*100, PendingCap),
			}
		}
		start += step.Duration
	}
	return Snapshot{Step: n - 1, Text: CompleteText, Percent: PendingCap, Done: true}
}

// Settle marks the snapshot as belonging to a finished request. Only a
// successful request reaches 100%.
func (snap Snapshot) Settle(success bool) Snapshot {
	snap.Settled = true
	if success {
		snap.Done = true
		snap.Text = CompleteText
		snap.Percent = 100
	}
	return snap
}

// Run calls fn with the current snapshot every interval until ctx ends or the
// sequence finishes. The final snapshot is always delivered.
func (s Sequence) Run(ctx context.Context, interval time.Duration, fn func(Snapshot)) {
	start := time.Now()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	fn(s.At(0))
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := s.At(time.Since(start))
			fn(snap)
			if snap.Done {
				return
			}
		}
	}
}
