package session

import "time"

// Summary holds the data displayed when a session ends.
type Summary struct {
	SessionID     string        `json:"sessionId"`
	BlockID       string        `json:"blockId"`
	Level         int           `json:"level"`
	Duration      time.Duration `json:"duration"`
	TotalTasks    int           `json:"totalTasks"`
	TotalCorrect  int           `json:"totalCorrect"`
	Skipped       int           `json:"skipped"`
	Accuracy      float64       `json:"accuracy"`
	Results       []TaskResult  `json:"results"`
	EarnedBadges  []string      `json:"earnedBadges"`
	Replay        bool          `json:"replay"`
	LevelUnlocked bool          `json:"levelUnlocked"`
	UnlockedLevel int           `json:"unlockedLevel"`

	// Stars is only set for starred sessions.
	Stars *StarResult `json:"stars,omitempty"`
}

// BuildSummary creates a Summary from the session state.
func BuildSummary(sess *Session, now time.Time) *Summary {
	skipped := 0
	for _, r := range sess.Results {
		if r.Skipped {
			skipped++
		}
	}

	var accuracy float64
	if answered := len(sess.Results) - skipped; answered > 0 {
		accuracy = float64(sess.CorrectCount) / float64(answered)
	}

	return &Summary{
		SessionID:    sess.ID,
		BlockID:      sess.BlockID,
		Level:        sess.Level,
		Duration:     now.Sub(sess.StartTime),
		TotalTasks:   len(sess.Tasks),
		TotalCorrect: sess.CorrectCount,
		Skipped:      skipped,
		Accuracy:     accuracy,
		Results:      append([]TaskResult(nil), sess.Results...),
		EarnedBadges: append([]string(nil), sess.EarnedBadges...),
		Replay:       sess.Replay,
	}
}
