package progress

import "fmt"

// Mode selects the progression rules applied to a block.
type Mode string

const (
	// ModeStarred rates each five-task level session with 0-3 stars and
	// unlocks the next level on any star.
	ModeStarred Mode = "starred"
	// ModeFixed unlocks the next level once every task of the current
	// level is solved in error-free attempts.
	ModeFixed Mode = "fixed"
	// ModeAdaptive floats a difficulty up and down with recent performance.
	ModeAdaptive Mode = "adaptive"
)

// AllModes returns every progression mode, canonical first.
func AllModes() []Mode {
	return []Mode{ModeStarred, ModeFixed, ModeAdaptive}
}

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeStarred, ModeFixed, ModeAdaptive:
		return m, nil
	case "":
		return ModeStarred, nil
	default:
		return "", fmt.Errorf("unknown progression mode %q (want starred, fixed or adaptive)", s)
	}
}
