package progress

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"time"

	"github.com/abhisek/mathstudent/internal/catalog"
)

// Generation identifies which historical schema a stored block record uses.
type Generation int

const (
	// GenerationUnknown has none of the distinguishing fields; back-fill
	// alone turns it into a canonical record.
	GenerationUnknown Generation = iota
	// GenerationAdaptive carries currentDifficulty but no unlockedLevel.
	GenerationAdaptive
	// GenerationFixed carries unlockedLevel but no levelResults.
	GenerationFixed
	// GenerationStarred is the canonical schema.
	GenerationStarred
)

func (g Generation) String() string {
	switch g {
	case GenerationAdaptive:
		return "adaptive"
	case GenerationFixed:
		return "fixed"
	case GenerationStarred:
		return "starred"
	default:
		return "unknown"
	}
}

// rawBlock is a stored block record as a field map, so field presence is observable.
type rawBlock map[string]json.RawMessage

// DetectGeneration classifies a raw record by which fields are present.
func DetectGeneration(raw map[string]json.RawMessage) Generation {
	_, hasDifficulty := raw["currentDifficulty"]
	_, hasLevel := raw["unlockedLevel"]
	_, hasResults := raw["levelResults"]
	switch {
	case hasLevel && hasResults:
		return GenerationStarred
	case hasLevel:
		return GenerationFixed
	case hasDifficulty:
		return GenerationAdaptive
	default:
		return GenerationUnknown
	}
}

// migrationStep upgrades a record of generation from by one generation.
type migrationStep struct {
	from  Generation
	apply func(rawBlock) (rawBlock, error)
}

// migrationChain is ordered oldest first; each step only ever sees
// records of its own generation.
var migrationChain = []migrationStep{
	{from: GenerationAdaptive, apply: adaptiveToFixed},
	{from: GenerationFixed, apply: fixedToStarred},
}

// adaptiveToFixed turns the floating difficulty into an unlocked level.
func adaptiveToFixed(in rawBlock) (rawBlock, error) {
	var d float64
	if err := json.Unmarshal(in["currentDifficulty"], &d); err != nil {
		return nil, fmt.Errorf("currentDifficulty: %w", err)
	}
	out := maps.Clone(in)
	level := ClampLevel(int(math.Round(d)))
	out["unlockedLevel"] = json.RawMessage(fmt.Sprint(level))
	out["currentLevelProgress"] = json.RawMessage("[]")
	delete(out, "currentDifficulty")
	return out, nil
}

// fixedToStarred adds an empty star record.
func fixedToStarred(in rawBlock) (rawBlock, error) {
	out := maps.Clone(in)
	out["levelResults"] = json.RawMessage("{}")
	return out, nil
}

// MigrateBlock upgrades a raw block record to the canonical schema and
// back-fills missing fields. It is idempotent: feeding its own output back
// in (re-encoded as JSON) yields an equal record.
func MigrateBlock(raw map[string]json.RawMessage) (*BlockProgress, error) {
	rec := rawBlock(raw)
	for _, step := range migrationChain {
		if DetectGeneration(rec) != step.from {
			continue
		}
		var err error
		if rec, err = step.apply(rec); err != nil {
			return nil, fmt.Errorf("migrate %s record: %w", step.from, err)
		}
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	var bp BlockProgress
	if err := json.Unmarshal(b, &bp); err != nil {
		return nil, fmt.Errorf("decode block progress: %w", err)
	}
	backfill(&bp)
	return &bp, nil
}

// backfill fills missing fields with defaults and repairs out-of-range
// values. Safe on canonical records.
func backfill(bp *BlockProgress) {
	bp.UnlockedLevel = ClampLevel(bp.UnlockedLevel)

	results := make(map[int]int, len(bp.LevelResults))
	for level, stars := range bp.LevelResults {
		if level < catalog.MinLevel || level > catalog.MaxLevel {
			continue
		}
		results[level] = min(max(stars, 0), MaxStars)
	}
	bp.LevelResults = results

	bp.CurrentLevelProgress = uniqueIDs(bp.CurrentLevelProgress)
	bp.CorrectlySolvedTasks = uniqueIDs(bp.CorrectlySolvedTasks)
	if bp.RecentAnswers == nil {
		bp.RecentAnswers = []Answer{}
	}
	if bp.CurrentDifficulty != nil {
		bp.SetDifficulty(*bp.CurrentDifficulty)
	}
}

func uniqueIDs(ids []catalog.TaskID) []catalog.TaskID {
	out := make([]catalog.TaskID, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// rawStore mirrors Store with unmigrated block records.
type rawStore struct {
	Version     string              `json:"version"`
	Progress    map[string]rawBlock `json:"progress"`
	UserProfile *UserProfile        `json:"userProfile"`
	Streak      *Streak             `json:"streak"`
	LastSession json.RawMessage     `json:"lastSession"`
}

// PeekVersion returns the version field of a serialized store without
// decoding the rest.
func PeekVersion(data []byte) (string, error) {
	var v struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return "", err
	}
	return v.Version, nil
}

// Decode parses a serialized store and migrates every block record.
// It does not check the version; see DecodeCompatible.
func Decode(data []byte) (*Store, error) {
	var raw rawStore
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse progress: %w", err)
	}

	s := &Store{
		Version:     raw.Version,
		Progress:    make(map[string]*BlockProgress, len(raw.Progress)),
		UserProfile: raw.UserProfile,
		Streak:      raw.Streak,
		LastSession: parseTimestamp(raw.LastSession),
	}
	for key, rec := range raw.Progress {
		if rec == nil {
			rec = rawBlock{}
		}
		bp, err := MigrateBlock(rec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		s.Progress[key] = bp
	}
	backfillStore(s)
	return s, nil
}

// DecodeCompatible is Decode gated on CompatibleVersion. An incompatible
// version yields *ErrIncompatibleVersion before any migration runs.
func DecodeCompatible(data []byte, current string) (*Store, error) {
	version, err := PeekVersion(data)
	if err != nil {
		return nil, fmt.Errorf("parse progress: %w", err)
	}
	if err := checkVersion(version, current); err != nil {
		return nil, err
	}
	return Decode(data)
}

func backfillStore(s *Store) {
	if s.UserProfile == nil {
		s.UserProfile = &UserProfile{}
	}
	var badges []string
	for _, id := range s.UserProfile.BadgesEarned {
		if !slices.Contains(badges, id) {
			badges = append(badges, id)
		}
	}
	if badges == nil {
		badges = []string{}
	}
	s.UserProfile.BadgesEarned = badges

	if s.Streak == nil {
		s.Streak = &Streak{}
	}
	s.Streak.Current = max(s.Streak.Current, 0)
}

// parseTimestamp accepts RFC 3339 strings; anything else is the zero time.
func parseTimestamp(raw json.RawMessage) time.Time {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// Reconcile aligns a store with the catalog: blocks new to the catalog get
// default progress, and each block's current level attempt is restricted
// to tasks of its unlocked level. Blocks the catalog no longer lists are
// kept untouched. An empty catalog changes nothing.
func Reconcile(s *Store, cat *catalog.Catalog) {
	if cat.Len() == 0 {
		return
	}
	for _, b := range cat.Blocks() {
		bp := s.EnsureBlock(b.ID)
		levelIDs := b.TaskIDsAt(bp.UnlockedLevel)
		kept := bp.CurrentLevelProgress[:0]
		for _, id := range bp.CurrentLevelProgress {
			if slices.Contains(levelIDs, id) {
				kept = append(kept, id)
			}
		}
		bp.CurrentLevelProgress = kept
	}
}
