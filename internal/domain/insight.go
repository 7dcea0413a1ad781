package domain

import "time"

// Insight is a synthesized, user-facing observation about a detected
// pattern across a user's recent events.
//
// DismissedAt and Muted are independent flags, not an enum: both may end
// up set, and either alone suppresses the insight from active surfaces.
// The generator only ever inserts; seen/dismiss/mute are set by user
// actions after the fact.
type Insight struct {
	ID          string         `json:"id"           db:"id"`
	UserID      string         `json:"user_id"      db:"user_id"`
	Scope       string         `json:"scope"        db:"scope"`
	Title       string         `json:"title"        db:"title"`
	Body        string         `json:"body"         db:"body"`
	Sources     []string       `json:"sources"      db:"sources"` // supporting event ids, capped sample
	Confidence  float64        `json:"confidence"   db:"confidence"`
	CreatedAt   time.Time      `json:"created_at"   db:"created_at"`
	SeenAt      *time.Time     `json:"seen_at,omitempty"      db:"seen_at"`
	DismissedAt *time.Time     `json:"dismissed_at,omitempty" db:"dismissed_at"`
	Muted       bool           `json:"muted"        db:"muted"`
	Meta        map[string]any `json:"meta"         db:"meta"` // pattern name, counts, thresholds
}

// Insight scope constants.
const (
	ScopeEmotion = "emotion"
	ScopeDaily   = "daily"
	ScopeMoney   = "money"
	ScopeProject = "project"
	ScopeAccount = "account"
)

// MaxInsightSources caps how many supporting event ids are kept on an insight.
const MaxInsightSources = 5

// InsightCandidate is a detector's proposal before deduplication. Pattern
// is the stable key used for the 7-day dedup window; Title and Body embed
// counts and vary between runs.
type InsightCandidate struct {
	Scope      string
	Pattern    string
	Title      string
	Body       string
	Confidence float64
	SourceIDs  []string
	Meta       map[string]any
}

// Active reports whether the insight should appear on active surfaces.
func (i *Insight) Active() bool {
	return i.DismissedAt == nil && !i.Muted
}
