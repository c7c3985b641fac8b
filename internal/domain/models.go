package domain

import "time"

// Variant selects which questionnaire (and scoring algorithm) is in play.
type Variant string

const (
	// VariantSimple is the 24-question quick test, scored per dimension block.
	VariantSimple Variant = "simple"
	// VariantDetailed is the 93-question test, scored by a global letter tally.
	VariantDetailed Variant = "detailed"
)

// Valid reports whether v names a known questionnaire.
func (v Variant) Valid() bool {
	return v == VariantSimple || v == VariantDetailed
}

// Option is one selectable answer of a question. Dimension is a single
// personality letter (E, I, S, N, T, F, J or P).
type Option struct {
	Label     string `json:"label"`
	Text      string `json:"text"`
	Dimension string `json:"dimension"`
	Weight    int    `json:"weight,omitempty"` // defaults to 1 if zero
}

// Question is one catalog entry. Its options oppose each other within the
// question's dimension group.
type Question struct {
	ID      int      `json:"question_id"`
	Text    string   `json:"question_text"`
	Group   string   `json:"dimension_group"` // EI, SN, TF or JP
	Variant Variant  `json:"version"`
	Options []Option `json:"options"`
}

// Option returns the option carrying the given label.
func (q Question) Option(label string) (Option, bool) {
	for _, opt := range q.Options {
		if opt.Label == label {
			return opt, true
		}
	}
	return Option{}, false
}

// Catalog is the ordered question set for one variant.
type Catalog struct {
	Variant   Variant    `json:"version"`
	Questions []Question `json:"questions"`
}

// Len returns the number of questions in the catalog.
func (c Catalog) Len() int { return len(c.Questions) }

// QuestionByID looks a question up by its catalog ID.
func (c Catalog) QuestionByID(id int) (Question, bool) {
	for i := range c.Questions {
		if c.Questions[i].ID == id {
			return c.Questions[i], true
		}
	}
	return Question{}, false
}

// Answer binds a question to the label the user picked. An empty Label means
// the question has not been answered yet.
type Answer struct {
	QuestionID int    `json:"question_id"`
	Label      string `json:"selected_label,omitempty"`
}

// Answered reports whether a label has been selected.
func (a Answer) Answered() bool { return a.Label != "" }

// Letters lists all eight dimension letters in pair order.
var Letters = []string{"E", "I", "S", "N", "T", "F", "J", "P"}

// Pairs lists the four opposing-letter axes in type-code order.
var Pairs = []string{"EI", "SN", "TF", "JP"}

// PairScore holds the per-axis outcome of a scoring run.
type PairScore struct {
	Pair        string  `json:"pair"` // e.g. "EI"
	FirstCount  int     `json:"first_count"`
	SecondCount int     `json:"second_count"`
	Winner      string  `json:"winner"`
	Strength    int     `json:"strength"` // 0..100
	Margin      float64 `json:"normalized_score"`
}

// ScoreResult is the full classification produced by the scoring engine.
// It is a value; engines never retain or mutate caller data.
type ScoreResult struct {
	TypeCode        string         `json:"type_code"` // e.g. "INTJ"
	DimensionCounts map[string]int `json:"dimension_counts"`
	Pairs           []PairScore    `json:"pair_details"` // EI, SN, TF, JP
	Confidence      float64        `json:"confidence"`
	AnsweredCount   int            `json:"answered_count"`
	TotalCount      int            `json:"total_count"`
	Variant         Variant        `json:"version"`
}

// Snapshot is the persisted form of an in-progress session. A snapshot that
// fails any restore check is treated the same as no snapshot at all.
type Snapshot struct {
	Variant        Variant   `json:"test_variant"`
	Position       int       `json:"current_position"`
	Answers        []Answer  `json:"answers"`
	ElapsedSeconds int       `json:"elapsed_seconds"`
	Started        bool      `json:"started"`
	SavedAt        time.Time `json:"saved_at"`
	SchemaVersion  int       `json:"schema_version"`
}

// SnapshotSchemaVersion guards against restoring snapshots written by an
// incompatible build.
const SnapshotSchemaVersion = 1

// SnapshotMaxAge is how long a saved snapshot stays resumable.
const SnapshotMaxAge = 24 * time.Hour

// TestRecord is the externally visible record of a completed test: the score
// plus the session metadata the result page and history need.
type TestRecord struct {
	ID             string      `json:"id,omitempty"`
	UserID         string      `json:"user_id"`
	Result         ScoreResult `json:"result"`
	Variant        Variant     `json:"test_variant"`
	ElapsedSeconds int         `json:"elapsed_seconds"`
	CompletedAt    time.Time   `json:"completed_at"`
}

// Report is the narrative profile looked up for a type code.
type Report struct {
	TypeCode    string `json:"mbti_type"`
	Nickname    string `json:"nickname"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
}
