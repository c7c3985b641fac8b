// Package session implements the resumable test-session state machine:
// answer collection, bounded navigation, elapsed-time accrual and snapshot
// save/restore validation.
package session

import (
	"fmt"
	"sync"
	"time"

	"mbti-test-service/internal/domain"
)

// State is the session lifecycle position.
type State int

const (
	NotStarted State = iota
	InProgress
	Completed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case InProgress:
		return "in_progress"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// Session owns the answer array for one user taking one test. All mutating
// operations arrive from sequential UI events plus the 1 Hz timer tick, so a
// single mutex is enough.
type Session struct {
	mu       sync.Mutex
	catalog  domain.Catalog
	state    State
	answers  []domain.Answer
	position int
	elapsed  int
	restored bool
	now      func() time.Time
}

// New builds a session bound to the loaded catalog.
func New(catalog domain.Catalog) *Session {
	return NewWithClock(catalog, time.Now)
}

// NewWithClock allows deterministic timestamps in tests.
func NewWithClock(catalog domain.Catalog, now func() time.Time) *Session {
	return &Session{catalog: catalog, now: now}
}

// Start allocates the answer array and begins collecting. Valid only from
// NotStarted.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != NotStarted {
		return fmt.Errorf("start: %w", domain.ErrSessionNotInProgress)
	}
	s.answers = blankAnswers(s.catalog)
	s.position = 0
	s.elapsed = 0
	s.state = InProgress
	return nil
}

// RestoreFrom applies a previously saved snapshot. It is accepted only when
// the variant matches, the answer array length matches the freshly loaded
// catalog, the schema version is current and the snapshot is no older than
// domain.SnapshotMaxAge. A rejected snapshot is not an error: the caller
// simply starts fresh.
func (s *Session) RestoreFrom(snap domain.Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != NotStarted {
		return false
	}
	if snap.Variant != s.catalog.Variant {
		return false
	}
	if snap.SchemaVersion != domain.SnapshotSchemaVersion {
		return false
	}
	if len(snap.Answers) != s.catalog.Len() {
		return false
	}
	if !snap.Started {
		return false
	}
	if s.now().Sub(snap.SavedAt) > domain.SnapshotMaxAge {
		return false
	}
	if snap.Position < 0 || snap.Position >= s.catalog.Len() {
		return false
	}

	s.answers = append([]domain.Answer(nil), snap.Answers...)
	s.position = snap.Position
	s.elapsed = snap.ElapsedSeconds
	s.state = InProgress
	s.restored = true
	return true
}

// SelectAnswer records the label chosen at position and advances. Answering
// the last question transitions the session to Completed. Out-of-range
// positions and labels the question does not carry are rejected.
func (s *Session) SelectAnswer(position int, label string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != InProgress {
		return false, domain.ErrSessionNotInProgress
	}
	if position < 0 || position >= len(s.answers) {
		return false, fmt.Errorf("%w: %d", domain.ErrPositionOutOfRange, position)
	}
	question := s.catalog.Questions[position]
	if _, ok := question.Option(label); !ok {
		return false, fmt.Errorf("%w: question %d label %q", domain.ErrInvalidLabel, question.ID, label)
	}

	s.answers[position].Label = label
	if position == len(s.answers)-1 {
		s.state = Completed
		return true, nil
	}
	s.position = position + 1
	return false, nil
}

// GoBack moves to the previous question. Navigation never alters answers and
// is clamped to the question range.
func (s *Session) GoBack() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == InProgress && s.position > 0 {
		s.position--
	}
	return s.position
}

// GoForward moves to the next question, clamped to the last one.
func (s *Session) GoForward() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == InProgress && s.position < len(s.answers)-1 {
		s.position++
	}
	return s.position
}

// Tick adds one second of elapsed time. It reports whether the session is
// still accruing, letting the timer goroutine stop itself after completion.
func (s *Session) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != InProgress {
		return false
	}
	s.elapsed++
	return true
}

// Snapshot returns a persistable copy of the current progress.
func (s *Session) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Snapshot{
		Variant:        s.catalog.Variant,
		Position:       s.position,
		Answers:        append([]domain.Answer(nil), s.answers...),
		ElapsedSeconds: s.elapsed,
		Started:        s.state != NotStarted,
		SavedAt:        s.now(),
		SchemaVersion:  domain.SnapshotSchemaVersion,
	}
}

// Complete finishes the session and hands the answer array to the caller as a
// copy. Also valid when answering the last question already completed the
// session.
func (s *Session) Complete() ([]domain.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case NotStarted:
		return nil, domain.ErrSessionNotInProgress
	case InProgress, Completed:
		s.state = Completed
		return append([]domain.Answer(nil), s.answers...), nil
	default:
		return nil, domain.ErrSessionNotInProgress
	}
}

// Answers returns an immutable copy of the answer array.
func (s *Session) Answers() []domain.Answer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Answer(nil), s.answers...)
}

// AnsweredCount counts entries with a selected label.
func (s *Session) AnsweredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, a := range s.answers {
		if a.Answered() {
			count++
		}
	}
	return count
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Position() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

func (s *Session) Elapsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

func (s *Session) Variant() domain.Variant {
	return s.catalog.Variant
}

func (s *Session) TotalQuestions() int {
	return s.catalog.Len()
}

// Restored reports whether this session resumed from a snapshot.
func (s *Session) Restored() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restored
}

func blankAnswers(catalog domain.Catalog) []domain.Answer {
	answers := make([]domain.Answer, catalog.Len())
	for i, q := range catalog.Questions {
		answers[i] = domain.Answer{QuestionID: q.ID}
	}
	return answers
}
