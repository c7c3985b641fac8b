package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"mbti-test-service/internal/domain"
	"mbti-test-service/internal/report"
	"mbti-test-service/internal/scoring"
	"mbti-test-service/internal/session"
)

// CatalogRepository loads the ordered question set for a variant
// (from cache/backing store).
type CatalogRepository interface {
	GetCatalog(ctx context.Context, variant domain.Variant) (domain.Catalog, error)
}

// SnapshotStore persists in-progress session snapshots, keyed by user and
// variant. A Load returning malformed or absent data reports ok=false rather
// than an error.
type SnapshotStore interface {
	Load(ctx context.Context, userID string, variant domain.Variant) (domain.Snapshot, bool, error)
	Save(ctx context.Context, userID string, snap domain.Snapshot) error
	Clear(ctx context.Context, userID string, variant domain.Variant) error
}

// ResultStore persists completed test records.
type ResultStore interface {
	Save(ctx context.Context, record domain.TestRecord) (string, error)
	List(ctx context.Context, userID string, limit int) ([]domain.TestRecord, error)
	Get(ctx context.Context, id string) (domain.TestRecord, error)
}

// ReportStore looks narrative type profiles up by type code.
type ReportStore interface {
	GetReport(ctx context.Context, typeCode string) (domain.Report, error)
}

// TestService contains the test-taking use cases: start/resume, answer
// collection, completion and scoring, report and history lookup.
type TestService struct {
	catalogs  CatalogRepository
	snapshots SnapshotStore
	results   ResultStore
	reports   ReportStore
	now       func() time.Time

	mu     sync.Mutex
	active map[string]*activeTest // keyed by user ID
}

// activeTest pairs the live state machine with the catalog it was loaded
// against and the cancel func of its 1 Hz timer.
type activeTest struct {
	session   *session.Session
	catalog   domain.Catalog
	stopTimer context.CancelFunc
}

func NewTestService(catalogs CatalogRepository, snapshots SnapshotStore, results ResultStore, reports ReportStore) *TestService {
	return NewTestServiceWithClock(catalogs, snapshots, results, reports, time.Now)
}

// NewTestServiceWithClock is test-only for deterministic timestamps.
func NewTestServiceWithClock(catalogs CatalogRepository, snapshots SnapshotStore, results ResultStore, reports ReportStore, now func() time.Time) *TestService {
	return &TestService{
		catalogs:  catalogs,
		snapshots: snapshots,
		results:   results,
		reports:   reports,
		now:       now,
		active:    make(map[string]*activeTest),
	}
}

// SessionView is the immutable progress snapshot handed to callers. The
// session keeps exclusive ownership of its answer array.
type SessionView struct {
	Variant        domain.Variant    `json:"test_variant"`
	State          string            `json:"state"`
	Position       int               `json:"current_position"`
	TotalQuestions int               `json:"total_questions"`
	AnsweredCount  int               `json:"answered_count"`
	ElapsedSeconds int               `json:"elapsed_seconds"`
	Restored       bool              `json:"restored"`
	Questions      []domain.Question `json:"questions,omitempty"`
}

// StartTest loads the catalog for the variant and starts a session for the
// user, resuming from a persisted snapshot when one passes the restore
// checks. Invalid, stale or unreadable snapshots are discarded silently and a
// fresh session starts; the caller never sees an error for that.
func (s *TestService) StartTest(ctx context.Context, userID string, variant domain.Variant) (SessionView, error) {
	if userID == "" {
		return SessionView{}, domain.ErrIdentityRequired
	}
	if !variant.Valid() {
		return SessionView{}, fmt.Errorf("%w: %q", domain.ErrUnknownVariant, variant)
	}

	catalog, err := s.catalogs.GetCatalog(ctx, variant)
	if err != nil {
		return SessionView{}, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}

	sess := session.NewWithClock(catalog, s.now)

	snap, ok, err := s.snapshots.Load(ctx, userID, variant)
	if err != nil {
		// Persistence failures degrade to "no snapshot".
		log.Printf("snapshot load failed for user=%s variant=%s: %v", userID, variant, err)
		ok = false
	}
	resumed := ok && sess.RestoreFrom(snap)
	if !resumed {
		if ok {
			// Rejected snapshot: clear it so it is not offered again.
			if err := s.snapshots.Clear(ctx, userID, variant); err != nil {
				log.Printf("snapshot clear failed for user=%s variant=%s: %v", userID, variant, err)
			}
		}
		if err := sess.Start(); err != nil {
			return SessionView{}, err
		}
	}

	s.mu.Lock()
	if prev, exists := s.active[userID]; exists {
		prev.stopTimer()
	}
	s.active[userID] = &activeTest{
		session:   sess,
		catalog:   catalog,
		stopTimer: s.startTimer(sess),
	}
	s.mu.Unlock()

	view := s.view(sess)
	view.Questions = catalog.Questions
	return view, nil
}

// SelectAnswer records the user's choice at position and advances. The
// snapshot is persisted after every accepted answer; answering the last
// question completes the session.
func (s *TestService) SelectAnswer(ctx context.Context, userID string, position int, label string) (SessionView, bool, error) {
	active, err := s.lookup(userID)
	if err != nil {
		return SessionView{}, false, err
	}

	completed, err := active.session.SelectAnswer(position, label)
	if err != nil {
		return SessionView{}, false, err
	}
	if completed {
		active.stopTimer()
	}
	s.saveSnapshot(ctx, userID, active.session)
	return s.view(active.session), completed, nil
}

// Navigate moves one question back or forward without touching answered
// data, then persists the snapshot.
func (s *TestService) Navigate(ctx context.Context, userID string, forward bool) (SessionView, error) {
	active, err := s.lookup(userID)
	if err != nil {
		return SessionView{}, err
	}
	if forward {
		active.session.GoForward()
	} else {
		active.session.GoBack()
	}
	s.saveSnapshot(ctx, userID, active.session)
	return s.view(active.session), nil
}

// Suspend snapshots progress when the session loses foreground focus and
// stops elapsed-time accrual. The session state itself does not change; a
// later StartTest resumes from the snapshot.
func (s *TestService) Suspend(ctx context.Context, userID string) (SessionView, error) {
	active, err := s.lookup(userID)
	if err != nil {
		return SessionView{}, err
	}
	active.stopTimer()
	s.saveSnapshot(ctx, userID, active.session)
	return s.view(active.session), nil
}

// Abandon drops the active session and clears its snapshot.
func (s *TestService) Abandon(ctx context.Context, userID string) {
	s.mu.Lock()
	active, exists := s.active[userID]
	if exists {
		active.stopTimer()
		delete(s.active, userID)
	}
	s.mu.Unlock()
	if !exists {
		return
	}
	if err := s.snapshots.Clear(ctx, userID, active.session.Variant()); err != nil {
		log.Printf("snapshot clear failed for user=%s: %v", userID, err)
	}
}

// CompleteTest finishes the session, scores the collected answers and
// assembles the persisted record. The snapshot is cleared so a finished test
// can never be resumed. A result-store failure is logged and the record is
// still returned, without an ID.
func (s *TestService) CompleteTest(ctx context.Context, userID string) (domain.TestRecord, error) {
	active, err := s.lookup(userID)
	if err != nil {
		return domain.TestRecord{}, err
	}

	answers, err := active.session.Complete()
	if err != nil {
		return domain.TestRecord{}, err
	}
	active.stopTimer()

	result, err := scoring.Score(active.catalog, answers, active.session.Variant())
	if err != nil {
		return domain.TestRecord{}, err
	}

	record := report.Assemble(result, report.Meta{
		UserID:         userID,
		Variant:        active.session.Variant(),
		ElapsedSeconds: active.session.Elapsed(),
		CompletedAt:    s.now(),
	})

	if id, err := s.results.Save(ctx, record); err != nil {
		log.Printf("result save failed for user=%s: %v", userID, err)
	} else {
		record.ID = id
	}

	if err := s.snapshots.Clear(ctx, userID, active.session.Variant()); err != nil {
		log.Printf("snapshot clear failed for user=%s: %v", userID, err)
	}

	s.mu.Lock()
	delete(s.active, userID)
	s.mu.Unlock()

	return record, nil
}

// Score runs the pure scoring contract against the variant's catalog without
// touching any session state.
func (s *TestService) Score(ctx context.Context, answers []domain.Answer, variant domain.Variant) (domain.ScoreResult, error) {
	if !variant.Valid() {
		return domain.ScoreResult{}, fmt.Errorf("%w: %q", domain.ErrUnknownVariant, variant)
	}
	catalog, err := s.catalogs.GetCatalog(ctx, variant)
	if err != nil {
		return domain.ScoreResult{}, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	return scoring.Score(catalog, answers, variant)
}

// GetReport fetches the narrative profile for a type code. Not finding one is
// non-fatal; the caller may show a fallback.
func (s *TestService) GetReport(ctx context.Context, typeCode string) (domain.Report, error) {
	return s.reports.GetReport(ctx, typeCode)
}

// ListResults returns the user's recent test history, newest first.
func (s *TestService) ListResults(ctx context.Context, userID string, limit int) ([]domain.TestRecord, error) {
	if userID == "" {
		return nil, domain.ErrIdentityRequired
	}
	if limit <= 0 {
		limit = 10
	}
	return s.results.List(ctx, userID, limit)
}

// GetResult fetches one stored record, verifying it belongs to the caller.
func (s *TestService) GetResult(ctx context.Context, userID, resultID string) (domain.TestRecord, error) {
	if userID == "" {
		return domain.TestRecord{}, domain.ErrIdentityRequired
	}
	record, err := s.results.Get(ctx, resultID)
	if err != nil {
		return domain.TestRecord{}, err
	}
	if record.UserID != userID {
		return domain.TestRecord{}, domain.ErrResultForbidden
	}
	return record, nil
}

func (s *TestService) lookup(userID string) (*activeTest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	active, ok := s.active[userID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return active, nil
}

// saveSnapshot persists progress best-effort. Failures never reach the
// session machine.
func (s *TestService) saveSnapshot(ctx context.Context, userID string, sess *session.Session) {
	if err := s.snapshots.Save(ctx, userID, sess.Snapshot()); err != nil {
		log.Printf("snapshot save failed for user=%s: %v", userID, err)
	}
}

// startTimer accrues one elapsed second per tick until the session leaves
// InProgress or the timer is canceled.
func (s *TestService) startTimer(sess *session.Session) context.CancelFunc {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !sess.Tick() {
					return
				}
			}
		}
	}()
	return cancel
}

func (s *TestService) view(sess *session.Session) SessionView {
	return SessionView{
		Variant:        sess.Variant(),
		State:          sess.State().String(),
		Position:       sess.Position(),
		TotalQuestions: sess.TotalQuestions(),
		AnsweredCount:  sess.AnsweredCount(),
		ElapsedSeconds: sess.Elapsed(),
		Restored:       sess.Restored(),
	}
}
