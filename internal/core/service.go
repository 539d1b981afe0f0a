package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionState is the lifecycle stage of an import session. Validation
// failures never create a session: the error report is returned to the
// caller synchronously and nothing is submitted.
type SessionState string

const (
	StateSubmitting SessionState = "submitting"
	StateSummarized SessionState = "summarized"
	StateFailed     SessionState = "failed"
)

// ErrImportFailed is returned by GetResult when the session ended fatally.
// The operator-facing message is FatalNotice, never a partial result.
var ErrImportFailed = errors.New(FatalNotice)

// Progress is a single progress notification for an import session.
type Progress struct {
	SessionID string       `json:"sessionId"`
	State     SessionState `json:"state"`
	Percent   int          `json:"percent"`
	Completed int          `json:"completed"`
	Total     int          `json:"total"`
	Error     string       `json:"error,omitempty"`
}

// ResultStore retains finished import results past session expiry.
type ResultStore interface {
	Save(ctx context.Context, id string, result ImportResult, ttl time.Duration) error
	Get(ctx context.Context, id string) (ImportResult, bool, error)
}

// ServiceOptions configures a Service.
type ServiceOptions struct {
	// Timeout bounds one whole import batch (default 10m).
	Timeout time.Duration
	// SessionRetention is how long finished sessions stay in memory (default 5m).
	SessionRetention time.Duration
	// ResultTTL is how long results are kept in the ResultStore (default 24h).
	ResultTTL time.Duration
}

func (o *ServiceOptions) fillDefaults() {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Minute
	}
	if o.SessionRetention <= 0 {
		o.SessionRetention = 5 * time.Minute
	}
	if o.ResultTTL <= 0 {
		o.ResultTTL = 24 * time.Hour
	}
}

// Service runs the company import pipeline and tracks import sessions.
type Service struct {
	client  CompanyCreator
	results ResultStore // optional
	opts    ServiceOptions

	mu       sync.RWMutex
	sessions map[string]*importSession
	wg       sync.WaitGroup
}

// importSession tracks one running or finished import. The run goroutine
// mutates progress while HTTP handlers read it concurrently, so progress,
// result and the listener set share one mutex and are only touched through
// the methods below.
type importSession struct {
	ID   string
	Done chan struct{}

	mu        sync.Mutex
	progress  Progress
	result    *ImportResult
	listeners []chan Progress
	closed    bool
}

// update mutates the progress under lock and fans the new value out to
// listeners. Slow listeners skip this update.
func (session *importSession) update(fn func(*Progress)) {
	session.mu.Lock()
	defer session.mu.Unlock()

	fn(&session.progress)

	for _, ch := range session.listeners {
		select {
		case ch <- session.progress:
		default:
		}
	}
}

// snapshot returns a copy of the current progress.
func (session *importSession) snapshot() Progress {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.progress
}

func (session *importSession) setResult(r *ImportResult) {
	session.mu.Lock()
	session.result = r
	session.mu.Unlock()
}

func (session *importSession) getResult() *ImportResult {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.result
}

// subscribe registers a progress listener. The current progress is delivered
// immediately; a session that already finished gets the final progress and an
// immediately closed channel.
func (session *importSession) subscribe() <-chan Progress {
	ch := make(chan Progress, 10)

	session.mu.Lock()
	if session.closed {
		progress := session.progress
		session.mu.Unlock()
		ch <- progress
		close(ch)
		return ch
	}
	session.listeners = append(session.listeners, ch)
	select {
	case ch <- session.progress:
	default:
	}
	session.mu.Unlock()

	return ch
}

func (session *importSession) closeListeners() {
	session.mu.Lock()
	defer session.mu.Unlock()

	for _, ch := range session.listeners {
		close(ch)
	}
	session.listeners = nil
	session.closed = true
}

// NewService creates a Service. results may be nil, in which case finished
// results live only as long as the in-memory session.
func NewService(client CompanyCreator, results ResultStore, opts ServiceOptions) *Service {
	opts.fillDefaults()
	return &Service{
		client:   client,
		results:  results,
		opts:     opts,
		sessions: make(map[string]*importSession),
	}
}

// Validate parses and validates CSV text without submitting anything.
// It returns the parsed rows and the complete error report.
func (s *Service) Validate(text string) ([]RawRow, []ValidationError) {
	rows := ParseCSV(text)
	return rows, ValidateRows(rows)
}

// StartImport validates CSV text and, when clean, starts a background import
// session. The validation gate is all-or-nothing: any error blocks the whole
// batch and is returned instead of a session ID.
func (s *Service) StartImport(text string) (string, []ValidationError, error) {
	rows := ParseCSV(text)
	if len(rows) == 0 {
		return "", nil, fmt.Errorf("empty file: no data rows")
	}

	if errs := ValidateRows(rows); len(errs) > 0 {
		return "", errs, nil
	}

	sessionID := uuid.New().String()
	session := &importSession{
		ID: sessionID,
		progress: Progress{
			SessionID: sessionID,
			State:     StateSubmitting,
			Total:     len(rows),
		},
		Done: make(chan struct{}),
	}

	s.mu.Lock()
	s.sessions[sessionID] = session
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.opts.Timeout)
	s.wg.Add(1)
	go func() {
		defer cancel()
		s.run(ctx, session, rows)
	}()

	return sessionID, nil, nil
}

// run executes conversion, submission and summarization for one session.
// Any panic in the pipeline moves the session to the failed state; the
// operator sees the generic failure notice, not a partial result.
func (s *Service) run(ctx context.Context, session *importSession, rows []RawRow) {
	defer s.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("import pipeline panicked", "session_id", session.ID, "panic", r)
			s.finishFailed(session)
		}
		session.closeListeners()
		close(session.Done)
		s.cleanup(session.ID, s.opts.SessionRetention)
	}()

	payloads := ConvertRows(rows)

	importer := NewImporter(s.client)
	total := len(payloads)
	completed := 0
	outcomes, err := importer.ImportAll(ctx, payloads, func(percent int) {
		completed++
		done := completed
		session.update(func(p *Progress) {
			p.Percent = percent
			p.Completed = done
		})
	})
	if err != nil {
		slog.Error("import aborted", "session_id", session.ID, "error", err)
		s.finishFailed(session)
		return
	}

	result := Summarize(outcomes)
	session.setResult(&result)
	session.update(func(p *Progress) {
		p.State = StateSummarized
		p.Percent = 100
		p.Completed = total
	})

	slog.Info("import summarized",
		"session_id", session.ID,
		"total", result.Total,
		"success", result.SuccessCount,
		"duplicate", result.DuplicateCount,
		"validation", result.ValidationErrorCount,
		"other", result.OtherErrorCount,
	)

	if s.results != nil {
		saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.results.Save(saveCtx, session.ID, result, s.opts.ResultTTL); err != nil {
			slog.Warn("result retention failed", "session_id", session.ID, "error", err)
		}
	}
}

func (s *Service) finishFailed(session *importSession) {
	session.update(func(p *Progress) {
		p.State = StateFailed
		p.Error = FatalNotice
	})
}

// SubscribeProgress returns a channel of progress updates for a session.
// The current progress is delivered immediately and the channel closes when
// the session finishes. Slow listeners skip intermediate updates.
func (s *Service) SubscribeProgress(sessionID string) (<-chan Progress, error) {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("import session not found: %s", sessionID)
	}

	return session.subscribe(), nil
}

// GetProgress returns the current progress without blocking.
func (s *Service) GetProgress(sessionID string) (Progress, error) {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok {
		return Progress{}, fmt.Errorf("import session not found: %s", sessionID)
	}
	return session.snapshot(), nil
}

// GetResult returns the final result of a session, blocking until the
// session completes. Expired sessions fall back to the result store.
func (s *Service) GetResult(ctx context.Context, sessionID string) (*ImportResult, error) {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok {
		if s.results != nil {
			result, found, err := s.results.Get(ctx, sessionID)
			if err != nil {
				return nil, fmt.Errorf("load result: %w", err)
			}
			if found {
				return &result, nil
			}
		}
		return nil, fmt.Errorf("import session not found: %s", sessionID)
	}

	select {
	case <-session.Done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if session.snapshot().State == StateFailed {
		return nil, ErrImportFailed
	}
	return session.getResult(), nil
}

// ActiveImports returns the number of sessions still submitting.
func (s *Service) ActiveImports() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, session := range s.sessions {
		if session.snapshot().State == StateSubmitting {
			n++
		}
	}
	return n
}

// WaitForImports blocks until all running imports finish or ctx is done.
func (s *Service) WaitForImports(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) cleanup(sessionID string, delay time.Duration) {
	time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.sessions, sessionID)
		s.mu.Unlock()
	})
}
