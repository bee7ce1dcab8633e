package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/david/opportunity-finder/internal/models"
)

// Status of the current generation.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// DefaultDateLayout formats dates the way es-ES short dates look (18/10/2026).
const DefaultDateLayout = "2/1/2006"

type Query struct {
	Industry string `json:"industry"`
	Country  string `json:"country"`
}

// State is a point-in-time view of the session.
type State struct {
	Query         Query                       `json:"query"`
	Status        Status                      `json:"status"`
	Opportunities []models.TrackedOpportunity `json:"opportunities"`
	ErrorMessage  *string                     `json:"errorMessage"`
}

// Generator produces opportunity records for a query.
type Generator interface {
	Generate(ctx context.Context, industry, country string) ([]models.OpportunityRecord, error)
}

// Session is the in-memory view model: the last query, its outcome and the tracking
// state of every generated opportunity. It is safe for concurrent use; at most one
// generation runs at a time.
type Session struct {
	gen        Generator
	logger     *zap.Logger
	now        func() time.Time
	dateLayout string

	mu    sync.Mutex
	state State
	wg    sync.WaitGroup
}

type Option func(*Session)

// WithClock replaces time.Now for date stamping.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithDateLayout sets the Go time layout used for tracking dates.
func WithDateLayout(layout string) Option {
	return func(s *Session) {
		if layout != "" {
			s.dateLayout = layout
		}
	}
}

func New(gen Generator, logger *zap.Logger, opts ...Option) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		gen:        gen,
		logger:     logger,
		now:        time.Now,
		dateLayout: DefaultDateLayout,
		state: State{
			Status:        StatusIdle,
			Opportunities: []models.TrackedOpportunity{},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates the query and runs one generation, blocking until it finishes.
// The returned error mirrors what was recorded in the state.
func (s *Session) Submit(ctx context.Context, industry, country string) error {
	q, err := s.begin(industry, country)
	if err != nil {
		return err
	}
	return s.run(ctx, q)
}

// Start is Submit with the generation moved to a background goroutine. It returns
// once the session is Loading, or immediately on validation or busy errors.
func (s *Session) Start(ctx context.Context, industry, country string) error {
	q, err := s.begin(industry, country)
	if err != nil {
		return err
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_ = s.run(ctx, q)
	}()
	return nil
}

// Wait blocks until background generations started with Start have finished.
func (s *Session) Wait() {
	s.wg.Wait()
}

func (s *Session) begin(industry, country string) (Query, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Status == StatusLoading {
		return Query{}, ErrBusy
	}

	q := Query{Industry: strings.TrimSpace(industry), Country: strings.TrimSpace(country)}
	s.state.Query = q

	var missing []string
	if q.Industry == "" {
		missing = append(missing, "industry")
	}
	if q.Country == "" {
		missing = append(missing, "country")
	}
	if len(missing) > 0 {
		err := &ValidationError{Fields: missing}
		s.fail(err)
		return Query{}, err
	}

	s.state.Status = StatusLoading
	s.state.Opportunities = []models.TrackedOpportunity{}
	s.state.ErrorMessage = nil
	return q, nil
}

func (s *Session) run(ctx context.Context, q Query) error {
	records, err := s.gen.Generate(ctx, q.Industry, q.Country)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.fail(err)
		return err
	}

	tracked := make([]models.TrackedOpportunity, len(records))
	for i, rec := range records {
		tracked[i] = models.NewTracked(rec)
	}
	s.state.Opportunities = tracked
	s.state.Status = StatusSuccess
	s.logger.Info("session updated",
		zap.String("industry", q.Industry),
		zap.String("country", q.Country),
		zap.Int("opportunities", len(tracked)))
	return nil
}

// fail records err as the session outcome. Callers hold s.mu.
func (s *Session) fail(err error) {
	msg := failureMessage(err)
	s.state.Status = StatusError
	s.state.ErrorMessage = &msg
	s.logger.Warn("session failed", zap.Error(err))
}

// SetTracking updates one tracking flag through Reduce.
func (s *Session) SetTracking(index int, field Field, value bool) error {
	_, err := s.setTracking(index, field, value, false)
	return err
}

// Toggle applies a tracking change the way the opportunity card allows it: a response
// cannot be recorded while the email is unsent. The check, the update and the returned
// copy all come from one critical section.
func (s *Session) Toggle(index int, field Field, value bool) (models.TrackedOpportunity, error) {
	return s.setTracking(index, field, value, true)
}

func (s *Session) setTracking(index int, field Field, value, guarded bool) (models.TrackedOpportunity, error) {
	if _, err := ParseField(string(field)); err != nil {
		return models.TrackedOpportunity{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.state.Opportunities) {
		return models.TrackedOpportunity{}, ErrIndexOutOfRange
	}
	if guarded && field == FieldResponseReceived && value && !s.state.Opportunities[index].Tracking.EmailSent {
		return models.TrackedOpportunity{}, ErrResponseBeforeEmail
	}
	today := s.now().Format(s.dateLayout)
	s.state.Opportunities = Reduce(s.state.Opportunities, Action{Index: index, Field: field, Value: value}, today)
	return s.state.Opportunities[index].Clone(), nil
}

// Opportunity returns a copy of the opportunity at index.
func (s *Session) Opportunity(index int) (models.TrackedOpportunity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.state.Opportunities) {
		return models.TrackedOpportunity{}, ErrIndexOutOfRange
	}
	return s.state.Opportunities[index].Clone(), nil
}

// Snapshot returns a deep copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.state
	out.Opportunities = make([]models.TrackedOpportunity, len(s.state.Opportunities))
	for i, o := range s.state.Opportunities {
		out.Opportunities[i] = o.Clone()
	}
	if s.state.ErrorMessage != nil {
		msg := *s.state.ErrorMessage
		out.ErrorMessage = &msg
	}
	return out
}
