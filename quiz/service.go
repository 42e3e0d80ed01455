package quiz

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/biolaureat/learn-client/api"
	"github.com/biolaureat/learn-client/internal/inflight"
)

// DailyQuestionCount caps the daily challenge; extra questions from the
// generator are dropped.
const DailyQuestionCount = 5

const slotDaily = "daily"

// Backend is the slice of the API client the quiz service needs.
type Backend interface {
	ModuleQuiz(ctx context.Context, token, module string) (*api.QuizPayload, error)
	DailyQuiz(ctx context.Context, token string, another bool) (*api.QuizPayload, error)
	DocumentQuiz(ctx context.Context, token string, documentID int) (*api.QuizPayload, error)
	SubmitQuiz(ctx context.Context, token string, sub api.QuizSubmission) (*api.SubmitResult, error)
	Progress(ctx context.Context, token string) (map[string]int, error)
}

// Authorizer is the session manager's authenticated-request chokepoint.
type Authorizer interface {
	Authorized(ctx context.Context, call func(ctx context.Context, accessToken string) error) error
}

// Service fetches quizzes, submits results and keeps the progress cache in
// sync with the server.
type Service struct {
	backend  Backend
	sessions Authorizer
	cache    *ProgressCache
	log      zerolog.Logger
	requests inflight.Registry
}

// ServiceOption modifies a Service during construction.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(log zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = log
	}
}

// NewService creates a quiz Service.
func NewService(backend Backend, sessions Authorizer, options ...ServiceOption) (*Service, error) {
	if backend == nil {
		return nil, errors.New("[NewService] backend is required")
	}
	if sessions == nil {
		return nil, errors.New("[NewService] session authorizer is required")
	}

	service := &Service{
		backend:  backend,
		sessions: sessions,
		cache:    NewProgressCache(),
		log:      zerolog.Nop(),
	}
	for _, opt := range options {
		opt(service)
	}
	return service, nil
}

// DailyResult is the outcome of a daily-challenge fetch. Questions may be
// empty when today's challenge was already completed and no replacement was
// requested; Note carries the server's explanation.
type DailyResult struct {
	Questions             []api.Question
	AlreadyCompletedToday bool
	Note                  string
}

// StartModule generates a quiz for one module. A new call for the same
// module cancels the generation still in flight.
func (s *Service) StartModule(ctx context.Context, module string) ([]api.Question, error) {
	runCtx, done := s.requests.Start(ctx, slotModule(module))
	defer done()

	var payload *api.QuizPayload
	err := s.sessions.Authorized(runCtx, func(ctx context.Context, token string) error {
		fetched, err := s.backend.ModuleQuiz(ctx, token, module)
		payload = fetched
		return err
	})
	if err != nil {
		return nil, err
	}
	return validQuestions(payload.Questions)
}

// StartDaily generates the daily challenge. another asks for a replacement
// set when today's challenge is already done.
func (s *Service) StartDaily(ctx context.Context, another bool) (*DailyResult, error) {
	runCtx, done := s.requests.Start(ctx, slotDaily)
	defer done()

	var payload *api.QuizPayload
	err := s.sessions.Authorized(runCtx, func(ctx context.Context, token string) error {
		fetched, err := s.backend.DailyQuiz(ctx, token, another)
		payload = fetched
		return err
	})
	if err != nil {
		return nil, err
	}

	result := &DailyResult{
		AlreadyCompletedToday: payload.AlreadyCompletedToday,
		Note:                  payload.Msg,
	}
	if payload.AlreadyCompletedToday && len(payload.Questions) == 0 {
		return result, nil
	}

	questions, err := validQuestions(payload.Questions)
	if err != nil {
		return nil, err
	}
	if len(questions) > DailyQuestionCount {
		questions = questions[:DailyQuestionCount]
	}
	result.Questions = questions
	return result, nil
}

// StartDocument generates a quiz from an uploaded PDF.
func (s *Service) StartDocument(ctx context.Context, documentID int) ([]api.Question, error) {
	runCtx, done := s.requests.Start(ctx, slotDocument(documentID))
	defer done()

	var payload *api.QuizPayload
	err := s.sessions.Authorized(runCtx, func(ctx context.Context, token string) error {
		fetched, err := s.backend.DocumentQuiz(ctx, token, documentID)
		payload = fetched
		return err
	})
	if err != nil {
		return nil, err
	}
	return validQuestions(payload.Questions)
}

// CancelDaily aborts an in-flight daily generation. No-op when nothing runs.
func (s *Service) CancelDaily() {
	s.requests.Cancel(slotDaily)
}

// CancelModule aborts an in-flight module generation.
func (s *Service) CancelModule(module string) {
	s.requests.Cancel(slotModule(module))
}

// CancelDocument aborts an in-flight document generation.
func (s *Service) CancelDocument(documentID int) {
	s.requests.Cancel(slotDocument(documentID))
}

// CancelAll aborts every in-flight generation request.
func (s *Service) CancelAll() {
	s.requests.CancelAll()
}

// SubmitAndReconcile records a finished attempt server-side, then overwrites
// the cached unlock state with whatever the server reports. moduleID is
// empty for the daily challenge.
//
// A returned error is non-fatal to the caller's report display; progress is
// not considered advanced until a later fetch confirms it.
func (s *Service) SubmitAndReconcile(ctx context.Context, report Report, moduleID string) error {
	sub := api.QuizSubmission{
		QuestionsCorrect: report.CorrectCount,
		QuestionsTotal:   report.Total,
	}
	if moduleID == "" {
		sub.Daily = true
	} else {
		sub.Module = moduleID
	}

	var result *api.SubmitResult
	err := s.sessions.Authorized(ctx, func(ctx context.Context, token string) error {
		submitted, err := s.backend.SubmitQuiz(ctx, token, sub)
		result = submitted
		return err
	})
	if err != nil {
		s.log.Warn().Err(err).Str("module", moduleID).Msg("quiz submission failed")
		return err
	}

	// The submit response is authoritative for whatever it reports:
	// straight overwrite, never a local max.
	for id, level := range result.ModulesProgress {
		s.cache.Set(id, level)
	}

	// Second authoritative fetch so the cache matches the database even
	// when the submit response omitted progress.
	if err := s.RefreshProgress(ctx); err != nil {
		s.log.Warn().Err(err).Msg("progress re-fetch after submit failed")
	}
	return nil
}

// RefreshProgress replaces the whole progress cache with the server's state.
func (s *Service) RefreshProgress(ctx context.Context) error {
	var progress map[string]int
	err := s.sessions.Authorized(ctx, func(ctx context.Context, token string) error {
		fetched, err := s.backend.Progress(ctx, token)
		progress = fetched
		return err
	})
	if err != nil {
		return err
	}
	s.cache.ReplaceAll(progress)
	return nil
}

// Unlocked returns the cached unlocked level for a module.
func (s *Service) Unlocked(moduleID string) int {
	return s.cache.Unlocked(moduleID)
}

// Progress returns a copy of the cached progress map.
func (s *Service) Progress() map[string]int {
	return s.cache.Snapshot()
}

// ClearProgress empties the cache, e.g. when the session ends.
func (s *Service) ClearProgress() {
	s.cache.Clear()
}

func slotModule(module string) string {
	return "module:" + module
}

func slotDocument(documentID int) string {
	return fmt.Sprintf("document:%d", documentID)
}

// validQuestions rejects empty or structurally broken question lists coming
// from a 2xx response.
func validQuestions(questions []api.Question) ([]api.Question, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	for i, q := range questions {
		if len(q.Options) < 2 {
			return nil, errors.Wrapf(ErrMalformedQuiz, "question %d has %d options", i+1, len(q.Options))
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return nil, errors.Wrapf(ErrMalformedQuiz, "question %d correct_index %d out of range", i+1, q.CorrectIndex)
		}
	}
	return questions, nil
}
