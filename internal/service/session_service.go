package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hirolabs/hirehub-api/internal/dto"
	"github.com/hirolabs/hirehub-api/internal/models"
	"github.com/hirolabs/hirehub-api/internal/observability"
	"github.com/hirolabs/hirehub-api/internal/repository"
	"github.com/hirolabs/hirehub-api/pkg/judge"
	"github.com/hirolabs/hirehub-api/pkg/recruiter"
)

// ErrSessionNotFound indicates no live attempt matches the id.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionForbidden indicates the caller does not own the attempt.
var ErrSessionForbidden = errors.New("forbidden")

// ErrSessionNotStarted indicates the operation needs a started attempt.
var ErrSessionNotStarted = errors.New("test not started")

// ErrSessionFinished indicates the attempt already reached a terminal phase.
var ErrSessionFinished = errors.New("test already finished")

// ErrAttemptInProgress indicates the user already has a live attempt.
var ErrAttemptInProgress = errors.New("an attempt is already in progress")

// ErrJudgeUnavailable indicates the execution service is not configured.
var ErrJudgeUnavailable = errors.New("code execution unavailable")

// ErrRunSuperseded indicates a newer run replaced this one before its verdict
// stabilized; the stale verdict is discarded.
var ErrRunSuperseded = errors.New("run superseded by a newer submission")

const noProblemStatement = "Problem statement will appear here."

// JobDirectory is the slice of the recruiting backend the session flow needs.
type JobDirectory interface {
	JobByID(ctx context.Context, jobID, userID string) (recruiter.Job, error)
}

// AttemptJanitor discards per-attempt state owned by a collaborating service
// once the attempt itself is destroyed.
type AttemptJanitor interface {
	Discard(sessionID string)
}

// SessionConfig carries the timing knobs for coding-test attempts.
type SessionConfig struct {
	TestDuration time.Duration
	TickInterval time.Duration
}

// SessionService drives the coding-test attempt lifecycle.
type SessionService interface {
	Start(ctx context.Context, userID string, payload dto.StartSessionRequest) (dto.SessionResponse, error)
	Get(ctx context.Context, id, userID string) (dto.SessionResponse, error)
	SwitchLanguage(ctx context.Context, id, userID string, payload dto.SwitchLanguageRequest) (dto.SessionResponse, error)
	UpdateCode(ctx context.Context, id, userID string, payload dto.UpdateCodeRequest) error
	Run(ctx context.Context, id, userID string) (dto.RunResponse, error)
	Submit(ctx context.Context, id, userID string) (dto.SessionResponse, error)
	Shutdown()
}

type sessionService struct {
	store     repository.SessionStore
	jobs      JobDirectory
	judge     judge.Client
	events    EventPublisher
	janitor   AttemptJanitor
	validator *validator.Validate
	logger    zerolog.Logger
	config    SessionConfig

	mu     sync.Mutex
	timers map[string]context.CancelFunc
	runs   map[string]context.CancelFunc
}

// NewSessionService constructs the session service. The judge client may be
// nil when the execution service is not configured; runs then fail with
// ErrJudgeUnavailable instead of silently doing nothing. The janitor may also
// be nil when no collaborating service holds per-attempt state.
func NewSessionService(store repository.SessionStore, jobs JobDirectory, judgeClient judge.Client, events EventPublisher, janitor AttemptJanitor, validate *validator.Validate, logger zerolog.Logger, cfg SessionConfig) SessionService {
	if cfg.TestDuration <= 0 {
		cfg.TestDuration = 30 * time.Minute
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}

	return &sessionService{
		store:     store,
		jobs:      jobs,
		judge:     judgeClient,
		events:    events,
		janitor:   janitor,
		validator: validate,
		logger:    logger.With().Str("component", "session_service").Logger(),
		config:    cfg,
		timers:    make(map[string]context.CancelFunc),
		runs:      make(map[string]context.CancelFunc),
	}
}

func (s *sessionService) Start(ctx context.Context, userID string, payload dto.StartSessionRequest) (dto.SessionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SessionResponse{}, err
	}

	if _, ok := s.store.ActiveForUser(userID); ok {
		return dto.SessionResponse{}, ErrAttemptInProgress
	}

	job, err := s.jobs.JobByID(ctx, payload.JobID, userID)
	if err != nil {
		return dto.SessionResponse{}, fmt.Errorf("fetch job: %w", err)
	}

	statement := noProblemStatement
	if len(job.ProblemStatements) > 0 && job.ProblemStatements[0] != "" {
		statement = job.ProblemStatements[0]
	}

	session := &models.TestSession{
		ID:               uuid.NewString(),
		JobID:            payload.JobID,
		UserID:           userID,
		Phase:            models.TestPhaseNotStarted,
		Language:         models.LanguageJavaScript,
		ProblemStatement: statement,
		Questions:        job.Questions,
		CreatedAt:        time.Now().UTC(),
	}
	session.Code = languageTemplate(session.Language, statement)
	session.Begin(s.config.TestDuration)

	s.store.Put(session)
	s.startCountdown(session)

	s.logger.Info().Str("session_id", session.ID).Str("job_id", session.JobID).Msg("coding test started")

	return dto.NewSessionResponse(session.Snapshot()), nil
}

func (s *sessionService) Get(ctx context.Context, id, userID string) (dto.SessionResponse, error) {
	session, err := s.owned(id, userID)
	if err != nil {
		return dto.SessionResponse{}, err
	}
	return dto.NewSessionResponse(session.Snapshot()), nil
}

// SwitchLanguage re-templates the code buffer for the new language, discarding
// unsaved edits. Once time has expired the switch is a deliberate no-op.
func (s *sessionService) SwitchLanguage(ctx context.Context, id, userID string, payload dto.SwitchLanguageRequest) (dto.SessionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SessionResponse{}, err
	}

	session, err := s.owned(id, userID)
	if err != nil {
		return dto.SessionResponse{}, err
	}

	template := languageTemplate(payload.Language, session.Snapshot().ProblemStatement)
	session.SetLanguage(payload.Language, template)

	return dto.NewSessionResponse(session.Snapshot()), nil
}

func (s *sessionService) UpdateCode(ctx context.Context, id, userID string, payload dto.UpdateCodeRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	session, err := s.owned(id, userID)
	if err != nil {
		return err
	}

	if !session.SetCode(payload.Code) {
		return ErrSessionFinished
	}
	return nil
}

func (s *sessionService) Run(ctx context.Context, id, userID string) (dto.RunResponse, error) {
	session, err := s.owned(id, userID)
	if err != nil {
		return dto.RunResponse{}, err
	}
	if !session.Active() {
		return dto.RunResponse{}, ErrSessionNotStarted
	}
	if s.judge == nil {
		return dto.RunResponse{}, ErrJudgeUnavailable
	}

	runCtx := s.beginRun(ctx, id)
	defer s.endRun(id, runCtx)

	snapshot := session.Snapshot()
	started := time.Now()

	token, err := s.judge.Submit(runCtx, snapshot.Code, snapshot.Language)
	if err != nil {
		if cause, aborted := runAborted(ctx, runCtx); aborted {
			return dto.RunResponse{}, cause
		}
		session.SetOutput("❌ Error submitting code")
		return dto.RunResponse{}, err
	}

	verdict, err := s.judge.Wait(runCtx, token)
	if err != nil {
		if cause, aborted := runAborted(ctx, runCtx); aborted {
			return dto.RunResponse{}, cause
		}
		if errors.Is(err, judge.ErrPollTimeout) {
			session.SetOutput("⏱️ Execution timed out. Please try again.")
			return dto.RunResponse{}, err
		}
		session.SetOutput("❌ Error checking submission status")
		return dto.RunResponse{}, err
	}

	category := verdict.Classify()
	output := formatVerdict(category, verdict)

	observability.CodeRuns().WithLabelValues(snapshot.Language, string(category)).Inc()
	observability.CodeRunDuration().Observe(time.Since(started).Seconds())

	session.SetOutput(output)

	return dto.RunResponse{Category: string(category), Output: output}, nil
}

func (s *sessionService) Submit(ctx context.Context, id, userID string) (dto.SessionResponse, error) {
	session, err := s.owned(id, userID)
	if err != nil {
		return dto.SessionResponse{}, err
	}

	if !session.Submit() {
		return dto.SessionResponse{}, ErrSessionNotStarted
	}

	s.stopCountdown(id)
	s.cancelRun(id)

	snapshot := session.Snapshot()
	s.events.Publish(EventSessionSubmitted, LifecycleEvent{
		SessionID: snapshot.ID,
		JobID:     snapshot.JobID,
		UserID:    snapshot.UserID,
		At:        time.Now().UTC(),
	})

	// Submission destroys the attempt: the session leaves the store and any
	// interview bookkeeping attached to it is torn down with it.
	s.store.Delete(id)
	if s.janitor != nil {
		s.janitor.Discard(id)
	}

	s.logger.Info().Str("session_id", id).Msg("coding test submitted")

	return dto.NewSessionResponse(snapshot), nil
}

// Shutdown cancels every live countdown and run poller.
func (s *sessionService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, cancel := range s.timers {
		cancel()
		delete(s.timers, id)
	}
	for id, cancel := range s.runs {
		cancel()
		delete(s.runs, id)
	}
}

func (s *sessionService) owned(id, userID string) (*models.TestSession, error) {
	session, ok := s.store.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.UserID != userID {
		return nil, ErrSessionForbidden
	}
	return session, nil
}

// startCountdown owns the attempt's single timer goroutine. The goroutine
// exits when the phase leaves InProgress or the timer is cancelled, so no
// tick can fire after submission.
func (s *sessionService) startCountdown(session *models.TestSession) {
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	s.timers[session.ID] = cancel
	s.mu.Unlock()

	go func() {
		defer s.stopCountdown(session.ID)

		ticker := time.NewTicker(s.config.TickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				expired := session.Tick()
				if expired {
					snapshot := session.Snapshot()
					s.events.Publish(EventSessionExpired, LifecycleEvent{
						SessionID: snapshot.ID,
						JobID:     snapshot.JobID,
						UserID:    snapshot.UserID,
						At:        time.Now().UTC(),
					})
					s.logger.Info().Str("session_id", session.ID).Msg("coding test time expired")
					return
				}
				if !session.Active() {
					return
				}
			}
		}
	}()
}

func (s *sessionService) stopCountdown(id string) {
	s.mu.Lock()
	cancel, ok := s.timers[id]
	if ok {
		delete(s.timers, id)
	}
	s.mu.Unlock()

	if ok {
		cancel()
	}
}

// beginRun cancels any in-flight poller for the session before registering the
// new one, so a superseded submission's late verdict is provably discarded.
func (s *sessionService) beginRun(ctx context.Context, id string) context.Context {
	runCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if previous, ok := s.runs[id]; ok {
		previous()
	}
	s.runs[id] = cancel
	s.mu.Unlock()

	return runCtx
}

func (s *sessionService) endRun(id string, runCtx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cancel, ok := s.runs[id]; ok && runCtx.Err() == nil {
		cancel()
		delete(s.runs, id)
	}
}

func (s *sessionService) cancelRun(id string) {
	s.mu.Lock()
	cancel, ok := s.runs[id]
	if ok {
		delete(s.runs, id)
	}
	s.mu.Unlock()

	if ok {
		cancel()
	}
}

// runAborted distinguishes a run cancelled by its own caller from one
// cancelled because a newer submission replaced it. The caller's cancellation
// is checked first: a client disconnect is never reported as supersession.
func runAborted(ctx, runCtx context.Context) (error, bool) {
	if err := ctx.Err(); err != nil {
		return err, true
	}
	if errors.Is(runCtx.Err(), context.Canceled) {
		return ErrRunSuperseded, true
	}
	return nil, false
}

func languageTemplate(language, statement string) string {
	if statement == "" {
		statement = noProblemStatement
	}

	switch language {
	case models.LanguagePython:
		return fmt.Sprintf("# %s\n\n# Start coding from here", statement)
	case models.LanguageJavaScript:
		return fmt.Sprintf("/**\n * %s\n */\n\n// Start coding from here", statement)
	case models.LanguageCPP:
		return fmt.Sprintf("// %s\n\n// Start coding from here", statement)
	default:
		return ""
	}
}

func formatVerdict(category judge.Category, verdict judge.Verdict) string {
	switch category {
	case judge.CategoryRuntimeError:
		return "❌ Runtime Error:\n" + verdict.Stderr
	case judge.CategoryCompileError:
		return "🔨 Compilation Error:\n" + verdict.CompileOutput
	default:
		stdout := verdict.Stdout
		if stdout == "" {
			stdout = "No output"
		}
		return "✅ Output:\n" + stdout
	}
}
