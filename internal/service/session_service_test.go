package service

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/hirolabs/hirehub-api/internal/dto"
	"github.com/hirolabs/hirehub-api/internal/models"
	"github.com/hirolabs/hirehub-api/internal/repository"
	"github.com/hirolabs/hirehub-api/pkg/judge"
	"github.com/hirolabs/hirehub-api/pkg/recruiter"
)

type stubJobDirectory struct {
	job recruiter.Job
	err error
}

func (s *stubJobDirectory) JobByID(ctx context.Context, jobID, userID string) (recruiter.Job, error) {
	if s.err != nil {
		return recruiter.Job{}, s.err
	}
	return s.job, nil
}

type stubJudge struct {
	submitFn func(ctx context.Context, source, language string) (string, error)
	waitFn   func(ctx context.Context, token string) (judge.Verdict, error)
}

func (s *stubJudge) Submit(ctx context.Context, source, language string) (string, error) {
	return s.submitFn(ctx, source, language)
}

func (s *stubJudge) Wait(ctx context.Context, token string) (judge.Verdict, error) {
	return s.waitFn(ctx, token)
}

type capturePublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (p *capturePublisher) Publish(subject string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
}

func (p *capturePublisher) count(subject string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	total := 0
	for _, s := range p.subjects {
		if s == subject {
			total++
		}
	}
	return total
}

func newSessionFixture(t *testing.T, judgeClient judge.Client, cfg SessionConfig) (SessionService, repository.SessionStore, *capturePublisher) {
	t.Helper()

	store := repository.NewSessionStore()
	jobs := &stubJobDirectory{job: recruiter.Job{
		ID:                "job-1",
		Title:             "Backend Engineer",
		ProblemStatements: []string{"Reverse a linked list."},
		Questions:         []string{"Tell me about a project you are proud of."},
	}}
	publisher := &capturePublisher{}
	validate := validator.New(validator.WithRequiredStructEnabled())

	svc := NewSessionService(store, jobs, judgeClient, publisher, nil, validate, zerolog.Nop(), cfg)
	t.Cleanup(svc.Shutdown)

	return svc, store, publisher
}

func TestStartDefaultsToJavaScriptTemplate(t *testing.T) {
	svc, _, _ := newSessionFixture(t, nil, SessionConfig{TestDuration: 30 * time.Minute, TickInterval: time.Hour})

	result, err := svc.Start(context.Background(), "user-1", dto.StartSessionRequest{JobID: "job-1"})
	require.NoError(t, err)

	require.Equal(t, string(models.TestPhaseInProgress), result.Phase)
	require.Equal(t, models.LanguageJavaScript, result.Language)
	require.Equal(t, 1800, result.TimeRemaining)
	require.Equal(t, "Reverse a linked list.", result.ProblemStatement)
	require.Contains(t, result.Code, "Reverse a linked list.")
	require.Contains(t, result.Code, "// Start coding from here")
}

func TestStartRejectsSecondAttempt(t *testing.T) {
	svc, _, _ := newSessionFixture(t, nil, SessionConfig{TestDuration: 30 * time.Minute, TickInterval: time.Hour})

	_, err := svc.Start(context.Background(), "user-1", dto.StartSessionRequest{JobID: "job-1"})
	require.NoError(t, err)

	_, err = svc.Start(context.Background(), "user-1", dto.StartSessionRequest{JobID: "job-1"})
	require.ErrorIs(t, err, ErrAttemptInProgress)
}

func TestCountdownExpiresExactlyOnce(t *testing.T) {
	svc, store, publisher := newSessionFixture(t, nil, SessionConfig{TestDuration: 2 * time.Second, TickInterval: 5 * time.Millisecond})

	result, err := svc.Start(context.Background(), "user-1", dto.StartSessionRequest{JobID: "job-1"})
	require.NoError(t, err)

	session, ok := store.Get(result.ID)
	require.True(t, ok)

	require.Eventually(t, func() bool {
		return session.Snapshot().Phase == models.TestPhaseExpired
	}, 2*time.Second, 10*time.Millisecond)

	// Give any straggler tick a chance to misbehave.
	time.Sleep(50 * time.Millisecond)

	snapshot := session.Snapshot()
	require.Equal(t, models.TestPhaseExpired, snapshot.Phase)
	require.Equal(t, 0, snapshot.TimeRemaining)
	require.Equal(t, 1, publisher.count(EventSessionExpired))
}

func TestSwitchLanguageReplacesBuffer(t *testing.T) {
	svc, _, _ := newSessionFixture(t, nil, SessionConfig{TestDuration: 30 * time.Minute, TickInterval: time.Hour})

	started, err := svc.Start(context.Background(), "user-1", dto.StartSessionRequest{JobID: "job-1"})
	require.NoError(t, err)

	err = svc.UpdateCode(context.Background(), started.ID, "user-1", dto.UpdateCodeRequest{Code: "console.log(42)"})
	require.NoError(t, err)

	switched, err := svc.SwitchLanguage(context.Background(), started.ID, "user-1", dto.SwitchLanguageRequest{Language: models.LanguagePython})
	require.NoError(t, err)

	require.Equal(t, models.LanguagePython, switched.Language)
	require.True(t, strings.HasPrefix(switched.Code, "# Reverse a linked list."))
	require.NotContains(t, switched.Code, "console.log(42)")
}

func TestSwitchLanguageAfterExpiryIsNoOp(t *testing.T) {
	svc, store, _ := newSessionFixture(t, nil, SessionConfig{TestDuration: time.Second, TickInterval: 5 * time.Millisecond})

	started, err := svc.Start(context.Background(), "user-1", dto.StartSessionRequest{JobID: "job-1"})
	require.NoError(t, err)

	session, ok := store.Get(started.ID)
	require.True(t, ok)
	require.Eventually(t, func() bool {
		return session.Snapshot().Phase == models.TestPhaseExpired
	}, 2*time.Second, 10*time.Millisecond)

	result, err := svc.SwitchLanguage(context.Background(), started.ID, "user-1", dto.SwitchLanguageRequest{Language: models.LanguagePython})
	require.NoError(t, err)
	require.Equal(t, models.LanguageJavaScript, result.Language)
}

func TestRunFormatsSuccessfulVerdict(t *testing.T) {
	judgeClient := &stubJudge{
		submitFn: func(ctx context.Context, source, language string) (string, error) {
			return "token-1", nil
		},
		waitFn: func(ctx context.Context, token string) (judge.Verdict, error) {
			return judge.Verdict{
				Status: judge.VerdictStatus{ID: 3, Description: "Accepted"},
				Stdout: "2\n",
			}, nil
		},
	}
	svc, _, _ := newSessionFixture(t, judgeClient, SessionConfig{TestDuration: 30 * time.Minute, TickInterval: time.Hour})

	started, err := svc.Start(context.Background(), "user-1", dto.StartSessionRequest{JobID: "job-1"})
	require.NoError(t, err)

	result, err := svc.Run(context.Background(), started.ID, "user-1")
	require.NoError(t, err)
	require.Equal(t, string(judge.CategorySuccess), result.Category)
	require.Equal(t, "✅ Output:\n2\n", result.Output)

	fetched, err := svc.Get(context.Background(), started.ID, "user-1")
	require.NoError(t, err)
	require.Equal(t, "✅ Output:\n2\n", fetched.Output)
}

func TestRunRuntimeErrorOutranksStdout(t *testing.T) {
	judgeClient := &stubJudge{
		submitFn: func(ctx context.Context, source, language string) (string, error) {
			return "token-1", nil
		},
		waitFn: func(ctx context.Context, token string) (judge.Verdict, error) {
			return judge.Verdict{
				Status: judge.VerdictStatus{ID: 11, Description: "Runtime Error"},
				Stdout: "partial output",
				Stderr: "segmentation fault",
			}, nil
		},
	}
	svc, _, _ := newSessionFixture(t, judgeClient, SessionConfig{TestDuration: 30 * time.Minute, TickInterval: time.Hour})

	started, err := svc.Start(context.Background(), "user-1", dto.StartSessionRequest{JobID: "job-1"})
	require.NoError(t, err)

	result, err := svc.Run(context.Background(), started.ID, "user-1")
	require.NoError(t, err)
	require.Equal(t, string(judge.CategoryRuntimeError), result.Category)
	require.Equal(t, "❌ Runtime Error:\nsegmentation fault", result.Output)
}

func TestRunWithoutJudgeClient(t *testing.T) {
	svc, _, _ := newSessionFixture(t, nil, SessionConfig{TestDuration: 30 * time.Minute, TickInterval: time.Hour})

	started, err := svc.Start(context.Background(), "user-1", dto.StartSessionRequest{JobID: "job-1"})
	require.NoError(t, err)

	_, err = svc.Run(context.Background(), started.ID, "user-1")
	require.ErrorIs(t, err, ErrJudgeUnavailable)
}

func TestRunSupersededByNewerSubmission(t *testing.T) {
	var calls atomic.Int32
	firstBlocked := make(chan struct{})

	judgeClient := &stubJudge{
		submitFn: func(ctx context.Context, source, language string) (string, error) {
			return "token", nil
		},
		waitFn: func(ctx context.Context, token string) (judge.Verdict, error) {
			if calls.Add(1) == 1 {
				close(firstBlocked)
				<-ctx.Done()
				return judge.Verdict{}, ctx.Err()
			}
			return judge.Verdict{
				Status: judge.VerdictStatus{ID: 3, Description: "Accepted"},
				Stdout: "done",
			}, nil
		},
	}
	svc, _, _ := newSessionFixture(t, judgeClient, SessionConfig{TestDuration: 30 * time.Minute, TickInterval: time.Hour})

	started, err := svc.Start(context.Background(), "user-1", dto.StartSessionRequest{JobID: "job-1"})
	require.NoError(t, err)

	firstResult := make(chan error, 1)
	go func() {
		_, err := svc.Run(context.Background(), started.ID, "user-1")
		firstResult <- err
	}()

	<-firstBlocked

	second, err := svc.Run(context.Background(), started.ID, "user-1")
	require.NoError(t, err)
	require.Equal(t, "✅ Output:\ndone", second.Output)

	select {
	case err := <-firstResult:
		require.ErrorIs(t, err, ErrRunSuperseded)
	case <-time.After(2 * time.Second):
		t.Fatal("superseded run never returned")
	}

	// The stale run must not overwrite the newer verdict.
	fetched, err := svc.Get(context.Background(), started.ID, "user-1")
	require.NoError(t, err)
	require.Equal(t, "✅ Output:\ndone", fetched.Output)
}

func TestSubmitFreezesAttempt(t *testing.T) {
	svc, store, publisher := newSessionFixture(t, nil, SessionConfig{TestDuration: 30 * time.Minute, TickInterval: 5 * time.Millisecond})

	started, err := svc.Start(context.Background(), "user-1", dto.StartSessionRequest{JobID: "job-1"})
	require.NoError(t, err)

	session, ok := store.Get(started.ID)
	require.True(t, ok)

	submitted, err := svc.Submit(context.Background(), started.ID, "user-1")
	require.NoError(t, err)
	require.Equal(t, string(models.TestPhaseSubmitted), submitted.Phase)
	require.Equal(t, 1, publisher.count(EventSessionSubmitted))

	err = svc.UpdateCode(context.Background(), started.ID, "user-1", dto.UpdateCodeRequest{Code: "late edit"})
	require.ErrorIs(t, err, ErrSessionNotFound)

	// No tick may fire after submission.
	remaining := session.Snapshot().TimeRemaining
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, remaining, session.Snapshot().TimeRemaining)
}

type captureJanitor struct {
	mu        sync.Mutex
	discarded []string
}

func (j *captureJanitor) Discard(sessionID string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.discarded = append(j.discarded, sessionID)
}

func (j *captureJanitor) ids() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.discarded...)
}

func TestSubmitDestroysSession(t *testing.T) {
	store := repository.NewSessionStore()
	jobs := &stubJobDirectory{job: recruiter.Job{
		ID:                "job-1",
		Title:             "Backend Engineer",
		ProblemStatements: []string{"Reverse a linked list."},
	}}
	publisher := &capturePublisher{}
	janitor := &captureJanitor{}
	validate := validator.New(validator.WithRequiredStructEnabled())

	svc := NewSessionService(store, jobs, nil, publisher, janitor, validate, zerolog.Nop(), SessionConfig{TestDuration: 30 * time.Minute, TickInterval: time.Hour})
	t.Cleanup(svc.Shutdown)

	started, err := svc.Start(context.Background(), "user-1", dto.StartSessionRequest{JobID: "job-1"})
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), started.ID, "user-1")
	require.NoError(t, err)

	// The submitted attempt leaves the store and its interview state with it.
	_, ok := store.Get(started.ID)
	require.False(t, ok)
	_, err = svc.Get(context.Background(), started.ID, "user-1")
	require.ErrorIs(t, err, ErrSessionNotFound)
	require.Equal(t, []string{started.ID}, janitor.ids())

	// A fresh attempt for the same candidate is allowed afterwards.
	again, err := svc.Start(context.Background(), "user-1", dto.StartSessionRequest{JobID: "job-1"})
	require.NoError(t, err)
	require.NotEqual(t, started.ID, again.ID)
}

func TestRunCallerCancellationIsNotSupersession(t *testing.T) {
	judgeClient := &stubJudge{
		submitFn: func(ctx context.Context, source, language string) (string, error) {
			return "token", nil
		},
		waitFn: func(ctx context.Context, token string) (judge.Verdict, error) {
			<-ctx.Done()
			return judge.Verdict{}, ctx.Err()
		},
	}
	svc, _, _ := newSessionFixture(t, judgeClient, SessionConfig{TestDuration: 30 * time.Minute, TickInterval: time.Hour})

	started, err := svc.Start(context.Background(), "user-1", dto.StartSessionRequest{JobID: "job-1"})
	require.NoError(t, err)

	runCtx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() {
		_, err := svc.Run(runCtx, started.ID, "user-1")
		result <- err
	}()

	cancel()

	select {
	case err := <-result:
		require.ErrorIs(t, err, context.Canceled)
		require.NotErrorIs(t, err, ErrRunSuperseded)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled run never returned")
	}
}

func TestSessionOwnershipEnforced(t *testing.T) {
	svc, _, _ := newSessionFixture(t, nil, SessionConfig{TestDuration: 30 * time.Minute, TickInterval: time.Hour})

	started, err := svc.Start(context.Background(), "user-1", dto.StartSessionRequest{JobID: "job-1"})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), started.ID, "user-2")
	require.ErrorIs(t, err, ErrSessionForbidden)

	_, err = svc.Get(context.Background(), "missing", "user-1")
	require.ErrorIs(t, err, ErrSessionNotFound)
}
