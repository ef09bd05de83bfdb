package models

import (
	"sync"
	"time"
)

// TestPhase enumerates the lifecycle states of a coding-test attempt.
type TestPhase string

const (
	// TestPhaseNotStarted indicates the session exists but the countdown has not begun.
	TestPhaseNotStarted TestPhase = "not_started"
	// TestPhaseInProgress indicates the candidate is actively taking the test.
	TestPhaseInProgress TestPhase = "in_progress"
	// TestPhaseExpired indicates the countdown reached zero before submission.
	TestPhaseExpired TestPhase = "time_expired"
	// TestPhaseSubmitted indicates the attempt has been handed in.
	TestPhaseSubmitted TestPhase = "submitted"
)

// Supported editor languages.
const (
	LanguagePython     = "python"
	LanguageJavaScript = "javascript"
	LanguageCPP        = "cpp"
)

// TestSession tracks one coding-test attempt. All state transitions go through
// the guarded methods below; the timer goroutine and HTTP handlers share it.
type TestSession struct {
	mu sync.Mutex

	ID               string
	JobID            string
	UserID           string
	Phase            TestPhase
	TimeRemaining    int
	Language         string
	Code             string
	Output           string
	ProblemStatement string
	Questions        []string
	CreatedAt        time.Time
}

// SessionSnapshot is an unguarded copy of session state for read-side consumers.
type SessionSnapshot struct {
	ID               string
	JobID            string
	UserID           string
	Phase            TestPhase
	TimeRemaining    int
	Language         string
	Code             string
	Output           string
	ProblemStatement string
	Questions        []string
	CreatedAt        time.Time
}

// Begin transitions the session from NotStarted to InProgress and arms the countdown.
func (s *TestSession) Begin(duration time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Phase != TestPhaseNotStarted {
		return false
	}

	s.Phase = TestPhaseInProgress
	s.TimeRemaining = int(duration.Seconds())
	return true
}

// Tick decrements the countdown by one second. It reports whether this tick
// caused the expiry transition; the transition fires at most once and the
// remaining time never goes below zero.
func (s *TestSession) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Phase != TestPhaseInProgress {
		return false
	}

	if s.TimeRemaining > 1 {
		s.TimeRemaining--
		return false
	}

	s.TimeRemaining = 0
	s.Phase = TestPhaseExpired
	return true
}

// Submit moves the attempt to its terminal Submitted phase. Submitting is
// allowed at any point once the test started, and is the only exit from the
// expired phase.
func (s *TestSession) Submit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Phase != TestPhaseInProgress && s.Phase != TestPhaseExpired {
		return false
	}

	s.Phase = TestPhaseSubmitted
	return true
}

// SetLanguage switches the editor language and replaces the code buffer with
// the supplied template. The switch is a no-op once time has expired; edits in
// the previous buffer are intentionally discarded.
func (s *TestSession) SetLanguage(language, template string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Phase == TestPhaseExpired || s.Phase == TestPhaseSubmitted {
		return false
	}

	s.Language = language
	s.Code = template
	return true
}

// SetCode replaces the candidate's working buffer.
func (s *TestSession) SetCode(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Phase == TestPhaseSubmitted {
		return false
	}

	s.Code = code
	return true
}

// SetOutput records the latest execution output shown in the console area.
func (s *TestSession) SetOutput(output string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Output = output
}

// Active reports whether the attempt can still interact with the editor.
func (s *TestSession) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.Phase == TestPhaseInProgress
}

// Snapshot copies the current state under the lock.
func (s *TestSession) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	questions := make([]string, len(s.Questions))
	copy(questions, s.Questions)

	return SessionSnapshot{
		ID:               s.ID,
		JobID:            s.JobID,
		UserID:           s.UserID,
		Phase:            s.Phase,
		TimeRemaining:    s.TimeRemaining,
		Language:         s.Language,
		Code:             s.Code,
		Output:           s.Output,
		ProblemStatement: s.ProblemStatement,
		Questions:        questions,
		CreatedAt:        s.CreatedAt,
	}
}

// SupportedLanguage reports whether the gateway knows how to run the language.
func SupportedLanguage(language string) bool {
	switch language {
	case LanguagePython, LanguageJavaScript, LanguageCPP:
		return true
	default:
		return false
	}
}
