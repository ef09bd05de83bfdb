package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newStartedSession(seconds int) *TestSession {
	session := &TestSession{ID: "s-1", Phase: TestPhaseNotStarted}
	session.Begin(time.Duration(seconds) * time.Second)
	return session
}

func TestBeginOnlyFromNotStarted(t *testing.T) {
	session := newStartedSession(10)
	require.Equal(t, TestPhaseInProgress, session.Phase)
	require.Equal(t, 10, session.TimeRemaining)

	require.False(t, session.Begin(time.Minute))
}

func TestTickExpiresExactlyOnceAndNeverGoesNegative(t *testing.T) {
	session := newStartedSession(3)

	require.False(t, session.Tick())
	require.False(t, session.Tick())
	require.True(t, session.Tick())

	require.Equal(t, TestPhaseExpired, session.Phase)
	require.Equal(t, 0, session.TimeRemaining)

	// Extra ticks must not re-fire the transition or drop below zero.
	require.False(t, session.Tick())
	require.Equal(t, 0, session.TimeRemaining)
}

func TestSubmitIsOnlyExitFromExpired(t *testing.T) {
	session := newStartedSession(1)
	require.True(t, session.Tick())
	require.Equal(t, TestPhaseExpired, session.Phase)

	require.False(t, session.SetLanguage(LanguagePython, "# template"))
	require.True(t, session.SetCode("late edit"))
	require.True(t, session.Submit())
	require.Equal(t, TestPhaseSubmitted, session.Phase)

	require.False(t, session.Submit())
	require.False(t, session.SetCode("after submit"))
}

func TestSetLanguageReplacesBufferWhileInProgress(t *testing.T) {
	session := newStartedSession(60)
	session.SetCode("console.log(42)")

	require.True(t, session.SetLanguage(LanguagePython, "# fresh template"))
	require.Equal(t, LanguagePython, session.Language)
	require.Equal(t, "# fresh template", session.Code)
}

func TestSupportedLanguage(t *testing.T) {
	require.True(t, SupportedLanguage(LanguagePython))
	require.True(t, SupportedLanguage(LanguageJavaScript))
	require.True(t, SupportedLanguage(LanguageCPP))
	require.False(t, SupportedLanguage("rust"))
}
