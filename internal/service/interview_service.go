package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hirolabs/hirehub-api/internal/dto"
	"github.com/hirolabs/hirehub-api/internal/models"
	"github.com/hirolabs/hirehub-api/internal/observability"
	"github.com/hirolabs/hirehub-api/internal/repository"
	"github.com/hirolabs/hirehub-api/pkg/recruiter"
	"github.com/hirolabs/hirehub-api/pkg/voice"
)

// ErrInterviewActive indicates a call is already running for the attempt.
var ErrInterviewActive = errors.New("interview already in progress")

// ErrInterviewNotFound indicates no interview state exists for the attempt.
var ErrInterviewNotFound = errors.New("interview not found")

// ErrVoiceUnavailable indicates the voice service is not configured.
var ErrVoiceUnavailable = errors.New("voice interview unavailable")

// Call status values surfaced to the UI.
const (
	CallStatusIdle       = "idle"
	CallStatusConnecting = "connecting"
	CallStatusActive     = "active"
	CallStatusSpeaking   = "speaking"
)

const observerBufferSize = 16

// VoiceFactory opens a fresh call client for one attempt. It returns
// voice.ErrMissingCredential when the publishable key is not configured.
type VoiceFactory func() (voice.Client, error)

// FeedbackSink is the slice of the recruiting backend that accepts scores.
type FeedbackSink interface {
	PostScore(ctx context.Context, jobID, userID string, feedback recruiter.Feedback) error
}

// InterviewConfig carries the voice-call knobs.
type InterviewConfig struct {
	SilenceTimeoutSec int
	MaxCallSeconds    int
}

// InterviewService drives one spoken interview per coding-test attempt and
// captures its transcript.
type InterviewService interface {
	Start(ctx context.Context, sessionID, userID string) error
	Stop(sessionID, userID string) error
	Status(sessionID, userID string) (dto.InterviewStatusResponse, error)
	ClearTranscript(sessionID, userID string) error
	Subscribe(sessionID, userID string) (<-chan dto.TranscriptEntryResponse, func(), error)
	Discard(sessionID string)
	Shutdown()
}

type interviewService struct {
	sessions repository.SessionStore
	factory  VoiceFactory
	feedback FeedbackSink
	events   EventPublisher
	logger   zerolog.Logger
	tracer   trace.Tracer
	config   InterviewConfig

	mu     sync.Mutex
	states map[string]*interviewState
}

// interviewState is the per-attempt call bookkeeping. The event loop is the
// only transcript writer; readers copy under the lock.
type interviewState struct {
	mu           sync.Mutex
	jobID        string
	userID       string
	transcript   []models.TranscriptEntry
	conversation json.RawMessage
	connected    bool
	callStatus   string
	stopped      bool
	delivered    bool
	client       voice.Client
	observers    map[chan dto.TranscriptEntryResponse]struct{}
}

// NewInterviewService constructs the interview service.
func NewInterviewService(sessions repository.SessionStore, factory VoiceFactory, feedback FeedbackSink, events EventPublisher, logger zerolog.Logger, cfg InterviewConfig) InterviewService {
	return &interviewService{
		sessions: sessions,
		factory:  factory,
		feedback: feedback,
		events:   events,
		logger:   logger.With().Str("component", "interview_service").Logger(),
		tracer:   otel.Tracer("github.com/hirolabs/hirehub-api/internal/service/interview"),
		config:   cfg,
		states:   make(map[string]*interviewState),
	}
}

func (s *interviewService) Start(ctx context.Context, sessionID, userID string) error {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return ErrSessionNotFound
	}
	if session.UserID != userID {
		return ErrSessionForbidden
	}

	snapshot := session.Snapshot()
	state := s.state(sessionID, snapshot.JobID, userID)

	state.mu.Lock()
	if state.connected || state.callStatus == CallStatusConnecting {
		state.mu.Unlock()
		return ErrInterviewActive
	}
	state.stopped = false
	state.delivered = false
	state.callStatus = CallStatusConnecting
	state.mu.Unlock()

	// The credential is validated before any connection attempt; its absence
	// is reported on the transcript as a system message.
	if s.factory == nil {
		s.appendSystem(state, "❌ Voice API key is missing. Check your environment configuration.")
		s.resetStatus(state)
		return ErrVoiceUnavailable
	}

	client, err := s.factory()
	if err != nil {
		if errors.Is(err, voice.ErrMissingCredential) {
			s.appendSystem(state, "❌ Voice API key is missing. Check your environment configuration.")
		} else {
			s.appendSystem(state, "❌ Failed to start call: "+err.Error())
		}
		s.resetStatus(state)
		return ErrVoiceUnavailable
	}

	assistant := voice.NewAssistantConfig(snapshot.Questions, s.config.SilenceTimeoutSec, s.config.MaxCallSeconds)

	stream, err := client.Start(ctx, assistant)
	if err != nil {
		s.appendSystem(state, "❌ Failed to start call: "+err.Error())
		s.resetStatus(state)
		return err
	}

	state.mu.Lock()
	state.client = client
	state.mu.Unlock()

	s.appendSystem(state, "📞 Initiating call with dynamic assistant...")

	go s.consume(state, sessionID, stream)

	return nil
}

// Stop tears down the call if one is open and freezes the attempt's
// transcript: no event received after Stop may append a line or trigger
// feedback delivery. Safe to call repeatedly.
func (s *interviewService) Stop(sessionID, userID string) error {
	state, err := s.ownedState(sessionID, userID)
	if err != nil {
		return err
	}

	state.mu.Lock()
	state.stopped = true
	state.connected = false
	state.callStatus = CallStatusIdle
	client := state.client
	state.client = nil
	state.mu.Unlock()

	if client != nil {
		client.Stop()
	}
	return nil
}

func (s *interviewService) Status(sessionID, userID string) (dto.InterviewStatusResponse, error) {
	state, err := s.ownedState(sessionID, userID)
	if err != nil {
		return dto.InterviewStatusResponse{}, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	entries := make([]models.TranscriptEntry, len(state.transcript))
	copy(entries, state.transcript)

	return dto.InterviewStatusResponse{
		Connected:  state.connected,
		CallStatus: state.callStatus,
		Transcript: dto.NewTranscriptResponse(entries),
	}, nil
}

// ClearTranscript empties the transcript without touching the call or the
// coding-test phase.
func (s *interviewService) ClearTranscript(sessionID, userID string) error {
	state, err := s.ownedState(sessionID, userID)
	if err != nil {
		return err
	}

	state.mu.Lock()
	state.transcript = nil
	state.mu.Unlock()
	return nil
}

func (s *interviewService) Subscribe(sessionID, userID string) (<-chan dto.TranscriptEntryResponse, func(), error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, ErrSessionNotFound
	}
	if session.UserID != userID {
		return nil, nil, ErrSessionForbidden
	}

	state := s.state(sessionID, session.Snapshot().JobID, userID)
	ch := make(chan dto.TranscriptEntryResponse, observerBufferSize)

	state.mu.Lock()
	state.observers[ch] = struct{}{}
	state.mu.Unlock()

	cancel := func() {
		state.mu.Lock()
		if _, ok := state.observers[ch]; ok {
			delete(state.observers, ch)
			close(ch)
		}
		state.mu.Unlock()
	}

	return ch, cancel, nil
}

// Discard forgets an attempt's interview state entirely: any live call is torn
// down, observers are released, and the transcript goes with the attempt.
// Called when the attempt itself is destroyed.
func (s *interviewService) Discard(sessionID string) {
	s.mu.Lock()
	state, ok := s.states[sessionID]
	if ok {
		delete(s.states, sessionID)
	}
	s.mu.Unlock()

	if !ok {
		return
	}

	state.mu.Lock()
	state.stopped = true
	state.connected = false
	state.callStatus = CallStatusIdle
	client := state.client
	state.client = nil
	for observer := range state.observers {
		delete(state.observers, observer)
		close(observer)
	}
	state.mu.Unlock()

	if client != nil {
		client.Stop()
	}
}

// Shutdown stops every live call.
func (s *interviewService) Shutdown() {
	s.mu.Lock()
	states := make([]*interviewState, 0, len(s.states))
	for _, state := range s.states {
		states = append(states, state)
	}
	s.mu.Unlock()

	for _, state := range states {
		state.mu.Lock()
		state.stopped = true
		client := state.client
		state.client = nil
		state.mu.Unlock()

		if client != nil {
			client.Stop()
		}
	}
}

// consume is the single ordered handler loop for one call's event stream.
// Arrival order on the channel is the source of truth for transcript order.
func (s *interviewService) consume(state *interviewState, sessionID string, stream <-chan voice.Event) {
	for event := range stream {
		state.mu.Lock()
		stopped := state.stopped
		state.mu.Unlock()
		if stopped {
			continue
		}

		observability.InterviewEvents().WithLabelValues(string(event.Type)).Inc()

		switch event.Type {
		case voice.EventConnectionOpened:
			state.mu.Lock()
			state.connected = true
			state.callStatus = CallStatusActive
			state.mu.Unlock()
			s.appendSystem(state, "🟢 Call connected successfully")

		case voice.EventSpeechStarted:
			state.mu.Lock()
			state.callStatus = CallStatusSpeaking
			state.mu.Unlock()

		case voice.EventSpeechEnded:
			state.mu.Lock()
			state.callStatus = CallStatusActive
			state.mu.Unlock()

		case voice.EventTranscript:
			speaker := models.SpeakerAssistant
			if event.Speaker == voice.SpeakerHuman {
				speaker = models.SpeakerHuman
			}
			s.append(state, speaker, event.Text)

		case voice.EventConversationSnapshot:
			// Latest snapshot wins wholesale; no merging.
			state.mu.Lock()
			state.conversation = event.Conversation
			state.mu.Unlock()

		case voice.EventError:
			s.appendSystem(state, "❌ Error: "+event.Reason)

		case voice.EventConnectionClosed:
			state.mu.Lock()
			state.connected = false
			state.callStatus = CallStatusIdle
			state.client = nil
			state.mu.Unlock()
			s.appendSystem(state, "🔴 Call ended")
			s.deliverFeedback(state, sessionID)
		}
	}
}

// deliverFeedback makes exactly one attempt to hand the conversation to the
// backend. Missing job id, user id or conversation skips delivery with a
// warning; a failed POST is logged and never retried — the interview is
// already over and there is no recovery path.
func (s *interviewService) deliverFeedback(state *interviewState, sessionID string) {
	state.mu.Lock()
	if state.delivered || state.stopped {
		state.mu.Unlock()
		return
	}
	state.delivered = true
	jobID := state.jobID
	userID := state.userID
	conversation := state.conversation
	state.mu.Unlock()

	if jobID == "" || userID == "" || len(conversation) == 0 {
		observability.FeedbackDeliveries().WithLabelValues("skipped").Inc()
		s.logger.Warn().
			Str("session_id", sessionID).
			Str("job_id", jobID).
			Str("user_id", userID).
			Msg("feedback not sent: missing job id, user id, or conversation")
		return
	}

	ctx, span := s.tracer.Start(context.Background(), "interview.deliver_feedback",
		trace.WithAttributes(
			attribute.String("job.id", jobID),
			attribute.String("user.id", userID),
		))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.feedback.PostScore(ctx, jobID, userID, recruiter.Feedback{Conversation: conversation}); err != nil {
		observability.FeedbackDeliveries().WithLabelValues("failed").Inc()
		span.RecordError(err)
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to send interview feedback")
		return
	}

	observability.FeedbackDeliveries().WithLabelValues("delivered").Inc()
	s.logger.Info().Str("session_id", sessionID).Msg("interview feedback sent to backend")

	s.events.Publish(EventInterviewCompleted, LifecycleEvent{
		SessionID: sessionID,
		JobID:     jobID,
		UserID:    userID,
		At:        time.Now().UTC(),
	})
}

func (s *interviewService) state(sessionID, jobID, userID string) *interviewState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[sessionID]
	if !ok {
		state = &interviewState{
			jobID:      jobID,
			userID:     userID,
			callStatus: CallStatusIdle,
			observers:  make(map[chan dto.TranscriptEntryResponse]struct{}),
		}
		s.states[sessionID] = state
	}
	return state
}

func (s *interviewService) ownedState(sessionID, userID string) (*interviewState, error) {
	s.mu.Lock()
	state, ok := s.states[sessionID]
	s.mu.Unlock()

	if !ok {
		return nil, ErrInterviewNotFound
	}
	if state.userID != userID {
		return nil, ErrSessionForbidden
	}
	return state, nil
}

func (s *interviewService) append(state *interviewState, speaker, message string) {
	entry := models.TranscriptEntry{
		ID:        uuid.NewString(),
		Speaker:   speaker,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}

	state.mu.Lock()
	// Re-checked under the same lock as the append itself: an event that
	// passed the loop's check while Stop was landing still may not write.
	if state.stopped {
		state.mu.Unlock()
		return
	}
	state.transcript = append(state.transcript, entry)
	response := dto.NewTranscriptEntryResponse(entry)
	for observer := range state.observers {
		select {
		case observer <- response:
		default:
			// Slow observers miss lines rather than stalling the event loop.
		}
	}
	state.mu.Unlock()
}

func (s *interviewService) appendSystem(state *interviewState, message string) {
	s.append(state, models.SpeakerSystem, message)
}

func (s *interviewService) resetStatus(state *interviewState) {
	state.mu.Lock()
	state.callStatus = CallStatusIdle
	state.mu.Unlock()
}
