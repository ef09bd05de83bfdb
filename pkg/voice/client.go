package voice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrMissingCredential indicates the voice public key was not configured.
var ErrMissingCredential = errors.New("voice public key missing")

// ErrAlreadyStarted indicates a call is already in progress on this client.
var ErrAlreadyStarted = errors.New("call already in progress")

const eventBufferSize = 32

// Inbound frames must at least carry a type tag; everything else is optional
// and depends on the frame kind.
const frameSchemaJSON = `{
	"type": "object",
	"required": ["type"],
	"properties": {
		"type": {"type": "string", "minLength": 1},
		"transcriptType": {"type": "string"},
		"role": {"type": "string"},
		"transcript": {"type": "string"},
		"conversation": {},
		"error": {
			"type": "object",
			"properties": {"message": {"type": "string"}}
		}
	}
}`

var frameSchema = jsonschema.MustCompileString("voice_frame.json", frameSchemaJSON)

// Client drives one real-time interview call at a time.
type Client interface {
	Start(ctx context.Context, assistant AssistantConfig) (<-chan Event, error)
	Stop()
}

// Config describes how to reach the voice service.
type Config struct {
	BaseURL   string
	PublicKey string
	Dialer    *websocket.Dialer
}

type client struct {
	config Config
	dialer *websocket.Dialer
	logger zerolog.Logger

	mu      sync.Mutex
	conn    *websocket.Conn
	started bool
}

// New constructs a voice client. The publishable key is validated up front so
// a missing credential is reported before any connection attempt.
func New(cfg Config, logger zerolog.Logger) (Client, error) {
	if cfg.PublicKey == "" {
		return nil, ErrMissingCredential
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("voice base url must be provided")
	}

	dialer := cfg.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	return &client{
		config: cfg,
		dialer: dialer,
		logger: logger.With().Str("component", "voice_client").Logger(),
	}, nil
}

type startFrame struct {
	Type      string          `json:"type"`
	Assistant AssistantConfig `json:"assistant"`
}

type frame struct {
	Type           string          `json:"type"`
	TranscriptType string          `json:"transcriptType,omitempty"`
	Role           string          `json:"role,omitempty"`
	Transcript     string          `json:"transcript,omitempty"`
	Conversation   json.RawMessage `json:"conversation,omitempty"`
	Error          *frameError     `json:"error,omitempty"`
}

type frameError struct {
	Message string `json:"message"`
}

// Start opens the call and returns its ordered event stream. The stream ends
// with exactly one ConnectionClosed event, after which the channel is closed.
func (c *client) Start(ctx context.Context, assistant AssistantConfig) (<-chan Event, error) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return nil, ErrAlreadyStarted
	}
	c.started = true
	c.mu.Unlock()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.config.PublicKey)

	conn, resp, err := c.dialer.DialContext(ctx, c.config.BaseURL+"/call", header)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		c.reset()
		return nil, fmt.Errorf("dial voice service: %w", err)
	}
	if resp != nil {
		resp.Body.Close()
	}

	if err := conn.WriteJSON(startFrame{Type: "start", Assistant: assistant}); err != nil {
		conn.Close()
		c.reset()
		return nil, fmt.Errorf("send assistant config: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	events := make(chan Event, eventBufferSize)
	go c.readLoop(conn, events)

	return events, nil
}

// Stop tears down the connection if one is open. Safe to call repeatedly and
// when no call is active.
func (c *client) Stop() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn == nil {
		return
	}

	deadline := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "stopped")
	_ = conn.WriteMessage(websocket.CloseMessage, deadline)
	_ = conn.Close()
}

func (c *client) reset() {
	c.mu.Lock()
	c.started = false
	c.conn = nil
	c.mu.Unlock()
}

func (c *client) readLoop(conn *websocket.Conn, events chan<- Event) {
	defer func() {
		events <- Event{Type: EventConnectionClosed}
		close(events)
		_ = conn.Close()
		c.reset()
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug().Err(err).Msg("voice stream closed")
			}
			return
		}

		event, emit, end := c.decode(payload)
		if end {
			return
		}
		if emit {
			events <- event
		}
	}
}

// decode maps one wire frame onto a tagged event. The returned end flag marks
// frames that terminate the stream; ConnectionClosed itself is emitted by the
// readLoop teardown so it happens exactly once per call.
func (c *client) decode(payload []byte) (Event, bool, bool) {
	var untyped interface{}
	if err := json.Unmarshal(payload, &untyped); err != nil {
		c.logger.Warn().Err(err).Msg("discarding malformed voice frame")
		return Event{}, false, false
	}
	if err := frameSchema.Validate(untyped); err != nil {
		c.logger.Warn().Err(err).Msg("discarding voice frame failing schema validation")
		return Event{}, false, false
	}

	var f frame
	if err := json.Unmarshal(payload, &f); err != nil {
		c.logger.Warn().Err(err).Msg("discarding undecodable voice frame")
		return Event{}, false, false
	}

	switch f.Type {
	case "call-start":
		return Event{Type: EventConnectionOpened}, true, false
	case "call-end":
		return Event{}, false, true
	case "speech-start":
		return Event{Type: EventSpeechStarted}, true, false
	case "speech-end":
		return Event{Type: EventSpeechEnded}, true, false
	case "transcript":
		if f.TranscriptType != "final" || f.Transcript == "" {
			return Event{}, false, false
		}
		speaker := SpeakerAssistant
		if f.Role == "user" {
			speaker = SpeakerHuman
		}
		return Event{Type: EventTranscript, Speaker: speaker, Text: f.Transcript}, true, false
	case "conversation-update":
		return Event{Type: EventConversationSnapshot, Conversation: f.Conversation}, true, false
	case "error":
		reason := "unknown error"
		if f.Error != nil && f.Error.Message != "" {
			reason = f.Error.Message
		}
		return Event{Type: EventError, Reason: reason}, true, false
	default:
		c.logger.Debug().Str("type", f.Type).Msg("skipping unrecognized voice frame")
		return Event{}, false, false
	}
}
