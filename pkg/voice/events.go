package voice

import "encoding/json"

// EventType tags the variants delivered on a call's event stream.
type EventType string

const (
	// EventConnectionOpened signals the call was established.
	EventConnectionOpened EventType = "connection_opened"
	// EventConnectionClosed signals the call ended; it is always the final event.
	EventConnectionClosed EventType = "connection_closed"
	// EventSpeechStarted signals the remote party began speaking.
	EventSpeechStarted EventType = "speech_started"
	// EventSpeechEnded signals the remote party stopped speaking.
	EventSpeechEnded EventType = "speech_ended"
	// EventTranscript carries one finalized utterance.
	EventTranscript EventType = "transcript"
	// EventConversationSnapshot replaces the full conversation wholesale.
	EventConversationSnapshot EventType = "conversation_snapshot"
	// EventError reports a service-side problem; it does not end the call.
	EventError EventType = "error"
)

// Speaker identifies who produced a transcript line.
type Speaker string

const (
	// SpeakerHuman is the candidate on the call.
	SpeakerHuman Speaker = "human"
	// SpeakerAssistant is the interviewing assistant.
	SpeakerAssistant Speaker = "assistant"
)

// Event is one tagged occurrence on the call's single ordered stream.
// Consumers must handle events in arrival order; the stream is the only
// source of truth for transcript ordering.
type Event struct {
	Type         EventType
	Speaker      Speaker
	Text         string
	Conversation json.RawMessage
	Reason       string
}
