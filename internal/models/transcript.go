package models

import "time"

// Transcript speakers. The assistant keeps its product-facing name so the
// stored conversation matches what the candidate saw on screen.
const (
	SpeakerHuman     = "Human"
	SpeakerAssistant = "Hiro"
	SpeakerSystem    = "System"
)

// TranscriptEntry is one line of the live interview transcript. Entries are
// append-only and stamped with local receipt time, not server time.
type TranscriptEntry struct {
	ID        string    `json:"id"`
	Speaker   string    `json:"speaker"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
