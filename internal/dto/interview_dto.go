package dto

import (
	"time"

	"github.com/hirolabs/hirehub-api/internal/models"
)

// TranscriptEntryResponse is one transcript line shown to the candidate.
type TranscriptEntryResponse struct {
	ID        string    `json:"id"`
	Speaker   string    `json:"speaker"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// InterviewStatusResponse describes the live state of the voice call.
type InterviewStatusResponse struct {
	Connected  bool                      `json:"connected"`
	CallStatus string                    `json:"call_status"`
	Transcript []TranscriptEntryResponse `json:"transcript"`
}

// NewTranscriptEntryResponse converts a transcript entry model into a DTO.
func NewTranscriptEntryResponse(entry models.TranscriptEntry) TranscriptEntryResponse {
	return TranscriptEntryResponse{
		ID:        entry.ID,
		Speaker:   entry.Speaker,
		Message:   entry.Message,
		Timestamp: entry.Timestamp,
	}
}

// NewTranscriptResponse converts a transcript slice preserving order.
func NewTranscriptResponse(entries []models.TranscriptEntry) []TranscriptEntryResponse {
	out := make([]TranscriptEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, NewTranscriptEntryResponse(entry))
	}
	return out
}
