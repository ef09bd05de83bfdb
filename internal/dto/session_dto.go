package dto

import (
	"time"

	"github.com/hirolabs/hirehub-api/internal/models"
)

// StartSessionRequest opens a coding-test attempt for a job.
type StartSessionRequest struct {
	JobID string `json:"job_id" validate:"required"`
}

// SwitchLanguageRequest changes the editor language for an attempt.
type SwitchLanguageRequest struct {
	Language string `json:"language" validate:"required,oneof=python javascript cpp"`
}

// UpdateCodeRequest replaces the candidate's working buffer.
type UpdateCodeRequest struct {
	Code string `json:"code" validate:"required"`
}

// SessionResponse represents one coding-test attempt to API consumers.
type SessionResponse struct {
	ID               string    `json:"id"`
	JobID            string    `json:"job_id"`
	Phase            string    `json:"phase"`
	TimeRemaining    int       `json:"time_remaining"`
	Language         string    `json:"language"`
	Code             string    `json:"code"`
	Output           string    `json:"output"`
	ProblemStatement string    `json:"problem_statement"`
	CreatedAt        time.Time `json:"created_at"`
}

// RunResponse carries the classified verdict of one code run.
type RunResponse struct {
	Category string `json:"category"`
	Output   string `json:"output"`
}

// NewSessionResponse builds a response DTO from a session snapshot.
func NewSessionResponse(snapshot models.SessionSnapshot) SessionResponse {
	return SessionResponse{
		ID:               snapshot.ID,
		JobID:            snapshot.JobID,
		Phase:            string(snapshot.Phase),
		TimeRemaining:    snapshot.TimeRemaining,
		Language:         snapshot.Language,
		Code:             snapshot.Code,
		Output:           snapshot.Output,
		ProblemStatement: snapshot.ProblemStatement,
		CreatedAt:        snapshot.CreatedAt,
	}
}
