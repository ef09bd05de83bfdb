package recruiter

import "encoding/json"

// Job mirrors the recruiting backend's job record.
type Job struct {
	ID                string   `json:"_id,omitempty"`
	Title             string   `json:"job_title"`
	Department        string   `json:"job_department"`
	Type              string   `json:"job_type"`
	Descriptions      []string `json:"job_des"`
	Applicants        int      `json:"job_applicant"`
	PostedDate        string   `json:"posted_date"`
	OpenDate          string   `json:"open_date"`
	ProblemStatements []string `json:"problem_statements"`
	Questions         []string `json:"job_questions,omitempty"`
	HRID              string   `json:"hr_id"`
}

// HR mirrors the backend's HR account record.
type HR struct {
	ID       string `json:"_id,omitempty"`
	Email    string `json:"hr_email"`
	Username string `json:"hr_username"`
	Password string `json:"hr_pass,omitempty"`
}

// User mirrors the backend's candidate account record.
type User struct {
	ID       string `json:"_id,omitempty"`
	Name     string `json:"user_name"`
	Password string `json:"user_pass,omitempty"`
}

// Candidate mirrors the backend's job-user application record.
type Candidate struct {
	ID           string          `json:"_id,omitempty"`
	JobID        string          `json:"job_id"`
	UserID       string          `json:"user_id"`
	Status       int             `json:"status"`
	ResumeDetail json.RawMessage `json:"resume_detail,omitempty"`
	ResumeScore  int             `json:"resume_score"`
}

// Feedback carries the interview conversation posted to the scoring endpoint.
// The conversation is an opaque snapshot owned by the voice service.
type Feedback struct {
	Conversation json.RawMessage `json:"conversation"`
}
