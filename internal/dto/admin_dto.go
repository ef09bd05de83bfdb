package dto

import "github.com/hirolabs/hirehub-api/pkg/recruiter"

// JobRequest creates or replaces a job opening.
type JobRequest struct {
	Title             string   `json:"job_title" validate:"required"`
	Department        string   `json:"job_department" validate:"required"`
	Type              string   `json:"job_type" validate:"required,oneof='full day' 'half day'"`
	Descriptions      []string `json:"job_des" validate:"required,min=1,dive,required"`
	Applicants        int      `json:"job_applicant" validate:"gte=0"`
	PostedDate        string   `json:"posted_date" validate:"required"`
	OpenDate          string   `json:"open_date" validate:"required"`
	ProblemStatements []string `json:"problem_statements" validate:"required,min=1,dive,required"`
	Questions         []string `json:"job_questions" validate:"dive,required"`
	HRID              string   `json:"hr_id" validate:"required"`
}

// ToJob converts the request into the backend's job shape.
func (r JobRequest) ToJob() recruiter.Job {
	return recruiter.Job{
		Title:             r.Title,
		Department:        r.Department,
		Type:              r.Type,
		Descriptions:      r.Descriptions,
		Applicants:        r.Applicants,
		PostedDate:        r.PostedDate,
		OpenDate:          r.OpenDate,
		ProblemStatements: r.ProblemStatements,
		Questions:         r.Questions,
		HRID:              r.HRID,
	}
}
