package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/hirolabs/hirehub-api/internal/dto"
	"github.com/hirolabs/hirehub-api/pkg/recruiter"
)

// AdminDirectory is the slice of the recruiting backend the HR console needs.
type AdminDirectory interface {
	JobByID(ctx context.Context, jobID, userID string) (recruiter.Job, error)
	CreateJob(ctx context.Context, job recruiter.Job) error
	UpdateJob(ctx context.Context, jobID string, job recruiter.Job) error
	DeleteJob(ctx context.Context, jobID string) error
	HRs(ctx context.Context) ([]recruiter.HR, error)
	UpdateHR(ctx context.Context, id string, hr recruiter.HR) error
	DeleteHR(ctx context.Context, id string) error
	CandidatesByJob(ctx context.Context, jobID string) ([]recruiter.Candidate, error)
	CandidateByID(ctx context.Context, id string) (recruiter.Candidate, error)
	DownloadResume(ctx context.Context, id string) ([]byte, string, error)
}

// AdminService drives the HR console: job postings, applicant review and HR
// account management. All records live in the recruiting backend; the service
// validates and forwards.
type AdminService interface {
	CreateJob(ctx context.Context, payload dto.JobRequest) error
	UpdateJob(ctx context.Context, jobID string, payload dto.JobRequest) error
	DeleteJob(ctx context.Context, jobID string) error
	JobDetail(ctx context.Context, jobID, hrID string) (recruiter.Job, error)
	ListHRs(ctx context.Context) ([]recruiter.HR, error)
	UpdateHR(ctx context.Context, id string, hr recruiter.HR) error
	DeleteHR(ctx context.Context, id string) error
	Applicants(ctx context.Context, jobID string) ([]recruiter.Candidate, error)
	Applicant(ctx context.Context, id string) (recruiter.Candidate, error)
	Resume(ctx context.Context, id string) ([]byte, string, error)
}

type adminService struct {
	directory AdminDirectory
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAdminService constructs the admin service.
func NewAdminService(directory AdminDirectory, validate *validator.Validate, logger zerolog.Logger) AdminService {
	return &adminService{
		directory: directory,
		validator: validate,
		logger:    logger.With().Str("component", "admin_service").Logger(),
	}
}

func (s *adminService) CreateJob(ctx context.Context, payload dto.JobRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	if err := s.directory.CreateJob(ctx, payload.ToJob()); err != nil {
		return fmt.Errorf("create job: %w", err)
	}

	s.logger.Info().Str("job_title", payload.Title).Msg("job posted")
	return nil
}

func (s *adminService) UpdateJob(ctx context.Context, jobID string, payload dto.JobRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	if err := s.directory.UpdateJob(ctx, jobID, payload.ToJob()); err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	return nil
}

func (s *adminService) DeleteJob(ctx context.Context, jobID string) error {
	if err := s.directory.DeleteJob(ctx, jobID); err != nil {
		return fmt.Errorf("delete job: %w", err)
	}

	s.logger.Info().Str("job_id", jobID).Msg("job deleted")
	return nil
}

// JobDetail returns the full job record, interview questions included. Only
// the HR console gets this view.
func (s *adminService) JobDetail(ctx context.Context, jobID, hrID string) (recruiter.Job, error) {
	job, err := s.directory.JobByID(ctx, jobID, hrID)
	if err != nil {
		return recruiter.Job{}, fmt.Errorf("fetch job: %w", err)
	}
	return job, nil
}

func (s *adminService) ListHRs(ctx context.Context) ([]recruiter.HR, error) {
	hrs, err := s.directory.HRs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list hr accounts: %w", err)
	}

	for i := range hrs {
		hrs[i].Password = ""
	}
	return hrs, nil
}

func (s *adminService) UpdateHR(ctx context.Context, id string, hr recruiter.HR) error {
	if err := s.directory.UpdateHR(ctx, id, hr); err != nil {
		return fmt.Errorf("update hr account: %w", err)
	}
	return nil
}

func (s *adminService) DeleteHR(ctx context.Context, id string) error {
	if err := s.directory.DeleteHR(ctx, id); err != nil {
		return fmt.Errorf("delete hr account: %w", err)
	}

	s.logger.Info().Str("hr_id", id).Msg("hr account deleted")
	return nil
}

func (s *adminService) Applicants(ctx context.Context, jobID string) ([]recruiter.Candidate, error) {
	candidates, err := s.directory.CandidatesByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("list applicants: %w", err)
	}
	return candidates, nil
}

func (s *adminService) Applicant(ctx context.Context, id string) (recruiter.Candidate, error) {
	candidate, err := s.directory.CandidateByID(ctx, id)
	if err != nil {
		return recruiter.Candidate{}, fmt.Errorf("fetch applicant: %w", err)
	}
	return candidate, nil
}

func (s *adminService) Resume(ctx context.Context, id string) ([]byte, string, error) {
	payload, contentType, err := s.directory.DownloadResume(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("download resume: %w", err)
	}
	return payload, contentType, nil
}
