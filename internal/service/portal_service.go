package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hirolabs/hirehub-api/pkg/recruiter"
)

// ErrResumeRejected indicates the uploaded file is not an accepted document.
var ErrResumeRejected = errors.New("resume format not accepted")

// JobBoard is the slice of the recruiting backend serving the candidate portal.
type JobBoard interface {
	Jobs(ctx context.Context, userID string) ([]recruiter.Job, error)
	JobByID(ctx context.Context, jobID, userID string) (recruiter.Job, error)
	UploadResume(ctx context.Context, jobID, userID, filename string, resume []byte) error
}

// PortalService serves the candidate-facing job board: browsing openings and
// applying with a resume.
type PortalService interface {
	ListJobs(ctx context.Context, userID string) ([]recruiter.Job, error)
	JobDetail(ctx context.Context, jobID, userID string) (recruiter.Job, error)
	Apply(ctx context.Context, jobID, userID, filename string, resume []byte) error
}

type portalService struct {
	board  JobBoard
	logger zerolog.Logger
}

// NewPortalService constructs the portal service.
func NewPortalService(board JobBoard, logger zerolog.Logger) PortalService {
	return &portalService{
		board:  board,
		logger: logger.With().Str("component", "portal_service").Logger(),
	}
}

func (s *portalService) ListJobs(ctx context.Context, userID string) ([]recruiter.Job, error) {
	jobs, err := s.board.Jobs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	// Interview questions are never exposed to candidates before the call.
	for i := range jobs {
		jobs[i].Questions = nil
	}
	return jobs, nil
}

func (s *portalService) JobDetail(ctx context.Context, jobID, userID string) (recruiter.Job, error) {
	job, err := s.board.JobByID(ctx, jobID, userID)
	if err != nil {
		return recruiter.Job{}, fmt.Errorf("fetch job: %w", err)
	}

	job.Questions = nil
	return job, nil
}

func (s *portalService) Apply(ctx context.Context, jobID, userID, filename string, resume []byte) error {
	if jobID == "" || userID == "" {
		return fmt.Errorf("job id and user id are required")
	}
	if len(resume) == 0 {
		return fmt.Errorf("%w: empty file", ErrResumeRejected)
	}

	if err := s.board.UploadResume(ctx, jobID, userID, filename, resume); err != nil {
		if errors.Is(err, recruiter.ErrUnsupportedResume) {
			return fmt.Errorf("%w: %v", ErrResumeRejected, err)
		}
		return fmt.Errorf("upload resume: %w", err)
	}

	s.logger.Info().Str("job_id", jobID).Str("user_id", userID).Msg("application submitted")
	return nil
}
