package recruiter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
)

// ErrNotFound indicates the backend has no record for the request.
var ErrNotFound = errors.New("record not found")

// ErrUnauthorized indicates the backend rejected the supplied credentials.
var ErrUnauthorized = errors.New("invalid credentials")

// ErrUnsupportedResume indicates the uploaded file is not an accepted resume format.
var ErrUnsupportedResume = errors.New("unsupported resume format")

// Client consumes the recruiting backend's REST API. All request and response
// bodies are JSON except resume upload (multipart form) and download (blob).
type Client struct {
	baseURL   string
	http      *http.Client
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// New constructs a backend client with a fixed base URL.
func New(baseURL string, httpClient *http.Client, logger zerolog.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("recruiter base url must be provided")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	return &Client{
		baseURL:   baseURL,
		http:      httpClient,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "recruiter_client").Logger(),
	}, nil
}

// Jobs lists the jobs visible to a candidate.
func (c *Client) Jobs(ctx context.Context, userID string) ([]Job, error) {
	var jobs []Job
	if err := c.doJSON(ctx, http.MethodGet, "/job/"+url.PathEscape(userID), nil, &jobs); err != nil {
		return nil, err
	}

	for i := range jobs {
		c.sanitizeJob(&jobs[i])
	}
	return jobs, nil
}

// JobByID fetches one job, including its problem statements and interview questions.
func (c *Client) JobByID(ctx context.Context, jobID, userID string) (Job, error) {
	var job Job
	path := "/job/byJobId/" + url.PathEscape(jobID) + "/" + url.PathEscape(userID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &job); err != nil {
		return Job{}, err
	}

	c.sanitizeJob(&job)
	return job, nil
}

// CreateJob posts a new job opening.
func (c *Client) CreateJob(ctx context.Context, job Job) error {
	return c.doJSON(ctx, http.MethodPost, "/job", job, nil)
}

// UpdateJob replaces an existing job record.
func (c *Client) UpdateJob(ctx context.Context, jobID string, job Job) error {
	return c.doJSON(ctx, http.MethodPut, "/job/"+url.PathEscape(jobID), job, nil)
}

// DeleteJob removes a job record.
func (c *Client) DeleteJob(ctx context.Context, jobID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/job/"+url.PathEscape(jobID), nil, nil)
}

// PostScore delivers the interview feedback for one candidate and job. The
// caller makes exactly one attempt; delivery failures are not retried.
func (c *Client) PostScore(ctx context.Context, jobID, userID string, feedback Feedback) error {
	path := "/job/" + url.PathEscape(jobID) + "/" + url.PathEscape(userID) + "/score"
	return c.doJSON(ctx, http.MethodPost, path, feedback, nil)
}

// SignupUser registers a candidate account.
func (c *Client) SignupUser(ctx context.Context, user User) (User, error) {
	var created User
	if err := c.doJSON(ctx, http.MethodPost, "/user/signup", user, &created); err != nil {
		return User{}, err
	}
	return created, nil
}

// LoginUser authenticates a candidate with query-string credentials.
func (c *Client) LoginUser(ctx context.Context, name, password string) (User, error) {
	query := url.Values{"user_name": {name}, "user_pass": {password}}

	var user User
	if err := c.doJSON(ctx, http.MethodGet, "/user/login/?"+query.Encode(), nil, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// SignupHR registers an HR account.
func (c *Client) SignupHR(ctx context.Context, hr HR) (HR, error) {
	var created HR
	if err := c.doJSON(ctx, http.MethodPost, "/hr/signup", hr, &created); err != nil {
		return HR{}, err
	}
	return created, nil
}

// LoginHR authenticates an HR account with query-string credentials.
func (c *Client) LoginHR(ctx context.Context, email, password string) (HR, error) {
	query := url.Values{"hr_email": {email}, "hr_pass": {password}}

	var hr HR
	if err := c.doJSON(ctx, http.MethodGet, "/hr/login/?"+query.Encode(), nil, &hr); err != nil {
		return HR{}, err
	}
	return hr, nil
}

// HRs lists all HR accounts.
func (c *Client) HRs(ctx context.Context) ([]HR, error) {
	var hrs []HR
	if err := c.doJSON(ctx, http.MethodGet, "/hr", nil, &hrs); err != nil {
		return nil, err
	}
	return hrs, nil
}

// UpdateHR replaces an HR record.
func (c *Client) UpdateHR(ctx context.Context, id string, hr HR) error {
	return c.doJSON(ctx, http.MethodPut, "/hr/"+url.PathEscape(id), hr, nil)
}

// DeleteHR removes an HR record.
func (c *Client) DeleteHR(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/hr/"+url.PathEscape(id), nil, nil)
}

// CandidatesByJob lists the applications submitted for one job.
func (c *Client) CandidatesByJob(ctx context.Context, jobID string) ([]Candidate, error) {
	var candidates []Candidate
	if err := c.doJSON(ctx, http.MethodGet, "/job-user/byJobId/"+url.PathEscape(jobID), nil, &candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

// CandidateByID fetches one application record.
func (c *Client) CandidateByID(ctx context.Context, id string) (Candidate, error) {
	var candidate Candidate
	if err := c.doJSON(ctx, http.MethodGet, "/job-user/byId/"+url.PathEscape(id), nil, &candidate); err != nil {
		return Candidate{}, err
	}
	return candidate, nil
}

// UploadResume submits an application with the resume attached as multipart
// form data. The file content is sniffed and only document formats accepted.
func (c *Client) UploadResume(ctx context.Context, jobID, userID, filename string, resume []byte) error {
	detected := mimetype.Detect(resume)
	if !resumeFormatAllowed(detected.String()) {
		return fmt.Errorf("%w: %s", ErrUnsupportedResume, detected.String())
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writer.WriteField("job_id", jobID); err != nil {
		return fmt.Errorf("write form field: %w", err)
	}
	if err := writer.WriteField("user_id", userID); err != nil {
		return fmt.Errorf("write form field: %w", err)
	}

	part, err := writer.CreateFormFile("resume", filename)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(resume); err != nil {
		return fmt.Errorf("write resume payload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/job-user/", body)
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upload resume: %w", err)
	}
	defer resp.Body.Close()

	return c.checkStatus(resp)
}

// DownloadResume fetches the stored resume blob and its content type.
func (c *Client) DownloadResume(ctx context.Context, id string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/job-user/download/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, "", fmt.Errorf("build download request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download resume: %w", err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return nil, "", err
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read resume payload: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mimetype.Detect(payload).String()
	}

	return payload, contentType, nil
}

// sanitizeJob strips any markup from backend-sourced text before it reaches
// code templates or interview prompts.
func (c *Client) sanitizeJob(job *Job) {
	job.Title = c.sanitizer.Sanitize(job.Title)
	for i, description := range job.Descriptions {
		job.Descriptions[i] = c.sanitizer.Sanitize(description)
	}
	for i, statement := range job.ProblemStatements {
		job.ProblemStatements[i] = c.sanitizer.Sanitize(statement)
	}
	for i, question := range job.Questions {
		job.Questions[i] = c.sanitizer.Sanitize(question)
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return err
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices:
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn().Int("status", resp.StatusCode).Bytes("body", payload).Msg("backend request failed")
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	default:
		return nil
	}
}

func resumeFormatAllowed(detected string) bool {
	switch detected {
	case "application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"text/plain; charset=utf-8":
		return true
	default:
		return false
	}
}
