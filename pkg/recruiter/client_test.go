package recruiter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestBackend(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(server.URL, server.Client(), zerolog.Nop())
	require.NoError(t, err)

	return server, client
}

func TestJobByIDSanitizesBackendText(t *testing.T) {
	_, client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/job/byJobId/J1/U1", r.URL.Path)
		_ = json.NewEncoder(w).Encode(Job{
			ID:                "J1",
			Title:             "Backend <script>alert(1)</script>Engineer",
			ProblemStatements: []string{"Reverse a <b>linked list</b>."},
			Questions:         []string{"Explain <i>goroutines</i>."},
		})
	})

	job, err := client.JobByID(context.Background(), "J1", "U1")
	require.NoError(t, err)
	require.Equal(t, "Backend Engineer", job.Title)
	require.Equal(t, "Reverse a linked list.", job.ProblemStatements[0])
	require.Equal(t, "Explain goroutines.", job.Questions[0])
}

func TestPostScoreSendsConversationOnce(t *testing.T) {
	var calls int
	_, client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/job/J1/U1/score", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var feedback Feedback
		require.NoError(t, json.NewDecoder(r.Body).Decode(&feedback))
		require.NotEmpty(t, feedback.Conversation)
	})

	err := client.PostScore(context.Background(), "J1", "U1", Feedback{
		Conversation: json.RawMessage(`{"messages":[{"role":"user","content":"hi"}]}`),
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestLoginHRUsesQueryCredentials(t *testing.T) {
	_, client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/hr/login/", r.URL.Path)
		require.Equal(t, "hr@corp.test", r.URL.Query().Get("hr_email"))
		require.Equal(t, "s3cret", r.URL.Query().Get("hr_pass"))
		_ = json.NewEncoder(w).Encode(HR{ID: "H1", Email: "hr@corp.test", Username: "hr"})
	})

	hr, err := client.LoginHR(context.Background(), "hr@corp.test", "s3cret")
	require.NoError(t, err)
	require.Equal(t, "H1", hr.ID)
}

func TestLoginMapsUnauthorized(t *testing.T) {
	_, client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.LoginUser(context.Background(), "sam", "wrong")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestJobByIDMapsNotFound(t *testing.T) {
	_, client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.JobByID(context.Background(), "missing", "U1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUploadResumeRejectsBinaryGarbage(t *testing.T) {
	_, client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("upload must be rejected before any network call")
	})

	err := client.UploadResume(context.Background(), "J1", "U1", "resume.bin", []byte{0x7f, 0x45, 0x4c, 0x46, 0x02, 0x01})
	require.ErrorIs(t, err, ErrUnsupportedResume)
}

func TestUploadResumeSendsMultipartForm(t *testing.T) {
	pdf := []byte("%PDF-1.4\n%resume body")

	_, client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/job-user/", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "J1", r.FormValue("job_id"))
		require.Equal(t, "U1", r.FormValue("user_id"))

		file, header, err := r.FormFile("resume")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "resume.pdf", header.Filename)
	})

	err := client.UploadResume(context.Background(), "J1", "U1", "resume.pdf", pdf)
	require.NoError(t, err)
}

func TestDownloadResumeReturnsBlob(t *testing.T) {
	pdf := []byte("%PDF-1.4\n%resume body")

	_, client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/job-user/download/C1", r.URL.Path)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(pdf)
	})

	payload, contentType, err := client.DownloadResume(context.Background(), "C1")
	require.NoError(t, err)
	require.Equal(t, pdf, payload)
	require.Equal(t, "application/pdf", contentType)
}
