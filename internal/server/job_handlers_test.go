package server

import (
	"net/http"
	"testing"

	"github.com/kazilink-dev/kazilink/internal/models"
)

// postJob creates a job through the API and returns it
func postJob(t *testing.T, s *Server, token string, req CreateJobRequest) models.Job {
	t.Helper()

	w := doJSON(t, s, http.MethodPost, "/api/employer/jobs", token, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("post job status = %d, body = %s", w.Code, w.Body.String())
	}

	var job models.Job
	decodeJSON(t, w, &job)
	if job.ID == "" {
		t.Fatal("created job has no ID")
	}
	return job
}

func TestPostAndBrowseJobs(t *testing.T) {
	s := newTestServer(t)
	employerToken, _ := signupAs(t, s, "employer@example.com", "employer")
	freelancerToken, _ := signupAs(t, s, "freelancer@example.com", "freelancer")

	postJob(t, s, employerToken, CreateJobRequest{
		Title:     "M-Pesa Integration Developer",
		Type:      "contract",
		Location:  "Nairobi",
		SalaryMin: 80000,
		SalaryMax: 150000,
		Skills:    "go,daraja-api,mysql",
		Urgent:    true,
	})
	postJob(t, s, employerToken, CreateJobRequest{
		Title: "Mobile App Designer",
		Type:  "gig",
	})
	postJob(t, s, employerToken, CreateJobRequest{
		Title: "Unpublished Role",
		Type:  "gig",
		Draft: true,
	})

	w := doJSON(t, s, http.MethodGet, "/api/freelancer/jobs", freelancerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("browse status = %d", w.Code)
	}

	var jobs []models.Job
	decodeJSON(t, w, &jobs)

	// Drafts are invisible to freelancers
	if len(jobs) != 2 {
		t.Fatalf("visible jobs = %d, want 2", len(jobs))
	}
	// Urgent listings sort first
	if jobs[0].Title != "M-Pesa Integration Developer" {
		t.Errorf("first job = %q, want the urgent one", jobs[0].Title)
	}

	// Filters narrow the listing
	w = doJSON(t, s, http.MethodGet, "/api/freelancer/jobs?q=daraja", freelancerToken, nil)
	decodeJSON(t, w, &jobs)
	if len(jobs) != 1 || jobs[0].Title != "M-Pesa Integration Developer" {
		t.Errorf("filtered jobs = %+v", jobs)
	}

	w = doJSON(t, s, http.MethodGet, "/api/freelancer/jobs?type=gig", freelancerToken, nil)
	decodeJSON(t, w, &jobs)
	if len(jobs) != 1 || jobs[0].Title != "Mobile App Designer" {
		t.Errorf("type-filtered jobs = %+v", jobs)
	}
}

func TestPostJobValidation(t *testing.T) {
	s := newTestServer(t)
	employerToken, _ := signupAs(t, s, "employer@example.com", "employer")

	tests := []struct {
		name string
		req  CreateJobRequest
	}{
		{name: "missing title", req: CreateJobRequest{Type: "gig"}},
		{name: "bad type", req: CreateJobRequest{Title: "X", Type: "internship"}},
		{name: "salary max below min", req: CreateJobRequest{Title: "X", Type: "gig", SalaryMin: 100, SalaryMax: 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, s, http.MethodPost, "/api/employer/jobs", employerToken, tt.req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestApplyFlow(t *testing.T) {
	s := newTestServer(t)
	employerToken, _ := signupAs(t, s, "employer@example.com", "employer")
	freelancerToken, _ := signupAs(t, s, "freelancer@example.com", "freelancer")

	job := postJob(t, s, employerToken, CreateJobRequest{
		Title: "Data Entry Clerk",
		Type:  "gig",
	})

	w := doJSON(t, s, http.MethodPost, "/api/freelancer/jobs/"+job.ID+"/apply", freelancerToken, ApplyRequest{
		CoverLetter:  "I have three years of experience.",
		ExpectedRate: 800,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("apply status = %d, body = %s", w.Code, w.Body.String())
	}

	var application models.Application
	decodeJSON(t, w, &application)
	if application.Status != models.ApplicationPending {
		t.Errorf("status = %q, want pending", application.Status)
	}

	// Applying twice to the same job is rejected
	w = doJSON(t, s, http.MethodPost, "/api/freelancer/jobs/"+job.ID+"/apply", freelancerToken, ApplyRequest{
		CoverLetter: "Second attempt",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate apply status = %d, want 409", w.Code)
	}

	// The employer sees the applicant on the job detail
	w = doJSON(t, s, http.MethodGet, "/api/employer/jobs/"+job.ID, employerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get job status = %d", w.Code)
	}
	var detail models.Job
	decodeJSON(t, w, &detail)
	if len(detail.Applications) != 1 {
		t.Fatalf("applications = %d, want 1", len(detail.Applications))
	}

	// And can move the application through the pipeline
	w = doJSON(t, s, http.MethodPatch, "/api/employer/applications/"+application.ID, employerToken,
		UpdateApplicationRequest{Status: models.ApplicationShortlisted})
	if w.Code != http.StatusOK {
		t.Fatalf("update application status = %d, body = %s", w.Code, w.Body.String())
	}

	// The freelancer sees the new status
	w = doJSON(t, s, http.MethodGet, "/api/freelancer/applications", freelancerToken, nil)
	var mine []models.Application
	decodeJSON(t, w, &mine)
	if len(mine) != 1 || mine[0].Status != models.ApplicationShortlisted {
		t.Errorf("applications = %+v", mine)
	}
}

func TestApplyToClosedJob(t *testing.T) {
	s := newTestServer(t)
	employerToken, _ := signupAs(t, s, "employer@example.com", "employer")
	freelancerToken, _ := signupAs(t, s, "freelancer@example.com", "freelancer")

	job := postJob(t, s, employerToken, CreateJobRequest{Title: "Short Gig", Type: "gig"})

	w := doJSON(t, s, http.MethodPost, "/api/employer/jobs/"+job.ID+"/close", employerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("close status = %d", w.Code)
	}

	w = doJSON(t, s, http.MethodPost, "/api/freelancer/jobs/"+job.ID+"/apply", freelancerToken, ApplyRequest{
		CoverLetter: "Too late",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("apply to closed job status = %d, want 409", w.Code)
	}
}

func TestUpdateApplicationOwnership(t *testing.T) {
	s := newTestServer(t)
	employerToken, _ := signupAs(t, s, "employer@example.com", "employer")
	otherEmployerToken, _ := signupAs(t, s, "rival@example.com", "employer")
	freelancerToken, _ := signupAs(t, s, "freelancer@example.com", "freelancer")

	job := postJob(t, s, employerToken, CreateJobRequest{Title: "Ours", Type: "gig"})

	w := doJSON(t, s, http.MethodPost, "/api/freelancer/jobs/"+job.ID+"/apply", freelancerToken, ApplyRequest{
		CoverLetter: "Hello",
	})
	var application models.Application
	decodeJSON(t, w, &application)

	// Another employer cannot touch applications to jobs they do not own
	w = doJSON(t, s, http.MethodPatch, "/api/employer/applications/"+application.ID, otherEmployerToken,
		UpdateApplicationRequest{Status: models.ApplicationRejected})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestSavedJobs(t *testing.T) {
	s := newTestServer(t)
	employerToken, _ := signupAs(t, s, "employer@example.com", "employer")
	freelancerToken, _ := signupAs(t, s, "freelancer@example.com", "freelancer")

	job := postJob(t, s, employerToken, CreateJobRequest{Title: "Keeper", Type: "gig"})

	w := doJSON(t, s, http.MethodPost, "/api/freelancer/jobs/"+job.ID+"/save", freelancerToken, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("save status = %d", w.Code)
	}

	// Saving again is a no-op, not an error
	w = doJSON(t, s, http.MethodPost, "/api/freelancer/jobs/"+job.ID+"/save", freelancerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("re-save status = %d, want 200", w.Code)
	}

	w = doJSON(t, s, http.MethodGet, "/api/freelancer/saved-jobs", freelancerToken, nil)
	var saved []models.SavedJob
	decodeJSON(t, w, &saved)
	if len(saved) != 1 || saved[0].JobID != job.ID {
		t.Fatalf("saved = %+v", saved)
	}

	w = doJSON(t, s, http.MethodDelete, "/api/freelancer/jobs/"+job.ID+"/save", freelancerToken, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("unsave status = %d", w.Code)
	}

	w = doJSON(t, s, http.MethodGet, "/api/freelancer/saved-jobs", freelancerToken, nil)
	decodeJSON(t, w, &saved)
	if len(saved) != 0 {
		t.Fatalf("saved after unsave = %d, want 0", len(saved))
	}
}

func TestEmployerDashboard(t *testing.T) {
	s := newTestServer(t)
	employerToken, _ := signupAs(t, s, "employer@example.com", "employer")
	freelancerToken, _ := signupAs(t, s, "freelancer@example.com", "freelancer")

	job := postJob(t, s, employerToken, CreateJobRequest{Title: "Busy Role", Type: "gig"})
	doJSON(t, s, http.MethodPost, "/api/freelancer/jobs/"+job.ID+"/apply", freelancerToken, ApplyRequest{
		CoverLetter: "Hi",
	})

	w := doJSON(t, s, http.MethodGet, "/api/employer/home", employerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d", w.Code)
	}

	var stats DashboardStats
	decodeJSON(t, w, &stats)
	if stats.ActiveJobs != 1 {
		t.Errorf("active jobs = %d, want 1", stats.ActiveJobs)
	}
	if stats.TotalApplications != 1 {
		t.Errorf("total applications = %d, want 1", stats.TotalApplications)
	}
}
