// Package client is the HTTP client for the KaziLink API, used by the CLI.
// It doubles as the session store's real Authenticator.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kazilink-dev/kazilink/internal/models"
	"github.com/kazilink-dev/kazilink/internal/session"
)

// Client represents an HTTP client for the KaziLink API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// loginRequest mirrors the server's LoginRequest
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// signupRequest mirrors the server's SignupRequest
type signupRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

// authResponse mirrors the server's LoginResponse
type authResponse struct {
	Token string `json:"token"`
	User  struct {
		ID        string      `json:"id"`
		Email     string      `json:"email"`
		FirstName string      `json:"firstName"`
		LastName  string      `json:"lastName"`
		Role      models.Role `json:"role"`
	} `json:"user"`
}

func (c *Client) postJSON(ctx context.Context, path, token string, body, out interface{}, wantStatus int) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, string(body))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path, token string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func sessionUser(resp authResponse) session.User {
	return session.User{
		ID:        resp.User.ID,
		Email:     resp.User.Email,
		Role:      resp.User.Role,
		FirstName: resp.User.FirstName,
		LastName:  resp.User.LastName,
	}
}

// Login authenticates against the API and returns the user plus a JWT
func (c *Client) Login(ctx context.Context, email, password string, role models.Role) (session.User, string, error) {
	var resp authResponse
	err := c.postJSON(ctx, "/api/auth/login", "", loginRequest{
		Email:    email,
		Password: password,
		Role:     string(role),
	}, &resp, http.StatusOK)
	if err != nil {
		return session.User{}, "", err
	}
	return sessionUser(resp), resp.Token, nil
}

// Signup registers a new account and returns the user plus a JWT
func (c *Client) Signup(ctx context.Context, data session.SignupData) (session.User, string, error) {
	var resp authResponse
	err := c.postJSON(ctx, "/api/auth/signup", "", signupRequest{
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Email:     data.Email,
		Password:  data.Password,
		Role:      string(data.Role),
	}, &resp, http.StatusCreated)
	if err != nil {
		return session.User{}, "", err
	}
	return sessionUser(resp), resp.Token, nil
}

// Logout revokes the token server-side. A failure is not fatal for the
// caller: the local session is cleared regardless.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.postJSON(ctx, "/api/auth/logout", token, nil, nil, http.StatusNoContent)
}

// Job is the API's job representation as consumed by the CLI
type Job struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Type      string `json:"type"`
	Location  string `json:"location"`
	SalaryMin int    `json:"salary_min"`
	SalaryMax int    `json:"salary_max"`
	Currency  string `json:"currency"`
	Skills    string `json:"skills"`
	Status    string `json:"status"`
	Urgent    bool   `json:"urgent"`
}

// BrowseJobs lists open jobs (freelancer view)
func (c *Client) BrowseJobs(ctx context.Context, token, query string) ([]Job, error) {
	path := "/api/freelancer/jobs"
	if query != "" {
		path += "?q=" + query
	}
	var jobs []Job
	if err := c.getJSON(ctx, path, token, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// ListMyJobs lists the employer's own jobs
func (c *Client) ListMyJobs(ctx context.Context, token string) ([]Job, error) {
	var jobs []Job
	if err := c.getJSON(ctx, "/api/employer/jobs", token, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// PostJobRequest mirrors the server's CreateJobRequest
type PostJobRequest struct {
	Title     string `json:"title"`
	Type      string `json:"type"`
	Location  string `json:"location"`
	SalaryMin int    `json:"salary_min"`
	SalaryMax int    `json:"salary_max"`
	Skills    string `json:"skills"`
	Urgent    bool   `json:"urgent"`
	Draft     bool   `json:"draft"`
}

// PostJob creates a job listing (employer only)
func (c *Client) PostJob(ctx context.Context, token string, req PostJobRequest) (*Job, error) {
	var job Job
	if err := c.postJSON(ctx, "/api/employer/jobs", token, req, &job, http.StatusCreated); err != nil {
		return nil, err
	}
	return &job, nil
}

// ApplyRequest mirrors the server's ApplyRequest
type ApplyRequest struct {
	CoverLetter  string `json:"cover_letter"`
	ExpectedRate int    `json:"expected_rate"`
}

// Apply submits an application to a job (freelancer only)
func (c *Client) Apply(ctx context.Context, token, jobID string, req ApplyRequest) error {
	path := fmt.Sprintf("/api/freelancer/jobs/%s/apply", jobID)
	return c.postJSON(ctx, path, token, req, nil, http.StatusCreated)
}
