package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kazilink-dev/kazilink/internal/models"
	"github.com/kazilink-dev/kazilink/internal/tasks"
)

// CreateJobRequest represents a job posting request
type CreateJobRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Type        string     `json:"type" binding:"required,oneof=full-time part-time contract gig"`
	Location    string     `json:"location"`
	SalaryMin   int        `json:"salary_min" binding:"min=0"`
	SalaryMax   int        `json:"salary_max" binding:"gtefield=SalaryMin"`
	Skills      string     `json:"skills"`
	Experience  string     `json:"experience"`
	Urgent      bool       `json:"urgent"`
	Draft       bool       `json:"draft"`
	Deadline    *time.Time `json:"deadline"`
}

// JobSummary is a job row with its application count
type JobSummary struct {
	models.Job
	ApplicationCount int64 `json:"application_count"`
}

// enqueueNotification hands a notification off to the worker. Delivery is
// best effort: a down queue never fails the originating request.
func (s *Server) enqueueNotification(userID, kind, body string) {
	task, err := tasks.NewNotificationDeliverTask(userID, kind, body)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to build notification task")
		return
	}
	if _, err := s.asynqClient.Enqueue(task); err != nil {
		s.logger.Warn().Err(err).Str("kind", kind).Msg("Failed to enqueue notification")
	}
}

// @Summary Post a job
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateJobRequest true "Job posting"
// @Success 201 {object} models.Job
// @Failure 400 {object} map[string]interface{}
// @Router /api/employer/jobs [post]
func (s *Server) createJob(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var req CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := models.JobStatusActive
	if req.Draft {
		status = models.JobStatusDraft
	}

	job := &models.Job{
		EmployerID:  sessionData.UserID,
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Location:    req.Location,
		SalaryMin:   req.SalaryMin,
		SalaryMax:   req.SalaryMax,
		Currency:    "KES",
		Skills:      req.Skills,
		Experience:  req.Experience,
		Urgent:      req.Urgent,
		Status:      status,
		Deadline:    req.Deadline,
	}

	if err := s.db.Create(job).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create job"})
		return
	}

	// Publishing a listing incurs the flat fee; drafts are not billed
	if job.Status == models.JobStatusActive {
		s.createListingInvoice(sessionData.UserID, job)
	}

	s.logger.Info().
		Str("job_id", job.ID).
		Str("employer_id", sessionData.UserID).
		Str("status", job.Status).
		Msg("Job posted")

	c.JSON(http.StatusCreated, job)
}

// @Summary List own jobs
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {array} JobSummary
// @Router /api/employer/jobs [get]
func (s *Server) listEmployerJobs(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var jobs []models.Job
	if err := s.db.Where("employer_id = ?", sessionData.UserID).
		Order("created_at DESC").Find(&jobs).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list jobs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	summaries := make([]JobSummary, len(jobs))
	for i, job := range jobs {
		var count int64
		if err := s.db.Model(&models.Application{}).Where("job_id = ?", job.ID).Count(&count).Error; err != nil {
			s.logger.Error().Err(err).Str("job_id", job.ID).Msg("Failed to count applications")
		}
		summaries[i] = JobSummary{Job: job, ApplicationCount: count}
	}

	c.JSON(http.StatusOK, summaries)
}

// @Summary Get own job with applicants
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} models.Job
// @Failure 404 {object} map[string]interface{}
// @Router /api/employer/jobs/{id} [get]
func (s *Server) getEmployerJob(c *gin.Context) {
	sessionData, _ := GetSessionData(c)
	jobID := c.Param("id")

	var job models.Job
	err := s.db.Preload("Applications").Preload("Applications.Freelancer").
		Where("id = ? AND employer_id = ?", jobID, sessionData.UserID).
		First(&job).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, job)
}

// @Summary Close a job
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} models.Job
// @Failure 404 {object} map[string]interface{}
// @Router /api/employer/jobs/{id}/close [post]
func (s *Server) closeJob(c *gin.Context) {
	sessionData, _ := GetSessionData(c)
	jobID := c.Param("id")

	var job models.Job
	err := s.db.Where("id = ? AND employer_id = ?", jobID, sessionData.UserID).First(&job).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if job.Status != models.JobStatusClosed {
		now := time.Now()
		if err := s.db.Model(&job).Updates(map[string]interface{}{
			"status":    models.JobStatusClosed,
			"closed_at": &now,
		}).Error; err != nil {
			s.logger.Error().Err(err).Msg("Failed to close job")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to close job"})
			return
		}
		s.logger.Info().Str("job_id", job.ID).Msg("Job closed")
	}

	c.JSON(http.StatusOK, job)
}

// UpdateApplicationRequest updates an applicant's pipeline status
type UpdateApplicationRequest struct {
	Status string `json:"status" binding:"required,oneof=pending shortlisted interviewed rejected"`
}

// @Summary Update application status
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} models.Application
// @Failure 404 {object} map[string]interface{}
// @Router /api/employer/applications/{id} [patch]
func (s *Server) updateApplicationStatus(c *gin.Context) {
	sessionData, _ := GetSessionData(c)
	applicationID := c.Param("id")

	var req UpdateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// The application must belong to one of this employer's jobs
	var application models.Application
	err := s.db.Joins("JOIN jobs ON jobs.id = applications.job_id").
		Where("applications.id = ? AND jobs.employer_id = ?", applicationID, sessionData.UserID).
		Preload("Job").
		First(&application).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find application")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := s.db.Model(&application).Update("status", req.Status).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to update application")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update application"})
		return
	}

	title := ""
	if application.Job != nil {
		title = application.Job.Title
	}
	s.enqueueNotification(application.FreelancerID, tasks.KindApplicationStatus,
		fmt.Sprintf("Your application for %q is now %s", title, req.Status))

	c.JSON(http.StatusOK, application)
}

// DashboardStats summarizes an employer's activity
type DashboardStats struct {
	ActiveJobs        int64 `json:"active_jobs"`
	TotalApplications int64 `json:"total_applications"`
	UnreadMessages    int64 `json:"unread_messages"`
	ApplicantsToday   int64 `json:"applicants_today"`
}

// @Summary Employer dashboard
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} DashboardStats
// @Router /api/employer/home [get]
func (s *Server) employerDashboard(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var stats DashboardStats
	s.db.Model(&models.Job{}).
		Where("employer_id = ? AND status = ?", sessionData.UserID, models.JobStatusActive).
		Count(&stats.ActiveJobs)
	s.db.Model(&models.Application{}).
		Joins("JOIN jobs ON jobs.id = applications.job_id").
		Where("jobs.employer_id = ?", sessionData.UserID).
		Count(&stats.TotalApplications)
	s.db.Model(&models.Application{}).
		Joins("JOIN jobs ON jobs.id = applications.job_id").
		Where("jobs.employer_id = ? AND applications.created_at >= ?", sessionData.UserID,
			time.Now().Truncate(24*time.Hour)).
		Count(&stats.ApplicantsToday)
	s.db.Model(&models.Message{}).
		Joins("JOIN conversations ON conversations.id = messages.conversation_id").
		Where("conversations.employer_id = ? AND messages.sender_id != ? AND messages.read = ?",
			sessionData.UserID, sessionData.UserID, false).
		Count(&stats.UnreadMessages)

	c.JSON(http.StatusOK, stats)
}

// @Summary Browse open jobs
// @Description Search active jobs with optional filters
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param q query string false "Search in title and description"
// @Param type query string false "Job type filter"
// @Param location query string false "Location filter"
// @Success 200 {array} models.Job
// @Router /api/freelancer/jobs [get]
func (s *Server) browseJobs(c *gin.Context) {
	query := s.db.Preload("Employer").Where("status = ?", models.JobStatusActive)

	if q := c.Query("q"); q != "" {
		like := "%" + q + "%"
		query = query.Where("title LIKE ? OR description LIKE ? OR skills LIKE ?", like, like, like)
	}
	if jobType := c.Query("type"); jobType != "" {
		query = query.Where("type = ?", jobType)
	}
	if location := c.Query("location"); location != "" {
		query = query.Where("location LIKE ?", "%"+location+"%")
	}

	var jobs []models.Job
	if err := query.Order("urgent DESC, created_at DESC").Find(&jobs).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to browse jobs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, jobs)
}

// @Summary Get job detail
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} models.Job
// @Failure 404 {object} map[string]interface{}
// @Router /api/freelancer/jobs/{id} [get]
func (s *Server) getJob(c *gin.Context) {
	var job models.Job
	if err := models.FindByIDWithPreload(s.db, c.Param("id"), &job, "Employer"); err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, job)
}

// ApplyRequest represents a job application submission
type ApplyRequest struct {
	CoverLetter  string `json:"cover_letter" binding:"required"`
	ExpectedRate int    `json:"expected_rate" binding:"min=0"`
}

// @Summary Apply to a job
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Param request body ApplyRequest true "Application"
// @Success 201 {object} models.Application
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/freelancer/jobs/{id}/apply [post]
func (s *Server) applyToJob(c *gin.Context) {
	sessionData, _ := GetSessionData(c)
	jobID := c.Param("id")

	var req ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var job models.Job
	if err := models.FindByID(s.db, jobID, &job); err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if job.Status != models.JobStatusActive {
		c.JSON(http.StatusConflict, gin.H{"error": "Job is no longer accepting applications"})
		return
	}

	// One application per freelancer per job
	var existing int64
	s.db.Model(&models.Application{}).
		Where("job_id = ? AND freelancer_id = ?", jobID, sessionData.UserID).
		Count(&existing)
	if existing > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "You have already applied to this job"})
		return
	}

	application := &models.Application{
		JobID:        jobID,
		FreelancerID: sessionData.UserID,
		CoverLetter:  req.CoverLetter,
		ExpectedRate: req.ExpectedRate,
		Status:       models.ApplicationPending,
	}

	if err := s.db.Create(application).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create application")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit application"})
		return
	}

	s.logger.Info().
		Str("application_id", application.ID).
		Str("job_id", jobID).
		Str("freelancer_id", sessionData.UserID).
		Msg("Application submitted")

	s.enqueueNotification(job.EmployerID, tasks.KindApplicationReceived,
		fmt.Sprintf("New application for %q", job.Title))

	c.JSON(http.StatusCreated, application)
}

// @Summary List own applications
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Application
// @Router /api/freelancer/applications [get]
func (s *Server) listMyApplications(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var applications []models.Application
	if err := s.db.Preload("Job").Preload("Job.Employer").
		Where("freelancer_id = ?", sessionData.UserID).
		Order("created_at DESC").Find(&applications).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list applications")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, applications)
}

// @Summary Save a job
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 201 {object} models.SavedJob
// @Router /api/freelancer/jobs/{id}/save [post]
func (s *Server) saveJob(c *gin.Context) {
	sessionData, _ := GetSessionData(c)
	jobID := c.Param("id")

	var job models.Job
	if err := models.FindByID(s.db, jobID, &job); err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	// Saving twice is a no-op
	var existing models.SavedJob
	err := s.db.Where("freelancer_id = ? AND job_id = ?", sessionData.UserID, jobID).
		First(&existing).Error
	if err == nil {
		c.JSON(http.StatusOK, existing)
		return
	}

	saved := &models.SavedJob{
		FreelancerID: sessionData.UserID,
		JobID:        jobID,
	}
	if err := s.db.Create(saved).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to save job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save job"})
		return
	}

	c.JSON(http.StatusCreated, saved)
}

// @Summary Unsave a job
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 204
// @Router /api/freelancer/jobs/{id}/save [delete]
func (s *Server) unsaveJob(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	if err := s.db.Where("freelancer_id = ? AND job_id = ?", sessionData.UserID, c.Param("id")).
		Delete(&models.SavedJob{}).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to unsave job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unsave job"})
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary List saved jobs
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.SavedJob
// @Router /api/freelancer/saved-jobs [get]
func (s *Server) listSavedJobs(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var saved []models.SavedJob
	if err := s.db.Preload("Job").Preload("Job.Employer").
		Where("freelancer_id = ?", sessionData.UserID).
		Order("created_at DESC").Find(&saved).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list saved jobs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, saved)
}

// FreelancerDashboard summarizes a freelancer's activity
type FreelancerDashboard struct {
	OpenJobs       int64 `json:"open_jobs"`
	Applications   int64 `json:"applications"`
	Shortlisted    int64 `json:"shortlisted"`
	SavedJobs      int64 `json:"saved_jobs"`
	UnreadMessages int64 `json:"unread_messages"`
}

// @Summary Freelancer dashboard
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} FreelancerDashboard
// @Router /api/freelancer/home [get]
func (s *Server) freelancerDashboard(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var stats FreelancerDashboard
	s.db.Model(&models.Job{}).Where("status = ?", models.JobStatusActive).Count(&stats.OpenJobs)
	s.db.Model(&models.Application{}).Where("freelancer_id = ?", sessionData.UserID).
		Count(&stats.Applications)
	s.db.Model(&models.Application{}).
		Where("freelancer_id = ? AND status = ?", sessionData.UserID, models.ApplicationShortlisted).
		Count(&stats.Shortlisted)
	s.db.Model(&models.SavedJob{}).Where("freelancer_id = ?", sessionData.UserID).
		Count(&stats.SavedJobs)
	s.db.Model(&models.Message{}).
		Joins("JOIN conversations ON conversations.id = messages.conversation_id").
		Where("conversations.freelancer_id = ? AND messages.sender_id != ? AND messages.read = ?",
			sessionData.UserID, sessionData.UserID, false).
		Count(&stats.UnreadMessages)

	c.JSON(http.StatusOK, stats)
}
