package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// Role is the closed category determining which protected views a user may access
type Role string

const (
	RoleEmployer   Role = "employer"
	RoleFreelancer Role = "freelancer"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r == RoleEmployer || r == RoleFreelancer
}

// Home returns the role's home path
func (r Role) Home() string {
	return "/" + string(r) + "/home"
}

// Job lifecycle statuses
const (
	JobStatusActive = "active"
	JobStatusDraft  = "draft"
	JobStatusClosed = "closed"
)

// Application statuses
const (
	ApplicationPending     = "pending"
	ApplicationShortlisted = "shortlisted"
	ApplicationInterviewed = "interviewed"
	ApplicationRejected    = "rejected"
)

// Invoice statuses
const (
	InvoiceDue  = "due"
	InvoicePaid = "paid"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// AppConfig is the global configuration singleton (only one row should exist)
type AppConfig struct {
	BaseModel
	JWTSecret string `json:"-" gorm:"type:varchar(64);not null"` // Auto-generated on first signup (64 hex chars)
}

// User represents a marketplace account, either an employer or a freelancer.
// Role is assigned at signup and never changes (no role-change flow exists).
type User struct {
	BaseModel
	Email        string    `json:"email" gorm:"unique;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         Role      `json:"role" gorm:"type:varchar(10);not null"`
	Title        string    `json:"title"`    // e.g. "Full-Stack Developer" (freelancer) or company name (employer)
	Location     string    `json:"location"` // e.g. "Nairobi, Kenya"
	Bio          string    `json:"bio" gorm:"type:text"`
	RatePerHour  int       `json:"rate_per_hour"` // KES, freelancers only
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Job represents a position posted by an employer
type Job struct {
	BaseModel
	EmployerID  string     `json:"employer_id" gorm:"not null;index"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description" gorm:"type:text"`
	Type        string     `json:"type" gorm:"not null"` // full-time, part-time, contract, gig
	Location    string     `json:"location"`
	SalaryMin   int        `json:"salary_min"`
	SalaryMax   int        `json:"salary_max"`
	Currency    string     `json:"currency" gorm:"default:KES"`
	Skills      string     `json:"skills"` // comma-separated skill tags
	Experience  string     `json:"experience"`
	Urgent      bool       `json:"urgent" gorm:"not null;default:false"`
	Status      string     `json:"status" gorm:"not null;default:active"`
	Deadline    *time.Time `json:"deadline"` // past this, the sweep closes the job
	ClosedAt    *time.Time `json:"closed_at"`

	// Relationships
	Employer     *User         `json:"employer,omitempty" gorm:"foreignKey:EmployerID;references:ID;constraint:OnDelete:CASCADE"`
	Applications []Application `json:"applications,omitempty" gorm:"foreignKey:JobID"`
}

// Application represents a freelancer applying to a job
type Application struct {
	BaseModel
	JobID        string `json:"job_id" gorm:"not null;index;uniqueIndex:idx_job_applicant"`
	FreelancerID string `json:"freelancer_id" gorm:"not null;index;uniqueIndex:idx_job_applicant"`
	CoverLetter  string `json:"cover_letter" gorm:"type:text"`
	ExpectedRate int    `json:"expected_rate"` // KES per hour
	Status       string `json:"status" gorm:"not null;default:pending"`

	// Relationships
	Job        *Job  `json:"job,omitempty" gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
	Freelancer *User `json:"freelancer,omitempty" gorm:"foreignKey:FreelancerID;references:ID;constraint:OnDelete:CASCADE"`
}

// SavedJob marks a job bookmarked by a freelancer
type SavedJob struct {
	BaseModel
	FreelancerID string `json:"freelancer_id" gorm:"not null;index;uniqueIndex:idx_saved_job"`
	JobID        string `json:"job_id" gorm:"not null;uniqueIndex:idx_saved_job"`

	Job *Job `json:"job,omitempty" gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
}

// Conversation is a message thread between one employer and one freelancer
type Conversation struct {
	BaseModel
	EmployerID   string     `json:"employer_id" gorm:"not null;index;uniqueIndex:idx_conv_pair"`
	FreelancerID string     `json:"freelancer_id" gorm:"not null;uniqueIndex:idx_conv_pair"`
	LastMessage  string     `json:"last_message"`
	LastSentAt   *time.Time `json:"last_sent_at"`

	Messages []Message `json:"messages,omitempty" gorm:"foreignKey:ConversationID"`
}

// Message is a single message inside a conversation
type Message struct {
	BaseModel
	ConversationID string `json:"conversation_id" gorm:"not null;index"`
	SenderID       string `json:"sender_id" gorm:"not null"`
	Body           string `json:"body" gorm:"type:text;not null"`
	Read           bool   `json:"read" gorm:"not null;default:false"`
}

// Notification is delivered asynchronously by the worker
type Notification struct {
	BaseModel
	UserID string `json:"user_id" gorm:"not null;index"`
	Kind   string `json:"kind" gorm:"not null"` // application_received, message_received, job_closed, application_status
	Body   string `json:"body" gorm:"not null"`
	Read   bool   `json:"read" gorm:"not null;default:false"`
}

// Invoice is a billing record for an employer. Amounts are in KES cents;
// no payment processing happens here, these are records only.
type Invoice struct {
	BaseModel
	EmployerID  string     `json:"employer_id" gorm:"not null;index"`
	Number      string     `json:"number" gorm:"unique;not null"`
	Description string     `json:"description"`
	AmountCents int64      `json:"amount_cents" gorm:"not null"`
	Currency    string     `json:"currency" gorm:"default:KES"`
	Status      string     `json:"status" gorm:"not null;default:due"` // due, paid
	DueAt       *time.Time `json:"due_at"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	// Collect all models
	models := []interface{}{
		&AppConfig{}, &User{}, &Job{}, &Application{}, &SavedJob{},
		&Conversation{}, &Message{}, &Notification{}, &Invoice{},
	}

	return db.AutoMigrate(models...)
}

// FindByID safely finds a record by string ID
func FindByID[T any](db *gorm.DB, id string, model *T) error {
	return db.Where("id = ?", id).First(model).Error
}

// FindByIDWithPreload finds a record by ID with preloading
func FindByIDWithPreload[T any](db *gorm.DB, id string, model *T, preloads ...string) error {
	query := db
	for _, preload := range preloads {
		query = query.Preload(preload)
	}
	return query.Where("id = ?", id).First(model).Error
}
