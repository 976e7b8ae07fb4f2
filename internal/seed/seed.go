// Package seed populates a fresh database with sample marketplace data so
// the client has something to browse before any real accounts exist.
package seed

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/kazilink-dev/kazilink/internal/auth"
	"github.com/kazilink-dev/kazilink/internal/models"
)

const demoPassword = "kazilink-demo"

// Run seeds demo accounts, jobs and invoices. It is a no-op once any user
// exists, so it only ever fires on a fresh database.
func Run(db *gorm.DB, logger zerolog.Logger) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	passwordHash, err := auth.HashPassword(demoPassword)
	if err != nil {
		return err
	}

	employer := &models.User{
		Email:        "talent@savannahdigital.co.ke",
		PasswordHash: passwordHash,
		FirstName:    "Achieng",
		LastName:     "Odhiambo",
		Role:         models.RoleEmployer,
		Title:        "Savannah Digital",
		Location:     "Nairobi, Kenya",
		Bio:          "Product studio building mobile-first tools for East African SMEs.",
	}
	if err := db.Create(employer).Error; err != nil {
		return fmt.Errorf("failed to seed employer: %w", err)
	}

	freelancers := []*models.User{
		{
			Email:        "wanjiku.dev@example.com",
			PasswordHash: passwordHash,
			FirstName:    "Wanjiku",
			LastName:     "Kamau",
			Role:         models.RoleFreelancer,
			Title:        "Full-Stack Developer",
			Location:     "Nairobi, Kenya",
			Bio:          "React and Node developer, five years of fintech experience.",
			RatePerHour:  2500,
		},
		{
			Email:        "baraka.design@example.com",
			PasswordHash: passwordHash,
			FirstName:    "Baraka",
			LastName:     "Mwangi",
			Role:         models.RoleFreelancer,
			Title:        "UI/UX Designer",
			Location:     "Mombasa, Kenya",
			Bio:          "Designing interfaces for mobile money and logistics products.",
			RatePerHour:  1800,
		},
	}
	for _, f := range freelancers {
		if err := db.Create(f).Error; err != nil {
			return fmt.Errorf("failed to seed freelancer: %w", err)
		}
	}

	deadline := time.Now().AddDate(0, 0, 30)
	jobs := []*models.Job{
		{
			EmployerID:  employer.ID,
			Title:       "M-Pesa Integration Developer",
			Description: "Integrate Daraja API payments into our retail platform, including STK push and reconciliation.",
			Type:        "contract",
			Location:    "Nairobi, Kenya",
			SalaryMin:   80000,
			SalaryMax:   150000,
			Currency:    "KES",
			Skills:      "go,api,mpesa,payments",
			Experience:  "3+ years",
			Urgent:      true,
			Status:      models.JobStatusActive,
			Deadline:    &deadline,
		},
		{
			EmployerID:  employer.ID,
			Title:       "Mobile App Designer",
			Description: "Design the customer-facing Android app for a boda-boda delivery service.",
			Type:        "gig",
			Location:    "Remote",
			SalaryMin:   40000,
			SalaryMax:   70000,
			Currency:    "KES",
			Skills:      "figma,ui,ux,android",
			Experience:  "2+ years",
			Status:      models.JobStatusActive,
			Deadline:    &deadline,
		},
		{
			EmployerID:  employer.ID,
			Title:       "Data Entry Assistant",
			Description: "Digitize supplier records for our Nakuru warehouse. Part-time, flexible hours.",
			Type:        "part-time",
			Location:    "Nakuru, Kenya",
			SalaryMin:   15000,
			SalaryMax:   25000,
			Currency:    "KES",
			Skills:      "excel,attention-to-detail",
			Status:      models.JobStatusDraft,
		},
	}
	for _, j := range jobs {
		if err := db.Create(j).Error; err != nil {
			return fmt.Errorf("failed to seed job: %w", err)
		}
	}

	dueAt := time.Now().AddDate(0, 0, 14)
	invoice := &models.Invoice{
		EmployerID:  employer.ID,
		Number:      fmt.Sprintf("INV-%d-0001", time.Now().Year()),
		Description: "Job listing fees, 2 active listings",
		AmountCents: 500000, // KES 5,000.00
		Currency:    "KES",
		Status:      models.InvoiceDue,
		DueAt:       &dueAt,
	}
	if err := db.Create(invoice).Error; err != nil {
		return fmt.Errorf("failed to seed invoice: %w", err)
	}

	logger.Info().
		Int("freelancers", len(freelancers)).
		Int("jobs", len(jobs)).
		Msg("Seeded demo marketplace data")

	return nil
}
