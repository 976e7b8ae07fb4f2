package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kazilink-dev/kazilink/internal/models"
)

// Billing is records only. Invoices are created when jobs are published
// (flat listing fee) and by the seeder; no payment processing happens here.

// Flat fee for publishing a listing, in KES cents
const listingFeeCents = 50000

// createListingInvoice bills an employer for a published job. Billing is
// bookkeeping, so a failure here never fails the job posting.
func (s *Server) createListingInvoice(employerID string, job *models.Job) {
	var count int64
	if err := s.db.Model(&models.Invoice{}).Count(&count).Error; err != nil {
		s.logger.Warn().Err(err).Msg("Failed to number invoice")
		return
	}

	dueAt := time.Now().AddDate(0, 0, 14)
	invoice := &models.Invoice{
		EmployerID:  employerID,
		Number:      fmt.Sprintf("INV-%d-%04d", time.Now().Year(), count+1),
		Description: fmt.Sprintf("Listing fee for %q", job.Title),
		AmountCents: listingFeeCents,
		Currency:    "KES",
		Status:      models.InvoiceDue,
		DueAt:       &dueAt,
	}
	if err := s.db.Create(invoice).Error; err != nil {
		s.logger.Warn().Err(err).Str("job_id", job.ID).Msg("Failed to create listing invoice")
	}
}

// @Summary List invoices
// @Tags billing
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Invoice
// @Router /api/employer/invoices [get]
func (s *Server) listInvoices(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var invoices []models.Invoice
	if err := s.db.Where("employer_id = ?", sessionData.UserID).
		Order("created_at DESC").Find(&invoices).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list invoices")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, invoices)
}

// @Summary Get invoice
// @Tags billing
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invoice ID"
// @Success 200 {object} models.Invoice
// @Failure 404 {object} map[string]interface{}
// @Router /api/employer/invoices/{id} [get]
func (s *Server) getInvoice(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var invoice models.Invoice
	err := s.db.Where("id = ? AND employer_id = ?", c.Param("id"), sessionData.UserID).
		First(&invoice).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find invoice")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, invoice)
}
