package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kazilink-dev/kazilink/internal/auth"
	"github.com/kazilink-dev/kazilink/internal/models"
	"github.com/kazilink-dev/kazilink/internal/tasks"
)

// StartConversationRequest opens a thread with a user of the opposite role
type StartConversationRequest struct {
	WithUserID string `json:"with_user_id" binding:"required"`
}

// SendMessageRequest carries one message body
type SendMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

// conversationPair resolves which side of a conversation the session is on
func conversationPair(sessionData *auth.SessionData, otherID string) (employerID, freelancerID string) {
	if sessionData.Role == models.RoleEmployer {
		return sessionData.UserID, otherID
	}
	return otherID, sessionData.UserID
}

// @Summary List conversations
// @Tags messaging
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Conversation
// @Router /api/conversations [get]
func (s *Server) listConversations(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var conversations []models.Conversation
	if err := s.db.Where("employer_id = ? OR freelancer_id = ?", sessionData.UserID, sessionData.UserID).
		Order("last_sent_at DESC").Find(&conversations).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list conversations")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, conversations)
}

// @Summary Start a conversation
// @Tags messaging
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body StartConversationRequest true "Counterparty"
// @Success 201 {object} models.Conversation
// @Failure 400 {object} map[string]interface{}
// @Router /api/conversations [post]
func (s *Server) startConversation(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var req StartConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// The counterparty must exist and hold the opposite role
	var other models.User
	if err := models.FindByID(s.db, req.WithUserID, &other); err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if other.Role == sessionData.Role {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Conversations connect an employer and a freelancer"})
		return
	}

	employerID, freelancerID := conversationPair(sessionData, req.WithUserID)

	// Reuse the existing thread for this pair if there is one
	var conversation models.Conversation
	err := s.db.Where("employer_id = ? AND freelancer_id = ?", employerID, freelancerID).
		First(&conversation).Error
	if err == nil {
		c.JSON(http.StatusOK, conversation)
		return
	}
	if err != gorm.ErrRecordNotFound {
		s.logger.Error().Err(err).Msg("Failed to find conversation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	conversation = models.Conversation{
		EmployerID:   employerID,
		FreelancerID: freelancerID,
	}
	if err := s.db.Create(&conversation).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create conversation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start conversation"})
		return
	}

	c.JSON(http.StatusCreated, conversation)
}

// loadOwnConversation fetches a conversation only if the session belongs to it
func (s *Server) loadOwnConversation(c *gin.Context) (*models.Conversation, bool) {
	sessionData, _ := GetSessionData(c)

	var conversation models.Conversation
	err := s.db.Where("id = ? AND (employer_id = ? OR freelancer_id = ?)",
		c.Param("id"), sessionData.UserID, sessionData.UserID).
		First(&conversation).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return nil, false
		}
		s.logger.Error().Err(err).Msg("Failed to find conversation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return nil, false
	}
	return &conversation, true
}

// @Summary List messages
// @Description Lists a conversation's messages and marks received ones read
// @Tags messaging
// @Produce json
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Success 200 {array} models.Message
// @Failure 404 {object} map[string]interface{}
// @Router /api/conversations/{id}/messages [get]
func (s *Server) listMessages(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	conversation, ok := s.loadOwnConversation(c)
	if !ok {
		return
	}

	var messages []models.Message
	if err := s.db.Where("conversation_id = ?", conversation.ID).
		Order("created_at ASC").Find(&messages).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list messages")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	// Reading the thread marks the other side's messages read
	if err := s.db.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id != ? AND read = ?", conversation.ID, sessionData.UserID, false).
		Update("read", true).Error; err != nil {
		s.logger.Warn().Err(err).Msg("Failed to mark messages read")
	}

	c.JSON(http.StatusOK, messages)
}

// @Summary Send a message
// @Tags messaging
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Param request body SendMessageRequest true "Message"
// @Success 201 {object} models.Message
// @Failure 404 {object} map[string]interface{}
// @Router /api/conversations/{id}/messages [post]
func (s *Server) sendMessage(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conversation, ok := s.loadOwnConversation(c)
	if !ok {
		return
	}

	message := &models.Message{
		ConversationID: conversation.ID,
		SenderID:       sessionData.UserID,
		Body:           req.Body,
	}
	if err := s.db.Create(message).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create message")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	now := time.Now()
	if err := s.db.Model(conversation).Updates(map[string]interface{}{
		"last_message": req.Body,
		"last_sent_at": &now,
	}).Error; err != nil {
		s.logger.Warn().Err(err).Msg("Failed to update conversation preview")
	}

	recipientID := conversation.FreelancerID
	if sessionData.UserID == conversation.FreelancerID {
		recipientID = conversation.EmployerID
	}
	s.enqueueNotification(recipientID, tasks.KindMessageReceived,
		fmt.Sprintf("New message from %s", sessionData.Email))

	c.JSON(http.StatusCreated, message)
}

// @Summary List notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Notification
// @Router /api/notifications [get]
func (s *Server) listNotifications(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var notifications []models.Notification
	if err := s.db.Where("user_id = ?", sessionData.UserID).
		Order("created_at DESC").Limit(100).Find(&notifications).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list notifications")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, notifications)
}

// @Summary Mark notification read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 204
// @Failure 404 {object} map[string]interface{}
// @Router /api/notifications/{id}/read [post]
func (s *Server) markNotificationRead(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	result := s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", c.Param("id"), sessionData.UserID).
		Update("read", true)
	if result.Error != nil {
		s.logger.Error().Err(result.Error).Msg("Failed to mark notification read")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	c.Status(http.StatusNoContent)
}
