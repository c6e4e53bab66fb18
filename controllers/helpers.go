package controllers

import (
	"errors"
	"log"
	"net/http"

	"abstract-review-api/config"
	"abstract-review-api/models"
	"abstract-review-api/services"

	"github.com/gin-gonic/gin"
)

// Service factories are vars so tests can substitute fakes.
var (
	newReviewService = func() *services.ReviewService {
		store := services.NewGormReviewStore(config.DB)
		return services.NewReviewService(store, services.MailNotifier{})
	}

	newAssignmentService = func() *services.AssignmentService {
		store := services.NewGormReviewStore(config.DB)
		return services.NewAssignmentService(store, services.NewGormCategoryDirectory(config.DB), services.MailNotifier{})
	}
)

// callerFromContext builds the acting identity from the authenticated
// request. Every engine operation receives it explicitly.
func callerFromContext(c *gin.Context) (services.Caller, bool) {
	userIDValue, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return services.Caller{}, false
	}
	userID, ok := userIDValue.(int)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user context"})
		return services.Caller{}, false
	}

	switch c.GetInt("roleID") {
	case models.RoleAdmin:
		return services.AdminCaller(userID), true
	case models.RoleReviewer:
		return services.ReviewerCaller(userID), true
	default:
		return services.SubmitterCaller(userID), true
	}
}

// respondServiceError maps engine errors onto HTTP responses.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrAbstractNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Abstract not found"})
	case errors.Is(err, services.ErrCategoryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
	case errors.Is(err, services.ErrInvalidDecision),
		errors.Is(err, services.ErrDeadlineExpired),
		errors.Is(err, services.ErrNotAwaitingRevision):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Operation conflicted with a concurrent update, please retry"})
	default:
		log.Printf("review engine error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
