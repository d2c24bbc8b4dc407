package handler

import (
	"net/http"
	"time"

	"catalog-service/internal/model"
	"catalog-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// ListContacts returns contact messages, newest first. Optional filters:
// subject, resolved.
func (h *Admin) ListContacts(c echo.Context) error {
	log := logger.FromContext(c)

	query := h.db.WithContext(c.Request().Context()).Order("created_at DESC")
	if v := c.QueryParam("subject"); v != "" {
		if !model.Subject(v).Valid() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid subject"})
		}
		query = query.Where("subject = ?", v)
	}
	if v := c.QueryParam("resolved"); v != "" {
		resolved, err := cast.ToBoolE(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid resolved"})
		}
		query = query.Where("resolved = ?", resolved)
	}

	var msgs []model.ContactMessage
	if err := query.Find(&msgs).Error; err != nil {
		log.Error("Failed to list contact messages", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve messages"})
	}
	return c.JSON(http.StatusOK, msgs)
}

// ResolveContact marks a contact message handled
func (h *Admin) ResolveContact(c echo.Context) error {
	log := logger.FromContext(c)
	id, ok := paramID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid message ID"})
	}

	db := h.db.WithContext(c.Request().Context())
	var msg model.ContactMessage
	if err := db.First(&msg, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Message not found"})
	}
	if !msg.Resolved {
		msg.Resolve(time.Now())
		if err := db.Save(&msg).Error; err != nil {
			log.Error("Failed to resolve message", zap.Uint("message_id", id), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to resolve message"})
		}
		log.Info("Contact message resolved", zap.Uint("message_id", id))
	}
	return c.JSON(http.StatusOK, msg)
}

// DeleteContact removes a resolved contact message
func (h *Admin) DeleteContact(c echo.Context) error {
	log := logger.FromContext(c)
	id, ok := paramID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid message ID"})
	}

	db := h.db.WithContext(c.Request().Context())
	var msg model.ContactMessage
	if err := db.First(&msg, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Message not found"})
	}
	if !msg.Resolved {
		return c.JSON(http.StatusConflict, echo.Map{"error": "Only resolved messages can be deleted"})
	}
	if err := db.Delete(&msg).Error; err != nil {
		log.Error("Failed to delete message", zap.Uint("message_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete message"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListSubscribers returns newsletter subscriptions. Optional filter: active.
func (h *Admin) ListSubscribers(c echo.Context) error {
	query := h.db.WithContext(c.Request().Context()).Order("subscribed_at DESC")
	if v := c.QueryParam("active"); v != "" {
		active, err := cast.ToBoolE(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid active"})
		}
		query = query.Where("active = ?", active)
	}

	var subs []model.NewsletterSubscription
	if err := query.Find(&subs).Error; err != nil {
		logger.FromContext(c).Error("Failed to list subscribers", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve subscribers"})
	}
	return c.JSON(http.StatusOK, subs)
}

// SubscribersRequest selects subscriptions for a bulk change
type SubscribersRequest struct {
	IDs    []uint `json:"ids" validate:"required,min=1"`
	Active *bool  `json:"active" validate:"required"`
}

// SetSubscribersActive activates or deactivates subscriptions in bulk
func (h *Admin) SetSubscribersActive(c echo.Context) error {
	log := logger.FromContext(c)

	var req SubscribersRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "Validation failed", "fields": fieldErrors(err)})
	}

	res := h.db.WithContext(c.Request().Context()).
		Model(&model.NewsletterSubscription{}).
		Where("id IN ?", req.IDs).
		UpdateColumn("active", *req.Active)
	if res.Error != nil {
		log.Error("Failed to update subscribers", zap.Error(res.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update subscribers"})
	}

	log.Info("Subscribers updated",
		zap.Int64("count", res.RowsAffected),
		zap.Bool("active", *req.Active))
	return c.JSON(http.StatusOK, echo.Map{"updated": res.RowsAffected})
}
