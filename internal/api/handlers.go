package api

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"estate/server/internal/database"
	"estate/server/internal/estate"
	"estate/server/internal/geometry"
	"estate/server/internal/models"
	"estate/server/internal/service"
)

type Handler struct {
	service *service.EstateService
	logger  *logrus.Logger
}

func NewHandler(svc *service.EstateService, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		service: svc,
		logger:  logger,
	}
}

// respondError maps domain errors onto HTTP statuses
func (h *Handler) respondError(c *gin.Context, err error, action string) {
	var verr *estate.ValidationError
	var terr *estate.TransitionError

	switch {
	case errors.As(err, &verr):
		h.logger.WithError(err).WithField("rule", verr.Rule).Warn(action + " rejected")
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "rule": verr.Rule})
	case errors.As(err, &terr):
		h.logger.WithError(err).WithField("state", terr.State).Warn(action + " rejected")
		c.JSON(http.StatusConflict, gin.H{"error": terr.Error(), "state": terr.State})
	case errors.Is(err, estate.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
	default:
		h.logger.WithError(err).Error("Failed to " + action)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
	}
}

func (h *Handler) bindError(c *gin.Context, err error) {
	h.logger.WithError(err).Error("Invalid request body")
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}

type PropertyQuery struct {
	State  string `form:"state" binding:"omitempty,oneof=new offer_received offer_accepted sold canceled"`
	Active *bool  `form:"active"`
	TagID  uint   `form:"tag_id"`
}

func (h *Handler) ListProperties(c *gin.Context) {
	var q PropertyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.bindError(c, err)
		return
	}

	properties, err := h.service.ListProperties(c.Request.Context(), database.PropertyFilter{
		State:  models.PropertyState(q.State),
		Active: q.Active,
		TagID:  q.TagID,
	})
	if err != nil {
		h.respondError(c, err, "get properties")
		return
	}

	c.JSON(http.StatusOK, properties)
}

func (h *Handler) GetProperty(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	property, err := h.service.GetProperty(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "get property")
		return
	}

	c.JSON(http.StatusOK, property)
}

func (h *Handler) CreateProperty(c *gin.Context) {
	var req PropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	property, err := h.service.CreateProperty(c.Request.Context(), req.toCreate())
	if err != nil {
		h.respondError(c, err, "create property")
		return
	}

	c.JSON(http.StatusCreated, property)
}

func (h *Handler) UpdateProperty(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req PropertyPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	property, err := h.service.UpdateProperty(c.Request.Context(), id, req.toChange())
	if err != nil {
		h.respondError(c, err, "update property")
		return
	}

	c.JSON(http.StatusOK, property)
}

func (h *Handler) DeleteProperty(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteProperty(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "delete property")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) MarkSold(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	property, err := h.service.MarkSold(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "mark property as sold")
		return
	}

	c.JSON(http.StatusOK, property)
}

func (h *Handler) CancelProperty(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	property, err := h.service.Cancel(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "cancel property")
		return
	}

	c.JSON(http.StatusOK, property)
}

func (h *Handler) ListOffers(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	offers, err := h.service.ListOffers(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "get offers")
		return
	}

	c.JSON(http.StatusOK, offers)
}

func (h *Handler) CreateOffer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req OfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	offer, err := h.service.CreateOffer(c.Request.Context(), id, req.toInput())
	if err != nil {
		h.respondError(c, err, "create offer")
		return
	}

	c.JSON(http.StatusCreated, offer)
}

func (h *Handler) UpdateOffer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req OfferPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	offer, err := h.service.UpdateOffer(c.Request.Context(), id, req.toUpdate())
	if err != nil {
		h.respondError(c, err, "update offer")
		return
	}

	c.JSON(http.StatusOK, offer)
}

func (h *Handler) DeleteOffer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteOffer(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "delete offer")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) AcceptOffer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	offer, err := h.service.AcceptOffer(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "accept offer")
		return
	}

	c.JSON(http.StatusOK, offer)
}

func (h *Handler) RefuseOffer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	offer, err := h.service.RefuseOffer(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "refuse offer")
		return
	}

	c.JSON(http.StatusOK, offer)
}

// GetMap returns the listings with coordinates as GeoJSON
func (h *Handler) GetMap(c *gin.Context) {
	var bound *geometry.Bound
	if raw := c.Query("bbox"); raw != "" {
		b, err := geometry.ParseBBox(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		bound = &b
	}

	properties, err := h.service.ListProperties(c.Request.Context(), database.PropertyFilter{})
	if err != nil {
		h.respondError(c, err, "get map")
		return
	}

	c.JSON(http.StatusOK, geometry.FeatureCollection(properties, bound))
}
