package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListTags(c *gin.Context) {
	tags, err := h.service.ListTags(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "get tags")
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (h *Handler) CreateTag(c *gin.Context) {
	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	tag, err := h.service.CreateTag(c.Request.Context(), req.Name, req.Color)
	if err != nil {
		h.respondError(c, err, "create tag")
		return
	}
	c.JSON(http.StatusCreated, tag)
}

func (h *Handler) DeleteTag(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteTag(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "delete tag")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListPartners(c *gin.Context) {
	partners, err := h.service.ListPartners(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "get partners")
		return
	}
	c.JSON(http.StatusOK, partners)
}

func (h *Handler) CreatePartner(c *gin.Context) {
	var req PartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	partner, err := h.service.CreatePartner(c.Request.Context(), req.Name, req.Email)
	if err != nil {
		h.respondError(c, err, "create partner")
		return
	}
	c.JSON(http.StatusCreated, partner)
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "get users")
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), req.Login, req.Name)
	if err != nil {
		h.respondError(c, err, "create user")
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) ListPropertyTypes(c *gin.Context) {
	types, err := h.service.ListPropertyTypes(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "get property types")
		return
	}
	c.JSON(http.StatusOK, types)
}

func (h *Handler) CreatePropertyType(c *gin.Context) {
	var req PropertyTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	pt, err := h.service.CreatePropertyType(c.Request.Context(), req.Name)
	if err != nil {
		h.respondError(c, err, "create property type")
		return
	}
	c.JSON(http.StatusCreated, pt)
}
