package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/adboardhq/adboard/internal/application"
	"github.com/adboardhq/adboard/internal/domain/entity"
	"github.com/adboardhq/adboard/internal/interface/middleware"
	"github.com/adboardhq/adboard/pkg/response"
	"github.com/adboardhq/adboard/pkg/validation"
)

type CommentHandler struct {
	Svc    *application.CommentService
	Reader *application.CommentReader
	Logger *logrus.Logger
}

func NewCommentHandler(svc *application.CommentService, reader *application.CommentReader, logger *logrus.Logger) *CommentHandler {
	return &CommentHandler{Svc: svc, Reader: reader, Logger: logger}
}

type commentRequest struct {
	Text string `json:"text" binding:"required,max=2000"`
}

func commentJSON(cm *entity.Comment) gin.H {
	return gin.H{
		"id":         cm.ID,
		"ad_id":      cm.AdID,
		"author_id":  cm.AuthorID,
		"text":       cm.Text,
		"created_at": cm.CreatedAt,
		"updated_at": cm.UpdatedAt,
	}
}

func (h *CommentHandler) Create(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}

	cm, err := h.Svc.Create(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), c.Param("id"), req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := response.Success(c, http.StatusCreated, commentJSON(cm), "comment created", nil)
	c.JSON(resp.Status, resp)
}

func (h *CommentHandler) List(c *gin.Context) {
	comments, err := h.Reader.ListByAd(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	resp := response.Success(c, http.StatusOK, comments, "comments", gin.H{"count": len(comments)})
	c.JSON(resp.Status, resp)
}

func (h *CommentHandler) Get(c *gin.Context) {
	cm, err := h.Reader.Get(c.Request.Context(), c.Param("id"), c.Param("commentId"))
	if err != nil {
		writeError(c, err)
		return
	}
	resp := response.Success(c, http.StatusOK, cm, "comment", nil)
	c.JSON(resp.Status, resp)
}

func (h *CommentHandler) Update(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}

	cm, err := h.Svc.Update(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), c.Param("id"), c.Param("commentId"), req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := response.Success(c, http.StatusOK, commentJSON(cm), "comment updated", nil)
	c.JSON(resp.Status, resp)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), c.Param("id"), c.Param("commentId")); err != nil {
		writeError(c, err)
		return
	}
	resp := response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "comment deleted", nil)
	c.JSON(resp.Status, resp)
}
