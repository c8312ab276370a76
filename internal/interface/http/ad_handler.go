package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/adboardhq/adboard/internal/application"
	"github.com/adboardhq/adboard/internal/domain/entity"
	"github.com/adboardhq/adboard/internal/interface/middleware"
	"github.com/adboardhq/adboard/pkg/response"
	"github.com/adboardhq/adboard/pkg/validation"
)

type AdHandler struct {
	Svc     *application.AdService
	Reader  *application.AdReader
	Indexer *application.AdIndexer
	Logger  *logrus.Logger
}

func NewAdHandler(svc *application.AdService, reader *application.AdReader, indexer *application.AdIndexer, logger *logrus.Logger) *AdHandler {
	return &AdHandler{Svc: svc, Reader: reader, Indexer: indexer, Logger: logger}
}

type updateAdRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=100"`
	Price       *int64  `json:"price" binding:"omitempty,gte=0"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
}

func adJSON(ad *entity.Ad) gin.H {
	return gin.H{
		"id":          ad.ID,
		"owner_id":    ad.OwnerID,
		"title":       ad.Title,
		"price":       ad.Price,
		"description": ad.Description,
		"created_at":  ad.CreatedAt,
		"updated_at":  ad.UpdatedAt,
	}
}

// Create accepts a multipart form: title, price, description and an optional
// image file.
func (h *AdHandler) Create(c *gin.Context) {
	title := c.PostForm("title")
	price, err := strconv.ParseInt(c.DefaultPostForm("price", "0"), 10, 64)
	if err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"price": "must be a valid number"})
		c.JSON(resp.Status, resp)
		return
	}
	description := c.PostForm("description")

	var image []byte
	var contentType string
	if fh, ferr := c.FormFile("image"); ferr == nil && fh != nil {
		var ok bool
		image, contentType, ok = readUpload(c, "image")
		if !ok {
			return
		}
	}

	ad, err := h.Svc.Create(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), application.AdInput{
		Title:       title,
		Price:       price,
		Description: description,
	}, image, contentType)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := response.Success(c, http.StatusCreated, adJSON(ad), "ad created", nil)
	c.JSON(resp.Status, resp)
}

func (h *AdHandler) Get(c *gin.Context) {
	d, err := h.Reader.GetDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	resp := response.Success(c, http.StatusOK, d, "ad", nil)
	c.JSON(resp.Status, resp)
}

func (h *AdHandler) Browse(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	ads, err := h.Reader.Browse(c.Request.Context(), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := response.Success(c, http.StatusOK, ads, "ads", gin.H{"count": len(ads)})
	c.JSON(resp.Status, resp)
}

func (h *AdHandler) ListByUser(c *gin.Context) {
	ads, err := h.Reader.ListByOwner(c.Request.Context(), c.Param("username"))
	if err != nil {
		writeError(c, err)
		return
	}
	resp := response.Success(c, http.StatusOK, ads, "ads", gin.H{"count": len(ads)})
	c.JSON(resp.Status, resp)
}

func (h *AdHandler) Update(c *gin.Context) {
	var req updateAdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}

	ad, err := h.Svc.Update(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), c.Param("id"), application.AdUpdate{
		Title:       req.Title,
		Price:       req.Price,
		Description: req.Description,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	resp := response.Success(c, http.StatusOK, adJSON(ad), "ad updated", nil)
	c.JSON(resp.Status, resp)
}

func (h *AdHandler) ReplaceImage(c *gin.Context) {
	data, contentType, ok := readUpload(c, "image")
	if !ok {
		return
	}

	if err := h.Svc.ReplaceImage(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), c.Param("id"), data, contentType); err != nil {
		writeError(c, err)
		return
	}
	resp := response.Success[any](c, http.StatusOK, gin.H{"replaced": true}, "image replaced", nil)
	c.JSON(resp.Status, resp)
}

func (h *AdHandler) RemoveImage(c *gin.Context) {
	if err := h.Svc.RemoveImage(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	resp := response.Success[any](c, http.StatusOK, gin.H{"removed": true}, "image removed", nil)
	c.JSON(resp.Status, resp)
}

func (h *AdHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	resp := response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "ad deleted", nil)
	c.JSON(resp.Status, resp)
}

func (h *AdHandler) GetImage(c *gin.Context) {
	data, mediaType, err := h.Reader.GetImage(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, mediaType, data)
}

func (h *AdHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		resp := response.Error[any](c, http.StatusBadRequest, "missing query", nil)
		c.JSON(resp.Status, resp)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	hits, err := h.Indexer.Search(c.Request.Context(), q, size)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := response.Success(c, http.StatusOK, hits, "search results", gin.H{"count": len(hits)})
	c.JSON(resp.Status, resp)
}
