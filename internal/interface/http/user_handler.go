package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/adboardhq/adboard/internal/application"
	"github.com/adboardhq/adboard/internal/domain/entity"
	"github.com/adboardhq/adboard/internal/interface/middleware"
	"github.com/adboardhq/adboard/pkg/response"
	"github.com/adboardhq/adboard/pkg/validation"
)

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type updateProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=64"`
	LastName  *string `json:"last_name" binding:"omitempty,max=64"`
	Phone     *string `json:"phone" binding:"omitempty,phone"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,pwd"`
}

func profileJSON(u *entity.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"phone":      u.Phone,
		"role":       u.Role,
		"created_at": u.CreatedAt,
		"updated_at": u.UpdatedAt,
	}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	u, err := h.Svc.GetProfile(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		writeError(c, err)
		return
	}
	resp := response.Success(c, http.StatusOK, profileJSON(u), "profile", nil)
	c.JSON(resp.Status, resp)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}

	u, err := h.Svc.UpdateProfile(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), application.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	resp := response.Success(c, http.StatusOK, profileJSON(u), "profile updated", nil)
	c.JSON(resp.Status, resp)
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}

	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.ChangePassword(c.Request.Context(), uid, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(c, err)
		return
	}
	resp := response.Success[any](c, http.StatusOK, gin.H{"changed": true}, "password changed", nil)
	c.JSON(resp.Status, resp)
}

// readUpload pulls the uploaded file bytes and content type out of a
// multipart form field.
func readUpload(c *gin.Context, field string) ([]byte, string, bool) {
	fh, err := c.FormFile(field)
	if err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "missing file field "+field, nil)
		c.JSON(resp.Status, resp)
		return nil, "", false
	}
	f, err := fh.Open()
	if err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "unreadable upload", nil)
		c.JSON(resp.Status, resp)
		return nil, "", false
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "unreadable upload", nil)
		c.JSON(resp.Status, resp)
		return nil, "", false
	}
	return data, fh.Header.Get("Content-Type"), true
}

func (h *UserHandler) ReplaceAvatar(c *gin.Context) {
	data, contentType, ok := readUpload(c, "avatar")
	if !ok {
		return
	}

	a, err := h.Svc.ReplaceAvatar(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), data, contentType)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := response.Success(c, http.StatusOK, gin.H{
		"filename":   a.Filename,
		"size":       a.Size,
		"media_type": a.MediaType,
	}, "avatar updated", nil)
	c.JSON(resp.Status, resp)
}

func (h *UserHandler) RemoveAvatar(c *gin.Context) {
	if err := h.Svc.RemoveAvatar(c.Request.Context(), c.GetString(middleware.CtxUserIDKey)); err != nil {
		writeError(c, err)
		return
	}
	resp := response.Success[any](c, http.StatusOK, gin.H{"removed": true}, "avatar removed", nil)
	c.JSON(resp.Status, resp)
}

func (h *UserHandler) GetAvatar(c *gin.Context) {
	data, mediaType, err := h.Svc.GetAvatar(c.Request.Context(), c.Param("username"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, mediaType, data)
}
