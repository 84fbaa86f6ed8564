package api

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/dmitrijs2005/filevault/internal/server/models"
	"github.com/gin-gonic/gin"
)

const (
	fileNotFound   = "file not found or access denied"
	folderNotFound = "folder not found or access denied"
)

type shareRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

type publicLinkRequest struct {
	ExpiresInDays *int `json:"expires_in_days" binding:"omitempty,gte=1,lte=1000000"`
}

type publicLinkResponse struct {
	PublicLink string     `json:"public_link"`
	ExpiresAt  *time.Time `json:"expires_at"`
}

func (h *Handler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespError(c, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		RespError(c, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}

	src, err := header.Open()
	if err != nil {
		h.fail(c, err, fileNotFound)
		return
	}
	defer src.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	user := currentUser(c)
	file, err := h.files.Upload(c.Request.Context(), src, header.Filename, contentType, user.ID, c.Query("folder_id"))
	if err != nil {
		h.fail(c, err, folderNotFound)
		return
	}
	RespData(c, http.StatusCreated, file)
}

func (h *Handler) ListFiles(c *gin.Context) {
	list, err := h.files.ListByOwner(c.Request.Context(), currentUser(c).ID, c.Query("folder_id"))
	if err != nil {
		h.fail(c, err, fileNotFound)
		return
	}
	RespSuccess(c, nonNil(list))
}

func (h *Handler) ListSharedFiles(c *gin.Context) {
	list, err := h.files.ListSharedWith(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.fail(c, err, fileNotFound)
		return
	}
	RespSuccess(c, nonNil(list))
}

func (h *Handler) GetFile(c *gin.Context) {
	file, err := h.files.Get(c.Request.Context(), c.Param("id"), currentUser(c).ID)
	if err != nil {
		h.fail(c, err, fileNotFound)
		return
	}
	RespSuccess(c, file)
}

func (h *Handler) Download(c *gin.Context) {
	d, err := h.files.Download(c.Request.Context(), c.Param("id"), currentUser(c).ID)
	if err != nil {
		h.fail(c, err, fileNotFound)
		return
	}
	serve(c, d)
}

func (h *Handler) OpenPublic(c *gin.Context) {
	d, err := h.files.OpenPublic(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.fail(c, err, "public file not found or link has expired")
		return
	}
	serve(c, d)
}

func (h *Handler) DeleteFile(c *gin.Context) {
	ok, err := h.files.Delete(c.Request.Context(), c.Param("id"), currentUser(c).ID)
	if err != nil {
		h.fail(c, err, fileNotFound)
		return
	}
	if !ok {
		RespError(c, http.StatusNotFound, fileNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ShareFile(c *gin.Context) {
	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	file, err := h.files.Share(c.Request.Context(), c.Param("id"), currentUser(c).ID, req.UserID)
	if err != nil {
		h.fail(c, err, fileNotFound)
		return
	}
	RespSuccess(c, file)
}

func (h *Handler) CreatePublicLink(c *gin.Context) {
	var req publicLinkRequest
	// the body is optional
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		RespError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	link, err := h.files.CreatePublicLink(c.Request.Context(), c.Param("id"), currentUser(c).ID, req.ExpiresInDays)
	if err != nil {
		h.fail(c, err, fileNotFound)
		return
	}
	RespSuccess(c, publicLinkResponse{PublicLink: link.Link, ExpiresAt: link.ExpiresAt})
}

// serve streams the download as an attachment and closes it.
func serve(c *gin.Context, d *models.Download) {
	defer d.Content.Close()

	contentType := d.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": d.Filename})
	if disposition == "" {
		disposition = "attachment"
	}

	c.DataFromReader(http.StatusOK, d.Size, contentType, d.Content, map[string]string{
		"Content-Disposition": disposition,
	})
}

func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
