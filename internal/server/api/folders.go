package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type folderRequest struct {
	Name           string `json:"name" binding:"required,min=1,max=255"`
	ParentFolderID string `json:"parent_folder_id"`
}

func (h *Handler) CreateFolder(c *gin.Context) {
	var req folderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	folder, err := h.folders.Create(c.Request.Context(), req.Name, currentUser(c).ID, req.ParentFolderID)
	if err != nil {
		h.fail(c, err, "parent folder not found or access denied")
		return
	}
	RespData(c, http.StatusCreated, folder)
}

func (h *Handler) ListFolders(c *gin.Context) {
	list, err := h.folders.ListByOwner(c.Request.Context(), currentUser(c).ID, c.Query("parent_folder_id"))
	if err != nil {
		h.fail(c, err, folderNotFound)
		return
	}
	RespSuccess(c, nonNil(list))
}

func (h *Handler) DeleteFolder(c *gin.Context) {
	ok, err := h.folders.Delete(c.Request.Context(), c.Param("id"), currentUser(c).ID)
	if err != nil {
		h.fail(c, err, folderNotFound)
		return
	}
	if !ok {
		RespError(c, http.StatusNotFound, folderNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ShareFolder(c *gin.Context) {
	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	folder, err := h.folders.Share(c.Request.Context(), c.Param("id"), currentUser(c).ID, req.UserID)
	if err != nil {
		h.fail(c, err, folderNotFound)
		return
	}
	RespSuccess(c, folder)
}
