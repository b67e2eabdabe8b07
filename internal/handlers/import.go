package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inkwell/internal/middleware"
	"inkwell/internal/services"
)

type ImportHandler struct {
	importer *services.Importer
}

func NewImportHandler(importer *services.Importer) *ImportHandler {
	return &ImportHandler{importer: importer}
}

// Import 从 RSS/Atom 导入文章
func (h *ImportHandler) Import(c *gin.Context) {
	var req services.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.importer.Import(c.Request.Context(), middleware.CurrentSession(c), req)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}
