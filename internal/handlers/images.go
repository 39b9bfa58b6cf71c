package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/toondo/internal/services"
)

type ImageHandler struct {
	search services.ImageSearch
}

func NewImageHandler(search services.ImageSearch) *ImageHandler {
	return &ImageHandler{search: search}
}

// Search returns candidate images for ?q=
func (h *ImageHandler) Search(c *gin.Context) {
	results, err := h.search.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"images": results,
	})
}
