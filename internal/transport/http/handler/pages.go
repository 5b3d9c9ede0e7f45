package handler

import (
	"net/http"

	"github.com/ErlanBelekov/quote-web/internal/content"
	"github.com/gin-gonic/gin"
)

type PageHandler struct {
	catalog *content.Catalog
}

func NewPageHandler(catalog *content.Catalog) *PageHandler {
	return &PageHandler{catalog: catalog}
}

func (h *PageHandler) Home(c *gin.Context) {
	page, _ := h.catalog.Page("home")
	render(c, http.StatusOK, "home", gin.H{"Page": page})
}

// Static serves one of the plain copy pages by slug.
func (h *PageHandler) Static(slug string) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, ok := h.catalog.Page(slug)
		if !ok {
			NotFound(c)
			return
		}
		render(c, http.StatusOK, "page", gin.H{"Title": page.Title, "Page": page})
	}
}

func (h *PageHandler) Blog(c *gin.Context) {
	render(c, http.StatusOK, "blog", gin.H{"Title": "Blog", "Posts": h.catalog.Posts})
}

func (h *PageHandler) Post(c *gin.Context) {
	post, ok := h.catalog.Post(c.Param("slug"))
	if !ok {
		NotFound(c)
		return
	}
	render(c, http.StatusOK, "post", gin.H{"Title": post.Title, "Post": post})
}

func (h *PageHandler) Pricing(c *gin.Context) {
	render(c, http.StatusOK, "pricing", gin.H{"Title": "Pricing", "Plans": h.catalog.Plans})
}
