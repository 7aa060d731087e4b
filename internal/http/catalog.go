package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tientran/mangamirror/internal/database/catalog"
)

// CatalogController serves all list and detail views from the local mirror.
// No handler here touches the network.
type CatalogController struct {
	repo *catalog.Repository
}

func NewCatalogController(repo *catalog.Repository) *CatalogController {
	return &CatalogController{repo: repo}
}

// ListMangas handles GET /api/mangas?sort=updated|views
func (ctrl *CatalogController) ListMangas(c *gin.Context) {
	offset, limit := parsePagination(c)

	switch c.DefaultQuery("sort", "updated") {
	case "views":
		c.JSON(http.StatusOK, ctrl.repo.GetMangasByViews(offset, limit))
	case "updated":
		c.JSON(http.StatusOK, ctrl.repo.GetMangasByUpdateTime(offset, limit))
	default:
		respondBadRequest(c, "unknown sort order")
	}
}

// RandomMangas handles GET /api/mangas/random
func (ctrl *CatalogController) RandomMangas(c *gin.Context) {
	_, limit := parsePagination(c)
	c.JSON(http.StatusOK, ctrl.repo.GetRandomMangas(limit))
}

// SearchMangas handles GET /api/mangas/search?q=
func (ctrl *CatalogController) SearchMangas(c *gin.Context) {
	term := c.Query("q")
	if term == "" {
		respondBadRequest(c, "missing search term")
		return
	}
	offset, limit := parsePagination(c)
	c.JSON(http.StatusOK, ctrl.repo.SearchMangasByTitle(term, offset, limit))
}

// GetManga handles GET /api/mangas/:id
func (ctrl *CatalogController) GetManga(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	manga := ctrl.repo.GetMangaByID(id)
	if manga == nil {
		respondNotFound(c, "manga")
		return
	}
	c.JSON(http.StatusOK, manga)
}

// GetChapters handles GET /api/mangas/:id/chapters
func (ctrl *CatalogController) GetChapters(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ctrl.repo.GetChapters(id))
}

// ListGenres handles GET /api/genres
func (ctrl *CatalogController) ListGenres(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.repo.GetGenres())
}

// MangasByGenre handles GET /api/genres/:id/mangas
func (ctrl *CatalogController) MangasByGenre(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	offset, limit := parsePagination(c)
	c.JSON(http.StatusOK, ctrl.repo.GetMangasByGenre(id, offset, limit))
}

// ListAuthors handles GET /api/authors
func (ctrl *CatalogController) ListAuthors(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.repo.GetAuthors())
}

// MangasByAuthor handles GET /api/authors/:id/mangas
func (ctrl *CatalogController) MangasByAuthor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	offset, limit := parsePagination(c)
	c.JSON(http.StatusOK, ctrl.repo.GetMangasByAuthor(id, offset, limit))
}

// ListReleases handles GET /api/releases
func (ctrl *CatalogController) ListReleases(c *gin.Context) {
	offset, limit := parsePagination(c)
	c.JSON(http.StatusOK, ctrl.repo.GetReleaseNotes(offset, limit))
}

// LatestRelease handles GET /api/releases/latest
func (ctrl *CatalogController) LatestRelease(c *gin.Context) {
	release := ctrl.repo.GetLatestRelease()
	if release == nil {
		respondNotFound(c, "release")
		return
	}
	c.JSON(http.StatusOK, release)
}
