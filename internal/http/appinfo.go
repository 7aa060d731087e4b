package http

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tientran/mangamirror/internal/database/appinfo"
)

// AppInfoController exposes the app_info key/value store.
type AppInfoController struct {
	repo *appinfo.Repository
}

func NewAppInfoController(repo *appinfo.Repository) *AppInfoController {
	return &AppInfoController{repo: repo}
}

// Get handles GET /api/app-info/:key
func (ctrl *AppInfoController) Get(c *gin.Context) {
	key := c.Param("key")
	value, err := ctrl.repo.Get(key)
	if err != nil {
		log.Printf("Failed to read app info %q: %v", key, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to read app info"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": key, "value": value})
}

type setAppInfoRequest struct {
	Value string `json:"value"`
}

// Set handles PUT /api/app-info/:key
func (ctrl *AppInfoController) Set(c *gin.Context) {
	key := c.Param("key")

	var req setAppInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := ctrl.repo.Set(key, req.Value); err != nil {
		log.Printf("Failed to set app info %q: %v", key, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to set app info"})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "app info updated"})
}
