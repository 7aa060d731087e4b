package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tientran/mangamirror/internal/catalogsync"
	"github.com/tientran/mangamirror/internal/database/reading"
	"github.com/tientran/mangamirror/internal/database/refresh"
	"github.com/tientran/mangamirror/internal/entities"
	"github.com/tientran/mangamirror/internal/remote"
)

// SyncController exposes the manual refresh path and the account-state
// import/logout hooks.
type SyncController struct {
	gate    *refresh.Repository
	engine  *catalogsync.Engine
	remote  *remote.Client
	reading *reading.Repository
}

func NewSyncController(gate *refresh.Repository, engine *catalogsync.Engine, remoteClient *remote.Client, readingRepo *reading.Repository) *SyncController {
	return &SyncController{
		gate:    gate,
		engine:  engine,
		remote:  remoteClient,
		reading: readingRepo,
	}
}

// Refresh handles POST /api/refresh: a manual, user-initiated catalog pull
// through the "client" gate. When throttled it reports how long until the
// next attempt is allowed.
func (ctrl *SyncController) Refresh(c *gin.Context) {
	if !ctrl.gate.ShouldRefresh(entities.RefreshSourceClient) {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":               "refresh not due yet",
			"retry_after_seconds": ctrl.gate.SecondsUntilNextRefresh(entities.RefreshSourceClient),
		})
		return
	}

	err := ctrl.engine.UpdateCatalog(c.Request.Context())
	if errors.Is(err, catalogsync.ErrEmptySnapshot) {
		c.JSON(http.StatusOK, SuccessResponse{Message: "remote catalog is empty, local mirror kept"})
		return
	}
	if err != nil {
		log.Printf("Manual catalog refresh failed: %v", err)
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "catalog refresh failed"})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "catalog refreshed"})
}

type importStatusRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}

// ImportStatus handles POST /api/account/import-status: hydrates local
// reading-status rows from the remote account once after sign-in.
func (ctrl *SyncController) ImportStatus(c *gin.Context) {
	var req importStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	statuses, err := ctrl.remote.FetchUserReadingStatus(c.Request.Context(), req.UserID)
	if err != nil {
		log.Printf("Failed to fetch account reading status: %v", err)
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "failed to fetch account state"})
		return
	}

	entries := make([]entities.ReadingStatus, 0, len(statuses))
	for _, s := range statuses {
		if !entities.IsValidReadingStatus(s.Status) {
			log.Printf("Skipping imported status %q for manga %d", s.Status, s.MangaID)
			continue
		}
		entries = append(entries, entities.ReadingStatus{MangaID: s.MangaID, Status: s.Status})
	}

	if err := ctrl.reading.BulkImportReadingStatus(entries); err != nil {
		log.Printf("Failed to import reading status: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to import reading status"})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "reading status imported", Data: gin.H{"imported": len(entries)}})
}

// Logout handles POST /api/account/logout: clears per-title reading status.
// Reading history stays; it belongs to the device, not the account.
func (ctrl *SyncController) Logout(c *gin.Context) {
	if err := ctrl.reading.ClearReadingStatus(); err != nil {
		log.Printf("Failed to clear reading status: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to clear reading status"})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "reading status cleared"})
}
