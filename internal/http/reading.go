package http

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tientran/mangamirror/internal/database/reading"
	"github.com/tientran/mangamirror/internal/entities"
	"github.com/tientran/mangamirror/internal/tasks"
)

// ReadingController exposes the device-local read tracking.
type ReadingController struct {
	repo  *reading.Repository
	tasks *tasks.Client // optional; nil disables remote view-counter pings
}

func NewReadingController(repo *reading.Repository, taskClient *tasks.Client) *ReadingController {
	return &ReadingController{repo: repo, tasks: taskClient}
}

type recordReadRequest struct {
	MangaID    int64   `json:"manga_id" binding:"required"`
	ChapterID  int64   `json:"chapter_id" binding:"required"`
	ChapterNum float64 `json:"chapter_num"`
}

// RecordRead handles POST /api/history. The local history upsert and the
// remote view-counter increment are independent: the write succeeds even
// when the queue is down, and the queue retries without the client.
func (ctrl *ReadingController) RecordRead(c *gin.Context) {
	var req recordReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := ctrl.repo.UpsertReadingHistory(req.MangaID, req.ChapterID, req.ChapterNum); err != nil {
		log.Printf("Failed to record reading history: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to record history"})
		return
	}

	if ctrl.tasks != nil {
		if _, err := ctrl.tasks.Add(tasks.IncrementViewsTask{MangaID: req.MangaID}).Save(); err != nil {
			log.Printf("Failed to enqueue view increment for manga %d: %v", req.MangaID, err)
		}
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "recorded"})
}

// History handles GET /api/history
func (ctrl *ReadingController) History(c *gin.Context) {
	offset, limit := parsePagination(c)
	c.JSON(http.StatusOK, ctrl.repo.GetUserReadHistory(offset, limit))
}

// ReadChapters handles GET /api/mangas/:id/read-chapters
func (ctrl *ReadingController) ReadChapters(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	read := ctrl.repo.GetReadChapterIDs(id)
	ids := make([]int64, 0, len(read))
	for chapterID := range read {
		ids = append(ids, chapterID)
	}
	c.JSON(http.StatusOK, gin.H{"manga_id": id, "chapter_ids": ids})
}

type setStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetStatus handles PUT /api/mangas/:id/status
func (ctrl *ReadingController) SetStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if !entities.IsValidReadingStatus(req.Status) {
		respondBadRequest(c, "unknown reading status")
		return
	}

	if err := ctrl.repo.SetReadingStatus(id, req.Status); err != nil {
		log.Printf("Failed to set reading status for manga %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to set status"})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "status updated"})
}

// GetStatus handles GET /api/mangas/:id/status. A never-set title reports
// the None label.
func (ctrl *ReadingController) GetStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	status, err := ctrl.repo.GetReadingStatus(id)
	if err != nil {
		log.Printf("Failed to read status for manga %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to read status"})
		return
	}
	if status == nil {
		c.JSON(http.StatusOK, gin.H{"manga_id": id, "status": entities.ReadingStatusNone})
		return
	}
	c.JSON(http.StatusOK, gin.H{"manga_id": id, "status": status.Status, "updated_at": status.UpdatedAt})
}

// Library handles GET /api/library?status=
func (ctrl *ReadingController) Library(c *gin.Context) {
	status := c.Query("status")
	if !entities.IsValidReadingStatus(status) {
		respondBadRequest(c, "unknown reading status")
		return
	}
	offset, limit := parsePagination(c)
	c.JSON(http.StatusOK, ctrl.repo.GetMangasByReadingStatus(status, offset, limit))
}
