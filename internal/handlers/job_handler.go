package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/smartdebt-api/internal/services"
)

type JobHandler struct {
	jobSvc *services.JobService
}

func NewJobHandler(jobSvc *services.JobService) *JobHandler {
	return &JobHandler{
		jobSvc: jobSvc,
	}
}

// @Summary Get background job status
// @Description Statistics about background saves and scheduled backups
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} jobs.WorkerStats
// @Router /jobs/status [get]
func (h *JobHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.jobSvc.GetStatus())
}
