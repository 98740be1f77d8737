package handler

import (
	"github.com/damoang/tourlog-backend/internal/common"
	"github.com/damoang/tourlog-backend/internal/scheduler"
	"github.com/damoang/tourlog-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// SchedulerHandler admin controls for the interval sweeps
type SchedulerHandler struct {
	scheduler *scheduler.Scheduler
	sweeps    *service.PublishScheduler
}

// NewSchedulerHandler creates a new SchedulerHandler
func NewSchedulerHandler(s *scheduler.Scheduler, sweeps *service.PublishScheduler) *SchedulerHandler {
	return &SchedulerHandler{scheduler: s, sweeps: sweeps}
}

// RunResult 실행 결과
type RunResult struct {
	Interval string `json:"interval"`
	DryRun   bool   `json:"dry_run"`
	Pending  *int64 `json:"pending,omitempty"`
}

// ListTasks godoc
// @Summary      스케줄 작업 현황
// @Tags         admin
// @Produce      json
// @Success      200  {object}  common.Response{data=[]scheduler.TaskInfo}
// @Security     BearerAuth
// @Router       /admin/scheduler/tasks [get]
func (h *SchedulerHandler) ListTasks(c *gin.Context) {
	common.Success(c, h.scheduler.GetTasks())
}

// RunInterval godoc
// @Summary      sweep 즉시 실행
// @Tags         admin
// @Produce      json
// @Param        interval  path   string  true   "publish-due | trash-evict"
// @Param        dry_run   query  bool    false  "true면 대상 건수만 조회"
// @Success      200  {object}  common.Response{data=RunResult}
// @Failure      400  {object}  common.Response
// @Failure      409  {object}  common.Response
// @Security     BearerAuth
// @Router       /admin/scheduler/{interval}/run [post]
func (h *SchedulerHandler) RunInterval(c *gin.Context) {
	interval := c.Param("interval")

	if c.Query("dry_run") == "true" {
		n, err := h.sweeps.Pending(c.Request.Context(), interval)
		if err != nil {
			common.FromError(c, err, "Failed to count pending items")
			return
		}
		common.Success(c, RunResult{Interval: interval, DryRun: true, Pending: &n})
		return
	}

	if err := h.scheduler.Trigger(c.Request.Context(), interval); err != nil {
		common.FromError(c, err, "Sweep failed")
		return
	}
	common.Success(c, RunResult{Interval: interval})
}
