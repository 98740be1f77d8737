package handler

import (
	"github.com/damoang/tourlog-backend/internal/common"
	"github.com/damoang/tourlog-backend/internal/middleware"
	"github.com/damoang/tourlog-backend/internal/service"
	"github.com/damoang/tourlog-backend/pkg/ginutil"
	"github.com/gin-gonic/gin"
)

// VersionHandler version history and restore
type VersionHandler struct {
	ledger *service.VersionLedger
}

// NewVersionHandler creates a new VersionHandler
func NewVersionHandler(ledger *service.VersionLedger) *VersionHandler {
	return &VersionHandler{ledger: ledger}
}

// ListVersions godoc
// @Summary      버전 이력 조회 (최신순, 최대 3개)
// @Tags         versions
// @Produce      json
// @Param        id   path      string  true  "아이템 ID"
// @Success      200  {object}  common.Response{data=[]domain.VersionSnapshot}
// @Failure      404  {object}  common.Response
// @Security     BearerAuth
// @Router       /items/{id}/versions [get]
func (h *VersionHandler) ListVersions(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	snaps, err := h.ledger.List(c.Request.Context(), id)
	if err != nil {
		common.FromError(c, err, "Failed to list versions")
		return
	}
	common.Success(c, snaps)
}

// RestoreVersion godoc
// @Summary      버전 복원
// @Description  지정한 버전의 제목/본문/요약으로 현재 글을 덮어씁니다
// @Tags         versions
// @Produce      json
// @Param        id         path      string  true  "아이템 ID"
// @Param        versionId  path      string  true  "버전 ID"
// @Success      200  {object}  common.Response{data=domain.ContentItem}
// @Failure      400  {object}  common.Response
// @Failure      401  {object}  common.Response
// @Failure      404  {object}  common.Response
// @Failure      500  {object}  common.Response
// @Security     BearerAuth
// @Router       /items/{id}/versions/{versionId}/restore [post]
func (h *VersionHandler) RestoreVersion(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	versionID, err := ginutil.ParamUUID(c, "versionId")
	if err != nil {
		common.FromError(c, common.InvalidArgument("invalid version id", err), "invalid version id")
		return
	}

	item, err := h.ledger.Restore(c.Request.Context(), id, versionID, middleware.GetUserID(c))
	if err != nil {
		common.FromError(c, err, "Failed to restore version")
		return
	}
	common.SuccessMessage(c, "version restored", item)
}
