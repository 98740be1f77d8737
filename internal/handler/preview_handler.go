package handler

import (
	"net/http"

	"github.com/damoang/tourlog-backend/internal/common"
	"github.com/damoang/tourlog-backend/internal/domain"
	"github.com/damoang/tourlog-backend/internal/middleware"
	"github.com/damoang/tourlog-backend/internal/service"
	"github.com/damoang/tourlog-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
)

// PreviewHandler preview token issue/verify
type PreviewHandler struct {
	preview *service.PreviewService
}

// NewPreviewHandler creates a new PreviewHandler
func NewPreviewHandler(preview *service.PreviewService) *PreviewHandler {
	return &PreviewHandler{preview: preview}
}

// VerifyResult verify 응답
type VerifyResult struct {
	Valid bool `json:"valid"`
}

// IssuePreview godoc
// @Summary      미리보기 토큰 발급 (관리자)
// @Tags         preview
// @Accept       json
// @Produce      json
// @Param        request  body      domain.IssuePreviewRequest  true  "대상 아이템"
// @Success      200  {object}  common.Response{data=service.PreviewGrant}
// @Failure      401  {object}  common.Response
// @Failure      403  {object}  common.Response
// @Failure      404  {object}  common.Response
// @Security     BearerAuth
// @Router       /preview/issue [post]
func (h *PreviewHandler) IssuePreview(c *gin.Context) {
	var req domain.IssuePreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.FromError(c, common.InvalidArgument(bindMessage(err), err), "Invalid request")
		return
	}

	grant, err := h.preview.Issue(c.Request.Context(), req.ItemID, middleware.GetUserID(c), req.BindToIssuer)
	if err != nil {
		common.FromError(c, err, "Failed to issue preview token")
		return
	}
	common.Success(c, grant)
}

// VerifyPreview godoc
// @Summary      미리보기 토큰 검증
// @Description  만료/위조 토큰은 401, 다른 아이템용 토큰은 403
// @Tags         preview
// @Accept       json
// @Produce      json
// @Param        request  body      domain.VerifyPreviewRequest  true  "토큰과 아이템"
// @Success      200  {object}  common.Response{data=VerifyResult}
// @Failure      401  {object}  common.Response{data=VerifyResult}
// @Failure      403  {object}  common.Response{data=VerifyResult}
// @Router       /preview/verify [post]
func (h *PreviewHandler) VerifyPreview(c *gin.Context) {
	var req domain.VerifyPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.FromError(c, common.InvalidArgument(bindMessage(err), err), "Invalid request")
		return
	}

	payload, verdict := h.preview.Verify(req.Token)
	if verdict != jwt.VerdictValid {
		denyPreview(c, http.StatusUnauthorized, common.CodeUnauthenticated)
		return
	}
	if !service.CanAccess(payload, req.ItemID, middleware.GetUserID(c)) {
		denyPreview(c, http.StatusForbidden, common.CodePermissionDenied)
		return
	}
	common.Success(c, VerifyResult{Valid: true})
}

// 사유는 서버 로그에만 남기고 응답 메시지는 동일하게
func denyPreview(c *gin.Context, status int, code common.Code) {
	c.JSON(status, common.Response{
		Success: false,
		Data:    VerifyResult{Valid: false},
		Error:   &common.ErrorBody{Code: code, Message: "preview access denied"},
	})
}
