package handler

import (
	"github.com/damoang/tourlog-backend/internal/common"
	"github.com/damoang/tourlog-backend/internal/domain"
	"github.com/damoang/tourlog-backend/internal/middleware"
	"github.com/damoang/tourlog-backend/internal/service"
	"github.com/damoang/tourlog-backend/pkg/ginutil"
	"github.com/gin-gonic/gin"
)

// ContentHandler handles HTTP requests for content items
type ContentHandler struct {
	service service.ContentService
	preview *service.PreviewService
}

// NewContentHandler creates a new ContentHandler
func NewContentHandler(service service.ContentService, preview *service.PreviewService) *ContentHandler {
	return &ContentHandler{service: service, preview: preview}
}

// ListItems godoc
// @Summary      상태별 콘텐츠 목록
// @Tags         items
// @Produce      json
// @Param        status  query     string  false  "draft, scheduled, published, private, trash"  default(published)
// @Param        page    query     int     false  "페이지 번호"  default(1)
// @Param        limit   query     int     false  "페이지당 항목 수"  default(20)
// @Success      200  {object}  common.Response{data=[]domain.ContentItem}
// @Failure      400  {object}  common.Response
// @Security     BearerAuth
// @Router       /admin/items [get]
func (h *ContentHandler) ListItems(c *gin.Context) {
	status := domain.Status(c.DefaultQuery("status", string(domain.StatusPublished)))
	page := ginutil.QueryInt(c, "page", 1)
	limit := ginutil.QueryInt(c, "limit", 20)

	items, meta, err := h.service.List(c.Request.Context(), status, page, limit)
	if err != nil {
		common.FromError(c, err, "Failed to list items")
		return
	}
	common.SuccessWithMeta(c, items, meta)
}

// GetItem godoc
// @Summary      콘텐츠 조회
// @Description  발행된 글은 공개. 그 외 상태는 관리자 또는 유효한 preview_token 필요
// @Tags         items
// @Produce      json
// @Param        id             path   string  true   "아이템 ID"
// @Param        preview_token  query  string  false  "미리보기 토큰"
// @Success      200  {object}  common.Response{data=domain.ContentItem}
// @Failure      404  {object}  common.Response
// @Router       /items/{id} [get]
func (h *ContentHandler) GetItem(c *gin.Context) {
	id, err := ginutil.ParamUUID(c, "id")
	if err != nil {
		common.FromError(c, common.NotFound("item not found", err), "item not found")
		return
	}

	item, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		common.FromError(c, err, "Failed to fetch item")
		return
	}

	if item.IsPublished() {
		// 조회수 실패는 서비스가 warn 로그로 남기고 응답에는 영향 없음
		_ = h.service.RecordView(c.Request.Context(), id)
		common.Success(c, item)
		return
	}

	// 미발행 글은 존재 여부도 노출하지 않는다
	token := c.Query("preview_token")
	if middleware.IsAdmin(c) || (token != "" && h.preview.Authorize(token, id, middleware.GetUserID(c))) {
		common.Success(c, item)
		return
	}
	common.FromError(c, common.NotFound("item not found", common.ErrItemNotFound), "item not found")
}

// CreateItem godoc
// @Summary      초안 작성
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        request  body      domain.CreateItemRequest  true  "초안"
// @Success      201  {object}  common.Response{data=domain.ContentItem}
// @Failure      400  {object}  common.Response
// @Failure      401  {object}  common.Response
// @Security     BearerAuth
// @Router       /admin/items [post]
func (h *ContentHandler) CreateItem(c *gin.Context) {
	var req domain.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.FromError(c, common.InvalidArgument(bindMessage(err), err), "Invalid request")
		return
	}

	item, err := h.service.Create(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		common.FromError(c, err, "Failed to create item")
		return
	}
	common.Created(c, item)
}

// UpdateItem godoc
// @Summary      콘텐츠 수정
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        id       path      string                    true  "아이템 ID"
// @Param        request  body      domain.UpdateItemRequest  true  "변경 필드"
// @Success      200  {object}  common.Response{data=domain.ContentItem}
// @Failure      400  {object}  common.Response
// @Failure      404  {object}  common.Response
// @Security     BearerAuth
// @Router       /admin/items/{id} [patch]
func (h *ContentHandler) UpdateItem(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	var req domain.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.FromError(c, common.InvalidArgument(bindMessage(err), err), "Invalid request")
		return
	}

	item, err := h.service.Update(c.Request.Context(), id, middleware.GetUserID(c), &req)
	if err != nil {
		common.FromError(c, err, "Failed to update item")
		return
	}
	common.Success(c, item)
}

// ScheduleItem godoc
// @Summary      예약 발행
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "아이템 ID"
// @Param        request  body      domain.ScheduleItemRequest  true  "발행 예정 시각 (RFC3339, 미래)"
// @Success      200  {object}  common.Response{data=domain.ContentItem}
// @Failure      400  {object}  common.Response
// @Security     BearerAuth
// @Router       /admin/items/{id}/schedule [post]
func (h *ContentHandler) ScheduleItem(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	var req domain.ScheduleItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.FromError(c, common.InvalidArgument(bindMessage(err), err), "Invalid request")
		return
	}

	item, err := h.service.Schedule(c.Request.Context(), id, middleware.GetUserID(c), req.ScheduledFor)
	if err != nil {
		common.FromError(c, err, "Failed to schedule item")
		return
	}
	common.Success(c, item)
}

// TransitionItem godoc
// @Summary      상태 전환 (발행, 비공개, 휴지통, 초안 복귀)
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        id       path      string                    true  "아이템 ID"
// @Param        request  body      domain.TransitionRequest  true  "목표 상태"
// @Success      200  {object}  common.Response{data=domain.ContentItem}
// @Failure      400  {object}  common.Response
// @Security     BearerAuth
// @Router       /admin/items/{id}/status [post]
func (h *ContentHandler) TransitionItem(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	var req domain.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.FromError(c, common.InvalidArgument(bindMessage(err), err), "Invalid request")
		return
	}

	item, err := h.service.Transition(c.Request.Context(), id, middleware.GetUserID(c), req.Status)
	if err != nil {
		common.FromError(c, err, "Failed to change status")
		return
	}
	common.Success(c, item)
}

// itemID parses :id and writes the 400 response itself on failure
func itemID(c *gin.Context) (string, bool) {
	id, err := ginutil.ParamUUID(c, "id")
	if err != nil {
		common.FromError(c, common.InvalidArgument("invalid item id", err), "invalid item id")
		return "", false
	}
	return id, true
}
