package handler

import (
	"github.com/damoang/tourlog-backend/internal/common"
	"github.com/damoang/tourlog-backend/internal/domain"
	"github.com/damoang/tourlog-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// TermHandler category/tag endpoints
type TermHandler struct {
	service service.TermService
}

// NewTermHandler creates a new TermHandler
func NewTermHandler(service service.TermService) *TermHandler {
	return &TermHandler{service: service}
}

// RenameTermRequest 표시 이름 변경
type RenameTermRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// ListTerms godoc
// @Summary      카테고리/태그 목록 (발행 글 수 포함)
// @Tags         terms
// @Produce      json
// @Param        kind  path      string  true  "category | tag"
// @Success      200   {object}  common.Response{data=[]domain.TaxonomyTerm}
// @Failure      400   {object}  common.Response
// @Router       /terms/{kind} [get]
func (h *TermHandler) ListTerms(c *gin.Context) {
	terms, err := h.service.List(c.Request.Context(), domain.TermKind(c.Param("kind")))
	if err != nil {
		common.FromError(c, err, "Failed to list terms")
		return
	}
	common.Success(c, terms)
}

// RenameTerm godoc
// @Summary      카테고리/태그 이름 변경 (관리자)
// @Tags         terms
// @Accept       json
// @Produce      json
// @Param        kind     path      string             true  "category | tag"
// @Param        id       path      string             true  "term ID"
// @Param        request  body      RenameTermRequest  true  "새 이름"
// @Success      200      {object}  common.Response{data=domain.TaxonomyTerm}
// @Security     BearerAuth
// @Router       /admin/terms/{kind}/{id} [put]
func (h *TermHandler) RenameTerm(c *gin.Context) {
	var req RenameTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.FromError(c, common.InvalidArgument(bindMessage(err), err), "Invalid request")
		return
	}

	term, err := h.service.Rename(c.Request.Context(), domain.TermKind(c.Param("kind")), c.Param("id"), req.Name)
	if err != nil {
		common.FromError(c, err, "Failed to rename term")
		return
	}
	common.Success(c, term)
}
