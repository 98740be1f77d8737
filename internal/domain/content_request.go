package domain

import "time"

// CreateItemRequest 새 초안 생성 요청
type CreateItemRequest struct {
	Title       string   `json:"title" binding:"required,max=255"`
	Body        string   `json:"body"`
	Excerpt     string   `json:"excerpt" binding:"max=1000"`
	CategoryIDs []string `json:"category_ids" binding:"dive,required,max=64"`
	TagIDs      []string `json:"tag_ids" binding:"dive,required,max=64"`
}

// UpdateItemRequest 부분 수정 요청. nil 필드는 변경하지 않음
type UpdateItemRequest struct {
	Title       *string   `json:"title" binding:"omitempty,min=1,max=255"`
	Body        *string   `json:"body"`
	Excerpt     *string   `json:"excerpt" binding:"omitempty,max=1000"`
	CategoryIDs *[]string `json:"category_ids"`
	TagIDs      *[]string `json:"tag_ids"`
}

// ScheduleItemRequest 예약 발행 요청
type ScheduleItemRequest struct {
	ScheduledFor time.Time `json:"scheduled_for" binding:"required,future"`
}

// TransitionRequest 상태 전환 요청
type TransitionRequest struct {
	Status Status `json:"status" binding:"required,oneof=draft published private trash"`
}

// IssuePreviewRequest 미리보기 토큰 발급 요청
type IssuePreviewRequest struct {
	ItemID       string `json:"itemId" binding:"required"`
	// BindToIssuer 발급자 본인만 사용할 수 있는 토큰
	BindToIssuer bool   `json:"bindToIssuer"`
}

// VerifyPreviewRequest 미리보기 토큰 검증 요청
type VerifyPreviewRequest struct {
	Token  string `json:"token" binding:"required"`
	ItemID string `json:"itemId" binding:"required"`
}
