package migration

import (
	"time"

	"github.com/damoang/tourlog-backend/internal/domain"
	"gorm.io/gorm"
)

// Run executes AutoMigrate for the lifecycle tables and seeds the default
// categories if the taxonomy table is empty. Safe to run multiple times.
func Run(db *gorm.DB) error {
	// 1. AutoMigrate - 테이블 없으면 생성, 있으면 skip
	if err := db.AutoMigrate(
		&domain.ContentItem{},
		&domain.VersionSnapshot{},
		&domain.TaxonomyTerm{},
		&domain.ProcessedEvent{},
	); err != nil {
		return err
	}

	// 2. Seed - taxonomy_terms 테이블이 비어있을 때만 기본 카테고리 삽입
	var count int64
	if err := db.Model(&domain.TaxonomyTerm{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return seedCategories(db)
	}

	return nil
}

func seedCategories(db *gorm.DB) error {
	now := time.Now().UTC()
	terms := []domain.TaxonomyTerm{
		{Kind: domain.TermCategory, ID: "travel-log", Name: "여행기", UpdatedAt: now},
		{Kind: domain.TermCategory, ID: "tour-review", Name: "투어 리뷰", UpdatedAt: now},
		{Kind: domain.TermCategory, ID: "tips", Name: "여행 팁", UpdatedAt: now},
		{Kind: domain.TermCategory, ID: "notice", Name: "공지사항", UpdatedAt: now},
	}
	return db.Create(&terms).Error
}
