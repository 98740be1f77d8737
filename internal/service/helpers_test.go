package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/damoang/tourlog-backend/internal/domain"
	"github.com/damoang/tourlog-backend/internal/event"
	"github.com/damoang/tourlog-backend/internal/migration"
	"github.com/damoang/tourlog-backend/internal/repository"
)

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *testClock {
	return &testClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, migration.Run(db))
	return db
}

// engine wires the lifecycle components over one sqlite database the same
// way cmd/api does, minus Redis.
type engine struct {
	db        *gorm.DB
	clock     *testClock
	bus       *event.Bus
	items     repository.ItemRepository
	versions  repository.VersionRepository
	terms     repository.TermRepository
	ledger    *VersionLedger
	counter   *TaxonomyCounter
	scheduler *PublishScheduler
	content   ContentService
}

func newEngine(t *testing.T) *engine {
	t.Helper()
	db := setupTestDB(t)
	clock := newClock()
	log := zerolog.Nop()

	e := &engine{
		db:       db,
		clock:    clock,
		bus:      event.NewBus(log),
		items:    repository.NewItemRepository(db),
		versions: repository.NewVersionRepository(db),
		terms:    repository.NewTermRepository(db),
	}
	e.ledger = NewVersionLedger(e.versions, e.items, e.bus, DefaultMaxVersions, clock.Now, log)
	e.counter = NewTaxonomyCounter(e.terms, clock.Now, log)
	e.scheduler = NewPublishScheduler(e.items, e.bus, DefaultTrashRetention, clock.Now, log)
	e.content = NewContentService(e.items, e.terms, e.bus, clock.Now, log)

	e.bus.Subscribe("version-ledger", e.ledger.OnItemUpdated)
	e.bus.Subscribe("taxonomy-counter", e.counter.OnItemUpdated)
	return e
}

func (e *engine) termCount(t *testing.T, kind domain.TermKind, id string) int64 {
	t.Helper()
	term, err := e.terms.FindByKey(context.Background(), kind, id)
	require.NoError(t, err)
	return term.Count
}

func (e *engine) versionCount(t *testing.T, itemID string) int64 {
	t.Helper()
	n, err := e.versions.CountByItem(context.Background(), itemID)
	require.NoError(t, err)
	return n
}

func strPtr(s string) *string { return &s }
