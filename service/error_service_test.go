package service

import (
	"errors"
	"errorwatch/database"
	"errorwatch/models"
	"errorwatch/state"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T, hub *state.Hub, maxStored int) *ErrorService {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "errors.db"), logger.Silent)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewErrorService(db, hub, maxStored)
}

func payload(msg, path string) models.ErrorPayload {
	return models.ErrorPayload{
		Type:       "error",
		Message:    msg,
		Path:       path,
		Line:       1,
		Column:     2,
		StackTrace: []string{"at " + msg},
		Viewport:   "800x600",
		TimeSpend:  10,
		Datetime:   "now",
	}
}

func TestErrorService_SaveAndGet(t *testing.T) {
	hub := state.NewHub(4)
	_, live := hub.Subscribe()
	svc := newTestService(t, hub, 0)

	row, err := svc.Save(payload("boom", "app.js"), "127.0.0.1")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if row.ID == "" || row.ReceivedAt.IsZero() {
		t.Fatalf("expected id and receive time to be assigned, got %+v", row)
	}

	got, err := svc.Get(row.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Message != "boom" || got.RemoteAddr != "127.0.0.1" {
		t.Fatalf("unexpected row: %+v", got)
	}
	if frames := got.GetStackTrace(); len(frames) != 1 || frames[0] != "at boom" {
		t.Fatalf("unexpected stack: %v", frames)
	}

	select {
	case rec := <-live:
		if rec.ID != row.ID {
			t.Fatalf("expected published record %s, got %s", row.ID, rec.ID)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected record to be published")
	}

	if _, err := svc.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestErrorService_ListFiltersAndPaginates(t *testing.T) {
	svc := newTestService(t, nil, 0)
	for _, p := range []models.ErrorPayload{
		payload("alpha failed", "a.js"),
		payload("beta failed", "b.js"),
		payload("gamma failed", "a.js"),
	} {
		if _, err := svc.Save(p, ""); err != nil {
			t.Fatalf("Save: %v", err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	rows, total, err := svc.List(ErrorQuery{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 || len(rows) != 2 || rows[0].Message != "gamma failed" {
		t.Fatalf("unexpected first page: total=%d rows=%v", total, rows)
	}

	rows, total, err = svc.List(ErrorQuery{Path: "a.js"})
	if err != nil {
		t.Fatalf("List by path: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("expected 2 rows for a.js, got total=%d rows=%d", total, len(rows))
	}

	rows, total, err = svc.List(ErrorQuery{Keyword: "beta"})
	if err != nil {
		t.Fatalf("List by keyword: %v", err)
	}
	if total != 1 || rows[0].Path != "b.js" {
		t.Fatalf("unexpected keyword result: total=%d rows=%v", total, rows)
	}
}

func TestErrorService_PrunesOldest(t *testing.T) {
	svc := newTestService(t, nil, 2)
	for _, msg := range []string{"one", "two", "three"} {
		if _, err := svc.Save(payload(msg, "p.js"), ""); err != nil {
			t.Fatalf("Save: %v", err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	rows, total, err := svc.List(ErrorQuery{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 rows after pruning, got %d", total)
	}
	for _, r := range rows {
		if r.Message == "one" {
			t.Fatalf("expected oldest row to be pruned")
		}
	}
}

func TestErrorService_Clear(t *testing.T) {
	svc := newTestService(t, nil, 0)
	for i := 0; i < 3; i++ {
		if _, err := svc.Save(payload("x", "p.js"), ""); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	n, err := svc.Clear()
	if err != nil || n != 3 {
		t.Fatalf("expected 3 rows cleared, got %d (%v)", n, err)
	}
	if count, _ := svc.Count(); count != 0 {
		t.Fatalf("expected empty table, got %d", count)
	}
}

func TestErrorService_FailedPruneStoresNothing(t *testing.T) {
	hub := state.NewHub(4)
	_, live := hub.Subscribe()
	svc := newTestService(t, hub, 1)

	if _, err := svc.Save(payload("kept", "p.js"), ""); err != nil {
		t.Fatalf("Save: %v", err)
	}
	<-live

	err := svc.db.Exec(`CREATE TRIGGER block_prune BEFORE DELETE ON stored_errors
		BEGIN SELECT RAISE(ABORT, 'prune blocked'); END`).Error
	if err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	if _, err := svc.Save(payload("rejected", "p.js"), ""); err == nil {
		t.Fatalf("expected Save to fail when pruning fails")
	}

	if count, _ := svc.Count(); count != 1 {
		t.Fatalf("expected the failed save rolled back, got %d rows", count)
	}
	rows, _, err := svc.List(ErrorQuery{})
	if err != nil || len(rows) != 1 || rows[0].Message != "kept" {
		t.Fatalf("expected only the first row, got %v (%v)", rows, err)
	}

	select {
	case rec := <-live:
		t.Fatalf("expected nothing published for a failed save, got %s", rec.Message)
	default:
	}
}
