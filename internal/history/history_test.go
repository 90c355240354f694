package history

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/studiowebux/restforge/internal/ids"
	"github.com/studiowebux/restforge/internal/storage"
	"github.com/studiowebux/restforge/internal/types"
)

func item(id string) types.RequestHistoryItem {
	return types.RequestHistoryItem{
		ID:      id,
		Request: types.RequestConfig{ID: "req-" + id, Method: types.MethodGet, URL: "https://a.b/" + id},
	}
}

func TestManager_AddPrependsAndPersists(t *testing.T) {
	store := storage.NewMemoryStore()
	m := NewManager(store)

	for _, id := range []string{"1", "2", "3"} {
		if err := m.Add(item(id)); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	items := m.Items()
	if len(items) != 3 || items[0].ID != "3" || items[2].ID != "1" {
		t.Fatalf("Expected newest first [3 2 1], got %+v", items)
	}

	reloaded := NewManager(store)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := reloaded.Items(); len(got) != 3 || got[0].ID != "3" {
		t.Errorf("Expected persisted history, got %+v", got)
	}
}

func TestManager_MaxItems(t *testing.T) {
	m := NewManager(storage.NewMemoryStore())

	for i := 0; i < DefaultMaxItems+5; i++ {
		m.Add(item(fmt.Sprint(i)))
	}

	items := m.Items()
	if len(items) != DefaultMaxItems {
		t.Fatalf("Expected %d items, got %d", DefaultMaxItems, len(items))
	}
	if items[0].ID != fmt.Sprint(DefaultMaxItems+4) {
		t.Errorf("Expected newest item first, got %s", items[0].ID)
	}
	if items[len(items)-1].ID != "5" {
		t.Errorf("Expected oldest kept item 5, got %s", items[len(items)-1].ID)
	}
}

func TestManager_WithMaxItems(t *testing.T) {
	m := NewManager(storage.NewMemoryStore(), WithMaxItems(2))
	m.Add(item("1"))
	m.Add(item("2"))
	m.Add(item("3"))

	if got := m.Items(); len(got) != 2 || got[1].ID != "2" {
		t.Errorf("Expected [3 2], got %+v", got)
	}
}

func TestManager_DeleteAndGet(t *testing.T) {
	m := NewManager(storage.NewMemoryStore())
	m.Add(item("1"))
	m.Add(item("2"))

	got, err := m.Get("1")
	if err != nil || got.Request.URL != "https://a.b/1" {
		t.Errorf("Expected item 1, got %+v, %v", got, err)
	}

	if err := m.Delete("1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := m.Get("1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if err := m.Delete("1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestManager_Clear(t *testing.T) {
	store := storage.NewMemoryStore()
	m := NewManager(store)
	m.Add(item("1"))

	if err := m.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if len(m.Items()) != 0 {
		t.Error("Expected empty history")
	}

	reloaded := NewManager(store)
	reloaded.Load()
	if len(reloaded.Items()) != 0 {
		t.Error("Expected cleared history to be persisted")
	}
}

func TestManager_Record(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	m := NewManager(storage.NewMemoryStore(),
		WithIDGenerator(ids.NewSequence("h")),
		WithClock(func() time.Time { return now }),
	)

	req := &types.RequestConfig{ID: "r", Method: types.MethodPost, Headers: []types.KeyValuePair{{Key: "A"}}}
	resp := &types.ResponseData{Status: 200}

	got, err := m.Record(req, resp)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if got.ID != "h-1" || got.Timestamp != 1700000000000 || got.Response.Status != 200 {
		t.Errorf("Unexpected item: %+v", got)
	}

	// the stored request is a copy
	req.Headers[0].Key = "B"
	stored, _ := m.Get("h-1")
	if stored.Request.Headers[0].Key != "A" {
		t.Error("Expected recorded request to be isolated from later edits")
	}
}

func TestManager_LoadCorrupt(t *testing.T) {
	store := storage.NewMemoryStore()
	store.Set(storage.KeyHistory, []byte("garbage"))

	m := NewManager(store)
	if err := m.Load(); err == nil {
		t.Error("Expected load error")
	}
	if items := m.Items(); items == nil || len(items) != 0 {
		t.Errorf("Expected empty list after failed load, got %+v", items)
	}
}

func TestManager_SQLiteStore(t *testing.T) {
	store, err := storage.NewSQLiteStore(storage.InMemory)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	m := NewManager(store)
	m.Add(item("1"))

	reloaded := NewManager(store)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(reloaded.Items()) != 1 {
		t.Errorf("Expected 1 item, got %d", len(reloaded.Items()))
	}
}
