package session

import (
	"errors"
	"testing"

	"github.com/studiowebux/restforge/internal/ids"
	"github.com/studiowebux/restforge/internal/storage"
	"github.com/studiowebux/restforge/internal/types"
)

func newTestManager(store storage.Store) *Manager {
	return NewManager(store, WithIDGenerator(ids.NewSequence("t")))
}

func TestOpenTab_EmptyRequest(t *testing.T) {
	m := newTestManager(storage.NewMemoryStore())

	tab, err := m.OpenTab(nil)
	if err != nil {
		t.Fatalf("OpenTab failed: %v", err)
	}

	if tab.Request.Method != types.MethodGet {
		t.Errorf("Expected GET, got %s", tab.Request.Method)
	}
	if tab.Request.BodyType != types.BodyNone {
		t.Errorf("Expected body type none, got %s", tab.Request.BodyType)
	}
	if !tab.Request.SSLVerify || !tab.Request.FollowRedirects {
		t.Error("Expected defaults from settings")
	}

	active, ok := m.ActiveTab()
	if !ok || active.ID != tab.ID {
		t.Errorf("Expected new tab to be active, got %+v", active)
	}
}

func TestOpenTab_CopiesRequest(t *testing.T) {
	m := newTestManager(storage.NewMemoryStore())

	req := &types.RequestConfig{
		ID:      "r1",
		Method:  types.MethodPost,
		URL:     "https://api.example.com",
		Headers: []types.KeyValuePair{{Key: "A", Value: "B", Enabled: true}},
	}
	tab, _ := m.OpenTab(req)

	req.Headers[0].Value = "changed"
	got, _ := m.ActiveTab()
	if got.Request.Headers[0].Value != "B" {
		t.Errorf("Expected tab to hold a copy, got %s", got.Request.Headers[0].Value)
	}
	if tab.Request.URL != "https://api.example.com" {
		t.Errorf("Unexpected URL %s", tab.Request.URL)
	}
}

func TestCloseTab_ActivatesNeighbour(t *testing.T) {
	tests := []struct {
		name       string
		open       int
		active     int
		close      int
		wantActive int // -1 means none
	}{
		{"close active middle", 3, 1, 1, 0},
		{"close active first", 3, 0, 0, 0},
		{"close active last", 3, 2, 2, 1},
		{"close inactive", 3, 2, 0, 1},
		{"close only tab", 1, 0, 0, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(storage.NewMemoryStore())

			var opened []types.Tab
			for i := 0; i < tt.open; i++ {
				tab, _ := m.OpenTab(nil)
				opened = append(opened, tab)
			}
			if err := m.SetActive(opened[tt.active].ID); err != nil {
				t.Fatalf("SetActive failed: %v", err)
			}
			if err := m.CloseTab(opened[tt.close].ID); err != nil {
				t.Fatalf("CloseTab failed: %v", err)
			}

			remaining := m.Tabs()
			active, ok := m.ActiveTab()
			if tt.wantActive < 0 {
				if ok {
					t.Errorf("Expected no active tab, got %s", active.ID)
				}
				return
			}
			if !ok || active.ID != remaining[tt.wantActive].ID {
				t.Errorf("Expected active %s, got %s", remaining[tt.wantActive].ID, active.ID)
			}
		})
	}
}

func TestTabs_MissingID(t *testing.T) {
	m := newTestManager(storage.NewMemoryStore())

	checks := map[string]error{
		"close":    m.CloseTab("nope"),
		"active":   m.SetActive("nope"),
		"response": m.SetResponse("nope", nil),
		"loading":  m.SetLoading("nope", true),
		"update":   m.UpdateRequest("nope", &types.RequestConfig{}),
	}
	for name, err := range checks {
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("%s: expected ErrNotFound, got %v", name, err)
		}
	}
}

func TestResponseAndLoading(t *testing.T) {
	m := newTestManager(storage.NewMemoryStore())
	tab, _ := m.OpenTab(nil)

	if err := m.SetLoading(tab.ID, true); err != nil {
		t.Fatalf("SetLoading failed: %v", err)
	}
	got, _ := m.ActiveTab()
	if !got.IsLoading {
		t.Error("Expected tab to be loading")
	}

	resp := &types.ResponseData{Status: 200, StatusText: "OK", Headers: map[string]string{"X": "1"}}
	if err := m.SetResponse(tab.ID, resp); err != nil {
		t.Fatalf("SetResponse failed: %v", err)
	}
	resp.Headers["X"] = "2"

	got, _ = m.ActiveTab()
	if got.IsLoading {
		t.Error("Expected loading to clear with a response")
	}
	if got.Response == nil || got.Response.Headers["X"] != "1" {
		t.Errorf("Expected stored copy of response, got %+v", got.Response)
	}
}

func TestDuplicateTab(t *testing.T) {
	m := newTestManager(storage.NewMemoryStore())
	tab, _ := m.OpenTab(&types.RequestConfig{ID: "r1", Name: "Users", Method: types.MethodGet})
	m.SetResponse(tab.ID, &types.ResponseData{Status: 204})

	dup, err := m.DuplicateTab(tab.ID)
	if err != nil {
		t.Fatalf("DuplicateTab failed: %v", err)
	}
	if dup.ID == tab.ID || dup.Request.ID == tab.Request.ID {
		t.Errorf("Expected fresh ids, got tab %s request %s", dup.ID, dup.Request.ID)
	}
	if dup.Request.Name != "Users" || dup.Response == nil || dup.Response.Status != 204 {
		t.Errorf("Expected copied request and response, got %+v", dup)
	}
	if active, _ := m.ActiveTab(); active.ID != dup.ID {
		t.Error("Expected duplicate to be active")
	}
}

func TestPersistence(t *testing.T) {
	store := storage.NewMemoryStore()
	m := newTestManager(store)

	first, _ := m.OpenTab(nil)
	m.OpenTab(nil)
	m.SetActive(first.ID)
	m.SetLoading(first.ID, true)
	m.UpdateSettings(func(s *types.AppSettings) {
		s.Theme = types.ThemeDark
		s.SSLVerifyDefault = false
	})

	reloaded := NewManager(store)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(reloaded.Tabs()) != 2 {
		t.Fatalf("Expected 2 tabs, got %d", len(reloaded.Tabs()))
	}
	active, ok := reloaded.ActiveTab()
	if !ok || active.ID != first.ID {
		t.Errorf("Expected active tab %s, got %s", first.ID, active.ID)
	}
	if active.IsLoading {
		t.Error("Expected loading flag reset after reload")
	}

	settings := reloaded.Settings()
	if settings.Theme != types.ThemeDark || settings.SSLVerifyDefault {
		t.Errorf("Unexpected settings %+v", settings)
	}
	if !settings.FollowRedirectsDefault {
		t.Error("Expected untouched default to survive")
	}

	tab, _ := reloaded.OpenTab(nil)
	if tab.Request.SSLVerify {
		t.Error("Expected new tab to follow sslVerifyDefault")
	}
}

func TestLoad_Defaults(t *testing.T) {
	m := NewManager(storage.NewMemoryStore())
	if err := m.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Settings() != types.DefaultSettings() {
		t.Errorf("Expected default settings, got %+v", m.Settings())
	}
	if _, ok := m.ActiveTab(); ok {
		t.Error("Expected no active tab")
	}
}

func TestLoad_CorruptSettings(t *testing.T) {
	store := storage.NewMemoryStore()
	store.Set(storage.KeySettings, []byte("{"))

	m := NewManager(store)
	if err := m.Load(); err == nil {
		t.Error("Expected error for corrupt settings")
	}
	if m.Settings() != types.DefaultSettings() {
		t.Error("Expected defaults after failed load")
	}
}
