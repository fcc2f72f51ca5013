package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWatchlistHandler_List(t *testing.T) {
	handler := NewWatchlistHandler(newFakeApp())

	req := httptest.NewRequest("GET", "/api/v1/watchlist", nil)
	w := httptest.NewRecorder()
	handler.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var data map[string]any
	decodeData(t, w, &data)
	if data["count"].(float64) != 2 {
		t.Errorf("expected count 2, got %v", data["count"])
	}
	if len(data["opportunities"].([]any)) != 1 {
		t.Errorf("expected 1 opportunity, got %v", data["opportunities"])
	}
}

func TestWatchlistHandler_Add(t *testing.T) {
	fake := newFakeApp()
	handler := NewWatchlistHandler(fake)

	req := httptest.NewRequest("POST", "/api/v1/watchlist", jsonBody(`{"symbol":" tsla "}`))
	w := httptest.NewRecorder()
	handler.Add(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if len(fake.added) != 1 || fake.added[0] != "TSLA" {
		t.Errorf("expected TSLA to be added, got %v", fake.added)
	}

	var data map[string]any
	decodeData(t, w, &data)
	if data["added"] != true {
		t.Errorf("expected added=true, got %v", data["added"])
	}
	if len(data["watchlist"].([]any)) != 3 {
		t.Errorf("expected 3 watchlist entries, got %v", data["watchlist"])
	}
}

func TestWatchlistHandler_Add_Duplicate(t *testing.T) {
	fake := newFakeApp()
	handler := NewWatchlistHandler(fake)

	req := httptest.NewRequest("POST", "/api/v1/watchlist", jsonBody(`{"symbol":"NVDA"}`))
	w := httptest.NewRecorder()
	handler.Add(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var data map[string]any
	decodeData(t, w, &data)
	if data["added"] != false {
		t.Errorf("expected added=false, got %v", data["added"])
	}
	if len(fake.State().Watchlist) != 2 {
		t.Errorf("watchlist should be unchanged, got %d entries", len(fake.State().Watchlist))
	}
}

func TestWatchlistHandler_Add_MissingSymbol(t *testing.T) {
	fake := newFakeApp()
	handler := NewWatchlistHandler(fake)

	req := httptest.NewRequest("POST", "/api/v1/watchlist", jsonBody(`{}`))
	w := httptest.NewRecorder()
	handler.Add(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if len(fake.added) != 0 {
		t.Errorf("nothing should be added, got %v", fake.added)
	}
}
