package master

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newTestRegistry(ttl time.Duration) (*Registry, *time.Time) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	reg := NewRegistry(ttl, zap.NewNop().Sugar())
	reg.now = func() time.Time { return clock }
	return reg, &clock
}

func post(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data)))
	return rec
}

func TestRegistryExpiresSilentServers(t *testing.T) {
	reg, clock := newTestRegistry(90 * time.Second)
	a := reg.Register(ServerInfo{Name: "a", Address: "a:1"})
	reg.Register(ServerInfo{Name: "b", Address: "b:1"})

	*clock = clock.Add(60 * time.Second)
	if !reg.Heartbeat(a, 3) {
		t.Fatal("Heartbeat(a) = false")
	}
	*clock = clock.Add(60 * time.Second)

	if removed := reg.Expire(); removed != 1 {
		t.Fatalf("Expire removed %d, want 1", removed)
	}
	list := reg.List()
	if len(list) != 1 || list[0].ID != a || list[0].Players != 3 {
		t.Fatalf("List = %+v", list)
	}
	if reg.Heartbeat("missing", 0) {
		t.Fatal("Heartbeat on unknown id = true")
	}
}

func TestRegistryListSortedByName(t *testing.T) {
	reg, _ := newTestRegistry(time.Minute)
	reg.Register(ServerInfo{Name: "zeta"})
	reg.Register(ServerInfo{Name: "alpha"})
	reg.Register(ServerInfo{Name: "mid"})

	list := reg.List()
	for i, want := range []string{"alpha", "mid", "zeta"} {
		if list[i].Name != want {
			t.Fatalf("List()[%d].Name = %q, want %q", i, list[i].Name, want)
		}
	}
}

func TestRegisterHandler(t *testing.T) {
	reg, _ := newTestRegistry(time.Minute)
	mux := NewMux(reg, zap.NewNop().Sugar())

	tests := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{"valid", RegisterRequest{Name: "host", Address: "localhost:7373", MaxPlayers: 16}, http.StatusCreated},
		{"missing address", RegisterRequest{Name: "host"}, http.StatusBadRequest},
		{"not json", "{", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, mux, "/servers/register", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusCreated {
				return
			}
			var resp RegisterResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if _, err := uuid.Parse(resp.ID); err != nil {
				t.Fatalf("id %q is not a uuid: %v", resp.ID, err)
			}
		})
	}
}

func TestHeartbeatAndListHandlers(t *testing.T) {
	reg, _ := newTestRegistry(time.Minute)
	mux := NewMux(reg, zap.NewNop().Sugar())
	id := reg.Register(ServerInfo{Name: "host", Address: "localhost:7373"})

	if rec := post(t, mux, "/servers/heartbeat", HeartbeatRequest{ID: id, Players: 2}); rec.Code != http.StatusOK {
		t.Fatalf("heartbeat status = %d", rec.Code)
	}
	if rec := post(t, mux, "/servers/heartbeat", HeartbeatRequest{ID: "nope"}); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown heartbeat status = %d, want 404", rec.Code)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/servers", nil))
	var list []ServerInfo
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || list[0].Players != 2 {
		t.Fatalf("list = %+v", list)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
}
