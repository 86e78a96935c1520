package project

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/inamate/artboard/internal/auth"
	"github.com/inamate/artboard/internal/document"
	"github.com/inamate/artboard/internal/store"
)

type testServer struct {
	router *mux.Router
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "projects.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	for _, id := range []string{"user_a", "user_b"} {
		u := &store.User{ID: id, Email: id + "@example.com", PasswordHash: "x", DisplayName: id}
		if err := st.CreateUser(context.Background(), u); err != nil {
			t.Fatal(err)
		}
	}

	h := NewHandler(NewService(st))
	r := mux.NewRouter()
	r.HandleFunc("/api/projects", h.List).Methods("GET")
	r.HandleFunc("/api/projects", h.Create).Methods("POST")
	r.HandleFunc("/api/projects/{projectId}", h.Get).Methods("GET")
	r.HandleFunc("/api/projects/{projectId}", h.Save).Methods("PUT")
	r.HandleFunc("/api/projects/{projectId}", h.Delete).Methods("DELETE")
	return &testServer{router: r}
}

func (s *testServer) do(t *testing.T, userID, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(auth.WithUserID(req.Context(), userID))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestProjectLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, "user_a", "POST", "/api/projects", `{"name":"Poster","width":800,"height":600}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	var created document.Project
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(created.Meta.ID, "proj_") || created.Canvas.Width != 800 || created.Canvas.Height != 600 {
		t.Fatalf("unexpected project %+v %+v", created.Meta, created.Canvas)
	}
	if created.Meta.UpdatedAt == "" {
		t.Error("created project has no timestamp")
	}
	path := "/api/projects/" + created.Meta.ID

	if rec := s.do(t, "user_b", "GET", path, ""); rec.Code != http.StatusNotFound {
		t.Errorf("other user get status = %d", rec.Code)
	}

	created.Meta.Name = "Renamed"
	body, err := json.Marshal(&created)
	if err != nil {
		t.Fatal(err)
	}
	if rec := s.do(t, "user_a", "PUT", path, string(body)); rec.Code != http.StatusNoContent {
		t.Fatalf("save status = %d: %s", rec.Code, rec.Body.String())
	}
	if rec := s.do(t, "user_b", "PUT", path, string(body)); rec.Code != http.StatusNotFound {
		t.Errorf("other user save status = %d", rec.Code)
	}

	rec = s.do(t, "user_a", "GET", "/api/projects", "")
	var list []store.Summary
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Name != "Renamed" {
		t.Errorf("unexpected list %+v", list)
	}

	if rec := s.do(t, "user_a", "DELETE", path, ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}
	if rec := s.do(t, "user_a", "GET", path, ""); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d", rec.Code)
	}
}

func TestCreateAndSaveValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"missing name", "POST", "/api/projects", `{}`, http.StatusBadRequest},
		{"negative size", "POST", "/api/projects", `{"name":"x","width":-1}`, http.StatusBadRequest},
		{"bad json", "POST", "/api/projects", `nope`, http.StatusBadRequest},
		{"sample", "POST", "/api/projects", `{"name":"Sale","sample":true}`, http.StatusCreated},
		{"save zero canvas", "PUT", "/api/projects/proj_x", `{"canvas":{"width":0,"height":0}}`, http.StatusBadRequest},
		{"save unknown layer type", "PUT", "/api/projects/proj_x", `{"canvas":{"width":10,"height":10},"layers":[{"id":"a","type":"video"}]}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, "user_a", tt.method, tt.path, tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
		})
	}
}
