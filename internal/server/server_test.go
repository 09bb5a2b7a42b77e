package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/viguzmanp/boda-consu-seba/internal/config"
	"github.com/viguzmanp/boda-consu-seba/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
	log.SetLevel(log.ErrorLevel)
}

type routers struct {
	public *gin.Engine
	admin  *gin.Engine
}

func setupRouters(t *testing.T) routers {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		PublicBaseURL:  "https://boda.example",
		RateLimitRPS:   100,
		RateLimitBurst: 100,
	}

	invitations, err := store.NewSQLiteStore(filepath.Join(dir, "invitations.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { invitations.Close() })

	views, err := store.NewViewLog(filepath.Join(dir, "views.db"))
	if err != nil {
		t.Fatalf("failed to create view log: %v", err)
	}
	t.Cleanup(func() { views.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	public, err := NewPublicRouter(ctx, cfg, invitations, views)
	if err != nil {
		t.Fatalf("failed to build public router: %v", err)
	}
	adminRouter, err := NewAdminRouter(cfg, invitations, views)
	if err != nil {
		t.Fatalf("failed to build admin router: %v", err)
	}
	return routers{public: public, admin: adminRouter}
}

func call(t *testing.T, r *gin.Engine, method, path string, body any, out any) int {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)

	if out != nil && w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("%s %s: failed to decode %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w.Code
}

func TestEndToEnd_CreateTrackAndList(t *testing.T) {
	rs := setupRouters(t)

	var created store.Invitation
	code := call(t, rs.admin, http.MethodPost, "/invitations", map[string]string{
		"name": "Ana",
		"type": "female",
		"url":  "https://x/?name=Ana",
	}, &created)
	if code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", code)
	}
	if created.Status != store.StatusPending {
		t.Fatalf("expected pending, got %q", created.Status)
	}

	var st store.Stats
	if code := call(t, rs.admin, http.MethodGet, "/stats", nil, &st); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if st != (store.Stats{Total: 1}) {
		t.Fatalf("expected total:1 only, got %+v", st)
	}

	var tracked map[string]bool
	if code := call(t, rs.public, http.MethodPost, "/track-view", map[string]string{"name": "Ana"}, &tracked); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if !tracked["success"] {
		t.Fatalf("expected success=true, got %v", tracked)
	}

	var all []store.Invitation
	if code := call(t, rs.admin, http.MethodGet, "/invitations", nil, &all); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(all) != 1 || all[0].Status != store.StatusViewed {
		t.Fatalf("expected one viewed invitation, got %+v", all)
	}
}

func TestEndToEnd_ConfirmedSurvivesTrackView(t *testing.T) {
	rs := setupRouters(t)

	var created store.Invitation
	call(t, rs.admin, http.MethodPost, "/invitations", map[string]string{
		"name": "Juan y María",
		"type": "couple",
		"url":  "https://x/?name=Juan+y+Mar%C3%ADa",
	}, &created)

	path := "/invitations/" + strconv.FormatInt(created.ID, 10)
	if code := call(t, rs.admin, http.MethodPut, path, map[string]string{"status": "confirmed"}, nil); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if code := call(t, rs.public, http.MethodPost, "/track-view", map[string]string{"name": "Juan y María"}, nil); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}

	var st store.Stats
	call(t, rs.admin, http.MethodGet, "/stats", nil, &st)
	if st.Confirmed != 1 || st.Viewed != 0 {
		t.Fatalf("expected confirmed to be kept, got %+v", st)
	}

	var hist struct {
		Views []string `json:"views"`
	}
	if code := call(t, rs.admin, http.MethodGet, path+"/views", nil, &hist); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(hist.Views) != 1 {
		t.Fatalf("expected one recorded view, got %d", len(hist.Views))
	}
}

func TestEndToEnd_ValidationRejectsBeforeHandler(t *testing.T) {
	rs := setupRouters(t)

	if code := call(t, rs.admin, http.MethodPost, "/invitations", map[string]string{"name": "Ana"}, nil); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	if code := call(t, rs.public, http.MethodPost, "/track-view", map[string]string{}, nil); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	if code := call(t, rs.public, http.MethodGet, "/stats", nil, nil); code != http.StatusNotFound {
		t.Fatalf("expected admin route to be absent from public router, got %d", code)
	}
}

func TestEndToEnd_NameMatchedExactly(t *testing.T) {
	rs := setupRouters(t)

	var created store.Invitation
	code := call(t, rs.admin, http.MethodPost, "/invitations", map[string]string{
		"name": "Ana ",
		"type": "female",
		"url":  "https://x/?name=Ana%20",
	}, &created)
	if code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", code)
	}
	if created.Name != "Ana " {
		t.Fatalf("expected name stored as sent, got %q", created.Name)
	}

	if code := call(t, rs.public, http.MethodPost, "/track-view", map[string]string{"name": "Ana "}, nil); code != http.StatusOK {
		t.Fatalf("expected 200 tracking %q, got %d", "Ana ", code)
	}
	if code := call(t, rs.public, http.MethodPost, "/track-view", map[string]string{"name": "Ana"}, nil); code != http.StatusNotFound {
		t.Fatalf("expected 404 tracking %q, got %d", "Ana", code)
	}

	code = call(t, rs.admin, http.MethodPost, "/invitations", map[string]string{
		"name": "Ana",
		"type": "female",
		"url":  "https://x/?name=Ana",
	}, nil)
	if code != http.StatusCreated {
		t.Fatalf("expected 201 for a distinct name, got %d", code)
	}
}
