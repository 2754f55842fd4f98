package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/aiguild/guildtracker/internal/config"
	"github.com/aiguild/guildtracker/internal/middleware"
	"github.com/aiguild/guildtracker/internal/models"
	"github.com/aiguild/guildtracker/internal/services"
	"github.com/aiguild/guildtracker/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// brokenMirror fails every call, standing in for an unreachable sheet.
type brokenMirror struct{}

func (brokenMirror) Append(context.Context, []interface{}) error {
	return fmt.Errorf("%w: dial timeout", models.ErrMirrorUnavailable)
}

func (brokenMirror) Replace(context.Context, string, []interface{}) error {
	return fmt.Errorf("%w: dial timeout", models.ErrMirrorUnavailable)
}

func (brokenMirror) Clear(context.Context, string) error {
	return fmt.Errorf("%w: dial timeout", models.ErrMirrorUnavailable)
}

// newTestRouter wires the project routes the way the server does:
// reads and registration are public, edits and deletes are gated.
func newTestRouter(t *testing.T, mirror services.RowMirror) (*gin.Engine, *gorm.DB) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("test-secret")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.Project{}, &models.MirrorOp{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	cfg := &config.Config{}
	cfg.Sheets.Enabled = mirror != nil
	cfg.Outbox = config.OutboxConfig{SweepInterval: "2m", MaxRetries: 3, BatchSize: 10}

	queue := services.NewSyncQueue()
	outbox := services.NewOutboxService(db, mirror, queue, cfg)
	queue.SetProcessor(outbox.DeliverByID)

	h := NewProjectHandler(db, outbox)

	r := gin.New()
	api := r.Group("/api")
	api.GET("/projects", h.List)
	api.GET("/projects/:name", h.Get)
	api.POST("/projects", h.Create)

	admin := api.Group("")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
	admin.PUT("/projects/:name", h.Update)
	admin.DELETE("/projects/:name", h.Delete)

	return r, db
}

func adminToken(t *testing.T) string {
	t.Helper()

	token, err := utils.GenerateToken(1, "admin", "admin", 1)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return body
}

// projectPath escapes the name so spaces survive the request line.
func projectPath(name string) string {
	return "/api/projects/" + url.PathEscape(name)
}

func validPayload(name string) map[string]interface{} {
	return map[string]interface{}{
		"name":        name,
		"one_liner":   "A chatbot that answers member questions",
		"description": "Answers questions about the guild using retrieval.",
		"ai_usage":    "LLM retrieval and generation",
		"lead_name":   "Ada Obi",
		"contact":     "+2347012345678",
		"status":      models.StatusMVP,
	}
}

func TestCreateProject_EndToEnd(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := doJSON(t, r, http.MethodPost, "/api/projects", "", validPayload("Guild FAQ Bot"))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, expected 201: %s", w.Code, w.Body.String())
	}

	data := decodeBody(t, w)["data"].(map[string]interface{})
	if data["mirror"] != services.MirrorDisabled {
		t.Errorf("mirror outcome = %v, expected disabled", data["mirror"])
	}
	project := data["project"].(map[string]interface{})
	if project["name"] != "Guild FAQ Bot" {
		t.Errorf("project name = %v", project["name"])
	}

	// The new project is visible on the public read paths.
	w = doJSON(t, r, http.MethodGet, projectPath("Guild FAQ Bot"), "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/projects?search=faq", "", nil)
	data = decodeBody(t, w)["data"].(map[string]interface{})
	if data["total"].(float64) != 1 {
		t.Errorf("search total = %v, expected 1", data["total"])
	}
}

func TestCreateProject_ValidationErrors(t *testing.T) {
	r, db := newTestRouter(t, nil)

	payload := validPayload("Bad Contact")
	payload["contact"] = "07012345678"

	w := doJSON(t, r, http.MethodPost, "/api/projects", "", payload)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, expected 400: %s", w.Code, w.Body.String())
	}

	data := decodeBody(t, w)["data"].(map[string]interface{})
	if _, ok := data["contact"]; !ok {
		t.Errorf("expected a per-field message for contact, got %v", data)
	}

	var count int64
	db.Model(&models.Project{}).Count(&count)
	if count != 0 {
		t.Errorf("rejected registration must not persist, found %d rows", count)
	}
}

func TestCreateProject_DuplicateName(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	if w := doJSON(t, r, http.MethodPost, "/api/projects", "", validPayload("Guild FAQ Bot")); w.Code != http.StatusCreated {
		t.Fatalf("first create status = %d: %s", w.Code, w.Body.String())
	}

	w := doJSON(t, r, http.MethodPost, "/api/projects", "", validPayload("Guild FAQ Bot"))
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d, expected 409: %s", w.Code, w.Body.String())
	}
}

func TestGetProject_NotFound(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := doJSON(t, r, http.MethodGet, projectPath("No Such Project"), "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, expected 404: %s", w.Code, w.Body.String())
	}
}

func TestUpdateProject_RequiresAuth(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := doJSON(t, r, http.MethodPut, projectPath("Guild FAQ Bot"), "", validPayload("Guild FAQ Bot"))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, expected 401 without a token", w.Code)
	}

	// A non-admin token is not enough.
	token, err := utils.GenerateToken(2, "viewer", "viewer", 1)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	w = doJSON(t, r, http.MethodPut, projectPath("Guild FAQ Bot"), token, validPayload("Guild FAQ Bot"))
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, expected 403 for non-admin", w.Code)
	}
}

func TestUpdateProject_EndToEnd(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	token := adminToken(t)

	doJSON(t, r, http.MethodPost, "/api/projects", "", validPayload("Guild FAQ Bot"))

	edit := validPayload("")
	delete(edit, "name")
	edit["lead_name"] = "Bola Ade"
	edit["status"] = models.StatusLaunch

	w := doJSON(t, r, http.MethodPut, projectPath("Guild FAQ Bot"), token, edit)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	data := decodeBody(t, w)["data"].(map[string]interface{})
	if data["updated"] != true {
		t.Errorf("updated = %v, expected true", data["updated"])
	}
	project := data["project"].(map[string]interface{})
	if project["lead_name"] != "Bola Ade" || project["status"] != models.StatusLaunch {
		t.Errorf("edit not applied: %v", project)
	}
}

func TestUpdateProject_ValidationMatchesCreate(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	token := adminToken(t)

	doJSON(t, r, http.MethodPost, "/api/projects", "", validPayload("Guild FAQ Bot"))

	edit := validPayload("")
	delete(edit, "name")
	edit["one_liner"] = strings.Repeat("x", 251)

	w := doJSON(t, r, http.MethodPut, projectPath("Guild FAQ Bot"), token, edit)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, expected 400: %s", w.Code, w.Body.String())
	}
	data := decodeBody(t, w)["data"].(map[string]interface{})
	if _, ok := data["one_liner"]; !ok {
		t.Errorf("expected a per-field message for one_liner, got %v", data)
	}
}

func TestUpdateProject_AbsentNameIsNoOp(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	token := adminToken(t)

	edit := validPayload("")
	delete(edit, "name")

	w := doJSON(t, r, http.MethodPut, projectPath("No Such Project"), token, edit)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200: %s", w.Code, w.Body.String())
	}
	data := decodeBody(t, w)["data"].(map[string]interface{})
	if data["updated"] != false {
		t.Errorf("updated = %v, expected false", data["updated"])
	}
}

func TestDeleteProject_RequiresConfirm(t *testing.T) {
	r, db := newTestRouter(t, nil)
	token := adminToken(t)

	doJSON(t, r, http.MethodPost, "/api/projects", "", validPayload("Guild FAQ Bot"))

	w := doJSON(t, r, http.MethodDelete, projectPath("Guild FAQ Bot"), token, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, expected 400 without confirm", w.Code)
	}

	var count int64
	db.Model(&models.Project{}).Count(&count)
	if count != 1 {
		t.Fatalf("unconfirmed delete must not remove rows, found %d", count)
	}

	w = doJSON(t, r, http.MethodDelete, projectPath("Guild FAQ Bot")+"?confirm=true", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	data := decodeBody(t, w)["data"].(map[string]interface{})
	if data["deleted"] != true {
		t.Errorf("deleted = %v, expected true", data["deleted"])
	}

	// Deleting the absent name again still succeeds.
	w = doJSON(t, r, http.MethodDelete, projectPath("Guild FAQ Bot")+"?confirm=true", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("repeat status = %d: %s", w.Code, w.Body.String())
	}
	data = decodeBody(t, w)["data"].(map[string]interface{})
	if data["deleted"] != false {
		t.Errorf("repeat deleted = %v, expected false", data["deleted"])
	}

	// The name is free for re-registration.
	if w = doJSON(t, r, http.MethodPost, "/api/projects", "", validPayload("Guild FAQ Bot")); w.Code != http.StatusCreated {
		t.Fatalf("re-register status = %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateProject_MirrorFailureDoesNotFailRequest(t *testing.T) {
	r, db := newTestRouter(t, brokenMirror{})

	w := doJSON(t, r, http.MethodPost, "/api/projects", "", validPayload("Guild FAQ Bot"))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, the local write must succeed: %s", w.Code, w.Body.String())
	}

	data := decodeBody(t, w)["data"].(map[string]interface{})
	mirror, _ := data["mirror"].(string)
	if !strings.Contains(mirror, "mirror sync failed") {
		t.Errorf("mirror outcome = %q, expected the failure notice", mirror)
	}

	var p models.Project
	if err := db.Where("name = ?", "Guild FAQ Bot").First(&p).Error; err != nil {
		t.Fatalf("project not persisted: %v", err)
	}
	if p.SyncStatus != models.SyncPending {
		t.Errorf("sync_status = %q, expected %q", p.SyncStatus, models.SyncPending)
	}

	var pending int64
	db.Model(&models.MirrorOp{}).Where("status = ?", models.MirrorOpPending).Count(&pending)
	if pending != 1 {
		t.Errorf("pending mirror ops = %d, expected 1", pending)
	}
}

func TestCreateProject_MalformedJSON(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/projects", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, expected 400", w.Code)
	}
}
