package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/edu-smartai/edusmartai/internal/config"
	"github.com/edu-smartai/edusmartai/internal/db"
	"github.com/edu-smartai/edusmartai/internal/lesson"
	"github.com/edu-smartai/edusmartai/internal/llm"
	"github.com/edu-smartai/edusmartai/internal/models"
	"github.com/edu-smartai/edusmartai/internal/security"
	"github.com/edu-smartai/edusmartai/internal/teks"
)

const testSecret = "test-secret"

type fakeClient struct {
	response string
}

func (f *fakeClient) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	return &llm.Response{Content: f.response, PromptTokens: 10, CompletionTokens: 90}, nil
}

func (f *fakeClient) Model() string { return "fake-model" }

const testLessonJSON = `{
	"lessonTitle": "Multiplication at the Mercado",
	"mainLessonPlan": {"objective": "o", "materials": ["m"], "anticipatorySet": "a", "directInstruction": "d", "modelingAndChecking": "mc", "closure": "c"},
	"guidedPractice": {"description": "g", "activities": ["a1"], "differentiationStrategies": ["s1"]},
	"independentPractice": {"description": "i", "activities": ["a2"], "assessmentCriteria": ["c1"]}
}`

func newTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := db.Open("file:" + filepath.Join(t.TempDir(), "api-test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	jwtCfg := config.JWTConfig{Secret: testSecret, Expiry: time.Hour}
	generator := lesson.NewGenerator(conn, &fakeClient{response: testLessonJSON}, time.Minute)

	engine := gin.New()
	RegisterRoutes(engine, conn, jwtCfg, teks.Load(""), generator, true)
	return engine, conn
}

func seedOrg(t *testing.T, conn *gorm.DB, name string, maxMonthly int) *models.Organization {
	t.Helper()
	org := &models.Organization{
		Name:              name,
		SubscriptionTier:  models.TierTrial,
		MaxMonthlyLessons: maxMonthly,
		Active:            true,
	}
	if errCreate := conn.Create(org).Error; errCreate != nil {
		t.Fatalf("create org: %v", errCreate)
	}
	return org
}

func seedUser(t *testing.T, conn *gorm.DB, email, role string, orgID uint64) *models.User {
	t.Helper()
	hash, errHash := security.HashPassword("password123")
	if errHash != nil {
		t.Fatalf("hash password: %v", errHash)
	}
	user := &models.User{
		Email:          email,
		Password:       hash,
		FullName:       "Seed User",
		Role:           role,
		OrganizationID: orgID,
		Active:         true,
	}
	if errCreate := conn.Create(user).Error; errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}
	return user
}

func bearerFor(t *testing.T, email string) string {
	t.Helper()
	token, err := security.IssueUserToken(testSecret, email, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + token
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, auth string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if errDecode := json.Unmarshal(w.Body.Bytes(), &out); errDecode != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), errDecode)
	}
	return out
}

func TestAuth_RegisterTokenMeRoundTrip(t *testing.T) {
	engine, conn := newTestServer(t)
	org := seedOrg(t, conn, "Lone Star Charter", 50)

	w := doJSON(t, engine, http.MethodPost, "/api/auth/register", "",
		`{"email": "Teacher@Example.com", "password": "password123", "full_name": "New Teacher", "organization_id": `+jsonID(org.ID)+`}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", w.Code, w.Body.String())
	}
	created := decodeBody(t, w)
	if created["email"] != "teacher@example.com" {
		t.Fatalf("email should be lowercased: %v", created["email"])
	}
	if created["role"] != models.RoleTeacher {
		t.Fatalf("default role should be teacher: %v", created["role"])
	}

	form := url.Values{"username": {"teacher@example.com"}, "password": {"password123"}}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	tokenW := httptest.NewRecorder()
	engine.ServeHTTP(tokenW, req)
	if tokenW.Code != http.StatusOK {
		t.Fatalf("token: %d %s", tokenW.Code, tokenW.Body.String())
	}
	tokenBody := decodeBody(t, tokenW)
	access, _ := tokenBody["access_token"].(string)
	if access == "" || tokenBody["token_type"] != "bearer" {
		t.Fatalf("unexpected token body: %v", tokenBody)
	}

	meW := doJSON(t, engine, http.MethodGet, "/api/auth/me", "Bearer "+access, "")
	if meW.Code != http.StatusOK {
		t.Fatalf("me: %d %s", meW.Code, meW.Body.String())
	}
	me := decodeBody(t, meW)
	if me["email"] != "teacher@example.com" {
		t.Fatalf("me returned wrong account: %v", me)
	}

	var reloaded models.User
	if errFind := conn.Where("email = ?", "teacher@example.com").First(&reloaded).Error; errFind != nil {
		t.Fatalf("reload user: %v", errFind)
	}
	if reloaded.LastLogin == nil {
		t.Fatalf("login must record last_login")
	}
}

func TestAuth_RegisterRejectsDuplicatesAndUnknownOrg(t *testing.T) {
	engine, conn := newTestServer(t)
	org := seedOrg(t, conn, "Lone Star Charter", 50)
	seedUser(t, conn, "taken@example.com", models.RoleTeacher, org.ID)

	w := doJSON(t, engine, http.MethodPost, "/api/auth/register", "",
		`{"email": "taken@example.com", "password": "x", "organization_id": `+jsonID(org.ID)+`}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate email: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, engine, http.MethodPost, "/api/auth/register", "",
		`{"email": "new@example.com", "password": "x", "organization_id": 9999}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown org: %d %s", w.Code, w.Body.String())
	}
}

func TestAuth_TokenRejections(t *testing.T) {
	engine, conn := newTestServer(t)
	org := seedOrg(t, conn, "Lone Star Charter", 50)
	user := seedUser(t, conn, "teacher@example.com", models.RoleTeacher, org.ID)

	postForm := func(password string) *httptest.ResponseRecorder {
		form := url.Values{"username": {user.Email}, "password": {password}}
		req := httptest.NewRequest(http.MethodPost, "/api/auth/token", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w
	}

	if w := postForm("wrong"); w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: %d", w.Code)
	}

	if errUpdate := conn.Model(&models.User{}).Where("id = ?", user.ID).
		UpdateColumn("active", false).Error; errUpdate != nil {
		t.Fatalf("disable user: %v", errUpdate)
	}
	if w := postForm("password123"); w.Code != http.StatusBadRequest {
		t.Fatalf("disabled account: %d", w.Code)
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	engine, conn := newTestServer(t)

	if w := doJSON(t, engine, http.MethodGet, "/api/auth/me", "", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("missing header: %d", w.Code)
	}
	if w := doJSON(t, engine, http.MethodGet, "/api/auth/me", "Basic abc", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("non-bearer header: %d", w.Code)
	}
	if w := doJSON(t, engine, http.MethodGet, "/api/auth/me", "Bearer not.a.token", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: %d", w.Code)
	}
	if w := doJSON(t, engine, http.MethodGet, "/api/auth/me", bearerFor(t, "ghost@example.com"), ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("unknown subject: %d", w.Code)
	}

	org := seedOrg(t, conn, "Org Disabled", 50)
	user := seedUser(t, conn, "off@example.com", models.RoleTeacher, org.ID)
	if errUpdate := conn.Model(&models.User{}).Where("id = ?", user.ID).
		UpdateColumn("active", false).Error; errUpdate != nil {
		t.Fatalf("disable user: %v", errUpdate)
	}
	w := doJSON(t, engine, http.MethodGet, "/api/auth/me", bearerFor(t, user.Email), "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("disabled account: %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["error"] != "account disabled" {
		t.Fatalf("disabled account body: %v", body)
	}
}

func TestOrganizations_AccessControl(t *testing.T) {
	engine, conn := newTestServer(t)
	orgA := seedOrg(t, conn, "Org A", 50)
	orgB := seedOrg(t, conn, "Org B", 50)
	teacher := seedUser(t, conn, "teacher@a.example.com", models.RoleTeacher, orgA.ID)
	superAdmin := seedUser(t, conn, "root@example.com", models.RoleSuperAdmin, orgA.ID)

	ownPath := "/api/organizations/" + jsonID(orgA.ID)
	otherPath := "/api/organizations/" + jsonID(orgB.ID)

	if w := doJSON(t, engine, http.MethodGet, ownPath, bearerFor(t, teacher.Email), ""); w.Code != http.StatusOK {
		t.Fatalf("own org: %d %s", w.Code, w.Body.String())
	}
	if w := doJSON(t, engine, http.MethodGet, otherPath, bearerFor(t, teacher.Email), ""); w.Code != http.StatusForbidden {
		t.Fatalf("cross org should be forbidden: %d", w.Code)
	}
	if w := doJSON(t, engine, http.MethodGet, otherPath, bearerFor(t, superAdmin.Email), ""); w.Code != http.StatusOK {
		t.Fatalf("super admin cross org: %d %s", w.Code, w.Body.String())
	}
}

func TestOrganizations_CreateRequiresSuperAdmin(t *testing.T) {
	engine, conn := newTestServer(t)
	org := seedOrg(t, conn, "Org A", 50)
	teacher := seedUser(t, conn, "teacher@example.com", models.RoleTeacher, org.ID)
	superAdmin := seedUser(t, conn, "root@example.com", models.RoleSuperAdmin, org.ID)

	body := `{"name": "New Charter", "contact_email": "admin@new.example.com"}`
	if w := doJSON(t, engine, http.MethodPost, "/api/organizations", bearerFor(t, teacher.Email), body); w.Code != http.StatusForbidden {
		t.Fatalf("teacher create org: %d", w.Code)
	}

	w := doJSON(t, engine, http.MethodPost, "/api/organizations", bearerFor(t, superAdmin.Email), body)
	if w.Code != http.StatusCreated {
		t.Fatalf("super admin create org: %d %s", w.Code, w.Body.String())
	}
	created := decodeBody(t, w)
	if created["max_monthly_lessons"] != float64(50) {
		t.Fatalf("expected default quota from settings, got %v", created["max_monthly_lessons"])
	}
	if created["subscription_tier"] != models.TierTrial {
		t.Fatalf("expected trial tier default, got %v", created["subscription_tier"])
	}
}

func TestOrganizations_Usage(t *testing.T) {
	engine, conn := newTestServer(t)
	org := seedOrg(t, conn, "Org A", 50)
	teacher := seedUser(t, conn, "teacher@example.com", models.RoleTeacher, org.ID)

	if errCreate := conn.Create(&models.LessonPlan{
		UserID:         teacher.ID,
		OrganizationID: org.ID,
		GradeLevel:     "3",
		Subject:        "Mathematics",
		TeksStandard:   "3.4K",
	}).Error; errCreate != nil {
		t.Fatalf("seed lesson: %v", errCreate)
	}

	w := doJSON(t, engine, http.MethodGet, "/api/organizations/"+jsonID(org.ID)+"/usage", bearerFor(t, teacher.Email), "")
	if w.Code != http.StatusOK {
		t.Fatalf("usage: %d %s", w.Code, w.Body.String())
	}
	usage := decodeBody(t, w)
	if usage["monthly_lessons_used"] != float64(1) {
		t.Fatalf("monthly used = %v, want 1", usage["monthly_lessons_used"])
	}
	if usage["monthly_lessons_limit"] != float64(50) {
		t.Fatalf("limit = %v, want 50", usage["monthly_lessons_limit"])
	}
	if usage["active_users"] != float64(1) {
		t.Fatalf("active users = %v, want 1", usage["active_users"])
	}
}

func TestLessons_GenerateListGetDelete(t *testing.T) {
	engine, conn := newTestServer(t)
	org := seedOrg(t, conn, "Org A", 50)
	teacher := seedUser(t, conn, "teacher@example.com", models.RoleTeacher, org.ID)
	auth := bearerFor(t, teacher.Email)

	genBody := `{"grade_level": "3", "subject": "Mathematics", "teks_standard": "3.4K", "learning_objective": "multiply"}`
	w := doJSON(t, engine, http.MethodPost, "/api/lessons/generate", auth, genBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("generate: %d %s", w.Code, w.Body.String())
	}
	created := decodeBody(t, w)
	content, ok := created["lesson_content"].(map[string]any)
	if !ok || content["lessonTitle"] != "Multiplication at the Mercado" {
		t.Fatalf("lesson_content not returned as JSON: %v", created["lesson_content"])
	}

	listW := doJSON(t, engine, http.MethodGet, "/api/lessons", auth, "")
	if listW.Code != http.StatusOK {
		t.Fatalf("list: %d %s", listW.Code, listW.Body.String())
	}
	listBody := decodeBody(t, listW)
	lessons, _ := listBody["lessons"].([]any)
	if len(lessons) != 1 {
		t.Fatalf("expected 1 lesson, got %v", listBody)
	}

	id := jsonID(uint64(created["id"].(float64)))
	if getW := doJSON(t, engine, http.MethodGet, "/api/lessons/"+id, auth, ""); getW.Code != http.StatusOK {
		t.Fatalf("get: %d %s", getW.Code, getW.Body.String())
	}
	if delW := doJSON(t, engine, http.MethodDelete, "/api/lessons/"+id, auth, ""); delW.Code != http.StatusOK {
		t.Fatalf("delete: %d %s", delW.Code, delW.Body.String())
	}
	if getW := doJSON(t, engine, http.MethodGet, "/api/lessons/"+id, auth, ""); getW.Code != http.StatusNotFound {
		t.Fatalf("get after delete: %d", getW.Code)
	}
}

func TestLessons_GenerateValidationAndQuota(t *testing.T) {
	engine, conn := newTestServer(t)
	org := seedOrg(t, conn, "Org A", 1)
	teacher := seedUser(t, conn, "teacher@example.com", models.RoleTeacher, org.ID)
	auth := bearerFor(t, teacher.Email)

	badGrade := `{"grade_level": "12", "subject": "Mathematics", "teks_standard": "3.4K", "learning_objective": "x"}`
	if w := doJSON(t, engine, http.MethodPost, "/api/lessons/generate", auth, badGrade); w.Code != http.StatusBadRequest {
		t.Fatalf("bad grade: %d %s", w.Code, w.Body.String())
	}

	valid := `{"grade_level": "3", "subject": "Mathematics", "teks_standard": "3.4K", "learning_objective": "multiply"}`
	if w := doJSON(t, engine, http.MethodPost, "/api/lessons/generate", auth, valid); w.Code != http.StatusCreated {
		t.Fatalf("first generate: %d %s", w.Code, w.Body.String())
	}

	w := doJSON(t, engine, http.MethodPost, "/api/lessons/generate", auth, valid)
	if w.Code != http.StatusForbidden {
		t.Fatalf("quota: %d %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	msg, _ := body["error"].(string)
	if !strings.Contains(msg, "1") || !strings.Contains(msg, "limit") {
		t.Fatalf("quota error should cite the limit: %q", msg)
	}
}

func TestLessons_CrossUserAccess(t *testing.T) {
	engine, conn := newTestServer(t)
	org := seedOrg(t, conn, "Org A", 50)
	orgB := seedOrg(t, conn, "Org B", 50)
	owner := seedUser(t, conn, "owner@example.com", models.RoleTeacher, org.ID)
	peer := seedUser(t, conn, "peer@example.com", models.RoleTeacher, org.ID)
	orgAdmin := seedUser(t, conn, "admin@example.com", models.RoleAdmin, org.ID)
	outsideAdmin := seedUser(t, conn, "admin@b.example.com", models.RoleAdmin, orgB.ID)

	plan := &models.LessonPlan{
		UserID:         owner.ID,
		OrganizationID: org.ID,
		GradeLevel:     "3",
		Subject:        "Mathematics",
		TeksStandard:   "3.4K",
	}
	if errCreate := conn.Create(plan).Error; errCreate != nil {
		t.Fatalf("seed lesson: %v", errCreate)
	}
	path := "/api/lessons/" + jsonID(plan.ID)

	if w := doJSON(t, engine, http.MethodGet, path, bearerFor(t, peer.Email), ""); w.Code != http.StatusForbidden {
		t.Fatalf("peer teacher access: %d", w.Code)
	}
	if w := doJSON(t, engine, http.MethodGet, path, bearerFor(t, orgAdmin.Email), ""); w.Code != http.StatusOK {
		t.Fatalf("same-org admin access: %d %s", w.Code, w.Body.String())
	}
	if w := doJSON(t, engine, http.MethodGet, path, bearerFor(t, outsideAdmin.Email), ""); w.Code != http.StatusForbidden {
		t.Fatalf("cross-org admin access: %d", w.Code)
	}
}

func TestAdmin_StatsAndOrganizations(t *testing.T) {
	engine, conn := newTestServer(t)
	org := seedOrg(t, conn, "Org A", 50)
	teacher := seedUser(t, conn, "teacher@example.com", models.RoleTeacher, org.ID)
	superAdmin := seedUser(t, conn, "root@example.com", models.RoleSuperAdmin, org.ID)

	if errCreate := conn.Create(&models.LessonPlan{
		UserID:         teacher.ID,
		OrganizationID: org.ID,
		GradeLevel:     "3",
		Subject:        "Mathematics",
		TeksStandard:   "3.4K",
		APICost:        0.25,
	}).Error; errCreate != nil {
		t.Fatalf("seed lesson: %v", errCreate)
	}

	if w := doJSON(t, engine, http.MethodGet, "/api/admin/stats", bearerFor(t, teacher.Email), ""); w.Code != http.StatusForbidden {
		t.Fatalf("teacher admin stats: %d", w.Code)
	}

	w := doJSON(t, engine, http.MethodGet, "/api/admin/stats", bearerFor(t, superAdmin.Email), "")
	if w.Code != http.StatusOK {
		t.Fatalf("admin stats: %d %s", w.Code, w.Body.String())
	}
	stats := decodeBody(t, w)
	if stats["total_organizations"] != float64(1) || stats["total_users"] != float64(2) {
		t.Fatalf("unexpected stats: %v", stats)
	}
	if stats["total_api_cost"] != 0.25 {
		t.Fatalf("total cost = %v, want 0.25", stats["total_api_cost"])
	}

	orgW := doJSON(t, engine, http.MethodGet, "/api/admin/organizations?search=org", bearerFor(t, superAdmin.Email), "")
	if orgW.Code != http.StatusOK {
		t.Fatalf("admin orgs: %d %s", orgW.Code, orgW.Body.String())
	}
	orgBody := decodeBody(t, orgW)
	orgs, _ := orgBody["organizations"].([]any)
	if len(orgs) != 1 {
		t.Fatalf("expected 1 organization from search, got %v", orgBody)
	}
}

func TestTEKS_Endpoints(t *testing.T) {
	engine, _ := newTestServer(t)

	w := doJSON(t, engine, http.MethodGet, "/api/teks/grades", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("grades: %d", w.Code)
	}
	grades := decodeBody(t, w)
	if grades["count"] != float64(9) {
		t.Fatalf("expected 9 grades, got %v", grades)
	}

	if w := doJSON(t, engine, http.MethodGet, "/api/teks/3/subjects", "", ""); w.Code != http.StatusOK {
		t.Fatalf("subjects: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, engine, http.MethodGet, "/api/teks/12/subjects", "", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("bad grade: %d", w.Code)
	}
	notFound := decodeBody(t, w)
	msg, _ := notFound["error"].(string)
	if !strings.Contains(msg, "Available grades") {
		t.Fatalf("404 should list available grades: %q", msg)
	}

	w = doJSON(t, engine, http.MethodGet, "/api/teks/4/Mathematics", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("grade 4 math standards: %d %s", w.Code, w.Body.String())
	}
	standards := decodeBody(t, w)
	if standards["grade"] != "4" || standards["subject"] != "Mathematics" {
		t.Fatalf("unexpected standards payload: %v", standards)
	}
	list, _ := standards["standards"].([]any)
	if len(list) == 0 {
		t.Fatalf("expected standards for grade 4 Mathematics: %v", standards)
	}

	w = doJSON(t, engine, http.MethodGet, "/api/teks/3/Basket%20Weaving", "", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("bad subject: %d", w.Code)
	}
	badSubject := decodeBody(t, w)
	msg, _ = badSubject["error"].(string)
	if !strings.Contains(msg, "Available subjects") {
		t.Fatalf("404 should list available subjects: %q", msg)
	}

	w = doJSON(t, engine, http.MethodGet, "/api/teks/code/3.4K", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("standard by code: %d %s", w.Code, w.Body.String())
	}
	if w := doJSON(t, engine, http.MethodGet, "/api/teks/code/99.Z", "", ""); w.Code != http.StatusNotFound {
		t.Fatalf("unknown code: %d", w.Code)
	}

	if w := doJSON(t, engine, http.MethodGet, "/api/teks/stats", "", ""); w.Code != http.StatusOK {
		t.Fatalf("stats: %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	engine, _ := newTestServer(t)

	w := doJSON(t, engine, http.MethodGet, "/", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("root: %d", w.Code)
	}
	root := decodeBody(t, w)
	if root["status"] != "healthy" {
		t.Fatalf("unexpected root body: %v", root)
	}

	w = doJSON(t, engine, http.MethodGet, "/health", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("health: %d %s", w.Code, w.Body.String())
	}
	health := decodeBody(t, w)
	if health["database"] != "connected" || health["openai"] != "configured" {
		t.Fatalf("unexpected health body: %v", health)
	}
}

func jsonID(id uint64) string {
	return strconv.FormatUint(id, 10)
}
