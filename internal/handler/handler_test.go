package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dsnakex/Dashboard-ELN/dao/model"
	"github.com/dsnakex/Dashboard-ELN/dao/query"
	"github.com/dsnakex/Dashboard-ELN/internal/middleware"
	"github.com/dsnakex/Dashboard-ELN/internal/util"
	"github.com/dsnakex/Dashboard-ELN/pkg/activity"
	"github.com/dsnakex/Dashboard-ELN/pkg/blob"
)

type testEnv struct {
	db     *gorm.DB
	engine *gin.Engine
	blob   *blob.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	util.SetTokenMgrForTest("handler-test-secret")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(query.AllModels()...))

	store := blob.NewMemoryStore()
	recorder := activity.NewRecorder(db)
	recorder.Sync = true
	conf := &RegisterConfig{DB: db, Recorder: recorder, Blob: store}

	engine := gin.New()
	public := engine.Group("/v1")
	protected := engine.Group("/v1")
	protected.Use(middleware.AuthProtected())
	admin := engine.Group("/v1/admin")
	admin.Use(middleware.AuthProtected(), middleware.AuthAdmin())
	for _, register := range Registers {
		mgr := register(conf)
		name := "/" + mgr.GetName()
		mgr.RegisterPublic(public.Group(name))
		mgr.RegisterProtected(protected.Group(name))
		mgr.RegisterAdmin(admin.Group(name))
	}
	return &testEnv{db: db, engine: engine, blob: store}
}

func (env *testEnv) createUser(t *testing.T, name string, role model.Role) (*model.User, string) {
	t.Helper()
	user := model.User{
		Name:   name,
		Email:  name + "@lab.example",
		Role:   role,
		Status: "active",
	}
	require.NoError(t, env.db.Create(&user).Error)
	access, _, err := util.GetTokenMgr().CreateTokens(&util.JWTMessage{
		UserID:   user.ID,
		Username: user.Name,
		Role:     user.Role,
	})
	require.NoError(t, err)
	return &user, access
}

type envelope struct {
	Code int             `json:"code"`
	Data json.RawMessage `json:"data"`
	Msg  string          `json:"msg"`
}

func (env *testEnv) request(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)

	var resp envelope
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w.Code, resp
}

func decodeData[T any](t *testing.T, resp envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(resp.Data, &out))
	return out
}

// seedHierarchy creates a project, a study under it and returns both IDs.
func (env *testEnv) seedHierarchy(t *testing.T, token string) (projectID, studyID uint) {
	t.Helper()
	code, resp := env.request(t, http.MethodPost, "/v1/projects/create", token,
		gin.H{"name": "Plasmid screening"})
	require.Equal(t, http.StatusOK, code, resp.Msg)
	project := decodeData[model.Project](t, resp)

	code, resp = env.request(t, http.MethodPost, "/v1/studies/create", token,
		gin.H{"name": "Vector backbones", "projectId": project.ID})
	require.Equal(t, http.StatusOK, code, resp.Msg)
	study := decodeData[model.Study](t, resp)
	return project.ID, study.ID
}

func TestSignupLoginAndProfile(t *testing.T) {
	env := newTestEnv(t)

	code, resp := env.request(t, http.MethodPost, "/v1/auth/signup", "",
		gin.H{"username": "ada", "email": "ada@lab.example", "password": "correct-horse"})
	require.Equal(t, http.StatusOK, code, resp.Msg)
	tokens := decodeData[TokenResp](t, resp)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.Equal(t, "ada", tokens.User.Username)

	code, resp = env.request(t, http.MethodPost, "/v1/auth/login", "",
		gin.H{"username": "ada", "password": "correct-horse"})
	require.Equal(t, http.StatusOK, code, resp.Msg)

	code, resp = env.request(t, http.MethodPost, "/v1/auth/login", "",
		gin.H{"username": "ada", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, code)
	_ = resp

	code, resp = env.request(t, http.MethodGet, "/v1/auth/me", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, code, resp.Msg)
	profile := decodeData[ProfileResp](t, resp)
	assert.Equal(t, model.RoleResearcher, profile.Role)
}

func TestViewerRoleIsReadOnly(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "watcher", model.RoleViewer)

	code, _ := env.request(t, http.MethodGet, "/v1/projects/list", token, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = env.request(t, http.MethodPost, "/v1/projects/create", token,
		gin.H{"name": "nope"})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestExperimentLifecycleToSignature(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.createUser(t, "grace", model.RoleResearcher)
	_, studyID := env.seedHierarchy(t, token)

	code, resp := env.request(t, http.MethodPost, "/v1/experiments/create", token,
		gin.H{"name": "PCR run 12", "studyId": studyID})
	require.Equal(t, http.StatusOK, code, resp.Msg)
	experiment := decodeData[model.Experiment](t, resp)
	assert.Equal(t, model.ExperimentConfiguring, experiment.Status)

	for _, status := range []model.ExperimentStatus{
		model.ExperimentPending,
		model.ExperimentInProgress,
		model.ExperimentCompleted,
	} {
		code, resp = env.request(t, http.MethodPut,
			fmt.Sprintf("/v1/experiments/update/%d", experiment.ID), token,
			gin.H{"status": status})
		require.Equal(t, http.StatusOK, code, resp.Msg)
	}

	code, resp = env.request(t, http.MethodPost,
		fmt.Sprintf("/v1/experiments/%d/sign", experiment.ID), token, nil)
	require.Equal(t, http.StatusOK, code, resp.Msg)
	signed := decodeData[model.Experiment](t, resp)
	assert.Equal(t, model.ExperimentSigned, signed.Status)
	require.NotNil(t, signed.SignedAt)
	require.NotNil(t, signed.SignedBy)
	assert.Equal(t, user.ID, *signed.SignedBy)

	// the audit trail records the signature exactly once
	var auditCount int64
	env.db.Model(&model.ActivityLogEntry{}).
		Where("action = ? AND entity_type = ? AND entity_id = ?",
			model.ActionSigned, model.EntityExperiment, experiment.ID).
		Count(&auditCount)
	assert.EqualValues(t, 1, auditCount)

	// a second sign is rejected
	code, _ = env.request(t, http.MethodPost,
		fmt.Sprintf("/v1/experiments/%d/sign", experiment.ID), token, nil)
	assert.Equal(t, http.StatusConflict, code)

	// signed experiments reject edits
	code, _ = env.request(t, http.MethodPut,
		fmt.Sprintf("/v1/experiments/update/%d", experiment.ID), token,
		gin.H{"name": "tampered"})
	assert.Equal(t, http.StatusConflict, code)
}

func TestExperimentLifecycleGuards(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "linus", model.RoleResearcher)
	_, studyID := env.seedHierarchy(t, token)

	// only configuring and in_progress are valid initial states
	code, _ := env.request(t, http.MethodPost, "/v1/experiments/create", token,
		gin.H{"name": "bad", "studyId": studyID, "status": model.ExperimentCompleted})
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp := env.request(t, http.MethodPost, "/v1/experiments/create", token,
		gin.H{"name": "running", "studyId": studyID, "status": model.ExperimentInProgress})
	require.Equal(t, http.StatusOK, code, resp.Msg)
	experiment := decodeData[model.Experiment](t, resp)

	// no moving backwards
	code, _ = env.request(t, http.MethodPut,
		fmt.Sprintf("/v1/experiments/update/%d", experiment.ID), token,
		gin.H{"status": model.ExperimentPending})
	assert.Equal(t, http.StatusConflict, code)

	// signing requires the completed state
	code, _ = env.request(t, http.MethodPost,
		fmt.Sprintf("/v1/experiments/%d/sign", experiment.ID), token, nil)
	assert.Equal(t, http.StatusConflict, code)

	// status cannot be set to signed through update
	code, _ = env.request(t, http.MethodPut,
		fmt.Sprintf("/v1/experiments/update/%d", experiment.ID), token,
		gin.H{"status": model.ExperimentSigned})
	assert.Equal(t, http.StatusConflict, code)
}

func TestProjectDeleteCascades(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.createUser(t, "rosalind", model.RoleResearcher)
	projectID, studyID := env.seedHierarchy(t, token)

	code, resp := env.request(t, http.MethodPost, "/v1/experiments/create", token,
		gin.H{"name": "Gel run", "studyId": studyID})
	require.Equal(t, http.StatusOK, code, resp.Msg)
	experiment := decodeData[model.Experiment](t, resp)

	task := model.Task{Title: "Order primers", ProjectID: &projectID, UserID: user.ID}
	require.NoError(t, env.db.Create(&task).Error)
	comment := model.Comment{
		EntityType: model.EntityExperiment,
		EntityID:   experiment.ID,
		Content:    "looks contaminated",
		UserID:     user.ID,
	}
	require.NoError(t, env.db.Create(&comment).Error)

	code, resp = env.request(t, http.MethodDelete,
		fmt.Sprintf("/v1/projects/delete/%d", projectID), token, nil)
	require.Equal(t, http.StatusOK, code, resp.Msg)

	for _, probe := range []struct {
		name  string
		model any
	}{
		{"projects", &model.Project{}},
		{"studies", &model.Study{}},
		{"experiments", &model.Experiment{}},
		{"tasks", &model.Task{}},
		{"comments", &model.Comment{}},
	} {
		var count int64
		require.NoError(t, env.db.Model(probe.model).Count(&count).Error)
		assert.Zero(t, count, "%s should be empty", probe.name)
	}
}

func TestProtocolRoundTripAndSoftDelete(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "barbara", model.RoleResearcher)

	duration := 90
	code, resp := env.request(t, http.MethodPost, "/v1/protocols/create", token, gin.H{
		"name":                     "Miniprep",
		"category":                 "molecular biology",
		"visibility":               model.VisibilityGroup,
		"difficulty":               model.DifficultyEasy,
		"estimatedDurationMinutes": duration,
		"tags":                     []string{"dna", "purification"},
	})
	require.Equal(t, http.StatusOK, code, resp.Msg)
	created := decodeData[model.Protocol](t, resp)
	assert.Equal(t, 1, created.Version)

	code, resp = env.request(t, http.MethodGet,
		fmt.Sprintf("/v1/protocols/%d", created.ID), token, nil)
	require.Equal(t, http.StatusOK, code, resp.Msg)
	fetched := decodeData[model.Protocol](t, resp)
	assert.Equal(t, "Miniprep", fetched.Name)
	assert.Equal(t, model.VisibilityGroup, fetched.Visibility)
	require.NotNil(t, fetched.EstimatedDurationMinutes)
	assert.Equal(t, duration, *fetched.EstimatedDurationMinutes)
	assert.ElementsMatch(t, []string{"dna", "purification"}, fetched.Tags)

	// content changes bump the version
	code, resp = env.request(t, http.MethodPut,
		fmt.Sprintf("/v1/protocols/update/%d", created.ID), token,
		gin.H{"content": gin.H{"steps": []string{"lyse", "bind", "elute"}}})
	require.Equal(t, http.StatusOK, code, resp.Msg)
	updated := decodeData[model.Protocol](t, resp)
	assert.Equal(t, 2, updated.Version)

	code, resp = env.request(t, http.MethodDelete,
		fmt.Sprintf("/v1/protocols/delete/%d", created.ID), token, nil)
	require.Equal(t, http.StatusOK, code, resp.Msg)

	// deactivated protocols drop out of listings but stay fetchable
	code, resp = env.request(t, http.MethodGet, "/v1/protocols/list", token, nil)
	require.Equal(t, http.StatusOK, code, resp.Msg)
	list := decodeData[ListResp[model.Protocol]](t, resp)
	assert.Zero(t, list.Total)

	code, _ = env.request(t, http.MethodGet,
		fmt.Sprintf("/v1/protocols/%d", created.ID), token, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestExperimentTemplateSeedsContent(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "dorothy", model.RoleResearcher)
	_, studyID := env.seedHierarchy(t, token)

	code, resp := env.request(t, http.MethodPost, "/v1/templates/create", token, gin.H{
		"name":    "Standard PCR",
		"content": gin.H{"sections": []string{"setup", "cycles", "results"}},
	})
	require.Equal(t, http.StatusOK, code, resp.Msg)
	tpl := decodeData[model.ExperimentTemplate](t, resp)

	code, resp = env.request(t, http.MethodPost, "/v1/experiments/create", token,
		gin.H{"name": "PCR from template", "studyId": studyID, "templateId": tpl.ID})
	require.Equal(t, http.StatusOK, code, resp.Msg)
	experiment := decodeData[model.Experiment](t, resp)

	var content map[string]any
	require.NoError(t, json.Unmarshal(experiment.Content, &content))
	assert.Contains(t, content, "sections")
}

func TestTaskBoardGroupsByStatus(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "margaret", model.RoleResearcher)

	for _, status := range []model.TaskStatus{
		model.TaskTodo, model.TaskTodo, model.TaskInProgress, model.TaskDone,
	} {
		code, resp := env.request(t, http.MethodPost, "/v1/tasks/create", token,
			gin.H{"title": "chore", "status": status})
		require.Equal(t, http.StatusOK, code, resp.Msg)
	}

	code, resp := env.request(t, http.MethodGet, "/v1/tasks/board", token, nil)
	require.Equal(t, http.StatusOK, code, resp.Msg)
	board := decodeData[map[model.TaskStatus][]model.Task](t, resp)
	assert.Len(t, board[model.TaskTodo], 2)
	assert.Len(t, board[model.TaskInProgress], 1)
	assert.Len(t, board[model.TaskReview], 0)
	assert.Len(t, board[model.TaskDone], 1)

	// move a card and check the column change sticks
	moved := board[model.TaskTodo][0]
	code, resp = env.request(t, http.MethodPatch,
		fmt.Sprintf("/v1/tasks/%d/status", moved.ID), token,
		gin.H{"status": model.TaskReview})
	require.Equal(t, http.StatusOK, code, resp.Msg)

	var reloaded model.Task
	require.NoError(t, env.db.First(&reloaded, moved.ID).Error)
	assert.Equal(t, model.TaskReview, reloaded.Status)
}

func TestCommentOwnershipRules(t *testing.T) {
	env := newTestEnv(t)
	_, authorToken := env.createUser(t, "author", model.RoleResearcher)
	_, otherToken := env.createUser(t, "other", model.RoleResearcher)
	_, adminToken := env.createUser(t, "boss", model.RoleAdmin)
	_, studyID := env.seedHierarchy(t, authorToken)

	code, resp := env.request(t, http.MethodPost, "/v1/experiments/create", authorToken,
		gin.H{"name": "observed", "studyId": studyID})
	require.Equal(t, http.StatusOK, code, resp.Msg)
	experiment := decodeData[model.Experiment](t, resp)

	code, resp = env.request(t, http.MethodPost, "/v1/comments/create", authorToken, gin.H{
		"entityType": model.EntityExperiment,
		"entityId":   experiment.ID,
		"content":    "rerun with fresh buffer",
	})
	require.Equal(t, http.StatusOK, code, resp.Msg)
	comment := decodeData[model.Comment](t, resp)

	code, _ = env.request(t, http.MethodPut,
		fmt.Sprintf("/v1/comments/update/%d", comment.ID), otherToken,
		gin.H{"content": "hijacked"})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = env.request(t, http.MethodPut,
		fmt.Sprintf("/v1/comments/update/%d", comment.ID), authorToken,
		gin.H{"content": "rerun tomorrow"})
	assert.Equal(t, http.StatusOK, code)

	// admins may moderate
	code, _ = env.request(t, http.MethodDelete,
		fmt.Sprintf("/v1/comments/delete/%d", comment.ID), adminToken, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestNotificationReadStates(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.createUser(t, "reader", model.RoleResearcher)
	other, _ := env.createUser(t, "someone", model.RoleResearcher)

	for i := 0; i < 3; i++ {
		require.NoError(t, env.db.Create(&model.Notification{
			UserID: user.ID,
			Title:  fmt.Sprintf("sample expiring %d", i),
		}).Error)
	}
	require.NoError(t, env.db.Create(&model.Notification{
		UserID: other.ID,
		Title:  "not yours",
	}).Error)

	code, resp := env.request(t, http.MethodGet, "/v1/notifications/unread-count", token, nil)
	require.Equal(t, http.StatusOK, code, resp.Msg)
	count := decodeData[map[string]int64](t, resp)
	assert.EqualValues(t, 3, count["count"])

	code, resp = env.request(t, http.MethodGet, "/v1/notifications/list", token, nil)
	require.Equal(t, http.StatusOK, code, resp.Msg)
	list := decodeData[ListResp[model.Notification]](t, resp)
	require.EqualValues(t, 3, list.Total)

	code, _ = env.request(t, http.MethodPut,
		fmt.Sprintf("/v1/notifications/%d/read", list.Rows[0].ID), token, nil)
	assert.Equal(t, http.StatusOK, code)

	code, resp = env.request(t, http.MethodPut, "/v1/notifications/read-all", token, nil)
	require.Equal(t, http.StatusOK, code, resp.Msg)
	marked := decodeData[map[string]int64](t, resp)
	assert.EqualValues(t, 2, marked["marked"])

	code, resp = env.request(t, http.MethodGet, "/v1/notifications/unread-count", token, nil)
	require.Equal(t, http.StatusOK, code, resp.Msg)
	count = decodeData[map[string]int64](t, resp)
	assert.Zero(t, count["count"])
}

func TestListFiltersAndPagination(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "lister", model.RoleResearcher)

	for i := 0; i < 5; i++ {
		code, resp := env.request(t, http.MethodPost, "/v1/projects/create", token,
			gin.H{"name": fmt.Sprintf("screen %d", i)})
		require.Equal(t, http.StatusOK, code, resp.Msg)
	}
	code, resp := env.request(t, http.MethodPost, "/v1/projects/create", token,
		gin.H{"name": "archive me", "status": model.ProjectArchived})
	require.Equal(t, http.StatusOK, code, resp.Msg)

	code, resp = env.request(t, http.MethodGet,
		"/v1/projects/list?page=1&pageSize=2", token, nil)
	require.Equal(t, http.StatusOK, code, resp.Msg)
	page := decodeData[ListResp[ProjectResp]](t, resp)
	assert.EqualValues(t, 6, page.Total)
	assert.Len(t, page.Rows, 2)

	code, resp = env.request(t, http.MethodGet,
		"/v1/projects/list?status=archived", token, nil)
	require.Equal(t, http.StatusOK, code, resp.Msg)
	archived := decodeData[ListResp[ProjectResp]](t, resp)
	assert.EqualValues(t, 1, archived.Total)

	code, resp = env.request(t, http.MethodGet,
		"/v1/projects/list?search=archive", token, nil)
	require.Equal(t, http.StatusOK, code, resp.Msg)
	searched := decodeData[ListResp[ProjectResp]](t, resp)
	assert.EqualValues(t, 1, searched.Total)
}

func TestProjectsOverviewSurfacesStoreErrors(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "overseer", model.RoleResearcher)
	env.seedHierarchy(t, token)

	// break the child-count query underneath an otherwise healthy project
	require.NoError(t, env.db.Migrator().DropTable(&model.Study{}))

	code, resp := env.request(t, http.MethodGet,
		"/v1/dashboard/projects-overview", token, nil)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.NotEmpty(t, resp.Msg)
}

func TestDeletionPolicyDrivesDeleteEndpoints(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.createUser(t, "curator", model.RoleResearcher)

	// the guards refuse an entity routed down the wrong path
	_, err := deactivate(env.db, model.EntityProject, &model.Project{}, 1)
	require.Error(t, err)
	require.Error(t, deleteCascade(env.db, model.EntitySample, 1))

	// a soft-delete entity keeps its row, deactivated
	require.Equal(t, model.DeleteSoft, model.DeletionPolicyFor(model.EntitySample))
	sample := model.Sample{
		Name: "lysis buffer", SampleType: "reagent",
		Status: model.SampleAvailable, IsActive: true, CreatedBy: &user.ID,
	}
	require.NoError(t, env.db.Create(&sample).Error)
	code, resp := env.request(t, http.MethodDelete,
		fmt.Sprintf("/v1/samples/delete/%d", sample.ID), token, nil)
	require.Equal(t, http.StatusOK, code, resp.Msg)
	var kept model.Sample
	require.NoError(t, env.db.First(&kept, sample.ID).Error)
	assert.False(t, kept.IsActive)

	// a hard-delete entity loses its row entirely
	require.Equal(t, model.DeleteHard, model.DeletionPolicyFor(model.EntityProject))
	projectID, _ := env.seedHierarchy(t, token)
	code, resp = env.request(t, http.MethodDelete,
		fmt.Sprintf("/v1/projects/delete/%d", projectID), token, nil)
	require.Equal(t, http.StatusOK, code, resp.Msg)
	var gone model.Project
	assert.Error(t, env.db.First(&gone, projectID).Error)
}

func TestExperimentUpdateAuditsAllChangedFields(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "scribe", model.RoleResearcher)
	_, studyID := env.seedHierarchy(t, token)

	code, resp := env.request(t, http.MethodPost, "/v1/experiments/create", token,
		gin.H{"name": "original", "studyId": studyID})
	require.Equal(t, http.StatusOK, code, resp.Msg)
	experiment := decodeData[model.Experiment](t, resp)

	code, resp = env.request(t, http.MethodPut,
		fmt.Sprintf("/v1/experiments/update/%d", experiment.ID), token,
		gin.H{"name": "renamed", "status": model.ExperimentPending,
			"content": gin.H{"notes": "v2"}})
	require.Equal(t, http.StatusOK, code, resp.Msg)

	var entry model.ActivityLogEntry
	require.NoError(t, env.db.
		Where("action = ? AND entity_type = ? AND entity_id = ?",
			model.ActionUpdated, model.EntityExperiment, experiment.ID).
		Order("id DESC").First(&entry).Error)

	var changes map[string]struct {
		From any `json:"from"`
		To   any `json:"to"`
	}
	require.NoError(t, json.Unmarshal(entry.Changes, &changes))
	require.Contains(t, changes, "name")
	require.Contains(t, changes, "status")
	require.Contains(t, changes, "content")
	assert.Equal(t, "original", changes["name"].From)
	assert.Equal(t, "renamed", changes["name"].To)
	assert.Equal(t, string(model.ExperimentPending), changes["status"].To)
}
