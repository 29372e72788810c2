package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsnakex/Dashboard-ELN/dao/model"
)

func (env *testEnv) uploadFile(t *testing.T, token, filename, content string,
	fields map[string]string) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.WriteString(part, content)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/files/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)

	var resp envelope
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w.Code, resp
}

func TestFileUploadStoresBlobAndRecord(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "uploader", model.RoleResearcher)
	_, studyID := env.seedHierarchy(t, token)

	code, resp := env.uploadFile(t, token, "gel.png", "fake-image-bytes", map[string]string{
		"entityType":  string(model.EntityStudy),
		"entityId":    fmt.Sprintf("%d", studyID),
		"description": "gel photo",
	})
	require.Equal(t, http.StatusOK, code, resp.Msg)
	file := decodeData[model.File](t, resp)

	assert.Equal(t, "gel.png", file.Name)
	assert.Equal(t, "/", file.FolderPath)
	require.NotNil(t, file.FileSize)
	assert.EqualValues(t, len("fake-image-bytes"), *file.FileSize)
	assert.Equal(t, 1, env.blob.Len())

	// download streams the stored bytes back
	req := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/v1/files/%d/download", file.ID), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fake-image-bytes", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "gel.png")
}

func TestFileUploadCompensatesOnInsertFailure(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "unlucky", model.RoleResearcher)

	// force the record insert to fail after the blob write succeeds
	require.NoError(t, env.db.Migrator().DropTable(&model.File{}))

	code, _ := env.uploadFile(t, token, "orphan.bin", "bytes", nil)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Zero(t, env.blob.Len(), "failed upload must not leave a blob behind")
}

func TestFileDeleteRemovesBlobKeepsRecord(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "cleaner", model.RoleResearcher)

	code, resp := env.uploadFile(t, token, "notes.txt", "some notes", nil)
	require.Equal(t, http.StatusOK, code, resp.Msg)
	file := decodeData[model.File](t, resp)

	code, resp = env.request(t, http.MethodDelete,
		fmt.Sprintf("/v1/files/delete/%d", file.ID), token, nil)
	require.Equal(t, http.StatusOK, code, resp.Msg)
	assert.Zero(t, env.blob.Len())

	var record model.File
	require.NoError(t, env.db.First(&record, file.ID).Error)
	assert.False(t, record.IsActive)
}

func TestDashboardKPIs(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.createUser(t, "pi", model.RoleResearcher)
	now := time.Now()

	soon := now.AddDate(0, 0, 10)
	farOut := now.AddDate(0, 6, 0)
	samples := []model.Sample{
		{Name: "taq", SampleType: "enzyme", Status: model.SampleAvailable,
			ExpirationDate: &soon, IsActive: true, CreatedBy: &user.ID},
		{Name: "ligase", SampleType: "enzyme", Status: model.SampleAvailable,
			ExpirationDate: &farOut, IsActive: true, CreatedBy: &user.ID},
		{Name: "old primer", SampleType: "oligo", Status: model.SampleDepleted,
			IsActive: true, CreatedBy: &user.ID},
	}
	require.NoError(t, env.db.Create(&samples).Error)

	dueSoon := now.AddDate(0, 0, 3)
	later := now.AddDate(0, 2, 0)
	equipment := []model.Equipment{
		{Name: "thermocycler", Status: model.EquipmentOperational,
			NextMaintenanceDate: &dueSoon, IsActive: true},
		{Name: "centrifuge", Status: model.EquipmentOperational,
			NextMaintenanceDate: &later, IsActive: true},
		{Name: "broken shaker", Status: model.EquipmentOutOfService, IsActive: true},
	}
	require.NoError(t, env.db.Create(&equipment).Error)

	require.NoError(t, env.db.Create(&model.Task{
		Title: "calibrate", UserID: user.ID,
	}).Error)

	code, resp := env.request(t, http.MethodGet, "/v1/dashboard/kpis", token, nil)
	require.Equal(t, http.StatusOK, code, resp.Msg)
	kpis := decodeData[KPIResp](t, resp)

	assert.EqualValues(t, 2, kpis.SamplesAvailable)
	assert.EqualValues(t, 1, kpis.SamplesExpiringSoon)
	assert.EqualValues(t, 2, kpis.EquipmentOperational)
	assert.EqualValues(t, 1, kpis.EquipmentMaintenanceDue)
	assert.EqualValues(t, 1, kpis.OpenTasks)
}

func TestAnalyticsOverviewShapes(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "analyst", model.RoleResearcher)
	_, studyID := env.seedHierarchy(t, token)

	for i := 0; i < 3; i++ {
		code, resp := env.request(t, http.MethodPost, "/v1/experiments/create", token,
			gin.H{"name": fmt.Sprintf("exp %d", i), "studyId": studyID})
		require.Equal(t, http.StatusOK, code, resp.Msg)
	}

	code, resp := env.request(t, http.MethodGet, "/v1/analytics", token, nil)
	require.Equal(t, http.StatusOK, code, resp.Msg)
	overview := decodeData[AnalyticsResp](t, resp)

	assert.Equal(t, 3, overview.Summary.TotalExperiments)
	assert.Equal(t, 1, overview.Summary.TotalProjects)
	assert.Equal(t, 0, overview.Summary.CompletionRate)
	assert.Len(t, overview.StatusDistribution, 5)
	assert.Len(t, overview.MonthlyTrends, 6)
	assert.Equal(t, 3, overview.StatusDistribution[0].Count)
}

func TestExportDownloads(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "exporter", model.RoleResearcher)
	_, studyID := env.seedHierarchy(t, token)

	code, resp := env.request(t, http.MethodPost, "/v1/experiments/create", token,
		gin.H{"name": "exportable", "studyId": studyID})
	require.Equal(t, http.StatusOK, code, resp.Msg)

	req := httptest.NewRequest(http.MethodGet, "/v1/export/experiments?format=xlsx", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "experiments_")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	// xlsx files are zip archives
	assert.Equal(t, "PK", w.Body.String()[:2])

	req = httptest.NewRequest(http.MethodGet, "/v1/export/experiments?format=pdf", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF", w.Body.String()[:4])

	req = httptest.NewRequest(http.MethodGet, "/v1/export/experiments?format=csv", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
