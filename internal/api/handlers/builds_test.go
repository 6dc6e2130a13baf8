package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/anvil-ide/anvil/internal/builder"
	"github.com/anvil-ide/anvil/internal/history"
	"github.com/anvil-ide/anvil/internal/toolchain"
)

type stubSubmitter struct {
	id       string
	err      error
	projects []string
}

func (s *stubSubmitter) Submit(project string) (string, error) {
	s.projects = append(s.projects, project)
	if s.err != nil {
		return "", s.err
	}
	return s.id, nil
}

type stubHistory struct {
	records []history.Record
	err     error
}

func (s *stubHistory) Recent(limit int) ([]history.Record, error) {
	return s.records, s.err
}

func postBuild(t *testing.T, handler *BuildHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/v1/builds", handler.PostBuild)

	req := httptest.NewRequest(http.MethodPost, "/v1/builds", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestPostBuildAccepted(t *testing.T) {
	submitter := &stubSubmitter{id: "build-1"}
	handler := NewBuildHandler(submitter, nil)

	w := postBuild(t, handler, `{"project":"demo"}`)

	require.Equal(t, http.StatusAccepted, w.Code)
	require.Equal(t, "build-1", decodeBody(t, w)["id"])
	require.Equal(t, []string{"demo"}, submitter.projects)
}

func TestPostBuildMissingProject(t *testing.T) {
	submitter := &stubSubmitter{}
	handler := NewBuildHandler(submitter, nil)

	w := postBuild(t, handler, `{}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, submitter.projects)
}

func TestPostBuildInvalidProject(t *testing.T) {
	submitter := &stubSubmitter{err: fmt.Errorf("project demo: %w", builder.ErrInvalidProject)}
	handler := NewBuildHandler(submitter, nil)

	w := postBuild(t, handler, `{"project":"demo"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostBuildConfigurationError(t *testing.T) {
	submitter := &stubSubmitter{err: &toolchain.ConfigError{
		Component:       toolchain.ComponentRuntime,
		RequiredVersion: "17",
		Message:         "no JDK registered for version 17",
	}}
	handler := NewBuildHandler(submitter, nil)

	w := postBuild(t, handler, `{"project":"demo"}`)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, toolchain.ComponentRuntime, body["component"])
	require.Equal(t, "17", body["requiredVersion"])
	require.Equal(t, "no JDK registered for version 17", body["error"])
}

func TestPostBuildQueueFull(t *testing.T) {
	submitter := &stubSubmitter{err: fmt.Errorf("build queue is full")}
	handler := NewBuildHandler(submitter, nil)

	w := postBuild(t, handler, `{"project":"demo"}`)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestListBuilds(t *testing.T) {
	gin.SetMode(gin.TestMode)
	code := 0
	handler := NewBuildHandler(&stubSubmitter{}, &stubHistory{records: []history.Record{
		{ID: "b1", Project: "demo", StartedAt: 1000, Outcome: history.OutcomeSuccess, ExitCode: &code},
	}})
	router := gin.New()
	router.GET("/v1/builds", handler.ListBuilds)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/builds", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	builds, ok := body["builds"].([]any)
	require.True(t, ok)
	require.Len(t, builds, 1)
}

func TestListBuildsWithoutHistory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewBuildHandler(&stubSubmitter{}, nil)
	router := gin.New()
	router.GET("/v1/builds", handler.ListBuilds)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/builds", nil))

	require.Equal(t, http.StatusOK, w.Code)
	builds, ok := decodeBody(t, w)["builds"].([]any)
	require.True(t, ok)
	require.Empty(t, builds)
}
