package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idea2app/internal/artifact"
	"idea2app/internal/chat"
	artifactrepo "idea2app/internal/gateway/repository/artifact"
	chatrepo "idea2app/internal/gateway/repository/chat"
	creditrepo "idea2app/internal/gateway/repository/credit"
	projectrepo "idea2app/internal/gateway/repository/project"
	"idea2app/internal/gateway/middleware"
	"idea2app/internal/llm"
	"idea2app/internal/llmclient"
	"idea2app/internal/pipeline"
	"idea2app/internal/project"
)

type stubGenerator struct {
	out  artifact.Artifact
	err  error
	reqs []pipeline.Request
}

func (g *stubGenerator) Run(_ context.Context, req pipeline.Request) (artifact.Artifact, error) {
	g.reqs = append(g.reqs, req)
	return g.out, g.err
}

func (g *stubGenerator) Cost(typ artifact.Type) int { return pipeline.DefaultCosts()[typ] }

type fixture struct {
	srv       *httptest.Server
	projects  *projectrepo.FileStore
	artifacts *artifactrepo.MemoryStore
	gen       *stubGenerator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		projects:  projectrepo.NewMemoryStore(),
		artifacts: artifactrepo.NewMemoryStore(),
		gen:       &stubGenerator{},
	}
	api := New(Deps{
		Projects:  f.projects,
		Artifacts: f.artifacts,
		Credits:   creditrepo.NewMemoryLedger(20),
		Generator: f.gen,
		Chat:      chat.NewService(chatrepo.NewMemoryStore(), f.projects, llm.NewFakeClient()),
	})
	mux := http.NewServeMux()
	api.Register(mux)
	f.srv = httptest.NewServer(middleware.RequireUser(mux))
	t.Cleanup(f.srv.Close)

	_, err := f.projects.Create(context.Background(), project.Project{ID: "p1", UserID: "u1", Name: "WalkBuddy", Idea: "dog walkers"})
	require.NoError(t, err)
	return f
}

func (f *fixture) do(t *testing.T, method, path, user, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, f.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if user != "" {
		req.Header.Set(middleware.UserHeader, user)
	}
	resp, err := f.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestProjectsAreScopedToTheCaller(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/projects", "u1", `{"name":"Second","idea":"meal kits"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[project.Project](t, resp)
	assert.Equal(t, "u1", created.UserID)
	assert.NotEmpty(t, created.ID)

	resp = f.do(t, http.MethodGet, "/api/projects", "u1", "")
	list := decode[struct {
		Projects []project.Project `json:"projects"`
	}](t, resp)
	assert.Len(t, list.Projects, 2)

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/projects/p1", "u1", "").StatusCode)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/projects/p1", "u2", "").StatusCode)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/projects", "u1", `{"name":"x"}`).StatusCode)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/api/projects", "", "").StatusCode)
}

func TestGenerateMapsErrorsToStatus(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"credits", pipeline.ErrInsufficientCredits, http.StatusPaymentRequired},
		{"prerequisite", &pipeline.PrerequisiteError{Type: artifact.TypePRD, Missing: artifact.TypeCompetitiveAnalysis}, http.StatusConflict},
		{"in flight", pipeline.ErrGenerationInProgress, http.StatusConflict},
		{"project", fmt.Errorf("load: %w", pipeline.ErrProjectNotFound), http.StatusNotFound},
		{"deadline", fmt.Errorf("generate prd: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"model", fmt.Errorf("synthesize prd: %w", &llmclient.ModelError{Provider: "gemini", Err: errors.New("503")}), http.StatusBadGateway},
		{"other", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.gen.err = tc.err
			resp := f.do(t, http.MethodPost, "/api/projects/p1/artifacts/prd", "u1", "")
			assert.Equal(t, tc.status, resp.StatusCode)
			body := decode[errorBody](t, resp)
			if tc.name == "prerequisite" {
				assert.Equal(t, artifact.TypeCompetitiveAnalysis, body.Missing)
			}
			if tc.status == http.StatusInternalServerError {
				assert.Equal(t, "internal error", body.Error)
			}
		})
	}
}

func TestGenerateReturnsArtifactAndCost(t *testing.T) {
	f := newFixture(t)
	f.gen.out = artifact.Artifact{ID: "a1", ProjectID: "p1", Type: artifact.TypeCompetitiveAnalysis}

	resp := f.do(t, http.MethodPost, "/api/projects/p1/artifacts/competitive-analysis", "u1", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	out := decode[generateResponse](t, resp)
	assert.Equal(t, "a1", out.Artifact.ID)
	assert.Equal(t, 5, out.CreditsUsed)
	require.Len(t, f.gen.reqs, 1)
	assert.Equal(t, pipeline.Request{UserID: "u1", ProjectID: "p1", Type: artifact.TypeCompetitiveAnalysis}, f.gen.reqs[0])

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/projects/p1/artifacts/brochure", "u1", "").StatusCode)
}

func TestUpdateArtifactChecksOwnership(t *testing.T) {
	f := newFixture(t)
	_, err := f.artifacts.Create(context.Background(), artifact.Artifact{ID: "a1", ProjectID: "p1", Type: artifact.TypePRD, Content: "old"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPatch, "/api/artifacts/a1", "u2", `{"content":"hijack"}`).StatusCode)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPatch, "/api/artifacts/a1", "u1", `{}`).StatusCode)

	resp := f.do(t, http.MethodPatch, "/api/artifacts/a1", "u1", `{"content":"new"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "new", decode[artifact.Artifact](t, resp).Content)

	resp = f.do(t, http.MethodGet, "/api/projects/p1/artifacts?type=prd", "u1", "")
	list := decode[struct {
		Artifacts []artifact.Artifact `json:"artifacts"`
	}](t, resp)
	require.Len(t, list.Artifacts, 1)
	assert.Equal(t, "new", list.Artifacts[0].Content)
}

func TestMockupPages(t *testing.T) {
	f := newFixture(t)
	content := "## Home\nLanding page.\n\n```json\n" +
		`{"root":"home","elements":{"home":{"type":"Stack","props":{},"children":["h"]},"h":{"type":"Heading","props":{"text":"Welcome"},"children":[]}}}` +
		"\n```\n"
	_, err := f.artifacts.Create(context.Background(), artifact.Artifact{ID: "m1", ProjectID: "p1", Type: artifact.TypeMockup, Content: content})
	require.NoError(t, err)
	_, err = f.artifacts.Create(context.Background(), artifact.Artifact{ID: "prd1", ProjectID: "p1", Type: artifact.TypePRD, Content: "# PRD"})
	require.NoError(t, err)

	resp := f.do(t, http.MethodGet, "/api/artifacts/m1/pages", "u1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Mode  string `json:"mode"`
		Pages []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"pages"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "blocks", out.Mode)
	require.Len(t, out.Pages, 1)
	assert.Equal(t, "Home", out.Pages[0].Title)
	assert.Equal(t, "Landing page.", out.Pages[0].Description)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/artifacts/prd1/pages", "u1", "").StatusCode)
}

func TestRestoreWithoutArchive(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusNotImplemented, f.do(t, http.MethodPost, "/api/projects/p1/artifacts/a1/restore", "u1", "").StatusCode)
}

func TestChatSendStreamsNDJSON(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/projects/p1/messages", "u1", `{"content":"An app for dog walkers","isInitial":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/x-ndjson", resp.Header.Get("Content-Type"))

	var events []chat.Event
	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		var ev chat.Event
		require.NoError(t, json.Unmarshal(sc.Bytes(), &ev))
		events = append(events, ev)
	}
	require.NotEmpty(t, events)
	assert.Equal(t, chat.EventStart, events[0].Type)
	assert.Equal(t, chat.StageQuestions, events[0].Stage)
	last := events[len(events)-1]
	assert.Equal(t, chat.EventDone, last.Type)
	assert.True(t, strings.HasPrefix(last.Content, chat.QuestionsLeadIn))

	var streamed strings.Builder
	for _, ev := range events {
		if ev.Type == chat.EventToken {
			streamed.WriteString(ev.Token)
		}
	}
	assert.Equal(t, last.Content, streamed.String())

	resp = f.do(t, http.MethodGet, "/api/projects/p1/messages", "u1", "")
	hist := decode[struct {
		Messages []chat.Message `json:"messages"`
	}](t, resp)
	require.Len(t, hist.Messages, 2)
	assert.Equal(t, chat.RoleUser, hist.Messages[0].Role)
	assert.Equal(t, chat.StageQuestions, hist.Messages[1].Metadata.Stage)
}

func TestChatSendRejectsForeignProjectBeforeStreaming(t *testing.T) {
	f := newFixture(t)
	resp := f.do(t, http.MethodPost, "/api/projects/p1/messages", "u2", `{"content":"hello"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/projects/p1/messages", "u1", `{"content":"  "}`).StatusCode)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/projects/p1/messages?limit=-1", "u1", "").StatusCode)
}

func TestChatWebsocket(t *testing.T) {
	f := newFixture(t)
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/api/projects/p1/chat/ws?user_id=u1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(chatWSInbound{Type: "ping"}))
	var out chatWSOutbound
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, chat.EventType("pong"), out.Type)

	require.NoError(t, conn.WriteJSON(chatWSInbound{Type: "send", Content: "An app for dog walkers", IsInitial: true}))
	var done chatWSOutbound
	for {
		var ev chatWSOutbound
		require.NoError(t, conn.ReadJSON(&ev))
		if ev.Type == chat.EventDone || ev.Type == chat.EventError {
			done = ev
			break
		}
	}
	assert.Equal(t, chat.EventDone, done.Type)
	assert.Equal(t, chat.StageQuestions, done.Stage)
	assert.NotEmpty(t, done.MessageID)
}

func TestChatWebsocketRejectsForeignProject(t *testing.T) {
	f := newFixture(t)
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/api/projects/p1/chat/ws?user_id=u2"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCredits(t *testing.T) {
	f := newFixture(t)
	resp := f.do(t, http.MethodGet, "/api/credits", "u1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[creditsResponse](t, resp)
	assert.Equal(t, 20, out.Balance)
	assert.Equal(t, 4, out.Costs[artifact.TypeMockup])
}
