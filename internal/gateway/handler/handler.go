package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"idea2app/internal/artifact"
	"idea2app/internal/chat"
	artifactrepo "idea2app/internal/gateway/repository/artifact"
	creditrepo "idea2app/internal/gateway/repository/credit"
	projectrepo "idea2app/internal/gateway/repository/project"
	"idea2app/internal/llmclient"
	"idea2app/internal/mockup"
	"idea2app/internal/pipeline"
	"idea2app/internal/project"
	"idea2app/internal/synthesis"
)

// Generator runs one credit-metered generation.
type Generator interface {
	Run(ctx context.Context, req pipeline.Request) (artifact.Artifact, error)
	Cost(typ artifact.Type) int
}

// Conversation is the chat turn service.
type Conversation interface {
	Send(ctx context.Context, turn chat.Turn, sink chat.Sink) (chat.Message, error)
	History(ctx context.Context, projectID, userID string, before time.Time, limit int) ([]chat.Message, error)
}

// Restorer copies an archived artifact version back into the primary store.
type Restorer interface {
	Restore(ctx context.Context, projectID, id string) (artifact.Artifact, error)
}

type Deps struct {
	Projects  projectrepo.Store
	Artifacts artifactrepo.Store
	Credits   creditrepo.Ledger
	Generator Generator
	Chat      Conversation
	Catalog   *mockup.Catalog
	// Restorer is nil when no archive is configured.
	Restorer Restorer
}

type API struct {
	Deps
}

func New(d Deps) *API {
	if d.Catalog == nil {
		d.Catalog = mockup.DefaultCatalog()
	}
	return &API{Deps: d}
}

// Register mounts every route on mux. Callers wrap mux with RequireUser.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/projects", a.HandleCreateProject)
	mux.HandleFunc("GET /api/projects", a.HandleListProjects)
	mux.HandleFunc("GET /api/projects/{projectID}", a.HandleGetProject)

	mux.HandleFunc("POST /api/projects/{projectID}/artifacts/{type}", a.HandleGenerate)
	mux.HandleFunc("GET /api/projects/{projectID}/artifacts", a.HandleListArtifacts)
	mux.HandleFunc("GET /api/artifacts/{artifactID}", a.HandleGetArtifact)
	mux.HandleFunc("PATCH /api/artifacts/{artifactID}", a.HandleUpdateArtifact)
	mux.HandleFunc("GET /api/artifacts/{artifactID}/pages", a.HandleMockupPages)
	mux.HandleFunc("POST /api/projects/{projectID}/artifacts/{artifactID}/restore", a.HandleRestoreArtifact)

	mux.HandleFunc("GET /api/projects/{projectID}/messages", a.HandleChatHistory)
	mux.HandleFunc("POST /api/projects/{projectID}/messages", a.HandleChatSend)
	mux.HandleFunc("GET /api/projects/{projectID}/chat/ws", a.HandleChatWS)

	mux.HandleFunc("GET /api/credits", a.HandleCredits)
	mux.HandleFunc("GET /api/catalog", a.HandleCatalog)
}

// badRequest marks input validation failures.
type badRequest struct{ msg string }

func (e *badRequest) Error() string { return e.msg }

func invalid(msg string) error { return &badRequest{msg: msg} }

func statusFor(err error) int {
	var (
		bad      *badRequest
		prereq   *pipeline.PrerequisiteError
		modelErr *llmclient.ModelError
	)
	switch {
	case errors.As(err, &bad):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrInsufficientCredits):
		return http.StatusPaymentRequired
	case errors.As(err, &prereq), errors.Is(err, pipeline.ErrGenerationInProgress):
		return http.StatusConflict
	case errors.Is(err, project.ErrNotFound), errors.Is(err, artifactrepo.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &modelErr), errors.Is(err, synthesis.ErrEmptySynthesis):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Error string `json:"error"`
	// Missing names the prerequisite artifact type on 409.
	Missing artifact.Type `json:"missing,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	body := errorBody{Error: err.Error()}
	var prereq *pipeline.PrerequisiteError
	if errors.As(err, &prereq) {
		body.Missing = prereq.Missing
	}
	if status == http.StatusInternalServerError {
		log.Printf("handler: %v", err)
		body.Error = "internal error"
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("handler: encode response: %v", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return invalid("invalid json body")
	}
	return nil
}

func pathValue(r *http.Request, name string) string {
	return strings.TrimSpace(r.PathValue(name))
}
