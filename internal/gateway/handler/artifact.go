package handler

import (
	"errors"
	"net/http"
	"strings"

	"idea2app/internal/artifact"
	artifactrepo "idea2app/internal/gateway/repository/artifact"
	"idea2app/internal/gateway/middleware"
	"idea2app/internal/mockup"
	"idea2app/internal/pipeline"
	"idea2app/internal/project"
)

type generateResponse struct {
	Artifact    artifact.Artifact `json:"artifact"`
	CreditsUsed int               `json:"creditsUsed"`
}

func (a *API) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	typ, err := artifact.ParseType(pathValue(r, "type"))
	if err != nil {
		writeError(w, invalid(err.Error()))
		return
	}
	out, err := a.Generator.Run(r.Context(), pipeline.Request{
		UserID:    middleware.UserFrom(r.Context()),
		ProjectID: pathValue(r, "projectID"),
		Type:      typ,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, generateResponse{Artifact: out, CreditsUsed: a.Generator.Cost(typ)})
}

// HandleListArtifacts returns versions newest first; ?type= narrows to one type.
func (a *API) HandleListArtifacts(w http.ResponseWriter, r *http.Request) {
	p, err := a.ownedProject(r, pathValue(r, "projectID"))
	if err != nil {
		writeError(w, err)
		return
	}
	var typ artifact.Type
	if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
		if typ, err = artifact.ParseType(raw); err != nil {
			writeError(w, invalid(err.Error()))
			return
		}
	}
	list, err := a.Artifacts.ListByProject(r.Context(), p.ID, typ)
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []artifact.Artifact{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"artifacts": list})
}

func (a *API) HandleGetArtifact(w http.ResponseWriter, r *http.Request) {
	art, err := a.ownedArtifact(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, art)
}

type updateArtifactRequest struct {
	Content *string `json:"content"`
}

func (a *API) HandleUpdateArtifact(w http.ResponseWriter, r *http.Request) {
	var in updateArtifactRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	if in.Content == nil {
		writeError(w, invalid("content is required"))
		return
	}
	art, err := a.ownedArtifact(r)
	if err != nil {
		writeError(w, err)
		return
	}
	updated, err := a.Artifacts.Update(r.Context(), art.ID, *in.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// HandleMockupPages reconstructs the renderable pages of a mockup artifact.
func (a *API) HandleMockupPages(w http.ResponseWriter, r *http.Request) {
	art, err := a.ownedArtifact(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if art.Type != artifact.TypeMockup {
		writeError(w, invalid("artifact is not a mockup"))
		return
	}
	res := mockup.Parse(art.Content, a.Catalog)
	if res.Pages == nil {
		res.Pages = []mockup.Page{}
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) HandleRestoreArtifact(w http.ResponseWriter, r *http.Request) {
	if a.Restorer == nil {
		writeJSON(w, http.StatusNotImplemented, errorBody{Error: "artifact archive is not configured"})
		return
	}
	p, err := a.ownedProject(r, pathValue(r, "projectID"))
	if err != nil {
		writeError(w, err)
		return
	}
	art, err := a.Restorer.Restore(r.Context(), p.ID, pathValue(r, "artifactID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, art)
}

func (a *API) ownedArtifact(r *http.Request) (artifact.Artifact, error) {
	id := pathValue(r, "artifactID")
	if id == "" {
		return artifact.Artifact{}, invalid("artifact id is required")
	}
	art, err := a.Artifacts.Get(r.Context(), id)
	if err != nil {
		return artifact.Artifact{}, err
	}
	if _, err := a.ownedProject(r, art.ProjectID); err != nil {
		if errors.Is(err, project.ErrNotFound) {
			return artifact.Artifact{}, artifactrepo.ErrNotFound
		}
		return artifact.Artifact{}, err
	}
	return art, nil
}
