package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"idea2app/internal/gateway/middleware"
	"idea2app/internal/project"
)

type createProjectRequest struct {
	Name string `json:"name"`
	Idea string `json:"idea"`
}

func (a *API) HandleCreateProject(w http.ResponseWriter, r *http.Request) {
	var in createProjectRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Idea = strings.TrimSpace(in.Idea)
	if in.Idea == "" {
		writeError(w, invalid("idea is required"))
		return
	}
	if in.Name == "" {
		in.Name = "Untitled"
	}
	p, err := a.Projects.Create(r.Context(), project.Project{
		ID:     uuid.NewString(),
		UserID: middleware.UserFrom(r.Context()),
		Name:   in.Name,
		Idea:   in.Idea,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (a *API) HandleListProjects(w http.ResponseWriter, r *http.Request) {
	list, err := a.Projects.ListByUser(r.Context(), middleware.UserFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []project.Project{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": list})
}

func (a *API) HandleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := a.ownedProject(r, pathValue(r, "projectID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ownedProject hides foreign projects behind ErrNotFound.
func (a *API) ownedProject(r *http.Request, projectID string) (project.Project, error) {
	if projectID == "" {
		return project.Project{}, invalid("project id is required")
	}
	p, err := a.Projects.Get(r.Context(), projectID)
	if err != nil {
		return project.Project{}, err
	}
	if !p.OwnedBy(middleware.UserFrom(r.Context())) {
		return project.Project{}, project.ErrNotFound
	}
	return p, nil
}
