package handler

import (
	"net/http"

	"idea2app/internal/artifact"
	"idea2app/internal/gateway/middleware"
)

type creditsResponse struct {
	Balance int                   `json:"balance"`
	Costs   map[artifact.Type]int `json:"costs"`
}

func (a *API) HandleCredits(w http.ResponseWriter, r *http.Request) {
	balance, err := a.Credits.Balance(r.Context(), middleware.UserFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	costs := make(map[artifact.Type]int, len(artifact.Types))
	for _, t := range artifact.Types {
		costs[t] = a.Generator.Cost(t)
	}
	writeJSON(w, http.StatusOK, creditsResponse{Balance: balance, Costs: costs})
}

func (a *API) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(a.Catalog.Prompt()))
}
