package server

import (
	"net/http"

	"idea2app/internal/gateway/handler"
	"idea2app/internal/gateway/middleware"
)

// NewMux mounts the API behind RequireUser and CORS. allowedOrigins empty
// accepts any origin.
func NewMux(api *handler.API, allowedOrigins ...string) http.Handler {
	mux := http.NewServeMux()
	api.Register(mux)

	root := http.NewServeMux()
	root.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	root.Handle("/api/", middleware.RequireUser(mux))

	return middleware.CORS(allowedOrigins...)(root)
}
