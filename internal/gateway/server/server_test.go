package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"idea2app/internal/gateway/handler"
	artifactrepo "idea2app/internal/gateway/repository/artifact"
	creditrepo "idea2app/internal/gateway/repository/credit"
	projectrepo "idea2app/internal/gateway/repository/project"
)

func TestMuxGuardsAPIButNotHealth(t *testing.T) {
	api := handler.New(handler.Deps{
		Projects:  projectrepo.NewMemoryStore(),
		Artifacts: artifactrepo.NewMemoryStore(),
		Credits:   creditrepo.NewMemoryLedger(1),
	})
	srv := httptest.NewServer(New(":0", NewMux(api)).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/api/projects")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	resp.Body.Close()
}
