package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idea2app/internal/artifact"
	"idea2app/internal/gateway/config"
	"idea2app/internal/pipeline"
	"idea2app/internal/project"
)

func offlineConfig() *config.Config {
	return &config.Config{
		ProjectStorePath: "",
		LLM:              config.LLMConfig{Provider: "fake"},
		Extract:          config.ExtractConfig{Extractor: "none"},
		Pipeline:         config.PipelineConfig{Timeout: pipeline.DefaultTimeout, InitialCredits: 20},
	}
}

func TestOfflineServicesRunThePipeline(t *testing.T) {
	ctx := context.Background()
	svc, err := NewServices(ctx, offlineConfig())
	require.NoError(t, err)
	defer svc.Close()
	assert.False(t, svc.Stores.Archived)

	_, err = svc.Stores.Projects.Create(ctx, project.Project{ID: "p1", UserID: "u1", Name: "WalkBuddy", Idea: "dog walkers"})
	require.NoError(t, err)

	_, err = svc.Orchestrator.Run(ctx, pipeline.Request{UserID: "u1", ProjectID: "p1", Type: artifact.TypePRD})
	var prereq *pipeline.PrerequisiteError
	require.ErrorAs(t, err, &prereq)

	for _, typ := range []artifact.Type{artifact.TypeCompetitiveAnalysis, artifact.TypePRD, artifact.TypeMockup} {
		a, err := svc.Orchestrator.Run(ctx, pipeline.Request{UserID: "u1", ProjectID: "p1", Type: typ})
		require.NoError(t, err, typ)
		assert.NotEmpty(t, a.Content)
	}

	balance, err := svc.Stores.Credits.Balance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 20-5-3-4, balance)

	mockups, err := svc.Stores.Artifacts.ListByProject(ctx, "p1", artifact.TypeMockup)
	require.NoError(t, err)
	require.Len(t, mockups, 1)
	assert.Equal(t, "blocks", mockups[0].Metadata.Source)
}

func TestIncompleteS3ConfigSkipsArchive(t *testing.T) {
	cfg := offlineConfig()
	cfg.Artifact = config.ArtifactConfig{Enabled: true, Endpoint: "minio:9000"}
	stores, err := initStores(cfg)
	require.NoError(t, err)
	assert.False(t, stores.Archived)
}
