package config

import (
	"os"
	"strings"
)

// applyLocalDefaults points an unconfigured local run at the docker-compose
// MinIO. Postgres stays opt-in through DATABASE_URL.
func applyLocalDefaults(cfg *Config) {
	if cfg.Artifact.Endpoint != "" {
		return
	}
	cfg.Artifact = ArtifactConfig{
		Enabled:   strings.TrimSpace(os.Getenv("ARTIFACT_MINIO_ENDPOINT")) != "",
		Endpoint:  firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_MINIO_ENDPOINT")), "minio:9000"),
		Region:    cfg.Artifact.Region,
		AccessKey: firstNonEmpty(cfg.Artifact.AccessKey, "idea2app"),
		SecretKey: firstNonEmpty(cfg.Artifact.SecretKey, "idea2app123"),
		Bucket:    cfg.Artifact.Bucket,
		UseSSL:    false,
	}
}
