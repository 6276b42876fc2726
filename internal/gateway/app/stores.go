package app

import (
	"database/sql"
	"fmt"
	"log"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	artifactcache "idea2app/internal/cache/artifact"
	projectcache "idea2app/internal/cache/project"
	"idea2app/internal/gateway/config"
	artifactrepo "idea2app/internal/gateway/repository/artifact"
	chatrepo "idea2app/internal/gateway/repository/chat"
	creditrepo "idea2app/internal/gateway/repository/credit"
	projectrepo "idea2app/internal/gateway/repository/project"
)

type Stores struct {
	Projects  projectrepo.Store
	Artifacts *artifactcache.CachedStore
	Messages  chatrepo.Store
	Credits   creditrepo.Ledger
	// Archived reports whether artifact versions are copied to S3.
	Archived bool

	db *sql.DB
}

func (s *Stores) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func initStores(cfg *config.Config) (*Stores, error) {
	if dsn := strings.TrimSpace(cfg.DatabaseURL); dsn != "" {
		return initPostgresStores(dsn, cfg)
	}
	return initInMemoryStores(cfg)
}

func initPostgresStores(dsn string, cfg *config.Config) (*Stores, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	log.Printf("stores: postgres")

	artifacts, archived, err := chooseArtifactStore(cfg, artifactrepo.NewPostgresStore(db), "postgres")
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Stores{
		Projects:  projectcache.NewCachedStore(projectrepo.NewPostgresStore(db), projectcache.DefaultCacheConfig()),
		Artifacts: artifacts,
		Messages:  chatrepo.NewPostgresStore(db),
		Credits:   creditrepo.NewPostgresLedger(db, cfg.Pipeline.InitialCredits),
		Archived:  archived,
		db:        db,
	}, nil
}

func initInMemoryStores(cfg *config.Config) (*Stores, error) {
	log.Printf("stores: in-memory (projects file=%q)", cfg.ProjectStorePath)
	artifacts, archived, err := chooseArtifactStore(cfg, artifactrepo.NewMemoryStore(), "in-memory")
	if err != nil {
		return nil, err
	}
	return &Stores{
		Projects:  projectcache.NewCachedStore(projectrepo.NewFileStore(cfg.ProjectStorePath), projectcache.DefaultCacheConfig()),
		Artifacts: artifacts,
		Messages:  chatrepo.NewMemoryStore(),
		Credits:   creditrepo.NewMemoryLedger(cfg.Pipeline.InitialCredits),
		Archived:  archived,
	}, nil
}

// chooseArtifactStore puts the S3 archive behind primary when configured
// and fronts the result with the read cache.
func chooseArtifactStore(cfg *config.Config, primary artifactrepo.Store, primaryLabel string) (*artifactcache.CachedStore, bool, error) {
	if primary == nil {
		return nil, false, fmt.Errorf("artifact primary store is nil")
	}
	origin := primary
	archived := false
	if cfg.Artifact.CanUseS3() {
		s3Cfg := artifactrepo.S3Config{
			Endpoint:  cfg.Artifact.Endpoint,
			Region:    cfg.Artifact.Region,
			AccessKey: cfg.Artifact.AccessKey,
			SecretKey: cfg.Artifact.SecretKey,
			Bucket:    cfg.Artifact.Bucket,
			UseSSL:    cfg.Artifact.UseSSL,
		}
		s3Store, err := artifactrepo.NewS3Store(s3Cfg)
		if err != nil {
			return nil, false, fmt.Errorf("failed to initialize artifact s3 archive: %w", err)
		}
		log.Printf("artifact store: %s with s3 archive bucket=%s endpoint=%s", primaryLabel, s3Cfg.Bucket, s3Cfg.Endpoint)
		origin = artifactrepo.NewArchivedStore(primary, s3Store)
		archived = true
	} else if cfg.Artifact.Enabled {
		log.Printf("artifact store: %s without archive (s3 config incomplete)", primaryLabel)
	}
	return artifactcache.NewCachedStore(origin, artifactcache.DefaultCacheConfig()), archived, nil
}
