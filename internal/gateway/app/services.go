package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"idea2app/internal/chat"
	"idea2app/internal/gateway/config"
	"idea2app/internal/llm"
	"idea2app/internal/llmclient"
	"idea2app/internal/mockup"
	"idea2app/internal/pipeline"
	"idea2app/internal/research"
	"idea2app/internal/synthesis"
)

// Services is everything a front end (HTTP or CLI) needs.
type Services struct {
	Stores       *Stores
	Catalog      *mockup.Catalog
	Orchestrator *pipeline.Orchestrator
	Chat         *chat.Service

	synth  llm.LLMClient
	search llm.LLMClient
}

func NewServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	stores, err := initStores(cfg)
	if err != nil {
		return nil, err
	}

	synth, err := llm.New(ctx, llm.Settings{
		Provider:   cfg.LLM.Provider,
		Model:      cfg.LLM.Model,
		APIKey:     cfg.LLM.APIKey,
		BaseURL:    cfg.LLM.BaseURL,
		RPS:        cfg.LLM.RPS,
		Burst:      cfg.LLM.Burst,
		MaxRetries: cfg.LLM.MaxRetries,
		RetryDelay: cfg.LLM.RetryDelay,
	})
	if err != nil {
		stores.Close()
		return nil, fmt.Errorf("failed to init llm: %w", err)
	}
	log.Printf("llm: provider=%s model=%s", synth.Name(), cfg.LLM.Model)

	search, err := newSearchClient(cfg, synth)
	if err != nil {
		synth.Close()
		stores.Close()
		return nil, err
	}

	catalog := mockup.DefaultCatalog()
	fetcher := research.NewSourceFetcher(search, newExtractor(cfg), research.WithSearchModel(cfg.Search.Model))
	engine := synthesis.NewEngine(synth, synthesis.WithModel(cfg.LLM.Model), synthesis.WithCatalog(catalog))
	orch := pipeline.New(fetcher, engine, stores.Artifacts, stores.Projects, stores.Credits,
		pipeline.WithTimeout(cfg.Pipeline.Timeout),
		pipeline.WithCatalog(catalog),
	)
	chatSvc := chat.NewService(stores.Messages, stores.Projects, synth, chat.WithModel(cfg.LLM.Model))

	return &Services{
		Stores:       stores,
		Catalog:      catalog,
		Orchestrator: orch,
		Chat:         chatSvc,
		synth:        synth,
		search:       search,
	}, nil
}

// newSearchClient reaches the reasoning-search provider through its
// OpenAI-compatible API. Without a key, offline runs reuse the fake
// synthesis client and real runs degrade to idea-only analysis.
func newSearchClient(cfg *config.Config, synth llm.LLMClient) (llm.LLMClient, error) {
	if !cfg.Search.Enabled() {
		if p := cfg.LLM.Provider; p == "" || p == "fake" {
			return synth, nil
		}
		log.Printf("research: search disabled (no SEARCH_API_KEY); competitive analysis will be idea-only")
		return nil, nil
	}
	inner, err := llmclient.NewOpenAIClient(llmclient.OpenAISettings{
		Provider: "Perplexity",
		Model:    cfg.Search.Model,
		APIKey:   cfg.Search.APIKey,
		BaseURL:  cfg.Search.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init search client: %w", err)
	}
	return llm.Wrap(inner,
		llm.WithHooks(),
		llm.WithLogging(nil),
		llm.Retry(cfg.LLM.MaxRetries, cfg.LLM.RetryDelay),
	), nil
}

func newExtractor(cfg *config.Config) research.PageExtractionClient {
	if cfg.Extract.Extractor == "none" {
		log.Printf("research: extraction disabled")
		return nil
	}
	useTavily := cfg.Extract.Extractor == "tavily" || (cfg.Extract.Extractor == "" && cfg.Extract.TavilyAPIKey != "")
	if useTavily {
		ex, err := research.NewTavilyExtractor(cfg.Extract.TavilyAPIKey, cfg.Extract.TavilyURL, nil)
		if err == nil {
			log.Printf("research: extractor=tavily")
			return ex
		}
		log.Printf("research: tavily unavailable (%v); using direct extractor", err)
	}
	log.Printf("research: extractor=direct")
	return research.NewDirectExtractor(nil)
}

// Close releases the LLM clients and the database handle.
func (s *Services) Close() error {
	var errs []error
	if s.search != nil && s.search != s.synth {
		errs = append(errs, s.search.Close())
	}
	if s.synth != nil {
		errs = append(errs, s.synth.Close())
	}
	errs = append(errs, s.Stores.Close())
	return errors.Join(errs...)
}
