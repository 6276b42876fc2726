package llm

import (
	"idea2app/internal/llmclient"
)

// LLMClient is re-exported so callers only import this package for the
// decorated client and its middleware.
type LLMClient = llmclient.LLMClient

type (
	Request    = llmclient.Request
	Completion = llmclient.Completion
	Message    = llmclient.Message
)
