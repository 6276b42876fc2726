package main

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"idea2app/internal/artifact"
	"idea2app/internal/gateway/app"
	"idea2app/internal/gateway/config"
	"idea2app/internal/llm"
	"idea2app/internal/pipeline"
	"idea2app/internal/project"
	"idea2app/internal/safeio"
)

const cliUser = "cli"

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run pipeline stages for an idea and write each document to disk",
	Long: `Creates a throwaway project, runs competitive analysis, PRD, MVP plan,
tech spec and mockup in order (stopping after --through) and writes
<out>/<type>.md for each stage.`,
	RunE: runGenerate,
}

var (
	generateIdea    string
	generateName    string
	generateThrough string
	generateOut     string
	generateCredits int
	generateTrace   bool
)

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVar(&generateIdea, "idea", "", "Business idea text (required)")
	generateCmd.Flags().StringVar(&generateName, "name", "Untitled", "Product name")
	generateCmd.Flags().StringVar(&generateThrough, "through", string(artifact.TypeMockup), "Last stage to run")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "out", "Output directory")
	generateCmd.Flags().IntVar(&generateCredits, "credits", 100, "Credits granted to the run")
	generateCmd.Flags().BoolVar(&generateTrace, "trace", false, "Log every model call to stderr")
	_ = generateCmd.MarkFlagRequired("idea")
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	through, err := artifact.ParseType(generateThrough)
	if err != nil {
		return err
	}
	stages := stagesThrough(through)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	if generateTrace {
		ctx = llm.WithHook(ctx, &traceHook{w: cmd.ErrOrStderr()})
	}

	cfg := config.FromEnv()
	cfg.DatabaseURL = ""
	cfg.ProjectStorePath = ""
	cfg.Pipeline.InitialCredits = generateCredits

	svc, err := app.NewServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	p, err := svc.Stores.Projects.Create(ctx, project.Project{
		ID:     uuid.NewString(),
		UserID: cliUser,
		Name:   strings.TrimSpace(generateName),
		Idea:   strings.TrimSpace(generateIdea),
	})
	if err != nil {
		return err
	}
	out, err := safeio.Open(generateOut)
	if err != nil {
		return err
	}

	for _, typ := range stages {
		a, err := runStage(ctx, svc.Orchestrator, p.ID, typ)
		if err != nil {
			return err
		}
		path, err := out.WriteFile(string(typ)+".md", []byte(a.Content))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-22s %s (source=%s)\n", typ, path, a.Metadata.Source)
	}
	return nil
}

func runStage(ctx context.Context, o *pipeline.Orchestrator, projectID string, typ artifact.Type) (artifact.Artifact, error) {
	return o.Run(ctx, pipeline.Request{UserID: cliUser, ProjectID: projectID, Type: typ})
}

// stagesThrough returns the pipeline stages up to and including last.
func stagesThrough(last artifact.Type) []artifact.Type {
	for i, t := range artifact.Types {
		if t == last {
			return artifact.Types[:i+1]
		}
	}
	return nil
}

// traceHook prints one line per model call.
type traceHook struct {
	w     io.Writer
	mu    sync.Mutex
	start map[string]time.Time
}

func (h *traceHook) Before(_ context.Context, phase string, req llm.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.start == nil {
		h.start = make(map[string]time.Time)
	}
	h.start[phase] = time.Now()
	n := len(req.System)
	for _, m := range req.Messages {
		n += len(m.Content)
	}
	fmt.Fprintf(h.w, "-> %s: %d prompt bytes\n", phase, n)
}

func (h *traceHook) After(_ context.Context, phase string, out llm.Completion, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	took := time.Since(h.start[phase]).Round(time.Millisecond)
	if err != nil {
		fmt.Fprintf(h.w, "<- %s: error after %s: %v\n", phase, took, err)
		return
	}
	fmt.Fprintf(h.w, "<- %s: %d bytes in %s (model=%s)\n", phase, len(out.Content), took, out.Model)
}
