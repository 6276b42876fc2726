package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"idea2app/internal/llm"
	"idea2app/internal/project"
)

// HistoryLimit caps how many prior messages are sent to the model. The
// classifier always sees the whole conversation.
const HistoryLimit = 50

// Store persists chat messages. ListByProject returns messages oldest
// first; a zero before means "up to now" and limit <= 0 means no limit.
type Store interface {
	Append(ctx context.Context, msg Message) (Message, error)
	ListByProject(ctx context.Context, projectID string, before time.Time, limit int) ([]Message, error)
}

// ProjectStore is the slice of project persistence the chat needs.
type ProjectStore interface {
	Get(ctx context.Context, projectID string) (project.Project, error)
	UpdateDescription(ctx context.Context, projectID, description string) error
}

// Turn is one incoming user message.
type Turn struct {
	ProjectID string
	UserID    string
	Text      string
	// IsInitial marks the first turn, seeded from the project's idea.
	IsInitial bool
}

// Service answers chat turns.
type Service struct {
	messages Store
	projects ProjectStore
	client   llm.LLMClient
	model    string
	now      func() time.Time
}

type ServiceOption func(*Service)

func WithModel(model string) ServiceOption { return func(s *Service) { s.model = model } }

// WithClock overrides time.Now; used by tests.
func WithClock(now func() time.Time) ServiceOption { return func(s *Service) { s.now = now } }

func NewService(messages Store, projects ProjectStore, client llm.LLMClient, opts ...ServiceOption) *Service {
	s := &Service{messages: messages, projects: projects, client: client, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// History returns the stored conversation for a project the user owns.
func (s *Service) History(ctx context.Context, projectID, userID string, before time.Time, limit int) ([]Message, error) {
	if _, err := s.ownedProject(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return s.messages.ListByProject(ctx, projectID, before, limit)
}

// Send persists the user's message, classifies the turn, streams the
// model's reply to sink and persists it. When the stage is summary the
// reply becomes the project's description. The saved assistant message is
// returned.
func (s *Service) Send(ctx context.Context, turn Turn, sink Sink) (Message, error) {
	text := strings.TrimSpace(turn.Text)
	if text == "" {
		return Message{}, fmt.Errorf("chat: empty message")
	}
	proj, err := s.ownedProject(ctx, turn.ProjectID, turn.UserID)
	if err != nil {
		return Message{}, err
	}

	userMsg, err := s.messages.Append(ctx, Message{
		ID:        uuid.NewString(),
		ProjectID: proj.ID,
		Role:      RoleUser,
		Content:   text,
		CreatedAt: s.now(),
	})
	if err != nil {
		return Message{}, fmt.Errorf("chat: save user message: %w", err)
	}

	history, err := s.messages.ListByProject(ctx, proj.ID, time.Time{}, 0)
	if err != nil {
		return Message{}, fmt.Errorf("chat: load history: %w", err)
	}
	prior := make([]Message, 0, len(history))
	for _, m := range history {
		if m.ID != userMsg.ID {
			prior = append(prior, m)
		}
	}
	cls := Classify(prior, turn.IsInitial, text)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var sinkErr error
	emit := func(ev Event) {
		if sinkErr != nil || sink == nil {
			return
		}
		if sinkErr = sink(ev); sinkErr != nil {
			cancel()
		}
	}

	emit(Event{Type: EventStart, Stage: cls.Stage})
	out, err := s.client.Stream(llm.WithPhase(ctx, "chat:"+string(cls.Stage)), s.request(proj, cls, prior, text),
		func(chunk string) { emit(Event{Type: EventToken, Token: chunk}) })
	if sinkErr != nil {
		return Message{}, fmt.Errorf("chat: client went away: %w", sinkErr)
	}
	if err == nil && strings.TrimSpace(out.Content) == "" {
		err = errors.New("empty reply")
	}
	if err != nil {
		emit(Event{Type: EventError, Error: err.Error()})
		return Message{}, fmt.Errorf("chat: %s reply: %w", cls.Stage, err)
	}

	reply, err := s.messages.Append(ctx, Message{
		ID:        uuid.NewString(),
		ProjectID: proj.ID,
		Role:      RoleAssistant,
		Content:   out.Content,
		Metadata:  Metadata{Model: out.Model, Stage: cls.Stage},
		CreatedAt: s.now(),
	})
	if err != nil {
		emit(Event{Type: EventError, Error: "failed to save reply"})
		return Message{}, fmt.Errorf("chat: save assistant message: %w", err)
	}
	if cls.Stage == StageSummary {
		if err := s.projects.UpdateDescription(ctx, proj.ID, reply.Content); err != nil {
			log.Printf("chat: update description for project %s: %v", proj.ID, err)
		}
	}
	emit(Event{Type: EventDone, Content: reply.Content, Stage: cls.Stage, MessageID: reply.ID})
	return reply, nil
}

func (s *Service) ownedProject(ctx context.Context, projectID, userID string) (project.Project, error) {
	proj, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return project.Project{}, err
	}
	if !proj.OwnedBy(userID) {
		return project.Project{}, project.ErrNotFound
	}
	return proj, nil
}

func (s *Service) request(proj project.Project, cls Classification, prior []Message, text string) llm.Request {
	var sys strings.Builder
	sys.WriteString(cls.SystemPrompt)
	fmt.Fprintf(&sys, "\n\nProduct name: %s\nOriginal idea: %s\n", proj.Name, proj.Idea)
	if cls.Stage == StagePostSummary && proj.Description != "" {
		fmt.Fprintf(&sys, "\nCurrent idea summary:\n%s\n", proj.Description)
	}

	if len(prior) > HistoryLimit {
		prior = prior[len(prior)-HistoryLimit:]
	}
	msgs := make([]llm.Message, 0, len(prior)+1)
	for _, m := range prior {
		if m.Role != RoleUser && m.Role != RoleAssistant {
			continue
		}
		msgs = append(msgs, llm.Message{Role: string(m.Role), Content: m.Content})
	}
	msgs = append(msgs, llm.Message{Role: string(RoleUser), Content: text})
	return llm.Request{System: sys.String(), Messages: msgs, Model: s.model}
}
