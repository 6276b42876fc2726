package chat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idea2app/internal/llm"
	"idea2app/internal/project"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func msg(id string, role Role, content string, at time.Duration) Message {
	return Message{ID: id, Role: role, Content: content, CreatedAt: t0.Add(at)}
}

func summarized() []Message {
	return []Message{
		msg("1", RoleUser, "dog walking app", 0),
		msg("2", RoleAssistant, QuestionsLeadIn+"\n1. Who?", time.Second),
		msg("3", RoleUser, "busy city workers", 2*time.Second),
		{ID: "4", Role: RoleAssistant, Content: "# Idea Summary", Metadata: Metadata{Stage: StageSummary}, CreatedAt: t0.Add(3 * time.Second)},
	}
}

func TestClassifyInitialAlwaysQuestions(t *testing.T) {
	for _, h := range [][]Message{nil, summarized()} {
		c := Classify(h, true, "anything at all")
		assert.Equal(t, StageQuestions, c.Stage)
		assert.Contains(t, c.SystemPrompt, QuestionsLeadIn)
	}
}

func TestClassifyGatheringThenSummary(t *testing.T) {
	assert.Equal(t, StageGathering, Classify(nil, false, "hi").Stage)
	assert.Equal(t, StageGathering, Classify(summarized()[:1], false, "hi").Stage)

	c := Classify(summarized()[:2], false, "ok")
	assert.Equal(t, StageSummary, c.Stage)
	assert.Contains(t, c.SystemPrompt, "## 8. Success Metrics")
}

func TestClassifyRevisionAfterSummary(t *testing.T) {
	c := Classify(summarized(), false, "actually let's change the target market to enterprises")
	assert.Equal(t, StageSummary, c.Stage)
}

func TestClassifyShortNeutralAfterSummary(t *testing.T) {
	assert.Equal(t, StagePostSummary, Classify(summarized(), false, "thanks!").Stage)
}

func TestIsRevisionWholeWord(t *testing.T) {
	assert.True(t, IsRevision("What about PRICING?"))
	assert.False(t, IsRevision("exchange rates"))
	assert.False(t, IsRevision("targeted"))
	assert.True(t, IsRevision("this message is comfortably longer than fifty characters in total"))
}

func TestDedupeByIDKeepsFirst(t *testing.T) {
	in := []Message{
		msg("1", RoleUser, "first", 0),
		msg("1", RoleUser, "second copy", time.Second),
		msg("2", RoleAssistant, "reply", 2*time.Second),
	}
	out := DedupeByID(in)
	require.Len(t, out, 2)
	assert.Equal(t, "first", out[0].Content)
	assert.Equal(t, "2", out[1].ID)
}

func TestDedupeFuzzyWindow(t *testing.T) {
	in := []Message{
		msg("a", RoleUser, "hello", 0),
		msg("b", RoleUser, " hello ", 4*time.Second),
		msg("c", RoleAssistant, "hello", 4*time.Second),
		msg("d", RoleUser, "hello", 10*time.Second),
	}
	out := DedupeFuzzy(in)
	var ids []string
	for _, m := range out {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"a", "c", "d"}, ids)
}

func TestMergePrefersServerAndSorts(t *testing.T) {
	server := []Message{msg("s1", RoleUser, "hi", 0), msg("s2", RoleAssistant, "yo", 2*time.Second)}
	optimistic := []Message{msg("tmp-1", RoleUser, "hi", time.Second), msg("tmp-2", RoleUser, "next", 3*time.Second)}
	out := Merge(server, optimistic)
	var ids []string
	for _, m := range out {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"s1", "s2", "tmp-2"}, ids)
}

func TestConsumeAccumulatesTokens(t *testing.T) {
	ch := make(chan Event, 8)
	ch <- Event{Type: EventStart, Stage: StageGathering}
	ch <- Event{Type: EventToken, Token: "Hel"}
	ch <- Event{Type: EventToken, Token: "lo"}
	ch <- Event{Type: EventDone, MessageID: "m1"}
	var updates []string
	reply, err := Consume(context.Background(), ch, func(s string) { updates = append(updates, s) })
	require.NoError(t, err)
	assert.Equal(t, Reply{Content: "Hello", Stage: StageGathering, MessageID: "m1"}, reply)
	assert.Equal(t, []string{"Hel", "Hello"}, updates)
}

func TestConsumeErrorAndClose(t *testing.T) {
	ch := make(chan Event, 2)
	ch <- Event{Type: EventToken, Token: "part"}
	ch <- Event{Type: EventError, Error: "model down"}
	reply, err := Consume(context.Background(), ch, nil)
	assert.ErrorIs(t, err, ErrStreamFailed)
	assert.Contains(t, err.Error(), "model down")
	assert.Equal(t, "part", reply.Content)

	closed := make(chan Event)
	close(closed)
	_, err = Consume(context.Background(), closed, nil)
	assert.Error(t, err)
}

// --- service ---

type memStore struct {
	mu   sync.Mutex
	msgs []Message
	err  error
}

func (s *memStore) Append(_ context.Context, m Message) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return Message{}, s.err
	}
	s.msgs = append(s.msgs, m)
	return m, nil
}

func (s *memStore) ListByProject(_ context.Context, projectID string, _ time.Time, limit int) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Message
	for _, m := range s.msgs {
		if m.ProjectID == projectID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type fakeProjects struct {
	p       project.Project
	updated string
}

func (f *fakeProjects) Get(_ context.Context, id string) (project.Project, error) {
	if id != f.p.ID {
		return project.Project{}, project.ErrNotFound
	}
	return f.p, nil
}

func (f *fakeProjects) UpdateDescription(_ context.Context, _ string, d string) error {
	f.updated = d
	f.p.Description = d
	return nil
}

type scriptedClient struct {
	chunks []string
	err    error
	last   llm.Request
	phase  string
}

func (c *scriptedClient) Name() string { return "scripted" }
func (c *scriptedClient) Close() error { return nil }
func (c *scriptedClient) Complete(ctx context.Context, req llm.Request) (llm.Completion, error) {
	return c.Stream(ctx, req, nil)
}
func (c *scriptedClient) Stream(ctx context.Context, req llm.Request, onChunk func(string)) (llm.Completion, error) {
	c.last = req
	c.phase = llm.PhaseFrom(ctx)
	if c.err != nil {
		return llm.Completion{}, c.err
	}
	full := ""
	for _, ch := range c.chunks {
		if err := ctx.Err(); err != nil {
			return llm.Completion{}, err
		}
		if onChunk != nil {
			onChunk(ch)
		}
		full += ch
	}
	return llm.Completion{Content: full, Model: "m"}, nil
}

func newTestService(store *memStore, client *scriptedClient) (*Service, *fakeProjects) {
	projects := &fakeProjects{p: project.Project{ID: "p1", UserID: "u1", Name: "WalkBuddy", Idea: "dog walkers"}}
	clock := t0
	svc := NewService(store, projects, client, WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))
	return svc, projects
}

func collect(events *[]Event) Sink {
	return func(ev Event) error {
		*events = append(*events, ev)
		return nil
	}
}

func TestSendInitialTurnAsksQuestions(t *testing.T) {
	store := &memStore{}
	client := &scriptedClient{chunks: []string{QuestionsLeadIn, "\n1. Who?"}}
	svc, projects := newTestService(store, client)

	var events []Event
	reply, err := svc.Send(context.Background(), Turn{ProjectID: "p1", UserID: "u1", Text: "dog walkers", IsInitial: true}, collect(&events))
	require.NoError(t, err)

	assert.Equal(t, StageQuestions, reply.Metadata.Stage)
	assert.Equal(t, "chat:questions", client.phase)
	require.Len(t, store.msgs, 2)
	assert.Equal(t, RoleUser, store.msgs[0].Role)
	assert.Equal(t, RoleAssistant, store.msgs[1].Role)
	assert.Empty(t, projects.updated)

	require.Len(t, events, 4)
	assert.Equal(t, EventStart, events[0].Type)
	assert.Equal(t, EventToken, events[1].Type)
	assert.Equal(t, EventDone, events[3].Type)
	assert.Equal(t, reply.ID, events[3].MessageID)
}

func TestSendSummaryOverwritesDescription(t *testing.T) {
	store := &memStore{msgs: []Message{
		{ID: "1", ProjectID: "p1", Role: RoleUser, Content: "dog walkers", CreatedAt: t0.Add(-time.Hour)},
		{ID: "2", ProjectID: "p1", Role: RoleAssistant, Content: QuestionsLeadIn, Metadata: Metadata{Stage: StageQuestions}, CreatedAt: t0.Add(-time.Minute)},
	}}
	client := &scriptedClient{chunks: []string{"# Idea Summary\n", "Walkers on demand."}}
	svc, projects := newTestService(store, client)

	reply, err := svc.Send(context.Background(), Turn{ProjectID: "p1", UserID: "u1", Text: "city workers"}, nil)
	require.NoError(t, err)
	assert.Equal(t, StageSummary, reply.Metadata.Stage)
	assert.Equal(t, "# Idea Summary\nWalkers on demand.", projects.updated)

	require.Len(t, client.last.Messages, 3)
	assert.Equal(t, "city workers", client.last.Messages[2].Content)
}

func TestSendExcludesCurrentTurnFromCount(t *testing.T) {
	store := &memStore{msgs: []Message{
		{ID: "1", ProjectID: "p1", Role: RoleUser, Content: "dog walkers", CreatedAt: t0.Add(-time.Hour)},
	}}
	client := &scriptedClient{chunks: []string{"Tell me more."}}
	svc, projects := newTestService(store, client)

	reply, err := svc.Send(context.Background(), Turn{ProjectID: "p1", UserID: "u1", Text: "more detail"}, nil)
	require.NoError(t, err)
	assert.Equal(t, StageGathering, reply.Metadata.Stage)
	assert.Empty(t, projects.updated)
}

func TestSendModelFailureEmitsError(t *testing.T) {
	store := &memStore{}
	client := &scriptedClient{err: errors.New("upstream 500")}
	svc, _ := newTestService(store, client)

	var events []Event
	_, err := svc.Send(context.Background(), Turn{ProjectID: "p1", UserID: "u1", Text: "hi", IsInitial: true}, collect(&events))
	require.Error(t, err)
	require.Len(t, store.msgs, 1, "user turn is persisted before the model call")
	assert.Equal(t, EventError, events[len(events)-1].Type)
}

func TestSendRejectsForeignProject(t *testing.T) {
	svc, _ := newTestService(&memStore{}, &scriptedClient{})
	_, err := svc.Send(context.Background(), Turn{ProjectID: "p1", UserID: "intruder", Text: "hi"}, nil)
	assert.ErrorIs(t, err, project.ErrNotFound)
}

func TestSendStopsWhenSinkFails(t *testing.T) {
	store := &memStore{}
	client := &scriptedClient{chunks: []string{"a", "b", "c"}}
	svc, _ := newTestService(store, client)

	gone := errors.New("gone")
	n := 0
	_, err := svc.Send(context.Background(), Turn{ProjectID: "p1", UserID: "u1", Text: "hi", IsInitial: true}, func(ev Event) error {
		n++
		if ev.Type == EventToken {
			return gone
		}
		return nil
	})
	assert.ErrorIs(t, err, gone)
	assert.Equal(t, 2, n)
	assert.Len(t, store.msgs, 1)
}

func TestSendRemembersSummaryBeyondHistoryWindow(t *testing.T) {
	store := &memStore{}
	for i, m := range summarized() {
		m.ProjectID = "p1"
		m.CreatedAt = t0.Add(-time.Hour + time.Duration(i)*time.Second)
		store.msgs = append(store.msgs, m)
	}
	for i := 0; i < HistoryLimit+6; i++ {
		role, stage := RoleUser, Stage("")
		if i%2 == 1 {
			role, stage = RoleAssistant, StagePostSummary
		}
		store.msgs = append(store.msgs, Message{
			ID:        fmt.Sprintf("ps-%d", i),
			ProjectID: "p1",
			Role:      role,
			Content:   "ok",
			Metadata:  Metadata{Stage: stage},
			CreatedAt: t0.Add(-30*time.Minute + time.Duration(i)*time.Second),
		})
	}
	client := &scriptedClient{chunks: []string{"You're welcome."}}
	svc, projects := newTestService(store, client)

	reply, err := svc.Send(context.Background(), Turn{ProjectID: "p1", UserID: "u1", Text: "thanks!"}, nil)
	require.NoError(t, err)
	assert.Equal(t, StagePostSummary, reply.Metadata.Stage)
	assert.Empty(t, projects.updated)
	assert.Len(t, client.last.Messages, HistoryLimit+1)
}
