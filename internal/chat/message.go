package chat

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Stage is the conversational phase that governs the next model call. It
// is derived from history and recorded only on assistant messages.
type Stage string

const (
	StageInitial     Stage = "initial"
	StageQuestions   Stage = "questions"
	StageGathering   Stage = "gathering"
	StageSummary     Stage = "summary"
	StagePostSummary Stage = "post_summary"
)

type Metadata struct {
	Model string `json:"model,omitempty"`
	Stage Stage  `json:"stage,omitempty"`
}

// Message is one append-only chat turn.
type Message struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Metadata  Metadata  `json:"metadata"`
	CreatedAt time.Time `json:"createdAt"`
}
