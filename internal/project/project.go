package project

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a project does not exist or belongs to
// another user.
var ErrNotFound = errors.New("project not found")

// Project owns artifacts and chat history. Description is the canonical
// idea summary and is overwritten whenever the chat produces a summary.
type Project struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Idea        string    `json:"idea"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// OwnedBy reports whether userID may act on p.
func (p Project) OwnedBy(userID string) bool {
	return p.UserID != "" && p.UserID == userID
}

// Brief is the idea text handed to generators: the summary when the chat
// produced one, else the raw idea.
func (p Project) Brief() string {
	if p.Description != "" {
		return p.Description
	}
	return p.Idea
}
