package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Note is a reviewer's remark on a candidate. Column names the results
// column it was written under; empty means the candidate as a whole.
type Note struct {
	ID        uuid.UUID
	Author    string
	Column    string
	Content   string
	CreatedAt time.Time
}

// NewNote creates a note.
func NewNote(author, column, content string) (Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Note{}, ErrEmptyNote
	}
	return Note{
		ID:        uuid.New(),
		Author:    strings.TrimSpace(author),
		Column:    strings.TrimSpace(column),
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}, nil
}
