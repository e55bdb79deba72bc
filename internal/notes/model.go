package notes

import (
	"fmt"
	"strings"
	"time"

	"github.com/Prabisha01/de/internal/apperrors"
)

// NoteType enumerates sticky note kinds.
type NoteType string

const (
	// NoteTypeText is a plain text note.
	NoteTypeText NoteType = "text"
	// NoteTypeImage is a note whose content is an image reference.
	NoteTypeImage NoteType = "image"
	// NoteTypeDoodle is a freehand drawing note.
	NoteTypeDoodle NoteType = "doodle"
)

const (
	defaultPositionX = 100
	defaultPositionY = 100
	defaultWidth     = 200
	defaultHeight    = 100
)

// NewNoteType validates raw input. Empty input yields NoteTypeText.
func NewNoteType(rawInput string) (NoteType, error) {
	switch NoteType(strings.ToLower(strings.TrimSpace(rawInput))) {
	case "", NoteTypeText:
		return NoteTypeText, nil
	case NoteTypeImage:
		return NoteTypeImage, nil
	case NoteTypeDoodle:
		return NoteTypeDoodle, nil
	default:
		return "", fmt.Errorf("%w: unsupported note type %q", apperrors.ErrValidation, rawInput)
	}
}

// Position is the note's canvas coordinate.
type Position struct {
	X float64 `gorm:"column:x;not null" json:"x"`
	Y float64 `gorm:"column:y;not null" json:"y"`
}

// Size is the note's canvas extent.
type Size struct {
	Width  float64 `gorm:"column:width;not null" json:"width"`
	Height float64 `gorm:"column:height;not null" json:"height"`
}

// Note is a standalone sticky note attached to a board.
type Note struct {
	ID        string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	BoardID   string    `gorm:"column:board_id;size:36;not null;index" json:"boardId"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content"`
	Type      NoteType  `gorm:"column:note_type;size:16;not null" json:"type"`
	Position  Position  `gorm:"embedded;embeddedPrefix:position_" json:"position"`
	Size      Size      `gorm:"embedded;embeddedPrefix:size_" json:"size"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName exposes the table backing notes.
func (Note) TableName() string {
	return "notes"
}

// CreateInput carries the fields of a new note. Nil position or size selects the defaults.
type CreateInput struct {
	BoardID  string    `json:"boardId"`
	Content  string    `json:"content"`
	Type     string    `json:"type"`
	Position *Position `json:"position"`
	Size     *Size     `json:"size"`
}

// UpdateInput carries the fields to change on a note; nil fields are left untouched.
type UpdateInput struct {
	Content  *string   `json:"content"`
	Type     *string   `json:"type"`
	Position *Position `json:"position"`
	Size     *Size     `json:"size"`
}
