package boards

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Element types recognized by the canvas. The set is open; these are the ones the service treats specially.
const (
	ElementTypeText  = "text"
	ElementTypeImage = "image"
)

const (
	defaultElementWidth  = 100
	defaultElementHeight = 100
	pdfElementWidth      = 500
	pdfElementHeight     = 700
)

// Position is a canvas coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a canvas extent.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Element is a canvas item embedded in a board. Rank orders painting; higher ranks are drawn on top.
type Element struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Content  string         `json:"content"`
	Position Position       `json:"position"`
	Size     Size           `json:"size"`
	Style    map[string]any `json:"style,omitempty"`
	Src      string         `json:"src,omitempty"`
	Shape    string         `json:"shape,omitempty"`
	Color    string         `json:"color,omitempty"`
	Rank     int64          `json:"rank"`
}

// Elements is the ordered element sequence, stored as a JSON document column.
type Elements []Element

// Value implements driver.Valuer.
func (e Elements) Value() (driver.Value, error) {
	if e == nil {
		return "[]", nil
	}
	encoded, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return string(encoded), nil
}

// Scan implements sql.Scanner.
func (e *Elements) Scan(value any) error {
	var raw []byte
	switch typed := value.(type) {
	case nil:
		*e = Elements{}
		return nil
	case []byte:
		raw = typed
	case string:
		raw = []byte(typed)
	default:
		return fmt.Errorf("unsupported elements column type %T", value)
	}
	if len(raw) == 0 {
		*e = Elements{}
		return nil
	}
	var decoded Elements
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	if decoded == nil {
		decoded = Elements{}
	}
	*e = decoded
	return nil
}

func (e Elements) maxRank() int64 {
	var highest int64
	for _, element := range e {
		if element.Rank > highest {
			highest = element.Rank
		}
	}
	return highest
}

func (e Elements) indexOf(elementID string) int {
	for index, element := range e {
		if element.ID == elementID {
			return index
		}
	}
	return -1
}

// MediaRefs lists the media objects ingested for a board. Only these are removed
// when the board is deleted; element src values are client-controlled.
type MediaRefs []string

// Value implements driver.Valuer.
func (m MediaRefs) Value() (driver.Value, error) {
	if m == nil {
		return "[]", nil
	}
	encoded, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(encoded), nil
}

// Scan implements sql.Scanner.
func (m *MediaRefs) Scan(value any) error {
	var raw []byte
	switch typed := value.(type) {
	case nil:
		*m = MediaRefs{}
		return nil
	case []byte:
		raw = typed
	case string:
		raw = []byte(typed)
	default:
		return fmt.Errorf("unsupported media refs column type %T", value)
	}
	if len(raw) == 0 {
		*m = MediaRefs{}
		return nil
	}
	var decoded MediaRefs
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	if decoded == nil {
		decoded = MediaRefs{}
	}
	*m = decoded
	return nil
}

// Owner is the public view of a board's owner.
type Owner struct {
	ID             string `json:"id"`
	Username       string `json:"username,omitempty"`
	Email          string `json:"email,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// Board is a named canvas owned by exactly one user.
type Board struct {
	ID         string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	BoardName  string    `gorm:"column:board_name;size:255;not null;index" json:"boardName"`
	Content    string    `gorm:"column:content;type:text;not null;default:''" json:"content"`
	IsFavorite bool      `gorm:"column:is_favorite;not null;default:false" json:"isFavorite"`
	Elements   Elements  `gorm:"column:elements;type:text" json:"elements"`
	OwnerID    string    `gorm:"column:owner_id;size:36;not null;index" json:"userId"`
	Uploads    MediaRefs `gorm:"column:media_refs;type:text" json:"-"`
	Owner      *Owner    `gorm:"-" json:"user,omitempty"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName exposes the table backing boards.
func (Board) TableName() string {
	return "boards"
}

// ElementInput carries client-supplied element fields. Nil position or size selects the defaults.
type ElementInput struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Content  string         `json:"content"`
	Position *Position      `json:"position"`
	Size     *Size          `json:"size"`
	Style    map[string]any `json:"style"`
	Src      string         `json:"src"`
	Shape    string         `json:"shape"`
	Color    string         `json:"color"`
	Rank     *int64         `json:"rank"`
}

// UpdateInput replaces board content and, when Elements is non-nil, the whole element sequence.
type UpdateInput struct {
	Content  *string
	Elements *[]ElementInput
}

// Change describes a board mutation delivered to realtime subscribers.
type Change struct {
	BoardID string `json:"boardId"`
	Action  string `json:"action"`
}

// Change actions.
const (
	ChangeCreated        = "created"
	ChangeUpdated        = "updated"
	ChangeDeleted        = "deleted"
	ChangeElementsEdited = "elements"
)
