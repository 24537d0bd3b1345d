package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// JSONMap stores arbitrary JSON objects in a text column. Element
// metadata (rotation, color, childIndex and whatever the client adds)
// lives in one of these.
type JSONMap map[string]interface{}

// Value implements driver.Valuer
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported type for JSONMap")
	}
	if len(data) == 0 {
		*m = JSONMap{}
		return nil
	}
	return json.Unmarshal(data, m)
}

// Board element types
const (
	ElementNote      = "note"
	ElementText      = "text"
	ElementHeading   = "heading"
	ElementImage     = "image"
	ElementTodo      = "todo"
	ElementRect      = "rect"
	ElementEllipse   = "ellipse"
	ElementColumn    = "column"
	ElementContainer = "container"
	ElementAudio     = "audio"
)

// ValidElementType reports whether t is a known element type.
func ValidElementType(t string) bool {
	switch t {
	case ElementNote, ElementText, ElementHeading, ElementImage, ElementTodo,
		ElementRect, ElementEllipse, ElementColumn, ElementContainer, ElementAudio:
		return true
	}
	return false
}

// Board represents a Danote whiteboard.
type Board struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	OwnerID    uint           `gorm:"index;not null" json:"owner_id"`
	Title      string         `gorm:"size:200;not null" json:"title"`
	Background string         `gorm:"size:50" json:"background"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	Elements []BoardElement `gorm:"foreignKey:BoardID" json:"elements,omitempty"`
}

func (Board) TableName() string { return "danote_boards" }

// BoardElement is one positioned rectangle on a board. Coordinates are
// in a single unscaled logical space; pan/zoom is a client rendering
// concern. ParentID groups an element under a column element, with its
// stacking position kept as childIndex inside Metadata.
type BoardElement struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BoardID   uint      `gorm:"index;not null" json:"board_id"`
	Type      string    `gorm:"size:30;not null" json:"type"` // note, text, heading, image, todo, rect, ellipse, column, container, audio
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
	ZIndex    int       `gorm:"default:0;index" json:"z_index"`
	Content   string    `gorm:"type:text" json:"content"`
	Metadata  JSONMap   `gorm:"type:text" json:"metadata"`
	ParentID  *uint     `gorm:"index" json:"parent_id"` // Set only when nested in a column
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (BoardElement) TableName() string { return "danote_elements" }

// ChildIndex reads the childIndex ordering key from the metadata bag.
// Elements without one sort last.
func (e *BoardElement) ChildIndex() int {
	if e.Metadata == nil {
		return int(^uint(0) >> 1)
	}
	switch v := e.Metadata["childIndex"].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return int(^uint(0) >> 1)
}

// SetChildIndex writes the childIndex ordering key into the metadata bag.
func (e *BoardElement) SetChildIndex(i int) {
	if e.Metadata == nil {
		e.Metadata = JSONMap{}
	}
	e.Metadata["childIndex"] = float64(i)
}
