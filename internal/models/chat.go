package models

import (
	"time"

	"gorm.io/gorm"
)

// Channel kinds
const (
	ChannelKindText  = "text"
	ChannelKindVoice = "voice"
)

// ChatServer represents a Dischat server (guild). InviteCode is the
// join handle rendered as a QR by the invite endpoint.
type ChatServer struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Name       string         `gorm:"size:100;not null" json:"name"`
	Icon       string         `gorm:"size:500" json:"icon"`
	OwnerID    uint           `gorm:"index;not null" json:"owner_id"`
	InviteCode string         `gorm:"uniqueIndex;size:32" json:"invite_code"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	Channels []ChatChannel `gorm:"foreignKey:ServerID" json:"channels,omitempty"`
	Roles    []ChatRole    `gorm:"foreignKey:ServerID" json:"roles,omitempty"`
}

func (ChatServer) TableName() string { return "dischat_servers" }

// ChatChannel is a text or voice channel within a server.
type ChatChannel struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ServerID  uint           `gorm:"index;not null" json:"server_id"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	Kind      string         `gorm:"size:20;default:text" json:"kind"` // text, voice
	Topic     string         `gorm:"size:500" json:"topic"`
	Position  int            `gorm:"default:0" json:"position"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ChatChannel) TableName() string { return "dischat_channels" }

// ChannelMessage is one message in a text channel.
type ChannelMessage struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ChannelID uint           `gorm:"index;not null" json:"channel_id"`
	AuthorID  uint           `gorm:"index;not null" json:"author_id"`
	Author    *User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ChannelMessage) TableName() string { return "dischat_messages" }

// ChatRole carries a permission bitmask for the members assigned to it.
type ChatRole struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ServerID    uint           `gorm:"index;not null" json:"server_id"`
	Name        string         `gorm:"size:100;not null" json:"name"`
	Color       string         `gorm:"size:20" json:"color"`
	Permissions int64          `gorm:"default:0" json:"permissions"`
	Position    int            `gorm:"default:0" json:"position"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ChatRole) TableName() string { return "dischat_roles" }

// ChatMember links a user to a server with an optional role. Rows are
// hard-deleted on leave or kick so the unique index never blocks a
// rejoin.
type ChatMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ServerID  uint      `gorm:"uniqueIndex:idx_server_user;not null" json:"server_id"`
	UserID    uint      `gorm:"uniqueIndex:idx_server_user;not null" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Nickname  string    `gorm:"size:100" json:"nickname"`
	RoleID    *uint     `gorm:"index" json:"role_id"`
	Role      *ChatRole `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	IsOwner   bool      `gorm:"default:false" json:"is_owner"`
	IsAdmin   bool      `gorm:"default:false" json:"is_admin"`
	JoinedAt  time.Time `json:"joined_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ChatMember) TableName() string { return "dischat_members" }
