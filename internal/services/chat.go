package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"github.com/danodev/daworks/internal/models"
)

// Authorization errors surfaced by the resolver. Handlers map these to
// 404 and 403 respectively.
var (
	ErrNotServerMember  = errors.New("not a member of this server")
	ErrPermissionDenied = errors.New("permission denied")
)

// ChatService manages Dischat servers, channels, messages, roles and
// members. Every permission decision goes through memberPermissions so
// the owner flag, admin flag and role bitmask cannot disagree.
type ChatService struct {
	db      *gorm.DB
	baseURL string
}

func NewChatService(db *gorm.DB, baseURL string) *ChatService {
	return &ChatService{db: db, baseURL: strings.TrimRight(baseURL, "/")}
}

type CreateServerRequest struct {
	Name string `json:"name" binding:"required,max=100"`
	Icon string `json:"icon"`
}

type UpdateServerRequest struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type CreateChannelRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	Kind  string `json:"kind" binding:"omitempty,oneof=text voice"`
	Topic string `json:"topic"`
}

type UpdateChannelRequest struct {
	Name     string `json:"name"`
	Topic    string `json:"topic"`
	Position *int   `json:"position"`
}

type SendChannelMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type ChannelMessageListRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

type ChannelMessageListResponse struct {
	Total    int64                   `json:"total"`
	Page     int                     `json:"page"`
	PageSize int                     `json:"page_size"`
	Items    []models.ChannelMessage `json:"items"`
}

type CreateRoleRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Color       string `json:"color"`
	Permissions int64  `json:"permissions"`
}

type UpdateRoleRequest struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	Permissions *int64 `json:"permissions"`
	Position    *int   `json:"position"`
}

type UpdateMemberRequest struct {
	Nickname *string `json:"nickname"`
	RoleID   *uint   `json:"role_id"` // 0 clears the role
	IsAdmin  *bool   `json:"is_admin"`
}

// --- Permission resolution ---

// getMember loads the membership row with its role
func (s *ChatService) getMember(serverID, userID uint) (*models.ChatMember, error) {
	var member models.ChatMember
	err := s.db.Preload("Role").
		Where("server_id = ? AND user_id = ?", serverID, userID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotServerMember
		}
		return nil, err
	}
	return &member, nil
}

// memberPermissions resolves the effective mask for one member. Owner
// and admin flags grant everything, as does a role carrying the
// Administrator bit. Members without a role fall back to PermDefault.
func (s *ChatService) memberPermissions(member *models.ChatMember) int64 {
	if member.IsOwner || member.IsAdmin {
		return PermAll
	}
	if member.Role != nil {
		if HasPermission(member.Role.Permissions, PermAdministrator) {
			return PermAll
		}
		return member.Role.Permissions
	}
	return PermDefault
}

// EffectivePermissions returns the caller's resolved permission mask
// for a server
func (s *ChatService) EffectivePermissions(serverID, userID uint) (int64, error) {
	member, err := s.getMember(serverID, userID)
	if err != nil {
		return 0, err
	}
	return s.memberPermissions(member), nil
}

// requirePermission loads the membership and checks one flag against
// the resolved mask
func (s *ChatService) requirePermission(serverID, userID uint, flag int64) (*models.ChatMember, error) {
	member, err := s.getMember(serverID, userID)
	if err != nil {
		return nil, err
	}
	if !HasPermission(s.memberPermissions(member), flag) {
		return nil, ErrPermissionDenied
	}
	return member, nil
}

// --- Servers ---

// ListServers returns the servers the user belongs to
func (s *ChatService) ListServers(userID uint) ([]models.ChatServer, error) {
	var servers []models.ChatServer
	err := s.db.
		Joins("JOIN dischat_members ON dischat_members.server_id = dischat_servers.id").
		Where("dischat_members.user_id = ?", userID).
		Order("dischat_servers.created_at ASC").
		Find(&servers).Error
	if err != nil {
		return nil, err
	}
	return servers, nil
}

// GetServer returns a server with its channels and roles. Members only.
func (s *ChatService) GetServer(serverID, userID uint) (*models.ChatServer, error) {
	if _, err := s.getMember(serverID, userID); err != nil {
		return nil, err
	}

	var server models.ChatServer
	err := s.db.
		Preload("Channels", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		Preload("Roles", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		First(&server, serverID).Error
	if err != nil {
		return nil, err
	}
	return &server, nil
}

// CreateServer creates a server, its owner membership and a default
// text channel in one transaction
func (s *ChatService) CreateServer(userID uint, req *CreateServerRequest) (*models.ChatServer, error) {
	server := models.ChatServer{
		Name:       req.Name,
		Icon:       req.Icon,
		OwnerID:    userID,
		InviteCode: generateInviteCode(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&server).Error; err != nil {
			return err
		}

		member := models.ChatMember{
			ServerID: server.ID,
			UserID:   userID,
			IsOwner:  true,
			JoinedAt: time.Now(),
		}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}

		general := models.ChatChannel{
			ServerID: server.ID,
			Name:     "general",
			Kind:     models.ChannelKindText,
		}
		return tx.Create(&general).Error
	})
	if err != nil {
		return nil, err
	}
	return &server, nil
}

// UpdateServer updates name and icon. Requires manage server.
func (s *ChatService) UpdateServer(serverID, userID uint, req *UpdateServerRequest) (*models.ChatServer, error) {
	if _, err := s.requirePermission(serverID, userID, PermManageServer); err != nil {
		return nil, err
	}

	var server models.ChatServer
	if err := s.db.First(&server, serverID).Error; err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Icon != "" {
		updates["icon"] = req.Icon
	}

	if len(updates) > 0 {
		if err := s.db.Model(&server).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	s.db.First(&server, serverID)
	return &server, nil
}

// DeleteServer removes the server and everything in it. Owner only.
func (s *ChatService) DeleteServer(serverID, userID uint) error {
	var server models.ChatServer
	if err := s.db.First(&server, serverID).Error; err != nil {
		return err
	}
	if server.OwnerID != userID {
		return ErrPermissionDenied
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		channelIDs := tx.Model(&models.ChatChannel{}).Select("id").Where("server_id = ?", serverID)
		if err := tx.Where("channel_id IN (?)", channelIDs).Delete(&models.ChannelMessage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("server_id = ?", serverID).Delete(&models.ChatChannel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("server_id = ?", serverID).Delete(&models.ChatRole{}).Error; err != nil {
			return err
		}
		if err := tx.Where("server_id = ?", serverID).Delete(&models.ChatMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ChatServer{}, serverID).Error
	})
}

// --- Invites ---

func generateInviteCode() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// JoinByInvite adds the user to the server behind an invite code.
// Joining a server you already belong to is a no-op.
func (s *ChatService) JoinByInvite(userID uint, code string) (*models.ChatServer, error) {
	var server models.ChatServer
	if err := s.db.Where("invite_code = ?", code).First(&server).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("invalid invite code")
		}
		return nil, err
	}

	var existing models.ChatMember
	err := s.db.Where("server_id = ? AND user_id = ?", server.ID, userID).First(&existing).Error
	if err == nil {
		return &server, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	member := models.ChatMember{
		ServerID: server.ID,
		UserID:   userID,
		JoinedAt: time.Now(),
	}
	if err := s.db.Create(&member).Error; err != nil {
		return nil, err
	}
	return &server, nil
}

// ResetInviteCode replaces the server's invite code, invalidating the
// old one. Requires manage server.
func (s *ChatService) ResetInviteCode(serverID, userID uint) (*models.ChatServer, error) {
	if _, err := s.requirePermission(serverID, userID, PermManageServer); err != nil {
		return nil, err
	}

	var server models.ChatServer
	if err := s.db.First(&server, serverID).Error; err != nil {
		return nil, err
	}

	code := generateInviteCode()
	if err := s.db.Model(&server).Update("invite_code", code).Error; err != nil {
		return nil, err
	}

	server.InviteCode = code
	return &server, nil
}

// InviteURL returns the join link encoded by the QR endpoint
func (s *ChatService) InviteURL(code string) string {
	return fmt.Sprintf("%s/dischat/join?code=%s", s.baseURL, code)
}

// InviteQR renders the server's invite URL as a PNG QR code. Requires
// create invite.
func (s *ChatService) InviteQR(serverID, userID uint, size int) ([]byte, error) {
	if _, err := s.requirePermission(serverID, userID, PermCreateInvite); err != nil {
		return nil, err
	}

	var server models.ChatServer
	if err := s.db.First(&server, serverID).Error; err != nil {
		return nil, err
	}

	if size == 0 {
		size = 256
	}
	if size < 128 || size > 1024 {
		return nil, errors.New("invalid size: must be between 128 and 1024")
	}

	qr, err := qrcode.New(s.InviteURL(server.InviteCode), qrcode.Medium)
	if err != nil {
		return nil, err
	}
	return qr.PNG(size)
}

// --- Channels ---

func (s *ChatService) getChannel(serverID, channelID uint) (*models.ChatChannel, error) {
	var channel models.ChatChannel
	err := s.db.Where("id = ? AND server_id = ?", channelID, serverID).First(&channel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("channel not found")
		}
		return nil, err
	}
	return &channel, nil
}

// CreateChannel adds a text or voice channel at the end of the list.
// Requires manage channels.
func (s *ChatService) CreateChannel(serverID, userID uint, req *CreateChannelRequest) (*models.ChatChannel, error) {
	if _, err := s.requirePermission(serverID, userID, PermManageChannels); err != nil {
		return nil, err
	}

	if req.Kind == "" {
		req.Kind = models.ChannelKindText
	}

	var maxPos int
	s.db.Model(&models.ChatChannel{}).Where("server_id = ?", serverID).
		Select("COALESCE(MAX(position), -1)").Scan(&maxPos)

	channel := models.ChatChannel{
		ServerID: serverID,
		Name:     req.Name,
		Kind:     req.Kind,
		Topic:    req.Topic,
		Position: maxPos + 1,
	}
	if err := s.db.Create(&channel).Error; err != nil {
		return nil, err
	}
	return &channel, nil
}

// UpdateChannel updates name, topic or position. Requires manage
// channels.
func (s *ChatService) UpdateChannel(serverID, channelID, userID uint, req *UpdateChannelRequest) (*models.ChatChannel, error) {
	if _, err := s.requirePermission(serverID, userID, PermManageChannels); err != nil {
		return nil, err
	}

	channel, err := s.getChannel(serverID, channelID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Topic != "" {
		updates["topic"] = req.Topic
	}
	if req.Position != nil {
		updates["position"] = *req.Position
	}

	if len(updates) > 0 {
		if err := s.db.Model(channel).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	s.db.First(channel, channelID)
	return channel, nil
}

// DeleteChannel removes a channel and its messages. Requires manage
// channels.
func (s *ChatService) DeleteChannel(serverID, channelID, userID uint) error {
	if _, err := s.requirePermission(serverID, userID, PermManageChannels); err != nil {
		return err
	}

	channel, err := s.getChannel(serverID, channelID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("channel_id = ?", channel.ID).Delete(&models.ChannelMessage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ChatChannel{}, channel.ID).Error
	})
}

// --- Messages ---

// ListMessages returns a channel's messages, newest first
func (s *ChatService) ListMessages(serverID, channelID, userID uint, req *ChannelMessageListRequest) (*ChannelMessageListResponse, error) {
	if _, err := s.requirePermission(serverID, userID, PermViewChannels); err != nil {
		return nil, err
	}
	if _, err := s.getChannel(serverID, channelID); err != nil {
		return nil, err
	}

	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 50
	}

	query := s.db.Model(&models.ChannelMessage{}).Where("channel_id = ?", channelID)

	var total int64
	query.Count(&total)

	var messages []models.ChannelMessage
	offset := (req.Page - 1) * req.PageSize
	err := query.Preload("Author").
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(req.PageSize).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	return &ChannelMessageListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    messages,
	}, nil
}

// SendMessage posts to a text channel. Requires send messages.
func (s *ChatService) SendMessage(serverID, channelID, userID uint, req *SendChannelMessageRequest) (*models.ChannelMessage, error) {
	if _, err := s.requirePermission(serverID, userID, PermSendMessages); err != nil {
		return nil, err
	}

	channel, err := s.getChannel(serverID, channelID)
	if err != nil {
		return nil, err
	}
	if channel.Kind != models.ChannelKindText {
		return nil, errors.New("cannot post messages to a voice channel")
	}

	message := models.ChannelMessage{
		ChannelID: channel.ID,
		AuthorID:  userID,
		Content:   req.Content,
	}
	if err := s.db.Create(&message).Error; err != nil {
		return nil, err
	}

	s.db.Preload("Author").First(&message, message.ID)
	return &message, nil
}

// UpdateMessage edits a message. Authors can only edit their own.
func (s *ChatService) UpdateMessage(serverID, channelID, messageID, userID uint, content string) (*models.ChannelMessage, error) {
	if _, err := s.getMember(serverID, userID); err != nil {
		return nil, err
	}
	if _, err := s.getChannel(serverID, channelID); err != nil {
		return nil, err
	}

	var message models.ChannelMessage
	if err := s.db.Where("id = ? AND channel_id = ?", messageID, channelID).First(&message).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("message not found")
		}
		return nil, err
	}
	if message.AuthorID != userID {
		return nil, ErrPermissionDenied
	}

	if err := s.db.Model(&message).Update("content", content).Error; err != nil {
		return nil, err
	}

	s.db.Preload("Author").First(&message, message.ID)
	return &message, nil
}

// DeleteMessage removes a message. Authors delete their own, manage
// messages deletes anyone's.
func (s *ChatService) DeleteMessage(serverID, channelID, messageID, userID uint) error {
	member, err := s.getMember(serverID, userID)
	if err != nil {
		return err
	}
	if _, err := s.getChannel(serverID, channelID); err != nil {
		return err
	}

	var message models.ChannelMessage
	if err := s.db.Where("id = ? AND channel_id = ?", messageID, channelID).First(&message).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("message not found")
		}
		return err
	}

	if message.AuthorID != userID && !HasPermission(s.memberPermissions(member), PermManageMessages) {
		return ErrPermissionDenied
	}

	return s.db.Delete(&message).Error
}

// --- Roles ---

// ListRoles returns the server's roles in display order. Members only.
func (s *ChatService) ListRoles(serverID, userID uint) ([]models.ChatRole, error) {
	if _, err := s.getMember(serverID, userID); err != nil {
		return nil, err
	}

	var roles []models.ChatRole
	err := s.db.Where("server_id = ?", serverID).
		Order("position ASC, id ASC").
		Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

// CreateRole adds a role. Requires manage roles, and granting the
// Administrator bit requires holding it yourself.
func (s *ChatService) CreateRole(serverID, userID uint, req *CreateRoleRequest) (*models.ChatRole, error) {
	member, err := s.requirePermission(serverID, userID, PermManageRoles)
	if err != nil {
		return nil, err
	}

	permissions := req.Permissions & PermAll
	if HasPermission(permissions, PermAdministrator) &&
		!HasPermission(s.memberPermissions(member), PermAdministrator) {
		return nil, ErrPermissionDenied
	}

	var maxPos int
	s.db.Model(&models.ChatRole{}).Where("server_id = ?", serverID).
		Select("COALESCE(MAX(position), -1)").Scan(&maxPos)

	role := models.ChatRole{
		ServerID:    serverID,
		Name:        req.Name,
		Color:       req.Color,
		Permissions: permissions,
		Position:    maxPos + 1,
	}
	if err := s.db.Create(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// UpdateRole updates a role. Same Administrator guard as CreateRole.
func (s *ChatService) UpdateRole(serverID, roleID, userID uint, req *UpdateRoleRequest) (*models.ChatRole, error) {
	member, err := s.requirePermission(serverID, userID, PermManageRoles)
	if err != nil {
		return nil, err
	}

	var role models.ChatRole
	if err := s.db.Where("id = ? AND server_id = ?", roleID, serverID).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("role not found")
		}
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Color != "" {
		updates["color"] = req.Color
	}
	if req.Permissions != nil {
		permissions := *req.Permissions & PermAll
		if HasPermission(permissions, PermAdministrator) &&
			!HasPermission(s.memberPermissions(member), PermAdministrator) {
			return nil, ErrPermissionDenied
		}
		updates["permissions"] = permissions
	}
	if req.Position != nil {
		updates["position"] = *req.Position
	}

	if len(updates) > 0 {
		if err := s.db.Model(&role).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	s.db.First(&role, roleID)
	return &role, nil
}

// DeleteRole removes a role, clearing it from members first. Requires
// manage roles.
func (s *ChatService) DeleteRole(serverID, roleID, userID uint) error {
	if _, err := s.requirePermission(serverID, userID, PermManageRoles); err != nil {
		return err
	}

	var role models.ChatRole
	if err := s.db.Where("id = ? AND server_id = ?", roleID, serverID).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("role not found")
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.ChatMember{}).
			Where("server_id = ? AND role_id = ?", serverID, role.ID).
			Update("role_id", nil).Error
		if err != nil {
			return err
		}
		return tx.Delete(&models.ChatRole{}, role.ID).Error
	})
}

// --- Members ---

// ListMembers returns the server's members with users and roles.
// Members only.
func (s *ChatService) ListMembers(serverID, userID uint) ([]models.ChatMember, error) {
	if _, err := s.getMember(serverID, userID); err != nil {
		return nil, err
	}

	var members []models.ChatMember
	err := s.db.Preload("User").Preload("Role").
		Where("server_id = ?", serverID).
		Order("is_owner DESC, joined_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// UpdateMember changes nickname, role or admin flag. Each field has its
// own permission: nickname is self or manage nicknames, role needs
// manage roles, admin is owner only.
func (s *ChatService) UpdateMember(serverID, memberID, actorID uint, req *UpdateMemberRequest) (*models.ChatMember, error) {
	actor, err := s.getMember(serverID, actorID)
	if err != nil {
		return nil, err
	}
	actorPerms := s.memberPermissions(actor)

	var member models.ChatMember
	if err := s.db.Where("id = ? AND server_id = ?", memberID, serverID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("member not found")
		}
		return nil, err
	}

	updates := make(map[string]interface{})

	if req.Nickname != nil {
		if member.UserID != actorID && !HasPermission(actorPerms, PermManageNicknames) {
			return nil, ErrPermissionDenied
		}
		updates["nickname"] = *req.Nickname
	}
	if req.RoleID != nil {
		if !HasPermission(actorPerms, PermManageRoles) {
			return nil, ErrPermissionDenied
		}
		if *req.RoleID == 0 {
			updates["role_id"] = nil
		} else {
			var role models.ChatRole
			if err := s.db.Where("id = ? AND server_id = ?", *req.RoleID, serverID).First(&role).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, errors.New("role not found")
				}
				return nil, err
			}
			if HasPermission(role.Permissions, PermAdministrator) &&
				!HasPermission(actorPerms, PermAdministrator) {
				return nil, ErrPermissionDenied
			}
			updates["role_id"] = *req.RoleID
		}
	}
	if req.IsAdmin != nil {
		if !actor.IsOwner {
			return nil, ErrPermissionDenied
		}
		if member.IsOwner {
			return nil, errors.New("cannot change the owner's admin flag")
		}
		updates["is_admin"] = *req.IsAdmin
	}

	if len(updates) > 0 {
		if err := s.db.Model(&member).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	s.db.Preload("User").Preload("Role").First(&member, member.ID)
	return &member, nil
}

// KickMember removes someone else from the server. Requires kick
// members, and the owner cannot be kicked.
func (s *ChatService) KickMember(serverID, memberID, actorID uint) error {
	if _, err := s.requirePermission(serverID, actorID, PermKickMembers); err != nil {
		return err
	}

	var member models.ChatMember
	if err := s.db.Where("id = ? AND server_id = ?", memberID, serverID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("member not found")
		}
		return err
	}

	if member.IsOwner {
		return errors.New("cannot kick the server owner")
	}
	if member.UserID == actorID {
		return errors.New("cannot kick yourself, leave the server instead")
	}

	return s.db.Delete(&member).Error
}

// Leave removes the caller's own membership. Owners must delete the
// server or keep it.
func (s *ChatService) Leave(serverID, userID uint) error {
	member, err := s.getMember(serverID, userID)
	if err != nil {
		return err
	}
	if member.IsOwner {
		return errors.New("the owner cannot leave the server")
	}
	return s.db.Delete(&models.ChatMember{}, member.ID).Error
}
