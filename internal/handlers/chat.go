package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/danodev/daworks/internal/config"
	"github.com/danodev/daworks/internal/middleware"
	"github.com/danodev/daworks/internal/services"
	"github.com/danodev/daworks/pkg/response"
)

type ChatHandler struct {
	chatService *services.ChatService
	rtcService  *services.RTCService
}

func NewChatHandler(db *gorm.DB, cfg *config.Config) *ChatHandler {
	chatService := services.NewChatService(db, cfg.Server.BaseURL)
	return &ChatHandler{
		chatService: chatService,
		rtcService:  services.NewRTCService(&cfg.RTC, chatService),
	}
}

// chatError maps resolver errors onto HTTP statuses. Non-members get a
// 404 so server existence is not leaked.
func chatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotServerMember):
		response.NotFound(c, "server not found")
	case errors.Is(err, services.ErrPermissionDenied):
		response.Forbidden(c, "permission denied")
	default:
		response.BadRequest(c, err.Error())
	}
}

func serverID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid server id")
		return 0, false
	}
	return uint(id), true
}

// --- Servers ---

// ListServers returns the servers the current user belongs to
// GET /api/dischat/servers
func (h *ChatHandler) ListServers(c *gin.Context) {
	userID := middleware.GetUserID(c)
	servers, err := h.chatService.ListServers(userID)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, servers)
}

// GetServer returns one server with channels and roles
// GET /api/dischat/servers/:id
func (h *ChatHandler) GetServer(c *gin.Context) {
	id, ok := serverID(c)
	if !ok {
		return
	}

	userID := middleware.GetUserID(c)
	server, err := h.chatService.GetServer(id, userID)
	if err != nil {
		chatError(c, err)
		return
	}

	response.Success(c, server)
}

// CreateServer creates a server with the default channel set
// POST /api/dischat/servers
func (h *ChatHandler) CreateServer(c *gin.Context) {
	var req services.CreateServerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	server, err := h.chatService.CreateServer(userID, &req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Created(c, server)
}

// UpdateServer renames a server or changes its icon
// PUT /api/dischat/servers/:id
func (h *ChatHandler) UpdateServer(c *gin.Context) {
	id, ok := serverID(c)
	if !ok {
		return
	}

	var req services.UpdateServerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	server, err := h.chatService.UpdateServer(id, userID, &req)
	if err != nil {
		chatError(c, err)
		return
	}

	response.Success(c, server)
}

// DeleteServer deletes a server. Owner only.
// DELETE /api/dischat/servers/:id
func (h *ChatHandler) DeleteServer(c *gin.Context) {
	id, ok := serverID(c)
	if !ok {
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.chatService.DeleteServer(id, userID); err != nil {
		chatError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "server deleted successfully"})
}

// --- Invites ---

type joinRequest struct {
	Code string `json:"code" binding:"required"`
}

// Join joins a server by invite code
// POST /api/dischat/join
func (h *ChatHandler) Join(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	server, err := h.chatService.JoinByInvite(userID, req.Code)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, server)
}

// ResetInvite rotates the server invite code
// POST /api/dischat/servers/:id/invite/reset
func (h *ChatHandler) ResetInvite(c *gin.Context) {
	id, ok := serverID(c)
	if !ok {
		return
	}

	userID := middleware.GetUserID(c)
	server, err := h.chatService.ResetInviteCode(id, userID)
	if err != nil {
		chatError(c, err)
		return
	}

	response.Success(c, server)
}

// InviteQR renders the invite URL as a QR code PNG
// GET /api/dischat/servers/:id/invite/qr
func (h *ChatHandler) InviteQR(c *gin.Context) {
	id, ok := serverID(c)
	if !ok {
		return
	}

	size, _ := strconv.Atoi(c.DefaultQuery("size", "256"))

	userID := middleware.GetUserID(c)
	png, err := h.chatService.InviteQR(id, userID, size)
	if err != nil {
		chatError(c, err)
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

// --- Channels ---

func channelIDs(c *gin.Context) (uint, uint, bool) {
	sid, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid server id")
		return 0, 0, false
	}
	cid, err := strconv.ParseUint(c.Param("channel_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid channel id")
		return 0, 0, false
	}
	return uint(sid), uint(cid), true
}

// CreateChannel adds a text or voice channel
// POST /api/dischat/servers/:id/channels
func (h *ChatHandler) CreateChannel(c *gin.Context) {
	id, ok := serverID(c)
	if !ok {
		return
	}

	var req services.CreateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	channel, err := h.chatService.CreateChannel(id, userID, &req)
	if err != nil {
		chatError(c, err)
		return
	}

	response.Created(c, channel)
}

// UpdateChannel renames or repositions a channel
// PUT /api/dischat/servers/:id/channels/:channel_id
func (h *ChatHandler) UpdateChannel(c *gin.Context) {
	sid, cid, ok := channelIDs(c)
	if !ok {
		return
	}

	var req services.UpdateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	channel, err := h.chatService.UpdateChannel(sid, cid, userID, &req)
	if err != nil {
		chatError(c, err)
		return
	}

	response.Success(c, channel)
}

// DeleteChannel removes a channel and its messages
// DELETE /api/dischat/servers/:id/channels/:channel_id
func (h *ChatHandler) DeleteChannel(c *gin.Context) {
	sid, cid, ok := channelIDs(c)
	if !ok {
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.chatService.DeleteChannel(sid, cid, userID); err != nil {
		chatError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "channel deleted successfully"})
}

// --- Messages ---

// ListMessages returns a channel's messages, newest page first
// GET /api/dischat/servers/:id/channels/:channel_id/messages
func (h *ChatHandler) ListMessages(c *gin.Context) {
	sid, cid, ok := channelIDs(c)
	if !ok {
		return
	}

	var req services.ChannelMessageListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	resp, err := h.chatService.ListMessages(sid, cid, userID, &req)
	if err != nil {
		chatError(c, err)
		return
	}

	response.Success(c, resp)
}

// SendMessage posts a message to a channel
// POST /api/dischat/servers/:id/channels/:channel_id/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	sid, cid, ok := channelIDs(c)
	if !ok {
		return
	}

	var req services.SendChannelMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	msg, err := h.chatService.SendMessage(sid, cid, userID, &req)
	if err != nil {
		chatError(c, err)
		return
	}

	response.Created(c, msg)
}

type editMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// UpdateMessage edits a message. Authors only.
// PUT /api/dischat/servers/:id/channels/:channel_id/messages/:message_id
func (h *ChatHandler) UpdateMessage(c *gin.Context) {
	sid, cid, ok := channelIDs(c)
	if !ok {
		return
	}
	mid, err := strconv.ParseUint(c.Param("message_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid message id")
		return
	}

	var req editMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	msg, err := h.chatService.UpdateMessage(sid, cid, uint(mid), userID, req.Content)
	if err != nil {
		chatError(c, err)
		return
	}

	response.Success(c, msg)
}

// DeleteMessage removes a message. Authors, or anyone with the manage
// messages permission.
// DELETE /api/dischat/servers/:id/channels/:channel_id/messages/:message_id
func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	sid, cid, ok := channelIDs(c)
	if !ok {
		return
	}
	mid, err := strconv.ParseUint(c.Param("message_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid message id")
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.chatService.DeleteMessage(sid, cid, uint(mid), userID); err != nil {
		chatError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "message deleted successfully"})
}

// --- Roles ---

// PermissionCatalog returns the fixed permission flag list for role
// editors
// GET /api/dischat/permissions
func (h *ChatHandler) PermissionCatalog(c *gin.Context) {
	response.Success(c, services.PermissionCatalog())
}

// ListRoles returns a server's roles ordered by position
// GET /api/dischat/servers/:id/roles
func (h *ChatHandler) ListRoles(c *gin.Context) {
	id, ok := serverID(c)
	if !ok {
		return
	}

	userID := middleware.GetUserID(c)
	roles, err := h.chatService.ListRoles(id, userID)
	if err != nil {
		chatError(c, err)
		return
	}

	response.Success(c, roles)
}

// CreateRole adds a role
// POST /api/dischat/servers/:id/roles
func (h *ChatHandler) CreateRole(c *gin.Context) {
	id, ok := serverID(c)
	if !ok {
		return
	}

	var req services.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	role, err := h.chatService.CreateRole(id, userID, &req)
	if err != nil {
		chatError(c, err)
		return
	}

	response.Created(c, role)
}

// UpdateRole changes a role's name, color or permission mask
// PUT /api/dischat/servers/:id/roles/:role_id
func (h *ChatHandler) UpdateRole(c *gin.Context) {
	id, ok := serverID(c)
	if !ok {
		return
	}
	roleID, err := strconv.ParseUint(c.Param("role_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid role id")
		return
	}

	var req services.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	role, err := h.chatService.UpdateRole(id, uint(roleID), userID, &req)
	if err != nil {
		chatError(c, err)
		return
	}

	response.Success(c, role)
}

// DeleteRole removes a role; members holding it fall back to the
// default permissions
// DELETE /api/dischat/servers/:id/roles/:role_id
func (h *ChatHandler) DeleteRole(c *gin.Context) {
	id, ok := serverID(c)
	if !ok {
		return
	}
	roleID, err := strconv.ParseUint(c.Param("role_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid role id")
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.chatService.DeleteRole(id, uint(roleID), userID); err != nil {
		chatError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "role deleted successfully"})
}

// --- Members ---

// ListMembers returns a server's members with their roles
// GET /api/dischat/servers/:id/members
func (h *ChatHandler) ListMembers(c *gin.Context) {
	id, ok := serverID(c)
	if !ok {
		return
	}

	userID := middleware.GetUserID(c)
	members, err := h.chatService.ListMembers(id, userID)
	if err != nil {
		chatError(c, err)
		return
	}

	response.Success(c, members)
}

// UpdateMember changes a member's nickname, role or admin flag
// PUT /api/dischat/servers/:id/members/:member_id
func (h *ChatHandler) UpdateMember(c *gin.Context) {
	id, ok := serverID(c)
	if !ok {
		return
	}
	memberID, err := strconv.ParseUint(c.Param("member_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid member id")
		return
	}

	var req services.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	member, err := h.chatService.UpdateMember(id, uint(memberID), userID, &req)
	if err != nil {
		chatError(c, err)
		return
	}

	response.Success(c, member)
}

// KickMember removes a member from the server
// DELETE /api/dischat/servers/:id/members/:member_id
func (h *ChatHandler) KickMember(c *gin.Context) {
	id, ok := serverID(c)
	if !ok {
		return
	}
	memberID, err := strconv.ParseUint(c.Param("member_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid member id")
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.chatService.KickMember(id, uint(memberID), userID); err != nil {
		chatError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "member removed successfully"})
}

// Leave removes the current user from the server. Owners must delete
// or transfer instead.
// POST /api/dischat/servers/:id/leave
func (h *ChatHandler) Leave(c *gin.Context) {
	id, ok := serverID(c)
	if !ok {
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.chatService.Leave(id, userID); err != nil {
		chatError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "left server successfully"})
}

// --- RTC ---

// MintRTCToken issues an Agora token for a voice channel
// POST /api/dischat/agora/token
func (h *ChatHandler) MintRTCToken(c *gin.Context) {
	var req services.RTCTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	token, err := h.rtcService.MintToken(userID, &req)
	if err != nil {
		chatError(c, err)
		return
	}

	response.Success(c, token)
}
