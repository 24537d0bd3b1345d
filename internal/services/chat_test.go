package services

import (
	"strings"
	"testing"

	"github.com/danodev/daworks/internal/models"
)

func TestMemberPermissions(t *testing.T) {
	s := &ChatService{}

	adminRole := &models.ChatRole{Permissions: PermAdministrator}
	modRole := &models.ChatRole{Permissions: PermViewChannels | PermSendMessages | PermManageMessages}

	tests := []struct {
		name   string
		member models.ChatMember
		want   int64
	}{
		{"owner gets everything", models.ChatMember{IsOwner: true}, PermAll},
		{"admin flag gets everything", models.ChatMember{IsAdmin: true}, PermAll},
		{"administrator role gets everything", models.ChatMember{Role: adminRole}, PermAll},
		{"plain role gets its mask", models.ChatMember{Role: modRole}, modRole.Permissions},
		{"no role gets the default", models.ChatMember{}, PermDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.memberPermissions(&tt.member)
			if got != tt.want {
				t.Errorf("memberPermissions() = %d, expected %d", got, tt.want)
			}
		})
	}
}

func TestMemberPermissions_RoleDoesNotLeakExtraBits(t *testing.T) {
	s := &ChatService{}
	member := models.ChatMember{
		Role: &models.ChatRole{Permissions: PermViewChannels | PermSendMessages},
	}

	perms := s.memberPermissions(&member)

	if HasPermission(perms, PermManageServer) {
		t.Error("plain role should not grant manage server")
	}
	if HasPermission(perms, PermKickMembers) {
		t.Error("plain role should not grant kick members")
	}
	if !HasPermission(perms, PermSendMessages) {
		t.Error("role mask should grant send messages")
	}
}

func TestGenerateInviteCode(t *testing.T) {
	code := generateInviteCode()

	if len(code) != 32 {
		t.Errorf("invite code length = %d, expected 32", len(code))
	}
	if strings.Contains(code, "-") {
		t.Errorf("invite code should not contain dashes: %s", code)
	}

	other := generateInviteCode()
	if code == other {
		t.Error("invite codes should be unique")
	}
}

func TestInviteURL(t *testing.T) {
	s := &ChatService{baseURL: "https://daworks.example.com"}

	url := s.InviteURL("abc123")

	expected := "https://daworks.example.com/dischat/join?code=abc123"
	if url != expected {
		t.Errorf("InviteURL() = %q, expected %q", url, expected)
	}
}

func TestNewChatService_TrimsBaseURL(t *testing.T) {
	s := NewChatService(nil, "https://daworks.example.com/")

	url := s.InviteURL("xyz")
	if strings.Contains(url, ".com//") {
		t.Errorf("base URL trailing slash should be trimmed, got %q", url)
	}
}

func TestCreateRoleRequest_PermissionMasking(t *testing.T) {
	// Unknown high bits are stripped before storage
	dirty := PermAll | (1 << 40)
	cleaned := dirty & PermAll

	if cleaned != PermAll {
		t.Errorf("masking should strip unknown bits, got %d", cleaned)
	}
}

func TestUpdateMemberRequest_ZeroRoleClearsAssignment(t *testing.T) {
	var zero uint
	req := &UpdateMemberRequest{RoleID: &zero}

	if req.RoleID == nil || *req.RoleID != 0 {
		t.Error("RoleID 0 should be representable to clear the role")
	}
	if req.Nickname != nil {
		t.Error("Nickname should stay nil when not set")
	}
	if req.IsAdmin != nil {
		t.Error("IsAdmin should stay nil when not set")
	}
}
