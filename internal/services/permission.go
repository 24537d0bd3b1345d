package services

// Dischat permission flags. The values are stable wire format shared
// with role editors in the UI, do not renumber them.
const (
	PermViewChannels    int64 = 1 << 0
	PermSendMessages    int64 = 1 << 1
	PermManageMessages  int64 = 1 << 2
	PermAdministrator   int64 = 1 << 3
	PermCreateInvite    int64 = 1 << 4
	PermManageServer    int64 = 1 << 5
	PermKickMembers     int64 = 1 << 6
	PermManageNicknames int64 = 1 << 7
	PermManageRoles     int64 = 1 << 8
	PermManageChannels  int64 = 1 << 9
	PermConnect         int64 = 1 << 10
	PermSpeak           int64 = 1 << 11
	PermMuteMembers     int64 = 1 << 12
)

// PermAll is every catalog flag. Owners, admins and Administrator roles
// resolve to this mask.
const PermAll int64 = PermViewChannels | PermSendMessages | PermManageMessages |
	PermAdministrator | PermCreateInvite | PermManageServer | PermKickMembers |
	PermManageNicknames | PermManageRoles | PermManageChannels | PermConnect |
	PermSpeak | PermMuteMembers

// PermDefault is what a member without an assigned role can do
const PermDefault int64 = PermViewChannels | PermSendMessages | PermCreateInvite |
	PermConnect | PermSpeak

// Permission categories for grouping in the role editor
const (
	PermCategoryGeneral = "general"
	PermCategoryMember  = "member"
	PermCategoryChannel = "channel"
)

// PermissionFlag describes one bit of the role mask for UI display
type PermissionFlag struct {
	Flag     int64  `json:"flag"`
	Name     string `json:"name"`
	Label    string `json:"label"`
	Category string `json:"category"`
}

// PermissionCatalog returns the fixed flag table rendered by role
// editors. Order is display order.
func PermissionCatalog() []PermissionFlag {
	return []PermissionFlag{
		{Flag: PermViewChannels, Name: "view_channels", Label: "View Channels", Category: PermCategoryGeneral},
		{Flag: PermCreateInvite, Name: "create_invite", Label: "Create Invite", Category: PermCategoryGeneral},
		{Flag: PermManageServer, Name: "manage_server", Label: "Manage Server", Category: PermCategoryGeneral},
		{Flag: PermAdministrator, Name: "administrator", Label: "Administrator", Category: PermCategoryGeneral},
		{Flag: PermKickMembers, Name: "kick_members", Label: "Kick Members", Category: PermCategoryMember},
		{Flag: PermManageNicknames, Name: "manage_nicknames", Label: "Manage Nicknames", Category: PermCategoryMember},
		{Flag: PermManageRoles, Name: "manage_roles", Label: "Manage Roles", Category: PermCategoryMember},
		{Flag: PermManageChannels, Name: "manage_channels", Label: "Manage Channels", Category: PermCategoryChannel},
		{Flag: PermSendMessages, Name: "send_messages", Label: "Send Messages", Category: PermCategoryChannel},
		{Flag: PermManageMessages, Name: "manage_messages", Label: "Manage Messages", Category: PermCategoryChannel},
		{Flag: PermConnect, Name: "connect", Label: "Connect to Voice", Category: PermCategoryChannel},
		{Flag: PermSpeak, Name: "speak", Label: "Speak", Category: PermCategoryChannel},
		{Flag: PermMuteMembers, Name: "mute_members", Label: "Mute Members", Category: PermCategoryChannel},
	}
}

// HasPermission reports whether mask contains every bit of flag
func HasPermission(mask, flag int64) bool {
	return mask&flag == flag
}
