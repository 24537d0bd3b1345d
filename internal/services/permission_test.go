package services

import (
	"testing"
)

func TestHasPermission(t *testing.T) {
	tests := []struct {
		name string
		mask int64
		flag int64
		want bool
	}{
		{"single flag present", PermSendMessages, PermSendMessages, true},
		{"single flag absent", PermViewChannels, PermSendMessages, false},
		{"flag within larger mask", PermViewChannels | PermSendMessages | PermConnect, PermSendMessages, true},
		{"combined flag fully present", PermViewChannels | PermSendMessages, PermViewChannels | PermSendMessages, true},
		{"combined flag partially present", PermViewChannels, PermViewChannels | PermSendMessages, false},
		{"zero mask has nothing", 0, PermViewChannels, false},
		{"all mask has everything", PermAll, PermMuteMembers, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasPermission(tt.mask, tt.flag); got != tt.want {
				t.Errorf("HasPermission(%d, %d) = %v, expected %v", tt.mask, tt.flag, got, tt.want)
			}
		})
	}
}

func TestPermissionCatalog_FlagsAreDistinctBits(t *testing.T) {
	catalog := PermissionCatalog()

	seen := make(map[int64]string)
	for _, entry := range catalog {
		if entry.Flag == 0 {
			t.Errorf("flag %s has zero value", entry.Name)
		}
		if entry.Flag&(entry.Flag-1) != 0 {
			t.Errorf("flag %s (%d) is not a single bit", entry.Name, entry.Flag)
		}
		if other, ok := seen[entry.Flag]; ok {
			t.Errorf("flag %s reuses bit %d already taken by %s", entry.Name, entry.Flag, other)
		}
		seen[entry.Flag] = entry.Name
	}
}

func TestPermissionCatalog_CoversPermAll(t *testing.T) {
	var combined int64
	for _, entry := range PermissionCatalog() {
		combined |= entry.Flag
	}

	if combined != PermAll {
		t.Errorf("catalog flags combine to %d, PermAll is %d", combined, PermAll)
	}
}

func TestPermissionCatalog_Categories(t *testing.T) {
	valid := map[string]bool{
		PermCategoryGeneral: true,
		PermCategoryMember:  true,
		PermCategoryChannel: true,
	}

	for _, entry := range PermissionCatalog() {
		if !valid[entry.Category] {
			t.Errorf("flag %s has unknown category %q", entry.Name, entry.Category)
		}
		if entry.Label == "" {
			t.Errorf("flag %s has no label", entry.Name)
		}
	}
}

func TestPermDefault_IsSubsetOfAll(t *testing.T) {
	if PermDefault&PermAll != PermDefault {
		t.Error("PermDefault contains bits outside PermAll")
	}
	if HasPermission(PermDefault, PermAdministrator) {
		t.Error("PermDefault must not include Administrator")
	}
	if HasPermission(PermDefault, PermManageServer) {
		t.Error("PermDefault must not include Manage Server")
	}
	if !HasPermission(PermDefault, PermSendMessages) {
		t.Error("PermDefault should allow sending messages")
	}
}
