package services

import (
	"testing"

	"github.com/danodev/daworks/internal/models"
)

func testRoster() []models.User {
	return []models.User{
		{ID: 1, Username: "jdoe", FirstName: "Jane", LastName: "Doe"},
		{ID: 2, Username: "bob", FirstName: "Bob", LastName: "Smith"},
		{ID: 3, Username: "cher", Nickname: "Cher"},
		{ID: 4, Username: "jdoe2", FirstName: "Jane", LastName: "Doe"},
	}
}

func TestMatchMentions_ExactFullName(t *testing.T) {
	matched := matchMentions("please review @Jane Doe thanks", testRoster())

	if len(matched) != 1 {
		t.Fatalf("len(matched) = %d, expected 1", len(matched))
	}
	if matched[0].ID != 1 {
		t.Errorf("matched[0].ID = %d, expected 1", matched[0].ID)
	}
}

func TestMatchMentions_CaseInsensitive(t *testing.T) {
	matched := matchMentions("ping @jane doe", testRoster())

	if len(matched) != 1 {
		t.Fatalf("len(matched) = %d, expected 1", len(matched))
	}
	if matched[0].ID != 1 {
		t.Errorf("matched[0].ID = %d, expected 1", matched[0].ID)
	}
}

func TestMatchMentions_FirstRosterMatchWinsOnDuplicateNames(t *testing.T) {
	// Users 1 and 4 share the full name "Jane Doe".
	matched := matchMentions("@Jane Doe", testRoster())

	if len(matched) != 1 {
		t.Fatalf("len(matched) = %d, expected 1", len(matched))
	}
	if matched[0].ID != 1 {
		t.Errorf("matched[0].ID = %d, expected 1 (first roster match)", matched[0].ID)
	}
}

func TestMatchMentions_MultipleDistinctUsers(t *testing.T) {
	matched := matchMentions("@Jane Doe and @Bob Smith please", testRoster())

	if len(matched) != 2 {
		t.Fatalf("len(matched) = %d, expected 2", len(matched))
	}
	if matched[0].ID != 1 || matched[1].ID != 2 {
		t.Errorf("matched IDs = %d,%d, expected 1,2", matched[0].ID, matched[1].ID)
	}
}

func TestMatchMentions_RepeatedMentionYieldsOneEntry(t *testing.T) {
	matched := matchMentions("@Jane Doe again @Jane Doe", testRoster())

	if len(matched) != 1 {
		t.Errorf("len(matched) = %d, expected 1", len(matched))
	}
}

func TestMatchMentions_NicknameFallback(t *testing.T) {
	matched := matchMentions("hey @Cher", testRoster())

	if len(matched) != 1 {
		t.Fatalf("len(matched) = %d, expected 1", len(matched))
	}
	if matched[0].ID != 3 {
		t.Errorf("matched[0].ID = %d, expected 3", matched[0].ID)
	}
}

func TestMatchMentions_NoMatch(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "unknown name",
			content: "@Nobody Here",
		},
		{
			name:    "partial name is not matched",
			content: "@Jane",
		},
		{
			name:    "no mention token",
			content: "Jane Doe should see this",
		},
		{
			name:    "empty content",
			content: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if matched := matchMentions(tt.content, testRoster()); len(matched) != 0 {
				t.Errorf("len(matched) = %d, expected 0", len(matched))
			}
		})
	}
}

func TestMatchMentions_CapturesAtMostTwoWords(t *testing.T) {
	// The regex grabs two words, so a trailing word changes the
	// candidate and the match fails. Known heuristic limitation.
	roster := []models.User{{ID: 9, Username: "jane", FirstName: "Jane"}}

	if matched := matchMentions("@Jane", roster); len(matched) != 1 {
		t.Errorf("single-word mention should match, got %d", len(matched))
	}
	if matched := matchMentions("@Jane hello", roster); len(matched) != 0 {
		t.Errorf("two-word capture should not match single-word name, got %d", len(matched))
	}
}

func TestMentionPattern_Captures(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected []string
	}{
		{
			name:     "two word capture",
			content:  "@Jane Doe",
			expected: []string{"Jane Doe"},
		},
		{
			name:     "stops at punctuation",
			content:  "@Jane, hello",
			expected: []string{"Jane"},
		},
		{
			name:     "multiple tokens",
			content:  "@Jane Doe meet @Bob Smith",
			expected: []string{"Jane Doe", "Bob Smith"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			captures := mentionPattern.FindAllStringSubmatch(tt.content, -1)
			if len(captures) != len(tt.expected) {
				t.Fatalf("len(captures) = %d, expected %d", len(captures), len(tt.expected))
			}
			for i, want := range tt.expected {
				if captures[i][1] != want {
					t.Errorf("captures[%d] = %q, expected %q", i, captures[i][1], want)
				}
			}
		})
	}
}
