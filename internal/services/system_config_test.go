package services

import (
	"errors"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestUpdateDigestConfig_RejectsBadTime(t *testing.T) {
	s := NewSystemConfigService(nil)

	for _, value := range []string{"25:00", "9:5", "nine", "18.30", ""} {
		err := s.UpdateDigestConfig(&UpdateDigestConfigRequest{Time: strPtr(value)})
		if err == nil {
			t.Errorf("UpdateDigestConfig with time %q should be rejected", value)
			continue
		}
		if !errors.Is(err, ErrBadDigestTime) {
			t.Errorf("time %q: error = %v, expected ErrBadDigestTime", value, err)
		}
	}
}

func TestUpdateDigestConfig_EmptyRequestIsNoop(t *testing.T) {
	s := NewSystemConfigService(nil)

	if err := s.UpdateDigestConfig(&UpdateDigestConfigRequest{}); err != nil {
		t.Errorf("empty update should write nothing, got %v", err)
	}
}

func TestUpdateLDAPConfig_EmptyPasswordKeepsCurrent(t *testing.T) {
	s := NewSystemConfigService(nil)

	// An empty bind password means "leave it alone", so nothing is
	// written and the nil db is never touched.
	err := s.UpdateLDAPConfig(&UpdateLDAPConfigRequest{BindPassword: strPtr("")})
	if err != nil {
		t.Errorf("UpdateLDAPConfig with blank password should be a noop, got %v", err)
	}
}

func TestUpdateLDAPConfig_EmptyRequestIsNoop(t *testing.T) {
	s := NewSystemConfigService(nil)

	if err := s.UpdateLDAPConfig(&UpdateLDAPConfigRequest{}); err != nil {
		t.Errorf("empty update should write nothing, got %v", err)
	}
}
