package services

import (
	"testing"

	"github.com/sisgic/backend/internal/models"
)

func TestSystemConfig_GetSetRoundTrip(t *testing.T) {
	db := newTestDB(t)
	svc := NewSystemConfigService(db)

	if err := svc.Set("log_retention_days", "30"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, err := svc.Get("log_retention_days")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != "30" {
		t.Errorf("value = %q, want %q", value, "30")
	}

	// Set on an existing key overwrites
	if err := svc.Set("log_retention_days", "90"); err != nil {
		t.Fatalf("second Set failed: %v", err)
	}
	if got := svc.GetWithDefault("log_retention_days", "7"); got != "90" {
		t.Errorf("value = %q, want %q", got, "90")
	}
}

func TestSystemConfig_GetWithDefault(t *testing.T) {
	db := newTestDB(t)
	svc := NewSystemConfigService(db)

	if got := svc.GetWithDefault("missing_key", "fallback"); got != "fallback" {
		t.Errorf("missing key should return the default, got %q", got)
	}
}

func TestSystemConfig_UpdateGroupRestrictedToGroupKeys(t *testing.T) {
	db := newTestDB(t)
	svc := NewSystemConfigService(db)

	db.Create(&models.SystemConfig{Key: "email_host", Group: "email"})
	db.Create(&models.SystemConfig{Key: "email_port", Group: "email", Value: "587"})
	db.Create(&models.SystemConfig{Key: "ldap_host", Group: "ldap"})

	err := svc.UpdateGroup("email", map[string]string{
		"email_host": "smtp.example.edu",
	})
	if err != nil {
		t.Fatalf("UpdateGroup failed: %v", err)
	}

	if got, _ := svc.Get("email_host"); got != "smtp.example.edu" {
		t.Errorf("email_host = %q, want updated value", got)
	}
	// Untouched keys keep their values
	if got, _ := svc.Get("email_port"); got != "587" {
		t.Errorf("email_port = %q, want %q", got, "587")
	}

	// Keys outside the group are rejected
	err = svc.UpdateGroup("email", map[string]string{
		"ldap_host": "evil.example.com",
	})
	if err == nil {
		t.Error("updating a key outside the group should fail")
	}
	if got, _ := svc.Get("ldap_host"); got == "evil.example.com" {
		t.Error("rejected update must not write")
	}
}
