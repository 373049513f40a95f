package services

import (
	"crypto/tls"
	"fmt"
	"strconv"

	"github.com/go-ldap/ldap/v3"
	"github.com/sisgic/backend/internal/config"
	"gorm.io/gorm"
)

// LDAPService authenticates institutional accounts. Settings come from the
// ldap group in system_configs, falling back to the yaml config.
type LDAPService struct {
	configSvc *SystemConfigService
	fallback  *config.LDAPConfig
}

type LDAPUser struct {
	DN       string
	Username string
	Email    string
	FullName string
}

func NewLDAPService(db *gorm.DB, fallback *config.LDAPConfig) *LDAPService {
	return &LDAPService{
		configSvc: NewSystemConfigService(db),
		fallback:  fallback,
	}
}

func (s *LDAPService) settings() *config.LDAPConfig {
	cfg := *s.fallback
	if s.configSvc == nil {
		return &cfg
	}
	if v, err := s.configSvc.Get("ldap_enabled"); err == nil {
		cfg.Enabled = v == "true"
	}
	if v, err := s.configSvc.Get("ldap_host"); err == nil && v != "" {
		cfg.Host = v
	}
	if v, err := s.configSvc.Get("ldap_port"); err == nil {
		if port, perr := strconv.Atoi(v); perr == nil && port > 0 {
			cfg.Port = port
		}
	}
	if v, err := s.configSvc.Get("ldap_base_dn"); err == nil && v != "" {
		cfg.BaseDN = v
	}
	if v, err := s.configSvc.Get("ldap_bind_dn"); err == nil && v != "" {
		cfg.BindDN = v
	}
	if v, err := s.configSvc.Get("ldap_bind_password"); err == nil && v != "" {
		cfg.BindPassword = v
	}
	if v, err := s.configSvc.Get("ldap_user_filter"); err == nil && v != "" {
		cfg.UserFilter = v
	}
	if v, err := s.configSvc.Get("ldap_use_ssl"); err == nil {
		cfg.UseSSL = v == "true"
	}
	return &cfg
}

// Enabled reports whether LDAP authentication is switched on.
func (s *LDAPService) Enabled() bool {
	return s.settings().Enabled
}

// Authenticate verifies username/password against the LDAP directory and
// returns the matched entry's identity attributes.
func (s *LDAPService) Authenticate(username, password string) (*LDAPUser, error) {
	cfg := s.settings()
	if !cfg.Enabled {
		return nil, fmt.Errorf("LDAP is not enabled")
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	var conn *ldap.Conn
	var err error

	if cfg.UseSSL {
		conn, err = ldap.DialTLS("tcp", addr, &tls.Config{InsecureSkipVerify: true})
	} else {
		conn, err = ldap.Dial("tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to LDAP server: %w", err)
	}
	defer conn.Close()

	if cfg.BindDN != "" {
		if err := conn.Bind(cfg.BindDN, cfg.BindPassword); err != nil {
			return nil, fmt.Errorf("failed to bind with service account: %w", err)
		}
	}

	searchFilter := fmt.Sprintf(cfg.UserFilter, ldap.EscapeFilter(username))
	searchRequest := ldap.NewSearchRequest(
		cfg.BaseDN,
		ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 0, 0, false,
		searchFilter,
		[]string{"dn", "cn", "mail", "uid", "sAMAccountName"},
		nil,
	)

	result, err := conn.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("LDAP search failed: %w", err)
	}

	if len(result.Entries) == 0 {
		return nil, fmt.Errorf("user not found in LDAP")
	}
	if len(result.Entries) > 1 {
		return nil, fmt.Errorf("multiple users found in LDAP")
	}

	entry := result.Entries[0]

	// Bind as the user to verify the password
	if err := conn.Bind(entry.DN, password); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	user := &LDAPUser{
		DN:       entry.DN,
		Username: entry.GetAttributeValue("uid"),
		Email:    entry.GetAttributeValue("mail"),
		FullName: entry.GetAttributeValue("cn"),
	}
	// Active Directory stores the login in sAMAccountName
	if user.Username == "" {
		user.Username = entry.GetAttributeValue("sAMAccountName")
	}
	if user.Username == "" {
		user.Username = username
	}
	return user, nil
}
