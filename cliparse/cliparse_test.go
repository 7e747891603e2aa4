// cliparse/cliparse_test.go
package cliparse

import (
	"testing"
	"time"
)

func TestParseFlags_EnvVars(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("ADMIN_KEY_SALT", "test-salt")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("EMAIL_FROM", "secretary@example.com")
	t.Setenv("EMAIL_PASSWORD", "hunter2")
	t.Setenv("MAIL_TIMEOUT", "5s")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != DatabaseSQLite {
		t.Errorf("expected default database type sqlite, got %s", cfg.DatabaseType)
	}
	if cfg.BaseURL != "http://localhost:9000" {
		t.Errorf("expected derived base URL, got %s", cfg.BaseURL)
	}
	if cfg.SMTPPort != 587 {
		t.Errorf("expected default SMTP port 587, got %d", cfg.SMTPPort)
	}
	if cfg.SMTPUsername != "secretary@example.com" {
		t.Errorf("SMTP username should default to sender, got %s", cfg.SMTPUsername)
	}
	if cfg.MailTimeout != 5*time.Second {
		t.Errorf("expected mail timeout 5s, got %s", cfg.MailTimeout)
	}
	if !cfg.MailEnabled() {
		t.Error("expected mail to be enabled")
	}
	if cfg.TrustProxy {
		t.Error("proxy headers should be ignored by default")
	}
}

func TestParseFlags_TrustProxy(t *testing.T) {
	t.Setenv("ADMIN_KEY_SALT", "s")

	t.Setenv("TRUST_PROXY", "true")
	cfg, err := ParseFlags(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.TrustProxy {
		t.Error("expected TRUST_PROXY=true to enable proxy headers")
	}

	t.Setenv("TRUST_PROXY", "")
	cfg, err = ParseFlags([]string{"-trust-proxy"})
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.TrustProxy {
		t.Error("expected -trust-proxy to enable proxy headers")
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("BASE_URL", "https://env.example.com")

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "-admin-salt", "s1", "-base-url", "https://vote.example.com/"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.BaseURL != "https://vote.example.com" {
		t.Errorf("expected trimmed CLI base URL, got %s", cfg.BaseURL)
	}
	if cfg.MailEnabled() {
		t.Error("mail should be disabled without SMTP host")
	}
}

func TestParseFlags_RenderExternalURL(t *testing.T) {
	t.Setenv("ADMIN_KEY_SALT", "s")
	t.Setenv("RENDER_EXTERNAL_URL", "https://meeting-vote.onrender.com")

	cfg, err := ParseFlags(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BaseURL != "https://meeting-vote.onrender.com" {
		t.Errorf("expected Render URL, got %s", cfg.BaseURL)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"missing admin salt", map[string]string{}, nil},
		{"postgres without URL", map[string]string{"ADMIN_KEY_SALT": "s", "DATABASE_TYPE": "postgres"}, nil},
		{"unknown database type", map[string]string{"ADMIN_KEY_SALT": "s"}, []string{"-t", "mysql"}},
		{"bad port", map[string]string{"ADMIN_KEY_SALT": "s", "PORT": "abc"}, nil},
		{"smtp without sender", map[string]string{"ADMIN_KEY_SALT": "s", "SMTP_HOST": "smtp.example.com"}, nil},
		{"bad mail timeout", map[string]string{"ADMIN_KEY_SALT": "s", "MAIL_TIMEOUT": "soon"}, nil},
		{"bad trust proxy", map[string]string{"ADMIN_KEY_SALT": "s", "TRUST_PROXY": "maybe"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ADMIN_KEY_SALT", "")
			t.Setenv("DATABASE_URL", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := ParseFlags(tt.args); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
