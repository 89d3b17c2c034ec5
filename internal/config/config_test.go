package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hal9000y/meetnotes/internal/config"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name        string
		environ     map[string]string
		expected    config.Config
		expectedErr error
	}{
		{
			name:    "defaults",
			environ: map[string]string{},
			expected: config.Config{
				GeminiModel:   "gemini-2.5-flash",
				EmailProvider: config.EmailProviderPostmark,
				DevMailDir:    "./data/mail",
			},
		},
		{
			name: "full",
			environ: map[string]string{
				"GEMINI_API_KEY":             "gk",
				"GEMINI_MODEL":               "gemini-2.5-pro",
				"EMAIL_PROVIDER":             "gmail",
				"FROM_EMAIL":                 "notes@example.com",
				"POSTMARK_SERVER_TOKEN":      "pst",
				"POSTMARK_ACCOUNT_TOKEN":     "pat",
				"OAUTH_GOOGLE_CLIENT_ID":     "cid",
				"OAUTH_GOOGLE_CLIENT_SECRET": "csec",
				"DEV_MAIL_DIR":               "/tmp/mail",
			},
			expected: config.Config{
				GeminiAPIKey:         "gk",
				GeminiModel:          "gemini-2.5-pro",
				EmailProvider:        config.EmailProviderGmail,
				FromEmail:            "notes@example.com",
				PostmarkServerToken:  "pst",
				PostmarkAccountToken: "pat",
				DevMailDir:           "/tmp/mail",
				OAuthClientID:        "cid",
				OAuthClientSecret:    "csec",
			},
		},
		{
			name:        "unknown provider",
			environ:     map[string]string{"EMAIL_PROVIDER": "carrier-pigeon"},
			expectedErr: config.ErrUnknownEmailProvider,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := config.Parse(tc.environ)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, cfg)
		})
	}
}

func unsetenv(t *testing.T, key string) {
	prev, ok := os.LookupEnv(key)
	require.NoError(t, os.Unsetenv(key))
	t.Cleanup(func() {
		if ok {
			_ = os.Setenv(key, prev)
		}
	})
}

func TestLoadEnvFile(t *testing.T) {
	unsetenv(t, "FROM_EMAIL")
	unsetenv(t, "EMAIL_PROVIDER")
	t.Setenv("GEMINI_API_KEY", "from-process")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"FROM_EMAIL=file@example.com\nGEMINI_API_KEY=from-file\nEMAIL_PROVIDER=dev\n",
	), 0600))

	cfg, err := config.Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "file@example.com", cfg.FromEmail)
	assert.Equal(t, "from-process", cfg.GeminiAPIKey)
	assert.Equal(t, config.EmailProviderDev, cfg.EmailProvider)

	_, present := os.LookupEnv("FROM_EMAIL")
	assert.False(t, present)
}

func TestLoadMissingEnvFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
