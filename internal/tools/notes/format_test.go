package notes

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{"empty is plain", "", FormatPlain},
		{"plain text", "web server for the shop frontend", FormatPlain},
		{"html tag", "<h1>Web Server</h1><p>Production</p>", FormatHTML},
		{"markdown header", "# Web Server\nProduction frontend", FormatMarkdown},
		{"markdown bold", "Owner: **platform team**", FormatMarkdown},
		{"markdown list", "- nginx\n- postgres", FormatMarkdown},
		{"markdown ordered list", "1. deploy\n2. verify", FormatMarkdown},
		{"markdown link", "See [runbook](https://wiki.example.com/runbook)", FormatMarkdown},
		{"markdown inline code", "Listens on `0.0.0.0:8080`", FormatMarkdown},
		{"html wins over markdown", "<div># not a header</div>", FormatHTML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectFormat(tt.content))
		})
	}
}

func TestSecretReferences(t *testing.T) {
	content := "DB: secret://vault/prod/db-password\nAPI: secret://vault/prod/api\nDB again: secret://vault/prod/db-password"
	refs := SecretReferences(content)
	assert.Equal(t, []string{"vault/prod/db-password", "vault/prod/api"}, refs)

	assert.Empty(t, SecretReferences("no references here"))
}

func TestValidate(t *testing.T) {
	t.Run("clean content", func(t *testing.T) {
		warnings, secrets := Validate("# Web Server\nOwner: platform team")
		assert.Empty(t, warnings)
		assert.Empty(t, secrets)
	})

	t.Run("plaintext password is flagged by keyword only", func(t *testing.T) {
		_, secrets := Validate("login info\npassword: hunter2")
		assert.Equal(t, []string{"password"}, secrets)
		assert.NotContains(t, strings.Join(secrets, " "), "hunter2")
	})

	t.Run("api key and token are flagged", func(t *testing.T) {
		_, secrets := Validate("api_key = abc123\ntoken: xyz")
		assert.Contains(t, secrets, "api_key")
		assert.Contains(t, secrets, "token")
	})

	t.Run("secret references are not flagged", func(t *testing.T) {
		_, secrets := Validate("password: secret://vault/prod/db-password")
		assert.Empty(t, secrets)
	})

	t.Run("oversized content warns", func(t *testing.T) {
		warnings, secrets := Validate(strings.Repeat("a", maxNoteBytes+1))
		assert.Empty(t, secrets)
		assert.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], "64KB")
	})
}
