package alertrule

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rulesYAML = `rules:
  entry-hit:
    alert_type: entry target
    channels: [email, sms]
    test_user_only: true
    schema:
      type: object
      required: [entryLevel, entryThreshold]
      properties:
        entryLevel:
          type: integer
          minimum: 1
          maximum: 3
        entryThreshold:
          type: number
  stop-warning:
    alert_type: stop warning
    channels: [email]
`

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "alert_rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewRegistry(t *testing.T) {
	r, err := NewRegistry(writeRules(t, rulesYAML))
	require.NoError(t, err)

	snap := r.Snapshot()
	assert.Equal(t, int64(1), snap.Version)
	assert.Len(t, snap.Rules, 2)

	rule, ok := r.Rule("entry-hit")
	require.True(t, ok)
	assert.Equal(t, "entry target", rule.AlertType)
	assert.Equal(t, []string{"email", "sms"}, rule.Channels)
	assert.True(t, rule.TestUserOnly)

	_, ok = r.Rule("profit-hit")
	assert.False(t, ok)
}

func TestNewRegistry_BadPath(t *testing.T) {
	_, err := NewRegistry("")
	assert.Error(t, err)
	_, err = NewRegistry(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidatePayload(t *testing.T) {
	r, err := NewRegistry(writeRules(t, rulesYAML))
	require.NoError(t, err)

	t.Run("valid payload passes", func(t *testing.T) {
		assert.NoError(t, r.ValidatePayload("entry-hit", []byte(`{"entryLevel": 1, "entryThreshold": 100.5}`)))
	})

	t.Run("missing required field rejected", func(t *testing.T) {
		assert.Error(t, r.ValidatePayload("entry-hit", []byte(`{"entryLevel": 1}`)))
	})

	t.Run("level outside ladder rejected", func(t *testing.T) {
		assert.Error(t, r.ValidatePayload("entry-hit", []byte(`{"entryLevel": 4, "entryThreshold": 100}`)))
	})

	t.Run("property key case preserved", func(t *testing.T) {
		// camelCase property names must survive loading untouched, or
		// their constraints silently match nothing
		rule, ok := r.Rule("entry-hit")
		require.True(t, ok)
		props, ok := rule.Schema["properties"].(map[string]interface{})
		require.True(t, ok)
		assert.Contains(t, props, "entryLevel")
		assert.Contains(t, props, "entryThreshold")
		assert.NotContains(t, props, "entrylevel")

		assert.Error(t, r.ValidatePayload("entry-hit", []byte(`{"entryLevel": 1, "entryThreshold": "not a number"}`)))
	})

	t.Run("malformed JSON rejected", func(t *testing.T) {
		assert.Error(t, r.ValidatePayload("entry-hit", []byte(`{`)))
	})

	t.Run("kind without schema passes", func(t *testing.T) {
		assert.NoError(t, r.ValidatePayload("stop-warning", []byte(`{"anything": true}`)))
	})

	t.Run("unknown kind passes", func(t *testing.T) {
		assert.NoError(t, r.ValidatePayload("mystery", []byte(`{}`)))
	})
}

func TestNewRegistry_RejectsBadSchema(t *testing.T) {
	bad := `rules:
  entry-hit:
    alert_type: entry target
    schema:
      type: 42
`
	_, err := NewRegistry(writeRules(t, bad))
	assert.Error(t, err)
}

func TestDefaultRule(t *testing.T) {
	assert.Equal(t, "entry target", DefaultRule("entry-hit").AlertType)
	assert.Equal(t, "profit target", DefaultRule("profit-hit").AlertType)
	assert.Equal(t, "stop price", DefaultRule("stop-out").AlertType)
	assert.Equal(t, "stop warning", DefaultRule("stop-warning").AlertType)
	assert.Equal(t, "entry target", DefaultRule("anything-else").AlertType)

	rule := DefaultRule("stop-out")
	assert.Equal(t, []string{"email", "sms"}, rule.Channels)
	assert.True(t, rule.TestUserOnly)
}
