package tokens

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ecmwf/ecflow-light/request"
)

func writeTokens(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "api-tokens.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultPath(t *testing.T) {
	env := request.NewEnvironment().With(request.EnvHome, "/home/user")
	assert.Equal(t, "/home/user/.ecflowrc/ssl/api-tokens.json", DefaultPath(env))
	assert.Equal(t, "", DefaultPath(request.NewEnvironment()))
}

func TestStore_Secret(t *testing.T) {
	path := writeTokens(t, `[
  {"url": "https://localhost:8443/v1", "key": "abc123", "email": "ops@example.int"},
  {"url": "https://other:8443/v1", "key": "def456", "email": "dev@example.int"}
]`)
	store := NewStore(path, zap.NewNop())

	tok, ok := store.Secret("https://localhost:8443/v1")
	require.True(t, ok)
	assert.Equal(t, Token{URL: "https://localhost:8443/v1", Key: "abc123", Email: "ops@example.int"}, tok)

	// exact match only
	_, ok = store.Secret("https://localhost:8443/v1/")
	assert.False(t, ok)
	_, ok = store.Secret("http://localhost:8443/v1")
	assert.False(t, ok)
}

func TestStore_MissingOrMalformedFile(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{name: "no home", path: ""},
		{name: "missing file", path: filepath.Join(t.TempDir(), "absent.json")},
		{name: "malformed file", path: writeTokens(t, `{"url": "not an array"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := NewStore(tt.path, nil).Secret("https://localhost:8443/v1")
			assert.False(t, ok)
		})
	}
}

func TestStore_LoadsOnce(t *testing.T) {
	path := writeTokens(t, `[{"url": "https://h:1/v1", "key": "k", "email": "e"}]`)
	store := NewStore(path, nil)

	_, ok := store.Secret("https://h:1/v1")
	require.True(t, ok)

	require.NoError(t, os.Remove(path))
	_, ok = store.Secret("https://h:1/v1")
	assert.True(t, ok)
}

func TestStore_WarnsOnExpiredJWT(t *testing.T) {
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	valid, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	path := writeTokens(t, `[
  {"url": "https://expired:1/v1", "key": "`+expired+`", "email": "e"},
  {"url": "https://valid:1/v1", "key": "`+valid+`", "email": "e"}
]`)
	core, logs := observer.New(zapcore.WarnLevel)
	store := NewStore(path, zap.New(core))

	tok, ok := store.Secret("https://expired:1/v1")
	require.True(t, ok)
	assert.Equal(t, expired, tok.Key)
	assert.Equal(t, 1, logs.FilterMessage("secret token has expired").Len())

	_, ok = store.Secret("https://valid:1/v1")
	require.True(t, ok)
	assert.Equal(t, 1, logs.FilterMessage("secret token has expired").Len())
}

func TestToken_StringMasksKey(t *testing.T) {
	tok := Token{URL: "https://h:1/v1", Key: "supersecret", Email: "e@x"}
	assert.NotContains(t, tok.String(), "supersecret")
	assert.Contains(t, tok.String(), "***")
}
