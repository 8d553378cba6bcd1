// Package tokens loads the bearer credentials used by the HTTP dispatcher.
//
// Credentials live in $HOME/.ecflowrc/ssl/api-tokens.json as a JSON array of
// {"url", "key", "email"} objects and are matched exactly against the
// server base URL, e.g. "https://host:8443/v1".
package tokens

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/ecmwf/ecflow-light/request"
)

// Token is one API credential.
type Token struct {
	URL   string `json:"url"`
	Key   string `json:"key"`
	Email string `json:"email"`
}

func (t Token) String() string {
	if t.Key == "" {
		return fmt.Sprintf("Token{URL:%s, Email:%s}", t.URL, t.Email)
	}
	return fmt.Sprintf("Token{URL:%s, Email:%s, Key:***}", t.URL, t.Email)
}

// DefaultPath returns the token file under the HOME recorded in env, or ""
// when HOME is not known.
func DefaultPath(env request.Environment) string {
	home, ok := env.Lookup(request.EnvHome)
	if !ok || home.Value == "" {
		return ""
	}
	return filepath.Join(home.Value, ".ecflowrc", "ssl", "api-tokens.json")
}

// Store is a lazily loaded, read-only token table. Safe for concurrent use.
type Store struct {
	path   string
	logger *zap.Logger
	now    func() time.Time

	once   sync.Once
	tokens []Token
}

// NewStore creates a Store reading path on first use.
func NewStore(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		path:   path,
		logger: logger.With(zap.String("component", "tokens")),
		now:    time.Now,
	}
}

// Secret returns the token registered for url. A missing file, a malformed
// file or an unknown url all mean "no token".
func (s *Store) Secret(url string) (Token, bool) {
	s.once.Do(s.load)

	for _, t := range s.tokens {
		if t.URL == url {
			s.checkExpiry(t)
			return t, true
		}
	}
	s.logger.Debug("no secret token found", zap.String("url", url))
	return Token{}, false
}

func (s *Store) load() {
	if s.path == "" {
		s.logger.Debug("token file location unknown, HOME not set")
		return
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.logger.Debug("unable to open token file", zap.String("path", s.path), zap.Error(err))
		return
	}
	var tokens []Token
	if err := json.Unmarshal(data, &tokens); err != nil {
		s.logger.Error("unable to parse token file", zap.String("path", s.path), zap.Error(err))
		return
	}
	s.tokens = tokens
	s.logger.Debug("loaded secret tokens", zap.String("path", s.path), zap.Int("count", len(tokens)))
}

// checkExpiry warns about JWT keys whose exp claim has passed. The key is
// still returned; the server has the final word.
func (s *Store) checkExpiry(t Token) {
	parsed, _, err := jwt.NewParser().ParseUnverified(t.Key, jwt.MapClaims{})
	if err != nil {
		return
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return
	}
	if exp.Before(s.now()) {
		s.logger.Warn("secret token has expired",
			zap.String("url", t.URL),
			zap.String("email", t.Email),
			zap.Time("expired_at", exp.Time))
	}
}
