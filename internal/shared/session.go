package shared

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SortPreferenceKey stores the viewer's last chosen grid ordering.
const SortPreferenceKey = "inventory.sort"

// createdField marks a persisted session even when it carries no values yet.
const createdField = "_created"

// SessionManager keeps cookie-identified sessions in Redis hashes with a sliding expiry.
type SessionManager struct {
	client     *redis.Client
	cookieName string
	ttl        time.Duration
	secure     bool
}

// Session holds per-viewer values. Its ID also keys the viewer's mounted dashboard.
type Session struct {
	ID      string
	values  map[string]string
	changed map[string]struct{}
	isNew   bool
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(client *redis.Client, cookieName string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		client:     client,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
	}
}

// Load returns the session named by the request cookie, or a fresh one. Cookies that are not
// UUIDs are ignored.
func (sm *SessionManager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return newSession(uuid.NewString()), nil
		}
		return nil, err
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		return newSession(uuid.NewString()), nil
	}

	stored, err := sm.client.HGetAll(ctx, sm.redisKey(cookie.Value)).Result()
	if err != nil {
		return nil, fmt.Errorf("shared: load session: %w", err)
	}
	if len(stored) == 0 {
		// Expired or evicted; keep the ID so the viewer's dashboard survives.
		return newSession(cookie.Value), nil
	}
	delete(stored, createdField)
	return &Session{ID: cookie.Value, values: stored}, nil
}

// Commit writes changed values, slides the expiry and refreshes the cookie.
func (sm *SessionManager) Commit(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	if sess == nil {
		return nil
	}
	key := sm.redisKey(sess.ID)
	_, err := sm.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if sess.isNew {
			pipe.HSetNX(ctx, key, createdField, time.Now().UTC().Format(time.RFC3339))
		}
		if len(sess.changed) > 0 {
			fields := make([]any, 0, 2*len(sess.changed))
			for name := range sess.changed {
				fields = append(fields, name, sess.values[name])
			}
			pipe.HSet(ctx, key, fields...)
		}
		pipe.Expire(ctx, key, sm.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("shared: commit session: %w", err)
	}
	sess.changed = nil
	sess.isNew = false

	http.SetCookie(w, &http.Cookie{
		Name:     sm.cookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(sm.ttl),
	})
	return nil
}

// TTL exposes the configured session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

// CookieName returns the cookie identifier used for sessions.
func (sm *SessionManager) CookieName() string {
	return sm.cookieName
}

func (sm *SessionManager) redisKey(id string) string {
	return "carlux:session:" + id
}

func newSession(id string) *Session {
	return &Session{ID: id, values: make(map[string]string), isNew: true}
}

// Set stores a key-value pair; it is written on the next Commit.
func (s *Session) Set(key, value string) {
	if s.values == nil {
		s.values = make(map[string]string)
	}
	if current, ok := s.values[key]; ok && current == value {
		return
	}
	s.values[key] = value
	if s.changed == nil {
		s.changed = make(map[string]struct{})
	}
	s.changed[key] = struct{}{}
}

// Get retrieves a value.
func (s *Session) Get(key string) string {
	return s.values[key]
}

// IsNew reports whether the session has not been persisted yet.
func (s *Session) IsNew() bool {
	return s.isNew
}
