package admin

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-notes/internal/posts"
)

// DefaultSessionTTL is the sliding lifetime of an admin session.
const DefaultSessionTTL = 8 * time.Hour

// SessionsFileName is the session snapshot inside the admin data root.
const SessionsFileName = "sessions.json"

// Session is an authenticated admin session.
type Session struct {
	Token     string
	Username  string
	ExpiresAt time.Time
}

type sessionRecord struct {
	Token     string `json:"token"`
	Username  string `json:"username"`
	ExpiresAt int64  `json:"expiresAt"`
}

// SessionStore keeps sessions in memory and snapshots them to a JSON file.
// An empty path disables persistence.
type SessionStore struct {
	path string
	ttl  time.Duration
	now  func() time.Time

	// writeMu is always taken before mu.
	writeMu sync.Mutex

	mu       sync.Mutex
	sessions map[string]sessionRecord
}

// NewSessionStore returns an empty store. ttl <= 0 uses DefaultSessionTTL.
func NewSessionStore(path string, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		path:     path,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]sessionRecord),
	}
}

// TTL returns the session lifetime.
func (s *SessionStore) TTL() time.Duration { return s.ttl }

func (s *SessionStore) nowMillis() int64 {
	return s.now().UnixMilli()
}

// Load replaces the in-memory sessions with the file contents, dropping
// malformed and expired entries, then rewrites the file.
func (s *SessionStore) Load() error {
	records, err := s.readFile()
	if err != nil {
		return err
	}

	now := s.nowMillis()
	s.mu.Lock()
	s.sessions = make(map[string]sessionRecord, len(records))
	for _, record := range records {
		record.Token = strings.TrimSpace(record.Token)
		record.Username = strings.TrimSpace(record.Username)
		if record.Token == "" || record.Username == "" || record.ExpiresAt <= now {
			continue
		}
		s.sessions[record.Token] = record
	}
	s.mu.Unlock()

	return s.Persist()
}

func (s *SessionStore) readFile() ([]sessionRecord, error) {
	if s.path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, storageError(err, "read sessions")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		// Not an array: treat as no sessions.
		return nil, nil
	}
	records := make([]sessionRecord, 0, len(items))
	for _, item := range items {
		var record sessionRecord
		if json.Unmarshal(item, &record) == nil {
			records = append(records, record)
		}
	}
	return records, nil
}

// Persist writes the current sessions atomically. writeMu is held from
// snapshot to rename so a later write never carries an older snapshot.
func (s *SessionStore) Persist() error {
	if s.path == "" {
		return nil
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	records := make([]sessionRecord, 0, len(s.sessions))
	for _, record := range s.sessions {
		records = append(records, record)
	}
	s.mu.Unlock()
	sort.Slice(records, func(i, j int) bool { return records[i].Token < records[j].Token })

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return storageError(err, "encode sessions")
	}

	if err := posts.WriteFileAtomic(s.path, append(data, '\n')); err != nil {
		return storageError(err, "persist sessions")
	}
	return nil
}

// Create starts a session for username with a fresh 32-byte token.
func (s *SessionStore) Create(username string) (Session, error) {
	token, err := newToken()
	if err != nil {
		return Session{}, err
	}
	record := sessionRecord{
		Token:     token,
		Username:  username,
		ExpiresAt: s.now().Add(s.ttl).UnixMilli(),
	}
	s.mu.Lock()
	s.sessions[token] = record
	s.mu.Unlock()
	return toSession(record), nil
}

// Active returns the session for token. An expired session is removed and
// dirty reports that the store changed.
func (s *SessionStore) Active(token string) (session Session, ok bool, dirty bool) {
	if token == "" {
		return Session{}, false, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	record, found := s.sessions[token]
	if !found {
		return Session{}, false, false
	}
	if record.ExpiresAt <= s.nowMillis() {
		delete(s.sessions, token)
		return Session{}, false, true
	}
	return toSession(record), true, false
}

// Touch slides the expiry of an existing session.
func (s *SessionStore) Touch(token string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, found := s.sessions[token]
	if !found {
		return Session{}, false
	}
	record.ExpiresAt = s.now().Add(s.ttl).UnixMilli()
	s.sessions[token] = record
	return toSession(record), true
}

// Delete removes token and returns the session it held, if any.
func (s *SessionStore) Delete(token string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, found := s.sessions[token]
	if !found {
		return Session{}, false
	}
	delete(s.sessions, token)
	return toSession(record), true
}

// Cleanup drops expired sessions and reports whether any were removed.
func (s *SessionStore) Cleanup() bool {
	now := s.nowMillis()
	s.mu.Lock()
	defer s.mu.Unlock()
	dirty := false
	for token, record := range s.sessions {
		if record.ExpiresAt <= now {
			delete(s.sessions, token)
			dirty = true
		}
	}
	return dirty
}

// Len returns the number of stored sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func toSession(record sessionRecord) Session {
	return Session{
		Token:     record.Token,
		Username:  record.Username,
		ExpiresAt: time.UnixMilli(record.ExpiresAt),
	}
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", storageError(err, "generate session token")
	}
	return hex.EncodeToString(buf), nil
}
