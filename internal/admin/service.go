package admin

import (
	"context"
	"crypto/subtle"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-notes/internal/logging"
	"github.com/goliatone/go-notes/pkg/interfaces"
)

// DefaultUsername is used when no admin username is configured.
const DefaultUsername = "admin"

// Login results reported to the Observer.
const (
	LoginSucceeded = "success"
	LoginFailed    = "failure"
)

// Config configures the admin backend.
type Config struct {
	Username          string
	Password          string
	DataRoot          string
	SessionTTL        time.Duration
	OperationLogLimit int
}

// Observer receives admin activity for metrics.
type Observer interface {
	ObserveLogin(result string)
	ObserveOperation(kind string)
}

type noopObserver struct{}

func (noopObserver) ObserveLogin(string)     {}
func (noopObserver) ObserveOperation(string) {}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the module logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver reports logins and operations to observer.
func WithObserver(observer Observer) Option {
	return func(s *Service) {
		if observer != nil {
			s.observer = observer
		}
	}
}

// WithOperationStore replaces the default operations.json store.
func WithOperationStore(store OperationStore) Option {
	return func(s *Service) {
		s.store = store
	}
}

// Service authenticates the single admin account and keeps the audit log.
type Service struct {
	username  string
	password  string
	generated bool
	dataRoot  string

	sessions *SessionStore
	ops      *OperationLog
	store    OperationStore
	logger   interfaces.Logger
	observer Observer

	background sync.WaitGroup
}

// NewService validates cfg. A configured password that fails the policy is
// an error; an empty one is replaced by a generated password that is logged
// once at WARN level.
func NewService(cfg Config, opts ...Option) (*Service, error) {
	s := &Service{
		username: strings.TrimSpace(cfg.Username),
		password: cfg.Password,
		dataRoot: cfg.DataRoot,
		logger:   logging.NoOp(),
		observer: noopObserver{},
	}
	if s.username == "" {
		s.username = DefaultUsername
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.password != "" {
		if err := ValidatePassword(s.password); err != nil {
			return nil, err
		}
	} else {
		generated, err := GeneratePassword()
		if err != nil {
			return nil, storageError(err, "generate admin password")
		}
		s.password = generated
		s.generated = true
		s.logger.Warn("admin.password.generated",
			"username", s.username,
			"password", generated,
			"hint", "set ADMIN_PASSWORD to keep a stable password across restarts",
		)
	}

	var sessionsPath string
	if s.dataRoot != "" {
		sessionsPath = filepath.Join(s.dataRoot, SessionsFileName)
		if s.store == nil {
			s.store = NewFileOperationStore(filepath.Join(s.dataRoot, OperationsFileName))
		}
	}
	s.sessions = NewSessionStore(sessionsPath, cfg.SessionTTL)
	s.ops = NewOperationLog(s.store, cfg.OperationLogLimit)
	return s, nil
}

// Start creates the data root and loads persisted sessions and operations.
func (s *Service) Start(ctx context.Context) error {
	if s.dataRoot != "" {
		if err := os.MkdirAll(s.dataRoot, 0o755); err != nil {
			return storageError(err, "create admin data root")
		}
	}
	if err := s.sessions.Load(); err != nil {
		return err
	}
	if err := s.ops.Load(ctx); err != nil {
		return err
	}
	s.logger.Info("admin.state.loaded", "sessions", s.sessions.Len(), "operations", len(s.ops.Recent(0)))
	return nil
}

// Close waits for background session writes.
func (s *Service) Close() error {
	s.background.Wait()
	return nil
}

// Username returns the admin account name.
func (s *Service) Username() string { return s.username }

// PasswordGenerated reports whether no password was configured.
func (s *Service) PasswordGenerated() bool { return s.generated }

// SessionTTL returns the sliding session lifetime.
func (s *Service) SessionTTL() time.Duration { return s.sessions.TTL() }

// Sessions exposes the session store.
func (s *Service) Sessions() *SessionStore { return s.sessions }

func (s *Service) persistInBackground() {
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		if err := s.sessions.Persist(); err != nil {
			s.logger.Error("admin.sessions.persist_failed", "error", err)
		}
	}()
}

// Login checks credentials and opens a session.
func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	username = strings.TrimSpace(username)
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username))
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.password))
	if userOK&passOK != 1 {
		s.observer.ObserveLogin(LoginFailed)
		logging.WithAdminUser(s.logger, username).Warn("admin.login.rejected")
		return Session{}, ErrInvalidCredentials
	}

	session, err := s.sessions.Create(username)
	if err != nil {
		return Session{}, err
	}
	if err := s.sessions.Persist(); err != nil {
		return Session{}, err
	}
	if _, err := s.Record(ctx, OperationLogin, "-", "signed in", username); err != nil {
		return Session{}, err
	}

	s.observer.ObserveLogin(LoginSucceeded)
	logging.WithAdminUser(s.logger, username).Info("admin.login.success")
	return session, nil
}

// Logout ends the session for token. It reports whether a session existed.
func (s *Service) Logout(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	session, existed := s.sessions.Delete(token)
	if err := s.sessions.Persist(); err != nil {
		return existed, err
	}
	if existed && session.Username != "" {
		if _, err := s.Record(ctx, OperationLogout, "-", "signed out", session.Username); err != nil {
			return existed, err
		}
		logging.WithAdminUser(s.logger, session.Username).Info("admin.logout")
	}
	return existed, nil
}

// Session returns the active session for token without extending it.
func (s *Service) Session(token string) (Session, bool) {
	dirty := s.sessions.Cleanup()
	session, ok, expired := s.sessions.Active(token)
	if dirty || expired {
		s.persistInBackground()
	}
	return session, ok
}

// Authorize validates token and slides its expiry.
func (s *Service) Authorize(_ context.Context, token string) (Session, error) {
	if _, ok := s.Session(token); !ok {
		return Session{}, ErrSessionRequired
	}
	session, ok := s.sessions.Touch(token)
	if !ok {
		return Session{}, ErrSessionRequired
	}
	s.persistInBackground()
	return session, nil
}

// Record appends an operation to the audit log.
func (s *Service) Record(ctx context.Context, kind, slug, detail, username string) (interfaces.Operation, error) {
	op, err := s.ops.Append(ctx, kind, slug, detail, username)
	if err != nil {
		s.logger.Error("admin.operation.persist_failed", "type", op.Type, "error", err)
		return op, err
	}
	s.observer.ObserveOperation(op.Type)
	return op, nil
}

// Operations returns the page shown by the admin API, newest first.
func (s *Service) Operations() []interfaces.Operation {
	return s.ops.Recent(OperationsPageSize)
}

// Sweep drops expired sessions and persists the store when it changed.
func (s *Service) Sweep(context.Context) error {
	if !s.sessions.Cleanup() {
		return nil
	}
	s.logger.Debug("admin.sessions.swept", "remaining", s.sessions.Len())
	return s.sessions.Persist()
}
