package auth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/introspection"
	"github.com/google/uuid"
	"github.com/natefinch/atomic"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/packlist/pkg/stream"
)

const (
	usersFile   = "users.yaml"
	sessionFile = "session.token"
	secretFile  = "secret.key"

	// ProviderPassword is the provider name of email/password accounts.
	ProviderPassword = "password"
)

// LocalConfig configures a Local provider.
type LocalConfig struct {
	Dir        string        // holds users.yaml, session.token and secret.key
	Federated  Federated     // optional
	SessionTTL time.Duration // default 30 days
	BcryptCost int           // default bcrypt.DefaultCost
	Logger     *slog.Logger
}

// Local keeps accounts in a YAML registry on disk and remembers the signed-in
// identity in an HMAC-signed session token, so a session survives restarts.
type Local struct {
	cfg    LocalConfig
	events *stream.Broadcaster[*Identity]

	mu      sync.Mutex
	secret  []byte
	current *Identity
}

type userRecord struct {
	Key          string    `yaml:"key"`
	Email        string    `yaml:"email,omitempty"`
	DisplayName  string    `yaml:"display_name,omitempty"`
	Provider     string    `yaml:"provider"`
	Subject      string    `yaml:"subject,omitempty"`
	PasswordHash string    `yaml:"password_hash,omitempty"`
	CreatedAt    time.Time `yaml:"created_at"`
}

func (u userRecord) identity() *Identity {
	return &Identity{Key: u.Key, Email: u.Email, DisplayName: u.DisplayName, Provider: u.Provider}
}

type registry struct {
	Users []userRecord `yaml:"users"`
}

// NewLocal creates a local provider. Call Initialize before use.
func NewLocal(cfg LocalConfig) *Local {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * 24 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Local{
		cfg:    cfg,
		events: stream.NewBroadcaster[*Identity](1),
	}
}

// Initialize loads the signing key and restores a previous session.
func (l *Local) Initialize(ctx context.Context) error {
	if err := os.MkdirAll(l.cfg.Dir, 0o700); err != nil {
		return fmt.Errorf("create auth directory: %w", err)
	}
	secret, err := loadOrInitSecretKey(filepath.Join(l.cfg.Dir, secretFile))
	if err != nil {
		return fmt.Errorf("load secret key: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.secret = secret
	l.current = l.restoreLocked()
	return nil
}

func (l *Local) restoreLocked() *Identity {
	data, err := os.ReadFile(filepath.Join(l.cfg.Dir, sessionFile))
	if err != nil {
		return nil
	}
	payload, err := verifyToken(l.secret, string(data))
	if err != nil {
		l.cfg.Logger.Debug("discarding session token", "error", err)
		_ = os.Remove(filepath.Join(l.cfg.Dir, sessionFile))
		return nil
	}

	reg, err := l.loadRegistry()
	if err != nil {
		l.cfg.Logger.Warn("cannot read user registry", "error", err)
		return nil
	}
	for _, u := range reg.Users {
		if u.Key == payload.Sub {
			l.cfg.Logger.Debug("session restored", "identity", u.Key)
			return u.identity()
		}
	}
	return nil
}

// SignUp creates an email/password account and signs it in.
func (l *Local) SignUp(ctx context.Context, email, password string) (*Identity, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), l.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	reg, err := l.loadRegistry()
	if err != nil {
		return nil, err
	}
	for _, u := range reg.Users {
		if u.Provider == ProviderPassword && u.Email == email {
			return nil, ErrEmailInUse
		}
	}

	user := userRecord{
		Key:          uuid.NewString(),
		Email:        email,
		Provider:     ProviderPassword,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	reg.Users = append(reg.Users, user)
	if err := l.saveRegistry(reg); err != nil {
		return nil, err
	}
	l.cfg.Logger.Info("account created", "identity", user.Key)

	return l.signInLocked(user)
}

// SignIn checks an email/password pair.
func (l *Local) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	reg, err := l.loadRegistry()
	if err != nil {
		return nil, err
	}
	for _, u := range reg.Users {
		if u.Provider != ProviderPassword || u.Email != email {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
			return nil, ErrInvalidCredentials
		}
		return l.signInLocked(u)
	}
	return nil, ErrInvalidCredentials
}

// SignInWithProvider runs the federated flow and signs in the matching
// account, creating it on first use.
func (l *Local) SignInWithProvider(ctx context.Context) (*Identity, error) {
	fed := l.cfg.Federated
	if fed == nil {
		return nil, ErrNoFederated
	}

	profile, err := fed.Authenticate(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: %w", ErrCancelled, err)
		}
		return nil, fmt.Errorf("%s: %w", fed.Name(), err)
	}
	if profile.Subject == "" {
		return nil, fmt.Errorf("%s: profile without subject", fed.Name())
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	reg, err := l.loadRegistry()
	if err != nil {
		return nil, err
	}
	for i, u := range reg.Users {
		if u.Provider != fed.Name() || u.Subject != profile.Subject {
			continue
		}
		if u.Email != profile.Email || u.DisplayName != profile.DisplayName {
			u.Email, u.DisplayName = profile.Email, profile.DisplayName
			reg.Users[i] = u
			if err := l.saveRegistry(reg); err != nil {
				return nil, err
			}
		}
		return l.signInLocked(u)
	}

	user := userRecord{
		Key:         uuid.NewString(),
		Email:       strings.ToLower(strings.TrimSpace(profile.Email)),
		DisplayName: profile.DisplayName,
		Provider:    fed.Name(),
		Subject:     profile.Subject,
		CreatedAt:   time.Now().UTC(),
	}
	reg.Users = append(reg.Users, user)
	if err := l.saveRegistry(reg); err != nil {
		return nil, err
	}
	l.cfg.Logger.Info("account created", "identity", user.Key, "provider", fed.Name())
	return l.signInLocked(user)
}

// SignOut forgets the current session.
func (l *Local) SignOut(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.Remove(filepath.Join(l.cfg.Dir, sessionFile)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	if l.current != nil {
		l.cfg.Logger.Info("signed out", "identity", l.current.Key)
	}
	l.current = nil
	l.events.Publish(nil)
	return nil
}

// Current returns a copy of the signed-in identity, or nil.
func (l *Local) Current() *Identity {
	l.mu.Lock()
	defer l.mu.Unlock()
	return cloneIdentity(l.current)
}

// Watch implements Provider.
func (l *Local) Watch(ctx context.Context) *stream.Subscription[*Identity] {
	return stream.Start(ctx, func(ctx context.Context, emit func(*Identity)) error {
		changes := l.events.Subscribe(ctx)
		emit(l.Current())
		for {
			select {
			case <-ctx.Done():
				return nil
			case id, ok := <-changes:
				if !ok {
					return nil
				}
				emit(cloneIdentity(id))
			}
		}
	})
}

// Close ends every Watch subscription.
func (l *Local) Close() error {
	l.events.Close()
	return nil
}

func (l *Local) signInLocked(u userRecord) (*Identity, error) {
	if l.secret == nil {
		return nil, errors.New("auth provider not initialized")
	}
	token, err := newSessionToken(l.secret, u.Key, l.cfg.SessionTTL)
	if err != nil {
		return nil, err
	}
	if err := writeFileAtomic(filepath.Join(l.cfg.Dir, sessionFile), []byte(token+"\n")); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	l.current = u.identity()
	l.cfg.Logger.Info("signed in", "identity", u.Key, "provider", u.Provider)
	l.events.Publish(cloneIdentity(l.current))
	return cloneIdentity(l.current), nil
}

func (l *Local) loadRegistry() (registry, error) {
	var reg registry
	data, err := os.ReadFile(filepath.Join(l.cfg.Dir, usersFile))
	if errors.Is(err, os.ErrNotExist) {
		return reg, nil
	}
	if err != nil {
		return reg, fmt.Errorf("read users: %w", err)
	}
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return reg, fmt.Errorf("parse users: %w", err)
	}
	return reg, nil
}

func (l *Local) saveRegistry(reg registry) error {
	data, err := yaml.Marshal(reg)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(filepath.Join(l.cfg.Dir, usersFile), data); err != nil {
		return fmt.Errorf("write users: %w", err)
	}
	return nil
}

// LocalState exposes internal state for observability.
type LocalState struct {
	Dir       string `json:"dir"`
	SignedIn  bool   `json:"signed_in"`
	Federated string `json:"federated,omitempty"`
	Watchers  int    `json:"watchers"`
}

// State implements introspection.Introspectable.
func (l *Local) State() any {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := LocalState{Dir: l.cfg.Dir, SignedIn: l.current != nil, Watchers: l.events.Len()}
	if l.cfg.Federated != nil {
		s.Federated = l.cfg.Federated.Name()
	}
	return s
}

// ComponentType implements introspection.Component.
func (l *Local) ComponentType() string {
	return "auth"
}

var (
	_ Provider                     = (*Local)(nil)
	_ introspection.Introspectable = (*Local)(nil)
	_ introspection.Component      = (*Local)(nil)
)

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func cloneIdentity(id *Identity) *Identity {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}

func writeFileAtomic(path string, data []byte) error {
	return atomic.WriteFile(path, bytes.NewReader(data))
}
