package auth

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
)

// Auther is the default Authenticator. It owns the password hasher, the
// token service, and the login-attempt throttle.
type Auther struct {
	store    UserStore
	hasher   *Hasher
	tokens   TokenService
	logger   Logger
	activity ActivitySink

	// decoyHash is compared against when a login names an unknown
	// identifier, so the unknown-user arm costs a real bcrypt round.
	decoyHash string

	maxLoginAttempts int
	coolDown         time.Duration
}

// AutherOption configures an Auther.
type AutherOption func(*Auther)

// WithAutherLogger sets the logger.
func WithAutherLogger(l Logger) AutherOption {
	return func(a *Auther) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMaxLoginAttempts sets how many consecutive failures trip the
// cooldown. Zero disables the throttle.
func WithMaxLoginAttempts(n int) AutherOption {
	return func(a *Auther) {
		a.maxLoginAttempts = n
	}
}

// WithLoginCoolDown sets how long a tripped account stays throttled.
func WithLoginCoolDown(d time.Duration) AutherOption {
	return func(a *Auther) {
		if d > 0 {
			a.coolDown = d
		}
	}
}

// WithActivitySink routes audit events somewhere other than the
// default noop sink.
func WithActivitySink(sink ActivitySink) AutherOption {
	return func(a *Auther) {
		if sink != nil {
			a.activity = sink
		}
	}
}

// NewAuthenticator wires the pipeline together.
func NewAuthenticator(store UserStore, hasher *Hasher, tokens TokenService, opts ...AutherOption) *Auther {
	a := &Auther{
		store:            store,
		hasher:           hasher,
		tokens:           tokens,
		logger:           &defLogger{},
		activity:         noopActivitySink{},
		decoyHash:        RandomPasswordHash(),
		maxLoginAttempts: 5,
		coolDown:         24 * time.Hour,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// RegisterInput is the validated payload for account creation.
type RegisterInput struct {
	Fullname string
	Username string
	Email    string
	Password string
	Image    string
}

func (in *RegisterInput) normalize() {
	in.Fullname = strings.TrimSpace(in.Fullname)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Image = strings.TrimSpace(in.Image)
}

// Register creates an account. Email and username collisions surface as
// ErrUserExists regardless of which column tripped.
func (a *Auther) Register(ctx context.Context, input RegisterInput) (*User, error) {
	input.normalize()

	if input.Password == "" {
		return nil, ErrNoEmptyString
	}

	hash, err := a.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &User{
		Fullname:     input.Fullname,
		Username:     input.Username,
		Email:        input.Email,
		Image:        input.Image,
		PasswordHash: hash,
	}

	if user.Image == "" {
		user.Image = DefaultAvatarURL(user.Fullname)
	}

	if id, err := hashid.NewUUID(user.Email); err == nil {
		user.ID = id
	}

	created, err := a.store.Register(ctx, user)
	if err != nil {
		if goerrors.Is(err, ErrUserExists) || IsUniqueViolation(err) {
			return nil, ErrUserExists
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to register user")
	}

	a.logger.Info("registered user %s", created.ID)

	if err := a.activity.Record(ctx, newActivityEvent(ActivityEventRegisterSuccess, created.ID.String())); err != nil {
		a.logger.Error("failed to record register activity: %v", err)
	}

	return created, nil
}

// Login checks credentials and mints a session token. Unknown identifier,
// wrong password, and throttled account all come back as
// ErrInvalidCredentials so callers cannot probe which accounts exist.
func (a *Auther) Login(ctx context.Context, identifier, password string) (*User, string, error) {
	identifier = strings.TrimSpace(identifier)
	if strings.Contains(identifier, "@") {
		identifier = strings.ToLower(identifier)
	}

	if identifier == "" || password == "" {
		// keep the failure arms level
		a.hasher.Check(password, a.decoyHash)
		return nil, "", ErrInvalidCredentials
	}

	user, err := a.store.GetByEmailOrUsername(ctx, identifier)
	if err != nil {
		a.hasher.Check(password, a.decoyHash)
		if repository.IsRecordNotFound(err) || goerrors.IsNotFound(err) || goerrors.Is(err, ErrIdentityNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up user")
	}

	if a.throttled(user) {
		a.hasher.Check(password, a.decoyHash)
		a.logger.Warn("login throttled for user %s", user.ID)
		return nil, "", ErrInvalidCredentials
	}

	if !a.hasher.Check(password, user.PasswordHash) {
		if err := a.store.TrackAttemptedLogin(ctx, user); err != nil {
			a.logger.Error("failed to track login attempt: %v", err)
		}
		if err := a.activity.Record(ctx, newActivityEvent(ActivityEventLoginFailure, user.ID.String())); err != nil {
			a.logger.Error("failed to record login activity: %v", err)
		}
		return nil, "", ErrInvalidCredentials
	}

	if err := a.store.TrackSuccessfulLogin(ctx, user); err != nil {
		a.logger.Error("failed to track successful login: %v", err)
	}

	if err := a.activity.Record(ctx, newActivityEvent(ActivityEventLoginSuccess, user.ID.String())); err != nil {
		a.logger.Error("failed to record login activity: %v", err)
	}

	token, err := a.tokens.Mint(user.ID.String())
	if err != nil {
		return nil, "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mint session token")
	}

	return user, token, nil
}

func (a *Auther) throttled(user *User) bool {
	if a.maxLoginAttempts <= 0 {
		return false
	}
	if user.LoginAttempts < a.maxLoginAttempts {
		return false
	}
	if user.LoginAttemptAt == nil {
		return false
	}
	return time.Since(*user.LoginAttemptAt) < a.coolDown
}

// Verify validates a raw session token and loads its user. A token whose
// user no longer exists fails the same way a bad token does.
func (a *Auther) Verify(ctx context.Context, rawToken string) (*User, error) {
	claims, err := a.tokens.Validate(rawToken)
	if err != nil {
		return nil, err
	}

	user, err := a.store.GetByID(ctx, claims.UserID)
	if err != nil {
		if repository.IsRecordNotFound(err) || goerrors.IsNotFound(err) || goerrors.Is(err, ErrIdentityNotFound) {
			return nil, ErrNotAuthorized
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load user for token")
	}

	return user, nil
}
