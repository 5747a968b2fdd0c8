package auth

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// AuthController adapts the authenticator to the JSON wire contract.
// Handlers bind, validate, call through, and map errors to statuses;
// nothing else lives here.
type AuthController struct {
	Debug        bool
	Logger       Logger
	Auther       Authenticator
	Tokens       TokenService
	CookieSecure bool
	CookieTTL    time.Duration
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:    defLogger{},
		CookieTTL: DefaultCookieTTL,
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Tokens == nil {
		panic("Missing TokenService in auth controller...")
	}

	return c
}

func WithControllerLogger(l Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if l != nil {
			c.Logger = l
		}
		return c
	}
}

func WithControllerAuther(a Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = a
		return c
	}
}

func WithControllerTokens(t TokenService) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Tokens = t
		return c
	}
}

func WithControllerCookieSecure(secure bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.CookieSecure = secure
		return c
	}
}

func WithControllerCookieTTL(ttl time.Duration) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if ttl > 0 {
			c.CookieTTL = ttl
		}
		return c
	}
}

func WithControllerDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,}$`)

// RegisterRequest payload
type RegisterRequest struct {
	Fullname string `json:"fullname" form:"fullname"`
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Validate will run validation rules
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Fullname, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Username, validation.Required, validation.Match(usernameRe)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 72)),
	)
}

// LoginRequest payload
type LoginRequest struct {
	Login    string `json:"login" form:"login"`
	Password string `json:"password" form:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Login, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) RegisterPost(c *fiber.Ctx) error {
	payload := new(RegisterRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("register: failed to parse payload: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	if a.Debug {
		a.Logger.Debug("register payload: %s", print.MaybePrettyJSON(fiber.Map{
			"fullname": payload.Fullname,
			"username": payload.Username,
			"email":    payload.Email,
		}))
	}

	user, err := a.Auther.Register(c.UserContext(), RegisterInput{
		Fullname: payload.Fullname,
		Username: payload.Username,
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		return a.renderError(c, err)
	}

	token, err := a.Tokens.Mint(user.ID.String())
	if err != nil {
		return a.renderError(c, err)
	}

	setTokenCookie(c, token, a.CookieTTL, a.CookieSecure)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":    user.Public(),
		"message": "User created successfully",
	})
}

func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login: failed to parse payload: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if err := payload.Validate(); err != nil {
		// Malformed credentials fail the same way wrong ones do.
		return a.renderError(c, ErrInvalidCredentials)
	}

	user, token, err := a.Auther.Login(c.UserContext(), payload.Login, payload.Password)
	if err != nil {
		return a.renderError(c, err)
	}

	setTokenCookie(c, token, a.CookieTTL, a.CookieSecure)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"user": user.Public(),
	})
}

func (a *AuthController) VerifyGet(c *fiber.Ctx) error {
	raw := c.Cookies(CookieName)
	if raw == "" {
		return a.renderError(c, ErrNotAuthorized)
	}

	user, err := a.Auther.Verify(c.UserContext(), raw)
	if err != nil {
		return a.renderError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"user": user.Public(),
	})
}

// LogoutPost clears the session cookie. Idempotent: logging out without
// a session is still a 200.
func (a *AuthController) LogoutPost(c *fiber.Ctx) error {
	clearTokenCookie(c, a.CookieSecure)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Logged out successfully",
	})
}

func (a *AuthController) renderError(c *fiber.Ctx, err error) error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		switch richErr.TextCode {
		case TextCodeUserExists:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "The user already exists",
			})
		case TextCodeInvalidCreds, TextCodeTooManyAttempts:
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid credentials",
			})
		case TextCodeNotAuthorized, TextCodeTokenExpired, TextCodeTokenMalformed:
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Not authorized",
			})
		}

		switch richErr.Category {
		case goerrors.CategoryAuth, goerrors.CategoryAuthz:
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Not authorized",
			})
		case goerrors.CategoryValidation, goerrors.CategoryBadInput:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": richErr.Message,
			})
		}
	}

	a.Logger.Error("auth controller error: %v", err)

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Internal server error",
	})
}
