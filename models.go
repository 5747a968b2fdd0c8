package auth

import (
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the credentialed identity. The password digest never leaves the
// process: it is excluded from JSON and from the PublicUser projection.
type User struct {
	bun.BaseModel  `bun:"table:users,alias:usr"`
	ID             uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Fullname       string     `bun:"fullname,notnull" json:"fullname,omitempty"`
	Username       string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email          string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Image          string     `bun:"image" json:"image,omitempty"`
	PasswordHash   string     `bun:"password_hash,notnull" json:"-"`
	LoginAttempts  int        `bun:"login_attempts" json:"-"`
	LoginAttemptAt *time.Time `bun:"login_attempt_at" json:"-"`
	LoggedInAt     *time.Time `bun:"loggedin_at" json:"-"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// PublicUser is the only user shape that crosses the wire.
type PublicUser struct {
	ID       string `json:"id"`
	Fullname string `json:"fullname"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Image    string `json:"image,omitempty"`
}

// Public projects the record into its response-safe shape.
func (u *User) Public() PublicUser {
	if u == nil {
		return PublicUser{}
	}
	return PublicUser{
		ID:       u.ID.String(),
		Fullname: u.Fullname,
		Username: u.Username,
		Email:    u.Email,
		Image:    u.Image,
	}
}

// DefaultAvatarURL builds the fallback profile image used when a new
// registration does not bring its own.
func DefaultAvatarURL(fullname string) string {
	return fmt.Sprintf(
		"https://ui-avatars.com/api/?name=%s&background=random&size=128",
		url.QueryEscape(fullname),
	)
}
