package auth_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	auth "github.com/skilllink/learnex-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserPublic(t *testing.T) {
	user := &auth.User{
		ID:           uuid.New(),
		Fullname:     "Maya Mentor",
		Username:     "maya_m",
		Email:        "maya@example.com",
		Image:        "https://example.com/pic.png",
		PasswordHash: "digest",
	}

	pub := user.Public()

	assert.Equal(t, user.ID.String(), pub.ID)
	assert.Equal(t, "Maya Mentor", pub.Fullname)
	assert.Equal(t, "https://example.com/pic.png", pub.Image)

	raw, err := json.Marshal(pub)
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "digest")
	assert.Contains(t, string(raw), `"image"`)
}

func TestUserPublicNil(t *testing.T) {
	var user *auth.User
	assert.Equal(t, auth.PublicUser{}, user.Public())
}

func TestUserJSONHidesSecrets(t *testing.T) {
	user := &auth.User{
		ID:           uuid.New(),
		Email:        "maya@example.com",
		PasswordHash: "digest",
	}

	raw, err := json.Marshal(user)
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "digest")
	assert.NotContains(t, string(raw), "password")
}

func TestDefaultAvatarURL(t *testing.T) {
	url := auth.DefaultAvatarURL("Maya Mentor")

	assert.Contains(t, url, "ui-avatars.com/api/")
	assert.Contains(t, url, "name=Maya+Mentor")
	assert.Contains(t, url, "background=random")
	assert.Contains(t, url, "size=128")
}
