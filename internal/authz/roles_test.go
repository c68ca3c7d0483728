package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionCanSee(t *testing.T) {
	admin := Session{Username: "boss", Role: "Admin"}
	user := Session{Username: "Alice", Role: RoleUser}
	anon := Session{Role: RoleUser}

	assert.True(t, admin.IsAdmin())
	assert.True(t, admin.CanSee("anyone"))
	assert.True(t, user.CanSee(" alice "))
	assert.False(t, user.CanSee("bob"))
	assert.False(t, anon.CanSee(""))
}

func TestRoles(t *testing.T) {
	assert.True(t, IsKnownRole("VIEWER"))
	assert.False(t, IsKnownRole("root"))
	assert.True(t, IsReadOnly(RoleViewer))
	assert.False(t, IsReadOnly(RoleAdmin))
}
