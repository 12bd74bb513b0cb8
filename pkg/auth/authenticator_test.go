package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAdmin(t *testing.T) {
	a := NewAuthenticator(7495437597)

	assert.True(t, a.IsAdmin(7495437597))
	assert.False(t, a.IsAdmin(1))
}

func TestZeroAdminNeverMatches(t *testing.T) {
	assert.False(t, NewAuthenticator(0).IsAdmin(0))
}
