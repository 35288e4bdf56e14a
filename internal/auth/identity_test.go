package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tazhibayda/radiostation-service/internal/security"
)

func TestIdentity(t *testing.T) {
	anon := IdentityFrom(context.Background())
	assert.True(t, anon.IsAnonymous())
	assert.Empty(t, anon.Email())
	_, ok := anon.Claim()
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), Identified(security.AuthClaim{Email: "dj@example.com", Subject: "s1"}))
	id := IdentityFrom(ctx)
	assert.False(t, id.IsAnonymous())
	assert.Equal(t, "dj@example.com", id.Email())
	c, ok := id.Claim()
	assert.True(t, ok)
	assert.Equal(t, "s1", c.Subject)
}
