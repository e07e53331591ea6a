package identity

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/credvault/internal/auth"
	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic(t *testing.T) {
	id, err := Static("ops-1").PrincipalID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ops-1", id)

	_, err = Static("").PrincipalID(context.Background())
	require.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestToken(t *testing.T) {
	tok, err := auth.GenerateToken("ops-2", []byte("s"), time.Hour)
	require.NoError(t, err)

	id, err := Token{AccessToken: tok}.PrincipalID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ops-2", id)

	_, err = Token{}.PrincipalID(context.Background())
	require.ErrorIs(t, err, common.ErrorUnauthorized)
}
