package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-user-center/internal/core/auth"
)

func newJWTer() *auth.JWTer {
	return &auth.JWTer{Secret: []byte("test-secret"), Issuer: "go-user-center", TTL: time.Hour}
}

func TestIssueAndParse(t *testing.T) {
	j := newJWTer()
	tok, err := j.Issue(42, "zhangsan")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := j.Parse(tok)
	require.NoError(t, err)
	assert.EqualValues(t, 42, claims.UID)
	assert.Equal(t, "zhangsan", claims.Username)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestExpiredDistinctFromTampered(t *testing.T) {
	j := newJWTer()

	// ttl 为负的 token 立刻判过期
	expired, err := j.Issue(1, "a", -time.Second)
	require.NoError(t, err)
	_, err = j.Parse(expired)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)

	// 篡改签名归为无效，不是过期
	good, err := j.Issue(1, "a")
	require.NoError(t, err)
	tampered := good + "x"
	_, err = j.Parse(tampered)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)

	_, err = j.Parse("not-a-token")
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestWrongSecretAndIssuer(t *testing.T) {
	j := newJWTer()
	other := &auth.JWTer{Secret: []byte("other"), Issuer: j.Issuer, TTL: time.Hour}

	tok, err := other.Issue(7, "b")
	require.NoError(t, err)
	_, err = j.Parse(tok)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)

	badIssuer := &auth.JWTer{Secret: j.Secret, Issuer: "someone-else", TTL: time.Hour}
	tok2, err := badIssuer.Issue(7, "b")
	require.NoError(t, err)
	_, err = j.Parse(tok2)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}
