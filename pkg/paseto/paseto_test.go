package pasetotoken

import (
	"errors"
	"testing"
	"time"

	paseto "aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staffToken builds the claim set the identity service issues for a clinician.
func staffToken(user uuid.UUID, edit func(*paseto.Token)) paseto.Token {
	now := time.Now()
	tok := paseto.NewToken()
	tok.SetIssuer("medchart")
	tok.SetAudience("clinic")
	tok.SetJti("jti-1")
	tok.SetIssuedAt(now)
	tok.SetNotBefore(now)
	tok.SetExpiration(now.Add(time.Minute))
	tok.SetString("typ", "access")
	tok.SetString("uid", user.String())
	if edit != nil {
		edit(&tok)
	}
	return tok
}

func localVerifier(t *testing.T) (*Verifier, paseto.V4SymmetricKey) {
	t.Helper()
	key := paseto.NewV4SymmetricKey()
	keys, err := LoadKeys(KeyStrings{Mode: ModeLocal, SymmetricHex: key.ExportHex()})
	require.NoError(t, err)
	v, err := New(Config{Mode: ModeLocal, Issuer: "medchart", Audience: "clinic"}, keys)
	require.NoError(t, err)
	return v, key
}

func TestVerifyLocalAccessToken(t *testing.T) {
	v, key := localVerifier(t)
	user, session := uuid.New(), uuid.New()

	tok := staffToken(user, func(tok *paseto.Token) {
		tok.SetString("sid", session.String())
		tok.SetString("role", "nurse")
	})

	claims, err := v.Verify(tok.V4Encrypt(key, nil))
	require.NoError(t, err)
	assert.Equal(t, user, claims.GetUserID())
	assert.Equal(t, session, *claims.SessionID)
	assert.Equal(t, "nurse", claims.GetRole())
	assert.Equal(t, "jti-1", claims.TokenID)
}

func TestVerifyRejectsRefreshToken(t *testing.T) {
	v, key := localVerifier(t)

	tok := staffToken(uuid.New(), func(tok *paseto.Token) { tok.SetString("typ", "refresh") })

	_, err := v.Verify(tok.V4Encrypt(key, nil))
	var invalid ErrInvalidToken
	require.ErrorAs(t, err, &invalid)
	assert.True(t, errors.Is(err, ErrNotAccessToken))
}

func TestVerifyRejectsExpiredAndForeignAudience(t *testing.T) {
	v, key := localVerifier(t)

	expired := staffToken(uuid.New(), func(tok *paseto.Token) {
		tok.SetExpiration(time.Now().Add(-time.Minute))
	})
	_, err := v.Verify(expired.V4Encrypt(key, nil))
	assert.Error(t, err)

	foreign := staffToken(uuid.New(), func(tok *paseto.Token) { tok.SetAudience("billing") })
	_, err = v.Verify(foreign.V4Encrypt(key, nil))
	assert.Error(t, err)
}

func TestVerifyPublicRejectsForeignKey(t *testing.T) {
	signer := paseto.NewV4AsymmetricSecretKey()
	other := paseto.NewV4AsymmetricSecretKey()

	keys, err := LoadKeys(KeyStrings{Mode: ModePublic, PublicHex: signer.Public().ExportHex()})
	require.NoError(t, err)
	v, err := New(Config{Mode: ModePublic, Issuer: "medchart", Audience: "clinic"}, keys)
	require.NoError(t, err)

	user := uuid.New()
	tok := staffToken(user, nil)

	claims, err := v.Verify(tok.V4Sign(signer, nil))
	require.NoError(t, err)
	assert.Equal(t, user, claims.UserID)
	assert.Empty(t, claims.Role)
	assert.Nil(t, claims.SessionID)

	_, err = v.Verify(tok.V4Sign(other, nil))
	var invalid ErrInvalidToken
	assert.ErrorAs(t, err, &invalid)
}

func TestNewValidatesConfig(t *testing.T) {
	keys, err := LoadKeys(KeyStrings{Mode: ModeLocal, SymmetricHex: paseto.NewV4SymmetricKey().ExportHex()})
	require.NoError(t, err)

	_, err = New(Config{Mode: ModeLocal, Audience: "clinic"}, keys)
	assert.Error(t, err)

	_, err = New(Config{Mode: ModePublic, Issuer: "i", Audience: "a"}, keys)
	assert.Error(t, err)
}

func TestLoadKeys(t *testing.T) {
	_, err := LoadKeys(KeyStrings{Mode: ModeLocal})
	assert.Error(t, err)

	_, err = LoadKeys(KeyStrings{Mode: ModePublic})
	assert.Error(t, err)

	_, err = LoadKeys(KeyStrings{Mode: "hmac"})
	assert.Error(t, err)
}
