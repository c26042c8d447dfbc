package pasetotoken

import (
	paseto "aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
)

const tokenTypeAccess = "access"

type Config struct {
	Mode Mode

	Issuer   string
	Audience string

	Implicit []byte
}

// Verifier checks staff access tokens. It never mints tokens.
type Verifier struct {
	cfg   Config
	keys  Keys
	parse paseto.Parser
}

func New(cfg Config, keys Keys) (*Verifier, error) {
	if cfg.Mode != keys.Mode {
		return nil, ErrConfig{Msg: "cfg.Mode must match keys.Mode"}
	}
	if cfg.Issuer == "" {
		return nil, ErrConfig{Msg: "Issuer is required"}
	}
	if cfg.Audience == "" {
		return nil, ErrConfig{Msg: "Audience is required"}
	}

	p := paseto.NewParser()
	p.AddRule(paseto.IssuedBy(cfg.Issuer))
	p.AddRule(paseto.ForAudience(cfg.Audience))
	p.AddRule(paseto.NotExpired())

	return &Verifier{cfg: cfg, keys: keys, parse: p}, nil
}

// Verify parses tokenStr and returns its claims. Refresh and other non-access
// tokens are rejected with ErrNotAccessToken wrapped in ErrInvalidToken.
func (v *Verifier) Verify(tokenStr string) (*Claims, error) {
	var (
		tok *paseto.Token
		err error
	)

	switch v.cfg.Mode {
	case ModeLocal:
		if v.keys.Symmetric == nil {
			return nil, ErrConfig{Msg: "missing symmetric key"}
		}
		tok, err = v.parse.ParseV4Local(*v.keys.Symmetric, tokenStr, v.cfg.Implicit)
	case ModePublic:
		if v.keys.Public == nil {
			return nil, ErrConfig{Msg: "missing public key"}
		}
		tok, err = v.parse.ParseV4Public(*v.keys.Public, tokenStr, v.cfg.Implicit)
	default:
		return nil, ErrConfig{Msg: "unknown mode"}
	}

	if err != nil {
		return nil, ErrInvalidToken{Err: err}
	}

	claims, err := extractClaims(tok)
	if err != nil {
		return nil, ErrInvalidToken{Err: err}
	}

	return claims, nil
}

func extractClaims(tok *paseto.Token) (*Claims, error) {
	typ, err := tok.GetString("typ")
	if err != nil {
		return nil, err
	}
	if typ != tokenTypeAccess {
		return nil, ErrNotAccessToken
	}

	exp, err := tok.GetExpiration()
	if err != nil {
		return nil, err
	}

	uidStr, err := tok.GetString("uid")
	if err != nil {
		return nil, err
	}
	uid, err := uuid.Parse(uidStr)
	if err != nil {
		return nil, err
	}

	out := &Claims{UserID: uid, ExpiresAt: exp}

	// jti, sid and role are optional
	if jti, err := tok.GetJti(); err == nil {
		out.TokenID = jti
	}
	if sidStr, err := tok.GetString("sid"); err == nil {
		sid, err := uuid.Parse(sidStr)
		if err != nil {
			return nil, err
		}
		out.SessionID = &sid
	}
	if role, err := tok.GetString("role"); err == nil {
		out.Role = role
	}

	return out, nil
}
