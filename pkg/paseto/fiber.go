package pasetotoken

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/medchart/config"
)

const CtxKeyClaims = "auth.claims"

// ClaimsFromFiber returns the claims stored by the auth middleware.
func ClaimsFromFiber(c fiber.Ctx) (*Claims, bool) {
	v := c.Locals(CtxKeyClaims)
	if v == nil {
		return nil, false
	}
	cl, ok := v.(*Claims)
	return cl, ok
}

// NewVerifierFromConfig builds the token verifier from the paseto config block.
func NewVerifierFromConfig(cfg *config.Config) (*Verifier, error) {
	p := cfg.Authentication.Paseto

	keys, err := LoadKeys(KeyStrings{
		Mode:         Mode(p.Mode),
		SymmetricHex: p.LocalKeyHex,
		PublicHex:    p.PublicKeyHex,
	})
	if err != nil {
		return nil, err
	}

	return New(Config{
		Mode:     Mode(p.Mode),
		Issuer:   p.Issuer,
		Audience: p.Audience,
	}, keys)
}
