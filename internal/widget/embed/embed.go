// Package embed issues and verifies the signed tokens that let a customer
// site load a deployed widget without the admin credential.
package embed

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "compliance-panel/pkg/domain"
	dErrors "compliance-panel/pkg/domain-errors"
)

const (
	issuer   = "compliance-panel"
	audience = "widget-embed"
)

// Claims binds a token to a single widget.
type Claims struct {
	WidgetID string `json:"widget_id"`
	jwt.RegisteredClaims
}

// Signer creates HS256 embed tokens with a fixed lifetime.
type Signer struct {
	signingKey []byte
	ttl        time.Duration
}

func NewSigner(signingKey string, ttl time.Duration) *Signer {
	return &Signer{signingKey: []byte(signingKey), ttl: ttl}
}

// Issue returns a token for widgetID and its expiry.
func (s *Signer) Issue(widgetID id.WidgetID, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		WidgetID: widgetID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Audience:  []string{audience},
			ID:        uuid.NewString(),
		},
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign embed token")
	}
	return signed, expiresAt, nil
}

// Verify checks the signature, expiry and audience of tokenString at now and
// that it was issued for widgetID. Failures carry CodeUnauthorized.
func (s *Signer) Verify(tokenString string, widgetID id.WidgetID, now time.Time) error {
	if tokenString == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "embed token is required")
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (any, error) {
		return s.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return dErrors.New(dErrors.CodeUnauthorized, "embed token has expired")
		}
		return dErrors.New(dErrors.CodeUnauthorized, "invalid embed token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return dErrors.New(dErrors.CodeUnauthorized, "invalid embed token")
	}
	if claims.WidgetID != widgetID.String() {
		return dErrors.New(dErrors.CodeUnauthorized, "embed token was issued for another widget")
	}
	return nil
}
