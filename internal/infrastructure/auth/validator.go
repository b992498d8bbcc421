package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/janhq/library-api/internal/domain"
)

// ErrInvalidToken is returned for tokens that fail validation.
var ErrInvalidToken = errors.New("invalid token")

// ValidatorConfig configures token validation.
type ValidatorConfig struct {
	Secret   string
	JWKSURL  string
	Issuer   string
	Audience string
}

// Validator checks bearer tokens. HS256 tokens are verified with the shared
// secret, RS tokens against the JWKS when one is configured.
type Validator struct {
	cfg  ValidatorConfig
	jwks *keyfunc.JWKS
	log  zerolog.Logger
}

// NewValidator initializes JWKS fetching when a JWKS URL is configured.
func NewValidator(ctx context.Context, cfg ValidatorConfig, log zerolog.Logger) (*Validator, error) {
	v := &Validator{cfg: cfg, log: log.With().Str("component", "jwt-validator").Logger()}
	if cfg.Secret == "" && cfg.JWKSURL == "" {
		return nil, fmt.Errorf("either a jwt secret or a JWKS URL is required")
	}

	if cfg.JWKSURL != "" {
		options := keyfunc.Options{
			Ctx:               ctx,
			RefreshInterval:   time.Hour,
			RefreshUnknownKID: true,
			RefreshErrorHandler: func(err error) {
				v.log.Error().Err(err).Msg("jwks refresh error")
			},
		}
		jwks, err := keyfunc.Get(cfg.JWKSURL, options)
		if err != nil {
			return nil, fmt.Errorf("fetch jwks: %w", err)
		}
		v.jwks = jwks
	}
	return v, nil
}

func (v *Validator) keyfunc(token *jwt.Token) (any, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if v.cfg.Secret == "" {
			return nil, fmt.Errorf("unexpected signing method %s", token.Method.Alg())
		}
		return []byte(v.cfg.Secret), nil
	default:
		if v.jwks == nil {
			return nil, fmt.Errorf("unexpected signing method %s", token.Method.Alg())
		}
		return v.jwks.Keyfunc(token)
	}
}

func (v *Validator) validMethods() []string {
	var methods []string
	if v.cfg.Secret != "" {
		methods = append(methods, "HS256")
	}
	if v.jwks != nil {
		methods = append(methods, "RS256", "RS384", "RS512")
	}
	return methods
}

// Validate parses the token and returns the principal it names.
func (v *Validator) Validate(tokenString string) (domain.Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(v.validMethods()),
		jwt.WithExpirationRequired(),
	}
	if issuer := strings.TrimSpace(v.cfg.Issuer); issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience := strings.TrimSpace(v.cfg.Audience); audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, v.keyfunc, opts...)
	if err != nil || !token.Valid {
		return domain.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return domain.Principal{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	roles := append([]string(nil), claims.Roles...)
	if claims.Role != "" {
		roles = append(roles, claims.Role)
	}

	principal := domain.Principal{
		ID:      claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Roles:   roles,
		TokenID: claims.ID,
	}
	if claims.ExpiresAt != nil {
		principal.ExpiresAt = claims.ExpiresAt.Time
	}
	return principal, nil
}

// Ready indicates whether the key material is loaded.
func (v *Validator) Ready() bool {
	return v != nil && (v.cfg.Secret != "" || v.jwks != nil)
}

// Close stops the JWKS background refresh.
func (v *Validator) Close() {
	if v != nil && v.jwks != nil {
		v.jwks.EndBackground()
	}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
