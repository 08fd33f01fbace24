package google

import (
	"context"
	"log/slog"

	"authsvc/config"
	"authsvc/internal/domain/entity"
	domainerrors "authsvc/internal/domain/errors"
	"authsvc/internal/domain/service"
	"authsvc/internal/errors"

	"google.golang.org/api/idtoken"
)

// ValidateFunc checks an ID token's signature, audience and expiry.
// idtoken.Validate is the production implementation.
type ValidateFunc func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

// IDTokenVerifier verifies Google ID tokens sent directly by native clients.
type IDTokenVerifier struct {
	audience string
	validate ValidateFunc
	logger   *slog.Logger
}

// NewIDTokenVerifier builds a verifier whose audience is the configured client id.
func NewIDTokenVerifier(cfg *config.Config, logger *slog.Logger) (service.IDTokenVerifier, error) {
	if cfg.GoogleOAuth == nil || cfg.GoogleOAuth.ClientID == "" {
		return nil, errors.New("googleOAuth.clientId must be provided")
	}

	return NewIDTokenVerifierWithValidator(cfg.GoogleOAuth.ClientID, idtoken.Validate, logger), nil
}

// NewIDTokenVerifierWithValidator returns a verifier using validate instead of idtoken.Validate.
func NewIDTokenVerifierWithValidator(audience string, validate ValidateFunc, logger *slog.Logger) *IDTokenVerifier {
	return &IDTokenVerifier{
		audience: audience,
		validate: validate,
		logger:   logger,
	}
}

// VerifyIDToken validates the token and maps its claims to an external profile.
func (v *IDTokenVerifier) VerifyIDToken(ctx context.Context, idToken string) (*entity.ExternalProfile, error) {
	if idToken == "" {
		return nil, domainerrors.ErrOAuthTokenInvalid.WrapMessage("missing ID token")
	}

	payload, err := v.validate(ctx, idToken, v.audience)
	if err != nil {
		v.logger.WarnContext(ctx, "Google ID token rejected", slog.Any("error", err))

		return nil, domainerrors.ErrOAuthTokenInvalid.WithCause(err)
	}

	if payload.Issuer != "accounts.google.com" && payload.Issuer != "https://accounts.google.com" {
		return nil, domainerrors.ErrOAuthTokenInvalid.WithCause(errors.Errorf("invalid issuer: %s", payload.Issuer))
	}

	email := claimString(payload.Claims, "email")
	if payload.Subject == "" || email == "" {
		return nil, domainerrors.ErrOAuthTokenInvalid.WrapMessage("ID token is missing sub or email")
	}

	return &entity.ExternalProfile{
		ExternalID:    payload.Subject,
		Email:         email,
		EmailVerified: claimBool(payload.Claims, "email_verified"),
		DisplayName:   claimString(payload.Claims, "name"),
		GivenName:     claimString(payload.Claims, "given_name"),
		FamilyName:    claimString(payload.Claims, "family_name"),
	}, nil
}

func claimString(claims map[string]any, key string) string {
	s, _ := claims[key].(string)

	return s
}

// claimBool accepts both JSON booleans and the "true" string some issuers send.
func claimBool(claims map[string]any, key string) bool {
	switch v := claims[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}
