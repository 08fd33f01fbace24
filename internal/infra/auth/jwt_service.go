// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"time"

	"authsvc/config"
	"authsvc/internal/domain/entity"
	domainerrors "authsvc/internal/domain/errors"
	"authsvc/internal/domain/service"
	"authsvc/internal/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var signingMethod = jwt.SigningMethodHS256

// JWTOptions configures the token service.
type JWTOptions struct {
	GlobalSecret []byte
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
	Issuer       string
	// Now is the clock used for iat, exp and verification. Defaults to time.Now.
	Now func() time.Time
}

// NewJWTOptions maps the application config onto JWTOptions.
func NewJWTOptions(cfg *config.Config) JWTOptions {
	opts := JWTOptions{
		GlobalSecret: []byte(cfg.SecretKey.Global),
	}
	if cfg.Token != nil {
		opts.AccessTTL = cfg.Token.AccessTTL
		opts.RefreshTTL = cfg.Token.RefreshTTL
		opts.Issuer = cfg.Token.Issuer
	}

	return opts
}

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
// It holds no mutable state and is safe for concurrent use.
type jwtService struct {
	globalSecret []byte           // Signs access tokens and prefixes every refresh secret.
	accessTTL    time.Duration    // Time-to-live for access tokens.
	refreshTTL   time.Duration    // Time-to-live for refresh tokens.
	issuer       string           // iss claim.
	now          func() time.Time // Clock.
	parser       *jwt.Parser
}

// NewJWTService is the constructor for jwtService.
func NewJWTService(opts JWTOptions) (service.TokenService, error) {
	if len(opts.GlobalSecret) == 0 {
		return nil, errors.New("jwt global secret must be provided")
	}
	if opts.AccessTTL <= 0 || opts.RefreshTTL <= 0 {
		return nil, errors.New("jwt token lifetimes must be positive")
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	secret := make([]byte, len(opts.GlobalSecret))
	copy(secret, opts.GlobalSecret)

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithTimeFunc(now),
		jwt.WithExpirationRequired(),
	}
	if opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(opts.Issuer))
	}

	return &jwtService{
		globalSecret: secret,
		accessTTL:    opts.AccessTTL,
		refreshTTL:   opts.RefreshTTL,
		issuer:       opts.Issuer,
		now:          now,
		parser:       jwt.NewParser(parserOpts...),
	}, nil
}

// IssueTokenPair creates a new access token and refresh token for a given user.
func (s *jwtService) IssueTokenPair(user *entity.User) (*entity.TokenPair, error) {
	return s.issueAt(user, s.now())
}

// RotateTokenPair issues a pair whose iat is at least one second past previous.IssuedAt.
// iat has second precision, so a refresh within the same second moves to the next one.
func (s *jwtService) RotateTokenPair(user *entity.User, previous *service.Claims) (*entity.TokenPair, error) {
	issuedAt := s.now()
	if previous != nil && previous.IssuedAt != nil {
		floor := previous.IssuedAt.Truncate(jwt.TimePrecision).Add(jwt.TimePrecision)
		if issuedAt.Truncate(jwt.TimePrecision).Before(floor) {
			issuedAt = floor
		}
	}

	return s.issueAt(user, issuedAt)
}

func (s *jwtService) issueAt(user *entity.User, issuedAt time.Time) (*entity.TokenPair, error) {
	if user == nil || !user.CanIssueTokens() {
		return nil, domainerrors.ErrTokenIssueFailed.WrapMessage("user has no id or password hash")
	}

	accessExp := issuedAt.Add(s.accessTTL)
	refreshExp := issuedAt.Add(s.refreshTTL)

	accessToken, err := s.sign(&service.Claims{
		UserID:           user.ID,
		Role:             user.Role.String(),
		Username:         user.Username,
		Email:            user.Email,
		Type:             service.TokenTypeAccess,
		RegisteredClaims: s.registeredClaims(user.ID, issuedAt, accessExp),
	}, s.globalSecret)
	if err != nil {
		return nil, domainerrors.ErrTokenIssueFailed.WithCause(err)
	}

	refreshToken, err := s.sign(&service.Claims{
		UserID:           user.ID,
		Type:             service.TokenTypeRefresh,
		RegisteredClaims: s.registeredClaims(user.ID, issuedAt, refreshExp),
	}, s.refreshSecret(user.PasswordHash))
	if err != nil {
		return nil, domainerrors.ErrTokenIssueFailed.WithCause(err)
	}

	return &entity.TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// VerifyAccessToken validates an access token against the global secret.
func (s *jwtService) VerifyAccessToken(token string) (*service.Claims, error) {
	claims, err := s.parse(token, s.globalSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domainerrors.ErrTokenExpired.WrapMessage("access token")
		}

		return nil, domainerrors.ErrTokenInvalid.WithCause(err)
	}

	if claims.Type != service.TokenTypeAccess {
		return nil, domainerrors.ErrTokenInvalid.WrapMessage("not an access token")
	}

	return claims, nil
}

// VerifyRefreshToken validates a refresh token against the secret derived from passwordHash.
func (s *jwtService) VerifyRefreshToken(token, passwordHash string) (*service.Claims, error) {
	if passwordHash == "" {
		return nil, domainerrors.ErrRefreshTokenInvalid.WrapMessage("user has no password hash")
	}

	claims, err := s.parse(token, s.refreshSecret(passwordHash))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domainerrors.ErrRefreshTokenInvalid.WithCause(domainerrors.ErrTokenExpired)
		}

		return nil, domainerrors.ErrRefreshTokenInvalid.WithCause(err)
	}

	if claims.Type != service.TokenTypeRefresh {
		return nil, domainerrors.ErrRefreshTokenInvalid.WrapMessage("not a refresh token")
	}

	return claims, nil
}

// SubjectOf decodes the uid claim without checking the signature.
// The caller must verify the token once the signing secret is known.
func (s *jwtService) SubjectOf(token string) (uuid.UUID, error) {
	claims := &service.Claims{}
	if _, _, err := s.parser.ParseUnverified(token, claims); err != nil {
		return uuid.Nil, domainerrors.ErrTokenInvalid.WithCause(err)
	}

	if claims.UserID == uuid.Nil {
		return uuid.Nil, domainerrors.ErrTokenInvalid.WrapMessage("token has no subject")
	}

	return claims.UserID, nil
}

// RefreshTokenTTL returns the configured duration for refresh tokens.
func (s *jwtService) RefreshTokenTTL() time.Duration {
	return s.refreshTTL
}

func (s *jwtService) registeredClaims(userID uuid.UUID, issuedAt, expiresAt time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userID.String(),
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
}

func (s *jwtService) sign(claims *service.Claims, secret []byte) (string, error) {
	return jwt.NewWithClaims(signingMethod, claims).SignedString(secret)
}

func (s *jwtService) parse(token string, secret []byte) (*service.Claims, error) {
	claims := &service.Claims{}
	parsed, err := s.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	if !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return claims, nil
}

// refreshSecret returns globalSecret followed by passwordHash in a fresh slice.
func (s *jwtService) refreshSecret(passwordHash string) []byte {
	secret := make([]byte, 0, len(s.globalSecret)+len(passwordHash))
	secret = append(secret, s.globalSecret...)

	return append(secret, passwordHash...)
}
