// Package google implements the Google side of external login: the OAuth2
// authorization-code flow and verification of ID tokens sent by native clients.
package google

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"authsvc/config"
	"authsvc/internal/domain/entity"
	domainerrors "authsvc/internal/domain/errors"
	"authsvc/internal/domain/service"
	"authsvc/internal/errors"

	"golang.org/x/oauth2"
)

const (
	googleOAuthURL    = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

var defaultScopes = []string{"openid", "email", "profile"}

// OAuthClient runs the authorization-code flow against Google.
type OAuthClient struct {
	config      *oauth2.Config
	userInfoURL string
	logger      *slog.Logger
}

// NewOAuthClient builds the client from the googleOAuth config section.
// Endpoint URLs default to Google's public endpoints.
func NewOAuthClient(cfg *config.Config, logger *slog.Logger) (service.OAuthProvider, error) {
	g := cfg.GoogleOAuth
	if g == nil || g.ClientID == "" {
		return nil, errors.New("googleOAuth.clientId must be provided")
	}

	scopes := strings.Fields(strings.ReplaceAll(g.Scopes, ",", " "))
	if len(scopes) == 0 {
		scopes = defaultScopes
	}

	return &OAuthClient{
		config: &oauth2.Config{
			ClientID:     g.ClientID,
			ClientSecret: g.ClientSecret,
			RedirectURL:  g.RedirectURI,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   orDefault(g.AuthURL, googleOAuthURL),
				TokenURL:  orDefault(g.TokenURL, googleTokenURL),
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		userInfoURL: orDefault(g.UserInfoURL, googleUserInfoURL),
		logger:      logger,
	}, nil
}

// AuthCodeURL constructs the Google consent URL carrying state for CSRF protection.
func (c *OAuthClient) AuthCodeURL(state string) string {
	return c.config.AuthCodeURL(state)
}

// Provider returns the OAuth provider type
func (c *OAuthClient) Provider() entity.ProviderType {
	return entity.ProviderTypeGoogle
}

// Exchange trades the authorization code for an access token and reads the user's profile with it.
func (c *OAuthClient) Exchange(ctx context.Context, code string) (*entity.ExternalProfile, error) {
	if code == "" {
		return nil, domainerrors.ErrOAuthFailed.WrapMessage("missing authorization code")
	}

	token, err := c.config.Exchange(ctx, code)
	if err != nil {
		c.logger.WarnContext(ctx, "Google code exchange failed", slog.Any("error", err))

		return nil, domainerrors.ErrOAuthFailed.WithCause(err)
	}

	profile, err := c.fetchUserInfo(ctx, token)
	if err != nil {
		return nil, err
	}

	c.logger.DebugContext(ctx, "Google profile fetched", slog.String("externalID", profile.ExternalID))

	return profile, nil
}

type userInfoResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
}

func (c *OAuthClient) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*entity.ExternalProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, nil)
	if err != nil {
		return nil, domainerrors.ErrOAuthFailed.WithCause(err)
	}

	resp, err := c.config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, domainerrors.ErrOAuthFailed.WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

		return nil, domainerrors.ErrOAuthFailed.WithCause(
			errors.Errorf("user info request failed with status %d: %s", resp.StatusCode, string(body)))
	}

	var info userInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, domainerrors.ErrOAuthFailed.WithCause(errors.Wrap(err, "failed to decode user info response"))
	}

	if info.ID == "" || info.Email == "" {
		return nil, domainerrors.ErrOAuthFailed.WrapMessage("user info is missing id or email")
	}

	return &entity.ExternalProfile{
		ExternalID:    info.ID,
		Email:         info.Email,
		EmailVerified: info.VerifiedEmail,
		DisplayName:   info.Name,
		GivenName:     info.GivenName,
		FamilyName:    info.FamilyName,
	}, nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}
