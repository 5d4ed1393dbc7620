package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/techagentng/earnly/config"
	"github.com/techagentng/earnly/models"
	"github.com/techagentng/earnly/services/jwt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleOAuth runs the authorization code flow against Google.
type GoogleOAuth struct {
	oauth  *oauth2.Config
	secret string
}

func NewGoogleOAuth(c *config.Config) *GoogleOAuth {
	return &GoogleOAuth{
		oauth: &oauth2.Config{
			ClientID:     c.GoogleClientID,
			ClientSecret: c.GoogleClientSecret,
			RedirectURL:  c.GoogleRedirectURL,
			Endpoint:     google.Endpoint,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
		},
		secret: c.JWTSecret,
	}
}

func (g *GoogleOAuth) Enabled() bool {
	return g.oauth.ClientID != "" && g.oauth.ClientSecret != ""
}

// AuthURL returns the consent page URL carrying a signed state.
func (g *GoogleOAuth) AuthURL() (string, error) {
	state, err := jwt.GenerateStateToken(uuid.New().String(), g.secret)
	if err != nil {
		return "", err
	}
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// Exchange checks the state, trades the code for a token and reads the profile.
func (g *GoogleOAuth) Exchange(ctx context.Context, state, code string) (*models.GoogleUser, error) {
	if err := jwt.ValidateStateToken(state, g.secret); err != nil {
		return nil, errors.Wrap(err, "invalid oauth state")
	}
	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, errors.Wrap(err, "failed to exchange code for token")
	}

	resp, err := g.oauth.Client(ctx, token).Get(googleUserInfoURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to retrieve user data from Google")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-200 status code from Google API: %d", resp.StatusCode)
	}

	var user models.GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, errors.Wrap(err, "failed to decode user data")
	}
	return &user, nil
}
