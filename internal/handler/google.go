package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/dukerupert/inkwell/internal/model"
)

const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// GoogleClient runs the authorization-code flow against Google and reads
// the signed-in account's OpenID profile.
type GoogleClient struct {
	cfg         *oauth2.Config
	userInfoURL string
}

func NewGoogleClient(clientID, clientSecret, callbackURL string) *GoogleClient {
	return &GoogleClient{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     endpoints.Google,
		},
		userInfoURL: googleUserInfoURL,
	}
}

func (c *GoogleClient) AuthCodeURL(state string) string {
	return c.cfg.AuthCodeURL(state)
}

// Profile exchanges the authorization code and fetches the userinfo document.
func (c *GoogleClient) Profile(ctx context.Context, code string) (model.GoogleProfile, error) {
	var p model.GoogleProfile

	tok, err := c.cfg.Exchange(ctx, code)
	if err != nil {
		return p, fmt.Errorf("exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, nil)
	if err != nil {
		return p, fmt.Errorf("build userinfo request: %w", err)
	}
	resp, err := c.cfg.Client(ctx, tok).Do(req)
	if err != nil {
		return p, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return p, fmt.Errorf("userinfo status %d: %s", resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return p, fmt.Errorf("decode userinfo: %w", err)
	}
	return p, nil
}
