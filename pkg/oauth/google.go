package oauth

import (
	"context"

	"golang.org/x/oauth2"
	googleOAuth "golang.org/x/oauth2/google"
)

const (
	GoogleProviderName = "google"
	googleAPIURL       = "https://www.googleapis.com"
)

// GoogleProvider signs users in with Google.
type GoogleProvider struct {
	*base
}

// NewGoogleProvider creates a Google provider. Default scopes: userinfo email and profile.
func NewGoogleProvider(cfg Config, opts ...Option) (*GoogleProvider, error) {
	b, err := newBase(cfg, googleOAuth.Endpoint, googleAPIURL, []string{
		"https://www.googleapis.com/auth/userinfo.email",
		"https://www.googleapis.com/auth/userinfo.profile",
	}, opts)
	if err != nil {
		return nil, err
	}
	return &GoogleProvider{base: b}, nil
}

func (p *GoogleProvider) Name() string { return GoogleProviderName }

func (p *GoogleProvider) FetchUserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error) {
	var u struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
		VerifiedEmail bool   `json:"verified_email"`
	}
	if err := p.getJSON(ctx, token, "/oauth2/v2/userinfo", &u); err != nil {
		return nil, err
	}
	if !u.VerifiedEmail {
		return nil, ErrEmailNotVerified
	}

	return &UserInfo{
		Provider: GoogleProviderName,
		ID:       u.ID,
		Email:    u.Email,
		Name:     u.Name,
		Picture:  u.Picture,
	}, nil
}

var _ Provider = (*GoogleProvider)(nil)
