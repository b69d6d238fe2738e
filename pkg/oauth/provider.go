package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// UserInfo is the provider-neutral identity returned after sign-in.
type UserInfo struct {
	Provider string `json:"provider"`
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Picture  string `json:"picture,omitempty"`
}

// Provider runs the authorization-code flow against one identity provider.
type Provider interface {
	// Name is the path segment identifying the provider, e.g. "github".
	Name() string

	// AuthCodeURL returns the consent page URL carrying state.
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for a token.
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)

	// FetchUserInfo loads the signed-in identity. Implementations return
	// ErrEmailNotVerified when the provider reports no verified email.
	FetchUserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error)
}

// Config holds client credentials for a provider.
type Config struct {
	ClientID     string   `mapstructure:"client_id"`
	ClientSecret string   `mapstructure:"client_secret"`
	RedirectURL  string   `mapstructure:"redirect_url"`
	Scopes       []string `mapstructure:"scopes"`
}

// Enabled reports whether credentials are present.
func (c Config) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// base carries the parts shared by all providers.
type base struct {
	config     *oauth2.Config
	httpClient *http.Client
	apiURL     string
}

func newBase(cfg Config, endpoint oauth2.Endpoint, apiURL string, defaultScopes []string, opts []Option) (*base, error) {
	if cfg.ClientID == "" {
		return nil, ErrMissingClientID
	}
	if cfg.ClientSecret == "" {
		return nil, ErrMissingClientSecret
	}

	o := options{endpoint: endpoint, apiURL: apiURL}
	for _, opt := range opts {
		opt(&o)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = defaultScopes
	}

	return &base{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     o.endpoint,
		},
		httpClient: o.httpClient,
		apiURL:     o.apiURL,
	}, nil
}

func (b *base) AuthCodeURL(state string) string {
	return b.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (b *base) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return b.config.Exchange(b.withHTTPClient(ctx), code)
}

func (b *base) withHTTPClient(ctx context.Context) context.Context {
	if b.httpClient != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, b.httpClient)
	}
	return ctx
}

// getJSON performs an authorized GET against the provider API and decodes the body.
func (b *base) getJSON(ctx context.Context, token *oauth2.Token, path string, dest any) error {
	client := b.config.Client(b.withHTTPClient(ctx), token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.apiURL+path, nil)
	if err != nil {
		return errors.Join(ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return errors.Join(ErrFetchFailed, fmt.Errorf("get %s: %w", path, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Join(ErrRequestFailed, fmt.Errorf("get %s: status=%d", path, resp.StatusCode))
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return errors.Join(ErrDecodeFailed, fmt.Errorf("decode %s: %w", path, err))
	}
	return nil
}
