package oauth

import (
	"net/http"

	"golang.org/x/oauth2"
)

// Option configures a provider.
type Option func(*options)

type options struct {
	httpClient *http.Client
	endpoint   oauth2.Endpoint
	apiURL     string
}

// WithHTTPClient sets the client used for token and API calls.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithEndpoint overrides the authorization and token URLs.
func WithEndpoint(ep oauth2.Endpoint) Option {
	return func(o *options) {
		o.endpoint = ep
	}
}

// WithAPIURL overrides the base URL of the user info API.
func WithAPIURL(u string) Option {
	return func(o *options) {
		if u != "" {
			o.apiURL = u
		}
	}
}
