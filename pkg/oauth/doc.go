// Package oauth implements the authorization-code flow for GitHub and Google
// on top of golang.org/x/oauth2.
//
//	gh, err := oauth.NewGitHubProvider(oauth.Config{
//	    ClientID:     cfg.GitHub.ClientID,
//	    ClientSecret: cfg.GitHub.ClientSecret,
//	    RedirectURL:  "https://example.com/api/auth/callback/github",
//	})
//
// Endpoints can be redirected with [WithEndpoint] and [WithAPIURL], which is
// how the tests point providers at an httptest server.
package oauth
