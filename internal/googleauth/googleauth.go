// Package googleauth builds authenticated HTTP clients for the Google
// APIs from the credentials and token files produced by the Google
// API console and the interactive auth flow.
package googleauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/fyrsmithlabs/interviewd/internal/config"
)

// Client returns an HTTP client authorized for the given scopes. It
// fails with guidance when the stored token is missing, since minting
// one requires the interactive flow in AuthURL/Exchange.
func Client(ctx context.Context, cfg config.GoogleConfig, scopes ...string) (*http.Client, error) {
	conf, err := oauthConfig(cfg, scopes...)
	if err != nil {
		return nil, err
	}
	tok, err := loadToken(cfg.TokenPath)
	if err != nil {
		return nil, fmt.Errorf("load token %s: %w (run \"recruiterctl auth\" to authorize)", cfg.TokenPath, err)
	}
	return conf.Client(ctx, tok), nil
}

// AuthURL returns the consent URL for the interactive auth flow.
func AuthURL(cfg config.GoogleConfig, scopes ...string) (string, error) {
	conf, err := oauthConfig(cfg, scopes...)
	if err != nil {
		return "", err
	}
	return conf.AuthCodeURL("state-token", oauth2.AccessTypeOffline), nil
}

// Exchange trades an auth code for a token and persists it at the
// configured token path.
func Exchange(ctx context.Context, cfg config.GoogleConfig, code string, scopes ...string) error {
	conf, err := oauthConfig(cfg, scopes...)
	if err != nil {
		return err
	}
	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange auth code: %w", err)
	}
	return saveToken(cfg.TokenPath, tok)
}

func oauthConfig(cfg config.GoogleConfig, scopes ...string) (*oauth2.Config, error) {
	raw, err := os.ReadFile(cfg.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read credentials %s: %w", cfg.CredentialsPath, err)
	}
	conf, err := google.ConfigFromJSON(raw, scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return conf, nil
}

func loadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create token file: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(tok)
}
