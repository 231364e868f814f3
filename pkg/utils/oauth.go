package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/mlavelle/wardroster/internal/config"
)

const (
	tokenDirName   = ".wardroster/tokens"
	tokenFilePerms = 0600
	tokenDirPerms  = 0700
)

var (
	tokenCache   *oauth2.Token
	tokenCacheMu sync.Mutex
)

// OAuth scopes for the Gmail notification channel
const (
	ScopeGmailSend   = "https://www.googleapis.com/auth/gmail.send"
	ScopeGmailModify = "https://www.googleapis.com/auth/gmail.modify"
)

func requiredScopes() []string {
	return []string{
		ScopeGmailSend,
		ScopeGmailModify,
	}
}

// GetOAuthConfig creates an OAuth2 config from the OAuth client
// configuration, requesting the Gmail scopes upfront
func GetOAuthConfig(oauthCfg *config.OAuthClientConfig) (*oauth2.Config, error) {
	oauthConfigJSON, err := json.Marshal(oauthCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal oauth config: %w", err)
	}

	googleConfig, err := google.ConfigFromJSON(oauthConfigJSON, requiredScopes()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create google config: %w", err)
	}

	return googleConfig, nil
}

// GetToken returns a cached or persisted OAuth token for the environment,
// refreshing it through the token source when expired. There is no
// interactive flow here: a missing or unrefreshable token is an error the
// caller treats as missing credentials.
func GetToken(ctx context.Context, oauthConfig *oauth2.Config, env string) (*oauth2.Token, error) {
	tokenCacheMu.Lock()
	defer tokenCacheMu.Unlock()

	if tokenCache != nil && tokenCache.Valid() {
		return tokenCache, nil
	}

	fileToken, err := LoadTokenFromFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to load oauth token: %w", err)
	}

	if !fileToken.Valid() {
		refreshed, err := oauthConfig.TokenSource(ctx, fileToken).Token()
		if err != nil {
			return nil, fmt.Errorf("failed to refresh oauth token: %w", err)
		}
		fileToken = refreshed
		if err := SaveTokenToFile(env, fileToken); err != nil {
			return nil, fmt.Errorf("failed to persist refreshed token: %w", err)
		}
	}

	tokenCache = fileToken
	return fileToken, nil
}

// LoadTokenFromFile loads a persisted token for the given environment
func LoadTokenFromFile(env string) (*oauth2.Token, error) {
	path, err := tokenFilePath(env)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}

	return &token, nil
}

// SaveTokenToFile persists a token for the given environment
func SaveTokenToFile(env string, token *oauth2.Token) error {
	path, err := tokenFilePath(env)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), tokenDirPerms); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if err := os.WriteFile(path, data, tokenFilePerms); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}

func tokenFilePath(env string) (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, tokenDirName, env+".json"), nil
}
