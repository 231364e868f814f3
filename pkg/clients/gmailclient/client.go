package gmailclient

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/mlavelle/wardroster/internal/config"
	"github.com/mlavelle/wardroster/pkg/utils"
)

// ErrMissingCredentials means the Gmail channel is unusable: no OAuth client
// config or no valid token. Callers skip the affected step with a warning
// and continue the run where possible.
var ErrMissingCredentials = errors.New("gmail credentials missing")

// Client wraps the Gmail API for sending offers and polling replies
type Client struct {
	service      *gmail.Service
	userID       string
	lastSendTime time.Time
	sendMutex    sync.Mutex
}

// NewClient creates a new Gmail client. Tokens must already exist on disk
// for the environment; there is no interactive flow here.
func NewClient(ctx context.Context, oauthCfg *config.OAuthClientConfig, userID, env string) (*Client, error) {
	oauthConfig, err := utils.GetOAuthConfig(oauthCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to get oauth config: %w", err)
	}

	token, err := utils.GetToken(ctx, oauthConfig, env)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingCredentials, err)
	}

	httpClient := oauthConfig.Client(ctx, token)

	service, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	return &Client{
		service: service,
		userID:  userID,
	}, nil
}
