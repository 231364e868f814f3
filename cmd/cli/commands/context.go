package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/mlavelle/wardroster/internal/config"
	"github.com/mlavelle/wardroster/pkg/clients/gmailclient"
	"github.com/mlavelle/wardroster/pkg/core/services"
	"github.com/mlavelle/wardroster/pkg/db"
)

// AppContext holds the application dependencies shared across all commands.
// GmailClient is nil when credentials are missing; commands then run
// without the mail channel.
type AppContext struct {
	Cfg         *config.Config
	GmailClient *gmailclient.Client
	Database    db.Database
	Logger      *zap.Logger
	Ctx         context.Context
}

// notifier returns the mail channel as a service interface, keeping the
// interface itself nil when no client exists
func (app *AppContext) notifier() services.Notifier {
	if app.GmailClient == nil {
		return nil
	}
	return app.GmailClient
}

// replySource returns the reply channel, nil when no client exists
func (app *AppContext) replySource() services.ReplySource {
	if app.GmailClient == nil {
		return nil
	}
	return app.GmailClient
}
