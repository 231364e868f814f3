package gmailclient

import (
	"context"
	"fmt"

	"google.golang.org/api/gmail/v1"
)

// Reply is an inbound offer reply: the subject carries the structured tag
// <ACTION>-<offerId>, which the ledger parses and validates.
type Reply struct {
	MessageID string
	From      string
	Subject   string
}

const repliesQuery = `is:unread subject:(ACCEPT OR DECLINE)`

// FetchReplies lists unread inbox messages whose subject looks like an
// offer reply tag. Messages stay unread until MarkProcessed is called for
// them, so a failed run can observe them again.
func (c *Client) FetchReplies(ctx context.Context) ([]Reply, error) {
	listing, err := c.service.Users.Messages.List(c.userID).
		Q(repliesQuery).
		LabelIds("INBOX").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list reply messages: %w", err)
	}

	var replies []Reply
	for _, stub := range listing.Messages {
		msg, err := c.service.Users.Messages.Get(c.userID, stub.Id).
			Format("metadata").
			MetadataHeaders("Subject", "From").
			Context(ctx).
			Do()
		if err != nil {
			return nil, fmt.Errorf("failed to fetch reply message %s: %w", stub.Id, err)
		}

		reply := Reply{MessageID: stub.Id}
		for _, header := range msg.Payload.Headers {
			switch header.Name {
			case "Subject":
				reply.Subject = header.Value
			case "From":
				reply.From = header.Value
			}
		}
		replies = append(replies, reply)
	}

	return replies, nil
}

// MarkProcessed removes the UNREAD label from a processed reply message
func (c *Client) MarkProcessed(ctx context.Context, messageID string) error {
	modify := &gmail.ModifyMessageRequest{RemoveLabelIds: []string{"UNREAD"}}
	_, err := c.service.Users.Messages.Modify(c.userID, messageID, modify).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to mark reply %s processed: %w", messageID, err)
	}
	return nil
}
