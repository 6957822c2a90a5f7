// Package platform defines the thin boundary to the chat platform: message
// delivery, channel visibility, history reads, and image text extraction.
// The pipeline never sees wire formats, only these interfaces.
package platform

import (
	"context"
	"time"
)

// Scope identifies where a query came from.
type Scope struct {
	ServerID  string
	ChannelID string
	UserID    string
}

type Attachment struct {
	URL      string
	Filename string
}

// Message is one inbound or historical chat message.
type Message struct {
	ID          string
	Scope       Scope
	Author      string
	Content     string
	Attachments []Attachment
	CreatedAt   time.Time
}

func (m Message) HasAttachments() bool {
	return len(m.Attachments) > 0
}

type Channel struct {
	ID   string
	Name string
	// Category is the grouping the channel sits under, e.g. "Week 5"
	// for matchup channels. Empty when the platform has no grouping.
	Category string
}

// Messenger sends response text back to a channel.
type Messenger interface {
	Send(ctx context.Context, channelID, text string) error
}

// PermissionChecker answers whether an actor may see a channel. Search
// results must never leak content from channels the asker cannot read.
type PermissionChecker interface {
	CanSee(ctx context.Context, userID, channelID string) (bool, error)
}

// RoleChecker answers whether an actor holds the commissioner role. Write
// operations are commissioner-only.
type RoleChecker interface {
	IsCommissioner(ctx context.Context, userID, serverID string) (bool, error)
}

// ChannelLister enumerates a server's text channels.
type ChannelLister interface {
	Channels(ctx context.Context, serverID string) ([]Channel, error)
}

// HistoryReader reads recent messages from a channel, newest first.
type HistoryReader interface {
	Recent(ctx context.Context, channelID string, limit int) ([]Message, error)
}

// ImageExtractor turns an attached image into text, e.g. a schedule
// screenshot into matchup lines.
type ImageExtractor interface {
	ExtractText(ctx context.Context, imageURL string) (string, error)
}
