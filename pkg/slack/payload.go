// Package slack delivers messages to a Slack incoming webhook.
package slack

import "strings"

// Payload is the message document posted to the webhook.
type Payload struct {
	// Text is the message body.
	Text string `json:"text"`
	// Channel is the recipient channel, including its # prefix.
	Channel string `json:"channel"`
	// Username is the name the message is posted under.
	Username string `json:"username,omitempty"`
	// IconURL is the avatar for the message.
	IconURL string `json:"icon_url,omitempty"`
	// IconEmoji is the emoji avatar for the message. Mutually exclusive
	// with IconURL.
	IconEmoji string `json:"icon_emoji,omitempty"`
}

// NewPayload builds a webhook payload. The channel gets a # prefix if it
// has none, and iconURL wins over iconEmoji when both are set.
func NewPayload(text, channel, username, iconURL, iconEmoji string) Payload {
	if !strings.HasPrefix(channel, "#") {
		channel = "#" + channel
	}

	p := Payload{
		Text:     text,
		Channel:  channel,
		Username: username,
	}
	switch {
	case iconURL != "":
		p.IconURL = iconURL
	case iconEmoji != "":
		p.IconEmoji = iconEmoji
	}

	return p
}
