package notifier

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"
)

// maxTweetLength is the Twitter status limit
const maxTweetLength = 280

// TwitterNotifier posts reports to Twitter
type TwitterNotifier struct {
	client *twitter.Client
}

// TwitterCredentials holds the OAuth1 user-context keys.
type TwitterCredentials struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string
}

// NewTwitterNotifier creates a Twitter notifier. base, when non-nil, is the
// transport the OAuth1 client signs requests over.
func NewTwitterNotifier(creds TwitterCredentials, base *http.Client) (*TwitterNotifier, error) {
	if creds.APIKey == "" || creds.APISecret == "" || creds.AccessToken == "" || creds.AccessSecret == "" {
		return nil, fmt.Errorf("missing required Twitter credentials")
	}

	config := oauth1.NewConfig(creds.APIKey, creds.APISecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)
	ctx := oauth1.NoContext
	if base != nil {
		ctx = context.WithValue(ctx, oauth1.HTTPClient, base)
	}
	httpClient := config.Client(ctx, token)
	client := twitter.NewClient(httpClient)

	return &TwitterNotifier{client: client}, nil
}

// Notify posts message as a single tweet
func (n *TwitterNotifier) Notify(_ context.Context, message string) error {
	tweet := formatTweet(message)
	if _, _, err := n.client.Statuses.Update(tweet, nil); err != nil {
		return fmt.Errorf("failed to post tweet: %w", err)
	}
	return nil
}

// formatTweet cuts message to the Twitter limit
func formatTweet(message string) string {
	r := []rune(message)
	if len(r) > maxTweetLength {
		// Truncate and add ellipsis
		return string(r[:maxTweetLength-3]) + "..."
	}
	return message
}
