package testutil

import (
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
)

// SlackAPIURL is the default Web API base used by the Slack client
const SlackAPIURL = "https://slack.com/api/"

// SlackMessage is a conversations.history message in wire form
type SlackMessage struct {
	Type        string                   `json:"type"`
	Timestamp   string                   `json:"ts"`
	User        string                   `json:"user,omitempty"`
	Text        string                   `json:"text"`
	Attachments []map[string]interface{} `json:"attachments,omitempty"`
}

// SlackChannel is a conversations.list channel in wire form
type SlackChannel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewMockedHTTPClient creates an http.Client whose transport is an httpmock
// mock. The mock is deactivated when the test ends.
func NewMockedHTTPClient(t *testing.T) *http.Client {
	t.Helper()
	client := &http.Client{}
	httpmock.ActivateNonDefault(client)
	t.Cleanup(httpmock.DeactivateAndReset)
	return client
}

// RegisterSlackMethod registers a responder for a Web API method. Both verbs
// are registered since the client posts forms but some methods use GET.
func RegisterSlackMethod(method string, responder httpmock.Responder) {
	url := SlackAPIURL + method
	httpmock.RegisterResponder(http.MethodPost, url, responder)
	httpmock.RegisterResponder(http.MethodGet, url, responder)
}

// SlackHistoryResponder answers conversations.history with messages
func SlackHistoryResponder(messages ...SlackMessage) httpmock.Responder {
	for i := range messages {
		if messages[i].Type == "" {
			messages[i].Type = "message"
		}
	}
	return httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]interface{}{
		"ok":       true,
		"messages": messages,
		"has_more": false,
	})
}

// SlackChannelsResponder answers conversations.list with one page of channels
func SlackChannelsResponder(next string, channels ...SlackChannel) httpmock.Responder {
	return httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]interface{}{
		"ok":       true,
		"channels": channels,
		"response_metadata": map[string]string{
			"next_cursor": next,
		},
	})
}

// SlackErrorResponder answers any method with a Slack API error
func SlackErrorResponder(code string) httpmock.Responder {
	return httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]interface{}{
		"ok":    false,
		"error": code,
	})
}
