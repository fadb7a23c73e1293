// Package push delivers mobile push messages through the Expo push API.
package push

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const DefaultExpoURL = "https://exp.host/--/api/v2/push/send"

type ExpoClient struct {
	url        string
	httpClient *http.Client
}

func NewExpoClient(url string) *ExpoClient {
	if url == "" {
		url = DefaultExpoURL
	}
	return &ExpoClient{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type expoMessage struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
	Sound string            `json:"sound"`
}

func (c *ExpoClient) Send(token, title, body string, data map[string]string) error {
	payload, err := json.Marshal(expoMessage{
		To:    token,
		Title: title,
		Body:  body,
		Data:  data,
		Sound: "default",
	})
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Post(c.url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("expo push: expected status 200 but got %s", resp.Status)
	}
	return nil
}
