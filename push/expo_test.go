package push

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend(t *testing.T) {
	var got expoMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewExpoClient(srv.URL)
	err := client.Send("ExponentPushToken[abc]", "New participant", "Marko joined Morning Run", map[string]string{"type": "participant_joined"})
	require.NoError(t, err)

	assert.Equal(t, "ExponentPushToken[abc]", got.To)
	assert.Equal(t, "New participant", got.Title)
	assert.Equal(t, "Marko joined Morning Run", got.Body)
	assert.Equal(t, "default", got.Sound)
	assert.Equal(t, "participant_joined", got.Data["type"])
}

func TestSendNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewExpoClient(srv.URL).Send("ExponentPushToken[abc]", "t", "b", nil)
	assert.Error(t, err)
}

func TestNewExpoClientDefaultURL(t *testing.T) {
	assert.Equal(t, DefaultExpoURL, NewExpoClient("").url)
}
