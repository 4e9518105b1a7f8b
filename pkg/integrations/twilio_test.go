package integrations

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/quartermasters/nudge-engine/pkg/config"
	"github.com/quartermasters/nudge-engine/pkg/models"
)

func testTwilioClient(t *testing.T, handler http.Handler) *TwilioClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewTwilioClient(&config.TwilioConfig{
		AccountSID: "AC123",
		AuthToken:  "secret",
		FromNumber: "+15550100",
	}, zap.NewNop())
	client.baseURL = srv.URL
	return client
}

func TestTwilioClient_SendSMS(t *testing.T) {
	var gotPath, gotTo, gotFrom, gotBody string
	client := testTwilioClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotPath = r.URL.Path
		gotTo = r.PostForm.Get("To")
		gotFrom = r.PostForm.Get("From")
		gotBody = r.PostForm.Get("Body")

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "AC123", user)
		assert.Equal(t, "secret", pass)

		w.WriteHeader(http.StatusCreated)
	}))

	ok := client.SendSMS(context.Background(), "+15550199", "hello")

	assert.True(t, ok)
	assert.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", gotPath)
	assert.Equal(t, "+15550199", gotTo)
	assert.Equal(t, "+15550100", gotFrom)
	assert.Equal(t, "hello", gotBody)
}

func TestTwilioClient_SendSMS_UpstreamError(t *testing.T) {
	client := testTwilioClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))

	assert.False(t, client.SendSMS(context.Background(), "+15550199", "hello"))
}

func TestTwilioClient_SendSMS_NotConfigured(t *testing.T) {
	client := NewTwilioClient(&config.TwilioConfig{}, zap.NewNop())

	assert.False(t, client.SendSMS(context.Background(), "+15550199", "hello"))
}

func TestTwilioClient_SendCartRecoverySMS(t *testing.T) {
	var gotBody string
	client := testTwilioClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotBody = r.PostForm.Get("Body")
		w.WriteHeader(http.StatusCreated)
	}))

	items := []models.CartItem{{Title: "Mug"}, {Title: "Tee"}}
	ok := client.SendCartRecoverySMS(context.Background(), "+15550199", items, "https://shop.example/cart/abc")

	assert.True(t, ok)
	assert.Equal(t, "You left Mug, Tee in your cart. Complete your order: https://shop.example/cart/abc", gotBody)
}
