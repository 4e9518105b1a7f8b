package integrations

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/quartermasters/nudge-engine/pkg/config"
	"github.com/quartermasters/nudge-engine/pkg/models"
)

const twilioAPIBase = "https://api.twilio.com"

// TwilioClient sends SMS through the Twilio messages API. Send failures are
// absorbed into a false return so callers treat SMS as best-effort.
type TwilioClient struct {
	cfg        *config.TwilioConfig
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewTwilioClient creates a new Twilio client.
func NewTwilioClient(cfg *config.TwilioConfig, logger *zap.Logger) *TwilioClient {
	return &TwilioClient{
		cfg:        cfg,
		baseURL:    twilioAPIBase,
		httpClient: newHTTPClient(),
		breaker:    newBreaker("twilio"),
		logger:     logger.Named("twilio"),
	}
}

// SendSMS delivers one text message. Returns false when Twilio is not
// configured or the send fails.
func (c *TwilioClient) SendSMS(ctx context.Context, to, body string) bool {
	if !c.cfg.IsConfigured() {
		c.logger.Info("twilio not configured, skipping SMS send")
		return false
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.cfg.FromNumber)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.cfg.AccountSID)

	_, err := c.breaker.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("twilio returned status %d", resp.StatusCode)
		}
		return nil, nil
	})
	if err != nil {
		c.logger.Error("SMS send failed", zap.String("to", to), zap.Error(err))
		return false
	}

	return true
}

// SendCartRecoverySMS sends the abandoned-cart nudge for the given items.
func (c *TwilioClient) SendCartRecoverySMS(ctx context.Context, to string, items []models.CartItem, cartURL string) bool {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Title)
	}

	body := fmt.Sprintf("You left %s in your cart. Complete your order: %s", strings.Join(names, ", "), cartURL)
	return c.SendSMS(ctx, to, body)
}
