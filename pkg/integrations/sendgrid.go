package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/quartermasters/nudge-engine/pkg/config"
	"github.com/quartermasters/nudge-engine/pkg/models"
)

const sendgridAPIBase = "https://api.sendgrid.com"

// Cart recovery email templates by trigger window.
const (
	EmailTemplate4h  = "email_4h"
	EmailTemplate24h = "email_24h"
)

// PerformanceReport carries the numbers for the daily merchant report email.
type PerformanceReport struct {
	Conversations  int
	DeflectionRate string
	CartRecovery   string
	Revenue        string
}

// SendGridClient sends transactional email through the SendGrid v3 API.
// Send failures are absorbed into a false return; when no API key is
// configured every send is skipped with a log line.
type SendGridClient struct {
	cfg        *config.SendGridConfig
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewSendGridClient creates a new SendGrid client.
func NewSendGridClient(cfg *config.SendGridConfig, logger *zap.Logger) *SendGridClient {
	return &SendGridClient{
		cfg:        cfg,
		baseURL:    sendgridAPIBase,
		httpClient: newHTTPClient(),
		breaker:    newBreaker("sendgrid"),
		logger:     logger.Named("sendgrid"),
	}
}

// SendEmail delivers one email. text or html may be empty.
func (c *SendGridClient) SendEmail(ctx context.Context, to, subject, text, html string) bool {
	if !c.cfg.IsConfigured() {
		c.logger.Info("sendgrid not configured, skipping email send")
		return false
	}

	content := make([]map[string]string, 0, 2)
	if text != "" {
		content = append(content, map[string]string{"type": "text/plain", "value": text})
	}
	if html != "" {
		content = append(content, map[string]string{"type": "text/html", "value": html})
	}

	payload, err := json.Marshal(map[string]any{
		"personalizations": []map[string]any{
			{"to": []map[string]string{{"email": to}}},
		},
		"from":    map[string]string{"email": c.cfg.FromEmail},
		"subject": subject,
		"content": content,
	})
	if err != nil {
		c.logger.Error("email payload marshal failed", zap.Error(err))
		return false
	}

	_, err = c.breaker.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v3/mail/send", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
		}
		return nil, nil
	})
	if err != nil {
		c.logger.Error("email send failed", zap.String("to", to), zap.Error(err))
		return false
	}

	return true
}

// SendCartRecoveryEmail sends the abandoned-cart email for the given trigger
// window template. The 24h variant includes the SAVE10 discount code.
func (c *SendGridClient) SendCartRecoveryEmail(ctx context.Context, to string, items []models.CartItem, cartURL, template string) bool {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Title)
	}
	itemNames := strings.Join(names, ", ")

	var subject, html string
	switch template {
	case EmailTemplate24h:
		subject = "Last chance - 10% off your cart!"
		html = fmt.Sprintf(`
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2>Don't miss out! 10%% off your cart</h2>
				<p>Your cart with <strong>%s</strong> is still waiting.</p>
				<p>Use code <strong>SAVE10</strong> for 10%% off - valid for 24 hours only!</p>
				<div style="text-align: center; margin: 20px 0;">
					<a href="%s" style="background-color: #ef4444; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">
						Claim Your Discount
					</a>
				</div>
			</div>`, itemNames, cartURL)
	default:
		subject = "Still thinking it over?"
		html = fmt.Sprintf(`
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2>Your cart is waiting for you!</h2>
				<p>You left these items in your cart: <strong>%s</strong></p>
				<p>Complete your purchase before they're gone!</p>
				<div style="text-align: center; margin: 20px 0;">
					<a href="%s" style="background-color: #3b82f6; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">
						Complete Your Order
					</a>
				</div>
			</div>`, itemNames, cartURL)
	}

	return c.SendEmail(ctx, to, subject, "", html)
}

// SendSystemAlert notifies a merchant about an operational problem.
func (c *SendGridClient) SendSystemAlert(ctx context.Context, to, title, message string) bool {
	html := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<h2 style="color: #ef4444;">%s</h2>
			<p>%s</p>
			<p style="color: #6b7280; font-size: 14px;">
				This is an automated message from your Nudge AI assistant.
			</p>
		</div>`, title, message)

	return c.SendEmail(ctx, to, "Nudge Alert: "+title, "", html)
}

// SendPerformanceReport emails the daily metrics summary to a merchant.
func (c *SendGridClient) SendPerformanceReport(ctx context.Context, to string, report PerformanceReport) bool {
	html := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<h2>Daily Performance Report</h2>
			<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
				<tr style="background-color: #f3f4f6;">
					<td style="padding: 12px; border: 1px solid #e5e7eb; font-weight: bold;">Metric</td>
					<td style="padding: 12px; border: 1px solid #e5e7eb; font-weight: bold;">Value</td>
				</tr>
				<tr>
					<td style="padding: 12px; border: 1px solid #e5e7eb;">Conversations</td>
					<td style="padding: 12px; border: 1px solid #e5e7eb;">%d</td>
				</tr>
				<tr>
					<td style="padding: 12px; border: 1px solid #e5e7eb;">Deflection Rate</td>
					<td style="padding: 12px; border: 1px solid #e5e7eb;">%s</td>
				</tr>
				<tr>
					<td style="padding: 12px; border: 1px solid #e5e7eb;">Cart Recovery</td>
					<td style="padding: 12px; border: 1px solid #e5e7eb;">%s</td>
				</tr>
				<tr>
					<td style="padding: 12px; border: 1px solid #e5e7eb;">Revenue Impact</td>
					<td style="padding: 12px; border: 1px solid #e5e7eb;">$%s</td>
				</tr>
			</table>
		</div>`, report.Conversations, report.DeflectionRate, report.CartRecovery, report.Revenue)

	return c.SendEmail(ctx, to, "Daily Performance Report - Nudge AI", "", html)
}
