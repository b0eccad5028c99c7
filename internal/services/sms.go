package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const fast2smsURL = "https://www.fast2sms.com/dev/bulkV2"

// SMSSender delivers one-time codes out-of-band.
type SMSSender interface {
	SendOTP(ctx context.Context, phone, code string) error
}

// fast2smsClient talks to the Fast2SMS bulk SMS HTTP API.
type fast2smsClient struct {
	apiKey     string
	httpClient *http.Client
	logger     *zap.SugaredLogger
}

// NewFast2SMSClient creates a Fast2SMS sender.
func NewFast2SMSClient(apiKey string, logger *zap.SugaredLogger) SMSSender {
	return &fast2smsClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

type fast2smsRequest struct {
	Route   string `json:"route"`
	Numbers string `json:"numbers"`
	Message string `json:"message"`
}

type fast2smsResponse struct {
	Return  bool   `json:"return"`
	Message any    `json:"message"`
	Request string `json:"request_id"`
}

// SendOTP posts the code to the OTP route. Fast2SMS signals success with
// a boolean "return" flag rather than the HTTP status alone.
func (f *fast2smsClient) SendOTP(ctx context.Context, phone, code string) error {
	if f.apiKey == "" {
		return fmt.Errorf("fast2sms: API key missing")
	}

	payload := fast2smsRequest{
		Route:   "otp",
		Numbers: phone,
		Message: fmt.Sprintf("Your MY STORE OTP is %s. Valid for 5 minutes.", code),
	}

	body := new(bytes.Buffer)
	if err := json.NewEncoder(body).Encode(payload); err != nil {
		return fmt.Errorf("fast2sms: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fast2smsURL, body)
	if err != nil {
		return fmt.Errorf("fast2sms: build request: %w", err)
	}
	req.Header.Set("authorization", f.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fast2sms: send request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	var parsed fast2smsResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("fast2sms: unexpected response (status %d): %s", resp.StatusCode, string(raw))
	}

	if !parsed.Return {
		f.logger.Warnf("fast2sms delivery failed: status=%d body=%s", resp.StatusCode, string(raw))
		return fmt.Errorf("fast2sms: delivery failed: %v", parsed.Message)
	}

	return nil
}
