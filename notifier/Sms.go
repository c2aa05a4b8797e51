package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/viper"

	"github.com/meetsik24/Split-Bill-Platform-Backend/utils"
)

// Result is the outcome of one SMS send attempt.
type Result struct {
	Success bool   `json:"success"`
	Id      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SMSClient posts messages to the configured SMS gateway and records every
// attempt in the sms table. Failures are reported in the Result, never as a
// panic; callers treat them as best-effort.
type SMSClient struct {
	db          *pgxpool.Pool
	http        *http.Client
	serviceName string
}

func NewSMSClient(db *pgxpool.Pool) *SMSClient {
	return &SMSClient{
		db:          db,
		http:        &http.Client{Timeout: 15 * time.Second},
		serviceName: "billsplit-service",
	}
}

func (c *SMSClient) Send(ctx context.Context, phoneNumber string, message string) Result {
	if utils.IsTestMode {
		return Result{Success: true, Id: "TEST_SMS_ID"}
	}
	messageId, err := c.deliver(ctx, phoneNumber, message)
	result := Result{Success: err == nil, Id: messageId}
	if err != nil {
		result.Error = err.Error()
		utils.LogMessage("error", "SendSMS: "+err.Error(), c.serviceName)
	}
	c.record(ctx, phoneNumber, message, result)
	return result
}

func (c *SMSClient) deliver(ctx context.Context, phoneNumber string, message string) (string, error) {
	gatewayUrl := viper.GetString("sms_gateway_url")
	if gatewayUrl == "" {
		return "", errors.New("sms_gateway_url is not configured")
	}
	payload := map[string]interface{}{
		"sender_id": viper.GetString("sms_sender_id"),
		"phone":     phoneNumber,
		"message":   message,
	}
	jsonData, _ := json.Marshal(payload)
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, gatewayUrl, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	request.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(request)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", errors.New("failed to send sms, unexpected gateway response: " + strings.TrimSpace(string(body)))
	}
	status, _ := result["status"].(string)
	if status != "success" {
		gatewayMessage, _ := result["message"].(string)
		return "", errors.New("failed to send sms, err: " + gatewayMessage)
	}
	messageId, _ := result["message_id"].(string)
	return messageId, nil
}

// record persists the attempt; a nil pool (unit tests) skips persistence.
func (c *SMSClient) record(ctx context.Context, phoneNumber string, message string, result Result) {
	if c.db == nil {
		return
	}
	status := "SENT"
	if !result.Success {
		status = "FAILED"
	}
	_, err := c.db.Exec(ctx, "INSERT INTO sms (phone, message, status, message_id, error_message) VALUES ($1, $2, $3, $4, $5)",
		phoneNumber, message, status, result.Id, result.Error)
	if err != nil {
		utils.LogMessage("critical", "SendSMS: failed to save sms, err: "+err.Error(), c.serviceName)
	}
}
