package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/viper"

	"github.com/meetsik24/Split-Bill-Platform-Backend/utils"
)

func TestSendShortCircuitsInTestMode(t *testing.T) {
	utils.IsTestMode = true
	defer func() { utils.IsTestMode = false }()
	client := NewSMSClient(nil)
	result := client.Send(context.Background(), "+255712345678", "hello")
	if !result.Success || result.Id != "TEST_SMS_ID" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestSendPostsGatewayPayload(t *testing.T) {
	utils.IsTestMode = false
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]string{"status": "success", "message_id": "msg-1"})
	}))
	defer server.Close()
	viper.Set("sms_gateway_url", server.URL)
	viper.Set("sms_sender_id", "BILLSPLIT")

	client := NewSMSClient(nil)
	result := client.Send(context.Background(), "+255712345678", "You owe 25000.00")
	if !result.Success || result.Id != "msg-1" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if got["phone"] != "+255712345678" || got["sender_id"] != "BILLSPLIT" {
		t.Fatalf("unexpected payload: %v", got)
	}
}

func TestSendReportsGatewayFailure(t *testing.T) {
	utils.IsTestMode = false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "failed", "message": "no credit"})
	}))
	defer server.Close()
	viper.Set("sms_gateway_url", server.URL)

	client := NewSMSClient(nil)
	result := client.Send(context.Background(), "+255712345678", "hi")
	if result.Success {
		t.Fatal("expected failure result")
	}
	if result.Error == "" {
		t.Fatal("expected error detail in result")
	}
}
