package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/meetsik24/Split-Bill-Platform-Backend/bill"
	"github.com/meetsik24/Split-Bill-Platform-Backend/model"
	"github.com/meetsik24/Split-Bill-Platform-Backend/session"
	"github.com/meetsik24/Split-Bill-Platform-Backend/ussd"
	"github.com/meetsik24/Split-Bill-Platform-Backend/utils"
)

type fakeBillStore struct {
	bills map[string]*model.Bill
	next  int
	fail  bool
}

func newFakeBillStore() *fakeBillStore {
	return &fakeBillStore{bills: map[string]*model.Bill{}}
}

func (f *fakeBillStore) Create(ctx context.Context, creatorPhone string, creatorName string, amount float64, memberPhones []string, description string) (*model.Bill, error) {
	if f.fail {
		return nil, errors.New("store down")
	}
	f.next++
	created := &model.Bill{
		Id:           fmt.Sprintf("bill-%d", f.next),
		CreatorPhone: creatorPhone,
		CreatorName:  creatorName,
		Amount:       amount,
	}
	share := amount / float64(len(memberPhones))
	for _, memberPhone := range memberPhones {
		created.Members = append(created.Members, model.BillMember{
			BillId: created.Id,
			Phone:  memberPhone,
			Amount: share,
			Status: model.MemberStatusPending,
		})
	}
	f.bills[created.Id] = created
	return created, nil
}

func (f *fakeBillStore) MarkPaid(ctx context.Context, billId string, memberPhone string) (bool, error) {
	found, ok := f.bills[billId]
	if !ok {
		return false, nil
	}
	for i := range found.Members {
		if found.Members[i].Phone == memberPhone && found.Members[i].Status == model.MemberStatusPending {
			found.Members[i].Status = model.MemberStatusPaid
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBillStore) GetById(ctx context.Context, id string) (*model.Bill, error) {
	found, ok := f.bills[id]
	if !ok {
		return nil, bill.ErrNotFound
	}
	return found, nil
}

func (f *fakeBillStore) GetByCreatorPhone(ctx context.Context, creatorPhone string) ([]model.Bill, error) {
	result := []model.Bill{}
	for _, b := range f.bills {
		if b.CreatorPhone == creatorPhone {
			result = append(result, *b)
		}
	}
	return result, nil
}

func newTestApp(t *testing.T, store *fakeBillStore) (*fiber.App, session.Store) {
	t.Helper()
	utils.IsTestMode = true
	viper.Set("mode", "development")
	sessions := session.NewMemoryStore(0)
	localizer := i18n.NewLocalizer(i18n.NewBundle(language.English), "en")
	engine := ussd.NewEngine(sessions, store, localizer)

	app := fiber.New()
	ussdCtl := &USSDController{Engine: engine, Sessions: sessions}
	billCtl := &BillController{Bills: store}
	v1 := app.Group("/billsplit/api/v1/")
	v1.All("/service-status", ServiceStatusCheck)
	v1.All("/ussd", ussdCtl.Webhook)
	v1.Post("/bills", billCtl.CreateBill)
	v1.Get("/bills", billCtl.ListByCreator)
	v1.Get("/bills/:id", billCtl.GetBill)
	v1.Post("/bills/:id/payments", billCtl.MarkPaid)
	v1.Get("/sessions/count", ussdCtl.SessionCount)
	v1.Get("/sessions/:id", ussdCtl.GetSession)
	v1.Delete("/sessions", ussdCtl.ClearSessions)
	return app, sessions
}

func doJSON(t *testing.T, app *fiber.App, method string, path string, payload any) (int, map[string]interface{}) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewReader(data)
	}
	request := httptest.NewRequest(method, path, body)
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	decoded := map[string]interface{}{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		json.Unmarshal(raw, &decoded)
	}
	return resp.StatusCode, decoded
}

func ussdTurn(t *testing.T, app *fiber.App, sessionId string, text string) (string, string) {
	t.Helper()
	query := url.Values{}
	query.Set("sessionId", sessionId)
	query.Set("serviceCode", "*150*60#")
	query.Set("phoneNumber", "0712345678")
	query.Set("text", text)
	_, body := doJSON(t, app, http.MethodGet, "/billsplit/api/v1/ussd?"+query.Encode(), nil)
	message, _ := body["message"].(string)
	status, _ := body["status"].(string)
	return message, status
}

func TestServiceStatus(t *testing.T) {
	app, _ := newTestApp(t, newFakeBillStore())
	code, body := doJSON(t, app, http.MethodGet, "/billsplit/api/v1/service-status", nil)
	if code != 200 {
		t.Fatalf("status = %d", code)
	}
	if body["message"] == "" {
		t.Fatal("expected status message")
	}
}

func TestWebhookRejectsMissingFields(t *testing.T) {
	app, _ := newTestApp(t, newFakeBillStore())
	_, body := doJSON(t, app, http.MethodGet, "/billsplit/api/v1/ussd?sessionId=s1", nil)
	if body["status"] != "END" {
		t.Fatalf("expected END for malformed request, got %v", body)
	}
	if !strings.Contains(body["message"].(string), "Invalid request data") {
		t.Fatalf("unexpected message: %v", body["message"])
	}
}

func TestWebhookFullDialogue(t *testing.T) {
	store := newFakeBillStore()
	app, sessions := newTestApp(t, store)

	message, status := ussdTurn(t, app, "sess-http", "")
	if status != "CON" || !strings.Contains(message, "amount") {
		t.Fatalf("welcome turn: %q %q", message, status)
	}
	_, status = ussdTurn(t, app, "sess-http", "50000")
	if status != "CON" {
		t.Fatalf("amount turn status = %q", status)
	}
	message, status = ussdTurn(t, app, "sess-http", "0712345678,0698765432")
	if status != "CON" || !strings.Contains(message, "25000.00") {
		t.Fatalf("members turn: %q %q", message, status)
	}
	message, status = ussdTurn(t, app, "sess-http", "1")
	if status != "END" {
		t.Fatalf("confirm turn status = %q", status)
	}
	if !strings.Contains(message, "bill-1") {
		t.Fatalf("confirm message missing bill id: %q", message)
	}
	if sess, _ := sessions.Get("sess-http"); sess != nil {
		t.Fatal("session not deleted after END")
	}
}

func TestWebhookEchoesSessionAndServiceCode(t *testing.T) {
	app, _ := newTestApp(t, newFakeBillStore())
	query := url.Values{}
	query.Set("sessionId", "sess-echo")
	query.Set("serviceCode", "*150*60#")
	query.Set("phoneNumber", "0712345678")
	_, body := doJSON(t, app, http.MethodGet, "/billsplit/api/v1/ussd?"+query.Encode(), nil)
	if body["sessionId"] != "sess-echo" || body["serviceCode"] != "*150*60#" {
		t.Fatalf("request fields not echoed: %v", body)
	}
}

func TestWebhookAcceptsFormPost(t *testing.T) {
	app, _ := newTestApp(t, newFakeBillStore())
	form := url.Values{}
	form.Set("sessionId", "sess-form")
	form.Set("serviceCode", "*150*60#")
	form.Set("phoneNumber", "0712345678")
	form.Set("text", "")
	request := httptest.NewRequest(http.MethodPost, "/billsplit/api/v1/ussd", strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	decoded := map[string]interface{}{}
	json.NewDecoder(resp.Body).Decode(&decoded)
	if decoded["status"] != "CON" {
		t.Fatalf("form turn failed: %v", decoded)
	}
}

func TestCreateBillRest(t *testing.T) {
	store := newFakeBillStore()
	app, _ := newTestApp(t, store)
	code, body := doJSON(t, app, http.MethodPost, "/billsplit/api/v1/bills", map[string]interface{}{
		"creator_phone": "0712345678",
		"creator_name":  "Asha",
		"amount":        30000,
		"member_phones": []string{"0712345671", "0698765432"},
		"description":   "dinner",
	})
	if code != 201 {
		t.Fatalf("status = %d, body %v", code, body)
	}
	data := body["data"].(map[string]interface{})
	if data["creator_phone"] != "+255712345678" {
		t.Fatalf("creator phone not normalized: %v", data["creator_phone"])
	}
}

func TestCreateBillRejectsInvalidMember(t *testing.T) {
	app, _ := newTestApp(t, newFakeBillStore())
	code, _ := doJSON(t, app, http.MethodPost, "/billsplit/api/v1/bills", map[string]interface{}{
		"creator_phone": "0712345678",
		"creator_name":  "Asha",
		"amount":        30000,
		"member_phones": []string{"notanumber"},
	})
	if code != 400 {
		t.Fatalf("status = %d, want 400", code)
	}
}

func TestGetBillNotFound(t *testing.T) {
	app, _ := newTestApp(t, newFakeBillStore())
	code, _ := doJSON(t, app, http.MethodGet, "/billsplit/api/v1/bills/missing", nil)
	if code != 404 {
		t.Fatalf("status = %d, want 404", code)
	}
}

func TestMarkPaidRest(t *testing.T) {
	store := newFakeBillStore()
	app, _ := newTestApp(t, store)
	created, _ := store.Create(context.Background(), "+255712345670", "Asha", 1000, []string{"+255712345671"}, "")

	code, _ := doJSON(t, app, http.MethodPost, "/billsplit/api/v1/bills/"+created.Id+"/payments", map[string]string{"phone": "0712345671"})
	if code != 200 {
		t.Fatalf("status = %d, want 200", code)
	}
	// already paid
	code, _ = doJSON(t, app, http.MethodPost, "/billsplit/api/v1/bills/"+created.Id+"/payments", map[string]string{"phone": "0712345671"})
	if code != 404 {
		t.Fatalf("second payment status = %d, want 404", code)
	}
}

func TestSessionDiagnostics(t *testing.T) {
	app, _ := newTestApp(t, newFakeBillStore())
	ussdTurn(t, app, "sess-diag", "")

	code, body := doJSON(t, app, http.MethodGet, "/billsplit/api/v1/sessions/sess-diag", nil)
	if code != 200 {
		t.Fatalf("get session status = %d", code)
	}
	data := body["data"].(map[string]interface{})
	if data["step"] != string(model.StepAmount) {
		t.Fatalf("unexpected step: %v", data["step"])
	}

	code, body = doJSON(t, app, http.MethodGet, "/billsplit/api/v1/sessions/count", nil)
	if code != 200 {
		t.Fatalf("count status = %d", code)
	}

	code, _ = doJSON(t, app, http.MethodDelete, "/billsplit/api/v1/sessions", nil)
	if code != 200 {
		t.Fatalf("clear status = %d", code)
	}
	code, _ = doJSON(t, app, http.MethodGet, "/billsplit/api/v1/sessions/sess-diag", nil)
	if code != 404 {
		t.Fatalf("session survived clear, status = %d", code)
	}
}
