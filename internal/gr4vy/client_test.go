package gr4vy

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(Config{ID: "acme", Token: "secret-token", MerchantID: "default", BaseURL: srv.URL, Debug: true}, discardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func strPtr(s string) *string { return &s }

func TestNewBaseURL(t *testing.T) {
	tests := []struct {
		name   string
		server Server
		want   string
	}{
		{"sandbox", ServerSandbox, "https://api.sandbox.acme.gr4vy.app"},
		{"production", ServerProduction, "https://api.acme.gr4vy.app"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(Config{ID: "acme", Token: "t", Server: tt.server}, discardLogger())
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if got := c.BaseURL(); got != tt.want {
				t.Errorf("BaseURL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewInvalidIdentifier(t *testing.T) {
	for _, id := range []string{"", "acme corp", "acme/../x", "-acme"} {
		_, err := New(Config{ID: id, Token: "t"}, discardLogger())
		var gerr *Error
		if !errors.As(err, &gerr) || gerr.Kind != KindInvalidIdentifier {
			t.Errorf("id %q: got %v, want invalid identifier", id, err)
		}
	}
}

func TestNewBadURL(t *testing.T) {
	_, err := New(Config{ID: "acme", BaseURL: "://nope"}, discardLogger())
	var gerr *Error
	if !errors.As(err, &gerr) || gerr.Kind != KindBadURL {
		t.Fatalf("got %v, want bad url", err)
	}
	if gerr.URL != "://nope" {
		t.Errorf("URL = %q", gerr.URL)
	}
}

func TestParseServer(t *testing.T) {
	if ParseServer("production") != ServerProduction {
		t.Error("production")
	}
	if ParseServer(" PRODUCTION ") != ServerProduction {
		t.Error("case and whitespace")
	}
	if ParseServer("staging") != ServerSandbox {
		t.Error("unknown should select sandbox")
	}
}

func TestGetCardDetails(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/card-details" {
			t.Errorf("got %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret-token" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("x-gr4vy-merchant-account-id"); got != "default" {
			t.Errorf("merchant header = %q", got)
		}
		q := r.URL.Query()
		if q.Get("currency") != "GBP" || q.Get("bin") != "41111111" || q.Get("merchant_initiated") != "true" {
			t.Errorf("query = %v", q)
		}
		if q.Has("country") {
			t.Error("absent country should not be sent")
		}
		_, _ = w.Write([]byte(`{"type":"card-detail"}`))
	})

	yes := true
	resp, err := c.GetCardDetails(context.Background(), CardDetailsRequest{
		Currency:          "GBP",
		Bin:               strPtr("41111111"),
		MerchantInitiated: &yes,
	})
	if err != nil {
		t.Fatalf("GetCardDetails: %v", err)
	}
	if resp.StatusCode != http.StatusOK || resp.RawResponse != `{"type":"card-detail"}` {
		t.Errorf("resp = %+v", resp)
	}
}

func TestListPaymentOptionsMerchantOverride(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/payment-options" {
			t.Errorf("got %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("x-gr4vy-merchant-account-id"); got != "override" {
			t.Errorf("merchant header = %q", got)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["locale"] != "en-GB" {
			t.Errorf("locale = %v", body["locale"])
		}
		if _, ok := body["cart_items"]; ok {
			t.Error("empty cart should be omitted")
		}
		_, _ = w.Write([]byte(`{"items":[]}`))
	})

	_, err := c.ListPaymentOptions(context.Background(), PaymentOptionsRequest{
		MerchantID: strPtr("override"),
		Locale:     "en-GB",
	})
	if err != nil {
		t.Fatalf("ListPaymentOptions: %v", err)
	}
}

func TestTokenize(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/checkout/sessions/cs-1/fields" {
			t.Errorf("got %s %s", r.Method, r.URL.Path)
		}
		b, _ := io.ReadAll(r.Body)
		want := `{"payment_method":{"method":"card","number":"4111111111111111","expiration_date":"12/30"}}`
		if string(b) != want {
			t.Errorf("body = %s, want %s", b, want)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	resp, err := c.Tokenize(context.Background(), TokenizeRequest{
		CheckoutSessionID: "cs-1",
		PaymentMethod:     Card{Number: "4111111111111111", ExpirationDate: "12/30"},
	})
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent || resp.RawResponse != "" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestHTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","code":"unauthorized","message":"No valid API authentication found"}`))
	})

	_, err := c.ListPaymentMethods(context.Background(), PaymentMethodsRequest{OrderBy: OrderDesc})
	var gerr *Error
	if !errors.As(err, &gerr) || gerr.Kind != KindHTTP {
		t.Fatalf("got %v, want http error", err)
	}
	if gerr.StatusCode != http.StatusUnauthorized || gerr.Message != "No valid API authentication found" {
		t.Errorf("err = %+v", gerr)
	}
}

func TestDecodingError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	})

	_, err := c.ListPaymentMethods(context.Background(), PaymentMethodsRequest{OrderBy: OrderDesc})
	var gerr *Error
	if !errors.As(err, &gerr) || gerr.Kind != KindDecoding {
		t.Fatalf("got %v, want decoding error", err)
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(Config{ID: "acme", BaseURL: url}, discardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.GetCardDetails(context.Background(), CardDetailsRequest{Currency: "USD"})
	var gerr *Error
	if !errors.As(err, &gerr) || gerr.Kind != KindNetwork {
		t.Fatalf("got %v, want network error", err)
	}
}

func TestPaymentMethodsQuery(t *testing.T) {
	q := PaymentMethodsRequest{SortBy: SortByNone, OrderBy: OrderAsc, Currency: strPtr("USD")}.query()
	if q.Has("sort_by") {
		t.Error("sort_by none should be omitted")
	}
	if q.Get("order_by") != "asc" || q.Get("currency") != "USD" {
		t.Errorf("query = %v", q)
	}
}

func TestPaymentMethodVariants(t *testing.T) {
	tests := []struct {
		method PaymentMethod
		want   string
	}{
		{ClickToPay{MerchantTransactionID: "m", SrcCorrelationID: "s"}, `{"method":"click_to_pay","merchant_transaction_id":"m","src_correlation_id":"s"}`},
		{StoredMethod{ID: "pm-1", SecurityCode: strPtr("123")}, `{"method":"id","id":"pm-1","security_code":"123"}`},
	}
	for _, tt := range tests {
		b, err := json.Marshal(tt.method)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(b) != tt.want {
			t.Errorf("got %s, want %s", b, tt.want)
		}
	}
}

func TestMaskToken(t *testing.T) {
	if got := MaskToken("abcdefgh"); got != "****efgh" {
		t.Errorf("got %q", got)
	}
	if got := MaskToken("abc"); strings.Contains(got, "a") {
		t.Errorf("short token leaked: %q", got)
	}
}
