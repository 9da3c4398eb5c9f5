package gr4vy

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// CardDetailsRequest queries GET /card-details.
type CardDetailsRequest struct {
	Currency            string  `json:"currency"`
	Amount              *string `json:"amount,omitempty"`
	Bin                 *string `json:"bin,omitempty"`
	Country             *string `json:"country,omitempty"`
	Intent              *string `json:"intent,omitempty"`
	IsSubsequentPayment *bool   `json:"is_subsequent_payment,omitempty"`
	MerchantInitiated   *bool   `json:"merchant_initiated,omitempty"`
	Metadata            *string `json:"metadata,omitempty"`
	PaymentMethodID     *string `json:"payment_method_id,omitempty"`
	PaymentSource       *string `json:"payment_source,omitempty"`
}

func (r CardDetailsRequest) query() url.Values {
	q := url.Values{}
	q.Set("currency", r.Currency)
	setString(q, "amount", r.Amount)
	setString(q, "bin", r.Bin)
	setString(q, "country", r.Country)
	setString(q, "intent", r.Intent)
	setBool(q, "is_subsequent_payment", r.IsSubsequentPayment)
	setBool(q, "merchant_initiated", r.MerchantInitiated)
	setString(q, "metadata", r.Metadata)
	setString(q, "payment_method_id", r.PaymentMethodID)
	setString(q, "payment_source", r.PaymentSource)
	return q
}

// PaymentOptionsRequest is the body of POST /payment-options.
type PaymentOptionsRequest struct {
	// MerchantID overrides the client's merchant account header for this call.
	MerchantID *string           `json:"-"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Country    *string           `json:"country,omitempty"`
	Currency   *string           `json:"currency,omitempty"`
	Amount     *int              `json:"amount,omitempty"`
	Locale     string            `json:"locale"`
	CartItems  []CartItem        `json:"cart_items,omitempty"`
}

// CartItem is one line of a payment options request.
type CartItem struct {
	Name               string   `json:"name"`
	Quantity           int      `json:"quantity"`
	UnitAmount         int      `json:"unit_amount"`
	DiscountAmount     *int     `json:"discount_amount,omitempty"`
	TaxAmount          *int     `json:"tax_amount,omitempty"`
	ExternalIdentifier *string  `json:"external_identifier,omitempty"`
	SKU                *string  `json:"sku,omitempty"`
	ProductURL         *string  `json:"product_url,omitempty"`
	ImageURL           *string  `json:"image_url,omitempty"`
	Categories         []string `json:"categories,omitempty"`
	ProductType        *string  `json:"product_type,omitempty"`
	SellerCountry      *string  `json:"seller_country,omitempty"`
}

// SortBy orders buyer payment methods.
type SortBy string

const (
	SortByNone       SortBy = ""
	SortByLastUsedAt SortBy = "last_used_at"
)

// OrderBy is the sort direction.
type OrderBy string

const (
	OrderAsc  OrderBy = "asc"
	OrderDesc OrderBy = "desc"
)

// PaymentMethodsRequest queries GET /buyers/payment-methods.
type PaymentMethodsRequest struct {
	BuyerID                 *string `json:"buyer_id,omitempty"`
	BuyerExternalIdentifier *string `json:"buyer_external_identifier,omitempty"`
	SortBy                  SortBy  `json:"sort_by,omitempty"`
	OrderBy                 OrderBy `json:"order_by"`
	Country                 *string `json:"country,omitempty"`
	Currency                *string `json:"currency,omitempty"`
}

func (r PaymentMethodsRequest) query() url.Values {
	q := url.Values{}
	setString(q, "buyer_id", r.BuyerID)
	setString(q, "buyer_external_identifier", r.BuyerExternalIdentifier)
	if r.SortBy != SortByNone {
		q.Set("sort_by", string(r.SortBy))
	}
	q.Set("order_by", string(r.OrderBy))
	setString(q, "country", r.Country)
	setString(q, "currency", r.Currency)
	return q
}

// PaymentMethod is one of Card, ClickToPay or StoredMethod.
type PaymentMethod interface {
	Method() string
	isPaymentMethod()
}

// Card tokenizes raw card data.
type Card struct {
	Number         string  `json:"number"`
	ExpirationDate string  `json:"expiration_date"`
	SecurityCode   *string `json:"security_code,omitempty"`
}

func (Card) Method() string   { return "card" }
func (Card) isPaymentMethod() {}

func (c Card) MarshalJSON() ([]byte, error) {
	type fields Card
	return json.Marshal(struct {
		Method string `json:"method"`
		fields
	}{c.Method(), fields(c)})
}

// ClickToPay tokenizes a Click to Pay selection.
type ClickToPay struct {
	MerchantTransactionID string `json:"merchant_transaction_id"`
	SrcCorrelationID      string `json:"src_correlation_id"`
}

func (ClickToPay) Method() string   { return "click_to_pay" }
func (ClickToPay) isPaymentMethod() {}

func (c ClickToPay) MarshalJSON() ([]byte, error) {
	type fields ClickToPay
	return json.Marshal(struct {
		Method string `json:"method"`
		fields
	}{c.Method(), fields(c)})
}

// StoredMethod attaches a stored payment method by id.
type StoredMethod struct {
	ID           string  `json:"id"`
	SecurityCode *string `json:"security_code,omitempty"`
}

func (StoredMethod) Method() string   { return "id" }
func (StoredMethod) isPaymentMethod() {}

func (s StoredMethod) MarshalJSON() ([]byte, error) {
	type fields StoredMethod
	return json.Marshal(struct {
		Method string `json:"method"`
		fields
	}{s.Method(), fields(s)})
}

// TokenizeRequest is the body of PUT /checkout/sessions/{id}/fields.
type TokenizeRequest struct {
	CheckoutSessionID string        `json:"-"`
	PaymentMethod     PaymentMethod `json:"payment_method"`
}

// Response is a successful API reply.
type Response struct {
	StatusCode  int
	RawResponse string
}

func setString(q url.Values, key string, v *string) {
	if v != nil {
		q.Set(key, *v)
	}
}

func setBool(q url.Values, key string, v *bool) {
	if v != nil {
		q.Set(key, strconv.FormatBool(*v))
	}
}
