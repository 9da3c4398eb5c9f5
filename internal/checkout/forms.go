package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/oklog/ulid/v2"

	"gr4vydemo/internal/settings"
)

// Form is the input of one action.
type Form interface {
	Action() Action
	values() map[settings.Key]string
}

// Card details limits.
const (
	binLength     = 8
	countryLength = 2
)

// CardDetailsForm is the card details screen.
type CardDetailsForm struct {
	Currency            string `json:"currency"`
	Amount              string `json:"amount"`
	Bin                 string `json:"bin"`
	Country             string `json:"country"`
	Intent              string `json:"intent" validate:"omitempty,oneof=authorize capture"`
	IsSubsequentPayment bool   `json:"is_subsequent_payment"`
	MerchantInitiated   bool   `json:"merchant_initiated"`
	Metadata            string `json:"metadata"`
	PaymentMethodID     string `json:"payment_method_id"`
	PaymentSource       string `json:"payment_source" validate:"omitempty,oneof=ecommerce moto recurring installment card_on_file"`
}

func (*CardDetailsForm) Action() Action { return ActionCardDetails }

// Normalize applies the bin and country length limits.
func (f *CardDetailsForm) Normalize() {
	f.Bin = Truncate(f.Bin, binLength)
	f.Country = Truncate(f.Country, countryLength)
}

func (f *CardDetailsForm) values() map[settings.Key]string {
	f.Normalize()
	return map[settings.Key]string{
		settings.CardDetailsCurrency:            f.Currency,
		settings.CardDetailsAmount:              f.Amount,
		settings.CardDetailsBin:                 f.Bin,
		settings.CardDetailsCountry:             f.Country,
		settings.CardDetailsIntent:              f.Intent,
		settings.CardDetailsIsSubsequentPayment: strconv.FormatBool(f.IsSubsequentPayment),
		settings.CardDetailsMerchantInitiated:   strconv.FormatBool(f.MerchantInitiated),
		settings.CardDetailsMetadata:            f.Metadata,
		settings.CardDetailsPaymentMethodID:     f.PaymentMethodID,
		settings.CardDetailsPaymentSource:       f.PaymentSource,
	}
}

// MetadataEntry is one key/value row of the payment options screen.
type MetadataEntry struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

// CartItemEntry is one cart row as typed into the payment options screen.
type CartItemEntry struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Quantity           string `json:"quantity"`
	UnitAmount         string `json:"unit_amount"`
	DiscountAmount     string `json:"discount_amount"`
	TaxAmount          string `json:"tax_amount"`
	ExternalIdentifier string `json:"external_identifier"`
	SKU                string `json:"sku"`
	ProductURL         string `json:"product_url"`
	ImageURL           string `json:"image_url"`
	Categories         string `json:"categories"`
	ProductType        string `json:"product_type"`
	SellerCountry      string `json:"seller_country"`
}

// PaymentOptionsForm is the payment options screen.
type PaymentOptionsForm struct {
	Metadata  []MetadataEntry `json:"metadata"`
	CartItems []CartItemEntry `json:"cart_items"`
	Country   string          `json:"country"`
	Currency  string          `json:"currency"`
	Amount    string          `json:"amount"`
	Locale    string          `json:"locale"`
}

func (*PaymentOptionsForm) Action() Action { return ActionPaymentOptions }

// AssignIDs gives every row without an id a fresh one.
func (f *PaymentOptionsForm) AssignIDs() {
	for i := range f.Metadata {
		if f.Metadata[i].ID == "" {
			f.Metadata[i].ID = ulid.Make().String()
		}
	}
	for i := range f.CartItems {
		if f.CartItems[i].ID == "" {
			f.CartItems[i].ID = ulid.Make().String()
		}
	}
}

func (f *PaymentOptionsForm) values() map[settings.Key]string {
	f.AssignIDs()
	return map[settings.Key]string{
		settings.PaymentOptionsMetadataEntries: encodeList(f.Metadata),
		settings.PaymentOptionsCartItems:       encodeList(f.CartItems),
		settings.PaymentOptionsCountry:         f.Country,
		settings.PaymentOptionsCurrency:        f.Currency,
		settings.PaymentOptionsAmount:          f.Amount,
		settings.PaymentOptionsLocale:          f.Locale,
	}
}

// PaymentMethodsForm is the buyer payment methods screen.
type PaymentMethodsForm struct {
	BuyerID                 string `json:"buyer_id"`
	BuyerExternalIdentifier string `json:"buyer_external_identifier"`
	SortBy                  string `json:"sort_by"`
	OrderBy                 string `json:"order_by"`
	Country                 string `json:"country"`
	Currency                string `json:"currency"`
}

func (*PaymentMethodsForm) Action() Action { return ActionPaymentMethods }

func (f *PaymentMethodsForm) values() map[settings.Key]string {
	return map[settings.Key]string{
		settings.PaymentMethodsBuyerID:                 f.BuyerID,
		settings.PaymentMethodsBuyerExternalIdentifier: f.BuyerExternalIdentifier,
		settings.PaymentMethodsSortBy:                  f.SortBy,
		settings.PaymentMethodsOrderBy:                 f.OrderBy,
		settings.PaymentMethodsCountry:                 f.Country,
		settings.PaymentMethodsCurrency:                f.Currency,
	}
}

// PaymentMethodType selects the tokenize variant.
type PaymentMethodType string

const (
	MethodCard       PaymentMethodType = "card"
	MethodClickToPay PaymentMethodType = "click_to_pay"
	MethodID         PaymentMethodType = "id"
)

// ParsePaymentMethodType maps a persisted value to a type. Unknown values select card.
func ParsePaymentMethodType(s string) PaymentMethodType {
	switch t := PaymentMethodType(strings.TrimSpace(s)); t {
	case MethodClickToPay, MethodID:
		return t
	default:
		return MethodCard
	}
}

// FieldsForm is the tokenize screen.
type FieldsForm struct {
	CheckoutSessionID     string `json:"checkout_session_id"`
	PaymentMethodType     string `json:"payment_method_type"`
	CardNumber            string `json:"card_number"`
	ExpirationDate        string `json:"expiration_date"`
	SecurityCode          string `json:"security_code"`
	MerchantTransactionID string `json:"merchant_transaction_id"`
	SrcCorrelationID      string `json:"src_correlation_id"`
	PaymentMethodID       string `json:"payment_method_id"`
	IDSecurityCode        string `json:"id_security_code"`
}

func (*FieldsForm) Action() Action { return ActionFields }

func (f *FieldsForm) values() map[settings.Key]string {
	return map[settings.Key]string{
		settings.FieldsCheckoutSessionID:     f.CheckoutSessionID,
		settings.FieldsPaymentMethodType:     f.PaymentMethodType,
		settings.FieldsCardNumber:            f.CardNumber,
		settings.FieldsExpirationDate:        f.ExpirationDate,
		settings.FieldsSecurityCode:          f.SecurityCode,
		settings.FieldsMerchantTransactionID: f.MerchantTransactionID,
		settings.FieldsSrcCorrelationID:      f.SrcCorrelationID,
		settings.FieldsPaymentMethodID:       f.PaymentMethodID,
		settings.FieldsIDSecurityCode:        f.IDSecurityCode,
	}
}

// NewForm returns an empty form for a.
func NewForm(a Action) (Form, error) {
	switch a {
	case ActionCardDetails:
		return &CardDetailsForm{}, nil
	case ActionPaymentOptions:
		return &PaymentOptionsForm{}, nil
	case ActionPaymentMethods:
		return &PaymentMethodsForm{}, nil
	case ActionFields:
		return &FieldsForm{}, nil
	default:
		return nil, fmt.Errorf("unknown action %q", a)
	}
}

// SaveForm persists f synchronously.
func SaveForm(ctx context.Context, svc *settings.Service, f Form) error {
	if err := svc.SetMany(ctx, f.values()); err != nil {
		return fmt.Errorf("saving %s form: %w", f.Action(), err)
	}
	return nil
}

// SaveFormAsync persists f in the background.
func SaveFormAsync(svc *settings.Service, f Form) {
	svc.SaveAsync(f.values())
}

// LoadForm reads the last persisted form for a.
func LoadForm(ctx context.Context, svc *settings.Service, a Action) (Form, error) {
	r := &formReader{ctx: ctx, svc: svc}

	var f Form
	switch a {
	case ActionCardDetails:
		cd := &CardDetailsForm{
			Currency:            r.str(settings.CardDetailsCurrency),
			Amount:              r.str(settings.CardDetailsAmount),
			Bin:                 r.str(settings.CardDetailsBin),
			Country:             r.str(settings.CardDetailsCountry),
			Intent:              r.str(settings.CardDetailsIntent),
			IsSubsequentPayment: r.boolean(settings.CardDetailsIsSubsequentPayment),
			MerchantInitiated:   r.boolean(settings.CardDetailsMerchantInitiated),
			Metadata:            r.str(settings.CardDetailsMetadata),
			PaymentMethodID:     r.str(settings.CardDetailsPaymentMethodID),
			PaymentSource:       r.str(settings.CardDetailsPaymentSource),
		}
		cd.Normalize()
		f = cd
	case ActionPaymentOptions:
		po := &PaymentOptionsForm{
			Country:  r.str(settings.PaymentOptionsCountry),
			Currency: r.str(settings.PaymentOptionsCurrency),
			Amount:   r.str(settings.PaymentOptionsAmount),
			Locale:   r.str(settings.PaymentOptionsLocale),
		}
		decodeList(r.str(settings.PaymentOptionsMetadataEntries), &po.Metadata)
		decodeList(r.str(settings.PaymentOptionsCartItems), &po.CartItems)
		f = po
	case ActionPaymentMethods:
		f = &PaymentMethodsForm{
			BuyerID:                 r.str(settings.PaymentMethodsBuyerID),
			BuyerExternalIdentifier: r.str(settings.PaymentMethodsBuyerExternalIdentifier),
			SortBy:                  r.str(settings.PaymentMethodsSortBy),
			OrderBy:                 r.str(settings.PaymentMethodsOrderBy),
			Country:                 r.str(settings.PaymentMethodsCountry),
			Currency:                r.str(settings.PaymentMethodsCurrency),
		}
	case ActionFields:
		f = &FieldsForm{
			CheckoutSessionID:     r.str(settings.FieldsCheckoutSessionID),
			PaymentMethodType:     r.str(settings.FieldsPaymentMethodType),
			CardNumber:            r.str(settings.FieldsCardNumber),
			ExpirationDate:        r.str(settings.FieldsExpirationDate),
			SecurityCode:          r.str(settings.FieldsSecurityCode),
			MerchantTransactionID: r.str(settings.FieldsMerchantTransactionID),
			SrcCorrelationID:      r.str(settings.FieldsSrcCorrelationID),
			PaymentMethodID:       r.str(settings.FieldsPaymentMethodID),
			IDSecurityCode:        r.str(settings.FieldsIDSecurityCode),
		}
	default:
		return nil, fmt.Errorf("unknown action %q", a)
	}

	if r.err != nil {
		return nil, fmt.Errorf("loading %s form: %w", a, r.err)
	}
	return f, nil
}

// formReader keeps the first read error so LoadForm can read fields inline.
type formReader struct {
	ctx context.Context
	svc *settings.Service
	err error
}

func (r *formReader) str(k settings.Key) string {
	if r.err != nil {
		return ""
	}
	v, err := r.svc.String(r.ctx, k)
	r.err = err
	return v
}

func (r *formReader) boolean(k settings.Key) bool {
	b, _ := strconv.ParseBool(r.str(k))
	return b
}

func encodeList(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// decodeList leaves dst empty when s is blank or malformed.
func decodeList(s string, dst any) {
	if strings.TrimSpace(s) == "" {
		return
	}
	_ = json.Unmarshal([]byte(s), dst)
}
