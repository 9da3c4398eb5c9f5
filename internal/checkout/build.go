package checkout

import (
	"strings"

	"gr4vydemo/internal/gr4vy"
)

const defaultLocale = "en-GB"

// Default cart item values for quantity and unit amount that do not parse.
const (
	defaultQuantity   = 1
	defaultUnitAmount = 0
)

// BuildCardDetails builds the card details query.
func BuildCardDetails(f CardDetailsForm) (gr4vy.CardDetailsRequest, error) {
	currency := strings.TrimSpace(f.Currency)
	if currency == "" {
		return gr4vy.CardDetailsRequest{}, missingField("currency", "Please enter a currency")
	}
	f.Normalize()

	return gr4vy.CardDetailsRequest{
		Currency:            currency,
		Amount:              Optional(f.Amount),
		Bin:                 Optional(f.Bin),
		Country:             Optional(f.Country),
		Intent:              Optional(f.Intent),
		IsSubsequentPayment: onlyTrue(f.IsSubsequentPayment),
		MerchantInitiated:   onlyTrue(f.MerchantInitiated),
		Metadata:            Optional(f.Metadata),
		PaymentMethodID:     Optional(f.PaymentMethodID),
		PaymentSource:       Optional(f.PaymentSource),
	}, nil
}

// BuildPaymentOptions builds the payment options body.
func BuildPaymentOptions(f PaymentOptionsForm, merchantID string) gr4vy.PaymentOptionsRequest {
	metadata := make(map[string]string)
	for _, e := range f.Metadata {
		k, v := strings.TrimSpace(e.Key), strings.TrimSpace(e.Value)
		if k != "" && v != "" {
			metadata[k] = v
		}
	}

	var items []gr4vy.CartItem
	for _, e := range f.CartItems {
		if item, ok := buildCartItem(e); ok {
			items = append(items, item)
		}
	}

	locale := defaultLocale
	if l := Optional(f.Locale); l != nil {
		locale = *l
	}

	return gr4vy.PaymentOptionsRequest{
		MerchantID: Optional(merchantID),
		Metadata:   metadata,
		Country:    Optional(f.Country),
		Currency:   Optional(f.Currency),
		Amount:     OptionalInt(f.Amount),
		Locale:     locale,
		CartItems:  items,
	}
}

// buildCartItem reports false for rows missing a name, quantity or unit amount.
func buildCartItem(e CartItemEntry) (gr4vy.CartItem, bool) {
	name := strings.TrimSpace(e.Name)
	if name == "" || strings.TrimSpace(e.Quantity) == "" || strings.TrimSpace(e.UnitAmount) == "" {
		return gr4vy.CartItem{}, false
	}

	return gr4vy.CartItem{
		Name:               name,
		Quantity:           IntOr(e.Quantity, defaultQuantity),
		UnitAmount:         IntOr(e.UnitAmount, defaultUnitAmount),
		DiscountAmount:     OptionalInt(e.DiscountAmount),
		TaxAmount:          OptionalInt(e.TaxAmount),
		ExternalIdentifier: Optional(e.ExternalIdentifier),
		SKU:                Optional(e.SKU),
		ProductURL:         Optional(e.ProductURL),
		ImageURL:           Optional(e.ImageURL),
		Categories:         Categories(e.Categories),
		ProductType:        Optional(e.ProductType),
		SellerCountry:      Optional(e.SellerCountry),
	}, true
}

// ParseSortBy maps a persisted value to a sort field. Unknown values mean no sorting.
func ParseSortBy(s string) gr4vy.SortBy {
	if gr4vy.SortBy(strings.TrimSpace(s)) == gr4vy.SortByLastUsedAt {
		return gr4vy.SortByLastUsedAt
	}
	return gr4vy.SortByNone
}

// ParseOrderBy maps a persisted value to a direction. Unknown values sort descending.
func ParseOrderBy(s string) gr4vy.OrderBy {
	if gr4vy.OrderBy(strings.ToLower(strings.TrimSpace(s))) == gr4vy.OrderAsc {
		return gr4vy.OrderAsc
	}
	return gr4vy.OrderDesc
}

// BuildPaymentMethods builds the buyer payment methods query.
func BuildPaymentMethods(f PaymentMethodsForm) gr4vy.PaymentMethodsRequest {
	return gr4vy.PaymentMethodsRequest{
		BuyerID:                 Optional(f.BuyerID),
		BuyerExternalIdentifier: Optional(f.BuyerExternalIdentifier),
		SortBy:                  ParseSortBy(f.SortBy),
		OrderBy:                 ParseOrderBy(f.OrderBy),
		Country:                 Optional(f.Country),
		Currency:                Optional(f.Currency),
	}
}

// BuildTokenize builds the checkout session fields body.
func BuildTokenize(f FieldsForm) (gr4vy.TokenizeRequest, error) {
	sessionID := strings.TrimSpace(f.CheckoutSessionID)
	if sessionID == "" {
		return gr4vy.TokenizeRequest{}, missingField("checkout_session_id", "Please enter checkout_session_id")
	}

	var method gr4vy.PaymentMethod
	switch ParsePaymentMethodType(f.PaymentMethodType) {
	case MethodClickToPay:
		method = gr4vy.ClickToPay{
			MerchantTransactionID: strings.TrimSpace(f.MerchantTransactionID),
			SrcCorrelationID:      strings.TrimSpace(f.SrcCorrelationID),
		}
	case MethodID:
		method = gr4vy.StoredMethod{
			ID:           strings.TrimSpace(f.PaymentMethodID),
			SecurityCode: Optional(f.IDSecurityCode),
		}
	default:
		method = gr4vy.Card{
			Number:         strings.TrimSpace(f.CardNumber),
			ExpirationDate: strings.TrimSpace(f.ExpirationDate),
			SecurityCode:   Optional(f.SecurityCode),
		}
	}

	return gr4vy.TokenizeRequest{CheckoutSessionID: sessionID, PaymentMethod: method}, nil
}

func onlyTrue(b bool) *bool {
	if !b {
		return nil
	}
	return &b
}
