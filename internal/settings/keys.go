// Package settings persists admin configuration and cached form values as string
// key-value pairs.
package settings

// Key names a persisted setting.
type Key string

// Admin settings.
const (
	MerchantID        Key = "merchant_id"
	Gr4vyID           Key = "gr4vy_id"
	APIToken          Key = "api_token"
	ServerEnvironment Key = "server_environment"
	Timeout           Key = "timeout"
)

// Payment options screen.
const (
	PaymentOptionsMetadataEntries Key = "payment_options_metadata_entries"
	PaymentOptionsCartItems       Key = "payment_options_cart_items"
	PaymentOptionsCountry         Key = "payment_options_country"
	PaymentOptionsCurrency        Key = "payment_options_currency"
	PaymentOptionsAmount          Key = "payment_options_amount"
	PaymentOptionsLocale          Key = "payment_options_locale"
)

// Fields (tokenize) screen.
const (
	FieldsCheckoutSessionID     Key = "fields_checkout_session_id"
	FieldsPaymentMethodType     Key = "fields_payment_method_type"
	FieldsCardNumber            Key = "fields_card_number"
	FieldsExpirationDate        Key = "fields_expiration_date"
	FieldsSecurityCode          Key = "fields_security_code"
	FieldsMerchantTransactionID Key = "fields_merchant_transaction_id"
	FieldsSrcCorrelationID      Key = "fields_src_correlation_id"
	FieldsPaymentMethodID       Key = "fields_payment_method_id"
	FieldsIDSecurityCode        Key = "fields_id_security_code"
)

// Card details screen.
const (
	CardDetailsNumber              Key = "card_details_number"
	CardDetailsCurrency            Key = "card_details_currency"
	CardDetailsAmount              Key = "card_details_amount"
	CardDetailsBin                 Key = "card_details_bin"
	CardDetailsCountry             Key = "card_details_country"
	CardDetailsIntent              Key = "card_details_intent"
	CardDetailsIsSubsequentPayment Key = "card_details_is_subsequent_payment"
	CardDetailsMerchantInitiated   Key = "card_details_merchant_initiated"
	CardDetailsMetadata            Key = "card_details_metadata"
	CardDetailsPaymentMethodID     Key = "card_details_payment_method_id"
	CardDetailsPaymentSource       Key = "card_details_payment_source"
)

// Payment methods screen.
const (
	PaymentMethodsID                      Key = "payment_methods_id"
	PaymentMethodsBuyerID                 Key = "payment_methods_buyer_id"
	PaymentMethodsBuyerExternalIdentifier Key = "payment_methods_buyer_external_identifier"
	PaymentMethodsSortBy                  Key = "payment_methods_sort_by"
	PaymentMethodsOrderBy                 Key = "payment_methods_order_by"
	PaymentMethodsCountry                 Key = "payment_methods_country"
	PaymentMethodsCurrency                Key = "payment_methods_currency"
)

var defaults = map[Key]string{
	ServerEnvironment:              "sandbox",
	PaymentMethodsOrderBy:          "desc",
	CardDetailsIsSubsequentPayment: "false",
	CardDetailsMerchantInitiated:   "false",
}

// Default returns the value a key reads as before it is first written.
func Default(key Key) string {
	return defaults[key]
}

// AdminKeys lists the keys edited on the admin screen.
var AdminKeys = []Key{MerchantID, Gr4vyID, APIToken, ServerEnvironment, Timeout}
