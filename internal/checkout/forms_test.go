package checkout

import (
	"context"
	"testing"

	"gr4vydemo/internal/settings"
)

func TestFormRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := settings.NewService(settings.NewMemoryStore(), discardLogger())

	in := &PaymentOptionsForm{
		Metadata:  []MetadataEntry{{Key: "k", Value: "v"}},
		CartItems: []CartItemEntry{{Name: "Socks", Quantity: "2", UnitAmount: "500", Categories: "clothing"}},
		Currency:  "GBP",
	}
	if err := SaveForm(ctx, svc, in); err != nil {
		t.Fatalf("SaveForm: %v", err)
	}
	if in.Metadata[0].ID == "" || in.CartItems[0].ID == "" {
		t.Error("entries should get ids")
	}

	f, err := LoadForm(ctx, svc, ActionPaymentOptions)
	if err != nil {
		t.Fatalf("LoadForm: %v", err)
	}
	out := f.(*PaymentOptionsForm)
	if out.Currency != "GBP" || len(out.Metadata) != 1 || out.CartItems[0] != in.CartItems[0] {
		t.Errorf("loaded %+v", out)
	}
}

func TestLoadFormDefaults(t *testing.T) {
	ctx := context.Background()
	svc := settings.NewService(settings.NewMemoryStore(), discardLogger())

	f, err := LoadForm(ctx, svc, ActionPaymentMethods)
	if err != nil {
		t.Fatalf("LoadForm: %v", err)
	}
	if got := f.(*PaymentMethodsForm).OrderBy; got != "desc" {
		t.Errorf("order by = %q, want desc", got)
	}

	f, _ = LoadForm(ctx, svc, ActionCardDetails)
	if cd := f.(*CardDetailsForm); cd.IsSubsequentPayment || cd.MerchantInitiated {
		t.Error("flags should default to false")
	}
}

func TestCardDetailsFormPersistsTruncated(t *testing.T) {
	ctx := context.Background()
	svc := settings.NewService(settings.NewMemoryStore(), discardLogger())

	if err := SaveForm(ctx, svc, &CardDetailsForm{Bin: "123456789012", Country: "USA", MerchantInitiated: true}); err != nil {
		t.Fatalf("SaveForm: %v", err)
	}
	bin, _ := svc.String(ctx, settings.CardDetailsBin)
	country, _ := svc.String(ctx, settings.CardDetailsCountry)
	flag, _ := svc.Bool(ctx, settings.CardDetailsMerchantInitiated)
	if bin != "12345678" || country != "US" || !flag {
		t.Errorf("bin=%q country=%q flag=%v", bin, country, flag)
	}
}

func TestLoadFormMalformedListsAreEmpty(t *testing.T) {
	ctx := context.Background()
	svc := settings.NewService(settings.NewMemoryStore(), discardLogger())
	_ = svc.Set(ctx, settings.PaymentOptionsCartItems, "not json")

	f, err := LoadForm(ctx, svc, ActionPaymentOptions)
	if err != nil {
		t.Fatalf("LoadForm: %v", err)
	}
	if len(f.(*PaymentOptionsForm).CartItems) != 0 {
		t.Error("malformed list should load empty")
	}
}

func TestParsePaymentMethodType(t *testing.T) {
	tests := map[string]PaymentMethodType{
		"":             MethodCard,
		"card":         MethodCard,
		"click_to_pay": MethodClickToPay,
		"id":           MethodID,
		"bogus":        MethodCard,
	}
	for in, want := range tests {
		if got := ParsePaymentMethodType(in); got != want {
			t.Errorf("%q: got %q, want %q", in, got, want)
		}
	}
}

func TestParseAction(t *testing.T) {
	if a, ok := ParseAction("fields"); !ok || a.Title() != "Fields Response" {
		t.Errorf("fields: %v %v", a, ok)
	}
	if _, ok := ParseAction("admin"); ok {
		t.Error("admin is not an action")
	}
}
