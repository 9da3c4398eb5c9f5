package settings

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func newTestService() *Service {
	return NewService(NewMemoryStore(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestDefaults(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	tests := []struct {
		key  Key
		want string
	}{
		{ServerEnvironment, "sandbox"},
		{PaymentMethodsOrderBy, "desc"},
		{Gr4vyID, ""},
		{CardDetailsCurrency, ""},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			got, err := s.String(ctx, tt.key)
			if err != nil {
				t.Fatalf("String: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	b, err := s.Bool(ctx, CardDetailsMerchantInitiated)
	if err != nil || b {
		t.Errorf("Bool default = %v, %v; want false", b, err)
	}
}

func TestSetOverridesDefault(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	if err := s.Set(ctx, ServerEnvironment, ""); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, _ := s.String(ctx, ServerEnvironment)
	if got != "" {
		t.Errorf("written empty value should not read as default, got %q", got)
	}

	if err := s.SetBool(ctx, CardDetailsIsSubsequentPayment, true); err != nil {
		t.Fatalf("SetBool: %v", err)
	}
	b, _ := s.Bool(ctx, CardDetailsIsSubsequentPayment)
	if !b {
		t.Error("expected true")
	}
}

func TestSaveAsync(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	s.SaveAsync(map[Key]string{CardDetailsBin: "41111111", CardDetailsCountry: "GB"})
	s.Wait()

	bin, _ := s.String(ctx, CardDetailsBin)
	country, _ := s.String(ctx, CardDetailsCountry)
	if bin != "41111111" || country != "GB" {
		t.Errorf("got bin=%q country=%q", bin, country)
	}
}

type failingStore struct{ *MemoryStore }

func (failingStore) SetMany(context.Context, map[string]string) error {
	return errors.New("disk full")
}

func TestSaveAsyncSwallowsErrors(t *testing.T) {
	s := NewService(failingStore{NewMemoryStore()}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.SaveAsync(map[Key]string{Gr4vyID: "x"})
	s.Wait()

	if err := s.Set(context.Background(), Gr4vyID, "x"); err == nil {
		t.Error("synchronous Set should surface the store error")
	}
}

func recv(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case v, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for value")
	}
	return ""
}

func TestWatch(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	a, cancelA, err := s.Watch(ctx, ServerEnvironment)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	b, cancelB, err := s.Watch(ctx, ServerEnvironment)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer cancelB()

	if got := recv(t, a); got != "sandbox" {
		t.Errorf("initial = %q, want sandbox", got)
	}
	if got := recv(t, b); got != "sandbox" {
		t.Errorf("initial = %q, want sandbox", got)
	}

	_ = s.Set(ctx, ServerEnvironment, "production")
	if got := recv(t, a); got != "production" {
		t.Errorf("a = %q, want production", got)
	}

	cancelA()
	cancelA()
	if _, ok := <-a; ok {
		t.Error("cancelled channel should be closed")
	}

	_ = s.Set(ctx, ServerEnvironment, "sandbox")
	if got := recv(t, b); got != "sandbox" {
		t.Errorf("b = %q, want latest value sandbox", got)
	}
}

func TestWatchKeepsLatest(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	ch, cancel, _ := s.Watch(ctx, Timeout)
	defer cancel()

	_ = s.Set(ctx, Timeout, "1")
	_ = s.Set(ctx, Timeout, "2")
	_ = s.Set(ctx, Timeout, "3")

	if got := recv(t, ch); got != "3" {
		t.Errorf("got %q, want 3", got)
	}
}

func TestAdminRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	in := Admin{MerchantID: "m-1", Gr4vyID: "acme", APIToken: "tok", Timeout: "10"}
	if err := s.SaveAdmin(ctx, in); err != nil {
		t.Fatalf("SaveAdmin: %v", err)
	}
	got, err := s.Admin(ctx)
	if err != nil {
		t.Fatalf("Admin: %v", err)
	}
	in.Environment = "sandbox"
	if got != in {
		t.Errorf("got %+v, want %+v", got, in)
	}
}

func TestSeedOnlyFillsUnsetKeys(t *testing.T) {
	ctx := context.Background()
	s := newTestService()
	_ = s.Set(ctx, Gr4vyID, "existing")

	seeded, err := s.Seed(ctx, Admin{Gr4vyID: "from-env", APIToken: "tok"})
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if len(seeded) != 1 || seeded[0] != APIToken {
		t.Errorf("seeded = %v, want [api_token]", seeded)
	}
	id, _ := s.String(ctx, Gr4vyID)
	if id != "existing" {
		t.Errorf("gr4vy_id = %q, want existing", id)
	}
}

func TestAllMergesDefaults(t *testing.T) {
	ctx := context.Background()
	s := newTestService()
	_ = s.Set(ctx, ServerEnvironment, "production")
	_ = s.Set(ctx, Gr4vyID, "acme")

	all, err := s.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if all[ServerEnvironment] != "production" || all[Gr4vyID] != "acme" || all[PaymentMethodsOrderBy] != "desc" {
		t.Errorf("all = %v", all)
	}
}
