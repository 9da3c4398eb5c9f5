package events

import (
	"context"
	"errors"
	"testing"
)

func TestNewEventRoundTripsData(t *testing.T) {
	in := ActionCompletedData{Action: "card_details", Environment: "sandbox", Outcome: "succeeded", Bytes: 12}

	event, err := NewEvent(EventActionSucceeded, "action", "card_details", in)
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	event.WithCorrelation("corr-1")

	if event.ID == "" {
		t.Error("expected event id")
	}
	if event.Version != 1 {
		t.Errorf("version = %d, want 1", event.Version)
	}
	if event.CorrelationID != "corr-1" {
		t.Errorf("correlation id = %q", event.CorrelationID)
	}

	var out ActionCompletedData
	if err := event.DecodeData(&out); err != nil {
		t.Fatalf("DecodeData: %v", err)
	}
	if out != in {
		t.Errorf("decoded %+v, want %+v", out, in)
	}
}

type stubPublisher struct {
	err   error
	count int
}

func (s *stubPublisher) Publish(context.Context, *Event) error {
	s.count++
	return s.err
}

func TestFanoutPublishesToAll(t *testing.T) {
	failing := &stubPublisher{err: errors.New("broker down")}
	ok := &stubPublisher{}

	event, _ := NewEvent(EventSettingsSaved, "settings", "admin", SettingsSavedData{Environment: "sandbox"})
	err := Fanout{failing, ok}.Publish(context.Background(), event)

	if err == nil || !errors.Is(err, failing.err) {
		t.Errorf("err = %v, want joined broker error", err)
	}
	if failing.count != 1 || ok.count != 1 {
		t.Errorf("counts = %d, %d", failing.count, ok.count)
	}
	if err := (Fanout{}).Publish(context.Background(), event); err != nil {
		t.Errorf("empty fanout: %v", err)
	}
}
