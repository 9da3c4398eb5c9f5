package kafka

import (
	"encoding/json"
	"testing"

	"gr4vydemo/internal/common/events"
)

func TestRecord(t *testing.T) {
	event, err := events.NewEvent(events.EventActionFailed, "action", "fields", events.ActionCompletedData{Action: "fields"})
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	event.WithCorrelation("corr-9")

	rec, err := Record("gr4vydemo.events", event)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if rec.Topic != "gr4vydemo.events" || string(rec.Key) != "action:fields" {
		t.Errorf("topic=%q key=%q", rec.Topic, rec.Key)
	}

	headers := map[string]string{}
	for _, h := range rec.Headers {
		headers[h.Key] = string(h.Value)
	}
	if headers["event_type"] != events.EventActionFailed || headers["correlation_id"] != "corr-9" {
		t.Errorf("headers = %v", headers)
	}

	var decoded events.Event
	if err := json.Unmarshal(rec.Value, &decoded); err != nil {
		t.Fatalf("unmarshal value: %v", err)
	}
	if decoded.ID != event.ID {
		t.Errorf("id = %q, want %q", decoded.ID, event.ID)
	}
}

func TestConfigEnabled(t *testing.T) {
	if (Config{}).Enabled() {
		t.Error("no brokers should disable kafka")
	}
	if !(Config{Brokers: []string{"localhost:9092"}}).Enabled() {
		t.Error("brokers should enable kafka")
	}
}
