package models

import (
	"reflect"
	"testing"
)

func TestParseAlertDirectAndWrapped(t *testing.T) {
	direct := map[string]interface{}{
		"AlarmName":        "HighErrorRate-Lambda-Function",
		"AlarmDescription": "Error rate too high",
		"MetricName":       "ErrorRate",
		"Namespace":        "AWS/Lambda",
		"NewStateValue":    "ALARM",
		"NewStateReason":   "Error rate exceeded threshold",
		"StateChangeTime":  "2026-01-15T10:30:00Z",
		"Region":           "us-east-1",
		"AWSAccountId":     "123456789012",
	}

	wrapped := map[string]interface{}{
		"Type": "Notification",
		"Message": `{
			"AlarmName": "HighErrorRate-Lambda-Function",
			"AlarmDescription": "Error rate too high",
			"MetricName": "ErrorRate",
			"Namespace": "AWS/Lambda",
			"NewStateValue": "ALARM",
			"NewStateReason": "Error rate exceeded threshold",
			"StateChangeTime": "2026-01-15T10:30:00Z",
			"Region": "us-east-1",
			"AWSAccountId": "123456789012"
		}`,
	}

	fromDirect, err := ParseAlert(direct)
	if err != nil {
		t.Fatalf("direct payload failed to parse: %v", err)
	}

	fromWrapped, err := ParseAlert(wrapped)
	if err != nil {
		t.Fatalf("wrapped payload failed to parse: %v", err)
	}

	if !reflect.DeepEqual(fromDirect, fromWrapped) {
		t.Errorf("wrapped and direct payloads parsed differently:\ndirect:  %+v\nwrapped: %+v", fromDirect, fromWrapped)
	}

	if fromDirect.Name != "HighErrorRate-Lambda-Function" {
		t.Errorf("expected alarm name to map to Name, got %q", fromDirect.Name)
	}
	if fromDirect.State != "ALARM" {
		t.Errorf("expected NewStateValue to map to State, got %q", fromDirect.State)
	}
}

func TestParseAlertMalformed(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]interface{}
	}{
		{"nil payload", nil},
		{"empty object", map[string]interface{}{}},
		{"message not a string", map[string]interface{}{"Message": 42}},
		{"message not json", map[string]interface{}{"Message": "not json at all"}},
		{"no alarm fields", map[string]interface{}{"Foo": "bar"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAlert(tt.payload)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if _, ok := err.(*MalformedAlertError); !ok {
				t.Errorf("expected MalformedAlertError, got %T", err)
			}
		})
	}
}

func TestParseAlertMissingFieldsDefaultEmpty(t *testing.T) {
	alert, err := ParseAlert(map[string]interface{}{"AlarmName": "X"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert.Description != "" || alert.Region != "" || alert.Reason != "" {
		t.Errorf("missing fields should default to empty strings, got %+v", alert)
	}
}

func TestShouldProcessStateGate(t *testing.T) {
	// Any state other than ALARM is gated out, whatever the other fields.
	for _, state := range []string{"OK", "INSUFFICIENT_DATA", "alarm", ""} {
		alert := &AlertRecord{Name: "SomeAlarm", State: state}
		if alert.ShouldProcess(nil) {
			t.Errorf("state %q should not be processed", state)
		}
	}

	alert := &AlertRecord{Name: "SomeAlarm", State: "ALARM"}
	if !alert.ShouldProcess(nil) {
		t.Error("ALARM state should be processed")
	}
}

func TestShouldProcessIgnorePatterns(t *testing.T) {
	alert := &AlertRecord{Name: "Staging-HighCPU", State: "ALARM"}

	if alert.ShouldProcess([]string{"staging-"}) {
		t.Error("alarm matching an ignore pattern should be skipped")
	}
	if !alert.ShouldProcess([]string{"production-"}) {
		t.Error("alarm not matching any ignore pattern should be processed")
	}
	if !alert.ShouldProcess([]string{""}) {
		t.Error("empty ignore pattern must not match everything")
	}
}
