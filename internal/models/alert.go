// -----------------------------------------------------------------------
// Alert Record - Canonical representation of an inbound monitoring alert
// -----------------------------------------------------------------------

package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MalformedAlertError indicates an inbound alert payload that could not be
// interpreted as a monitoring alarm. Admission handlers surface this as a
// client error; no job is ever created for a malformed alert.
type MalformedAlertError struct {
	Reason string
}

func (e *MalformedAlertError) Error() string {
	return fmt.Sprintf("malformed alert payload: %s", e.Reason)
}

// AlertRecord is the canonical, source-independent representation of a
// monitoring alert. Records are immutable once constructed; every field
// defaults to the empty string rather than being absent so downstream
// keyword extraction never needs nil checks.
type AlertRecord struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	MetricName  string `json:"metric_name"`
	Namespace   string `json:"namespace"`
	State       string `json:"state"`
	Reason      string `json:"reason"`
	Timestamp   string `json:"timestamp"`
	Region      string `json:"region"`
	AccountID   string `json:"account_id"`
}

// ParseAlert builds an AlertRecord from an arbitrary nested message
// envelope. Notification services deliver alarms either directly or
// wrapped one level deep under a "Message" field holding a JSON-encoded
// string; both shapes parse to the same record.
func ParseAlert(raw map[string]interface{}) (*AlertRecord, error) {
	if raw == nil {
		return nil, &MalformedAlertError{Reason: "payload is empty"}
	}

	payload := raw
	if wrapped, ok := raw["Message"]; ok {
		text, ok := wrapped.(string)
		if !ok {
			return nil, &MalformedAlertError{Reason: "Message field is not a string"}
		}
		var inner map[string]interface{}
		if err := json.Unmarshal([]byte(text), &inner); err != nil {
			return nil, &MalformedAlertError{Reason: fmt.Sprintf("Message field is not valid JSON: %v", err)}
		}
		payload = inner
	}

	record := &AlertRecord{
		Name:        stringField(payload, "AlarmName"),
		Description: stringField(payload, "AlarmDescription"),
		MetricName:  stringField(payload, "MetricName"),
		Namespace:   stringField(payload, "Namespace"),
		Timestamp:   stringField(payload, "StateChangeTime"),
		State:       stringField(payload, "NewStateValue"),
		Reason:      stringField(payload, "NewStateReason"),
		Region:      stringField(payload, "Region"),
		AccountID:   stringField(payload, "AWSAccountId"),
	}

	if record.Name == "" && record.MetricName == "" && record.State == "" {
		return nil, &MalformedAlertError{Reason: "no recognizable alarm fields in payload"}
	}

	return record, nil
}

// ParseAlertJSON decodes a raw JSON body and parses it as an alert
func ParseAlertJSON(data []byte) (*AlertRecord, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &MalformedAlertError{Reason: fmt.Sprintf("body is not a JSON object: %v", err)}
	}
	return ParseAlert(raw)
}

// ShouldProcess is the sole admission-control gate before a job is
// created. Only alarms in the ALARM state are investigated, and operators
// can suppress noisy alarms by name substring.
func (a *AlertRecord) ShouldProcess(ignorePatterns []string) bool {
	if a.State != "ALARM" {
		return false
	}

	name := strings.ToLower(a.Name)
	for _, pattern := range ignorePatterns {
		if pattern != "" && strings.Contains(name, strings.ToLower(pattern)) {
			return false
		}
	}

	return true
}

func stringField(payload map[string]interface{}, key string) string {
	if val, ok := payload[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}
