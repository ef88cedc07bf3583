// Package validation checks task payloads before they reach the store.
package validation

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/yukikurage/to-do-list-api/internal/models"
)

// Mode selects which fields a payload must carry.
type Mode int

const (
	// Create requires title and fills defaults for omitted fields.
	Create Mode = iota
	// Replace requires title and resets omitted fields to their defaults.
	Replace
	// Partial validates only the fields present.
	Partial
)

const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldDueDate     = "due_date"
	FieldStatus      = "status"
)

const (
	msgRequired    = "This field is required."
	msgNull        = "This field may not be null."
	msgNotString   = "Not a valid string."
	msgDueDateForm = "Datetime has wrong format. Use one of these formats instead: YYYY-MM-DDThh:mm[:ss[.uuuuuu]][+HH:MM|-HH:MM|Z]."
)

var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
}

// Payload is a decoded request body keyed by field name.
type Payload map[string]json.RawMessage

// PayloadFromForm converts form values into a Payload. Only the first
// value of each key is kept.
func PayloadFromForm(values url.Values) Payload {
	payload := make(Payload, len(values))
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		encoded, _ := json.Marshal(vals[0])
		payload[key] = encoded
	}
	return payload
}

// TaskFields holds the normalized values of a validated payload.
// A nil pointer means the field was not supplied.
type TaskFields struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	DueDateSet  bool
	Status      *models.TaskStatus
}

// Apply copies the supplied fields onto task.
func (f *TaskFields) Apply(task *models.Task) {
	if f.Title != nil {
		task.Title = *f.Title
	}
	if f.Description != nil {
		task.Description = *f.Description
	}
	if f.DueDateSet {
		task.DueDate = f.DueDate
	}
	if f.Status != nil {
		task.Status = *f.Status
	}
}

// ValidateTask checks payload according to mode. On failure the returned
// error is an Errors value listing every offending field.
func ValidateTask(payload Payload, mode Mode) (*TaskFields, error) {
	var errs Errors
	fields := &TaskFields{}

	if raw, ok := payload[FieldTitle]; ok {
		title, err := decodeString(raw)
		if err != nil {
			errs = errs.add(FieldTitle, err.Error())
		} else {
			fields.Title = &title
		}
	} else if mode != Partial {
		errs = errs.add(FieldTitle, msgRequired)
	}

	if raw, ok := payload[FieldDescription]; ok {
		description, err := decodeString(raw)
		if err != nil {
			errs = errs.add(FieldDescription, err.Error())
		} else {
			fields.Description = &description
		}
	}

	if raw, ok := payload[FieldDueDate]; ok {
		dueDate, err := decodeDueDate(raw)
		if err != nil {
			errs = errs.add(FieldDueDate, err.Error())
		} else {
			fields.DueDate = dueDate
			fields.DueDateSet = true
		}
	}

	if raw, ok := payload[FieldStatus]; ok {
		status, err := decodeStatus(raw)
		if err != nil {
			errs = errs.add(FieldStatus, err.Error())
		} else {
			fields.Status = &status
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	if mode != Partial {
		fields.fillDefaults()
	}
	return fields, nil
}

// ParseStatus validates a status code taken from a query string.
func ParseStatus(code string) (models.TaskStatus, error) {
	status, err := models.ParseTaskStatus(code)
	if err != nil {
		return "", Errors{{Field: FieldStatus, Message: invalidStatusMessage()}}
	}
	return status, nil
}

// ParseDueDate validates a timestamp taken from a query string.
func ParseDueDate(value string) (time.Time, error) {
	dueDate, ok := parseTimestamp(value)
	if !ok {
		return time.Time{}, Errors{{Field: FieldDueDate, Message: msgDueDateForm}}
	}
	return dueDate, nil
}

func (f *TaskFields) fillDefaults() {
	if f.Description == nil {
		empty := ""
		f.Description = &empty
	}
	if !f.DueDateSet {
		f.DueDate = nil
		f.DueDateSet = true
	}
	if f.Status == nil {
		pending := models.TaskStatusPending
		f.Status = &pending
	}
}

func decodeString(raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", fieldMessage(msgNull)
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", fieldMessage(msgNotString)
	}
	return value, nil
}

func decodeDueDate(raw json.RawMessage) (*time.Time, error) {
	if isNull(raw) {
		return nil, nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fieldMessage(msgDueDateForm)
	}
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	dueDate, ok := parseTimestamp(value)
	if !ok {
		return nil, fieldMessage(msgDueDateForm)
	}
	return &dueDate, nil
}

func decodeStatus(raw json.RawMessage) (models.TaskStatus, error) {
	if isNull(raw) {
		return "", fieldMessage(msgNull)
	}
	var code string
	if err := json.Unmarshal(raw, &code); err != nil {
		return "", fieldMessage(invalidStatusMessage())
	}
	status, err := models.ParseTaskStatus(code)
	if err != nil {
		return "", fieldMessage(invalidStatusMessage())
	}
	return status, nil
}

// parseTimestamp accepts RFC 3339 and the zone-less ISO 8601 forms.
// Zone-less values are read as UTC. Results are always UTC.
func parseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range dueDateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}

func invalidStatusMessage() string {
	codes := make([]string, 0, len(models.TaskStatuses()))
	for _, status := range models.TaskStatuses() {
		codes = append(codes, string(status))
	}
	return "Invalid status. Acceptable values: " + strings.Join(codes, ", ")
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
