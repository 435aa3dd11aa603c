package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// taskJSON is the persisted shape of a Task. Field names are shared with
// blobs written by earlier clients, so they must not change.
type taskJSON struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Category       string       `json:"category,omitempty"`
	Completed      bool         `json:"completed"`
	Pinned         bool         `json:"pinned,omitempty"`
	Reminder       *time.Time   `json:"reminder"`
	NotificationID *string      `json:"notificationId"`
	DeletedAt      *epochMillis `json:"deletedAt,omitempty"`
}

// epochMillis encodes a timestamp as milliseconds since the Unix epoch.
// Decoding also accepts an RFC3339 string.
type epochMillis time.Time

func (e epochMillis) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(time.Time(e).UnixMilli(), 10)), nil
}

func (e *epochMillis) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("parse deletedAt %q: %w", s, err)
		}
		*e = epochMillis(t)
		return nil
	}
	ms, err := strconv.ParseFloat(string(bytes.TrimSpace(data)), 64)
	if err != nil {
		return fmt.Errorf("parse deletedAt %s: %w", data, err)
	}
	*e = epochMillis(time.UnixMilli(int64(ms)))
	return nil
}

func (t Task) MarshalJSON() ([]byte, error) {
	out := taskJSON{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		Category:       t.Category,
		Completed:      t.Completed,
		Pinned:         t.Pinned,
		Reminder:       t.ReminderAt,
		NotificationID: t.ReminderHandle,
	}
	if t.DeletedAt != nil {
		d := epochMillis(*t.DeletedAt)
		out.DeletedAt = &d
	}
	return json.Marshal(out)
}

func (t *Task) UnmarshalJSON(data []byte) error {
	var in taskJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*t = Task{
		ID:             in.ID,
		Title:          in.Title,
		Description:    in.Description,
		Category:       in.Category,
		Completed:      in.Completed,
		Pinned:         in.Pinned,
		ReminderAt:     in.Reminder,
		ReminderHandle: in.NotificationID,
	}
	if in.DeletedAt != nil {
		d := time.Time(*in.DeletedAt)
		t.DeletedAt = &d
	}
	return nil
}
