package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"ore/internal/core"
)

// MonthSyncMessage asks the worker to re-render one month. It carries only
// the month key; the worker reads the records from the database.
type MonthSyncMessage struct {
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Timestamp time.Time `json:"timestamp"`
}

func NewMonthSyncMessage(id core.MonthID) *MonthSyncMessage {
	return &MonthSyncMessage{
		Year:      id.Year,
		Month:     id.Month,
		Timestamp: time.Now(),
	}
}

func (m *MonthSyncMessage) MonthID() core.MonthID {
	return core.MonthID{Year: m.Year, Month: m.Month}
}

// ToJSON converts the message to JSON bytes
func (m *MonthSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MonthSyncMessageFromJSON decodes and validates a message body.
func MonthSyncMessageFromJSON(data []byte) (*MonthSyncMessage, error) {
	var msg MonthSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.MonthID().Validate(); err != nil {
		return nil, fmt.Errorf("invalid month %d-%d: %w", msg.Year, msg.Month, err)
	}
	return &msg, nil
}
