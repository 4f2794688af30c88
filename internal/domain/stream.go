package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StreamReportSubmitted - стрим событий об отправленных отчетах
const StreamReportSubmitted = "stream:report:submitted"

// ReportSubmittedEvent - публикуется после успешной финализации отчета
type ReportSubmittedEvent struct {
	ReportID    uuid.UUID `json:"report_id"`
	UserID      string    `json:"user_id"`
	ObjectCount int       `json:"object_count"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// EventDelivery - событие, выданное потребителю и ожидающее подтверждения.
// Redelivered выставлен для записей, оставшихся неподтвержденными с прошлого запуска.
type EventDelivery struct {
	ID          string
	Payload     []byte
	Redelivered bool
}

// DecodeReportSubmitted разбирает payload события отправки отчета
func DecodeReportSubmitted(payload []byte) (ReportSubmittedEvent, error) {
	var event ReportSubmittedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return event, fmt.Errorf("decode report submitted event: %w", err)
	}
	if event.ReportID == uuid.Nil {
		return event, errors.New("report submitted event without report_id")
	}
	return event, nil
}
