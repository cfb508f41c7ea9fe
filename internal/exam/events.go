package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"time"
)

const (
	EventExamCreated     = "ExamCreated"
	EventExamUpdated     = "ExamUpdated"
	EventExamPublished   = "ExamPublished"
	EventExamUnpublished = "ExamUnpublished"
)

// EventLog appends exam lifecycle changes to the event_log table. Best
// effort: a failed append is logged, never surfaced to the author.
type EventLog struct {
	db     *sql.DB
	siteID string
}

func NewEventLog(db *sql.DB, siteID string) *EventLog {
	if siteID == "" {
		siteID = "local"
	}
	return &EventLog{db: db, siteID: siteID}
}

func (l *EventLog) Record(ctx context.Context, typ, key string, data map[string]any) {
	if l == nil || l.db == nil {
		return
	}
	payload := "{}"
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			payload = string(b)
		}
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO event_log (site_id, typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		l.siteID, typ, key, payload, time.Now().Unix())
	if err != nil {
		log.Printf("event log append failed (%s %s): %v", typ, key, err)
	}
}
