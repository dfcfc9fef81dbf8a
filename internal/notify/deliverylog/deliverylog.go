// internal/notify/deliverylog/deliverylog.go

// Package deliverylog persists one audit row per attempted send. The primary
// record lives in Postgres; a copy is mirrored into Elasticsearch for the
// support dashboard. Both writes are best-effort: a logging failure must
// never fail the notification that produced it.
package deliverylog

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"

	"github.com/myster33/edlead-impact-sub001/internal/common/logger"
	"github.com/myster33/edlead-impact-sub001/internal/notify/template"
)

// Entry is one send attempt. Skipped cells (toggled off, missing contact,
// duplicate destination) produce no entry. RenderedContent holds the body
// exactly as it was handed to the transport, so support can see what a
// recipient actually received.
type Entry struct {
	ID              string            `json:"id"`
	EventKind       string            `json:"eventKind"`
	TemplateKey     string            `json:"templateKey"`
	Channel         template.Channel  `json:"channel"`
	Audience        template.Audience `json:"audience"`
	Destination     string            `json:"destination"`
	ReferenceID     string            `json:"referenceId"`
	Subject         string            `json:"subject,omitempty"`
	RenderedContent string            `json:"renderedContent"`
	Success         bool              `json:"success"`
	ProviderID      string            `json:"providerId,omitempty"`
	ErrorMessage    string            `json:"errorMessage,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
}

// Indexer mirrors an entry into the search store.
type Indexer interface {
	Index(ctx context.Context, index, docID string, document []byte) error
}

// ESIndexer implements Indexer on the Elasticsearch client.
type ESIndexer struct {
	Client *elasticsearch.Client
}

func (i *ESIndexer) Index(ctx context.Context, index, docID string, document []byte) error {
	res, err := i.Client.Index(
		index,
		bytes.NewReader(document),
		i.Client.Index.WithDocumentID(docID),
		i.Client.Index.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch index returned %s", res.Status())
	}
	return nil
}

const insertEntrySQL = `
	INSERT INTO delivery_log
		(id, event_kind, template_key, channel, audience, destination, reference_id, subject, rendered_content, success, provider_id, error_message, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

// Writer appends delivery-log entries.
type Writer struct {
	db      *sql.DB
	indexer Indexer
	index   string
	logger  logger.Logger
}

func NewWriter(db *sql.DB, indexer Indexer, index string, log logger.Logger) *Writer {
	return &Writer{
		db:      db,
		indexer: indexer,
		index:   index,
		logger:  log.WithFields(map[string]interface{}{"component": "delivery-log"}),
	}
}

// Append records one attempt. Failures are logged and swallowed.
func (w *Writer) Append(ctx context.Context, e Entry) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	if w.db != nil {
		_, err := w.db.ExecContext(ctx, insertEntrySQL,
			e.ID, e.EventKind, e.TemplateKey, string(e.Channel), string(e.Audience),
			e.Destination, e.ReferenceID, nullable(e.Subject), e.RenderedContent,
			e.Success, nullable(e.ProviderID), nullable(e.ErrorMessage), e.CreatedAt,
		)
		if err != nil {
			w.logger.Error("delivery log insert failed", map[string]interface{}{
				"entryId": e.ID,
				"channel": string(e.Channel),
				"error":   err.Error(),
			})
		}
	}

	if w.indexer != nil {
		doc, err := json.Marshal(e)
		if err == nil {
			err = w.indexer.Index(ctx, w.index, e.ID, doc)
		}
		if err != nil {
			w.logger.Warn("delivery log mirror failed", map[string]interface{}{
				"entryId": e.ID,
				"index":   w.index,
				"error":   err.Error(),
			})
		}
	}
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
