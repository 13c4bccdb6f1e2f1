// Package store persists normalized documents keyed uniquely by document
// number. The PostgreSQL implementation relies on ON CONFLICT upserts so two
// concurrent writes for the same number serialize on the row and the stored
// state always reflects one input entirely.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Akash-RK/federal-register-rag/internal/ingest"
	apperrors "github.com/Akash-RK/federal-register-rag/pkg/errors"
	"github.com/Akash-RK/federal-register-rag/pkg/postgres"
	"github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	document_number  TEXT PRIMARY KEY,
	title            TEXT NOT NULL,
	publication_date DATE,
	document_type    TEXT NOT NULL DEFAULT '',
	abstract         TEXT NOT NULL DEFAULT '',
	agencies         TEXT[] NOT NULL DEFAULT '{}',
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS documents_publication_date_idx ON documents (publication_date);`

const upsertQuery = `
INSERT INTO documents (document_number, title, publication_date, document_type, abstract, agencies, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now())
ON CONFLICT (document_number) DO UPDATE SET
	title            = EXCLUDED.title,
	publication_date = EXCLUDED.publication_date,
	document_type    = EXCLUDED.document_type,
	abstract         = EXCLUDED.abstract,
	agencies         = EXCLUDED.agencies,
	updated_at       = now()`

// Postgres is the durable document store.
type Postgres struct {
	db     *postgres.Client
	logger *slog.Logger
}

func NewPostgres(db *postgres.Client) *Postgres {
	return &Postgres{
		db:     db,
		logger: slog.Default().With("component", "document-store"),
	}
}

// EnsureSchema creates the documents table if it does not exist.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensuring documents schema: %w", err)
	}
	return nil
}

// Upsert writes each document with insert-or-update semantics. A failure on
// one document is counted and logged; the rest of the batch proceeds.
func (s *Postgres) Upsert(ctx context.Context, docs []ingest.Document) (ingest.UpsertReport, error) {
	var report ingest.UpsertReport
	for _, doc := range docs {
		_, err := s.db.DB.ExecContext(ctx, upsertQuery,
			doc.DocumentNumber,
			doc.Title,
			publicationDate(doc),
			doc.DocumentType,
			doc.Abstract,
			pq.Array(doc.Agencies),
		)
		if err != nil {
			if ctx.Err() != nil {
				return report, fmt.Errorf("upsert aborted: %w", ctx.Err())
			}
			report.Failed++
			s.logger.Error("document upsert failed",
				"document_number", doc.DocumentNumber,
				"error", err,
			)
			continue
		}
		report.Written++
	}
	return report, nil
}

// Search returns documents matching the query's keyword against title or
// abstract, optionally filtered to an exact publication date, newest first.
func (s *Postgres) Search(ctx context.Context, q ingest.Query) ([]ingest.Document, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 5
	}

	var (
		rows *sql.Rows
		err  error
	)
	pattern := "%" + q.Text + "%"
	if q.Day != nil {
		rows, err = s.db.DB.QueryContext(ctx, `
			SELECT document_number, title, publication_date, document_type, abstract, agencies
			FROM documents
			WHERE (title ILIKE $1 OR abstract ILIKE $1) AND publication_date = $2
			ORDER BY publication_date DESC, document_number
			LIMIT $3`, pattern, q.Day.Time(), limit)
	} else {
		rows, err = s.db.DB.QueryContext(ctx, `
			SELECT document_number, title, publication_date, document_type, abstract, agencies
			FROM documents
			WHERE title ILIKE $1 OR abstract ILIKE $1
			ORDER BY publication_date DESC, document_number
			LIMIT $2`, pattern, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []ingest.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// Get returns a single document by its number.
func (s *Postgres) Get(ctx context.Context, documentNumber string) (ingest.Document, error) {
	row := s.db.DB.QueryRowContext(ctx, `
		SELECT document_number, title, publication_date, document_type, abstract, agencies
		FROM documents WHERE document_number = $1`, documentNumber)
	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return ingest.Document{}, fmt.Errorf("document %s: %w", documentNumber, apperrors.ErrDocumentNotFound)
	}
	if err != nil {
		return ingest.Document{}, err
	}
	return doc, nil
}

// Count returns the number of stored documents.
func (s *Postgres) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.DB.QueryRowContext(ctx, `SELECT count(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (ingest.Document, error) {
	var (
		doc      ingest.Document
		pubDate  sql.NullTime
		agencies []string
	)
	err := row.Scan(&doc.DocumentNumber, &doc.Title, &pubDate, &doc.DocumentType, &doc.Abstract, pq.Array(&agencies))
	if err == sql.ErrNoRows {
		return doc, err
	}
	if err != nil {
		return doc, fmt.Errorf("scanning document: %w", err)
	}
	if pubDate.Valid {
		doc.PublicationDate = ingest.DayOf(pubDate.Time)
	}
	if agencies == nil {
		agencies = []string{}
	}
	doc.Agencies = agencies
	return doc, nil
}

// publicationDate converts a zero Day to NULL rather than 0001-01-01.
func publicationDate(doc ingest.Document) any {
	if doc.PublicationDate.IsZero() {
		return nil
	}
	return doc.PublicationDate.Time()
}
