package ingest

import (
	"encoding/json"
	"fmt"
	"strings"
)

// rawEnvelope mirrors the upstream response shape. Only the fields the
// pipeline consumes are declared; the rest of the envelope is preserved in
// the raw snapshot.
type rawEnvelope struct {
	Count   int         `json:"count"`
	Results []rawRecord `json:"results"`
}

type rawRecord struct {
	DocumentNumber  string      `json:"document_number"`
	Title           string      `json:"title"`
	PublicationDate string      `json:"publication_date"`
	Abstract        string      `json:"abstract"`
	Type            string      `json:"type"`
	Agencies        []rawAgency `json:"agencies"`
}

type rawAgency struct {
	Name    string `json:"name"`
	RawName string `json:"raw_name"`
}

// Normalize maps a raw per-day payload into canonical documents. It is a
// pure function: no I/O, no mutation of its input.
//
// Records without a document_number cannot be keyed and are dropped; the
// returned drop count makes that loss visible to callers and metrics.
// Missing optional fields become empty strings or empty slices, never nil.
func Normalize(raw []byte) ([]Document, int, error) {
	var envelope rawEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, 0, fmt.Errorf("decoding upstream payload: %w", err)
	}

	docs := make([]Document, 0, len(envelope.Results))
	dropped := 0
	for _, rec := range envelope.Results {
		number := strings.TrimSpace(rec.DocumentNumber)
		if number == "" {
			dropped++
			continue
		}
		doc := Document{
			DocumentNumber: number,
			Title:          rec.Title,
			DocumentType:   rec.Type,
			Abstract:       rec.Abstract,
			Agencies:       flattenAgencies(rec.Agencies),
		}
		if rec.PublicationDate != "" {
			if day, err := ParseDay(rec.PublicationDate); err == nil {
				doc.PublicationDate = day
			}
		}
		docs = append(docs, doc)
	}
	return docs, dropped, nil
}

// flattenAgencies projects the structured agency list onto its display
// names, preserving upstream order. Agencies without either name are
// skipped rather than emitted as empty strings.
func flattenAgencies(agencies []rawAgency) []string {
	names := make([]string, 0, len(agencies))
	for _, a := range agencies {
		name := a.Name
		if name == "" {
			name = a.RawName
		}
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	return names
}
