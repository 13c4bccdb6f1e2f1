package summarize

import (
	"strings"

	"github.com/Akash-RK/federal-register-rag/internal/ingest"
)

const promptHeader = `You are a helpful assistant that answers questions based on Federal Register documents.
Below is the user's query and relevant documents retrieved from the Federal Register database.
Use the documents to provide an accurate and concise answer to the query. If the documents
do not contain enough information to answer the query, say so and provide any relevant
information you can.`

// buildPrompt assembles the question and a context block of the retrieved
// documents into a single prompt.
func buildPrompt(question string, docs []ingest.Document) string {
	var b strings.Builder
	b.WriteString(promptHeader)
	b.WriteString("\n\n### User Query:\n")
	b.WriteString(question)
	b.WriteString("\n\n### Relevant Documents:\n")
	for _, doc := range docs {
		b.WriteString("Document Number: ")
		b.WriteString(doc.DocumentNumber)
		b.WriteString("\nTitle: ")
		b.WriteString(doc.Title)
		b.WriteString("\nPublication Date: ")
		b.WriteString(doc.PublicationDate.String())
		b.WriteString("\nAbstract: ")
		b.WriteString(doc.Abstract)
		b.WriteString("\nAgencies: ")
		b.WriteString(strings.Join(doc.Agencies, ", "))
		b.WriteString("\n\n")
	}
	b.WriteString("### Answer:\n")
	return b.String()
}
