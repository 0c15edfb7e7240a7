package services

import (
	"fmt"
	"strings"

	"github.com/sidenote-labs/sidenote/internal/core/domain"
)

// Fixed text templates for chat responses and ingestion fallbacks.
// Answer quality and failure behavior depend on this exact wording,
// so the templates live here rather than in user-facing configuration.
const (
	// systemMessage seeds every model session.
	systemMessage = "You are a helpful AI assistant. Provide informative and helpful responses about the content they share."

	// errorResponse replaces the answer when a model call fails.
	errorResponse = "I apologize, but I encountered an error while processing your request. Please try again."

	// ragPromptTemplate wraps knowledge base context around the user's
	// question. The instructions keep the model from narrating the
	// retrieval machinery and pin down the citation format.
	ragPromptTemplate = `Answer the user's question comprehensively and accurately. Use the provided knowledge base information to enhance your response when relevant, but also draw from your general knowledge.

KNOWLEDGE BASE CONTEXT:
%s

USER QUESTION: %s

INSTRUCTIONS:
1. Answer the question using your general knowledge
2. If the knowledge base contains relevant information, incorporate it seamlessly into your response
3. If the knowledge base doesn't contain relevant information, answer using only your general knowledge
4. Do NOT mention the knowledge base, RAG system, or that information is/isn't available
5. Do NOT explain why you're using general knowledge vs knowledge base information
6. Be specific and cite the relevant sources when using knowledge base information
7. If you're uncertain about something, say so rather than guessing
8. When referencing knowledge base information, use the format: (Document Name) or (Document Name - page X) if page number is mentioned
9. Always include the document name, and include page numbers only when they are explicitly mentioned in the source text
10. Do NOT use generic references like "Source 1" or "Page 10" without the document name

Please provide a helpful and accurate response.`

	// genericPromptTemplate is used when no relevant sources exist.
	genericPromptTemplate = `Answer the following question to the best of your ability. If you don't know something, say so rather than making it up.

Question: %s

Please provide a helpful response.`

	// pdfFailureMessage becomes the document content when PDF text
	// extraction fails, so the upload is preserved with an explanation
	// instead of being dropped.
	pdfFailureMessage = `PDF Text Extraction Failed

This PDF could not be processed for automatic text extraction. This commonly happens with:
- Scanned documents (image-based PDFs)
- PDFs with complex layouts or formatting
- Password-protected or encrypted PDFs
- PDFs with custom fonts or encoding

Recommended Actions:
1. Try copying important text from the PDF and adding it as text knowledge
2. Use the PDF filename for reference in your knowledge base
3. Consider converting the PDF to a text document first

The PDF has been added to your knowledge base for reference, but the content is not searchable through the chat interface.`

	// modelUnavailableTemplate answers a chat turn when no model
	// session could be opened.
	modelUnavailableTemplate = "I received your message: %q\n\nHowever, the AI model is not currently available. This could be because:\n• The model hasn't finished downloading\n• The model backend is not running\n• There was an error during initialization\n\nPlease check the model status in the Settings tab or try again shortly."
)

// ragPrompt renders the grounded prompt for a query and its sources.
func ragPrompt(query string, sources []domain.KnowledgeSource) string {
	return fmt.Sprintf(ragPromptTemplate, contextSections(sources), query)
}

// genericPrompt renders the ungrounded prompt for a query.
func genericPrompt(query string) string {
	return fmt.Sprintf(genericPromptTemplate, query)
}

// modelUnavailableResponse renders the fixed unavailability answer.
func modelUnavailableResponse(query string) string {
	return fmt.Sprintf(modelUnavailableTemplate, query)
}

// contextSections renders one block per source, separated by rules.
// Each block carries an inline citation so the model can reference the
// document by name, with a page number when one is known.
func contextSections(sources []domain.KnowledgeSource) string {
	blocks := make([]string, 0, len(sources))
	for _, source := range sources {
		citation := fmt.Sprintf(" (%s)", source.Title)
		if source.PageNumber > 0 {
			citation = fmt.Sprintf(" (%s - page %d)", source.Title, source.PageNumber)
		}
		blocks = append(blocks, fmt.Sprintf("[From: %s]%s\n%s", source.Title, citation, source.Text))
	}
	return strings.Join(blocks, "\n\n---\n\n")
}
