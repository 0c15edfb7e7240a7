package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sidenote-labs/sidenote/internal/core/domain"
)

func TestContextSections(t *testing.T) {
	sources := []domain.KnowledgeSource{
		{Title: "Go Guide", Text: "goroutines are cheap"},
		{Title: "Paper", Text: "results were conclusive", PageNumber: 7},
	}

	out := contextSections(sources)

	assert.Contains(t, out, "[From: Go Guide] (Go Guide)\ngoroutines are cheap")
	assert.Contains(t, out, "[From: Paper] (Paper - page 7)\nresults were conclusive")
	assert.Equal(t, 1, strings.Count(out, "\n\n---\n\n"))
}

func TestRagPromptContainsQueryAndContext(t *testing.T) {
	out := ragPrompt("what are goroutines?", []domain.KnowledgeSource{
		{Title: "Go Guide", Text: "goroutines are cheap"},
	})

	assert.Contains(t, out, "KNOWLEDGE BASE CONTEXT:")
	assert.Contains(t, out, "USER QUESTION: what are goroutines?")
	assert.Contains(t, out, "goroutines are cheap")
	assert.Contains(t, out, "Do NOT mention the knowledge base")
}

func TestGenericPrompt(t *testing.T) {
	out := genericPrompt("what is lunch?")
	assert.Contains(t, out, "Question: what is lunch?")
}

func TestModelUnavailableResponse(t *testing.T) {
	out := modelUnavailableResponse("hello")
	assert.Contains(t, out, `"hello"`)
	assert.Contains(t, out, "not currently available")
}
