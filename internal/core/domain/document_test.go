package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentType_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		docType  DocumentType
		expected bool
	}{
		{name: "text is valid", docType: DocumentTypeText, expected: true},
		{name: "pdf is valid", docType: DocumentTypePDF, expected: true},
		{name: "empty string is invalid", docType: DocumentType(""), expected: false},
		{name: "unknown type is invalid", docType: DocumentType("markdown"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.docType.IsValid())
		})
	}
}

func TestDocumentType_String(t *testing.T) {
	assert.Equal(t, "text", DocumentTypeText.String())
	assert.Equal(t, "pdf", DocumentTypePDF.String())
}
