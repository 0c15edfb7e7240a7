package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKnowledgeCmd_HasSubcommands(t *testing.T) {
	commands := knowledgeCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.Contains(t, commandNames, "add")
	assert.Contains(t, commandNames, "add-pdf")
	assert.Contains(t, commandNames, "list")
	assert.Contains(t, commandNames, "show")
	assert.Contains(t, commandNames, "search")
	assert.Contains(t, commandNames, "delete")
	assert.Contains(t, commandNames, "clear")
}

func TestKnowledgeListCmd_ShowsDocuments(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"knowledge", "list"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "knowledge-1")
	assert.Contains(t, buf.String(), "Go Concurrency")
	assert.Contains(t, buf.String(), "Total: 1 documents")
}

func TestKnowledgeShowCmd_PrintsContent(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"knowledge", "show", "knowledge-1"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Go Concurrency")
	assert.Contains(t, buf.String(), "Goroutines are lightweight threads.")
}

func TestKnowledgeShowCmd_UnknownID(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"knowledge", "show", "knowledge-missing"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	assert.Error(t, err)
}

func TestKnowledgeSearchCmd_ShowsResults(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"knowledge", "search", "goroutines"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Go Concurrency")
	assert.Contains(t, buf.String(), "0.910")
}

func TestKnowledgeSearchCmd_NoMatches(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"knowledge", "search", "nothing"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No matches.")
}

func TestKnowledgeDeleteCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	stub := knowledgeService.(*stubKnowledge)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"knowledge", "delete", "knowledge-1"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, []string{"knowledge-1"}, stub.deleted)
	assert.Contains(t, buf.String(), "Deleted knowledge-1")
}

func TestKnowledgeClearCmd_RequiresConfirmation(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	stub := knowledgeService.(*stubKnowledge)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"knowledge", "clear"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.False(t, stub.cleared)
}

func TestKnowledgeClearCmd_WithYes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	stub := knowledgeService.(*stubKnowledge)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"knowledge", "clear", "--yes"})
	defer func() {
		rootCmd.SetArgs(nil)
		clearConfirmed = false
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.True(t, stub.cleared)
	assert.Contains(t, buf.String(), "Knowledge base cleared.")
}

func TestKnowledgeCmds_WithoutServices(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"knowledge", "list"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestSnippet(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{
			name:     "short text unchanged",
			input:    "hello world",
			max:      20,
			expected: "hello world",
		},
		{
			name:     "long text truncated",
			input:    "aaaaa bbbbb ccccc",
			max:      8,
			expected: "aaaaa bb...",
		},
		{
			name:     "whitespace collapsed",
			input:    "hello\n\n  world",
			max:      20,
			expected: "hello world",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, snippet(tt.input, tt.max))
		})
	}
}
