package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sidenote-labs/sidenote/internal/core/domain"
)

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Manage the knowledge base",
	Long:  `Add, list, search, and delete knowledge base documents.`,
}

var knowledgeAddCmd = &cobra.Command{
	Use:   "add [file]",
	Short: "Add a text document",
	Long: `Add a text document to the knowledge base. Reads the given file, or
standard input when no file is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runKnowledgeAdd,
}

var knowledgeAddPDFCmd = &cobra.Command{
	Use:   "add-pdf [file]",
	Short: "Add a PDF document",
	Long: `Extract text from a PDF file and add it to the knowledge base. A PDF
with no extractable text (a scanned document) is stored with a
descriptive placeholder instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runKnowledgeAddPDF,
}

var knowledgeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List knowledge base documents",
	RunE:  runKnowledgeList,
}

var knowledgeShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one document",
	Args:  cobra.ExactArgs(1),
	RunE:  runKnowledgeShow,
}

var knowledgeSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the knowledge base",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runKnowledgeSearch,
}

var knowledgeDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a document and its embeddings",
	Args:  cobra.ExactArgs(1),
	RunE:  runKnowledgeDelete,
}

var knowledgeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every document and embedding",
	RunE:  runKnowledgeClear,
}

// Flags.
var (
	addTitle       string
	searchLimit    int
	clearConfirmed bool
)

func init() {
	knowledgeAddCmd.Flags().StringVarP(&addTitle, "title", "t", "", "Document title")
	knowledgeAddPDFCmd.Flags().StringVarP(&addTitle, "title", "t", "", "Document title (defaults to the filename)")
	knowledgeSearchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultMaxSources, "Maximum number of results")
	knowledgeClearCmd.Flags().BoolVar(&clearConfirmed, "yes", false, "Skip the confirmation prompt")

	knowledgeCmd.AddCommand(knowledgeAddCmd)
	knowledgeCmd.AddCommand(knowledgeAddPDFCmd)
	knowledgeCmd.AddCommand(knowledgeListCmd)
	knowledgeCmd.AddCommand(knowledgeShowCmd)
	knowledgeCmd.AddCommand(knowledgeSearchCmd)
	knowledgeCmd.AddCommand(knowledgeDeleteCmd)
	knowledgeCmd.AddCommand(knowledgeClearCmd)
	rootCmd.AddCommand(knowledgeCmd)
}

// progressPrinter renders ingestion progress on one line.
func progressPrinter(cmd *cobra.Command) domain.ProgressFunc {
	return func(p domain.IngestProgress) {
		cmd.Printf("\r[%3d%%] %-60s", p.Percentage, p.Status)
		if p.Percentage >= 100 {
			cmd.Println()
		}
	}
}

func runKnowledgeAdd(cmd *cobra.Command, args []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	var content []byte
	var err error
	title := addTitle

	if len(args) == 1 {
		content, err = os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		if title == "" {
			title = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		}
	} else {
		content, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read standard input: %w", err)
		}
		if title == "" {
			title = "Pasted text"
		}
	}

	id, err := knowledgeService.AddTextDocument(context.Background(), title, string(content), progressPrinter(cmd))
	if err != nil {
		return fmt.Errorf("failed to add document: %w", err)
	}

	cmd.Printf("Added %q (%s)\n", title, id)
	return nil
}

func runKnowledgeAddPDF(cmd *cobra.Command, args []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	path := args[0]
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	id, err := knowledgeService.AddPDFDocument(context.Background(), file, info.Size(), filepath.Base(path), addTitle, progressPrinter(cmd))
	if err != nil {
		return fmt.Errorf("failed to add PDF: %w", err)
	}

	cmd.Printf("Added %s (%s)\n", filepath.Base(path), id)
	return nil
}

func runKnowledgeList(cmd *cobra.Command, _ []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	docs, err := knowledgeService.GetAllKnowledge(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("Knowledge base is empty.")
		return nil
	}

	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    Title:   %s\n", docs[i].Title)
		cmd.Printf("    Type:    %s\n", docs[i].Type)
		cmd.Printf("    Chunks:  %d\n", docs[i].ChunkCount)
		cmd.Printf("    Added:   %s\n", docs[i].CreatedAt.Format("2006-01-02 15:04:05"))
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runKnowledgeShow(cmd *cobra.Command, args []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	doc, err := knowledgeService.GetKnowledgeItem(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Title:   %s\n", doc.Title)
	cmd.Printf("  Type:    %s\n", doc.Type)
	cmd.Printf("  Chunks:  %d\n", doc.ChunkCount)
	cmd.Printf("  Added:   %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Println()
	cmd.Println(doc.Content)
	return nil
}

func runKnowledgeSearch(cmd *cobra.Command, args []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	query := strings.Join(args, " ")
	sources, err := knowledgeService.SearchKnowledge(context.Background(), query, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(sources) == 0 {
		cmd.Println("No matches.")
		return nil
	}

	for i, src := range sources {
		cmd.Printf("%d. %s (similarity %.3f)\n", i+1, src.Title, src.Similarity)
		if src.PageNumber > 0 {
			cmd.Printf("   Page %d, chunk %d\n", src.PageNumber, src.ChunkIndex)
		} else {
			cmd.Printf("   Chunk %d\n", src.ChunkIndex)
		}
		cmd.Printf("   %s\n\n", snippet(src.Text, 200))
	}
	return nil
}

func runKnowledgeDelete(cmd *cobra.Command, args []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	if err := knowledgeService.DeleteKnowledgeItem(context.Background(), args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Deleted %s\n", args[0])
	return nil
}

func runKnowledgeClear(cmd *cobra.Command, _ []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	if !clearConfirmed {
		return errors.New("refusing to clear the knowledge base without --yes")
	}

	if err := knowledgeService.ClearAll(context.Background()); err != nil {
		return fmt.Errorf("failed to clear knowledge base: %w", err)
	}

	cmd.Println("Knowledge base cleared.")
	return nil
}

// snippet truncates text to max characters on a rune boundary.
func snippet(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
