// Command sidenote is a local-first knowledge assistant. Documents go
// into a personal knowledge base; questions are answered by a language
// model grounded in that base.
package main

import (
	"context"
	"os"

	"github.com/sidenote-labs/sidenote/internal/adapters/driven/ai"
	"github.com/sidenote-labs/sidenote/internal/adapters/driven/config/file"
	"github.com/sidenote-labs/sidenote/internal/adapters/driven/pdf"
	"github.com/sidenote-labs/sidenote/internal/adapters/driven/storage/sqlite"
	"github.com/sidenote-labs/sidenote/internal/adapters/driving/cli"
	"github.com/sidenote-labs/sidenote/internal/chunker"
	"github.com/sidenote-labs/sidenote/internal/core/services"
	"github.com/sidenote-labs/sidenote/internal/logger"
)

func main() {
	if err := run(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	kv, err := file.NewKeyValueStore(os.Getenv("SIDENOTE_CONFIG_DIR"))
	if err != nil {
		return err
	}

	store, err := sqlite.NewStore(os.Getenv("SIDENOTE_DATA_DIR"))
	if err != nil {
		return err
	}
	defer store.Close()

	settingsSvc := services.NewSettingsService(kv)
	if _, err := settingsSvc.Load(ctx); err != nil {
		logger.Warn("Could not load settings: %v", err)
	}

	// Reload when the config file is edited externally.
	stopWatch, err := kv.Watch(func() {
		if _, err := settingsSvc.Load(context.Background()); err != nil {
			logger.Warn("Could not reload settings: %v", err)
		}
	})
	if err != nil {
		logger.Warn("Config watching disabled: %v", err)
	} else {
		defer stopWatch()
	}

	embedder, err := ai.NewEmbeddingService(ai.EmbeddingConfig{
		Provider: ai.Provider(os.Getenv("SIDENOTE_EMBEDDING_PROVIDER")),
		BaseURL:  os.Getenv("SIDENOTE_EMBEDDING_URL"),
		Model:    os.Getenv("SIDENOTE_EMBEDDING_MODEL"),
		APIKey:   os.Getenv("OPENAI_API_KEY"),
	})
	if err != nil {
		return err
	}
	defer embedder.Close()

	model := ai.NewLanguageModel(ai.ModelConfig{
		BaseURL: os.Getenv("SIDENOTE_OLLAMA_URL"),
		Model:   os.Getenv("SIDENOTE_MODEL"),
	})

	knowledgeSvc := services.NewKnowledgeService(store.DocumentStore(), store.VectorStore(), embedder, chunker.New())
	knowledgeSvc.SetPDFExtractor(pdf.NewExtractor())
	knowledgeSvc.SetSettings(settingsSvc)

	chatSvc := services.NewRAGService(model, knowledgeSvc, settingsSvc, services.NewHistory(kv))

	cli.SetServices(knowledgeSvc, chatSvc, settingsSvc)
	return cli.Execute()
}
