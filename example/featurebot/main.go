// Command featurebot runs the intake wizard on stdin/stdout. Every
// collaborator is optional: without credentials it still collects and
// validates a full request, it just can't suggest names or file the record.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/joho/godotenv"

	"github.com/anupamar/intake/assist"
	"github.com/anupamar/intake/config"
	"github.com/anupamar/intake/notion"
	"github.com/anupamar/intake/session"
	"github.com/anupamar/intake/suggest"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("run: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	slog.SetLogLoggerLevel(logLevel(cfg.Log.Level))

	classifier, guide := buildAssist(ctx, cfg)

	opts := []session.Option{
		session.WithClassifier(classifier),
		session.WithGuide(guide),
		session.WithSnapshotStore(session.NewMemorySnapshotStore()),
	}

	var suggester *suggest.Client
	if cfg.Suggest.BaseURL != "" {
		client, err := suggest.NewClient(cfg.Suggest.BaseURL, cfg.Suggest.Token)
		if err != nil {
			return fmt.Errorf("suggest client: %w", err)
		}
		suggester = client
		opts = append(opts, session.WithSuggester(client))
	}

	if cfg.Notion.Token != "" && cfg.Notion.DatabaseID != "" {
		notionOpts := []notion.Option{}
		if cfg.Notion.BaseURL != "" {
			notionOpts = append(notionOpts, notion.WithBaseURL(cfg.Notion.BaseURL))
		}
		if suggester != nil {
			notionOpts = append(notionOpts, notion.WithResolver(suggester))
		}
		opts = append(opts, session.WithSubmitter(notion.NewClient(cfg.Notion.Token, cfg.Notion.DatabaseID, notionOpts...)))
	}

	var uploader *notion.Uploader
	if cfg.Files.BaseURL != "" {
		uploader = notion.NewUploader(cfg.Files.BaseURL, cfg.Files.Token)
	}

	sess := session.New(opts...)
	reply := sess.Start(ctx)
	fmt.Printf("\n%s\n\n", reply.Message)

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("you: ")
		line, rErr := reader.ReadString('\n')
		if rErr != nil {
			fmt.Println("bye!")
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if path, ok := strings.CutPrefix(line, "attach "); ok {
			fmt.Printf("\n%s\n\n", attach(ctx, sess, uploader, strings.TrimSpace(path)))
			continue
		}

		reply, err := sess.HandleTurn(ctx, line)
		if err != nil {
			return err
		}
		fmt.Printf("\n%s\n\n", reply.Message)
		if reply.Done {
			return nil
		}
	}
}

// attach uploads a local file through the file store, or records a bare URL
// when no store is configured and the argument looks like a link.
func attach(ctx context.Context, sess *session.Session, uploader *notion.Uploader, arg string) string {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		att := sess.AddAttachmentURL(arg)
		return fmt.Sprintf("Linked %s as an attachment.", att.Name)
	}
	if uploader == nil {
		return "File uploads aren't configured. You can attach a URL instead."
	}
	f, err := os.Open(arg)
	if err != nil {
		return fmt.Sprintf("I couldn't read %s: %v", arg, err)
	}
	defer f.Close()

	name := filepath.Base(arg)
	mimeType := mime.TypeByExtension(filepath.Ext(name))
	att := uploader.Upload(ctx, name, mimeType, f)
	sess.AddAttachment(att)
	if att.Error != "" {
		return fmt.Sprintf("Upload of %s failed (%s) — it's recorded so you can retry.", name, att.Error)
	}
	return fmt.Sprintf("Uploaded %s.", name)
}

// buildAssist prefers the model-backed helpers and always chains the local
// ones behind them, so the wizard works the same without an API key.
func buildAssist(ctx context.Context, cfg *config.Config) (assist.Classifier, assist.Guide) {
	local := assist.LocalClassifier{}
	localGuide := assist.LocalGuide{}
	if cfg.OpenAI.APIKey == "" {
		return local, localGuide
	}
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  cfg.OpenAI.APIKey,
		Model:   cfg.OpenAI.Model,
		BaseURL: cfg.OpenAI.BaseURL,
	})
	if err != nil {
		slog.Warn("chat model unavailable, using local helpers", "err", err)
		return local, localGuide
	}
	toolClassifier, err := assist.NewToolBasedClassifier(cm)
	if err != nil {
		slog.Warn("tool classifier unavailable, using local helpers", "err", err)
		return local, localGuide
	}
	return assist.NewFailbackClassifier(toolClassifier, local),
		assist.NewFailbackGuide(assist.NewToolBasedGuide(cm), localGuide)
}

func logLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
