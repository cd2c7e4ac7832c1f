// Command-line entrypoint: one-shot review/generate against the assistant,
// plus exchange-log and guideline maintenance.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"ganadabeot/ganadabeot/config"
	"ganadabeot/ganadabeot/controllers"
	"ganadabeot/ganadabeot/services/assistant"
	"ganadabeot/ganadabeot/sources/psql"
	"ganadabeot/ganadabeot/sources/psql/dao"
	"ganadabeot/ganadabeot/sources/session"
	"ganadabeot/ganadabeot/sources/storage"
	"ganadabeot/ganadabeot/utils/color"
	"ganadabeot/ganadabeot/utils/logging"

	"go.uber.org/zap"
)

const (
	exitUsage  = 1
	exitRemote = 2
)

func main() {
	cfg := config.LoadConfig()
	if err := logging.InitLogger(cfg.LogDir); err != nil {
		fmt.Fprintln(os.Stderr, color.ColorError("logger init failed: "+err.Error()))
		os.Exit(exitUsage)
	}
	defer logging.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		os.Exit(exitUsage)
	}
	var code int
	switch args[0] {
	case config.ModeReview, config.ModeGenerate:
		code = runWriting(ctx, cfg, args[0], args[1:])
	case "history":
		code = runHistory(ctx, cfg, args[1:])
	case "upload-guideline":
		code = runUpload(ctx, cfg, args[1:])
	default:
		usage()
		code = exitUsage
	}
	logging.Sync()
	os.Exit(code)
}

func usage() {
	fmt.Println("ganadabeot CLI usage:")
	fmt.Println("  ganadabeot review [text]           # review a draft (reads stdin when no text)")
	fmt.Println("  ganadabeot generate [text]         # write a draft from a topic")
	fmt.Println("  ganadabeot history [limit]         # recent exchanges from the exchange log")
	fmt.Println("  ganadabeot upload-guideline <pdf>  # store the guideline document in MinIO")
}

func fail(code int, msg string) int {
	fmt.Fprintln(os.Stderr, color.ColorError(msg))
	return code
}

func runWriting(ctx context.Context, cfg config.Config, mode string, args []string) int {
	if err := cfg.Validate(); err != nil {
		return fail(exitUsage, "configuration error:\n"+err.Error())
	}
	text, err := readInput(args, os.Stdin)
	if err != nil {
		return fail(exitUsage, err.Error())
	}
	prompts, err := config.LoadPrompts(cfg.PromptsFile)
	if err != nil {
		return fail(exitUsage, err.Error())
	}

	var recorder controllers.ExchangeRecorder
	if cfg.ExchangeLogEnabled() {
		db, err := openDB(ctx, cfg)
		if err != nil {
			logging.ErrorLogger.Error("exchange log unavailable", zap.Error(err))
		} else {
			defer db.Close()
			recorder = dao.NewExchangeDAO(db.DB)
		}
	}

	client := assistant.NewClient(assistant.NewOpenAIBackend(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL), assistant.Options{
		PollInterval:    cfg.PollInterval,
		PollMaxInterval: cfg.PollMaxInterval,
		Timeout:         cfg.RunTimeout,
		MaxPolls:        cfg.MaxPolls,
		DeleteThreads:   cfg.DeleteThreads,
	})
	writer := controllers.NewWritingController(client, prompts, cfg.AssistantID, recorder)

	// the CLI has no password gate; one authenticated session per run
	sess := session.NewStore(0).Create()
	sess.SetAuthenticated(true)

	progress := func(p assistant.Progress) {
		switch p.Stage {
		case assistant.StagePoll:
			fmt.Fprintf(os.Stderr, "\r%s", color.ColorInfo(fmt.Sprintf("waiting for run (%s, poll %d)", p.Status, p.Poll)))
		default:
			fmt.Fprintln(os.Stderr, color.ColorInfo(p.Stage))
		}
	}

	fmt.Fprintln(os.Stderr, color.ColorPrompt("ganadabeot "+mode+" (session "+sess.ID[:8]+")"))
	reply, err := writer.Submit(ctx, sess, mode, text, progress)
	fmt.Fprintln(os.Stderr)
	if errors.Is(err, controllers.ErrEmptyInput) {
		return fail(exitUsage, controllers.UserMessage(err))
	}
	if err != nil {
		logging.ErrorLogger.Error("cli exchange failed", zap.String("mode", mode), zap.Error(err))
		return fail(exitRemote, controllers.UserMessage(err))
	}
	if reply == assistant.FallbackReply {
		fmt.Fprintln(os.Stderr, color.ColorWarning("the assistant produced no reply"))
	}
	fmt.Println(color.ColorReply(reply))
	return 0
}

// readInput joins args, or reads all of r when there are none.
func readInput(args []string, r io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func openDB(ctx context.Context, cfg config.Config) (*psql.Database, error) {
	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return psql.NewDatabase(dbCtx, cfg)
}

func runHistory(ctx context.Context, cfg config.Config, args []string) int {
	limit := 20
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fail(exitUsage, "limit must be a positive number")
		}
		limit = n
	}
	if !cfg.ExchangeLogEnabled() {
		return fail(exitUsage, "DB_HOST is not set, no exchange log to read")
	}
	db, err := openDB(ctx, cfg)
	if err != nil {
		return fail(exitRemote, "database connection error: "+err.Error())
	}
	defer db.Close()

	exchanges := dao.NewExchangeDAO(db.DB)
	rows, err := exchanges.ListRecent(ctx, limit)
	if err != nil {
		return fail(exitRemote, err.Error())
	}
	if len(rows) == 0 {
		fmt.Println(color.ColorInfo("no exchanges recorded"))
		return 0
	}
	seen := make(map[string]bool)
	for _, row := range rows {
		line := fmt.Sprintf("%s  %-8s  %-16s  polls=%-3d  %6dms  session=%s",
			row.CreatedAt.Format(time.DateTime), row.Mode, row.Outcome, row.Polls, row.DurationMS, short(row.SessionID))
		if row.Outcome == "completed" {
			fmt.Println(line)
		} else {
			fmt.Println(color.ColorWarning(line))
		}
		seen[row.SessionID] = true
	}

	fmt.Println()
	sessions := make([]string, 0, len(seen))
	for id := range seen {
		sessions = append(sessions, id)
	}
	sort.Strings(sessions)
	for _, id := range sessions {
		counts, err := exchanges.CountByOutcome(ctx, id)
		if err != nil {
			return fail(exitRemote, err.Error())
		}
		fmt.Println(color.ColorInfo("session " + short(id) + ": " + formatCounts(counts)))
	}
	return 0
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatCounts(counts map[string]int64) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, " ")
}

func runUpload(ctx context.Context, cfg config.Config, args []string) int {
	if len(args) != 1 {
		usage()
		return exitUsage
	}
	if cfg.MinIOEndpoint == "" {
		return fail(exitUsage, "MINIO_ENDPOINT is not set")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fail(exitUsage, err.Error())
	}
	mctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	mc, err := storage.NewMinIOClient(mctx, cfg)
	if err != nil {
		return fail(exitRemote, "minio connection error: "+err.Error())
	}
	if err := mc.PutObject(mctx, cfg.GuidelineObjectKey, data, storage.PDFContentType); err != nil {
		return fail(exitRemote, err.Error())
	}
	logging.AppLogger.Info("guideline uploaded", zap.String("file", filepath.Base(args[0])), zap.String("key", cfg.GuidelineObjectKey))
	fmt.Println(color.ColorInfo("uploaded " + filepath.Base(args[0]) + " to " + cfg.MinIOBucket + "/" + cfg.GuidelineObjectKey))
	return 0
}
