package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"tinygen/analyzer"
	"tinygen/server"
	"tinygen/ui"
)

const shutdownTimeout = 30 * time.Second

var (
	serveAddr string

	analyzeRepo       string
	analyzePrompt     string
	analyzePromptFile string
	analyzeCopy       bool
	analyzeNoColor    bool
	analyzeQuiet      bool
)

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis API over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

// analyzeCmd runs one analysis from the terminal
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Generate a diff for one repository and change request",
	Example: `  tinygen analyze --repo https://github.com/jayhack/llm.sh \
    --prompt "The program doesn't output anything in windows 10"`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

// modelsCmd lists the models of the configured provider
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models available from the configured provider",
	Args:  cobra.NoArgs,
	RunE:  runModels,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from settings, TINYGEN_ADDR or PORT)")

	analyzeCmd.Flags().StringVar(&analyzeRepo, "repo", "", "Repository URL to clone (required)")
	analyzeCmd.Flags().StringVarP(&analyzePrompt, "prompt", "p", "", "Change request")
	analyzeCmd.Flags().StringVar(&analyzePromptFile, "prompt-file", "", "Read the change request from a file (- for stdin)")
	analyzeCmd.Flags().BoolVar(&analyzeCopy, "copy", false, "Copy the diff to the clipboard")
	analyzeCmd.Flags().BoolVar(&analyzeNoColor, "no-color", false, "Disable colored output")
	analyzeCmd.Flags().BoolVarP(&analyzeQuiet, "quiet", "q", false, "Do not stream pass output")
	analyzeCmd.MarkFlagRequired("repo")
	analyzeCmd.MarkFlagsMutuallyExclusive("prompt", "prompt-file")
	analyzeCmd.MarkFlagsOneRequired("prompt", "prompt-file")
}

// runServe serves until SIGINT/SIGTERM, then drains in-flight analyses.
func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	svc, err := a.newService(nil)
	if err != nil {
		return err
	}

	hcfg := server.HandlerConfig{
		Analyzer:     svc,
		Pinger:       a.provider,
		DefaultLimit: cfg.Records.Limit,
		Logger:       logger,
	}
	if a.records != nil {
		hcfg.Records = a.records
	}
	srv := server.New(cfg.Server.Addr, server.NewRouter(server.NewHandler(hcfg), logger))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("tinygen starting",
			zap.String("addr", srv.Addr),
			zap.String("provider", cfg.Provider.Type),
			zap.String("model", a.provider.GetModel()),
			zap.Bool("records", a.records != nil))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("could not start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	prompt, err := readPrompt(cmd.InOrStdin())
	if err != nil {
		return err
	}

	// Keep the terminal for streamed output unless debugging.
	if !cfg.Debug {
		logger = logger.WithOptions(zap.IncreaseLevel(zapcore.WarnLevel))
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	color := !analyzeNoColor
	stderr := cmd.ErrOrStderr()
	stages := analyzer.DefaultStages()
	names := make([]string, len(stages))
	for i, st := range stages {
		names[i] = st.Name
	}

	var current string
	onChunk := func(stage, chunk string) {
		if analyzeQuiet {
			return
		}
		if stage != current {
			if current != "" {
				fmt.Fprintln(stderr)
			}
			current = stage
			fmt.Fprintln(stderr, ui.RenderStage(stage, slices.Index(names, stage)+1, len(names), color))
		}
		fmt.Fprint(stderr, chunk)
	}

	svc, err := a.newService(onChunk)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := svc.Analyze(ctx, analyzeRepo, prompt)
	if !analyzeQuiet && current != "" {
		fmt.Fprintln(stderr)
	}
	if err != nil {
		return err
	}

	for _, sk := range res.Snapshot.Skipped {
		fmt.Fprintln(stderr, ui.RenderWarning("skipped "+sk.Path+": "+sk.Reason, color))
	}
	fmt.Fprintln(stderr, ui.FormatStatus(color,
		"files", strconv.Itoa(len(res.Snapshot.Files)),
		"skipped", strconv.Itoa(len(res.Snapshot.Skipped)),
		"model", a.provider.GetModel(),
		"id", res.ID))

	fmt.Fprintln(stderr, ui.TitleStyle.Render("DIFF:"))
	fmt.Fprintln(cmd.OutOrStdout(), ui.RenderDiff(res.Diff, color))

	if analyzeCopy {
		if err := clipboard.WriteAll(res.Diff); err != nil {
			fmt.Fprintln(stderr, ui.RenderWarning("could not copy to clipboard: "+err.Error(), color))
		} else {
			fmt.Fprintln(stderr, ui.DimStyle.Render("diff copied to clipboard"))
		}
	}
	return nil
}

func readPrompt(stdin io.Reader) (string, error) {
	if analyzePromptFile == "" {
		return analyzePrompt, nil
	}

	var data []byte
	var err error
	if analyzePromptFile == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(analyzePromptFile)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read prompt: %w", err)
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", errors.New("prompt file is empty")
	}
	return prompt, nil
}

func runModels(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	models, err := a.provider.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	out := cmd.OutOrStdout()
	current := a.provider.GetModel()
	for _, m := range models {
		marker := " "
		if m.Name == current {
			marker = "*"
		}
		if m.Size > 0 {
			fmt.Fprintf(out, "%s %s (%s)\n", marker, m.Name, formatSize(m.Size))
		} else {
			fmt.Fprintf(out, "%s %s\n", marker, m.Name)
		}
	}
	return nil
}

func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
