// Command compare runs one comparison batch from the terminal and prints the
// timing of every model side by side.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/Laisky/zap"
	_ "github.com/joho/godotenv/autoload"

	"github.com/songquanpeng/model-compare/common/env"
	"github.com/songquanpeng/model-compare/relay/adaptor/openai_compatible"
	"github.com/songquanpeng/model-compare/relay/comparison"
)

func main() {
	logger, err := glog.NewConsoleWithName("model-compare-cli", glog.LevelInfo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %+v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	failed, err := run(ctx, logger)
	if err != nil {
		logger.Error("comparison failed", zap.Error(err))
		os.Exit(1)
	}
	if failed > 0 {
		logger.Warn("some models did not complete", zap.Int("failed", failed))
		os.Exit(2)
	}
	logger.Info("all models completed")
}

func run(ctx context.Context, logger glog.Logger) (int, error) {
	cfg, err := loadConfig()
	if err != nil {
		return 0, errors.Wrap(err, "load config")
	}

	httpClient, err := openai_compatible.NewHTTPClient(cfg.ProxyURL)
	if err != nil {
		return 0, errors.Wrap(err, "build http client")
	}

	logger.Info("starting comparison",
		zap.String("endpoint", cfg.Endpoint),
		zap.Strings("models", cfg.Models),
		zap.Duration("run_timeout", cfg.RunTimeout))

	orch := comparison.New(comparison.Params{
		Client:     openai_compatible.NewClient(httpClient, logger),
		Logger:     logger,
		RunTimeout: cfg.RunTimeout,
	})

	snap, err := orch.Run(ctx, cfg.targets(), cfg.Prompt)
	if err != nil {
		return 0, err
	}

	failed := renderReport(os.Stdout, snap)
	if env.Bool("COMPARE_PRINT_ANSWERS", false) {
		renderAnswers(os.Stdout, snap)
	}
	return failed, nil
}
