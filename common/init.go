package common

import (
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/Laisky/zap"

	"github.com/songquanpeng/model-compare/common/logger"
)

// Version is overridden at build time with -ldflags.
var Version = "v0.0.0"

// StartTime records when the process started (unix seconds).
var StartTime = time.Now().Unix()

var (
	Port   = flag.Int("port", 3000, "the listening port")
	LogDir = flag.String("log-dir", "", "specify the log directory")
)

// Init parses flags and prepares the log directory.
func Init() {
	flag.Parse()

	if *LogDir == "" {
		return
	}

	expanded := expandLogDirPath(*LogDir)
	lg := logger.Logger.With(zap.String("log_dir", expanded))

	var err error
	expanded, err = filepath.Abs(expanded)
	if err != nil {
		lg.Fatal("failed to get absolute log dir", zap.Error(err))
	}
	if err = os.MkdirAll(expanded, 0o755); err != nil {
		lg.Fatal("failed to create log dir", zap.Error(err))
	}

	lg.Info("set log dir", zap.String("log_dir", expanded))
	logger.LogDir = expanded
	*LogDir = expanded
}
