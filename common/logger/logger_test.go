package logger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestLoggerInitialized(t *testing.T) {
	require.NotNil(t, Logger)
	Logger.Info("logger ready")
}

func TestSetupLoggerWritesIntoLogDir(t *testing.T) {
	dir := t.TempDir()
	origDir := LogDir
	origWriter, origErrWriter := gin.DefaultWriter, gin.DefaultErrorWriter
	t.Cleanup(func() {
		LogDir = origDir
		gin.DefaultWriter, gin.DefaultErrorWriter = origWriter, origErrWriter
		ResetSetupLogOnceForTests()
	})

	ResetSetupLogOnceForTests()
	LogDir = dir
	SetupLogger()

	_, err := gin.DefaultWriter.Write([]byte("hello\n"))
	require.NoError(t, err)

	logPath := filepath.Join(dir, "model-compare-"+time.Now().Format("20060102")+".log")
	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "hello")
}

func TestSetupLoggerWithoutDirIsNoop(t *testing.T) {
	origDir := LogDir
	origWriter := gin.DefaultWriter
	t.Cleanup(func() {
		LogDir = origDir
		ResetSetupLogOnceForTests()
	})

	ResetSetupLogOnceForTests()
	LogDir = ""
	SetupLogger()
	require.Equal(t, origWriter, gin.DefaultWriter)
}
