package applog

import (
	"fmt"
	"iruka-hub/build"
	"log"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger = zap.Logger

func Info(msg string, fields ...zapcore.Field) {
	def.WithOptions(zap.AddCallerSkip(1)).Info(msg, fields...)
}

func Warn(msg string, fields ...zapcore.Field) {
	def.WithOptions(zap.AddCallerSkip(1)).Warn(msg, fields...)
}

func Debug(msg string, fields ...zapcore.Field) {
	def.WithOptions(zap.AddCallerSkip(1)).Debug(msg, fields...)
}

func Error(msg string, fields ...zapcore.Field) {
	def.WithOptions(zap.AddCallerSkip(1)).Error(msg, fields...)
}

func Fatal(msg string, fields ...zapcore.Field) {
	def.WithOptions(zap.AddCallerSkip(1)).Fatal(msg, fields...)
}

func LogStartup(launchArgs interface{}) {
	buildInfo := build.GetBuildInfo()
	buildCommit := "unknown"
	if buildInfo != nil {
		buildCommit = buildInfo.CommitHash
	}

	Info("Hub adapter started",
		zap.String("buildCommit", buildCommit),
		zap.Any("launchArgs", launchArgs),
	)
}

func GetLogger() *Logger {
	return def
}

// Initialize switches the default logger to one that also writes to a
// per-session log file and carries the session/player identity on every entry.
func Initialize(playerId string, sessionId string, logPath string) {
	if logPath == "" {
		workdir, err := os.Getwd()
		if err != nil {
			log.Fatalf("Failed to get current working directory: %v", err)
		}
		logPath = filepath.Join(workdir, "logs")
	}

	logFilename := filepath.Join(
		logPath,
		fmt.Sprintf("session_%s_player_%s.log",
			sessionId,
			playerId,
		),
	)

	err := os.MkdirAll(filepath.Dir(logFilename), os.ModePerm)
	if err != nil {
		log.Fatalf("Failed to create log directory: %v", err)
	}

	logFile, err = os.OpenFile(logFilename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.Fatalf("Failed to open log file '%s': %v", logFilename, err)
	}

	l := newLogger(opts...).With(
		zap.String("playerId", playerId),
		zap.String("sessionId", sessionId))

	setLogger(l)
}

func Shutdown() {
	if logFile != nil {
		_ = logFile.Close()
	}
}

var (
	opts = []zap.Option{
		zap.AddCaller(),
	}
	def     = newLogger(opts...)
	logFile *os.File
)

func getEncoderConfig() zapcore.EncoderConfig {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.UTC().Format(time.RFC3339)) // Ensure UTC
	}
	return encoderConfig
}

func newLogger(opts ...zap.Option) *Logger {
	jsonEncoder := zapcore.NewJSONEncoder(getEncoderConfig())

	consoleSyncer := zapcore.AddSync(os.Stdout)
	logLevel := zapcore.DebugLevel

	consoleCore := zapcore.NewCore(jsonEncoder, consoleSyncer, logLevel)

	core := consoleCore
	if logFile != nil {
		fileSyncer := zapcore.AddSync(logFile)
		fileCore := zapcore.NewCore(jsonEncoder, fileSyncer, logLevel)
		core = zapcore.NewTee(consoleCore, fileCore)
	}

	logger := zap.New(core, opts...)

	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	return logger
}

func setLogger(l *Logger) {
	def = l
	zap.ReplaceGlobals(def)
}
