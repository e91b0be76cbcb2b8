package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/kingrea/roster/internal/config"
)

// Options describes where log entries go. The TUI owns the terminal, so the
// console sink is only enabled for roster-store.
type Options struct {
	Level       string
	Filename    string
	MaxSizeMB   int
	MaxBackups  int
	MaxAgeDays  int
	Compress    bool
	Console     bool
	JournalSize int
}

// OptionsFromConfig maps the log section of config.yaml onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Level:       cfg.File.Log.Level,
		Filename:    cfg.LogPath(),
		MaxSizeMB:   cfg.File.Log.MaxSizeMB,
		MaxBackups:  cfg.File.Log.MaxBackups,
		MaxAgeDays:  cfg.File.Log.MaxAgeDays,
		Compress:    cfg.File.Log.Compress,
		JournalSize: DefaultJournalSize,
	}
}

// New builds a zap logger writing to a rotating file (when Filename is set),
// optionally stdout, and always an in-memory Journal the TUI can tail.
// The returned func flushes the logger.
func New(opt Options) (*zap.Logger, *Journal, func()) {
	var lvl zapcore.Level
	if err := lvl.Set(opt.Level); err != nil {
		lvl = zapcore.InfoLevel
	}

	fileCfg := zap.NewProductionEncoderConfig()
	fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	fileCfg.TimeKey = "ts"
	fileCfg.EncodeCaller = zapcore.ShortCallerEncoder

	panelCfg := zap.NewDevelopmentEncoderConfig()
	panelCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	panelCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	panelCfg.CallerKey = ""
	panelCfg.ConsoleSeparator = " "

	journal := NewJournal(opt.JournalSize)
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(panelCfg), journal, lvl),
	}

	if opt.Filename != "" {
		rotator := &lumberjack.Logger{
			Filename:   opt.Filename,
			MaxSize:    max(1, opt.MaxSizeMB),
			MaxBackups: max(0, opt.MaxBackups),
			MaxAge:     max(0, opt.MaxAgeDays),
			Compress:   opt.Compress,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), rotWriter{rotator}, lvl))
	}
	if opt.Console {
		consoleCfg := zap.NewDevelopmentEncoderConfig()
		consoleCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
		consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.AddSync(os.Stdout), lvl))
	}

	l := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	return l, journal, func() { _ = l.Sync() }
}

type rotWriter struct{ *lumberjack.Logger }

func (w rotWriter) Write(p []byte) (int, error) { return w.Logger.Write(p) }
func (w rotWriter) Sync() error                 { return nil }
