package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ============================================================
// Logger
// ============================================================

// Options задаёт уровень, формат и каталог для файлов логов.
type Options struct {
	Level   string
	Format  string // text | json
	Dir     string // пусто = только stderr
	Service string
}

var (
	base = logrus.New()
	mu   sync.Mutex
)

// Init настраивает общий logrus.Logger. Повторный вызов перенастраивает его.
func Init(opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	base.SetLevel(level)

	if opts.Format == "json" {
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05.000",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	} else {
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05.000",
		})
	}

	if opts.Dir == "" {
		base.SetOutput(os.Stderr)
		return nil
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return fmt.Errorf("mkdir log dir: %w", err)
	}
	name := opts.Service
	if name == "" {
		name = "app"
	}
	file := &lumberjack.Logger{
		Filename:   filepath.Join(opts.Dir, name+".log"),
		MaxSize:    50, // MB
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	}
	base.SetOutput(io.MultiWriter(os.Stderr, file))
	return nil
}

// Get возвращает логгер компонента (поле component).
func Get(component string) *logrus.Entry {
	return base.WithField("component", component)
}

// SetOutput перенаправляет вывод (используется в тестах).
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	base.SetOutput(w)
}
