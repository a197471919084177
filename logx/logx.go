package logx

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
)

type Config struct {
	File       string
	MaxSizeMB  int
	MaxAgeDays int
	Debug      bool
}

var (
	mu        sync.RWMutex
	logger    = log.New(os.Stdout, "", log.Ldate|log.Ltime|log.Lmicroseconds)
	debugOn   bool
	rotateOut *lumberjack.Logger
)

// Init routes output to stdout and, when cfg.File is set, to a rotating file.
func Init(cfg Config) {
	var out io.Writer = os.Stdout
	var rotate *lumberjack.Logger
	if cfg.File != "" {
		rotate = &lumberjack.Logger{
			Filename: cfg.File,
			MaxSize:  cfg.MaxSizeMB,  // megabytes
			MaxAge:   cfg.MaxAgeDays, // days
		}
		out = io.MultiWriter(os.Stdout, rotate)
	}
	InitWithOutput(out)

	mu.Lock()
	if rotateOut != nil {
		rotateOut.Close()
	}
	debugOn = cfg.Debug
	rotateOut = rotate
	mu.Unlock()
}

func InitWithOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = log.New(w, "", log.Ldate|log.Ltime|log.Lmicroseconds)
}

func SetDebug(on bool) {
	mu.Lock()
	defer mu.Unlock()
	debugOn = on
}

// Close flushes the rotating file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if rotateOut == nil {
		return nil
	}
	err := rotateOut.Close()
	rotateOut = nil
	return err
}

func write(level, color, category string, content []interface{}) {
	message := fmt.Sprint(content...)
	coloredCategory := fmt.Sprintf("%s[%s][%s]%s", color, level, category, ColorReset)
	mu.RLock()
	l := logger
	mu.RUnlock()
	l.Printf("%s: %s", coloredCategory, message)
}

func Info(category string, content ...interface{}) {
	write("INFO", ColorGreen, category, content)
}

func Error(category string, content ...interface{}) {
	write("ERROR", ColorRed, category, content)
}

func Warn(category string, content ...interface{}) {
	write("WARN", ColorYellow, category, content)
}

func Debug(category string, content ...interface{}) {
	mu.RLock()
	on := debugOn
	mu.RUnlock()
	if !on {
		return
	}
	write("DEBUG", ColorBlue, category, content)
}

// Errorf logs an error message and returns a formatted error
func Errorf(format string, args ...interface{}) error {
	err := fmt.Errorf(format, args...)
	Error("ERROR", err.Error())
	return err
}
