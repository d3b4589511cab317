// Package log is a small level-filtered wrapper around the standard log
// package. Lines carry their level as a "[level]" prefix in the message;
// lines below the configured minimum level are dropped.
package log

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

var DefaultLogger *log.Logger
var defaultFilter *logFilter

type Level string

const (
	LDebug = Level("debug")
	LInfo  = Level("info")
	LWarn  = Level("warn")
	LError = Level("error")
	LFatal = Level("fatal")
)

func init() {
	defaultFilter = &logFilter{
		writer:   os.Stderr,
		levels:   []Level{LDebug, LInfo, LWarn, LError, LFatal},
		minLevel: LInfo,
	}
	defaultFilter.init()
	DefaultLogger = log.New(defaultFilter, "", 0)
}

type logFilter struct {
	writer    io.Writer
	badLevels map[Level]struct{}
	minLevel  Level
	levels    []Level
}

func (f *logFilter) SetMinLevel(lvl Level) {
	f.minLevel = lvl
	f.init()
}

func (f *logFilter) init() {
	badLevels := make(map[Level]struct{})
	for _, level := range f.levels {
		if level == f.minLevel {
			break
		}
		badLevels[level] = struct{}{}
	}
	f.badLevels = badLevels
}

func (f *logFilter) check(line []byte) bool {
	var level Level
	x := bytes.IndexByte(line, '[')
	if x >= 0 {
		y := bytes.IndexByte(line[x:], ']')
		if y >= 0 {
			level = Level(line[x+1 : x+y])
		}
	}

	_, ok := f.badLevels[level]
	return !ok
}

func (f *logFilter) Write(p []byte) (n int, err error) {
	if !f.check(p) {
		return 0, nil
	}
	// The log package guarantees a single line per Write.
	b := bytes.Buffer{}
	fmt.Fprintf(&b, "[%s] ", time.Now().Format(time.RFC3339))
	b.Write(p)

	return f.writer.Write(b.Bytes())
}

func SetMinLevel(lvl Level) {
	defaultFilter.SetMinLevel(lvl)
}

func Println(v ...interface{}) {
	DefaultLogger.Println(v...)
}

func Printf(format string, v ...interface{}) {
	DefaultLogger.Printf(format, v...)
}

func Fatal(v ...interface{}) {
	DefaultLogger.Fatal(v...)
}

func Fatalf(format string, v ...interface{}) {
	DefaultLogger.Fatalf(format, v...)
}
