// Copyright © 2017 Microsoft <wastore@microsoft.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package common

import (
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"runtime"
	"time"
)

const DEFAULT_FILE_PERM = 0666

type ILogger interface {
	ShouldLog(level LogLevel) bool
	Log(level LogLevel, msg string)
	Panic(err error)
}

type ILoggerCloser interface {
	ILogger
	CloseLog()
}

////////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

type sessionLogger struct {
	minimumLevelToLog LogLevel       // messages less severe than this are dropped
	file              io.WriteCloser // possibly nil when logging to an externally-owned writer
	logger            *log.Logger
	sanitizer         LogSanitizer
}

// NewSessionLogger makes a logger that writes one log file per client session
// under logFileFolder.
func NewSessionLogger(sessionName string, minimumLevelToLog LogLevel, logFileFolder string) ILoggerCloser {
	if minimumLevelToLog == LogNone {
		return NewNullLogger()
	}
	file, err := os.OpenFile(path.Join(logFileFolder, sessionName+".log"),
		os.O_RDWR|os.O_CREATE|os.O_APPEND, DEFAULT_FILE_PERM)
	PanicIfErr(err)
	flags := log.LstdFlags | log.LUTC
	utcMessage := "Log times are in UTC. Local time is " + time.Now().Format("2 Jan 2006 15:04:05")

	lg := &sessionLogger{
		minimumLevelToLog: minimumLevelToLog,
		file:              file,
		logger:            log.New(file, "", flags),
		sanitizer:         NewCloudShareLogSanitizer(),
	}
	lg.logger.Println("Version " + CloudShareVersion)
	lg.logger.Println("OS-Environment ", runtime.GOOS)
	lg.logger.Println("OS-Architecture ", runtime.GOARCH)
	lg.logger.Println(utcMessage)
	return lg
}

// NewWriterLogger logs to a caller-supplied writer. Used by the CLI (stderr)
// and by tests that want to capture output.
func NewWriterLogger(w io.Writer, minimumLevelToLog LogLevel) ILoggerCloser {
	return &sessionLogger{
		minimumLevelToLog: minimumLevelToLog,
		logger:            log.New(w, "", log.LstdFlags|log.LUTC),
		sanitizer:         NewCloudShareLogSanitizer(),
	}
}

func (sl *sessionLogger) ShouldLog(level LogLevel) bool {
	if level == LogNone {
		return false
	}
	return level <= sl.minimumLevelToLog
}

func (sl *sessionLogger) CloseLog() {
	if sl.file == nil {
		return
	}
	sl.logger.Println("Closing Log")
	err := sl.file.Close()
	PanicIfErr(err)
}

func (sl *sessionLogger) Log(loglevel LogLevel, msg string) {
	// ensure all secrets are redacted
	msg = sl.sanitizer.SanitizeLogMessage(msg)
	if sl.ShouldLog(loglevel) {
		prefix := ""
		if loglevel <= LogWarning {
			prefix = fmt.Sprintf("%s: ", loglevel) // so readers can find serious ones, but information ones still look uncluttered without INFO:
		}
		sl.logger.Println(prefix + msg)
	}
}

func (sl *sessionLogger) Panic(err error) {
	sl.logger.Println(err) // We do NOT panic here as the logger for the session can panic
}

////////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

// nullLogger discards everything. Handed out when logging is off, and by
// library entry points that were not given a logger.
type nullLogger struct{}

func NewNullLogger() ILoggerCloser {
	return &nullLogger{}
}

func (*nullLogger) ShouldLog(LogLevel) bool { return false }
func (*nullLogger) Log(LogLevel, string)    {}
func (*nullLogger) Panic(err error)         { panic(err) }
func (*nullLogger) CloseLog()               {}
