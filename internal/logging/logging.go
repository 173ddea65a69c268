// Package logging routes library diagnostics to two rotating logs: an error
// log for failures and a page log with one line per submitted job.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

type manager struct {
	errorLog *RotatingFile
	pageLog  *RotatingFile
}

var (
	globalMu sync.RWMutex
	global   = manager{}
)

// Configure points the global logs at the given paths. "stderr", "stdout",
// "none" and the empty string select the matching non-file targets.
func Configure(errorPath, pagePath string, maxSize int64) {
	globalMu.Lock()
	defer globalMu.Unlock()
	global.errorLog = NewRotatingFile(errorPath, maxSize)
	global.pageLog = NewRotatingFile(pagePath, maxSize)
}

func ErrorWriter() io.Writer {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if global.errorLog != nil && global.errorLog.Enabled() {
		return global.errorLog
	}
	return os.Stderr
}

// Errorf appends one timestamped line to the error log.
func Errorf(format string, args ...any) {
	globalMu.RLock()
	logger := global.errorLog
	globalMu.RUnlock()
	if logger == nil || !logger.Enabled() {
		return
	}
	line := fmt.Sprintf("E [%s] %s", time.Now().Format("02/Jan/2006:15:04:05 -0700"), fmt.Sprintf(format, args...))
	_ = logger.WriteLine(line)
}

// Page appends one line to the page log.
func Page(line string) {
	globalMu.RLock()
	logger := global.pageLog
	globalMu.RUnlock()
	if logger != nil {
		_ = logger.WriteLine(line)
	}
}

// PageLine formats the page-log entry for one submitted job: printer, job id,
// job name, kind and payload size, timestamped like the error log.
func PageLine(printer string, jobID uint64, jobName, kind string, size int64) string {
	return fmt.Sprintf("%s %d [%s] %s kind=%s bytes=%d",
		printer, jobID, time.Now().Format("02/Jan/2006:15:04:05 -0700"), jobName, kind, size)
}
