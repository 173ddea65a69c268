// Package rawprint submits an opaque byte payload to a device as one
// document of one or more copies, independent of which spooler provides the
// session.
package rawprint

import (
	"strconv"
	"strings"
	"time"

	"printerkit/internal/printerr"
)

// Session is a spool session against one device. Implementations hold the
// underlying OS handle; Close releases it.
type Session interface {
	StartDoc(name, dataType string) (uint64, error)
	StartPage() error
	Write(p []byte) (int, error)
	EndPage() error
	EndDoc() error
	Close() error
}

const defaultDataType = "RAW"

// Submit opens a session, starts a document and writes the payload once per
// copy. Each copy is best-effort: a failed page begin or write does not
// abort the remaining copies. The session is released on every exit path,
// including a failed document start.
func Submit(open func() (Session, error), printer string, payload []byte, jobName string, props map[string]string) (uint64, error) {
	sess, err := open()
	if err != nil {
		return 0, printerr.Session("open-spool-session", printer, err)
	}
	defer sess.Close()

	copies := 1
	dataType := defaultDataType
	for key, value := range props {
		switch key {
		case "copies":
			if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && n > 0 {
				copies = n
			}
		case "document-format":
			if strings.TrimSpace(value) != "" {
				dataType = value
			}
		}
	}

	name := strings.TrimSpace(jobName)
	if name == "" {
		name = strconv.FormatInt(time.Now().Unix(), 10)
	}

	jobID, err := sess.StartDoc(name, dataType)
	if err != nil {
		return 0, printerr.DocumentStart("start-doc", printer, err)
	}

	for i := 0; i < copies; i++ {
		if err := sess.StartPage(); err != nil {
			continue
		}
		_, _ = sess.Write(payload)
		_ = sess.EndPage()
	}

	_ = sess.EndDoc()
	return jobID, nil
}
