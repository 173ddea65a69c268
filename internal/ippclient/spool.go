package ippclient

import (
	"bytes"
	"context"
	"errors"
	"strings"
)

// SpoolSession adapts the IPP job flow to the page-oriented spool contract:
// the document is created up front, each page ships the buffered payload as
// one Send-Document, and ending the document closes the job.
type SpoolSession struct {
	client  *Client
	printer string
	jobID   uint64
	format  string
	buf     bytes.Buffer
	inPage  bool
	started bool
}

func (c *Client) OpenSpool(printer string) *SpoolSession {
	return &SpoolSession{client: c, printer: printer}
}

func (s *SpoolSession) StartDoc(name, dataType string) (uint64, error) {
	id, err := s.client.CreateJob(context.Background(), s.printer, name)
	if err != nil {
		return 0, err
	}
	s.jobID = id
	s.format = formatForDataType(dataType)
	s.started = true
	return id, nil
}

func (s *SpoolSession) StartPage() error {
	if !s.started {
		return errors.New("no document in progress")
	}
	s.buf.Reset()
	s.inPage = true
	return nil
}

func (s *SpoolSession) Write(p []byte) (int, error) {
	if !s.inPage {
		return 0, errors.New("no page in progress")
	}
	return s.buf.Write(p)
}

func (s *SpoolSession) EndPage() error {
	if !s.inPage {
		return errors.New("no page in progress")
	}
	s.inPage = false
	return s.client.SendDocument(context.Background(), s.printer, s.jobID, s.format, bytes.NewReader(s.buf.Bytes()), false)
}

func (s *SpoolSession) EndDoc() error {
	if !s.started {
		return nil
	}
	s.started = false
	return s.client.SendDocument(context.Background(), s.printer, s.jobID, s.format, nil, true)
}

func (s *SpoolSession) Close() error {
	s.inPage = false
	return nil
}

// formatForDataType maps a spooler datatype onto an IPP document format.
// Anything already shaped like a mime type passes through.
func formatForDataType(dataType string) string {
	dataType = strings.TrimSpace(dataType)
	if strings.Contains(dataType, "/") {
		return dataType
	}
	switch strings.ToUpper(dataType) {
	case "TEXT":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
