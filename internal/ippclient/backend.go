package ippclient

import (
	"bytes"
	"context"
	"errors"
	"sync"
)

// DocumentBackend feeds rendered pages into a created IPP job: Create-Job
// first so the id exists before any page data, then one Send-Document per
// page, and a final empty last-document to close the job.
type DocumentBackend struct {
	Client *Client

	mu       sync.Mutex
	printers map[uint64]string
}

func (b *DocumentBackend) StartDocument(printer, jobName string) (uint64, error) {
	if b.Client == nil {
		return 0, errors.New("no ipp client configured")
	}
	id, err := b.Client.CreateJob(context.Background(), printer, jobName)
	if err != nil {
		return 0, err
	}
	b.mu.Lock()
	if b.printers == nil {
		b.printers = make(map[uint64]string)
	}
	b.printers[id] = printer
	b.mu.Unlock()
	return id, nil
}

func (b *DocumentBackend) WritePage(jobID uint64, pagePNG []byte, last bool) error {
	printer, err := b.printerFor(jobID)
	if err != nil {
		return err
	}
	return b.Client.SendDocument(context.Background(), printer, jobID, "image/png", bytes.NewReader(pagePNG), last)
}

func (b *DocumentBackend) EndDocument(jobID uint64) error {
	printer, err := b.printerFor(jobID)
	if err != nil {
		return err
	}
	b.mu.Lock()
	delete(b.printers, jobID)
	b.mu.Unlock()
	return b.Client.SendDocument(context.Background(), printer, jobID, "image/png", nil, true)
}

func (b *DocumentBackend) printerFor(jobID uint64) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	printer, ok := b.printers[jobID]
	if !ok {
		return "", errors.New("unknown job id")
	}
	return printer, nil
}
