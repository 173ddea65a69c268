// Package printerkit is a cross-platform veneer over the host's printing
// subsystem: printer and job enumeration with normalized states, device
// capability queries, raw payload submission and image rasterization. On
// windows it drives the native spooler and GDI; elsewhere it speaks IPP to a
// CUPS endpoint.
package printerkit

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"printerkit/internal/config"
	"printerkit/internal/discovery"
	"printerkit/internal/history"
	"printerkit/internal/jobs"
	"printerkit/internal/logging"
	"printerkit/internal/model"
	"printerkit/internal/platform"
	"printerkit/internal/printerr"
	"printerkit/internal/raster"
	"printerkit/internal/snmpquery"
	"printerkit/internal/state"
)

// Re-exported domain types. All state fields carry the canonical enums; raw
// OS status words travel alongside for callers that need them.
type (
	Printer           = model.Printer
	PrinterJob        = model.PrinterJob
	PrinterState      = model.PrinterState
	PrinterJobState   = model.PrinterJobState
	DeviceCaps        = model.DeviceCaps
	JobOptions        = model.JobOptions
	ImagePrintRequest = model.ImagePrintRequest
	SupplyStatus      = model.SupplyStatus
	NetworkPrinter    = model.NetworkPrinter
)

const (
	PrinterReady    = model.PrinterReady
	PrinterPrinting = model.PrinterPrinting
	PrinterPaused   = model.PrinterPaused
	PrinterOffline  = model.PrinterOffline
	PrinterUnknown  = model.PrinterUnknown

	JobPending    = model.JobPending
	JobProcessing = model.JobProcessing
	JobPaused     = model.JobPaused
	JobCancelled  = model.JobCancelled
	JobCompleted  = model.JobCompleted
	JobUnknown    = model.JobUnknown
)

// Kit is the top-level handle. The zero value is not usable; construct with
// New or Default.
type Kit struct {
	cfg     config.Config
	actions platform.Actions

	historyOnce sync.Once
	ledger      *history.Store
}

// New builds a Kit from an explicit configuration.
func New(cfg config.Config) *Kit {
	logging.Configure(cfg.ErrorLogPath, cfg.PageLogPath, cfg.MaxLogSize)
	return &Kit{cfg: cfg, actions: platform.Current(cfg)}
}

// Default builds a Kit from the environment.
func Default() *Kit {
	return New(config.Load())
}

// GetPrinters enumerates every destination known to the host subsystem.
func (k *Kit) GetPrinters(ctx context.Context) ([]Printer, error) {
	return k.actions.Printers(ctx)
}

// GetPrinterByName returns the printer whose display or system name matches,
// case-insensitively. A miss is an invalid-input error.
func (k *Kit) GetPrinterByName(ctx context.Context, name string) (Printer, error) {
	printers, err := k.actions.Printers(ctx)
	if err != nil {
		return Printer{}, err
	}
	for _, p := range printers {
		if strings.EqualFold(p.Name, name) || strings.EqualFold(p.SystemName, name) {
			return p, nil
		}
	}
	return Printer{}, printerr.InvalidInput("get-printer-by-name",
		&unknownPrinterError{name: name})
}

// GetDefaultPrinter returns the host default destination; ok is false when no
// default is configured.
func (k *Kit) GetDefaultPrinter(ctx context.Context) (Printer, bool, error) {
	name, err := k.actions.DefaultPrinterName(ctx)
	if err != nil {
		return Printer{}, false, err
	}
	if strings.TrimSpace(name) == "" {
		return Printer{}, false, nil
	}
	p, err := k.GetPrinterByName(ctx, name)
	if err != nil {
		if IsInvalidInput(err) {
			return Printer{}, false, nil
		}
		return Printer{}, false, err
	}
	return p, true, nil
}

// GetPrinterCaps queries the device capability snapshot. Margins are derived
// by exact subtraction; a device reporting a printable area larger than its
// page yields the computed caps together with an invalid-input error.
func (k *Kit) GetPrinterCaps(ctx context.Context, printer string) (DeviceCaps, error) {
	return k.actions.DeviceCaps(ctx, printer)
}

// Print submits an opaque payload to the named printer and returns the
// spooler job id. Recognized option properties: "copies" and
// "document-format".
func (k *Kit) Print(ctx context.Context, printer string, payload []byte, opts JobOptions) (uint64, error) {
	jobID, err := k.actions.SubmitRaw(ctx, printer, payload, opts.Name, opts.Properties)
	if err != nil {
		logging.Errorf("print %s: %v", printer, err)
		return 0, err
	}
	k.record(ctx, printer, jobID, opts.Name, "raw", int64(len(payload)), 1)
	return jobID, nil
}

// PrintFile reads a file and submits its bytes. The job name defaults to the
// file's base name.
func (k *Kit) PrintFile(ctx context.Context, printer, path string, opts JobOptions) (uint64, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return 0, printerr.InvalidInput("read-print-file", err)
	}
	if strings.TrimSpace(opts.Name) == "" {
		opts.Name = filepath.Base(path)
	}
	jobID, err := k.actions.SubmitRaw(ctx, printer, payload, opts.Name, opts.Properties)
	if err != nil {
		logging.Errorf("print-file %s: %v", printer, err)
		return 0, err
	}
	k.record(ctx, printer, jobID, opts.Name, "file", int64(len(payload)), 1)
	return jobID, nil
}

// PrintImage rasterizes one bitmap onto the requested number of pages,
// horizontally centered and top-aligned, and returns the job id assigned at
// document start. A zero PageCount submits an empty document.
func (k *Kit) PrintImage(ctx context.Context, printer string, img image.Image, req ImagePrintRequest) (uint64, error) {
	jobID, err := k.actions.PrintImage(ctx, printer, img, raster.Request{
		JobName:   req.JobName,
		PageCount: req.PageCount,
		WidthMM:   req.WidthMM,
		HeightMM:  req.HeightMM,
	})
	if err != nil {
		logging.Errorf("print-image %s: %v", printer, err)
		return 0, err
	}
	k.record(ctx, printer, jobID, req.JobName, "image", 0, int(req.PageCount))
	return jobID, nil
}

// GetPrinterJobs lists the queue of one printer, oldest first. With
// activeOnly set, completed and cancelled jobs are filtered out.
func (k *Kit) GetPrinterJobs(ctx context.Context, printer string, activeOnly bool) ([]PrinterJob, error) {
	list, err := k.actions.Jobs(ctx, printer)
	if err != nil {
		return nil, err
	}
	list = jobs.Filter(list, activeOnly)
	jobs.SortByCreated(list)
	return list, nil
}

// SetJobState drives one queued job toward the target state. Only PAUSED,
// PENDING, PROCESSING and CANCELLED are reachable; any other target fails
// with an unsupported-transition error.
func (k *Kit) SetJobState(ctx context.Context, printer string, jobID uint64, target PrinterJobState) error {
	return k.actions.SetJobState(ctx, printer, jobID, target)
}

// GetPrinterSupplies reads marker-supply levels from the device over SNMP.
// target may be a host, host:port, or the printer's URI.
func (k *Kit) GetPrinterSupplies(ctx context.Context, target string) (SupplyStatus, error) {
	q := snmpquery.Querier{Community: k.cfg.SNMPCommunity, Timeout: k.cfg.SNMPTimeout}
	return q.Supplies(ctx, target)
}

// DiscoverNetworkPrinters browses mDNS for printers advertising IPP, LPD or
// raw-socket service.
func (k *Kit) DiscoverNetworkPrinters(ctx context.Context) ([]NetworkPrinter, error) {
	return discovery.Browse(ctx, k.cfg.DiscoveryTimeout)
}

// History returns the submission ledger, opening it on first use. Nil when no
// ledger path is configured.
func (k *Kit) History(ctx context.Context) *history.Store {
	k.historyOnce.Do(func() {
		if k.cfg.HistoryDBPath == "" {
			return
		}
		s, err := history.Open(ctx, k.cfg.HistoryDBPath)
		if err != nil {
			logging.Errorf("open history ledger: %v", err)
			return
		}
		s.MaxRows = k.cfg.HistoryMaxRows
		k.ledger = s
	})
	return k.ledger
}

// Close releases the handles the Kit opened lazily.
func (k *Kit) Close() error {
	if k.ledger != nil {
		return k.ledger.Close()
	}
	return nil
}

func (k *Kit) record(ctx context.Context, printer string, jobID uint64, jobName, kind string, size int64, pages int) {
	logging.Page(logging.PageLine(printer, jobID, jobName, kind, size))
	ledger := k.History(ctx)
	if ledger == nil {
		return
	}
	if _, err := ledger.RecordSubmission(ctx, history.Submission{
		Printer: printer,
		JobID:   jobID,
		JobName: jobName,
		Kind:    kind,
		Bytes:   size,
		Pages:   pages,
	}); err != nil {
		logging.Errorf("record submission: %v", err)
	}
}

// NormalizePrinterState maps a raw spooler status word plus its reason text
// onto the canonical printer state.
func NormalizePrinterState(raw uint64, reasons string) PrinterState {
	return state.PrinterStateFromRaw(raw, reasons)
}

// NormalizeJobState maps a raw spooler job status word onto the canonical job
// state.
func NormalizeJobState(raw uint64) PrinterJobState {
	return state.JobStateFromRaw(raw)
}

type unknownPrinterError struct {
	name string
}

func (e *unknownPrinterError) Error() string {
	return "no printer named " + e.name
}
