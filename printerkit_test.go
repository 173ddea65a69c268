package printerkit

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"printerkit/internal/config"
	"printerkit/internal/model"
	"printerkit/internal/raster"
)

type fakeActions struct {
	printers []model.Printer
	jobs     []model.PrinterJob
	defName  string

	lastPayload []byte
	lastName    string
	lastProps   map[string]string
	lastTarget  model.PrinterJobState
}

func (f *fakeActions) Printers(ctx context.Context) ([]model.Printer, error) {
	return f.printers, nil
}

func (f *fakeActions) DefaultPrinterName(ctx context.Context) (string, error) {
	return f.defName, nil
}

func (f *fakeActions) Jobs(ctx context.Context, printer string) ([]model.PrinterJob, error) {
	return f.jobs, nil
}

func (f *fakeActions) SetJobState(ctx context.Context, printer string, jobID uint64, target model.PrinterJobState) error {
	f.lastTarget = target
	return nil
}

func (f *fakeActions) SubmitRaw(ctx context.Context, printer string, payload []byte, jobName string, props map[string]string) (uint64, error) {
	f.lastPayload = payload
	f.lastName = jobName
	f.lastProps = props
	return 11, nil
}

func (f *fakeActions) PrintImage(ctx context.Context, printer string, img image.Image, req raster.Request) (uint64, error) {
	return 12, nil
}

func (f *fakeActions) DeviceCaps(ctx context.Context, printer string) (model.DeviceCaps, error) {
	return model.DeviceCaps{}, errors.New("not wired in this fake")
}

func testKit(f *fakeActions) *Kit {
	return &Kit{cfg: config.Config{}, actions: f}
}

func TestGetPrinterByName(t *testing.T) {
	kit := testKit(&fakeActions{printers: []model.Printer{
		{Name: "Office Laser", SystemName: "office-laser"},
		{Name: "Inkjet", SystemName: "inkjet"},
	}})
	ctx := context.Background()

	p, err := kit.GetPrinterByName(ctx, "office laser")
	if err != nil {
		t.Fatalf("display-name lookup: %v", err)
	}
	if p.SystemName != "office-laser" {
		t.Errorf("got %q", p.SystemName)
	}

	if _, err := kit.GetPrinterByName(ctx, "OFFICE-LASER"); err != nil {
		t.Fatalf("system-name lookup: %v", err)
	}

	_, err = kit.GetPrinterByName(ctx, "plotter")
	if err == nil {
		t.Fatal("unknown printer accepted")
	}
	if !IsInvalidInput(err) {
		t.Errorf("error kind: %v", err)
	}
}

func TestGetDefaultPrinter(t *testing.T) {
	ctx := context.Background()

	kit := testKit(&fakeActions{
		printers: []model.Printer{{Name: "Office Laser"}},
		defName:  "Office Laser",
	})
	p, ok, err := kit.GetDefaultPrinter(ctx)
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if p.Name != "Office Laser" {
		t.Errorf("default = %q", p.Name)
	}

	// no default configured
	kit = testKit(&fakeActions{printers: []model.Printer{{Name: "Office Laser"}}})
	if _, ok, err := kit.GetDefaultPrinter(ctx); err != nil || ok {
		t.Errorf("empty default: ok=%v err=%v", ok, err)
	}

	// default names a printer that no longer enumerates
	kit = testKit(&fakeActions{defName: "gone"})
	if _, ok, err := kit.GetDefaultPrinter(ctx); err != nil || ok {
		t.Errorf("stale default: ok=%v err=%v", ok, err)
	}
}

func TestPrintFileUsesBaseName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "invoice.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}

	fake := &fakeActions{}
	kit := testKit(fake)
	id, err := kit.PrintFile(context.Background(), "p", path, JobOptions{})
	if err != nil {
		t.Fatalf("PrintFile: %v", err)
	}
	if id != 11 {
		t.Errorf("job id = %d", id)
	}
	if fake.lastName != "invoice.pdf" {
		t.Errorf("job name = %q, want file base name", fake.lastName)
	}
	if string(fake.lastPayload) != "%PDF-1.4" {
		t.Errorf("payload = %q", fake.lastPayload)
	}
}

func TestPrintFileMissingFile(t *testing.T) {
	kit := testKit(&fakeActions{})
	_, err := kit.PrintFile(context.Background(), "p", filepath.Join(t.TempDir(), "absent"), JobOptions{})
	if err == nil {
		t.Fatal("missing file accepted")
	}
	if !IsInvalidInput(err) {
		t.Errorf("error kind: %v", err)
	}
}

func TestGetPrinterJobsFiltersAndSorts(t *testing.T) {
	fake := &fakeActions{jobs: []model.PrinterJob{
		{ID: 3, State: model.JobCompleted},
		{ID: 1, State: model.JobPending},
		{ID: 2, State: model.JobProcessing},
	}}
	kit := testKit(fake)

	got, err := kit.GetPrinterJobs(context.Background(), "p", true)
	if err != nil {
		t.Fatalf("GetPrinterJobs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("kept %d jobs, want 2", len(got))
	}
	if got[0].ID != 1 || got[1].ID != 2 {
		t.Errorf("order = %d,%d", got[0].ID, got[1].ID)
	}
}

func TestNormalizeReExports(t *testing.T) {
	if NormalizePrinterState(0x400, "") != PrinterPrinting {
		t.Error("printing bit not normalized")
	}
	if NormalizePrinterState(0x400, "offline") != PrinterOffline {
		t.Error("offline reason not honored")
	}
	if NormalizeJobState(8192) != JobProcessing {
		t.Error("job state not normalized")
	}
}
