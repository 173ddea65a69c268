package ippclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	goipp "github.com/OpenPrinting/goipp"
	lru "github.com/hashicorp/golang-lru/v2"

	"printerkit/internal/model"
	"printerkit/internal/state"
)

func testClient(t *testing.T, handler func(req *goipp.Message, w http.ResponseWriter)) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := &goipp.Message{}
		if err := req.Decode(r.Body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		handler(req, w)
	}))
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse test server url: %v", err)
	}
	port, _ := strconv.Atoi(u.Port())
	cache, _ := lru.New[string, string](8)
	return &Client{Host: u.Hostname(), Port: port, uris: cache}
}

func writeResponse(w http.ResponseWriter, resp *goipp.Message) {
	body, err := resp.EncodeBytes()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", goipp.ContentType)
	w.Write(body)
}

// okResponse builds the response skeleton group-wise: goipp encodes from
// Groups when any are present, so every group including the operation one
// goes through the same path.
func okResponse(reqID uint32) *goipp.Message {
	resp := goipp.NewResponse(goipp.DefaultVersion, goipp.StatusOk, reqID)
	op := goipp.Attributes{}
	op.Add(goipp.MakeAttribute("attributes-charset", goipp.TagCharset, goipp.String("utf-8")))
	op.Add(goipp.MakeAttribute("attributes-natural-language", goipp.TagLanguage, goipp.String("en-US")))
	resp.Groups = append(resp.Groups, goipp.Group{Tag: goipp.TagOperationGroup, Attrs: op})
	return resp
}

func TestPrintersMapsStateAndReasons(t *testing.T) {
	client := testClient(t, func(req *goipp.Message, w http.ResponseWriter) {
		if goipp.Op(req.Code) != goipp.OpCupsGetPrinters {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		resp := okResponse(req.RequestID)

		busy := goipp.Attributes{}
		busy.Add(goipp.MakeAttribute("printer-name", goipp.TagName, goipp.String("lab-laser")))
		busy.Add(goipp.MakeAttribute("printer-state", goipp.TagEnum, goipp.Integer(4)))
		busy.Add(goipp.MakeAttribute("printer-state-reasons", goipp.TagKeyword, goipp.String("none")))
		busy.Add(goipp.MakeAttribute("printer-uri-supported", goipp.TagURI, goipp.String("ipp://srv/printers/lab-laser")))
		resp.Groups = append(resp.Groups, goipp.Group{Tag: goipp.TagPrinterGroup, Attrs: busy})

		gone := goipp.Attributes{}
		gone.Add(goipp.MakeAttribute("printer-name", goipp.TagName, goipp.String("dusty-inkjet")))
		gone.Add(goipp.MakeAttribute("printer-state", goipp.TagEnum, goipp.Integer(3)))
		gone.Add(goipp.MakeAttr("printer-state-reasons", goipp.TagKeyword,
			goipp.String("offline-report"), goipp.String("toner-low")))
		resp.Groups = append(resp.Groups, goipp.Group{Tag: goipp.TagPrinterGroup, Attrs: gone})

		writeResponse(w, resp)
	})

	printers, err := client.Printers(context.Background())
	if err != nil {
		t.Fatalf("Printers: %v", err)
	}
	if len(printers) != 2 {
		t.Fatalf("got %d printers, want 2", len(printers))
	}
	if printers[0].State != model.PrinterPrinting {
		t.Errorf("busy printer state = %v, want PRINTING", printers[0].State)
	}
	if len(printers[0].StateReasons) != 0 {
		t.Errorf("reasons %v, want none filtered out", printers[0].StateReasons)
	}
	if printers[1].State != model.PrinterOffline {
		t.Errorf("offline-report printer state = %v, want OFFLINE", printers[1].State)
	}

	// enumeration should have primed the URI cache
	if got := client.PrinterURI("Lab-Laser"); got != "ipp://srv/printers/lab-laser" {
		t.Errorf("PrinterURI = %q, want advertised uri", got)
	}
}

func TestJobsMapsStates(t *testing.T) {
	client := testClient(t, func(req *goipp.Message, w http.ResponseWriter) {
		resp := okResponse(req.RequestID)
		for i, st := range []int{3, 4, 5, 7, 9} {
			attrs := goipp.Attributes{}
			attrs.Add(goipp.MakeAttribute("job-id", goipp.TagInteger, goipp.Integer(100+i)))
			attrs.Add(goipp.MakeAttribute("job-name", goipp.TagName, goipp.String("doc")))
			attrs.Add(goipp.MakeAttribute("job-state", goipp.TagEnum, goipp.Integer(st)))
			attrs.Add(goipp.MakeAttribute("time-at-creation", goipp.TagInteger, goipp.Integer(1700000000+i)))
			resp.Groups = append(resp.Groups, goipp.Group{Tag: goipp.TagJobGroup, Attrs: attrs})
		}
		writeResponse(w, resp)
	})

	jobs, err := client.Jobs(context.Background(), "lab-laser")
	if err != nil {
		t.Fatalf("Jobs: %v", err)
	}
	want := []model.PrinterJobState{
		model.JobPending, model.JobPaused, model.JobProcessing,
		model.JobCancelled, model.JobCompleted,
	}
	if len(jobs) != len(want) {
		t.Fatalf("got %d jobs, want %d", len(jobs), len(want))
	}
	for i, j := range jobs {
		if j.State != want[i] {
			t.Errorf("job %d state = %v, want %v", j.ID, j.State, want[i])
		}
		if j.PrinterName != "lab-laser" {
			t.Errorf("job %d printer = %q", j.ID, j.PrinterName)
		}
	}
}

func TestPrintJobReturnsAssignedID(t *testing.T) {
	var gotFormat string
	client := testClient(t, func(req *goipp.Message, w http.ResponseWriter) {
		for _, attr := range req.Operation {
			if attr.Name == "document-format" {
				gotFormat = attr.Values[0].V.String()
			}
		}
		resp := okResponse(req.RequestID)
		job := goipp.Attributes{}
		job.Add(goipp.MakeAttribute("job-id", goipp.TagInteger, goipp.Integer(777)))
		job.Add(goipp.MakeAttribute("job-state", goipp.TagEnum, goipp.Integer(3)))
		resp.Groups = append(resp.Groups, goipp.Group{Tag: goipp.TagJobGroup, Attrs: job})
		writeResponse(w, resp)
	})

	id, err := client.PrintJob(context.Background(), "lab-laser", "report", "", strings.NewReader("payload"))
	if err != nil {
		t.Fatalf("PrintJob: %v", err)
	}
	if id != 777 {
		t.Errorf("job id = %d, want 777", id)
	}
	if gotFormat != "application/octet-stream" {
		t.Errorf("document-format = %q, want octet-stream default", gotFormat)
	}
}

func TestControlJobOperationMapping(t *testing.T) {
	var gotOp goipp.Op
	client := testClient(t, func(req *goipp.Message, w http.ResponseWriter) {
		gotOp = goipp.Op(req.Code)
		writeResponse(w, okResponse(req.RequestID))
	})

	cases := []struct {
		cmd  state.Command
		want goipp.Op
	}{
		{state.CommandPause, goipp.OpHoldJob},
		{state.CommandResume, goipp.OpReleaseJob},
		{state.CommandRestart, goipp.OpRestartJob},
		{state.CommandDelete, goipp.OpCancelJob},
	}
	for _, tc := range cases {
		if err := client.ControlJob(context.Background(), "lab-laser", 5, tc.cmd); err != nil {
			t.Fatalf("ControlJob(%d): %v", tc.cmd, err)
		}
		if gotOp != tc.want {
			t.Errorf("command %d sent op %v, want %v", tc.cmd, gotOp, tc.want)
		}
	}
}

func TestServerErrorStatusSurfaces(t *testing.T) {
	client := testClient(t, func(req *goipp.Message, w http.ResponseWriter) {
		resp := goipp.NewResponse(goipp.DefaultVersion, goipp.StatusErrorNotFound, req.RequestID)
		resp.Operation.Add(goipp.MakeAttribute("attributes-charset", goipp.TagCharset, goipp.String("utf-8")))
		resp.Operation.Add(goipp.MakeAttribute("attributes-natural-language", goipp.TagLanguage, goipp.String("en-US")))
		writeResponse(w, resp)
	})

	if _, err := client.Jobs(context.Background(), "missing"); err == nil {
		t.Fatal("expected error from not-found status")
	}
}

func TestMediaSizeMM(t *testing.T) {
	cases := []struct {
		in   string
		w, h float64
		ok   bool
	}{
		{"iso_a4_210x297mm", 210, 297, true},
		{"na_letter_8.5x11in", 215.9, 279.4, true},
		{"custom_min_10x10mm", 10, 10, true},
		{"stationery", 0, 0, false},
		{"iso_a4_210x297", 0, 0, false},
	}
	for _, tc := range cases {
		w, h, ok := MediaSizeMM(tc.in)
		if ok != tc.ok {
			t.Errorf("%q: ok = %v, want %v", tc.in, ok, tc.ok)
			continue
		}
		if !ok {
			continue
		}
		if diff := w - tc.w; diff > 0.01 || diff < -0.01 {
			t.Errorf("%q: width %v, want %v", tc.in, w, tc.w)
		}
		if diff := h - tc.h; diff > 0.01 || diff < -0.01 {
			t.Errorf("%q: height %v, want %v", tc.in, h, tc.h)
		}
	}
}
