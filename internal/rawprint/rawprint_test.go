package rawprint

import (
	"errors"
	"testing"

	"printerkit/internal/printerr"
)

type fakeSession struct {
	docName  string
	dataType string
	attempts int
	pages    int
	writes   [][]byte
	closed   bool

	failDoc     bool
	failAttempt map[int]bool // StartPage attempt index -> fail
}

var _ Session = (*fakeSession)(nil)

func (s *fakeSession) StartDoc(name, dataType string) (uint64, error) {
	if s.failDoc {
		return 0, errors.New("spooler rejected document")
	}
	s.docName = name
	s.dataType = dataType
	return 99, nil
}

func (s *fakeSession) StartPage() error {
	idx := s.attempts
	s.attempts++
	if s.failAttempt[idx] {
		return errors.New("page begin failed")
	}
	return nil
}

func (s *fakeSession) Write(p []byte) (int, error) {
	buf := make([]byte, len(p))
	copy(buf, p)
	s.writes = append(s.writes, buf)
	return len(p), nil
}

func (s *fakeSession) EndPage() error { s.pages++; return nil }
func (s *fakeSession) EndDoc() error  { return nil }
func (s *fakeSession) Close() error   { s.closed = true; return nil }

func submitTo(s *fakeSession, payload []byte, jobName string, props map[string]string) (uint64, error) {
	return Submit(func() (Session, error) { return s, nil }, "dest", payload, jobName, props)
}

func TestSubmitWritesOnePagePerCopy(t *testing.T) {
	s := &fakeSession{}
	id, err := submitTo(s, []byte("payload"), "report", map[string]string{"copies": "3"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if id != 99 {
		t.Errorf("job id = %d, want 99", id)
	}
	if s.pages != 3 || len(s.writes) != 3 {
		t.Errorf("pages=%d writes=%d, want 3/3", s.pages, len(s.writes))
	}
	if string(s.writes[2]) != "payload" {
		t.Errorf("copy payload = %q", s.writes[2])
	}
	if s.docName != "report" || s.dataType != "RAW" {
		t.Errorf("doc %q type %q, want report/RAW", s.docName, s.dataType)
	}
	if !s.closed {
		t.Error("session left open")
	}
}

func TestSubmitCopiesFallbacks(t *testing.T) {
	cases := []struct {
		copies string
		want   int
	}{
		{"not-a-number", 1},
		{"0", 1},
		{"-2", 1},
		{"2", 2},
	}
	for _, tc := range cases {
		s := &fakeSession{}
		if _, err := submitTo(s, []byte("x"), "j", map[string]string{"copies": tc.copies}); err != nil {
			t.Fatalf("Submit(copies=%q): %v", tc.copies, err)
		}
		if s.pages != tc.want {
			t.Errorf("copies=%q produced %d pages, want %d", tc.copies, s.pages, tc.want)
		}
	}
}

func TestSubmitDocumentFormatProperty(t *testing.T) {
	s := &fakeSession{}
	if _, err := submitTo(s, []byte("x"), "j", map[string]string{"document-format": "TEXT"}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if s.dataType != "TEXT" {
		t.Errorf("data type = %q, want TEXT", s.dataType)
	}
}

func TestSubmitDefaultJobNameIsNonEmpty(t *testing.T) {
	s := &fakeSession{}
	if _, err := submitTo(s, []byte("x"), "  ", nil); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if s.docName == "" {
		t.Error("blank job name not defaulted")
	}
}

func TestSubmitStartDocFailureClosesSession(t *testing.T) {
	s := &fakeSession{failDoc: true}
	_, err := submitTo(s, []byte("x"), "j", nil)
	if err == nil {
		t.Fatal("expected document-start failure")
	}
	if !printerr.IsKind(err, printerr.KindDocumentStart) {
		t.Errorf("error kind: %v", err)
	}
	if !s.closed {
		t.Error("session not released after failed start")
	}
	if s.pages != 0 {
		t.Errorf("pages = %d after failed start", s.pages)
	}
}

func TestSubmitOpenFailure(t *testing.T) {
	open := func() (Session, error) { return nil, errors.New("no such printer") }
	_, err := Submit(open, "dest", []byte("x"), "j", nil)
	if err == nil {
		t.Fatal("expected session-acquisition failure")
	}
	if !printerr.IsKind(err, printerr.KindSessionAcquisition) {
		t.Errorf("error kind: %v", err)
	}
}

func TestSubmitFailedCopyDoesNotAbortRest(t *testing.T) {
	s := &fakeSession{failAttempt: map[int]bool{1: true}}
	id, err := submitTo(s, []byte("x"), "j", map[string]string{"copies": "3"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if id != 99 {
		t.Errorf("job id = %d", id)
	}
	// second copy skipped, first and third written
	if len(s.writes) != 2 {
		t.Errorf("writes = %d, want 2", len(s.writes))
	}
	if s.attempts != 3 {
		t.Errorf("attempts = %d, want 3", s.attempts)
	}
}
