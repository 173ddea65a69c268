package printerr

import (
	"errors"
	"fmt"
)

// Kind identifies which pipeline step a printing operation failed in.
type Kind string

const (
	KindSessionAcquisition    Kind = "session-acquisition-failed"
	KindDocumentStart         Kind = "document-start-failed"
	KindPageResource          Kind = "page-resource-failed"
	KindUnsupportedTransition Kind = "unsupported-transition"
	KindInvalidInput          Kind = "invalid-input"
	KindUnderlyingCall        Kind = "underlying-call-failed"
)

type Error struct {
	Kind    Kind
	Op      string
	Printer string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		if e.Op != "" {
			return e.Op + ": " + string(e.Kind)
		}
		return string(e.Kind)
	}
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func Wrap(kind Kind, op, printer string, err error) error {
	if err == nil {
		err = errors.New(string(kind))
	}
	return &Error{Kind: kind, Op: op, Printer: printer, Err: err}
}

func Session(op, printer string, err error) error {
	return Wrap(KindSessionAcquisition, op, printer, err)
}

func DocumentStart(op, printer string, err error) error {
	return Wrap(KindDocumentStart, op, printer, err)
}

func PageResource(op, printer string, err error) error {
	return Wrap(KindPageResource, op, printer, err)
}

func UnsupportedTransition(op string, err error) error {
	return Wrap(KindUnsupportedTransition, op, "", err)
}

func InvalidInput(op string, err error) error {
	return Wrap(KindInvalidInput, op, "", err)
}

func Underlying(op, printer string, err error) error {
	return Wrap(KindUnderlyingCall, op, printer, err)
}

func IsKind(err error, kind Kind) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Kind == kind
}
