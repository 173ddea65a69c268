package printerkit

import "printerkit/internal/printerr"

// Error is the structured error every operation returns on failure. Kind
// tells the caller which pipeline step gave out; Printer names the
// destination when one was in play.
type Error = printerr.Error

type ErrorKind = printerr.Kind

const (
	ErrSessionAcquisition    = printerr.KindSessionAcquisition
	ErrDocumentStart         = printerr.KindDocumentStart
	ErrPageResource          = printerr.KindPageResource
	ErrUnsupportedTransition = printerr.KindUnsupportedTransition
	ErrInvalidInput          = printerr.KindInvalidInput
	ErrUnderlyingCall        = printerr.KindUnderlyingCall
)

func IsSessionAcquisition(err error) bool {
	return printerr.IsKind(err, printerr.KindSessionAcquisition)
}

func IsDocumentStart(err error) bool {
	return printerr.IsKind(err, printerr.KindDocumentStart)
}

func IsPageResource(err error) bool {
	return printerr.IsKind(err, printerr.KindPageResource)
}

func IsUnsupportedTransition(err error) bool {
	return printerr.IsKind(err, printerr.KindUnsupportedTransition)
}

func IsInvalidInput(err error) bool {
	return printerr.IsKind(err, printerr.KindInvalidInput)
}

func IsUnderlyingCall(err error) bool {
	return printerr.IsKind(err, printerr.KindUnderlyingCall)
}
