package core

import "errors"

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrReportNotReady    = errors.New("report not ready")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInterviewComplete = errors.New("interview already complete")
	ErrUnknownTopic      = errors.New("unknown topic")
)
