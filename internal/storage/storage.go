package storage

import "ammPool/internal/model"

// Storage defines a sink for log records.
type Storage interface {
	PutLogBatch(logs []model.LogRecord) error
}

// EventStorage defines a sink for decoded pool events.
type EventStorage interface {
	PutEventBatch(events []model.TypedEvent) error
}

// ErrorStorage defines a sink for rejected operations.
type ErrorStorage interface {
	PutErrorBatch(errs []model.OperationError) error
}
