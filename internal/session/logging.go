package session

import (
	"context"

	"go.uber.org/zap"
)

// StoreOption configures a Store instance.
type StoreOption func(*Store)

// OperationLogger records session events emitted by Store operations.
type OperationLogger interface {
	LogOperation(ctx context.Context, entry OperationLog)
}

// OperationLog describes a session or cart operation.
type OperationLog struct {
	Operation string
	UserID    string
	ProductID string
	ItemID    string
	Quantity  int
	Status    string
	Error     error
}

// WithOperationLogger wires a logger that receives callbacks for every operation.
func WithOperationLogger(logger OperationLogger) StoreOption {
	return func(store *Store) {
		store.logger = logger
	}
}

// ZapOperationLogger adapts OperationLogger to a zap logger.
type ZapOperationLogger struct {
	logger *zap.Logger
}

// NewZapOperationLogger wraps logger. A nil logger discards entries.
func NewZapOperationLogger(logger *zap.Logger) *ZapOperationLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapOperationLogger{logger: logger}
}

// LogOperation writes entry as a structured log line.
func (adapter *ZapOperationLogger) LogOperation(_ context.Context, entry OperationLog) {
	fields := []zap.Field{
		zap.String("operation", entry.Operation),
		zap.String("status", entry.Status),
	}
	if entry.UserID != "" {
		fields = append(fields, zap.String("user_id", entry.UserID))
	}
	if entry.ProductID != "" {
		fields = append(fields, zap.String("product_id", entry.ProductID))
	}
	if entry.ItemID != "" {
		fields = append(fields, zap.String("item_id", entry.ItemID))
	}
	if entry.Quantity != 0 {
		fields = append(fields, zap.Int("quantity", entry.Quantity))
	}
	if entry.Error != nil {
		adapter.logger.Warn("session operation failed", append(fields, zap.Error(entry.Error))...)
		return
	}
	adapter.logger.Debug("session operation", fields...)
}
