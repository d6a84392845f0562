package store

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/warp/shift-payroll/records"
)

// =============================================================================
// JSON FILE PERSISTENCE
// =============================================================================

// SaveFile dumps the whole state of s to path as one JSON document. The
// document is fully built in memory before the file is opened. There is no
// rename or journal: a failed write can leave a truncated file behind.
func SaveFile(ctx context.Context, s records.Store, path string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		return &records.PersistenceError{Op: records.ErrSaveFailed, Path: path, Err: err}
	}
	data, err := records.EncodeSnapshot(snap)
	if err != nil {
		return &records.PersistenceError{Op: records.ErrSaveFailed, Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		logger.Warn("could not write data file", zap.String("path", path), zap.Error(err))
		return &records.PersistenceError{Op: records.ErrSaveFailed, Path: path, Err: err}
	}

	logger.Info("data saved",
		zap.String("path", path),
		zap.Int("next_employee_id", snap.NextEmployeeID),
		zap.Int("employees", len(snap.Employees)),
		zap.Int("worklogs", len(snap.WorkLogs)))
	return nil
}

// LoadFile replaces the state of s with the document at path. A missing
// file or a document that is not a JSON object fails and leaves s exactly as
// it was. Field-level problems inside a valid document are absorbed (see
// records.DecodeSnapshot).
func LoadFile(ctx context.Context, s records.Store, path string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("could not read data file", zap.String("path", path), zap.Error(err))
		return &records.PersistenceError{Op: records.ErrLoadFailed, Path: path, Err: err}
	}

	snap, err := records.DecodeSnapshot(data)
	if err != nil {
		logger.Warn("data file is malformed", zap.String("path", path), zap.Error(err))
		return &records.PersistenceError{Op: records.ErrLoadFailed, Path: path, Err: err}
	}

	if err := s.Restore(ctx, snap); err != nil {
		return &records.PersistenceError{Op: records.ErrLoadFailed, Path: path, Err: err}
	}

	logger.Info("data loaded",
		zap.String("path", path),
		zap.Int("next_employee_id", snap.GuardedNextID()),
		zap.Int("employees", len(snap.Employees)),
		zap.Int("worklogs", len(snap.WorkLogs)))
	return nil
}

// Save writes the store to path.
func (m *Memory) Save(path string) error {
	return SaveFile(context.Background(), m, path, m.logger)
}

// Load replaces the store with the contents of path.
func (m *Memory) Load(path string) error {
	return LoadFile(context.Background(), m, path, m.logger)
}
