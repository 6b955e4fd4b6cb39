package service

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"connsettings/internal/connection"
	"connsettings/internal/loader"
	"connsettings/internal/setting"
)

// ReconcileResult summarizes one keyfile reconciliation
type ReconcileResult struct {
	Added     int `json:"added"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Removed   int `json:"removed"`
	Failed    int `json:"failed"`
}

// keyfileUUID derives a stable UUID for a keyfile that names none
func keyfileUUID(path string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+path)).String()
}

// ReconcileKeyfiles brings the store in line with the keyfiles in dir.
// New files are added, changed files replace their connection, and
// connections whose file is gone are removed. Files that fail to load or
// verify are logged and leave their connection untouched.
func (s *ConnectionService) ReconcileKeyfiles(ctx context.Context, dir string) (*ReconcileResult, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	files, err := loader.LoadDir(dir)
	if err != nil {
		return nil, err
	}

	res := &ReconcileResult{}
	seen := make(map[string]bool, len(files))
	for _, kf := range files {
		seen[kf.Path] = true
		if kf.Err != nil {
			s.logger.Warn("failed to load keyfile", "path", kf.Path, "error", kf.Err)
			res.Failed++
			continue
		}
		changed, added, err := s.reconcileFile(ctx, kf.Path, kf.Connection)
		switch {
		case err != nil:
			s.logger.Warn("failed to reconcile keyfile", "path", kf.Path, "error", err)
			res.Failed++
		case added:
			res.Added++
		case changed:
			res.Updated++
		default:
			res.Unchanged++
		}
	}

	// Remove connections whose keyfile disappeared
	s.mu.RLock()
	var stale []string
	for id, e := range s.conns {
		if e.source != "" && filepath.Dir(e.source) == dir && !seen[e.source] {
			stale = append(stale, id)
		}
	}
	s.mu.RUnlock()
	for _, id := range stale {
		if err := s.Delete(ctx, id); err != nil {
			s.logger.Warn("failed to remove connection", "uuid", id, "error", err)
			res.Failed++
			continue
		}
		res.Removed++
	}

	s.logger.Info("reconciled keyfiles", "dir", dir,
		"added", res.Added, "updated", res.Updated, "removed", res.Removed, "failed", res.Failed)
	return res, nil
}

// reconcileFile adds or updates the connection loaded from path
func (s *ConnectionService) reconcileFile(ctx context.Context, path string, conn *connection.Connection) (changed, added bool, err error) {
	con := conn.ConnectionSetting()
	if con == nil {
		return false, false, &setting.MissingSettingError{Name: setting.ConnectionSettingName}
	}
	if con.UUID == "" {
		con.UUID = keyfileUUID(path)
	}

	s.mu.RLock()
	e, exists := s.conns[con.UUID]
	var current *connection.Connection
	var source string
	if exists {
		current, source = e.conn, e.source
	}
	s.mu.RUnlock()

	if !exists {
		if _, err := s.Add(ctx, conn, path); err != nil {
			return false, false, err
		}
		return true, true, nil
	}
	if source != path {
		return false, false, fmt.Errorf("%w: %s is owned by %q", ErrExists, con.UUID, source)
	}

	if _, err := conn.Normalize(); err != nil {
		return false, false, err
	}
	if err := carrySecrets(current, conn); err != nil {
		return false, false, err
	}
	if current.Compare(conn, setting.CompareExact) {
		return false, false, nil
	}
	w, err := conn.ToWire(setting.SerializeAll)
	if err != nil {
		return false, false, err
	}
	if err := s.ReplaceAndCommit(ctx, con.UUID, w); err != nil {
		return false, false, err
	}
	return true, false, nil
}
