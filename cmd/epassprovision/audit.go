package main

import (
	"log/slog"

	"github.com/jborg/epass2003/internal/clicommon"
	"github.com/jborg/epass2003/pkg/epass2003"
)

// recordAudit best-effort logs one completed operation; a missing or
// unconfigured audit database is not an error for a provisioning run.
func recordAudit(s *clicommon.Session, operation, fid string, sw uint16, opErr error) {
	path := auditPath(s)
	if path == "" {
		return
	}
	log, err := epass2003.OpenAuditLog(path)
	if err != nil {
		slog.Warn("audit log unavailable", "error", err)
		return
	}
	defer log.Close()
	if err := log.Record(operation, fid, sw, opErr); err != nil {
		slog.Warn("audit record failed", "error", err)
	}
}
