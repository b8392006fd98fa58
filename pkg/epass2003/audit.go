package epass2003

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// AuditEntry records one completed Driver/FileOps/KeyOps operation for
// compliance review — which proprietary command ran against which file/key
// id and what the card returned. A PKI card driver operating in a regulated
// environment needs an operation trail independent of the transport-level
// SM framing; this uses the same gorm+sqlite persistence pattern as other
// local audit stores.
type AuditEntry struct {
	ID        string `gorm:"primaryKey"`
	Timestamp time.Time
	Operation string
	FID       string
	SW        uint16
	Succeeded bool
	Detail    string
}

// AuditLog persists AuditEntry rows to a local SQLite database.
type AuditLog struct {
	db *gorm.DB
}

// OpenAuditLog opens (creating if necessary) the SQLite database at path
// and migrates the audit_entries schema.
func OpenAuditLog(path string) (*AuditLog, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&AuditEntry{}); err != nil {
		return nil, err
	}
	return &AuditLog{db: db}, nil
}

// Record appends one entry, stamping it with a fresh correlation id.
func (a *AuditLog) Record(operation, fid string, sw uint16, err error) error {
	entry := AuditEntry{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Operation: operation,
		FID:       fid,
		SW:        sw,
		Succeeded: err == nil,
	}
	if err != nil {
		entry.Detail = err.Error()
	}
	return a.db.Create(&entry).Error
}

// Recent returns the last n entries, most recent first.
func (a *AuditLog) Recent(n int) ([]AuditEntry, error) {
	var entries []AuditEntry
	err := a.db.Order("timestamp desc").Limit(n).Find(&entries).Error
	return entries, err
}

// Close releases the underlying database connection.
func (a *AuditLog) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
