package domain

import "time"

// FailedClient is one entry in the durable failure ledger. The ledger is
// append-only: repeated failures for the same SCAC across runs produce
// repeated rows, never updates.
type FailedClient struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SCAC       string    `gorm:"column:SCAC;not null;index" json:"scac"`
	RunID      string    `gorm:"column:RUN_ID" json:"run_id"`
	Reason     string    `gorm:"column:REASON" json:"reason"`
	RecordedAt time.Time `gorm:"column:RECORDED_AT;autoCreateTime" json:"recorded_at"`
}

// TableName returns the database table name for FailedClient.
func (FailedClient) TableName() string {
	return "FAILED_SCACS"
}

// UploadRun records one completed load for a client, written after the
// client's rows have been bulk-inserted. Downstream consumers use it to tell
// runs apart.
type UploadRun struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SCAC       string    `gorm:"column:SCAC;not null;index" json:"scac"`
	FileID     string    `gorm:"column:FILE_ID" json:"file_id"`
	RowCount   int64     `gorm:"column:ROW_COUNT" json:"row_count"`
	UploadedAt time.Time `gorm:"column:UPLOADED_AT;autoCreateTime" json:"uploaded_at"`
}

// TableName returns the database table name for UploadRun.
func (UploadRun) TableName() string {
	return "UPLOAD_RUNS"
}
