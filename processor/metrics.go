package processor

import (
	"github.com/streamingfast/dmetrics"
)

func RegisterMetrics() {
	metrics.Register()
}

var metrics = dmetrics.NewSet()

var SaveCount = metrics.NewCounter("formprocessor_save_count", "The amount of saves that completed so far")
var SavedRowsCount = metrics.NewCounterVec("formprocessor_saved_rows", []string{"table", "mode"}, "The number of rows inserted or updated")
var StoredFilesCount = metrics.NewCounterVec("formprocessor_stored_files", []string{"column"}, "The number of uploaded files stored")
var RejectedFilesCount = metrics.NewCounterVec("formprocessor_rejected_files", []string{"kind"}, "The number of uploaded files rejected")
var DeletedRowsCount = metrics.NewCounterVec("formprocessor_deleted_rows", []string{"table"}, "The number of rows deleted")
var DeletedFilesCount = metrics.NewCounter("formprocessor_deleted_files", "The number of stored files deleted")
var SaveDuration = metrics.NewCounter("formprocessor_save_duration", "The amount of time spent saving (in nanoseconds)")
