package services

import (
	"context"
	"log"

	"github.com/icynarco112-ux/calories-tracker/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OpLogService appends failed operations to the diagnostic table. Recording
// is best-effort: a failure to write the log is itself only logged, never
// surfaced to the caller.
type OpLogService struct{ db *gorm.DB }

func NewOpLogService(db *gorm.DB) *OpLogService { return &OpLogService{db: db} }

func (s *OpLogService) Record(ctx context.Context, tool, message, userCode, rawInput string) {
	entry := models.OpLog{
		TraceID:  uuid.NewString(),
		Tool:     tool,
		Message:  message,
		UserCode: userCode,
		RawInput: rawInput,
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		log.Printf("oplog: failed to record %q failure: %v", tool, err)
	}
}
