package repos

import (
	"github.com/mitanshu610/chat-threads/internal/data/repos/threads"
	"github.com/mitanshu610/chat-threads/internal/platform/logger"
	"gorm.io/gorm"
)

type ThreadRepo = threads.ThreadRepo
type ThreadMessageRepo = threads.ThreadMessageRepo
type ThreadMessageSummaryRepo = threads.ThreadMessageSummaryRepo

func NewThreadRepo(db *gorm.DB, baseLog *logger.Logger) ThreadRepo {
	return threads.NewThreadRepo(db, baseLog)
}
func NewThreadMessageRepo(db *gorm.DB, baseLog *logger.Logger) ThreadMessageRepo {
	return threads.NewThreadMessageRepo(db, baseLog)
}
func NewThreadMessageSummaryRepo(db *gorm.DB, baseLog *logger.Logger) ThreadMessageSummaryRepo {
	return threads.NewThreadMessageSummaryRepo(db, baseLog)
}
