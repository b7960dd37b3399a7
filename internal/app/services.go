package app

import (
	"gorm.io/gorm"

	"github.com/mitanshu610/chat-threads/internal/platform/logger"
	"github.com/mitanshu610/chat-threads/internal/services"
)

type Services struct {
	Thread  services.ThreadService
	Summary services.ThreadSummaryService
}

func wireServices(db *gorm.DB, log *logger.Logger, reposet Repos) Services {
	log.Info("Wiring services...")
	return Services{
		Thread:  services.NewThreadService(db, log, reposet.Thread, reposet.ThreadMessage),
		Summary: services.NewThreadSummaryService(log, reposet.Summary),
	}
}
