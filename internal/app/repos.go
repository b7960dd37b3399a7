package app

import (
	"gorm.io/gorm"

	"github.com/mitanshu610/chat-threads/internal/data/repos"
	"github.com/mitanshu610/chat-threads/internal/platform/logger"
)

type Repos struct {
	Thread        repos.ThreadRepo
	ThreadMessage repos.ThreadMessageRepo
	Summary       repos.ThreadMessageSummaryRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Thread:        repos.NewThreadRepo(db, log),
		ThreadMessage: repos.NewThreadMessageRepo(db, log),
		Summary:       repos.NewThreadMessageSummaryRepo(db, log),
	}
}
