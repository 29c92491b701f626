package main

import (
	"github.com/luckygram/backend/internal/domain"
	"github.com/luckygram/backend/internal/domain/cron"
	"github.com/luckygram/backend/internal/telegram"
	"github.com/luckygram/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

// startCron runs the time-driven jobs in a dedicated worker, for deployments
// that keep the bot and the scheduler apart.
func (s *srv) startCron(*cli.Context) error {
	s.loadConfig()
	s.loadLogger()
	s.loadDatabase()
	s.migrateDB()
	s.loadRedisClient()
	s.loadStorage()
	s.loadRepos()
	s.loadDomains()

	var notifier domain.Notifier
	bot, err := telegram.NewBot(
		s.ctx, s.pointDomain, s.invitationDomain, s.lotteryDomain, s.wizardDomain)
	if err != nil {
		xcontext.Logger(s.ctx).Warnf("Cannot connect the bot, draws will not be announced: %v", err)
	} else {
		notifier = telegram.NewNotifier(bot.API())
	}

	cfg := xcontext.Configs(s.ctx)
	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Register(cron.NewAutoDrawCronJob(
		s.lotteryRepo, s.lotteryDomain, notifier, cfg.Cron.DrawInterval))

	if cfg.Backup.Enabled {
		cronJobManager.Register(cron.NewSnapshotBackupCronJob(s.backupDomain, cfg.Backup.Interval))
	}

	cronJobManager.Start(s.ctx)
	return nil
}
