package main

import (
	"github.com/luckygram/backend/internal/domain/cron"
	"github.com/luckygram/backend/internal/telegram"
	"github.com/luckygram/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startBot(*cli.Context) error {
	s.loadConfig()
	s.loadLogger()
	s.loadDatabase()
	s.migrateDB()
	s.loadRedisClient()
	s.loadStorage()
	s.loadRepos()
	s.loadDomains()

	bot, err := telegram.NewBot(
		s.ctx, s.pointDomain, s.invitationDomain, s.lotteryDomain, s.wizardDomain)
	if err != nil {
		return err
	}

	cfg := xcontext.Configs(s.ctx)
	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Register(cron.NewAutoDrawCronJob(
		s.lotteryRepo, s.lotteryDomain, telegram.NewNotifier(bot.API()), cfg.Cron.DrawInterval))
	cronJobManager.Register(cron.NewWizardCleanupCronJob(s.wizardDomain))

	if cfg.Backup.Enabled {
		cronJobManager.Register(cron.NewSnapshotBackupCronJob(s.backupDomain, cfg.Backup.Interval))
	}

	go cronJobManager.Start(s.ctx)

	xcontext.Logger(s.ctx).Infof("Bot started")
	bot.Run(s.ctx)
	return nil
}
