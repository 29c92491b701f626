package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "Luckygram"
	app.Usage = ""
	app.Commands = []*cli.Command{
		{
			Action:      server.startBot,
			Name:        "bot",
			Usage:       "Start the chat bot",
			Category:    "Bot",
			Description: `Consumes chat updates and dispatches them to the points and lottery logic.`,
		},
		{
			Action:      server.startCron,
			Name:        "cron",
			Usage:       "Start background jobs",
			Category:    "Worker",
			Description: `Runs the auto draw, dialog cleanup, and snapshot backup jobs.`,
		},
		{
			Action:      server.startMigrate,
			Name:        "migrate",
			Usage:       "Migrate database tables",
			Category:    "Database",
			Description: `Creates or updates the database schema and exits.`,
		},
		{
			Action:      server.startRestore,
			Name:        "restore",
			Usage:       "Restore the database from a snapshot file",
			ArgsUsage:   "<snapshotPath>",
			Category:    "Database",
			Description: `Replaces the entire database content with a previously exported snapshot.`,
		},
	}

	s.app = app
}
