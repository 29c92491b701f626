package main

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/luckygram/backend/internal/entity"
	"github.com/luckygram/backend/internal/model"
	"github.com/luckygram/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) migrateDB() {
	if err := entity.MigrateTable(s.ctx); err != nil {
		panic(err)
	}
}

func (s *srv) startMigrate(*cli.Context) error {
	s.loadConfig()
	s.loadLogger()
	s.loadDatabase()
	s.migrateDB()

	xcontext.Logger(s.ctx).Infof("Migration completed")
	return nil
}

func (s *srv) startRestore(ct *cli.Context) error {
	if ct.Args().Len() != 1 {
		return errors.New("expected exactly one snapshot path")
	}

	s.loadConfig()
	s.loadLogger()
	s.loadDatabase()
	s.migrateDB()
	s.loadRedisClient()
	s.loadStorage()
	s.loadRepos()
	s.loadDomains()

	data, err := os.ReadFile(ct.Args().First())
	if err != nil {
		return err
	}

	var snapshot model.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return err
	}

	if err := s.backupDomain.Import(s.ctx, &snapshot); err != nil {
		return err
	}

	if err := s.leaderboard.Invalidate(s.ctx); err != nil {
		xcontext.Logger(s.ctx).Warnf("Cannot invalidate leaderboard cache: %v", err)
	}

	xcontext.Logger(s.ctx).Infof("Restore completed")
	return nil
}
