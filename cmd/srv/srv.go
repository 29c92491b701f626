package main

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/luckygram/backend/config"
	"github.com/luckygram/backend/internal/common"
	"github.com/luckygram/backend/internal/domain"
	"github.com/luckygram/backend/internal/domain/statistic"
	"github.com/luckygram/backend/internal/repository"
	"github.com/luckygram/backend/pkg/logger"
	"github.com/luckygram/backend/pkg/storage"
	"github.com/luckygram/backend/pkg/xcontext"
	"github.com/luckygram/backend/pkg/xredis"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type srv struct {
	app *cli.App
	ctx context.Context

	userRepo          repository.UserRepository
	invitationRepo    repository.InvitationRepository
	lotteryRepo       repository.LotteryRepository
	groupSettingsRepo repository.GroupSettingsRepository

	leaderboard statistic.Leaderboard
	verifier    *common.AdminVerifier

	pointDomain      domain.PointDomain
	invitationDomain domain.InvitationDomain
	lotteryDomain    domain.LotteryDomain
	wizardDomain     domain.WizardDomain
	backupDomain     domain.BackupDomain

	redisClient xredis.Client
	storage     storage.Storage
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func parseInt(s string, fallback int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}

	return v
}

func parseFloat(s string, fallback float64) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}

	return v
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}

	return v
}

func parseIDList(s string) []int64 {
	ids := []int64{}
	for _, part := range strings.Split(s, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err == nil {
			ids = append(ids, id)
		}
	}

	return ids
}

func (s *srv) loadConfig() {
	godotenv.Load()

	cfg := config.Configs{
		Env: getEnv("ENV", "local"),
		Database: config.DatabaseConfigs{
			Driver:     getEnv("DB_DRIVER", "sqlite"),
			SQLitePath: getEnv("DB_SQLITE_PATH", "luckygram.db"),
			Host:       getEnv("MYSQL_HOST", "localhost"),
			Port:       getEnv("MYSQL_PORT", "3306"),
			Database:   getEnv("MYSQL_DATABASE", "luckygram"),
			User:       getEnv("MYSQL_USER", "luckygram"),
			Password:   getEnv("MYSQL_PASSWORD", ""),
		},
		Bot: config.BotConfigs{
			Token:    getEnv("BOT_TOKEN", ""),
			Username: getEnv("BOT_USERNAME", ""),
			AdminIDs: parseIDList(getEnv("BOT_ADMIN_IDS", "")),
		},
		Points: config.PointConfigs{
			MinMessageLength:    parseInt(getEnv("POINTS_MIN_MESSAGE_LENGTH", "5"), 5),
			PointsPerMessage:    parseFloat(getEnv("POINTS_PER_MESSAGE", "1"), 1),
			PointsPerMedia:      parseFloat(getEnv("POINTS_PER_MEDIA", "2"), 2),
			DailyCheckin:        parseFloat(getEnv("POINTS_DAILY_CHECKIN", "10"), 10),
			LeaderboardPageSize: parseInt(getEnv("POINTS_LEADERBOARD_PAGE_SIZE", "10"), 10),
		},
		Lottery: config.LotteryConfigs{
			MaxWinners:           parseInt(getEnv("LOTTERY_MAX_WINNERS", "100"), 100),
			MaxDurationHours:     parseInt(getEnv("LOTTERY_MAX_DURATION_HOURS", "720"), 720),
			WizardSessionTimeout: parseDuration(getEnv("LOTTERY_WIZARD_TIMEOUT", "10m"), 10*time.Minute),
		},
		Invite: config.InviteConfigs{
			Reward:     parseFloat(getEnv("INVITE_REWARD", "20"), 20),
			CodeLength: uint(parseInt(getEnv("INVITE_CODE_LENGTH", "8"), 8)),
		},
		Redis: config.RedisConfigs{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Backup: config.BackupConfigs{
			Enabled:  getEnv("BACKUP_ENABLED", "false") == "true",
			Interval: parseDuration(getEnv("BACKUP_INTERVAL", "1h"), time.Hour),
			S3: config.S3Configs{
				Region:         getEnv("S3_REGION", "auto"),
				Endpoint:       getEnv("S3_ENDPOINT", ""),
				PublicEndpoint: getEnv("S3_PUBLIC_ENDPOINT", ""),
				AccessKey:      getEnv("S3_ACCESS_KEY", ""),
				SecretKey:      getEnv("S3_SECRET_KEY", ""),
				Bucket:         getEnv("S3_BUCKET", "luckygram-backup"),
				SSLDisabled:    getEnv("S3_SSL_DISABLED", "false") == "true",
			},
		},
		Cron: config.CronConfigs{
			DrawInterval: parseDuration(getEnv("CRON_DRAW_INTERVAL", "1m"), time.Minute),
		},
	}

	s.ctx = xcontext.WithConfigs(context.Background(), cfg)
}

func (s *srv) loadLogger() {
	level := logger.INFO
	if xcontext.Configs(s.ctx).Env == "local" {
		level = logger.DEBUG
	}

	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(level))
}

func (s *srv) newDatabase() *gorm.DB {
	cfg := xcontext.Configs(s.ctx).Database

	var dialector gorm.Dialector
	if cfg.Driver == "mysql" {
		dialector = mysql.Open(cfg.ConnectionString())
	} else {
		dialector = sqlite.Open(cfg.SQLitePath)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		panic(err)
	}

	return db
}

func (s *srv) loadDatabase() {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
}

func (s *srv) loadRedisClient() {
	redisClient, err := xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}

	s.redisClient = redisClient
}

func (s *srv) loadStorage() {
	s.storage = storage.NewS3Storage(xcontext.Configs(s.ctx).Backup.S3)
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository()
	s.invitationRepo = repository.NewInvitationRepository()
	s.lotteryRepo = repository.NewLotteryRepository()
	s.groupSettingsRepo = repository.NewGroupSettingsRepository()
}

func (s *srv) loadDomains() {
	s.leaderboard = statistic.New(s.userRepo, s.redisClient)
	s.verifier = common.NewAdminVerifier(s.userRepo)

	s.pointDomain = domain.NewPointDomain(s.userRepo, s.groupSettingsRepo, s.leaderboard, s.verifier)
	s.invitationDomain = domain.NewInvitationDomain(s.userRepo, s.invitationRepo, s.leaderboard)
	s.lotteryDomain = domain.NewLotteryDomain(s.lotteryRepo, s.userRepo, s.leaderboard, s.verifier)
	s.wizardDomain = domain.NewWizardDomain(s.lotteryDomain, s.verifier)
	s.backupDomain = domain.NewBackupDomain(
		s.userRepo, s.invitationRepo, s.lotteryRepo, s.groupSettingsRepo, s.storage)
}
