package config

import (
	"fmt"
	"time"
)

type Configs struct {
	Env string

	Database DatabaseConfigs
	Bot      BotConfigs
	Points   PointConfigs
	Lottery  LotteryConfigs
	Invite   InviteConfigs
	Redis    RedisConfigs
	Backup   BackupConfigs
	Cron     CronConfigs
}

type DatabaseConfigs struct {
	Driver     string // "sqlite" or "mysql"
	SQLitePath string

	Host     string
	Port     string
	Database string
	User     string
	Password string
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type BotConfigs struct {
	Token    string
	Username string

	// AdminIDs are users allowed to run admin commands regardless of their
	// role stored in database.
	AdminIDs []int64
}

type PointConfigs struct {
	MinMessageLength int
	PointsPerMessage float64
	PointsPerMedia   float64
	DailyCheckin     float64

	LeaderboardPageSize int
}

type LotteryConfigs struct {
	MaxWinners       int
	MaxDurationHours int

	// WizardSessionTimeout is the inactivity window after which an abandoned
	// creation dialog is discarded.
	WizardSessionTimeout time.Duration
}

type InviteConfigs struct {
	Reward     float64
	CodeLength uint
}

type RedisConfigs struct {
	Addr string
}

type BackupConfigs struct {
	Enabled  bool
	Interval time.Duration
	S3       S3Configs
}

type S3Configs struct {
	Region         string
	Endpoint       string
	PublicEndpoint string
	AccessKey      string
	SecretKey      string
	Bucket         string
	SSLDisabled    bool
}

type CronConfigs struct {
	DrawInterval time.Duration
}
