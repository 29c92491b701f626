package xcontext

import (
	"context"

	"github.com/luckygram/backend/config"
	"github.com/luckygram/backend/pkg/logger"
	"gorm.io/gorm"
)

type (
	configsKey struct{}
	loggerKey  struct{}
	dbKey      struct{}
	txKey      struct{}
	userIDKey  struct{}
)

func WithConfigs(ctx context.Context, cfg config.Configs) context.Context {
	return context.WithValue(ctx, configsKey{}, cfg)
}

func Configs(ctx context.Context) config.Configs {
	cfg, ok := ctx.Value(configsKey{}).(config.Configs)
	if !ok {
		panic("no configs provided in context")
	}

	return cfg
}

func WithLogger(ctx context.Context, l logger.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func Logger(ctx context.Context) logger.Logger {
	l, ok := ctx.Value(loggerKey{}).(logger.Logger)
	if !ok {
		panic("no logger provided in context")
	}

	return l
}

func WithDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, dbKey{}, db)
}

// DB returns the current database transaction if one began with
// WithDBTransaction, otherwise the root database handle.
func DB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*transaction); ok && !tx.done {
		return tx.db
	}

	db, ok := ctx.Value(dbKey{}).(*gorm.DB)
	if !ok {
		panic("no database provided in context")
	}

	return db
}

type transaction struct {
	db   *gorm.DB
	done bool
}

// WithDBTransaction begins a database transaction and replaces the returned
// value of DB with it until the transaction is committed or rolled back.
func WithDBTransaction(ctx context.Context) context.Context {
	return context.WithValue(ctx, txKey{}, &transaction{db: DB(ctx).Begin()})
}

// WithCommitDBTransaction commits the current transaction if it exists.
func WithCommitDBTransaction(ctx context.Context) context.Context {
	if tx, ok := ctx.Value(txKey{}).(*transaction); ok && !tx.done {
		tx.db.Commit()
		tx.done = true
	}

	return ctx
}

// WithRollbackDBTransaction rollbacks the current transaction if it exists and
// hasn't been committed yet. It is safe to defer after a commit.
func WithRollbackDBTransaction(ctx context.Context) context.Context {
	if tx, ok := ctx.Value(txKey{}).(*transaction); ok && !tx.done {
		tx.db.Rollback()
		tx.done = true
	}

	return ctx
}

func WithRequestUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

// RequestUserID returns the identity of the acting user, or zero if the
// operation has no acting user (e.g. a cron tick).
func RequestUserID(ctx context.Context) int64 {
	id, ok := ctx.Value(userIDKey{}).(int64)
	if !ok {
		return 0
	}

	return id
}
