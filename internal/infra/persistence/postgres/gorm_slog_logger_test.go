package postgres

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"authsvc/config"
	"authsvc/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newBufferedGormLogger(debug bool) (logger.Interface, *bytes.Buffer) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cfg := &config.Config{}
	cfg.Env.Debug = debug

	return newGormSlogLogger(base, cfg), &buf
}

func TestGormSlogLogger_TraceError(t *testing.T) {
	l, buf := newBufferedGormLogger(false)

	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "INSERT INTO users", 0
	}, errors.New("boom"))

	assert.Contains(t, buf.String(), "GORM query failed")
	assert.Contains(t, buf.String(), "INSERT INTO users")
}

func TestGormSlogLogger_IgnoresRecordNotFound(t *testing.T) {
	l, buf := newBufferedGormLogger(false)

	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT * FROM users", 0
	}, gorm.ErrRecordNotFound)

	assert.Empty(t, buf.String())
}

func TestGormSlogLogger_QueriesOnlyInDebug(t *testing.T) {
	quiet, quietBuf := newBufferedGormLogger(false)
	verbose, verboseBuf := newBufferedGormLogger(true)

	sqlFn := func() (string, int64) { return "SELECT 1", 1 }
	quiet.Trace(context.Background(), time.Now(), sqlFn, nil)
	verbose.Trace(context.Background(), time.Now(), sqlFn, nil)

	assert.Empty(t, quietBuf.String())
	assert.Contains(t, verboseBuf.String(), "GORM query")
}

func TestGormSlogLogger_SlowQuery(t *testing.T) {
	l, buf := newBufferedGormLogger(false)

	l.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) {
		return "SELECT pg_sleep(1)", 1
	}, nil)

	assert.Contains(t, buf.String(), "GORM slow query")
}

func TestGormSlogLogger_ParamsFilterDropsValues(t *testing.T) {
	l, _ := newBufferedGormLogger(true)

	filter, ok := l.(gorm.ParamsFilter)
	require.True(t, ok)

	sql, params := filter.ParamsFilter(context.Background(),
		`INSERT INTO "users" ("email","password_hash") VALUES ($1,$2)`, "a@x.com", "$2a$12$SECRETHASHVALUE")

	assert.Equal(t, `INSERT INTO "users" ("email","password_hash") VALUES ($1,$2)`, sql)
	assert.Empty(t, params)
}

func TestGormSlogLogger_NeverLogsPasswordHash(t *testing.T) {
	insert := func() (string, int64) {
		return `INSERT INTO "users" ("username","email","password_hash") VALUES ('a','a@x.com','$2a$12$SECRETHASHVALUE')`, 0
	}
	update := func() (string, int64) {
		return `UPDATE "users" SET "password_hash"='$2a$12$SECRETHASHVALUE' WHERE id = 'it''s'`, 1
	}

	t.Run("failed write", func(t *testing.T) {
		l, buf := newBufferedGormLogger(false)

		l.Trace(context.Background(), time.Now(), insert, errors.New("duplicate key value violates unique constraint"))

		assert.Contains(t, buf.String(), "GORM query failed")
		assert.NotContains(t, buf.String(), "SECRETHASHVALUE")
	})

	t.Run("debug write", func(t *testing.T) {
		l, buf := newBufferedGormLogger(true)

		l.Trace(context.Background(), time.Now(), update, nil)

		assert.Contains(t, buf.String(), "password_hash")
		assert.NotContains(t, buf.String(), "SECRETHASHVALUE")
		assert.NotContains(t, buf.String(), "it''s")
	})
}
