package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/XSAM/otelsql"
	_ "github.com/lib/pq"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.uber.org/zap"
)

// ConnProvider hands out a dedicated connection per call.
// The caller owns the connection and must close it.
type ConnProvider interface {
	Conn(ctx context.Context) (*sql.Conn, error)
}

// Provider is the PostgreSQL connection provider
type Provider struct {
	db *sql.DB
}

var _ ConnProvider = (*Provider)(nil)

// NewProvider wraps an already opened handle
func NewProvider(db *sql.DB) *Provider {
	return &Provider{db: db}
}

// Connect opens PostgreSQL with OpenTelemetry instrumentation.
// Idle connections are not kept, so every Conn call dials a fresh
// connection that is released again when the caller closes it.
func Connect(ctx context.Context, dsn, dbName string, log *zap.Logger) (*Provider, error) {
	db, err := otelsql.Open("postgres", dsn,
		otelsql.WithAttributes(
			semconv.DBSystemPostgreSQL,
			semconv.DBName(dbName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = otelsql.RegisterDBStatsMetrics(db,
		otelsql.WithAttributes(
			semconv.DBSystemPostgreSQL,
			semconv.DBName(dbName),
		),
	)
	if err != nil {
		log.Warn("failed to register database stats metrics", zap.Error(err))
	}

	db.SetMaxIdleConns(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("connected to PostgreSQL", zap.String("db_name", dbName))
	return &Provider{db: db}, nil
}

// Conn acquires a dedicated connection
func (p *Provider) Conn(ctx context.Context) (*sql.Conn, error) {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	return conn, nil
}

// DB exposes the underlying handle for setup code
func (p *Provider) DB() *sql.DB {
	return p.db
}

func (p *Provider) Close() error {
	if p.db == nil {
		return nil
	}
	return p.db.Close()
}
