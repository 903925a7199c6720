package postgres

import (
	"context"
	"net/url"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"
)

const (
	binaryResultParam   = "disable_prepared_binary_result"
	tracedQueryMaxBytes = 512
	defaultPingTimeout  = 5 * time.Second
)

// OpenConfig controls the connection pool. Zero values fall back to the
// defaults the service runs with.
type OpenConfig struct {
	URL                   string
	DisablePreparedBinary bool
	MaxOpenConns          int
	MaxIdleConns          int
	ConnMaxLifetime       time.Duration
	PingTimeout           time.Duration
}

func (c OpenConfig) withDefaults() OpenConfig {
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 20
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 5
	}
	if c.ConnMaxLifetime <= 0 {
		c.ConnMaxLifetime = 30 * time.Minute
	}
	if c.PingTimeout <= 0 {
		c.PingTimeout = defaultPingTimeout
	}
	return c
}

// Open returns a traced, pinged connection pool.
func Open(ctx context.Context, cfg OpenConfig) (*sqlx.DB, error) {
	cfg = cfg.withDefaults()
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, crerr.New("postgres url is empty")
	}

	dsn := NormalizeDSN(cfg.URL, cfg.DisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(DatabaseName(dsn)),
		otelsql.WithQueryFormatter(traceQuery),
	)
	if err != nil {
		return nil, crerr.Wrap(err, "open postgres")
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, crerr.Wrap(err, "ping postgres")
	}
	return db, nil
}

// NormalizeDSN adds disable_prepared_binary_result=yes for poolers that
// cannot forward binary results of prepared statements. An explicit value in
// the URL is left alone.
func NormalizeDSN(raw string, disablePreparedBinary bool) string {
	if !disablePreparedBinary {
		return raw
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" {
		return raw
	}

	query := parsed.Query()
	if query.Has(binaryResultParam) {
		return raw
	}
	query.Set(binaryResultParam, "yes")
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// DatabaseName extracts the database from either URL or key=value DSNs.
func DatabaseName(dsn string) string {
	dsn = strings.TrimSpace(dsn)
	if parsed, err := url.Parse(dsn); err == nil && parsed.Scheme != "" {
		return strings.Trim(parsed.Path, "/ ")
	}

	for _, field := range strings.Fields(dsn) {
		key, value, ok := strings.Cut(field, "=")
		if ok && key == "dbname" {
			return strings.Trim(value, `"'`)
		}
	}
	return ""
}

// traceQuery collapses whitespace so span attributes stay readable.
func traceQuery(query string) string {
	collapsed := strings.Join(strings.Fields(query), " ")
	if len(collapsed) <= tracedQueryMaxBytes {
		return collapsed
	}
	return collapsed[:tracedQueryMaxBytes] + "..."
}
