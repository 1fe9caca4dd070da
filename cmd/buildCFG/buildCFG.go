package buildCFG

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
)

const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

type ServerConfig struct {
	Port            string
	Mode            string
	AdminToken      string
	ShutdownTimeout time.Duration
}

type RegistryConfig struct {
	Backend             string
	SQLitePath          string
	ReloadAfterMutation bool
	MigrationsPath      string
	RollbackOnShutdown  bool
}

type RabbitConfig struct {
	Enabled  bool
	Url      string
	Exchange string
	Queue    string
}

type MailerConfig struct {
	Enabled  bool
	Host     string
	Port     int
	From     string
	Password string
	Locale   string
}

// Getter is the subset of *config.Config the builders read.
type Getter interface {
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	GetDuration(key string) time.Duration
}

var _ Getter = (*config.Config)(nil)

func BuildServerConfig(cfg Getter, log *zerolog.Logger) ServerConfig {
	sc := ServerConfig{
		Port:            cfg.GetString("server.port"),
		Mode:            cfg.GetString("server.mode"),
		AdminToken:      cfg.GetString("server.admin_token"),
		ShutdownTimeout: cfg.GetDuration("server.shutdown_timeout"),
	}
	if sc.Port == "" {
		sc.Port = "8080"
	}
	if sc.Mode == "" {
		sc.Mode = "release"
	}
	if sc.ShutdownTimeout <= 0 {
		sc.ShutdownTimeout = 10 * time.Second
	}
	if sc.AdminToken == "" {
		log.Warn().Msg("server.admin_token is empty, the admin API will reject every request")
	}
	return sc
}

func BuildRegistryConfig(cfg Getter, log *zerolog.Logger) (RegistryConfig, error) {
	rc := RegistryConfig{
		Backend:             cfg.GetString("registry.backend"),
		SQLitePath:          cfg.GetString("registry.sqlite_path"),
		ReloadAfterMutation: cfg.GetBool("registry.reload_after_mutation"),
		MigrationsPath:      cfg.GetString("postgres.migrations_path"),
		RollbackOnShutdown:  cfg.GetBool("postgres.rollback_on_shutdown"),
	}
	if rc.Backend == "" {
		rc.Backend = BackendPostgres
	}
	if rc.MigrationsPath == "" {
		rc.MigrationsPath = "migrations/postgres"
	}
	switch rc.Backend {
	case BackendPostgres:
	case BackendSQLite:
		if rc.SQLitePath == "" {
			rc.SQLitePath = "registry.db"
		}
	default:
		return RegistryConfig{}, fmt.Errorf("unknown registry.backend %q", rc.Backend)
	}
	log.Info().
		Str("backend", rc.Backend).
		Bool("reload_after_mutation", rc.ReloadAfterMutation).
		Msg("registry config loaded")
	return rc, nil
}

// BuildDBConfig returns the master DSN in URL form, which both lib/pq and the migrator
// accept.
func BuildDBConfig(cfg Getter, log *zerolog.Logger) (string, []string, *dbpg.Options, error) {
	host := cfg.GetString("postgres.host")
	port := cfg.GetInt("postgres.port")
	user := cfg.GetString("postgres.user")
	dbname := cfg.GetString("postgres.dbname")
	if host == "" || user == "" || dbname == "" {
		return "", nil, nil, fmt.Errorf("postgres.host, postgres.user and postgres.dbname are required")
	}
	if port == 0 {
		port = 5432
	}
	sslmode := cfg.GetString("postgres.sslmode")
	if sslmode == "" {
		sslmode = "disable"
	}

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, cfg.GetString("postgres.password")),
		Host:     host + ":" + strconv.Itoa(port),
		Path:     "/" + dbname,
		RawQuery: url.Values{"sslmode": []string{sslmode}}.Encode(),
	}

	opts := &dbpg.Options{
		MaxOpenConns:    cfg.GetInt("postgres.max_open_conns"),
		MaxIdleConns:    cfg.GetInt("postgres.max_idle_conns"),
		ConnMaxLifetime: cfg.GetDuration("postgres.conn_max_lifetime"),
	}
	if opts.MaxOpenConns == 0 {
		opts.MaxOpenConns = 10
	}
	if opts.MaxIdleConns == 0 {
		opts.MaxIdleConns = 5
	}
	if opts.ConnMaxLifetime == 0 {
		opts.ConnMaxLifetime = 30 * time.Minute
	}

	log.Info().Str("host", host).Int("port", port).Str("dbname", dbname).Msg("postgres config loaded")
	return dsn.String(), nil, opts, nil
}

func BuildRabbitConfig(cfg Getter, log *zerolog.Logger) (RabbitConfig, error) {
	rc := RabbitConfig{
		Enabled:  cfg.GetBool("rabbit.enabled"),
		Url:      cfg.GetString("rabbit.url"),
		Exchange: cfg.GetString("rabbit.exchange"),
		Queue:    cfg.GetString("rabbit.queue"),
	}
	if !rc.Enabled {
		log.Info().Msg("rabbit disabled, review notifications are off")
		return rc, nil
	}
	if rc.Url == "" || rc.Exchange == "" || rc.Queue == "" {
		return RabbitConfig{}, fmt.Errorf("rabbit.url, rabbit.exchange and rabbit.queue are required when rabbit is enabled")
	}
	return rc, nil
}

func BuildMailerConfig(cfg Getter, log *zerolog.Logger) (MailerConfig, error) {
	mc := MailerConfig{
		Enabled:  cfg.GetBool("mailer.enabled"),
		Host:     cfg.GetString("mailer.host"),
		Port:     cfg.GetInt("mailer.port"),
		From:     cfg.GetString("mailer.from"),
		Password: cfg.GetString("mailer.password"),
		Locale:   cfg.GetString("mailer.locale"),
	}
	if mc.Locale == "" {
		mc.Locale = "en"
	}
	if !mc.Enabled {
		log.Info().Msg("mailer disabled")
		return mc, nil
	}
	if mc.Host == "" || mc.From == "" {
		return MailerConfig{}, fmt.Errorf("mailer.host and mailer.from are required when the mailer is enabled")
	}
	if mc.Port == 0 {
		mc.Port = 587
	}
	return mc, nil
}
