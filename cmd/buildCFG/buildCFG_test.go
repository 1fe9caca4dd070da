package buildCFG

import (
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type mapConfig map[string]any

func (m mapConfig) GetString(key string) string {
	s, _ := m[key].(string)
	return s
}

func (m mapConfig) GetInt(key string) int {
	n, _ := m[key].(int)
	return n
}

func (m mapConfig) GetBool(key string) bool {
	b, _ := m[key].(bool)
	return b
}

func (m mapConfig) GetDuration(key string) time.Duration {
	d, _ := m[key].(time.Duration)
	return d
}

func nopLog() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func TestBuildServerConfigDefaults(t *testing.T) {
	sc := BuildServerConfig(mapConfig{"server.admin_token": "s3cret"}, nopLog())
	require.Equal(t, ServerConfig{Port: "8080", Mode: "release", AdminToken: "s3cret", ShutdownTimeout: 10 * time.Second}, sc)
}

func TestBuildRegistryConfig(t *testing.T) {
	rc, err := BuildRegistryConfig(mapConfig{}, nopLog())
	require.NoError(t, err)
	require.Equal(t, BackendPostgres, rc.Backend)
	require.Equal(t, "migrations/postgres", rc.MigrationsPath)

	rc, err = BuildRegistryConfig(mapConfig{"registry.backend": "sqlite", "registry.reload_after_mutation": true}, nopLog())
	require.NoError(t, err)
	require.Equal(t, "registry.db", rc.SQLitePath)
	require.True(t, rc.ReloadAfterMutation)

	_, err = BuildRegistryConfig(mapConfig{"registry.backend": "mongo"}, nopLog())
	require.ErrorContains(t, err, "mongo")
}

func TestBuildDBConfig(t *testing.T) {
	dsn, slaves, opts, err := BuildDBConfig(mapConfig{
		"postgres.host":     "db",
		"postgres.user":     "registry",
		"postgres.password": "p@ss word",
		"postgres.dbname":   "codebeyond",
	}, nopLog())
	require.NoError(t, err)
	require.Nil(t, slaves)
	require.Equal(t, 10, opts.MaxOpenConns)

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	require.Equal(t, "postgres", u.Scheme)
	require.Equal(t, "db:5432", u.Host)
	require.Equal(t, "/codebeyond", u.Path)
	pass, _ := u.User.Password()
	require.Equal(t, "p@ss word", pass)
	require.Equal(t, "disable", u.Query().Get("sslmode"))

	_, _, _, err = BuildDBConfig(mapConfig{"postgres.host": "db"}, nopLog())
	require.Error(t, err)
}

func TestBuildRabbitAndMailerConfig(t *testing.T) {
	rc, err := BuildRabbitConfig(mapConfig{}, nopLog())
	require.NoError(t, err)
	require.False(t, rc.Enabled)

	_, err = BuildRabbitConfig(mapConfig{"rabbit.enabled": true}, nopLog())
	require.Error(t, err)

	mc, err := BuildMailerConfig(mapConfig{"mailer.enabled": true, "mailer.host": "smtp.example.com", "mailer.from": "noreply@codebeyond.pk"}, nopLog())
	require.NoError(t, err)
	require.Equal(t, 587, mc.Port)
	require.Equal(t, "en", mc.Locale)

	_, err = BuildMailerConfig(mapConfig{"mailer.enabled": true}, nopLog())
	require.Error(t, err)
}
