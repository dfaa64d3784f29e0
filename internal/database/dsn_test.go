package database

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildPostgresDSN(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{
		User:     "linkauth",
		Password: "s3cret",
		Name:     "linkauth",
		Host:     "db.internal",
		Port:     5433,
	})
	require.NoError(t, err)
	require.Equal(t, "host=db.internal port=5433 user=linkauth dbname=linkauth password=s3cret sslmode=disable", dsn)
}

func TestBuildPostgresDSNDefaultsAndOptions(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{
		User: "linkauth",
		Name: "linkauth",
		Options: map[string]string{
			"sslmode":         "require",
			"connect_timeout": "5",
		},
	})
	require.NoError(t, err)
	require.Equal(t, "host=localhost port=5432 user=linkauth dbname=linkauth connect_timeout=5 sslmode=require", dsn)
}

func TestBuildPostgresDSNRequiresUserAndName(t *testing.T) {
	_, err := buildPostgresDSN(Config{User: "linkauth"})
	require.Error(t, err)

	_, err = buildPostgresDSN(Config{Name: "linkauth"})
	require.Error(t, err)
}

func TestBuildPostgresDSNOverride(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{DSN: "postgres://u:p@host/db"})
	require.NoError(t, err)
	require.Equal(t, "postgres://u:p@host/db", dsn)
}

func TestBuildMySQLDSN(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{
		User:     "linkauth",
		Password: "s3cret",
		Name:     "linkauth",
		Host:     "db.internal",
		Port:     3307,
	})
	require.NoError(t, err)
	require.Equal(t, "linkauth:s3cret@tcp(db.internal:3307)/linkauth?charset=utf8mb4&loc=Local&parseTime=True", dsn)
}

func TestBuildMySQLDSNDefaults(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{User: "linkauth", Name: "linkauth"})
	require.NoError(t, err)
	require.Equal(t, "linkauth@tcp(127.0.0.1:3306)/linkauth?charset=utf8mb4&loc=Local&parseTime=True", dsn)
}

func TestBuildMySQLDSNOptionOverride(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{
		User: "linkauth",
		Name: "linkauth",
		Options: map[string]string{
			"charset": "latin1",
			"timeout": "5s",
		},
	})
	require.NoError(t, err)
	require.Equal(t, "linkauth@tcp(127.0.0.1:3306)/linkauth?charset=latin1&loc=Local&parseTime=True&timeout=5s", dsn)
}

func TestBuildMySQLDSNRequiresUserAndName(t *testing.T) {
	_, err := buildMySQLDSN(Config{User: "linkauth"})
	require.Error(t, err)
}
