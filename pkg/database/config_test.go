package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Alijeyrad/medchart/config"
)

func TestDSNFromCentralConfig(t *testing.T) {
	dc := config.DatabaseConfig{Host: "db", Port: 5433, User: "chart", Password: "pw", DBName: "medchart", SSLMode: "require"}
	assert.Equal(t, "host=db port=5433 user=chart password=pw dbname=medchart sslmode=require", NewDSN(dc))
}

func TestConnMaxLifetimeDefault(t *testing.T) {
	assert.Equal(t, 5*time.Minute, Config{}.ConnMaxLifetime())
	assert.Equal(t, 30*time.Minute, Config{ConnMaxLifetimeMin: 30}.ConnMaxLifetime())
}

func TestDatabaseNamesDeduplicated(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.DBName = "medchart"
	cfg.CasbinDatabase.DBName = "medchart"
	assert.Equal(t, []string{"medchart"}, databaseNames(cfg))

	cfg.CasbinDatabase.DBName = "medchart_casbin"
	assert.Equal(t, []string{"medchart", "medchart_casbin"}, databaseNames(cfg))
}
