package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"taskboard/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DBConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "tarefas"})
	assert.Equal(t, "postgres://u:p@db:5432/tarefas?sslmode=disable", dsn)
}

func TestNewSlowQueryTracerDefaultThreshold(t *testing.T) {
	tr := NewSlowQueryTracer(zap.NewNop(), 0)
	assert.Equal(t, 100*time.Millisecond, tr.slowThreshold)

	tr = NewSlowQueryTracer(zap.NewNop(), 250*time.Millisecond)
	assert.Equal(t, 250*time.Millisecond, tr.slowThreshold)
}
