package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("LOAN_UNIT_PENALTY", "7")
	t.Setenv("KAFKA_ADDRS", "k1:9092,k2:9092")

	cfg := NewConfig(WithLogLevel(zapcore.WarnLevel), WithWriteTimeout(time.Minute))

	require.Equal(t, "s3cret", cfg.Auth.Secret)
	require.Equal(t, 7*24*time.Hour, cfg.Auth.TTL)
	require.Equal(t, 7*24*time.Hour, cfg.Loan.LoanPeriod)
	require.Equal(t, 7, cfg.Loan.UnitPenalty)
	require.Equal(t, 3, cfg.Loan.DueSoonDays)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Addrs)
	require.False(t, cfg.Kafka.Enable)
	require.Equal(t, "gpt-3.5-turbo", cfg.AI.Model)
	require.Equal(t, zapcore.WarnLevel, cfg.Log.LogLevel)
	require.Equal(t, time.Minute, cfg.Server.WriteTimeout)
	require.Equal(t, "8080", cfg.Server.Port)
}
