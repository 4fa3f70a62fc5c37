package main

import (
	stdLog "log"
	"os"
	"time"

	"github.com/Astemirdum/smart-library/library/app"
	"github.com/Astemirdum/smart-library/library/config"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		stdLog.Fatal("load envs from .env ", err)
	}
	var opts []config.Option
	if os.Getenv("DEBUG") != "" {
		opts = append(opts, config.WithLogLevel(zapcore.DebugLevel))
	}
	opts = append(opts, config.WithWriteTimeout(time.Minute))
	cfg := config.NewConfig(opts...)

	app.Run(cfg)
}
