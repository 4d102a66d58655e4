package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/01moynul/carlisting-golang/internal/config"
	"github.com/01moynul/carlisting-golang/internal/database"
	"github.com/01moynul/carlisting-golang/internal/logger"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [up|down|status|version|redo|reset]\n", os.Args[0])
	}
	flag.Parse()

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Error loading config: %v", err))
	}

	log, err := logger.NewLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		panic(fmt.Sprintf("Error initializing logger: %v", err))
	}
	defer log.Sync()
	log = logger.WithService(log, "carlisting-migrate")

	db, err := database.OpenDB(database.Config{
		DSN:             cfg.MySQL.DSN(),
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
	}, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.RunMigrations(db, command, log); err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}
}
