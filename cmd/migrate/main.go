package main

import (
	"flag"
	"log"

	"github.com/pressly/goose/v3"

	"stockroom/internal/config"
	"stockroom/internal/infrastructure/mysql"
)

func main() {
	var dir string
	flag.StringVar(&dir, "dir", "migrations", "directory with migration files")
	flag.Parse()

	command := "up"
	var commandArgs []string
	if args := flag.Args(); len(args) > 0 {
		command = args[0]
		commandArgs = args[1:]
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("goose: loading config: %v", err)
	}

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		log.Fatalf("goose: failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := goose.SetDialect("mysql"); err != nil {
		log.Fatalf("goose: setting dialect: %v", err)
	}

	if err := goose.Run(command, db, dir, commandArgs...); err != nil {
		log.Fatalf("goose %s: %v", command, err)
	}
}
