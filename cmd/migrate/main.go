package main

import (
	"database/sql"
	"flag"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/fieldops-hq/fieldops/pkg/configuration"
)

func main() {
	conf := configuration.Use()
	defer conf.Unload()

	dir := flag.String("dir", conf.MigrationsDir, "migrations directory")
	command := flag.String("command", "up", "goose command: up, down, status")
	flag.Parse()

	db, err := sql.Open("pgx", conf.Database.Opts)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	switch *command {
	case "up":
		err = goose.Up(db, *dir)
	case "down":
		err = goose.Down(db, *dir)
	case "status":
		err = goose.Status(db, *dir)
	default:
		log.Fatalf("unknown command %q", *command)
	}
	if err != nil {
		log.Fatalf("goose %s: %v", *command, err)
	}
}
