package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mitanshu610/chat-threads/internal/app"
	types "github.com/mitanshu610/chat-threads/internal/domain/thread"
	"github.com/mitanshu610/chat-threads/internal/pkg/pointers"
	"github.com/mitanshu610/chat-threads/internal/platform/dbctx"
	"github.com/mitanshu610/chat-threads/internal/schemas"
)

const usage = `usage: chat-threads [-config file] [-env file] <command> [flags]

commands:
  migrate   create or update the thread tables
  check     verify the store is reachable
  list      print one page of a user's threads as JSON
`

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults to $"+app.ConfigPathEnv+")")
	envFile := flag.String("env", ".env", "dotenv file loaded before reading the environment")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		fmt.Printf("load %s: %v\n", *envFile, err)
	}

	path := *configPath
	if path == "" {
		path = os.Getenv(app.ConfigPathEnv)
	}
	cfg, err := app.LoadConfig(path)
	if err != nil {
		fmt.Printf("load config: %v\n", err)
		os.Exit(1)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}
	// migrate runs explicitly below; the other commands never alter schema.
	cfg.AutoMigrate = false

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	application, err := app.New(ctx, cfg)
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = application.Close(context.Background()) }()

	switch args[0] {
	case "migrate":
		err = application.Migrate()
		if err == nil {
			application.Log.Info("Migration complete", "driver", cfg.DB.Driver)
		}
	case "check":
		err = application.Ping()
		if err == nil {
			application.Log.Info("Store reachable", "driver", cfg.DB.Driver)
		}
	case "list":
		err = runList(ctx, application, args[1:])
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		application.Log.Error("Command failed", "command", args[0], "error", err)
		_ = application.Close(context.Background())
		os.Exit(1)
	}
}

func runList(ctx context.Context, application *app.App, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	email := fs.String("email", "", "thread owner email")
	product := fs.String("product", string(types.ProductCoPilot), "product")
	org := fs.String("org", "", "organization id; empty lists personal threads")
	query := fs.String("q", "", "only threads with a message containing this text")
	page := fs.Int("page", 1, "1-based page number")
	pageSize := fs.Int("page-size", 20, "page size; 0 returns every thread")
	if err := fs.Parse(args); err != nil {
		return err
	}

	q := schemas.PageQuery{
		UserEmail: strings.TrimSpace(*email),
		Product:   types.Product(strings.TrimSpace(*product)),
		Page:      *page,
		PageSize:  *pageSize,
		Query:     *query,
	}
	if strings.TrimSpace(*org) != "" {
		q.OrgID = pointers.String(strings.TrimSpace(*org))
	}
	res, err := application.Services.Thread.ListThreadsWithPagination(dbctx.New(ctx), q)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
