// Command console runs the operations console, either as a WebSocket
// service (serve) or in the terminal (tui).
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/matthewbaird/opsconsole/internal/config"
	"github.com/matthewbaird/opsconsole/internal/console/wire"
	"github.com/matthewbaird/opsconsole/internal/entities"
	"github.com/matthewbaird/opsconsole/internal/gateway"
	"github.com/matthewbaird/opsconsole/internal/mutation"
	"github.com/matthewbaird/opsconsole/internal/permission"
	"github.com/matthewbaird/opsconsole/internal/screen"
	"github.com/matthewbaird/opsconsole/internal/seed"
	"github.com/matthewbaird/opsconsole/internal/server"
	"github.com/matthewbaird/opsconsole/internal/tui"
)

const usage = `usage: console <serve|tui> [flags]`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	cmd, args := os.Args[1], os.Args[2:]

	if err := config.LoadDotEnv(); err != nil {
		log.Fatal(err)
	}
	cfg, err := config.ParseConsole(args, os.Getenv)
	if err != nil {
		log.Fatal(err)
	}
	policy, err := config.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		log.Fatal(err)
	}
	screens, err := screenFactory(cfg)
	if err != nil {
		log.Fatal(err)
	}
	actor := permission.Actor{ID: cfg.Actor, Role: cfg.Role}

	switch cmd {
	case "serve":
		reg := prometheus.NewRegistry()
		err = server.RunConsole(ctx, server.ConsoleConfig{
			Port: cfg.Port,
			Options: wire.Options{
				Actor:    actor,
				Oracle:   policy,
				Home:     policy.Home(cfg.Role),
				Metrics:  mutation.NewMetrics(reg),
				PageSize: cfg.PageSize,
				Screens:  screens,
			},
			Registry: reg,
		})
	case "tui":
		// The terminal owns stdout; keep logs out of the way.
		log.SetOutput(io.Discard)
		m := tui.New(ctx, tui.Options{
			Actor:    actor,
			Oracle:   policy,
			Home:     policy.Home(cfg.Role),
			PageSize: cfg.PageSize,
			Screens:  screens,
		})
		_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("console: %v", err)
	}
}

// screenFactory builds screens over the records API, or over in-memory
// demo data.
func screenFactory(cfg config.Console) (func(screen.Deps) []screen.Handle, error) {
	if cfg.Demo {
		docs := seed.Documents()
		return func(deps screen.Deps) []screen.Handle { return entities.Memory(docs, deps) }, nil
	}
	client, err := gateway.NewClient(cfg.APIURL,
		gateway.WithTimeout(cfg.Timeout),
		gateway.WithActor(cfg.Actor),
	)
	if err != nil {
		return nil, err
	}
	return func(deps screen.Deps) []screen.Handle { return entities.Remote(client, deps) }, nil
}
