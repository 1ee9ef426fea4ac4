// Package config reads the settings of the API server and the console from
// flags, falling back to environment variables and a .env file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New()

// Getenv looks up an environment variable. os.Getenv satisfies it.
type Getenv func(key string) string

// LoadDotEnv loads .env files into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// Server configures the reference API.
type Server struct {
	Port        int    `validate:"min=1,max=65535"`
	DatabaseURL string `validate:"required"`
	Seed        bool
}

// ParseServer parses the API server flags.
func ParseServer(args []string, getenv Getenv) (Server, error) {
	cfg := Server{
		Port:        8080,
		DatabaseURL: "file:opsconsole.db?_pragma=foreign_keys(1)",
	}
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.IntVar(&cfg.Port, "port", cfg.Port, "HTTP port (PORT)")
	fs.StringVar(&cfg.DatabaseURL, "db", cfg.DatabaseURL, "SQLite DSN (DATABASE_URL)")
	fs.BoolVar(&cfg.Seed, "seed", false, "load demo data on start (SEED_DEMO)")
	if err := fs.Parse(args); err != nil {
		return Server{}, err
	}

	env := fromEnv{fs: fs, getenv: getenv}
	env.int("port", "PORT", &cfg.Port)
	env.string("db", "DATABASE_URL", &cfg.DatabaseURL)
	env.bool("seed", "SEED_DEMO", &cfg.Seed)
	if env.err != nil {
		return Server{}, env.err
	}
	if err := validate.Struct(cfg); err != nil {
		return Server{}, fmt.Errorf("invalid server config: %w", err)
	}
	return cfg, nil
}

// Console configures the operations console.
type Console struct {
	APIURL     string `validate:"omitempty,url"`
	Demo       bool
	Port       int           `validate:"min=1,max=65535"`
	Actor      string        `validate:"required"`
	Role       string        `validate:"required"`
	PolicyFile string        `validate:"omitempty,file"`
	Timeout    time.Duration `validate:"gt=0"`
	PageSize   int           `validate:"min=1,max=100"`
}

// ParseConsole parses the console flags.
func ParseConsole(args []string, getenv Getenv) (Console, error) {
	cfg := Console{
		Port:     8090,
		Actor:    "console",
		Role:     "admin",
		Timeout:  10 * time.Second,
		PageSize: 100,
	}
	fs := flag.NewFlagSet("console", flag.ContinueOnError)
	fs.StringVar(&cfg.APIURL, "api", "", "base URL of the records API (API_URL)")
	fs.BoolVar(&cfg.Demo, "demo", false, "serve in-memory demo data instead of the API (CONSOLE_DEMO)")
	fs.IntVar(&cfg.Port, "port", cfg.Port, "console HTTP port (CONSOLE_PORT)")
	fs.StringVar(&cfg.Actor, "actor", cfg.Actor, "staff id sent as X-Actor (CONSOLE_ACTOR)")
	fs.StringVar(&cfg.Role, "role", cfg.Role, "role looked up in the policy (CONSOLE_ROLE)")
	fs.StringVar(&cfg.PolicyFile, "policy", "", "CUE role policy, embedded default if empty (POLICY_FILE)")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "API request timeout (API_TIMEOUT)")
	fs.IntVar(&cfg.PageSize, "page-size", cfg.PageSize, "records per list request (PAGE_SIZE)")
	if err := fs.Parse(args); err != nil {
		return Console{}, err
	}

	env := fromEnv{fs: fs, getenv: getenv}
	env.string("api", "API_URL", &cfg.APIURL)
	env.bool("demo", "CONSOLE_DEMO", &cfg.Demo)
	env.int("port", "CONSOLE_PORT", &cfg.Port)
	env.string("actor", "CONSOLE_ACTOR", &cfg.Actor)
	env.string("role", "CONSOLE_ROLE", &cfg.Role)
	env.string("policy", "POLICY_FILE", &cfg.PolicyFile)
	env.duration("timeout", "API_TIMEOUT", &cfg.Timeout)
	env.int("page-size", "PAGE_SIZE", &cfg.PageSize)
	if env.err != nil {
		return Console{}, env.err
	}
	if cfg.APIURL == "" && !cfg.Demo {
		return Console{}, errors.New("API URL required (use -api or API_URL env)")
	}
	if err := validate.Struct(cfg); err != nil {
		return Console{}, fmt.Errorf("invalid console config: %w", err)
	}
	return cfg, nil
}

// fromEnv fills values from the environment for flags that were not given
// on the command line. The first parse error sticks.
type fromEnv struct {
	fs     *flag.FlagSet
	getenv Getenv
	err    error
}

func (e *fromEnv) lookup(flagName, key string) (string, bool) {
	if e.err != nil || e.getenv == nil {
		return "", false
	}
	set := false
	e.fs.Visit(func(f *flag.Flag) {
		if f.Name == flagName {
			set = true
		}
	})
	if set {
		return "", false
	}
	v := e.getenv(key)
	return v, v != ""
}

func (e *fromEnv) string(flagName, key string, dst *string) {
	if v, ok := e.lookup(flagName, key); ok {
		*dst = v
	}
}

func (e *fromEnv) int(flagName, key string, dst *int) {
	if v, ok := e.lookup(flagName, key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.err = fmt.Errorf("invalid %s env variable: %w", key, err)
			return
		}
		*dst = n
	}
}

func (e *fromEnv) bool(flagName, key string, dst *bool) {
	if v, ok := e.lookup(flagName, key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.err = fmt.Errorf("invalid %s env variable: %w", key, err)
			return
		}
		*dst = b
	}
}

func (e *fromEnv) duration(flagName, key string, dst *time.Duration) {
	if v, ok := e.lookup(flagName, key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			e.err = fmt.Errorf("invalid %s env variable: %w", key, err)
			return
		}
		*dst = d
	}
}
