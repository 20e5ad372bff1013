// Package config resolves runtime settings from flags, the environment and
// an optional .env file. Flags win over the environment, which wins over the
// built-in defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/erazemk/labshaker/internal/blob"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "LABSHAKER_"

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the resolved runtime configuration.
type Config struct {
	DBDriver    string
	DBPath      string
	PostgresDSN string
	Addr        string
	LogPath     string

	BlobDriver blob.Driver
	BlobDir    string
	S3         blob.S3Config

	CORSOrigins []string
	// LoginPerMinute and LoginBurst bound login attempts per client address.
	LoginPerMinute float64
	LoginBurst     int
}

// Usage is printed for -h.
const Usage = `Usage: labshaker [serve|backup|backups|restore <key>] [flags]

Flags:
  -d, -db <path>          SQLite database path (default: labshaker.sqlite3)
  -p, -postgres <dsn>     use Postgres at dsn instead of SQLite
  -a, -addr <host:port>   listen address (default: :8080)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -b, -blob-dir <path>    photo and backup directory (default: blobs)
  -h, -help               show this help and exit

Environment (also read from .env):
  LABSHAKER_DB_DRIVER, LABSHAKER_DB_PATH, LABSHAKER_POSTGRES_DSN, LABSHAKER_ADDR,
  LABSHAKER_LOG, LABSHAKER_BLOB_DRIVER (fs|s3), LABSHAKER_BLOB_DIR,
  LABSHAKER_S3_BUCKET, LABSHAKER_S3_REGION, LABSHAKER_S3_ENDPOINT,
  LABSHAKER_S3_PATH_STYLE, LABSHAKER_S3_ACCESS_KEY_ID, LABSHAKER_S3_SECRET_ACCESS_KEY,
  LABSHAKER_CORS_ORIGINS (comma separated), LABSHAKER_LOGIN_PER_MINUTE,
  LABSHAKER_LOGIN_BURST
`

// Load reads envFile (if it exists) into the process environment without
// overriding variables already set, then parses args. It returns
// flag.ErrHelp when help was requested.
func Load(args []string, envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	perMinute, err := envFloat("LOGIN_PER_MINUTE", 10)
	if err != nil {
		return Config{}, err
	}
	burst, err := envInt("LOGIN_BURST", 5)
	if err != nil {
		return Config{}, err
	}
	pathStyle, err := envBool("S3_PATH_STYLE", false)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBDriver:    env("DB_DRIVER", DriverSQLite),
		DBPath:      env("DB_PATH", "labshaker.sqlite3"),
		PostgresDSN: env("POSTGRES_DSN", ""),
		Addr:        env("ADDR", ":8080"),
		LogPath:     env("LOG", ""),
		BlobDriver:  blob.Driver(env("BLOB_DRIVER", string(blob.DriverFS))),
		BlobDir:     env("BLOB_DIR", "blobs"),
		S3: blob.S3Config{
			Bucket:          env("S3_BUCKET", ""),
			Region:          env("S3_REGION", ""),
			Endpoint:        env("S3_ENDPOINT", ""),
			PathStyle:       pathStyle,
			AccessKeyID:     env("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: env("S3_SECRET_ACCESS_KEY", ""),
		},
		CORSOrigins:    splitList(env("CORS_ORIGINS", "")),
		LoginPerMinute: perMinute,
		LoginBurst:     burst,
	}

	flags := flag.NewFlagSet("labshaker", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.StringVar(&cfg.DBPath, "db", cfg.DBPath, "")
	flags.StringVar(&cfg.DBPath, "d", cfg.DBPath, "")
	flags.StringVar(&cfg.PostgresDSN, "postgres", cfg.PostgresDSN, "")
	flags.StringVar(&cfg.PostgresDSN, "p", cfg.PostgresDSN, "")
	flags.StringVar(&cfg.Addr, "addr", cfg.Addr, "")
	flags.StringVar(&cfg.Addr, "a", cfg.Addr, "")
	flags.StringVar(&cfg.LogPath, "log", cfg.LogPath, "")
	flags.StringVar(&cfg.LogPath, "l", cfg.LogPath, "")
	flags.StringVar(&cfg.BlobDir, "blob-dir", cfg.BlobDir, "")
	flags.StringVar(&cfg.BlobDir, "b", cfg.BlobDir, "")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}
	if flags.NArg() > 0 {
		return Config{}, fmt.Errorf("unexpected argument: %s", flags.Arg(0))
	}

	// A DSN given on the command line selects Postgres.
	flags.Visit(func(f *flag.Flag) {
		if f.Name == "postgres" || f.Name == "p" {
			cfg.DBDriver = DriverPostgres
		}
	})

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.DBDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			return errors.New("database path required")
		}
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return errors.New("postgres driver needs " + EnvPrefix + "POSTGRES_DSN or -postgres")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.DBDriver)
	}

	switch c.BlobDriver {
	case blob.DriverFS:
		if c.BlobDir == "" {
			return errors.New("blob directory required")
		}
	case blob.DriverS3:
		if c.S3.Bucket == "" {
			return errors.New("s3 blob driver needs " + EnvPrefix + "S3_BUCKET")
		}
	case blob.DriverMemory:
	default:
		return fmt.Errorf("unknown blob driver %q", c.BlobDriver)
	}

	if c.LoginPerMinute <= 0 || c.LoginBurst <= 0 {
		return errors.New("login rate limit must be positive")
	}
	return nil
}

func env(key, def string) string {
	if v, ok := os.LookupEnv(EnvPrefix + key); ok {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok || v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	return f, nil
}

func envBool(key string, def bool) (bool, error) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok || v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	return b, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
