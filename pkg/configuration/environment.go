package configuration

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/iota-uz/utils/fs"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/unionhall/leavehub/pkg/logging"
)

const Production = "production"

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		c.Unload()
		panic(err)
	}
	return c
})

// LoadEnv loads the given env files, walking up from the working directory to
// the repository root (the directory containing go.mod) so tests run from
// nested packages still pick up the project environment.
func LoadEnv(envFiles []string) (int, error) {
	existingFiles := resolveEnvFiles(envFiles)
	if len(existingFiles) == 0 {
		return 0, nil
	}
	return len(existingFiles), godotenv.Load(existingFiles...)
}

func resolveEnvFiles(envFiles []string) []string {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if fs.FileExists(file) {
			existing = append(existing, file)
		}
	}
	if len(existing) > 0 {
		return existing
	}

	root, ok := findModuleRoot()
	if !ok {
		return nil
	}
	for _, file := range envFiles {
		candidate := filepath.Join(root, file)
		if fs.FileExists(candidate) {
			existing = append(existing, candidate)
		}
	}
	return existing
}

func findModuleRoot() (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	for {
		if fs.FileExists(filepath.Join(dir, "go.mod")) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

type DatabaseOptions struct {
	Opts     string `env:"-"`
	Name     string `env:"DB_NAME" envDefault:"leavehub"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
}

func (d *DatabaseOptions) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Name, d.Password,
	)
}

// ImportOptions tunes the iCal import pipeline. The matcher thresholds are
// empirically tuned values; the defaults must stay in lockstep with years of
// legacy import behavior, so overrides exist for experimentation, not for
// routine operation.
type ImportOptions struct {
	// StrictDuplicates aborts preview building when a duplicate lookup
	// fails, instead of treating the item as not-a-duplicate.
	StrictDuplicates bool `env:"IMPORT_STRICT_DUPLICATES" envDefault:"false"`

	// CommonNameFloor / UncommonNameFloor are absolute confidence floors
	// for auto-matching when multiple roster candidates are returned.
	CommonNameFloor   int `env:"IMPORT_COMMON_NAME_FLOOR" envDefault:"85"`
	UncommonNameFloor int `env:"IMPORT_UNCOMMON_NAME_FLOOR" envDefault:"80"`

	// CommonNameMargin / UncommonNameMargin are the required leads over the
	// second-best candidate.
	CommonNameMargin   int `env:"IMPORT_COMMON_NAME_MARGIN" envDefault:"30"`
	UncommonNameMargin int `env:"IMPORT_UNCOMMON_NAME_MARGIN" envDefault:"25"`
}

type Configuration struct {
	Database DatabaseOptions
	Import   ImportOptions

	GoAppEnvironment string `env:"GO_APP_ENV" envDefault:"development"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"error"`
	LogPath          string `env:"LOG_PATH" envDefault:"./logs/app.log"`
	PageSize         int    `env:"PAGE_SIZE" envDefault:"25"`
	MaxPageSize      int    `env:"MAX_PAGE_SIZE" envDefault:"100"`

	logCloser io.Closer
	logger    *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.ErrorLevel
	}
}

func Use() *Configuration {
	return singleton()
}

func (c *Configuration) load(envFiles []string) error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return err
	}
	if n == 0 {
		log.Println("no .env files found, using OS environment")
	}

	if err := env.Parse(c); err != nil {
		return err
	}
	c.Database.Opts = c.Database.ConnectionString()

	closer, logger, err := logging.FileLogger(c.LogrusLogLevel(), c.LogPath)
	if err != nil {
		return err
	}
	c.logCloser = closer
	c.logger = logger
	return nil
}

func (c *Configuration) Unload() {
	if c.logCloser != nil {
		if err := c.logCloser.Close(); err != nil {
			log.Println(err)
		}
		c.logCloser = nil
	}
}
