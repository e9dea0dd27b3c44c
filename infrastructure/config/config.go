package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"github.com/ringnet/ringd/domain/consensus"
	"github.com/ringnet/ringd/domain/verificationscheduler"
	"github.com/ringnet/ringd/infrastructure/logger"
)

const (
	defaultLogLevel       = "info"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "ringd.log"
	defaultErrLogFilename = "ringd_err.log"
	defaultAppDirname     = ".ringd"

	defaultVerifiedTransactionCacheSize = 10_000
	defaultDatasetCacheSize             = 2
)

// Flags defines the configuration options for ringd.
//
// See LoadConfig for details on the configuration load process.
type Flags struct {
	AppDir   string `short:"b" long:"appdir" description:"Directory to store data"`
	LogDir   string `long:"logdir" description:"Directory to log output."`
	LogLevel string `short:"d" long:"loglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems"`

	ShowVersion bool   `short:"V" long:"version" description:"Display version information and exit"`
	Profile     string `long:"profile" description:"Serve profiling data and metrics on the given port -- NOTE port must be between 1024 and 65535"`

	Workers          int `long:"workers" description:"Number of verification workers (default: number of CPUs)"`
	QueueCapacity    int `long:"queue-capacity" description:"Maximum number of requests waiting for a worker"`
	MaxPendingBlocks int `long:"max-pending-blocks" description:"Maximum number of verified blocks waiting for their parent"`
	BatchSize        int `long:"batch-size" description:"Maximum number of transactions whose signatures are verified as one batch"`

	VerifiedTransactionCacheSize uint `long:"verified-tx-cache-size" description:"Number of transactions whose signatures are remembered as verified"`
	DatasetCacheSize             int  `long:"dataset-cache-size" description:"Number of proof-of-work datasets kept in memory"`

	NetworkFlags
}

// Config defines the configuration options for ringd.
type Config struct {
	*Flags
}

func defaultFlags() *Flags {
	appDir := defaultAppDirname
	homeDir, err := os.UserHomeDir()
	if err == nil {
		appDir = filepath.Join(homeDir, defaultAppDirname)
	}
	return &Flags{
		AppDir:                       appDir,
		LogLevel:                     defaultLogLevel,
		Workers:                      runtime.NumCPU(),
		QueueCapacity:                verificationscheduler.DefaultQueueCapacity,
		MaxPendingBlocks:             verificationscheduler.DefaultMaxPendingBlocks,
		BatchSize:                    verificationscheduler.DefaultBatchSize,
		VerifiedTransactionCacheSize: defaultVerifiedTransactionCacheSize,
		DatasetCacheSize:             defaultDatasetCacheSize,
	}
}

// LoadConfig initializes and parses the config using command line options.
//
// The above results in ringd functioning properly without any config settings
// while still allowing the user to override settings with command line
// options. Positional arguments are returned as remaining args.
func LoadConfig(args []string) (*Config, []string, error) {
	cfg := &Config{Flags: defaultFlags()}

	parser := flags.NewParser(cfg.Flags, flags.HelpFlag|flags.PassDoubleDash)
	remainingArgs, err := parser.ParseArgs(args)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to parse command line")
	}

	err = cfg.ResolveNetwork(parser)
	if err != nil {
		return nil, nil, err
	}

	err = cfg.validate()
	if err != nil {
		return nil, nil, err
	}

	if cfg.LogDir == "" {
		cfg.LogDir = filepath.Join(cfg.AppDir, defaultLogDirname, cfg.ActiveNetParams.Name)
	}

	err = logger.ParseAndSetLogLevels(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	return cfg, remainingArgs, nil
}

func (cfg *Config) validate() error {
	positive := []struct {
		name  string
		value int
	}{
		{"workers", cfg.Workers},
		{"queue-capacity", cfg.QueueCapacity},
		{"max-pending-blocks", cfg.MaxPendingBlocks},
		{"batch-size", cfg.BatchSize},
		{"dataset-cache-size", cfg.DatasetCacheSize},
	}
	for _, option := range positive {
		if option.value <= 0 {
			return errors.Errorf("%s must be positive, got %d", option.name, option.value)
		}
	}
	if cfg.VerifiedTransactionCacheSize == 0 {
		return errors.New("verified-tx-cache-size must be positive")
	}
	if cfg.Profile != "" {
		profilePort, err := strconv.Atoi(cfg.Profile)
		if err != nil || profilePort < 1024 || profilePort > 65535 {
			return errors.Errorf("the profile port must be between 1024 and 65535, got %s", cfg.Profile)
		}
	}
	return nil
}

// LogFile returns the path of the main log file
func (cfg *Config) LogFile() string {
	return filepath.Join(cfg.LogDir, defaultLogFilename)
}

// ErrLogFile returns the path of the log file holding warnings and errors
func (cfg *Config) ErrLogFile() string {
	return filepath.Join(cfg.LogDir, defaultErrLogFilename)
}

// DataDir returns the directory holding the chain state of the active network
func (cfg *Config) DataDir() string {
	return filepath.Join(cfg.AppDir, cfg.ActiveNetParams.Name, "chainstate")
}

// ConsensusConfig returns the consensus options selected by cfg. Collaborators
// are left for the caller to set.
func (cfg *Config) ConsensusConfig() *consensus.Config {
	return &consensus.Config{
		Params:                       cfg.ActiveNetParams,
		VerifiedTransactionCacheSize: cfg.VerifiedTransactionCacheSize,
		DatasetCacheSize:             cfg.DatasetCacheSize,
	}
}

// SchedulerConfig returns the verification scheduler options selected by cfg
func (cfg *Config) SchedulerConfig() verificationscheduler.Config {
	return verificationscheduler.Config{
		Workers:          cfg.Workers,
		QueueCapacity:    cfg.QueueCapacity,
		MaxPendingBlocks: cfg.MaxPendingBlocks,
		BatchSize:        cfg.BatchSize,
	}
}
