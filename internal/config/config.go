package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort         = 8080
	DefaultHost         = "127.0.0.1"
	DefaultLogLevel     = "info"
	DefaultMaxFileSize  = 100 * 1024 * 1024 // 100MB
	DefaultScale        = 1.2
	DefaultDownloadName = "newFile.pdf"
	DefaultRevokeDelay  = 1500 * time.Millisecond

	// Directory permissions
	DefaultDirPerm = 0o750

	// EnvPrefix prefixes every environment variable read by the configuration
	EnvPrefix = "MCP_PDF_FORM"
)

// Config holds all configuration for the PDF form MCP server
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Form configuration
	FormPath        string // replaces the bundled form when set
	OutputDirectory string
	Scale           float64
	DownloadName    string
	RevokeDelay     time.Duration

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum PDF file size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:            ModeStdio, // Default to stdio mode for MCP compatibility
		Host:            DefaultHost,
		Port:            DefaultPort,
		OutputDirectory: currentDir,
		Scale:           DefaultScale,
		DownloadName:    DefaultDownloadName,
		RevokeDelay:     DefaultRevokeDelay,
		Version:         "1.0.0",
		ServerName:      "mcp-pdf-form",
		LogLevel:        DefaultLogLevel,
		MaxFileSize:     DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	if cfg.OutputDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.OutputDirectory); err == nil {
			cfg.OutputDirectory = expandedPath
		}
	}
	if cfg.FormPath != "" {
		if expandedPath, err := filepath.Abs(cfg.FormPath); err == nil {
			cfg.FormPath = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("form", cfg.FormPath)
	viper.SetDefault("output", cfg.OutputDirectory)
	viper.SetDefault("scale", cfg.Scale)
	viper.SetDefault("downloadname", cfg.DownloadName)
	viper.SetDefault("revokedelay", cfg.RevokeDelay)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("form", cfg.FormPath, "PDF form to load instead of the bundled one")
	pflag.String("output", cfg.OutputDirectory, "Directory receiving saved forms")
	pflag.Float64("scale", cfg.Scale, "Page view scale")
	pflag.String("downloadname", cfg.DownloadName, "Default file name of saved forms")
	pflag.Duration("revokedelay", cfg.RevokeDelay, "How long a download URL stays valid")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range []string{
		"mode", "host", "port", "form", "output", "scale",
		"downloadname", "revokedelay", "loglevel", "maxfilesize",
	} {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nMCP PDF Form - A Model Context Protocol server filling a PDF form\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                          "+
			"# stdio mode, bundled form (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --form=/path/to/form.pdf --output=/tmp   "+
			"# custom form and output directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --host=0.0.0.0 --port=8081 # server on all interfaces\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  MCP_PDF_FORM_MODE         Server mode\n")
		fmt.Fprintf(os.Stderr, "  MCP_PDF_FORM_HOST         Server host\n")
		fmt.Fprintf(os.Stderr, "  MCP_PDF_FORM_PORT         Server port\n")
		fmt.Fprintf(os.Stderr, "  MCP_PDF_FORM_FORM         PDF form path\n")
		fmt.Fprintf(os.Stderr, "  MCP_PDF_FORM_OUTPUT       Output directory\n")
		fmt.Fprintf(os.Stderr, "  MCP_PDF_FORM_SCALE        Page view scale\n")
		fmt.Fprintf(os.Stderr, "  MCP_PDF_FORM_DOWNLOADNAME Default file name\n")
		fmt.Fprintf(os.Stderr, "  MCP_PDF_FORM_REVOKEDELAY  Download URL lifetime\n")
		fmt.Fprintf(os.Stderr, "  MCP_PDF_FORM_LOGLEVEL     Log level\n")
		fmt.Fprintf(os.Stderr, "  MCP_PDF_FORM_MAXFILESIZE  Maximum file size\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.FormPath = viper.GetString("form")
	cfg.OutputDirectory = viper.GetString("output")
	cfg.Scale = viper.GetFloat64("scale")
	cfg.DownloadName = viper.GetString("downloadname")
	cfg.RevokeDelay = viper.GetDuration("revokedelay")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Port only matters in server mode
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.OutputDirectory == "" {
		return errors.New("output directory cannot be empty")
	}

	if _, err := os.Stat(c.OutputDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.OutputDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create output directory %s: %w", c.OutputDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access output directory %s: %w", c.OutputDirectory, err)
	}

	if c.FormPath != "" {
		info, err := os.Stat(c.FormPath)
		if err != nil {
			return fmt.Errorf("cannot access form %s: %w", c.FormPath, err)
		}
		if info.IsDir() {
			return fmt.Errorf("form path is a directory: %s", c.FormPath)
		}
	}

	if c.Scale <= 0 {
		return errors.New("scale must be positive")
	}

	if c.DownloadName == "" || filepath.Base(c.DownloadName) != c.DownloadName {
		return fmt.Errorf("invalid download name: %q", c.DownloadName)
	}

	if c.RevokeDelay < 0 {
		return errors.New("revoke delay cannot be negative")
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, FormPath: %s, OutputDirectory: %s, "+
		"Scale: %g, DownloadName: %s, RevokeDelay: %s, LogLevel: %s, MaxFileSize: %d}",
		c.Mode, c.Host, c.Port, c.FormPath, c.OutputDirectory,
		c.Scale, c.DownloadName, c.RevokeDelay, c.LogLevel, c.MaxFileSize)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
