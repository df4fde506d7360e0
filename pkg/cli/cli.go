package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/dmdmdm-nz/linkmond/internal/rtnl"
	"github.com/dmdmdm-nz/linkmond/pkg/version"
)

var logLevels = []string{"trace", "debug", "info", "warn", "error"}

// Config holds the application configuration from CLI flags
type Config struct {
	Port         int
	Host         string
	LogLevel     string
	BufferSize   int
	SocketBuffer int
	Advertise    bool
	Instance     string
	ShowVersion  bool
}

// Parse parses args (without the program name) into a validated Config.
func Parse(args []string) (*Config, error) {
	cfg := &Config{}

	fs := flag.NewFlagSet("linkmond", flag.ContinueOnError)
	fs.IntVar(&cfg.Port, "port", 60107, "Port for the HTTP API (0 disables it)")
	fs.StringVar(&cfg.Host, "host", "127.0.0.1", "Host to bind to")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	fs.IntVar(&cfg.BufferSize, "buffer-size", rtnl.DefaultBufferSize, "Receive buffer for one netlink batch, in bytes")
	fs.IntVar(&cfg.SocketBuffer, "socket-buffer", 0, "Kernel socket receive buffer (SO_RCVBUF) in bytes, 0 keeps the default")
	fs.BoolVar(&cfg.Advertise, "advertise", false, "Advertise the API over mDNS")
	fs.StringVar(&cfg.Instance, "instance", "", "mDNS instance name (default \"linkmond on <hostname>\")")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range 0..65535", c.Port))
	}
	if c.BufferSize < rtnl.SizeofHeader {
		errs = append(errs, fmt.Errorf("buffer size %d is smaller than a netlink header (%d)", c.BufferSize, rtnl.SizeofHeader))
	}
	if c.SocketBuffer < 0 {
		errs = append(errs, fmt.Errorf("socket buffer %d must not be negative", c.SocketBuffer))
	}
	if !validLogLevel(c.LogLevel) {
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	if c.Advertise && c.Port == 0 {
		errs = append(errs, errors.New("advertise needs the API enabled (port > 0)"))
	}
	return errors.Join(errs...)
}

func validLogLevel(level string) bool {
	for _, l := range logLevels {
		if l == level {
			return true
		}
	}
	return false
}

// ParseFlags parses the process arguments and returns a Config. It exits for
// -version, -h and invalid flags.
func ParseFlags() *Config {
	cfg, err := Parse(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if cfg.ShowVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	return cfg
}

// String returns a string representation of the Config
func (c *Config) String() string {
	return fmt.Sprintf("Host: %s, Port: %d, LogLevel: %s, BufferSize: %d, SocketBuffer: %d, Advertise: %t, Instance: %q",
		c.Host, c.Port, c.LogLevel, c.BufferSize, c.SocketBuffer, c.Advertise, c.Instance)
}
