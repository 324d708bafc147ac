package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/moonbuggy/watcher3-api-adapter/pkg/logger"
)

// ConfigFileName is the default config file searched for when -c is not given.
const ConfigFileName = "watcher3-api-adapter.conf"

// configSearchDirs are checked in order when no config file is specified.
var configSearchDirs = []string{"", "/etc", "/conf"}

// Config carries every adapter setting. It is built once at startup and never
// mutated afterwards; components receive it explicitly.
type Config struct {
	ListenIP   string
	ListenPort int

	Watcher3Host      string
	Watcher3Port      int
	Watcher3Scheme    string
	Watcher3APIKey    string
	Watcher3SSLCert   string
	Watcher3SSLVerify bool

	Debug bool

	// ReadyFD is the file descriptor to signal readiness on, -1 when disabled.
	ReadyFD int
}

// Values is a partial configuration record keyed by config-file key. Defaults,
// the config file and the command line each produce one; Merge folds them into
// a single canonical record before Config is built.
type Values map[string]string

// Defaults returns the baseline configuration record.
func Defaults() Values {
	return Values{
		"ip":                  "0.0.0.0",
		"port":                "8080",
		"watcher3_host":       "",
		"watcher3_port":       "80",
		"watcher3_scheme":     "http",
		"watcher3_apikey":     "",
		"watcher3_ssl_cert":   "",
		"watcher3_ssl_verify": "true",
		"debug":               "false",
		"ready_fd":            "",
	}
}

// Merge overlays overlay onto base, returning a new record. Keys present in
// overlay win.
func Merge(base, overlay Values) Values {
	merged := make(Values, len(base)+len(overlay))
	for key, value := range base {
		merged[key] = value
	}
	for key, value := range overlay {
		merged[key] = value
	}
	return merged
}

// Load builds the canonical Config from defaults, an optional config file and
// command-line arguments, in ascending precedence.
func Load(args []string) (*Config, error) {
	flagValues, configFile, err := parseFlags(args)
	if err != nil {
		return nil, err
	}

	fileValues, err := readConfigFile(configFile)
	if err != nil {
		return nil, err
	}

	merged := Merge(Merge(Defaults(), fileValues), flagValues)
	return fromValues(merged)
}

// parseFlags parses command-line arguments into a partial record containing
// only the flags that were explicitly set. Every config-file key has a
// matching flag.
func parseFlags(args []string) (Values, string, error) {
	fs := flag.NewFlagSet("watcher3-api-adapter", flag.ContinueOnError)

	var configFile string
	fs.StringVar(&configFile, "c", "", "external configuration file")
	fs.StringVar(&configFile, "config-file", "", "external configuration file")

	flags := map[string]*string{}
	stringFlag := func(short, long, key, usage string) {
		value := new(string)
		if short != "" {
			fs.StringVar(value, short, "", usage)
		}
		fs.StringVar(value, long, "", usage)
		if short != "" {
			flags[short] = value
		}
		flags[long] = value
	}

	stringFlag("i", "ip", "ip", "ip to listen on")
	stringFlag("p", "port", "port", "port to listen on")
	stringFlag("w", "watcher3-host", "watcher3_host", "Watcher3 host")
	stringFlag("P", "watcher3-port", "watcher3_port", "Watcher3 port")
	stringFlag("s", "watcher3-scheme", "watcher3_scheme", "Watcher3 scheme (http or https)")
	stringFlag("k", "watcher3-apikey", "watcher3_apikey", "Watcher3 apikey")
	stringFlag("C", "watcher3-ssl-cert", "watcher3_ssl_cert", "Watcher3 SSL certificate path")
	stringFlag("S", "watcher3-ssl-verify", "watcher3_ssl_verify", "Watcher3 SSL verification (true or false)")
	stringFlag("", "ready-fd", "ready_fd", "file descriptor to signal readiness on")

	debug := fs.Bool("debug", false, "turn on debug messaging")

	if err := fs.Parse(args); err != nil {
		return nil, "", err
	}

	flagKeys := map[string]string{
		"i": "ip", "ip": "ip",
		"p": "port", "port": "port",
		"w": "watcher3_host", "watcher3-host": "watcher3_host",
		"P": "watcher3_port", "watcher3-port": "watcher3_port",
		"s": "watcher3_scheme", "watcher3-scheme": "watcher3_scheme",
		"k": "watcher3_apikey", "watcher3-apikey": "watcher3_apikey",
		"C": "watcher3_ssl_cert", "watcher3-ssl-cert": "watcher3_ssl_cert",
		"S": "watcher3_ssl_verify", "watcher3-ssl-verify": "watcher3_ssl_verify",
		"ready-fd": "ready_fd",
	}

	values := Values{}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "debug" {
			values["debug"] = strconv.FormatBool(*debug)
			return
		}
		key, known := flagKeys[f.Name]
		if !known {
			return
		}
		if value := flags[f.Name]; value != nil {
			values[key] = *value
		}
	})

	return values, configFile, nil
}

// readConfigFile loads key=value pairs from the config file. A missing file is
// not an error unless the path was given explicitly.
func readConfigFile(path string) (Values, error) {
	explicit := path != ""
	if !explicit {
		path = findConfigFile()
	}

	if path == "" {
		logger.Info("No config file found.")
		return Values{}, nil
	}

	if _, err := os.Stat(path); err != nil {
		if explicit {
			return nil, fmt.Errorf("config file %s does not exist", path)
		}
		return Values{}, nil
	}

	parsed, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	logger.Info("Found config file: %s", path)

	values := Values{}
	defaults := Defaults()
	for key, value := range parsed {
		if _, known := defaults[key]; !known {
			logger.Warn("Ignoring unknown config key: %s", key)
			continue
		}
		values[key] = value
	}
	return values, nil
}

// findConfigFile searches the standard locations for the default config file.
func findConfigFile() string {
	dirs := configSearchDirs
	if executable, err := os.Executable(); err == nil {
		dirs = append([]string{filepath.Dir(executable)}, dirs[1:]...)
	}

	for _, dir := range dirs {
		candidate := filepath.Join(dir, ConfigFileName)
		logger.Debug("Looking for config file: %s", candidate)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// fromValues parses a canonical record into a validated Config.
func fromValues(values Values) (*Config, error) {
	cfg := &Config{
		ListenIP:        values["ip"],
		Watcher3Host:    values["watcher3_host"],
		Watcher3Scheme:  values["watcher3_scheme"],
		Watcher3APIKey:  values["watcher3_apikey"],
		Watcher3SSLCert: values["watcher3_ssl_cert"],
		ReadyFD:         -1,
	}

	var err error
	if cfg.ListenPort, err = parsePort(values["port"]); err != nil {
		return nil, fmt.Errorf("invalid listen port: %w", err)
	}
	if cfg.Watcher3Port, err = parsePort(values["watcher3_port"]); err != nil {
		return nil, fmt.Errorf("invalid Watcher3 port: %w", err)
	}

	if cfg.Watcher3SSLVerify, err = strconv.ParseBool(values["watcher3_ssl_verify"]); err != nil {
		return nil, fmt.Errorf("invalid watcher3_ssl_verify value %q", values["watcher3_ssl_verify"])
	}
	if cfg.Debug, err = strconv.ParseBool(values["debug"]); err != nil {
		return nil, fmt.Errorf("invalid debug value %q", values["debug"])
	}

	if raw := values["ready_fd"]; raw != "" {
		fd, err := strconv.Atoi(raw)
		if err != nil || fd < 0 {
			return nil, fmt.Errorf("invalid ready_fd value %q", raw)
		}
		cfg.ReadyFD = fd
	}

	if cfg.Watcher3Host == "" {
		return nil, fmt.Errorf("no Watcher3 host configured")
	}
	if cfg.Watcher3Scheme != "http" && cfg.Watcher3Scheme != "https" {
		return nil, fmt.Errorf("invalid Watcher3 scheme %q, must be http or https", cfg.Watcher3Scheme)
	}

	return cfg, nil
}

func parsePort(raw string) (int, error) {
	port, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("%d out of range", port)
	}
	return port, nil
}

// ListenAddr returns the address the adapter should bind to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.ListenIP, c.ListenPort)
}
