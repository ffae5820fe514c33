// Package config loads the chaincode configuration.
//
// Values come from built-in defaults, an optional YAML file and JOBLEDGER_*
// environment variables, in increasing order of precedence. Nested keys map
// to variables with dots replaced by underscores, e.g. workers.sampleFactor
// is JOBLEDGER_WORKERS_SAMPLEFACTOR.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// HelperMode selects how caller ids and timestamps are resolved.
type HelperMode string

const (
	// HelperModeChaincode calls the helper chaincode on the configured channel.
	HelperModeChaincode HelperMode = "chaincode"
	// HelperModeLocal reads the client identity and proposal timestamp in-process.
	HelperModeLocal HelperMode = "local"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "JOBLEDGER"

// Config is the full chaincode configuration.
type Config struct {
	Helper  HelperConfig
	Workers WorkersConfig
	DID     DIDConfig
	Log     LogConfig
	Server  ServerConfig
}

type HelperConfig struct {
	Mode      HelperMode
	Chaincode string
	Channel   string
}

type WorkersConfig struct {
	// SampleFactor widens the candidate sample before stride thinning.
	// 1 selects the strict stalest set.
	SampleFactor int
}

type DIDConfig struct {
	Method string
}

type LogConfig struct {
	// Spec is a flogging spec such as "info" or "jobledger.workers=debug:info".
	Spec string
}

// ServerConfig enables chaincode-as-a-service when both fields are set.
type ServerConfig struct {
	Address string
	CCID    string
}

// External reports whether the chaincode should run as an external service.
func (s ServerConfig) External() bool {
	return s.Address != "" && s.CCID != ""
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Helper: HelperConfig{
			Mode:      HelperModeChaincode,
			Chaincode: "helper",
			Channel:   "mychannel",
		},
		Workers: WorkersConfig{SampleFactor: 1},
		DID:     DIDConfig{Method: "jobledger"},
		Log:     LogConfig{Spec: "info"},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("helper.mode", string(d.Helper.Mode))
	v.SetDefault("helper.chaincode", d.Helper.Chaincode)
	v.SetDefault("helper.channel", d.Helper.Channel)
	v.SetDefault("workers.sampleFactor", d.Workers.SampleFactor)
	v.SetDefault("did.method", d.DID.Method)
	v.SetDefault("log.spec", d.Log.Spec)
	v.SetDefault("server.address", "")
	v.SetDefault("server.ccid", "")
}

// Load reads the configuration. path may be empty, in which case only
// defaults and environment variables apply.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
	}

	cfg := Config{
		Helper: HelperConfig{
			Mode:      HelperMode(strings.ToLower(strings.TrimSpace(v.GetString("helper.mode")))),
			Chaincode: v.GetString("helper.chaincode"),
			Channel:   v.GetString("helper.channel"),
		},
		Workers: WorkersConfig{SampleFactor: v.GetInt("workers.sampleFactor")},
		DID:     DIDConfig{Method: v.GetString("did.method")},
		Log:     LogConfig{Spec: v.GetString("log.spec")},
		Server: ServerConfig{
			Address: v.GetString("server.address"),
			CCID:    v.GetString("server.ccid"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values Load cannot default away.
func (c Config) Validate() error {
	switch c.Helper.Mode {
	case HelperModeChaincode:
		if c.Helper.Chaincode == "" || c.Helper.Channel == "" {
			return errors.New("helper.chaincode and helper.channel are required in chaincode mode")
		}
	case HelperModeLocal:
	default:
		return fmt.Errorf("invalid helper.mode '%s'. Valid modes: %s, %s", c.Helper.Mode, HelperModeChaincode, HelperModeLocal)
	}
	if c.Workers.SampleFactor < 1 {
		return fmt.Errorf("workers.sampleFactor must be at least 1, got %d", c.Workers.SampleFactor)
	}
	if strings.TrimSpace(c.DID.Method) == "" || strings.Contains(c.DID.Method, ":") {
		return fmt.Errorf("invalid did.method '%s'", c.DID.Method)
	}
	if (c.Server.Address == "") != (c.Server.CCID == "") {
		return errors.New("server.address and server.ccid must be set together")
	}
	return nil
}
