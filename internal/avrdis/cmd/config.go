package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Config is the optional JSON config file. Unset fields fall back to the
// flag defaults; flags given on the command line override it.
type Config struct {
	Overloads      *bool `json:"overloads,omitempty" jsonschema:"title=Overloads,description=Name pseudo-instructions such as lsl, clr, ser and breq"`
	Advanced       *bool `json:"advanced,omitempty" jsonschema:"title=Advanced,description=Print the effective configuration and every parsed record before the listing"`
	KeepGoing      *bool `json:"keepGoing,omitempty" jsonschema:"title=Keep Going,description=Continue with the next run after a decode error"`
	VerifyChecksum *bool `json:"verifyChecksum,omitempty" jsonschema:"title=Verify Checksum,description=Reject records whose checksum does not match"`
	NoColor        *bool `json:"noColor,omitempty" jsonschema:"title=No Color,description=Never colorize the listing"`
	Debug          *bool `json:"debug,omitempty" jsonschema:"title=Debug,description=Enable debug logging"`
}

// Settings is the effective configuration of one invocation.
type Settings struct {
	Overloads      bool
	Advanced       bool
	KeepGoing      bool
	VerifyChecksum bool
	NoColor        bool
	Debug          bool
}

// LoadConfig reads a config file. Unknown keys are an error.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// resolveSettings applies explicitly set flags, then cfg, then flag defaults.
func resolveSettings(cmd *cobra.Command, cfg Config) Settings {
	pick := func(flag string, fromFile *bool) bool {
		flags := cmd.Flags()
		if !flags.Changed(flag) && fromFile != nil {
			return *fromFile
		}
		v, _ := flags.GetBool(flag)
		return v
	}

	return Settings{
		Overloads:      pick("overloads", cfg.Overloads),
		Advanced:       pick("advanced", cfg.Advanced),
		KeepGoing:      pick("keep-going", cfg.KeepGoing),
		VerifyChecksum: pick("verify-checksum", cfg.VerifyChecksum),
		NoColor:        pick("no-color", cfg.NoColor),
		Debug:          pick("debug", cfg.Debug),
	}
}
