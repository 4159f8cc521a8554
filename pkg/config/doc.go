/*
Package config defines the service configuration for Kiln.

Configuration is resolved once at startup from three layers, each
overriding the previous: built-in defaults, an optional YAML file, and
KILN_-prefixed environment variables. The resulting Config is validated
and then treated as immutable; components receive it by injection rather
than reading globals.

# Architecture

	┌─────────────────── CONFIG RESOLUTION ─────────────────────┐
	│                                                            │
	│  ┌────────────────┐                                        │
	│  │   Defaults     │  Default()                             │
	│  └───────┬────────┘                                        │
	│          ▼                                                 │
	│  ┌────────────────┐                                        │
	│  │   YAML file    │  --config kiln.yaml (optional)         │
	│  └───────┬────────┘                                        │
	│          ▼                                                 │
	│  ┌────────────────┐                                        │
	│  │  Environment   │  KILN_PORT, KILN_PACKAGES_DIR, ...     │
	│  └───────┬────────┘                                        │
	│          ▼                                                 │
	│  ┌────────────────┐                                        │
	│  │   Validate()   │  reject inconsistent limits            │
	│  └───────┬────────┘                                        │
	│          ▼                                                 │
	│     immutable *Config injected into components             │
	└───────────────────────────────────────────────────────────┘

# Options

Server:

	host                  0.0.0.0      bind address
	port                  8000         bind port
	debug                 false        debug logging + call sites

Execution limits:

	max_time_limit        300.0        ceiling for requested wall clock (s)
	default_time_limit    30.0         applied when a request omits it
	max_memory_limit      2048         ceiling for requested memory (MB)
	default_memory_limit  128          applied when a request omits it

File limits:

	max_file_size         1 MiB        per request file
	max_total_files_size  5 MiB        per request aggregate
	max_files_count       10           files per request

Output limits:

	max_output_size       256 KiB      stdout capture cap
	max_stderr_size       256 KiB      stderr capture cap

Runtime and sandbox:

	packages_dir          /packages    runtime package tree root
	use_bubblewrap        true         false forces direct mode

Logging:

	log_level             info         debug/info/warn/error
	log_json              false        JSON lines vs console

Hard floors (not configurable): time limits below 0.1s and memory limits
below 32 MB are rejected at validation, both for the config defaults and
for individual requests.

# Usage

Loading:

	cfg, err := config.Load("/etc/kiln/kiln.yaml") // path may be ""
	if err != nil {
		return err
	}

YAML file:

	port: 9000
	packages_dir: /opt/runtimes
	max_output_size: 65536
	use_bubblewrap: true

Environment:

	KILN_PORT=9000 KILN_DEBUG=1 kiln serve

Booleans accept 1/0, true/false, yes/no, on/off. Malformed numeric
environment values are ignored rather than fatal, keeping a typo from
taking the service down with a confusing error at a distance.

# Validation Rules

Validate rejects configurations where:

  - the port is outside 1-65535
  - a default limit exceeds its corresponding maximum
  - a maximum sits below the hard floor
  - any file or output limit is non-positive
  - a single file may be larger than the aggregate budget
  - packages_dir is empty

The same Config drives request validation in pkg/types, so a request can
never be admitted that the service could not honor.

# Integration Points

This package integrates with:

  - cmd/kiln: loads config, applies flag overrides, re-validates
  - pkg/types: request normalization and limit checks
  - pkg/api: listen address, body bounds, service identity
  - pkg/executor: output caps passed to the supervisor
  - pkg/sandbox: packages_dir and use_bubblewrap

# Troubleshooting

Service refuses to start with a limit error:
  - The error names the offending option (or, for the file and output
    limits, the group of limits) and, for the time and memory defaults,
    the allowed range; fix the YAML or environment value it names

Environment override has no effect:
  - Check: exact variable name (KILN_ prefix, upper snake case)
  - Check: numeric values parse; malformed numbers are ignored

File and flag disagree:
  - Precedence is defaults < file < environment < CLI flags; the last
    writer wins

# Design Patterns

One struct, explicit validation:
  - The configuration is a typed struct, not a string map; unknown YAML
    keys are ignored by the decoder and unknown environment variables
    simply never match
  - Validation runs once, after all layers; partial configurations are
    never observable

Injection over globals:
  - There is no package-level settings instance; cmd/kiln constructs
    the Config and hands it to each component, so tests build their own
    without environment gymnastics

Tolerant environment parsing:
  - Malformed numeric env values are skipped, not fatal; the validated
    result still has to pass the same consistency rules either way

# Complete Example

	// /etc/kiln/kiln.yaml
	// port: 9000
	// packages_dir: /opt/runtimes
	// max_time_limit: 60
	// default_time_limit: 10

	cfg, err := config.Load("/etc/kiln/kiln.yaml")
	if err != nil {
		log.Fatal(err.Error())
	}
	fmt.Println(cfg.ListenAddr())       // 0.0.0.0:9000
	fmt.Println(cfg.DefaultTimeLimit)   // 10
	fmt.Println(cfg.MaxOutputSize)      // 262144 (default retained)

	// KILN_PORT=9100 would override the file; a later --port flag
	// override in cmd/kiln wins over both and is re-validated.

# Operational Notes

The configuration is read once at startup; changing limits requires a
restart, which also re-probes jail capability. Keeping default_time_limit
well below max_time_limit preserves a "generous ceiling, frugal default"
posture: clients who need long runs ask explicitly, everyone else stays
cheap by default.

# See Also

  - gopkg.in/yaml.v3: https://pkg.go.dev/gopkg.in/yaml.v3
  - cmd/kiln: flag surface and startup order
  - pkg/types: the request-side enforcement of these limits
*/
package config
