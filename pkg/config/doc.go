// Package config loads layered YAML configuration with environment
// variable substitution and optional hot reload.
//
// Configuration is assembled from ordered sources: later layers
// deep-merge over earlier ones, so a base file can ship defaults and a
// local override file can adjust a handful of keys.
//
// # Loading
//
// Declare sources with [Required] and [Optional] and decode into any
// yaml-tagged struct:
//
//	import "github.com/go-strada/strada/pkg/config"
//
//	type AppConfig struct {
//		Server struct {
//			Addr string `yaml:"addr"`
//		} `yaml:"server"`
//		Debug bool `yaml:"debug"`
//	}
//
//	var cfg AppConfig
//	err := config.Load(&cfg,
//		config.Required("config.yaml"),
//		config.Optional("config.local.yaml"),
//	)
//
// Mappings merge key by key across layers; scalars and sequences from
// later layers replace earlier values entirely. A missing Required file
// fails with [ErrNotFound]; missing Optional files are skipped.
//
// If the target implements [Validatable], validation runs after
// decoding and failures surface as [ErrValidation].
//
// # Environment Variables
//
// Values may reference the environment before parsing:
//
//	database:
//	  url: ${DATABASE_URL}
//	server:
//	  addr: ${SERVER_ADDR:-:8080}
//
// ${VAR} expands to the variable's value or the empty string; the
// ${VAR:-default} form falls back to the default when the variable is
// unset. "$$" escapes a literal dollar sign.
//
// # Hot Reload
//
// A [Watcher] invokes a callback after the file changes settle:
//
//	w, err := config.NewWatcher("config.yaml", func() {
//		var cfg AppConfig
//		if err := config.Load(&cfg, config.Required("config.yaml")); err != nil {
//			return
//		}
//		apply(cfg)
//	})
//	if err != nil {
//		// handle error
//	}
//	if err := w.Start(ctx); err != nil {
//		// handle error
//	}
//	defer w.Stop()
//
// Watcher options:
//   - [WithDebounce]: How long events settle before the callback fires (default: 100ms)
//   - [WithErrorHandler]: Route filesystem errors to a callback
//   - [WithLogger]: Logger for watch errors
package config
