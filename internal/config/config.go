// Package config implements the Config & Bootstrap component (H,
// SPEC_FULL.md §4.8): a jessevdk/go-flags-parsed Config struct exposing
// every key in spec.md §6.3, grounded on
// daglabs-btcd/kasparov/kasparovd/config and daglabs-btcd/cmd/txgen/config.go's
// flags.NewParser(cfg, flags.PrintErrors|flags.HelpFlag) + post-parse
// validation idiom.
package config

import (
	"errors"

	"github.com/jessevdk/go-flags"
)

const (
	defaultMongoHost = "localhost"
	defaultMongoPort = "27017"
	defaultHTTPHost  = "0.0.0.0"
	defaultHTTPPort  = 8080
	defaultRPCHost   = "localhost"
	defaultRPCPort   = "13037"
)

// Config holds every configuration key from spec.md §6.3, plus the upstream
// node RPC endpoint spec.md §6.2 assumes is reachable.
type Config struct {
	MongoName     string `long:"mongo-name" description:"MongoDB database name" required:"true"`
	MongoHost     string `long:"mongo-host" description:"MongoDB host" default:"localhost"`
	MongoPort     string `long:"mongo-port" description:"MongoDB port" default:"27017"`
	MongoUser     string `long:"mongo-user" description:"MongoDB user"`
	MongoPassword string `long:"mongo-password" description:"MongoDB password"`

	HTTPHost string `long:"http-host" description:"HTTP listen host" default:"0.0.0.0"`
	HTTPPort int    `long:"http-port" description:"HTTP listen port" default:"8080"`

	APIKey string `long:"api-key" description:"Basic-auth password; loopback callers skip auth regardless"`
	NoAuth bool   `long:"no-auth" description:"Disable Basic auth entirely, even for non-loopback callers"`
	CORS   bool   `long:"cors" description:"Enable permissive CORS headers"`

	SSL     bool   `long:"ssl" description:"Serve HTTPS instead of HTTP"`
	SSLKey  string `long:"ssl-key" description:"Path to the TLS private key (required if --ssl)"`
	SSLCert string `long:"ssl-cert" description:"Path to the TLS certificate (required if --ssl)"`

	Prefix string `long:"prefix" description:"Working directory for logs and other on-disk state" default:"."`

	RPCHost     string `long:"rpc-host" description:"Upstream node RPC host" default:"localhost"`
	RPCPort     string `long:"rpc-port" description:"Upstream node RPC port" default:"13037"`
	RPCUser     string `long:"rpc-user" description:"Upstream node RPC username"`
	RPCPassword string `long:"rpc-password" description:"Upstream node RPC password"`

	Network string `long:"network" description:"Network name reported by /status and /summary" default:"main"`
}

// Parse parses CLI arguments into a Config, applying the cross-field
// validation spec.md §6.3's ssl/ssl-key/ssl-cert triple requires.
func Parse(args []string) (*Config, error) {
	cfg := &Config{}
	parser := flags.NewParser(cfg, flags.PrintErrors|flags.HelpFlag)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	if cfg.SSL && (cfg.SSLKey == "" || cfg.SSLCert == "") {
		return nil, errors.New("--ssl requires both --ssl-key and --ssl-cert")
	}
	if !cfg.SSL && (cfg.SSLKey != "" || cfg.SSLCert != "") {
		return nil, errors.New("--ssl-key/--ssl-cert require --ssl")
	}
	if cfg.NoAuth {
		cfg.APIKey = ""
	}

	return cfg, nil
}
