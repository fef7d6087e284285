// Package config handles configuration loading for msu-mcp.
//
// # Overview
//
// Configuration comes from three layers, later layers winning:
//
//  1. Built-in defaults (Default)
//  2. An optional YAML or TOML file
//  3. MSU_* environment variables
//
// Load does not validate. Commands call ValidateForServe plus the
// transport-specific ValidateHTTP or ValidateNATS before starting.
//
// # Configuration File
//
// Locations (in order):
//
//  1. Path from MSU_MCP_CONFIG environment variable (must exist)
//  2. $XDG_CONFIG_HOME/msu-mcp/config.yaml
//  3. ~/.config/msu-mcp/config.yaml
//
// A missing default file is fine: MCP clients usually launch the server with
// credentials in the environment only. Files ending in .toml are parsed as
// TOML; anything else as YAML.
//
// # Environment Variable Expansion
//
// File values can reference environment variables:
//
//	merchant:
//	  password: "${MSU_PASSWORD_FROM_VAULT}"
//
// # Environment Overrides
//
// A variable that is set, even to an empty string, replaces the file value.
//
//	MSU_MERCHANT           merchant.merchant
//	MSU_MERCHANT_USER      merchant.user
//	MSU_MERCHANT_PASSWORD  merchant.password
//	MSU_API_URL            gateway.url
//	MSU_API_TIMEOUT        gateway.timeout
//	MSU_ERROR_CODES_FILE   gateway.error_codes_file
//	MSU_HTTP_ADDR          http.addr
//	MSU_JWT_SECRET         http.jwt_secret
//	MSU_NATS_URL           nats.url
//	MSU_LOG_LEVEL          logging.level
//	MSU_LOG_FORMAT         logging.format
//
// # Configuration Sections
//
//	gateway:
//	  url: "https://merchantsafeunipay.com/msu/api/v2"
//	  timeout: "60s"
//	  error_codes_file: "/etc/msu-mcp/codes.yaml"  # optional, replaces the built-in table
//
//	merchant:
//	  merchant: "..."
//	  user: "..."
//	  password: "..."
//
//	http:
//	  addr: "127.0.0.1:8080"
//	  jwt_secret: "${MSU_JWT_SECRET}"
//	  require_auth: false
//	  shutdown_timeout: "10s"
//	  session_ttl: "30m"     # idle sessions expire
//	  max_sessions: 1000     # least recently used evicted beyond this
//
//	nats:
//	  url: "nats://127.0.0.1:4222"
//	  subject: "msu.mcp"
//	  queue: ""
//	  name: "msu-mcp"
//	  request_timeout: "90s"
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text or json
//
// Duration values use Go's time.ParseDuration syntax.
package config
