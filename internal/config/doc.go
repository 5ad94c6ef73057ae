// Package config loads storefront client settings.
//
// Precedence, lowest first: DefaultConfig, the YAML file, the dotenv file,
// the process environment (STOREFRONT_*), then CLI flags (applied by the
// caller). Unknown YAML keys are rejected so typos surface immediately.
//
// Example file:
//
//	api:
//	  base_url: https://shop.example.com/api
//	  timeout: 15s
//	  rate_limit: 5
//	  rate_burst: 10
//	session_path: /var/lib/storefront/session.db
//	format: json
package config
