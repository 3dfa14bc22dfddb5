// Package config loads, normalizes, and validates skknicheck configuration data.
//
// Values are layered: repository defaults, then the TOML file, then a .env
// file, then the process environment. The environment names match the
// long-standing deployment (SERPAPI_API_KEY, SHEET_KEY, GSHEETS_JSON,
// SMTP_HOST and friends) so existing cron setups keep working.
//
// Load performs structural validation only. Commands that talk to SerpAPI or
// a store call ValidateCredentials before doing any work so a missing secret
// fails the run at startup.
package config
