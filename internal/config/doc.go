// Package config loads runtime settings for the airsearch server and CLI.
//
// Settings are layered, later layers winning:
//
//  1. Built-in defaults (SQLite at ~/.airsearch/airports.db, 30m snapshot TTL)
//  2. A .env file in the working directory, if present
//  3. A YAML file passed to Load
//  4. AIRSEARCH_* environment variables
//
// Example YAML:
//
//	database:
//	  driver: mysql
//	  dsn: airsearch:secret@tcp(localhost:3306)/airports
//	cache:
//	  ttl: 15m
//	  lookup_size: 4096
//	metrics:
//	  addr: ":9090"
//	log:
//	  level: debug
package config
