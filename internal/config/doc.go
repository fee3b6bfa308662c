// Package config provides configuration structures and utilities for burrow.
// It defines the connection settings used for Gopher requests, output
// preferences, and the optional .burrow file with defaults and bookmarks.
package config
