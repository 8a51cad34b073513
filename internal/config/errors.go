package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrUnsupportedGormEngine error if config db.gormEngine is neither mysql nor postgres.
	ErrUnsupportedGormEngine = errors.New("toml config db.gormEngine must be mysql or postgres")

	// ErrNegativeSnapshotTTL error if config authz.snapshotTTL is below zero.
	ErrNegativeSnapshotTTL = errors.New("toml config authz.snapshotTTL can not be negative")
)
