/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package pg

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	serrors "github.com/suparena/schemastore/errors"
)

// Store attribute names understood by the engine.
const (
	AttrPoolName          = "poolName"
	AttrJDBCURL           = "jdbcUrl"
	AttrUsername          = "username"
	AttrPassword          = "password"
	AttrSchema            = "schema"
	AttrAdvanced          = "advanced"
	AttrMaximumPoolSize   = "maximumPoolSize"
	AttrMinimumIdle       = "minimumIdle"
	AttrConnectionTimeout = "connectionTimeout"
	AttrIdleTimeout       = "idleTimeout"
	AttrMaxLifetime       = "maxLifetime"
)

// Properties returns the effective pool properties of a store: the pool
// name, the store attributes, then the advanced lines unflattened without
// overriding any key already present.
func Properties(storeName string, attrs map[string]string) map[string]string {
	props := map[string]string{AttrPoolName: storeName}
	for k, v := range attrs {
		props[k] = v
	}

	if advanced, ok := props[AttrAdvanced]; ok {
		delete(props, AttrAdvanced)
		for _, line := range strings.Split(strings.ReplaceAll(advanced, "\r\n", "\n"), "\n") {
			line = strings.TrimSpace(line)
			i := strings.IndexAny(line, "=:")
			if i <= 0 {
				continue
			}
			key, value := strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:])
			if key == "" || value == "" {
				continue
			}
			if _, exists := props[key]; !exists {
				props[key] = value
			}
		}
	}

	if strings.TrimSpace(props[AttrSchema]) == "" {
		delete(props, AttrSchema)
	}
	return props
}

// PoolConfig converts pool properties into a pgxpool configuration.
func PoolConfig(props map[string]string) (*pgxpool.Config, error) {
	url := strings.TrimPrefix(strings.TrimSpace(props[AttrJDBCURL]), "jdbc:")
	if url == "" {
		return nil, serrors.NewValidationError(AttrJDBCURL, "connection URL is required")
	}

	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, serrors.NewValidationError(AttrJDBCURL, err.Error())
	}

	if v := props[AttrUsername]; v != "" {
		cfg.ConnConfig.User = v
	}
	if v := props[AttrPassword]; v != "" {
		cfg.ConnConfig.Password = v
	}
	if v := props[AttrSchema]; v != "" {
		cfg.ConnConfig.RuntimeParams["search_path"] = v
	}
	if v := props[AttrPoolName]; v != "" {
		cfg.ConnConfig.RuntimeParams["application_name"] = v
	}

	if v, ok := props[AttrMaximumPoolSize]; ok {
		n, err := nonNegative(AttrMaximumPoolSize, v)
		if err != nil {
			return nil, err
		}
		cfg.MaxConns = n
	}
	if v, ok := props[AttrMinimumIdle]; ok {
		n, err := nonNegative(AttrMinimumIdle, v)
		if err != nil {
			return nil, err
		}
		cfg.MinConns = n
	}
	if cfg.MinConns > cfg.MaxConns {
		return nil, serrors.NewValidationError(AttrMinimumIdle,
			fmt.Sprintf("%d exceeds %s %d", cfg.MinConns, AttrMaximumPoolSize, cfg.MaxConns))
	}

	durations := []struct {
		key string
		set func(time.Duration)
	}{
		{AttrConnectionTimeout, func(d time.Duration) { cfg.ConnConfig.ConnectTimeout = d }},
		{AttrIdleTimeout, func(d time.Duration) { cfg.MaxConnIdleTime = d }},
		{AttrMaxLifetime, func(d time.Duration) { cfg.MaxConnLifetime = d }},
	}
	for _, d := range durations {
		v, ok := props[d.key]
		if !ok {
			continue
		}
		ms, err := nonNegative(d.key, v)
		if err != nil {
			return nil, err
		}
		d.set(time.Duration(ms) * time.Millisecond)
	}

	return cfg, nil
}

func nonNegative(key, value string) (int32, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 32)
	if err != nil || n < 0 {
		return 0, serrors.NewValidationError(key, fmt.Sprintf("%q is not a non-negative number", value))
	}
	return int32(n), nil
}
