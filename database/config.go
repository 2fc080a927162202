/*
 * Copyright 2025 geekmidas.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ConnectionConfig describes how to connect to a database and tune its pool.
type ConnectionConfig struct {
	Type            string        `yaml:"type"` // postgres, mysql, sqlite
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Username        string        `yaml:"username"`
	Password        string        `yaml:"password"`
	DBName          string        `yaml:"dbname"`
	SSLMode         string        `yaml:"sslmode"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	EnableQueryLog  bool          `yaml:"enable_query_log"`
	SlowQueryTime   time.Duration `yaml:"slow_query_time"`
}

// SessionConfig controls transaction-scoped session variable injection.
type SessionConfig struct {
	// Prefix namespaces variable names; empty means DefaultSessionPrefix.
	// The orchestrator picks it up through NewOrchestratorFromConfig.
	Prefix string `yaml:"prefix"`
}

// Config aggregates connection and session settings for one declared
// database service.
type Config struct {
	// Service is the declared name of this database service. The
	// orchestrator compares declared names to decide whether business and
	// audit writes may share one transaction.
	Service string `yaml:"service"`

	ConnectionConfig ConnectionConfig `yaml:"connection"`
	SessionConfig    SessionConfig    `yaml:"session"`
}

// DefaultConnectionConfig returns a connection config with sensible defaults.
func DefaultConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: time.Minute * 30,
		ConnectTimeout:  time.Second * 10,
		ReadTimeout:     time.Second * 30,
		WriteTimeout:    time.Second * 30,
		EnableQueryLog:  false,
		SlowQueryTime:   time.Second * 2,
	}
}

// LoadConfig reads a YAML configuration file into a Config, filling unset
// pool settings from the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	defaults := DefaultConnectionConfig()
	if cfg.ConnectionConfig.MaxIdleConns == 0 {
		cfg.ConnectionConfig.MaxIdleConns = defaults.MaxIdleConns
	}
	if cfg.ConnectionConfig.MaxOpenConns == 0 {
		cfg.ConnectionConfig.MaxOpenConns = defaults.MaxOpenConns
	}
	if cfg.ConnectionConfig.ConnMaxLifetime == 0 {
		cfg.ConnectionConfig.ConnMaxLifetime = defaults.ConnMaxLifetime
	}
	if cfg.ConnectionConfig.ConnMaxIdleTime == 0 {
		cfg.ConnectionConfig.ConnMaxIdleTime = defaults.ConnMaxIdleTime
	}
	if cfg.ConnectionConfig.ConnectTimeout == 0 {
		cfg.ConnectionConfig.ConnectTimeout = defaults.ConnectTimeout
	}
	if cfg.ConnectionConfig.SlowQueryTime == 0 {
		cfg.ConnectionConfig.SlowQueryTime = defaults.SlowQueryTime
	}
	return &cfg, nil
}
