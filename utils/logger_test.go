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

package utils

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLoggerReturnsSameInstance(t *testing.T) {
	a := NewLogger("REGISTRY_TEST")
	b := NewLogger("REGISTRY_TEST")
	if a != b {
		t.Fatal("NewLogger returned different instances for the same name")
	}
}

func TestNewLoggerLevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL_ENV_TEST", "debug")
	l := NewLogger("ENV_TEST")
	if l.GetLevel() != logrus.DebugLevel {
		t.Fatalf("level = %v, want debug", l.GetLevel())
	}
}

func TestSetLoggerLevel(t *testing.T) {
	l := NewLogger("LEVEL_TEST")
	SetLoggerLevel("LEVEL_TEST", "error")
	if l.GetLevel() != logrus.ErrorLevel {
		t.Fatalf("level = %v, want error", l.GetLevel())
	}

	// Unknown names and unparsable levels are ignored.
	SetLoggerLevel("NOT_REGISTERED", "debug")
	SetLoggerLevel("LEVEL_TEST", "loud")
	if l.GetLevel() != logrus.ErrorLevel {
		t.Fatalf("level changed unexpectedly: %v", l.GetLevel())
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want logrus.Level
		ok   bool
	}{
		{"trace", logrus.TraceLevel, true},
		{"DEBUG", logrus.DebugLevel, true},
		{" warn ", logrus.WarnLevel, true},
		{"warning", logrus.WarnLevel, true},
		{"error", logrus.ErrorLevel, true},
		{"", defaultConsoleLevel, false},
		{"loud", defaultConsoleLevel, false},
	}
	for _, c := range cases {
		got, ok := parseLevel(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("parseLevel(%q) = (%v, %v), want (%v, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("UTILS_TEST_STR", "value")
	if got := EnvDefaultString("UTILS_TEST_STR", "fallback"); got != "value" {
		t.Fatalf("EnvDefaultString = %s", got)
	}
	if got := EnvDefaultString("UTILS_TEST_UNSET", "fallback"); got != "fallback" {
		t.Fatalf("EnvDefaultString fallback = %s", got)
	}

	t.Setenv("UTILS_TEST_BOOL", "true")
	if !EnvDefaultBool("UTILS_TEST_BOOL", false) {
		t.Fatal("EnvDefaultBool did not parse true")
	}
	t.Setenv("UTILS_TEST_BOOL", "notabool")
	if EnvDefaultBool("UTILS_TEST_BOOL", false) {
		t.Fatal("EnvDefaultBool did not fall back on bad value")
	}
}
