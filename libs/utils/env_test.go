package utils

import (
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"testing"
)

func TestGetIntEnvVar(t *testing.T) {
	tests := map[string]struct {
		key      string
		fallback int
		value    string
		expect   int
	}{
		// happy path. env var is set
		"value": {key: "WEBP_QUALITY_TEST", expect: 75, fallback: 80, value: "75"},
		// env var is not set. fallback is returned
		"fallback": {key: "MAX_DIMENSION_TEST", expect: 900, fallback: 900},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if tc.value != "" {
				t.Setenv(tc.key, tc.value)
			}
			res := GetIntEnvVar(tc.key, tc.fallback)
			if !reflect.DeepEqual(tc.expect, res) {
				t.Fatalf("expected: %v, result: %v", tc.expect, res)
			}
		})
	}
}

func TestGetStrEnvVar(t *testing.T) {
	tests := map[string]struct {
		key      string
		fallback string
		value    string
		expect   string
	}{
		"value":    {key: "BUCKET_NAME_TEST", expect: "foo", fallback: "bar", value: "foo"},
		"fallback": {key: "BUCKET_PREFIX_TEST", expect: "bar", fallback: "bar"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if tc.value != "" {
				t.Setenv(tc.key, tc.value)
			}
			res := GetStrEnvVar(tc.key, tc.fallback)
			if !reflect.DeepEqual(tc.expect, res) {
				t.Fatalf("expected: %v, result: %v", tc.expect, res)
			}
		})
	}
}

func TestGetBoolEnvVar(t *testing.T) {
	tests := map[string]struct {
		key      string
		fallback bool
		value    bool
		expect   bool
	}{
		"value":    {key: "DRY_RUN_TEST", expect: true, fallback: false, value: true},
		"fallback": {key: "DEBUG_TEST", expect: true, fallback: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if tc.value {
				t.Setenv(tc.key, strconv.FormatBool(tc.value))
			}
			res := GetBoolEnvVar(tc.key, tc.fallback)
			if !reflect.DeepEqual(tc.expect, res) {
				t.Fatalf("expected: %v, result: %v", tc.expect, res)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	f := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(f, []byte("ASSETPUB_DOTENV_TEST=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ASSETPUB_DOTENV_TEST", "")
	os.Unsetenv("ASSETPUB_DOTENV_TEST")

	LoadDotEnv(f, filepath.Join(t.TempDir(), "missing.env"))

	if got := os.Getenv("ASSETPUB_DOTENV_TEST"); got != "from-file" {
		t.Fatalf("expected from-file, got %q", got)
	}
}
