// Package config loads typed settings from environment variables, optionally
// seeded from .env files. It backs the container's SettingsLoader: every
// EnvironmentSettings type is populated through LoadInto with its declared
// prefix.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadEnvFiles reads the given .env files into the process environment.
// Missing files are not an error — production usually has none.
// Call once at bootstrap: config.LoadEnvFiles()
func LoadEnvFiles(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	_ = godotenv.Load(files...)
}

// LoadInto populates target (a pointer to struct) from environment variables
// scoped by prefix. Each exported field carries an `env` tag naming its
// variable; the full key is PREFIX_NAME. A `default` tag supplies the value
// when the variable is unset. Untagged fields are left alone.
//
//	type MailSettings struct {
//	    Host    string        `env:"HOST" default:"localhost"`
//	    Port    int           `env:"PORT" default:"587"`
//	    Secure  bool          `env:"SECURE" default:"true"`
//	    Timeout time.Duration `env:"TIMEOUT" default:"10s"`
//	}
//	err := config.LoadInto("MAIL", &settings)   // reads MAIL_HOST, MAIL_PORT, ...
func LoadInto(prefix string, target any) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("config: LoadInto needs a pointer to struct, got %T", target)
	}
	return loadStruct(prefix, v.Elem())
}

func loadStruct(prefix string, v reflect.Value) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		// Embedded/nested structs recurse with the same prefix (or a nested
		// one when the field carries an env tag of its own).
		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Duration(0)) {
			nested := prefix
			if tag, ok := field.Tag.Lookup("env"); ok {
				nested = prefix + "_" + tag
			}
			if err := loadStruct(nested, v.Field(i)); err != nil {
				return err
			}
			continue
		}

		tag, ok := field.Tag.Lookup("env")
		if !ok {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "_" + tag
		}
		raw := os.Getenv(key)
		if raw == "" {
			raw = field.Tag.Get("default")
		}
		if raw == "" {
			continue
		}

		if err := setField(v.Field(i), raw); err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
	}
	return nil
}

func setField(f reflect.Value, raw string) error {
	switch f.Kind() {
	case reflect.String:
		f.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		f.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if f.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(raw)
			if err != nil {
				return err
			}
			f.SetInt(int64(d))
			return nil
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		f.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return err
		}
		f.SetUint(n)
	case reflect.Float32, reflect.Float64:
		x, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		f.SetFloat(x)
	default:
		return fmt.Errorf("unsupported field kind %s", f.Kind())
	}
	return nil
}

// ── Raw helpers ───────────────────────────────────────────────────────────────

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}
