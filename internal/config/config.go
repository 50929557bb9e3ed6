package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/pelletier/go-toml/v2"
	"github.com/smazurov/keycolor/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// EnvPrefix is prepended to every `env` tag when reading environment variables.
const EnvPrefix = "KEYCOLOR_"

// LoadConfig fills opts, a pointer to a flat struct of `toml` and `env`
// tagged fields, from the config file named by its Config field and from
// KEYCOLOR_* environment variables. Precedence is CLI flag > env > TOML >
// the value already in opts; flags set on cmd are left alone. A missing
// config file is not an error. Values of the wrong type are skipped and
// reported together in the returned error.
func LoadConfig(opts any, cmd *cobra.Command) error {
	v := reflect.ValueOf(opts).Elem()
	t := v.Type()

	file, err := readTOML(configPath(v))
	if err != nil {
		return err
	}
	changed := changedFlags(cmd)

	var errs []error
	for i := range t.NumField() {
		sf := t.Field(i)
		if changed[fieldNameToFlag(sf.Name)] {
			continue
		}
		field := v.Field(i)

		if key := sf.Tag.Get("toml"); key != "" {
			if value := getNestedValue(file, key); value != nil {
				if err := setFieldValue(field, value); err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", key, err))
				}
			}
		}

		if key := sf.Tag.Get("env"); key != "" {
			if raw := os.Getenv(EnvPrefix + key); raw != "" {
				if err := setFieldValueFromString(field, raw); err != nil {
					errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				}
			}
		}
	}
	return errors.Join(errs...)
}

// changedFlags names the flags the user set explicitly.
func changedFlags(cmd *cobra.Command) map[string]bool {
	changed := make(map[string]bool)
	if cmd == nil {
		return changed
	}
	mark := func(f *pflag.Flag) {
		if f.Changed {
			changed[f.Name] = true
		}
	}
	cmd.Flags().VisitAll(mark)
	// humacli registers options as persistent flags on the root command
	cmd.PersistentFlags().VisitAll(mark)
	return changed
}

func configPath(v reflect.Value) string {
	if f := v.FieldByName("Config"); f.IsValid() && f.Kind() == reflect.String {
		return ExpandHome(f.String())
	}
	return ""
}

// readTOML parses the file at path. A blank path or a missing file yields
// a nil table.
func readTOML(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var table map[string]any
	if err := toml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return table, nil
}

// ExpandHome replaces a leading "~" with the current user's home directory.
// The path is returned unchanged when the home directory cannot be resolved.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// fieldNameToFlag converts a struct field name to a CLI flag name.
// Example: "LoggingLevel" -> "logging-level", "LoggingAPI" -> "logging-api".
func fieldNameToFlag(fieldName string) string {
	runes := []rune(fieldName)
	var result []rune
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				result = append(result, '-')
			}
		}
		result = append(result, unicode.ToLower(r))
	}
	return string(result)
}

// getNestedValue resolves a dotted path such as "server.listen" in a
// parsed TOML table.
func getNestedValue(data map[string]any, path string) any {
	parts := strings.Split(path, ".")
	table := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := table[part].(map[string]any)
		if !ok {
			return nil
		}
		table = next
	}
	return table[parts[len(parts)-1]]
}

// setFieldValue assigns a decoded TOML value to field.
func setFieldValue(field reflect.Value, value any) error {
	if !field.CanSet() {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		if s, ok := value.(string); ok {
			field.SetString(s)
			return nil
		}
	case reflect.Bool:
		if b, ok := value.(bool); ok {
			field.SetBool(b)
			return nil
		}
	case reflect.Int:
		switch n := value.(type) {
		case int64:
			field.SetInt(n)
			return nil
		case int:
			field.SetInt(int64(n))
			return nil
		}
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			break
		}
		if arr, ok := value.([]any); ok {
			items := make([]string, len(arr))
			for i, item := range arr {
				s, ok := item.(string)
				if !ok {
					return fmt.Errorf("expected list of strings, found %T", item)
				}
				items[i] = s
			}
			field.Set(reflect.ValueOf(items))
			return nil
		}
	}
	return fmt.Errorf("expected %s, found %T", field.Type(), value)
}

// setFieldValueFromString parses an environment value into field. Lists
// are comma separated.
func setFieldValueFromString(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("expected bool, found %q", value)
		}
		field.SetBool(b)
	case reflect.Int:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("expected integer, found %q", value)
		}
		field.SetInt(int64(n))
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported list type %s", field.Type())
		}
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		field.Set(reflect.ValueOf(parts))
	default:
		return fmt.Errorf("unsupported type %s", field.Type())
	}
	return nil
}

// LoadLoggingConfig reads the [logging] table: level and format keys, every
// other key a module level. Defaults are returned when the file is missing
// or unreadable so logging can start before LoadConfig reports why.
func LoadLoggingConfig(configPath string) logging.Config {
	cfg := logging.Config{
		Level:   "info",
		Format:  "text",
		Modules: make(map[string]string),
	}

	file, err := readTOML(ExpandHome(configPath))
	if err != nil {
		return cfg
	}
	table, _ := file["logging"].(map[string]any)
	for key, raw := range table {
		value, ok := raw.(string)
		if !ok {
			continue
		}
		switch key {
		case "level":
			cfg.Level = value
		case "format":
			cfg.Format = value
		default:
			cfg.Modules[key] = value
		}
	}
	return cfg
}
