package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

// resetViper clears all viper state between tests to avoid cross-contamination.
func resetViper() {
	viper.Reset()
}

func TestLoad_Defaults(t *testing.T) {
	resetViper()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"OutputDir", cfg.OutputDir, ""},
		{"MarkdownTemplates", cfg.MarkdownTemplates, ""},
		{"CSVDelimiter", cfg.CSVDelimiter, ","},
		{"HistoryDB", cfg.HistoryDB, DefaultHistoryPath()},
		{"Verbose", cfg.Verbose, false},
		{"Server.Addr", cfg.Server.Addr, ":8080"},
		{"Server.MaxUploadMB", cfg.Server.MaxUploadMB, int64(32)},
		{"Server.TemplateCache", cfg.Server.TemplateCache, 64},
		{"Watch.Debounce", cfg.Watch.Debounce, 200 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		field  func(Config) any
		want   any
	}{
		{
			name:   "output_dir",
			envKey: "USECASE_OUTPUT_DIR",
			envVal: "/tmp/out",
			field:  func(c Config) any { return c.OutputDir },
			want:   "/tmp/out",
		},
		{
			name:   "csv_delimiter",
			envKey: "USECASE_CSV_DELIMITER",
			envVal: ";",
			field:  func(c Config) any { return c.Delimiter() },
			want:   ';',
		},
		{
			name:   "server.addr",
			envKey: "USECASE_SERVER_ADDR",
			envVal: "127.0.0.1:9000",
			field:  func(c Config) any { return c.Server.Addr },
			want:   "127.0.0.1:9000",
		},
		{
			name:   "watch.debounce",
			envKey: "USECASE_WATCH_DEBOUNCE",
			envVal: "1s",
			field:  func(c Config) any { return c.Watch.Debounce },
			want:   time.Second,
		},
		{
			name:   "verbose",
			envKey: "USECASE_VERBOSE",
			envVal: "true",
			field:  func(c Config) any { return c.Verbose },
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper()
			BindEnv()
			t.Setenv(tt.envKey, tt.envVal)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() returned unexpected error: %v", err)
			}
			got := tt.field(cfg)
			if got != tt.want {
				t.Errorf("%s: got %v (%T), want %v (%T)", tt.name, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	resetViper()

	path := filepath.Join(t.TempDir(), ".usecase.yaml")
	content := "reference_dir: specs\nserver:\n  template_cache: 8\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.ReferenceDir != "specs" {
		t.Errorf("ReferenceDir = %q, want %q", cfg.ReferenceDir, "specs")
	}
	if cfg.Server.TemplateCache != 8 {
		t.Errorf("Server.TemplateCache = %d, want 8", cfg.Server.TemplateCache)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want default", cfg.Server.Addr)
	}
}

func TestDelimiter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want rune
	}{
		{"", ','},
		{",", ','},
		{";", ';'},
		{`\t`, '\t'},
		{"|x", '|'},
	}
	for _, tt := range tests {
		if got := (Config{CSVDelimiter: tt.in}).Delimiter(); got != tt.want {
			t.Errorf("Delimiter(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
