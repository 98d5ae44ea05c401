package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./loopauth.db" {
			t.Errorf("expected database path ./loopauth.db, got %s", config.Database.Path)
		}

		if config.Listener.Port != 0 {
			t.Errorf("expected listener port 0, got %d", config.Listener.Port)
		}

		if config.Listener.Path != "/" {
			t.Errorf("expected listener path /, got %s", config.Listener.Path)
		}

		if config.Provider.ClientID != "your_client_id" {
			t.Errorf("expected client_id your_client_id, got %s", config.Provider.ClientID)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `[listener]
port = 8765
path = "/callback"
timeout = "30s"

[provider]
auth_url = "https://accounts.example.com/o/oauth2/auth"
client_id = "test_client_id"
scopes = ["email"]

[database]
path = "/custom/path.db"

[log]
level = "debug"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Listener.Port != 8765 {
			t.Errorf("expected listener port 8765, got %d", config.Listener.Port)
		}
		if config.Listener.Path != "/callback" {
			t.Errorf("expected listener path /callback, got %s", config.Listener.Path)
		}
		if config.Provider.ClientID != "test_client_id" {
			t.Errorf("expected client_id test_client_id, got %s", config.Provider.ClientID)
		}
		if len(config.Provider.Scopes) != 1 || config.Provider.Scopes[0] != "email" {
			t.Errorf("expected scopes [email], got %v", config.Provider.Scopes)
		}

		timeout, err := config.Listener.WaitTimeout()
		if err != nil {
			t.Fatalf("unexpected timeout error: %v", err)
		}
		if timeout != 30*time.Second {
			t.Errorf("expected 30s timeout, got %v", timeout)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
			t.Fatal("expected error for missing file")
		}
	})

	t.Run("environment overrides file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[listener]\nport = 8765\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		t.Setenv("LOOPAUTH_PORT", "9876")
		t.Setenv("LOOPAUTH_SCOPES", "openid,email")

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Listener.Port != 9876 {
			t.Errorf("expected env port 9876, got %d", config.Listener.Port)
		}
		if len(config.Provider.Scopes) != 2 {
			t.Errorf("expected two scopes from env, got %v", config.Provider.Scopes)
		}
	})

	t.Run("invalid environment value", func(t *testing.T) {
		t.Setenv("LOOPAUTH_PORT", "not-a-port")

		err := ApplyEnv(DefaultConfig())
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("ApplyEnv nil config", func(t *testing.T) {
		if err := ApplyEnv(nil); !errors.Is(err, ErrNilArgument) {
			t.Errorf("expected ErrNilArgument, got %v", err)
		}
	})

	t.Run("SaveConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		config := DefaultConfig()
		config.Listener.Port = 4321

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to reload config: %v", err)
		}
		if loaded.Listener.Port != 4321 {
			t.Errorf("expected port 4321, got %d", loaded.Listener.Port)
		}

		if err := SaveConfig(configPath, nil); !errors.Is(err, ErrNilArgument) {
			t.Errorf("expected ErrNilArgument, got %v", err)
		}
	})

	t.Run("WaitTimeout", func(t *testing.T) {
		tc := []struct {
			name    string
			value   string
			want    time.Duration
			wantErr bool
		}{
			{name: "empty waits forever", value: "", want: 0},
			{name: "minutes", value: "2m", want: 2 * time.Minute},
			{name: "garbage", value: "soon", wantErr: true},
			{name: "negative", value: "-1s", wantErr: true},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				got, err := ListenerConfig{Timeout: tt.value}.WaitTimeout()
				if (err != nil) != tt.wantErr {
					t.Fatalf("WaitTimeout() error = %v, wantErr %v", err, tt.wantErr)
				}
				if got != tt.want {
					t.Errorf("WaitTimeout() = %v, want %v", got, tt.want)
				}
			})
		}
	})
}
