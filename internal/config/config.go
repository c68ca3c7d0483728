package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config/config.yaml"

type ServerConfig struct {
	Port        int      `yaml:"port"`
	Mode        string   `yaml:"mode"`
	CORSOrigins []string `yaml:"cors_origins"`
	Timezone    string   `yaml:"timezone"`
}

type DatabaseConfig struct {
	DSN string `yaml:"url"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// SheetNames are the partition names inside the spreadsheet.
type SheetNames struct {
	Office        string `yaml:"office"`
	Site          string `yaml:"site"`
	Scoring       string `yaml:"scoring"`
	UniqueTask    string `yaml:"unique_task"`
	Checklist     string `yaml:"checklist"`
	ChecklistDone string `yaml:"checklist_done"`
	Delegation    string `yaml:"delegation"`
	Master        string `yaml:"master"`
	WorkingDays   string `yaml:"working_days"`
}

type SheetsConfig struct {
	ScriptURL         string        `yaml:"script_url"`
	SpreadsheetID     string        `yaml:"spreadsheet_id"`
	ExportBaseURL     string        `yaml:"export_base_url"`
	DriveFolderID     string        `yaml:"drive_folder_id"`
	Timeout           time.Duration `yaml:"timeout"`
	DispatchBatchSize int           `yaml:"dispatch_batch_size"`
	DryRun            bool          `yaml:"dry_run"`
	Names             SheetNames    `yaml:"names"`
}

type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
	FromEmail    string `yaml:"from_email"`
}

type TelegramConfig struct {
	Token  string `yaml:"token"`
	DryRun bool   `yaml:"dry_run"`
}

// Recipient is where assignment notices for one doer go.
type Recipient struct {
	Email          string `yaml:"email"`
	TelegramChatID int64  `yaml:"telegram_chat_id"`
}

type FilesConfig struct {
	ReportDir string `yaml:"report_dir"`
	FontPath  string `yaml:"font_path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type Config struct {
	Server   ServerConfig         `yaml:"server"`
	Database DatabaseConfig       `yaml:"database"`
	Auth     AuthConfig           `yaml:"auth"`
	Sheets   SheetsConfig         `yaml:"sheets"`
	Email    EmailConfig          `yaml:"email"`
	Telegram TelegramConfig       `yaml:"telegram"`
	Notify   map[string]Recipient `yaml:"notify"`
	Files    FilesConfig          `yaml:"files"`
	Log      LogConfig            `yaml:"log"`
}

// Load reads .env, the yaml file at path, then SHEETDESK_* overrides, and
// validates the result. A missing file leaves the defaults in place.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("open %s: %w", path, err)
		default:
			defer f.Close()
			if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad panics when the config cannot be loaded.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}
	return cfg
}

func Default() *Config {
	cfg := &Config{}
	cfg.fillDefaults()
	return cfg
}

func (c *Config) fillDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 4000
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if c.Server.Timezone == "" {
		c.Server.Timezone = "UTC"
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
	if c.Sheets.ExportBaseURL == "" {
		c.Sheets.ExportBaseURL = "https://docs.google.com/spreadsheets/d"
	}
	if c.Sheets.Timeout == 0 {
		c.Sheets.Timeout = 30 * time.Second
	}
	if c.Sheets.DispatchBatchSize == 0 {
		c.Sheets.DispatchBatchSize = 5
	}
	n := &c.Sheets.Names
	setDefault(&n.Office, "ATTENDANCE")
	setDefault(&n.Site, "SITE ATTENDANCE")
	setDefault(&n.Scoring, "Scoring")
	setDefault(&n.UniqueTask, "Unique Task")
	setDefault(&n.Checklist, "Checklist")
	setDefault(&n.ChecklistDone, "Checklist Done")
	setDefault(&n.Delegation, "DELEGATION")
	setDefault(&n.Master, "master")
	setDefault(&n.WorkingDays, "Working Day Calendar")
	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}
	if c.Files.ReportDir == "" {
		c.Files.ReportDir = "./files/reports"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

func setDefault(s *string, v string) {
	if *s == "" {
		*s = v
	}
}

func (c *Config) applyEnv() {
	overrideString(&c.Auth.JWTSecret, "SHEETDESK_JWT_SECRET")
	overrideString(&c.Database.DSN, "SHEETDESK_DATABASE_URL")
	overrideString(&c.Sheets.ScriptURL, "SHEETDESK_SCRIPT_URL")
	overrideString(&c.Sheets.SpreadsheetID, "SHEETDESK_SPREADSHEET_ID")
	overrideString(&c.Sheets.DriveFolderID, "SHEETDESK_DRIVE_FOLDER_ID")
	overrideString(&c.Email.SMTPPassword, "SHEETDESK_SMTP_PASSWORD")
	overrideString(&c.Telegram.Token, "SHEETDESK_TELEGRAM_TOKEN")
	overrideString(&c.Log.Level, "SHEETDESK_LOG_LEVEL")
	if v := os.Getenv("SHEETDESK_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Location resolves Server.Timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Server.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
