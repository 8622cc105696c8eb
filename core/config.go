package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DateLayout is the calendar date format used by fee data and the API.
const DateLayout = "2006-01-02"

type (
	Config struct {
		Debug           bool
		TestMode        bool
		Env             string
		Build           string
		AppName         string
		SecretKey       string
		LogLevel        string
		RollbarToken    string
		SendgridApiKey  string
		FrontendBaseURL string
		Server          ServerConfig
		Fees            FeesConfig

		defaultFromEmail string
	}

	ServerConfig struct {
		Host               string
		Address            string
		DebugHost          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	FeesConfig struct {
		DueDate         time.Time // zero: seed due date
		LateFee         int64
		ProcessingDelay time.Duration
		EvaluationDate  time.Time // zero: wall clock
		LateFeeSchedule string
		SeedFile        string
	}
)

func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("build", "develop")
	v.SetDefault("appName", "CampusFlow")
	v.SetDefault("secretKey", "k2v9-fee)dash$+31=qz&uo7h2(c!x)#*p8(#ab4h^$campus0y")
	v.SetDefault("logLevel", "info")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("defaultFromEmail", "CampusFlow <noreply@localhost>")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("fees.dueDate", "") // empty: seed due date
	v.SetDefault("fees.lateFee", 500)
	v.SetDefault("fees.processingDelay", 2500*time.Millisecond)
	v.SetDefault("fees.evaluationDate", "2026-02-20")
	v.SetDefault("fees.lateFeeSchedule", "@daily")
	v.SetDefault("fees.seedFile", "")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AllowEmptyEnv(true) // an empty <ENV>_FEES_EVALUATIONDATE selects the wall clock
	v.AutomaticEnv()

	conf := &Config{
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		Env:              env,
		Build:            v.GetString("build"),
		AppName:          v.GetString("appName"),
		SecretKey:        v.GetString("secretKey"),
		LogLevel:         v.GetString("logLevel"),
		RollbarToken:     v.GetString("rollbarToken"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		defaultFromEmail: v.GetString("defaultFromEmail"),
		Server: ServerConfig{
			Host:               v.GetString("server.host"),
			Address:            v.GetString("server.address"),
			DebugHost:          v.GetString("server.debugHost"),
			ShutdownTimeout:    v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta: v.GetDuration("server.jwtExpirationDelta"),
		},
		Fees: FeesConfig{
			LateFee:         v.GetInt64("fees.lateFee"),
			ProcessingDelay: v.GetDuration("fees.processingDelay"),
			LateFeeSchedule: v.GetString("fees.lateFeeSchedule"),
			SeedFile:        v.GetString("fees.seedFile"),
		},
	}
	if dueDate := v.GetString("fees.dueDate"); dueDate != "" {
		conf.Fees.DueDate = mustParseDate("fees.dueDate", dueDate)
	}
	if evalDate := v.GetString("fees.evaluationDate"); evalDate != "" {
		conf.Fees.EvaluationDate = mustParseDate("fees.evaluationDate", evalDate)
	}
	return conf
}

func (c *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(c.defaultFromEmail)
	if err != nil {
		return mail.Address{Name: c.AppName, Address: "noreply@" + c.Server.Host}
	}
	return *addr
}

func mustParseDate(key, value string) time.Time {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		log.Fatalf("config.%s: %v", key, err)
	}
	return t
}
