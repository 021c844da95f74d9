package commands

import (
	"ao3-scraper/lib/restyutil"
	"ao3-scraper/lib/scrapers/ao3"
	"ao3-scraper/lib/store"
	"ao3-scraper/lib/telemetry"
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

type Config struct {
	BaseUrl           string           `json:"base_url"`
	Username          string           `json:"username"`
	Password          string           `json:"password"`
	RequestsPerSecond float64          `json:"requests_per_second"`
	CloudflareBypass  bool             `json:"cloudflare_bypass"`
	Store             store.Config     `json:"store"`
	Telemetry         telemetry.Config `json:"telemetry"`
}

const defaultRequestsPerSecond = 1

func (c Config) withDefaults() Config {
	if c.BaseUrl == "" {
		c.BaseUrl = ao3.DefaultBaseUrl
	}
	if c.RequestsPerSecond == 0 {
		c.RequestsPerSecond = defaultRequestsPerSecond
	}
	if c.Store.File == "" && c.Store.Url == "" {
		c.Store.File = "<state>/ao3.db"
	}
	return c
}

type env struct {
	config     Config
	dumpOutput restyutil.InstrumentOutput
}

type envKeyType int

var envKey envKeyType

func withEnv(ctx context.Context, value *env) context.Context {
	return context.WithValue(ctx, envKey, value)
}

func getEnv(cmd *cobra.Command) *env {
	return cmd.Context().Value(envKey).(*env)
}

func (e *env) sessionOptions() ao3.SessionOptions {
	return ao3.SessionOptions{
		BaseUrl:           e.config.BaseUrl,
		RequestsPerSecond: e.config.RequestsPerSecond,
		CloudflareBypass:  e.config.CloudflareBypass,
		DumpOutput:        e.dumpOutput,
	}
}

func (e *env) hasCredentials() bool {
	return e.config.Username != "" && e.config.Password != ""
}

// login logs in with the configured credentials.
func (e *env) login(ctx context.Context) (ao3.User, error) {
	if !e.hasCredentials() {
		return ao3.User{}, fmt.Errorf("this command needs a username and password in the config file")
	}
	return ao3.Login(ctx, e.sessionOptions(), e.config.Username, e.config.Password)
}

// session logs in if credentials are configured and stays anonymous
// otherwise.
func (e *env) session(ctx context.Context) (*ao3.Session, error) {
	if e.hasCredentials() {
		user, err := e.login(ctx)
		if err != nil {
			return nil, err
		}
		return user.Session(), nil
	}
	return ao3.NewSession(e.sessionOptions())
}
