package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"

	"github.com/joho/godotenv"
)

// EnvDSN overrides storage.db.dsn when set.
const EnvDSN = "ETL_DSN"

// LoadEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set. A missing
// file is not an error when optional is true.
func LoadEnv(optional bool, files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if optional && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load env %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv fills in the DSN from the environment. ETL_DSN wins outright.
// Otherwise, when the file leaves the DSN empty and the storage kind is
// postgres, DATABASE, USER, PASSWORD, HOST and PORT are assembled into a
// postgres:// URL. getenv defaults to os.Getenv.
func ApplyEnv(p *Pipeline, getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if dsn := getenv(EnvDSN); dsn != "" {
		p.Storage.DB.DSN = dsn
		return
	}
	if p.Storage.DB.DSN != "" || p.Storage.Kind != "postgres" {
		return
	}
	db := getenv("DATABASE")
	if db == "" {
		return
	}
	host := getenv("HOST")
	if host == "" {
		host = "localhost"
	}
	port := getenv("PORT")
	if port == "" {
		port = "5432"
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(host, port),
		Path:   "/" + db,
	}
	if user := getenv("USER"); user != "" {
		if pw := getenv("PASSWORD"); pw != "" {
			u.User = url.UserPassword(user, pw)
		} else {
			u.User = url.User(user)
		}
	}
	p.Storage.DB.DSN = u.String()
}
