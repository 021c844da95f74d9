package store

import (
	"ao3-scraper/lib/configutil"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

const memoryDB = ":memory:"

type Config struct {
	// path of a local sqlite database, may start with <state>
	File string `json:"file"`
	// url of a remote libsql database, takes precedence over File
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func (config Config) OpenDB() (*sql.DB, error) {
	if config.Url != "" {
		values := url.Values{}
		if config.AuthToken != "" {
			values.Add("authToken", config.AuthToken)
		}
		dsn := config.Url
		if len(values) > 0 {
			dsn += "?" + values.Encode()
		}
		return sql.Open("libsql", dsn)
	}

	if config.File == "" {
		return nil, fmt.Errorf("neither a database file or url was specified")
	}

	dbpath := config.File
	if dbpath != memoryDB {
		var err error
		dbpath, err = configutil.ResolvePath(config.File)
		if err != nil {
			return nil, err
		}
		err = os.MkdirAll(filepath.Dir(dbpath), 0o755)
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", dbpath)
	if err != nil {
		return nil, err
	}
	// sqlite only allows one writer at a time, see
	// https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	db.SetMaxOpenConns(1)
	if dbpath != memoryDB {
		_, err = db.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}
