package db

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/drone/envsubst"
	"github.com/go-sql-driver/mysql"
	"maps"
)

type DSN struct {
	driver   string
	original string

	host     string
	port     int64
	username string
	password string
	database string
	schema   string
	options  []string

	// path is the database file for sqlite, rawOptions its untouched query string
	path       string
	rawOptions url.Values
}

var driverMap = map[string]string{
	"psql":       "postgres",
	"postgres":   "postgres",
	"pgx":        "pgx",
	"mysql":      "mysql",
	"clickhouse": "clickhouse",
	"sqlite":     "sqlite",
}

var defaultPorts = map[string]int64{
	"postgres":   5432,
	"pgx":        5432,
	"mysql":      3306,
	"clickhouse": 9000,
}

func ParseDSN(dsn string) (*DSN, error) {
	expanded, err := envsubst.Eval(dsn, os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("variables expansion failed: %w", err)
	}

	dsnURL, err := url.Parse(expanded)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}

	driver, ok := driverMap[dsnURL.Scheme]
	if !ok {
		keys := slices.Sorted(maps.Keys(driverMap))

		return nil, fmt.Errorf("invalid scheme %s, allowed schemes: [%s]", dsnURL.Scheme, strings.Join(keys, ","))
	}

	query := dsnURL.Query()
	d := &DSN{
		original:   expanded,
		driver:     driver,
		rawOptions: query,
	}

	if driver == "sqlite" {
		d.schema = "main"
		d.path = dsnURL.Opaque
		if d.path == "" {
			d.path = dsnURL.Host + dsnURL.Path
		}
		if d.path == "" {
			return nil, fmt.Errorf("sqlite dsn requires a database path, e.g. sqlite:///var/lib/forms.db or sqlite::memory:")
		}
		d.database = d.path
		d.rawOptions.Del("schema")
		return d, nil
	}

	d.host = dsnURL.Hostname()
	d.port = defaultPorts[driver]
	if dsnURL.Port() != "" {
		d.port, err = strconv.ParseInt(dsnURL.Port(), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid port %q: %w", dsnURL.Port(), err)
		}
	}

	d.username = dsnURL.User.Username()
	d.password, _ = dsnURL.User.Password()
	d.database = strings.TrimPrefix(dsnURL.EscapedPath(), "/")

	d.schema = "public"
	if driver == "mysql" || driver == "clickhouse" {
		d.schema = d.database
	}

	keys := slices.Sorted(maps.Keys(query))

	options := make([]string, 0, len(query))
	for _, key := range keys {
		if key == "schema" {
			d.schema = query[key][0]
			continue
		}

		options = append(options, fmt.Sprintf("%s=%s", key, strings.Join(query[key], ",")))
	}
	d.options = options
	d.rawOptions.Del("schema")

	return d, nil
}

func (c *DSN) ConnString() string {
	switch c.driver {
	case "clickhouse":
		return c.original

	case "sqlite":
		if len(c.rawOptions) == 0 {
			return c.path
		}
		return c.path + "?" + c.rawOptions.Encode()

	case "mysql":
		config := mysql.NewConfig()
		config.User = c.username
		config.Passwd = c.password
		config.Net = "tcp"
		config.Addr = net.JoinHostPort(c.host, strconv.FormatInt(c.port, 10))
		config.DBName = c.database
		// Updates writing identical values must still count the matched row
		config.ClientFoundRows = true
		if len(c.rawOptions) > 0 {
			config.Params = map[string]string{}
			for key := range c.rawOptions {
				config.Params[key] = c.rawOptions.Get(key)
			}
		}
		return config.FormatDSN()
	}

	out := fmt.Sprintf("host=%s port=%d user=%s dbname=%s", c.host, c.port, c.username, c.database)
	if len(c.options) > 0 {
		out += " " + strings.Join(c.options, " ")
	}
	if c.password != "" {
		out = out + " password=" + c.password
	}
	return out
}

func (c *DSN) Driver() string {
	return c.driver
}

func (c *DSN) Schema() string {
	return c.schema
}
