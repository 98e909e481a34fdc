package config

import (
	"flag"
	"fmt"
	"net"
	"os"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr      string
	DBUrl     string
	PublicUrl string
	Debug     bool
}

// File is the optional YAML configuration. Its values become the flag
// defaults, so explicit flags still win.
type File struct {
	Host      string `yaml:"host"`
	Port      uint   `yaml:"port"`
	DBUrl     string `yaml:"db_url"`
	PublicUrl string `yaml:"public_url"`
	Debug     bool   `yaml:"debug"`
}

func DefaultFile() File {
	return File{
		Host:  "0.0.0.0",
		Port:  80,
		DBUrl: "qsurvey.sqlite",
	}
}

func LoadFile(path string) (File, error) {
	file := DefaultFile()

	data, err := os.ReadFile(path)
	if err != nil {
		return file, err
	}
	err = yaml.Unmarshal(data, &file)
	if err != nil {
		return file, fmt.Errorf("config file %s: %w", path, err)
	}
	return file, nil
}

func ParseFlags() (Config, error) {
	return Parse(flag.CommandLine, os.Args[1:])
}

// Parse reads args with fs. A -config file is loaded first and supplies
// the defaults for the remaining flags.
func Parse(fs *flag.FlagSet, args []string) (cfg Config, err error) {
	file := DefaultFile()
	if path := configPath(args); path != "" {
		file, err = LoadFile(path)
		if err != nil {
			return
		}
	}

	fs.String("config", "", "path to a YAML config file")
	var host string
	fs.StringVar(&host, "host", file.Host, "listen host name")
	var port uint
	fs.UintVar(&port, "port", file.Port, "listen port number")
	fs.StringVar(&cfg.DBUrl, "db-url", file.DBUrl, "path to SQLite3 DB file")
	fs.StringVar(&cfg.PublicUrl, "public-url", file.PublicUrl, "public base URL used in share links")
	fs.BoolVar(&cfg.Debug, "debug", file.Debug, "log at DEBUG level")
	err = fs.Parse(args)
	if err != nil {
		return
	}

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	return
}

// configPath finds -config ahead of flag parsing.
func configPath(args []string) string {
	re := regexp.MustCompile(`^--?config(?:=(.*))?$`)
	for i, arg := range args {
		if arg == "--" {
			break
		}
		m := re.FindStringSubmatch(arg)
		if m == nil {
			continue
		}
		if m[1] != "" {
			return m[1]
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}
