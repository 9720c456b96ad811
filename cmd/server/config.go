/*
Copyright 2020 info-age GmbH, Basel.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS-IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/goph/emperror"
)

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

type Cfg_database struct {
	ServerType string
	DSN        string
	ConnMax    int `toml:"connection_max"`
	Schema     string
}

type Cfg_S3 struct {
	Name            string `toml:"name"`
	Endpoint        string `toml:"endpoint"`
	AccessKeyId     string `toml:"accessKeyId"`
	SecretAccessKey string `toml:"secretAccessKey"`
	UseSSL          bool   `toml:"useSSL"`
}

type Cfg_Local struct {
	Name string `toml:"name"`
	Base string `toml:"base"`
}

type Cfg_FFProbe struct {
	Path         string   `toml:"path"`
	Timeout      duration `toml:"timeout"`
	LoadDecoders bool     `toml:"loaddecoders"`
}

type Cfg_Forward struct {
	Local  string `toml:"local"`
	Remote string `toml:"remote"`
}

type Cfg_Tunnel struct {
	User       string                 `toml:"user"`
	PrivateKey string                 `toml:"privatekey"`
	Endpoint   string                 `toml:"endpoint"`
	Forward    map[string]Cfg_Forward `toml:"forward"`
}

type Cfg_Cache struct {
	Size       int      `toml:"size"`
	Expiration duration `toml:"expiration"`
}

type Config struct {
	Logfile   string       `toml:"logfile"`
	Loglevel  string       `toml:"loglevel"`
	AccessLog string       `toml:"accesslog"`
	HTTPAddr  string       `toml:"httpaddr"`
	HTTP3Addr string       `toml:"http3addr"`
	CertPEM   string       `toml:"certpem"`
	KeyPEM    string       `toml:"keypem"`
	Prefix    string       `toml:"prefix"`
	URLValid  duration     `toml:"urlvalid"`
	Siegfried string       `toml:"siegfried"`
	FFProbe   Cfg_FFProbe  `toml:"ffprobe"`
	Cache     Cfg_Cache    `toml:"cache"`
	Tunnel    Cfg_Tunnel   `toml:"tunnel"`
	DB        Cfg_database `toml:"db"`
	S3        []Cfg_S3     `toml:"s3"`
	Local     []Cfg_Local  `toml:"local"`
}

func LoadConfig(fp string) (Config, error) {
	conf := Config{
		Loglevel: "INFO",
		HTTPAddr: "localhost:8080",
		Prefix:   "mediainfo",
		URLValid: duration{10 * time.Minute},
		FFProbe:  Cfg_FFProbe{Path: "ffprobe", Timeout: duration{30 * time.Second}},
		Cache:    Cfg_Cache{Size: 200, Expiration: duration{3 * time.Hour}},
	}
	if _, err := toml.DecodeFile(fp, &conf); err != nil {
		return Config{}, emperror.Wrapf(err, "error on loading config %s", fp)
	}
	conf.Prefix = strings.Trim(conf.Prefix, "/")
	names := map[string]bool{}
	for _, s3 := range conf.S3 {
		name := strings.ToLower(s3.Name)
		if name == "" || names[name] {
			return Config{}, fmt.Errorf("invalid or duplicate filesystem name '%s'", s3.Name)
		}
		names[name] = true
	}
	for _, l := range conf.Local {
		name := strings.ToLower(l.Name)
		if name == "" || names[name] {
			return Config{}, fmt.Errorf("invalid or duplicate filesystem name '%s'", l.Name)
		}
		names[name] = true
	}
	return conf, nil
}
