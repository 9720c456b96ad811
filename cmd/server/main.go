package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/je4/zmediainfo/pkg/database"
	"github.com/je4/zmediainfo/pkg/filesystem"
	"github.com/je4/zmediainfo/pkg/mediainfo"
	"github.com/je4/zmediainfo/pkg/mediaserver"
	"github.com/je4/zmediainfo/pkg/probe"
	"github.com/je4/zmediainfo/pkg/sshTunnel"
	"github.com/op/go-logging"
)

// serve runs the server until it fails or is shut down, a shutdown is no error
func serve(srv *mediaserver.Server, cert, key string) error {
	err := srv.ListenAndServe(cert, key)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func startTunnel(cfg Cfg_Tunnel, log *logging.Logger) (*sshtunnel.SSHtunnel, error) {
	server, err := sshtunnel.ParseEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}
	forwards := map[string]*sshtunnel.SourceDestination{}
	for name, fwd := range cfg.Forward {
		local, err := sshtunnel.ParseEndpoint(fwd.Local)
		if err != nil {
			return nil, err
		}
		remote, err := sshtunnel.ParseEndpoint(fwd.Remote)
		if err != nil {
			return nil, err
		}
		forwards[name] = &sshtunnel.SourceDestination{Local: local, Remote: remote}
	}
	tunnel, err := sshtunnel.NewSSHTunnel(cfg.User, cfg.PrivateKey, server, forwards, log)
	if err != nil {
		return nil, err
	}
	if err := tunnel.Start(); err != nil {
		tunnel.Close()
		return nil, err
	}
	return tunnel, nil
}

func main() {
	cfgfile := flag.String("cfg", "./mediainfo.toml", "locations of config file")
	flag.Parse()
	config, err := LoadConfig(*cfgfile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot load config: %v\n", err)
		os.Exit(1)
	}

	// create logger instance
	log, lf := mediaserver.CreateLogger("mediainfo", config.Logfile, config.Loglevel)
	if lf != nil {
		defer lf.Close()
	}

	var accesslog io.Writer
	if config.AccessLog == "" {
		accesslog = os.Stdout
	} else {
		f, err := os.OpenFile(config.AccessLog, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			log.Panicf("cannot open file %s: %v", config.AccessLog, err)
			return
		}
		defer f.Close()
		accesslog = f
	}

	var closers []io.Closer
	if config.Tunnel.Endpoint != "" {
		tunnel, err := startTunnel(config.Tunnel, log)
		if err != nil {
			log.Panicf("cannot start ssh tunnel: %v", err)
			return
		}
		closers = append(closers, tunnel)
	}

	fss := map[string]filesystem.FileSystem{}
	for _, s3 := range config.S3 {
		fs, err := filesystem.NewS3Fs(s3.Name, s3.Endpoint, s3.AccessKeyId, s3.SecretAccessKey, s3.UseSSL)
		if err != nil {
			log.Panicf("cannot connect to s3 instance %v: %v", s3.Name, err)
			return
		}
		fss[strings.ToLower(s3.Name)] = fs
	}
	for _, l := range config.Local {
		fs, err := filesystem.NewLocalFs(l.Name, l.Base)
		if err != nil {
			log.Panicf("cannot open local filesystem %v: %v", l.Name, err)
			return
		}
		fss[strings.ToLower(l.Name)] = fs
	}

	var db database.Database
	if config.DB.DSN != "" {
		sqldb, err := database.OpenPostgres(config.DB.DSN, config.DB.ConnMax)
		if err != nil {
			log.Panicf("cannot connect to database: %v", err)
			return
		}
		closers = append(closers, sqldb)
		pgdb, err := database.NewPostgresDB(sqldb, config.DB.Schema, log)
		if err != nil {
			log.Panicf("cannot create postgres database: %v", err)
			return
		}
		if err := pgdb.Init(context.Background()); err != nil {
			log.Panicf("cannot initialize database: %v", err)
			return
		}
		db = pgdb
	} else {
		log.Warning("no database configured, reports are cached in memory only")
	}
	mdb, err := database.NewMediaDatabase(db, config.Cache.Size, config.Cache.Expiration.Duration, log)
	if err != nil {
		log.Panicf("cannot create media database: %v", err)
		return
	}

	ffp, err := probe.NewFFProbe(config.FFProbe.Path, config.FFProbe.Timeout.Duration, log)
	if err != nil {
		log.Panicf("cannot create ffprobe: %v", err)
		return
	}
	registry := mediainfo.DefaultRegistry()
	if config.FFProbe.LoadDecoders {
		if _, err := ffp.LoadDecoders(context.Background(), registry); err != nil {
			log.Errorf("cannot load decoder list: %v", err)
		}
	}
	assembler := mediainfo.NewAssembler(nil, registry, nil, log)

	idx, err := mediaserver.NewIndexer(ffp, assembler, mdb, fss, config.URLValid.Duration, mediaserver.NewMetrics(), log)
	if err != nil {
		log.Panicf("cannot create indexer: %v", err)
		return
	}
	if config.Siegfried != "" {
		sf, err := mediaserver.NewSiegfried(config.Siegfried, config.FFProbe.Timeout.Duration)
		if err != nil {
			log.Panicf("cannot create siegfried client: %v", err)
			return
		}
		idx.SetIdentifier(sf)
	}

	srv, err := mediaserver.NewServer(config.HTTPAddr, config.HTTP3Addr, config.Prefix, idx, log, accesslog)
	if err != nil {
		log.Panicf("cannot create server: %v", err)
		return
	}
	for _, c := range closers {
		srv.AddCloser(c)
	}

	go func() {
		if err := serve(srv, config.CertPEM, config.KeyPEM); err != nil {
			log.Errorf("services ended: %v", err)
		} else {
			log.Info("services stopped")
		}
	}()
	end := make(chan bool, 1)

	// process waiting for interrupt signal (TERM or KILL)
	go func() {
		sigint := make(chan os.Signal, 1)

		// interrupt signal sent from terminal
		signal.Notify(sigint, os.Interrupt)

		signal.Notify(sigint, syscall.SIGTERM)

		<-sigint

		// We received an interrupt signal, shut down.
		log.Infof("shutdown requested")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Errorf("shutdown: %v", err)
		}

		end <- true
	}()

	<-end
	log.Info("server stopped")
}
