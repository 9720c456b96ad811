package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/goph/emperror"
	_ "github.com/lib/pq"
	"github.com/op/go-logging"
)

type DataType int64

const DT_Report DataType = 1

const reportTable = `CREATE TABLE IF NOT EXISTS %s.report (
	reportid   varchar(27) NOT NULL,
	filesystem varchar(255) NOT NULL,
	folder     varchar(1024) NOT NULL,
	name       varchar(1024) NOT NULL,
	filesize   bigint NOT NULL,
	modtime    timestamp NOT NULL,
	mimetype   varchar(255) NOT NULL DEFAULT '',
	duration   bigint NOT NULL DEFAULT 0,
	metadata   jsonb NOT NULL,
	created    timestamp NOT NULL,
	PRIMARY KEY (filesystem, folder, name)
)`

type PostgresDB struct {
	mutex  map[DataType]*sync.Mutex
	db     *sql.DB
	schema string
	logger *logging.Logger
}

// OpenPostgres connects with the lib/pq driver
func OpenPostgres(dsn string, connMax int) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, emperror.Wrap(err, "cannot open postgres connection")
	}
	if connMax > 0 {
		db.SetMaxOpenConns(connMax)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, emperror.Wrap(err, "cannot ping postgres")
	}
	return db, nil
}

func NewPostgresDB(db *sql.DB, schema string, logger *logging.Logger) (*PostgresDB, error) {
	if schema == "" {
		schema = "public"
	}
	pgdb := &PostgresDB{
		db:     db,
		schema: schema,
		logger: logger,
		mutex: map[DataType]*sync.Mutex{
			DT_Report: {},
		},
	}
	return pgdb, nil
}

// Init creates the report table if needed
func (db *PostgresDB) Init(ctx context.Context) error {
	sqlstr := fmt.Sprintf(reportTable, db.schema)
	db.logger.Debugf("SQL: %s", sqlstr)
	if _, err := db.db.ExecContext(ctx, sqlstr); err != nil {
		return emperror.Wrapf(err, "cannot execute sql %s", sqlstr)
	}
	return nil
}

func (db *PostgresDB) GetReport(ctx context.Context, filesystem, folder, name string) (*Report, error) {
	sqlstr := fmt.Sprintf("SELECT reportid, filesize, modtime, mimetype, duration, metadata, created FROM %s.report WHERE filesystem=$1 AND folder=$2 AND name=$3", db.schema)
	db.logger.Debugf("SQL: %s [%s, %s, %s]", sqlstr, filesystem, folder, name)
	row := db.db.QueryRowContext(ctx, sqlstr, filesystem, folder, name)
	r := &Report{
		Filesystem: filesystem,
		Folder:     folder,
		Name:       name,
	}
	var metadata []byte
	switch err := row.Scan(&r.Id, &r.Size, &r.ModTime, &r.Mimetype, &r.Duration, &metadata, &r.Created); err {
	case sql.ErrNoRows:
		return nil, ErrNotFound
	case nil:
	default:
		return nil, emperror.Wrapf(err, "cannot load report %s", ReportKey(filesystem, folder, name))
	}
	if err := json.Unmarshal(metadata, &r.Values); err != nil {
		return nil, emperror.Wrapf(err, "cannot unmarshal metadata of report %s", r.Id)
	}
	return r, nil
}

func (db *PostgresDB) StoreReport(ctx context.Context, r *Report) error {
	db.mutex[DT_Report].Lock()
	defer db.mutex[DT_Report].Unlock()

	metadata, err := r.valuesJSON()
	if err != nil {
		return err
	}
	sqlstr := fmt.Sprintf(`INSERT INTO %s.report (reportid, filesystem, folder, name, filesize, modtime, mimetype, duration, metadata, created)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (filesystem, folder, name) DO UPDATE SET
	reportid=EXCLUDED.reportid, filesize=EXCLUDED.filesize, modtime=EXCLUDED.modtime, mimetype=EXCLUDED.mimetype,
	duration=EXCLUDED.duration, metadata=EXCLUDED.metadata, created=EXCLUDED.created`, db.schema)
	db.logger.Debugf("SQL: %s [%s]", sqlstr, r.GetKey())
	if _, err := db.db.ExecContext(ctx, sqlstr,
		r.Id, r.Filesystem, r.Folder, r.Name, r.Size, r.ModTime, r.Mimetype, r.Duration, metadata, r.Created); err != nil {
		return emperror.Wrapf(err, "cannot store report %s", r.GetKey())
	}
	return nil
}

func (db *PostgresDB) DeleteReport(ctx context.Context, filesystem, folder, name string) error {
	db.mutex[DT_Report].Lock()
	defer db.mutex[DT_Report].Unlock()

	sqlstr := fmt.Sprintf("DELETE FROM %s.report WHERE filesystem=$1 AND folder=$2 AND name=$3", db.schema)
	db.logger.Debugf("SQL: %s", sqlstr)
	if _, err := db.db.ExecContext(ctx, sqlstr, filesystem, folder, name); err != nil {
		return emperror.Wrapf(err, "cannot delete report %s", ReportKey(filesystem, folder, name))
	}
	return nil
}
