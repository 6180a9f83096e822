package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ErrorDump is the loggable view of an error: the coded top line, the unwrap
// chain, and any postgres driver detail found along it.
type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	PGCode       string `json:"pg_code,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
	PGTable      string `json:"pg_table,omitempty"`
	PGColumn     string `json:"pg_column,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`
	PGMessage    string `json:"pg_message,omitempty"`
}

// Dump walks the chain once, recording each link and the first driver error
// it encounters.
func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	dump := ErrorDump{TopMessage: err.Error()}
	if typed := As(err); typed != nil {
		dump.Code = typed.Code()
	}

	for link := err; link != nil; link = errors.Unwrap(link) {
		dump.Chain = append(dump.Chain, fmt.Sprintf("%T: %v", link, link))
		if dump.PGCode == "" {
			dump.captureDriver(link)
		}
	}
	return dump
}

func (d *ErrorDump) captureDriver(err error) {
	switch pg := err.(type) {
	case *pgconn.PgError:
		d.PGCode = pg.Code
		d.PGConstraint = pg.ConstraintName
		d.PGTable = pg.TableName
		d.PGColumn = pg.ColumnName
		d.PGDetail = pg.Detail
		d.PGMessage = pg.Message
	case *pq.Error:
		d.PGCode = string(pg.Code)
		d.PGConstraint = pg.Constraint
		d.PGTable = pg.Table
		d.PGColumn = pg.Column
		d.PGDetail = pg.Detail
		d.PGMessage = pg.Message
	}
}
