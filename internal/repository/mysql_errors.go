package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

const (
	mysqlErrDuplicateEntry = 1062
	mysqlErrDeadlock       = 1213
)

func isMySQLError(err error, codes ...uint16) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return false
	}
	for _, code := range codes {
		if me.Number == code {
			return true
		}
	}
	return false
}

// jsonArg passes raw JSON as text; a []byte argument would reach MySQL as binary
// and be refused by JSON columns.
func jsonArg(payload []byte) any {
	if len(payload) == 0 {
		return "null"
	}
	return string(payload)
}
