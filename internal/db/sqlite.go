package db

import (
	"database/sql"
	"sync"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/text/cases"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SQLiteDriverName is the database/sql driver Open uses for SQLite. Its
// connections carry FoldCaseFunc.
const SQLiteDriverName = "sqlite3_chat_threads"

// FoldCaseFunc is the SQL function registered on SQLite connections that
// applies Unicode case folding. SQLite's own LOWER only folds ASCII.
const FoldCaseFunc = "fold_case"

var registerSQLite sync.Once

func sqliteDialector(dsn string) gorm.Dialector {
	registerSQLite.Do(func() {
		sql.Register(SQLiteDriverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				return conn.RegisterFunc(FoldCaseFunc, foldCase, true)
			},
		})
	})
	return sqlite.New(sqlite.Config{DriverName: SQLiteDriverName, DSN: dsn})
}

func foldCase(s string) string { return cases.Fold().String(s) }

// CaseFoldFunc names the SQL function that folds case on theDB for
// case-insensitive matching. Postgres LOWER is Unicode aware; SQLite
// handles opened outside Open fall back to LOWER, which folds ASCII only.
func CaseFoldFunc(theDB *gorm.DB) string {
	if theDB != nil {
		if d, ok := theDB.Dialector.(*sqlite.Dialector); ok && d.DriverName == SQLiteDriverName {
			return FoldCaseFunc
		}
	}
	return "LOWER"
}
