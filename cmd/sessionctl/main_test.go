package main

import (
	"bytes"
	"context"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/propdesk/propdesk/config"
	"github.com/propdesk/propdesk/internal/storage/postgres"
)

// run builds the CLI over a sqlmock connection; exec runs it with args.
func run(t *testing.T, args ...string) (sqlmock.Sqlmock, func() (string, error)) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	open := func(ctx context.Context, cfg *config.Config) (*postgres.Client, error) {
		return postgres.Wrap(db), nil
	}

	exec := func() (string, error) {
		cmd := newRootCmd(open)
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		env := filepath.Join(t.TempDir(), "missing.env")
		cmd.SetArgs(append([]string{"--env", env}, args...))
		err := cmd.Execute()
		return out.String(), err
	}
	return mock, exec
}

func TestPurge(t *testing.T) {
	mock, exec := run(t, "purge")
	mock.ExpectExec("DELETE FROM session_entries WHERE updated_at").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 4))

	out, err := exec()
	require.NoError(t, err)
	require.Equal(t, "Purged 4 session entries.\n", out)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestShow(t *testing.T) {
	mock, exec := run(t, "show", "sid-1")
	rows := sqlmock.NewRows([]string{"key", "value"}).
		AddRow("token", "tok").
		AddRow("name", "Lan").
		AddRow("email", "lan@test")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT key, value FROM session_entries WHERE sid = $1`)).
		WithArgs("sid-1", sqlmock.AnyArg()).
		WillReturnRows(rows)

	out, err := exec()
	require.NoError(t, err)
	require.Equal(t, "name:  Lan\nemail: lan@test\n", out)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestShow_SignedOut(t *testing.T) {
	mock, exec := run(t, "show", "sid-2")
	mock.ExpectQuery("SELECT key, value FROM session_entries").
		WillReturnRows(sqlmock.NewRows([]string{"key", "value"}))

	out, err := exec()
	require.NoError(t, err)
	require.Equal(t, "No signed-in user for this session.\n", out)
}

func TestShow_RequiresSessionID(t *testing.T) {
	_, exec := run(t, "show")
	_, err := exec()
	require.Error(t, err)
}

func TestMigrate(t *testing.T) {
	mock, exec := run(t, "migrate")
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS session_entries")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	out, err := exec()
	require.NoError(t, err)
	require.Equal(t, "Session schema is up to date.\n", out)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDrop_RequiresConfirmation(t *testing.T) {
	_, exec := run(t, "drop")
	_, err := exec()
	require.ErrorContains(t, err, "--yes")
}

func TestDrop(t *testing.T) {
	mock, exec := run(t, "drop", "--yes")
	mock.ExpectExec("DROP TABLE IF EXISTS session_entries").
		WillReturnResult(sqlmock.NewResult(0, 0))

	out, err := exec()
	require.NoError(t, err)
	require.Equal(t, "Session schema dropped.\n", out)
	require.NoError(t, mock.ExpectationsWereMet())
}
