package migrations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Embedded(t *testing.T) {
	pg, err := load(PostgresFS, "postgres")
	require.NoError(t, err)
	require.NotEmpty(t, pg)
	assert.Equal(t, "001_bagger_results.sql", pg[0].name)
	assert.Contains(t, pg[0].sql, "bagger_transitions")

	ch, err := load(ClickhouseFS, "clickhouse")
	require.NoError(t, err)
	require.NotEmpty(t, ch)
	for _, m := range ch {
		assert.NoError(t, validateNoSemicolonInStrings(m.sql), m.name)
	}
}

func TestSplitStatements_ClickhouseSchema(t *testing.T) {
	ch, err := load(ClickhouseFS, "clickhouse")
	require.NoError(t, err)

	stmts := splitStatements(ch[0].sql)
	require.Len(t, stmts, 2)
	assert.True(t, strings.HasPrefix(stmts[0], "CREATE TABLE IF NOT EXISTS daily_prices"))
	assert.True(t, strings.HasPrefix(stmts[1], "CREATE VIEW IF NOT EXISTS daily_prices_coverage"))
}

func TestSplitStatements(t *testing.T) {
	input := `
-- comment; with semicolon
CREATE TABLE a (x Int32);

  -- indented comment
CREATE TABLE b (y String)
;
`
	assert.Equal(t, []string{
		"CREATE TABLE a (x Int32)",
		"CREATE TABLE b (y String)",
	}, splitStatements(input))
	assert.Empty(t, splitStatements("  \n-- only a comment\n"))
}

func TestValidateNoSemicolonInStrings(t *testing.T) {
	assert.NoError(t, validateNoSemicolonInStrings(`SELECT 'a'; SELECT 'b'`))
	assert.NoError(t, validateNoSemicolonInStrings(`SELECT 'it''s'; SELECT 1`))
	assert.Error(t, validateNoSemicolonInStrings(`SELECT 'a;b'`))
	assert.Error(t, validateNoSemicolonInStrings(`SELECT 'it''s;'`))
}

func TestDatabaseFromDSN(t *testing.T) {
	db, err := databaseFromDSN("clickhouse://localhost:9000/prices")
	require.NoError(t, err)
	assert.Equal(t, "prices", db)

	_, err = databaseFromDSN("clickhouse://localhost:9000")
	assert.Error(t, err)

	_, err = databaseFromDSN("clickhouse://localhost:9000/drop;table")
	assert.Error(t, err)
}
