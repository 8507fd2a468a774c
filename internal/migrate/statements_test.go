package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitStatements(t *testing.T) {
	tests := []struct {
		name     string
		script   string
		expected []string
	}{
		{
			name:     "single statement",
			script:   "CREATE TABLE posts (id SERIAL PRIMARY KEY);",
			expected: []string{"CREATE TABLE posts (id SERIAL PRIMARY KEY)"},
		},
		{
			name:   "multiple statements",
			script: "CREATE TABLE a (id int);\nCREATE TABLE b (id int);",
			expected: []string{
				"CREATE TABLE a (id int)",
				"CREATE TABLE b (id int)",
			},
		},
		{
			name:     "no trailing semicolon",
			script:   "SELECT 1",
			expected: []string{"SELECT 1"},
		},
		{
			name:     "semicolon inside single quotes",
			script:   "INSERT INTO t VALUES ('a;b');",
			expected: []string{"INSERT INTO t VALUES ('a;b')"},
		},
		{
			name:     "escaped quote inside string",
			script:   "INSERT INTO t VALUES ('it''s; fine');",
			expected: []string{"INSERT INTO t VALUES ('it''s; fine')"},
		},
		{
			name:     "semicolon inside quoted identifier",
			script:   `ALTER TABLE "weird;name" ADD c int;`,
			expected: []string{`ALTER TABLE "weird;name" ADD c int`},
		},
		{
			name:   "line comments dropped",
			script: "-- creates a\nCREATE TABLE a (id int); -- trailing\n-- just a comment\n",
			expected: []string{
				"CREATE TABLE a (id int)",
			},
		},
		{
			name:     "block comment with semicolon",
			script:   "CREATE /* not; a split */ TABLE a (id int);",
			expected: []string{"CREATE  TABLE a (id int)"},
		},
		{
			name:     "nested block comment",
			script:   "/* outer /* inner; */ still; */SELECT 1;",
			expected: []string{"SELECT 1"},
		},
		{
			name:     "dollar quoted body",
			script:   "CREATE FUNCTION f() RETURNS int AS $$ BEGIN RETURN 1; END; $$ LANGUAGE plpgsql;",
			expected: []string{"CREATE FUNCTION f() RETURNS int AS $$ BEGIN RETURN 1; END; $$ LANGUAGE plpgsql"},
		},
		{
			name:     "tagged dollar quote",
			script:   "SELECT $body$one; two$body$;",
			expected: []string{"SELECT $body$one; two$body$"},
		},
		{
			name:     "dollar sign that is not a quote",
			script:   "SELECT price$ FROM t;",
			expected: []string{"SELECT price$ FROM t"},
		},
		{
			name:     "empty script",
			script:   "",
			expected: nil,
		},
		{
			name:     "only comments and whitespace",
			script:   "-- nothing\n  /* here */ \n;;",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitStatements(tt.script))
		})
	}
}
