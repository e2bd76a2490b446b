package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/leapstack-labs/seeddump/pkg/adapter"
	"github.com/leapstack-labs/seeddump/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const blogSchema = `
CREATE TABLE users (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	admin BOOLEAN,
	born_on DATE
);
CREATE TABLE posts (
	id INTEGER PRIMARY KEY,
	user_id INTEGER REFERENCES users,
	editor_id INTEGER REFERENCES users(id),
	title TEXT
);
CREATE TABLE tags (
	post_id INTEGER,
	name TEXT,
	PRIMARY KEY (post_id, name)
);
INSERT INTO users VALUES (1, 'alice', 1, '1990-05-17'), (2, 'bob', 0, NULL), (3, 'carol', NULL, NULL);
INSERT INTO posts VALUES (1, 1, 2, 'Hello'), (2, 1, NULL, 'Draft');
`

func connect(t *testing.T) *Adapter {
	t.Helper()
	ctx := context.Background()
	adp := New(nil)
	require.NoError(t, adp.Connect(ctx, core.AdapterConfig{Path: ":memory:"}))
	t.Cleanup(func() { _ = adp.Close() })
	require.NoError(t, adp.Exec(ctx, blogSchema))
	return adp
}

func TestAdapter_ListTables(t *testing.T) {
	tables, err := connect(t).ListTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"posts", "tags", "users"}, tables)
}

func TestAdapter_GetTableMetadata(t *testing.T) {
	adp := connect(t)
	ctx := context.Background()

	tests := []struct {
		table    string
		wantPK   string
		wantCols []string
		wantRows int64
	}{
		{"users", "id", []string{"id", "name", "admin", "born_on"}, 3},
		{"posts", "id", []string{"id", "user_id", "editor_id", "title"}, 2},
		{"tags", "", []string{"post_id", "name"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			meta, err := adp.GetTableMetadata(ctx, tt.table)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPK, meta.PrimaryKey)
			assert.Equal(t, tt.wantCols, meta.ColumnNames())
			assert.Equal(t, tt.wantRows, meta.RowCount)
			assert.Equal(t, 1, meta.Columns[0].Position)
		})
	}

	t.Run("missing", func(t *testing.T) {
		_, err := adp.GetTableMetadata(ctx, "nope")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "table nope not found")
	})
}

func TestAdapter_ForeignKeys(t *testing.T) {
	fks, err := connect(t).ForeignKeys(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []core.ForeignKey{
		{Table: "posts", Column: "user_id", ReferencedTable: "users", ReferencedColumn: "id"},
		{Table: "posts", Column: "editor_id", ReferencedTable: "users", ReferencedColumn: "id"},
	}, fks)
}

func TestAdapter_FetchPage(t *testing.T) {
	adp := connect(t)
	ctx := context.Background()
	columns := []string{"id", "name", "admin", "born_on"}

	page, err := adp.FetchPage(ctx, core.PageQuery{Table: "users", Columns: columns, OrderBy: "id", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, columns, page.Columns)
	require.Len(t, page.Rows, 2)
	assert.Equal(t, []any{int64(1), "alice", true, core.NewDate(time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC))}, page.Rows[0])
	assert.Equal(t, []any{int64(2), "bob", false, nil}, page.Rows[1])

	next, err := adp.FetchPage(ctx, core.PageQuery{Table: "users", Columns: columns, OrderBy: "id", After: page.Rows[1][0], Limit: 2})
	require.NoError(t, err)
	require.Len(t, next.Rows, 1)
	assert.Equal(t, "carol", next.Rows[0][1])

	t.Run("offset paging", func(t *testing.T) {
		require.NoError(t, adp.Exec(ctx, `INSERT INTO tags VALUES (1, 'go'), (1, 'ruby'), (2, 'sql')`))

		first, err := adp.FetchPage(ctx, core.PageQuery{Table: "tags", Columns: []string{"name"}, Limit: 2})
		require.NoError(t, err)
		rest, err := adp.FetchPage(ctx, core.PageQuery{Table: "tags", Columns: []string{"name"}, After: int64(2), Limit: 2})
		require.NoError(t, err)

		assert.Len(t, first.Rows, 2)
		assert.Len(t, rest.Rows, 1)
	})
}

func TestAdapter_NotConnected(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)

	_, err := adp.ListTables(ctx)
	require.ErrorIs(t, err, adapter.ErrNotConnected)
	_, err = adp.GetTableMetadata(ctx, "users")
	require.ErrorIs(t, err, adapter.ErrNotConnected)
	_, err = adp.ForeignKeys(ctx)
	require.ErrorIs(t, err, adapter.ErrNotConnected)
	_, err = adp.FetchPage(ctx, core.PageQuery{Table: "users", Limit: 1})
	require.ErrorIs(t, err, adapter.ErrNotConnected)
}

func TestAdapter_ConnectWithParams(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "app.sqlite3")

	adp := New(nil)
	require.NoError(t, adp.Connect(ctx, core.AdapterConfig{
		Path:   path,
		Params: map[string]any{"pragmas": map[string]any{"foreign_keys": "on", "busy_timeout": 5000}},
	}))
	defer func() { _ = adp.Close() }()

	var enabled int
	require.NoError(t, adp.DB.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&enabled))
	assert.Equal(t, 1, enabled)

	var timeout int
	require.NoError(t, adp.DB.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout))
	assert.Equal(t, 5000, timeout)
}

func TestAdapter_ConnectBadPragma(t *testing.T) {
	adp := New(nil)
	err := adp.Connect(context.Background(), core.AdapterConfig{
		Params: map[string]any{"pragmas": map[string]any{"journal_mode": "not a mode;"}},
	})
	require.Error(t, err)
	assert.False(t, adp.IsConnected())
}

func TestParseParams(t *testing.T) {
	tests := []struct {
		name    string
		input   map[string]any
		want    *Params
		wantErr bool
	}{
		{
			name:  "nil params returns empty struct",
			input: nil,
			want:  &Params{},
		},
		{
			name:  "pragmas with mixed value types",
			input: map[string]any{"pragmas": map[string]any{"cache_size": -2000, "foreign_keys": "on"}},
			want:  &Params{Pragmas: map[string]string{"cache_size": "-2000", "foreign_keys": "on"}},
		},
		{
			name:  "read only",
			input: map[string]any{"read_only": true},
			want:  &Params{ReadOnly: true},
		},
		{
			name:    "wrong shape",
			input:   map[string]any{"pragmas": []any{"foreign_keys"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseParams(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParams_PragmaStatements(t *testing.T) {
	p := &Params{Pragmas: map[string]string{"foreign_keys": "on", "cache_size": "-2000"}}
	assert.Equal(t, []string{"PRAGMA cache_size = -2000", "PRAGMA foreign_keys = on"}, p.pragmaStatements())
}
