package introspect

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemaforge-labs/schemaforge/pkg/schema"
)

// seedSQLite creates a database file from the given statements and
// returns its path.
func seedSQLite(t *testing.T, stmts ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err, "seed statement: %s", stmt)
	}
	require.NoError(t, db.Close())

	return path
}

func TestSQLiteBuildEndToEnd(t *testing.T) {
	path := seedSQLite(t,
		`CREATE TABLE teams (
			id INTEGER NOT NULL PRIMARY KEY,
			name VARCHAR(80) NOT NULL UNIQUE
		)`,
		`CREATE TABLE players (
			id INTEGER NOT NULL PRIMARY KEY,
			team_id INTEGER NOT NULL REFERENCES teams (id) ON DELETE CASCADE,
			nick VARCHAR(40) DEFAULT 'anon'
		)`,
		`CREATE INDEX idx_players_team_id ON players (team_id)`,
	)

	s, err := Build(context.Background(), discardLogger(), "sqlite:"+path)
	require.NoError(t, err)
	require.Len(t, s.Tables, 2)
	assert.Equal(t, "players", s.Tables[0].Name, "tables come back in name order")
	assert.Equal(t, "teams", s.Tables[1].Name)

	teams := s.Table("teams")
	id := teams.Attribute("id")
	require.NotNil(t, id)
	assert.Equal(t, schema.RolePrimary, id.Role)
	assert.Equal(t, schema.TypeInt, id.Type)

	name := teams.Attribute("name")
	require.NotNil(t, name)
	assert.Equal(t, schema.TypeVarchar, name.Type)
	assert.Equal(t, 80, name.Size)
	assert.True(t, name.Unique)

	players := s.Table("players")
	teamID := players.Attribute("team_id")
	require.NotNil(t, teamID)
	require.Equal(t, schema.RoleForeign, teamID.Role)
	require.NotNil(t, teamID.Ref)
	assert.Equal(t, "teams", teamID.Ref.Table)
	assert.Equal(t, "id", teamID.Ref.Attr)
	assert.Equal(t, schema.Cascade, teamID.Ref.OnDelete)
	assert.Equal(t, schema.NoAction, teamID.Ref.OnUpdate)
	assert.False(t, teamID.Ref.Optional)

	nick := players.Attribute("nick")
	require.NotNil(t, nick)
	assert.Equal(t, "'anon'", nick.Default, "defaults come back as written")
	assert.Equal(t, schema.RoleNormal, nick.Role)
}

func TestSQLiteBuildCompositeKeysStayPlain(t *testing.T) {
	path := seedSQLite(t,
		`CREATE TABLE pairs (
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			PRIMARY KEY (x, y)
		)`,
		`CREATE TABLE uses (
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			FOREIGN KEY (x, y) REFERENCES pairs (x, y)
		)`,
	)

	s, err := Build(context.Background(), discardLogger(), "sqlite:"+path)
	require.NoError(t, err)

	pairs := s.Table("pairs")
	require.NotNil(t, pairs)
	assert.Nil(t, pairs.Primary(), "composite primary key has no single-attribute slot")
	for _, a := range pairs.Attributes {
		assert.Equal(t, schema.RoleNormal, a.Role)
	}

	uses := s.Table("uses")
	require.NotNil(t, uses)
	for _, a := range uses.Attributes {
		assert.Equal(t, schema.RoleNormal, a.Role, "composite reference is skipped")
		assert.Nil(t, a.Ref)
	}
}

func TestSQLiteBuildImplicitReferenceTarget(t *testing.T) {
	path := seedSQLite(t,
		`CREATE TABLE coupons (
			code CHAR(8) PRIMARY KEY
		)`,
		`CREATE TABLE orders (
			id INTEGER NOT NULL PRIMARY KEY,
			coupon_code CHAR(8) REFERENCES coupons
		)`,
	)

	s, err := Build(context.Background(), discardLogger(), "sqlite:"+path)
	require.NoError(t, err)

	ref := s.Table("orders").Attribute("coupon_code").Ref
	require.NotNil(t, ref)
	assert.Equal(t, "coupons", ref.Table)
	assert.Equal(t, "code", ref.Attr, "table-only reference resolves to the target primary key")
	assert.True(t, ref.Optional)
}

func TestSQLiteSourceMissingFile(t *testing.T) {
	src := &sqliteSource{logger: discardLogger()}
	err := src.Connect(context.Background(), filepath.Join(t.TempDir(), "absent.db"))
	require.Error(t, err)
}
