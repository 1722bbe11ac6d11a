package ddl_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemaforge-labs/schemaforge/pkg/ddl"
	_ "github.com/schemaforge-labs/schemaforge/pkg/dialects"
	"github.com/schemaforge-labs/schemaforge/pkg/schema"
)

// blogSchema is the shared generation fixture: an auto-increment key, a
// sized and an unsized varchar, a default synonym, and a required
// cascading foreign key.
func blogSchema() *schema.Schema {
	users := schema.NewTable("users")
	id := schema.NewPrimary("id", schema.TypeInt)
	id.AutoIncrement = true
	email := schema.NewAttribute("email", schema.TypeVarchar)
	email.NotNull = true
	email.Unique = true
	created := schema.NewAttribute("created_at", schema.TypeTimestamp)
	created.NotNull = true
	created.Default = "now"
	users.Attributes = []*schema.Attribute{id, email, created}

	posts := schema.NewTable("posts")
	postID := schema.NewPrimary("id", schema.TypeInt)
	postID.AutoIncrement = true
	title := schema.NewAttribute("title", schema.TypeVarchar)
	title.Size = 200
	title.NotNull = true
	author := schema.NewForeign("author_id", schema.TypeInt, schema.ForeignRef{
		Table:       "users",
		Attr:        "id",
		Cardinality: schema.OneToMany,
		OnDelete:    schema.Cascade,
		OnUpdate:    schema.NoAction,
	})
	author.NotNull = true
	posts.Attributes = []*schema.Attribute{postID, title, author}

	return &schema.Schema{Tables: []*schema.Table{users, posts}}
}

func TestGeneratePostgreSQL(t *testing.T) {
	out, err := ddl.Generate(blogSchema(), "postgresql", ddl.Options{})
	require.NoError(t, err)

	want := `CREATE TABLE "users" (
  "id" SERIAL NOT NULL PRIMARY KEY,
  "email" VARCHAR(255) NOT NULL UNIQUE,
  "created_at" TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE "posts" (
  "id" SERIAL NOT NULL PRIMARY KEY,
  "title" VARCHAR(200) NOT NULL,
  "author_id" INTEGER NOT NULL,
  FOREIGN KEY ("author_id") REFERENCES "users" ("id") ON DELETE CASCADE
);

CREATE INDEX "idx_posts_author_id" ON "posts" ("author_id");
`
	assert.Equal(t, want, out)
}

func TestGenerateMySQL(t *testing.T) {
	out, err := ddl.Generate(blogSchema(), "mysql", ddl.Options{})
	require.NoError(t, err)

	want := strings.Join([]string{
		"CREATE TABLE `users` (",
		"  `id` INT NOT NULL AUTO_INCREMENT PRIMARY KEY,",
		"  `email` VARCHAR(255) NOT NULL UNIQUE,",
		"  `created_at` TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP",
		");",
		"",
		"CREATE TABLE `posts` (",
		"  `id` INT NOT NULL AUTO_INCREMENT PRIMARY KEY,",
		"  `title` VARCHAR(200) NOT NULL,",
		"  `author_id` INT NOT NULL,",
		"  FOREIGN KEY (`author_id`) REFERENCES `users` (`id`) ON DELETE CASCADE",
		");",
		"",
		"CREATE INDEX `idx_posts_author_id` ON `posts` (`author_id`);",
		"",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestGenerateSQLServer(t *testing.T) {
	out, err := ddl.Generate(blogSchema(), "sqlserver", ddl.Options{})
	require.NoError(t, err)

	want := `CREATE TABLE [users] (
  [id] INT IDENTITY(1,1) NOT NULL PRIMARY KEY,
  [email] VARCHAR(255) NOT NULL UNIQUE,
  [created_at] DATETIME2 NOT NULL DEFAULT GETDATE()
);

CREATE TABLE [posts] (
  [id] INT IDENTITY(1,1) NOT NULL PRIMARY KEY,
  [title] VARCHAR(200) NOT NULL,
  [author_id] INT NOT NULL,
  FOREIGN KEY ([author_id]) REFERENCES [users] ([id]) ON DELETE CASCADE
);

CREATE INDEX [idx_posts_author_id] ON [posts] ([author_id]);
`
	assert.Equal(t, want, out)
}

func TestGenerateSQLite(t *testing.T) {
	out, err := ddl.Generate(blogSchema(), "sqlite", ddl.Options{})
	require.NoError(t, err)

	want := `CREATE TABLE "users" (
  "id" INTEGER NOT NULL PRIMARY KEY,
  "email" VARCHAR(255) NOT NULL UNIQUE,
  "created_at" TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE "posts" (
  "id" INTEGER NOT NULL PRIMARY KEY,
  "title" VARCHAR(200) NOT NULL,
  "author_id" INTEGER NOT NULL,
  FOREIGN KEY ("author_id") REFERENCES "users" ("id") ON DELETE CASCADE
);

CREATE INDEX "idx_posts_author_id" ON "posts" ("author_id");
`
	assert.Equal(t, want, out, "implicit rowid keys emit no auto-increment keyword")
}

func TestGenerateIncludeDrops(t *testing.T) {
	out, err := ddl.Generate(blogSchema(), "postgresql", ddl.Options{IncludeDrops: true})
	require.NoError(t, err)

	want := `DROP TABLE IF EXISTS "posts";
DROP TABLE IF EXISTS "users";

CREATE TABLE "users" (`
	assert.True(t, strings.HasPrefix(out, want),
		"drops must precede creates in reverse declaration order, got:\n%s", out)
}

func TestGenerateIncludeComments(t *testing.T) {
	out, err := ddl.Generate(blogSchema(), "postgresql", ddl.Options{IncludeComments: true})
	require.NoError(t, err)
	assert.Contains(t, out, "-- Table: users\nCREATE TABLE \"users\" (")
	assert.Contains(t, out, "-- Table: posts\nCREATE TABLE \"posts\" (")
}

func TestGenerateDeterministic(t *testing.T) {
	s := blogSchema()
	for _, name := range []string{"mysql", "postgresql", "sqlite", "sqlserver"} {
		first, err := ddl.Generate(s, name, ddl.Options{IncludeDrops: true, IncludeComments: true})
		require.NoError(t, err)
		second, err := ddl.Generate(s, name, ddl.Options{IncludeDrops: true, IncludeComments: true})
		require.NoError(t, err)
		assert.Equal(t, first, second, "dialect %s", name)
	}
}

func TestGenerateUnknownDialect(t *testing.T) {
	_, err := ddl.Generate(blogSchema(), "oracle", ddl.Options{})
	require.Error(t, err)
	_, isDefects := schema.AsDefects(err)
	assert.False(t, isDefects, "an unknown dialect is an argument error, not a schema defect")
	for _, name := range []string{"mysql", "postgresql", "sqlite", "sqlserver"} {
		assert.Contains(t, err.Error(), name)
	}
}

func TestGenerateRefusesDefectiveSchema(t *testing.T) {
	s := blogSchema()

	// duplicate of users differing only in case, plus a dangling reference
	dup := schema.NewTable("Users")
	dup.Attributes = []*schema.Attribute{schema.NewPrimary("id", schema.TypeInt)}
	s.Tables = append(s.Tables, dup)
	s.Tables[1].Attributes = append(s.Tables[1].Attributes,
		schema.NewForeign("tag_id", schema.TypeInt, schema.ForeignRef{Table: "tags", Attr: "id"}))

	out, err := ddl.Generate(s, "postgresql", ddl.Options{})
	assert.Empty(t, out, "no partial output on a defective schema")
	defects, ok := schema.AsDefects(err)
	require.True(t, ok)
	require.Len(t, defects, 2, "every defect reported in one pass")

	kinds := map[schema.DefectKind]bool{}
	for _, d := range defects {
		kinds[d.Kind] = true
	}
	assert.True(t, kinds[schema.DefectDuplicateTable])
	assert.True(t, kinds[schema.DefectUnresolvedReference])
}

func TestGenerateZeroAttributeTable(t *testing.T) {
	s := blogSchema()
	s.Tables = append(s.Tables, schema.NewTable("drafts"))

	out, err := ddl.Generate(s, "postgresql", ddl.Options{IncludeDrops: true})
	require.NoError(t, err)
	assert.Contains(t, out, `-- Table "drafts" has no attributes and was not created.`,
		"the explanatory comment is emitted even without IncludeComments")
	assert.NotContains(t, out, `CREATE TABLE "drafts"`)
	assert.NotContains(t, out, `DROP TABLE IF EXISTS "drafts"`,
		"a table that is never created is never dropped")
}

func TestGenerateNormalizesIdentifiers(t *testing.T) {
	items := schema.NewTable("Order  Items")
	id := schema.NewPrimary("id", schema.TypeInt)
	price := schema.NewAttribute("unit price", schema.TypeDecimal)
	price.Precision = 10
	price.Scale = 2
	items.Attributes = []*schema.Attribute{id, price}

	lines := schema.NewTable("lines")
	lineID := schema.NewPrimary("id", schema.TypeInt)
	// reference spelled with different case and spacing than the table
	item := schema.NewForeign("item_id", schema.TypeInt, schema.ForeignRef{Table: "order items", Attr: "id"})
	item.NotNull = true
	lines.Attributes = []*schema.Attribute{lineID, item}

	s := &schema.Schema{Tables: []*schema.Table{items, lines}}
	out, err := ddl.Generate(s, "postgresql", ddl.Options{})
	require.NoError(t, err)

	assert.Contains(t, out, `CREATE TABLE "Order_Items"`)
	assert.Contains(t, out, `"unit_price" NUMERIC(10,2)`)
	assert.Contains(t, out, `REFERENCES "Order_Items" ("id")`,
		"the clause must carry the declared spelling, not the reference's variant")
}

func manyToManySchema() *schema.Schema {
	students := schema.NewTable("students")
	sid := schema.NewPrimary("id", schema.TypeInt)
	sid.AutoIncrement = true
	course := schema.NewForeign("course_id", schema.TypeInt, schema.ForeignRef{
		Table:       "courses",
		Attr:        "id",
		Cardinality: schema.ManyToMany,
	})
	students.Attributes = []*schema.Attribute{sid, course}

	courses := schema.NewTable("courses")
	cid := schema.NewPrimary("id", schema.TypeInt)
	cid.AutoIncrement = true
	// the same pairing declared from the other side must not duplicate
	student := schema.NewForeign("student_id", schema.TypeInt, schema.ForeignRef{
		Table:       "students",
		Attr:        "id",
		Cardinality: schema.ManyToMany,
	})
	courses.Attributes = []*schema.Attribute{cid, student}

	return &schema.Schema{Tables: []*schema.Table{students, courses}}
}

func TestGenerateJunctionTable(t *testing.T) {
	out, err := ddl.Generate(manyToManySchema(), "postgresql", ddl.Options{})
	require.NoError(t, err)

	wantJunction := `CREATE TABLE "courses_students" (
  "courses_id" INTEGER NOT NULL,
  "students_id" INTEGER NOT NULL,
  "created_at" TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY ("courses_id", "students_id"),
  FOREIGN KEY ("courses_id") REFERENCES "courses" ("id") ON DELETE CASCADE ON UPDATE CASCADE,
  FOREIGN KEY ("students_id") REFERENCES "students" ("id") ON DELETE CASCADE ON UPDATE CASCADE
);`
	assert.Contains(t, out, wantJunction,
		"sides ordered by table name, key types stripped of auto-increment")
	assert.Equal(t, 3, strings.Count(out, "CREATE TABLE"),
		"one junction per distinct pair regardless of which side declares it")
	assert.NotContains(t, out, `FOREIGN KEY ("course_id")`,
		"many-to-many attributes get no constraint of their own")
}

func TestGenerateJunctionDropsFirst(t *testing.T) {
	out, err := ddl.Generate(manyToManySchema(), "postgresql", ddl.Options{IncludeDrops: true})
	require.NoError(t, err)

	want := `DROP TABLE IF EXISTS "courses_students";
DROP TABLE IF EXISTS "courses";
DROP TABLE IF EXISTS "students";`
	assert.True(t, strings.HasPrefix(out, want),
		"junction drops first, then tables in reverse declaration order, got:\n%s", out)
}

func TestGenerateJunctionRequiresPrimaryKeys(t *testing.T) {
	s := manyToManySchema()
	// strip the primary key from courses
	s.Tables[1].Attributes[0].Role = schema.RoleNormal

	out, err := ddl.Generate(s, "postgresql", ddl.Options{})
	require.NoError(t, err)
	assert.NotContains(t, out, "courses_students",
		"no junction without a primary key on both sides")
}

func TestGenerateSelfPairSynthesizesNothing(t *testing.T) {
	people := schema.NewTable("people")
	id := schema.NewPrimary("id", schema.TypeInt)
	friend := schema.NewForeign("friend_id", schema.TypeInt, schema.ForeignRef{
		Table:       "people",
		Attr:        "id",
		Cardinality: schema.ManyToMany,
	})
	people.Attributes = []*schema.Attribute{id, friend}

	out, err := ddl.Generate(&schema.Schema{Tables: []*schema.Table{people}}, "postgresql", ddl.Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "CREATE TABLE"))
}

func TestGenerateOptionalForeignKey(t *testing.T) {
	coupons := schema.NewTable("coupons")
	coupons.Attributes = []*schema.Attribute{schema.NewPrimary("code", schema.TypeChar)}
	coupons.Attributes[0].Size = 8

	orders := schema.NewTable("orders")
	id := schema.NewPrimary("id", schema.TypeInt)
	coupon := schema.NewForeign("coupon_code", schema.TypeChar, schema.ForeignRef{
		Table:       "coupons",
		Attr:        "code",
		Cardinality: schema.OneToMany,
		OnDelete:    schema.SetNull,
		Optional:    true,
	})
	coupon.Size = 8
	coupon.NotNull = true
	orders.Attributes = []*schema.Attribute{id, coupon}

	out, err := ddl.Generate(&schema.Schema{Tables: []*schema.Table{coupons, orders}}, "postgresql", ddl.Options{})
	require.NoError(t, err)
	assert.Contains(t, out, "\n  \"coupon_code\" CHAR(8),\n",
		"an optional reference stays nullable even when flagged required")
	assert.Contains(t, out, `FOREIGN KEY ("coupon_code") REFERENCES "coupons" ("code") ON DELETE SET NULL`)
}

func TestGenerateForeignKeysAsTableConstraints(t *testing.T) {
	for _, name := range []string{"mysql", "postgresql", "sqlite", "sqlserver"} {
		out, err := ddl.Generate(blogSchema(), name, ddl.Options{})
		require.NoError(t, err)
		assert.Contains(t, out, "FOREIGN KEY", "dialect %s", name)
		for _, line := range strings.Split(out, "\n") {
			if strings.Contains(line, "REFERENCES") {
				assert.Contains(t, line, "FOREIGN KEY",
					"dialect %s: REFERENCES belongs in table-level constraints only, got %q", name, line)
			}
		}
	}
}

func TestGenerateEnumPerDialect(t *testing.T) {
	tbl := schema.NewTable("tickets")
	id := schema.NewPrimary("id", schema.TypeInt)
	state := schema.NewAttribute("state", schema.TypeEnum)
	state.EnumValues = []string{"open", "closed"}
	state.NotNull = true
	tbl.Attributes = []*schema.Attribute{id, state}
	s := &schema.Schema{Tables: []*schema.Table{tbl}}

	tests := []struct {
		dialect string
		want    string
	}{
		{"mysql", "`state` ENUM('open','closed') NOT NULL"},
		{"postgresql", `"state" TEXT NOT NULL`},
		{"sqlite", `"state" TEXT NOT NULL`},
		{"sqlserver", "[state] VARCHAR(255) NOT NULL"},
	}
	for _, tt := range tests {
		out, err := ddl.Generate(s, tt.dialect, ddl.Options{})
		require.NoError(t, err)
		assert.Contains(t, out, tt.want, "dialect %s", tt.dialect)
	}
}

func TestGenerateDefaultSynonyms(t *testing.T) {
	tbl := schema.NewTable("events")
	id := schema.NewPrimary("id", schema.TypeUUID)
	id.Default = "generate uuid"
	at := schema.NewAttribute("at", schema.TypeTimestamp)
	at.Default = "now"
	tbl.Attributes = []*schema.Attribute{id, at}
	s := &schema.Schema{Tables: []*schema.Table{tbl}}

	tests := []struct {
		dialect string
		wantID  string
		wantAt  string
	}{
		{"postgresql", "DEFAULT gen_random_uuid()", "DEFAULT CURRENT_TIMESTAMP"},
		{"mysql", "DEFAULT (UUID())", "DEFAULT CURRENT_TIMESTAMP"},
		{"sqlite", "DEFAULT (lower(hex(randomblob(16))))", "DEFAULT CURRENT_TIMESTAMP"},
		{"sqlserver", "DEFAULT NEWID()", "DEFAULT GETDATE()"},
	}
	for _, tt := range tests {
		out, err := ddl.Generate(s, tt.dialect, ddl.Options{})
		require.NoError(t, err)
		assert.Contains(t, out, tt.wantID, "dialect %s", tt.dialect)
		assert.Contains(t, out, tt.wantAt, "dialect %s", tt.dialect)
	}
}

func TestGenerateEmptySchema(t *testing.T) {
	out, err := ddl.Generate(schema.New(), "postgresql", ddl.Options{})
	require.NoError(t, err)
	assert.Empty(t, out)
}
