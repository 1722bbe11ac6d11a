package ddl_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemaforge-labs/schemaforge/pkg/ddl"
	_ "github.com/schemaforge-labs/schemaforge/pkg/dialects"
	"github.com/schemaforge-labs/schemaforge/pkg/parser"
	"github.com/schemaforge-labs/schemaforge/pkg/schema"
)

var allDialects = []string{"mysql", "postgresql", "sqlite", "sqlserver"}

// storeSchema exercises most of the type vocabulary plus defaults, checks,
// unique columns, and both required and optional foreign keys.
func storeSchema() *schema.Schema {
	customers := schema.NewTable("customers")
	custID := schema.NewPrimary("id", schema.TypeUUID)
	custID.Default = "generate uuid"
	name := schema.NewAttribute("name", schema.TypeVarchar)
	name.Size = 80
	name.NotNull = true
	active := schema.NewAttribute("active", schema.TypeBoolean)
	active.NotNull = true
	active.Default = "TRUE"
	balance := schema.NewAttribute("balance", schema.TypeDecimal)
	balance.Precision = 12
	balance.Scale = 2
	balance.Check = "balance >= 0"
	notes := schema.NewAttribute("notes", schema.TypeText)
	joined := schema.NewAttribute("joined", schema.TypeDate)
	joined.NotNull = true
	wake := schema.NewAttribute("wake", schema.TypeTime)
	customers.Attributes = []*schema.Attribute{custID, name, active, balance, notes, joined, wake}

	coupons := schema.NewTable("coupons")
	code := schema.NewPrimary("code", schema.TypeChar)
	code.Size = 8
	percent := schema.NewAttribute("percent_off", schema.TypeSmallInt)
	percent.NotNull = true
	percent.Default = "10"
	coupons.Attributes = []*schema.Attribute{code, percent}

	orders := schema.NewTable("orders")
	orderID := schema.NewPrimary("id", schema.TypeBigInt)
	orderID.AutoIncrement = true
	refNo := schema.NewAttribute("reference_no", schema.TypeVarchar)
	refNo.Size = 12
	refNo.NotNull = true
	refNo.Unique = true
	custRef := schema.NewForeign("customer_id", schema.TypeUUID, schema.ForeignRef{
		Table:       "customers",
		Attr:        "id",
		Cardinality: schema.OneToMany,
		OnDelete:    schema.Restrict,
	})
	custRef.NotNull = true
	couponRef := schema.NewForeign("coupon_code", schema.TypeChar, schema.ForeignRef{
		Table:       "coupons",
		Attr:        "code",
		Cardinality: schema.OneToMany,
		OnDelete:    schema.SetNull,
		OnUpdate:    schema.Cascade,
		Optional:    true,
	})
	couponRef.Size = 8
	status := schema.NewAttribute("status", schema.TypeEnum)
	status.EnumValues = []string{"new", "paid", "shipped"}
	status.NotNull = true
	status.Default = "'new'"
	total := schema.NewAttribute("total", schema.TypeFloat)
	total.NotNull = true
	weight := schema.NewAttribute("weight", schema.TypeDouble)
	meta := schema.NewAttribute("meta", schema.TypeJSON)
	placed := schema.NewAttribute("placed_at", schema.TypeTimestamp)
	placed.NotNull = true
	placed.Default = "now"
	shipDay := schema.NewAttribute("ship_day", schema.TypeDateTime)
	attachment := schema.NewAttribute("attachment", schema.TypeBlob)
	orders.Attributes = []*schema.Attribute{
		orderID, refNo, custRef, couponRef, status,
		total, weight, meta, placed, shipDay, attachment,
	}

	return &schema.Schema{Tables: []*schema.Table{customers, coupons, orders}}
}

// Generating, reparsing, and generating again must reproduce the first
// script byte for byte.
func TestGenerateParseGenerateIsIdempotent(t *testing.T) {
	src := storeSchema()
	options := []ddl.Options{
		{},
		{IncludeDrops: true},
		{IncludeDrops: true, IncludeComments: true},
	}
	for _, dialect := range allDialects {
		for i, opts := range options {
			label := fmt.Sprintf("%s/opts%d", dialect, i)

			first, err := ddl.Generate(src, dialect, opts)
			require.NoError(t, err, label)

			parsed, err := parser.Parse(first)
			require.NoError(t, err, "%s: generated DDL must parse cleanly:\n%s", label, first)

			second, err := ddl.Generate(parsed, dialect, opts)
			require.NoError(t, err, label)
			assert.Equal(t, first, second, label)
		}
	}
}

func TestRoundTripStructure(t *testing.T) {
	src := storeSchema()
	for _, dialect := range allDialects {
		out, err := ddl.Generate(src, dialect, ddl.Options{})
		require.NoError(t, err, dialect)

		got, err := parser.Parse(out)
		require.NoError(t, err, dialect)
		require.Len(t, got.Tables, 3, dialect)
		assert.Equal(t, "customers", got.Tables[0].Name, dialect)
		assert.Equal(t, "coupons", got.Tables[1].Name, dialect)
		assert.Equal(t, "orders", got.Tables[2].Name, dialect)

		// column order and count survive
		orders := got.Table("orders")
		require.NotNil(t, orders, dialect)
		require.Len(t, orders.Attributes, 11, dialect)
		assert.Equal(t, "reference_no", orders.Attributes[1].Name, dialect)

		// key roles
		id := orders.Attribute("id")
		require.NotNil(t, id, dialect)
		assert.Equal(t, schema.RolePrimary, id.Role, dialect)
		assert.True(t, id.NotNull, dialect)
		if dialect != "sqlite" {
			// sqlite keys are implicitly auto-incrementing, the flag is
			// not spelled out and therefore not recoverable
			assert.True(t, id.AutoIncrement, dialect)
		}

		// required foreign key with its action
		custRef := orders.Attribute("customer_id")
		require.NotNil(t, custRef, dialect)
		assert.Equal(t, schema.RoleForeign, custRef.Role, dialect)
		require.NotNil(t, custRef.Ref, dialect)
		assert.Equal(t, "customers", custRef.Ref.Table, dialect)
		assert.Equal(t, "id", custRef.Ref.Attr, dialect)
		assert.Equal(t, schema.Restrict, custRef.Ref.OnDelete, dialect)
		assert.Equal(t, schema.NoAction, custRef.Ref.OnUpdate, dialect)
		assert.False(t, custRef.Ref.Optional, dialect)
		assert.True(t, custRef.NotNull, dialect)

		// optional foreign key with both actions
		couponRef := orders.Attribute("coupon_code")
		require.NotNil(t, couponRef, dialect)
		require.NotNil(t, couponRef.Ref, dialect)
		assert.Equal(t, "coupons", couponRef.Ref.Table, dialect)
		assert.Equal(t, schema.SetNull, couponRef.Ref.OnDelete, dialect)
		assert.Equal(t, schema.Cascade, couponRef.Ref.OnUpdate, dialect)
		assert.True(t, couponRef.Ref.Optional, dialect)
		assert.False(t, couponRef.NotNull, dialect)

		// precision, scale, and check expression
		balance := got.Table("customers").Attribute("balance")
		require.NotNil(t, balance, dialect)
		assert.Equal(t, schema.TypeDecimal, balance.Type, dialect)
		assert.Equal(t, 12, balance.Precision, dialect)
		assert.Equal(t, 2, balance.Scale, dialect)
		assert.Equal(t, "balance >= 0", balance.Check, dialect)

		// unique and plain defaults
		assert.True(t, orders.Attribute("reference_no").Unique, dialect)
		assert.Equal(t, "TRUE", got.Table("customers").Attribute("active").Default, dialect)
		assert.Equal(t, "'new'", orders.Attribute("status").Default, dialect)

		// default synonyms literalize into the dialect expression
		assert.NotEmpty(t, got.Table("customers").Attribute("id").Default, dialect)
		assert.NotEmpty(t, orders.Attribute("placed_at").Default, dialect)
	}
}

// Abstract types that a dialect cannot spell degrade to the nearest
// representable type, and the degradation is stable.
func TestRoundTripTypeMapping(t *testing.T) {
	src := storeSchema()

	wantTypes := map[string]map[string]schema.DataType{
		"postgresql": {
			"id":       schema.TypeUUID,
			"status":   schema.TypeText,
			"meta":     schema.TypeJSON,
			"ship_day": schema.TypeTimestamp,
		},
		"mysql": {
			"id":       schema.TypeChar,
			"status":   schema.TypeEnum,
			"meta":     schema.TypeJSON,
			"ship_day": schema.TypeDateTime,
		},
		"sqlite": {
			"id":       schema.TypeUUID,
			"status":   schema.TypeText,
			"meta":     schema.TypeJSON,
			"ship_day": schema.TypeDateTime,
		},
		"sqlserver": {
			"id":       schema.TypeUUID,
			"status":   schema.TypeVarchar,
			"meta":     schema.TypeText,
			"ship_day": schema.TypeDateTime,
		},
	}

	for dialect, want := range wantTypes {
		out, err := ddl.Generate(src, dialect, ddl.Options{})
		require.NoError(t, err, dialect)
		got, err := parser.Parse(out)
		require.NoError(t, err, dialect)

		assert.Equal(t, want["id"], got.Table("customers").Attribute("id").Type,
			"%s: customers.id", dialect)
		orders := got.Table("orders")
		assert.Equal(t, want["status"], orders.Attribute("status").Type, "%s: orders.status", dialect)
		assert.Equal(t, want["meta"], orders.Attribute("meta").Type, "%s: orders.meta", dialect)
		assert.Equal(t, want["ship_day"], orders.Attribute("ship_day").Type, "%s: orders.ship_day", dialect)

		if want["status"] == schema.TypeEnum {
			assert.Equal(t, []string{"new", "paid", "shipped"}, orders.Attribute("status").EnumValues, dialect)
		}
	}
}

// A hand-written script with an unknown column type survives a parse and
// regenerate cycle verbatim.
func TestRoundTripRawTypePreserved(t *testing.T) {
	src := `CREATE TABLE places (
  id INTEGER NOT NULL PRIMARY KEY,
  region GEOGRAPHY(POINT, 4326) NOT NULL
);`
	s, err := parser.Parse(src)
	require.NoError(t, err)

	attr := s.Table("places").Attribute("region")
	require.NotNil(t, attr)
	assert.Equal(t, schema.TypeRaw, attr.Type)
	assert.Equal(t, "GEOGRAPHY(POINT, 4326)", attr.Raw)

	out, err := ddl.Generate(s, "postgresql", ddl.Options{})
	require.NoError(t, err)
	assert.Contains(t, out, `"region" GEOGRAPHY(POINT, 4326) NOT NULL`)
}
