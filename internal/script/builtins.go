package script

import (
	"fmt"
	"strings"

	"go.starlark.net/starlark"

	"github.com/schemaforge-labs/schemaforge/pkg/designer"
	"github.com/schemaforge-labs/schemaforge/pkg/schema"
)

// builtins returns the transform vocabulary. Every builtin returns None;
// results only matter through the design they mutate.
func (r *Runner) builtins() starlark.StringDict {
	return starlark.StringDict{
		"add_table":        starlark.NewBuiltin("add_table", r.addTable),
		"add_attribute":    starlark.NewBuiltin("add_attribute", r.addAttribute),
		"set_primary":      starlark.NewBuiltin("set_primary", r.setPrimary),
		"set_type":         starlark.NewBuiltin("set_type", r.setType),
		"link":             starlark.NewBuiltin("link", r.link),
		"unlink":           starlark.NewBuiltin("unlink", r.unlink),
		"rename_table":     starlark.NewBuiltin("rename_table", r.renameTable),
		"rename_attribute": starlark.NewBuiltin("rename_attribute", r.renameAttribute),
		"drop_attribute":   starlark.NewBuiltin("drop_attribute", r.dropAttribute),
		"drop_table":       starlark.NewBuiltin("drop_table", r.dropTable),
	}
}

func (r *Runner) addTable(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name); err != nil {
		return nil, err
	}
	if _, err := r.d.AddTable(name); err != nil {
		return nil, err
	}
	return starlark.None, nil
}

func (r *Runner) addAttribute(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var table, name, typ string
	var size, precision, scale int
	var values *starlark.List
	var notNull, unique, autoIncrement bool
	var defaultExpr, check string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"table", &table, "name", &name, "type", &typ,
		"size?", &size, "precision?", &precision, "scale?", &scale,
		"values?", &values, "not_null?", &notNull, "unique?", &unique,
		"auto_increment?", &autoIncrement, "default?", &defaultExpr, "check?", &check,
	); err != nil {
		return nil, err
	}

	dataType, raw := resolveType(typ)
	if dataType == schema.TypeRaw && raw == "" {
		return nil, fmt.Errorf("%s: type is empty", b.Name())
	}
	enumValues, err := stringList(b.Name(), values)
	if err != nil {
		return nil, err
	}
	if dataType == schema.TypeEnum && len(enumValues) == 0 {
		return nil, fmt.Errorf("%s: enum type needs at least one value", b.Name())
	}

	attr := &schema.Attribute{
		Name:          name,
		Type:          dataType,
		Raw:           raw,
		Size:          size,
		Precision:     precision,
		Scale:         scale,
		EnumValues:    enumValues,
		Role:          schema.RoleNormal,
		NotNull:       notNull,
		Unique:        unique,
		AutoIncrement: autoIncrement,
		Default:       defaultExpr,
		Check:         check,
	}
	if err := r.d.AddAttribute(table, attr); err != nil {
		return nil, err
	}
	return starlark.None, nil
}

func (r *Runner) setPrimary(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var table, attr string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "table", &table, "attr", &attr); err != nil {
		return nil, err
	}
	if err := r.d.PromoteToPrimary(table, attr); err != nil {
		return nil, err
	}
	return starlark.None, nil
}

func (r *Runner) setType(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var table, attr, typ string
	var size, precision, scale int
	var values *starlark.List
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"table", &table, "attr", &attr, "type", &typ,
		"size?", &size, "precision?", &precision, "scale?", &scale,
		"values?", &values,
	); err != nil {
		return nil, err
	}

	dataType, raw := resolveType(typ)
	enumValues, err := stringList(b.Name(), values)
	if err != nil {
		return nil, err
	}

	spec := designer.TypeSpec{
		Type:       dataType,
		Raw:        raw,
		Size:       size,
		Precision:  precision,
		Scale:      scale,
		EnumValues: enumValues,
	}
	if err := r.d.Retype(table, attr, spec); err != nil {
		return nil, err
	}
	return starlark.None, nil
}

func (r *Runner) link(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var table, attr, toTable, toAttr string
	var cardinality, onDelete, onUpdate string
	var optional bool
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"table", &table, "attr", &attr, "to_table", &toTable, "to_attr", &toAttr,
		"cardinality?", &cardinality, "on_delete?", &onDelete, "on_update?", &onUpdate,
		"optional?", &optional,
	); err != nil {
		return nil, err
	}

	card, err := cardinalityFrom(cardinality)
	if err != nil {
		return nil, err
	}
	delAction, err := referentialActionFrom(onDelete)
	if err != nil {
		return nil, err
	}
	updAction, err := referentialActionFrom(onUpdate)
	if err != nil {
		return nil, err
	}

	ref := schema.ForeignRef{
		Table:       toTable,
		Attr:        toAttr,
		Cardinality: card,
		OnDelete:    delAction,
		OnUpdate:    updAction,
		Optional:    optional,
	}
	if err := r.d.SetForeign(table, attr, ref); err != nil {
		return nil, err
	}
	return starlark.None, nil
}

func (r *Runner) unlink(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var table, attr string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "table", &table, "attr", &attr); err != nil {
		return nil, err
	}
	if err := r.d.ClearForeign(table, attr); err != nil {
		return nil, err
	}
	return starlark.None, nil
}

func (r *Runner) renameTable(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var old, new string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "old", &old, "new", &new); err != nil {
		return nil, err
	}
	if err := r.d.RenameTable(old, new); err != nil {
		return nil, err
	}
	return starlark.None, nil
}

func (r *Runner) renameAttribute(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var table, old, new string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "table", &table, "old", &old, "new", &new); err != nil {
		return nil, err
	}
	if err := r.d.RenameAttribute(table, old, new); err != nil {
		return nil, err
	}
	return starlark.None, nil
}

func (r *Runner) dropAttribute(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var table, attr string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "table", &table, "attr", &attr); err != nil {
		return nil, err
	}
	if err := r.d.DeleteAttribute(table, attr); err != nil {
		return nil, err
	}
	return starlark.None, nil
}

func (r *Runner) dropTable(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var table string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "table", &table); err != nil {
		return nil, err
	}
	if err := r.d.DeleteTable(table); err != nil {
		return nil, err
	}
	return starlark.None, nil
}

// resolveType maps a script type name onto the abstract vocabulary.
// Names outside the vocabulary ride through as raw concrete tokens,
// matching how the parser treats unknown types.
func resolveType(typ string) (schema.DataType, string) {
	name := schema.DataType(strings.ToLower(strings.TrimSpace(typ)))
	for _, known := range schema.DataTypes() {
		if name == known {
			return name, ""
		}
	}
	return schema.TypeRaw, strings.TrimSpace(typ)
}

func cardinalityFrom(s string) (schema.Cardinality, error) {
	switch c := schema.Cardinality(s); c {
	case schema.OneToOne, schema.OneToMany, schema.ManyToMany:
		return c, nil
	case "":
		return schema.OneToMany, nil
	default:
		return "", fmt.Errorf("unknown cardinality %q, expected one-to-one, one-to-many or many-to-many", s)
	}
}

func referentialActionFrom(s string) (schema.Action, error) {
	switch a := schema.Action(s); a {
	case schema.NoAction, schema.Cascade, schema.SetNull, schema.SetDefault, schema.Restrict:
		return a, nil
	case "":
		return schema.NoAction, nil
	default:
		return "", fmt.Errorf("unknown referential action %q, expected no-action, cascade, set-null, set-default or restrict", s)
	}
}

func stringList(builtin string, l *starlark.List) ([]string, error) {
	if l == nil {
		return nil, nil
	}
	out := make([]string, 0, l.Len())
	for i := 0; i < l.Len(); i++ {
		s, ok := starlark.AsString(l.Index(i))
		if !ok {
			return nil, fmt.Errorf("%s: values[%d] is not a string", builtin, i)
		}
		out = append(out, s)
	}
	return out, nil
}
