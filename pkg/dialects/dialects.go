// Package dialects registers every supported DDL dialect. Import it for
// side effects wherever the full closed set (mysql, postgresql, sqlite,
// sqlserver) must be available:
//
//	import _ "github.com/schemaforge-labs/schemaforge/pkg/dialects"
package dialects

import (
	_ "github.com/schemaforge-labs/schemaforge/pkg/dialects/mysql"
	_ "github.com/schemaforge-labs/schemaforge/pkg/dialects/postgres"
	_ "github.com/schemaforge-labs/schemaforge/pkg/dialects/sqlite"
	_ "github.com/schemaforge-labs/schemaforge/pkg/dialects/sqlserver"
)
