package testutil

import (
	"fmt"
	"strings"
)

// dsnNameReplacer drops characters that would end the database name or start
// the query string of a SQLite URI.
var dsnNameReplacer = strings.NewReplacer("/", "_", " ", "_", "?", "_", "#", "_", "&", "_")

// NewTestDSN returns a shared-cache in-memory SQLite DSN named after the test.
// Subtest names from t.Name() are accepted as-is; each distinct name gets its
// own database.
func NewTestDSN(testName string) string {
	name := dsnNameReplacer.Replace(testName)
	if name == "" {
		name = "ludoteca"
	}
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
}
