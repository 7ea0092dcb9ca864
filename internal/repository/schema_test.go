package repository

import (
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var createTableRe = regexp.MustCompile(`(?s)CREATE TABLE (\w+) \((.*?)\n\);`)

// schemaColumns parses scripts/schema.sql into table -> column-name set.
// sqlmock never checks columns against the DDL, so this is the one place
// where drift between the repositories and the schema gets caught.
func schemaColumns(t *testing.T) map[string]map[string]bool {
	t.Helper()

	ddl, err := os.ReadFile("../../scripts/schema.sql")
	require.NoError(t, err)

	tables := make(map[string]map[string]bool)
	for _, m := range createTableRe.FindAllStringSubmatch(string(ddl), -1) {
		cols := make(map[string]bool)
		for _, line := range strings.Split(m[2], "\n") {
			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}
			name := fields[0]
			// Column names are lowercase; constraint clauses start uppercase.
			if name != strings.ToLower(name) {
				continue
			}
			cols[name] = true
		}
		tables[m[1]] = cols
	}
	return tables
}

func TestRepositoryColumnsExistInSchema(t *testing.T) {
	tables := schemaColumns(t)

	cases := []struct {
		table   string
		columns string
	}{
		{"users", userColumns},
		{"classrooms", classroomColumns},
		{"teachers", teacherColumns},
		{"activities", activityColumns},
		{"enrollments", enrollmentColumns},
		{"weekly_slots", weeklySlotColumns},
		{"classroom_assignments", assignmentColumns},
		{"reservations", reservationColumns},
	}

	for _, tc := range cases {
		t.Run(tc.table, func(t *testing.T) {
			cols, ok := tables[tc.table]
			require.True(t, ok, "table %s missing from schema.sql", tc.table)
			for _, col := range strings.Split(tc.columns, ", ") {
				assert.True(t, cols[col], "column %s.%s not in schema.sql", tc.table, col)
			}
		})
	}
}
