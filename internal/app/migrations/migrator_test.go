package migrations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationVersion(t *testing.T) {
	assert.Equal(t, "001", MigrationVersion("migrations/001_create_students.sql"))
	assert.Equal(t, "010", MigrationVersion("010_add_index_on_course.sql"))
	assert.Equal(t, "seed.sql", MigrationVersion("seed.sql"))
}

func TestSortedMigrationFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_b.sql", "001_a.sql", "README.md", "010_c.sql"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "003_dir.sql"), 0o755))

	files, err := SortedMigrationFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "001_a.sql"),
		filepath.Join(dir, "002_b.sql"),
		filepath.Join(dir, "010_c.sql"),
	}, files)
}

func TestSortedMigrationFilesMissingDir(t *testing.T) {
	_, err := SortedMigrationFiles(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestStudentsMigrationDeclaresUniqueConstraints(t *testing.T) {
	content, err := os.ReadFile(filepath.Join("..", "..", "..", "migrations", "001_create_students.sql"))
	require.NoError(t, err)

	sql := string(content)
	assert.Contains(t, sql, "CONSTRAINT students_student_id_key UNIQUE (student_id)")
	assert.Contains(t, sql, "CONSTRAINT students_badge_number_key UNIQUE (badge_number)")
}
