package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"
)

// MigrationFile describes an up/down migration pair on disk
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	Timestamp   time.Time
	UpPath      string
	DownPath    string
}

// CreateMigration writes an empty up/down migration pair into dir. The
// version prefix is the current UTC time, so files sort in creation order.
func CreateMigration(dir, name, description string) (*MigrationFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create migrations dir: %w", err)
	}

	now := time.Now().UTC()
	version := now.Format("20060102150405")
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}

	mf := &MigrationFile{
		Version:     version,
		Name:        slug,
		Description: description,
		Timestamp:   now,
		UpPath:      filepath.Join(dir, fmt.Sprintf("%s_%s.up.sql", version, slug)),
		DownPath:    filepath.Join(dir, fmt.Sprintf("%s_%s.down.sql", version, slug)),
	}

	header := fmt.Sprintf("-- %s\n-- created %s\n", description, now.Format(time.RFC3339))
	up := header + "\n-- apply changes here\n"
	down := header + "\n-- revert changes here\n"

	if err := os.WriteFile(mf.UpPath, []byte(up), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", mf.UpPath, err)
	}
	if err := os.WriteFile(mf.DownPath, []byte(down), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", mf.DownPath, err)
	}
	return mf, nil
}

// ListMigrations returns the up migrations found in dir, oldest first
func ListMigrations(dir string) ([]MigrationFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	var files []MigrationFile
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		base := strings.TrimSuffix(name, ".up.sql")
		version, slug, ok := strings.Cut(base, "_")
		if !ok {
			continue
		}
		files = append(files, MigrationFile{
			Version:  version,
			Name:     slug,
			UpPath:   filepath.Join(dir, name),
			DownPath: filepath.Join(dir, base+".down.sql"),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Version < files[j].Version })
	return files, nil
}

// sanitizeName lowercases the name and collapses anything that is not a
// letter or digit into single underscores.
func sanitizeName(name string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
