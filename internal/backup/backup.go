// Package backup snapshots the live SQLite database into a backups
// directory. Every backup gets a BLAKE2b-256 checksum sidecar so a
// restore can refuse a file that rotted on disk.
package backup

import (
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"

	"rsm/internal/models"
)

const prefix = "rsm-backup-"

// Manager creates, verifies, and restores database backups.
type Manager struct {
	DB         *sql.DB
	SourcePath string // live database file
	Dir        string // backup directory
	// RetentionDays bounds CleanOld: backups older than this are removed.
	RetentionDays int

	mu sync.Mutex
}

func NewManager(db *sql.DB, sourcePath, dir string, retentionDays int) *Manager {
	return &Manager{DB: db, SourcePath: sourcePath, Dir: dir, RetentionDays: retentionDays}
}

// Create snapshots the database with VACUUM INTO and writes the checksum
// sidecar. It returns the backup filename.
func (m *Manager) Create() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.MkdirAll(m.Dir, 0755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	ts := time.Now().Format("2006-01-02T15-04-05")
	filename := fmt.Sprintf("%s%s.db", prefix, ts)
	destPath := filepath.Join(m.Dir, filename)

	// If file exists, add a counter suffix
	counter := 1
	for {
		if _, err := os.Stat(destPath); os.IsNotExist(err) {
			break
		}
		filename = fmt.Sprintf("%s%s-%d.db", prefix, ts, counter)
		destPath = filepath.Join(m.Dir, filename)
		counter++
	}

	if _, err := m.DB.Exec(fmt.Sprintf(`VACUUM INTO '%s'`, destPath)); err != nil {
		return "", fmt.Errorf("vacuum into: %w", err)
	}

	sum, err := checksumFile(destPath)
	if err != nil {
		return "", fmt.Errorf("checksum backup: %w", err)
	}
	if err := os.WriteFile(destPath+".sum", []byte(sum+"  "+filename+"\n"), 0644); err != nil {
		return "", fmt.Errorf("write checksum: %w", err)
	}
	return filename, nil
}

// List returns the backups on disk, newest first.
func (m *Manager) List() ([]models.BackupInfo, error) {
	entries, err := os.ReadDir(m.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.BackupInfo{}, nil
		}
		return nil, err
	}

	backups := []models.BackupInfo{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) || !strings.HasSuffix(e.Name(), ".db") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		b := models.BackupInfo{
			Filename:  e.Name(),
			Size:      info.Size(),
			CreatedAt: info.ModTime().UTC().Format(time.RFC3339),
		}
		if sum, err := readManifest(filepath.Join(m.Dir, e.Name()+".sum")); err == nil {
			b.Checksum = sum
		}
		backups = append(backups, b)
	}

	// Sort newest first
	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Filename > backups[j].Filename
	})
	return backups, nil
}

// Verify recomputes the named backup's checksum and compares it to the
// sidecar.
func (m *Manager) Verify(filename string) error {
	if err := checkName(filename); err != nil {
		return err
	}
	path := filepath.Join(m.Dir, filename)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("backup %s: %w", filename, err)
	}

	want, err := readManifest(path + ".sum")
	if err != nil {
		return fmt.Errorf("read checksum for %s: %w", filename, err)
	}
	got, err := checksumFile(path)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("checksum mismatch for %s: file is corrupt or was modified", filename)
	}
	return nil
}

// Restore verifies the named backup, snapshots the current database, and
// copies the backup over the live file. The caller must reopen the store
// afterwards.
func (m *Manager) Restore(filename string) error {
	if err := m.Verify(filename); err != nil {
		return err
	}

	// Keep a way back if the restored state turns out wrong.
	if _, err := m.Create(); err != nil {
		return fmt.Errorf("pre-restore backup: %w", err)
	}

	// Empty the WAL first. Frames left in it would be checkpointed over the
	// restored file when the old handle closes.
	if m.DB != nil {
		if _, err := m.DB.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
			return fmt.Errorf("checkpoint before restore: %w", err)
		}
	}

	data, err := os.ReadFile(filepath.Join(m.Dir, filename))
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}
	if err := os.WriteFile(m.SourcePath, data, 0644); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	// Sidecars from a crashed process would replay old writes over the
	// restored file on the next open.
	os.Remove(m.SourcePath + "-wal")
	os.Remove(m.SourcePath + "-shm")
	return nil
}

// CleanOld removes backups older than RetentionDays, along with their
// sidecars, and returns how many were deleted.
func (m *Manager) CleanOld() (int, error) {
	if m.RetentionDays <= 0 {
		return 0, nil
	}
	entries, err := os.ReadDir(m.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := time.Now().AddDate(0, 0, -m.RetentionDays)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) || !strings.HasSuffix(e.Name(), ".db") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(m.Dir, e.Name())
		if err := os.Remove(path); err != nil {
			log.Printf("remove old backup %s: %v", e.Name(), err)
			continue
		}
		os.Remove(path + ".sum")
		removed++
	}
	return removed, nil
}

func checkName(filename string) error {
	if filename == "" || strings.Contains(filename, "/") || strings.Contains(filename, "..") {
		return fmt.Errorf("invalid backup filename %q", filename)
	}
	return nil
}

func checksumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// readManifest returns the checksum from a "<hex>  <filename>" sidecar.
func readManifest(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return "", fmt.Errorf("empty checksum file %s", path)
	}
	return fields[0], nil
}
