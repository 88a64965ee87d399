package localfs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aliosmangurbilek/debt-ledger/internal/domain"
)

const (
	DefaultKeep = 10
	stampLayout = "20060102_150405"
	dbExt       = ".db"
	jsonExt     = ".json"
)

var tagRe = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// BackupManager copies the store file into a backup directory after every
// mutation and keeps only the newest copies.
type BackupManager struct {
	dir       string
	prefix    string
	storePath string
	exporter  domain.Exporter
	keep      int
	now       func() time.Time
}

func NewBackupManager(dir, prefix, storePath string, exporter domain.Exporter) *BackupManager {
	m := &BackupManager{
		dir:       dir,
		prefix:    prefix,
		storePath: storePath,
		exporter:  exporter,
		keep:      DefaultKeep,
		now:       time.Now,
	}
	m.ensureDir()
	return m
}

// WithKeep sets how many snapshots survive the automatic prune.
func (m *BackupManager) WithKeep(keep int) *BackupManager {
	if keep > 0 {
		m.keep = keep
	}
	return m
}

func (m *BackupManager) WithClock(now func() time.Time) *BackupManager {
	m.now = now
	return m
}

func (m *BackupManager) Dir() string { return m.dir }

func (m *BackupManager) ensureDir() bool {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		log.Warn().Err(err).Str("dir", m.dir).Msg("backup dir unavailable")
		return false
	}
	return true
}

func sanitizeTag(tag string) string {
	tag = strings.Trim(tagRe.ReplaceAllString(strings.TrimSpace(tag), "_"), "_")
	if tag == "" {
		return "manual"
	}
	return tag
}

// Snapshot copies the store file and writes the JSON export next to it. It
// returns the path of the copy; failures are logged and reported as false.
func (m *BackupManager) Snapshot(ctx context.Context, tag string) (string, bool) {
	tag = sanitizeTag(tag)
	if !m.ensureDir() {
		return "", false
	}

	stamp := m.nextStamp()
	base := fmt.Sprintf("%s_backup_%s_%s", m.prefix, stamp.Format(stampLayout), tag)
	dbPath := filepath.Join(m.dir, base+dbExt)

	if err := copyFile(m.storePath, dbPath); err != nil {
		log.Error().Err(err).Str("tag", tag).Msg("backup failed")
		return "", false
	}

	if m.exporter != nil {
		if err := m.writeJSON(ctx, filepath.Join(m.dir, base+jsonExt)); err != nil {
			log.Warn().Err(err).Str("tag", tag).Msg("backup json export failed")
		}
	}

	log.Info().Str("file", base+dbExt).Msg("backup created")
	m.Prune(m.keep)
	return dbPath, true
}

// nextStamp is the current second, or one second past the newest existing
// backup so names stay strictly increasing.
func (m *BackupManager) nextStamp() time.Time {
	stamp := m.now().In(time.Local).Truncate(time.Second)
	if list, err := m.List(); err == nil && len(list) > 0 && !stamp.After(list[0].Taken) {
		stamp = list[0].Taken.Add(time.Second)
	}
	return stamp
}

func (m *BackupManager) writeJSON(ctx context.Context, path string) error {
	s, err := m.exporter.Export(ctx)
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return os.WriteFile(path, raw, 0o644)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer in.Close()

	tmp := dst + ".tmp"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create backup: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("copy store: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close backup: %w", err)
	}
	if info, err := in.Stat(); err == nil {
		_ = os.Chtimes(tmp, info.ModTime(), info.ModTime())
	}
	return os.Rename(tmp, dst)
}

// List returns the backups in the directory, newest first.
func (m *BackupManager) List() ([]domain.Backup, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, err
	}
	head := m.prefix + "_backup_"
	var list []domain.Backup
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, head) || !strings.HasSuffix(name, dbExt) {
			continue
		}
		rest := strings.TrimSuffix(strings.TrimPrefix(name, head), dbExt)
		if len(rest) < len(stampLayout) {
			continue
		}
		taken, err := time.ParseInLocation(stampLayout, rest[:len(stampLayout)], time.Local)
		if err != nil {
			continue
		}
		path := filepath.Join(m.dir, name)
		list = append(list, domain.Backup{
			Path:     path,
			JSONPath: strings.TrimSuffix(path, dbExt) + jsonExt,
			Tag:      strings.TrimPrefix(rest[len(stampLayout):], "_"),
			Taken:    taken,
		})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Taken.After(list[j].Taken) })
	return list, nil
}

// Prune deletes all but the newest keep backups together with their JSON
// siblings and returns how many were removed.
func (m *BackupManager) Prune(keep int) int {
	if keep < 0 {
		keep = 0
	}
	list, err := m.List()
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Msg("list backups failed")
		}
		return 0
	}
	if len(list) <= keep {
		return 0
	}
	removed := 0
	for _, b := range list[keep:] {
		if err := os.Remove(b.Path); err != nil {
			log.Warn().Err(err).Str("file", b.Path).Msg("remove backup failed")
			continue
		}
		removed++
		if err := os.Remove(b.JSONPath); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("file", b.JSONPath).Msg("remove backup json failed")
		}
	}
	if removed > 0 {
		log.Info().Int("removed", removed).Msg("old backups pruned")
	}
	return removed
}

var _ domain.BackupService = (*BackupManager)(nil)
