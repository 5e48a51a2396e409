package cloud

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/pomolit/internal/constants"
	"github.com/julianstephens/pomolit/internal/logger"
)

const snapshotTimestampFormat = "20060102-150405"

var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.@-]+$`)

// SnapshotInfo describes one snapshot file on disk.
type SnapshotInfo struct {
	Path      string
	UserID    string
	Timestamp time.Time
	// Seq orders snapshots written within the same second.
	Seq  int
	Size int64
}

// FileMirror keeps rotating snapshot files in a local directory, newest
// MaxSnapshots per user. Point it at a synced folder to get off-device copies.
type FileMirror struct {
	dir string
	now func() time.Time
}

func NewFileMirror(dir string) *FileMirror {
	return &FileMirror{dir: dir, now: time.Now}
}

func (m *FileMirror) Dir() string {
	return m.dir
}

func checkUserID(userID string) error {
	if !userIDPattern.MatchString(userID) {
		return fmt.Errorf("invalid user id %q", userID)
	}
	return nil
}

func (m *FileMirror) Put(ctx context.Context, userID string, payload []byte) error {
	if err := checkUserID(userID); err != nil {
		return err
	}
	if err := os.MkdirAll(m.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	stamp := m.now().UTC().Format(snapshotTimestampFormat)
	base := fmt.Sprintf("%s%s-%s", constants.SnapshotFilePrefix, userID, stamp)
	path := filepath.Join(m.dir, base+constants.SnapshotFileSuffix)
	for counter := 1; ; counter++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		if counter > 100 {
			return fmt.Errorf("failed to generate unique snapshot filename")
		}
		path = filepath.Join(m.dir, fmt.Sprintf("%s-%d%s", base, counter, constants.SnapshotFileSuffix))
	}

	// Write to a temp file and rename so a reader never sees a partial snapshot.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		if removeErr := os.Remove(tmp); removeErr != nil {
			logger.Warn("Failed to remove temporary snapshot", "path", tmp, "error", removeErr)
		}
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	if err := m.rotate(userID); err != nil {
		logger.Warn("Failed to rotate old snapshots", "error", err)
	}
	return nil
}

// Get returns the newest snapshot for userID.
func (m *FileMirror) Get(ctx context.Context, userID string) ([]byte, error) {
	snapshots, err := m.List(userID)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, ErrNoSnapshot
	}
	data, err := os.ReadFile(snapshots[0].Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return data, nil
}

// List returns the user's snapshots, newest first.
func (m *FileMirror) List(userID string) ([]SnapshotInfo, error) {
	if err := checkUserID(userID); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(m.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot directory: %w", err)
	}

	prefix := constants.SnapshotFilePrefix + userID + "-"
	var out []SnapshotInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, constants.SnapshotFileSuffix) {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, prefix), constants.SnapshotFileSuffix)
		seq := 0
		if len(stamp) > len(snapshotTimestampFormat) {
			n, err := strconv.Atoi(strings.TrimPrefix(stamp[len(snapshotTimestampFormat):], "-"))
			if err != nil {
				continue
			}
			seq = n
			stamp = stamp[:len(snapshotTimestampFormat)]
		}
		ts, err := time.Parse(snapshotTimestampFormat, stamp)
		if err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		out = append(out, SnapshotInfo{
			Path:      filepath.Join(m.dir, name),
			UserID:    userID,
			Timestamp: ts,
			Seq:       seq,
			Size:      info.Size(),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Seq > out[j].Seq
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

func (m *FileMirror) rotate(userID string) error {
	snapshots, err := m.List(userID)
	if err != nil {
		return err
	}
	for i := constants.MaxSnapshots; i < len(snapshots); i++ {
		if err := os.Remove(snapshots[i].Path); err != nil {
			return fmt.Errorf("failed to remove old snapshot %s: %w", snapshots[i].Path, err)
		}
	}
	return nil
}

func (m *FileMirror) Close() error { return nil }
