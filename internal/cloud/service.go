package cloud

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/pomolit/internal/constants"
	"github.com/julianstephens/pomolit/internal/logger"
	"github.com/julianstephens/pomolit/internal/repository"
	"github.com/julianstephens/pomolit/internal/storage"
)

// TxRunner is the transactional side of the local store.
type TxRunner interface {
	storage.Handle
	WithTx(ctx context.Context, fn func(tx *storage.Tx) error) error
}

// Service exports the local database to a Mirror and restores it back.
type Service struct {
	store      TxRunner
	mirror     Mirror
	passphrase string
	now        func() time.Time
}

// NewService builds a Service. An empty passphrase uploads plain JSON.
func NewService(store TxRunner, mirror Mirror, passphrase string) *Service {
	return &Service{store: store, mirror: mirror, passphrase: passphrase, now: time.Now}
}

// Export reads every table into a Snapshot. Reads are not isolated from
// concurrent writers.
func (s *Service) Export(ctx context.Context, userID string) (Snapshot, error) {
	snap := Snapshot{
		Version:   constants.SnapshotVersion,
		UserID:    userID,
		CreatedAt: s.now().UTC(),
	}
	var err error
	if snap.Tasks, err = repository.NewTasks(s.store).List(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("export tasks: %w", err)
	}
	if snap.Sessions, err = repository.NewSessions(s.store, time.UTC).ListAll(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("export sessions: %w", err)
	}
	notes := repository.NewNotes(s.store)
	if snap.Folders, err = notes.ListFolders(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("export folders: %w", err)
	}
	if snap.Notes, err = notes.ListNotes(ctx, ""); err != nil {
		return Snapshot{}, fmt.Errorf("export notes: %w", err)
	}
	if snap.UserBadges, err = repository.NewBadges(s.store).ListUserBadges(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("export badges: %w", err)
	}
	if snap.Profile, err = repository.NewProfile(s.store).Get(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("export profile: %w", err)
	}
	if snap.Analyses, err = repository.NewAnalyses(s.store).ListAnalyses(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("export analyses: %w", err)
	}
	return snap, nil
}

// Backup exports the local database and uploads it for userID.
func (s *Service) Backup(ctx context.Context, userID string) (Snapshot, error) {
	snap, err := s.Export(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}
	payload, err := Encode(snap, s.passphrase)
	if err != nil {
		return Snapshot{}, err
	}
	if err := s.mirror.Put(ctx, userID, payload); err != nil {
		return Snapshot{}, err
	}
	logger.Info("Uploaded snapshot", "user", userID, "tasks", len(snap.Tasks), "sessions", len(snap.Sessions), "encrypted", s.passphrase != "")
	return snap, nil
}

// Restore downloads the user's snapshot and replaces local data with it.
// Each table is replaced in its own transaction: delete every row, then
// insert the snapshot rows. A failure leaves earlier tables restored.
func (s *Service) Restore(ctx context.Context, userID string) (Snapshot, error) {
	payload, err := s.mirror.Get(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}
	snap, err := Decode(payload, s.passphrase)
	if err != nil {
		return Snapshot{}, err
	}
	if snap.UserID != "" && snap.UserID != userID {
		return Snapshot{}, fmt.Errorf("snapshot belongs to user %q, not %q", snap.UserID, userID)
	}
	if err := s.Import(ctx, snap); err != nil {
		return Snapshot{}, err
	}
	logger.Info("Restored snapshot", "user", userID, "created_at", snap.CreatedAt)
	return snap, nil
}

// Import writes snap over the local tables.
func (s *Service) Import(ctx context.Context, snap Snapshot) error {
	tables := []struct {
		name string
		rows func() ([]storage.Fields, error)
	}{
		{"tasks", func() ([]storage.Fields, error) {
			rows := make([]storage.Fields, 0, len(snap.Tasks))
			for _, t := range snap.Tasks {
				if err := t.Validate(); err != nil {
					return nil, fmt.Errorf("task %s: %w", t.ID, err)
				}
				row, err := repository.TaskRow(t)
				if err != nil {
					return nil, err
				}
				rows = append(rows, row)
			}
			return rows, nil
		}},
		{"sessions", func() ([]storage.Fields, error) {
			rows := make([]storage.Fields, 0, len(snap.Sessions))
			for _, sess := range snap.Sessions {
				if err := sess.Validate(); err != nil {
					return nil, fmt.Errorf("session %s: %w", sess.ID, err)
				}
				rows = append(rows, repository.SessionRow(sess))
			}
			return rows, nil
		}},
		{"note_folders", func() ([]storage.Fields, error) {
			rows := make([]storage.Fields, 0, len(snap.Folders))
			for _, f := range snap.Folders {
				if err := f.Validate(); err != nil {
					return nil, err
				}
				rows = append(rows, repository.FolderRow(f))
			}
			return rows, nil
		}},
		{"notes", func() ([]storage.Fields, error) {
			rows := make([]storage.Fields, 0, len(snap.Notes))
			for _, n := range snap.Notes {
				if err := n.Validate(); err != nil {
					return nil, err
				}
				row, err := repository.NoteRow(n)
				if err != nil {
					return nil, err
				}
				rows = append(rows, row)
			}
			return rows, nil
		}},
		{"user_badges", func() ([]storage.Fields, error) {
			rows := make([]storage.Fields, 0, len(snap.UserBadges))
			for _, ub := range snap.UserBadges {
				if err := ub.Validate(); err != nil {
					return nil, err
				}
				rows = append(rows, repository.UserBadgeRow(ub))
			}
			return rows, nil
		}},
		{"user_profile", func() ([]storage.Fields, error) {
			profile := snap.Profile
			if profile.DisplayName == "" {
				profile.DisplayName = constants.DefaultDisplayName
			}
			if profile.UpdatedAt.IsZero() {
				profile.UpdatedAt = s.now()
			}
			return []storage.Fields{repository.ProfileRow(profile)}, nil
		}},
		{"ai_analysis", func() ([]storage.Fields, error) {
			rows := make([]storage.Fields, 0, len(snap.Analyses))
			for _, a := range snap.Analyses {
				if err := a.Validate(); err != nil {
					return nil, err
				}
				row, err := repository.AnalysisRow(a)
				if err != nil {
					return nil, err
				}
				rows = append(rows, row)
			}
			return rows, nil
		}},
	}

	// Map every table up front so a bad row fails before anything is deleted.
	prepared := make([][]storage.Fields, len(tables))
	for i, table := range tables {
		rows, err := table.rows()
		if err != nil {
			return fmt.Errorf("restore %s: %w", table.name, err)
		}
		prepared[i] = rows
	}

	for i, table := range tables {
		rows := prepared[i]
		err := s.store.WithTx(ctx, func(tx *storage.Tx) error {
			if _, err := storage.Delete(ctx, tx, table.name, ""); err != nil {
				return err
			}
			for _, row := range rows {
				if _, err := storage.Insert(ctx, tx, table.name, row); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("restore %s: %w", table.name, err)
		}
		logger.Debug("Restored table", "table", table.name, "rows", len(rows))
	}
	return nil
}
