package repository

import (
	"github.com/julianstephens/pomolit/internal/constants"
	"github.com/julianstephens/pomolit/internal/models"
	"github.com/julianstephens/pomolit/internal/storage"
)

// TaskRow maps every tasks column for an insert.
func TaskRow(t models.Task) (storage.Fields, error) {
	tags, err := storage.EncodeList(t.Tags)
	if err != nil {
		return nil, err
	}
	return storage.Fields{
		"id":                  t.ID,
		"title":               t.Title,
		"description":         storage.NullableString(t.Description),
		"date":                t.Date,
		"due_date":            storage.NullableString(t.DueDate),
		"completed":           storage.BoolToInt(t.Completed),
		"target_pomodoros":    t.TargetPomodoros,
		"completed_pomodoros": t.CompletedPomodoros,
		"focus_seconds":       t.FocusSeconds,
		"tags":                tags,
		"version":             t.Version,
		"created_at":          storage.FormatTimestamp(t.CreatedAt),
		"updated_at":          storage.FormatTimestamp(t.UpdatedAt),
	}, nil
}

func SessionRow(s models.Session) storage.Fields {
	return storage.Fields{
		"id":               s.ID,
		"start_time":       storage.FormatTimestamp(s.StartTime),
		"end_time":         storage.FormatTimestamp(s.EndTime),
		"duration_seconds": s.DurationSeconds,
		"task_id":          storage.NullableString(s.TaskID),
		"type":             string(s.Type),
		"completed":        storage.BoolToInt(s.Completed),
		"date":             s.Date,
		"hour":             s.Hour,
		"created_at":       storage.FormatTimestamp(s.CreatedAt),
		"updated_at":       storage.FormatTimestamp(s.UpdatedAt),
	}
}

func FolderRow(f models.NoteFolder) storage.Fields {
	return storage.Fields{
		"id":         f.ID,
		"name":       f.Name,
		"color":      storage.NullableString(f.Color),
		"created_at": storage.FormatTimestamp(f.CreatedAt),
	}
}

func NoteRow(n models.Note) (storage.Fields, error) {
	tags, err := storage.EncodeList(n.Tags)
	if err != nil {
		return nil, err
	}
	return storage.Fields{
		"id":         n.ID,
		"folder_id":  storage.NullableString(n.FolderID),
		"title":      n.Title,
		"content":    n.Content,
		"tags":       tags,
		"version":    n.Version,
		"created_at": storage.FormatTimestamp(n.CreatedAt),
		"updated_at": storage.FormatTimestamp(n.UpdatedAt),
	}, nil
}

func AnalysisRow(a models.Analysis) (storage.Fields, error) {
	suggestions, err := storage.EncodeList(a.Suggestions)
	if err != nil {
		return nil, err
	}
	return storage.Fields{
		"id":          a.ID,
		"start_date":  a.StartDate,
		"end_date":    a.EndDate,
		"summary":     a.Summary,
		"suggestions": suggestions,
		"created_at":  storage.FormatTimestamp(a.CreatedAt),
	}, nil
}

func UserBadgeRow(ub models.UserBadge) storage.Fields {
	return storage.Fields{
		"badge_id":   ub.BadgeID,
		"tier":       int(ub.Tier),
		"progress":   ub.Progress,
		"earned_at":  storage.NullableTimestamp(ub.EarnedAt),
		"pending":    storage.BoolToInt(ub.Pending),
		"updated_at": storage.FormatTimestamp(ub.UpdatedAt),
	}
}

// ProfileRow maps the singleton profile, id included.
func ProfileRow(p models.UserProfile) storage.Fields {
	return storage.Fields{
		"id":                 constants.ProfileID,
		"display_name":       p.DisplayName,
		"focus_minutes":      p.FocusMinutes,
		"completed_tasks":    p.CompletedTasks,
		"completed_sessions": p.CompletedSessions,
		"perfect_sessions":   p.PerfectSessions,
		"day_streak":         p.DayStreak,
		"last_active_date":   storage.NullableString(p.LastActiveDate),
		"updated_at":         storage.FormatTimestamp(p.UpdatedAt),
	}
}
