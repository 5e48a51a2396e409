package storage

import (
	"context"
	"time"

	"github.com/julianstephens/pomolit/internal/constants"
	"github.com/julianstephens/pomolit/internal/models"
)

// seed upserts the badge catalog and creates the profile row if it is missing.
func seed(ctx context.Context, h Handle) error {
	for _, b := range models.DefaultBadges() {
		if err := b.Validate(); err != nil {
			return err
		}
		_, err := h.Exec(ctx, `
			INSERT INTO badges (id, name, description, category, bronze, silver, gold)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				description = excluded.description,
				category = excluded.category,
				bronze = excluded.bronze,
				silver = excluded.silver,
				gold = excluded.gold`,
			b.ID, b.Name, b.Description, string(b.Category), b.Thresholds[0], b.Thresholds[1], b.Thresholds[2])
		if err != nil {
			return Wrap("seed", "badges", err)
		}
	}

	_, err := h.Exec(ctx, `
		INSERT OR IGNORE INTO user_profile (id, display_name, updated_at)
		VALUES (?, ?, ?)`,
		constants.ProfileID, constants.DefaultDisplayName, FormatTimestamp(time.Now()))
	return Wrap("seed", "user_profile", err)
}
