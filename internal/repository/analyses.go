package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/julianstephens/pomolit/internal/models"
	"github.com/julianstephens/pomolit/internal/storage"
)

const analysisColumns = "id, start_date, end_date, summary, suggestions, created_at"

// Analyses stores schedule analyses. Rows are append-only.
type Analyses struct {
	h   storage.Handle
	now clock
}

func NewAnalyses(h storage.Handle) *Analyses {
	return &Analyses{h: h, now: systemClock}
}

func scanAnalysis(row storage.Scanner) (models.Analysis, error) {
	var a models.Analysis
	var suggestions sql.NullString
	var createdAt string
	if err := row.Scan(&a.ID, &a.StartDate, &a.EndDate, &a.Summary, &suggestions, &createdAt); err != nil {
		return models.Analysis{}, err
	}
	var err error
	if a.Suggestions, err = storage.DecodeList(suggestions); err != nil {
		return models.Analysis{}, fmt.Errorf("analysis %s: %w", a.ID, err)
	}
	if a.CreatedAt, err = storage.ParseTimestamp(createdAt); err != nil {
		return models.Analysis{}, fmt.Errorf("analysis %s: %w", a.ID, err)
	}
	return a, nil
}

func (r *Analyses) SaveAnalysis(ctx context.Context, start, end, summary string, suggestions []string) (models.Analysis, error) {
	if err := models.ValidateDate(start); err != nil {
		return models.Analysis{}, err
	}
	if err := models.ValidateDate(end); err != nil {
		return models.Analysis{}, err
	}
	if end < start {
		return models.Analysis{}, fmt.Errorf("end date %s is before start date %s", end, start)
	}
	a := models.Analysis{
		ID:          newID(),
		StartDate:   start,
		EndDate:     end,
		Summary:     summary,
		Suggestions: suggestions,
		CreatedAt:   r.now(),
	}
	row, err := AnalysisRow(a)
	if err != nil {
		return models.Analysis{}, err
	}
	if _, err := storage.Insert(ctx, r.h, "ai_analysis", row); err != nil {
		return models.Analysis{}, err
	}
	return a, nil
}

// LatestAnalysis returns the most recently saved analysis, or storage.ErrNotFound.
func (r *Analyses) LatestAnalysis(ctx context.Context) (models.Analysis, error) {
	a, err := storage.SelectOne(ctx, r.h,
		"SELECT "+analysisColumns+" FROM ai_analysis ORDER BY created_at DESC, id DESC LIMIT 1", scanAnalysis)
	return a, storage.Wrap("select", "ai_analysis", err)
}

func (r *Analyses) ListAnalyses(ctx context.Context) ([]models.Analysis, error) {
	list, err := storage.Select(ctx, r.h,
		"SELECT "+analysisColumns+" FROM ai_analysis ORDER BY created_at DESC, id DESC", scanAnalysis)
	return list, storage.Wrap("select", "ai_analysis", err)
}
