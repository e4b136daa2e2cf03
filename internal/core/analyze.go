package core

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/JonMunkholm/sheetguard/internal/gridsource"
	"github.com/JonMunkholm/sheetguard/internal/store"
	"github.com/JonMunkholm/sheetguard/internal/validation"
)

// historyWriteTimeout bounds the history write that follows an analysis.
const historyWriteTimeout = 5 * time.Second

// Upload is a file handed to the service.
type Upload struct {
	Name string    // original file name, used to pick the decoder
	Size int64     // reported size in bytes
	Body io.Reader // file contents

	// Sheet names the workbook sheet to read; empty reads the first.
	Sheet string
}

// Analyze validates an uploaded file against a stored profile.
//
// Files that fail to decode produce a result with Success false and a nil
// error. An error is returned only when the request cannot be served: the
// profile does not exist, no analysis slot frees up, or ctx ends.
func (s *Service) Analyze(ctx context.Context, profileID string, up Upload) (validation.ValidationResult, error) {
	if up.Body == nil {
		return validation.ValidationResult{}, ErrNoFile
	}

	profile, err := s.profiles.Get(ctx, profileID)
	if err != nil {
		return validation.ValidationResult{}, fmt.Errorf("load profile %s: %w", profileID, err)
	}

	return s.AnalyzeProfile(ctx, profile, up)
}

// AnalyzeProfile validates an uploaded file against profile, which need not
// be stored. Its results are recorded in history like those of Analyze.
func (s *Service) AnalyzeProfile(ctx context.Context, profile store.Profile, up Upload) (validation.ValidationResult, error) {
	if up.Body == nil {
		return validation.ValidationResult{}, ErrNoFile
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return validation.ValidationResult{}, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	start := s.now()
	logger := s.logger.With(
		"file", up.Name,
		"profile_id", profile.ID,
		"client_ip", ClientIPFromContext(ctx),
	)

	grid, err := gridsource.Decode(up.Name, up.Body, s.decodeOptions(up))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return validation.ValidationResult{}, ctxErr
		}
		msg := MapError(err)
		logger.Warn("decode failed", "error", err, "code", msg.Code)
		return validation.Failure(FormatUserError(err)), nil
	}

	headers, eval, err := s.engine.Validate(ctx, grid, profile.Rules)
	if err != nil {
		return validation.ValidationResult{}, fmt.Errorf("evaluate %s: %w", up.Name, err)
	}

	result := validation.BuildResult(headers, eval, validation.Metadata{
		FileName:    up.Name,
		FileSize:    up.Size,
		ProfileName: profile.Name,
		ProfileID:   profile.ID,
	})

	logger.Info("analysis complete",
		"rows", result.Summary.RowCount,
		"columns", result.Summary.ColumnCount,
		"errors", result.Summary.ErrorCount,
		"disabled_rules", len(eval.Issues),
		"duration_ms", s.now().Sub(start).Milliseconds(),
	)

	s.record(ctx, result)
	return result, nil
}

// record adds result to history when it qualifies. Failures are logged only:
// a history problem must not cost the user their report.
func (s *Service) record(ctx context.Context, result validation.ValidationResult) {
	if !result.Recordable() {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyWriteTimeout)
	defer cancel()

	entry := validation.NewHistoryEntry(result, s.newID(), s.now())
	if err := s.history.Add(ctx, entry); err != nil {
		s.logger.Error("record history entry", "error", err, "file", entry.FileName)
	}
}

// History returns the recent analyses, most recent first.
func (s *Service) History(ctx context.Context) ([]validation.HistoryEntry, error) {
	entries, err := s.history.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}

// ExtractHeaders decodes a sample file and returns its detected header.
func (s *Service) ExtractHeaders(ctx context.Context, up Upload) (validation.HeaderSet, error) {
	if up.Body == nil {
		return validation.HeaderSet{}, ErrNoFile
	}
	if err := ctx.Err(); err != nil {
		return validation.HeaderSet{}, err
	}

	grid, err := gridsource.Decode(up.Name, up.Body, s.decodeOptions(up))
	if err != nil {
		return validation.HeaderSet{}, fmt.Errorf("read sample %s: %w", up.Name, err)
	}

	headers := validation.LocateHeader(grid)
	if !hasName(headers.Names) {
		return validation.HeaderSet{}, ErrNoHeaders
	}
	return headers, nil
}

// SetSampleHeaders stores the header of a sample file on the profile, so rule
// editors can offer its column names.
func (s *Service) SetSampleHeaders(ctx context.Context, profileID string, up Upload) (store.Profile, error) {
	headers, err := s.ExtractHeaders(ctx, up)
	if err != nil {
		return store.Profile{}, err
	}

	return s.mutate(ctx, profileID, func(p *store.Profile) error {
		p.SampleHeaders = headers.Names
		return nil
	})
}

func (s *Service) decodeOptions(up Upload) gridsource.Options {
	return gridsource.Options{MaxBytes: s.opts.MaxFileSize, Sheet: up.Sheet}
}

func hasName(names []string) bool {
	for _, n := range names {
		if n != "" {
			return true
		}
	}
	return false
}
