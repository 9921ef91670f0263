package queue

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const itemColumns = `id, project_dir, title, status, assets_json, script_json,
    plan_json, narration_json, segments_json, caption_file, output_file,
    error_message, created_at, updated_at, progress_stage, progress_percent,
    progress_message, last_heartbeat, needs_review, review_reason`

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		item            Item
		title           sql.NullString
		assetsJSON      sql.NullString
		scriptJSON      sql.NullString
		planJSON        sql.NullString
		narrationJSON   sql.NullString
		segmentsJSON    sql.NullString
		captionFile     sql.NullString
		outputFile      sql.NullString
		errorMessage    sql.NullString
		createdAt       string
		updatedAt       string
		progressStage   sql.NullString
		progressMessage sql.NullString
		lastHeartbeat   sql.NullString
		needsReview     sql.NullInt64
		reviewReason    sql.NullString
	)

	if err := scanner.Scan(
		&item.ID,
		&item.ProjectDir,
		&title,
		&item.Status,
		&assetsJSON,
		&scriptJSON,
		&planJSON,
		&narrationJSON,
		&segmentsJSON,
		&captionFile,
		&outputFile,
		&errorMessage,
		&createdAt,
		&updatedAt,
		&progressStage,
		&item.ProgressPercent,
		&progressMessage,
		&lastHeartbeat,
		&needsReview,
		&reviewReason,
	); err != nil {
		return nil, err
	}

	item.Title = title.String
	item.AssetsJSON = assetsJSON.String
	item.ScriptJSON = scriptJSON.String
	item.PlanJSON = planJSON.String
	item.NarrationJSON = narrationJSON.String
	item.SegmentsJSON = segmentsJSON.String
	item.CaptionFile = captionFile.String
	item.OutputFile = outputFile.String
	item.ErrorMessage = errorMessage.String
	item.ProgressStage = progressStage.String
	item.ProgressMessage = progressMessage.String
	item.NeedsReview = needsReview.Int64 != 0
	item.ReviewReason = reviewReason.String

	created, err := parseTimeString(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	item.CreatedAt = created

	updated, err := parseTimeString(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	item.UpdatedAt = updated

	if lastHeartbeat.Valid && strings.TrimSpace(lastHeartbeat.String) != "" {
		hb, err := parseTimeString(lastHeartbeat.String)
		if err != nil {
			return nil, fmt.Errorf("parse last_heartbeat: %w", err)
		}
		item.LastHeartbeat = &hb
	}

	return &item, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time format %q", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", count), ",")
}
