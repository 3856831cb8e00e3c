package sqlite

import (
	"fmt"
	"strings"
	"time"

	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/pkg/types"
)

// AlertRepository stores and queries alert records.
type AlertRepository struct {
	db *DB
}

// NewAlertRepository creates a repository over db.
func NewAlertRepository(db *DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Insert adds a new alert record.
func (r *AlertRepository) Insert(rec *types.AlertRecord) error {
	r.db.Lock()
	defer r.db.Unlock()

	_, err := r.db.Conn().Exec(`
		INSERT INTO alerts (id, types, sub_type, person_name, confidence, people_count,
			violence_detected, location, date, time, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		strings.Join(rec.Types, ","),
		rec.SubType,
		rec.PersonName,
		rec.Confidence,
		rec.PeopleCount,
		boolToInt(rec.ViolenceDetected),
		rec.Location,
		rec.Date,
		rec.Time,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (r *AlertRepository) Recent(limit int) ([]types.AlertRecord, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT id, types, sub_type, person_name, confidence, people_count,
			violence_detected, location, date, time, created_at
		FROM alerts ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var records []types.AlertRecord
	for rows.Next() {
		var (
			rec       types.AlertRecord
			typesCol  string
			violence  int
			createdAt time.Time
		)
		if err := rows.Scan(&rec.ID, &typesCol, &rec.SubType, &rec.PersonName,
			&rec.Confidence, &rec.PeopleCount, &violence, &rec.Location,
			&rec.Date, &rec.Time, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		if typesCol != "" {
			rec.Types = strings.Split(typesCol, ",")
		}
		rec.ViolenceDetected = violence != 0
		rec.CreatedAt = createdAt
		records = append(records, rec)
	}

	return records, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
