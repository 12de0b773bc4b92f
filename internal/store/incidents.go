package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/khanijo/minewatch/internal/intent"
	"github.com/khanijo/minewatch/internal/normalize"
)

// Incident is one recorded mining accident. Rows are append-only: the
// dashboard never mutates or deletes them.
type Incident struct {
	ID            string `json:"id"`
	Mine          string `json:"mine,omitempty"`
	Owner         string `json:"owner,omitempty"`
	District      string `json:"district,omitempty"`
	State         string `json:"state,omitempty"`
	Mineral       string `json:"mineral,omitempty"`
	Place         string `json:"place,omitempty"`
	Date          string `json:"date,omitempty"`
	Time          string `json:"time,omitempty"`
	Casualties    *int   `json:"casualties"`
	Injured       *int   `json:"injured"`
	Cause         string `json:"cause,omitempty"`
	BestPractices string `json:"best_practices,omitempty"`
	CauseLabel    string `json:"cause_label,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
}

type InsertIncidentInput struct {
	Mine          string `json:"mine"`
	Owner         string `json:"owner"`
	District      string `json:"district"`
	State         string `json:"state"`
	Mineral       string `json:"mineral"`
	Place         string `json:"place"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Casualties    *int   `json:"casualties"`
	Injured       *int   `json:"injured"`
	Cause         string `json:"cause"`
	BestPractices string `json:"best_practices"`
	CauseLabel    string `json:"cause_label"`
}

const incidentColumns = `id, mine, owner, district, state, mineral, place, date, time,
	casualties, injured, cause, best_practices, cause_label, created_at`

func (s *Store) InsertIncident(ctx context.Context, input InsertIncidentInput) (Incident, error) {
	id := uuid.NewString()
	dateUnix := int64(0)
	if parsed, ok := normalize.ParseDate(input.Date, input.Time); ok {
		dateUnix = parsed.Unix()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO incidents (
			id, mine, owner, district, state, mineral, place, date, time,
			casualties, injured, cause, best_practices, cause_label, date_unix
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		nullIfEmpty(strings.TrimSpace(input.Mine)),
		nullIfEmpty(strings.TrimSpace(input.Owner)),
		nullIfEmpty(strings.TrimSpace(input.District)),
		nullIfEmpty(strings.TrimSpace(input.State)),
		nullIfEmpty(strings.TrimSpace(input.Mineral)),
		nullIfEmpty(strings.TrimSpace(input.Place)),
		nullIfEmpty(strings.TrimSpace(input.Date)),
		nullIfEmpty(strings.TrimSpace(input.Time)),
		nullableCount(input.Casualties),
		nullableCount(input.Injured),
		nullIfEmpty(strings.TrimSpace(input.Cause)),
		nullIfEmpty(strings.TrimSpace(input.BestPractices)),
		nullIfEmpty(strings.TrimSpace(input.CauseLabel)),
		nullIfZeroInt64(dateUnix),
	)
	if err != nil {
		return Incident{}, fmt.Errorf("insert incident: %w", err)
	}
	return s.GetIncident(ctx, id)
}

func (s *Store) GetIncident(ctx context.Context, id string) (Incident, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+incidentColumns+` FROM incidents WHERE id = ?`, id)
	incident, err := scanIncident(row)
	if err != nil {
		return Incident{}, fmt.Errorf("get incident: %w", err)
	}
	return incident, nil
}

// ListIncidents returns every incident, newest accident first. Rows
// whose date never normalized sort last.
func (s *Store) ListIncidents(ctx context.Context) ([]Incident, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+incidentColumns+` FROM incidents
		 ORDER BY date_unix DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()
	return collectIncidents(rows)
}

// QueryIncidents runs a classifier directive: optional half-open date
// range, optional keyword OR-filter across the text columns, the
// directive's sort, and always the directive's row cap.
func (s *Store) QueryIncidents(ctx context.Context, directive intent.Directive) ([]Incident, error) {
	var conditions []string
	var args []any

	if directive.HasYearFilter() {
		conditions = append(conditions, `(date_unix >= ? AND date_unix < ?)`)
		args = append(args, directive.YearStart.Unix(), directive.YearEnd.Unix())
	}
	if len(directive.Keywords) > 0 {
		var keywordClauses []string
		for _, keyword := range directive.Keywords {
			pattern := "%" + strings.ToLower(keyword) + "%"
			keywordClauses = append(keywordClauses,
				`(LOWER(cause_label) LIKE ? OR LOWER(cause) LIKE ? OR LOWER(state) LIKE ? OR LOWER(mineral) LIKE ? OR LOWER(mine) LIKE ?)`)
			args = append(args, pattern, pattern, pattern, pattern, pattern)
		}
		conditions = append(conditions, "("+strings.Join(keywordClauses, " OR ")+")")
	}

	query := `SELECT ` + incidentColumns + ` FROM incidents`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY ` + orderClause(directive) + ` LIMIT ?`

	limit := directive.Limit
	if limit <= 0 {
		limit = 7
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query incidents: %w", err)
	}
	defer rows.Close()
	return collectIncidents(rows)
}

func orderClause(directive intent.Directive) string {
	column := "date_unix"
	switch directive.SortBy {
	case intent.SortByCasualties:
		column = "casualties"
	case intent.SortByInjured:
		column = "injured"
	}
	if directive.SortDesc {
		return column + " DESC"
	}
	return column + " ASC"
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIncident(row rowScanner) (Incident, error) {
	var incident Incident
	var mine, owner, district, state, mineral, place sql.NullString
	var date, timeOfDay, cause, bestPractices, causeLabel sql.NullString
	var casualties, injured sql.NullInt64
	var createdAt sql.NullString

	err := row.Scan(
		&incident.ID, &mine, &owner, &district, &state, &mineral, &place,
		&date, &timeOfDay, &casualties, &injured, &cause, &bestPractices,
		&causeLabel, &createdAt,
	)
	if err != nil {
		return Incident{}, err
	}
	incident.Mine = mine.String
	incident.Owner = owner.String
	incident.District = district.String
	incident.State = state.String
	incident.Mineral = mineral.String
	incident.Place = place.String
	incident.Date = date.String
	incident.Time = timeOfDay.String
	incident.Cause = cause.String
	incident.BestPractices = bestPractices.String
	incident.CauseLabel = causeLabel.String
	incident.CreatedAt = createdAt.String
	if casualties.Valid {
		value := int(casualties.Int64)
		incident.Casualties = &value
	}
	if injured.Valid {
		value := int(injured.Int64)
		incident.Injured = &value
	}
	return incident, nil
}

func collectIncidents(rows *sql.Rows) ([]Incident, error) {
	incidents := []Incident{}
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incidents: %w", err)
	}
	return incidents, nil
}

func nullableCount(value *int) any {
	if value == nil {
		return nil
	}
	return nullIfNegative(*value)
}
