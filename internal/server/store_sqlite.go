package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/Shayan-Bhowmik/Ancient-Scripts/internal/cipherquest"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) CreateTeam(ctx context.Context, name, memberOne, memberTwo string) (cipherquest.Team, error) {
	t := cipherquest.Team{
		Name:      name,
		MemberOne: memberOne,
		MemberTwo: memberTwo,
	}
	var createdAt string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO teams (id, name, member_one, member_two, session_token)
		VALUES (lower(hex(randomblob(8))), ?, ?, ?, lower(hex(randomblob(16))))
		RETURNING id, session_token, created_at
	`, name, memberOne, memberTwo).Scan(&t.ID, &t.SessionToken, &createdAt)
	if err != nil {
		return cipherquest.Team{}, err
	}
	t.CreatedAt = parseTimestamp(createdAt)
	return t, nil
}

func (s *SQLiteStore) TeamFromToken(ctx context.Context, token string) (cipherquest.Team, error) {
	var t cipherquest.Team
	var createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, member_one, member_two, session_token, created_at
		FROM teams
		WHERE session_token = ?
	`, token).Scan(&t.ID, &t.Name, &t.MemberOne, &t.MemberTwo, &t.SessionToken, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return cipherquest.Team{}, ErrNotFound
	}
	if err != nil {
		return cipherquest.Team{}, err
	}
	t.CreatedAt = parseTimestamp(createdAt)
	return t, nil
}

// LoadProgress returns the team's persisted progress, or the zero value
// when no row exists. Rows that fail to decode also read as zero:
// stored state is uncontrolled between sessions and a corrupt record
// must degrade to a fresh quest rather than a fatal error.
func (s *SQLiteStore) LoadProgress(ctx context.Context, teamID string) (cipherquest.Progress, error) {
	var (
		p              cipherquest.Progress
		isActive       int
		questStartedAt string
		levelStartedAt string
		completedJSON  string
		totalTimeMS    int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT is_active, current_level, quest_started_at, level_started_at,
			completed_ids, total_points, total_time_ms
		FROM progress
		WHERE team_id = ?
	`, teamID).Scan(&isActive, &p.CurrentLevel, &questStartedAt, &levelStartedAt,
		&completedJSON, &p.TotalPoints, &totalTimeMS)
	if errors.Is(err, sql.ErrNoRows) {
		return cipherquest.Progress{}, nil
	}
	if err != nil {
		return cipherquest.Progress{}, err
	}

	if err := json.Unmarshal([]byte(completedJSON), &p.CompletedIDs); err != nil {
		return cipherquest.Progress{}, nil
	}

	p.IsActive = isActive != 0
	p.QuestStartedAt = parseTimestamp(questStartedAt)
	p.LevelStartedAt = parseTimestamp(levelStartedAt)
	p.TotalTime = time.Duration(totalTimeMS) * time.Millisecond
	return p, nil
}

func (s *SQLiteStore) SaveProgress(ctx context.Context, teamID string, p cipherquest.Progress) error {
	completedJSON, err := json.Marshal(p.CompletedIDs)
	if err != nil {
		return err
	}
	isActive := 0
	if p.IsActive {
		isActive = 1
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO progress (team_id, is_active, current_level, quest_started_at,
			level_started_at, completed_ids, total_points, total_time_ms, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		ON CONFLICT(team_id) DO UPDATE SET
			is_active = excluded.is_active,
			current_level = excluded.current_level,
			quest_started_at = excluded.quest_started_at,
			level_started_at = excluded.level_started_at,
			completed_ids = excluded.completed_ids,
			total_points = excluded.total_points,
			total_time_ms = excluded.total_time_ms,
			updated_at = excluded.updated_at
	`, teamID, isActive, p.CurrentLevel,
		formatTimestamp(p.QuestStartedAt), formatTimestamp(p.LevelStartedAt),
		string(completedJSON), p.TotalPoints, p.TotalTime.Milliseconds())
	return err
}

func (s *SQLiteStore) DeleteProgress(ctx context.Context, teamID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM progress WHERE team_id = ?`, teamID)
	return err
}

func (s *SQLiteStore) ExpireQuest(ctx context.Context, teamID string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE progress
		SET is_active = 0, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		WHERE team_id = ? AND is_active = 1
	`, teamID)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

// UpsertLeaderboard writes the derived entry for one team. Conflicting
// upserts update in place, so a team's rowid — and with it the
// insertion-relative order used as the final sort key — never changes.
func (s *SQLiteStore) UpsertLeaderboard(ctx context.Context, e cipherquest.LeaderboardEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leaderboard (team_id, team_name, member_one, member_two,
			levels_completed, total_points, total_time_ms, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		ON CONFLICT(team_id) DO UPDATE SET
			team_name = excluded.team_name,
			member_one = excluded.member_one,
			member_two = excluded.member_two,
			levels_completed = excluded.levels_completed,
			total_points = excluded.total_points,
			total_time_ms = excluded.total_time_ms,
			updated_at = excluded.updated_at
	`, e.TeamID, e.TeamName, e.MemberOne, e.MemberTwo,
		e.LevelsCompleted, e.TotalPoints, e.TotalTime.Milliseconds())
	return err
}

func (s *SQLiteStore) RankedLeaderboard(ctx context.Context) ([]cipherquest.LeaderboardEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT team_id, team_name, member_one, member_two,
			levels_completed, total_points, total_time_ms, updated_at
		FROM leaderboard
		ORDER BY levels_completed DESC, total_time_ms ASC, rowid ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []cipherquest.LeaderboardEntry
	for rows.Next() {
		var (
			e           cipherquest.LeaderboardEntry
			totalTimeMS int64
			updatedAt   string
		)
		if err := rows.Scan(&e.TeamID, &e.TeamName, &e.MemberOne, &e.MemberTwo,
			&e.LevelsCompleted, &e.TotalPoints, &totalTimeMS, &updatedAt); err != nil {
			return nil, err
		}
		e.TotalTime = time.Duration(totalTimeMS) * time.Millisecond
		e.UpdatedAt = parseTimestamp(updatedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimestamp(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
