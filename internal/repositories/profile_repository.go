package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tutormatch/backend/internal/models"
	"go.uber.org/zap"
)

// profileColumns is the shared select list for profile queries. Subject and
// level sets are folded in with correlated GROUP_CONCAT subqueries so a
// profile loads in a single round trip.
const profileColumns = `
	p.id, p.user_id, p.bio, p.profile_picture, p.years_of_experience,
	p.teaching_method, p.hourly_rate, p.currency, p.latitude, p.longitude,
	p.visible, p.created_at, p.updated_at,
	(SELECT GROUP_CONCAT(ps.subject ORDER BY ps.subject) FROM profile_subjects ps WHERE ps.profile_id = p.id) AS subjects,
	(SELECT GROUP_CONCAT(pl.level ORDER BY pl.level) FROM profile_levels pl WHERE pl.profile_id = p.id) AS levels`

// profileRepository implements tutor profile data access against MySQL
type profileRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *sql.DB, logger *zap.Logger) *profileRepository {
	return &profileRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new profile together with its subject and level sets.
// The profile ID is assigned here and written back to the model.
func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	profile.ID = uuid.New().String()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO profiles (id, user_id, bio, profile_picture, years_of_experience,
			teaching_method, hourly_rate, currency, latitude, longitude, visible)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.ExecContext(ctx, query,
		profile.ID,
		profile.UserID,
		profile.Bio,
		nullString(profile.ProfilePicture),
		nullString(profile.YearsOfExperience),
		nullString(profile.TeachingMethod),
		profile.HourlyRate,
		profile.Currency,
		profile.Latitude,
		profile.Longitude,
		profile.Visible,
	)
	if err != nil {
		r.logger.Error("failed to create profile", zap.Error(err), zap.Int("user_id", profile.UserID))
		return fmt.Errorf("failed to create profile: %w", err)
	}

	if err := insertTags(ctx, tx, "profile_subjects", "subject", profile.ID, profile.Subjects); err != nil {
		return err
	}
	if err := insertTags(ctx, tx, "profile_levels", "level", profile.ID, profile.Levels); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a profile by ID
func (r *profileRepository) GetByID(ctx context.Context, profileID string) (*models.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles p WHERE p.id = ? LIMIT 1`, profileColumns)

	profile, err := r.scanProfile(r.db.QueryRowContext(ctx, query, profileID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("profile not found")
	}
	if err != nil {
		r.logger.Error("failed to get profile by id", zap.Error(err), zap.String("profile_id", profileID))
		return nil, fmt.Errorf("failed to get profile by id: %w", err)
	}

	return profile, nil
}

// GetByUserID retrieves the profile owned by a user
func (r *profileRepository) GetByUserID(ctx context.Context, userID int) (*models.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles p WHERE p.user_id = ? LIMIT 1`, profileColumns)

	profile, err := r.scanProfile(r.db.QueryRowContext(ctx, query, userID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("profile not found")
	}
	if err != nil {
		r.logger.Error("failed to get profile by user id", zap.Error(err), zap.Int("user_id", userID))
		return nil, fmt.Errorf("failed to get profile by user id: %w", err)
	}

	return profile, nil
}

// Update applies a partial update to a profile. Nil request fields are left
// unchanged; subject and level sets are replaced wholesale when present.
func (r *profileRepository) Update(ctx context.Context, profileID string, update *models.UpdateProfileRequest) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	setClauses := []string{"updated_at = CURRENT_TIMESTAMP"}
	args := []any{}

	if update.Bio != nil {
		setClauses = append(setClauses, "bio = ?")
		args = append(args, *update.Bio)
	}
	if update.ProfilePicture != nil {
		setClauses = append(setClauses, "profile_picture = ?")
		args = append(args, nullString(*update.ProfilePicture))
	}
	if update.YearsOfExperience != nil {
		setClauses = append(setClauses, "years_of_experience = ?")
		args = append(args, nullString(*update.YearsOfExperience))
	}
	if update.TeachingMethod != nil {
		setClauses = append(setClauses, "teaching_method = ?")
		args = append(args, nullString(*update.TeachingMethod))
	}
	if update.HourlyRate != nil {
		setClauses = append(setClauses, "hourly_rate = ?")
		args = append(args, *update.HourlyRate)
	}
	if update.Currency != nil {
		setClauses = append(setClauses, "currency = ?")
		args = append(args, *update.Currency)
	}
	if update.Latitude != nil {
		setClauses = append(setClauses, "latitude = ?")
		args = append(args, *update.Latitude)
	}
	if update.Longitude != nil {
		setClauses = append(setClauses, "longitude = ?")
		args = append(args, *update.Longitude)
	}
	if update.Visible != nil {
		setClauses = append(setClauses, "visible = ?")
		args = append(args, *update.Visible)
	}

	query := fmt.Sprintf("UPDATE profiles SET %s WHERE id = ?", strings.Join(setClauses, ", "))
	args = append(args, profileID)

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to update profile", zap.Error(err), zap.String("profile_id", profileID))
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if _, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if update.Subjects != nil {
		if err := replaceTags(ctx, tx, "profile_subjects", "subject", profileID, *update.Subjects); err != nil {
			return err
		}
	}
	if update.Levels != nil {
		if err := replaceTags(ctx, tx, "profile_levels", "level", profileID, *update.Levels); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Delete removes a profile. Subject and level rows go with it via the
// foreign key cascade.
func (r *profileRepository) Delete(ctx context.Context, profileID string) error {
	query := `DELETE FROM profiles WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, profileID)
	if err != nil {
		r.logger.Error("failed to delete profile", zap.Error(err), zap.String("profile_id", profileID))
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("profile not found")
	}

	return nil
}

// SearchVisible retrieves all visible profiles matching the structural
// predicates, ordered by most recently updated first with profile ID as the
// deterministic tie-break. Geo and free-text filtering happen above the
// store, so no offset/limit is applied here.
func (r *profileRepository) SearchVisible(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles p WHERE p.visible = TRUE`, profileColumns)
	where, args := buildFilterClauses(filter)
	query += where + " ORDER BY p.updated_at DESC, p.id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to search profiles", zap.Error(err))
		return nil, fmt.Errorf("failed to search profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		profile, err := r.scanProfile(rows)
		if err != nil {
			r.logger.Error("failed to scan profile", zap.Error(err))
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, *profile)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return profiles, nil
}

// CountVisible counts visible profiles matching the structural predicates
func (r *profileRepository) CountVisible(ctx context.Context, filter models.ProfileFilter) (int, error) {
	query := `SELECT COUNT(*) FROM profiles p WHERE p.visible = TRUE`
	where, args := buildFilterClauses(filter)
	query += where

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		r.logger.Error("failed to count profiles", zap.Error(err))
		return 0, fmt.Errorf("failed to count profiles: %w", err)
	}

	return count, nil
}

// buildFilterClauses renders the optional structural predicates as AND
// clauses. Subjects use OR semantics within the field (IN over the
// caller-supplied alternatives); all present fields compose with AND.
func buildFilterClauses(filter models.ProfileFilter) (string, []any) {
	var sb strings.Builder
	var args []any

	if len(filter.Subjects) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(filter.Subjects)), ",")
		sb.WriteString(fmt.Sprintf(" AND EXISTS (SELECT 1 FROM profile_subjects fs WHERE fs.profile_id = p.id AND fs.subject IN (%s))", placeholders))
		for _, subject := range filter.Subjects {
			args = append(args, subject)
		}
	}
	if filter.Level != "" {
		sb.WriteString(" AND EXISTS (SELECT 1 FROM profile_levels fl WHERE fl.profile_id = p.id AND fl.level = ?)")
		args = append(args, filter.Level)
	}
	if filter.TeachingMethod != "" {
		sb.WriteString(" AND p.teaching_method = ?")
		args = append(args, filter.TeachingMethod)
	}

	return sb.String(), args
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// scanProfile reads one profile row including the concatenated tag sets
func (r *profileRepository) scanProfile(row rowScanner) (*models.Profile, error) {
	var (
		profile           models.Profile
		profilePicture    sql.NullString
		yearsOfExperience sql.NullString
		teachingMethod    sql.NullString
		hourlyRate        sql.NullFloat64
		latitude          sql.NullFloat64
		longitude         sql.NullFloat64
		subjects          sql.NullString
		levels            sql.NullString
	)

	err := row.Scan(
		&profile.ID,
		&profile.UserID,
		&profile.Bio,
		&profilePicture,
		&yearsOfExperience,
		&teachingMethod,
		&hourlyRate,
		&profile.Currency,
		&latitude,
		&longitude,
		&profile.Visible,
		&profile.CreatedAt,
		&profile.UpdatedAt,
		&subjects,
		&levels,
	)
	if err != nil {
		return nil, err
	}

	profile.ProfilePicture = profilePicture.String
	profile.YearsOfExperience = yearsOfExperience.String
	profile.TeachingMethod = teachingMethod.String
	if hourlyRate.Valid {
		profile.HourlyRate = &hourlyRate.Float64
	}
	if latitude.Valid && longitude.Valid {
		profile.Latitude = &latitude.Float64
		profile.Longitude = &longitude.Float64
	}
	if subjects.Valid && subjects.String != "" {
		profile.Subjects = strings.Split(subjects.String, ",")
	}
	if levels.Valid && levels.String != "" {
		profile.Levels = strings.Split(levels.String, ",")
	}

	return &profile, nil
}

// insertTags inserts one row per tag into a (profile_id, value) table
func insertTags(ctx context.Context, tx *sql.Tx, table, column, profileID string, tags []string) error {
	for _, tag := range tags {
		query := fmt.Sprintf("INSERT INTO %s (profile_id, %s) VALUES (?, ?)", table, column)
		if _, err := tx.ExecContext(ctx, query, profileID, tag); err != nil {
			return fmt.Errorf("failed to insert %s: %w", column, err)
		}
	}
	return nil
}

// replaceTags replaces the full tag set of a profile
func replaceTags(ctx context.Context, tx *sql.Tx, table, column, profileID string, tags []string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE profile_id = ?", table)
	if _, err := tx.ExecContext(ctx, query, profileID); err != nil {
		return fmt.Errorf("failed to clear %s: %w", column, err)
	}
	return insertTags(ctx, tx, table, column, profileID, tags)
}

// nullString maps "" to NULL for optional text columns
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
