// internal/store/profiles.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	commonerrors "unimatch/internal/common/errors"
	"unimatch/internal/common/logger"
	"unimatch/internal/matching"
	"unimatch/internal/models"
)

// PostgresProfiles implements matching.ProfileStore over the users,
// academic_profiles and financial_profiles tables. Profiles are written by
// other services and change between requests, so every lookup reads the
// database.
type PostgresProfiles struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresProfiles(db *sql.DB, log logger.Logger) *PostgresProfiles {
	return &PostgresProfiles{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"store": "profiles"}),
	}
}

func (p *PostgresProfiles) UserProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	var (
		u                                models.UserProfile
		gpa, budget                      sql.NullFloat64
		sat, act                         sql.NullInt64
		major, country, setting, climate sql.NullString
		focus, persona                   sql.NullString
	)
	err := p.db.QueryRowContext(ctx, `
		SELECT id, gpa, sat, act, preferred_major, max_budget,
		       preferred_country, preferred_setting, preferred_climate, focus_area, persona_role
		FROM users WHERE id = $1`, userID,
	).Scan(&u.ID, &gpa, &sat, &act, &major, &budget, &country, &setting, &climate, &focus, &persona)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", matching.ErrSubjectNotFound, userID)
		}
		return nil, profileError(ctx, userID, err)
	}

	u.GPA, u.MaxBudget = nullFloat(gpa), nullFloat(budget)
	u.SAT, u.ACT = nullInt(sat), nullInt(act)
	u.PreferredMajor = major.String
	u.PreferredCountry, u.PreferredSetting, u.PreferredClimate = country.String, setting.String, climate.String
	u.FocusArea, u.PersonaRole = focus.String, persona.String

	return &u, nil
}

// AcademicProfile returns nil without error when the user has none.
func (p *PostgresProfiles) AcademicProfile(ctx context.Context, userID string) (*models.AcademicProfile, error) {
	var (
		a                           models.AcademicProfile
		gpa                         sql.NullFloat64
		sat, act                    sql.NullInt64
		primary, secondary          sql.NullString
		honors, activities, apExams []byte
	)
	err := p.db.QueryRowContext(ctx, `
		SELECT user_id, gpa, gpa_scale, sat_total, act_composite, primary_major, secondary_major,
		       honors, extracurriculars, ap_exams
		FROM academic_profiles WHERE user_id = $1`, userID,
	).Scan(&a.UserID, &gpa, &a.GPAScale, &sat, &act, &primary, &secondary, &honors, &activities, &apExams)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, profileError(ctx, userID, err)
	}

	a.GPA = nullFloat(gpa)
	a.SATTotal, a.ACTComposite = nullInt(sat), nullInt(act)
	a.PrimaryMajor, a.SecondaryMajor = primary.String, secondary.String

	for _, col := range []struct {
		name string
		raw  []byte
		dest interface{}
	}{
		{"honors", honors, &a.Honors},
		{"extracurriculars", activities, &a.Extracurriculars},
		{"ap_exams", apExams, &a.APExams},
	} {
		if len(col.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(col.raw, col.dest); err != nil {
			p.logger.Warn("ignoring malformed profile column", map[string]interface{}{
				"userId": userID,
				"column": col.name,
				"error":  err,
			})
		}
	}

	return &a, nil
}

// FinancialProfile returns nil without error when the user has none.
func (p *PostgresProfiles) FinancialProfile(ctx context.Context, userID string) (*models.FinancialProfile, error) {
	var (
		f      models.FinancialProfile
		budget sql.NullFloat64
	)
	err := p.db.QueryRowContext(ctx,
		`SELECT user_id, max_budget FROM financial_profiles WHERE user_id = $1`, userID,
	).Scan(&f.UserID, &budget)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, profileError(ctx, userID, err)
	}
	f.MaxBudget = nullFloat(budget)

	return &f, nil
}

func profileError(ctx context.Context, userID string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return commonerrors.NewQueryTimeoutError("profile_lookup")
	}
	return commonerrors.NewProfileLookupFailedError(userID, err)
}
