// internal/store/postgres_catalog.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"unimatch/internal/common/database"
	commonerrors "unimatch/internal/common/errors"
	"unimatch/internal/common/logger"
	"unimatch/internal/common/metrics"
	"unimatch/internal/matching"
	"unimatch/internal/models"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

const catalogCacheKey = "catalog:universities"

const universityColumns = `id, name, country, state, city, setting, climate, ranking, acceptance_rate,
	avg_gpa, min_gpa, avg_sat, avg_act, popular_majors,
	tuition_out_state, tuition_international, avg_grant_aid,
	student_life_score, diversity_score, party_scene_rating, safety_rating,
	employment_rate, alumni_network, internship_support, visa_duration_months`

// PostgresCatalog reads active universities from postgres. With a cache the
// whole active catalog is stored under one key and filtered in process;
// without one the location predicates are pushed down to SQL.
type PostgresCatalog struct {
	db     *sql.DB
	cache  *jsonCache
	logger logger.Logger
}

func NewPostgresCatalog(db *sql.DB, rdb *redis.Client, cacheTTL time.Duration, log logger.Logger) *PostgresCatalog {
	log = log.WithFields(map[string]interface{}{"store": "postgres_catalog"})
	return &PostgresCatalog{
		db:     db,
		cache:  newJSONCache(rdb, "catalog", cacheTTL, log),
		logger: log,
	}
}

func (c *PostgresCatalog) FindCandidates(ctx context.Context, f *matching.Filter) ([]models.University, error) {
	if f == nil {
		f = &matching.Filter{}
	}

	if c.cache.enabled() {
		var all []models.University
		if !c.cache.get(ctx, catalogCacheKey, &all) {
			var err error
			all, err = c.query(ctx, &matching.Filter{})
			if err != nil {
				return nil, err
			}
			c.cache.set(ctx, catalogCacheKey, all)
		}
		return f.Apply(all), nil
	}

	found, err := c.query(ctx, f)
	if err != nil {
		return nil, err
	}
	return f.Apply(found), nil
}

func (c *PostgresCatalog) query(ctx context.Context, f *matching.Filter) ([]models.University, error) {
	start := time.Now()
	defer func() {
		metrics.CatalogQueryDuration.WithLabelValues("postgres").Observe(time.Since(start).Seconds())
	}()

	query, args := buildCandidateQuery(f)
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, catalogError(ctx, err)
	}
	defer rows.Close()

	var out []models.University
	for rows.Next() {
		u, err := scanUniversity(rows)
		if err != nil {
			return nil, commonerrors.NewCatalogQueryFailedError("postgres", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, catalogError(ctx, err)
	}

	c.logger.Debug("catalog query", map[string]interface{}{
		"rows":       len(out),
		"durationMs": time.Since(start).Milliseconds(),
	})
	return out, nil
}

func buildCandidateQuery(f *matching.Filter) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(universityColumns)
	sb.WriteString(" FROM universities WHERE is_active")

	var args []interface{}
	for _, p := range []struct{ col, val string }{
		{"country", f.Country},
		{"state", f.State},
		{"city", f.City},
	} {
		if p.val == "" {
			continue
		}
		args = append(args, p.val)
		fmt.Fprintf(&sb, " AND LOWER(%s) = LOWER($%d)", p.col, len(args))
	}
	sb.WriteString(" ORDER BY id")
	return sb.String(), args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUniversity(row rowScanner) (models.University, error) {
	var (
		u                              models.University
		state, city, setting, climate  sql.NullString
		ranking, avgSAT, avgACT, visa  sql.NullInt64
		acceptance, avgGPA, minGPA     sql.NullFloat64
		tuition, intlTuition, aid      sql.NullFloat64
		life, diversity, party, safety sql.NullFloat64
		employment, alumni, internship sql.NullFloat64
		majors                         pq.StringArray
	)

	err := row.Scan(
		&u.ID, &u.Name, &u.Country, &state, &city, &setting, &climate, &ranking, &acceptance,
		&avgGPA, &minGPA, &avgSAT, &avgACT, &majors,
		&tuition, &intlTuition, &aid,
		&life, &diversity, &party, &safety,
		&employment, &alumni, &internship, &visa,
	)
	if err != nil {
		return u, err
	}

	u.State, u.City, u.Climate = state.String, city.String, climate.String
	u.Setting = models.Setting(setting.String)
	u.Ranking = nullInt(ranking)
	u.AcceptanceRate = nullFloat(acceptance)
	u.Academics = models.AcademicStats{
		AvgGPA:        nullFloat(avgGPA),
		MinGPA:        nullFloat(minGPA),
		AvgSAT:        nullInt(avgSAT),
		AvgACT:        nullInt(avgACT),
		PopularMajors: []string(majors),
	}
	u.Financials = models.FinancialStats{
		TuitionOutState:      nullFloat(tuition),
		TuitionInternational: nullFloat(intlTuition),
		AvgGrantAid:          nullFloat(aid),
	}
	u.Social = models.SocialStats{
		StudentLifeScore: nullFloat(life),
		DiversityScore:   nullFloat(diversity),
		PartySceneRating: nullFloat(party),
		SafetyRating:     nullFloat(safety),
	}
	u.Outcomes = models.OutcomeStats{
		EmploymentRate:     nullFloat(employment),
		AlumniNetwork:      nullFloat(alumni),
		InternshipSupport:  nullFloat(internship),
		VisaDurationMonths: nullInt(visa),
	}
	return u, nil
}

const upsertUniversity = `INSERT INTO universities (` + universityColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name, country = EXCLUDED.country, state = EXCLUDED.state, city = EXCLUDED.city,
	setting = EXCLUDED.setting, climate = EXCLUDED.climate, ranking = EXCLUDED.ranking,
	acceptance_rate = EXCLUDED.acceptance_rate, avg_gpa = EXCLUDED.avg_gpa, min_gpa = EXCLUDED.min_gpa,
	avg_sat = EXCLUDED.avg_sat, avg_act = EXCLUDED.avg_act, popular_majors = EXCLUDED.popular_majors,
	tuition_out_state = EXCLUDED.tuition_out_state, tuition_international = EXCLUDED.tuition_international,
	avg_grant_aid = EXCLUDED.avg_grant_aid, student_life_score = EXCLUDED.student_life_score,
	diversity_score = EXCLUDED.diversity_score, party_scene_rating = EXCLUDED.party_scene_rating,
	safety_rating = EXCLUDED.safety_rating, employment_rate = EXCLUDED.employment_rate,
	alumni_network = EXCLUDED.alumni_network, internship_support = EXCLUDED.internship_support,
	visa_duration_months = EXCLUDED.visa_duration_months, is_active = TRUE, updated_at = NOW()`

// Upsert writes the universities in one transaction and drops the cached catalog.
func (c *PostgresCatalog) Upsert(ctx context.Context, universities []models.University) error {
	err := database.WithTx(ctx, c.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, upsertUniversity)
		if err != nil {
			return commonerrors.NewCatalogQueryFailedError("postgres", err)
		}
		defer stmt.Close()

		for i := range universities {
			u := &universities[i]
			_, err := stmt.ExecContext(ctx,
				u.ID, u.Name, u.Country, nullString(u.State), nullString(u.City), nullString(string(u.Setting)), nullString(u.Climate),
				u.Ranking, u.AcceptanceRate,
				u.Academics.AvgGPA, u.Academics.MinGPA, u.Academics.AvgSAT, u.Academics.AvgACT, pq.Array(u.Academics.PopularMajors),
				u.Financials.TuitionOutState, u.Financials.TuitionInternational, u.Financials.AvgGrantAid,
				u.Social.StudentLifeScore, u.Social.DiversityScore, u.Social.PartySceneRating, u.Social.SafetyRating,
				u.Outcomes.EmploymentRate, u.Outcomes.AlumniNetwork, u.Outcomes.InternshipSupport, u.Outcomes.VisaDurationMonths,
			)
			if err != nil {
				return commonerrors.NewCatalogQueryFailedError("postgres", fmt.Errorf("upsert %s: %w", u.ID, err))
			}
		}
		return nil
	})
	if err != nil {
		var stdErr *commonerrors.StandardError
		if errors.As(err, &stdErr) {
			return stdErr
		}
		return commonerrors.NewCatalogQueryFailedError("postgres", err)
	}

	if err := c.cache.invalidate(ctx, catalogCacheKey); err != nil {
		c.logger.Warn("failed to invalidate catalog cache", map[string]interface{}{"error": err})
	}
	c.logger.Info("catalog upserted", map[string]interface{}{"count": len(universities)})
	return nil
}

func catalogError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return commonerrors.NewQueryTimeoutError("find_candidates")
	}
	return commonerrors.NewCatalogQueryFailedError("postgres", err)
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
