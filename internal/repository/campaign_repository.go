package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/unclebandit/quickreview-backend/internal/db"
	"github.com/unclebandit/quickreview-backend/internal/model"
)

type CampaignRepositoryInterface interface {
	Create(ctx context.Context, c *model.Campaign) error
	// Update reports false when no campaign has c.ID.
	Update(ctx context.Context, c *model.Campaign) (bool, error)
	GetByID(ctx context.Context, id int64) (*model.Campaign, error)
	FindByPost(ctx context.Context, postID int64) ([]*model.Campaign, error)
	FindLatestActiveByPost(ctx context.Context, postID int64) (*model.Campaign, error)
	FindDuplicate(ctx context.Context, c *model.Campaign) (*model.Campaign, error)
	List(ctx context.Context, f model.CampaignFilter, p model.Page) ([]*model.Campaign, error)
	Count(ctx context.Context, f model.CampaignFilter) (int, error)
}

var campaignOrderColumns = map[string]string{
	"id":         "c.id",
	"name":       "c.name",
	"start_date": "c.start_date",
	"end_date":   "c.end_date",
	"status":     "c.status",
	"post_id":    "c.post_id",
	"created_at": "c.created_at",
}

type CampaignRepository struct {
	DB *sqlx.DB

	campaigns db.Table
	items     db.Table
	columns   string
	insert    string
	update    string
	byID      string
	byPost    string
	latest    string
	dupe      string
}

func NewCampaignRepository(conn *sqlx.DB, s db.Schema) *CampaignRepository {
	cols := "c.id, c.name, c.start_date, c.end_date, c.status, c.post_id, c.created_at"
	return &CampaignRepository{
		DB:        conn,
		campaigns: s.Campaigns,
		items:     s.CampaignItems,
		columns:   cols,
		insert: fmt.Sprintf(`
			INSERT INTO %s (name, start_date, end_date, status, post_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`, s.Campaigns),
		update: fmt.Sprintf(`
			UPDATE %s
			SET name=$1, start_date=$2, end_date=$3, status=$4, post_id=$5
			WHERE id=$6`, s.Campaigns),
		byID:   fmt.Sprintf(`SELECT %s, 0 AS review_count FROM %s c WHERE c.id=$1`, cols, s.Campaigns),
		byPost: fmt.Sprintf(`SELECT %s, 0 AS review_count FROM %s c WHERE c.post_id=$1 ORDER BY c.created_at DESC, c.id DESC`, cols, s.Campaigns),
		latest: fmt.Sprintf(`
			SELECT %s, 0 AS review_count FROM %s c
			WHERE c.post_id=$1 AND c.status <> 'inactive'
			ORDER BY c.created_at DESC, c.id DESC
			LIMIT 1`, cols, s.Campaigns),
		dupe: fmt.Sprintf(`
			SELECT %s, 0 AS review_count FROM %s c
			WHERE c.name=$1 AND c.post_id=$2 AND c.start_date=$3
			  AND c.end_date IS NOT DISTINCT FROM $4 AND c.status=$5
			ORDER BY c.id
			LIMIT 1`, cols, s.Campaigns),
	}
}

// ====================== Campaign CRUD ======================

func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	if c.Status == "" {
		c.Status = model.CampaignStatusDraft
	}
	return r.DB.QueryRowxContext(ctx, r.insert,
		c.Name, c.StartDate, c.EndDate, c.Status, c.PostID, c.CreatedAt,
	).Scan(&c.ID)
}

func (r *CampaignRepository) Update(ctx context.Context, c *model.Campaign) (bool, error) {
	res, err := r.DB.ExecContext(ctx, r.update, c.Name, c.StartDate, c.EndDate, c.Status, c.PostID, c.ID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *CampaignRepository) GetByID(ctx context.Context, id int64) (*model.Campaign, error) {
	return r.getOne(ctx, r.byID, id)
}

func (r *CampaignRepository) FindByPost(ctx context.Context, postID int64) ([]*model.Campaign, error) {
	campaigns := []*model.Campaign{}
	if err := r.DB.SelectContext(ctx, &campaigns, r.byPost, postID); err != nil {
		return nil, err
	}
	return campaigns, nil
}

// FindLatestActiveByPost returns the most recently created campaign of the
// post whose status is not inactive.
func (r *CampaignRepository) FindLatestActiveByPost(ctx context.Context, postID int64) (*model.Campaign, error) {
	return r.getOne(ctx, r.latest, postID)
}

// FindDuplicate returns a stored campaign identical to c, if any.
func (r *CampaignRepository) FindDuplicate(ctx context.Context, c *model.Campaign) (*model.Campaign, error) {
	return r.getOne(ctx, r.dupe, c.Name, c.PostID, c.StartDate, c.EndDate, c.Status)
}

func (r *CampaignRepository) getOne(ctx context.Context, query string, args ...interface{}) (*model.Campaign, error) {
	var c model.Campaign
	if err := r.DB.GetContext(ctx, &c, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// ====================== Listing ======================

func (r *CampaignRepository) List(ctx context.Context, f model.CampaignFilter, p model.Page) ([]*model.Campaign, error) {
	query, args, err := r.listQuery(f, p)
	if err != nil {
		return nil, err
	}
	campaigns := []*model.Campaign{}
	if err := r.DB.SelectContext(ctx, &campaigns, query, args...); err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (r *CampaignRepository) Count(ctx context.Context, f model.CampaignFilter) (int, error) {
	query, args, err := r.countQuery(f)
	if err != nil {
		return 0, err
	}
	var total int
	if err := r.DB.GetContext(ctx, &total, query, args...); err != nil {
		return 0, err
	}
	return total, nil
}

func campaignWhere(f model.CampaignFilter) *where {
	w := &where{}
	if len(f.PostIDs) > 0 {
		w.add("c.post_id IN (?)", f.PostIDs)
	}
	if f.Status != "" {
		w.add("c.status = ?", f.Status)
	}
	w.dateRange("c.created_at", f.CreatedFrom, f.CreatedTo)
	return w
}

func (r *CampaignRepository) listQuery(f model.CampaignFilter, p model.Page) (string, []interface{}, error) {
	p = p.Normalize()
	order, err := orderClause(p, campaignOrderColumns)
	if err != nil {
		return "", nil, err
	}

	w := campaignWhere(f)
	var query string
	if f.IncludeReviewCount {
		query = fmt.Sprintf(
			`SELECT %s, COALESCE(SUM(i.count), 0) AS review_count FROM %s c LEFT JOIN %s i ON i.campaign_id = c.id%s GROUP BY c.id`,
			r.columns, r.campaigns, r.items, w,
		)
	} else {
		query = fmt.Sprintf(`SELECT %s, 0 AS review_count FROM %s c%s`, r.columns, r.campaigns, w)
	}
	query += order + " LIMIT ? OFFSET ?"
	args := append(w.args, p.Limit, p.Offset)

	return build(r.DB, query, args)
}

func (r *CampaignRepository) countQuery(f model.CampaignFilter) (string, []interface{}, error) {
	w := campaignWhere(f)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s c%s`, r.campaigns, w)
	return build(r.DB, query, w.args)
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
