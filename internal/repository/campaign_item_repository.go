package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/unclebandit/quickreview-backend/internal/db"
	appErrors "github.com/unclebandit/quickreview-backend/internal/errors"
	"github.com/unclebandit/quickreview-backend/internal/model"
)

type CampaignItemRepositoryInterface interface {
	Exists(ctx context.Context, reference string) (bool, error)
	Insert(ctx context.Context, item *model.CampaignItem) error
	Delete(ctx context.Context, reference string) (int64, error)
	List(ctx context.Context, campaignID int64, f model.ItemFilter, p model.Page) ([]*model.CampaignItem, error)
	Count(ctx context.Context, campaignID int64, f model.ItemFilter) (int, error)

	// Counter updates report false when no item has the reference.
	Increment(ctx context.Context, reference string) (bool, error)
	Decrement(ctx context.Context, reference string) (bool, error)

	FindContext(ctx context.Context, reference string) (*model.CampaignContext, error)
}

var itemOrderColumns = map[string]string{
	"reference":  "i.reference",
	"name":       "i.name",
	"status":     "i.status",
	"count":      "i.count",
	"created_at": "i.created_at",
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

type CampaignItemRepository struct {
	DB *sqlx.DB

	items     db.Table
	exists    string
	insert    string
	delete    string
	increment string
	decrement string
	joined    string
}

func NewCampaignItemRepository(conn *sqlx.DB, s db.Schema) *CampaignItemRepository {
	return &CampaignItemRepository{
		DB:     conn,
		items:  s.CampaignItems,
		exists: fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE reference=$1)`, s.CampaignItems),
		insert: fmt.Sprintf(`
			INSERT INTO %s (reference, name, campaign_id, count, status, created_at)
			VALUES (:reference, :name, :campaign_id, :count, :status, :created_at)`, s.CampaignItems),
		delete:    fmt.Sprintf(`DELETE FROM %s WHERE reference=$1`, s.CampaignItems),
		increment: fmt.Sprintf(`UPDATE %s SET count = COALESCE(count, 0) + 1 WHERE reference=$1`, s.CampaignItems),
		decrement: fmt.Sprintf(`UPDATE %s SET count = GREATEST(COALESCE(count, 0) - 1, 0) WHERE reference=$1`, s.CampaignItems),
		joined: fmt.Sprintf(`
			SELECT i.reference, i.name AS item_name, i.status AS item_status, i.count,
			       c.id AS campaign_id, c.name AS campaign_name, c.status AS campaign_status,
			       c.start_date, c.end_date, c.post_id
			FROM %s i
			JOIN %s c ON c.id = i.campaign_id
			WHERE i.reference=$1`, s.CampaignItems, s.Campaigns),
	}
}

func (r *CampaignItemRepository) Exists(ctx context.Context, reference string) (bool, error) {
	var ok bool
	if err := r.DB.GetContext(ctx, &ok, r.exists, reference); err != nil {
		return false, err
	}
	return ok, nil
}

// Insert stores a new item. A taken reference yields appErrors.ErrDuplicate.
func (r *CampaignItemRepository) Insert(ctx context.Context, item *model.CampaignItem) error {
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	if item.Status == "" {
		item.Status = model.ItemStatusActive
	}
	if _, err := r.DB.NamedExecContext(ctx, r.insert, item); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert campaign item %s: %w", item.Reference, appErrors.ErrDuplicate)
		}
		return err
	}
	return nil
}

func (r *CampaignItemRepository) Delete(ctx context.Context, reference string) (int64, error) {
	return r.execAffected(ctx, r.delete, reference)
}

func (r *CampaignItemRepository) Increment(ctx context.Context, reference string) (bool, error) {
	n, err := r.execAffected(ctx, r.increment, reference)
	return n > 0, err
}

// Decrement lowers the counter, never below zero.
func (r *CampaignItemRepository) Decrement(ctx context.Context, reference string) (bool, error) {
	n, err := r.execAffected(ctx, r.decrement, reference)
	return n > 0, err
}

func (r *CampaignItemRepository) execAffected(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// FindContext joins an item with its campaign. Absence is nil, nil.
func (r *CampaignItemRepository) FindContext(ctx context.Context, reference string) (*model.CampaignContext, error) {
	var cc model.CampaignContext
	if err := r.DB.GetContext(ctx, &cc, r.joined, reference); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &cc, nil
}

func itemWhere(campaignID int64, f model.ItemFilter) *where {
	w := &where{}
	w.add("i.campaign_id = ?", campaignID)
	if f.Status != "" {
		w.add("i.status = ?", f.Status)
	}
	w.dateRange("i.created_at", f.CreatedFrom, f.CreatedTo)
	return w
}

func (r *CampaignItemRepository) List(ctx context.Context, campaignID int64, f model.ItemFilter, p model.Page) ([]*model.CampaignItem, error) {
	query, args, err := r.listQuery(campaignID, f, p)
	if err != nil {
		return nil, err
	}
	items := []*model.CampaignItem{}
	if err := r.DB.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *CampaignItemRepository) Count(ctx context.Context, campaignID int64, f model.ItemFilter) (int, error) {
	w := itemWhere(campaignID, f)
	query, args, err := build(r.DB, fmt.Sprintf(`SELECT COUNT(*) FROM %s i%s`, r.items, w), w.args)
	if err != nil {
		return 0, err
	}
	var total int
	if err := r.DB.GetContext(ctx, &total, query, args...); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *CampaignItemRepository) listQuery(campaignID int64, f model.ItemFilter, p model.Page) (string, []interface{}, error) {
	p = p.Normalize()
	order, err := orderClause(p, itemOrderColumns)
	if err != nil {
		return "", nil, err
	}

	count := "0 AS count"
	if f.IncludeCount {
		count = "i.count"
	}
	w := itemWhere(campaignID, f)
	query := fmt.Sprintf(
		`SELECT i.reference, i.name, i.campaign_id, %s, i.status, i.created_at FROM %s i%s`,
		count, r.items, w,
	)
	query += order + " LIMIT ? OFFSET ?"
	return build(r.DB, query, append(w.args, p.Limit, p.Offset))
}

var _ CampaignItemRepositoryInterface = (*CampaignItemRepository)(nil)
