package service

import (
	"context"
	"errors"
	"sort"
	"time"

	appErrors "github.com/unclebandit/quickreview-backend/internal/errors"
	"github.com/unclebandit/quickreview-backend/internal/model"
)

// Mock repositories

type mockCampaignRepo struct {
	campaigns map[int64]*model.Campaign
	nextID    int64
	err       error
}

func newMockCampaignRepo(cs ...*model.Campaign) *mockCampaignRepo {
	m := &mockCampaignRepo{campaigns: map[int64]*model.Campaign{}, nextID: 1}
	for _, c := range cs {
		m.campaigns[c.ID] = c
		if c.ID >= m.nextID {
			m.nextID = c.ID + 1
		}
	}
	return m
}

func (m *mockCampaignRepo) Create(ctx context.Context, c *model.Campaign) error {
	if m.err != nil {
		return m.err
	}
	c.ID = m.nextID
	m.nextID++
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	cp := *c
	m.campaigns[c.ID] = &cp
	return nil
}

func (m *mockCampaignRepo) Update(ctx context.Context, c *model.Campaign) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	old, ok := m.campaigns[c.ID]
	if !ok {
		return false, nil
	}
	cp := *c
	cp.CreatedAt = old.CreatedAt
	m.campaigns[c.ID] = &cp
	return true, nil
}

func (m *mockCampaignRepo) GetByID(ctx context.Context, id int64) (*model.Campaign, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.campaigns[id], nil
}

func (m *mockCampaignRepo) sorted(postID int64) []*model.Campaign {
	out := []*model.Campaign{}
	for _, c := range m.campaigns {
		if postID == 0 || c.PostID == postID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (m *mockCampaignRepo) FindByPost(ctx context.Context, postID int64) ([]*model.Campaign, error) {
	return m.sorted(postID), m.err
}

func (m *mockCampaignRepo) FindLatestActiveByPost(ctx context.Context, postID int64) (*model.Campaign, error) {
	for _, c := range m.sorted(postID) {
		if c.Status != model.CampaignStatusInactive {
			return c, nil
		}
	}
	return nil, m.err
}

func (m *mockCampaignRepo) FindDuplicate(ctx context.Context, c *model.Campaign) (*model.Campaign, error) {
	for _, e := range m.campaigns {
		if e.Name == c.Name && e.PostID == c.PostID && e.StartDate.Equal(c.StartDate) &&
			e.EndDate == c.EndDate && e.Status == c.Status {
			return e, nil
		}
	}
	return nil, m.err
}

func (m *mockCampaignRepo) List(ctx context.Context, f model.CampaignFilter, p model.Page) ([]*model.Campaign, error) {
	if p.OrderBy == "bogus" {
		return nil, appErrors.Validation("order_by", "Invalid order column: bogus")
	}
	all := m.sorted(0)
	if p.Offset >= len(all) {
		return []*model.Campaign{}, m.err
	}
	end := p.Offset + p.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[p.Offset:end], m.err
}

func (m *mockCampaignRepo) Count(ctx context.Context, f model.CampaignFilter) (int, error) {
	return len(m.campaigns), m.err
}

type mockItemRepo struct {
	items     map[string]*model.CampaignItem
	campaigns *mockCampaignRepo
	alwaysHit bool
	err       error
}

func newMockItemRepo(campaigns *mockCampaignRepo, items ...*model.CampaignItem) *mockItemRepo {
	m := &mockItemRepo{items: map[string]*model.CampaignItem{}, campaigns: campaigns}
	for _, it := range items {
		m.items[it.Reference] = it
	}
	return m
}

func (m *mockItemRepo) Exists(ctx context.Context, ref string) (bool, error) {
	_, ok := m.items[ref]
	return ok || m.alwaysHit, m.err
}

func (m *mockItemRepo) Insert(ctx context.Context, item *model.CampaignItem) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.items[item.Reference]; ok {
		return appErrors.ErrDuplicate
	}
	cp := *item
	m.items[item.Reference] = &cp
	return nil
}

func (m *mockItemRepo) Delete(ctx context.Context, ref string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	if _, ok := m.items[ref]; !ok {
		return 0, nil
	}
	delete(m.items, ref)
	return 1, nil
}

func (m *mockItemRepo) List(ctx context.Context, campaignID int64, f model.ItemFilter, p model.Page) ([]*model.CampaignItem, error) {
	out := []*model.CampaignItem{}
	for _, it := range m.items {
		if it.CampaignID == campaignID {
			out = append(out, it)
		}
	}
	return out, m.err
}

func (m *mockItemRepo) Count(ctx context.Context, campaignID int64, f model.ItemFilter) (int, error) {
	items, err := m.List(ctx, campaignID, f, model.Page{})
	return len(items), err
}

func (m *mockItemRepo) Increment(ctx context.Context, ref string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	it, ok := m.items[ref]
	if !ok {
		return false, nil
	}
	it.Count++
	return true, nil
}

func (m *mockItemRepo) Decrement(ctx context.Context, ref string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	it, ok := m.items[ref]
	if !ok {
		return false, nil
	}
	if it.Count > 0 {
		it.Count--
	}
	return true, nil
}

func (m *mockItemRepo) FindContext(ctx context.Context, ref string) (*model.CampaignContext, error) {
	if m.err != nil {
		return nil, m.err
	}
	it, ok := m.items[ref]
	if !ok {
		return nil, nil
	}
	c := m.campaigns.campaigns[it.CampaignID]
	if c == nil {
		return nil, nil
	}
	return &model.CampaignContext{
		Reference:      it.Reference,
		ItemName:       it.Name,
		ItemStatus:     it.Status,
		Count:          it.Count,
		CampaignID:     c.ID,
		CampaignName:   c.Name,
		CampaignStatus: c.Status,
		StartDate:      c.StartDate,
		EndDate:        c.EndDate,
		PostID:         c.PostID,
	}, nil
}

type mockCommentRepo struct {
	comments map[int64]*model.Comment
	meta     map[int64]map[string]string
	saveErr  error
	getErr   error
}

func newMockCommentRepo(cs ...*model.Comment) *mockCommentRepo {
	m := &mockCommentRepo{comments: map[int64]*model.Comment{}, meta: map[int64]map[string]string{}}
	for _, c := range cs {
		m.comments[c.ID] = c
	}
	return m
}

// setStatus mimics the host applying a moderation action.
func (m *mockCommentRepo) setStatus(id int64, status string) {
	switch status {
	case model.StatusApprove:
		m.comments[id].Approved = model.ApprovalApproved
	case "spam":
		m.comments[id].Approved = model.ApprovalSpam
	case "trash":
		m.comments[id].Approved = model.ApprovalTrash
	default:
		m.comments[id].Approved = model.ApprovalPending
	}
}

func (m *mockCommentRepo) Get(ctx context.Context, id int64) (*model.Comment, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.comments[id], nil
}

func (m *mockCommentRepo) GetMeta(ctx context.Context, id int64, key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	return m.meta[id][key], nil
}

func (m *mockCommentRepo) GetMetaMap(ctx context.Context, id int64, keys []string) (map[string]string, error) {
	out := map[string]string{}
	for _, k := range keys {
		if v, ok := m.meta[id][k]; ok {
			out[k] = v
		}
	}
	return out, m.getErr
}

func (m *mockCommentRepo) SaveMeta(ctx context.Context, id int64, values map[string]string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.meta[id] == nil {
		m.meta[id] = map[string]string{}
	}
	for k, v := range values {
		m.meta[id][k] = v
	}
	return nil
}

type mockPostRepo struct {
	posts map[int64]*model.Post
	err   error

	lastTypes []string
	lastLimit int
}

func newMockPostRepo(ps ...*model.Post) *mockPostRepo {
	m := &mockPostRepo{posts: map[int64]*model.Post{}}
	for _, p := range ps {
		m.posts[p.ID] = p
	}
	return m
}

func (m *mockPostRepo) Get(ctx context.Context, id int64) (*model.Post, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.posts[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *mockPostRepo) Search(ctx context.Context, term string, types []string, limit int) ([]*model.Post, error) {
	m.lastTypes, m.lastLimit = types, limit
	out := []*model.Post{}
	ids := make([]int64, 0, len(m.posts))
	for id := range m.posts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		cp := *m.posts[id]
		out = append(out, &cp)
	}
	return out, m.err
}

type mockSettingsRepo struct {
	settings map[string]*model.Setting
	err      error
}

func newMockSettingsRepo() *mockSettingsRepo {
	return &mockSettingsRepo{settings: map[string]*model.Setting{}}
}

func (m *mockSettingsRepo) Get(ctx context.Context, name string) (*model.Setting, error) {
	return m.settings[name], m.err
}

func (m *mockSettingsRepo) Put(ctx context.Context, s *model.Setting) error {
	if m.err != nil {
		return m.err
	}
	cp := *s
	m.settings[s.Name] = &cp
	return nil
}

var errDB = errors.New("db unavailable")
