package db

import (
	"fmt"
	"regexp"
)

// Table is a validated SQL table identifier.
type Table string

func (t Table) String() string { return string(t) }

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// Plugin-owned tables. Their names are fixed by the migrations.
const (
	CampaignsTable     Table = "qr_campaigns"
	CampaignItemsTable Table = "qr_campaign_items"
	SettingsTable      Table = "qr_settings"
)

// Schema maps every logical entity to its table. It is built once at
// startup and handed to the repositories.
type Schema struct {
	Campaigns     Table
	CampaignItems Table
	Settings      Table

	// Host CMS tables, named with the host's prefix.
	Posts       Table
	Comments    Table
	CommentMeta Table
}

// NewSchema builds and validates the table registry for a host table prefix.
func NewSchema(hostPrefix string) (Schema, error) {
	s := Schema{
		Campaigns:     CampaignsTable,
		CampaignItems: CampaignItemsTable,
		Settings:      SettingsTable,
		Posts:         Table(hostPrefix + "posts"),
		Comments:      Table(hostPrefix + "comments"),
		CommentMeta:   Table(hostPrefix + "commentmeta"),
	}
	if err := s.Validate(); err != nil {
		return Schema{}, err
	}
	return s, nil
}

// DefaultSchema is the registry for the default "wp_" host prefix.
func DefaultSchema() Schema {
	s, err := NewSchema("wp_")
	if err != nil {
		panic(err)
	}
	return s
}

func (s Schema) Validate() error {
	tables := map[string]Table{
		"campaigns":      s.Campaigns,
		"campaign_items": s.CampaignItems,
		"settings":       s.Settings,
		"posts":          s.Posts,
		"comments":       s.Comments,
		"comment_meta":   s.CommentMeta,
	}
	for entity, table := range tables {
		if !identPattern.MatchString(string(table)) {
			return fmt.Errorf("invalid table name %q for %s", table, entity)
		}
	}
	return nil
}
