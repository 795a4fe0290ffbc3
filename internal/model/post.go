package model

import "time"

const PostStatusPublish = "publish"

// Post is a host CMS post as seen by the campaign admin.
type Post struct {
	ID     int64     `db:"id" json:"post_id"`
	Type   string    `db:"post_type" json:"post_type"`
	Title  string    `db:"post_title" json:"title"`
	Name   string    `db:"post_name" json:"-"`
	Status string    `db:"post_status" json:"-"`
	Date   time.Time `db:"post_date" json:"post_date"`

	Permalink string `db:"-" json:"slug"`
}

// Setting is one row of the plugin settings table.
type Setting struct {
	Name  string `db:"option_name"`
	Value string `db:"option_value"`
}

const SettingPostTypes = "post_types"
