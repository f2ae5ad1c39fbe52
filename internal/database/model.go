package database

import "database/sql"

type Category struct {
	ID         int            `db:"ID"`
	ExternalID sql.NullString `db:"ExternalID"`
	Name       string         `db:"Name"`
	Code       string         `db:"Code"`
	ParentID   sql.NullInt64  `db:"ParentID"`
}

type SynonymRule struct {
	ID           int    `db:"ID"`
	MatchName    string `db:"MatchName"`
	AssignedCode string `db:"AssignedCode"`
}

type SkuSequence struct {
	ID         int `db:"ID"`
	CategoryID int `db:"CategoryID"`
	LastValue  int `db:"LastValue"`
}

type Version struct {
	ID       int    `db:"ID"`
	Name     string `db:"Name"`
	Revision string `db:"Revision"`
}
