package database

const DB_NAME = "shop.db"

const DB_SCHEMA = `CREATE TABLE Category (
	ID integer PRIMARY KEY AUTOINCREMENT,
	ExternalID text UNIQUE,
	Name text,
	Code text,
	ParentID integer
);

CREATE TABLE SynonymRule (
	ID integer PRIMARY KEY AUTOINCREMENT,
	MatchName text UNIQUE,
	AssignedCode text
);

CREATE TABLE SkuSequence (
	ID integer PRIMARY KEY AUTOINCREMENT,
	CategoryID integer UNIQUE,
	LastValue integer
);

CREATE TABLE Version (
	ID integer PRIMARY KEY AUTOINCREMENT,
	Name text,
	Revision text
);
`
