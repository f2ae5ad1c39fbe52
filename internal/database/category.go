package database

import (
	"database/sql"
	"fmt"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// GetCategories возвращает все локальные категории.
func GetCategories(db *sqlx.DB) ([]*Category, error) {

	var categories []*Category
	err := db.Select(&categories, `SELECT ID, ExternalID, Name, Code, ParentID FROM Category ORDER BY ID`)
	if err != nil {
		return nil, errors.Wrap(err, "failed SELECT FROM Category")
	}

	return categories, nil
}

// GetCategoryByCode возвращает категорию по коду SKU. Если категорий с таким кодом
// несколько, берется первая по ID - код не уникален, уникальны sequence.
func GetCategoryByCode(db *sqlx.DB, code string) (*Category, error) {

	var category Category
	err := db.Get(&category, `SELECT ID, ExternalID, Name, Code, ParentID FROM Category WHERE Code=? ORDER BY ID LIMIT 1`, code)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed SELECT FROM Category WHERE Code=%s", code)
	}

	return &category, nil
}

// CreateCategoryTx создает категорию внутри переданной транзакции.
func CreateCategoryTx(tx *sqlx.Tx, externalID string, name string, code string) (int, error) {

	res, err := tx.Exec(`INSERT INTO Category (ExternalID, Name, Code, ParentID) VALUES (?, ?, ?, NULL)`,
		externalID, name, code)
	if err != nil {
		return 0, errors.Wrapf(err, "failed INSERT INTO Category, ExternalID=%s", externalID)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "failed LastInsertId INSERT INTO Category")
	}
	if id == 0 {
		return 0, errors.New("INSERT INTO Category failed, ID = 0")
	}

	return int(id), nil
}

// UpdateCategoryNameTx обновляет имя категории внутри переданной транзакции.
func UpdateCategoryNameTx(tx *sqlx.Tx, id int, name string) error {

	res, err := tx.Exec(`UPDATE Category SET Name=? WHERE ID=?`, name, id)
	if err != nil {
		return errors.Wrapf(err, "failed UPDATE Category SET Name, ID=%d", id)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed RowsAffected UPDATE Category")
	}
	if affected != 1 {
		return errors.New(fmt.Sprintf("UPDATE Category failed, affected = %d, ID=%d", affected, id))
	}

	return nil
}

// UpdateCategoryParentTx выставляет ParentID категории внутри переданной транзакции.
func UpdateCategoryParentTx(tx *sqlx.Tx, id int, parentID int) error {

	_, err := tx.Exec(`UPDATE Category SET ParentID=? WHERE ID=?`, parentID, id)
	if err != nil {
		return errors.Wrapf(err, "failed UPDATE Category SET ParentID, ID=%d", id)
	}

	return nil
}

// GetSynonymRules возвращает все правила синонимов. Правила ведутся администратором
// и читаются планировщиком только на чтение.
func GetSynonymRules(db *sqlx.DB) ([]*SynonymRule, error) {

	var rules []*SynonymRule
	err := db.Select(&rules, `SELECT ID, MatchName, AssignedCode FROM SynonymRule`)
	if err != nil {
		return nil, errors.Wrap(err, "failed SELECT FROM SynonymRule")
	}

	return rules, nil
}

// AddSynonymRule добавляет правило синонима (используется при первичном заполнении).
func AddSynonymRule(db *sqlx.DB, matchName string, assignedCode string) error {

	_, err := db.Exec(`INSERT INTO SynonymRule (MatchName, AssignedCode) VALUES (?, ?)`, matchName, assignedCode)
	if err != nil {
		return errors.Wrapf(err, "failed INSERT INTO SynonymRule, MatchName=%s", matchName)
	}

	return nil
}
