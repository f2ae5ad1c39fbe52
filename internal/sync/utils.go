package sync

import (
	"ShopWithMoysklad/internal/database"
	"ShopWithMoysklad/internal/moysklad/models"
	"ShopWithMoysklad/pkg/logging"
	"fmt"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// FoldersRevision строит ревизию списка папок: количество плюс самая поздняя
// отметка updated. У МойСклад нет сквозной версии справочника, как у классических
// бэкофисов, поэтому ревизию считаем сами.
func FoldersRevision(folders []*models.ProductFolder) string {

	var maxUpdated string
	for _, folder := range folders {
		if folder.Updated > maxUpdated {
			maxUpdated = folder.Updated
		}
	}

	return fmt.Sprintf("%d:%s", len(folders), maxUpdated)
}

// VerifyRevision сравнивает ревизию с сохраненной в таблице Version.
func VerifyRevision(db *sqlx.DB, name string, revision string) (bool, error) {

	logger := logging.GetLogger()

	var versions []database.Version
	err := db.Select(&versions, `SELECT ID, Name, Revision FROM Version WHERE Name=?`, name)
	if err != nil {
		return false, errors.Wrap(err, "failed SELECT to dbsqlite")
	}

	if len(versions) == 0 {
		// строки с ревизией нет, создаем пустую
		logger.Printf("Ревизия %s не определена, т.к. не найдена строка в таблице Version", name)
		_, err := db.Exec(`INSERT INTO Version (Name, Revision) VALUES (?, '')`, name)
		if err != nil {
			return false, errors.Wrapf(err, "failed INSERT INTO Version, Name=%s", name)
		}
		logger.Printf("Создана строка для %s в таблице Version", name)
		return false, nil
	}

	if versions[0].Revision == revision {
		logger.Printf("Ревизия %s совпадает между МойСклад и DB", name)
		return true, nil
	}

	logger.Printf("Ревизия %s не совпадает между МойСклад и DB", name)
	return false, nil
}

// UpdateRevisionInDB сохраняет ревизию в таблице Version.
func UpdateRevisionInDB(db *sqlx.DB, name string, revision string) error {

	logger := logging.GetLogger()

	res, err := db.Exec(`UPDATE Version SET Revision=? WHERE Name=?`, revision, name)
	if err != nil {
		return errors.Wrapf(err, "failed UPDATE Version, Name=%s", name)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed RowsAffected UPDATE Version")
	}
	if affected == 0 {
		_, err := db.Exec(`INSERT INTO Version (Name, Revision) VALUES (?, ?)`, name, revision)
		if err != nil {
			return errors.Wrapf(err, "failed INSERT INTO Version, Name=%s", name)
		}
	}

	logger.Printf("Обновлена строка для %s в таблице Version", name)
	return nil
}
