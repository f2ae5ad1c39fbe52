package database

import (
	"ShopWithMoysklad/pkg/logging"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// NextSequence резервирует следующий sequence для категории внутри транзакции.
// Две конкурентные генерации никогда не вернут одно и то же значение для одной
// категории. Номер не переиспользуется: если запись артикула в МойСклад после
// резервирования не удалась, остается дырка - дырки безопасны, дубли нет.
func NextSequence(db *sqlx.DB, categoryID int) (int, error) {

	logger := logging.GetLogger()

	tx, err := db.Beginx()
	if err != nil {
		return 0, errors.Wrap(err, "failed Beginx NextSequence")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.Exec(`INSERT INTO SkuSequence (CategoryID, LastValue) VALUES (?, 0)
		ON CONFLICT(CategoryID) DO NOTHING`, categoryID)
	if err != nil {
		return 0, errors.Wrapf(err, "failed INSERT INTO SkuSequence, CategoryID=%d", categoryID)
	}

	_, err = tx.Exec(`UPDATE SkuSequence SET LastValue = LastValue + 1 WHERE CategoryID=?`, categoryID)
	if err != nil {
		return 0, errors.Wrapf(err, "failed UPDATE SkuSequence, CategoryID=%d", categoryID)
	}

	var value int
	err = tx.Get(&value, `SELECT LastValue FROM SkuSequence WHERE CategoryID=?`, categoryID)
	if err != nil {
		return 0, errors.Wrapf(err, "failed SELECT FROM SkuSequence, CategoryID=%d", categoryID)
	}

	err = tx.Commit()
	if err != nil {
		return 0, errors.Wrap(err, "failed Commit NextSequence")
	}

	logger.Debugf("NextSequence: CategoryID=%d, LastValue=%d", categoryID, value)
	return value, nil
}

// PeekSequences возвращает текущие значения sequence по категориям без резервирования.
// Используется планировщиком для предсказания артикулов - dry run не меняет состояние.
func PeekSequences(db *sqlx.DB) (map[int]int, error) {

	var sequences []*SkuSequence
	err := db.Select(&sequences, `SELECT ID, CategoryID, LastValue FROM SkuSequence`)
	if err != nil {
		return nil, errors.Wrap(err, "failed SELECT FROM SkuSequence")
	}

	result := make(map[int]int)
	for _, s := range sequences {
		result[s.CategoryID] = s.LastValue
	}

	return result, nil
}
