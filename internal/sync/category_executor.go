package sync

import (
	"ShopWithMoysklad/internal/database"
	"ShopWithMoysklad/pkg/logging"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// ExecuteCategorySyncPlan применяет проверенный оператором план категорий.
// Создание и переименование идут одной транзакцией: либо весь план, либо ничего.
// Привязка родителей выполняется вторым проходом в отдельной транзакции,
// когда у всех категорий уже есть стабильные локальные ID; нерезолвящийся
// родитель оставляет ParentID пустым и не валит операцию.
func ExecuteCategorySyncPlan(db *sqlx.DB, plan *SyncPlan) (*CategorySyncResult, error) {

	logger := logging.GetLogger()
	logger.Info("Start ExecuteCategorySyncPlan")
	defer logger.Info("End ExecuteCategorySyncPlan")

	if plan == nil {
		return nil, errors.New("план не передан")
	}
	if err := plan.Validate(); err != nil {
		return nil, errors.Wrap(err, "план не прошел проверку, записи не выполнялись")
	}

	result := new(CategorySyncResult)

	tx, err := db.Beginx()
	if err != nil {
		return nil, errors.Wrap(err, "failed Beginx ExecuteCategorySyncPlan")
	}

	for _, item := range plan.ToCreate {
		_, err := database.CreateCategoryTx(tx, item.ExternalID, item.Name, item.AssignedCode)
		if err != nil {
			_ = tx.Rollback()
			return nil, errors.Wrapf(err, "не удалось создать категорию %q, транзакция откатана", item.Name)
		}
		result.Created++
	}

	for _, item := range plan.ToUpdate {
		err := database.UpdateCategoryNameTx(tx, item.CategoryID, item.NewName)
		if err != nil {
			_ = tx.Rollback()
			return nil, errors.Wrapf(err, "не удалось обновить категорию ID=%d, транзакция откатана", item.CategoryID)
		}
		result.Updated++
	}

	err = tx.Commit()
	if err != nil {
		return nil, errors.Wrap(err, "failed Commit ExecuteCategorySyncPlan")
	}

	logger.Infof("Создано категорий: %d", result.Created)
	logger.Infof("Обновлено категорий: %d", result.Updated)

	// второй проход: иерархия
	if len(plan.ParentLinks) > 0 {
		linked, err := linkParents(db, plan.ParentLinks)
		if err != nil {
			return result, errors.Wrap(err, "категории записаны, но привязка родителей не удалась")
		}
		result.ParentsLinked = linked
	}

	return result, nil
}

func linkParents(db *sqlx.DB, links []ParentLink) (int, error) {

	logger := logging.GetLogger()
	logger.Info("Start linkParents")
	defer logger.Info("End linkParents")

	categories, err := database.GetCategories(db)
	if err != nil {
		return 0, errors.Wrap(err, "не удалось перечитать категории для привязки родителей")
	}

	byExternalID := make(map[string]*database.Category)
	for i, category := range categories {
		if category.ExternalID.Valid {
			byExternalID[category.ExternalID.String] = categories[i]
		}
	}

	tx, err := db.Beginx()
	if err != nil {
		return 0, errors.Wrap(err, "failed Beginx linkParents")
	}

	var linked int
	for _, link := range links {
		child, foundChild := byExternalID[link.ExternalID]
		if !foundChild {
			logger.Warnf("Категория %s не найдена локально, привязка родителя пропущена", link.ExternalID)
			continue
		}
		parent, foundParent := byExternalID[link.ParentExternalID]
		if !foundParent {
			logger.Warnf("Родитель %s для категории %q не найден локально, ParentID остается пустым", link.ParentExternalID, child.Name)
			continue
		}

		err := database.UpdateCategoryParentTx(tx, child.ID, parent.ID)
		if err != nil {
			_ = tx.Rollback()
			return 0, errors.Wrapf(err, "не удалось привязать родителя для категории ID=%d", child.ID)
		}
		linked++
	}

	err = tx.Commit()
	if err != nil {
		return 0, errors.Wrap(err, "failed Commit linkParents")
	}

	logger.Infof("Привязано родителей: %d", linked)
	return linked, nil
}
