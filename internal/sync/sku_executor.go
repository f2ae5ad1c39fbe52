package sync

import (
	"ShopWithMoysklad/internal/database"
	"ShopWithMoysklad/internal/moysklad"
	"ShopWithMoysklad/internal/sku"
	"ShopWithMoysklad/pkg/logging"
	"fmt"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"sync"
)

// ExecuteSkuResolutionPlan применяет план выправления артикулов с решениями
// оператора. Каждая запись в МойСклад независима: ошибка по одной позиции
// собирается в результат и не прерывает остальные. Записи уходят
// конкурентно, количество воркеров ограничено конфигом.
//
// Sequence резервируется локально в транзакции непосредственно перед записью
// артикула наружу. Если запись в МойСклад не удалась, номер сгорает -
// дырки в нумерации безопасны, дубли нет.
func ExecuteSkuResolutionPlan(db *sqlx.DB, ms moysklad.MSAPI, plan *SkuResolutionPlan, resolutions UserResolutions, workers int) (*SkuSyncResult, error) {

	logger := logging.GetLogger()
	logger.Info("Start ExecuteSkuResolutionPlan")
	defer logger.Info("End ExecuteSkuResolutionPlan")

	if plan == nil {
		return nil, errors.New("план не передан")
	}
	if err := plan.Validate(); err != nil {
		return nil, errors.Wrap(err, "план не прошел проверку, записи не выполнялись")
	}
	if err := resolutions.Validate(); err != nil {
		return nil, errors.Wrap(err, "решения не прошли проверку, записи не выполнялись")
	}

	// решение по позиции, которой нет в плане - признак устаревшего плана
	conflictByID := make(map[string]*SkuConflict)
	for i := range plan.Conflicts {
		conflictByID[plan.Conflicts[i].MoySkladID] = &plan.Conflicts[i]
	}
	for id := range resolutions {
		if _, found := conflictByID[id]; !found {
			return nil, errors.New(fmt.Sprintf("решение для %s не соответствует плану - план устарел, пересчитайте dry run", id))
		}
	}

	if workers <= 0 {
		workers = 1
	}
	result := new(SkuSyncResult)
	var mutex sync.Mutex

	appendError := func(name string, id string, err error) {
		mutex.Lock()
		defer mutex.Unlock()
		result.Errors = append(result.Errors, fmt.Sprintf("%s (%s): %v", name, id, err))
	}

	g := new(errgroup.Group)
	g.SetLimit(workers)

	for i := range plan.Conflicts {
		conflict := plan.Conflicts[i]

		action, found := resolutions[conflict.MoySkladID]
		if !found {
			result.ConflictsSkipped++
			continue
		}

		g.Go(func() error {
			switch action {
			case ResolutionFixSku:
				sequence, err := database.NextSequence(db, conflict.CategoryID)
				if err != nil {
					appendError(conflict.Name, conflict.MoySkladID, err)
					return nil
				}
				article := sku.Encode(conflict.CategoryCode, sequence)
				err = ms.ArticleUpdate(conflict.MoySkladID, conflict.MoySkladType, article)
				if err != nil {
					appendError(conflict.Name, conflict.MoySkladID, err)
					return nil
				}
				logger.Infof("Артикул выправлен: %s -> %s", conflict.Name, article)
				mutex.Lock()
				result.ArticlesFixed++
				mutex.Unlock()

			case ResolutionRevertCategory:
				if conflict.ExpectedCategoryFromArticle == nil || conflict.ExpectedCategoryFromArticle.ExternalID == "" {
					appendError(conflict.Name, conflict.MoySkladID,
						errors.New("категория по артикулу не распознана, вернуть привязку невозможно"))
					return nil
				}
				err := ms.ProductFolderLinkUpdate(conflict.MoySkladID, conflict.MoySkladType, conflict.ExpectedCategoryFromArticle.ExternalID)
				if err != nil {
					appendError(conflict.Name, conflict.MoySkladID, err)
					return nil
				}
				logger.Infof("Привязка возвращена: %s -> %s", conflict.Name, conflict.ExpectedCategoryFromArticle.Name)
				mutex.Lock()
				result.CategoriesReverted++
				mutex.Unlock()
			}
			return nil
		})
	}

	for i := range plan.ToCreate {
		item := plan.ToCreate[i]

		g.Go(func() error {
			sequence, err := database.NextSequence(db, item.CategoryID)
			if err != nil {
				appendError(item.Name, item.MoySkladID, err)
				return nil
			}
			article := sku.Encode(item.CategoryCode, sequence)
			err = ms.ArticleUpdate(item.MoySkladID, item.MoySkladType, article)
			if err != nil {
				appendError(item.Name, item.MoySkladID, err)
				return nil
			}
			logger.Infof("Артикул создан: %s -> %s", item.Name, article)
			mutex.Lock()
			result.ArticlesCreated++
			mutex.Unlock()
			return nil
		})
	}

	_ = g.Wait()

	logger.Info("Результат выправления артикулов:")
	logger.Infof("Артикулов выправлено: %d", result.ArticlesFixed)
	logger.Infof("Привязок возвращено: %d", result.CategoriesReverted)
	logger.Infof("Артикулов создано: %d", result.ArticlesCreated)
	logger.Infof("Конфликтов пропущено без решения: %d", result.ConflictsSkipped)
	logger.Infof("Ошибок: %d", len(result.Errors))

	return result, nil
}
