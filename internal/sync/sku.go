package sync

import (
	"ShopWithMoysklad/internal/database"
	"ShopWithMoysklad/internal/moysklad"
	"ShopWithMoysklad/internal/sku"
	"ShopWithMoysklad/pkg/logging"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// BuildSkuResolutionPlan сверяет артикулы ассортимента МойСклад с тем, что
// должна давать схема нумерации по текущей категории каждой позиции.
// Позиции без артикула уходят в ToCreate, расхождения - в Conflicts.
// Ничего не пишет и не резервирует: ожидаемые артикулы в плане
// предсказываются по текущим значениям sequence, реальное резервирование
// делает исполнитель.
func BuildSkuResolutionPlan(db *sqlx.DB, ms moysklad.MSAPI) (*SkuResolutionPlan, error) {

	logger := logging.GetLogger()
	logger.Info("Start BuildSkuResolutionPlan")
	defer logger.Info("End BuildSkuResolutionPlan")

	// без ассортимента план не построить - прерываем весь расчет
	assortment, err := ms.AssortmentList()
	if err != nil {
		return nil, errors.Wrap(err, "не удалось получить ассортимент из МойСклад")
	}

	categories, err := database.GetCategories(db)
	if err != nil {
		return nil, errors.Wrap(err, "не удалось получить локальные категории")
	}

	sequences, err := database.PeekSequences(db)
	if err != nil {
		return nil, errors.Wrap(err, "не удалось прочитать значения sequence")
	}

	byExternalID := make(map[string]*database.Category)
	byCode := make(map[string]*database.Category)
	for i, category := range categories {
		if category.ExternalID.Valid {
			byExternalID[category.ExternalID.String] = categories[i]
		}
		// коды не уникальны, берем первую категорию по ID
		if _, found := byCode[category.Code]; !found {
			byCode[category.Code] = categories[i]
		}
	}

	// смещение внутри пачки: второй товар без артикула в той же категории
	// получает следующий номер уже в плане
	offsets := make(map[int]int)
	predict := func(category *database.Category) string {
		offsets[category.ID]++
		return sku.Encode(category.Code, sequences[category.ID]+offsets[category.ID])
	}

	plan := new(SkuResolutionPlan)
	var consistent, skippedNoCategory int

	for _, item := range assortment {
		logger.Debugf("Позиция МойСклад: Name: %s, ID: %s, Type: %s, Article: %q", item.Name, item.ID, item.MsType(), item.ArticleValue())

		folderID := item.FolderID()
		if folderID == "" {
			logger.Debug("Позиция без папки товаров. Пропускаем")
			skippedNoCategory++
			continue
		}

		category, found := byExternalID[folderID]
		if !found {
			logger.Debugf("Папка %s не найдена среди локальных категорий. Пропускаем", folderID)
			skippedNoCategory++
			continue
		}

		article := item.ArticleValue()
		if article == "" {
			plan.ToCreate = append(plan.ToCreate, SkuCreate{
				MoySkladID:      item.ID,
				MoySkladType:    item.MsType(),
				Name:            item.Name,
				CategoryID:      category.ID,
				CategoryCode:    category.Code,
				ExpectedArticle: predict(category),
			})
			continue
		}

		code, _, err := sku.Decode(article)
		if err != nil {
			// битый артикул не сравнить с ожидаемым - конфликт на ручной разбор
			logger.Debugf("Артикул %q не декодируется: %v", article, err)
			plan.Conflicts = append(plan.Conflicts, SkuConflict{
				MoySkladID:      item.ID,
				MoySkladType:    item.MsType(),
				Name:            item.Name,
				CurrentArticle:  article,
				CategoryID:      category.ID,
				CategoryCode:    category.Code,
				ExpectedArticle: predict(category),
			})
			continue
		}

		if code == category.Code {
			consistent++
			continue
		}

		// артикул указывает на другую категорию
		conflict := SkuConflict{
			MoySkladID:      item.ID,
			MoySkladType:    item.MsType(),
			Name:            item.Name,
			CurrentArticle:  article,
			CategoryID:      category.ID,
			CategoryCode:    category.Code,
			ExpectedArticle: predict(category),
		}
		if other, found := byCode[code]; found {
			conflict.ExpectedCategoryFromArticle = &ConflictCategory{
				CategoryID: other.ID,
				ExternalID: other.ExternalID.String,
				Name:       other.Name,
				Code:       other.Code,
			}
		}
		plan.Conflicts = append(plan.Conflicts, conflict)
	}

	logger.Info("План выправления артикулов:")
	logger.Infof("Всего позиций в МойСклад: %d", len(assortment))
	logger.Infof("Без артикула (создать): %d", len(plan.ToCreate))
	logger.Infof("Конфликтов: %d", len(plan.Conflicts))
	logger.Infof("Согласовано: %d", consistent)
	logger.Infof("Пропущено без категории: %d", skippedNoCategory)

	return plan, nil
}
