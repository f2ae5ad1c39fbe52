package sync

import (
	"ShopWithMoysklad/internal/database"
	"ShopWithMoysklad/internal/moysklad"
	"ShopWithMoysklad/pkg/logging"
	"fmt"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"sort"
	"strings"
)

// BuildCategorySyncPlan сверяет папки товаров МойСклад с локальной таблицей
// категорий и раскладывает их по корзинам плана. Ничего не пишет -
// только dry run. Исполняет план ExecuteCategorySyncPlan.
func BuildCategorySyncPlan(db *sqlx.DB, ms moysklad.MSAPI) (*SyncPlan, error) {

	logger := logging.GetLogger()
	logger.Info("Start BuildCategorySyncPlan")
	defer logger.Info("End BuildCategorySyncPlan")

	// без списка папок план не построить - прерываем весь расчет
	folders, err := ms.ProductFolderList()
	if err != nil {
		return nil, errors.Wrap(err, "не удалось получить список папок из МойСклад")
	}

	categories, err := database.GetCategories(db)
	if err != nil {
		return nil, errors.Wrap(err, "не удалось получить локальные категории")
	}

	rules, err := database.GetSynonymRules(db)
	if err != nil {
		return nil, errors.Wrap(err, "не удалось получить правила синонимов")
	}

	ruleByName := make(map[string]string)
	for _, rule := range rules {
		ruleByName[rule.MatchName] = rule.AssignedCode
	}

	localByExternalID := make(map[string]*database.Category)
	for i, category := range categories {
		if category.ExternalID.Valid {
			localByExternalID[category.ExternalID.String] = categories[i]
		}
	}

	plan := new(SyncPlan)

	for _, folder := range folders {
		logger.Debugf("Папка МойСклад: Name: %s, ID: %s, ParentID: %s", folder.Name, folder.ID, folder.ParentID())

		code, ruleFound := ruleByName[folder.Name]
		if !ruleFound {
			// правила нет - подставляем детерминированный временный код,
			// план остается исполняемым, но строка дублируется в Warnings
			code = TempCode(folder.ID)
			plan.Warnings = append(plan.Warnings, PlanWarning{
				Kind:       WarningNoRule,
				ExternalID: folder.ID,
				Name:       folder.Name,
				Text:       fmt.Sprintf("правило синонима для %q не найдено - будет назначен временный код %s", folder.Name, code),
			})
		}

		if parentID := folder.ParentID(); parentID != "" {
			plan.ParentLinks = append(plan.ParentLinks, ParentLink{
				ExternalID:       folder.ID,
				ParentExternalID: parentID,
			})
		}

		category, found := localByExternalID[folder.ID]
		if !found {
			logger.Debug("Папка не найдена локально. Требуется создание")
			plan.ToCreate = append(plan.ToCreate, PlanCreate{
				ExternalID:   folder.ID,
				Name:         folder.Name,
				AssignedCode: code,
				TempCode:     !ruleFound,
			})
			continue
		}

		delete(localByExternalID, folder.ID)

		if category.Name != folder.Name {
			logger.Debugf("Имя разошлось: локально %q, в МойСклад %q", category.Name, folder.Name)
			plan.ToUpdate = append(plan.ToUpdate, PlanUpdate{
				CategoryID: category.ID,
				ExternalID: folder.ID,
				OldName:    category.Name,
				NewName:    folder.Name,
			})
		} else {
			plan.NoAction = append(plan.NoAction, PlanNoAction{
				CategoryID: category.ID,
				ExternalID: folder.ID,
				Name:       category.Name,
			})
		}
	}

	// остаток - локальные категории без пары в МойСклад; только предупреждаем,
	// автоматическое удаление не выполняется никогда
	var orphans []PlanWarning
	for externalID, category := range localByExternalID {
		orphans = append(orphans, PlanWarning{
			Kind:       WarningOrphan,
			ExternalID: externalID,
			CategoryID: category.ID,
			Name:       category.Name,
			Text:       fmt.Sprintf("локальная категория %q (ID=%d) не найдена в МойСклад", category.Name, category.ID),
		})
	}
	sort.Slice(orphans, func(i, j int) bool { return orphans[i].ExternalID < orphans[j].ExternalID })
	plan.Warnings = append(plan.Warnings, orphans...)

	logger.Info("План синхронизации категорий:")
	logger.Infof("Всего папок в МойСклад: %d", len(folders))
	logger.Infof("Создать: %d", len(plan.ToCreate))
	logger.Infof("Обновить: %d", len(plan.ToUpdate))
	logger.Infof("Без изменений: %d", len(plan.NoAction))
	logger.Infof("Предупреждений: %d", len(plan.Warnings))

	return plan, nil
}

// TempCode строит временный код категории из ID папки МойСклад.
// Детерминирован: один и тот же ID всегда дает один и тот же код.
func TempCode(externalID string) string {
	cleaned := strings.ToUpper(strings.ReplaceAll(externalID, "-", ""))
	if len(cleaned) > 6 {
		cleaned = cleaned[:6]
	}
	return "TMP" + cleaned
}
