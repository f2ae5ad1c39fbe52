package sync

import (
	"ShopWithMoysklad/internal/config"
	"ShopWithMoysklad/internal/moysklad"
	"ShopWithMoysklad/internal/telegram"
	"ShopWithMoysklad/pkg/logging"
	"fmt"
	"github.com/jmoiron/sqlx"
	"time"
)

// Service связывает локальную базу и клиент МойСклад и отдает четыре операции
// движка наружному слою: dry run и execute для категорий и для артикулов.
// Никто не исполняет то, что сам спланировал: execute запускается только
// по явному запросу оператора с уже просмотренным планом.
type Service struct {
	db *sqlx.DB
	ms moysklad.MSAPI
}

func NewService(db *sqlx.DB, ms moysklad.MSAPI) *Service {
	return &Service{db: db, ms: ms}
}

func (s *Service) ComputeCategorySyncPlan() (*SyncPlan, error) {
	return BuildCategorySyncPlan(s.db, s.ms)
}

func (s *Service) ExecuteCategorySyncPlan(plan *SyncPlan) (*CategorySyncResult, error) {
	return ExecuteCategorySyncPlan(s.db, plan)
}

func (s *Service) ComputeSkuResolutionPlan() (*SkuResolutionPlan, error) {
	return BuildSkuResolutionPlan(s.db, s.ms)
}

func (s *Service) ExecuteSkuResolutionPlan(plan *SkuResolutionPlan, resolutions UserResolutions) (*SkuSyncResult, error) {
	cfg := config.GetConfig()
	return ExecuteSkuResolutionPlan(s.db, s.ms, plan, resolutions, cfg.MOYSKLAD.WriteWorkers)
}

// WatchCatalogWithRecovered запускает наблюдатель каталога и перезапускает
// его после паники, не более трех раз.
func (s *Service) WatchCatalogWithRecovered() {
	logger := logging.GetLogger()
	logger.Println("Start Service WatchCatalogWithRecovered")
	defer logger.Println("End Service WatchCatalogWithRecovered")

	index := 0 // количество перезапусков при панике
	for {
		s.watchCatalog()
		index++

		if index == 3 {
			break
		}
	}
	telegram.SendMessageToTelegramWithLogError("перезапуск наблюдателя каталога прекращен")
}

// watchCatalog периодически проверяет, не разошелся ли каталог с МойСклад,
// и сообщает оператору. Только уведомляет - сам ничего не исполняет.
func (s *Service) watchCatalog() {

	logger := logging.GetLogger()
	logger.Println("Start Service watchCatalog")
	defer logger.Println("End Service watchCatalog")

	defer func() {
		if r := recover(); r != nil {
			telegram.SendMessageToTelegramWithLogError(fmt.Sprintf("произошла критическая ошибка, наблюдатель будет перезапущен, ошибка: %v", r))
		}
	}()

	cfg := config.GetConfig()

	for {
		timeStart := time.Now()

		if cfg.CATALOGSYNC.SyncCategories == 1 {
			s.checkCategories()
		}

		if cfg.CATALOGSYNC.SyncArticles == 1 {
			s.checkArticles()
		}

		logger.Infof("Полное время проверки: %s", time.Now().Sub(timeStart))
		logger.Infof("time sleep %d minuts", cfg.CATALOGSYNC.Timeout)

		time.Sleep(time.Minute * time.Duration(cfg.CATALOGSYNC.Timeout))
	}
}

func (s *Service) checkCategories() {

	logger := logging.GetLogger()

	folders, err := s.ms.ProductFolderList()
	if err != nil {
		telegram.SendMessageToTelegramWithLogError(fmt.Sprintf("Не удалось выполнить проверку каталога. Ошибка при получении папок: %v", err))
		return
	}

	revision := FoldersRevision(folders)
	same, err := VerifyRevision(s.db, "ProductFolder", revision)
	if err != nil {
		telegram.SendMessageToTelegramWithLogError(fmt.Sprintf("Не удалось выполнить проверку каталога. Ошибка при проверке VerifyRevision: %v", err))
		return
	}
	if same {
		logger.Info("Ревизия папок совпадает между МойСклад и DB")
		logger.Info("Проверка не требуется")
		return
	}

	logger.Println("Требуется сверка категорий")
	plan, err := s.ComputeCategorySyncPlan()
	if err != nil {
		telegram.SendMessageToTelegramWithLogError(fmt.Sprintf("Ошибка при построении плана категорий: %v", err))
		return
	}

	if len(plan.ToCreate)+len(plan.ToUpdate)+len(plan.Warnings) > 0 {
		text := fmt.Sprintf("Каталог разошелся с МойСклад: создать %d, обновить %d, предупреждений %d. Просмотрите план и запустите выполнение.",
			len(plan.ToCreate), len(plan.ToUpdate), len(plan.Warnings))
		s.report(text)
	} else {
		logger.Info("Категории согласованы")
	}

	err = UpdateRevisionInDB(s.db, "ProductFolder", revision)
	if err != nil {
		logger.Errorf("failed UpdateRevisionInDB(ProductFolder); %v", err)
	}
}

func (s *Service) checkArticles() {

	logger := logging.GetLogger()

	plan, err := s.ComputeSkuResolutionPlan()
	if err != nil {
		telegram.SendMessageToTelegramWithLogError(fmt.Sprintf("Ошибка при построении плана артикулов: %v", err))
		return
	}

	// уведомляем только когда картина изменилась с прошлого цикла
	revision := fmt.Sprintf("%d:%d", len(plan.ToCreate), len(plan.Conflicts))
	same, err := VerifyRevision(s.db, "Assortment", revision)
	if err != nil {
		telegram.SendMessageToTelegramWithLogError(fmt.Sprintf("Не удалось выполнить проверку артикулов. Ошибка при проверке VerifyRevision: %v", err))
		return
	}
	if same {
		logger.Info("Картина артикулов не изменилась с прошлого цикла")
		return
	}

	if len(plan.ToCreate)+len(plan.Conflicts) > 0 {
		text := fmt.Sprintf("Артикулы разошлись с МойСклад: без артикула %d, конфликтов %d. Просмотрите план, укажите решения и запустите выполнение.",
			len(plan.ToCreate), len(plan.Conflicts))
		s.report(text)
	} else {
		logger.Info("Артикулы согласованы")
	}

	err = UpdateRevisionInDB(s.db, "Assortment", revision)
	if err != nil {
		logger.Errorf("failed UpdateRevisionInDB(Assortment); %v", err)
	}
}

func (s *Service) report(text string) {
	logger := logging.GetLogger()
	cfg := config.GetConfig()

	if cfg.CATALOGSYNC.TelegramReport == 1 {
		telegram.SendMessageToTelegramWithLogError(text)
	} else {
		logger.Info(text)
	}
}
