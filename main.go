package main

import (
	"ShopWithMoysklad/internal/config"
	"ShopWithMoysklad/internal/database"
	"ShopWithMoysklad/internal/handlers/httphandler"
	"ShopWithMoysklad/internal/moysklad"
	syncsvc "ShopWithMoysklad/internal/sync"
	"ShopWithMoysklad/internal/version"
	"ShopWithMoysklad/pkg/logging"
	"fmt"
	"github.com/jmoiron/sqlx"
	"github.com/julienschmidt/httprouter"
	_ "github.com/mattn/go-sqlite3"
	"log"
	"net/http"
)

func main() {
	logger := logging.GetLogger()
	logger.Info("Start Main")
	v := version.GetVersion()
	logger.Infof("Version %s", v.String())
	defer logger.Info("End Main")

	cfg := config.GetConfig()
	logging.SetDebug(cfg.LOG.Debug == 1)

	dbName := cfg.DBSQLITE.DB
	if dbName == "" {
		dbName = database.DB_NAME
	}

	DB, err := sqlx.Connect("sqlite3", dbName)
	if err != nil {
		logger.Fatalf("failed sqlx.Connect; %v", err)
	}

	MSAPI := moysklad.NewAPI(cfg.MOYSKLAD.URL, cfg.MOYSKLAD.Login, cfg.MOYSKLAD.Password, cfg.MOYSKLAD.RPS)

	service := syncsvc.NewService(DB, MSAPI)

	go service.WatchCatalogWithRecovered()

	handler := httphandler.NewHandler(service)

	router := httprouter.New()

	router.GET("/", handler.HandlerVersion)
	router.GET("/sync/categories/plan", handler.HandlerCategoryPlan)
	router.POST("/sync/categories/execute", handler.HandlerCategoryExecute)
	router.GET("/sync/articles/plan", handler.HandlerSkuPlan)
	router.POST("/sync/articles/execute", handler.HandlerSkuExecute)

	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%d", cfg.SERVICE.PORT), router))
}

func init() {
	logger := logging.GetLogger()

	logger.Println("Start main init...")
	defer logger.Println("End main init.")
	cfg := config.GetConfig()

	dbName := cfg.DBSQLITE.DB
	if dbName == "" {
		dbName = database.DB_NAME
	}

	if database.Exists(dbName) != true {
		logger.Info(dbName, " not exist")
		err := database.CreateDB(dbName)
		if err != nil {
			logger.Fatalf("%s, %v", dbName, err)
		}
	} else {
		logger.Info(dbName, " exist")
	}
}
