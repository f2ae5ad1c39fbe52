package sync

import (
	"ShopWithMoysklad/internal/database"
	"ShopWithMoysklad/internal/moysklad/models"
	"path/filepath"
	"sync"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlx.Connect("sqlite3", "file:"+path+"?_busy_timeout=5000")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	db.MustExec(database.DB_SCHEMA)

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

func seedCategory(t *testing.T, db *sqlx.DB, externalID string, name string, code string) int {
	t.Helper()

	res, err := db.Exec(`INSERT INTO Category (ExternalID, Name, Code, ParentID) VALUES (?, ?, ?, NULL)`,
		externalID, name, code)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return int(id)
}

func seedRule(t *testing.T, db *sqlx.DB, matchName string, assignedCode string) {
	t.Helper()
	require.NoError(t, database.AddSynonymRule(db, matchName, assignedCode))
}

const hrefBase = "https://api.moysklad.ru/api/remap/1.2/entity/productfolder/"

func msFolder(id string, name string, parentID string) *models.ProductFolder {
	folder := &models.ProductFolder{ID: id, Name: name}
	if parentID != "" {
		folder.ProductFolder = &models.MetaWrap{Meta: models.Meta{Href: hrefBase + parentID}}
	}
	return folder
}

func msItem(id string, name string, msType string, article string, folderID string) *models.Assortment {
	item := &models.Assortment{
		ID:   id,
		Name: name,
		Meta: models.Meta{Type: msType},
	}
	if msType == models.TypeVariant {
		item.Code = article
	} else {
		item.Article = article
	}
	if folderID != "" {
		item.ProductFolder = &models.MetaWrap{Meta: models.Meta{Href: hrefBase + folderID}}
	}
	return item
}

// fakeMSAPI - детерминированная замена клиента МойСклад для тестов.
type fakeMSAPI struct {
	folders    []*models.ProductFolder
	assortment []*models.Assortment
	foldersErr error
	assortErr  error

	mutex          sync.Mutex
	articleUpdates map[string]string // id -> артикул
	folderUpdates  map[string]string // id -> папка
	failArticleFor map[string]bool
}

func (f *fakeMSAPI) ProductFolderList() ([]*models.ProductFolder, error) {
	if f.foldersErr != nil {
		return nil, f.foldersErr
	}
	return f.folders, nil
}

func (f *fakeMSAPI) AssortmentList() ([]*models.Assortment, error) {
	if f.assortErr != nil {
		return nil, f.assortErr
	}
	return f.assortment, nil
}

func (f *fakeMSAPI) ArticleUpdate(id string, msType string, article string) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.failArticleFor[id] {
		return errors.New("запись артикула не удалась")
	}
	if f.articleUpdates == nil {
		f.articleUpdates = make(map[string]string)
	}
	f.articleUpdates[id] = article
	return nil
}

func (f *fakeMSAPI) ProductFolderLinkUpdate(id string, msType string, folderID string) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.folderUpdates == nil {
		f.folderUpdates = make(map[string]string)
	}
	f.folderUpdates[id] = folderID
	return nil
}
