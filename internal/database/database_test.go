package database

import (
	"path/filepath"
	"sync"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlx.Connect("sqlite3", "file:"+path+"?_busy_timeout=5000")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	db.MustExec(DB_SCHEMA)

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

func TestNextSequenceMonotonic(t *testing.T) {
	Assert := assert.New(t)
	db := newTestDB(t)

	for want := 1; want <= 5; want++ {
		got, err := NextSequence(db, 1)
		Assert.NoError(err)
		Assert.Equal(want, got)
	}
}

func TestNextSequencePerCategory(t *testing.T) {
	Assert := assert.New(t)
	db := newTestDB(t)

	v1, err := NextSequence(db, 1)
	Assert.NoError(err)
	v2, err := NextSequence(db, 2)
	Assert.NoError(err)

	// счетчики категорий независимы
	Assert.Equal(1, v1)
	Assert.Equal(1, v2)
}

func TestNextSequenceConcurrent(t *testing.T) {
	Assert := assert.New(t)
	db := newTestDB(t)

	const workers = 4
	const perWorker = 5

	values := make(chan int, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				v, err := NextSequence(db, 7)
				assert.NoError(t, err)
				values <- v
			}
		}()
	}
	wg.Wait()
	close(values)

	seen := make(map[int]bool)
	for v := range values {
		Assert.False(seen[v], "sequence %d выдан дважды", v)
		seen[v] = true
	}
	Assert.Len(seen, workers*perWorker)
}

func TestPeekSequencesDoesNotReserve(t *testing.T) {
	Assert := assert.New(t)
	db := newTestDB(t)

	sequences, err := PeekSequences(db)
	Assert.NoError(err)
	Assert.Empty(sequences)

	_, err = NextSequence(db, 3)
	Assert.NoError(err)
	_, err = NextSequence(db, 3)
	Assert.NoError(err)

	sequences, err = PeekSequences(db)
	Assert.NoError(err)
	Assert.Equal(map[int]int{3: 2}, sequences)

	// чтение не двигает счетчик
	v, err := NextSequence(db, 3)
	Assert.NoError(err)
	Assert.Equal(3, v)
}

func TestCategoryCRUD(t *testing.T) {
	Assert := assert.New(t)
	db := newTestDB(t)

	tx, err := db.Beginx()
	require.NoError(t, err)

	id, err := CreateCategoryTx(tx, "ext-1", "Платья", "DR")
	Assert.NoError(err)
	Assert.NotZero(id)

	err = UpdateCategoryNameTx(tx, id, "Платья летние")
	Assert.NoError(err)

	require.NoError(t, tx.Commit())

	categories, err := GetCategories(db)
	Assert.NoError(err)
	require.Len(t, categories, 1)
	Assert.Equal("Платья летние", categories[0].Name)
	Assert.Equal("DR", categories[0].Code)
	Assert.True(categories[0].ExternalID.Valid)
	Assert.Equal("ext-1", categories[0].ExternalID.String)
	Assert.False(categories[0].ParentID.Valid)

	category, err := GetCategoryByCode(db, "DR")
	Assert.NoError(err)
	require.NotNil(t, category)
	Assert.Equal(id, category.ID)

	missing, err := GetCategoryByCode(db, "NOPE")
	Assert.NoError(err)
	Assert.Nil(missing)
}

func TestUpdateCategoryNameTxMissingRow(t *testing.T) {
	Assert := assert.New(t)
	db := newTestDB(t)

	tx, err := db.Beginx()
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	err = UpdateCategoryNameTx(tx, 999, "Нет такой")
	Assert.Error(err)
}

func TestSynonymRules(t *testing.T) {
	Assert := assert.New(t)
	db := newTestDB(t)

	Assert.NoError(AddSynonymRule(db, "Платья", "DR"))
	Assert.NoError(AddSynonymRule(db, "Обувь", "SH"))

	// MatchName уникален
	Assert.Error(AddSynonymRule(db, "Платья", "DR2"))

	rules, err := GetSynonymRules(db)
	Assert.NoError(err)
	Assert.Len(rules, 2)
}
