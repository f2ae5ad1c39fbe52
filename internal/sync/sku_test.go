package sync

import (
	"ShopWithMoysklad/internal/database"
	"ShopWithMoysklad/internal/moysklad/models"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSkuResolutionPlanMissingArticles(t *testing.T) {
	Assert := assert.New(t)
	db := newTestDB(t)
	catID := seedCategory(t, db, "f1", "Платья", "DR")

	ms := &fakeMSAPI{assortment: []*models.Assortment{
		msItem("p1", "Платье синее", models.TypeProduct, "", "f1"),
		msItem("p2", "Платье красное", models.TypeProduct, "", "f1"),
	}}

	plan, err := BuildSkuResolutionPlan(db, ms)
	Assert.NoError(err)
	require.Len(t, plan.ToCreate, 2)
	Assert.Empty(plan.Conflicts)

	// вторая позиция той же категории получает следующий номер уже в плане
	Assert.Equal("DR-1", plan.ToCreate[0].ExpectedArticle)
	Assert.Equal("DR-2", plan.ToCreate[1].ExpectedArticle)
	Assert.Equal(catID, plan.ToCreate[0].CategoryID)
	Assert.Equal("DR", plan.ToCreate[0].CategoryCode)
	Assert.Equal(models.TypeProduct, plan.ToCreate[0].MoySkladType)
}

func TestBuildSkuResolutionPlanRespectsSequence(t *testing.T) {
	Assert := assert.New(t)
	db := newTestDB(t)
	catID := seedCategory(t, db, "f1", "Платья", "DR")

	// категория уже выдавала номера
	for i := 0; i < 5; i++ {
		_, err := database.NextSequence(db, catID)
		require.NoError(t, err)
	}

	ms := &fakeMSAPI{assortment: []*models.Assortment{
		msItem("p1", "Платье", models.TypeProduct, "", "f1"),
	}}

	plan, err := BuildSkuResolutionPlan(db, ms)
	Assert.NoError(err)
	require.Len(t, plan.ToCreate, 1)
	Assert.Equal("DR-6", plan.ToCreate[0].ExpectedArticle)

	// предсказание не резервирует номер
	sequences, err := database.PeekSequences(db)
	Assert.NoError(err)
	Assert.Equal(5, sequences[catID])
}

func TestBuildSkuResolutionPlanConflict(t *testing.T) {
	Assert := assert.New(t)
	db := newTestDB(t)
	xyzID := seedCategory(t, db, "f1", "Игрушки", "XYZ")
	abcID := seedCategory(t, db, "f2", "Аксессуары", "ABC")

	// артикул от ABC, а позиция лежит в XYZ
	ms := &fakeMSAPI{assortment: []*models.Assortment{
		msItem("p1", "Брелок", models.TypeProduct, "ABC-3", "f1"),
	}}

	plan, err := BuildSkuResolutionPlan(db, ms)
	Assert.NoError(err)
	Assert.Empty(plan.ToCreate)
	require.Len(t, plan.Conflicts, 1)

	conflict := plan.Conflicts[0]
	Assert.Equal("p1", conflict.MoySkladID)
	Assert.Equal("ABC-3", conflict.CurrentArticle)
	Assert.Equal(xyzID, conflict.CategoryID)
	Assert.Equal("XYZ", conflict.CategoryCode)
	Assert.Equal("XYZ-1", conflict.ExpectedArticle)
	require.NotNil(t, conflict.ExpectedCategoryFromArticle)
	Assert.Equal(abcID, conflict.ExpectedCategoryFromArticle.CategoryID)
	Assert.Equal("f2", conflict.ExpectedCategoryFromArticle.ExternalID)
	Assert.Equal("ABC", conflict.ExpectedCategoryFromArticle.Code)
}

func TestBuildSkuResolutionPlanMalformedArticle(t *testing.T) {
	Assert := assert.New(t)
	db := newTestDB(t)
	seedCategory(t, db, "f1", "Платья", "DR")

	ms := &fakeMSAPI{assortment: []*models.Assortment{
		msItem("p1", "Платье старое", models.TypeProduct, "платье синее 7", "f1"),
	}}

	// битый артикул не валит расчет, а уходит в конфликты
	plan, err := BuildSkuResolutionPlan(db, ms)
	Assert.NoError(err)
	require.Len(t, plan.Conflicts, 1)
	Assert.Equal("платье синее 7", plan.Conflicts[0].CurrentArticle)
	Assert.Equal("DR-1", plan.Conflicts[0].ExpectedArticle)
	Assert.Nil(plan.Conflicts[0].ExpectedCategoryFromArticle)
}

func TestBuildSkuResolutionPlanConsistentAndSkipped(t *testing.T) {
	Assert := assert.New(t)
	db := newTestDB(t)
	seedCategory(t, db, "f1", "Игрушки", "XYZ")

	ms := &fakeMSAPI{assortment: []*models.Assortment{
		msItem("p1", "Согласованный", models.TypeProduct, "XYZ-1", "f1"),
		msItem("p2", "Без папки", models.TypeProduct, "", ""),
		msItem("p3", "Чужая папка", models.TypeProduct, "", "unknown"),
	}}

	plan, err := BuildSkuResolutionPlan(db, ms)
	Assert.NoError(err)
	Assert.Empty(plan.ToCreate)
	Assert.Empty(plan.Conflicts)
}

func TestBuildSkuResolutionPlanVariantUsesCode(t *testing.T) {
	Assert := assert.New(t)
	db := newTestDB(t)
	seedCategory(t, db, "f1", "Платья", "DR")

	variant := msItem("v1", "Платье, размер M", models.TypeVariant, "", "f1")
	ms := &fakeMSAPI{assortment: []*models.Assortment{variant}}

	plan, err := BuildSkuResolutionPlan(db, ms)
	Assert.NoError(err)
	require.Len(t, plan.ToCreate, 1)
	Assert.Equal(models.TypeVariant, plan.ToCreate[0].MoySkladType)
	Assert.Equal("DR-1", plan.ToCreate[0].ExpectedArticle)
}

func TestBuildSkuResolutionPlanFetchError(t *testing.T) {
	Assert := assert.New(t)
	db := newTestDB(t)

	ms := &fakeMSAPI{assortErr: errors.New("МойСклад недоступен")}

	plan, err := BuildSkuResolutionPlan(db, ms)
	Assert.Error(err)
	Assert.Nil(plan)
}
