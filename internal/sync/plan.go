package sync

import (
	"fmt"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pkg/errors"
)

// ResolutionAction - решение оператора по конфликту артикула.
// Движок не угадывает причину расхождения: артикул устарел после переноса
// в другую категорию (FIX_SKU) или наоборот, артикул верный, а привязка
// к категории съехала (REVERT_CATEGORY). Выбирает всегда человек.
type ResolutionAction string

const (
	ResolutionFixSku         ResolutionAction = "FIX_SKU"
	ResolutionRevertCategory ResolutionAction = "REVERT_CATEGORY"
)

// UserResolutions - решения оператора: moySkladId -> действие.
// Конфликт без решения на execute пропускается.
type UserResolutions map[string]ResolutionAction

// Validate отклоняет недопустимые действия до начала любых записей.
func (r UserResolutions) Validate() error {
	for id, action := range r {
		err := validation.Validate(string(action),
			validation.Required,
			validation.In(string(ResolutionFixSku), string(ResolutionRevertCategory)))
		if err != nil {
			return errors.Wrapf(err, "недопустимое решение для %s", id)
		}
	}
	return nil
}

const (
	WarningNoRule = "no_rule"
	WarningOrphan = "orphan"
)

type PlanCreate struct {
	ExternalID   string `json:"externalId"`
	Name         string `json:"name"`
	AssignedCode string `json:"assignedCode"`
	TempCode     bool   `json:"tempCode,omitempty"`
}

type PlanUpdate struct {
	CategoryID int    `json:"categoryId"`
	ExternalID string `json:"externalId"`
	OldName    string `json:"oldName"`
	NewName    string `json:"newName"`
}

type PlanNoAction struct {
	CategoryID int    `json:"categoryId"`
	ExternalID string `json:"externalId"`
	Name       string `json:"name"`
}

type PlanWarning struct {
	Kind       string `json:"kind"`
	ExternalID string `json:"externalId,omitempty"`
	CategoryID int    `json:"categoryId,omitempty"`
	Name       string `json:"name"`
	Text       string `json:"text"`
}

// ParentLink - привязка родителя по externalId. Выполняется только
// исполнителем вторым проходом, когда все категории уже созданы
// и имеют стабильные локальные ID.
type ParentLink struct {
	ExternalID       string `json:"externalId"`
	ParentExternalID string `json:"parentExternalId"`
}

// SyncPlan - план синхронизации категорий. Никуда не сохраняется,
// пересчитывается на каждый dry run и актуален до первой записи
// в любую из сторон.
type SyncPlan struct {
	ToCreate    []PlanCreate   `json:"toCreate"`
	ToUpdate    []PlanUpdate   `json:"toUpdate"`
	NoAction    []PlanNoAction `json:"noAction"`
	Warnings    []PlanWarning  `json:"warnings"`
	ParentLinks []ParentLink   `json:"parentLinks"`
}

// Validate проверяет план перед execute.
func (p *SyncPlan) Validate() error {
	for _, c := range p.ToCreate {
		err := validation.Errors{
			"externalId":   validation.Validate(c.ExternalID, validation.Required),
			"name":         validation.Validate(c.Name, validation.Required),
			"assignedCode": validation.Validate(c.AssignedCode, validation.Required),
		}.Filter()
		if err != nil {
			return errors.Wrapf(err, "некорректная строка toCreate %q", c.Name)
		}
	}
	for _, u := range p.ToUpdate {
		if u.CategoryID == 0 {
			return errors.New(fmt.Sprintf("некорректная строка toUpdate %q: нет categoryId", u.NewName))
		}
	}
	return nil
}

type ConflictCategory struct {
	CategoryID int    `json:"categoryId"`
	ExternalID string `json:"externalId"`
	Name       string `json:"name"`
	Code       string `json:"code"`
}

type SkuCreate struct {
	MoySkladID      string `json:"moySkladId"`
	MoySkladType    string `json:"moySkladType"`
	Name            string `json:"name"`
	CategoryID      int    `json:"categoryId"`
	CategoryCode    string `json:"categoryCode"`
	ExpectedArticle string `json:"expectedArticle"`
}

type SkuConflict struct {
	MoySkladID      string `json:"moySkladId"`
	MoySkladType    string `json:"moySkladType"`
	Name            string `json:"name"`
	CurrentArticle  string `json:"currentArticle"`
	CategoryID      int    `json:"categoryId"`
	CategoryCode    string `json:"categoryCode"`
	ExpectedArticle string `json:"expectedArticle"`
	// Категория, на которую указывает существующий артикул. nil, если артикул
	// не декодируется или код не найден среди локальных категорий.
	ExpectedCategoryFromArticle *ConflictCategory `json:"expectedCategoryFromArticle,omitempty"`
}

// SkuResolutionPlan - план выправления артикулов: чего не хватает
// и что разошлось с текущей категорией.
type SkuResolutionPlan struct {
	ToCreate  []SkuCreate   `json:"toCreate"`
	Conflicts []SkuConflict `json:"conflicts"`
}

// Validate проверяет план перед execute.
func (p *SkuResolutionPlan) Validate() error {
	check := func(id string, msType string, categoryID int) error {
		return validation.Errors{
			"moySkladId": validation.Validate(id, validation.Required),
			"moySkladType": validation.Validate(msType, validation.Required,
				validation.In("product", "variant")),
			"categoryId": validation.Validate(categoryID, validation.Required),
		}.Filter()
	}
	for _, c := range p.ToCreate {
		if err := check(c.MoySkladID, c.MoySkladType, c.CategoryID); err != nil {
			return errors.Wrapf(err, "некорректная строка toCreate %q", c.Name)
		}
	}
	for _, c := range p.Conflicts {
		if err := check(c.MoySkladID, c.MoySkladType, c.CategoryID); err != nil {
			return errors.Wrapf(err, "некорректная строка conflicts %q", c.Name)
		}
	}
	return nil
}

type CategorySyncResult struct {
	Created       int `json:"created"`
	Updated       int `json:"updated"`
	ParentsLinked int `json:"parentsLinked"`
}

type SkuSyncResult struct {
	ArticlesFixed      int      `json:"articlesFixed"`
	CategoriesReverted int      `json:"categoriesReverted"`
	ArticlesCreated    int      `json:"articlesCreated"`
	ConflictsSkipped   int      `json:"conflictsSkipped"`
	Errors             []string `json:"errors"`
}
