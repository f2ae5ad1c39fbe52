package models

import (
	"fmt"
	"strings"
)

const (
	TypeProduct = "product"
	TypeVariant = "variant"
)

type Meta struct {
	Href      string `json:"href,omitempty"`
	Type      string `json:"type,omitempty"`
	MediaType string `json:"mediaType,omitempty"`
}

type MetaWrap struct {
	Meta Meta `json:"meta"`
}

type ListMeta struct {
	Size   int `json:"size"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ProductFolder - папка товаров МойСклад (категория на стороне EIMS).
type ProductFolder struct {
	Meta          Meta      `json:"meta"`
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Updated       string    `json:"updated,omitempty"`
	ProductFolder *MetaWrap `json:"productFolder,omitempty"` // родительская папка
}

// ParentID возвращает ID родительской папки или пустую строку для корневой.
func (f *ProductFolder) ParentID() string {
	if f.ProductFolder == nil {
		return ""
	}
	return IDFromHref(f.ProductFolder.Meta.Href)
}

// Assortment - строка ассортимента МойСклад: товар или модификация.
// У товара артикул лежит в article, у модификации в code.
type Assortment struct {
	Meta          Meta      `json:"meta"`
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Article       string    `json:"article,omitempty"`
	Code          string    `json:"code,omitempty"`
	ProductFolder *MetaWrap `json:"productFolder,omitempty"`
}

func (a *Assortment) MsType() string {
	return a.Meta.Type
}

// ArticleValue возвращает артикул с учетом типа строки ассортимента.
func (a *Assortment) ArticleValue() string {
	if a.Meta.Type == TypeVariant {
		return a.Code
	}
	return a.Article
}

// FolderID возвращает ID папки товаров или пустую строку.
func (a *Assortment) FolderID() string {
	if a.ProductFolder == nil {
		return ""
	}
	return IDFromHref(a.ProductFolder.Meta.Href)
}

type ProductFolderList struct {
	Meta ListMeta        `json:"meta"`
	Rows []ProductFolder `json:"rows"`
}

type AssortmentList struct {
	Meta ListMeta     `json:"meta"`
	Rows []Assortment `json:"rows"`
}

// ErrorMoySklad - конверт ошибки API МойСклад.
type ErrorMoySklad struct {
	Errors []struct {
		Error string `json:"error"`
		Code  int    `json:"code"`
	} `json:"errors"`
}

func (e *ErrorMoySklad) Error() string {
	if len(e.Errors) == 0 {
		return "неизвестная ошибка МойСклад"
	}
	var texts []string
	for _, item := range e.Errors {
		texts = append(texts, fmt.Sprintf("code=%d: %s", item.Code, item.Error))
	}
	return strings.Join(texts, "; ")
}

// IDFromHref выделяет ID сущности из meta.href.
func IDFromHref(href string) string {
	if href == "" {
		return ""
	}
	idx := strings.LastIndex(href, "/")
	if idx < 0 || idx == len(href)-1 {
		return ""
	}
	return href[idx+1:]
}
