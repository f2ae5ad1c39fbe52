package moysklad

import (
	"ShopWithMoysklad/internal/moysklad/models"
	"ShopWithMoysklad/pkg/logging"
	"fmt"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"strconv"
	"sync"
	"time"
)

const pageLimit = 1000

type MSAPI interface {
	ProductFolderList() ([]*models.ProductFolder, error)
	AssortmentList() ([]*models.Assortment, error)
	ArticleUpdate(id string, msType string, article string) error
	ProductFolderLinkUpdate(id string, msType string, folderID string) error
}

type msapi struct {
	url    string
	client *resty.Client
	rps    int

	mutex       sync.Mutex
	requestTime time.Time
}

func NewAPI(url string, login string, password string, rps int) MSAPI {

	client := resty.New().
		SetBaseURL(url).
		SetBasicAuth(login, password).
		SetHeader("Accept", "application/json;charset=utf-8").
		SetHeader("Content-Type", "application/json")

	return &msapi{
		url:    url,
		client: client,
		rps:    rps,
	}
}

// CheckRPS притормаживает запросы под лимит МойСклад. Выполнение артикулов идет
// конкурентно, поэтому под мьютексом.
func (m *msapi) CheckRPS() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.rps <= 0 {
		m.requestTime = time.Now()
		return
	}

	TimeRPS := time.Second / time.Duration(m.rps)
	TimeDiff := time.Now().Sub(m.requestTime)

	if TimeDiff <= TimeRPS {
		timeSleep := m.requestTime.Add(TimeRPS).Sub(time.Now())
		time.Sleep(timeSleep)
	}
	m.requestTime = time.Now()
}

func (m *msapi) ProductFolderList() ([]*models.ProductFolder, error) {

	logger := logging.GetLogger()
	logger.Debug("ProductFolderList:>Start")
	defer logger.Debug("ProductFolderList:>End")

	var folders []*models.ProductFolder
	offset := 0

	for {
		m.CheckRPS()

		result := new(models.ProductFolderList)
		resp, err := m.client.R().
			SetQueryParam("limit", strconv.Itoa(pageLimit)).
			SetQueryParam("offset", strconv.Itoa(offset)).
			SetResult(result).
			SetError(new(models.ErrorMoySklad)).
			Get("entity/productfolder")
		if err != nil {
			return nil, errors.Wrap(err, "ошибка при запросе entity/productfolder")
		}
		if resp.IsError() {
			return nil, errors.Wrapf(resp.Error().(*models.ErrorMoySklad), "МойСклад вернул %s на entity/productfolder", resp.Status())
		}

		for i := range result.Rows {
			folders = append(folders, &result.Rows[i])
		}

		offset += len(result.Rows)
		if offset >= result.Meta.Size || len(result.Rows) == 0 {
			break
		}
	}

	logger.Debugf("Длина списка ProductFolder = %d", len(folders))
	return folders, nil
}

func (m *msapi) AssortmentList() ([]*models.Assortment, error) {

	logger := logging.GetLogger()
	logger.Debug("AssortmentList:>Start")
	defer logger.Debug("AssortmentList:>End")

	var assortment []*models.Assortment
	offset := 0

	for {
		m.CheckRPS()

		result := new(models.AssortmentList)
		resp, err := m.client.R().
			SetQueryParam("limit", strconv.Itoa(pageLimit)).
			SetQueryParam("offset", strconv.Itoa(offset)).
			SetQueryParam("filter", fmt.Sprintf("type=%s;type=%s", models.TypeProduct, models.TypeVariant)).
			SetResult(result).
			SetError(new(models.ErrorMoySklad)).
			Get("entity/assortment")
		if err != nil {
			return nil, errors.Wrap(err, "ошибка при запросе entity/assortment")
		}
		if resp.IsError() {
			return nil, errors.Wrapf(resp.Error().(*models.ErrorMoySklad), "МойСклад вернул %s на entity/assortment", resp.Status())
		}

		for i := range result.Rows {
			assortment = append(assortment, &result.Rows[i])
		}

		offset += len(result.Rows)
		if offset >= result.Meta.Size || len(result.Rows) == 0 {
			break
		}
	}

	logger.Debugf("Длина списка Assortment = %d", len(assortment))
	return assortment, nil
}

func entityEndpoint(msType string, id string) (string, error) {
	switch msType {
	case models.TypeProduct:
		return fmt.Sprintf("entity/product/%s", id), nil
	case models.TypeVariant:
		return fmt.Sprintf("entity/variant/%s", id), nil
	default:
		return "", errors.New(fmt.Sprintf("неизвестный тип строки ассортимента: %s", msType))
	}
}

// ArticleUpdate записывает артикул в МойСклад. У товара поле article,
// у модификации поле code.
func (m *msapi) ArticleUpdate(id string, msType string, article string) error {

	logger := logging.GetLogger()
	logger.Debug("ArticleUpdate:>Start")
	defer logger.Debug("ArticleUpdate:>End")

	endpoint, err := entityEndpoint(msType, id)
	if err != nil {
		return err
	}

	body := map[string]string{"article": article}
	if msType == models.TypeVariant {
		body = map[string]string{"code": article}
	}

	m.CheckRPS()

	resp, err := m.client.R().
		SetBody(body).
		SetError(new(models.ErrorMoySklad)).
		Put(endpoint)
	if err != nil {
		return errors.Wrapf(err, "ошибка при запросе %s", endpoint)
	}
	if resp.IsError() {
		return errors.Wrapf(resp.Error().(*models.ErrorMoySklad), "МойСклад вернул %s на %s", resp.Status(), endpoint)
	}

	logger.Debugf("Артикул обновлен: %s %s -> %s", msType, id, article)
	return nil
}

// ProductFolderLinkUpdate перекладывает товар/модификацию в другую папку.
func (m *msapi) ProductFolderLinkUpdate(id string, msType string, folderID string) error {

	logger := logging.GetLogger()
	logger.Debug("ProductFolderLinkUpdate:>Start")
	defer logger.Debug("ProductFolderLinkUpdate:>End")

	endpoint, err := entityEndpoint(msType, id)
	if err != nil {
		return err
	}

	body := map[string]*models.MetaWrap{
		"productFolder": {
			Meta: models.Meta{
				Href:      fmt.Sprintf("%s/entity/productfolder/%s", m.url, folderID),
				Type:      "productfolder",
				MediaType: "application/json",
			},
		},
	}

	m.CheckRPS()

	resp, err := m.client.R().
		SetBody(body).
		SetError(new(models.ErrorMoySklad)).
		Put(endpoint)
	if err != nil {
		return errors.Wrapf(err, "ошибка при запросе %s", endpoint)
	}
	if resp.IsError() {
		return errors.Wrapf(resp.Error().(*models.ErrorMoySklad), "МойСклад вернул %s на %s", resp.Status(), endpoint)
	}

	logger.Debugf("Папка обновлена: %s %s -> %s", msType, id, folderID)
	return nil
}
