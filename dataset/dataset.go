// Package dataset 是推荐引擎的预处理协作者：读取商品评价 CSV，选列、改名、填充缺失值、
// 抽取数字 ID，并用 text.Normalizer 生成 Tags，产出商品目录与评分观测。
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"

	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/pkg/log"
	"github.com/rushteam/hybridrec/text"
)

// 原始 CSV 列名到目录字段的映射。
const (
	ColumnID          = "Uniq Id"
	ColumnProdID      = "Product Id"
	ColumnRating      = "Product Rating"
	ColumnReviewCount = "Product Reviews Count"
	ColumnCategory    = "Product Category"
	ColumnBrand       = "Product Brand"
	ColumnName        = "Product Name"
	ColumnImageURL    = "Product Image Url"
	ColumnDescription = "Product Description"
	ColumnTags        = "Product Tags"
)

var requiredColumns = []string{ColumnID, ColumnProdID, ColumnName}

var digitsPattern = regexp.MustCompile(`\d+`)

// Dataset 是预处理后的数据：Items 与 UserIDs 按行一一对应。
type Dataset struct {
	Items   []core.Item
	UserIDs []int64

	// HasUser[i] 为 false 表示第 i 行的 Uniq Id 不含数字（或 ID 溢出），该行不产生评分观测
	HasUser []bool
}

// Options 控制预处理行为。
type Options struct {
	// Normalizer 为空时使用 text.Default
	Normalizer text.Normalizer

	// KeepRawTags 为 true 时不重建 Tags，保留 CSV 中的 Product Tags 列
	KeepRawTags bool
}

// LoadCSV 读取并预处理 path 指向的 CSV 文件。
func LoadCSV(path string, opts Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Read(f, opts)
}

// Read 从 r 读取带表头的 CSV 并预处理。
//   - Rating / ReviewCount 缺失或无法解析时为 0，文本列缺失时为空串
//   - ID / ProdID 取第一段连续数字；ProdID 没有数字时为 0
//   - 任一 ID 的数字串超出 int64 时，该行仍进入目录，但不产生评分观测
//   - Category、Brand、Description 各自清洗，Tags = 三者以 ", " 连接
func Read(r io.Reader, opts Options) (*Dataset, error) {
	start := time.Now()
	normalizer := opts.Normalizer
	if normalizer == nil {
		normalizer = text.Default
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput, "dataset: empty csv")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, h := range header {
		columns[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := columns[c]; !ok {
			return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
				fmt.Sprintf("dataset: missing column %q", c))
		}
	}

	ds := &Dataset{}
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		get := func(col string) string {
			i, ok := columns[col]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		userID, hasUser, uerr := ExtractID(get(ColumnID))
		prodID, _, perr := ExtractID(get(ColumnProdID))
		if err := errors.Join(uerr, perr); err != nil {
			log.Logger().Warn("skip rating observation", zap.Int("line", line), zap.Error(err))
			hasUser = false
		}
		item := core.Item{
			ProdID:      prodID,
			Name:        get(ColumnName),
			Rating:      parseFloat(get(ColumnRating)),
			ReviewCount: int(parseFloat(get(ColumnReviewCount))),
			ImageURL:    get(ColumnImageURL),
			Tags:        get(ColumnTags),
		}
		item.Category = normalizer.Normalize(get(ColumnCategory))
		item.Brand = normalizer.Normalize(get(ColumnBrand))
		item.Description = normalizer.Normalize(get(ColumnDescription))
		if !opts.KeepRawTags {
			item.Tags = strings.Join([]string{item.Category, item.Brand, item.Description}, text.TagSeparator)
		}

		ds.Items = append(ds.Items, item)
		ds.UserIDs = append(ds.UserIDs, userID)
		ds.HasUser = append(ds.HasUser, hasUser)
	}

	log.Logger().Info("load catalog complete",
		zap.Int("n_rows", len(ds.Items)),
		zap.Duration("used_time", time.Since(start)))
	return ds, nil
}

// ExtractID 取 s 中第一段连续数字并解析为 int64；没有数字时返回 false。
// 数字串超出 int64 时返回 INVALID_INPUT 错误，调用方应丢弃该行的评分观测，
// 避免与没有数字的 ID 一起落到 0 上。
func ExtractID(s string) (int64, bool, error) {
	digits := digitsPattern.FindString(s)
	if digits == "" {
		return 0, false, nil
	}
	id, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
			fmt.Sprintf("dataset: id %q out of range", s))
	}
	return id, true, nil
}

func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// Observations 返回评分观测 (UserID=ID, ProdID, Rating)，跳过没有用户 ID 的行。
func (d *Dataset) Observations() []core.RatingObservation {
	out := make([]core.RatingObservation, 0, len(d.Items))
	for i, it := range d.Items {
		if !d.HasUser[i] {
			continue
		}
		out = append(out, core.RatingObservation{
			UserID: d.UserIDs[i],
			ProdID: it.ProdID,
			Rating: it.Rating,
		})
	}
	return out
}

// Stats 是数据集的基础统计。
type Stats struct {
	Rows    int `json:"rows"`
	Users   int `json:"users"`
	Items   int `json:"items"`
	Ratings int `json:"ratings"` // 不同评分取值的个数
}

// Stats 统计去重后的用户数、商品数与评分取值数。
func (d *Dataset) Stats() Stats {
	users := mapset.NewThreadUnsafeSet[int64]()
	items := mapset.NewThreadUnsafeSet[int64]()
	ratings := mapset.NewThreadUnsafeSet[float64]()
	for i, it := range d.Items {
		if d.HasUser[i] {
			users.Add(d.UserIDs[i])
		}
		items.Add(it.ProdID)
		ratings.Add(it.Rating)
	}
	return Stats{
		Rows:    len(d.Items),
		Users:   users.Cardinality(),
		Items:   items.Cardinality(),
		Ratings: ratings.Cardinality(),
	}
}
