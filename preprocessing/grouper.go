// Package preprocessing は表形式データの前処理トランスフォーマーを提供する。
// 全てのトランスフォーマーはscikit-learn互換のfit/transformの2段階で動作し、
// core/frameのFrameを入出力とする。
package preprocessing

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sort"

	"github.com/YuminosukeSato/tabprep/core/frame"
	"github.com/YuminosukeSato/tabprep/core/model"
	"github.com/YuminosukeSato/tabprep/pkg/errors"
	"github.com/YuminosukeSato/tabprep/pkg/log"
	"gonum.org/v1/gonum/floats"
)

// MethodFreq は頻度ベースのグルーピング手法。
// 各カテゴリの出現頻度を数え、降順ソートに対する累積シェアが
// パーセンタイル閾値以上となるカテゴリを保持する。
const MethodFreq = "freq"

// CategoricalGrouper はカテゴリカル列のスパースなカテゴリを1つのカテゴリにまとめる。
//
// Fitで各対象列の頻度分析を行い、累積シェアが 1 - percentileThresh に達するまでの
// 高頻度カテゴリを「保持」、それ以外を「スパース」として記録する。
// Transformでスパースなカテゴリを全てセンチネル値（newCategory）に書き換える。
// スパース候補が1個以下の列はグルーピングの意味がないため変換されない。
//
// 設定は構築後に変更できない。学習済み属性（CatColumns, SparseCategories）は
// Fitの呼び出しごとに全体が置き換えられる。
//
// 並行性: 内部ロックは持たない。同一インスタンスに対する並行なFitは
// 呼び出し側で直列化すること。Fit後にTransformだけを複数ゴルーチンで
// 共有する読み取り専用の使い方は安全である。
type CategoricalGrouper struct {
	model.BaseEstimator

	method           string
	percentileThresh float64
	newCategory      string
	includeCols      []string
	excludeCols      []string

	// CatColumns はFitで選択されたグルーピング対象の列名（フレームの自然な列順序）
	CatColumns []string

	// SparseCategories は列ごとのスパースカテゴリ集合（頻度降順）。
	// スパース候補が1個以下だった列には空のスライスが入る。
	SparseCategories map[string][]string
}

// NewCategoricalGrouper は新しいCategoricalGrouperを作成する。
//
// デフォルトは method="freq"、percentileThresh=0.05、newCategory="Other"。
// パラメータは構築時に検証され、未対応のmethodや[0,1)の範囲外の閾値は
// ValidationErrorになる。
//
// 使用例:
//
//	grouper, err := preprocessing.NewCategoricalGrouper(
//	    preprocessing.WithPercentileThresh(0.1),
//	    preprocessing.WithNewCategory("misc"),
//	)
func NewCategoricalGrouper(opts ...GrouperOption) (*CategoricalGrouper, error) {
	g := &CategoricalGrouper{
		method:           MethodFreq,
		percentileThresh: 0.05,
		newCategory:      "Other",
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.method != MethodFreq {
		return nil, errors.NewValidationError("method", "unsupported grouping method", g.method)
	}
	if g.percentileThresh < 0 || g.percentileThresh >= 1 {
		return nil, errors.NewValidationError("percentile_thresh", "must be in the interval [0, 1)", g.percentileThresh)
	}
	return g, nil
}

// Fit は与えられたフレームから列ごとのスパースカテゴリ集合を学習する。
//
// 対象列はフレームでカテゴリカル型と宣言された列に、includeColsの列を加え、
// excludeColsの列を除いたもの。includeColsで指定された列は宣言型に関わらず
// 対象となる。入力のフレームは変更されない。
//
// 空のフレームやnilに対してはエラーを返す。
func (g *CategoricalGrouper) Fit(X *frame.Frame) (err error) {
	defer errors.Recover(&err, "CategoricalGrouper.Fit")

	if X == nil {
		return errors.NewValueError("CategoricalGrouper.Fit", "input must be a non-nil frame")
	}
	if X.NumRows() == 0 {
		return errors.NewTransformError("CategoricalGrouper.Fit", "empty data", errors.ErrEmptyData)
	}

	cols := selectCatColumns(X, g.includeCols, g.excludeCols)
	sparse := make(map[string][]string, len(cols))

	for _, name := range cols {
		col, cerr := X.Column(name)
		if cerr != nil {
			return cerr
		}
		sparse[name] = g.sparseCategories(col)
	}

	g.CatColumns = cols
	g.SparseCategories = sparse
	g.SetFitted()

	totalSparse := 0
	for _, s := range sparse {
		totalSparse += len(s)
	}
	logger := log.GetLoggerWithName("preprocessing.grouper")
	logger.Debug("fit completed",
		log.TransformerNameKey, "CategoricalGrouper",
		log.OperationKey, "fit",
		log.RowsKey, X.NumRows(),
		log.SelectedColumnsKey, cols,
		log.SparseCountKey, totalSparse,
	)
	return nil
}

// sparseCategories は1列分の頻度分析を行い、スパースカテゴリを頻度降順で返す。
// 頻度が同じカテゴリの順序は辞書順の昇順で固定する（再現性のため）。
func (g *CategoricalGrouper) sparseCategories(col *frame.Column) []string {
	values, counts := col.Counts()
	total := float64(col.Len())

	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		ci, cj := counts[order[i]], counts[order[j]]
		if ci != cj {
			return ci > cj
		}
		return values[order[i]] < values[order[j]]
	})

	freqs := make([]float64, len(order))
	for i, idx := range order {
		freqs[i] = float64(counts[idx]) / total
	}
	cum := make([]float64, len(freqs))
	floats.CumSum(cum, freqs)

	// 累積シェアが 1 - percentileThresh に達した時点までのカテゴリを保持する。
	// 閾値が0のときは累積シェアが1.0に達するまで、つまり全カテゴリを保持する。
	target := 1 - g.percentileThresh
	kept := len(order)
	for i, c := range cum {
		if c >= target-1e-12 {
			kept = i + 1
			break
		}
	}

	candidates := make([]string, 0, len(order)-kept)
	for _, idx := range order[kept:] {
		candidates = append(candidates, values[idx])
	}
	// スパース候補が1個以下の場合はグルーピングしない。
	// 1個だけの希少カテゴリをセンチネルに改名しても情報は増えず、
	// 既に意味を持つ単独カテゴリと衝突する危険があるだけである。
	if len(candidates) < 2 {
		return []string{}
	}
	return candidates
}

// Transform は学習済みのスパースカテゴリ集合を使ってフレームを変換する。
//
// 入力のフレームは変更されず、対象セルをセンチネル値に書き換えた新しい
// フレームが返される。閉じたドメインを持つ列ではセンチネル値がドメインに
// 追加され、実際にドメインに存在するスパースカテゴリはドメインから取り除かれる。
//
// Fitの前に呼び出した場合はNotFittedErrorを返す。センチネル値が既存の
// カテゴリと衝突する場合はCategoryConflictErrorを返す。
func (g *CategoricalGrouper) Transform(X *frame.Frame) (out *frame.Frame, err error) {
	defer errors.Recover(&err, "CategoricalGrouper.Transform")

	if !g.IsFitted() {
		return nil, errors.NewNotFittedError("CategoricalGrouper", "Transform")
	}
	if X == nil {
		return nil, errors.NewValueError("CategoricalGrouper.Transform", "input must be a non-nil frame")
	}

	out = X.Copy()
	for _, name := range g.CatColumns {
		col, cerr := out.Column(name)
		if cerr != nil {
			return nil, cerr
		}
		sparse := g.SparseCategories[name]
		if len(sparse) == 0 {
			// スパース集合が空の列は一切変更しない
			continue
		}
		sparseSet := make(map[string]struct{}, len(sparse))
		for _, v := range sparse {
			sparseSet[v] = struct{}{}
		}

		var masked []int
		for i := 0; i < col.Len(); i++ {
			if _, ok := sparseSet[col.Value(i)]; ok {
				masked = append(masked, i)
			}
		}

		if col.HasDomain() {
			var removals []string
			for _, v := range sparse {
				if col.InDomain(v) {
					removals = append(removals, v)
				}
			}
			if !col.InDomain(g.newCategory) {
				if aerr := col.AddDomainValue(g.newCategory); aerr != nil {
					return nil, aerr
				}
			} else if len(removals) > 0 {
				// センチネルが既にドメインの要素で、かつスパースカテゴリが
				// まだドメインに残っている場合は本物の名前衝突。
				// 両方とも満たさない場合は既にグルーピング済みのフレームであり、
				// 再変換は何もしない（冪等性）。
				return nil, errors.NewCategoryConflictError(name, g.newCategory)
			}
			col.RemoveDomainValues(removals)
		}

		for _, i := range masked {
			if serr := col.Set(i, g.newCategory); serr != nil {
				return nil, serr
			}
		}
	}
	return out, nil
}

// FitTransform は学習と変換を同時に実行する
func (g *CategoricalGrouper) FitTransform(X *frame.Frame) (*frame.Frame, error) {
	if err := g.Fit(X); err != nil {
		return nil, err
	}
	return g.Transform(X)
}

// selectCatColumns はグルーピング対象の列名をフレームの自然な列順序で返す。
// 基本集合はカテゴリカル型と宣言された列。includeの列は宣言型に関わらず追加され、
// excludeの列は最終集合から取り除かれる。フレームに存在しない名前は無視される。
func selectCatColumns(X *frame.Frame, include, exclude []string) []string {
	cols := X.ColumnsOfKind(frame.Categorical)

	if include != nil {
		inSet := make(map[string]struct{}, len(include))
		for _, n := range include {
			inSet[n] = struct{}{}
		}
		catSet := make(map[string]struct{}, len(cols))
		for _, n := range cols {
			catSet[n] = struct{}{}
		}
		cols = cols[:0]
		for _, n := range X.ColumnNames() {
			_, isCat := catSet[n]
			_, isIncluded := inSet[n]
			if isCat || isIncluded {
				cols = append(cols, n)
			}
		}
	}

	if exclude != nil {
		exSet := make(map[string]struct{}, len(exclude))
		for _, n := range exclude {
			exSet[n] = struct{}{}
		}
		kept := cols[:0]
		for _, n := range cols {
			if _, ok := exSet[n]; !ok {
				kept = append(kept, n)
			}
		}
		cols = kept
	}

	return cols
}

// GetParams はグルーパーのパラメータを取得する
func (g *CategoricalGrouper) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"method":            g.method,
		"percentile_thresh": g.percentileThresh,
		"new_cat":           g.newCategory,
		"include_cols":      g.includeCols,
		"exclude_cols":      g.excludeCols,
	}
}

// String はグルーパーの文字列表現を返す
func (g *CategoricalGrouper) String() string {
	if !g.IsFitted() {
		return fmt.Sprintf("CategoricalGrouper(method=%s, percentile_thresh=%g, new_cat=%s)",
			g.method, g.percentileThresh, g.newCategory)
	}
	return fmt.Sprintf("CategoricalGrouper(method=%s, percentile_thresh=%g, new_cat=%s, n_columns=%d)",
		g.method, g.percentileThresh, g.newCategory, len(g.CatColumns))
}

// grouperGobState はgobエンコード用の内部状態
type grouperGobState struct {
	Method           string
	PercentileThresh float64
	NewCategory      string
	IncludeCols      []string
	ExcludeCols      []string
	CatColumns       []string
	SparseCategories map[string][]string
	Fitted           bool
}

// GobEncode は学習済み状態を含むグルーパー全体をシリアライズする
func (g *CategoricalGrouper) GobEncode() ([]byte, error) {
	state := grouperGobState{
		Method:           g.method,
		PercentileThresh: g.percentileThresh,
		NewCategory:      g.newCategory,
		IncludeCols:      g.includeCols,
		ExcludeCols:      g.excludeCols,
		CatColumns:       g.CatColumns,
		SparseCategories: g.SparseCategories,
		Fitted:           g.IsFitted(),
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(state); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode はシリアライズされたグルーパーを復元する
func (g *CategoricalGrouper) GobDecode(data []byte) error {
	var state grouperGobState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&state); err != nil {
		return err
	}
	g.method = state.Method
	g.percentileThresh = state.PercentileThresh
	g.newCategory = state.NewCategory
	g.includeCols = state.IncludeCols
	g.excludeCols = state.ExcludeCols
	g.CatColumns = state.CatColumns
	g.SparseCategories = state.SparseCategories
	if state.Fitted {
		g.SetFitted()
	} else {
		g.Reset()
	}
	return nil
}
