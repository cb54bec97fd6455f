package preprocessing

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/YuminosukeSato/tabprep/core/frame"
	"github.com/YuminosukeSato/tabprep/core/model"
	"github.com/YuminosukeSato/tabprep/pkg/errors"
)

// ColumnProjector は列の型を基本的な論理型へ射影する。
//
// ManualProjectionで明示的に指定された列を先に射影し、残りの列は自動判定する:
// {0,1}のみを含む列は真偽値、数値として解釈できる列は数値
// （NumToFloatがfalseの場合は整数へ正規化）、それ以外はカテゴリカルとなる。
// カテゴリカルへ射影された列には、観測された値の集合を辞書順に並べた
// 閉じたドメインが設定される。
//
// 暗黙的な型変換が行われた列についてはDataConversionWarningが発生する。
type ColumnProjector struct {
	model.BaseEstimator

	// ManualProjection は射影先の論理型から列名リストへのマッピング
	ManualProjection map[frame.Kind][]string

	// NumToFloat は数値列を浮動小数点として正規化するかどうか（falseなら整数）
	NumToFloat bool
}

// NewColumnProjector は新しいColumnProjectorを作成する
//
// パラメータ:
//   - manualProjection: 明示的に射影する列の指定（nilの場合は全列を自動判定）
//   - numToFloat: 数値列を浮動小数点へ正規化するかどうか
func NewColumnProjector(manualProjection map[frame.Kind][]string, numToFloat bool) *ColumnProjector {
	return &ColumnProjector{
		ManualProjection: manualProjection,
		NumToFloat:       numToFloat,
	}
}

// NewColumnProjectorDefault はデフォルト設定でColumnProjectorを作成する
func NewColumnProjectorDefault() *ColumnProjector {
	return NewColumnProjector(nil, true)
}

// Fit は何も学習しない（ColumnProjectorはステートレス）
func (p *ColumnProjector) Fit(X *frame.Frame) error {
	p.SetFitted()
	return nil
}

// Transform は列の型射影を適用した新しいフレームを返す。入力は変更されない。
//
// ManualProjectionに存在しない列名が含まれる場合は、欠けている名前を全て
// 列挙したColumnNotFoundErrorを返す。
func (p *ColumnProjector) Transform(X *frame.Frame) (out *frame.Frame, err error) {
	defer errors.Recover(&err, "ColumnProjector.Transform")

	if X == nil {
		return nil, errors.NewValueError("ColumnProjector.Transform", "input must be a non-nil frame")
	}

	out = X.Copy()
	projected := make(map[string]struct{})

	if p.ManualProjection != nil {
		var missing []string
		for _, names := range p.ManualProjection {
			for _, n := range names {
				if !out.Has(n) {
					missing = append(missing, n)
				}
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			return nil, errors.NewColumnNotFoundError("ColumnProjector.Transform", missing)
		}
		for kind, names := range p.ManualProjection {
			for _, n := range names {
				col, cerr := out.Column(n)
				if cerr != nil {
					return nil, cerr
				}
				if perr := p.project(col, kind); perr != nil {
					return nil, perr
				}
				projected[n] = struct{}{}
			}
		}
	}

	for _, n := range out.ColumnNames() {
		if _, ok := projected[n]; ok {
			continue
		}
		col, cerr := out.Column(n)
		if cerr != nil {
			return nil, cerr
		}
		if perr := p.autoProject(col); perr != nil {
			return nil, perr
		}
	}
	return out, nil
}

// FitTransform は学習と変換を同時に実行する
func (p *ColumnProjector) FitTransform(X *frame.Frame) (*frame.Frame, error) {
	if err := p.Fit(X); err != nil {
		return nil, err
	}
	return p.Transform(X)
}

// autoProject は列の内容から論理型を自動判定して射影する
func (p *ColumnProjector) autoProject(col *frame.Column) error {
	if isBinary(col) {
		if col.Kind() != frame.Boolean {
			errors.Warn(errors.NewDataConversionWarning(
				col.Name(), col.Kind().String(), frame.Boolean.String(),
				"column holds only {0, 1} values"))
		}
		return p.project(col, frame.Boolean)
	}
	if isNumeric(col) {
		return p.project(col, frame.Numeric)
	}
	return p.project(col, frame.Categorical)
}

// project は1列を指定された論理型へ射影し、セル値の表現を正規化する
func (p *ColumnProjector) project(col *frame.Column, kind frame.Kind) error {
	switch kind {
	case frame.Numeric:
		col.ClearDomain()
		for i := 0; i < col.Len(); i++ {
			f, err := strconv.ParseFloat(col.Value(i), 64)
			if err != nil {
				return errors.NewValueError("ColumnProjector.Transform",
					fmt.Sprintf("row %d of column '%s' holds %q which cannot be projected onto numeric", i, col.Name(), col.Value(i)))
			}
			var normalized string
			if p.NumToFloat {
				normalized = strconv.FormatFloat(f, 'g', -1, 64)
			} else {
				normalized = strconv.FormatInt(int64(f), 10)
			}
			if err := col.Set(i, normalized); err != nil {
				return err
			}
		}
		col.SetKind(frame.Numeric)

	case frame.Boolean:
		col.ClearDomain()
		for i := 0; i < col.Len(); i++ {
			b, err := parseBool(col.Value(i))
			if err != nil {
				return errors.NewValueError("ColumnProjector.Transform",
					fmt.Sprintf("row %d of column '%s' holds %q which cannot be projected onto boolean", i, col.Name(), col.Value(i)))
			}
			if err := col.Set(i, strconv.FormatBool(b)); err != nil {
				return err
			}
		}
		col.SetKind(frame.Boolean)

	case frame.Categorical:
		col.SetKind(frame.Categorical)
		if err := col.SetDomain(distinctSorted(col)); err != nil {
			return err
		}

	case frame.Other:
		col.ClearDomain()
		col.SetKind(frame.Other)

	default:
		return errors.NewValidationError("manual_projection", "unknown column kind", kind)
	}
	return nil
}

// isBinary は列が{0,1}のみを含むかどうかを返す
func isBinary(col *frame.Column) bool {
	for i := 0; i < col.Len(); i++ {
		v := col.Value(i)
		if v != "0" && v != "1" {
			return false
		}
	}
	return col.Len() > 0
}

// isNumeric は全セルが数値として解釈できるかどうかを返す
func isNumeric(col *frame.Column) bool {
	for i := 0; i < col.Len(); i++ {
		if _, err := strconv.ParseFloat(col.Value(i), 64); err != nil {
			return false
		}
	}
	return col.Len() > 0
}

// parseBool は真偽値セルの表現ゆれを吸収する
func parseBool(v string) (bool, error) {
	switch v {
	case "1":
		return true, nil
	case "0":
		return false, nil
	}
	return strconv.ParseBool(v)
}

// distinctSorted は列に観測された値の集合を辞書順で返す
func distinctSorted(col *frame.Column) []string {
	seen := make(map[string]struct{})
	var ds []string
	for i := 0; i < col.Len(); i++ {
		v := col.Value(i)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		ds = append(ds, v)
	}
	sort.Strings(ds)
	return ds
}

// String はプロジェクターの文字列表現を返す
func (p *ColumnProjector) String() string {
	return fmt.Sprintf("ColumnProjector(num_to_float=%t, manual=%d kinds)", p.NumToFloat, len(p.ManualProjection))
}
