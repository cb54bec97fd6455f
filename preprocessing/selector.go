package preprocessing

import (
	"fmt"

	"github.com/YuminosukeSato/tabprep/core/frame"
	"github.com/YuminosukeSato/tabprep/core/model"
	"github.com/YuminosukeSato/tabprep/pkg/errors"
)

// ColumnSelector は名前で指定された列の部分集合を取り出す。
// 列は要求された順序で返される。存在しない列名があればColumnNotFoundErrorとなる。
type ColumnSelector struct {
	model.BaseEstimator

	// Columns は選択する列名のリスト
	Columns []string
}

// NewColumnSelector は新しいColumnSelectorを作成する
func NewColumnSelector(columns []string) *ColumnSelector {
	return &ColumnSelector{Columns: columns}
}

// Fit は何も学習しない（ColumnSelectorはステートレス）
func (s *ColumnSelector) Fit(X *frame.Frame) error {
	s.SetFitted()
	return nil
}

// Transform は指定された列だけを持つ新しいフレームを返す
func (s *ColumnSelector) Transform(X *frame.Frame) (*frame.Frame, error) {
	if X == nil {
		return nil, errors.NewValueError("ColumnSelector.Transform", "input must be a non-nil frame")
	}
	out, err := X.Select(s.Columns)
	if err != nil {
		return nil, errors.Wrap(err, "ColumnSelector.Transform")
	}
	return out, nil
}

// FitTransform は学習と変換を同時に実行する
func (s *ColumnSelector) FitTransform(X *frame.Frame) (*frame.Frame, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// String はセレクターの文字列表現を返す
func (s *ColumnSelector) String() string {
	return fmt.Sprintf("ColumnSelector(columns=%v)", s.Columns)
}

// TypeSelector は指定された論理型を持つ列の部分集合を取り出す。
// 列はフレームの自然な列順序で返される。
type TypeSelector struct {
	model.BaseEstimator

	// Kind は選択する列の論理型
	Kind frame.Kind
}

// NewTypeSelector は新しいTypeSelectorを作成する
func NewTypeSelector(kind frame.Kind) *TypeSelector {
	return &TypeSelector{Kind: kind}
}

// Fit は何も学習しない（TypeSelectorはステートレス）
func (s *TypeSelector) Fit(X *frame.Frame) error {
	s.SetFitted()
	return nil
}

// Transform は指定された論理型の列だけを持つ新しいフレームを返す
func (s *TypeSelector) Transform(X *frame.Frame) (*frame.Frame, error) {
	if X == nil {
		return nil, errors.NewValueError("TypeSelector.Transform", "input must be a non-nil frame")
	}
	out, err := X.Select(X.ColumnsOfKind(s.Kind))
	if err != nil {
		return nil, errors.Wrap(err, "TypeSelector.Transform")
	}
	return out, nil
}

// FitTransform は学習と変換を同時に実行する
func (s *TypeSelector) FitTransform(X *frame.Frame) (*frame.Frame, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// String はセレクターの文字列表現を返す
func (s *TypeSelector) String() string {
	return fmt.Sprintf("TypeSelector(kind=%s)", s.Kind)
}
