// Package frame は名前と型を持つ列で構成されるインメモリの表形式データ構造を提供する。
// pandas.DataFrameに相当する最小限の機能を持ち、前処理トランスフォーマーの
// 入出力として使用される。
package frame

import (
	"fmt"
	"strconv"

	"github.com/YuminosukeSato/tabprep/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Kind は列の論理型を表す
type Kind int

const (
	// Categorical は離散的で順序を持たないラベル値の列
	Categorical Kind = iota
	// Numeric は数値の列
	Numeric
	// Boolean は真偽値の列
	Boolean
	// Other は上記のいずれにも分類されない列
	Other
)

// String はKindの文字列表現を返す
func (k Kind) String() string {
	switch k {
	case Categorical:
		return "categorical"
	case Numeric:
		return "numeric"
	case Boolean:
		return "boolean"
	case Other:
		return "other"
	default:
		return "unknown"
	}
}

// Column は1列分の名前付きデータを保持する。
// セル値は文字列としてエンコードされ、Kindが論理型を表す。
// カテゴリカル列は閉じたドメイン（許容値の列挙）を持つことができ、
// ドメインが設定されている場合は全てのセル値がドメインの要素でなければならない。
type Column struct {
	name   string
	kind   Kind
	values []string

	// domain はカテゴリカル列の閉じたドメイン。nilの場合は開いたドメイン。
	domain    []string
	domainSet map[string]struct{}
}

// NewColumn は新しいColumnを作成する
func NewColumn(name string, kind Kind, values []string) *Column {
	vs := make([]string, len(values))
	copy(vs, values)
	return &Column{name: name, kind: kind, values: vs}
}

// Name は列名を返す
func (c *Column) Name() string { return c.name }

// Kind は列の論理型を返す
func (c *Column) Kind() Kind { return c.kind }

// SetKind は列の論理型を変更する
func (c *Column) SetKind(kind Kind) { c.kind = kind }

// Len は行数を返す
func (c *Column) Len() int { return len(c.values) }

// Value はi行目のセル値を返す
func (c *Column) Value(i int) string { return c.values[i] }

// Values は全セル値のコピーを返す
func (c *Column) Values() []string {
	vs := make([]string, len(c.values))
	copy(vs, c.values)
	return vs
}

// Set はi行目のセル値をvに書き換える。
// 閉じたドメインを持つ列では、vがドメインの要素でない場合エラーを返す。
func (c *Column) Set(i int, v string) error {
	if c.domainSet != nil {
		if _, ok := c.domainSet[v]; !ok {
			return errors.NewValueError("Column.Set",
				fmt.Sprintf("value %q is not in the closed domain of column '%s'", v, c.name))
		}
	}
	c.values[i] = v
	return nil
}

// HasDomain は列が閉じたドメインを持つかどうかを返す
func (c *Column) HasDomain() bool { return c.domain != nil }

// Domain は閉じたドメインのコピーを返す。開いたドメインの場合はnilを返す。
func (c *Column) Domain() []string {
	if c.domain == nil {
		return nil
	}
	ds := make([]string, len(c.domain))
	copy(ds, c.domain)
	return ds
}

// InDomain はvが閉じたドメインの要素かどうかを返す。
// 開いたドメインの列では常にfalseを返す。
func (c *Column) InDomain(v string) bool {
	if c.domainSet == nil {
		return false
	}
	_, ok := c.domainSet[v]
	return ok
}

// SetDomain は閉じたドメインを設定する。
// 既存のセル値にドメイン外の値が含まれる場合はエラーを返す。
func (c *Column) SetDomain(domain []string) error {
	set := make(map[string]struct{}, len(domain))
	ds := make([]string, 0, len(domain))
	for _, d := range domain {
		if _, ok := set[d]; ok {
			continue
		}
		set[d] = struct{}{}
		ds = append(ds, d)
	}
	for i, v := range c.values {
		if _, ok := set[v]; !ok {
			return errors.NewValueError("Column.SetDomain",
				fmt.Sprintf("row %d of column '%s' holds %q which is outside the proposed domain", i, c.name, v))
		}
	}
	c.domain = ds
	c.domainSet = set
	return nil
}

// AddDomainValue は閉じたドメインに新しい許容値を追加する。
// 挿入前にメンバーシップを確認し、既にドメインの要素である場合は
// CategoryConflictErrorを返す。開いたドメインの列ではエラーを返す。
func (c *Column) AddDomainValue(v string) error {
	if c.domainSet == nil {
		return errors.NewValueError("Column.AddDomainValue",
			fmt.Sprintf("column '%s' does not enforce a closed domain", c.name))
	}
	if _, ok := c.domainSet[v]; ok {
		return errors.NewCategoryConflictError(c.name, v)
	}
	c.domain = append(c.domain, v)
	c.domainSet[v] = struct{}{}
	return nil
}

// ClearDomain は閉じたドメインを取り除き、列を開いたドメインに戻す
func (c *Column) ClearDomain() {
	c.domain = nil
	c.domainSet = nil
}

// RemoveDomainValues は閉じたドメインから指定された値を取り除く。
// ドメインに存在しない値は無視される。開いたドメインの列では何もしない。
func (c *Column) RemoveDomainValues(vs []string) {
	if c.domainSet == nil {
		return
	}
	removal := make(map[string]struct{}, len(vs))
	for _, v := range vs {
		if _, ok := c.domainSet[v]; ok {
			removal[v] = struct{}{}
			delete(c.domainSet, v)
		}
	}
	if len(removal) == 0 {
		return
	}
	kept := c.domain[:0]
	for _, d := range c.domain {
		if _, ok := removal[d]; !ok {
			kept = append(kept, d)
		}
	}
	c.domain = kept
}

// Counts は列に出現する各値の件数を返す。
// 値は最初に観測された順序で並ぶ（カウントの順序は呼び出し側で決める）。
func (c *Column) Counts() (values []string, counts []int) {
	index := make(map[string]int)
	for _, v := range c.values {
		if i, ok := index[v]; ok {
			counts[i]++
			continue
		}
		index[v] = len(values)
		values = append(values, v)
		counts = append(counts, 1)
	}
	return values, counts
}

// Floats は全セル値をfloat64として解釈して返す。
// 数値として解釈できないセルが存在する場合はエラーを返す。
func (c *Column) Floats() ([]float64, error) {
	fs := make([]float64, len(c.values))
	for i, v := range c.values {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, errors.NewValueError("Column.Floats",
				fmt.Sprintf("row %d of column '%s' holds %q which is not numeric", i, c.name, v))
		}
		fs[i] = f
	}
	return fs, nil
}

// copyColumn はColumnの深いコピーを返す
func (c *Column) copyColumn() *Column {
	nc := NewColumn(c.name, c.kind, c.values)
	if c.domain != nil {
		nc.domain = make([]string, len(c.domain))
		copy(nc.domain, c.domain)
		nc.domainSet = make(map[string]struct{}, len(c.domainSet))
		for k := range c.domainSet {
			nc.domainSet[k] = struct{}{}
		}
	}
	return nc
}

// Frame は順序付けられた名前付き・型付き列の集合。
// 全ての列は同じ行数を持ち、行は列をまたいで位置で対応する。
type Frame struct {
	cols  []*Column
	index map[string]int
}

// New は新しいFrameを作成する。
// 列名の重複、または列間での行数の不一致があればエラーを返す。
func New(cols ...*Column) (*Frame, error) {
	f := &Frame{index: make(map[string]int, len(cols))}
	for _, c := range cols {
		if _, ok := f.index[c.name]; ok {
			return nil, errors.NewValueError("frame.New",
				fmt.Sprintf("duplicate column name '%s'", c.name))
		}
		if len(f.cols) > 0 && c.Len() != f.cols[0].Len() {
			return nil, errors.NewValueError("frame.New",
				fmt.Sprintf("column '%s' has %d rows, want %d", c.name, c.Len(), f.cols[0].Len()))
		}
		f.index[c.name] = len(f.cols)
		f.cols = append(f.cols, c)
	}
	return f, nil
}

// NumRows は行数を返す
func (f *Frame) NumRows() int {
	if len(f.cols) == 0 {
		return 0
	}
	return f.cols[0].Len()
}

// NumCols は列数を返す
func (f *Frame) NumCols() int { return len(f.cols) }

// ColumnNames は自然な列順序で全列名を返す
func (f *Frame) ColumnNames() []string {
	names := make([]string, len(f.cols))
	for i, c := range f.cols {
		names[i] = c.name
	}
	return names
}

// Has は指定された名前の列が存在するかどうかを返す
func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Column は指定された名前の列を返す。
// 存在しない場合はColumnNotFoundErrorを返す。
func (f *Frame) Column(name string) (*Column, error) {
	i, ok := f.index[name]
	if !ok {
		return nil, errors.NewColumnNotFoundError("Frame.Column", []string{name})
	}
	return f.cols[i], nil
}

// ColumnsOfKind は指定された論理型を持つ列の名前を自然な列順序で返す
func (f *Frame) ColumnsOfKind(kind Kind) []string {
	var names []string
	for _, c := range f.cols {
		if c.kind == kind {
			names = append(names, c.name)
		}
	}
	return names
}

// Select は指定された名前の列だけを要求された順序で持つ新しいFrameを返す。
// 存在しない名前がある場合は、欠けている名前を全て列挙した
// ColumnNotFoundErrorを返す。返されるFrameは深いコピーを持つ。
func (f *Frame) Select(names []string) (*Frame, error) {
	var missing []string
	for _, n := range names {
		if !f.Has(n) {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewColumnNotFoundError("Frame.Select", missing)
	}
	cols := make([]*Column, len(names))
	for i, n := range names {
		cols[i] = f.cols[f.index[n]].copyColumn()
	}
	return New(cols...)
}

// Copy はFrameの深いコピーを返す
func (f *Frame) Copy() *Frame {
	cols := make([]*Column, len(f.cols))
	for i, c := range f.cols {
		cols[i] = c.copyColumn()
	}
	nf := &Frame{cols: cols, index: make(map[string]int, len(f.index))}
	for name, i := range f.index {
		nf.index[name] = i
	}
	return nf
}

// Matrix は全列を数値として解釈したgonumの行列を返す。
// 数値として解釈できない列がある場合はエラーを返す。
// 数値系の推定器に渡す前にTypeSelectorで数値列へ絞り込むことを想定している。
func (f *Frame) Matrix() (*mat.Dense, error) {
	if len(f.cols) == 0 || f.NumRows() == 0 {
		return nil, errors.NewValueError("Frame.Matrix", "frame has no data")
	}
	r, c := f.NumRows(), f.NumCols()
	m := mat.NewDense(r, c, nil)
	for j, col := range f.cols {
		fs, err := col.Floats()
		if err != nil {
			return nil, errors.Wrapf(err, "Frame.Matrix: column '%s'", col.name)
		}
		for i := 0; i < r; i++ {
			m.Set(i, j, fs[i])
		}
	}
	return m, nil
}
