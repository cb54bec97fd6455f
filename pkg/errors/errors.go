// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// scikit-learnの警告・例外システムにインスパイアされており、構造化されたエラー情報を提供します。
package errors

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("tabprep-Warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
// これにより、DataConversionWarningなどのカスタム警告の処理方法を制御できます。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが利用可能な場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	// zerologが設定されている場合は優先的に使用
	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	// フォールバック: 従来のハンドラ
	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	scikit-learn互換の警告型
//
// ===========================================================================

// DataConversionWarning は列の型が暗黙的に変換された場合に発生する警告です。
// 例えばColumnProjectorが{0,1}のみを含む数値列を真偽値列として分類した場合など。
type DataConversionWarning struct {
	Column   string
	FromKind string
	ToKind   string
	Reason   string
}

func (w *DataConversionWarning) Error() string {
	return fmt.Sprintf("column '%s' converted from %s to %s. Reason: %s", w.Column, w.FromKind, w.ToKind, w.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *DataConversionWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("column", w.Column).
		Str("from_kind", w.FromKind).
		Str("to_kind", w.ToKind).
		Str("reason", w.Reason).
		Str("type", "DataConversionWarning")
}

// NewDataConversionWarning は新しいDataConversionWarningを作成します。
func NewDataConversionWarning(column, from, to, reason string) *DataConversionWarning {
	return &DataConversionWarning{Column: column, FromKind: from, ToKind: to, Reason: reason}
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// NotFittedError はトランスフォーマーが未学習の状態で `Transform` を呼び出した場合のエラーです。
type NotFittedError struct {
	TransformerName string
	Method          string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("tabprep: %s: this transformer is not fitted yet. Fitting is necessary before you call %s()", e.TransformerName, e.Method)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("transformer_name", e.TransformerName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースを付与します。
func NewNotFittedError(transformerName, method string) error {
	err := &NotFittedError{TransformerName: transformerName, Method: method}
	return errors.WithStack(err)
}

// ColumnNotFoundError は参照された列がフレームに存在しない場合のエラーです。
// パイプラインのデバッグを助けるため、欠けている列名を全て列挙します。
type ColumnNotFoundError struct {
	Op      string
	Columns []string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("tabprep: %s: columns not present in the frame: [%s]", e.Op, strings.Join(e.Columns, ", "))
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ColumnNotFoundError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Strs("columns", e.Columns).
		Str("type", "ColumnNotFoundError")
}

// NewColumnNotFoundError は新しいColumnNotFoundErrorを作成し、スタックトレースを付与します。
func NewColumnNotFoundError(op string, columns []string) error {
	err := &ColumnNotFoundError{Op: op, Columns: columns}
	return errors.WithStack(err)
}

// CategoryConflictError は閉じたドメインを持つ列に対して、既にドメインの要素である
// カテゴリ名を追加しようとした場合のエラーです。
// CategoricalGrouperのセンチネル値が既存カテゴリと衝突した場合に発生します。
type CategoryConflictError struct {
	Column   string
	Category string
}

func (e *CategoryConflictError) Error() string {
	return fmt.Sprintf("tabprep: category %q is already a domain member of column '%s'. You need to specify a different sentinel value", e.Category, e.Column)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *CategoryConflictError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("column", e.Column).
		Str("category", e.Category).
		Str("type", "CategoryConflictError")
}

// NewCategoryConflictError は新しいCategoryConflictErrorを作成し、スタックトレースを付与します。
func NewCategoryConflictError(column, category string) error {
	err := &CategoryConflictError{Column: column, Category: category}
	return errors.WithStack(err)
}

// ValidationError は構築時パラメータの検証に失敗した場合のエラーです。
// `ValueError`よりも具体的なバリデーションロジックの失敗を示します。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("tabprep: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
// 例えば、空のフレームに対してFitを呼び出した場合など。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("tabprep: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// TransformError はトランスフォーマーに関する一般的なエラーです。
type TransformError struct {
	Op   string
	Kind string
	Err  error
}

func (e *TransformError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tabprep: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("tabprep: %s: %s", e.Op, e.Kind)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// NewTransformError は新しいTransformErrorを作成し、スタックトレースを付与します。
func NewTransformError(op, kind string, err error) error {
	transformErr := &TransformError{Op: op, Kind: kind, Err: err}
	return errors.WithStack(transformErr)
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrNotImplemented は機能が未実装の場合のエラーです。
	ErrNotImplemented = New("not implemented")

	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")
)
