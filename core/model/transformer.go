package model

import "github.com/YuminosukeSato/tabprep/core/frame"

// FrameTransformer は表形式データ変換のインターフェース
type FrameTransformer interface {
	// Fit は変換に必要なパラメータを学習する
	Fit(X *frame.Frame) error

	// Transform はデータを変換する。入力のFrameは変更されない
	Transform(X *frame.Frame) (*frame.Frame, error)

	// FitTransform はFitとTransformを同時に実行する
	FitTransform(X *frame.Frame) (*frame.Frame, error)
}
