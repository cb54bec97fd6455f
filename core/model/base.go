package model

// EstimatorState はトランスフォーマーの学習状態を表す
type EstimatorState int

const (
	// NotFitted はトランスフォーマーが未学習の状態
	NotFitted EstimatorState = iota
	// Fitted はトランスフォーマーが学習済みの状態
	Fitted
)

// BaseEstimator は全てのトランスフォーマーの基底となる構造体
type BaseEstimator struct {
	state EstimatorState
}

// IsFitted はトランスフォーマーが学習済みかどうかを返す
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted はトランスフォーマーを学習済み状態に設定する
func (e *BaseEstimator) SetFitted() {
	e.state = Fitted
}

// Reset はトランスフォーマーを初期状態にリセットする
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
}
