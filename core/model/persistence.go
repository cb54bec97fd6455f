package model

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
)

// SaveTransformer は学習済みトランスフォーマーをファイルに保存する
//
// パラメータ:
//   - transformer: 保存するトランスフォーマー（BaseEstimatorを埋め込んだ構造体）
//   - filename: 保存先のファイルパス
//
// 使用例:
//
//	grouper, _ := preprocessing.NewCategoricalGrouper()
//	// ... 学習 ...
//	err := model.SaveTransformer(grouper, "grouper.gob")
func SaveTransformer(transformer interface{}, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := gob.NewEncoder(file)
	if err := encoder.Encode(transformer); err != nil {
		return fmt.Errorf("failed to encode transformer: %w", err)
	}

	return nil
}

// LoadTransformer はファイルから学習済みトランスフォーマーを読み込む
//
// パラメータ:
//   - transformer: 読み込み先のトランスフォーマー（構造体のポインタ）
//   - filename: 読み込み元のファイルパス
func LoadTransformer(transformer interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	decoder := gob.NewDecoder(file)
	if err := decoder.Decode(transformer); err != nil {
		return fmt.Errorf("failed to decode transformer: %w", err)
	}

	return nil
}

// SaveTransformerToWriter はトランスフォーマーをio.Writerに保存する
func SaveTransformerToWriter(transformer interface{}, w io.Writer) error {
	encoder := gob.NewEncoder(w)
	if err := encoder.Encode(transformer); err != nil {
		return fmt.Errorf("failed to encode transformer: %w", err)
	}
	return nil
}

// LoadTransformerFromReader はio.Readerからトランスフォーマーを読み込む
func LoadTransformerFromReader(transformer interface{}, r io.Reader) error {
	decoder := gob.NewDecoder(r)
	if err := decoder.Decode(transformer); err != nil {
		return fmt.Errorf("failed to decode transformer: %w", err)
	}
	return nil
}
