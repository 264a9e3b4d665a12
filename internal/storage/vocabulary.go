package storage

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed dict_of_words.json
var defaultVocabulary []byte

// Vocabulary は、作品名の生成に使用する単語リストです。
// 読み込み後は変更されないため、複数のgoroutineから同時に使用できます。
type Vocabulary struct {
	Verbs []string `json:"present_tense_verbs"`
	Nouns []string `json:"nouns"`
}

// LoadVocabulary は、JSONファイルから単語リストを読み込みます。
// path が空の場合は組み込みの単語リストを使用します。
func LoadVocabulary(path string) (*Vocabulary, error) {
	if path == "" {
		return ParseVocabulary(defaultVocabulary)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("単語リスト '%s' の読み込みに失敗しました: %w", path, err)
	}
	v, err := ParseVocabulary(data)
	if err != nil {
		return nil, fmt.Errorf("単語リスト '%s' が不正です: %w", path, err)
	}
	return v, nil
}

// ParseVocabulary は、JSONデータを解析して単語リストを返します。
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("単語リストのJSON解析に失敗しました: %w", err)
	}
	if len(v.Verbs) == 0 || len(v.Nouns) == 0 {
		return nil, fmt.Errorf("単語リストには present_tense_verbs と nouns の両方が必要です (verbs=%d, nouns=%d)", len(v.Verbs), len(v.Nouns))
	}
	return &v, nil
}

// Label は、ランダムな動詞と名詞を組み合わせた verb_noun 形式の名前を返します。
// 一意性は保証しません。
func (v *Vocabulary) Label() string {
	return v.Verbs[rand.Intn(len(v.Verbs))] + "_" + v.Nouns[rand.Intn(len(v.Nouns))]
}

// DisplayName は、verb_noun 形式の名前を表示用の "Verb Noun" に変換します。
func DisplayName(label string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(label, "_", " "))
}
