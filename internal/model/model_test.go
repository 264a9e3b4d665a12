package model

import (
	"testing"
	"time"
)

func TestDateRange_Validate(t *testing.T) {
	start := time.Date(1995, 6, 16, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 11, 4, 0, 0, 0, 0, time.UTC)

	if err := (DateRange{Start: start, End: end}).Validate(); err != nil {
		t.Errorf("正しい範囲でエラーが返されました: %v", err)
	}
	if err := (DateRange{Start: start, End: start}).Validate(); err != nil {
		t.Errorf("開始日と終了日が同じ範囲でエラーが返されました: %v", err)
	}
	if err := (DateRange{Start: end, End: start}).Validate(); err == nil {
		t.Error("逆転した範囲でエラーが返されませんでした。")
	}
	if err := (DateRange{}).Validate(); err == nil {
		t.Error("空の範囲でエラーが返されませんでした。")
	}
}

func TestDateRange_Days(t *testing.T) {
	r := DateRange{
		Start: time.Date(2020, 2, 27, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	if got := r.Days(); got != 3 {
		t.Errorf("日数が期待値と異なります。期待値: 3, 実際値: %d", got)
	}
}

func TestAsciiArtwork_Text(t *testing.T) {
	art := AsciiArtwork{Rows: []string{"@@", "  "}}

	if got := art.Text(); got != "@@\n  \n" {
		t.Errorf("テキストが期待値と異なります。実際値: %q", got)
	}
	if art.Columns() != 2 {
		t.Errorf("列数が期待値と異なります。期待値: 2, 実際値: %d", art.Columns())
	}
	if (AsciiArtwork{}).Columns() != 0 {
		t.Error("空の作品の列数は0であるべきです。")
	}
}
