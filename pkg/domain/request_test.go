package domain

import (
	"testing"
	"time"
)

func TestNewDailyTextRequest(t *testing.T) {
	now := time.Date(2026, 1, 19, 8, 0, 0, 0, time.Local)
	req := NewDailyTextRequest(now)

	if req.Kind != ScrapedText {
		t.Errorf("Expected kind %s, got %s", ScrapedText, req.Kind)
	}
	if !req.Cadence {
		t.Error("Expected daily text request to be a cadence request")
	}
	if req.Parameters[ParamDay] != "19" || req.Parameters[ParamMonth] != "1" {
		t.Errorf("Expected day=19 month=1, got %v", req.Parameters)
	}
	if req.RunID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("Expected a run id to be assigned")
	}
}

func TestKey_DailyTextIsDateIndependent(t *testing.T) {
	jan := NewDailyTextRequest(time.Date(2026, 1, 19, 0, 0, 0, 0, time.Local))
	feb := NewDailyTextRequest(time.Date(2026, 2, 3, 0, 0, 0, 0, time.Local))

	if jan.Key() != "saints-of-day" {
		t.Errorf("Unexpected key %q", jan.Key())
	}
	// The date lives in the dispatch record, not the key
	if jan.Key() != feb.Key() {
		t.Errorf("Expected the same key across dates, got %q and %q", jan.Key(), feb.Key())
	}
}

func TestKey_ChartIncludesSymbol(t *testing.T) {
	req := NewChartRequest("AAPL", "", "")

	if req.Key() != "fibo:AAPL" {
		t.Errorf("Unexpected key %q", req.Key())
	}
	if req.Cadence {
		t.Error("Expected chart request to be on-demand")
	}
}

func TestNewChartRequest_OmitsEmptyDates(t *testing.T) {
	req := NewChartRequest("AAPL", "", "")
	if _, ok := req.Parameters[ParamStartDate]; ok {
		t.Error("Expected no start date parameter when none was given")
	}
	if _, ok := req.Parameters[ParamEndDate]; ok {
		t.Error("Expected no end date parameter when none was given")
	}

	ranged := NewChartRequest("AAPL", "2024-01-01", "2026-01-01")
	if ranged.Parameters[ParamStartDate] != "2024-01-01" || ranged.Parameters[ParamEndDate] != "2026-01-01" {
		t.Errorf("Expected explicit dates to be carried, got %v", ranged.Parameters)
	}
}
