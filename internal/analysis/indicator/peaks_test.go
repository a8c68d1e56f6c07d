package indicator

import (
	"math"
	"testing"
)

func TestFindPeaksProminenceFilter(t *testing.T) {
	// 两个候选峰，只有突出度达标的那个保留。
	values := []float64{0, 0.5, 0, 5, 0}
	peaks := FindPeaks(values, 1)
	if len(peaks) != 1 || peaks[0] != 3 {
		t.Fatalf("peaks = %v", peaks)
	}
	peaks = FindPeaks(values, 0.1)
	if len(peaks) != 2 {
		t.Fatalf("低阈值下两个峰都应保留: %v", peaks)
	}
}

func TestFindPeaksPlateauExcluded(t *testing.T) {
	// 平台顶不是严格极大值。
	values := []float64{0, 1, 1, 0}
	if peaks := FindPeaks(values, 0.1); len(peaks) != 0 {
		t.Fatalf("平台不应计峰: %v", peaks)
	}
}

func TestFindPeaksNaNNeighbor(t *testing.T) {
	values := []float64{0, math.NaN(), 5, 0, 0}
	if peaks := FindPeaks(values, 0.1); len(peaks) != 0 {
		t.Fatalf("紧邻 NaN 的候选应失效: %v", peaks)
	}
}

func TestFindPeaksProminenceStopsAtHigherPoint(t *testing.T) {
	// 次峰的基底搜索止于更高的主峰，突出度按较高一侧的基底计。
	values := []float64{0, 10, 4, 6, 5, 0}
	peaks := FindPeaks(values, 1)
	// 主峰 10：两侧到边界，基底 max(0,0)=0，突出度 10。
	// 次峰 6：左侧在主峰处截断得基底 4，右侧到边界得 0，取较高者 4，
	// 突出度 2。
	if len(peaks) != 2 || peaks[0] != 1 || peaks[1] != 3 {
		t.Fatalf("peaks = %v", peaks)
	}
	if got := FindPeaks(values, 3); len(got) != 1 || got[0] != 1 {
		t.Fatalf("提高阈值后只剩主峰: %v", got)
	}
}

func TestFindTroughs(t *testing.T) {
	values := []float64{5, 1, 5, 4, 5}
	troughs := FindTroughs(values, 1)
	if len(troughs) != 2 || troughs[0] != 1 || troughs[1] != 3 {
		t.Fatalf("troughs = %v", troughs)
	}
	if got := FindTroughs(values, 2); len(got) != 1 || got[0] != 1 {
		t.Fatalf("高阈值下只剩深谷: %v", got)
	}
}

func TestFindPeaksShortSeries(t *testing.T) {
	if got := FindPeaks([]float64{1, 2}, 0.1); got != nil {
		t.Fatalf("不足三点不可能有峰: %v", got)
	}
}
