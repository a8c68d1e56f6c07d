package indicator

import (
	"math"
	"testing"
)

func TestCleanMapsNonFiniteToNull(t *testing.T) {
	values := []float64{1.5, math.NaN(), math.Inf(1), math.Inf(-1), -2}
	out := Clean(values)
	if len(out) != len(values) {
		t.Fatalf("长度 = %d", len(out))
	}
	if out[0] == nil || *out[0] != 1.5 {
		t.Fatalf("out[0] = %v", out[0])
	}
	for i := 1; i <= 3; i++ {
		if out[i] != nil {
			t.Fatalf("out[%d] 应为 null", i)
		}
	}
	if out[4] == nil || *out[4] != -2 {
		t.Fatalf("out[4] = %v", out[4])
	}
}

func TestCleanCopiesValues(t *testing.T) {
	// 输出指针不得指向输入切片的元素。
	values := []float64{7}
	out := Clean(values)
	values[0] = 99
	if *out[0] != 7 {
		t.Fatalf("Clean 应拷贝数值: %v", *out[0])
	}
}

func TestFirstValid(t *testing.T) {
	if got := FirstValid([]*float64{nil, nil, fptr(3)}); got != 2 {
		t.Fatalf("got %d", got)
	}
	if got := FirstValid([]*float64{nil, nil}); got != -1 {
		t.Fatalf("全空应返回 -1: %d", got)
	}
	if got := FirstValid(nil); got != -1 {
		t.Fatalf("空序列应返回 -1: %d", got)
	}
}

func TestValidateDataLength(t *testing.T) {
	if ValidateDataLength(10, 20, "test") {
		t.Fatalf("长度不足应返回 false")
	}
	if !ValidateDataLength(20, 20, "test") {
		t.Fatalf("恰好达标应返回 true")
	}
}

func TestStartIndexAtOrAfter(t *testing.T) {
	ts := []int64{100, 200, 300}
	if got := StartIndexAtOrAfter(ts, 200); got != 1 {
		t.Fatalf("got %d", got)
	}
	if got := StartIndexAtOrAfter(ts, 150); got != 1 {
		t.Fatalf("介于两点之间应取后者: %d", got)
	}
	if got := StartIndexAtOrAfter(ts, 400); got != -1 {
		t.Fatalf("超出末尾应返回 -1: %d", got)
	}
}

func TestCommonLength(t *testing.T) {
	if got := CommonLength(5, 3, 4); got != 3 {
		t.Fatalf("got %d", got)
	}
	if got := CommonLength(); got != 0 {
		t.Fatalf("无参数应返回 0: %d", got)
	}
	if got := CommonLength(3, -1); got != 0 {
		t.Fatalf("负值应钳为 0: %d", got)
	}
}

func TestSliceHelpers(t *testing.T) {
	floats := []float64{1, 2, 3, 4}
	if got := SliceFloats(floats, 1, 2); len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Fatalf("got %v", got)
	}
	if got := SliceFloats(floats, 3, 5); len(got) != 1 || got[0] != 4 {
		t.Fatalf("越界应收缩: %v", got)
	}
	if got := SliceFloats(floats, 9, 2); len(got) != 0 {
		t.Fatalf("起点越界应返回空: %v", got)
	}

	ts := []int64{10, 20, 30}
	if got := SliceTimestamps(ts, 1, 10); len(got) != 2 || got[0] != 20 {
		t.Fatalf("got %v", got)
	}

	nullable := []*float64{nil, fptr(2), fptr(3)}
	got := SliceNullable(nullable, 0, 2)
	if len(got) != 2 || got[0] != nil || *got[1] != 2 {
		t.Fatalf("got %v", got)
	}
}
