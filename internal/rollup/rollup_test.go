package rollup

import (
	"math/rand"
	"testing"
)

// TestReduce_ChieuMacDinh pin chiều reduction mặc định: trọng số cao thắng.
// Active (11) phải thắng mọi trạng thái khác, failure (0) chỉ thắng khi đứng một mình.
func TestReduce_ChieuMacDinh(t *testing.T) {
	calc := NewDefaultCalculator()

	cases := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"active thắng tất cả", []Status{StatusFailed, StatusDelivering, StatusActive, StatusPending}, StatusActive},
		{"delivered thắng delivering", []Status{StatusDelivering, StatusDelivered}, StatusDelivered},
		{"failure chỉ thắng khi một mình", []Status{StatusFailed}, StatusFailed},
		{"pending thắng failure", []Status{StatusError, StatusPending}, StatusPending},
		{"một phần tử", []Status{StatusDraft}, StatusDraft},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := calc.Reduce(tc.statuses); got != tc.want {
				t.Errorf("Reduce(%v) = %s, muốn %s", tc.statuses, got, tc.want)
			}
		})
	}
}

// TestReduce_TapRong kiểm tra edge chưa có lịch sử delivery mặc định về NotDelivered
func TestReduce_TapRong(t *testing.T) {
	calc := NewDefaultCalculator()
	if got := calc.Reduce(nil); got != StatusNotDelivered {
		t.Errorf("Reduce(nil) = %s, muốn %s", got, StatusNotDelivered)
	}
	if got := calc.Reduce([]Status{}); got != StatusNotDelivered {
		t.Errorf("Reduce([]) = %s, muốn %s", got, StatusNotDelivered)
	}
}

// TestReduce_KhongPhuThuocThuTu kiểm tra permute input không đổi kết quả,
// kể cả với hai trạng thái đồng trọng số (Error/Failed).
func TestReduce_KhongPhuThuocThuTu(t *testing.T) {
	calc := NewDefaultCalculator()

	inputs := [][]Status{
		{StatusActive, StatusFailed, StatusDelivering, StatusPending, StatusError},
		{StatusError, StatusFailed}, // đồng trọng số
		{StatusDelivered, StatusNotDelivered, StatusDraft, StatusStopped},
	}

	rng := rand.New(rand.NewSource(42))
	for _, input := range inputs {
		want := calc.Reduce(input)
		for i := 0; i < 20; i++ {
			shuffled := append([]Status(nil), input...)
			rng.Shuffle(len(shuffled), func(a, b int) {
				shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
			})
			if got := calc.Reduce(shuffled); got != want {
				t.Fatalf("Reduce(%v) = %s, khác với Reduce(%v) = %s", shuffled, got, input, want)
			}
		}
	}
}

// TestReduce_ChieuNguoc kiểm tra comparator LowestWeightWins hoạt động
// khi chiều reduction cần đảo mà không chạm call site.
func TestReduce_ChieuNguoc(t *testing.T) {
	calc := NewCalculator(nil, LowestWeightWins)

	got := calc.Reduce([]Status{StatusActive, StatusPending, StatusFailed})
	if got != StatusFailed {
		t.Errorf("Reduce với LowestWeightWins = %s, muốn %s", got, StatusFailed)
	}
}

// TestReduce_BangTuyChinh kiểm tra bảng trọng số được inject thay vì hard-code
func TestReduce_BangTuyChinh(t *testing.T) {
	table := Table{
		StatusDraft:  100,
		StatusActive: 1,
	}
	calc := NewCalculator(table, HighestWeightWins)

	got := calc.Reduce([]Status{StatusActive, StatusDraft})
	if got != StatusDraft {
		t.Errorf("Reduce với bảng tùy chỉnh = %s, muốn %s", got, StatusDraft)
	}
}
