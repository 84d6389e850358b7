// Package rollup rút gọn nhiều trạng thái delivery của các edge thành một
// trạng thái đại diện duy nhất để hiển thị. Reduction là hàm thuần túy,
// deterministic và không phụ thuộc thứ tự input.
package rollup

// Status là vocabulary trạng thái hiển thị của một edge
type Status string

const (
	StatusActive         Status = "Active"
	StatusDelivered      Status = "Delivered"
	StatusNotDelivered   Status = "NotDelivered"
	StatusDelivering     Status = "Delivering"
	StatusDeliveryPaused Status = "DeliveryPaused"
	StatusInactive       Status = "Inactive"
	StatusDraft          Status = "Draft"
	StatusPending        Status = "Pending"
	StatusInProgress     Status = "InProgress"
	StatusPaused         Status = "Paused"
	StatusStopped        Status = "Stopped"
	StatusError          Status = "Error"
	StatusFailed         Status = "Failed"
)

// Table gán trọng số cho từng trạng thái. Bảng được inject vào calculator
// thay vì hard-code, để có thể thay đổi mà không chạm call site.
type Table map[Status]int

// DefaultTable trả về bảng trọng số chuẩn: Active cao nhất (11),
// hai trạng thái failure thấp nhất (0).
func DefaultTable() Table {
	return Table{
		StatusActive:         11,
		StatusDelivered:      10,
		StatusNotDelivered:   9,
		StatusDelivering:     8,
		StatusDeliveryPaused: 7,
		StatusInactive:       6,
		StatusDraft:          5,
		StatusPending:        4,
		StatusInProgress:     3,
		StatusPaused:         2,
		StatusStopped:        1,
		StatusError:          0,
		StatusFailed:         0,
	}
}

// Direction quyết định chiều reduction: trọng số cao thắng hay thấp thắng.
// Chiều được inject để có thể đổi và test độc lập với call site.
type Direction int

const (
	// HighestWeightWins chọn trạng thái có trọng số lớn nhất
	HighestWeightWins Direction = iota
	// LowestWeightWins chọn trạng thái có trọng số nhỏ nhất
	LowestWeightWins
)

// Calculator rút gọn tập trạng thái edge về một trạng thái đại diện
type Calculator struct {
	table     Table
	direction Direction
}

// NewCalculator tạo calculator với bảng trọng số và chiều reduction cho trước.
// Table nil dùng DefaultTable.
func NewCalculator(table Table, direction Direction) *Calculator {
	if table == nil {
		table = DefaultTable()
	}
	return &Calculator{table: table, direction: direction}
}

// NewDefaultCalculator trả về calculator mặc định: bảng chuẩn, trọng số cao thắng
func NewDefaultCalculator() *Calculator {
	return NewCalculator(nil, HighestWeightWins)
}

// weight trả về trọng số của status; status ngoài bảng xếp cùng bậc với failure
func (c *Calculator) weight(status Status) int {
	if w, ok := c.table[status]; ok {
		return w
	}
	return 0
}

// better kiểm tra candidate có thắng current theo chiều reduction không.
// Khi hai trạng thái cùng trọng số (Error/Failed), trạng thái gặp trước giữ chỗ,
// nên kết quả vẫn deterministic vì so sánh chỉ dựa trên trọng số.
func (c *Calculator) better(candidate, current int) bool {
	if c.direction == LowestWeightWins {
		return candidate < current
	}
	return candidate > current
}

// Reduce chọn đúng một trạng thái đại diện từ tập trạng thái edge.
// Tập rỗng (edge chưa có lịch sử delivery) mặc định về NotDelivered.
// Kết quả không phụ thuộc thứ tự input: chỉ trọng số quyết định, và các
// trạng thái đồng trọng số được chuẩn hóa về một đại diện cố định.
func (c *Calculator) Reduce(statuses []Status) Status {
	if len(statuses) == 0 {
		return StatusNotDelivered
	}

	best := statuses[0]
	bestWeight := c.weight(best)
	for _, status := range statuses[1:] {
		w := c.weight(status)
		if c.better(w, bestWeight) {
			best = status
			bestWeight = w
			continue
		}
		// Đồng trọng số: chuẩn hóa theo thứ tự chữ cái để kết quả
		// không phụ thuộc thứ tự duyệt input
		if w == bestWeight && status < best {
			best = status
		}
	}
	return best
}
