// Package basehdl cung cấp các helper dùng chung cho tầng handler
package basehdl

import (
	"errors"
	"fmt"
	"runtime/debug"

	"audience_hub/internal/common"
	"audience_hub/internal/global"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JSONResponse trả về JSON response với Content-Type: application/json; charset=utf-8
func JSONResponse(c fiber.Ctx, statusCode int, data interface{}) error {
	c.Set("Content-Type", "application/json; charset=utf-8")
	return c.Status(statusCode).JSON(data)
}

// BaseHandler chứa các helper dùng chung, được embed vào các domain handler
type BaseHandler struct{}

// SafeHandler bọc các handler với recover để bắt panic và xử lý lỗi an toàn.
// Đảm bảo server luôn trả về response cho client, kể cả khi có panic xảy ra.
func (h *BaseHandler) SafeHandler(c fiber.Ctx, handler func() error) error {
	defer func() {
		if r := recover(); r != nil {
			debug.PrintStack()

			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeInternalServer,
				fmt.Sprintf("Lỗi hệ thống không mong muốn: %v", r),
				common.StatusInternalServerError,
				nil,
			))
		}
	}()
	return handler()
}

// HandleResponse xử lý và chuẩn hóa response trả về cho client.
// Phương thức này đảm bảo format response thống nhất trong toàn bộ ứng dụng.
func (h *BaseHandler) HandleResponse(c fiber.Ctx, data interface{}, err error) {
	if err != nil {
		var customErr *common.Error
		if errors.As(err, &customErr) {
			JSONResponse(c, customErr.StatusCode, fiber.Map{
				"code":    customErr.Code.Code,
				"message": customErr.Message,
				"details": customErr.Details,
				"status":  "error",
			})
			return
		}
		// Nếu không phải custom error, trả về internal server error
		JSONResponse(c, common.StatusInternalServerError, fiber.Map{
			"code":    common.ErrCodeDatabase.Code,
			"message": err.Error(),
			"status":  "error",
		})
		return
	}

	JSONResponse(c, common.StatusOK, fiber.Map{
		"code":    common.StatusOK,
		"message": common.MsgSuccess,
		"data":    data,
		"status":  "success",
	})
}

// HandleCreatedResponse trả về response 201 cho các thao tác tạo mới
func (h *BaseHandler) HandleCreatedResponse(c fiber.Ctx, data interface{}) {
	JSONResponse(c, common.StatusCreated, fiber.Map{
		"code":    common.StatusCreated,
		"message": common.MsgCreated,
		"data":    data,
		"status":  "success",
	})
}

// ParseObjectID parse một path param thành ObjectID.
// Tham chiếu không phải ObjectID hợp lệ bị coi là lỗi validation, không phải NotFound.
func (h *BaseHandler) ParseObjectID(c fiber.Ctx, paramName string) (primitive.ObjectID, error) {
	raw := c.Params(paramName)
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, common.NewError(
			common.ErrCodeValidationReference,
			fmt.Sprintf("Tham số %s phải là ObjectID hợp lệ", paramName),
			common.StatusBadRequest,
			raw,
		)
	}
	return id, nil
}

// ParseAndValidateBody parse body JSON vào struct và validate theo tag
func ParseAndValidateBody[T any](c fiber.Ctx) (*T, error) {
	var input T
	if err := c.Bind().Body(&input); err != nil {
		return nil, common.NewError(
			common.ErrCodeValidationFormat,
			"Không thể parse dữ liệu đầu vào",
			common.StatusBadRequest,
			err.Error(),
		)
	}

	if global.Validate != nil {
		if err := global.Validate.Struct(&input); err != nil {
			return nil, common.NewError(
				common.ErrCodeValidationInput,
				"Dữ liệu đầu vào không hợp lệ",
				common.StatusBadRequest,
				err.Error(),
			)
		}
	}

	return &input, nil
}
