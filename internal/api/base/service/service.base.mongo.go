// Package basesvc cung cấp các service cơ bản cho việc tương tác với MongoDB
package basesvc

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	basemodels "audience_hub/internal/api/base/models"
	"audience_hub/internal/common"
	"audience_hub/internal/database"
	"audience_hub/internal/global"
)

// UpdateData định nghĩa kiểu dữ liệu cho partial update
type UpdateData struct {
	Set         map[string]interface{} `bson:"$set,omitempty"`         // Các trường cần update
	SetOnInsert map[string]interface{} `bson:"$setOnInsert,omitempty"` // Các trường chỉ set khi insert (upsert tạo mới)
	Unset       map[string]interface{} `bson:"$unset,omitempty"`       // Các trường cần xóa
	Push        map[string]interface{} `bson:"$push,omitempty"`        // Các trường cần thêm vào array
	Pull        map[string]interface{} `bson:"$pull,omitempty"`        // Các trường cần xóa khỏi array
	AddToSet    map[string]interface{} `bson:"$addToSet,omitempty"`    // Các trường cần thêm vào set
}

// ToUpdateData chuyển đổi interface{} thành UpdateData
func ToUpdateData(data interface{}) (*UpdateData, error) {
	if update, ok := data.(*UpdateData); ok {
		return update, nil
	}
	if update, ok := data.(UpdateData); ok {
		return &update, nil
	}

	dataMap, err := toMap(data)
	if err != nil {
		return nil, err
	}

	// Nếu data có sẵn các operator MongoDB ($set, $unset, etc)
	if _, hasSet := dataMap["$set"]; hasSet {
		update := &UpdateData{}
		if setVal, ok := dataMap["$set"].(map[string]interface{}); ok {
			update.Set = setVal
		}
		if unsetVal, ok := dataMap["$unset"].(map[string]interface{}); ok {
			update.Unset = unsetVal
		}
		if setOnInsertVal, ok := dataMap["$setOnInsert"].(map[string]interface{}); ok {
			update.SetOnInsert = setOnInsertVal
		}
		if pushVal, ok := dataMap["$push"].(map[string]interface{}); ok {
			update.Push = pushVal
		}
		if pullVal, ok := dataMap["$pull"].(map[string]interface{}); ok {
			update.Pull = pullVal
		}
		if addToSetVal, ok := dataMap["$addToSet"].(map[string]interface{}); ok {
			update.AddToSet = addToSetVal
		}
		return update, nil
	}

	// Data là map thường, wrap trong $set
	return &UpdateData{
		Set: dataMap,
	}, nil
}

// toMap chuyển struct/map thành map[string]interface{} qua BSON marshal
func toMap(data interface{}) (map[string]interface{}, error) {
	if m, ok := data.(map[string]interface{}); ok {
		return m, nil
	}
	if m, ok := data.(bson.M); ok {
		return map[string]interface{}(m), nil
	}

	raw, err := bson.Marshal(data)
	if err != nil {
		return nil, err
	}

	var result map[string]interface{}
	if err := bson.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// BaseServiceMongo định nghĩa interface chứa các phương thức cơ bản cho việc tương tác với MongoDB.
// Mọi operation đều áp dụng retry policy cho lỗi transient ở tầng này, service nghiệp vụ
// không phải khai báo lại.
type BaseServiceMongo[Model any] interface {
	// Thao tác chuẩn MongoDB driver
	InsertOne(ctx context.Context, data Model) (Model, error)
	FindOne(ctx context.Context, filter interface{}, opts *options.FindOneOptions) (Model, error)
	Find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]Model, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts *options.UpdateOptions) (Model, error)
	UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts *options.UpdateOptions) (int64, error)
	DeleteOne(ctx context.Context, filter interface{}) error
	FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts *options.FindOneAndUpdateOptions) (Model, error)
	CountDocuments(ctx context.Context, filter interface{}) (int64, error)

	// Các hàm tiện ích mở rộng
	FindOneById(ctx context.Context, id primitive.ObjectID) (Model, error)
	FindManyByIds(ctx context.Context, ids []primitive.ObjectID) ([]Model, error)
	FindWithPagination(ctx context.Context, filter interface{}, page, limit int64, opts *options.FindOptions) (*basemodels.PaginateResult[Model], error)
	UpdateById(ctx context.Context, id primitive.ObjectID, data interface{}) (Model, error)
	DeleteById(ctx context.Context, id primitive.ObjectID) error
	Upsert(ctx context.Context, filter interface{}, data interface{}) (Model, error)
	DocumentExists(ctx context.Context, filter interface{}) (bool, error)
}

// BaseServiceMongoImpl định nghĩa struct triển khai các phương thức cơ bản cho service
type BaseServiceMongoImpl[T any] struct {
	collection *mongo.Collection    // Collection MongoDB
	retry      database.RetryPolicy // Chính sách retry cho lỗi transient
}

// NewBaseServiceMongo tạo mới một BaseServiceMongoImpl.
// Retry policy được đọc từ cấu hình server, fallback về default nếu chưa có config.
func NewBaseServiceMongo[T any](collection *mongo.Collection) *BaseServiceMongoImpl[T] {
	policy := database.DefaultRetryPolicy()
	if cfg := global.MongoDB_ServerConfig; cfg != nil {
		policy = database.RetryPolicy{
			MaxAttempts: cfg.StoreRetryMaxAttempts,
			Backoff:     time.Duration(cfg.StoreRetryBackoffMs) * time.Millisecond,
		}
	}
	return &BaseServiceMongoImpl[T]{
		collection: collection,
		retry:      policy,
	}
}

// Collection trả về collection MongoDB (dùng bởi các service khi cần truy cập trực tiếp)
func (s *BaseServiceMongoImpl[T]) Collection() *mongo.Collection {
	return s.collection
}

// InsertOne tạo mới một bản ghi trong database
func (s *BaseServiceMongoImpl[T]) InsertOne(ctx context.Context, data T) (T, error) {
	var zero T

	dataMap, err := toMap(data)
	if err != nil {
		return zero, common.ErrInvalidFormat
	}

	// Thêm timestamps
	now := time.Now().UnixMilli()
	dataMap["createdAt"] = now
	dataMap["updatedAt"] = now

	return database.WithRetry(ctx, s.retry, s.collection.Name()+".InsertOne", func(ctx context.Context) (T, error) {
		result, err := s.collection.InsertOne(ctx, dataMap)
		if err != nil {
			return zero, common.ConvertMongoError(err)
		}

		// Lấy lại document vừa tạo
		var created T
		if err := s.collection.FindOne(ctx, bson.M{"_id": result.InsertedID}).Decode(&created); err != nil {
			return zero, common.ConvertMongoError(err)
		}
		return created, nil
	})
}

// FindOne tìm một document theo điều kiện lọc
func (s *BaseServiceMongoImpl[T]) FindOne(ctx context.Context, filter interface{}, opts *options.FindOneOptions) (T, error) {
	var zero T

	if filter == nil {
		filter = bson.D{}
	}
	if opts == nil {
		opts = options.FindOne()
	}

	return database.WithRetry(ctx, s.retry, s.collection.Name()+".FindOne", func(ctx context.Context) (T, error) {
		var result T
		findResult := s.collection.FindOne(ctx, filter, opts)
		if err := findResult.Err(); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return zero, common.ErrNotFound
			}
			return zero, common.ConvertMongoError(err)
		}

		if err := findResult.Decode(&result); err != nil {
			// Lỗi decode BSON là lỗi format, không phải lỗi MongoDB command
			return zero, common.NewError(
				common.ErrCodeValidationFormat,
				"Lỗi định dạng dữ liệu khi decode từ MongoDB",
				common.StatusBadRequest,
				err,
			)
		}
		return result, nil
	})
}

// Find tìm tất cả bản ghi theo điều kiện lọc
func (s *BaseServiceMongoImpl[T]) Find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]T, error) {
	if filter == nil {
		filter = bson.D{}
	} else if filterMap, ok := filter.(map[string]interface{}); ok && len(filterMap) == 0 {
		filter = bson.D{}
	}
	if opts == nil {
		opts = options.Find()
	}

	return database.WithRetry(ctx, s.retry, s.collection.Name()+".Find", func(ctx context.Context) ([]T, error) {
		cursor, err := s.collection.Find(ctx, filter, opts)
		if err != nil {
			return nil, common.ConvertMongoError(err)
		}
		defer cursor.Close(ctx)

		var results []T
		if err = cursor.All(ctx, &results); err != nil {
			return nil, common.ConvertMongoError(err)
		}

		// Đảm bảo luôn trả về mảng, không phải nil
		if results == nil {
			results = []T{}
		}
		return results, nil
	})
}

// UpdateOne cập nhật một document
func (s *BaseServiceMongoImpl[T]) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts *options.UpdateOptions) (T, error) {
	var zero T

	if filter == nil {
		filter = bson.D{}
	}
	if opts == nil {
		opts = options.Update().SetUpsert(false)
	}

	updateData, err := ToUpdateData(update)
	if err != nil {
		return zero, common.ErrInvalidFormat
	}

	// Thêm updatedAt vào $set
	if updateData.Set == nil {
		updateData.Set = make(map[string]interface{})
	}
	updateData.Set["updatedAt"] = time.Now().UnixMilli()

	return database.WithRetry(ctx, s.retry, s.collection.Name()+".UpdateOne", func(ctx context.Context) (T, error) {
		result, err := s.collection.UpdateOne(ctx, filter, updateData, opts)
		if err != nil {
			return zero, common.ConvertMongoError(err)
		}

		if result.MatchedCount == 0 && result.UpsertedCount == 0 {
			return zero, common.ErrNotFound
		}

		// Lấy lại document đã update
		var updated T
		if result.UpsertedID != nil {
			err = s.collection.FindOne(ctx, bson.M{"_id": result.UpsertedID}).Decode(&updated)
		} else {
			err = s.collection.FindOne(ctx, filter).Decode(&updated)
		}
		if err != nil {
			return zero, common.ConvertMongoError(err)
		}
		return updated, nil
	})
}

// UpdateMany cập nhật nhiều document, trả về số document đã sửa
func (s *BaseServiceMongoImpl[T]) UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts *options.UpdateOptions) (int64, error) {
	if filter == nil {
		filter = bson.D{}
	}
	if opts == nil {
		opts = options.Update().SetUpsert(false)
	}

	updateData, err := ToUpdateData(update)
	if err != nil {
		return 0, common.ErrInvalidFormat
	}

	if updateData.Set == nil {
		updateData.Set = make(map[string]interface{})
	}
	updateData.Set["updatedAt"] = time.Now().UnixMilli()

	return database.WithRetry(ctx, s.retry, s.collection.Name()+".UpdateMany", func(ctx context.Context) (int64, error) {
		result, err := s.collection.UpdateMany(ctx, filter, updateData, opts)
		if err != nil {
			return 0, common.ConvertMongoError(err)
		}
		return result.ModifiedCount, nil
	})
}

// DeleteOne xóa một document
func (s *BaseServiceMongoImpl[T]) DeleteOne(ctx context.Context, filter interface{}) error {
	if filter == nil {
		filter = bson.D{}
	}

	_, err := database.WithRetry(ctx, s.retry, s.collection.Name()+".DeleteOne", func(ctx context.Context) (int64, error) {
		result, err := s.collection.DeleteOne(ctx, filter)
		if err != nil {
			return 0, common.ConvertMongoError(err)
		}
		if result.DeletedCount == 0 {
			return 0, common.ErrNotFound
		}
		return result.DeletedCount, nil
	})
	return err
}

// FindOneAndUpdate tìm và cập nhật một document một cách atomic
func (s *BaseServiceMongoImpl[T]) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts *options.FindOneAndUpdateOptions) (T, error) {
	var zero T

	if filter == nil {
		filter = bson.D{}
	}
	if opts == nil {
		opts = options.FindOneAndUpdate().SetReturnDocument(options.After)
	}

	updateData, err := ToUpdateData(update)
	if err != nil {
		return zero, common.ErrInvalidFormat
	}

	if updateData.Set == nil {
		updateData.Set = make(map[string]interface{})
	}
	updateData.Set["updatedAt"] = time.Now().UnixMilli()

	return database.WithRetry(ctx, s.retry, s.collection.Name()+".FindOneAndUpdate", func(ctx context.Context) (T, error) {
		var result T
		if err := s.collection.FindOneAndUpdate(ctx, filter, updateData, opts).Decode(&result); err != nil {
			return zero, common.ConvertMongoError(err)
		}
		return result, nil
	})
}

// CountDocuments đếm số lượng document
func (s *BaseServiceMongoImpl[T]) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	if filter == nil {
		filter = bson.D{}
	}

	return database.WithRetry(ctx, s.retry, s.collection.Name()+".CountDocuments", func(ctx context.Context) (int64, error) {
		count, err := s.collection.CountDocuments(ctx, filter)
		if err != nil {
			return 0, common.ConvertMongoError(err)
		}
		return count, nil
	})
}

// FindOneById tìm một document theo ObjectId
func (s *BaseServiceMongoImpl[T]) FindOneById(ctx context.Context, id primitive.ObjectID) (T, error) {
	return s.FindOne(ctx, bson.M{"_id": id}, nil)
}

// FindManyByIds tìm nhiều document theo danh sách ID
func (s *BaseServiceMongoImpl[T]) FindManyByIds(ctx context.Context, ids []primitive.ObjectID) ([]T, error) {
	return s.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
}

// FindWithPagination tìm tất cả bản ghi với phân trang
func (s *BaseServiceMongoImpl[T]) FindWithPagination(ctx context.Context, filter interface{}, page, limit int64, opts *options.FindOptions) (*basemodels.PaginateResult[T], error) {
	if filter == nil {
		filter = bson.D{}
	}
	if opts == nil {
		opts = options.Find()
	}

	// Đảm bảo page >= 1 và limit > 0 để tránh skip âm
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	skip := (page - 1) * limit
	opts.SetSkip(skip)
	opts.SetLimit(limit)

	total, err := s.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	items, err := s.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	var totalPage int64
	if total > 0 {
		totalPage = (total + limit - 1) / limit
	}

	return &basemodels.PaginateResult[T]{
		Items:     items,
		Page:      page,
		Limit:     limit,
		ItemCount: int64(len(items)),
		Total:     total,
		TotalPage: totalPage,
	}, nil
}

// UpdateById cập nhật một document theo ObjectId
func (s *BaseServiceMongoImpl[T]) UpdateById(ctx context.Context, id primitive.ObjectID, data interface{}) (T, error) {
	return s.UpdateOne(ctx, bson.M{"_id": id}, data, nil)
}

// DeleteById xóa một document theo ObjectId
func (s *BaseServiceMongoImpl[T]) DeleteById(ctx context.Context, id primitive.ObjectID) error {
	return s.DeleteOne(ctx, bson.M{"_id": id})
}

// Upsert thực hiện thao tác update nếu tồn tại, insert nếu chưa tồn tại
func (s *BaseServiceMongoImpl[T]) Upsert(ctx context.Context, filter interface{}, data interface{}) (T, error) {
	var zero T

	updateData, err := ToUpdateData(data)
	if err != nil {
		return zero, common.ErrInvalidFormat
	}

	now := time.Now().UnixMilli()
	if updateData.Set == nil {
		updateData.Set = make(map[string]interface{})
	}
	updateData.Set["updatedAt"] = now
	if updateData.SetOnInsert == nil {
		updateData.SetOnInsert = make(map[string]interface{})
	}
	updateData.SetOnInsert["createdAt"] = now

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After).
		SetSort(bson.D{{Key: "_id", Value: 1}}) // Sắp xếp theo _id để đảm bảo tính nhất quán

	return database.WithRetry(ctx, s.retry, s.collection.Name()+".Upsert", func(ctx context.Context) (T, error) {
		var upserted T
		if err := s.collection.FindOneAndUpdate(ctx, filter, updateData, opts).Decode(&upserted); err != nil {
			return zero, common.ConvertMongoError(err)
		}
		return upserted, nil
	})
}

// DocumentExists kiểm tra xem một document có tồn tại không
func (s *BaseServiceMongoImpl[T]) DocumentExists(ctx context.Context, filter interface{}) (bool, error) {
	count, err := s.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
