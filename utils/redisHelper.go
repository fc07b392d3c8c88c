package utils

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/warungku/pos_backend/config"
)

var mutex sync.Mutex

func GetCacheLifespan() time.Duration {
	lifespan, err := strconv.Atoi(os.Getenv("CACHE_LIFESPAN"))
	if err != nil {
		lifespan = 1
	}
	return time.Duration(lifespan) * time.Hour
}

/* generic functions */

func GetTypeName[T any]() string {
	var v T
	typeOfT := reflect.TypeOf(v)
	return typeOfT.Name()
}

/* Redis */

// store instance, obj should be a pointer
func StoreRedis[T any](obj any, id int) error {
	key := GetTypeName[T]() + ":" + fmt.Sprint(id)
	return config.SetRedisObject(key, &obj, GetCacheLifespan())
}

// get from redis
// returns nil if does not exist
func RetrieveRedis[T any](id int) (*T, error) {
	var result *T
	key := GetTypeName[T]() + ":" + fmt.Sprint(id)
	exists, err := config.GetRedisObject(key, &result)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return result, nil
}

// remove an instance, Type:$id
func RemoveRedisItem[T any](id int) error {
	key := GetTypeName[T]() + ":" + fmt.Sprint(id)
	return config.RemoveRedisKey(key)
}

// GetDailySequence reserves the next receipt sequence for a warung on the
// given local day. The counter lives in redis keyed by warung+day; the first
// caller of a day seeds it from the DB max. The uniqueness re-check below
// closes the window where redis was flushed while sales for the day exist.
//
// T must carry receipt_no / warung_id columns.
func GetDailySequence[T any](ctx context.Context, warungId int, day time.Time) (int64, error) {
	mutex.Lock()
	defer mutex.Unlock()

	dayKey := day.Format("20060102")
	cacheKey := fmt.Sprintf("warung:%d:%s_seq:%s", warungId, GetTypeName[T](), dayKey)
	var seqNo int64
	var err error

	for {
		seqNo, err = config.GetRedisCounter(ctx, cacheKey)
		if err != nil {
			return 0, err
		}
		// if not found in redis (or redis unavailable), seed from db
		if seqNo <= 1 {
			count, err := ResourceCountWhere[T](ctx, warungId, "receipt_no LIKE ?", "INV-"+dayKey+"-%")
			if err != nil {
				return 0, err
			}
			seqNo = count + 1
			if err := config.SetRedisObject(cacheKey, &seqNo, 48*time.Hour); err != nil {
				return 0, err
			}
		}
		// check the formatted number is still unused
		err = ValidateUnique[T](ctx, warungId, "receipt_no", FormatReceiptNo(day, seqNo), 0)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrorDuplicate) {
			return 0, err
		}
	}
	return seqNo, nil
}

// WarungLock serializes a critical section per warung across instances.
// The returned release func must be called when the section is done.
func WarungLock(ctx context.Context, warungId int, lockType string, moduleName string, functionName string) (func(), error) {
	logger := config.GetLogger()
	locker := config.GetRedisLock()
	if locker == nil {
		// Avoid nil-pointer panics when the redis lock isn't initialized yet.
		config.LogError(logger, moduleName, functionName, "Redis lock not initialized", warungId, errors.New("redis lock is nil"))
		return nil, errors.New("service not ready (redis lock not initialized)")
	}
	lockKey := fmt.Sprintf("%s:%d", lockType, warungId)
	lock, err := locker.Obtain(ctx, lockKey, 30*time.Second, nil)
	if err == redislock.ErrNotObtained {
		config.LogError(logger, moduleName, functionName, "Could not obtain lock for warung", warungId, err)
		return nil, errors.New("could not obtain lock for warung")
	} else if err != nil {
		config.LogError(logger, moduleName, functionName, "Error obtaining lock for warung", warungId, err)
		return nil, err
	}
	return func() { _ = lock.Release(ctx) }, nil
}
