package model

import "time"

// StorePrecision PostgreSQL TIMESTAMPTZ 的精度
// 写入前截断到该精度，保证内存中的值与回读值可直接比较（CAS 依赖于此）
const StorePrecision = time.Microsecond

// AsUTC 将存储层读出的时间统一解释为 UTC
// TIMESTAMPTZ 按会话时区解码，无时区的 TIMESTAMP 以 UTC 位置解码，两者转换后语义一致
func AsUTC(t time.Time) time.Time {
	return t.UTC()
}

// AsUTCPtr AsUTC 的可空版本
func AsUTCPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := AsUTC(*t)
	return &u
}

// AsStored 返回与存储层回读结果一致的时间：UTC 且截断到存储精度
func AsStored(t time.Time) time.Time {
	return t.UTC().Truncate(StorePrecision)
}

// StoreNow 当前时刻的存储形式
func StoreNow(now time.Time) time.Time {
	return AsStored(now)
}
