package xmetrics

import "time"

// String 字符串属性
func String(key, value string) Attr {
	return Attr{Key: key, Value: value}
}

// Bool 布尔属性
func Bool(key string, value bool) Attr {
	return Attr{Key: key, Value: value}
}

// Int 整数属性
func Int(key string, value int) Attr {
	return Attr{Key: key, Value: value}
}

// Duration 时间间隔属性，以纳秒记录
func Duration(key string, value time.Duration) Attr {
	return Attr{Key: key, Value: value}
}
