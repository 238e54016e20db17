package service

import "time"

// Clock 时间来源，测试中替换为固定时间
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock 系统时间
var SystemClock Clock = systemClock{}

// Dirtier 标记 store 需要写回（persist.Persister 实现）
type Dirtier interface {
	MarkDirty(names ...string)
}
