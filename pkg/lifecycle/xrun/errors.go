package xrun

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrSignal 因收到系统信号而终止，配合 errors.Is 使用
	ErrSignal = errors.New("received signal")

	// ErrNilFunc 任务函数为 nil
	ErrNilFunc = errors.New("xrun: nil func")

	// ErrInvalidInterval Ticker 间隔必须为正数
	ErrInvalidInterval = errors.New("xrun: interval must be positive")
)

// SignalError 携带触发退出的信号，errors.Is(err, ErrSignal) 成立
type SignalError struct {
	Signal os.Signal
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("received signal %v", e.Signal)
}

func (e *SignalError) Unwrap() error {
	return ErrSignal
}
