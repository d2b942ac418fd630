package errlvl

import (
	"errors"
	"fmt"
)

// Lvl 错误严重程度
type Lvl uint8

const (
	DEBUG Lvl = iota + 1
	INFO
	WARN
	ERROR
	FATAL
)

var (
	ErrDebug = errors.New("[DEBUG]")
	ErrInfo  = errors.New("[INFO]")
	ErrWarn  = errors.New("[WARN]")
	ErrError = errors.New("[ERROR]")
	ErrFatal = errors.New("[FATAL]")
)

func (l Lvl) String() string {
	switch l {
	case DEBUG:
		return "debug"
	case INFO:
		return "info"
	case WARN:
		return "warn"
	case FATAL:
		return "fatal"
	default:
		return "error"
	}
}

// Wrap 给 err 打上级别标记；已带级别的错误原样返回
func Wrap(err error, level Lvl) error {
	if err == nil {
		return nil
	}
	if LevelOf(err) != 0 {
		return err
	}
	return fmt.Errorf("%w %w", sentinel(level), err)
}

// LevelOf 返回 err 上的级别，未标记时为 0
func LevelOf(err error) Lvl {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrFatal):
		return FATAL
	case errors.Is(err, ErrError):
		return ERROR
	case errors.Is(err, ErrWarn):
		return WARN
	case errors.Is(err, ErrInfo):
		return INFO
	case errors.Is(err, ErrDebug):
		return DEBUG
	}
	return 0
}

func sentinel(level Lvl) error {
	switch level {
	case DEBUG:
		return ErrDebug
	case INFO:
		return ErrInfo
	case WARN:
		return ErrWarn
	case FATAL:
		return ErrFatal
	default:
		return ErrError
	}
}
