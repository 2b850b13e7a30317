package xreslock

import (
	"fmt"

	"github.com/google/uuid"
)

// Token 持有者令牌，授予时生成，只有锁表和对应的 Handle 知道。零值表示无持有者。
type Token struct {
	id uuid.UUID
}

// NewToken 生成随机令牌（UUID v4）
func NewToken() Token {
	return Token{id: uuid.New()}
}

// ParseToken 解析 String 的输出，供需要跨进程传递令牌的后端使用
func ParseToken(s string) (Token, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return Token{}, fmt.Errorf("xreslock: parse token: %w", err)
	}
	return Token{id: id}, nil
}

// IsZero 是否为零值令牌
func (t Token) IsZero() bool {
	return t.id == uuid.Nil
}

// String 返回令牌的规范字符串，零值返回空字符串
func (t Token) String() string {
	if t.IsZero() {
		return ""
	}
	return t.id.String()
}
