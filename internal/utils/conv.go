package utils

import (
	"strconv"
	"strings"
)

// OptionalInt 解析整数，空字符串返回 nil
func OptionalInt(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// IsTruthy 识别查询参数中常见的 true 写法
func IsTruthy(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}
