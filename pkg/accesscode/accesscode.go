// Package accesscode 生成学期加入用的随机访问码。
package accesscode

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// Alphabet 访问码字符集：大写字母 + 数字，共 36 个符号
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ErrInvalidLength 访问码长度非法
var ErrInvalidLength = errors.New("访问码长度必须为正数")

var alphabetSize = big.NewInt(int64(len(Alphabet)))

// Generate 生成指定长度的访问码，每位从 Alphabet 中均匀选取
// 唯一性由调用方结合存储层唯一约束保证
func Generate(length int) (string, error) {
	if length <= 0 {
		return "", ErrInvalidLength
	}

	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("读取随机数失败: %w", err)
		}
		buf[i] = Alphabet[n.Int64()]
	}

	return string(buf), nil
}
