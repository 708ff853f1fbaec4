// Command token 为本地联调签发 Access Token。
//
//	go run ./cmd/token -user u-1001 -role admin
package main

import (
	"flag"
	"fmt"
	"os"

	"virs-challenge/backend/config"
	"virs-challenge/backend/pkg/jwt"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径")
	userID := flag.String("user", "", "用户标识（必填）")
	role := flag.String("role", jwt.RoleMember, "角色: admin | member")
	email := flag.String("email", "", "邮箱（可选）")
	flag.Parse()

	if err := run(*configPath, *userID, *role, *email); err != nil {
		fmt.Fprintf(os.Stderr, "签发失败: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, userID, role, email string) error {
	if userID == "" {
		return fmt.Errorf("-user 不能为空")
	}
	if role != jwt.RoleAdmin && role != jwt.RoleMember {
		return fmt.Errorf("未知角色 %q", role)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	token, err := jwt.NewManager(&cfg.Auth).GenerateAccessToken(userID, role, email)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
